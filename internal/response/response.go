package response

import (
	"github.com/gin-gonic/gin"
)

// Envelope is the uniform success body: {statusCode, data, message, success}.
type Envelope struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// ErrorEnvelope is the uniform failure body. Only the top-level error
// translator middleware writes it.
type ErrorEnvelope struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Errors     []string `json:"errors"`
	Success    bool     `json:"success"`
}

// OK writes the success envelope with the given status code.
func OK(c *gin.Context, status int, data any, message string) {
	c.JSON(status, Envelope{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    true,
	})
}

// NewError builds the failure envelope. Details default to an empty array so
// clients never see null.
func NewError(status int, message string, details []string) ErrorEnvelope {
	if details == nil {
		details = []string{}
	}
	return ErrorEnvelope{
		StatusCode: status,
		Message:    message,
		Errors:     details,
		Success:    false,
	}
}
