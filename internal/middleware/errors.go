package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/videotube/backend/internal/response"
	"github.com/videotube/backend/pkg/logger"
	"go.uber.org/zap"

	apperrors "github.com/videotube/backend/internal/errors"
)

// ErrorHandler is the one place that turns raised errors into the wire
// envelope. Handlers and the access guard attach errors with c.Error and
// abort; nothing below this middleware writes an error response.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err

		if apiErr := apperrors.GetAPIError(err); apiErr != nil {
			if apiErr.Status >= http.StatusInternalServerError {
				logger.GetLogger().Error("Request failed",
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
					zap.String("code", apiErr.Code),
					zap.Error(err),
				)
			}
			c.JSON(apiErr.Status, response.NewError(apiErr.Status, apiErr.Message, apiErr.Details))
			return
		}

		// Binding failures surface as validator errors; translate them into
		// the errors[] array instead of leaking struct internals.
		if fieldErrors, ok := err.(validator.ValidationErrors); ok {
			details := make([]string, 0, len(fieldErrors))
			for _, fe := range fieldErrors {
				details = append(details, fieldErrorMessage(fe))
			}
			c.JSON(http.StatusBadRequest, response.NewError(http.StatusBadRequest, "invalid request", details))
			return
		}

		logger.GetLogger().Error("Unhandled error",
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError,
			response.NewError(http.StatusInternalServerError, "internal server error", nil))
	}
}

func fieldErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters"
	default:
		return fe.Field() + " is invalid"
	}
}
