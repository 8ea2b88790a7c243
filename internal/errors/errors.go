package errors

import (
	"errors"
	"net/http"
)

// APIError is the single structured error type raised by every operation.
// It carries everything the top-level translator needs to build the wire
// envelope; no other layer writes an error response.
type APIError struct {
	Code    string
	Status  int
	Message string
	Details []string
	Err     error // underlying error for wrapping
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is and errors.As
func (e *APIError) Unwrap() error {
	return e.Err
}

// WithDetails returns a copy carrying per-field detail messages for the
// errors[] array of the envelope.
func (e *APIError) WithDetails(details ...string) *APIError {
	return &APIError{
		Code:    e.Code,
		Status:  e.Status,
		Message: e.Message,
		Details: details,
		Err:     e.Err,
	}
}

// Wrap returns a copy of the given API error with an underlying cause
// attached. The cause is logged, never serialized.
func Wrap(apiErr *APIError, err error) *APIError {
	return &APIError{
		Code:    apiErr.Code,
		Status:  apiErr.Status,
		Message: apiErr.Message,
		Details: apiErr.Details,
		Err:     err,
	}
}

func newAPIError(code string, status int, message string) *APIError {
	return &APIError{Code: code, Status: status, Message: message}
}

// Taxonomy constructors
func Validation(message string) *APIError {
	return newAPIError("VALIDATION_ERROR", http.StatusBadRequest, message)
}

func Unauthorized(message string) *APIError {
	return newAPIError("UNAUTHORIZED", http.StatusUnauthorized, message)
}

func NotFound(message string) *APIError {
	return newAPIError("NOT_FOUND", http.StatusNotFound, message)
}

func Conflict(message string) *APIError {
	return newAPIError("CONFLICT", http.StatusConflict, message)
}

func Internal(message string) *APIError {
	return newAPIError("INTERNAL_ERROR", http.StatusInternalServerError, message)
}

// Predefined errors
var (
	ErrUserNotFound       = NotFound("user not found")
	ErrUserExists         = Conflict("user with username or email already exists")
	ErrInvalidCredentials = Unauthorized("invalid user credentials")
	ErrUnauthorized       = Unauthorized("unauthorized request")
	ErrInvalidAccessToken = Unauthorized("invalid access token")
	ErrInvalidRefresh     = Unauthorized("invalid refresh token")
	ErrRefreshReused      = Unauthorized("refresh token is expired or already used")
	ErrInternal           = Internal("internal server error")
	ErrTokenRotation      = Internal("something went wrong while generating access and refresh tokens")
)

// IsAPIError checks if an error is an API error
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// GetAPIError extracts the API error from an error chain, or nil.
func GetAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}

// ToHTTPStatus maps an error to its HTTP status code. Unknown errors are
// reported as 500 without leaking their message.
func ToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if apiErr := GetAPIError(err); apiErr != nil {
		return apiErr.Status
	}
	return http.StatusInternalServerError
}
