package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestTaxonomyStatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		err    *APIError
		status int
		code   string
	}{
		{"validation", Validation("bad input"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unauthorized", Unauthorized("no token"), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"not found", NotFound("missing"), http.StatusNotFound, "NOT_FOUND"},
		{"conflict", Conflict("duplicate"), http.StatusConflict, "CONFLICT"},
		{"internal", Internal("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Status != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, tt.err.Status)
			}
			if tt.err.Code != tt.code {
				t.Errorf("Expected code %s, got %s", tt.code, tt.err.Code)
			}
			if ToHTTPStatus(tt.err) != tt.status {
				t.Errorf("ToHTTPStatus mismatch for %s", tt.name)
			}
		})
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	wrapped := Wrap(ErrTokenRotation, cause)

	if !errors.Is(wrapped, cause) {
		t.Error("Expected wrapped error to match its cause with errors.Is")
	}
	if wrapped.Status != http.StatusInternalServerError {
		t.Errorf("Expected wrap to keep status 500, got %d", wrapped.Status)
	}
	if wrapped.Message != ErrTokenRotation.Message {
		t.Errorf("Expected wrap to keep the public message, got %q", wrapped.Message)
	}

	// Wrapping copies; the shared sentinel must stay cause-free.
	if ErrTokenRotation.Err != nil {
		t.Error("Expected sentinel to remain unmodified after Wrap")
	}
}

func TestWithDetailsCopies(t *testing.T) {
	base := Validation("invalid request body")
	detailed := base.WithDetails("email is required", "password is required")

	if len(detailed.Details) != 2 {
		t.Fatalf("Expected 2 details, got %d", len(detailed.Details))
	}
	if len(base.Details) != 0 {
		t.Error("Expected WithDetails to leave the original untouched")
	}
	if detailed.Status != base.Status || detailed.Code != base.Code {
		t.Error("Expected WithDetails to preserve status and code")
	}
}

func TestGetAPIErrorFromChain(t *testing.T) {
	cause := errors.New("driver: bad connection")
	err := error(Wrap(ErrInternal, cause))

	apiErr := GetAPIError(err)
	if apiErr == nil {
		t.Fatal("Expected APIError from wrapped chain")
	}
	if apiErr.Status != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", apiErr.Status)
	}

	if GetAPIError(cause) != nil {
		t.Error("Expected nil for a non-API error")
	}
	if !IsAPIError(err) {
		t.Error("Expected IsAPIError true for APIError chain")
	}
	if IsAPIError(cause) {
		t.Error("Expected IsAPIError false for plain error")
	}
}

func TestToHTTPStatusUnknownError(t *testing.T) {
	if got := ToHTTPStatus(errors.New("mystery")); got != http.StatusInternalServerError {
		t.Errorf("Expected unknown errors to map to 500, got %d", got)
	}
	if got := ToHTTPStatus(nil); got != http.StatusOK {
		t.Errorf("Expected nil error to map to 200, got %d", got)
	}
}
