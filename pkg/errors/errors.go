package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard sentinel errors for common cases.
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrNotConfigured = errors.New("not configured")
	ErrInternal      = errors.New("internal error")
)

// AppError represents a structured application error with HTTP status mapping.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// InvalidInput creates a 400 error whose message is returned to the
// caller verbatim.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// Unauthorized creates a 403 error. Token auth on this API answers 403
// rather than 401.
func Unauthorized() *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: "Unauthorized",
		Status:  http.StatusForbidden,
		Err:     ErrUnauthorized,
	}
}

// Upstream creates a 500 error carrying the underlying failure text.
// The legacy API surfaced driver errors to callers verbatim; the
// message is not masked.
func Upstream(err error) *AppError {
	return &AppError{
		Code:    "UPSTREAM_ERROR",
		Message: err.Error(),
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// NotConfigured creates a 503 error for operations that need optional
// configuration which is absent.
func NotConfigured(message string) *AppError {
	return &AppError{
		Code:    "NOT_CONFIGURED",
		Message: message,
		Status:  http.StatusServiceUnavailable,
		Err:     ErrNotConfigured,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the text that should appear on the wire for err.
// AppErrors carry their own message; anything else is surfaced as-is.
func Message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
