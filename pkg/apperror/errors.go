package apperror

import (
	"errors"
	"net/http"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Common errors
var (
	ErrTokenExpired    = &AppError{Code: http.StatusUnauthorized, Message: "Token has expired"}
	ErrInvalidToken    = &AppError{Code: http.StatusUnauthorized, Message: "Invalid token"}
	ErrTooManyRequests = &AppError{Code: http.StatusTooManyRequests, Message: "Rate limit exceeded. Please try again later."}
)

// Checkout and printing errors
var (
	ErrEmptyCart = &AppError{
		Code:    http.StatusUnprocessableEntity,
		Message: "Cart is empty",
		Errors:  []FieldError{{Field: "items", Message: "add at least one item before confirming"}},
	}
	ErrInvalidDateRange = &AppError{
		Code:    http.StatusUnprocessableEntity,
		Message: "Invalid date range",
		Errors:  []FieldError{{Field: "end", Message: "end date must not be before start date"}},
	}
	ErrClearNotConfirmed = &AppError{Code: http.StatusPreconditionRequired, Message: "Clearing the cart requires confirmation"}
	ErrItemNotListed     = &AppError{Code: http.StatusNotFound, Message: "Item is not in the current catalog view"}
	ErrPrintingDisabled  = &AppError{Code: http.StatusForbidden, Message: "Printing is not available for this checkout"}
	ErrNoReceipt         = &AppError{Code: http.StatusNotFound, Message: "No receipt has been issued yet"}
	ErrNoReport          = &AppError{Code: http.StatusNotFound, Message: "No report has been generated yet"}
	ErrPrintUnavailable  = &AppError{Code: http.StatusServiceUnavailable, Message: "Printer is unavailable"}
	ErrPrintInProgress   = &AppError{Code: http.StatusConflict, Message: "A print job is already in progress"}
)

// NewAppError creates a new application error
func NewAppError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Message: "Validation failed",
		Errors:  fieldErrors,
	}
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Message: resource + " not found",
	}
}

// NewConflictError creates a conflict error with a custom message
func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Message: message,
	}
}

// NewUpstreamError wraps a non-success answer from the remote backend.
func NewUpstreamError(status int, message string) *AppError {
	if message == "" {
		message = http.StatusText(status)
	}
	return &AppError{
		Code:    http.StatusBadGateway,
		Message: "Backend error: " + message,
	}
}

// NewUnavailableError reports a dependency that could not be reached.
func NewUnavailableError(message string) *AppError {
	return &AppError{
		Code:    http.StatusServiceUnavailable,
		Message: message,
	}
}

// IsValidation reports whether err is a validation failure (422).
func IsValidation(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == http.StatusUnprocessableEntity
}

// IsRetryable reports whether the failed operation may succeed when retried unchanged.
func IsRetryable(err error) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Code == http.StatusBadGateway || appErr.Code == http.StatusServiceUnavailable
}

// GetAppError converts an error to AppError if possible
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: err.Error(),
	}
}
