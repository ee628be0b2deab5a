package apperrors

import (
	"errors"
	"fmt"
)

// AppError represents a structured application error with code, message and optional details
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Cause   error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCause adds a cause to the error and returns the same error for chaining
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// New creates a new AppError
func New(code, message, details string) *AppError {
	return &AppError{Code: code, Message: message, Details: details}
}

// Wrap wraps an existing error with an AppError
func Wrap(code, message string, cause error) *AppError {
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	return &AppError{Code: code, Message: message, Details: details, Cause: cause}
}

// NotFound creates a new not found error
func NotFound(message, details string) *AppError {
	return New(ErrCodeNotFound, message, details)
}

// AlreadyExists creates a new already exists error
func AlreadyExists(message, details string) *AppError {
	return New(ErrCodeAlreadyExists, message, details)
}

// Validation creates a new validation error
func Validation(message, details string) *AppError {
	return New(ErrCodeValidation, message, details)
}

// Internal creates a new internal error
func Internal(message, details string) *AppError {
	return New(ErrCodeInternal, message, details)
}

// Unauthorized creates a new unauthorized error
func Unauthorized(message, details string) *AppError {
	return New(ErrCodeUnauthorized, message, details)
}

// Forbidden creates a new forbidden error
func Forbidden(message, details string) *AppError {
	return New(ErrCodeForbidden, message, details)
}

// BadRequest creates a new bad request error
func BadRequest(message, details string) *AppError {
	return New(ErrCodeBadRequest, message, details)
}

// Conflict creates a new conflict error
func Conflict(message, details string) *AppError {
	return New(ErrCodeConflict, message, details)
}

// AsAppError finds the first AppError in the chain.
// Returns nil if there is none.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// GetCode returns the error code if the error is an AppError, otherwise ErrCodeInternal
func GetCode(err error) string {
	if appErr := AsAppError(err); appErr != nil {
		return appErr.Code
	}
	return ErrCodeInternal
}
