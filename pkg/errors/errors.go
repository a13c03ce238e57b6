package errors

import (
	"fmt"
	"net/http"
)

// ErrorType classifies an AppError for logging and status mapping.
type ErrorType string

const (
	ValidationError     ErrorType = "validation"
	NotFoundError       ErrorType = "not_found"
	AuthenticationError ErrorType = "authentication"
	AuthorizationError  ErrorType = "authorization"
	ConflictError       ErrorType = "conflict"
	InternalError       ErrorType = "internal"
)

// AppError is the error currency of the application: a typed, coded error
// that knows its HTTP status.
type AppError struct {
	Type       ErrorType
	Code       string
	Message    string
	StatusCode int
	Details    map[string]interface{}
	Err        error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause
func (e *AppError) Unwrap() error {
	return e.Err
}

// Wrap attaches a cause to the error and returns it
func (e *AppError) Wrap(err error) *AppError {
	e.Err = err
	return e
}

// WithDetail attaches a key/value detail and returns the error
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates an AppError of the given type
func New(errType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:       errType,
		Code:       code,
		Message:    message,
		StatusCode: statusForType(errType),
	}
}

func statusForType(errType ErrorType) int {
	switch errType {
	case ValidationError:
		return http.StatusBadRequest
	case NotFoundError:
		return http.StatusNotFound
	case AuthenticationError:
		return http.StatusUnauthorized
	case AuthorizationError:
		return http.StatusForbidden
	case ConflictError:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ValidationErrorf creates a validation error with a formatted message
func ValidationErrorf(code, format string, args ...interface{}) *AppError {
	return New(ValidationError, code, fmt.Sprintf(format, args...))
}

// NotFoundErrorf creates a not-found error with a formatted message
func NotFoundErrorf(code, format string, args ...interface{}) *AppError {
	return New(NotFoundError, code, fmt.Sprintf(format, args...))
}

// AuthenticationErrorf creates an authentication error with a formatted message
func AuthenticationErrorf(code, format string, args ...interface{}) *AppError {
	return New(AuthenticationError, code, fmt.Sprintf(format, args...))
}

// AuthorizationErrorf creates an authorization error with a formatted message
func AuthorizationErrorf(code, format string, args ...interface{}) *AppError {
	return New(AuthorizationError, code, fmt.Sprintf(format, args...))
}

// ConflictErrorf creates a conflict error with a formatted message
func ConflictErrorf(code, format string, args ...interface{}) *AppError {
	return New(ConflictError, code, fmt.Sprintf(format, args...))
}

// InternalErrorf creates an internal error with a formatted message
func InternalErrorf(code, format string, args ...interface{}) *AppError {
	return New(InternalError, code, fmt.Sprintf(format, args...))
}

// IsNotFound reports whether err is a not-found AppError
func IsNotFound(err error) bool {
	ae, ok := err.(*AppError)
	return ok && ae.Type == NotFoundError
}

// IsValidation reports whether err is a validation AppError
func IsValidation(err error) bool {
	ae, ok := err.(*AppError)
	return ok && ae.Type == ValidationError
}
