package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is an error that carries the HTTP status and the message shown to clients.
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: status code %d, message: %s", e.StatusCode, e.Message)
}

func NewAPIError(statusCode int, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Message:    message,
	}
}

func BadRequest(message string) *APIError   { return NewAPIError(http.StatusBadRequest, message) }
func Unauthorized(message string) *APIError { return NewAPIError(http.StatusUnauthorized, message) }
func NotFound(message string) *APIError     { return NewAPIError(http.StatusNotFound, message) }

// Pre-defined error types
var (
	ErrInvalidBody        = BadRequest("Invalid request body")
	ErrMissingFields      = BadRequest("Missing required fields")
	ErrEmailTaken         = NewAPIError(http.StatusConflict, "User with this email already exists")
	ErrInvalidCredentials = Unauthorized("Invalid email or password")
	ErrTooManyAttempts    = NewAPIError(http.StatusTooManyRequests, "Too many login attempts, please try again later")
	ErrInternal           = NewAPIError(http.StatusInternalServerError, "Internal server error")
)

// From converts any error into an APIError. Errors that are not
// already API errors become a generic 500 so storage details never leak.
func From(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return ErrInternal
}
