package types

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"wsadmin/internal/storage"
)

// Error represents error information in API responses
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ErrorWithContext is an API error carrying its HTTP status and, for
// internal errors, the underlying cause. The cause is logged but never sent
// to clients.
type ErrorWithContext struct {
	Status  int
	Code    string
	Message string
	Details string
	Cause   error
}

func (e *ErrorWithContext) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ErrorWithContext) Unwrap() error {
	return e.Cause
}

// Response returns the client-facing envelope for e.
func (e *ErrorWithContext) Response() Response {
	return ErrorResponse(e.Code, e.Message, e.Details)
}

// AbortWithError writes err as the response, records it on the context for
// the logging middleware, and stops the handler chain.
func AbortWithError(c *gin.Context, err *ErrorWithContext) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(err.Status, err.Response())
}

// ErrorResponse creates an error API response
func ErrorResponse(code, message, details string) Response {
	return Response{
		Success: false,
		Error: &Error{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// ValidationError creates a 400 error
func ValidationError(details string) *ErrorWithContext {
	return &ErrorWithContext{
		Status:  http.StatusBadRequest,
		Code:    "VALIDATION_ERROR",
		Message: "Invalid input data",
		Details: details,
	}
}

// NotFoundError creates a 404 error for resource
func NotFoundError(resource string) *ErrorWithContext {
	return &ErrorWithContext{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: "Resource not found",
		Details: resource + " not found",
	}
}

// ConflictError creates a 409 error
func ConflictError(details string) *ErrorWithContext {
	return &ErrorWithContext{
		Status:  http.StatusConflict,
		Code:    "CONFLICT",
		Message: "Resource conflict",
		Details: details,
	}
}

// InternalError creates a 500 error. details is returned to the client and
// cause is only logged.
func InternalError(details string, cause error) *ErrorWithContext {
	return &ErrorWithContext{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: "Internal server error",
		Details: details,
		Cause:   cause,
	}
}

// TimeoutError creates a 504 error
func TimeoutError(details string) *ErrorWithContext {
	return &ErrorWithContext{
		Status:  http.StatusGatewayTimeout,
		Code:    "TIMEOUT",
		Message: "Request timeout",
		Details: details,
	}
}

// FromStorageError maps storage errors onto API errors. resource names the
// entity for 404 responses and action describes the failed operation for 500
// responses.
func FromStorageError(err error, resource, action string) *ErrorWithContext {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return NotFoundError(resource)
	case errors.Is(err, storage.ErrInvalid):
		return ValidationError(err.Error())
	case errors.Is(err, storage.ErrConflict), errors.Is(err, storage.ErrInvalidState):
		return ConflictError(err.Error())
	default:
		return InternalError("failed to "+action, err)
	}
}
