package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Error codes
const (
	// Authentication errors
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeTokenExpired       = "TOKEN_EXPIRED"
	ErrCodeInvalidToken       = "INVALID_TOKEN"

	// Authorization errors
	ErrCodeForbidden = "FORBIDDEN"

	// Validation errors
	ErrCodeInvalidInput     = "INVALID_INPUT"
	ErrCodeMissingField     = "MISSING_FIELD"
	ErrCodeInvalidFormat    = "INVALID_FORMAT"
	ErrCodeInvalidReference = "INVALID_REFERENCE"

	// Resource errors
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	ErrCodeConflict      = "CONFLICT"
	ErrCodeInUse         = "RESOURCE_IN_USE"

	// Service errors
	ErrCodeRateLimited        = "RATE_LIMITED"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// APIError represents a standardized API error response. Status is the HTTP
// status the error maps to and is not serialized.
type APIError struct {
	Status  int         `json:"-"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Is matches two APIErrors with the same status and code, so sentinel values
// built with the constructors below work with errors.Is even after WithMessage.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.Status == t.Status && e.Code == t.Code
}

// WithMessage returns a copy of e carrying a different message.
func (e *APIError) WithMessage(format string, args ...interface{}) *APIError {
	cp := *e
	cp.Message = fmt.Sprintf(format, args...)
	return &cp
}

// NewAPIError creates a new APIError
func NewAPIError(status int, code, message string) *APIError {
	return &APIError{
		Status:  status,
		Code:    code,
		Message: message,
	}
}

// NewAPIErrorWithDetails creates a new APIError with details
func NewAPIErrorWithDetails(status int, code, message string, details interface{}) *APIError {
	return &APIError{
		Status:  status,
		Code:    code,
		Message: message,
		Details: details,
	}
}

// Constructors for the five error kinds surfaced to clients.

func Validation(code, message string) *APIError {
	return NewAPIError(http.StatusBadRequest, code, message)
}

func Unauthenticated(code, message string) *APIError {
	return NewAPIError(http.StatusUnauthorized, code, message)
}

func Denied(code, message string) *APIError {
	return NewAPIError(http.StatusForbidden, code, message)
}

func Missing(code, message string) *APIError {
	return NewAPIError(http.StatusNotFound, code, message)
}

func Conflicting(code, message string) *APIError {
	return NewAPIError(http.StatusConflict, code, message)
}

// Predefined errors
var (
	ErrUnauthorized       = Unauthenticated(ErrCodeUnauthorized, "Authentication required")
	ErrForbidden          = Denied(ErrCodeForbidden, "Access denied")
	ErrNotFound           = Missing(ErrCodeNotFound, "Resource not found")
	ErrInvalidInput       = Validation(ErrCodeInvalidInput, "Invalid request body")
	ErrConflict           = Conflicting(ErrCodeConflict, "Resource conflict")
	ErrInternalError      = NewAPIError(http.StatusInternalServerError, ErrCodeInternalError, "Internal server error")
	ErrServiceUnavailable = NewAPIError(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Service temporarily unavailable")
)

// FieldError describes one failed binding rule.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// Respond writes err as JSON. Typed APIErrors keep their status and code;
// anything else is logged and reported as a bare 500.
func Respond(c *gin.Context, err error) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status != 0 {
		RespondWithError(c, apiErr.Status, apiErr)
		return
	}

	slog.ErrorContext(c.Request.Context(), "unhandled error",
		"error", err,
		"method", c.Request.Method,
		"path", c.FullPath(),
	)
	RespondWithError(c, http.StatusInternalServerError, ErrInternalError)
}

// RespondBindingError converts a gin binding failure into a 400 with per-field
// details when the validator produced them.
func RespondBindingError(c *gin.Context, err error) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		details := make([]FieldError, 0, len(ve))
		for _, fe := range ve {
			details = append(details, FieldError{
				Field: fe.Field(),
				Rule:  fe.Tag(),
				Param: fe.Param(),
			})
		}
		RespondWithError(c, http.StatusBadRequest,
			NewAPIErrorWithDetails(http.StatusBadRequest, ErrCodeInvalidInput, "Request validation failed", details))
		return
	}
	BadRequest(c, "Invalid request body")
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, statusCode int, err *APIError) {
	c.AbortWithStatusJSON(statusCode, err)
}

// Helper functions for common error responses

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	RespondWithError(c, http.StatusUnauthorized, Unauthenticated(ErrCodeUnauthorized, message))
}

// Forbidden sends a 403 response
func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "Access denied"
	}
	RespondWithError(c, http.StatusForbidden, Denied(ErrCodeForbidden, message))
}

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RespondWithError(c, http.StatusNotFound, Missing(ErrCodeNotFound, message))
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	RespondWithError(c, http.StatusBadRequest, Validation(ErrCodeInvalidInput, message))
}

// TooManyRequests sends a 429 response
func TooManyRequests(c *gin.Context) {
	RespondWithError(c, http.StatusTooManyRequests,
		NewAPIError(http.StatusTooManyRequests, ErrCodeRateLimited, "Too many requests"))
}

// InternalError sends a 500 response
func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Internal server error"
	}
	RespondWithError(c, http.StatusInternalServerError,
		NewAPIError(http.StatusInternalServerError, ErrCodeInternalError, message))
}
