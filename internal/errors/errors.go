package errors

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// APIError is the standardized error response envelope. Message is either a
// single string or, for validation failures, a list of strings.
type APIError struct {
	StatusCode int         `json:"statusCode"`
	ErrorText  string      `json:"error"`
	Message    interface{} `json:"message"`
	Timestamp  string      `json:"timestamp"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if s, ok := e.Message.(string); ok {
		return s
	}
	return e.ErrorText
}

// NewAPIError creates a new APIError
func NewAPIError(statusCode int, message interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorText:  http.StatusText(statusCode),
		Message:    message,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, statusCode int, message interface{}) {
	c.AbortWithStatusJSON(statusCode, NewAPIError(statusCode, message))
}

// Helper functions for common error responses

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	RespondWithError(c, http.StatusUnauthorized, message)
}

// Forbidden sends a 403 response
func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "Access denied"
	}
	RespondWithError(c, http.StatusForbidden, message)
}

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RespondWithError(c, http.StatusNotFound, message)
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	RespondWithError(c, http.StatusBadRequest, message)
}

// BadRequestWithDetails sends a 400 response with a list of messages
func BadRequestWithDetails(c *gin.Context, messages []string) {
	RespondWithError(c, http.StatusBadRequest, messages)
}

// Conflict sends a 409 response
func Conflict(c *gin.Context, message string) {
	if message == "" {
		message = "Resource conflict"
	}
	RespondWithError(c, http.StatusConflict, message)
}

// InternalError sends a 500 response
func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Internal server error"
	}
	RespondWithError(c, http.StatusInternalServerError, message)
}
