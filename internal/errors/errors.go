package errors

import (
	"fmt"
	"net/http"
)

// Error codes carried in the error_code extension of problem responses
const (
	CodeValidation         = "VALIDATION_FAILED"
	CodeNotFound           = "NOT_FOUND"
	CodeBulletinNotFound   = "BULLETIN_NOT_FOUND"
	CodeDatasetNotFound    = "DATASET_NOT_FOUND"
	CodeInstrumentNotFound = "INSTRUMENT_NOT_FOUND"
	CodeNoActiveDate       = "NO_ACTIVE_DATE"
	CodeRateLimited        = "RATE_LIMIT_EXCEEDED"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// APIError is an error with a fixed HTTP status and error code
type APIError struct {
	StatusCode int         `json:"-"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.ErrorCode, e.Message)
}

// ValidationError names the request field that failed validation
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new API error
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates a new API error with details
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// ErrValidation creates a validation error for one query or path parameter
func ErrValidation(field, message string) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeValidation, "Request validation failed", ValidationError{
		Field:   field,
		Message: message,
	})
}

// NotFoundError creates a generic not found error
func NotFoundError(resource string) *APIError {
	return NewWithDetails(http.StatusNotFound, CodeNotFound, fmt.Sprintf("%s not found", resource), resource)
}

// ErrBulletinNotFound reports an unknown bulletin id
func ErrBulletinNotFound(id string) *APIError {
	return NewWithDetails(http.StatusNotFound, CodeBulletinNotFound,
		fmt.Sprintf("bulletin %q not found", id), map[string]string{"bulletin": id})
}

// ErrDatasetNotFound reports an unknown dataset id
func ErrDatasetNotFound(dataset string) *APIError {
	return NewWithDetails(http.StatusNotFound, CodeDatasetNotFound,
		fmt.Sprintf("dataset %q not found", dataset), map[string]string{"dataset": dataset})
}

// ErrInstrumentNotFound reports a key that is not part of its dataset
func ErrInstrumentNotFound(dataset, key string) *APIError {
	return NewWithDetails(http.StatusNotFound, CodeInstrumentNotFound,
		fmt.Sprintf("instrument %q not found in dataset %q", key, dataset),
		map[string]string{"dataset": dataset, "key": key})
}

// ErrRateLimited asks the client to come back after retryAfter seconds
func ErrRateLimited(retryAfter int) *APIError {
	return NewWithDetails(http.StatusTooManyRequests, CodeRateLimited,
		fmt.Sprintf("Rate limit exceeded. Please retry after %d seconds", retryAfter),
		map[string]int{"retry_after": retryAfter})
}

// ErrNoActiveDate reports that neither a bulletin nor an observation is
// loaded, so no view can be anchored
func ErrNoActiveDate() *APIError {
	return New(http.StatusServiceUnavailable, CodeNoActiveDate, "No bulletin or observation is loaded")
}
