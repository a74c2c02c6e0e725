// Package errors provides standardized error handling for the API
// surface. The recommendation core itself never raises on malformed
// input; these errors exist only at the service boundary.
package errors

import (
	"fmt"
	"net/http"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeQueryRequired    ErrorCode = "QUERY_REQUIRED"
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidPayload   ErrorCode = "INVALID_PAYLOAD"

	ErrCodeCatalogUnavailable ErrorCode = "CATALOG_UNAVAILABLE"
	ErrCodeQueryExecution     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeIndexUnavailable   ErrorCode = "INDEX_UNAVAILABLE"
	ErrCodeCacheUnavailable   ErrorCode = "CACHE_UNAVAILABLE"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// HTTPStatus maps the error code to an HTTP response status.
func (e *StandardError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeQueryRequired, ErrCodeValidationFailed, ErrCodeInvalidPayload:
		return http.StatusBadRequest
	case ErrCodeCatalogUnavailable, ErrCodeIndexUnavailable, ErrCodeCacheUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ==========================
// 2. Error Constructors
// ==========================

// NewQueryRequiredError rejects a search without query text.
func NewQueryRequiredError() *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryRequired,
		Message:   "Query required",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationError wraps schema validation failures.
func NewValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Request failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidPayloadError flags an unparseable request body.
func NewInvalidPayloadError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidPayload,
		Message:   "Request body is not valid JSON",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogUnavailableError is a retryable catalog store failure.
func NewCatalogUnavailableError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogUnavailable,
		Message:   "Gift catalog is unavailable",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError is the catch-all for unexpected failures.
func NewInternalError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Internal server error",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}
