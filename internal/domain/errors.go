package domain

import (
	"fmt"
	"time"
)

// AssessmentError represents a standardized error response
type AssessmentError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// Error implements the error interface
func (e *AssessmentError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error codes for different failure scenarios
const (
	ErrInvalidInput     = "INVALID_INPUT"
	ErrIncompleteInput  = "INCOMPLETE_INPUT"
	ErrModelUnavailable = "MODEL_UNAVAILABLE"
	ErrPrediction       = "PREDICTION_ERROR"
	ErrDatabaseError    = "DATABASE_ERROR"
	ErrCacheError       = "CACHE_ERROR"
	ErrNotFound         = "NOT_FOUND"
	ErrRateLimit        = "RATE_LIMIT_EXCEEDED"
	ErrInternalServer   = "INTERNAL_SERVER_ERROR"
)

// ValidationError represents input validation errors
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// IncompleteInputError is returned when the completeness gate refuses an
// assessment. It carries the exact missing-field list for the caller.
type IncompleteInputError struct {
	MissingFields []string `json:"missing_fields"`
}

// Error implements the error interface
func (e *IncompleteInputError) Error() string {
	return fmt.Sprintf("missing required fields: %v", e.MissingFields)
}

// NewAssessmentError creates a new AssessmentError with timestamp
func NewAssessmentError(code, message, details, requestID string) *AssessmentError {
	return &AssessmentError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
	}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}
