package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	ErrCodeConflict      = "CONFLICT"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeForbidden     = "FORBIDDEN"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrInvalidSourceType    = NewDomainError(ErrCodeValidation, "invalid entry source type")
	ErrInvalidJobStatus     = NewDomainError(ErrCodeValidation, "invalid extraction job status")
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
)

// Not found errors
var (
	ErrEntryNotFound   = NewDomainError(ErrCodeNotFound, "entry not found")
	ErrSummaryNotFound = NewDomainError(ErrCodeNotFound, "summary not found")
	ErrSpaceNotFound   = NewDomainError(ErrCodeNotFound, "space not found")
	ErrAPIKeyNotFound  = NewDomainError(ErrCodeNotFound, "api key not found")
	ErrJobNotFound     = NewDomainError(ErrCodeNotFound, "extraction job not found")
)

// Already exists errors
var (
	ErrSummaryAlreadyExists = NewDomainError(ErrCodeAlreadyExists, "summary already exists")
	ErrSpaceAlreadyExists   = NewDomainError(ErrCodeAlreadyExists, "space already exists")
)

// Conflict errors
var (
	// ErrVersionConflict is returned when a conditional summary update loses
	// the race against a concurrent merge into the same summary.
	ErrVersionConflict = NewDomainError(ErrCodeConflict, "summary version conflict")
)

// Authorization errors
var (
	ErrAPIKeyRevoked = NewDomainError(ErrCodeUnauthorized, "api key has been revoked")
	ErrInvalidAPIKey = NewDomainError(ErrCodeUnauthorized, "invalid api key")
)
