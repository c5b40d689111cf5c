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
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeUpstream         = "UPSTREAM_ERROR"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
)

// Validation errors
var (
	ErrMissingSpaceKey        = NewDomainError(ErrCodeValidation, "space key is required")
	ErrEmptyQuestion          = NewDomainError(ErrCodeValidation, "question cannot be empty")
	ErrMissingConversationKey = NewDomainError(ErrCodeValidation, "either a user or a channel must be provided")
)

// Not found errors
var (
	ErrPageNotFound  = NewDomainError(ErrCodeNotFound, "page not found")
	ErrSpaceNotFound = NewDomainError(ErrCodeNotFound, "space not found")
)

// Authorization errors
var (
	ErrBadSignature    = NewDomainError(ErrCodeUnauthorized, "request signature does not verify")
	ErrStaleTimestamp  = NewDomainError(ErrCodeUnauthorized, "request timestamp outside the replay window")
	ErrInvalidAPIToken = NewDomainError(ErrCodeUnauthorized, "invalid api token")
)

// Upstream errors
var (
	ErrSlackUpstream      = NewDomainError(ErrCodeUpstream, "slack api call failed")
	ErrConfluenceUpstream = NewDomainError(ErrCodeUpstream, "confluence api call failed")
	ErrAssistantUpstream  = NewDomainError(ErrCodeUpstream, "assistant call failed")
)

// Operation errors
var (
	ErrAssistantDisabled = NewDomainError(ErrCodeInvalidOperation, "assistant is not configured")
	ErrNoAnswer          = NewDomainError(ErrCodeInvalidOperation, "assistant produced no answer")
)
