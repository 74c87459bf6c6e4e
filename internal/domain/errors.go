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
	ErrCodeAlreadyExists    = "ALREADY_EXISTS"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeModelUnavailable = "MODEL_UNAVAILABLE"
	ErrCodeGateway          = "GATEWAY_ERROR"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrTextTooShort       = NewDomainError(ErrCodeValidation, "Text too short to analyze")
	ErrQuestionRequired   = NewDomainError(ErrCodeValidation, "Question and context required")
	ErrFeedbackIncomplete = NewDomainError(ErrCodeValidation, "tosText, summary, and rating are required")
	ErrRatingOutOfRange   = NewDomainError(ErrCodeValidation, "Rating must be between 1 and 5")
	ErrEmailRequired      = NewDomainError(ErrCodeValidation, "Email and password are required")
)

// Not found errors
var (
	ErrUserNotFound = NewDomainError(ErrCodeNotFound, "user not found")
)

// Already exists errors
var (
	ErrEmailAlreadyRegistered = NewDomainError(ErrCodeAlreadyExists, "email is already registered")
)

// Authorization errors
var (
	ErrInvalidCredentials = NewDomainError(ErrCodeUnauthorized, "invalid email or password")
	ErrAccountDisabled    = NewDomainError(ErrCodeUnauthorized, "account is disabled")
)

// ModelUnavailableError signals that the requested generation model was
// rejected by the provider. Suggestion carries the baseline model the caller
// can retry with.
type ModelUnavailableError struct {
	Model      string
	Suggestion string
}

func (e *ModelUnavailableError) Error() string {
	return fmt.Sprintf(
		"Model %q is not available with your current API access level. This typically happens when your API tier doesn't support this model yet. Please try %q, which works with all API tiers, or upgrade your plan to access premium models.",
		e.Model, e.Suggestion,
	)
}

// NewGatewayError wraps an upstream provider failure.
func NewGatewayError(message string, err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeGateway, message, err)
}
