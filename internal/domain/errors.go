package domain

import "errors"

// Common domain errors
var (
	// Optimizer errors
	ErrNoEvaluations    = errors.New("no evaluations possible")
	ErrAlreadyEvaluated = errors.New("candidate already evaluated")

	// LLM errors
	ErrGenerationFailed = errors.New("generation call failed")
	ErrLLMUnavailable   = errors.New("LLM service unavailable")
	ErrEmptyCompletion  = errors.New("LLM returned an empty completion")

	// Digest errors
	ErrEmptyPayload = errors.New("payload has no content")

	// Delivery errors
	ErrNotConfigured  = errors.New("transport not configured")
	ErrDeliveryFailed = errors.New("delivery failed")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")
	ErrEmptyContent = errors.New("content cannot be empty")
)

// DomainError wraps a domain error with additional context
type DomainError struct {
	Err     error
	Message string
}

func (e *DomainError) Error() string {
	if e.Message != "" {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func NewDomainError(err error, message string) *DomainError {
	return &DomainError{
		Err:     err,
		Message: message,
	}
}
