package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrConflict      = errors.New("conflict")
)

// Dictionary lookup failures. ErrWordNotFound means every source answered
// "no data"; ErrServiceUnavailable means at least one source failed in
// transit and none succeeded.
var (
	ErrWordNotFound       = fmt.Errorf("word %w", ErrNotFound)
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrQuizPoolTooSmall   = fmt.Errorf("quiz word pool too small: %w", ErrValidation)
	ErrVisualSuppressed   = fmt.Errorf("visuals disabled for flagged word: %w", ErrForbidden)
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

// LookupError is returned when a term cannot be resolved. Term keeps the
// caller's original input so it can be shown back to the learner.
type LookupError struct {
	Term       string
	Suggestion string
	Err        error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("lookup %q: %v", e.Term, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

// Transient reports whether the failure was a service outage rather than
// an unknown word.
func (e *LookupError) Transient() bool {
	return errors.Is(e.Err, ErrServiceUnavailable)
}
