package core

import (
	"errors"
)

// ValidationError represents a business rule violation: a blocked borrower
// or book, no copies available, a bad national ID, or an invalid state
// transition. It is always surfaced to the caller, never auto-retried, and
// blocks the mutation entirely.
type ValidationError struct {
	Reason string
}

// NewValidationError creates a ValidationError with the given reason.
func NewValidationError(reason string) *ValidationError {
	return &ValidationError{Reason: reason}
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// PreconditionError represents an operation invoked on the wrong state or
// cardinality, for example paying a fine that is not pending.
type PreconditionError struct {
	Reason string
}

// NewPreconditionError creates a PreconditionError with the given reason.
func NewPreconditionError(reason string) *PreconditionError {
	return &PreconditionError{Reason: reason}
}

func (e *PreconditionError) Error() string {
	return "precondition failed: " + e.Reason
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsPreconditionError reports whether err is (or wraps) a PreconditionError.
func IsPreconditionError(err error) bool {
	var target *PreconditionError
	return errors.As(err, &target)
}
