package domain

import (
	"errors"
	"fmt"
)

// ErrValidation is matched by every *ValidationError via errors.Is.
var ErrValidation = errors.New("validation error")

// ValidationError reports invalid engine input: attempts outside 1..6, a malformed
// trigger-set specification, or a sequence with an undeclared or wrong direction.
// Validation errors are never retried.
type ValidationError struct {
	Field  string // offending input, e.g. "attempts"
	Reason string // human readable reason
	Err    error  // optional package sentinel, e.g. classifier.ErrInvalidAttempts
}

// NewValidationError builds a ValidationError wrapping an optional sentinel.
func NewValidationError(field, reason string, err error) *ValidationError {
	return &ValidationError{Field: field, Reason: reason, Err: err}
}

func (e *ValidationError) Error() string {
	msg := "validation: "
	if e.Field != "" {
		msg += e.Field + ": "
	}
	msg += e.Reason
	if e.Err != nil {
		msg = fmt.Sprintf("%s (%v)", msg, e.Err)
	}
	return msg
}

// Is reports true for ErrValidation so callers can match the whole taxonomy.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Unwrap exposes the package sentinel, if any.
func (e *ValidationError) Unwrap() error {
	return e.Err
}
