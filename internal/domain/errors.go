package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound marks a referenced hotel (or review target) that does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError marks malformed or missing required input. Paging/sort
// malformation is deliberately NOT a ValidationError; those inputs are
// normalized instead.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "validation: " + e.Reason }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// DependencyError marks an upstream collaborator failure. System is one of
// "embeddings", "pricing", "vector-index", "store", "identity".
type DependencyError struct {
	System string
	Err    error
}

func (e *DependencyError) Error() string { return e.System + ": " + e.Err.Error() }
func (e *DependencyError) Unwrap() error { return e.Err }

// Dependency wraps err as a DependencyError unless it already carries a
// client-fault kind that must pass through (not-found, validation).
func Dependency(system string, err error) error {
	if err == nil {
		return nil
	}
	var ve *ValidationError
	if errors.Is(err, ErrNotFound) || errors.As(err, &ve) {
		return err
	}
	return &DependencyError{System: system, Err: err}
}
