package model

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when an id cannot be resolved for the caller's scope.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the actor lacks permission.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict is returned on a duplicate unique key or an invalid state transition.
	ErrConflict = errors.New("conflict")
	// ErrValidation is the sentinel wrapped by every ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrTransient marks storage or network failures the caller may retry.
	ErrTransient = errors.New("temporarily unavailable")
)

// ValidationError carries field level messages for malformed input.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string]string{}}
}

func (e *ValidationError) Add(field, msg string) {
	if _, exists := e.Fields[field]; exists {
		return
	}
	e.Fields[field] = msg
}

func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

// OrNil returns nil when no field failed, so callers can `return v.OrNil()`.
func (e *ValidationError) OrNil() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
