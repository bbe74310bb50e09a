package core

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	// ErrValidation is returned when user input is missing. No state changes.
	ErrValidation = errors.New("validation failed")

	// ErrLoad marks a slot that could not be read or decoded.
	// The Service recovers from it by starting with an empty collection.
	ErrLoad = errors.New("failed to load capsules")

	// ErrPersist marks a failed write of the collection to its slot.
	ErrPersist = errors.New("failed to persist capsules")

	// ErrOutOfRange is returned by DeleteAt for a position outside the collection.
	ErrOutOfRange = errors.New("position out of range")

	// ErrNotFound is returned by DeleteByID for an unknown capsule.
	ErrNotFound = errors.New("capsule not found")

	ErrReadOnly = errors.New("storage is in read-only mode")

	ErrUnknownBackend = errors.New("unknown storage backend")
)

// ValidationError reports which input field was empty.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// Unwrap allows errors.Is(err, ErrValidation).
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
