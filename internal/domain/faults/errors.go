package faults

import (
	"errors"
	"fmt"
)

// ErrNotFound signals that a referenced audit, control or framework does not exist.
var ErrNotFound = errors.New("not found")

// ErrValidation marks rejected caller input. Wrap with Invalidf for context.
var ErrValidation = errors.New("invalid input")

// Invalidf builds a validation error with a caller-facing description.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundf builds a not-found error naming the missing entity.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}
