package safety

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is returned when the caller breaks the engine's input
// contract. It is always returned, never recovered from internally.
var ErrInvalidInput = errors.New("invalid input")

// InputError describes which argument was rejected.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidInput, e.Field, e.Reason)
}

func (e *InputError) Unwrap() error { return ErrInvalidInput }

func invalid(field, format string, args ...any) error {
	return &InputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
