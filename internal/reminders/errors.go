package reminders

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks request validation failures. Wrapped errors carry
	// the detail.
	ErrInvalidInput = errors.New("invalid input")
	// ErrMissingOwner is reported for notes the evaluator cannot attribute to a user.
	ErrMissingOwner = errors.New("note has no owner")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
