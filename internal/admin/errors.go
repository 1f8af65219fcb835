// ABOUTME: Input validation errors shared by the admin stores
// ABOUTME: Wraps ErrInvalidInput so callers can match any validation failure

package admin

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is wrapped by every validation failure.
var ErrInvalidInput = errors.New("invalid input")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
