package colour

import (
	"errors"
	"fmt"
)

// ErrInvalidColorCount is returned when a palette of a single colour is requested.
var ErrInvalidColorCount = errors.New("colorCount should be between 2 and 20; to get one color, call Color instead of Palette")

// ValidationError reports an option that cannot be normalised. It is raised
// before any pixel data is read.
type ValidationError struct {
	Field string
	Value any
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %v: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err is or wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
