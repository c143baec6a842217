package domain

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when an item does not exist in the queue
var ErrNotFound = errors.New("follow-up item not found")

// ErrMalformedRecord is returned when a persisted record fails to decode
var ErrMalformedRecord = errors.New("malformed record")

// ValidationError carries the list of rules an input violated.
// It is never retried and always surfaced to the caller.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

// IsValidationError reports whether err is a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
