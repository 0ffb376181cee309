package crm

import "errors"

// ErrNotFound marks a referenced record missing from a snapshot or the
// database. Matching skips such records; handlers map it to 404.
var ErrNotFound = errors.New("record not found")

// ValidationError rejects malformed input before any scoring runs.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Reason
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
