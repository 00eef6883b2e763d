package domain

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when the requested vacation does not exist.
// Handlers map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails field rules. The concrete error
// is a *ValidationError carrying every violation.
// Handlers map this to HTTP 400.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when another vacation already has the same
// destination, start date and end date.
var ErrConflict = errors.New("conflict")

// ErrAssetRejected is returned by the asset store when an image has an
// unaccepted media type or exceeds the size ceiling.
var ErrAssetRejected = errors.New("asset rejected")

// ErrPersistence means the database acknowledged a write but the result was
// inconsistent (e.g. zero rows matched an update that was expected to hit one).
var ErrPersistence = errors.New("persistence error")

// ErrUnavailable means the database could not be reached.
var ErrUnavailable = errors.New("storage unavailable")

// ErrAlreadyMember is returned by Follow when the user already follows the vacation.
var ErrAlreadyMember = errors.New("already following")

// ErrNotMember is returned by Unfollow when the user does not follow the vacation.
var ErrNotMember = errors.New("not following")

// FieldError is a single field-level violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects all violations found for one payload.
// errors.Is(err, ErrValidation) is true for any *ValidationError.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Field + ": " + f.Message
	}
	return ErrValidation.Error() + ": " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
