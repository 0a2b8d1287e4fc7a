package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidPayload = errors.New("invalid payload")
	ErrMalformedID    = errors.New("malformed id")
	ErrNotFound       = errors.New("not found")
)

var (
	ErrEventNotFound  = fmt.Errorf("event %w", ErrNotFound)
	ErrTicketNotFound = fmt.Errorf("ticket %w", ErrNotFound)
)

var (
	ErrDuplicateName  = errors.New("event name already in use")
	ErrDuplicateCode  = errors.New("ticket code already registered for this event")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrAlreadyUsed    = errors.New("ticket already used")
)

// ErrEventAlreadyHappened is returned when a ticket is created or used for an
// event whose date is not in the future. Clients match on "already happened".
var ErrEventAlreadyHappened = errors.New("event already happened")

// FieldError describes one rejected field of a payload.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError carries every field problem found in a payload. It matches
// ErrInvalidPayload under errors.Is.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrInvalidPayload.Error()
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Reason
	}
	return ErrInvalidPayload.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidPayload
}

// Add records a field problem, keeping only the first reason per field.
func (e *ValidationError) Add(field, reason string) {
	for _, f := range e.Fields {
		if f.Field == field {
			return
		}
	}
	e.Fields = append(e.Fields, FieldError{Field: field, Reason: reason})
}

// OrNil returns e when it holds at least one field, nil otherwise.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
