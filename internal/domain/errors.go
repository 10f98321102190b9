package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by repositories and services. Controllers map them to HTTP status codes.
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidInput       = errors.New("invalid input")
	ErrEventFull          = errors.New("event is full")
	ErrAlreadyRegistered  = errors.New("already registered for this event")
	ErrNotRegistered      = errors.New("not registered for this event")
	ErrCapacityTooLow     = errors.New("capacity cannot be lower than current participants")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// CapacityError reports a capacity change rejected because the event already has more participants.
type CapacityError struct {
	Current   int
	Requested int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("capacity %d is lower than current participants (%d)", e.Requested, e.Current)
}

func (e *CapacityError) Unwrap() error { return ErrCapacityTooLow }

// InvalidInput wraps ErrInvalidInput with a message describing the offending field.
func InvalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
