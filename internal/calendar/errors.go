package calendar

import (
	"errors"
	"fmt"
)

var (
	// ErrReadOnly is returned when writing to a calendar that does not allow it.
	ErrReadOnly = errors.New("calendar is read-only")
	// ErrNotFound is returned when an event ID is not known to the store.
	ErrNotFound = errors.New("event not found")
	// ErrUnknownCalendar is returned when a calendar ID is not known to the store.
	ErrUnknownCalendar = errors.New("unknown calendar")
)

// StoreError wraps a failed backend operation.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

// ValidationError rejects input before it reaches a backend.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
