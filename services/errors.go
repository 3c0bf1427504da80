package services

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotAttendee  = errors.New("You are not an attendee of this event")

	// ErrOperatorNoCredentials means passphrase mode has no Google refresh
	// token to act with, neither configured nor stored from an earlier start.
	ErrOperatorNoCredentials = errors.New("operator has no Google refresh token, set GOOGLE_REFRESH_TOKEN")
)

// ValidationError is a caller-correctable input problem.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// RemoteError wraps a failure of the calendar provider.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// PersistenceError wraps a failure of the local store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func remoteErr(op string, err error) error {
	return &RemoteError{Op: op, Err: err}
}

func storeErr(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}
