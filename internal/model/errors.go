package model

import "fmt"

// MalformedInputError is returned when raw text carries nothing extractable.
type MalformedInputError struct {
	Source string
	Reason string
}

func (e *MalformedInputError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("malformed %s: %s", e.Source, e.Reason)
	}
	return fmt.Sprintf("malformed input: %s", e.Reason)
}

// SessionClosedError is returned for operations on a terminal interview session.
type SessionClosedError struct {
	SessionID SessionID
	State     SessionState
}

func (e *SessionClosedError) Error() string {
	return fmt.Sprintf("session %s is closed (state: %s)", e.SessionID, e.State)
}
