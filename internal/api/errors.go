package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrTransport marks failures where no HTTP response was received (connection
// refused, timeout, cancelled context).
var ErrTransport = errors.New("transport error")

// Error is a non-2xx response from the backend. Message is the body's "error"
// field when present, else the HTTP status text.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return e.Message
}

// IsNotFound reports whether err is a backend 404.
func IsNotFound(err error) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Status == http.StatusNotFound
}

// Message returns the user-facing message for err: the backend-provided message
// when there is one, the status text otherwise, and err.Error() for anything else.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var ae *Error
	if errors.As(err, &ae) {
		if ae.Message != "" {
			return ae.Message
		}
		if txt := http.StatusText(ae.Status); txt != "" {
			return txt
		}
	}
	return err.Error()
}

// ActionError is a failed user-triggered mutation. Its message is the alert text
// shown to the user, e.g. "Failed to add category: category Work: already exists".
type ActionError struct {
	Action string
	Err    error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("Failed to %s: %s", e.Action, Message(e.Err))
}

func (e *ActionError) Unwrap() error { return e.Err }

// WrapAction returns nil for a nil err.
func WrapAction(action string, err error) error {
	if err == nil {
		return nil
	}
	return &ActionError{Action: action, Err: err}
}
