package cli

import (
	"errors"
	"fmt"

	"ohara-cli/internal/dashboard"
)

type notFoundError struct {
	kind string
	id   string
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.kind, e.id)
}

func errNotFound(kind, id string) error {
	return notFoundError{kind: kind, id: id}
}

type invalidFlagError struct {
	flag string
	msg  string
}

func (e invalidFlagError) Error() string {
	return fmt.Sprintf("invalid --%s: %s", e.flag, e.msg)
}

func errInvalidFlag(flag, msg string) error {
	return invalidFlagError{flag: flag, msg: msg}
}

var errAborted = errors.New("aborted")

// userError maps core errors to CLI messages. Validation outcomes that the TUI
// swallows still need a message and exit status here.
func userError(err error) error {
	switch {
	case errors.Is(err, dashboard.ErrNotConfirmed):
		return errAborted
	case errors.Is(err, dashboard.ErrIncompleteForm),
		errors.Is(err, dashboard.ErrEmptyName):
		return err
	}
	if msg := dashboard.AlertMessage(err); msg != "" {
		return errors.New(msg)
	}
	return err
}
