package dashboard

import "errors"

var (
	// ErrEmptyName rejects a vocabulary add whose name is empty after trimming.
	ErrEmptyName = errors.New("name is required")
	// ErrIncompleteForm rejects an editor submit without a description or category.
	ErrIncompleteForm = errors.New("description and category are required")
	// ErrNotConfirmed is returned when a delete is declined at the confirmation step.
	ErrNotConfirmed = errors.New("not confirmed")
	// ErrEditorIdle is returned when submitting while no form is open.
	ErrEditorIdle = errors.New("editor is not open")
	// ErrUnknownTouchpoint is returned when editing an id that is not in the store.
	ErrUnknownTouchpoint = errors.New("unknown touchpoint")
)

// IsSilent reports whether err is a client-side validation outcome that adapters
// should swallow without alerting.
func IsSilent(err error) bool {
	return errors.Is(err, ErrEmptyName) ||
		errors.Is(err, ErrIncompleteForm) ||
		errors.Is(err, ErrNotConfirmed) ||
		errors.Is(err, ErrEditorIdle)
}
