package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"ohara-cli/internal/api"
	"ohara-cli/internal/model"

	"github.com/rs/zerolog"
)

// DefaultDescriptionWidth is the display width list rows truncate descriptions to.
const DefaultDescriptionWidth = 80

// Confirmer gates destructive actions. Confirm returns false to abort.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) { return f(ctx, prompt) }

// Confirmed is a Confirmer that always agrees, for callers that already asked
// (e.g. a TUI modal or a --yes flag).
var Confirmed Confirmer = ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })

// DeletePrompt is the confirmation question for deleting a touchpoint.
const DeletePrompt = "Delete this touchpoint?"

// Session is the dashboard's single owner of mutable state: both stores, the
// filter and the editor. Everything else is computed from a Snapshot.
type Session struct {
	backend     Backend
	st          *state
	metadata    *MetadataStore
	touchpoints *TouchpointStore
	editor      *Editor
	log         zerolog.Logger
	now         func() time.Time
	descWidth   int

	mu     sync.Mutex
	filter FilterState
}

type SessionOption func(*Session)

func WithLogger(l zerolog.Logger) SessionOption {
	return func(s *Session) { s.log = l }
}

// WithClock overrides time.Now for date filtering and the timeline.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

func WithDescriptionWidth(w int) SessionOption {
	return func(s *Session) { s.descWidth = w }
}

func NewSession(backend Backend, opts ...SessionOption) *Session {
	s := &Session{
		backend:   backend,
		st:        newState(),
		editor:    &Editor{},
		log:       zerolog.Nop(),
		now:       time.Now,
		descWidth: DefaultDescriptionWidth,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.metadata = &MetadataStore{backend: backend, st: s.st, log: s.log}
	s.touchpoints = &TouchpointStore{backend: backend, st: s.st, log: s.log}
	return s
}

func (s *Session) Metadata() *MetadataStore { return s.metadata }

func (s *Session) Touchpoints() *TouchpointStore { return s.touchpoints }

func (s *Session) Editor() *Editor { return s.editor }

func (s *Session) Now() time.Time { return s.now() }

// Snapshot returns the currently published store contents.
func (s *Session) Snapshot() Snapshot { return s.st.get() }

// Activate is the dashboard activation event: a full combined reload.
func (s *Session) Activate(ctx context.Context) error { return s.Reload(ctx) }

// Reload refreshes both stores and drops filter selections that left the vocabulary.
func (s *Session) Reload(ctx context.Context) error {
	err := s.touchpoints.Load(ctx)
	s.pruneFilter()
	return err
}

func (s *Session) pruneFilter() {
	md := s.st.get().Metadata
	s.mu.Lock()
	s.filter = s.filter.prune(md)
	s.mu.Unlock()
}

func (s *Session) Filter() FilterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.filter
	f.Tags = append([]string(nil), s.filter.Tags...)
	return f
}

func (s *Session) SetFilter(f FilterState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f.Tags = append([]string(nil), f.Tags...)
	s.filter = f
}

// UpdateFilter applies fn to the filter under the session lock.
func (s *Session) UpdateFilter(fn func(*FilterState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.filter)
}

func (s *Session) SetCategory(category string) {
	s.UpdateFilter(func(f *FilterState) { f.Category = category })
}

func (s *Session) ToggleTag(tag string) {
	s.UpdateFilter(func(f *FilterState) { f.ToggleTag(tag) })
}

func (s *Session) CycleDateRange() {
	s.UpdateFilter(func(f *FilterState) { f.Range = f.Range.Next() })
}

// Filtered applies the current filter to the current snapshot.
func (s *Session) Filtered() []model.Touchpoint {
	return Filter(s.st.get().Touchpoints, s.Filter(), s.now())
}

// Timeline aggregates the filtered touchpoints.
func (s *Session) Timeline() []Bucket {
	return Timeline(s.Filtered(), s.now())
}

// Render builds the display model for the current state.
func (s *Session) Render() DisplayModel {
	return Render(RenderInput{
		Snapshot:         s.st.get(),
		Filter:           s.Filter(),
		Editor:           s.editorState(),
		Now:              s.now(),
		DescriptionWidth: s.descWidth,
	})
}

func (s *Session) editorState() EditorState {
	s.editor.mu.Lock()
	defer s.editor.mu.Unlock()
	f := s.editor.form
	f.Tags = append([]string(nil), s.editor.form.Tags...)
	return EditorState{Mode: s.editor.mode, EditingID: s.editor.editingID, Form: f}
}

// BeginCreate opens an empty form.
func (s *Session) BeginCreate() { s.editor.BeginCreate() }

// BeginEdit opens the form seeded from the cached touchpoint id.
func (s *Session) BeginEdit(id string) error {
	tp, ok := s.touchpoints.Find(id)
	if !ok {
		return ErrUnknownTouchpoint
	}
	s.editor.BeginEdit(tp)
	return nil
}

func (s *Session) CancelEditor() { s.editor.Cancel() }

// SubmitEditor validates and sends the open form. Invalid forms return
// ErrIncompleteForm with no API call and the editor stays open. A backend
// failure also keeps the form open. On success the editor returns to Idle and
// the stores are reloaded before returning.
func (s *Session) SubmitEditor(ctx context.Context) (model.Touchpoint, error) {
	sub, err := s.editor.prepare(s.Snapshot().Metadata)
	if err != nil {
		return model.Touchpoint{}, err
	}

	var tp model.Touchpoint
	if sub.mode == EditorEditing {
		tp, err = s.backend.UpdateTouchpoint(ctx, sub.id, sub.input)
	} else {
		tp, err = s.backend.CreateTouchpoint(ctx, sub.input)
	}
	if err != nil {
		return model.Touchpoint{}, api.WrapAction("save touchpoint", err)
	}
	s.log.Debug().Str("id", tp.ID).Stringer("mode", sub.mode).Msg("touchpoint saved")

	s.editor.finish(sub)
	_ = s.Reload(ctx)
	return tp, nil
}

// DeleteTouchpoint asks c before deleting id, then reloads.
func (s *Session) DeleteTouchpoint(ctx context.Context, id string, c Confirmer) error {
	if c == nil {
		return ErrNotConfirmed
	}
	ok, err := c.Confirm(ctx, DeletePrompt)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotConfirmed
	}
	if err := s.backend.DeleteTouchpoint(ctx, id); err != nil {
		return api.WrapAction("delete touchpoint", err)
	}
	s.log.Debug().Str("id", id).Msg("touchpoint deleted")
	_ = s.Reload(ctx)
	return nil
}

func (s *Session) AddCategory(ctx context.Context, name string) error {
	return s.afterMetadata(s.metadata.AddCategory(ctx, name))
}

func (s *Session) RemoveCategory(ctx context.Context, name string) error {
	return s.afterMetadata(s.metadata.RemoveCategory(ctx, name))
}

func (s *Session) AddTag(ctx context.Context, name string) error {
	return s.afterMetadata(s.metadata.AddTag(ctx, name))
}

func (s *Session) RemoveTag(ctx context.Context, name string) error {
	return s.afterMetadata(s.metadata.RemoveTag(ctx, name))
}

func (s *Session) afterMetadata(err error) error {
	if err == nil {
		s.pruneFilter()
	}
	return err
}

// AlertMessage is the text to show the user for err, or "" when err needs no alert.
func AlertMessage(err error) string {
	if err == nil || IsSilent(err) {
		return ""
	}
	var ae *api.ActionError
	if errors.As(err, &ae) {
		return ae.Error()
	}
	return api.Message(err)
}
