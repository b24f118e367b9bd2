package dashboard

import (
	"context"
	"strings"

	"ohara-cli/internal/api"
	"ohara-cli/internal/model"

	"github.com/rs/zerolog"
)

// MetadataStore holds the category/tag vocabulary.
type MetadataStore struct {
	backend MetadataBackend
	st      *state
	log     zerolog.Logger
}

// Get returns the current vocabulary and the last load error.
func (s *MetadataStore) Get() (model.Metadata, error) {
	snap := s.st.get()
	return snap.Metadata, snap.MetadataErr
}

// Load replaces the vocabulary. On failure it falls back to an empty vocabulary
// and records the error so renderers show a failure state instead of empty lists.
func (s *MetadataStore) Load(ctx context.Context) error {
	md, err := s.backend.GetMetadata(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to load metadata")
		s.st.update(func(snap *Snapshot) {
			snap.Metadata = model.EmptyMetadata()
			snap.MetadataErr = err
		})
		return err
	}
	s.st.update(func(snap *Snapshot) {
		snap.Metadata = md
		snap.MetadataErr = nil
	})
	return nil
}

func (s *MetadataStore) AddCategory(ctx context.Context, name string) error {
	return s.add(ctx, "add category", name, s.backend.AddCategory)
}

func (s *MetadataStore) AddTag(ctx context.Context, name string) error {
	return s.add(ctx, "add tag", name, s.backend.AddTag)
}

func (s *MetadataStore) RemoveCategory(ctx context.Context, name string) error {
	return s.remove(ctx, "remove category", name, s.backend.RemoveCategory)
}

func (s *MetadataStore) RemoveTag(ctx context.Context, name string) error {
	return s.remove(ctx, "remove tag", name, s.backend.RemoveTag)
}

func (s *MetadataStore) add(ctx context.Context, action, name string, call func(context.Context, string) error) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if err := call(ctx, name); err != nil {
		return api.WrapAction(action, err)
	}
	s.log.Debug().Str("action", action).Str("name", name).Msg("metadata updated")
	// A failed reload is surfaced through the store's failure state, not as an alert.
	_ = s.Load(ctx)
	return nil
}

// remove matches name exactly and asks for no confirmation.
func (s *MetadataStore) remove(ctx context.Context, action, name string, call func(context.Context, string) error) error {
	if err := call(ctx, name); err != nil {
		return api.WrapAction(action, err)
	}
	s.log.Debug().Str("action", action).Str("name", name).Msg("metadata updated")
	_ = s.Load(ctx)
	return nil
}
