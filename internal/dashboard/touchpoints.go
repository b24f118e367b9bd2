package dashboard

import (
	"context"

	"ohara-cli/internal/model"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// TouchpointStore caches the full touchpoint set.
type TouchpointStore struct {
	backend Backend
	st      *state
	log     zerolog.Logger
}

// All returns the cached touchpoints in backend order.
func (s *TouchpointStore) All() []model.Touchpoint {
	return s.st.get().Touchpoints
}

// Find returns the cached touchpoint with id.
func (s *TouchpointStore) Find(id string) (model.Touchpoint, bool) {
	for _, tp := range s.st.get().Touchpoints {
		if tp.ID == id {
			return tp, true
		}
	}
	return model.Touchpoint{}, false
}

// Load fetches touchpoints and metadata in parallel and publishes both at once.
// If either fetch fails both are reset to empty, so a partial result never renders.
// The failure is logged rather than alerted; it runs on every dashboard activation.
func (s *TouchpointStore) Load(ctx context.Context) error {
	var (
		tps []model.Touchpoint
		md  model.Metadata
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tps, err = s.backend.ListTouchpoints(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		md, err = s.backend.GetMetadata(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		s.log.Warn().Err(err).Msg("failed to load data")
		s.st.update(func(snap *Snapshot) {
			snap.Touchpoints = []model.Touchpoint{}
			snap.Metadata = model.EmptyMetadata()
			snap.TouchpointsErr = err
			snap.MetadataErr = err
		})
		return err
	}

	if tps == nil {
		tps = []model.Touchpoint{}
	}
	s.st.update(func(snap *Snapshot) {
		snap.Touchpoints = tps
		snap.Metadata = md
		snap.TouchpointsErr = nil
		snap.MetadataErr = nil
	})
	s.log.Debug().Int("touchpoints", len(tps)).Int("categories", len(md.Categories)).Int("tags", len(md.Tags)).Msg("loaded")
	return nil
}
