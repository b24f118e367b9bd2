package dashboard

import (
	"sync"

	"ohara-cli/internal/model"
)

// Snapshot is one consistent view of both stores. Slices are never mutated after
// a snapshot is published; reloads replace them wholesale.
type Snapshot struct {
	Touchpoints []model.Touchpoint
	Metadata    model.Metadata

	// TouchpointsErr is the last combined-load failure, if any.
	TouchpointsErr error
	// MetadataErr is the last metadata-load failure, if any.
	MetadataErr error
}

// LoadFailed reports whether either store is showing a failure state.
func (s Snapshot) LoadFailed() bool {
	return s.TouchpointsErr != nil || s.MetadataErr != nil
}

// state holds the published snapshot. Readers always see fully-old or fully-new data.
type state struct {
	mu   sync.RWMutex
	snap Snapshot
}

func newState() *state {
	return &state{snap: Snapshot{
		Touchpoints: []model.Touchpoint{},
		Metadata:    model.EmptyMetadata(),
	}}
}

func (s *state) get() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

func (s *state) update(fn func(*Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.snap)
}
