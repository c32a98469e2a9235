package selector

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tribeboard/tribeboard/pkg/types"
	"github.com/tribeboard/tribeboard/server/internal/snapshot"
)

// Live is the id of the live data source.
const Live = "live"

// LiveSource is the part of the live cache the selector reads.
type LiveSource interface {
	Get(ctx context.Context) []types.Entry
}

// SnapshotSource is the part of the snapshot store the selector reads.
type SnapshotSource interface {
	Get(id string) (*snapshot.Snapshot, bool)
}

// Selector holds the active source id. The zero value is not usable; call New.
type Selector struct {
	live  LiveSource
	snaps SnapshotSource

	mu     sync.RWMutex
	active string
}

// New returns a Selector reading from live.
func New(live LiveSource, snaps SnapshotSource) *Selector {
	return &Selector{live: live, snaps: snaps, active: Live}
}

// Select makes id the active source. Unknown ids are ignored and Select
// returns false.
func (s *Selector) Select(id string) bool {
	if id != Live {
		if _, ok := s.snaps.Get(id); !ok {
			slog.Debug("selector: ignoring unknown source", "id", id)
			return false
		}
	}
	s.mu.Lock()
	prev := s.active
	s.active = id
	s.mu.Unlock()

	if prev != id {
		slog.Info("selector: source changed", "from", prev, "to", id)
	}
	return true
}

// Current returns the active source id.
func (s *Selector) Current() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Resolve returns the entries of the active source. A snapshot that was
// evicted or deleted after selection yields snapshot.ErrNotFound.
func (s *Selector) Resolve(ctx context.Context) ([]types.Entry, error) {
	id := s.Current()
	if id == Live {
		return s.live.Get(ctx), nil
	}
	snap, ok := s.snaps.Get(id)
	if !ok {
		return nil, fmt.Errorf("selector: resolve %s: %w", id, snapshot.ErrNotFound)
	}
	return snap.Entries, nil
}
