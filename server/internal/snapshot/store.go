package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/tribeboard/tribeboard/pkg/types"
	"github.com/tribeboard/tribeboard/server/internal/config"
	"github.com/tribeboard/tribeboard/server/internal/metrics"
	"github.com/tribeboard/tribeboard/server/internal/source"
)

// Capture triggers, used as a metrics label.
const (
	TriggerScheduled = "scheduled"
	TriggerManual    = "manual"
)

// Snapshot is one frozen copy of the upstream leaderboard. It is never
// modified after it is registered.
type Snapshot struct {
	ID        string
	Raw       []byte
	Entries   []types.Entry
	CreatedAt time.Time
}

// Meta describes a snapshot without its payload.
type Meta struct {
	ID          string    `json:"id"`
	DisplayTime string    `json:"display_time"`
	CreatedAt   time.Time `json:"created_at"`
	Entries     int       `json:"entries"`
}

// Store captures, persists and serves snapshots.
type Store struct {
	src           source.Fetcher
	dir           string
	interval      time.Duration
	retention     int
	diskRetention int
	reg           *Registry

	capturing atomic.Bool

	now  func() time.Time        // injectable for deterministic tests
	tick func() <-chan time.Time // nil uses a ticker on interval
}

// New returns a Store writing to cfg.Dir. It does not touch the disk until
// LoadExisting or the first capture.
func New(src source.Fetcher, cfg config.SnapshotConfig) *Store {
	return &Store{
		src:           src,
		dir:           cfg.Dir,
		interval:      cfg.Interval,
		retention:     cfg.Retention,
		diskRetention: cfg.DiskRetention,
		reg:           NewRegistry(cfg.Retention),
		now:           time.Now,
	}
}

// Run captures a snapshot every interval until ctx is cancelled. Failed
// captures are logged; the loop keeps going.
func (s *Store) Run(ctx context.Context) {
	var ch <-chan time.Time
	if s.tick != nil {
		ch = s.tick()
	} else {
		t := time.NewTicker(s.interval)
		defer t.Stop()
		ch = t.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ch:
			if _, err := s.Capture(ctx, TriggerScheduled); err != nil {
				slog.Warn("snapshot: scheduled capture failed", "err", err)
			}
		}
	}
}

// CreateNow runs one capture synchronously and reports whether it succeeded.
func (s *Store) CreateNow(ctx context.Context) bool {
	snap, err := s.Capture(ctx, TriggerManual)
	if err != nil {
		slog.Warn("snapshot: manual capture failed", "err", err)
		return false
	}
	slog.Info("snapshot: manual capture", "id", snap.ID)
	return true
}

// Capture fetches the upstream payload, writes it to disk and registers it.
// Only one capture runs at a time; a concurrent call returns
// ErrCaptureInProgress. Nothing is registered unless the file was written.
func (s *Store) Capture(ctx context.Context, trigger string) (*Snapshot, error) {
	if !s.capturing.CompareAndSwap(false, true) {
		metrics.SnapshotCaptures.WithLabelValues(trigger, metrics.OutcomeSkipped).Inc()
		return nil, ErrCaptureInProgress
	}
	defer s.capturing.Store(false)

	snap, err := s.capture(ctx)
	metrics.SnapshotCaptures.WithLabelValues(trigger, captureOutcome(err)).Inc()
	if err != nil {
		return nil, err
	}
	metrics.SnapshotRegistrySize.Set(float64(s.reg.Len()))
	s.prune()
	return snap, nil
}

func (s *Store) capture(ctx context.Context) (*Snapshot, error) {
	p, err := s.src.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot: fetch: %w", err)
	}

	created := s.now().UTC()
	id := FormatID(created)
	path := filepath.Join(s.dir, FileName(id))
	if s.reg.Has(id) {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}

	if err := writeAtomic(s.dir, FileName(id), p.Raw); err != nil {
		return nil, &PersistenceError{Path: path, Err: err}
	}

	snap := &Snapshot{
		ID:        id,
		Raw:       p.Raw,
		Entries:   p.Entries(),
		CreatedAt: created.Truncate(time.Second),
	}
	if err := s.register(snap, path); err != nil {
		return nil, err
	}
	slog.Info("snapshot: captured", "id", id, "entries", len(snap.Entries), "bytes", len(p.Raw))
	return snap, nil
}

// register adds a freshly written snapshot to the registry. If the id is
// already taken the file at path is removed so no backup is left without
// its registry entry.
func (s *Store) register(snap *Snapshot, path string) error {
	evicted, ok := s.reg.Put(snap)
	if !ok {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			slog.Warn("snapshot: remove unregistered backup", "path", path, "err", err)
		}
		return fmt.Errorf("%w: %s", ErrDuplicateID, snap.ID)
	}
	for _, old := range evicted {
		slog.Debug("snapshot: evicted from memory", "id", old)
	}
	return nil
}

// prune removes the oldest backup files beyond diskRetention.
func (s *Store) prune() {
	if s.diskRetention <= 0 {
		return
	}
	ids, err := scanIDs(s.dir)
	if err != nil {
		slog.Warn("snapshot: prune scan failed", "err", err)
		return
	}
	if len(ids) <= s.diskRetention {
		return
	}
	for _, id := range ids[s.diskRetention:] {
		if err := os.Remove(filepath.Join(s.dir, FileName(id))); err != nil && !os.IsNotExist(err) {
			slog.Warn("snapshot: prune failed", "id", id, "err", err)
			continue
		}
		metrics.SnapshotFilesPruned.Inc()
		slog.Debug("snapshot: pruned", "id", id)
	}
}

// Delete removes id from memory and disk. It returns ErrNotFound when id is
// malformed or exists in neither place.
func (s *Store) Delete(id string) error {
	if _, err := ParseID(id); err != nil {
		metrics.SnapshotDeletes.WithLabelValues(metrics.OutcomeNotFound).Inc()
		return ErrNotFound
	}

	inMemory := s.reg.Remove(id)
	metrics.SnapshotRegistrySize.Set(float64(s.reg.Len()))

	err := os.Remove(filepath.Join(s.dir, FileName(id)))
	switch {
	case err == nil:
	case os.IsNotExist(err):
		if !inMemory {
			metrics.SnapshotDeletes.WithLabelValues(metrics.OutcomeNotFound).Inc()
			return ErrNotFound
		}
	default:
		metrics.SnapshotDeletes.WithLabelValues(metrics.OutcomeFailed).Inc()
		return fmt.Errorf("snapshot: delete %s: %w", id, err)
	}

	metrics.SnapshotDeletes.WithLabelValues(metrics.OutcomeOK).Inc()
	slog.Info("snapshot: deleted", "id", id)
	return nil
}

// LoadExisting registers the most recent backup files found on disk, up to
// the registry capacity. Files that cannot be read or decoded are logged and
// skipped. It returns the number registered.
func (s *Store) LoadExisting() (int, error) {
	ids, err := scanIDs(s.dir)
	if err != nil {
		return 0, err
	}
	if len(ids) > s.retention {
		ids = ids[:s.retention]
	}

	loaded := 0
	// Oldest first so the newest ends up at the front of the registry.
	for i := len(ids) - 1; i >= 0; i-- {
		id := ids[i]
		snap, err := s.load(id)
		if err != nil {
			slog.Warn("snapshot: skipping backup file", "id", id, "err", err)
			continue
		}
		if _, ok := s.reg.Put(snap); ok {
			loaded++
		}
	}
	metrics.SnapshotRegistrySize.Set(float64(s.reg.Len()))
	slog.Info("snapshot: loaded existing", "count", loaded, "dir", s.dir)
	return loaded, nil
}

func (s *Store) load(id string) (*Snapshot, error) {
	created, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(filepath.Join(s.dir, FileName(id)))
	if err != nil {
		return nil, err
	}
	entries, err := source.DecodeEntries(raw)
	if err != nil {
		return nil, err
	}
	return &Snapshot{ID: id, Raw: raw, Entries: entries, CreatedAt: created}, nil
}

// List returns metadata for the registered snapshots, newest first.
func (s *Store) List() []Meta {
	snaps := s.reg.List()
	out := make([]Meta, 0, len(snaps))
	for _, snap := range snaps {
		out = append(out, Meta{
			ID:          snap.ID,
			DisplayTime: snap.CreatedAt.UTC().Format(DisplayLayout),
			CreatedAt:   snap.CreatedAt,
			Entries:     len(snap.Entries),
		})
	}
	return out
}

// Get returns the registered snapshot for id.
func (s *Store) Get(id string) (*Snapshot, bool) {
	return s.reg.Get(id)
}

// Len returns the number of registered snapshots.
func (s *Store) Len() int { return s.reg.Len() }

func captureOutcome(err error) string {
	var persistErr *PersistenceError
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.As(err, &persistErr):
		return metrics.OutcomePersist
	default:
		return metrics.OutcomeFailed
	}
}

// Capacity returns the maximum number of snapshots held in memory.
func (s *Store) Capacity() int { return s.reg.Capacity() }
