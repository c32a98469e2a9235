package live

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/tribeboard/tribeboard/pkg/types"
	"github.com/tribeboard/tribeboard/server/internal/config"
	"github.com/tribeboard/tribeboard/server/internal/metrics"
	"github.com/tribeboard/tribeboard/server/internal/source"
)

const refreshKey = "refresh"

// Cache is a TTL cache over a source.Fetcher. Concurrent callers that find
// the cache expired share a single upstream fetch.
type Cache struct {
	src   source.Fetcher
	group singleflight.Group

	mu          sync.RWMutex
	entries     []types.Entry
	lastFetchAt time.Time
	ttl         time.Duration
	failing     bool

	// retry is nil when a failed refresh may be retried on the next call.
	retry *rate.Limiter

	now func() time.Time // injectable for deterministic tests
}

// New returns an empty Cache; the first Get fetches.
func New(src source.Fetcher, cfg config.LiveConfig) *Cache {
	c := &Cache{
		src: src,
		ttl: cfg.TTL,
		now: time.Now,
	}
	if cfg.RetryInterval > 0 {
		c.retry = rate.NewLimiter(rate.Every(cfg.RetryInterval), 1)
	}
	return c
}

// Get returns the cached entries, refreshing first when the TTL has elapsed.
// It never fails: on a fetch error the previous entries are returned (empty
// if no fetch has ever succeeded). The returned slice is the caller's.
func (c *Cache) Get(ctx context.Context) []types.Entry {
	if c.expired() {
		// Errors are already logged and counted by refresh.
		_ = c.Refresh(ctx)
	}
	return c.snapshot()
}

// Refresh fetches immediately if the cache is still expired once this call
// joins or starts the in-flight fetch. It returns the fetch error, if any.
func (c *Cache) Refresh(ctx context.Context) error {
	_, err, _ := c.group.Do(refreshKey, func() (any, error) {
		if !c.expired() {
			return nil, nil
		}
		if !c.retryAllowed() {
			metrics.LiveRefreshes.WithLabelValues(metrics.OutcomeSkipped).Inc()
			return nil, nil
		}
		// One caller giving up must not cancel the fetch the others share.
		return nil, c.refresh(context.WithoutCancel(ctx))
	})
	return err
}

func (c *Cache) refresh(ctx context.Context) error {
	p, err := c.src.Fetch(ctx)
	if err != nil {
		c.mu.Lock()
		if !c.failing && c.retry != nil {
			// Take the token so the next attempt waits a full interval.
			c.retry.AllowN(c.now(), 1)
		}
		c.failing = true
		n := len(c.entries)
		c.mu.Unlock()

		metrics.LiveRefreshes.WithLabelValues(metrics.OutcomeStale).Inc()
		slog.Warn("live: refresh failed, serving previous entries", "entries", n, "err", err)
		return err
	}

	entries := p.Entries()
	now := c.now()

	c.mu.Lock()
	c.entries = entries
	c.lastFetchAt = now
	c.failing = false
	c.mu.Unlock()

	metrics.LiveRefreshes.WithLabelValues(metrics.OutcomeOK).Inc()
	metrics.LiveLastFetch.Set(float64(now.Unix()))
	metrics.LiveEntries.Set(float64(len(entries)))
	slog.Debug("live: refreshed", "entries", len(entries))
	return nil
}

func (c *Cache) expired() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastFetchAt.IsZero() || c.now().Sub(c.lastFetchAt) >= c.ttl
}

func (c *Cache) retryAllowed() bool {
	c.mu.RLock()
	failing := c.failing
	c.mu.RUnlock()
	if !failing || c.retry == nil {
		return true
	}
	return c.retry.AllowN(c.now(), 1)
}

func (c *Cache) snapshot() []types.Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]types.Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// LastFetchAt returns the time of the last successful refresh, or the zero
// time if there has been none.
func (c *Cache) LastFetchAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastFetchAt
}

// Len returns the number of entries currently held.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// TTL returns the current time-to-live.
func (c *Cache) TTL() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ttl
}

// SetTTL changes the time-to-live. It applies from the next Get.
func (c *Cache) SetTTL(d time.Duration) {
	c.mu.Lock()
	c.ttl = d
	c.mu.Unlock()
}
