package main

import (
	"log/slog"
	"testing"
	"time"

	"github.com/tribeboard/tribeboard/server/internal/api"
	"github.com/tribeboard/tribeboard/server/internal/config"
	"github.com/tribeboard/tribeboard/server/internal/live"
	"github.com/tribeboard/tribeboard/server/internal/selector"
	"github.com/tribeboard/tribeboard/server/internal/snapshot"
	"github.com/tribeboard/tribeboard/server/internal/source"
)

func TestApplyReload(t *testing.T) {
	cfg := config.Defaults()
	src := source.New(cfg.Source, nil)
	cache := live.New(src, cfg.Live)
	snaps := snapshot.New(src, config.SnapshotConfig{Dir: t.TempDir(), Interval: time.Minute, Retention: 1})
	handler := api.New(api.Deps{Selector: selector.New(cache, snaps), Live: cache, Snapshots: snaps, Query: cfg.Query})

	next := config.Defaults()
	next.Log.Level = "debug"
	next.Live.TTL = 42 * time.Second
	applyReload(next, cache, handler)

	if got := logLevel.Level(); got != slog.LevelDebug {
		t.Errorf("log level: got %v, want debug", got)
	}
	if got := cache.TTL(); got != 42*time.Second {
		t.Errorf("ttl: got %v", got)
	}
	logLevel.Set(slog.LevelInfo)
}
