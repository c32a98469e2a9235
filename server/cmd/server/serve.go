package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tribeboard/tribeboard/server/internal/api"
	"github.com/tribeboard/tribeboard/server/internal/config"
	"github.com/tribeboard/tribeboard/server/internal/live"
	"github.com/tribeboard/tribeboard/server/internal/selector"
	"github.com/tribeboard/tribeboard/server/internal/snapshot"
	"github.com/tribeboard/tribeboard/server/internal/source"
	"github.com/tribeboard/tribeboard/server/internal/ws"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, WebSocket hub and background snapshot loop",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	slog.Info("tribeboard-server starting",
		"config", flags.configPath,
		"http_port", cfg.Server.HTTPPort,
		"source", cfg.Source.URL,
		"live_ttl", cfg.Live.TTL,
		"snapshot_dir", cfg.Snapshot.Dir,
		"snapshot_interval", cfg.Snapshot.Interval,
	)

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	src := source.New(cfg.Source, nil)
	cache := live.New(src, cfg.Live)
	snaps := snapshot.New(src, cfg.Snapshot)
	if _, err := snaps.LoadExisting(); err != nil {
		slog.Warn("could not load existing snapshots", "err", err)
	}
	sel := selector.New(cache, snaps)

	handler := api.New(api.Deps{
		Selector:       sel,
		Live:           cache,
		Snapshots:      snaps,
		Query:          cfg.Query,
		ManualInterval: cfg.Snapshot.ManualInterval,
	})
	hub := ws.New(sel, cfg.Server.WSInterval, cfg.Query.PageSize)

	mux := http.NewServeMux()
	mux.Handle("/api/", handler)
	mux.Handle("/metrics", handler)
	mux.Handle("/ws/stream", hub)

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		snaps.Run(gctx)
		return nil
	})
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	if flags.configPath != "" {
		g.Go(func() error {
			err := config.Watch(gctx, flags.configPath, func(next *config.Config) {
				applyReload(next, cache, handler)
			})
			if err != nil {
				slog.Error("config watcher stopped, hot reload disabled", "err", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("tribeboard-server shutting down")
		sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer scancel()
		return httpSrv.Shutdown(sctx)
	})

	return g.Wait()
}

// applyReload pushes the settings that can change without a restart.
func applyReload(cfg *config.Config, cache *live.Cache, handler *api.Handler) {
	logLevel.Set(cfg.Log.SlogLevel())
	cache.SetTTL(cfg.Live.TTL)
	handler.SetVoteOffThreshold(cfg.Query.VoteOffThreshold)
	slog.Info("config applied",
		"log_level", cfg.Log.Level,
		"live_ttl", cfg.Live.TTL,
		"vote_off_threshold", cfg.Query.VoteOffThreshold,
	)
}
