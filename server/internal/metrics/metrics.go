package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the registry every tribeboard collector is registered on.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

// Outcome label values shared by the counters below.
const (
	OutcomeOK       = "ok"
	OutcomeNetwork  = "network"
	OutcomeStatus   = "status"
	OutcomeSchema   = "schema"
	OutcomePersist  = "persist"
	OutcomeSkipped  = "skipped"
	OutcomeFailed   = "failed"
	OutcomeStale    = "stale"
	OutcomeNotFound = "not_found"
)

var (
	// Source
	SourceFetches = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tribeboard",
		Subsystem: "source",
		Name:      "fetches_total",
		Help:      "Upstream leaderboard fetches by outcome",
	}, []string{"outcome"})

	SourceFetchDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tribeboard",
		Subsystem: "source",
		Name:      "fetch_duration_seconds",
		Help:      "Upstream fetch duration including body read",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})

	// Live cache
	LiveRefreshes = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tribeboard",
		Subsystem: "live",
		Name:      "refreshes_total",
		Help:      "Live cache refresh attempts by outcome; stale means previous entries were served",
	}, []string{"outcome"})

	LiveLastFetch = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: "tribeboard",
		Subsystem: "live",
		Name:      "last_fetch_timestamp_seconds",
		Help:      "Unix time of the last successful live refresh",
	})

	LiveEntries = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: "tribeboard",
		Subsystem: "live",
		Name:      "entries",
		Help:      "Entries currently held by the live cache",
	})

	// Snapshots
	SnapshotCaptures = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tribeboard",
		Subsystem: "snapshot",
		Name:      "captures_total",
		Help:      "Snapshot capture attempts by outcome",
	}, []string{"trigger", "outcome"})

	SnapshotDeletes = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tribeboard",
		Subsystem: "snapshot",
		Name:      "deletes_total",
		Help:      "Snapshot deletions by outcome",
	}, []string{"outcome"})

	SnapshotRegistrySize = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: "tribeboard",
		Subsystem: "snapshot",
		Name:      "registry_size",
		Help:      "Snapshots held in memory",
	})

	SnapshotFilesPruned = factory.NewCounter(prometheus.CounterOpts{
		Namespace: "tribeboard",
		Subsystem: "snapshot",
		Name:      "files_pruned_total",
		Help:      "Backup files removed by disk retention",
	})
)
