package api

import (
	"github.com/tribeboard/tribeboard/server/internal/query"
	"github.com/tribeboard/tribeboard/server/internal/snapshot"
)

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	Status    string `json:"status"`
	Source    string `json:"source"`
	Entries   int    `json:"live_entries"`
	Snapshots int    `json:"snapshots"`
}

// LeaderboardResponse is the payload for GET /api/v1/leaderboard.
type LeaderboardResponse struct {
	Source string `json:"source"`
	SortBy string `json:"sort_by"`
	Order  string `json:"order"`
	Tribe  string `json:"tribe,omitempty"`
	query.Page
}

// TribeResponse is the payload for GET /api/v1/tribes/{tribe}.
type TribeResponse struct {
	Source string           `json:"source"`
	Stats  query.TribeStats `json:"stats"`
	Page   query.Page       `json:"page"`
}

// VoteOffResponse is the payload for GET /api/v1/tribes/{tribe}/vote-off.
type VoteOffResponse struct {
	Source    string          `json:"source"`
	Tribe     string          `json:"tribe"`
	Threshold int64           `json:"threshold"`
	Players   []query.VoteOff `json:"players"`
}

// TeamsResponse is the payload for GET /api/v1/teams.
type TeamsResponse struct {
	Source string           `json:"source"`
	Teams  []query.TeamStat `json:"teams"`
}

// SourceResponse is the payload for GET and PUT /api/v1/source.
type SourceResponse struct {
	Active  string   `json:"active"`
	Options []string `json:"options"`
}

// StatusResponse is the payload for GET /api/v1/status.
type StatusResponse struct {
	Source    string             `json:"source"`
	Live      LiveStatus         `json:"live"`
	Snapshots SnapshotStatus     `json:"snapshots"`
	Counters  map[string]float64 `json:"counters"`
}

// LiveStatus describes the live cache.
type LiveStatus struct {
	Entries     int     `json:"entries"`
	LastFetchAt string  `json:"last_fetch_at,omitempty"` // RFC3339
	AgeSeconds  float64 `json:"age_seconds"`
	TTLSeconds  float64 `json:"ttl_seconds"`
}

// SnapshotStatus describes the snapshot registry.
type SnapshotStatus struct {
	Count    int            `json:"count"`
	Capacity int            `json:"capacity"`
	Latest   *snapshot.Meta `json:"latest,omitempty"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
