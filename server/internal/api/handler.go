package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/tribeboard/tribeboard/pkg/types"
	"github.com/tribeboard/tribeboard/server/internal/config"
	"github.com/tribeboard/tribeboard/server/internal/live"
	"github.com/tribeboard/tribeboard/server/internal/metrics"
	"github.com/tribeboard/tribeboard/server/internal/query"
	"github.com/tribeboard/tribeboard/server/internal/selector"
	"github.com/tribeboard/tribeboard/server/internal/snapshot"
	"github.com/tribeboard/tribeboard/server/internal/source"
)

// Deps are the services the API reads from.
type Deps struct {
	Selector  *selector.Selector
	Live      *live.Cache
	Snapshots *snapshot.Store
	Query     config.QueryConfig

	// ManualInterval is the minimum spacing of POST /api/v1/snapshots.
	// Zero disables the limit.
	ManualInterval time.Duration

	// Gatherer backs /metrics and the status counters. Nil uses
	// metrics.Registry.
	Gatherer prometheus.Gatherer
}

// Handler is the HTTP handler for all /api/v1/* endpoints and /metrics.
type Handler struct {
	sel      *selector.Selector
	live     *live.Cache
	snaps    *snapshot.Store
	pageSize int
	gatherer prometheus.Gatherer
	manual   *rate.Limiter

	threshold atomic.Int64

	mux  *http.ServeMux
	root http.Handler
	now  func() time.Time
}

// New creates a Handler and registers all routes.
func New(d Deps) *Handler {
	h := &Handler{
		sel:      d.Selector,
		live:     d.Live,
		snaps:    d.Snapshots,
		pageSize: d.Query.PageSize,
		gatherer: d.Gatherer,
		manual:   rate.NewLimiter(rate.Inf, 1),
		mux:      http.NewServeMux(),
		now:      time.Now,
	}
	if h.gatherer == nil {
		h.gatherer = metrics.Registry
	}
	if h.pageSize <= 0 {
		h.pageSize = query.DefaultPageSize
	}
	if d.ManualInterval > 0 {
		h.manual = rate.NewLimiter(rate.Every(d.ManualInterval), 1)
	}
	h.SetVoteOffThreshold(d.Query.VoteOffThreshold)

	h.mux.HandleFunc("GET /api/v1/health", h.health)
	h.mux.HandleFunc("GET /api/v1/leaderboard", h.leaderboard)
	h.mux.HandleFunc("GET /api/v1/tribes/{tribe}", h.tribe)
	h.mux.HandleFunc("GET /api/v1/tribes/{tribe}/vote-off", h.voteOff)
	h.mux.HandleFunc("GET /api/v1/teams", h.teams)
	h.mux.HandleFunc("GET /api/v1/snapshots", h.listSnapshots)
	h.mux.HandleFunc("POST /api/v1/snapshots", h.createSnapshot)
	h.mux.HandleFunc("DELETE /api/v1/snapshots/{id}", h.deleteSnapshot)
	h.mux.HandleFunc("GET /api/v1/source", h.getSource)
	h.mux.HandleFunc("PUT /api/v1/source", h.putSource)
	h.mux.HandleFunc("GET /api/v1/status", h.status)
	h.mux.Handle("GET /metrics", metrics.Handler(h.gatherer))

	h.root = withRequestID(h.mux)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.root.ServeHTTP(w, r)
}

// SetVoteOffThreshold changes the default vote-off threshold. Non-positive
// values fall back to query.DefaultVoteOffThreshold.
func (h *Handler) SetVoteOffThreshold(v int64) {
	if v <= 0 {
		v = query.DefaultVoteOffThreshold
	}
	h.threshold.Store(v)
}

// --- route handlers ---------------------------------------------------------

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	jsonResp(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Source:    h.sel.Current(),
		Entries:   h.live.Len(),
		Snapshots: h.snaps.Len(),
	})
}

func (h *Handler) leaderboard(w http.ResponseWriter, r *http.Request) {
	params, err := h.parseParams(r)
	if err != nil {
		jsonErr(w, http.StatusBadRequest, err.Error())
		return
	}
	params.Tribe = r.URL.Query().Get("tribe")

	entries, src, ok := h.resolve(r.Context(), w)
	if !ok {
		return
	}
	jsonResp(w, http.StatusOK, LeaderboardResponse{
		Source: src,
		SortBy: string(params.SortBy),
		Order:  orderName(params.Ascending),
		Tribe:  params.Tribe,
		Page:   query.Run(entries, params),
	})
}

func (h *Handler) tribe(w http.ResponseWriter, r *http.Request) {
	params, err := h.parseParams(r)
	if err != nil {
		jsonErr(w, http.StatusBadRequest, err.Error())
		return
	}
	params.Tribe = r.PathValue("tribe")

	entries, src, ok := h.resolve(r.Context(), w)
	if !ok {
		return
	}
	jsonResp(w, http.StatusOK, TribeResponse{
		Source: src,
		Stats:  query.ComputeTribeStats(entries, params.Tribe),
		Page:   query.Run(entries, params),
	})
}

func (h *Handler) voteOff(w http.ResponseWriter, r *http.Request) {
	tribe := r.PathValue("tribe")
	threshold := h.threshold.Load()
	if v := r.URL.Query().Get("threshold"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			jsonErr(w, http.StatusBadRequest, fmt.Sprintf("threshold %q must be a positive integer", v))
			return
		}
		threshold = n
	}

	entries, src, ok := h.resolve(r.Context(), w)
	if !ok {
		return
	}
	jsonResp(w, http.StatusOK, VoteOffResponse{
		Source:    src,
		Tribe:     tribe,
		Threshold: threshold,
		Players:   query.VoteOffList(entries, tribe, threshold),
	})
}

func (h *Handler) teams(w http.ResponseWriter, r *http.Request) {
	entries, src, ok := h.resolve(r.Context(), w)
	if !ok {
		return
	}
	jsonResp(w, http.StatusOK, TeamsResponse{Source: src, Teams: query.TeamStats(entries)})
}

func (h *Handler) listSnapshots(w http.ResponseWriter, r *http.Request) {
	jsonResp(w, http.StatusOK, h.snaps.List())
}

func (h *Handler) createSnapshot(w http.ResponseWriter, r *http.Request) {
	if !h.manual.Allow() {
		jsonErr(w, http.StatusTooManyRequests, "manual snapshots are rate limited, try again shortly")
		return
	}

	snap, err := h.snaps.Capture(r.Context(), snapshot.TriggerManual)
	if err != nil {
		code := captureStatus(err)
		slog.Warn("api: manual snapshot failed", "status", code, "err", err)
		jsonErr(w, code, err.Error())
		return
	}
	jsonResp(w, http.StatusCreated, snapshot.Meta{
		ID:          snap.ID,
		DisplayTime: snap.CreatedAt.UTC().Format(snapshot.DisplayLayout),
		CreatedAt:   snap.CreatedAt,
		Entries:     len(snap.Entries),
	})
}

func (h *Handler) deleteSnapshot(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.snaps.Delete(id); err != nil {
		if errors.Is(err, snapshot.ErrNotFound) {
			jsonErr(w, http.StatusNotFound, "snapshot not found")
			return
		}
		jsonErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	if h.sel.Current() == id {
		h.sel.Select(selector.Live)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getSource(w http.ResponseWriter, r *http.Request) {
	jsonResp(w, http.StatusOK, h.sourceResponse())
}

func (h *Handler) putSource(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		jsonErr(w, http.StatusBadRequest, "id is required")
		return
	}
	if !h.sel.Select(id) {
		jsonErr(w, http.StatusNotFound, fmt.Sprintf("unknown source %q", id))
		return
	}
	jsonResp(w, http.StatusOK, h.sourceResponse())
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Source: h.sel.Current(),
		Live: LiveStatus{
			Entries:    h.live.Len(),
			TTLSeconds: h.live.TTL().Seconds(),
		},
		Snapshots: SnapshotStatus{
			Count:    h.snaps.Len(),
			Capacity: h.snaps.Capacity(),
		},
	}
	if last := h.live.LastFetchAt(); !last.IsZero() {
		resp.Live.LastFetchAt = last.UTC().Format(time.RFC3339)
		resp.Live.AgeSeconds = h.now().Sub(last).Seconds()
	}
	if list := h.snaps.List(); len(list) > 0 {
		resp.Snapshots.Latest = &list[0]
	}

	counters, err := metrics.Summary(h.gatherer)
	if err != nil {
		slog.Warn("api: gather metrics for status", "err", err)
	}
	resp.Counters = counters
	jsonResp(w, http.StatusOK, resp)
}

// --- helpers ----------------------------------------------------------------

// resolve returns the entries of the active source. On failure it has
// already written the error response.
func (h *Handler) resolve(ctx context.Context, w http.ResponseWriter) ([]types.Entry, string, bool) {
	src := h.sel.Current()
	entries, err := h.sel.Resolve(ctx)
	if err != nil {
		if errors.Is(err, snapshot.ErrNotFound) {
			jsonErr(w, http.StatusNotFound, fmt.Sprintf("selected snapshot %s is no longer available", src))
			return nil, src, false
		}
		jsonErr(w, http.StatusInternalServerError, err.Error())
		return nil, src, false
	}
	return entries, src, true
}

// parseParams reads sort_by, order and page. Tribe is left to the caller.
func (h *Handler) parseParams(r *http.Request) (query.Params, error) {
	q := r.URL.Query()
	p := query.Params{Page: 1, PageSize: h.pageSize}

	key, err := query.ParseSortKey(q.Get("sort_by"))
	if err != nil {
		return p, err
	}
	p.SortBy = key

	switch strings.ToLower(q.Get("order")) {
	case "", "desc":
	case "asc":
		p.Ascending = true
	default:
		return p, fmt.Errorf("order %q must be asc or desc", q.Get("order"))
	}

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, fmt.Errorf("page %q must be an integer", v)
		}
		p.Page = n
	}
	return p, nil
}

func (h *Handler) sourceResponse() SourceResponse {
	list := h.snaps.List()
	opts := make([]string, 0, len(list)+1)
	opts = append(opts, selector.Live)
	for _, m := range list {
		opts = append(opts, m.ID)
	}
	return SourceResponse{Active: h.sel.Current(), Options: opts}
}

func orderName(ascending bool) string {
	if ascending {
		return "asc"
	}
	return "desc"
}

// captureStatus maps a capture error to an HTTP status code.
func captureStatus(err error) int {
	var (
		persistErr *snapshot.PersistenceError
		netErr     *source.NetworkError
		statusErr  *source.HTTPStatusError
		schemaErr  *source.SchemaError
	)
	switch {
	case errors.Is(err, snapshot.ErrCaptureInProgress), errors.Is(err, snapshot.ErrDuplicateID):
		return http.StatusConflict
	case errors.As(err, &persistErr):
		return http.StatusInternalServerError
	case errors.As(err, &netErr):
		return http.StatusGatewayTimeout
	case errors.As(err, &statusErr), errors.As(err, &schemaErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}
