package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/tribeboard/tribeboard/pkg/types"
	"github.com/tribeboard/tribeboard/server/internal/config"
	"github.com/tribeboard/tribeboard/server/internal/metrics"
)

// maxBodyBytes caps the upstream response size.
const maxBodyBytes = 32 << 20

// leaderboardPath is the key path below the first batch element.
var leaderboardPath = []string{"result", "data", "json", "leaderboard"}

// Payload is the outcome of one successful fetch.
type Payload struct {
	// Raw is the response body exactly as received. It is what gets persisted.
	Raw []byte

	// Leaderboard holds the undecoded rows of the leaderboard array.
	Leaderboard []json.RawMessage

	FetchedAt time.Time
}

// Entries decodes the leaderboard rows. Rows that fail to decode are skipped
// and logged; a malformed row never hides the rest of the board.
func (p *Payload) Entries() []types.Entry {
	return decodeRows(p.Leaderboard)
}

// Fetcher is implemented by anything that can produce a Payload.
type Fetcher interface {
	Fetch(ctx context.Context) (*Payload, error)
}

// HTTPSource fetches the leaderboard over HTTP. The client is built once and
// reused for every call.
type HTTPSource struct {
	url       string
	userAgent string
	client    *http.Client
	now       func() time.Time
}

// New returns an HTTPSource for cfg. A nil client gets a fresh http.Client
// with cfg.Timeout.
func New(cfg config.SourceConfig, client *http.Client) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &HTTPSource{
		url:       cfg.URL,
		userAgent: cfg.UserAgent,
		client:    client,
		now:       time.Now,
	}
}

// Fetch performs one GET and extracts the leaderboard array.
func (s *HTTPSource) Fetch(ctx context.Context) (*Payload, error) {
	start := s.now()
	p, err := s.fetch(ctx)
	metrics.SourceFetchDuration.Observe(s.now().Sub(start).Seconds())
	metrics.SourceFetches.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		slog.Warn("source: fetch failed", "url", s.url, "err", err)
		return nil, err
	}
	slog.Debug("source: fetched leaderboard", "rows", len(p.Leaderboard), "bytes", len(p.Raw))
	return p, nil
}

func (s *HTTPSource) fetch(ctx context.Context) (*Payload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("source: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: s.url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &HTTPStatusError{Code: resp.StatusCode}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &NetworkError{URL: s.url, Err: fmt.Errorf("read body: %w", err)}
	}

	rows, err := Extract(raw)
	if err != nil {
		return nil, err
	}
	return &Payload{Raw: raw, Leaderboard: rows, FetchedAt: s.now().UTC()}, nil
}

// Extract returns the rows of the leaderboard array inside raw.
// Any deviation from the expected shape is reported as *SchemaError.
func Extract(raw []byte) ([]json.RawMessage, error) {
	var batch []json.RawMessage
	if err := json.Unmarshal(raw, &batch); err != nil {
		return nil, &SchemaError{Path: []string{"[]"}, Err: err}
	}
	if len(batch) == 0 {
		return nil, &SchemaError{Path: []string{"[0]"}}
	}

	cur := batch[0]
	walked := []string{"[0]"}
	for _, key := range leaderboardPath {
		walked = append(walked, key)
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(cur, &obj); err != nil {
			return nil, &SchemaError{Path: walked, Err: err}
		}
		next, ok := obj[key]
		if !ok || string(next) == "null" {
			return nil, &SchemaError{Path: walked}
		}
		cur = next
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(cur, &rows); err != nil {
		return nil, &SchemaError{Path: walked, Err: err}
	}
	return rows, nil
}

// DecodeEntries extracts and decodes the leaderboard from a stored payload.
func DecodeEntries(raw []byte) ([]types.Entry, error) {
	rows, err := Extract(raw)
	if err != nil {
		return nil, err
	}
	return decodeRows(rows), nil
}

func decodeRows(rows []json.RawMessage) []types.Entry {
	out := make([]types.Entry, 0, len(rows))
	for i, row := range rows {
		var e types.Entry
		if err := json.Unmarshal(row, &e); err != nil {
			slog.Warn("source: skipping malformed leaderboard row", "index", i, "err", err)
			continue
		}
		out = append(out, e)
	}
	return out
}

// outcome maps a fetch error to its metrics label.
func outcome(err error) string {
	var (
		netErr    *NetworkError
		statusErr *HTTPStatusError
		schemaErr *SchemaError
	)
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.As(err, &netErr):
		return metrics.OutcomeNetwork
	case errors.As(err, &statusErr):
		return metrics.OutcomeStatus
	case errors.As(err, &schemaErr):
		return metrics.OutcomeSchema
	default:
		return metrics.OutcomeFailed
	}
}
