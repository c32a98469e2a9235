package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tribeboard/tribeboard/server/internal/config"
)

// progressBody is a trimmed copy of a real event.getProgress batch response.
const progressBody = `[{"result":{"data":{"json":{
  "eventId":"points:fd0206c5",
  "leaderboard":[
    {"address":"eip155:1:0xaaa","tribe":"red","highScore":125000,"attempts":4,"highScoreAchievedAt":"2025-02-01T18:22:03.512Z"},
    {"walletAddress":"eip155:1:0xbbb","tribe":"blue","highScore":0,"attempts":1},
    {"address":"eip155:1:0xccc","tribe":"red","highScore":"bogus"}
  ]}}}}]`

func newTestSource(t *testing.T, h http.HandlerFunc) *HTTPSource {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(config.SourceConfig{URL: srv.URL, Timeout: time.Second, UserAgent: "test"}, srv.Client())
}

func TestFetch_OK(t *testing.T) {
	var gotUA string
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(progressBody))
	})

	p, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if gotUA != "test" {
		t.Errorf("User-Agent = %q, want test", gotUA)
	}
	if string(p.Raw) != progressBody {
		t.Error("Raw should be the verbatim response body")
	}
	if len(p.Leaderboard) != 3 {
		t.Fatalf("Leaderboard rows = %d, want 3", len(p.Leaderboard))
	}

	entries := p.Entries()
	// The row with a string highScore is skipped.
	if len(entries) != 2 {
		t.Fatalf("Entries() = %d, want 2", len(entries))
	}
	if entries[0].Address != "eip155:1:0xaaa" || entries[0].HighScore != 125000 {
		t.Errorf("entries[0] = %+v", entries[0])
	}
	if entries[1].WalletAddress != "eip155:1:0xbbb" {
		t.Errorf("entries[1].WalletAddress = %q", entries[1].WalletAddress)
	}
}

func TestFetch_HTTPStatusError(t *testing.T) {
	s := newTestSource(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := s.Fetch(context.Background())
	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("err = %v, want *HTTPStatusError", err)
	}
	if statusErr.Code != http.StatusBadGateway {
		t.Errorf("Code = %d, want 502", statusErr.Code)
	}
}

func TestFetch_SchemaError(t *testing.T) {
	s := newTestSource(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"result":{"data":{"json":{"standings":[]}}}}]`))
	})

	_, err := s.Fetch(context.Background())
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("err = %v, want *SchemaError", err)
	}
	if last := schemaErr.Path[len(schemaErr.Path)-1]; last != "leaderboard" {
		t.Errorf("Path ends at %q, want leaderboard", last)
	}
}

func TestFetch_NetworkError(t *testing.T) {
	s := New(config.SourceConfig{URL: "http://127.0.0.1:1", Timeout: time.Second}, nil)

	_, err := s.Fetch(context.Background())
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("err = %v, want *NetworkError", err)
	}
}

func TestFetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	s := New(config.SourceConfig{URL: srv.URL, Timeout: 50 * time.Millisecond}, nil)
	_, err := s.Fetch(context.Background())
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("err = %v, want *NetworkError on timeout", err)
	}
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		rows    int
		wantErr bool
	}{
		{"valid", progressBody, 3, false},
		{"empty leaderboard", `[{"result":{"data":{"json":{"leaderboard":[]}}}}]`, 0, false},
		{"not an array", `{"result":{}}`, 0, true},
		{"empty batch", `[]`, 0, true},
		{"missing data", `[{"result":{}}]`, 0, true},
		{"null leaderboard", `[{"result":{"data":{"json":{"leaderboard":null}}}}]`, 0, true},
		{"leaderboard is object", `[{"result":{"data":{"json":{"leaderboard":{}}}}}]`, 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rows, err := Extract([]byte(tc.body))
			if tc.wantErr {
				var schemaErr *SchemaError
				if !errors.As(err, &schemaErr) {
					t.Fatalf("err = %v, want *SchemaError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if len(rows) != tc.rows {
				t.Errorf("rows = %d, want %d", len(rows), tc.rows)
			}
		})
	}
}

func TestDecodeEntries(t *testing.T) {
	entries, err := DecodeEntries([]byte(progressBody))
	if err != nil {
		t.Fatalf("DecodeEntries() error = %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("entries = %d, want 2", len(entries))
	}
}
