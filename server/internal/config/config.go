package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultSourceURL is the tRPC progress endpoint of the points event the
// leaderboard tracks.
const DefaultSourceURL = "https://www.cryptothegame.com/api/trpc/event.getProgress" +
	"?batch=1&input=%7B%220%22%3A%7B%22json%22%3A%7B%22eventId%22%3A%22points%3Afd0206c5-3eb3-4ffb-a399-9f6212441495%22%7D%7D%7D"

// Default values applied when fields are absent from the config file.
const (
	DefaultSourceTimeout     = 10 * time.Second
	DefaultUserAgent         = "tribeboard/1.0"
	DefaultLiveTTL           = 500 * time.Second
	DefaultSnapshotDir       = "backups"
	DefaultSnapshotInterval  = 60 * time.Second
	DefaultSnapshotRetention = 20
	DefaultManualInterval    = 5 * time.Second
	DefaultPageSize          = 25
	DefaultVoteOffThreshold  = 100000
	DefaultHTTPPort          = 5000
	DefaultWSInterval        = 5 * time.Second
	DefaultLogLevel          = "info"
)

// Config is the top-level configuration. Fields map 1:1 to config.example.yaml.
type Config struct {
	Source   SourceConfig   `yaml:"source"`
	Live     LiveConfig     `yaml:"live"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Query    QueryConfig    `yaml:"query"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
}

// SourceConfig describes the upstream leaderboard endpoint.
type SourceConfig struct {
	// URL is fetched with a plain GET; query parameters are part of the URL.
	URL string `yaml:"url"`

	// Timeout bounds one fetch, including reading the body.
	Timeout time.Duration `yaml:"timeout"`

	UserAgent string `yaml:"user_agent"`
}

// LiveConfig controls the live cache.
type LiveConfig struct {
	// TTL is how long a successful fetch is served before the next request
	// triggers a refresh.
	TTL time.Duration `yaml:"ttl"`

	// RetryInterval spaces refresh attempts after a failed fetch.
	// Zero retries on the very next request.
	RetryInterval time.Duration `yaml:"retry_interval"`
}

// SnapshotConfig controls periodic backups of the upstream payload.
type SnapshotConfig struct {
	// Dir holds one backup_<id>.json file per snapshot.
	Dir string `yaml:"dir"`

	// Interval is the spacing of background captures.
	Interval time.Duration `yaml:"interval"`

	// Retention is how many snapshots are kept in memory and loaded at startup.
	Retention int `yaml:"retention"`

	// DiskRetention prunes the oldest backup files beyond this count after
	// each capture. Zero keeps every file.
	DiskRetention int `yaml:"disk_retention"`

	// ManualInterval is the minimum spacing between manual captures
	// requested over the API.
	ManualInterval time.Duration `yaml:"manual_interval"`
}

// QueryConfig holds query pipeline defaults.
type QueryConfig struct {
	PageSize         int   `yaml:"page_size"`
	VoteOffThreshold int64 `yaml:"vote_off_threshold"`
}

// ServerConfig holds HTTP settings.
type ServerConfig struct {
	// HTTPPort is the port the REST API and WebSocket hub listen on.
	HTTPPort int `yaml:"http_port"`

	// WSInterval is how often the WebSocket hub pushes the current view.
	WSInterval time.Duration `yaml:"ws_interval"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is one of: debug | info | warn | error.
	Level string `yaml:"level"`
}

// SlogLevel returns the slog.Level for Level. Unknown values map to info;
// validate rejects them before this is reached.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with defaults.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse yaml: %w", err)
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Defaults returns a Config pre-populated with default values.
func Defaults() *Config {
	return &Config{
		Source: SourceConfig{
			URL:       DefaultSourceURL,
			Timeout:   DefaultSourceTimeout,
			UserAgent: DefaultUserAgent,
		},
		Live: LiveConfig{
			TTL: DefaultLiveTTL,
		},
		Snapshot: SnapshotConfig{
			Dir:            DefaultSnapshotDir,
			Interval:       DefaultSnapshotInterval,
			Retention:      DefaultSnapshotRetention,
			ManualInterval: DefaultManualInterval,
		},
		Query: QueryConfig{
			PageSize:         DefaultPageSize,
			VoteOffThreshold: DefaultVoteOffThreshold,
		},
		Server: ServerConfig{
			HTTPPort:   DefaultHTTPPort,
			WSInterval: DefaultWSInterval,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	if cfg.Source.URL == "" {
		return fmt.Errorf("source.url is required")
	}
	if !strings.HasPrefix(cfg.Source.URL, "http://") && !strings.HasPrefix(cfg.Source.URL, "https://") {
		return fmt.Errorf("source.url %q must be http or https", cfg.Source.URL)
	}
	if cfg.Source.Timeout <= 0 {
		return fmt.Errorf("source.timeout must be positive")
	}
	if cfg.Live.TTL <= 0 {
		return fmt.Errorf("live.ttl must be positive")
	}
	if cfg.Live.RetryInterval < 0 {
		return fmt.Errorf("live.retry_interval must not be negative")
	}
	if cfg.Snapshot.Dir == "" {
		return fmt.Errorf("snapshot.dir is required")
	}
	if cfg.Snapshot.Interval <= 0 {
		return fmt.Errorf("snapshot.interval must be positive")
	}
	if cfg.Snapshot.Retention <= 0 {
		return fmt.Errorf("snapshot.retention must be positive")
	}
	if cfg.Snapshot.DiskRetention < 0 {
		return fmt.Errorf("snapshot.disk_retention must not be negative")
	}
	if cfg.Snapshot.DiskRetention > 0 && cfg.Snapshot.DiskRetention < cfg.Snapshot.Retention {
		return fmt.Errorf("snapshot.disk_retention %d is below snapshot.retention %d",
			cfg.Snapshot.DiskRetention, cfg.Snapshot.Retention)
	}
	if cfg.Snapshot.ManualInterval < 0 {
		return fmt.Errorf("snapshot.manual_interval must not be negative")
	}
	if cfg.Query.PageSize <= 0 {
		return fmt.Errorf("query.page_size must be positive")
	}
	if cfg.Query.VoteOffThreshold <= 0 {
		return fmt.Errorf("query.vote_off_threshold must be positive")
	}
	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", cfg.Server.HTTPPort)
	}
	if cfg.Server.WSInterval <= 0 {
		return fmt.Errorf("server.ws_interval must be positive")
	}
	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q unknown: want debug|info|warn|error", cfg.Log.Level)
	}
	return nil
}
