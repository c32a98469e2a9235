// Package config loads the tribeboard configuration file (config.yaml).
//
// Sections:
//   - source: upstream URL, HTTP timeout, user agent
//   - live: cache TTL (default 500s) and optional retry interval after a
//     failed refresh (default 0: retry on the next request)
//   - snapshot: backup directory, capture interval (60s), in-memory
//     retention (20), optional on-disk retention (0 = keep every file),
//     minimum spacing between manual captures
//   - query: page size (25) and vote-off threshold (100000)
//   - server: HTTP port and WebSocket broadcast interval
//   - log: level (debug|info|warn|error)
//
// Load(path) applies defaults before unmarshalling, then validates. An empty
// path yields the validated defaults.
//
// Watch(ctx, path, onChange) uses fsnotify to detect writes and calls
// onChange with the newly parsed Config. Reload failures are logged and the
// previous config stays active.
package config
