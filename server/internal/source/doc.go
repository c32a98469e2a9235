// Package source fetches the upstream leaderboard. HTTPSource performs one
// GET per Fetch call against the configured URL and returns the verbatim
// body together with the leaderboard array found at
// [0].result.data.json.leaderboard.
//
// Failures are typed so callers can tell them apart with errors.As:
// NetworkError (connect, timeout, body read), HTTPStatusError (non-200) and
// SchemaError (200 but the path is missing). No retries happen here.
//
// Extract and DecodeEntries run the same path extraction over a payload that
// was persisted earlier, so snapshots can be re-derived from disk.
package source
