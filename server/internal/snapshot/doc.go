// Package snapshot captures the upstream leaderboard on a fixed interval,
// persists each capture verbatim as backup_<id>.json and keeps the most
// recent captures in a bounded in-memory registry for historical views.
//
// Snapshot ids are the UTC creation time formatted as YYYYMMDD_HHMMSS, so
// lexical order equals chronological order.
package snapshot
