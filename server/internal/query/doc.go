// Package query turns a leaderboard into the views the API serves.
//
// Every function is pure: inputs are never modified and results share no
// mutable state with them. Run composes the fixed order
// Normalize → Filter → Sort → Paginate; ComputeTribeStats, TeamStats and
// VoteOffList aggregate over the unpaginated set.
package query
