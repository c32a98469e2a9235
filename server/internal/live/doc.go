// Package live serves the most recent upstream leaderboard from memory,
// refreshing it from the remote source once the TTL has elapsed. A failed
// refresh keeps the previous entries so readers always get something.
package live
