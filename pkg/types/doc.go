// Package types defines the leaderboard entry shared by the source, cache,
// snapshot and query packages. Entry decodes one upstream leaderboard row;
// fields the server does not understand are kept in Extra and written back
// unchanged when the entry is encoded again.
package types
