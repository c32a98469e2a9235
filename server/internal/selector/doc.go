// Package selector tracks which data source the query surface reads from:
// the live cache or one registered snapshot.
package selector
