package source

import (
	"fmt"
	"strings"
)

// NetworkError wraps connection, timeout, and body read failures.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("source: fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPStatusError is returned when the upstream answers with a non-200 status.
type HTTPStatusError struct {
	Code int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("source: unexpected status %d", e.Code)
}

// SchemaError means the response decoded but the leaderboard path was not
// where it is expected. It signals an upstream contract change.
type SchemaError struct {
	// Path is the deepest element that could not be resolved.
	Path []string
	Err  error
}

func (e *SchemaError) Error() string {
	msg := "source: leaderboard not found at " + strings.Join(e.Path, ".")
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SchemaError) Unwrap() error { return e.Err }
