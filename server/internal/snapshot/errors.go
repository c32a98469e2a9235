package snapshot

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a snapshot id is neither registered nor on disk.
var ErrNotFound = errors.New("snapshot: not found")

// ErrCaptureInProgress is returned when a capture is triggered while another
// one is still running.
var ErrCaptureInProgress = errors.New("snapshot: capture already in progress")

// ErrDuplicateID is returned when a capture lands in the same second as an
// existing snapshot.
var ErrDuplicateID = errors.New("snapshot: id already exists")

// PersistenceError reports a failed write of a backup file. Nothing is
// registered when it is returned.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("snapshot: persist %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
