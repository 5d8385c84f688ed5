// Package session holds the ephemeral UI state for the active conversation
// and gallery: the visible timeline, the bulk-selection workflow, and the
// optimistic-update lifecycle around service calls.
//
// Each session is guarded by its own mutex. The view layer triggers at most
// one generation at a time, but nothing else in a multi-goroutine program
// enforces that, so every state transition here is serialized explicitly.
package session

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput rejects a blank prompt before any network call.
	ErrEmptyInput = errors.New("prompt must not be empty")

	// ErrLoadFailed wraps a failed load; the previous session state is
	// retained when it is returned.
	ErrLoadFailed = errors.New("failed to load")
)

// State is the lifecycle of a session.
type State string

const (
	Empty     State = "empty"
	Loading   State = "loading"
	Populated State = "populated"
)

// Outcome is the result of one call within a bulk archive/restore commit.
type Outcome struct {
	ID  string
	Err error
}

// BulkError reports a partially failed bulk commit. Calls that succeeded
// are not rolled back; the next reload reflects the applied toggles.
type BulkError struct {
	Outcomes []Outcome
}

func (e *BulkError) Error() string {
	failed := 0
	for _, o := range e.Outcomes {
		if o.Err != nil {
			failed++
		}
	}
	return fmt.Sprintf("bulk operation: %d of %d calls failed", failed, len(e.Outcomes))
}

// Failed returns the ids whose calls failed.
func (e *BulkError) Failed() []string {
	var ids []string
	for _, o := range e.Outcomes {
		if o.Err != nil {
			ids = append(ids, o.ID)
		}
	}
	return ids
}
