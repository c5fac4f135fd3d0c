package session

import (
	"errors"
	"fmt"
)

// Sentinel errors for session lifecycle misuse.
var (
	// ErrNotStarted is returned when a session operation runs before Start.
	ErrNotStarted = errors.New("session not started")

	// ErrNoActivePair is returned when a choice is recorded without a pair
	// having been presented first.
	ErrNoActivePair = errors.New("no pair currently presented")
)

// InsufficientFeaturesError reports that a session cannot run because fewer
// than two features are available. It is recoverable: the caller should prompt
// for more features, and Count tells it exactly how many exist so far.
type InsufficientFeaturesError struct {
	Count int
}

func (e *InsufficientFeaturesError) Error() string {
	return fmt.Sprintf("need at least 2 features to compare, have %d", e.Count)
}

// InvalidChoiceError reports a recorded choice whose features do not match the
// currently presented pair. This indicates a caller synchronization bug and
// should be surfaced, not swallowed.
type InvalidChoiceError struct {
	Selected string
	Rejected string
}

func (e *InvalidChoiceError) Error() string {
	return fmt.Sprintf("choice %q over %q does not match the presented pair", e.Selected, e.Rejected)
}

// PersistenceError reports a failed save to the backing store. The in-memory
// session state remains valid; callers should warn that the comparison may not
// have persisted and allow the user to continue.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
