// Package session orchestrates a local comparison session: it pulls pairs
// from the scheduler, applies rating updates, and keeps the backing store in
// sync with the in-memory state.
package session

import (
	"time"

	"github.com/onnwee/featrank/internal/elo"
)

// Outcome is an immutable record of one completed comparison. Outcomes form
// an append-only audit log; rating state is derived incrementally, never
// recomputed from this log.
type Outcome struct {
	Selected  string        `json:"selected"`
	Rejected  string        `json:"rejected"`
	Criterion elo.Criterion `json:"criterion"`
	IsDraw    bool          `json:"is_draw"`
	Timestamp time.Time     `json:"timestamp"`
}

// Store is the persistence collaborator for a session. Implementations decide
// where the data lives (memory, local files, a remote cache); the session only
// requires that each call behaves atomically.
//
// Load methods should fail soft where possible: corrupt or missing data for
// one concern is reported as an error by the implementation, and the session
// treats it as "no data yet" so corruption in one store never poisons the
// others.
type Store interface {
	// LoadFeatures returns the ordered feature list.
	LoadFeatures() ([]string, error)

	// SaveFeatures persists the ordered feature list.
	SaveFeatures(features []string) error

	// LoadRatings returns the rating record for every known feature.
	LoadRatings() (map[string]*elo.FeatureRating, error)

	// SaveRatings persists the full rating mapping.
	SaveRatings(ratings map[string]*elo.FeatureRating) error

	// LoadOutcomes returns the comparison log in append order.
	LoadOutcomes() ([]Outcome, error)

	// AppendOutcome adds one record to the comparison log.
	AppendOutcome(outcome Outcome) error

	// SaveOutcomes rewrites the whole comparison log. Used for bulk edits on
	// feature deletion and reset.
	SaveOutcomes(outcomes []Outcome) error

	// LoadCompletedCount returns the completed-comparison counter. Kept
	// separate from the outcome log so progress reads do not rescan it.
	LoadCompletedCount() (int, error)

	// SaveCompletedCount persists the completed-comparison counter.
	SaveCompletedCount(count int) error
}
