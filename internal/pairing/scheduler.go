// Package pairing decides which two features are compared next. It walks a
// randomized permutation of every unique feature pair, reshuffling after each
// full cycle, and rotates the active comparison criterion on every
// presentation.
package pairing

import (
	"math/rand"
	"time"

	"github.com/onnwee/featrank/internal/elo"
)

// Pair is an unordered pair of feature names.
type Pair struct {
	A string `json:"a"`
	B string `json:"b"`
}

// GenerateAllPairs returns every unique unordered pair (i, j) with i < j from
// the input order. For n features this is exactly n*(n-1)/2 pairs. Fewer than
// two features yields an empty slice; that is a valid state, not an error, and
// callers decide how to surface "not enough features".
func GenerateAllPairs(features []string) []Pair {
	if len(features) < 2 {
		return nil
	}

	pairs := make([]Pair, 0, len(features)*(len(features)-1)/2)
	for i := 0; i < len(features); i++ {
		for j := i + 1; j < len(features); j++ {
			pairs = append(pairs, Pair{A: features[i], B: features[j]})
		}
	}
	return pairs
}

// TotalComparisons is the number of comparisons needed for full coverage:
// every pair on every active criterion. This is the denominator for any
// progress indicator and the threshold at which a session counts as complete.
func TotalComparisons(numFeatures, numCriteria int) int {
	if numFeatures < 2 || numCriteria < 1 {
		return 0
	}
	return numFeatures * (numFeatures - 1) / 2 * numCriteria
}

// Scheduler traverses all feature pairs in shuffled order, cycling with a
// fresh shuffle once the cursor wraps, while rotating criteria independently
// of the pair cursor. It is not safe for concurrent use; the owning session
// serializes access.
type Scheduler struct {
	rng       *rand.Rand
	criteria  []elo.Criterion
	pairs     []Pair
	cursor    int
	presented int
}

// NewScheduler creates a scheduler over the given features and active
// criteria. Passing nil criteria enables all three.
func NewScheduler(features []string, criteria []elo.Criterion) *Scheduler {
	return NewSchedulerWithRand(features, criteria, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewSchedulerWithRand creates a scheduler with a caller-supplied random
// source for deterministic shuffling in tests.
func NewSchedulerWithRand(features []string, criteria []elo.Criterion, rng *rand.Rand) *Scheduler {
	if len(criteria) == 0 {
		criteria = elo.AllCriteria
	}
	s := &Scheduler{
		rng:      rng,
		criteria: criteria,
	}
	s.SetFeatures(features)
	return s
}

// SetFeatures regenerates the pair list for a changed feature set. The cursor
// always resets to the start of a freshly shuffled cycle; preserving a cursor
// into a pair list of a different length risks skipped pairs or an
// out-of-range index.
func (s *Scheduler) SetFeatures(features []string) {
	s.pairs = GenerateAllPairs(features)
	s.shuffle()
	s.cursor = 0
}

// shuffle randomizes the presentation order of the current pair list.
func (s *Scheduler) shuffle() {
	s.rng.Shuffle(len(s.pairs), func(i, j int) {
		s.pairs[i], s.pairs[j] = s.pairs[j], s.pairs[i]
	})
}

// Next returns the next pair and the criterion to compare it on. The second
// return is false when the feature set is too small to form a pair.
//
// The criterion for the k-th presentation is criteria[k mod len(criteria)],
// so criteria rotate on every presentation rather than once per pair cycle.
// When the cursor wraps past the last pair, the whole list is reshuffled
// before the next cycle begins.
func (s *Scheduler) Next() (Pair, elo.Criterion, bool) {
	if len(s.pairs) == 0 {
		return Pair{}, "", false
	}

	pair := s.pairs[s.cursor]
	criterion := s.criteria[s.presented%len(s.criteria)]
	s.presented++

	s.cursor++
	if s.cursor >= len(s.pairs) {
		s.shuffle()
		s.cursor = 0
	}

	return pair, criterion, true
}

// PairCount returns the number of unique pairs in the current cycle.
func (s *Scheduler) PairCount() int {
	return len(s.pairs)
}

// Criteria returns the active criteria in rotation order.
func (s *Scheduler) Criteria() []elo.Criterion {
	return s.criteria
}
