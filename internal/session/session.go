package session

import (
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/onnwee/featrank/internal/elo"
	"github.com/onnwee/featrank/internal/pairing"
)

// Config holds optional session settings. The zero value enables all three
// criteria with the default K-factor.
type Config struct {
	// Criteria restricts which criteria are compared. Nil enables all three.
	Criteria []elo.Criterion
	// KFactor overrides the rating update sensitivity. Zero uses the default.
	KFactor int
	// Rand supplies the shuffle source. Nil uses a time-seeded source.
	Rand *rand.Rand
	// Logger receives fail-soft load warnings. Nil uses slog.Default.
	Logger *slog.Logger
}

// Presented is the pair and criterion currently awaiting a decision.
type Presented struct {
	Pair      pairing.Pair
	Criterion elo.Criterion
}

// Session ties the scheduler, the rating engine, and the store together. It
// serializes all operations behind a mutex: rating updates are read-modify-
// write, so two concurrent choices on overlapping features would lose one
// update.
type Session struct {
	mu     sync.Mutex
	store  Store
	logger *slog.Logger

	kFactor  int
	criteria []elo.Criterion
	rng      *rand.Rand

	scheduler *pairing.Scheduler
	features  []string
	ratings   map[string]*elo.FeatureRating
	outcomes  []Outcome
	completed int
	current   *Presented
	started   bool
}

// New creates a session backed by the given store.
func New(store Store, cfg Config) *Session {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.KFactor == 0 {
		cfg.KFactor = elo.DefaultKFactor
	}
	if len(cfg.Criteria) == 0 {
		cfg.Criteria = elo.AllCriteria
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Session{
		store:    store,
		logger:   cfg.Logger,
		kFactor:  cfg.KFactor,
		criteria: cfg.Criteria,
		rng:      cfg.Rand,
	}
}

// Start begins (or resumes) a session over the given features. Names are
// trimmed and deduplicated by exact value, preserving first-seen order.
//
// Ratings load from the store first: features seen before keep their prior
// standings, only unseen features are initialized to defaults. Load failures
// degrade to empty state; a save failure is returned as a PersistenceError
// but leaves the in-memory session usable.
func (s *Session) Start(features []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cleaned := make([]string, 0, len(features))
	seen := make(map[string]bool, len(features))
	for _, f := range features {
		f = strings.TrimSpace(f)
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		cleaned = append(cleaned, f)
	}

	if len(cleaned) < 2 {
		return &InsufficientFeaturesError{Count: len(cleaned)}
	}

	ratings, err := s.store.LoadRatings()
	if err != nil {
		s.logger.Warn("failed to load ratings, starting fresh", "error", err)
		ratings = nil
	}
	if ratings == nil {
		ratings = make(map[string]*elo.FeatureRating)
	}
	for _, f := range cleaned {
		if _, ok := ratings[f]; !ok {
			ratings[f] = elo.NewFeatureRating(f)
		}
	}

	outcomes, err := s.store.LoadOutcomes()
	if err != nil {
		s.logger.Warn("failed to load outcome log, starting fresh", "error", err)
		outcomes = nil
	}
	completed, err := s.store.LoadCompletedCount()
	if err != nil {
		s.logger.Warn("failed to load completed count, starting from zero", "error", err)
		completed = 0
	}

	s.features = cleaned
	s.ratings = ratings
	s.outcomes = outcomes
	s.completed = completed
	s.scheduler = pairing.NewSchedulerWithRand(cleaned, s.criteria, s.rng)
	s.current = nil
	s.started = true

	if err := s.store.SaveFeatures(cleaned); err != nil {
		return &PersistenceError{Op: "save features", Err: err}
	}
	if err := s.store.SaveRatings(s.ratings); err != nil {
		return &PersistenceError{Op: "save ratings", Err: err}
	}
	return nil
}

// NextPair returns the next pair and criterion to present. The returned pair
// stays "active" until RecordChoice consumes it.
func (s *Session) NextPair() (Presented, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return Presented{}, ErrNotStarted
	}

	pair, criterion, ok := s.scheduler.Next()
	if !ok {
		return Presented{}, &InsufficientFeaturesError{Count: len(s.features)}
	}

	s.current = &Presented{Pair: pair, Criterion: criterion}
	return *s.current, nil
}

// RecordChoice applies the user's decision for the currently presented pair.
// selected and rejected must be exactly the two presented features, in either
// order. The rating update, match counts, outcome record, and completed
// counter all advance together before the next pair can be presented.
//
// A store failure is returned as a PersistenceError; the in-memory update has
// already been applied, so the caller can warn and keep comparing.
func (s *Session) RecordChoice(selected, rejected string, isDraw bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return ErrNotStarted
	}
	if s.current == nil {
		return ErrNoActivePair
	}

	pair := s.current.Pair
	if !((selected == pair.A && rejected == pair.B) || (selected == pair.B && rejected == pair.A)) {
		return &InvalidChoiceError{Selected: selected, Rejected: rejected}
	}

	criterion := s.current.Criterion
	winner := s.ensureRating(selected)
	loser := s.ensureRating(rejected)

	if isDraw {
		newA, newB := elo.UpdateRatingsForDraw(winner.Ratings.Get(criterion), loser.Ratings.Get(criterion), s.kFactor)
		winner.Ratings.Set(criterion, newA)
		loser.Ratings.Set(criterion, newB)
	} else {
		newWinner, newLoser := elo.UpdateRatings(winner.Ratings.Get(criterion), loser.Ratings.Get(criterion), s.kFactor)
		winner.Ratings.Set(criterion, newWinner)
		loser.Ratings.Set(criterion, newLoser)
	}

	winner.Matches.Increment(criterion)
	loser.Matches.Increment(criterion)

	outcome := Outcome{
		Selected:  selected,
		Rejected:  rejected,
		Criterion: criterion,
		IsDraw:    isDraw,
		Timestamp: time.Now(),
	}
	s.outcomes = append(s.outcomes, outcome)
	s.completed++
	s.current = nil

	if err := s.store.AppendOutcome(outcome); err != nil {
		return &PersistenceError{Op: "append outcome", Err: err}
	}
	if err := s.store.SaveRatings(s.ratings); err != nil {
		return &PersistenceError{Op: "save ratings", Err: err}
	}
	if err := s.store.SaveCompletedCount(s.completed); err != nil {
		return &PersistenceError{Op: "save completed count", Err: err}
	}
	return nil
}

// ensureRating returns the rating record for a feature, initializing a
// default one if the store never had it.
func (s *Session) ensureRating(name string) *elo.FeatureRating {
	fr, ok := s.ratings[name]
	if !ok {
		fr = elo.NewFeatureRating(name)
		s.ratings[name] = fr
	}
	return fr
}

// DeleteFeature removes a feature, its rating record, and every logged
// comparison that references it. The completed counter is recomputed as the
// size of the filtered log rather than decremented, which keeps the progress
// indicator consistent no matter how many outcomes the feature appeared in.
// Deleting an unknown feature is a no-op.
func (s *Session) DeleteFeature(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return ErrNotStarted
	}

	idx := -1
	for i, f := range s.features {
		if f == name {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil
	}

	s.features = append(s.features[:idx], s.features[idx+1:]...)
	delete(s.ratings, name)

	filtered := s.outcomes[:0]
	for _, o := range s.outcomes {
		if o.Selected != name && o.Rejected != name {
			filtered = append(filtered, o)
		}
	}
	s.outcomes = filtered
	s.completed = len(filtered)

	s.scheduler.SetFeatures(s.features)
	s.current = nil

	if err := s.store.SaveFeatures(s.features); err != nil {
		return &PersistenceError{Op: "save features", Err: err}
	}
	if err := s.store.SaveRatings(s.ratings); err != nil {
		return &PersistenceError{Op: "save ratings", Err: err}
	}
	if err := s.store.SaveOutcomes(s.outcomes); err != nil {
		return &PersistenceError{Op: "save outcomes", Err: err}
	}
	if err := s.store.SaveCompletedCount(s.completed); err != nil {
		return &PersistenceError{Op: "save completed count", Err: err}
	}
	return nil
}

// ResetAll reinitializes every feature's ratings to defaults, clears the
// outcome log, and zeroes the completed counter. The feature set itself is
// untouched, and a fresh pair cycle begins.
func (s *Session) ResetAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return ErrNotStarted
	}

	s.ratings = make(map[string]*elo.FeatureRating, len(s.features))
	for _, f := range s.features {
		s.ratings[f] = elo.NewFeatureRating(f)
	}
	s.outcomes = nil
	s.completed = 0
	s.scheduler.SetFeatures(s.features)
	s.current = nil

	if err := s.store.SaveRatings(s.ratings); err != nil {
		return &PersistenceError{Op: "save ratings", Err: err}
	}
	if err := s.store.SaveOutcomes(nil); err != nil {
		return &PersistenceError{Op: "save outcomes", Err: err}
	}
	if err := s.store.SaveCompletedCount(0); err != nil {
		return &PersistenceError{Op: "save completed count", Err: err}
	}
	return nil
}

// Progress returns the completed comparison count and the total required for
// full coverage of every pair on every active criterion.
func (s *Session) Progress() (completed, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed, pairing.TotalComparisons(len(s.features), len(s.criteria))
}

// Completed reports whether the session has reached full coverage. Completion
// is advisory: further comparisons are still allowed.
func (s *Session) Completed() bool {
	completed, total := s.Progress()
	return total > 0 && completed >= total
}

// Features returns a copy of the current feature list in insertion order.
func (s *Session) Features() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]string, len(s.features))
	copy(result, s.features)
	return result
}

// Ratings returns a copy of the rating records for current members of the
// feature set, keyed by feature name.
func (s *Session) Ratings() map[string]*elo.FeatureRating {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make(map[string]*elo.FeatureRating, len(s.features))
	for _, f := range s.features {
		if fr, ok := s.ratings[f]; ok {
			frCopy := *fr
			result[f] = &frCopy
		}
	}
	return result
}

// Outcomes returns a copy of the comparison log in append order.
func (s *Session) Outcomes() []Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]Outcome, len(s.outcomes))
	copy(result, s.outcomes)
	return result
}
