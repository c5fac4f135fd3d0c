package session

import (
	"sync"

	"github.com/onnwee/featrank/internal/elo"
)

// InMemoryStore is an in-memory implementation of Store.
// Used for testing and for sessions that do not need durability.
type InMemoryStore struct {
	mu        sync.RWMutex
	features  []string
	ratings   map[string]*elo.FeatureRating
	outcomes  []Outcome
	completed int
}

// NewInMemoryStore creates a new in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		ratings: make(map[string]*elo.FeatureRating),
	}
}

// LoadFeatures returns a copy of the ordered feature list.
func (s *InMemoryStore) LoadFeatures() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]string, len(s.features))
	copy(result, s.features)
	return result, nil
}

// SaveFeatures stores a copy of the ordered feature list.
func (s *InMemoryStore) SaveFeatures(features []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.features = make([]string, len(features))
	copy(s.features, features)
	return nil
}

// LoadRatings returns a deep copy of the rating mapping.
func (s *InMemoryStore) LoadRatings() (map[string]*elo.FeatureRating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make(map[string]*elo.FeatureRating, len(s.ratings))
	for name, fr := range s.ratings {
		frCopy := *fr
		result[name] = &frCopy
	}
	return result, nil
}

// SaveRatings stores a deep copy of the rating mapping.
func (s *InMemoryStore) SaveRatings(ratings map[string]*elo.FeatureRating) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ratings = make(map[string]*elo.FeatureRating, len(ratings))
	for name, fr := range ratings {
		frCopy := *fr
		s.ratings[name] = &frCopy
	}
	return nil
}

// LoadOutcomes returns a copy of the comparison log.
func (s *InMemoryStore) LoadOutcomes() ([]Outcome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]Outcome, len(s.outcomes))
	copy(result, s.outcomes)
	return result, nil
}

// AppendOutcome adds one record to the comparison log.
func (s *InMemoryStore) AppendOutcome(outcome Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes = append(s.outcomes, outcome)
	return nil
}

// SaveOutcomes replaces the comparison log.
func (s *InMemoryStore) SaveOutcomes(outcomes []Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes = make([]Outcome, len(outcomes))
	copy(s.outcomes, outcomes)
	return nil
}

// LoadCompletedCount returns the completed-comparison counter.
func (s *InMemoryStore) LoadCompletedCount() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.completed, nil
}

// SaveCompletedCount stores the completed-comparison counter.
func (s *InMemoryStore) SaveCompletedCount(count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed = count
	return nil
}
