package battle

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/onnwee/featrank/internal/elo"
)

// ErrBattleNotFound is returned when no battle exists for an id.
var ErrBattleNotFound = errors.New("battle not found")

// Vote is one visitor's decision in a battle.
type Vote struct {
	BattleID  string        `json:"battle_id"`
	Winner    string        `json:"winner"`
	Loser     string        `json:"loser"`
	Criterion elo.Criterion `json:"criterion"`
	Timestamp int64         `json:"timestamp"`
}

// Repository defines the persistence operations for battles. Vote recording
// and visitor counting are read-modify-write, so implementations must apply
// them atomically per battle.
type Repository interface {
	// Create validates and stores a new battle.
	Create(ctx context.Context, c Creation) (*Battle, error)

	// GetByID retrieves a battle. Returns ErrBattleNotFound if absent.
	GetByID(ctx context.Context, id string) (*Battle, error)

	// Update replaces a battle's mutable fields, preserving tallies and
	// ratings for surviving features.
	Update(ctx context.Context, id string, c Creation) (*Battle, error)

	// Delete removes a battle. Returns ErrBattleNotFound if absent.
	Delete(ctx context.Context, id string) error

	// RecordVote applies one decisive comparison to a battle.
	RecordVote(ctx context.Context, vote Vote) (*Battle, error)

	// IncrementVisitors bumps the battle's visitor counter.
	IncrementVisitors(ctx context.Context, id string) error
}

// InMemoryRepository is an in-memory implementation of Repository.
// Used for testing and development.
type InMemoryRepository struct {
	mu      sync.RWMutex
	battles map[string]*Battle
}

// NewInMemoryRepository creates a new in-memory battle repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		battles: make(map[string]*Battle),
	}
}

// copyBattle returns a deep copy so callers cannot mutate stored state.
func copyBattle(b *Battle) *Battle {
	battleCopy := *b
	battleCopy.Features = make([]string, len(b.Features))
	copy(battleCopy.Features, b.Features)
	battleCopy.Votes = make(map[string]*VoteTally, len(b.Votes))
	for name, tally := range b.Votes {
		tallyCopy := *tally
		battleCopy.Votes[name] = &tallyCopy
	}
	battleCopy.Ratings = make(map[string]elo.Ratings, len(b.Ratings))
	for name, r := range b.Ratings {
		battleCopy.Ratings[name] = r
	}
	return &battleCopy
}

// Create validates and stores a new battle.
func (r *InMemoryRepository) Create(ctx context.Context, c Creation) (*Battle, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	b := New(c)
	r.mu.Lock()
	r.battles[b.ID] = b
	r.mu.Unlock()
	return copyBattle(b), nil
}

// GetByID retrieves a battle by id.
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Battle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.battles[id]
	if !ok {
		return nil, ErrBattleNotFound
	}
	return copyBattle(b), nil
}

// Update replaces a battle's mutable fields.
func (r *InMemoryRepository) Update(ctx context.Context, id string, c Creation) (*Battle, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.battles[id]
	if !ok {
		return nil, ErrBattleNotFound
	}
	b.ApplyUpdate(c)
	return copyBattle(b), nil
}

// Delete removes a battle.
func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.battles[id]; !ok {
		return ErrBattleNotFound
	}
	delete(r.battles, id)
	return nil
}

// RecordVote applies one decisive comparison to a battle.
func (r *InMemoryRepository) RecordVote(ctx context.Context, vote Vote) (*Battle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.battles[vote.BattleID]
	if !ok {
		return nil, ErrBattleNotFound
	}
	if err := b.ApplyVote(vote.Winner, vote.Loser, vote.Criterion); err != nil {
		return nil, err
	}
	return copyBattle(b), nil
}

// IncrementVisitors bumps the battle's visitor counter.
func (r *InMemoryRepository) IncrementVisitors(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.battles[id]
	if !ok {
		return ErrBattleNotFound
	}
	b.TotalVisitors++
	return nil
}

// NewVote builds a vote with the current timestamp.
func NewVote(battleID, winner, loser string, criterion elo.Criterion) Vote {
	return Vote{
		BattleID:  battleID,
		Winner:    winner,
		Loser:     loser,
		Criterion: criterion,
		Timestamp: time.Now().UnixMilli(),
	}
}
