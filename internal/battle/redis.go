package battle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// battleKeyPrefix namespaces battle records in Redis.
const battleKeyPrefix = "battle:"

// RedisRepository stores each battle as a JSON value under battle:<id>.
// Battles follow a single-logical-writer model, so mutations are plain
// get-modify-set; cross-request races on the same battle are out of scope.
type RedisRepository struct {
	client *redis.Client
}

// NewRedisRepository creates a Redis-backed battle repository.
func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

func battleKey(id string) string {
	return battleKeyPrefix + id
}

// load fetches and unmarshals a battle.
func (r *RedisRepository) load(ctx context.Context, id string) (*Battle, error) {
	data, err := r.client.Get(ctx, battleKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrBattleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch battle %s: %w", id, err)
	}

	var b Battle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("malformed battle record %s: %w", id, err)
	}
	return &b, nil
}

// save marshals and stores a battle.
func (r *RedisRepository) save(ctx context.Context, b *Battle) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to marshal battle %s: %w", b.ID, err)
	}
	if err := r.client.Set(ctx, battleKey(b.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store battle %s: %w", b.ID, err)
	}
	return nil
}

// Create validates and stores a new battle.
func (r *RedisRepository) Create(ctx context.Context, c Creation) (*Battle, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	b := New(c)
	if err := r.save(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// GetByID retrieves a battle by id.
func (r *RedisRepository) GetByID(ctx context.Context, id string) (*Battle, error) {
	return r.load(ctx, id)
}

// Update replaces a battle's mutable fields, preserving tallies and ratings
// for surviving features.
func (r *RedisRepository) Update(ctx context.Context, id string, c Creation) (*Battle, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	b, err := r.load(ctx, id)
	if err != nil {
		return nil, err
	}
	b.ApplyUpdate(c)
	if err := r.save(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Delete removes a battle.
func (r *RedisRepository) Delete(ctx context.Context, id string) error {
	n, err := r.client.Del(ctx, battleKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete battle %s: %w", id, err)
	}
	if n == 0 {
		return ErrBattleNotFound
	}
	return nil
}

// RecordVote applies one decisive comparison to a battle.
func (r *RedisRepository) RecordVote(ctx context.Context, vote Vote) (*Battle, error) {
	b, err := r.load(ctx, vote.BattleID)
	if err != nil {
		return nil, err
	}
	if err := b.ApplyVote(vote.Winner, vote.Loser, vote.Criterion); err != nil {
		return nil, err
	}
	if err := r.save(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// IncrementVisitors bumps the battle's visitor counter.
func (r *RedisRepository) IncrementVisitors(ctx context.Context, id string) error {
	b, err := r.load(ctx, id)
	if err != nil {
		return err
	}
	b.TotalVisitors++
	return r.save(ctx, b)
}
