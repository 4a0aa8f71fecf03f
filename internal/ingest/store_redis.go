package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "ticketflow:ingest:"

// RedisStore keeps outcomes in Redis, surviving server restarts. A zero TTL
// keeps outcomes forever.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, messageID string) (*Outcome, bool, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+messageID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var outcome Outcome
	if err := json.Unmarshal(data, &outcome); err != nil {
		return nil, false, fmt.Errorf("failed to decode stored outcome: %w", err)
	}
	return &outcome, true, nil
}

// Put implements Store.
func (s *RedisStore) Put(ctx context.Context, messageID string, outcome *Outcome) error {
	data, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("failed to encode outcome: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+messageID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
