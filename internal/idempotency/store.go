// Package idempotency deduplicates tool invocations. Voice platforms retry
// webhook deliveries, and a retried charge-card call must return the
// original spoken result instead of charging twice.
package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store caches tool results keyed by the platform's tool call ID.
type Store struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewStore creates an idempotency store. A nil client disables caching.
func NewStore(redisClient *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Store{redis: redisClient, ttl: ttl}
}

// Enabled reports whether deduplication is active.
func (s *Store) Enabled() bool {
	return s != nil && s.redis != nil
}

func (s *Store) key(toolCallID string) string {
	return fmt.Sprintf("toolcall:result:%s", toolCallID)
}

// Get returns the cached result for a tool call ID, if any.
func (s *Store) Get(ctx context.Context, toolCallID string) (string, bool, error) {
	if !s.Enabled() || toolCallID == "" {
		return "", false, nil
	}
	result, err := s.redis.Get(ctx, s.key(toolCallID)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("idempotency: get: %w", err)
	}
	return result, true, nil
}

// Put records the result for a tool call ID with the configured TTL.
func (s *Store) Put(ctx context.Context, toolCallID, result string) error {
	if !s.Enabled() || toolCallID == "" {
		return nil
	}
	if err := s.redis.Set(ctx, s.key(toolCallID), result, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency: put: %w", err)
	}
	return nil
}
