// Package idempotency claims request keys in Redis so that a retried
// request is not executed twice while the first attempt is in flight.
package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Store claims keys with SETNX and a TTL.
type Store struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// NewStore creates a store over rdb.
func NewStore(rdb redis.Cmdable, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// Key scopes a client-supplied key to the user.
func (s *Store) Key(userID uuid.UUID, key string) string {
	return fmt.Sprintf("idem:%s:%s", userID, key)
}

// Claim reports whether the key was free and is now held by the caller.
func (s *Store) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, key, "1", s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim idempotency key: %w", err)
	}
	return ok, nil
}

// Release frees a key so the request can be retried.
func (s *Store) Release(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}
