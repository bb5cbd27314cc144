// ABOUTME: Redis-backed CounterStore for sharing rate windows across instances
// ABOUTME: Uses INCR with a window-length expiry and decrements on rejection

package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a CounterStore backed by a shared Redis instance, for
// deployments where several API processes must enforce one budget per client.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithPrefix overrides the key prefix (default "ratelimit").
func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.prefix = strings.Trim(prefix, ":")
	}
}

// NewRedisStore creates a CounterStore on the given client.
func NewRedisStore(rdb *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		rdb:    rdb,
		prefix: "ratelimit",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Admit implements CounterStore. The first increment in a window sets the
// key's expiry to the window length; rejected requests are decremented back
// out so the stored count stays within the budget.
func (s *RedisStore) Admit(ctx context.Context, key string, max int, window time.Duration) (Decision, error) {
	rkey := s.prefix + ":" + key

	count, err := s.rdb.Incr(ctx, rkey).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("incrementing counter: %w", err)
	}

	if count == 1 {
		if err := s.rdb.Expire(ctx, rkey, window).Err(); err != nil {
			return Decision{}, fmt.Errorf("setting window expiry: %w", err)
		}
	}

	if count > int64(max) {
		// Undo the over-limit increment; the rejected request is not counted.
		_ = s.rdb.Decr(ctx, rkey).Err()

		ttl, err := s.rdb.TTL(ctx, rkey).Result()
		if err != nil || ttl < 0 {
			ttl = window
		}
		return Decision{Allowed: false, RetryAfter: ttl}, nil
	}

	return Decision{Allowed: true}, nil
}
