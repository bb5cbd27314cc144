// ABOUTME: Fixed-window rate limiting with pluggable counter stores
// ABOUTME: Defines the Limiter, the CounterStore interface, and admission decisions

package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of an admission check.
type Decision struct {
	Allowed bool
	// RetryAfter is how long until the window resets. Set only on rejection.
	RetryAfter time.Duration
}

// CounterStore tracks request counts per client key over a fixed window.
// Admit performs the check and the increment as one atomic step: a request
// that would exceed max is rejected without being counted, so the stored
// count never passes max within a window.
type CounterStore interface {
	Admit(ctx context.Context, key string, max int, window time.Duration) (Decision, error)
}

// Limiter applies a fixed request budget per client key. The counter store
// is injected so tests can use doubles and deployments can share counters
// through Redis.
type Limiter struct {
	store  CounterStore
	max    int
	window time.Duration
}

// NewLimiter creates a limiter allowing max requests per window per key.
func NewLimiter(store CounterStore, max int, window time.Duration) *Limiter {
	return &Limiter{store: store, max: max, window: window}
}

// Admit decides whether the client identified by key may proceed.
func (l *Limiter) Admit(ctx context.Context, key string) (Decision, error) {
	return l.store.Admit(ctx, key, l.max, l.window)
}
