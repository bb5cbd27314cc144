// ABOUTME: In-process CounterStore backed by a mutex-guarded map
// ABOUTME: Windows reset lazily; Run sweeps expired entries periodically

package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count   int
	resetAt time.Time
}

// MemoryStore is a process-local CounterStore. The mutex spans the whole
// check-and-increment so concurrent requests never lose updates or slip past
// the budget.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window

	// now is replaceable in tests.
	now func() time.Time
}

// NewMemoryStore creates an empty in-process counter store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// Admit implements CounterStore.
func (s *MemoryStore) Admit(ctx context.Context, key string, max int, windowLen time.Duration) (Decision, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok || !now.Before(w.resetAt) {
		s.windows[key] = &window{count: 1, resetAt: now.Add(windowLen)}
		return Decision{Allowed: true}, nil
	}

	if w.count >= max {
		return Decision{Allowed: false, RetryAfter: w.resetAt.Sub(now)}, nil
	}

	w.count++
	return Decision{Allowed: true}, nil
}

// Purge drops windows that have already reset.
func (s *MemoryStore) Purge() {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, w := range s.windows {
		if !now.Before(w.resetAt) {
			delete(s.windows, key)
		}
	}
}

// Run sweeps expired windows every interval until ctx is cancelled.
func (s *MemoryStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Purge()
		}
	}
}
