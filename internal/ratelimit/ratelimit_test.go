// ABOUTME: Tests for fixed-window admission semantics
// ABOUTME: Covers budget exhaustion, window reset, and concurrent increments

package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_AdmitsUpToMax(t *testing.T) {
	limiter := NewLimiter(NewMemoryStore(), 5, time.Hour)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		decision, err := limiter.Admit(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, decision.Allowed, "request %d should be allowed", i+1)
	}

	decision, err := limiter.Admit(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, decision.Allowed, "request max+1 should be rejected")
	assert.Greater(t, decision.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, decision.RetryAfter, time.Hour)
}

func TestMemoryStore_KeysAreIndependent(t *testing.T) {
	limiter := NewLimiter(NewMemoryStore(), 1, time.Hour)
	ctx := context.Background()

	first, err := limiter.Admit(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, first.Allowed)

	blocked, err := limiter.Admit(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, blocked.Allowed)

	other, err := limiter.Admit(ctx, "5.6.7.8")
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}

func TestMemoryStore_WindowReset(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }

	limiter := NewLimiter(store, 2, time.Hour)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		decision, err := limiter.Admit(ctx, "1.2.3.4")
		require.NoError(t, err)
		require.True(t, decision.Allowed)
	}

	decision, err := limiter.Admit(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.False(t, decision.Allowed)

	// Advance past the window boundary; the budget starts over.
	now = now.Add(time.Hour + time.Second)

	decision, err = limiter.Admit(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestMemoryStore_RejectedRequestNotCounted(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }

	limiter := NewLimiter(store, 1, time.Hour)
	ctx := context.Background()

	first, err := limiter.Admit(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.True(t, first.Allowed)

	// Hammer past the budget; the stored count must stay at max.
	for i := 0; i < 10; i++ {
		decision, err := limiter.Admit(ctx, "1.2.3.4")
		require.NoError(t, err)
		require.False(t, decision.Allowed)
	}

	store.mu.Lock()
	count := store.windows["1.2.3.4"].count
	store.mu.Unlock()
	assert.Equal(t, 1, count)
}

func TestMemoryStore_ConcurrentAdmits(t *testing.T) {
	const max = 100
	limiter := NewLimiter(NewMemoryStore(), max, time.Hour)
	ctx := context.Background()

	var allowed atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < max*3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			decision, err := limiter.Admit(ctx, "1.2.3.4")
			if err == nil && decision.Allowed {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	// Exactly max admissions regardless of interleaving.
	assert.Equal(t, int64(max), allowed.Load())
}

func TestMemoryStore_Purge(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }

	ctx := context.Background()
	_, err := store.Admit(ctx, "1.2.3.4", 10, time.Minute)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	store.Purge()

	store.mu.Lock()
	remaining := len(store.windows)
	store.mu.Unlock()
	assert.Zero(t, remaining)
}

func TestBucketLimiter_BurstThenThrottle(t *testing.T) {
	limiter := NewBucketLimiter(0.001, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow("1.2.3.4"), "burst request %d should pass", i+1)
	}
	assert.False(t, limiter.Allow("1.2.3.4"), "request beyond burst should be throttled")

	// Other keys have their own bucket.
	assert.True(t, limiter.Allow("5.6.7.8"))
}
