// ABOUTME: Per-key token-bucket throttle for sensitive endpoints like login
// ABOUTME: Backed by golang.org/x/time/rate with idle-entry cleanup

package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// BucketLimiter throttles per client key with a token bucket. It sits in
// front of credential-guessing targets where the hourly API window is far
// too generous.
type BucketLimiter struct {
	mu      sync.Mutex
	entries map[string]*bucketEntry
	rps     rate.Limit
	burst   int
	idleTTL time.Duration
}

type bucketEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// NewBucketLimiter creates a limiter refilling rps tokens per second with
// the given burst per key.
func NewBucketLimiter(rps float64, burst int) *BucketLimiter {
	return &BucketLimiter{
		entries: make(map[string]*bucketEntry),
		rps:     rate.Limit(rps),
		burst:   burst,
		idleTTL: 15 * time.Minute,
	}
}

// Allow reports whether the key may proceed now.
func (b *BucketLimiter) Allow(key string) bool {
	now := time.Now()

	b.mu.Lock()
	defer b.mu.Unlock()

	ent, ok := b.entries[key]
	if !ok {
		ent = &bucketEntry{lim: rate.NewLimiter(b.rps, b.burst)}
		b.entries[key] = ent
	}
	ent.lastSeen = now

	return ent.lim.Allow()
}

// Purge drops entries idle longer than the TTL.
func (b *BucketLimiter) Purge() {
	cutoff := time.Now().Add(-b.idleTTL)

	b.mu.Lock()
	defer b.mu.Unlock()

	for key, ent := range b.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(b.entries, key)
		}
	}
}

// Run sweeps idle entries every interval until ctx is cancelled.
func (b *BucketLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.Purge()
		}
	}
}
