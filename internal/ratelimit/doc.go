// Package ratelimit provides request-admission throttling for the API surface.
//
// # Fixed Window
//
// The Limiter grants each client key a fixed budget per window (by default
// 100 requests per hour). Counts live in an injected CounterStore rather than
// ambient globals: MemoryStore for a single process, RedisStore to share one
// budget across instances. Admission and counting are a single atomic step,
// so the request that would exceed the budget is rejected without ever being
// counted and concurrent requests cannot lose increments.
//
// # Login Throttle
//
// BucketLimiter is a stricter per-key token bucket (golang.org/x/time/rate)
// for endpoints that verify credentials, where the hourly window is too
// coarse to stop guessing.
//
// # Middleware
//
// Middleware wires a Limiter in front of a handler chain, keying clients by
// source IP (optionally honoring X-Forwarded-For). Rejections surface as 429
// failures through the dispatcher's error normalizer; counter-store outages
// fail open so the API keeps serving.
package ratelimit
