// ABOUTME: HTTP middleware applying the rate limiter to inbound requests
// ABOUTME: Keys clients by source address with optional X-Forwarded-For trust

package ratelimit

import (
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/roamware/trailhead/internal/failure"
)

// KeyFunc derives a client identity from a request.
type KeyFunc func(r *http.Request) string

// ErrorHandler renders a failure through the dispatcher's normalizer.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// DefaultKeyFunc keys clients by source IP. When trustXFF is set, the first
// entry of X-Forwarded-For wins, for deployments behind a proxy.
func DefaultKeyFunc(trustXFF bool) KeyFunc {
	return func(r *http.Request) string {
		if trustXFF {
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
					return ip
				}
			}
		}

		host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
		if err == nil && host != "" {
			return host
		}
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return "unknown"
	}
}

// Middleware admits or rejects each request through the limiter. Rejections
// become RateLimited failures rendered by the injected error handler. Counter
// store faults fail open: the request is admitted and the fault is logged,
// so a cache outage does not take the API down with it.
func Middleware(limiter *Limiter, keyFn KeyFunc, logger *slog.Logger, fail ErrorHandler) func(http.Handler) http.Handler {
	if keyFn == nil {
		keyFn = DefaultKeyFunc(false)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision, err := limiter.Admit(r.Context(), keyFn(r))
			if err != nil {
				logger.Error("rate limiter unavailable, admitting request", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			if !decision.Allowed {
				fail(w, r, failure.RateLimited(decision.RetryAfter))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
