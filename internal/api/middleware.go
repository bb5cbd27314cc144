// ABOUTME: Server-owned middleware: request logging, panic recovery, login throttle
// ABOUTME: Everything here reports failures through the error normalizer

package api

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/roamware/trailhead/internal/failure"
)

// handlerFunc is an http.HandlerFunc that may fail. The handle adapter
// routes the returned error into the normalizer.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

func (s *Server) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			s.renderError(w, r, err)
		}
	}
}

// statusRecorder captures the status code written by downstream
// handlers for the request log line.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	if rec.status == 0 {
		rec.status = http.StatusOK
	}
	return rec.ResponseWriter.Write(b)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}

// recoverer converts handler panics into internal failures rendered
// through the normalizer, keeping the process alive.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.renderError(w, r, &panicError{value: rec, stack: debug.Stack()})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// loginThrottle applies the stricter token-bucket limit to the login
// endpoint on top of the global window limiter.
func (s *Server) loginThrottle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.loginLimiter.Allow(s.keyFn(r)) {
			s.renderError(w, r, failure.TooManyAttempts(time.Second))
			return
		}
		next.ServeHTTP(w, r)
	})
}
