// ABOUTME: Tests for the error normalizer's wire-level rendering details
// ABOUTME: Covers Retry-After rounding and the fail/error status words

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/roamware/trailhead/internal/failure"
)

func TestRetryAfterRoundsUp(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name       string
		retryAfter time.Duration
		want       string
	}{
		{"sub-second remainder rounds to full window", 59*time.Minute + 59*time.Second + 500*time.Millisecond, "3600"},
		{"exact seconds stay exact", 30 * time.Second, "30"},
		{"sub-second waits round to one", 200 * time.Millisecond, "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/api/v1/tours", nil)
			ts.srv.renderError(w, r, failure.RateLimited(tt.retryAfter))

			assert.Equal(t, http.StatusTooManyRequests, w.Code)
			assert.Equal(t, tt.want, w.Header().Get("Retry-After"))
		})
	}
}

func TestStatusWord(t *testing.T) {
	assert.Equal(t, "fail", statusWord(http.StatusNotFound))
	assert.Equal(t, "fail", statusWord(http.StatusTooManyRequests))
	assert.Equal(t, "error", statusWord(http.StatusInternalServerError))
}
