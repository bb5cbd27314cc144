// ABOUTME: Success envelope writer and the terminal error normalizer
// ABOUTME: Single rendering path for every failure, with dev/production modes

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/roamware/trailhead/internal/failure"
)

// successBody is the envelope for every 2xx response.
type successBody struct {
	Status  string `json:"status"`
	Results *int   `json:"results,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// errorBody is the envelope for every non-2xx response. Detail and
// Stack are populated only in development mode.
type errorBody struct {
	Status  string               `json:"status"`
	Message string               `json:"message"`
	Errors  []failure.FieldError `json:"errors,omitempty"`
	Kind    string               `json:"error,omitempty"`
	Detail  string               `json:"detail,omitempty"`
	Stack   string               `json:"stack,omitempty"`
}

// panicError carries a recovered panic value and the stack captured at
// the recovery point, so development responses can include it.
type panicError struct {
	value any
	stack []byte
}

func (p *panicError) Error() string {
	return fmt.Sprintf("panic: %v", p.value)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("encoding response", "error", err)
	}
}

// respond writes a success envelope around data.
func (s *Server) respond(w http.ResponseWriter, status int, data any) {
	s.writeJSON(w, status, successBody{Status: "success", Data: data})
}

// respondList writes a success envelope with a result count, the shape
// used by collection endpoints.
func (s *Server) respondList(w http.ResponseWriter, count int, data any) {
	s.writeJSON(w, http.StatusOK, successBody{Status: "success", Results: &count, Data: data})
}

// renderError is the error normalizer: the single terminal sink for
// every failure produced anywhere in the pipeline or the handlers.
// It classifies err, logs non-operational faults, and writes exactly
// one response. 4xx statuses render as "fail", 5xx as "error".
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	f := failure.Classify(err)

	if !f.Operational {
		s.logger.Error("unhandled error",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
	}

	body := errorBody{
		Status:  statusWord(f.Status),
		Message: f.Message,
		Errors:  f.Fields,
	}

	if s.dev {
		body.Kind = string(f.Kind)
		if cause := f.Unwrap(); cause != nil {
			body.Detail = cause.Error()
		}
		var pe *panicError
		if errors.As(err, &pe) {
			body.Stack = string(pe.stack)
		} else if !f.Operational {
			body.Stack = string(debug.Stack())
		}
	}

	if f.RetryAfter > 0 {
		// Round up so the client never retries before the window resets.
		secs := int((f.RetryAfter + time.Second - 1) / time.Second)
		w.Header().Set("Retry-After", strconv.Itoa(secs))
	}

	s.writeJSON(w, f.Status, body)
}

func statusWord(status int) string {
	if status >= 500 {
		return "error"
	}
	return "fail"
}
