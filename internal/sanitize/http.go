// ABOUTME: HTTP middleware sanitizing request bodies and query strings
// ABOUTME: Caps body size, rewrites JSON payloads, and collapses duplicate parameters

package sanitize

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
)

// BodyLimit is the maximum accepted request body size.
const BodyLimit int64 = 10 << 10 // 10 KB

// ErrorHandler renders a failure through the dispatcher's normalizer.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Body creates a middleware that caps the request body at limit bytes and
// sanitizes JSON payloads in place. Payloads that are not JSON objects pass
// through untouched; only an oversized body produces a failure.
func Body(limit int64, fail ErrorHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body == nil || r.Body == http.NoBody {
				next.ServeHTTP(w, r)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, limit)
			raw, err := io.ReadAll(r.Body)
			if err != nil {
				// Only MaxBytesReader trips here in practice; the
				// normalizer maps it to a 413.
				fail(w, r, err)
				return
			}

			if sanitized, ok := sanitizeJSON(raw); ok {
				raw = sanitized
			}

			r.Body = io.NopCloser(bytes.NewReader(raw))
			r.ContentLength = int64(len(raw))
			next.ServeHTTP(w, r)
		})
	}
}

// sanitizeJSON re-encodes a JSON document with its keys and strings cleaned.
// Returns ok=false for non-JSON payloads, which are left for the handler's
// decoder to complain about.
func sanitizeJSON(raw []byte) ([]byte, bool) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, false
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, false
	}

	sanitized, err := json.Marshal(Value(doc))
	if err != nil {
		return nil, false
	}
	return sanitized, true
}

// CollapseQuery creates a middleware that rewrites the query string so each
// parameter keeps only its last value, preventing parameter-pollution tricks.
// Parameters in the allowlist keep every value, for filters that genuinely
// accept multiples. Values are sanitized like body strings.
func CollapseQuery(allowlist ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(allowlist))
	for _, name := range allowlist {
		allowed[name] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			query := r.URL.Query()
			collapsed := make(url.Values, len(query))
			for name, values := range query {
				if len(values) == 0 {
					continue
				}
				if allowed[name] {
					for _, v := range values {
						collapsed.Add(name, String(v))
					}
					continue
				}
				collapsed.Set(name, String(values[len(values)-1]))
			}
			r.URL.RawQuery = collapsed.Encode()
			next.ServeHTTP(w, r)
		})
	}
}
