// ABOUTME: Recursive sanitization of decoded JSON values
// ABOUTME: Strips query-operator characters from keys and escapes markup in strings

package sanitize

import (
	"html"
	"strings"
)

// Value walks a decoded JSON value and returns a sanitized copy. Object keys
// lose the characters used for structured-query injection ($ and .); string
// values have markup-significant characters escaped to entities. The input
// is never rejected: sanitizing always produces a value, and applying Value
// twice yields the same result as applying it once.
func Value(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for key, val := range t {
			key = cleanKey(key)
			if key == "" {
				continue
			}
			out[key] = Value(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Value(val)
		}
		return out
	case string:
		return String(t)
	default:
		return v
	}
}

// String escapes markup-significant characters (<, >, &, quotes) to their
// entity form. Existing entities are normalized first so the operation is
// idempotent.
func String(s string) string {
	return html.EscapeString(html.UnescapeString(s))
}

// cleanKey removes the characters a structured-query engine would interpret
// as operators or path separators. A key reduced to nothing is dropped by
// the caller.
func cleanKey(key string) string {
	key = strings.ReplaceAll(key, "$", "")
	return strings.ReplaceAll(key, ".", "")
}
