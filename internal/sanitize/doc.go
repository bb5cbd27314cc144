// Package sanitize neutralizes injection attempts in inbound request data.
//
// Two defenses run on every API request before routing:
//
//   - JSON body rewriting: object keys lose the $ and . characters a
//     structured-query engine would treat as operators, and string values
//     have markup characters escaped to entities, so stored content cannot
//     smuggle script into later responses.
//
//   - Query collapsing: duplicate query parameters keep only the last value
//     unless explicitly allowlisted, defeating parameter-pollution tricks.
//
// Sanitizing never rejects a request. The only failure this package can
// produce is the body-size cap (10 KB), which surfaces through the
// dispatcher's error normalizer as a 413. Sanitization is idempotent:
// running it over already-sanitized data changes nothing.
package sanitize
