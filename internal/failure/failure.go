// ABOUTME: Classified failure types carried through the admission pipeline
// ABOUTME: Closed kind set with operational flag and HTTP status class

package failure

import (
	"fmt"
	"net/http"
	"time"
)

// Kind identifies which variant of the closed failure set this is.
type Kind string

const (
	KindRateLimited     Kind = "rate_limited"
	KindUnauthenticated Kind = "unauthenticated"
	KindForbidden       Kind = "forbidden"
	KindNotFound        Kind = "not_found"
	KindBadRequest      Kind = "bad_request"
	KindValidation      Kind = "validation"
	KindConflict        Kind = "conflict"
	KindPayloadTooLarge Kind = "payload_too_large"
	KindInternal        Kind = "internal"
)

// FieldError describes a single invalid field in a validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Failure is a classified error flowing to the error normalizer.
// Operational failures are expected, user-facing conditions (bad input,
// denied access); non-operational ones are internal faults whose detail
// must not reach clients outside development mode.
// A Failure is immutable after construction.
type Failure struct {
	Kind        Kind
	Message     string
	Status      int
	Operational bool

	// RetryAfter is set only for rate-limit rejections.
	RetryAfter time.Duration

	// Fields is set only for validation failures.
	Fields []FieldError

	cause error
}

// Error makes *Failure satisfy the error interface.
func (f *Failure) Error() string {
	return f.Message
}

// Unwrap exposes the underlying cause, if any.
func (f *Failure) Unwrap() error {
	return f.cause
}

// RateLimited reports that the client exceeded its request window.
// retryAfter hints when the window resets.
func RateLimited(retryAfter time.Duration) *Failure {
	return &Failure{
		Kind:        KindRateLimited,
		Message:     "Too many requests from this IP, please try again in an hour!",
		Status:      http.StatusTooManyRequests,
		Operational: true,
		RetryAfter:  retryAfter,
	}
}

// TooManyAttempts reports a burst-throttle rejection. Unlike RateLimited,
// whose message names the hourly API window, this one fits the
// seconds-scale login limiter.
func TooManyAttempts(retryAfter time.Duration) *Failure {
	return &Failure{
		Kind:        KindRateLimited,
		Message:     "Too many login attempts, please try again shortly!",
		Status:      http.StatusTooManyRequests,
		Operational: true,
		RetryAfter:  retryAfter,
	}
}

// Unauthenticated reports a missing, invalid, expired, or stale credential.
func Unauthenticated(message string) *Failure {
	return &Failure{
		Kind:        KindUnauthenticated,
		Message:     message,
		Status:      http.StatusUnauthorized,
		Operational: true,
	}
}

// Forbidden reports an authenticated principal lacking a permitted role.
func Forbidden(message string) *Failure {
	return &Failure{
		Kind:        KindForbidden,
		Message:     message,
		Status:      http.StatusForbidden,
		Operational: true,
	}
}

// NotFound reports a missing resource or an unmatched route.
func NotFound(message string) *Failure {
	return &Failure{
		Kind:        KindNotFound,
		Message:     message,
		Status:      http.StatusNotFound,
		Operational: true,
	}
}

// BadRequest reports malformed client input such as an invalid identifier.
func BadRequest(message string) *Failure {
	return &Failure{
		Kind:        KindBadRequest,
		Message:     message,
		Status:      http.StatusBadRequest,
		Operational: true,
	}
}

// Validation reports one or more invalid request fields.
func Validation(fields []FieldError) *Failure {
	return &Failure{
		Kind:        KindValidation,
		Message:     "Invalid input data.",
		Status:      http.StatusBadRequest,
		Operational: true,
		Fields:      fields,
	}
}

// Conflict reports a duplicate-resource condition.
func Conflict(message string) *Failure {
	return &Failure{
		Kind:        KindConflict,
		Message:     message,
		Status:      http.StatusConflict,
		Operational: true,
	}
}

// PayloadTooLarge reports a request body exceeding the configured cap.
func PayloadTooLarge(limit int64) *Failure {
	return &Failure{
		Kind:        KindPayloadTooLarge,
		Message:     fmt.Sprintf("Request body exceeds the %d byte limit.", limit),
		Status:      http.StatusRequestEntityTooLarge,
		Operational: true,
	}
}

// Internal wraps an unexpected fault. It is the only non-operational kind;
// its cause is logged but never rendered to clients in production mode.
func Internal(cause error) *Failure {
	return &Failure{
		Kind:        KindInternal,
		Message:     "something went very wrong",
		Status:      http.StatusInternalServerError,
		Operational: false,
		cause:       cause,
	}
}
