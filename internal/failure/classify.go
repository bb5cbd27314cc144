// ABOUTME: Translation of unclassified collaborator faults into Failures
// ABOUTME: Pattern rules for validation, duplicate-key, no-rows, and body-cap errors

package failure

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/roamware/trailhead/internal/store"
)

// Classify converts any error into a *Failure. Errors that are already
// classified pass through untouched; well-known collaborator faults are
// translated by pattern; everything else becomes a non-operational Internal.
func Classify(err error) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, FieldError{
				Field:   fe.Field(),
				Message: fieldMessage(fe),
			})
		}
		return Validation(fields)
	}

	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return PayloadTooLarge(maxBytes.Limit)
	}

	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, store.ErrNotFound) {
		return NotFound("No document found with that ID")
	}

	if errors.Is(err, store.ErrDuplicateEmail) {
		return Conflict("Duplicate field value. Please use another value!")
	}

	if errors.Is(err, store.ErrDuplicateReview) {
		return Conflict("You have already reviewed this tour")
	}

	if isDuplicateKey(err) {
		return Conflict("Duplicate field value. Please use another value!")
	}

	return Internal(err)
}

// isDuplicateKey reports whether err is a SQLite unique-constraint violation.
// modernc.org/sqlite surfaces these as SQLITE_CONSTRAINT_UNIQUE in the
// error text, so matching on the message is the stable check.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "constraint failed: UNIQUE")
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be >= %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be <= %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
