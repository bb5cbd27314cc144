// Package failure defines the closed set of classified failures that the
// admission pipeline and resource handlers produce.
//
// Every error that reaches the terminal error normalizer is either already a
// *Failure or is translated into one by Classify. The Operational flag
// separates expected, user-facing conditions (denied access, bad input,
// missing resources) from unexpected internal faults: operational failures
// render their message verbatim in every mode, while non-operational ones are
// masked outside development.
//
// Kinds map to HTTP status classes:
//
//   - RateLimited            429
//   - Unauthenticated        401
//   - Forbidden              403
//   - NotFound               404
//   - BadRequest, Validation 400
//   - Conflict               409
//   - PayloadTooLarge        413
//   - Internal               500
//
// Failures are immutable after construction and consumed exactly once by the
// normalizer; no other component renders responses for them.
package failure
