// Package api wires the request-admission pipeline in front of the
// resource handlers and funnels every failure through a single error
// normalizer.
//
// The pipeline order is fixed: request logging and panic recovery wrap
// everything; under /api each request passes the rate limiter, the
// payload sanitizer, and the query collapser before routing; protected
// routes then add the credential verifier and the role guard. Handlers
// return errors instead of writing error responses themselves, so the
// normalizer in respond.go is the only place a failure becomes bytes
// on the wire.
package api
