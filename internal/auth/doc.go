// Package auth provides authentication and authorization for the trailhead API.
//
// # Tokens
//
// Clients authenticate with HS256-signed JWTs carrying sub (user ID), iat,
// and exp claims. Tokens are accepted from the Authorization header
// ("Bearer <token>") or the jwt cookie.
//
//	token, err := verifier.Generate(userID, ttl)
//	userID, issuedAt, err := verifier.Verify(token)
//
// A token is valid only while all three hold: the signature verifies, exp is
// in the future, and the user has not changed their password after iat. The
// last check makes a password change revoke every outstanding token.
//
// # Principal
//
// Authenticate resolves a valid token to a Principal (user ID, role, token
// issue time) and attaches it to the request context:
//
//	principal := auth.FromContext(r.Context())
//
// # Role Guards
//
// RequireRoles gates routes by the closed role set defined in the store
// package:
//
//	auth.RequireRoles(fail, store.RoleAdmin, store.RoleLeadGuide)
//
// An empty role list only requires authentication. Guards assume Authenticate
// already ran; a missing principal is a wiring bug and panics.
//
// # Failure Handling
//
// Middleware never writes responses directly. The dispatcher injects an
// ErrorHandler, so authentication and authorization denials flow through the
// same error normalizer as every other failure.
package auth
