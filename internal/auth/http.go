// ABOUTME: HTTP middleware for JWT authentication and role-based authorization
// ABOUTME: Extracts tokens from header or cookie and attaches the Principal to context

package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/roamware/trailhead/internal/failure"
	"github.com/roamware/trailhead/internal/store"
)

// TokenCookieName is the cookie checked when no Authorization header is present.
const TokenCookieName = "jwt"

// UserStore is the identity-store capability the middleware needs.
type UserStore interface {
	GetUser(ctx context.Context, id string) (*store.User, error)
}

// ErrorHandler renders a failure. The dispatcher injects the single error
// normalizer here so middleware never renders responses on its own.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// extractToken pulls a bearer token from the Authorization header, falling
// back to the jwt cookie. Returns false if neither carries a token.
func extractToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		if token := strings.TrimPrefix(header, "Bearer "); token != "" {
			return token, true
		}
	}
	if cookie, err := r.Cookie(TokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}
	return "", false
}

// Authenticate creates an HTTP middleware that verifies the bearer token,
// resolves the user it references, and attaches a Principal to the request
// context. Every failure it produces is operational and client-fault; token
// internals never appear in messages.
//
// The checks run in order:
//
//  1. a token must be present (header or cookie)
//  2. its signature must verify and it must not be expired
//  3. the referenced user must still exist
//  4. the user must not have changed their password after the token was issued
func Authenticate(users UserStore, verifier TokenVerifier, fail ErrorHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := extractToken(r)
			if !ok {
				fail(w, r, failure.Unauthenticated("You are not logged in! Please log in to get access."))
				return
			}

			userID, issuedAt, err := verifier.Verify(token)
			if err != nil {
				if errors.Is(err, ErrExpiredToken) {
					fail(w, r, failure.Unauthenticated("Your token has expired! Please log in again."))
					return
				}
				fail(w, r, failure.Unauthenticated("Invalid token. Please log in again!"))
				return
			}

			user, err := users.GetUser(r.Context(), userID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					fail(w, r, failure.Unauthenticated("The user belonging to this token does no longer exist."))
					return
				}
				// Store fault, not a client problem; the normalizer
				// classifies it as internal.
				fail(w, r, err)
				return
			}

			if user.PasswordChangedAt.After(issuedAt) {
				fail(w, r, failure.Unauthenticated("User recently changed password! Please log in again."))
				return
			}

			principal := &Principal{
				ID:            user.ID,
				Role:          user.Role,
				TokenIssuedAt: issuedAt,
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// RequireRoles creates an HTTP middleware that permits only principals whose
// role is in the given set. An empty set permits any authenticated principal.
// Must be used after Authenticate: it panics if no Principal is attached.
func RequireRoles(fail ErrorHandler, roles ...store.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := MustFromContext(r.Context())

			if len(roles) > 0 && !roleAllowed(principal.Role, roles) {
				fail(w, r, failure.Forbidden("You do not have permission to perform this action"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func roleAllowed(role store.Role, allowed []store.Role) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}
