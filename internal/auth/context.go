// ABOUTME: Principal context for tracking identity through request handlers
// ABOUTME: Provides WithPrincipal/FromContext for propagating auth info via context

package auth

import (
	"context"
	"time"

	"github.com/roamware/trailhead/internal/store"
)

// Principal holds the authenticated identity resolved for a single request.
// It is populated by the Authenticate middleware and retrieved from context
// in handlers. It lives exactly as long as the request.
type Principal struct {
	ID            string     // user ID from the token's sub claim
	Role          store.Role // role at the time of lookup
	TokenIssuedAt time.Time  // iat claim of the presented token
}

// principalKey is the key type for storing a Principal in context.Context.
type principalKey struct{}

// WithPrincipal returns a new context with the Principal attached.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext retrieves the Principal from the context, returning nil if not present.
func FromContext(ctx context.Context) *Principal {
	val := ctx.Value(principalKey{})
	if val == nil {
		return nil
	}
	p, ok := val.(*Principal)
	if !ok {
		return nil
	}
	return p
}

// MustFromContext retrieves the Principal from the context, panicking if not
// present. Role guards use this: reaching one without a principal attached is
// a route-wiring bug, not a request-level failure.
func MustFromContext(ctx context.Context) *Principal {
	p := FromContext(ctx)
	if p == nil {
		panic("auth: Principal not found in context")
	}
	return p
}
