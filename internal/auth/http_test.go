// ABOUTME: Tests for HTTP authentication and authorization middleware
// ABOUTME: Covers token extraction, stale credentials, role gates, and guard panics

package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roamware/trailhead/internal/failure"
	"github.com/roamware/trailhead/internal/store"
)

// capturingFail is an ErrorHandler that records the failure and writes its
// status, standing in for the dispatcher's normalizer.
type capturingFail struct {
	err error
}

func (c *capturingFail) handle(w http.ResponseWriter, r *http.Request, err error) {
	c.err = err
	w.WriteHeader(failure.Classify(err).Status)
}

func newTestVerifier(t *testing.T) *JWTVerifier {
	t.Helper()
	verifier, err := NewJWTVerifier(testSecret)
	require.NoError(t, err)
	return verifier
}

func seedUser(t *testing.T, users *store.MockStore, role store.Role, changedAt time.Time) *store.User {
	t.Helper()
	user := &store.User{
		ID:                "user-123",
		Name:              "Test User",
		Email:             "test@example.com",
		Role:              role,
		PasswordHash:      "hash",
		PasswordChangedAt: changedAt,
		CreatedAt:         changedAt,
	}
	require.NoError(t, users.CreateUser(context.Background(), user))
	return user
}

func TestAuthenticate_ValidToken(t *testing.T) {
	verifier := newTestVerifier(t)
	users := store.NewMockStore()
	user := seedUser(t, users, store.RoleGuide, time.Now().Add(-time.Hour))

	token, err := verifier.Generate(user.ID, time.Hour)
	require.NoError(t, err)

	fail := &capturingFail{}
	var gotPrincipal *Principal
	handler := Authenticate(users, verifier, fail.handle)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPrincipal = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tours", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gotPrincipal)
	assert.Equal(t, user.ID, gotPrincipal.ID)
	assert.Equal(t, store.RoleGuide, gotPrincipal.Role)
	assert.False(t, gotPrincipal.TokenIssuedAt.IsZero())
	assert.NoError(t, fail.err)
}

func TestAuthenticate_TokenFromCookie(t *testing.T) {
	verifier := newTestVerifier(t)
	users := store.NewMockStore()
	user := seedUser(t, users, store.RoleUser, time.Now().Add(-time.Hour))

	token, err := verifier.Generate(user.ID, time.Hour)
	require.NoError(t, err)

	fail := &capturingFail{}
	handler := Authenticate(users, verifier, fail.handle)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tours", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: token})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthenticate_Failures(t *testing.T) {
	verifier := newTestVerifier(t)

	makeUsers := func(changedAt time.Time) *store.MockStore {
		users := store.NewMockStore()
		seedUser(t, users, store.RoleUser, changedAt)
		return users
	}

	validToken := func() string {
		token, err := verifier.Generate("user-123", time.Hour)
		require.NoError(t, err)
		return token
	}

	tests := []struct {
		name        string
		users       *store.MockStore
		setRequest  func(r *http.Request)
		wantMessage string
	}{
		{
			name:        "missing token",
			users:       makeUsers(time.Now().Add(-time.Hour)),
			setRequest:  func(r *http.Request) {},
			wantMessage: "You are not logged in! Please log in to get access.",
		},
		{
			name:  "malformed token",
			users: makeUsers(time.Now().Add(-time.Hour)),
			setRequest: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer garbage")
			},
			wantMessage: "Invalid token. Please log in again!",
		},
		{
			name:  "expired token",
			users: makeUsers(time.Now().Add(-time.Hour)),
			setRequest: func(r *http.Request) {
				token, err := verifier.Generate("user-123", -time.Minute)
				require.NoError(t, err)
				r.Header.Set("Authorization", "Bearer "+token)
			},
			wantMessage: "Your token has expired! Please log in again.",
		},
		{
			name:  "user no longer exists",
			users: store.NewMockStore(),
			setRequest: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+validToken())
			},
			wantMessage: "The user belonging to this token does no longer exist.",
		},
		{
			name:  "password changed after token issued",
			users: makeUsers(time.Now().Add(time.Hour)),
			setRequest: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+validToken())
			},
			wantMessage: "User recently changed password! Please log in again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fail := &capturingFail{}
			handler := Authenticate(tt.users, verifier, fail.handle)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("handler should not be called")
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/tours", nil)
			tt.setRequest(req)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)

			f := failure.Classify(fail.err)
			assert.Equal(t, failure.KindUnauthenticated, f.Kind)
			assert.True(t, f.Operational)
			assert.Equal(t, tt.wantMessage, f.Message)
		})
	}
}

func TestAuthenticate_StoreFaultIsNotOperational(t *testing.T) {
	verifier := newTestVerifier(t)
	users := store.NewMockStore()
	users.Err = errors.New("connection reset")

	token, err := verifier.Generate("user-123", time.Hour)
	require.NoError(t, err)

	fail := &capturingFail{}
	handler := Authenticate(users, verifier, fail.handle)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tours", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	f := failure.Classify(fail.err)
	assert.Equal(t, failure.KindInternal, f.Kind)
	assert.False(t, f.Operational)
}

func TestRequireRoles(t *testing.T) {
	tests := []struct {
		name       string
		role       store.Role
		allowed    []store.Role
		wantStatus int
	}{
		{"admin allowed on admin routes", store.RoleAdmin, []store.Role{store.RoleAdmin, store.RoleLeadGuide}, http.StatusOK},
		{"lead-guide allowed on admin routes", store.RoleLeadGuide, []store.Role{store.RoleAdmin, store.RoleLeadGuide}, http.StatusOK},
		{"user rejected on admin routes", store.RoleUser, []store.Role{store.RoleAdmin, store.RoleLeadGuide}, http.StatusForbidden},
		{"guide rejected on user routes", store.RoleGuide, []store.Role{store.RoleUser}, http.StatusForbidden},
		{"empty set admits any role", store.RoleGuide, nil, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fail := &capturingFail{}
			handler := RequireRoles(fail.handle, tt.allowed...)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodDelete, "/api/v1/tours/abc", nil)
			principal := &Principal{ID: "user-123", Role: tt.role, TokenIssuedAt: time.Now()}
			req = req.WithContext(WithPrincipal(req.Context(), principal))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusForbidden {
				f := failure.Classify(fail.err)
				assert.Equal(t, failure.KindForbidden, f.Kind)
			}
		})
	}
}

func TestRequireRoles_PanicsWithoutPrincipal(t *testing.T) {
	fail := &capturingFail{}
	handler := RequireRoles(fail.handle, store.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tours", nil)
	rec := httptest.NewRecorder()

	assert.Panics(t, func() {
		handler.ServeHTTP(rec, req)
	})
}
