// ABOUTME: Handler tests for signup, login, tokens, and admin user operations
// ABOUTME: Covers duplicate emails, stale tokens after password change, role guards

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roamware/trailhead/internal/auth"
	"github.com/roamware/trailhead/internal/config"
	"github.com/roamware/trailhead/internal/store"
)

const validSignupBody = `{"name":"Ada","email":"ada@example.com","password":"correct-horse"}`

func TestSignup(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/v1/users/signup", validSignupBody, "")
	require.Equal(t, http.StatusCreated, w.Code)

	body := decodeBody(t, w)
	data := body["data"].(map[string]any)
	assert.NotEmpty(t, data["token"])
	user := data["user"].(map[string]any)
	assert.Equal(t, "ada@example.com", user["email"])
	assert.Equal(t, "user", user["role"], "signups always start as plain users")

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.TokenCookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "signup sets the jwt cookie")
	assert.True(t, cookie.HttpOnly)
}

func TestSignupDuplicateEmail(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/v1/users/signup", validSignupBody, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.do(t, http.MethodPost, "/api/v1/users/signup", validSignupBody, "")
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Duplicate field value. Please use another value!", decodeBody(t, w)["message"])
}

func TestSignupValidation(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/v1/users/signup",
		`{"name":"Ada","email":"not-an-email","password":"short"}`, "")

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Invalid input data.", body["message"])
	assert.Len(t, body["errors"], 2)
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)
	user, _ := ts.seedUser(t, store.RoleUser)

	w := ts.do(t, http.MethodPost, "/api/v1/users/login",
		`{"email":"`+user.Email+`","password":"`+testPassword+`"}`, "")

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	assert.NotEmpty(t, data["token"])
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ts := newTestServer(t)
	user, _ := ts.seedUser(t, store.RoleUser)

	tests := []struct {
		name string
		body string
	}{
		{"wrong password", `{"email":"` + user.Email + `","password":"wrong-password"}`},
		{"unknown email", `{"email":"nobody@example.com","password":"` + testPassword + `"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, "/api/v1/users/login", tt.body, "")
			require.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "Incorrect email or password", decodeBody(t, w)["message"])
		})
	}
}

func TestLoginThrottle(t *testing.T) {
	ts := newTestServer(t, func(cfg *config.Config) {
		cfg.Login.RPS = 0.001
		cfg.Login.Burst = 2
	})

	body := `{"email":"nobody@example.com","password":"whatever-long"}`
	ts.do(t, http.MethodPost, "/api/v1/users/login", body, "")
	ts.do(t, http.MethodPost, "/api/v1/users/login", body, "")

	w := ts.do(t, http.MethodPost, "/api/v1/users/login", body, "")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "Too many login attempts, please try again shortly!", decodeBody(t, w)["message"])
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestCurrentUser(t *testing.T) {
	ts := newTestServer(t)
	user, token := ts.seedUser(t, store.RoleGuide)

	w := ts.do(t, http.MethodGet, "/api/v1/users/me", "", token)
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeBody(t, w)["data"].(map[string]any)
	got := data["user"].(map[string]any)
	assert.Equal(t, user.ID, got["id"])
	assert.Equal(t, "guide", got["role"])
}

func TestCurrentUserViaCookie(t *testing.T) {
	ts := newTestServer(t)
	user, token := ts.seedUser(t, store.RoleUser)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.AddCookie(&http.Cookie{Name: auth.TokenCookieName, Value: token})
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, user.ID, data["user"].(map[string]any)["id"])
}

// backdatedToken signs a token whose issued-at is firmly in the past,
// so the staleness comparison does not hinge on sub-second timing.
func backdatedToken(t *testing.T, userID string, issuedAt time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": jwt.NewNumericDate(issuedAt),
		"exp": jwt.NewNumericDate(issuedAt.Add(2 * time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func TestPasswordChangeInvalidatesOldTokens(t *testing.T) {
	ts := newTestServer(t)
	user, _ := ts.seedUser(t, store.RoleUser)
	token := backdatedToken(t, user.ID, time.Now().Add(-time.Hour))

	body := `{"currentPassword":"` + testPassword + `","newPassword":"a-new-password"}`
	w := ts.do(t, http.MethodPatch, "/api/v1/users/password", body, token)
	require.Equal(t, http.StatusOK, w.Code)
	fresh := decodeBody(t, w)["data"].(map[string]any)["token"].(string)

	// Old token was issued before the change, so it is now stale.
	w = ts.do(t, http.MethodGet, "/api/v1/users/me", "", token)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "User recently changed password! Please log in again.", decodeBody(t, w)["message"])

	w = ts.do(t, http.MethodGet, "/api/v1/users/me", "", fresh)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPasswordChangeRejectsWrongCurrent(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.seedUser(t, store.RoleUser)

	body := `{"currentPassword":"not-it-at-all","newPassword":"a-new-password"}`
	w := ts.do(t, http.MethodPatch, "/api/v1/users/password", body, token)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Your current password is wrong.", decodeBody(t, w)["message"])
}

func TestListUsersAdminOnly(t *testing.T) {
	ts := newTestServer(t)
	ts.seedUser(t, store.RoleUser)
	_, adminToken := ts.seedUser(t, store.RoleAdmin)
	_, userToken := ts.seedUser(t, store.RoleUser)

	w := ts.do(t, http.MethodGet, "/api/v1/users", "", userToken)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, http.MethodGet, "/api/v1/users", "", adminToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(3), decodeBody(t, w)["results"])
}

func TestUpdateUserRole(t *testing.T) {
	ts := newTestServer(t)
	target, _ := ts.seedUser(t, store.RoleUser)
	_, adminToken := ts.seedUser(t, store.RoleAdmin)

	w := ts.do(t, http.MethodPatch, "/api/v1/users/"+target.ID+"/role", `{"role":"guide"}`, adminToken)
	require.Equal(t, http.StatusOK, w.Code)

	got, err := ts.store.GetUser(context.Background(), target.ID)
	require.NoError(t, err)
	assert.Equal(t, store.RoleGuide, got.Role)
}

func TestUpdateUserRoleRejectsUnknownRole(t *testing.T) {
	ts := newTestServer(t)
	target, _ := ts.seedUser(t, store.RoleUser)
	_, adminToken := ts.seedUser(t, store.RoleAdmin)

	w := ts.do(t, http.MethodPatch, "/api/v1/users/"+target.ID+"/role", `{"role":"overlord"}`, adminToken)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid role: overlord", decodeBody(t, w)["message"])
}

func TestDeletedUserTokenRejected(t *testing.T) {
	ts := newTestServer(t)

	// Token for a user that never existed in the store.
	ghost, err := ts.srv.verifier.Generate("ghost-user-id", time.Hour)
	require.NoError(t, err)

	w := ts.do(t, http.MethodGet, "/api/v1/users/me", "", ghost)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "The user belonging to this token does no longer exist.", decodeBody(t, w)["message"])
}
