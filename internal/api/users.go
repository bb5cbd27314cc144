// ABOUTME: Account handlers: signup, login, current user, password change
// ABOUTME: Admin-only user listing and role assignment

package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/roamware/trailhead/internal/auth"
	"github.com/roamware/trailhead/internal/failure"
	"github.com/roamware/trailhead/internal/store"
)

type signupInput struct {
	Name     string `json:"name" validate:"required,min=2,max=60"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type passwordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

type roleInput struct {
	Role string `json:"role" validate:"required"`
}

type userResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
}

func userToResponse(u *store.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

// issueToken generates a token for the user and mirrors it into the
// jwt cookie for browser clients.
func (s *Server) issueToken(w http.ResponseWriter, userID string) (string, error) {
	token, err := s.verifier.Generate(userID, s.tokenTTL)
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(s.tokenTTL),
		HttpOnly: true,
		Secure:   !s.dev,
		SameSite: http.SameSiteLaxMode,
	})
	return token, nil
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) error {
	var in signupInput
	if err := s.decodeJSON(r, &in); err != nil {
		return err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	user := &store.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		Role:         store.RoleUser,
		PasswordHash: hash,
		CreatedAt:    now,
	}
	if err := s.store.CreateUser(r.Context(), user); err != nil {
		return err
	}

	token, err := s.issueToken(w, user.ID)
	if err != nil {
		return err
	}

	s.respond(w, http.StatusCreated, map[string]any{
		"token": token,
		"user":  userToResponse(user),
	})
	return nil
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) error {
	var in loginInput
	if err := s.decodeJSON(r, &in); err != nil {
		return err
	}

	user, err := s.store.GetUserByEmail(r.Context(), in.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return failure.Unauthenticated("Incorrect email or password")
		}
		return err
	}
	if !auth.CheckPassword(user.PasswordHash, in.Password) {
		return failure.Unauthenticated("Incorrect email or password")
	}

	token, err := s.issueToken(w, user.ID)
	if err != nil {
		return err
	}

	s.respond(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  userToResponse(user),
	})
	return nil
}

func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) error {
	principal := auth.MustFromContext(r.Context())

	user, err := s.store.GetUser(r.Context(), principal.ID)
	if err != nil {
		return err
	}

	s.respond(w, http.StatusOK, map[string]any{"user": userToResponse(user)})
	return nil
}

// updatePassword rotates the caller's password. Every token issued
// before the change, including the one on this request, becomes stale;
// the response carries a fresh token.
func (s *Server) updatePassword(w http.ResponseWriter, r *http.Request) error {
	principal := auth.MustFromContext(r.Context())

	var in passwordInput
	if err := s.decodeJSON(r, &in); err != nil {
		return err
	}

	user, err := s.store.GetUser(r.Context(), principal.ID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.PasswordHash, in.CurrentPassword) {
		return failure.Unauthenticated("Your current password is wrong.")
	}

	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	// Backdated one second so the replacement token, whose issued-at
	// has second resolution, is never judged stale.
	changedAt := time.Now().UTC().Add(-time.Second)
	if err := s.store.SetUserPassword(r.Context(), user.ID, hash, changedAt); err != nil {
		return err
	}

	token, err := s.issueToken(w, user.ID)
	if err != nil {
		return err
	}

	s.respond(w, http.StatusOK, map[string]any{"token": token})
	return nil
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) error {
	users, err := s.store.ListUsers(r.Context())
	if err != nil {
		return err
	}

	resp := make([]userResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, userToResponse(u))
	}
	s.respondList(w, len(resp), map[string]any{"users": resp})
	return nil
}

func (s *Server) updateUserRole(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "userID")
	if err != nil {
		return err
	}

	var in roleInput
	if err := s.decodeJSON(r, &in); err != nil {
		return err
	}
	role := store.Role(in.Role)
	if !store.ValidRole(role) {
		return failure.BadRequest(fmt.Sprintf("Invalid role: %s", in.Role))
	}

	if err := s.store.UpdateUserRole(r.Context(), id, role); err != nil {
		return err
	}

	user, err := s.store.GetUser(r.Context(), id)
	if err != nil {
		return err
	}
	s.respond(w, http.StatusOK, map[string]any{"user": userToResponse(user)})
	return nil
}
