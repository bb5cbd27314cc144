// ABOUTME: Review handlers nested under tours, plus owner-or-admin delete
// ABOUTME: One review per user per tour, enforced by the store

package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/roamware/trailhead/internal/auth"
	"github.com/roamware/trailhead/internal/failure"
	"github.com/roamware/trailhead/internal/store"
)

type reviewInput struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Content string `json:"content" validate:"required,max=2000"`
}

type reviewResponse struct {
	ID        string `json:"id"`
	TourID    string `json:"tourId"`
	UserID    string `json:"userId"`
	Rating    int    `json:"rating"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
}

func reviewToResponse(rv *store.Review) reviewResponse {
	return reviewResponse{
		ID:        rv.ID,
		TourID:    rv.TourID,
		UserID:    rv.UserID,
		Rating:    rv.Rating,
		Content:   rv.Content,
		CreatedAt: rv.CreatedAt.Format(time.RFC3339),
	}
}

func (s *Server) listTourReviews(w http.ResponseWriter, r *http.Request) error {
	tourID, err := pathID(r, "tourID")
	if err != nil {
		return err
	}
	if _, err := s.store.GetTour(r.Context(), tourID); err != nil {
		return err
	}

	reviews, err := s.store.ListTourReviews(r.Context(), tourID)
	if err != nil {
		return err
	}

	resp := make([]reviewResponse, 0, len(reviews))
	for _, rv := range reviews {
		resp = append(resp, reviewToResponse(rv))
	}
	s.respondList(w, len(resp), map[string]any{"reviews": resp})
	return nil
}

func (s *Server) createReview(w http.ResponseWriter, r *http.Request) error {
	tourID, err := pathID(r, "tourID")
	if err != nil {
		return err
	}
	if _, err := s.store.GetTour(r.Context(), tourID); err != nil {
		return err
	}

	var in reviewInput
	if err := s.decodeJSON(r, &in); err != nil {
		return err
	}

	principal := auth.MustFromContext(r.Context())
	review := &store.Review{
		ID:        uuid.NewString(),
		TourID:    tourID,
		UserID:    principal.ID,
		Rating:    in.Rating,
		Content:   in.Content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateReview(r.Context(), review); err != nil {
		return err
	}

	s.respond(w, http.StatusCreated, map[string]any{"review": reviewToResponse(review)})
	return nil
}

// deleteReview lets a user remove their own review; admins may remove
// any review.
func (s *Server) deleteReview(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "reviewID")
	if err != nil {
		return err
	}

	review, err := s.store.GetReview(r.Context(), id)
	if err != nil {
		return err
	}

	principal := auth.MustFromContext(r.Context())
	if principal.Role != store.RoleAdmin && review.UserID != principal.ID {
		return failure.Forbidden("You do not have permission to perform this action")
	}

	if err := s.store.DeleteReview(r.Context(), id); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
