// ABOUTME: Tour resource handlers: list, detail, create, update, delete
// ABOUTME: Detail responses render the Markdown description to HTML

package api

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/roamware/trailhead/internal/failure"
	"github.com/roamware/trailhead/internal/store"
)

type tourInput struct {
	Name         string  `json:"name" validate:"required,min=3,max=60"`
	Duration     int     `json:"duration" validate:"required,gte=1"`
	MaxGroupSize int     `json:"maxGroupSize" validate:"required,gte=1"`
	Difficulty   string  `json:"difficulty" validate:"required,oneof=easy medium difficult"`
	Price        float64 `json:"price" validate:"required,gt=0"`
	Summary      string  `json:"summary" validate:"required,max=200"`
	Description  string  `json:"description"`
}

type tourPatch struct {
	Name         *string  `json:"name" validate:"omitempty,min=3,max=60"`
	Duration     *int     `json:"duration" validate:"omitempty,gte=1"`
	MaxGroupSize *int     `json:"maxGroupSize" validate:"omitempty,gte=1"`
	Difficulty   *string  `json:"difficulty" validate:"omitempty,oneof=easy medium difficult"`
	Price        *float64 `json:"price" validate:"omitempty,gt=0"`
	Summary      *string  `json:"summary" validate:"omitempty,max=200"`
	Description  *string  `json:"description"`
}

type tourResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Duration        int     `json:"duration"`
	MaxGroupSize    int     `json:"maxGroupSize"`
	Difficulty      string  `json:"difficulty"`
	Price           float64 `json:"price"`
	Summary         string  `json:"summary"`
	Description     string  `json:"description,omitempty"`
	DescriptionHTML string  `json:"descriptionHtml,omitempty"`
	RatingsAverage  float64 `json:"ratingsAverage"`
	RatingsQuantity int     `json:"ratingsQuantity"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

func tourToResponse(t *store.Tour) tourResponse {
	return tourResponse{
		ID:              t.ID,
		Name:            t.Name,
		Duration:        t.Duration,
		MaxGroupSize:    t.MaxGroupSize,
		Difficulty:      t.Difficulty,
		Price:           t.Price,
		Summary:         t.Summary,
		RatingsAverage:  t.RatingsAverage,
		RatingsQuantity: t.RatingsQuantity,
		CreatedAt:       t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       t.UpdatedAt.Format(time.RFC3339),
	}
}

func (s *Server) listTours(w http.ResponseWriter, r *http.Request) error {
	filter, err := tourFilterFromQuery(r)
	if err != nil {
		return err
	}

	tours, err := s.store.ListTours(r.Context(), filter)
	if err != nil {
		return err
	}

	resp := make([]tourResponse, 0, len(tours))
	for _, t := range tours {
		resp = append(resp, tourToResponse(t))
	}
	s.respondList(w, len(resp), map[string]any{"tours": resp})
	return nil
}

func tourFilterFromQuery(r *http.Request) (store.TourFilter, error) {
	var filter store.TourFilter
	q := r.URL.Query()

	if d := q.Get("difficulty"); d != "" {
		filter.Difficulty = d
	}
	if p := q.Get("maxPrice"); p != "" {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil || v < 0 {
			return filter, failure.BadRequest("maxPrice must be a non-negative number")
		}
		filter.MaxPrice = v
	}
	if l := q.Get("limit"); l != "" {
		v, err := strconv.Atoi(l)
		if err != nil || v < 0 {
			return filter, failure.BadRequest("limit must be a non-negative integer")
		}
		filter.Limit = v
	}
	return filter, nil
}

func (s *Server) getTour(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "tourID")
	if err != nil {
		return err
	}

	tour, err := s.store.GetTour(r.Context(), id)
	if err != nil {
		return err
	}

	resp := tourToResponse(tour)
	resp.Description = tour.Description
	if tour.Description != "" {
		var buf bytes.Buffer
		if err := s.markdown.Convert([]byte(tour.Description), &buf); err != nil {
			return err
		}
		resp.DescriptionHTML = buf.String()
	}

	s.respond(w, http.StatusOK, map[string]any{"tour": resp})
	return nil
}

func (s *Server) createTour(w http.ResponseWriter, r *http.Request) error {
	var in tourInput
	if err := s.decodeJSON(r, &in); err != nil {
		return err
	}

	now := time.Now().UTC()
	tour := &store.Tour{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Duration:     in.Duration,
		MaxGroupSize: in.MaxGroupSize,
		Difficulty:   in.Difficulty,
		Price:        in.Price,
		Summary:      in.Summary,
		Description:  in.Description,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateTour(r.Context(), tour); err != nil {
		return err
	}

	s.respond(w, http.StatusCreated, map[string]any{"tour": tourToResponse(tour)})
	return nil
}

func (s *Server) updateTour(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "tourID")
	if err != nil {
		return err
	}

	var patch tourPatch
	if err := s.decodeJSON(r, &patch); err != nil {
		return err
	}

	tour, err := s.store.GetTour(r.Context(), id)
	if err != nil {
		return err
	}

	if patch.Name != nil {
		tour.Name = *patch.Name
	}
	if patch.Duration != nil {
		tour.Duration = *patch.Duration
	}
	if patch.MaxGroupSize != nil {
		tour.MaxGroupSize = *patch.MaxGroupSize
	}
	if patch.Difficulty != nil {
		tour.Difficulty = *patch.Difficulty
	}
	if patch.Price != nil {
		tour.Price = *patch.Price
	}
	if patch.Summary != nil {
		tour.Summary = *patch.Summary
	}
	if patch.Description != nil {
		tour.Description = *patch.Description
	}
	tour.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateTour(r.Context(), tour); err != nil {
		return err
	}

	s.respond(w, http.StatusOK, map[string]any{"tour": tourToResponse(tour)})
	return nil
}

func (s *Server) deleteTour(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "tourID")
	if err != nil {
		return err
	}
	if err := s.store.DeleteTour(r.Context(), id); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
