// ABOUTME: Request decoding helpers shared by the resource handlers
// ABOUTME: JSON body decoding with validation and path identifier checks

package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/roamware/trailhead/internal/failure"
)

// decodeJSON reads the request body into dst and validates it. The
// body has already passed the sanitizer by the time this runs.
func (s *Server) decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return failure.BadRequest("Invalid JSON payload")
	}
	return s.validate.Struct(dst)
}

// pathID extracts a URL parameter and rejects values that are not
// well-formed identifiers before they reach the store.
func pathID(r *http.Request, name string) (string, error) {
	id := chi.URLParam(r, name)
	if err := uuid.Validate(id); err != nil {
		return "", failure.BadRequest(fmt.Sprintf("Invalid ID: %s", id))
	}
	return id, nil
}
