// ABOUTME: Server construction and route table for the tours HTTP API
// ABOUTME: Fixed admission pipeline order: limiter, sanitizer, router, verifier, guard

package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/yuin/goldmark"

	"github.com/roamware/trailhead/internal/auth"
	"github.com/roamware/trailhead/internal/config"
	"github.com/roamware/trailhead/internal/failure"
	"github.com/roamware/trailhead/internal/ratelimit"
	"github.com/roamware/trailhead/internal/sanitize"
	"github.com/roamware/trailhead/internal/store"
)

// Query parameters where repeated values are meaningful filters rather
// than pollution; every other duplicated parameter collapses to its
// last value.
var filterParams = []string{"duration", "difficulty", "price", "ratingsAverage", "maxGroupSize"}

// Server owns the router, the stores, and the admission pipeline.
type Server struct {
	store        store.Store
	verifier     *auth.JWTVerifier
	limiter      *ratelimit.Limiter
	loginLimiter *ratelimit.BucketLimiter
	keyFn        ratelimit.KeyFunc
	validate     *validator.Validate
	markdown     goldmark.Markdown
	logger       *slog.Logger
	tokenTTL     time.Duration
	dev          bool
}

// New builds a Server from configuration. counters selects the shared
// rate-limit backend (in-process or Redis).
func New(cfg *config.Config, st store.Store, counters ratelimit.CounterStore, logger *slog.Logger) (*Server, error) {
	verifier, err := auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("building token verifier: %w", err)
	}

	return &Server{
		store:        st,
		verifier:     verifier,
		limiter:      ratelimit.NewLimiter(counters, cfg.RateLimit.Max, cfg.RateLimit.Window),
		loginLimiter: ratelimit.NewBucketLimiter(cfg.Login.RPS, cfg.Login.Burst),
		keyFn:        ratelimit.DefaultKeyFunc(cfg.RateLimit.TrustProxy),
		validate:     validator.New(),
		markdown:     goldmark.New(),
		logger:       logger,
		tokenTTL:     cfg.Auth.TokenTTL,
		dev:          !cfg.IsProduction(),
	}, nil
}

// LoginLimiter exposes the login token-bucket so the caller can run
// its idle-entry janitor.
func (s *Server) LoginLimiter() *ratelimit.BucketLimiter {
	return s.loginLimiter
}

// Handler assembles the full route tree with the admission pipeline.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestLogger)
	r.Use(s.recoverer)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		s.renderError(w, req, failure.NotFound(fmt.Sprintf("Can't find %s on this server!", req.URL.Path)))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		s.renderError(w, req, failure.NotFound(fmt.Sprintf("Can't find %s on this server!", req.URL.Path)))
	})

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(api chi.Router) {
		api.Use(ratelimit.Middleware(s.limiter, s.keyFn, s.logger, s.renderError))
		api.Use(sanitize.Body(sanitize.BodyLimit, s.renderError))
		api.Use(sanitize.CollapseQuery(filterParams...))

		api.Route("/v1", func(v1 chi.Router) {
			v1.Route("/tours", s.tourRoutes)
			v1.Route("/users", s.userRoutes)
			v1.Route("/reviews", s.reviewRoutes)
		})
	})

	return r
}

func (s *Server) tourRoutes(r chi.Router) {
	r.Get("/", s.handle(s.listTours))
	r.Get("/{tourID}", s.handle(s.getTour))

	r.Group(func(p chi.Router) {
		p.Use(s.authenticate())
		p.Use(auth.RequireRoles(s.renderError, store.RoleAdmin, store.RoleLeadGuide))
		p.Post("/", s.handle(s.createTour))
		p.Patch("/{tourID}", s.handle(s.updateTour))
		p.Delete("/{tourID}", s.handle(s.deleteTour))
	})

	r.Route("/{tourID}/reviews", func(rv chi.Router) {
		rv.Get("/", s.handle(s.listTourReviews))
		rv.With(s.authenticate(), auth.RequireRoles(s.renderError, store.RoleUser)).
			Post("/", s.handle(s.createReview))
	})
}

func (s *Server) userRoutes(r chi.Router) {
	r.Post("/signup", s.handle(s.signup))
	r.With(s.loginThrottle).Post("/login", s.handle(s.login))

	r.Group(func(p chi.Router) {
		p.Use(s.authenticate())
		p.Get("/me", s.handle(s.currentUser))
		p.Patch("/password", s.handle(s.updatePassword))

		p.Group(func(a chi.Router) {
			a.Use(auth.RequireRoles(s.renderError, store.RoleAdmin))
			a.Get("/", s.handle(s.listUsers))
			a.Patch("/{userID}/role", s.handle(s.updateUserRole))
		})
	})
}

func (s *Server) reviewRoutes(r chi.Router) {
	r.With(s.authenticate(), auth.RequireRoles(s.renderError, store.RoleUser, store.RoleAdmin)).
		Delete("/{reviewID}", s.handle(s.deleteReview))
}

func (s *Server) authenticate() func(http.Handler) http.Handler {
	return auth.Authenticate(s.store, s.verifier, s.renderError)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{"health": "ok"})
}
