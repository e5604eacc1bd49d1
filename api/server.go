/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the review frontend

ROUTE GROUPS:
  /api/interest/*     Standalone interest computation
  /api/limitation/*   Standalone limitation evaluation
  /api/claims/*       Full decide operations
  /api/rates/*        Benchmark table, read and admin append
  /api/decisions/*    Decision audit log
  /api/health         Liveness

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/interest/compute", h.ComputeInterest)
		r.Post("/limitation/evaluate", h.EvaluateLimitation)

		r.Route("/claims", func(r chi.Router) {
			r.Post("/decide", h.DecideClaim)
			r.Post("/decide-batch", h.DecideBatch)
		})

		r.Route("/rates", func(r chi.Router) {
			r.Get("/", h.ListRates)
			r.Post("/segments", h.AppendSegment)
		})

		r.Route("/decisions", func(r chi.Router) {
			r.Get("/", h.ListDecisions)
			r.Get("/{id}", h.GetDecision)
		})

		r.Get("/health", h.Health)
	})

	return r
}
