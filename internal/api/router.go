package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Node endpoints
		r.Route("/nodes", func(r chi.Router) {
			r.Get("/", s.handleListNodes)
			r.Post("/", s.handleCreateNode)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetNode)
				r.Delete("/", s.handleDeleteNode)
				r.Patch("/config", s.handleUpdateNodeConfig)
			})
		})

		// Debug log queries
		r.Get("/logs", s.handleListLogs)

		// WebSocket for real-time config update events
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbStatus := "ok"
	if s.db != nil {
		if err := s.db.HealthCheck(r.Context()); err != nil {
			dbStatus = "unhealthy"
		}
	} else {
		dbStatus = "unknown"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"version":  s.version,
		"database": dbStatus,
	})
}
