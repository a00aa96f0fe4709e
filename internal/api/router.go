package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/things", func(r chi.Router) {
			r.Get("/", s.handleListThings)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetThing)
				r.Get("/history", s.handleGetHistory)
			})
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"version":        s.version,
		"uptime_seconds": int(time.Since(s.started).Seconds()),
		"things":         len(s.fleet.Loops()),
	})
}

// handleListThings returns the current snapshot of every thing.
func (s *Server) handleListThings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"things": s.fleet.Snapshot(),
	})
}

// handleGetThing returns the snapshot of one thing.
func (s *Server) handleGetThing(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	for _, status := range s.fleet.Snapshot() {
		if status.ID == id {
			writeJSON(w, http.StatusOK, status)
			return
		}
	}
	writeNotFound(w, "unknown thing: "+id)
}

// handleGetHistory returns recent recorded readings for one thing,
// newest first. The limit query parameter caps the result count.
func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	if s.readings == nil {
		writeNotFound(w, "reading history is not enabled")
		return
	}

	id := chi.URLParam(r, "id")
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeBadRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	entries, err := s.readings.GetHistory(r.Context(), id, limit)
	if err != nil {
		s.logger.Error("querying reading history", "thing_id", id, "error", err)
		writeInternalError(w, "failed to query history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"thing_id": id,
		"entries":  entries,
	})
}
