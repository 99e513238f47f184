package api

import (
	"net/http"
	"strconv"

	"github.com/dmweir/meshlink-core/internal/debuglog"
)

// handleListLogs returns recent debug log events, newest first.
//
// Query parameters:
//   - subsystem: filter by emitting subsystem (e.g., "node", "api")
//   - category: filter by category within the subsystem
//   - min_level: minimum severity (debug, info, notice, warning, error, fault)
//   - limit: maximum events to return (default 50, max 200)
func (s *Server) handleListLogs(w http.ResponseWriter, r *http.Request) {
	if s.logs == nil {
		writeNotFound(w, "durable logging is not enabled")
		return
	}

	filter := debuglog.Filter{
		Subsystem: r.URL.Query().Get("subsystem"),
		Category:  r.URL.Query().Get("category"),
	}

	if levelStr := r.URL.Query().Get("min_level"); levelStr != "" {
		level, ok := debuglog.ParseLevel(levelStr)
		if !ok {
			writeBadRequest(w, "unknown min_level: "+levelStr)
			return
		}
		filter.MinLevel = &level
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			writeBadRequest(w, "limit must be a non-negative integer")
			return
		}
		filter.Limit = limit
	}

	events, err := s.logs.Recent(r.Context(), filter)
	if err != nil {
		s.logger.Error("failed to query debug log", "error", err)
		writeInternalError(w, "failed to query logs")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"events": events, "count": len(events)})
}
