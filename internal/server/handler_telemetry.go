package server

import (
	"net/http"
	"strconv"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// parseLimit reads ?limit= with the default and ceiling applied.
func parseLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultListLimit
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return defaultListLimit
	}
	if n > maxListLimit {
		return maxListLimit
	}
	return n
}

// telemetryList wraps the shared shape of every history endpoint: check
// the store, query with the limit, respond.
func (s *Server) telemetryList(w http.ResponseWriter, r *http.Request, query func(limit int) (any, error)) {
	reqID := RequestIDFromContext(r.Context())

	if s.store == nil {
		respondError(w, reqID, http.StatusNotFound, "store_not_configured", "telemetry persistence is disabled")
		return
	}
	data, err := query(parseLimit(r))
	if err != nil {
		s.logger.Error("telemetry query", "path", r.URL.Path, "error", err)
		respondError(w, reqID, http.StatusInternalServerError, "query_failed", err.Error())
		return
	}
	respondOK(w, reqID, data)
}

func (s *Server) handlePowerReadings(w http.ResponseWriter, r *http.Request) {
	s.telemetryList(w, r, func(limit int) (any, error) {
		return s.store.RecentPowerReadings(r.Context(), limit)
	})
}

func (s *Server) handleBatterySamples(w http.ResponseWriter, r *http.Request) {
	s.telemetryList(w, r, func(limit int) (any, error) {
		return s.store.RecentBatterySamples(r.Context(), limit)
	})
}

func (s *Server) handleCaptures(w http.ResponseWriter, r *http.Request) {
	s.telemetryList(w, r, func(limit int) (any, error) {
		return s.store.RecentCaptures(r.Context(), limit)
	})
}

func (s *Server) handleActions(w http.ResponseWriter, r *http.Request) {
	s.telemetryList(w, r, func(limit int) (any, error) {
		return s.store.RecentActions(r.Context(), limit)
	})
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	s.telemetryList(w, r, func(limit int) (any, error) {
		return s.store.RecentNotifications(r.Context(), limit)
	})
}
