package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListRunners(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	respondOK(w, reqID, s.manager.Statuses())
}

func (s *Server) handleGetRunner(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	key := chi.URLParam(r, "key")

	h, ok := s.manager.Get(key)
	if !ok {
		respondError(w, reqID, http.StatusNotFound, "runner_not_found", "no runner registered under "+key)
		return
	}
	respondOK(w, reqID, h.Status())
}
