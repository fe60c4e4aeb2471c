package server

import (
	"net/http"

	"github.com/me/solard/pkg/model"
)

type scheduleResponse struct {
	Tasks     []model.ScheduleTask      `json:"tasks"`
	Locations map[string]model.Position `json:"locations"`
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	if s.engine == nil {
		respondError(w, reqID, http.StatusNotFound, "schedule_not_configured", "no schedule is loaded")
		return
	}
	respondOK(w, reqID, scheduleResponse{
		Tasks:     s.engine.Tasks(),
		Locations: s.engine.Locations(),
	})
}
