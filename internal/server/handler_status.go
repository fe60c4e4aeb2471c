package server

import (
	"net/http"
	"time"

	"github.com/me/solard/pkg/model"
)

type statusResponse struct {
	System  model.SystemStatus   `json:"system"`
	Battery model.SafetyEnvelope `json:"battery"`
	Action  model.SelectedAction `json:"action"`
}

// handleStatus is the one-call operator view: runner counts, the safety
// envelope, and the current decision.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	resp := statusResponse{
		System:  s.manager.SystemStatus(),
		Battery: s.monitor.Envelope(time.Now()),
	}
	if s.loop != nil {
		resp.Action = s.loop.Current()
	}
	respondOK(w, reqID, resp)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	if s.loop == nil {
		respondError(w, reqID, http.StatusNotFound, "schedule_not_configured", "no control loop is running")
		return
	}
	respondOK(w, reqID, s.loop.Current())
}

type batteryResponse struct {
	Latest   *model.BatteryState  `json:"latest,omitempty"`
	Envelope model.SafetyEnvelope `json:"envelope"`
}

func (s *Server) handleBattery(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	resp := batteryResponse{Envelope: s.monitor.Envelope(time.Now())}
	if latest, ok := s.monitor.Latest(); ok {
		resp.Latest = &latest
	}
	respondOK(w, reqID, resp)
}
