package server

import (
	"net/http"
	"runtime"
	"time"
)

type discoveryResponse struct {
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	Endpoints []string `json:"endpoints"`
}

func (s *Server) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	respondOK(w, reqID, discoveryResponse{
		Name:    "solard",
		Version: "0.1.0",
		Endpoints: []string{
			"/api/v1/health",
			"/api/v1/status",
			"/api/v1/action",
			"/api/v1/battery",
			"/api/v1/runners",
			"/api/v1/runners/{key}",
			"/api/v1/schedule",
			"/api/v1/readings/power",
			"/api/v1/readings/battery",
			"/api/v1/captures",
			"/api/v1/actions",
			"/api/v1/notifications",
		},
	})
}

type healthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
	Runners   string `json:"runners"`
	Store     string `json:"store"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	runners := "degraded"
	if s.manager.SystemStatus().AllHealthy {
		runners = "healthy"
	}
	st := "disabled"
	if s.store != nil {
		st = "sqlite"
	}

	respondOK(w, reqID, healthResponse{
		Status:    "healthy",
		Version:   "0.1.0",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		Runners:   runners,
		Store:     st,
	})
}
