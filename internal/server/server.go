// Package server exposes the solard status API: runner health, the
// battery envelope, the current schedule decision, and recent telemetry.
// It is read-only; the core never takes commands over HTTP.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/me/solard/internal/control"
	"github.com/me/solard/internal/runner"
	"github.com/me/solard/internal/safety"
	"github.com/me/solard/internal/schedule"
	"github.com/me/solard/internal/store"
)

// Server is the solard REST API server.
type Server struct {
	router    chi.Router
	logger    *slog.Logger
	startTime time.Time

	manager *runner.Manager
	loop    *control.Loop
	monitor *safety.Monitor
	engine  *schedule.Engine
	store   store.Store
}

// New creates a Server with all routes registered. engine and store may
// be nil when the schedule or persistence is not configured; the
// affected endpoints then report that instead of data.
func New(mgr *runner.Manager, loop *control.Loop, mon *safety.Monitor, eng *schedule.Engine, st store.Store, logger *slog.Logger) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		logger:    logger.With("component", "server"),
		startTime: time.Now(),
		manager:   mgr,
		loop:      loop,
		monitor:   mon,
		engine:    eng,
		store:     st,
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", s.handleDiscovery)
		r.Get("/health", s.handleHealth)
		r.Get("/status", s.handleStatus)
		r.Get("/action", s.handleAction)
		r.Get("/battery", s.handleBattery)

		r.Route("/runners", func(r chi.Router) {
			r.Get("/", s.handleListRunners)
			r.Get("/{key}", s.handleGetRunner)
		})

		r.Get("/schedule", s.handleSchedule)

		r.Route("/readings", func(r chi.Router) {
			r.Get("/power", s.handlePowerReadings)
			r.Get("/battery", s.handleBatterySamples)
		})
		r.Get("/captures", s.handleCaptures)
		r.Get("/actions", s.handleActions)
		r.Get("/notifications", s.handleNotifications)
	})
}
