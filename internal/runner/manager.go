package runner

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/me/solard/internal/config"
	"github.com/me/solard/pkg/model"
)

// Manager owns the set of runner harnesses. It starts them in
// declaration order, aggregates their status, and shuts them down with
// a bounded deadline.
type Manager struct {
	configs []config.RunnerConfig
	deps    Deps
	logger  *slog.Logger

	// newRunner is the factory indirection; tests swap it out.
	newRunner func(config.RunnerConfig, Deps) (Runner, error)

	harnesses []*Harness
	byKey     map[string]*Harness
	startedAt time.Time
	cancel    context.CancelFunc

	shutdownOnce sync.Once
	final        model.SystemStatus
}

// NewManager creates a Manager for the given runner table. Nothing is
// instantiated until Start.
func NewManager(configs []config.RunnerConfig, deps Deps) *Manager {
	return &Manager{
		configs:   configs,
		deps:      deps,
		logger:    deps.Logger.With("component", "manager"),
		newRunner: New,
		byKey:     make(map[string]*Harness),
	}
}

// Start instantiates and starts every enabled runner. Duplicate keys and
// unknown types are fatal configuration errors that abort before any
// runner starts; an individual runner's initialization failure is not,
// it stays registered in the error state and visible in status.
func (m *Manager) Start(ctx context.Context) error {
	seen := make(map[string]bool, len(m.configs))
	for _, cfg := range m.configs {
		if seen[cfg.Key] {
			return fmt.Errorf("%w: %q", config.ErrDuplicateRunner, cfg.Key)
		}
		seen[cfg.Key] = true
		if !cfg.Type.IsKnown() {
			return fmt.Errorf("runner %q: unknown type %q", cfg.Key, cfg.Type)
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.startedAt = time.Now()

	started := 0
	for _, cfg := range m.configs {
		if !cfg.IsEnabled() {
			m.logger.Debug("runner disabled, skipping", "runner", cfg.Key)
			continue
		}

		r, err := m.newRunner(cfg, m.deps)
		if err != nil {
			cancel()
			return err
		}
		h, err := NewHarness(cfg, r, m.deps)
		if err != nil {
			cancel()
			return fmt.Errorf("runner %q: %w", cfg.Key, err)
		}

		m.harnesses = append(m.harnesses, h)
		m.byKey[cfg.Key] = h

		if err := h.Start(runCtx); err != nil {
			// Partial failure is tolerated: the harness stays registered
			// in the error state and the rest keep starting.
			continue
		}
		started++
	}

	m.logger.Info("runner manager started",
		"registered", len(m.harnesses),
		"started", started,
	)
	return nil
}

// Get returns the harness registered under key, if any.
func (m *Manager) Get(key string) (*Harness, bool) {
	h, ok := m.byKey[key]
	return h, ok
}

// Statuses returns per-runner snapshots in registration order.
func (m *Manager) Statuses() []model.RunnerStatus {
	out := make([]model.RunnerStatus, 0, len(m.harnesses))
	for _, h := range m.harnesses {
		out = append(out, h.Status())
	}
	return out
}

// SystemStatus aggregates all runner statuses into the manager view.
func (m *Manager) SystemStatus() model.SystemStatus {
	statuses := m.Statuses()

	sys := model.SystemStatus{
		Total:      len(statuses),
		AllHealthy: true,
		CheckedAt:  time.Now(),
		Runners:    statuses,
	}
	if !m.startedAt.IsZero() {
		sys.Uptime = time.Since(m.startedAt).Seconds()
	}

	for _, st := range statuses {
		switch st.State {
		case model.RunnerStateRunning:
			sys.Running++
		case model.RunnerStateStopped:
			sys.Stopped++
		case model.RunnerStateError:
			sys.Errored++
		}
		if st.Healthy {
			sys.Healthy++
		} else {
			sys.AllHealthy = false
		}
	}
	return sys
}

// Shutdown cancels every worker and waits up to timeout for them all to
// exit. A worker still busy at the deadline is abandoned and reported as
// force-stopped. Idempotent: the second call returns the first call's
// final status without doing anything.
func (m *Manager) Shutdown(timeout time.Duration) model.SystemStatus {
	m.shutdownOnce.Do(func() {
		m.logger.Info("shutting down runners", "timeout", timeout)
		if m.cancel != nil {
			m.cancel()
		}

		deadline := time.Now().Add(timeout)
		for _, h := range m.harnesses {
			select {
			case <-h.Done():
				h.markStopped()
				continue
			default:
			}

			remaining := time.Until(deadline)
			if remaining < 0 {
				remaining = 0
			}
			timer := time.NewTimer(remaining)
			select {
			case <-h.Done():
				timer.Stop()
				h.markStopped()
			case <-timer.C:
				h.markForceStopped()
			}
		}

		m.final = m.SystemStatus()
		m.logger.Info("runner manager stopped",
			"stopped", m.final.Stopped,
			"errored", m.final.Errored,
		)
	})
	return m.final
}
