// Package runner implements the concurrent monitoring framework: the
// Runner contract, the per-runner worker harness, and the Manager that
// supervises the whole set.
package runner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/me/solard/internal/config"
	"github.com/me/solard/internal/safety"
	"github.com/me/solard/internal/store"
	"github.com/me/solard/internal/trigger"
	"github.com/me/solard/pkg/model"
)

// Runner is one unit of monitoring or actuation work. Implementations
// hold their own readings; the harness owns the lifecycle state, the
// cadence, and the error policy.
type Runner interface {
	// Initialize performs one-time setup. A failure is surfaced to the
	// manager, which keeps the runner registered in the error state.
	Initialize(ctx context.Context) error

	// WorkCycle performs one unit of the runner's responsibility. The
	// harness never runs two cycles of the same runner concurrently.
	WorkCycle(ctx context.Context) error

	// Healthy is a cheap, side-effect-free implementation-specific check.
	// The harness combines it with state and error-count checks.
	Healthy() bool

	// Close releases resources at shutdown.
	Close() error
}

// Deps bundles the collaborators handed to every runner. Store may be
// nil; runners then keep readings in memory only. The source fields
// override the default simulated hardware, mainly for tests.
type Deps struct {
	Logger     *slog.Logger
	Store      store.Store
	Safety     *safety.Monitor
	Snapshot   func() trigger.Snapshot
	Production bool

	PowerSource PowerSource
	UPSSource   UPSSource
	Camera      Camera
}

// New builds the Runner implementation for cfg.Type. The type set is
// closed; configuration validation rejects unknown tags before this is
// ever reached, so the default branch is a programming error guard.
func New(cfg config.RunnerConfig, deps Deps) (Runner, error) {
	switch cfg.Type {
	case model.RunnerTypePower:
		return NewPowerRunner(cfg, deps), nil
	case model.RunnerTypeUPS:
		return NewUPSRunner(cfg, deps), nil
	case model.RunnerTypeCamera:
		return NewCameraRunner(cfg, deps), nil
	case model.RunnerTypeNotify:
		return NewNotifyRunner(cfg, deps), nil
	default:
		return nil, fmt.Errorf("runner %q: unknown type %q", cfg.Key, cfg.Type)
	}
}
