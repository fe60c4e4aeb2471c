package runner

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/me/solard/internal/config"
	"github.com/me/solard/internal/schedule"
	"github.com/me/solard/internal/trigger"
	"github.com/me/solard/pkg/model"
)

// Harness drives one Runner on its own goroutine. It owns the lifecycle
// state machine, the consecutive-error counter, and the cycle cadence.
// All mutable fields below mu are written only by the worker goroutine
// (or by the manager after the worker has exited); readers take the same
// lock, so Status always returns a consistent snapshot.
type Harness struct {
	cfg    config.RunnerConfig
	runner Runner
	logger *slog.Logger

	evaluator *trigger.Evaluator
	snapshot  func() trigger.Snapshot

	// scheduleMinute is the minute-of-day a scheduled runner fires at.
	scheduleMinute int
	ranThisMinute  bool

	done      chan struct{}
	closeOnce sync.Once

	mu           sync.Mutex
	state        model.RunnerState
	errCount     int
	lastErr      string
	lastCycle    *time.Time
	startedAt    time.Time
	forceStopped bool
}

// NewHarness wraps r in a worker harness. cfg must already have passed
// configuration validation.
func NewHarness(cfg config.RunnerConfig, r Runner, deps Deps) (*Harness, error) {
	h := &Harness{
		cfg:            cfg,
		runner:         r,
		logger:         deps.Logger.With("component", "runner", "runner", cfg.Key),
		snapshot:       deps.Snapshot,
		scheduleMinute: -1,
		done:           make(chan struct{}),
		state:          model.RunnerStateCreated,
	}

	switch cfg.Behavior {
	case config.BehaviorScheduled:
		minute, err := schedule.ParseClock(cfg.ScheduleTime)
		if err != nil {
			return nil, err
		}
		h.scheduleMinute = minute
	case config.BehaviorTriggered:
		h.evaluator = trigger.NewEvaluator()
	}

	return h, nil
}

// Key returns the runner's configured key.
func (h *Harness) Key() string { return h.cfg.Key }

// Start initializes the runner and, on success, launches the worker
// goroutine. An initialization failure leaves the harness in the error
// state with done already closed; the caller decides whether that is
// fatal (it is not, by contract).
func (h *Harness) Start(ctx context.Context) error {
	h.mu.Lock()
	h.state = model.RunnerStateInitializing
	h.startedAt = time.Now()
	h.mu.Unlock()

	if err := h.runner.Initialize(ctx); err != nil {
		h.mu.Lock()
		h.state = model.RunnerStateError
		h.errCount++
		h.lastErr = err.Error()
		h.mu.Unlock()
		h.closeOnce.Do(func() { close(h.done) })
		h.logger.Error("initialization failed", "error", err)
		return err
	}

	h.mu.Lock()
	h.state = model.RunnerStateRunning
	h.mu.Unlock()
	h.logger.Info("runner started",
		"type", h.cfg.Type,
		"behavior", h.cfg.Behavior,
		"interval", h.cfg.Interval.Std(),
	)

	go h.loop(ctx)
	return nil
}

// loop is the worker body: an immediate first cycle, then one cycle per
// interval tick until the context is cancelled.
func (h *Harness) loop(ctx context.Context) {
	defer h.closeOnce.Do(func() { close(h.done) })

	ticker := time.NewTicker(h.cfg.Interval.Std())
	defer ticker.Stop()

	if h.shouldExecute(time.Now()) {
		h.cycle(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("runner stopping")
			if err := h.runner.Close(); err != nil {
				h.logger.Warn("close failed", "error", err)
			}
			return
		case <-ticker.C:
			// Re-check cancellation before starting a cycle: a tick and a
			// shutdown can race and a new cycle must never win.
			if ctx.Err() != nil {
				continue
			}
			if h.shouldExecute(time.Now()) {
				h.cycle(ctx)
			}
		}
	}
}

// shouldExecute gates the cycle for scheduled and triggered behaviors.
// Continuous runners always execute.
func (h *Harness) shouldExecute(now time.Time) bool {
	switch h.cfg.Behavior {
	case config.BehaviorScheduled:
		if model.MinuteOfDay(now) != h.scheduleMinute {
			h.ranThisMinute = false
			return false
		}
		if h.ranThisMinute {
			return false
		}
		h.ranThisMinute = true
		return true
	case config.BehaviorTriggered:
		if h.snapshot == nil {
			return false
		}
		fire, err := h.evaluator.Eval(h.cfg.Trigger, h.snapshot())
		if err != nil {
			h.logger.Warn("trigger evaluation failed", "error", err)
			return false
		}
		return fire
	default:
		return true
	}
}

// cycle runs one work cycle and applies the error policy: a failure
// increments the consecutive-error counter and moves the runner to the
// error state; the next success resets the counter and moves it back.
// A runner past its error ceiling keeps cycling, it just reports
// unhealthy.
func (h *Harness) cycle(ctx context.Context) {
	err := h.runner.WorkCycle(ctx)
	now := time.Now()

	h.mu.Lock()
	defer h.mu.Unlock()

	if err != nil {
		h.errCount++
		h.lastErr = err.Error()
		if h.state.CanTransitionTo(model.RunnerStateError) {
			h.state = model.RunnerStateError
		}
		h.logger.Warn("work cycle failed",
			"error", err,
			"consecutive_errors", h.errCount,
		)
		return
	}

	h.errCount = 0
	h.lastErr = ""
	h.lastCycle = &now
	if h.state == model.RunnerStateError {
		h.logger.Info("runner recovered")
		h.state = model.RunnerStateRunning
	}
}

// Done is closed when the worker goroutine has exited (or never ran).
func (h *Harness) Done() <-chan struct{} { return h.done }

// Healthy combines the state check, the error ceiling, cycle recency
// (continuous runners only) and the implementation's own predicate.
func (h *Harness) Healthy() bool {
	h.mu.Lock()
	state := h.state
	errCount := h.errCount
	lastCycle := h.lastCycle
	h.mu.Unlock()

	if state != model.RunnerStateRunning {
		return false
	}
	if errCount > h.cfg.MaxErrors {
		return false
	}
	if h.cfg.Behavior == config.BehaviorContinuous {
		if lastCycle == nil || time.Since(*lastCycle) > 3*h.cfg.Interval.Std() {
			return false
		}
	}
	return h.runner.Healthy()
}

// Status returns a consistent snapshot of the runner's state.
func (h *Harness) Status() model.RunnerStatus {
	healthy := h.Healthy()

	h.mu.Lock()
	defer h.mu.Unlock()

	st := model.RunnerStatus{
		Key:          h.cfg.Key,
		Label:        h.cfg.DisplayLabel(),
		Type:         h.cfg.Type,
		State:        h.state,
		Enabled:      true,
		Healthy:      healthy,
		ErrorCount:   h.errCount,
		LastError:    h.lastErr,
		LastCycle:    h.lastCycle,
		ForceStopped: h.forceStopped,
	}
	if !h.startedAt.IsZero() {
		st.Uptime = time.Since(h.startedAt).Seconds()
	}
	return st
}

// markStopped records a clean worker exit.
func (h *Harness) markStopped() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state.CanTransitionTo(model.RunnerStateStopped) {
		h.state = model.RunnerStateStopped
	}
}

// markForceStopped records a worker that missed the shutdown deadline.
// The abandoned cycle counts as a crash: error state plus the flag.
func (h *Harness) markForceStopped() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.forceStopped = true
	if h.state.CanTransitionTo(model.RunnerStateError) {
		h.state = model.RunnerStateError
	}
	h.logger.Error("runner force-stopped at shutdown deadline")
}
