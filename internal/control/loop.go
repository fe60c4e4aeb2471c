// Package control runs the process-wide decision loop: each tick it
// derives the safety envelope, asks the schedule engine for the next
// action, and records decision transitions.
package control

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/me/solard/internal/safety"
	"github.com/me/solard/internal/schedule"
	"github.com/me/solard/internal/store"
	"github.com/me/solard/pkg/model"
)

// Platform is the loop's view of the mobile base: a position estimate
// and a steering hook. Real navigation is an external executor; the
// simulated platform just walks the estimate toward the target.
type Platform interface {
	Position() model.Position
	SetTarget(model.Position)
}

// SimulatedPlatform moves a position estimate toward its target at a
// fixed speed, advancing lazily whenever Position is read.
type SimulatedPlatform struct {
	mu      sync.Mutex
	pos     model.Position
	target  model.Position
	speed   float64 // units per second
	movedAt time.Time
}

// NewSimulatedPlatform creates a platform at start moving speed units
// per second.
func NewSimulatedPlatform(start model.Position, speed float64) *SimulatedPlatform {
	return &SimulatedPlatform{
		pos:     start,
		target:  start,
		speed:   speed,
		movedAt: time.Now(),
	}
}

// Position advances the estimate toward the target and returns it.
func (p *SimulatedPlatform) Position() model.Position {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	step := p.speed * now.Sub(p.movedAt).Seconds()
	p.movedAt = now

	dx := p.target.X - p.pos.X
	dy := p.target.Y - p.pos.Y
	dist := math.Hypot(dx, dy)
	if dist <= step || dist == 0 {
		p.pos = p.target
	} else {
		p.pos.X += dx / dist * step
		p.pos.Y += dy / dist * step
	}
	return p.pos
}

// SetTarget points the platform at a new destination. Travel accrued
// toward the old target is folded in first.
func (p *SimulatedPlatform) SetTarget(target model.Position) {
	p.Position()
	p.mu.Lock()
	p.target = target
	p.mu.Unlock()
}

// Config holds the loop cadence and telemetry retention.
type Config struct {
	// Interval is the tick period.
	Interval time.Duration

	// Retention bounds stored telemetry age; zero disables pruning.
	Retention time.Duration
}

// Loop is the control loop. One instance, one goroutine, strictly
// sequential ticks.
type Loop struct {
	cfg      Config
	engine   *schedule.Engine
	safety   *safety.Monitor
	platform Platform
	store    store.Store
	logger   *slog.Logger

	now func() time.Time

	mu      sync.Mutex
	current model.SelectedAction
}

// NewLoop creates a control loop. The store may be nil; decisions are
// then not recorded.
func NewLoop(cfg Config, eng *schedule.Engine, mon *safety.Monitor, platform Platform, st store.Store, logger *slog.Logger) *Loop {
	return &Loop{
		cfg:      cfg,
		engine:   eng,
		safety:   mon,
		platform: platform,
		store:    st,
		logger:   logger.With("component", "control"),
		now:      time.Now,
	}
}

// Run drives the loop until ctx is cancelled: an immediate first tick,
// then one per interval, plus a slow pruning cadence when retention is
// configured.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info("control loop started",
		"interval", l.cfg.Interval,
		"retention", l.cfg.Retention,
	)

	ticker := time.NewTicker(l.cfg.Interval)
	defer ticker.Stop()

	pruneEvery := time.Hour
	prune := time.NewTicker(pruneEvery)
	defer prune.Stop()

	l.Tick(ctx)

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("control loop stopping")
			return ctx.Err()
		case <-ticker.C:
			l.Tick(ctx)
		case <-prune.C:
			l.pruneTelemetry(ctx)
		}
	}
}

// Tick runs one evaluation: envelope, position, schedule decision.
// Transitions (target, override, or idle flag changed) are logged,
// steered, and recorded; repeats of the same decision are not.
func (l *Loop) Tick(ctx context.Context) model.SelectedAction {
	now := l.now()
	env := l.safety.Envelope(now)
	pos := l.platform.Position()
	action := l.engine.Tick(now, env, pos)

	l.mu.Lock()
	prev := l.current
	l.current = action
	l.mu.Unlock()

	changed := action.Target != prev.Target ||
		action.Override != prev.Override ||
		action.Idle != prev.Idle
	if !changed {
		return action
	}

	if action.Position != nil {
		l.platform.SetTarget(*action.Position)
	}
	l.logger.Info("action selected",
		"target", action.Target,
		"actions", action.Actions,
		"override", action.Override,
		"reason", action.Reason,
		"idle", action.Idle,
	)

	if l.store != nil && !action.Idle {
		rec := &model.ActionRecord{
			ID:       uuid.NewString(),
			Target:   action.Target,
			Actions:  action.Actions,
			Override: action.Override,
			Reason:   action.Reason,
			TaskName: action.TaskName,
			TickedAt: now,
		}
		if err := l.store.InsertAction(ctx, rec); err != nil {
			l.logger.Error("record action", "error", err)
		}
	}
	return action
}

// Current returns the most recent decision.
func (l *Loop) Current() model.SelectedAction {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

func (l *Loop) pruneTelemetry(ctx context.Context) {
	if l.store == nil || l.cfg.Retention <= 0 {
		return
	}
	cutoff := l.now().Add(-l.cfg.Retention)
	removed, err := l.store.PruneBefore(ctx, cutoff)
	if err != nil {
		l.logger.Error("prune telemetry", "error", err)
		return
	}
	if removed > 0 {
		l.logger.Info("telemetry pruned", "rows", removed, "cutoff", cutoff)
	}
}
