package schedule

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/me/solard/pkg/model"
)

// Evaluation phases within one tick. The engine is a single sequential
// evaluator; the phase only documents where the last tick ended.
type phase string

const (
	phaseIdle       phase = "idle"
	phaseEvaluating phase = "evaluating"
	phaseSelected   phase = "selected"
)

// Override reasons reported on SelectedAction.Reason.
const (
	ReasonLowBattery   = "low_battery"
	ReasonStaleBattery = "stale_battery_data"
	ReasonTargetTooFar = "target_beyond_allowed_distance"
	ReasonRobotTooFar  = "robot_beyond_allowed_distance"
)

// Engine evaluates the ordered daily task list against wall-clock time and
// the battery safety envelope. Tick is not safe for concurrent use; the
// control loop is its only caller.
type Engine struct {
	tasks       []model.ScheduleTask
	locations   map[string]model.Position
	dockActions []string
	logger      *slog.Logger
	phase       phase
}

// NewEngine validates that every task target is a known location and that
// the Dock location exists, then returns a ready engine. The dock-directed
// override reuses the actions of the first task targeting the Dock, falling
// back to a bare charge.
func NewEngine(tasks []model.ScheduleTask, locations map[string]model.Position, logger *slog.Logger) (*Engine, error) {
	if _, ok := locations[model.DockName]; !ok {
		return nil, fmt.Errorf("locations: missing %q", model.DockName)
	}
	for _, t := range tasks {
		if t.Target == "" {
			continue
		}
		if _, ok := locations[t.Target]; !ok {
			return nil, fmt.Errorf("schedule task %q: unknown target %q", t.Name, t.Target)
		}
	}

	dockActions := []string{"charge"}
	for _, t := range tasks {
		if t.Target == model.DockName && len(t.Actions) > 0 {
			dockActions = append([]string(nil), t.Actions...)
			break
		}
	}

	return &Engine{
		tasks:       tasks,
		locations:   locations,
		dockActions: dockActions,
		logger:      logger.With("component", "schedule"),
		phase:       phaseIdle,
	}, nil
}

// Tasks returns the immutable daily task list in declaration order.
func (e *Engine) Tasks() []model.ScheduleTask {
	return e.tasks
}

// Locations returns the configured location map.
func (e *Engine) Locations() map[string]model.Position {
	return e.locations
}

// Tick selects the action for the current moment.
//
// Matching: an exact-time task matches only at its precise minute; a window
// task matches inside [start, end) with midnight wrap. An exact match
// outranks every window match; among window matches the earliest-declared
// task wins.
//
// Safety: when the envelope reports low battery, or the matched target (or
// the robot itself) sits beyond the allowed distance from the dock, the
// schedule's pick is discarded for a dock-directed action tagged Override.
// Returning to base safely is never traded off against task completion.
func (e *Engine) Tick(now time.Time, env model.SafetyEnvelope, pos model.Position) model.SelectedAction {
	e.phase = phaseEvaluating
	minute := model.MinuteOfDay(now)

	picked := e.match(minute)

	if action, overridden := e.applySafety(now, env, pos, picked); overridden {
		e.phase = phaseSelected
		return action
	}

	if picked == nil {
		e.phase = phaseIdle
		return model.SelectedAction{Idle: true, TickedAt: now}
	}

	e.phase = phaseSelected
	action := model.SelectedAction{
		Target:   picked.Target,
		Actions:  append([]string(nil), picked.Actions...),
		TaskName: picked.Name,
		TickedAt: now,
	}
	if pos, ok := e.locations[picked.Target]; ok {
		p := pos
		action.Position = &p
	}

	e.logger.Debug("task selected",
		"task", picked.Name,
		"target", picked.Target,
		"minute", model.FormatMinute(minute),
	)
	return action
}

// match returns the eligible task for the given minute, or nil. Exact
// matches take priority; declaration order settles the rest.
func (e *Engine) match(minute int) *model.ScheduleTask {
	var window *model.ScheduleTask
	for i := range e.tasks {
		t := &e.tasks[i]
		if !t.MatchesMinute(minute) {
			continue
		}
		if t.Exact() {
			return t
		}
		if window == nil {
			window = t
		}
	}
	return window
}

// applySafety checks the envelope against the tentative pick and returns
// the dock override when the envelope is violated.
func (e *Engine) applySafety(now time.Time, env model.SafetyEnvelope, pos model.Position, picked *model.ScheduleTask) (model.SelectedAction, bool) {
	dock := e.locations[model.DockName]

	reason := ""
	switch {
	case env.Stale:
		reason = ReasonStaleBattery
	case env.LowBattery:
		reason = ReasonLowBattery
	case model.Distance(pos, dock) > env.AllowedDistance:
		reason = ReasonRobotTooFar
	case picked != nil && picked.Target != "":
		if target, ok := e.locations[picked.Target]; ok && model.Distance(target, dock) > env.AllowedDistance {
			reason = ReasonTargetTooFar
		}
	}
	if reason == "" {
		return model.SelectedAction{}, false
	}

	e.logger.Warn("safety override engaged",
		"reason", reason,
		"percentage", env.Percentage,
		"allowed_distance", env.AllowedDistance,
	)

	dockPos := dock
	return model.SelectedAction{
		Target:   model.DockName,
		Position: &dockPos,
		Actions:  append([]string(nil), e.dockActions...),
		Override: true,
		Reason:   reason,
		TickedAt: now,
	}, true
}
