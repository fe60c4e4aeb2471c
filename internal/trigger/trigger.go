// Package trigger evaluates the condition expressions that gate triggered
// runners. Conditions are small JavaScript expressions over a snapshot of
// the robot's telemetry, e.g. "battery < 30 && !charging".
package trigger

import (
	"fmt"

	"github.com/dop251/goja"
)

// Snapshot is the variable environment a condition sees.
type Snapshot struct {
	Battery  float64 // battery percentage
	Charging bool
	Distance float64 // current distance from the dock
	Hour     int     // local wall clock
	Minute   int
}

// Evaluator runs condition expressions. A fresh VM is built per evaluation
// so one runner's expression can never leak state into another's.
type Evaluator struct{}

// NewEvaluator creates an Evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Eval evaluates expr against snap and returns its boolean result.
// A non-boolean result is an error: silently truthy conditions have bitten
// before, so the contract is strict.
func (e *Evaluator) Eval(expr string, snap Snapshot) (bool, error) {
	if expr == "" {
		return false, fmt.Errorf("empty trigger expression")
	}

	vm := goja.New()
	vars := map[string]any{
		"battery":  snap.Battery,
		"charging": snap.Charging,
		"distance": snap.Distance,
		"hour":     snap.Hour,
		"minute":   snap.Minute,
	}
	for name, v := range vars {
		if err := vm.Set(name, v); err != nil {
			return false, fmt.Errorf("set %s: %w", name, err)
		}
	}

	value, err := vm.RunString(expr)
	if err != nil {
		return false, fmt.Errorf("evaluate %q: %w", expr, err)
	}

	result, ok := value.Export().(bool)
	if !ok {
		return false, fmt.Errorf("trigger %q: result %v is not a boolean", expr, value.Export())
	}
	return result, nil
}

// Check parses expr without evaluating it, for fail-fast config validation.
func Check(expr string) error {
	if expr == "" {
		return fmt.Errorf("empty trigger expression")
	}
	if _, err := goja.Compile("trigger", expr, true); err != nil {
		return fmt.Errorf("invalid trigger %q: %w", expr, err)
	}
	return nil
}
