package model

import "testing"

func TestRunnerStateTransitions(t *testing.T) {
	tests := []struct {
		from RunnerState
		to   RunnerState
		want bool
	}{
		{RunnerStateCreated, RunnerStateInitializing, true},
		{RunnerStateCreated, RunnerStateRunning, false},
		{RunnerStateInitializing, RunnerStateRunning, true},
		{RunnerStateInitializing, RunnerStateError, true},
		{RunnerStateRunning, RunnerStateError, true},
		{RunnerStateRunning, RunnerStateStopped, true},
		{RunnerStateError, RunnerStateRunning, true},
		{RunnerStateError, RunnerStateStopped, true},
		{RunnerStateStopped, RunnerStateRunning, false},
		{RunnerStateStopped, RunnerStateInitializing, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestRunnerStateIsTerminal(t *testing.T) {
	if !RunnerStateStopped.IsTerminal() {
		t.Error("stopped should be terminal")
	}
	for _, s := range []RunnerState{RunnerStateCreated, RunnerStateInitializing, RunnerStateRunning, RunnerStateError} {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestRunnerTypeIsKnown(t *testing.T) {
	for _, rt := range KnownRunnerTypes {
		if !rt.IsKnown() {
			t.Errorf("%s should be known", rt)
		}
	}
	if RunnerType("lidar").IsKnown() {
		t.Error("unregistered type should not be known")
	}
}
