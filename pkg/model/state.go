package model

// RunnerState represents the lifecycle state of a Runner.
type RunnerState string

const (
	RunnerStateCreated      RunnerState = "created"
	RunnerStateInitializing RunnerState = "initializing"
	RunnerStateRunning      RunnerState = "running"
	RunnerStateError        RunnerState = "error"
	RunnerStateStopped      RunnerState = "stopped"
)

// String returns the string representation of the runner state.
func (s RunnerState) String() string {
	return string(s)
}

// IsTerminal returns true if the runner is in a final state.
// Stopped is terminal and irreversible for a runner instance.
func (s RunnerState) IsTerminal() bool {
	return s == RunnerStateStopped
}

// ValidRunnerTransitions defines the allowed state transitions for Runners.
// Error and Running alternate while the worker is alive: a failed work cycle
// moves the runner to Error, the next successful cycle moves it back.
var ValidRunnerTransitions = map[RunnerState][]RunnerState{
	RunnerStateCreated:      {RunnerStateInitializing},
	RunnerStateInitializing: {RunnerStateRunning, RunnerStateError},
	RunnerStateRunning:      {RunnerStateError, RunnerStateStopped},
	RunnerStateError:        {RunnerStateRunning, RunnerStateStopped},
}

// CanTransitionTo returns true if moving from the current state to next is valid.
func (s RunnerState) CanTransitionTo(next RunnerState) bool {
	for _, allowed := range ValidRunnerTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// RunnerType identifies which runner implementation a configuration entry
// instantiates. The set is closed: unknown tags are a configuration error
// rejected at startup, never a silent runtime fallback.
type RunnerType string

const (
	RunnerTypePower  RunnerType = "power"
	RunnerTypeUPS    RunnerType = "ups"
	RunnerTypeCamera RunnerType = "camera"
	RunnerTypeNotify RunnerType = "notify"
)

// KnownRunnerTypes lists every runner type the factory can build.
var KnownRunnerTypes = []RunnerType{
	RunnerTypePower,
	RunnerTypeUPS,
	RunnerTypeCamera,
	RunnerTypeNotify,
}

// IsKnown reports whether t names a registered runner implementation.
func (t RunnerType) IsKnown() bool {
	for _, k := range KnownRunnerTypes {
		if t == k {
			return true
		}
	}
	return false
}
