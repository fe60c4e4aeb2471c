package model

import "time"

// RunnerStatus is a consistent snapshot of one runner's state, taken under
// the runner's own lock. Readers never see a torn view.
type RunnerStatus struct {
	Key          string      `json:"key"`
	Label        string      `json:"label"`
	Type         RunnerType  `json:"type"`
	State        RunnerState `json:"state"`
	Enabled      bool        `json:"enabled"`
	Healthy      bool        `json:"healthy"`
	ErrorCount   int         `json:"error_count"`
	LastError    string      `json:"last_error,omitempty"`
	Uptime       float64     `json:"uptime_seconds"`
	LastCycle    *time.Time  `json:"last_cycle,omitempty"`
	ForceStopped bool        `json:"force_stopped"`
}

// SystemStatus aggregates all runner statuses into one manager-level view.
// Runners appears in registration order.
type SystemStatus struct {
	Total      int            `json:"total"`
	Running    int            `json:"running"`
	Stopped    int            `json:"stopped"`
	Errored    int            `json:"errored"`
	Healthy    int            `json:"healthy"`
	AllHealthy bool           `json:"all_healthy"`
	Uptime     float64        `json:"uptime_seconds"`
	CheckedAt  time.Time      `json:"checked_at"`
	Runners    []RunnerStatus `json:"runners"`
}
