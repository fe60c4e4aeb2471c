package model

import "time"

// PowerReading is one sample from an INA219-style power monitor.
type PowerReading struct {
	ID        string    `json:"id"`
	RunnerKey string    `json:"runner_key"`
	Voltage   float64   `json:"voltage"`
	Current   float64   `json:"current"`
	Power     float64   `json:"power"`
	TakenAt   time.Time `json:"taken_at"`
}

// PowerStats summarizes a bounded history of power readings.
type PowerStats struct {
	AvgVoltage  float64 `json:"avg_voltage"`
	AvgCurrent  float64 `json:"avg_current"`
	AvgPower    float64 `json:"avg_power"`
	MinPower    float64 `json:"min_power"`
	MaxPower    float64 `json:"max_power"`
	SampleCount int     `json:"sample_count"`
}

// BatterySample is one persisted UPS observation.
type BatterySample struct {
	ID         string    `json:"id"`
	RunnerKey  string    `json:"runner_key"`
	Percentage float64   `json:"percentage"`
	Voltage    float64   `json:"voltage"`
	Charging   bool      `json:"charging"`
	InputPower bool      `json:"input_power"`
	TakenAt    time.Time `json:"taken_at"`
}

// Capture is the metadata of one stored camera frame. Image bytes live on
// disk; only the pointer is persisted.
type Capture struct {
	ID        string    `json:"id"`
	RunnerKey string    `json:"runner_key"`
	Path      string    `json:"path"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	TakenAt   time.Time `json:"taken_at"`
}

// ActionRecord is one persisted schedule decision. Only transitions are
// recorded, not every tick.
type ActionRecord struct {
	ID       string    `json:"id"`
	Target   string    `json:"target"`
	Actions  []string  `json:"actions"`
	Override bool      `json:"override"`
	Reason   string    `json:"reason,omitempty"`
	TaskName string    `json:"task_name,omitempty"`
	TickedAt time.Time `json:"ticked_at"`
}

// Notification is an alert emitted by a notify runner when its trigger
// condition fires.
type Notification struct {
	ID        string    `json:"id"`
	RunnerKey string    `json:"runner_key"`
	Message   string    `json:"message"`
	RaisedAt  time.Time `json:"raised_at"`
}
