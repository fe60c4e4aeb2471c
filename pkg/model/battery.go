package model

import "time"

// BatteryState is the latest battery sample as published by the UPS runner.
// Percentage is clamped to [0,100] at the source.
type BatteryState struct {
	Percentage float64   `json:"percentage"`
	Voltage    float64   `json:"voltage"`
	Charging   bool      `json:"charging"`
	InputPower bool      `json:"input_power"`
	SampledAt  time.Time `json:"sampled_at"`
}

// SafetyEnvelope is derived from the latest battery sample on every
// evaluation and never cached across ticks.
//
//	AllowedDistance = maxDistanceFactor × (percentage/100) × totalRange
//	LowBattery      = percentage < minBatteryThreshold
//
// Stale marks an envelope computed without a fresh sample; staleness always
// forces LowBattery so missing data is never read as "safe".
type SafetyEnvelope struct {
	LowBattery      bool      `json:"low_battery"`
	AllowedDistance float64   `json:"allowed_distance"`
	Percentage      float64   `json:"percentage"`
	Stale           bool      `json:"stale"`
	ComputedAt      time.Time `json:"computed_at"`
}
