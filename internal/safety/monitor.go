// Package safety derives the battery safety envelope that bounds every
// schedule decision: the low-battery flag and the maximum distance the
// robot may be from the dock at the current charge level.
package safety

import (
	"log/slog"
	"sync"
	"time"

	"github.com/me/solard/pkg/model"
)

// Config holds the envelope parameters. All fields come from the
// application configuration and are immutable after construction.
type Config struct {
	// MinBatteryThreshold is the percentage below which (strictly) the
	// robot must return to the dock. The threshold value itself is not low.
	MinBatteryThreshold float64

	// MaxDistanceFactor scales the battery-proportional range. At factor
	// 0.5 and 50% battery the allowed distance is 25% of TotalRange.
	MaxDistanceFactor float64

	// TotalRange is the platform's travel range on a full charge, in the
	// same unit as location coordinates.
	TotalRange float64

	// Grace is how old the latest sample may be before the monitor stops
	// trusting it and falls back to the conservative low-battery envelope.
	Grace time.Duration
}

// DefaultConfig returns the thresholds the original platform shipped with.
func DefaultConfig() Config {
	return Config{
		MinBatteryThreshold: 20.0,
		MaxDistanceFactor:   0.5,
		TotalRange:          100.0,
		Grace:               2 * time.Minute,
	}
}

// Monitor holds the latest battery sample and computes the safety envelope
// on demand. Sample is called from the UPS runner's goroutine, Envelope
// from the control loop; a mutex keeps the sample swap atomic. Neither
// call blocks on anything but the other.
type Monitor struct {
	cfg    Config
	logger *slog.Logger

	mu     sync.Mutex
	latest model.BatteryState
	seeded bool
}

// NewMonitor creates a Monitor. No sample is present until the first call
// to Sample, so Envelope starts in the conservative stale state.
func NewMonitor(cfg Config, logger *slog.Logger) *Monitor {
	return &Monitor{
		cfg:    cfg,
		logger: logger.With("component", "safety"),
	}
}

// Sample records the latest battery state. Pure state update.
func (m *Monitor) Sample(state model.BatteryState) {
	m.mu.Lock()
	m.latest = state
	m.seeded = true
	m.mu.Unlock()

	m.logger.Debug("battery sampled",
		"percentage", state.Percentage,
		"charging", state.Charging,
	)
}

// Latest returns the most recent sample and whether one exists.
func (m *Monitor) Latest() (model.BatteryState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latest, m.seeded
}

// Envelope computes the current safety envelope from the latest sample.
// It is recomputed on every call and never cached across ticks.
//
// With no sample inside the grace period the envelope degrades to
// LowBattery=true and AllowedDistance=0: absence of data is never "safe".
func (m *Monitor) Envelope(now time.Time) model.SafetyEnvelope {
	m.mu.Lock()
	latest := m.latest
	seeded := m.seeded
	m.mu.Unlock()

	env := model.SafetyEnvelope{ComputedAt: now}

	if !seeded || now.Sub(latest.SampledAt) > m.cfg.Grace {
		env.Stale = true
		env.LowBattery = true
		if seeded {
			env.Percentage = latest.Percentage
		}
		m.logger.Warn("battery data stale, assuming low battery",
			"seeded", seeded,
			"grace", m.cfg.Grace,
		)
		return env
	}

	env.Percentage = latest.Percentage
	env.LowBattery = latest.Percentage < m.cfg.MinBatteryThreshold
	env.AllowedDistance = m.cfg.MaxDistanceFactor * (latest.Percentage / 100.0) * m.cfg.TotalRange
	return env
}
