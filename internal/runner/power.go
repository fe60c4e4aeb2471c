package runner

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/me/solard/internal/config"
	"github.com/me/solard/internal/store"
	"github.com/me/solard/pkg/model"
)

// alertStreak is how many consecutive out-of-threshold readings it takes
// before a power alert is raised. One odd sample is noise, three are not.
const alertStreak = 3

// powerHistoryLimit bounds the in-memory reading history.
const powerHistoryLimit = 100

// PowerSource supplies instantaneous readings from an INA219-style
// voltage/current monitor.
type PowerSource interface {
	Read(ctx context.Context) (model.PowerReading, error)
}

// SimulatedPowerSource produces a plausible solar input curve: power
// follows a slow sine over a few minutes, as cloud cover would.
type SimulatedPowerSource struct {
	start time.Time
}

// NewSimulatedPowerSource creates a SimulatedPowerSource.
func NewSimulatedPowerSource() *SimulatedPowerSource {
	return &SimulatedPowerSource{start: time.Now()}
}

func (s *SimulatedPowerSource) Read(ctx context.Context) (model.PowerReading, error) {
	elapsed := time.Since(s.start).Seconds()
	// 4 W mean with a ±3 W swing over a 5-minute period.
	power := 4.0 + 3.0*math.Sin(2*math.Pi*elapsed/300.0)
	voltage := 7.4 + 0.2*math.Sin(2*math.Pi*elapsed/120.0)
	return model.PowerReading{
		Voltage: voltage,
		Current: power / voltage,
		Power:   power,
		TakenAt: time.Now(),
	}, nil
}

// PowerRunner samples a power monitor on its interval, keeps a bounded
// reading history for stats, persists samples, and raises alerts when
// input power stays outside the configured thresholds.
type PowerRunner struct {
	key    string
	cfg    config.RunnerConfig
	source PowerSource
	store  store.Store
	logger *slog.Logger

	mu         sync.Mutex
	history    []model.PowerReading
	lowStreak  int
	highStreak int
}

// NewPowerRunner creates a PowerRunner. With no source in deps the
// simulated solar curve is used.
func NewPowerRunner(cfg config.RunnerConfig, deps Deps) *PowerRunner {
	src := deps.PowerSource
	if src == nil {
		if deps.Production {
			deps.Logger.Warn("no hardware power source wired, using simulation", "runner", cfg.Key)
		}
		src = NewSimulatedPowerSource()
	}
	return &PowerRunner{
		key:    cfg.Key,
		cfg:    cfg,
		source: src,
		store:  deps.Store,
		logger: deps.Logger.With("component", "power", "runner", cfg.Key),
	}
}

// Initialize probes the source once so a dead sensor fails fast.
func (p *PowerRunner) Initialize(ctx context.Context) error {
	if _, err := p.source.Read(ctx); err != nil {
		return fmt.Errorf("probe power source: %w", err)
	}
	return nil
}

// WorkCycle takes one reading, records it, and checks the alert
// thresholds.
func (p *PowerRunner) WorkCycle(ctx context.Context) error {
	reading, err := p.source.Read(ctx)
	if err != nil {
		return fmt.Errorf("read power source: %w", err)
	}
	reading.ID = uuid.NewString()
	reading.RunnerKey = p.key
	if reading.TakenAt.IsZero() {
		reading.TakenAt = time.Now()
	}

	p.record(reading)

	if p.store != nil {
		if err := p.store.InsertPowerReading(ctx, &reading); err != nil {
			return fmt.Errorf("persist power reading: %w", err)
		}
	}
	return nil
}

func (p *PowerRunner) record(r model.PowerReading) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.history = append(p.history, r)
	if len(p.history) > powerHistoryLimit {
		p.history = p.history[len(p.history)-powerHistoryLimit:]
	}

	if p.cfg.LowPowerThreshold > 0 && r.Power < p.cfg.LowPowerThreshold {
		p.lowStreak++
		if p.lowStreak == alertStreak {
			p.logger.Warn("input power low",
				"power", r.Power,
				"threshold", p.cfg.LowPowerThreshold,
			)
		}
	} else {
		p.lowStreak = 0
	}

	if p.cfg.HighPowerThreshold > 0 && r.Power > p.cfg.HighPowerThreshold {
		p.highStreak++
		if p.highStreak == alertStreak {
			p.logger.Warn("input power high",
				"power", r.Power,
				"threshold", p.cfg.HighPowerThreshold,
			)
		}
	} else {
		p.highStreak = 0
	}
}

// Stats summarizes the in-memory history.
func (p *PowerRunner) Stats() model.PowerStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	stats := model.PowerStats{SampleCount: len(p.history)}
	if len(p.history) == 0 {
		return stats
	}

	stats.MinPower = p.history[0].Power
	stats.MaxPower = p.history[0].Power
	var sumV, sumC, sumP float64
	for _, r := range p.history {
		sumV += r.Voltage
		sumC += r.Current
		sumP += r.Power
		if r.Power < stats.MinPower {
			stats.MinPower = r.Power
		}
		if r.Power > stats.MaxPower {
			stats.MaxPower = r.Power
		}
	}
	n := float64(len(p.history))
	stats.AvgVoltage = sumV / n
	stats.AvgCurrent = sumC / n
	stats.AvgPower = sumP / n
	return stats
}

// Healthy reports implementation-specific health; the harness layers the
// error-count and recency checks on top.
func (p *PowerRunner) Healthy() bool { return true }

// Close releases the source. The simulated source holds nothing.
func (p *PowerRunner) Close() error { return nil }
