package runner

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/me/solard/internal/config"
	"github.com/me/solard/internal/safety"
	"github.com/me/solard/internal/store"
	"github.com/me/solard/pkg/model"
)

// UPSReading is one raw observation from the UPS board.
type UPSReading struct {
	Voltage    float64
	Charging   bool
	InputPower bool
}

// UPSSource supplies raw readings from a PiPower-style UPS board.
type UPSSource interface {
	Read(ctx context.Context) (UPSReading, error)
}

// SimulatedUPSSource models a 2S pack that slowly discharges and then
// charges back, cycling over roughly half an hour.
type SimulatedUPSSource struct {
	start time.Time
}

// NewSimulatedUPSSource creates a SimulatedUPSSource.
func NewSimulatedUPSSource() *SimulatedUPSSource {
	return &SimulatedUPSSource{start: time.Now()}
}

func (s *SimulatedUPSSource) Read(ctx context.Context) (UPSReading, error) {
	elapsed := time.Since(s.start).Seconds()
	phase := math.Sin(2 * math.Pi * elapsed / 1800.0)
	return UPSReading{
		Voltage:    7.2 + 0.9*phase,
		Charging:   phase >= 0,
		InputPower: phase >= 0,
	}, nil
}

// UPSRunner reads the UPS board on its interval, converts pack voltage
// to a battery percentage, feeds the safety monitor, and persists the
// sample. It is the only writer the safety monitor has.
type UPSRunner struct {
	key    string
	cfg    config.RunnerConfig
	source UPSSource
	safety *safety.Monitor
	store  store.Store
	logger *slog.Logger
}

// NewUPSRunner creates a UPSRunner. With no source in deps the simulated
// pack is used.
func NewUPSRunner(cfg config.RunnerConfig, deps Deps) *UPSRunner {
	src := deps.UPSSource
	if src == nil {
		if deps.Production {
			deps.Logger.Warn("no hardware ups source wired, using simulation", "runner", cfg.Key)
		}
		src = NewSimulatedUPSSource()
	}
	return &UPSRunner{
		key:    cfg.Key,
		cfg:    cfg,
		source: src,
		safety: deps.Safety,
		store:  deps.Store,
		logger: deps.Logger.With("component", "ups", "runner", cfg.Key),
	}
}

// Initialize probes the board and validates the voltage calibration.
func (u *UPSRunner) Initialize(ctx context.Context) error {
	if u.cfg.FullVoltage <= u.cfg.EmptyVoltage {
		return fmt.Errorf("ups %q: full_voltage %v must exceed empty_voltage %v",
			u.key, u.cfg.FullVoltage, u.cfg.EmptyVoltage)
	}
	if _, err := u.source.Read(ctx); err != nil {
		return fmt.Errorf("probe ups: %w", err)
	}
	return nil
}

// WorkCycle takes one reading, publishes it to the safety monitor, and
// persists it.
func (u *UPSRunner) WorkCycle(ctx context.Context) error {
	reading, err := u.source.Read(ctx)
	if err != nil {
		return fmt.Errorf("read ups: %w", err)
	}

	now := time.Now()
	pct := u.percentage(reading.Voltage)

	if u.safety != nil {
		u.safety.Sample(model.BatteryState{
			Percentage: pct,
			Voltage:    reading.Voltage,
			Charging:   reading.Charging,
			InputPower: reading.InputPower,
			SampledAt:  now,
		})
	}

	if u.store != nil {
		sample := &model.BatterySample{
			ID:         uuid.NewString(),
			RunnerKey:  u.key,
			Percentage: pct,
			Voltage:    reading.Voltage,
			Charging:   reading.Charging,
			InputPower: reading.InputPower,
			TakenAt:    now,
		}
		if err := u.store.InsertBatterySample(ctx, sample); err != nil {
			return fmt.Errorf("persist battery sample: %w", err)
		}
	}
	return nil
}

// percentage maps pack voltage linearly onto [0,100] between the
// configured empty and full voltages, clamped at both ends.
func (u *UPSRunner) percentage(voltage float64) float64 {
	pct := (voltage - u.cfg.EmptyVoltage) / (u.cfg.FullVoltage - u.cfg.EmptyVoltage) * 100.0
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

func (u *UPSRunner) Healthy() bool { return true }

func (u *UPSRunner) Close() error { return nil }
