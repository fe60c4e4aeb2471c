package runner

import (
	"context"
	"os"
	"testing"

	"github.com/me/solard/internal/logging"
	"github.com/me/solard/internal/safety"
	"github.com/me/solard/internal/store"
	"github.com/me/solard/pkg/model"
)

type stubPowerSource struct {
	readings []model.PowerReading
	next     int
}

func (s *stubPowerSource) Read(ctx context.Context) (model.PowerReading, error) {
	r := s.readings[s.next%len(s.readings)]
	s.next++
	return r, nil
}

type stubUPSSource struct {
	reading UPSReading
}

func (s *stubUPSSource) Read(ctx context.Context) (UPSReading, error) {
	return s.reading, nil
}

func newMemStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.NewSQLiteStore(":memory:", logging.Discard())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return s
}

func TestPowerRunnerStatsAndPersistence(t *testing.T) {
	src := &stubPowerSource{readings: []model.PowerReading{
		{Voltage: 7.0, Current: 0.5, Power: 3.5},
		{Voltage: 7.4, Current: 1.0, Power: 7.4},
		{Voltage: 7.2, Current: 0.25, Power: 1.8},
	}}

	deps := testDeps()
	deps.PowerSource = src
	deps.Store = newMemStore(t)

	cfg := testRunnerConfig("ina0")
	p := NewPowerRunner(cfg, deps)

	ctx := context.Background()
	if err := p.Initialize(ctx); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := p.WorkCycle(ctx); err != nil {
			t.Fatalf("cycle %d: %v", i, err)
		}
	}

	stats := p.Stats()
	if stats.SampleCount != 3 {
		t.Fatalf("sample count = %d, want 3", stats.SampleCount)
	}
	if stats.MinPower != 1.8 || stats.MaxPower != 7.4 {
		t.Errorf("min/max = %v/%v, want 1.8/7.4", stats.MinPower, stats.MaxPower)
	}

	rows, err := deps.Store.RecentPowerReadings(ctx, 10)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("persisted %d readings, want 3", len(rows))
	}
	for _, r := range rows {
		if r.RunnerKey != "ina0" || r.ID == "" {
			t.Errorf("bad persisted reading: %+v", r)
		}
	}
}

func TestPowerRunnerHistoryBounded(t *testing.T) {
	src := &stubPowerSource{readings: []model.PowerReading{{Power: 1}}}
	deps := testDeps()
	deps.PowerSource = src

	p := NewPowerRunner(testRunnerConfig("ina0"), deps)
	ctx := context.Background()
	for i := 0; i < powerHistoryLimit+20; i++ {
		if err := p.WorkCycle(ctx); err != nil {
			t.Fatalf("cycle: %v", err)
		}
	}
	if n := p.Stats().SampleCount; n != powerHistoryLimit {
		t.Errorf("history holds %d entries, want %d", n, powerHistoryLimit)
	}
}

func TestUPSRunnerPercentageAndSafetySample(t *testing.T) {
	deps := testDeps()
	deps.UPSSource = &stubUPSSource{reading: UPSReading{Voltage: 7.2, Charging: true, InputPower: true}}
	deps.Safety = safety.NewMonitor(safety.DefaultConfig(), logging.Discard())
	deps.Store = newMemStore(t)

	cfg := testRunnerConfig("ups0")
	cfg.Type = model.RunnerTypeUPS
	cfg.FullVoltage = 8.4
	cfg.EmptyVoltage = 6.0

	u := NewUPSRunner(cfg, deps)
	ctx := context.Background()
	if err := u.Initialize(ctx); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := u.WorkCycle(ctx); err != nil {
		t.Fatalf("cycle: %v", err)
	}

	// (7.2-6.0)/(8.4-6.0) = 50%.
	latest, ok := deps.Safety.Latest()
	if !ok {
		t.Fatal("safety monitor never received a sample")
	}
	if latest.Percentage != 50.0 {
		t.Errorf("percentage = %v, want 50", latest.Percentage)
	}
	if !latest.Charging {
		t.Error("charging flag lost")
	}

	rows, err := deps.Store.RecentBatterySamples(ctx, 10)
	if err != nil || len(rows) != 1 {
		t.Fatalf("samples = %v, err = %v", rows, err)
	}
	if rows[0].Percentage != 50.0 {
		t.Errorf("persisted percentage = %v, want 50", rows[0].Percentage)
	}
}

func TestUPSRunnerPercentageClamped(t *testing.T) {
	cfg := testRunnerConfig("ups0")
	cfg.Type = model.RunnerTypeUPS
	cfg.FullVoltage = 8.4
	cfg.EmptyVoltage = 6.0
	u := NewUPSRunner(cfg, testDeps())

	if pct := u.percentage(9.0); pct != 100 {
		t.Errorf("over-full pct = %v, want 100", pct)
	}
	if pct := u.percentage(5.0); pct != 0 {
		t.Errorf("below-empty pct = %v, want 0", pct)
	}
}

func TestUPSRunnerRejectsBadCalibration(t *testing.T) {
	cfg := testRunnerConfig("ups0")
	cfg.Type = model.RunnerTypeUPS
	cfg.FullVoltage = 6.0
	cfg.EmptyVoltage = 8.4
	u := NewUPSRunner(cfg, testDeps())

	if err := u.Initialize(context.Background()); err == nil {
		t.Fatal("inverted voltage calibration must fail initialization")
	}
}

func TestCameraRunnerCapturesToDisk(t *testing.T) {
	deps := testDeps()
	deps.Store = newMemStore(t)

	cfg := testRunnerConfig("cam0")
	cfg.Type = model.RunnerTypeCamera
	cfg.OutputDir = t.TempDir()

	c := NewCameraRunner(cfg, deps)
	ctx := context.Background()
	if err := c.Initialize(ctx); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := c.WorkCycle(ctx); err != nil {
		t.Fatalf("cycle: %v", err)
	}

	captures, err := deps.Store.RecentCaptures(ctx, 10)
	if err != nil || len(captures) != 1 {
		t.Fatalf("captures = %v, err = %v", captures, err)
	}
	if _, err := os.Stat(captures[0].Path); err != nil {
		t.Errorf("frame file missing: %v", err)
	}
	if captures[0].RunnerKey != "cam0" {
		t.Errorf("runner key = %q, want cam0", captures[0].RunnerKey)
	}
}

func TestNotifyRunnerPersistsAlert(t *testing.T) {
	deps := testDeps()
	deps.Store = newMemStore(t)

	cfg := testRunnerConfig("lowbatt-alarm")
	cfg.Type = model.RunnerTypeNotify
	cfg.Message = "battery running low"

	n := NewNotifyRunner(cfg, deps)
	ctx := context.Background()
	if err := n.Initialize(ctx); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := n.WorkCycle(ctx); err != nil {
		t.Fatalf("cycle: %v", err)
	}

	notes, err := deps.Store.RecentNotifications(ctx, 10)
	if err != nil || len(notes) != 1 {
		t.Fatalf("notifications = %v, err = %v", notes, err)
	}
	if notes[0].Message != "battery running low" {
		t.Errorf("message = %q", notes[0].Message)
	}
}

func TestNewRejectsUnknownType(t *testing.T) {
	cfg := testRunnerConfig("mystery")
	cfg.Type = model.RunnerType("lidar")
	if _, err := New(cfg, testDeps()); err == nil {
		t.Fatal("unknown runner type must be rejected")
	}
}

func TestSimulatedSources(t *testing.T) {
	ctx := context.Background()

	pr, err := NewSimulatedPowerSource().Read(ctx)
	if err != nil {
		t.Fatalf("power read: %v", err)
	}
	if pr.Power < 0 || pr.Voltage <= 0 {
		t.Errorf("implausible simulated power reading: %+v", pr)
	}

	ur, err := NewSimulatedUPSSource().Read(ctx)
	if err != nil {
		t.Fatalf("ups read: %v", err)
	}
	if ur.Voltage < 6.0 || ur.Voltage > 8.4 {
		t.Errorf("simulated pack voltage %v outside 6.0-8.4", ur.Voltage)
	}

	dir := t.TempDir()
	cap1, err := SimulatedCamera{}.Capture(ctx, dir)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if _, err := os.Stat(cap1.Path); err != nil {
		t.Errorf("simulated frame missing: %v", err)
	}
}
