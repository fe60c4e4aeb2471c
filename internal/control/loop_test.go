package control

import (
	"context"
	"testing"
	"time"

	"github.com/me/solard/internal/logging"
	"github.com/me/solard/internal/safety"
	"github.com/me/solard/internal/schedule"
	"github.com/me/solard/internal/store"
	"github.com/me/solard/pkg/model"
)

var loopLocations = map[string]model.Position{
	model.DockName: {X: 0, Y: 0},
	"PlantA":       {X: 3, Y: 4},
}

func newTestEngine(t *testing.T) *schedule.Engine {
	t.Helper()
	tasks, err := schedule.BuildTasks([]schedule.Entry{
		{Name: "morning-water", TimeRange: "07:00-10:00", Type: "navigation", Target: "PlantA", Actions: []string{"water"}},
		{Name: "midday-charge", Time: "12:30", Type: "navigation", Target: model.DockName, Actions: []string{"charge"}},
	})
	if err != nil {
		t.Fatalf("build tasks: %v", err)
	}
	eng, err := schedule.NewEngine(tasks, loopLocations, logging.Discard())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return eng
}

func newTestLoop(t *testing.T, at time.Time, batteryPct float64) (*Loop, store.Store) {
	t.Helper()

	st, err := store.NewSQLiteStore(":memory:", logging.Discard())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	mon := safety.NewMonitor(safety.DefaultConfig(), logging.Discard())
	mon.Sample(model.BatteryState{Percentage: batteryPct, SampledAt: at})

	platform := NewSimulatedPlatform(model.Position{X: 0, Y: 0}, 1.0)
	l := NewLoop(Config{Interval: 10 * time.Millisecond}, newTestEngine(t), mon, platform, st, logging.Discard())
	l.now = func() time.Time { return at }
	return l, st
}

func TestTickSelectsScheduledTask(t *testing.T) {
	at := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	l, st := newTestLoop(t, at, 80)

	action := l.Tick(context.Background())
	if action.Target != "PlantA" || action.Override || action.Idle {
		t.Fatalf("action = %+v, want normal PlantA pick", action)
	}
	if got := l.Current(); got.Target != action.Target {
		t.Errorf("Current() = %+v, want last tick's action", got)
	}

	// A repeat of the same decision is not a transition.
	l.Tick(context.Background())
	recs, err := st.RecentActions(context.Background(), 10)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("recorded %d actions over two identical ticks, want 1", len(recs))
	}
	if recs[0].Target != "PlantA" || recs[0].Override {
		t.Errorf("recorded action = %+v", recs[0])
	}
}

func TestTickRecordsSafetyOverride(t *testing.T) {
	at := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	l, st := newTestLoop(t, at, 10)

	action := l.Tick(context.Background())
	if action.Target != model.DockName || !action.Override {
		t.Fatalf("action = %+v, want dock override", action)
	}

	recs, err := st.RecentActions(context.Background(), 10)
	if err != nil || len(recs) != 1 {
		t.Fatalf("actions = %v, err = %v", recs, err)
	}
	if !recs[0].Override || recs[0].Reason == "" {
		t.Errorf("override not tagged in record: %+v", recs[0])
	}
}

func TestTickIdleOutsideScheduleNotRecorded(t *testing.T) {
	at := time.Date(2026, 3, 2, 3, 0, 0, 0, time.UTC)
	l, st := newTestLoop(t, at, 80)

	action := l.Tick(context.Background())
	if !action.Idle {
		t.Fatalf("action = %+v, want idle at 03:00", action)
	}

	recs, err := st.RecentActions(context.Background(), 10)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("idle decision was recorded: %+v", recs)
	}
}

func TestTickSteersPlatformTowardTarget(t *testing.T) {
	at := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	l, _ := newTestLoop(t, at, 80)
	l.cfg.Retention = 0

	l.Tick(context.Background())

	// Fast platform: within a few real milliseconds it should be off the
	// dock heading to PlantA.
	fast := NewSimulatedPlatform(model.Position{}, 1000)
	fast.SetTarget(loopLocations["PlantA"])
	time.Sleep(20 * time.Millisecond)
	pos := fast.Position()
	want := loopLocations["PlantA"]
	if pos != want {
		t.Errorf("fast platform at %+v, want %+v", pos, want)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	at := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	l, _ := newTestLoop(t, at, 80)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}

func TestPruneTelemetry(t *testing.T) {
	at := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	l, st := newTestLoop(t, at, 80)
	l.cfg.Retention = time.Hour

	old := &model.ActionRecord{ID: "old", Target: "PlantA", Actions: []string{"water"}, TickedAt: at.Add(-2 * time.Hour)}
	fresh := &model.ActionRecord{ID: "fresh", Target: "PlantA", Actions: []string{"water"}, TickedAt: at.Add(-time.Minute)}
	for _, rec := range []*model.ActionRecord{old, fresh} {
		if err := st.InsertAction(context.Background(), rec); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	l.pruneTelemetry(context.Background())

	recs, err := st.RecentActions(context.Background(), 10)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(recs) != 1 || recs[0].ID != "fresh" {
		t.Errorf("prune kept wrong rows: %+v", recs)
	}
}
