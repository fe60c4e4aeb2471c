package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/me/solard/internal/config"
	"github.com/me/solard/pkg/model"
)

func boolPtr(b bool) *bool { return &b }

func TestManagerStartEnabledOnly(t *testing.T) {
	configs := []config.RunnerConfig{
		testRunnerConfig("a"),
		testRunnerConfig("b"),
		func() config.RunnerConfig {
			c := testRunnerConfig("c")
			c.Enabled = boolPtr(false)
			return c
		}(),
	}

	m := NewManager(configs, testDeps())
	m.newRunner = func(config.RunnerConfig, Deps) (Runner, error) {
		return &fakeRunner{}, nil
	}

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer m.Shutdown(time.Second)

	sys := m.SystemStatus()
	if sys.Total != 2 {
		t.Fatalf("total = %d, want 2 (disabled entry must be absent)", sys.Total)
	}
	if sys.Running != 2 {
		t.Errorf("running = %d, want 2", sys.Running)
	}
	for _, st := range sys.Runners {
		if st.Key == "c" {
			t.Error("disabled runner appears in status")
		}
	}

	if _, ok := m.Get("a"); !ok {
		t.Error("lookup of started runner failed")
	}
	if _, ok := m.Get("c"); ok {
		t.Error("disabled runner is registered")
	}
	if _, ok := m.Get("ghost"); ok {
		t.Error("lookup of unknown key succeeded")
	}
}

func TestManagerDuplicateKeyFatal(t *testing.T) {
	configs := []config.RunnerConfig{
		testRunnerConfig("dup"),
		testRunnerConfig("dup"),
	}
	m := NewManager(configs, testDeps())

	err := m.Start(context.Background())
	if err == nil {
		t.Fatal("duplicate key must abort startup")
	}
	if !errors.Is(err, config.ErrDuplicateRunner) {
		t.Errorf("error %v should wrap ErrDuplicateRunner", err)
	}
	if len(m.Statuses()) != 0 {
		t.Error("no runner may start after a fatal configuration error")
	}
}

func TestManagerInitFailureTolerated(t *testing.T) {
	configs := []config.RunnerConfig{
		testRunnerConfig("good"),
		testRunnerConfig("broken"),
	}

	m := NewManager(configs, testDeps())
	m.newRunner = func(cfg config.RunnerConfig, _ Deps) (Runner, error) {
		if cfg.Key == "broken" {
			return &fakeRunner{initErr: errors.New("no such device")}, nil
		}
		return &fakeRunner{}, nil
	}

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("partial init failure must not abort startup: %v", err)
	}
	defer m.Shutdown(time.Second)

	sys := m.SystemStatus()
	if sys.Total != 2 {
		t.Fatalf("total = %d, want 2 (failed runner stays registered)", sys.Total)
	}
	if sys.Running != 1 || sys.Errored != 1 {
		t.Errorf("running/errored = %d/%d, want 1/1", sys.Running, sys.Errored)
	}
	if sys.AllHealthy {
		t.Error("system cannot be all-healthy with an errored runner")
	}

	broken, ok := m.Get("broken")
	if !ok {
		t.Fatal("failed runner missing from registry")
	}
	if broken.Status().State != model.RunnerStateError {
		t.Errorf("broken state = %v, want error", broken.Status().State)
	}
}

func TestManagerShutdownClean(t *testing.T) {
	m := NewManager([]config.RunnerConfig{testRunnerConfig("a")}, testDeps())
	m.newRunner = func(config.RunnerConfig, Deps) (Runner, error) {
		return &fakeRunner{}, nil
	}
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	final := m.Shutdown(time.Second)
	if final.Stopped != 1 {
		t.Errorf("stopped = %d, want 1", final.Stopped)
	}
	if final.Runners[0].ForceStopped {
		t.Error("clean shutdown must not mark force-stopped")
	}
}

func TestManagerShutdownForceStopsStuckRunner(t *testing.T) {
	block := make(chan struct{})
	defer close(block)

	configs := []config.RunnerConfig{
		testRunnerConfig("ok"),
		testRunnerConfig("stuck"),
	}
	m := NewManager(configs, testDeps())
	m.newRunner = func(cfg config.RunnerConfig, _ Deps) (Runner, error) {
		if cfg.Key == "stuck" {
			return &fakeRunner{cycleFn: func(ctx context.Context) error {
				<-block // never yields
				return nil
			}}, nil
		}
		return &fakeRunner{}, nil
	}
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Let the stuck runner enter its blocking cycle.
	time.Sleep(30 * time.Millisecond)

	timeout := 100 * time.Millisecond
	begin := time.Now()
	final := m.Shutdown(timeout)
	elapsed := time.Since(begin)

	if elapsed > timeout+200*time.Millisecond {
		t.Errorf("shutdown took %v, want within timeout plus slack", elapsed)
	}

	var stuck model.RunnerStatus
	for _, st := range final.Runners {
		if st.Key == "stuck" {
			stuck = st
		}
	}
	if !stuck.ForceStopped {
		t.Error("stuck runner not marked force-stopped")
	}
	if stuck.State != model.RunnerStateError {
		t.Errorf("stuck state = %v, want error (abandoned cycle counts as a crash)", stuck.State)
	}
	if final.Stopped != 1 {
		t.Errorf("stopped = %d, want 1 (only the clean runner)", final.Stopped)
	}
}

func TestManagerShutdownIdempotent(t *testing.T) {
	m := NewManager([]config.RunnerConfig{testRunnerConfig("a")}, testDeps())
	m.newRunner = func(config.RunnerConfig, Deps) (Runner, error) {
		return &fakeRunner{}, nil
	}
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	first := m.Shutdown(time.Second)
	second := m.Shutdown(time.Second)
	if second.Stopped != first.Stopped || second.Total != first.Total {
		t.Errorf("second shutdown diverged: first %+v, second %+v", first, second)
	}
}
