// Command solard is the fleet supervision daemon: it starts the
// configured runners, drives the schedule/safety control loop, and
// serves the status API.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/me/solard/internal/config"
	"github.com/me/solard/internal/control"
	"github.com/me/solard/internal/logging"
	"github.com/me/solard/internal/runner"
	"github.com/me/solard/internal/safety"
	"github.com/me/solard/internal/schedule"
	"github.com/me/solard/internal/server"
	"github.com/me/solard/internal/store"
	"github.com/me/solard/internal/trigger"
	"github.com/me/solard/pkg/model"
)

func main() {
	configPath := flag.String("config", "solard.yaml", "Path to configuration file")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error; overrides config)")
	debug := flag.Bool("debug", false, "Shorthand for --log-level=debug")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Application.APIAddr = *addr
	}
	if *logLevel != "" {
		cfg.Application.LogLevel = *logLevel
	}
	if *debug {
		cfg.Application.LogLevel = "debug"
	}

	logger := logging.New(cfg.Application.LogLevel, cfg.Application.LogFormat)
	logger.Info("solard starting",
		"config", *configPath,
		"production", cfg.Application.Production,
		"runners", len(cfg.Runners),
	)

	// Telemetry store is optional: no db_path, no persistence.
	var st store.Store
	if cfg.Application.DBPath != "" {
		sqlStore, err := store.NewSQLiteStore(cfg.Application.DBPath, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open database: %v\n", err)
			os.Exit(1)
		}
		defer sqlStore.Close()
		if err := sqlStore.Migrate(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "migrate database: %v\n", err)
			os.Exit(1)
		}
		logger.Info("database ready", "path", cfg.Application.DBPath)
		st = sqlStore
	}

	monitor := safety.NewMonitor(safety.Config{
		MinBatteryThreshold: cfg.Application.MinBatteryThreshold,
		MaxDistanceFactor:   cfg.Application.MaxDistanceFactor,
		TotalRange:          cfg.Application.TotalRange,
		Grace:               cfg.Application.BatteryGrace.Std(),
	}, logger)

	// The platform starts docked. Navigation is simulated; a real drive
	// stack would implement control.Platform instead.
	start := cfg.Locations[model.DockName]
	platform := control.NewSimulatedPlatform(start, 1.0)

	var eng *schedule.Engine
	var loop *control.Loop
	if len(cfg.Schedule) > 0 {
		tasks, err := schedule.BuildTasks(cfg.Schedule)
		if err != nil {
			fmt.Fprintf(os.Stderr, "build schedule: %v\n", err)
			os.Exit(1)
		}
		eng, err = schedule.NewEngine(tasks, cfg.Locations, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "schedule engine: %v\n", err)
			os.Exit(1)
		}
		loop = control.NewLoop(control.Config{
			Interval:  cfg.Application.MainLoopInterval.Std(),
			Retention: 30 * 24 * time.Hour,
		}, eng, monitor, platform, st, logger)
	}

	// Triggered runners see the same telemetry the engine does.
	snapshot := func() trigger.Snapshot {
		now := time.Now()
		snap := trigger.Snapshot{Hour: now.Hour(), Minute: now.Minute()}
		if latest, ok := monitor.Latest(); ok {
			snap.Battery = latest.Percentage
			snap.Charging = latest.Charging
		}
		dock := cfg.Locations[model.DockName]
		snap.Distance = model.Distance(platform.Position(), dock)
		return snap
	}

	manager := runner.NewManager(cfg.Runners, runner.Deps{
		Logger:     logger,
		Store:      st,
		Safety:     monitor,
		Snapshot:   snapshot,
		Production: cfg.Application.Production,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := manager.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "start runners: %v\n", err)
		os.Exit(1)
	}

	if loop != nil {
		go func() {
			if err := loop.Run(ctx); err != nil && err != context.Canceled {
				logger.Error("control loop stopped", "error", err)
			}
		}()
	}

	srv := server.New(manager, loop, monitor, eng, st, logger)
	httpServer := &http.Server{
		Addr:    cfg.Application.APIAddr,
		Handler: srv.Handler(),
	}

	go func() {
		logger.Info("api listening", "addr", cfg.Application.APIAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("api server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	final := manager.Shutdown(cfg.Application.ShutdownTimeout.Std())
	logger.Info("runners stopped",
		"stopped", final.Stopped,
		"errored", final.Errored,
		"force_stopped", countForced(final),
	)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown error: %v\n", err)
		os.Exit(1)
	}
	logger.Info("solard stopped")
}

func countForced(sys model.SystemStatus) int {
	n := 0
	for _, st := range sys.Runners {
		if st.ForceStopped {
			n++
		}
	}
	return n
}
