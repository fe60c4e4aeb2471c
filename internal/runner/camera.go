package runner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/me/solard/internal/config"
	"github.com/me/solard/internal/store"
	"github.com/me/solard/pkg/model"
)

// Camera captures one frame into dir and returns its metadata.
type Camera interface {
	Capture(ctx context.Context, dir string) (model.Capture, error)
}

// SimulatedCamera writes a placeholder frame file per capture so the
// rest of the pipeline (paths, pruning, status) behaves as it would with
// real hardware.
type SimulatedCamera struct{}

func (SimulatedCamera) Capture(ctx context.Context, dir string) (model.Capture, error) {
	now := time.Now()
	path := filepath.Join(dir, now.Format("20060102-150405.000")+".jpg")
	if err := os.WriteFile(path, []byte("simulated frame\n"), 0o644); err != nil {
		return model.Capture{}, fmt.Errorf("write frame: %w", err)
	}
	return model.Capture{
		Path:    path,
		Width:   1280,
		Height:  720,
		TakenAt: now,
	}, nil
}

// CameraRunner captures a frame on its interval and persists the
// capture metadata. Frame bytes stay on disk.
type CameraRunner struct {
	key    string
	dir    string
	camera Camera
	store  store.Store
	logger *slog.Logger
}

// NewCameraRunner creates a CameraRunner. With no camera in deps the
// simulated camera is used.
func NewCameraRunner(cfg config.RunnerConfig, deps Deps) *CameraRunner {
	cam := deps.Camera
	if cam == nil {
		if deps.Production {
			deps.Logger.Warn("no hardware camera wired, using simulation", "runner", cfg.Key)
		}
		cam = SimulatedCamera{}
	}
	dir := cfg.OutputDir
	if dir == "" {
		dir = "data/captures"
	}
	return &CameraRunner{
		key:    cfg.Key,
		dir:    dir,
		camera: cam,
		store:  deps.Store,
		logger: deps.Logger.With("component", "camera", "runner", cfg.Key),
	}
}

// Initialize ensures the output directory exists.
func (c *CameraRunner) Initialize(ctx context.Context) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir %s: %w", c.dir, err)
	}
	return nil
}

// WorkCycle captures one frame and persists its metadata.
func (c *CameraRunner) WorkCycle(ctx context.Context) error {
	capture, err := c.camera.Capture(ctx, c.dir)
	if err != nil {
		return fmt.Errorf("capture: %w", err)
	}
	capture.ID = uuid.NewString()
	capture.RunnerKey = c.key

	c.logger.Debug("frame captured", "path", capture.Path)

	if c.store != nil {
		if err := c.store.InsertCapture(ctx, &capture); err != nil {
			return fmt.Errorf("persist capture: %w", err)
		}
	}
	return nil
}

func (c *CameraRunner) Healthy() bool { return true }

func (c *CameraRunner) Close() error { return nil }
