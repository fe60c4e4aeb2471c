package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/me/solard/internal/config"
	"github.com/me/solard/internal/store"
	"github.com/me/solard/pkg/model"
)

// NotifyRunner raises an operator notification each cycle. It is meant
// to run with the triggered behavior so the harness only fires it while
// its condition holds, e.g. "battery < 30 && !charging".
type NotifyRunner struct {
	key     string
	message string
	store   store.Store
	logger  *slog.Logger
}

// NewNotifyRunner creates a NotifyRunner.
func NewNotifyRunner(cfg config.RunnerConfig, deps Deps) *NotifyRunner {
	msg := cfg.Message
	if msg == "" {
		msg = fmt.Sprintf("condition fired for runner %s", cfg.Key)
	}
	return &NotifyRunner{
		key:     cfg.Key,
		message: msg,
		store:   deps.Store,
		logger:  deps.Logger.With("component", "notify", "runner", cfg.Key),
	}
}

func (n *NotifyRunner) Initialize(ctx context.Context) error { return nil }

// WorkCycle logs the alert and persists it.
func (n *NotifyRunner) WorkCycle(ctx context.Context) error {
	n.logger.Warn("notification", "message", n.message)

	if n.store != nil {
		note := &model.Notification{
			ID:        uuid.NewString(),
			RunnerKey: n.key,
			Message:   n.message,
			RaisedAt:  time.Now(),
		}
		if err := n.store.InsertNotification(ctx, note); err != nil {
			return fmt.Errorf("persist notification: %w", err)
		}
	}
	return nil
}

func (n *NotifyRunner) Healthy() bool { return true }

func (n *NotifyRunner) Close() error { return nil }
