package store

import (
	"context"
	"time"

	"github.com/me/solard/pkg/model"
)

// Store defines the telemetry persistence layer. The core never reads its
// own history back for decisions; the store feeds the status API and the
// operator CLI.
type Store interface {
	// Power monitor readings.
	InsertPowerReading(ctx context.Context, r *model.PowerReading) error
	RecentPowerReadings(ctx context.Context, limit int) ([]*model.PowerReading, error)

	// UPS battery samples.
	InsertBatterySample(ctx context.Context, s *model.BatterySample) error
	RecentBatterySamples(ctx context.Context, limit int) ([]*model.BatterySample, error)

	// Camera captures (metadata only, frames stay on disk).
	InsertCapture(ctx context.Context, c *model.Capture) error
	RecentCaptures(ctx context.Context, limit int) ([]*model.Capture, error)

	// Schedule decisions (transitions, not every tick).
	InsertAction(ctx context.Context, a *model.ActionRecord) error
	RecentActions(ctx context.Context, limit int) ([]*model.ActionRecord, error)

	// Notify-runner alerts.
	InsertNotification(ctx context.Context, n *model.Notification) error
	RecentNotifications(ctx context.Context, limit int) ([]*model.Notification, error)

	// Housekeeping: delete rows older than cutoff across all tables.
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Lifecycle.
	Migrate(ctx context.Context) error
	Close() error
}
