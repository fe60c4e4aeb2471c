package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/me/solard/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and returns
// a Store. Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	// WAL keeps status reads cheap while runners insert concurrently.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "store"),
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates all required tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	return migrate(ctx, s.db)
}

func (s *SQLiteStore) InsertPowerReading(ctx context.Context, r *model.PowerReading) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO power_readings (id, runner_key, voltage, current, power, taken_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.RunnerKey, r.Voltage, r.Current, r.Power, r.TakenAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

func (s *SQLiteStore) RecentPowerReadings(ctx context.Context, limit int) ([]*model.PowerReading, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, runner_key, voltage, current, power, taken_at
		 FROM power_readings ORDER BY taken_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.PowerReading
	for rows.Next() {
		var r model.PowerReading
		var takenAt string
		if err := rows.Scan(&r.ID, &r.RunnerKey, &r.Voltage, &r.Current, &r.Power, &takenAt); err != nil {
			return nil, err
		}
		if r.TakenAt, err = time.Parse(time.RFC3339Nano, takenAt); err != nil {
			return nil, fmt.Errorf("parse taken_at: %w", err)
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) InsertBatterySample(ctx context.Context, b *model.BatterySample) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO battery_samples (id, runner_key, percentage, voltage, charging, input_power, taken_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.RunnerKey, b.Percentage, b.Voltage, boolInt(b.Charging), boolInt(b.InputPower),
		b.TakenAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

func (s *SQLiteStore) RecentBatterySamples(ctx context.Context, limit int) ([]*model.BatterySample, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, runner_key, percentage, voltage, charging, input_power, taken_at
		 FROM battery_samples ORDER BY taken_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.BatterySample
	for rows.Next() {
		var b model.BatterySample
		var charging, inputPower int
		var takenAt string
		if err := rows.Scan(&b.ID, &b.RunnerKey, &b.Percentage, &b.Voltage, &charging, &inputPower, &takenAt); err != nil {
			return nil, err
		}
		b.Charging = charging != 0
		b.InputPower = inputPower != 0
		if b.TakenAt, err = time.Parse(time.RFC3339Nano, takenAt); err != nil {
			return nil, fmt.Errorf("parse taken_at: %w", err)
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) InsertCapture(ctx context.Context, c *model.Capture) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO captures (id, runner_key, path, width, height, taken_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.RunnerKey, c.Path, c.Width, c.Height, c.TakenAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

func (s *SQLiteStore) RecentCaptures(ctx context.Context, limit int) ([]*model.Capture, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, runner_key, path, width, height, taken_at
		 FROM captures ORDER BY taken_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Capture
	for rows.Next() {
		var c model.Capture
		var takenAt string
		if err := rows.Scan(&c.ID, &c.RunnerKey, &c.Path, &c.Width, &c.Height, &takenAt); err != nil {
			return nil, err
		}
		if c.TakenAt, err = time.Parse(time.RFC3339Nano, takenAt); err != nil {
			return nil, fmt.Errorf("parse taken_at: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) InsertAction(ctx context.Context, a *model.ActionRecord) error {
	actionsJSON, err := json.Marshal(a.Actions)
	if err != nil {
		return fmt.Errorf("marshal actions: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO actions (id, target, actions, override, reason, task_name, ticked_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Target, string(actionsJSON), boolInt(a.Override), a.Reason, a.TaskName,
		a.TickedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

func (s *SQLiteStore) RecentActions(ctx context.Context, limit int) ([]*model.ActionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, target, actions, override, reason, task_name, ticked_at
		 FROM actions ORDER BY ticked_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.ActionRecord
	for rows.Next() {
		var a model.ActionRecord
		var actionsJSON, tickedAt string
		var override int
		if err := rows.Scan(&a.ID, &a.Target, &actionsJSON, &override, &a.Reason, &a.TaskName, &tickedAt); err != nil {
			return nil, err
		}
		a.Override = override != 0
		if err := json.Unmarshal([]byte(actionsJSON), &a.Actions); err != nil {
			return nil, fmt.Errorf("unmarshal actions: %w", err)
		}
		if a.TickedAt, err = time.Parse(time.RFC3339Nano, tickedAt); err != nil {
			return nil, fmt.Errorf("parse ticked_at: %w", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) InsertNotification(ctx context.Context, n *model.Notification) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications (id, runner_key, message, raised_at)
		 VALUES (?, ?, ?, ?)`,
		n.ID, n.RunnerKey, n.Message, n.RaisedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

func (s *SQLiteStore) RecentNotifications(ctx context.Context, limit int) ([]*model.Notification, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, runner_key, message, raised_at
		 FROM notifications ORDER BY raised_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Notification
	for rows.Next() {
		var n model.Notification
		var raisedAt string
		if err := rows.Scan(&n.ID, &n.RunnerKey, &n.Message, &raisedAt); err != nil {
			return nil, err
		}
		if n.RaisedAt, err = time.Parse(time.RFC3339Nano, raisedAt); err != nil {
			return nil, fmt.Errorf("parse raised_at: %w", err)
		}
		out = append(out, &n)
	}
	return out, rows.Err()
}

// PruneBefore deletes telemetry older than cutoff from every table and
// returns the number of rows removed.
func (s *SQLiteStore) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	ts := cutoff.UTC().Format(time.RFC3339Nano)
	var total int64
	for _, q := range []string{
		`DELETE FROM power_readings WHERE taken_at < ?`,
		`DELETE FROM battery_samples WHERE taken_at < ?`,
		`DELETE FROM captures WHERE taken_at < ?`,
		`DELETE FROM actions WHERE ticked_at < ?`,
		`DELETE FROM notifications WHERE raised_at < ?`,
	} {
		res, err := s.db.ExecContext(ctx, q, ts)
		if err != nil {
			return total, err
		}
		n, _ := res.RowsAffected()
		total += n
	}
	s.logger.Debug("sql", "op", "prune", "rows", total)
	return total, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
