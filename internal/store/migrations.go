package store

import (
	"context"
	"database/sql"
)

// schema contains the DDL for all solard tables.
// Each statement uses IF NOT EXISTS for idempotency.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS power_readings (
		id         TEXT PRIMARY KEY,
		runner_key TEXT NOT NULL,
		voltage    REAL NOT NULL,
		current    REAL NOT NULL,
		power      REAL NOT NULL,
		taken_at   TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS battery_samples (
		id          TEXT PRIMARY KEY,
		runner_key  TEXT NOT NULL,
		percentage  REAL NOT NULL,
		voltage     REAL NOT NULL,
		charging    INTEGER NOT NULL DEFAULT 0,
		input_power INTEGER NOT NULL DEFAULT 0,
		taken_at    TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS captures (
		id         TEXT PRIMARY KEY,
		runner_key TEXT NOT NULL,
		path       TEXT NOT NULL,
		width      INTEGER NOT NULL DEFAULT 0,
		height     INTEGER NOT NULL DEFAULT 0,
		taken_at   TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS actions (
		id        TEXT PRIMARY KEY,
		target    TEXT NOT NULL,
		actions   TEXT NOT NULL DEFAULT '[]',
		override  INTEGER NOT NULL DEFAULT 0,
		reason    TEXT NOT NULL DEFAULT '',
		task_name TEXT NOT NULL DEFAULT '',
		ticked_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS notifications (
		id         TEXT PRIMARY KEY,
		runner_key TEXT NOT NULL,
		message    TEXT NOT NULL,
		raised_at  TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_power_readings_taken_at ON power_readings(taken_at)`,
	`CREATE INDEX IF NOT EXISTS idx_battery_samples_taken_at ON battery_samples(taken_at)`,
	`CREATE INDEX IF NOT EXISTS idx_captures_taken_at ON captures(taken_at)`,
	`CREATE INDEX IF NOT EXISTS idx_actions_ticked_at ON actions(ticked_at)`,
}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
