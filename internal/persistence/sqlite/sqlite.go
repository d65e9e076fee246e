// Package sqlite implements the persistence contracts on SQLite via the
// modernc.org/sqlite driver. Dates are stored in their canonical
// "YYYY-MM-DD" key form and timestamps as RFC 3339 text.
package sqlite

import (
	"context"
	"fmt"
)

// Schema statements applied by Migrate. The partial unique index on one-off
// reservations is the database-level guard required for the booking write
// path: two concurrent bookings of the same free slot cannot both commit.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS resources (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		number INTEGER NOT NULL DEFAULT 0,
		kind TEXT NOT NULL CHECK (kind IN ('court', 'barbecue_pit')),
		sports TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS one_off_reservations (
		id TEXT PRIMARY KEY,
		resource_id TEXT NOT NULL REFERENCES resources(id),
		date TEXT NOT NULL,
		shift_key TEXT NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('confirmed', 'finished', 'cancelled', 'transferred')),
		member_id TEXT NOT NULL,
		member_name TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_one_off_active_slot
		ON one_off_reservations (resource_id, date, shift_key)
		WHERE status IN ('confirmed', 'finished')`,
	`CREATE INDEX IF NOT EXISTS idx_one_off_resource_date
		ON one_off_reservations (resource_id, date)`,
	`CREATE TABLE IF NOT EXISTS recurring_reservations (
		id TEXT PRIMARY KEY,
		resource_id TEXT NOT NULL REFERENCES resources(id),
		weekday INTEGER NOT NULL CHECK (weekday BETWEEN 0 AND 6),
		shift_key TEXT NOT NULL,
		starts_on TEXT,
		status TEXT NOT NULL CHECK (status IN ('confirmed', 'finished', 'cancelled', 'transferred')),
		member_id TEXT NOT NULL,
		member_name TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_recurring_resource_weekday
		ON recurring_reservations (resource_id, weekday, shift_key)`,
	`CREATE TABLE IF NOT EXISTS recurring_exceptions (
		recurring_id TEXT NOT NULL REFERENCES recurring_reservations(id) ON DELETE CASCADE,
		date TEXT NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (recurring_id, date)
	)`,
	`CREATE TABLE IF NOT EXISTS blackouts (
		id TEXT PRIMARY KEY,
		resource_id TEXT NOT NULL REFERENCES resources(id),
		date TEXT NOT NULL,
		start_minute INTEGER NOT NULL CHECK (start_minute BETWEEN 0 AND 1440),
		end_minute INTEGER NOT NULL CHECK (end_minute BETWEEN 0 AND 1440 AND end_minute > start_minute),
		reason TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_blackouts_resource_date
		ON blackouts (resource_id, date)`,
}

// Migrate applies the portal schema. Statements are idempotent, so repeated
// startup migration is safe.
func Migrate(ctx context.Context, pool *ConnectionPool) error {
	for _, statement := range schemaStatements {
		if _, err := pool.DB().ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
