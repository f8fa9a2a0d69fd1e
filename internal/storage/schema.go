package storage

import (
	"context"
	"database/sql"
	"fmt"
)

func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		// One row per persisted record: stats, sessions, achievements.
		`CREATE TABLE IF NOT EXISTS records (
			key TEXT PRIMARY KEY,
			version INTEGER NOT NULL,
			payload TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		// At most one running timer; slot is always 1.
		`CREATE TABLE IF NOT EXISTS active_timer (
			slot INTEGER PRIMARY KEY CHECK (slot = 1),
			id TEXT NOT NULL,
			subject TEXT NOT NULL,
			started_at TEXT NOT NULL,
			anchor TEXT NOT NULL,
			paused_at TEXT
		);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
