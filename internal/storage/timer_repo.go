package storage

import (
	"context"
	"database/sql"
	"fmt"
)

type TimerRepo struct {
	db DBTX
}

func NewTimerRepo(db DBTX) *TimerRepo {
	return &TimerRepo{db: db}
}

// Get returns the active timer, or nil when none is running.
func (r *TimerRepo) Get(ctx context.Context) (*ActiveTimer, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, subject, started_at, anchor, paused_at FROM active_timer WHERE slot = 1`)

	var (
		t         ActiveTimer
		startedAt string
		anchor    string
		pausedAt  sql.NullString
	)
	if err := row.Scan(&t.ID, &t.Subject, &startedAt, &anchor, &pausedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("timer get: %w", err)
	}

	var err error
	if t.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, fmt.Errorf("timer started_at: %w", err)
	}
	if t.Anchor, err = parseTime(anchor); err != nil {
		return nil, fmt.Errorf("timer anchor: %w", err)
	}
	if pausedAt.Valid {
		v, err := parseTime(pausedAt.String)
		if err != nil {
			return nil, fmt.Errorf("timer paused_at: %w", err)
		}
		t.PausedAt = &v
	}
	return &t, nil
}

// Save inserts or replaces the active timer.
func (r *TimerRepo) Save(ctx context.Context, t ActiveTimer) error {
	var paused *string
	if t.PausedAt != nil {
		s := formatTime(*t.PausedAt)
		paused = &s
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO active_timer (slot, id, subject, started_at, anchor, paused_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET
			id = excluded.id,
			subject = excluded.subject,
			started_at = excluded.started_at,
			anchor = excluded.anchor,
			paused_at = excluded.paused_at
	`, t.ID, t.Subject, formatTime(t.StartedAt), formatTime(t.Anchor), paused)
	if err != nil {
		return fmt.Errorf("timer save: %w", err)
	}
	return nil
}

// Insert stores t only if no timer exists. It reports false when one already does.
func (r *TimerRepo) Insert(ctx context.Context, t ActiveTimer) (bool, error) {
	var paused *string
	if t.PausedAt != nil {
		s := formatTime(*t.PausedAt)
		paused = &s
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO active_timer (slot, id, subject, started_at, anchor, paused_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(slot) DO NOTHING
	`, t.ID, t.Subject, formatTime(t.StartedAt), formatTime(t.Anchor), paused)
	if err != nil {
		return false, fmt.Errorf("timer insert: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("timer insert rows: %w", err)
	}
	return n == 1, nil
}

func (r *TimerRepo) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM active_timer WHERE slot = 1`); err != nil {
		return fmt.Errorf("timer clear: %w", err)
	}
	return nil
}
