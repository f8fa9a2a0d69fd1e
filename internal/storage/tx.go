package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// Tx exposes the repos bound to one open transaction.
type Tx struct {
	Records *RecordRepo
	Timer   *TimerRepo
}

// WithTx runs fn inside a SQL transaction. Any error from fn rolls back every
// write made through the Tx repos.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *Tx) error) error {
	sqlTx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = sqlTx.Rollback()
		}
	}()

	tx := &Tx{
		Records: NewRecordRepo(sqlTx),
		Timer:   NewTimerRepo(sqlTx),
	}
	if err := fn(tx); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}
