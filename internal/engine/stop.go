package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/callisatech-creator/QuestFocus/internal/storage"
)

type StopInput struct {
	// ConfirmDiscard answers a ShortSessionError: the timer is thrown away
	// whatever it has run since, and nothing is committed.
	ConfirmDiscard bool
}

type StopResult struct {
	CommitResult
	Subject   string
	Elapsed   time.Duration
	Discarded bool
	Stats     UserStats
}

// Stop ends the active timer and commits it as a session.
//
// Stats, the session ledger and achievements are written and the timer is
// cleared in a single transaction, so a failure leaves the previous state
// intact. A timer that ran under a minute is never committed: Stop returns
// ShortSessionError and changes nothing. With ConfirmDiscard the timer is
// discarded instead of committed, even if it has since passed a minute.
func (s *Service) Stop(ctx context.Context, in StopInput) (*StopResult, error) {
	var res *StopResult
	err := storage.WithTx(ctx, s.db, func(tx *storage.Tx) error {
		row, err := tx.Timer.Get(ctx)
		if err != nil {
			return err
		}
		if row == nil {
			return ErrNoActiveSession
		}
		t := timerFromRow(row)
		now := s.clock.Now()
		elapsed := t.Elapsed(now)

		if in.ConfirmDiscard {
			if err := tx.Timer.Clear(ctx); err != nil {
				return err
			}
			res = &StopResult{Subject: t.Subject, Elapsed: elapsed, Discarded: true}
			return nil
		}
		if elapsed < MinSessionDuration {
			return ShortSessionError{Elapsed: elapsed}
		}

		session := NewSession(t.ID, t.Subject, now, elapsed)
		st := loadState(ctx, tx.Records, s.logger)
		next, commit := Commit(st, session)

		if err := saveState(ctx, tx.Records, next, now); err != nil {
			return err
		}
		if err := tx.Timer.Clear(ctx); err != nil {
			return err
		}
		res = &StopResult{
			CommitResult: commit,
			Subject:      t.Subject,
			Elapsed:      elapsed,
			Stats:        next.Stats,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if res.Discarded {
		s.logger.Info("short timer discarded",
			slog.String("subject", res.Subject),
			slog.Duration("elapsed", res.Elapsed),
		)
		return res, nil
	}

	s.logger.Info("session committed",
		slog.String("id", res.Session.ID),
		slog.String("subject", res.Session.Subject),
		slog.Int("minutes", res.Session.DurationMinutes),
		slog.Int("xp", res.XPAwarded),
		slog.Int("level", res.LevelAfter),
		slog.Bool("level_up", res.LevelUp),
		slog.Int("unlocked", len(res.Unlocked)),
	)
	return res, nil
}
