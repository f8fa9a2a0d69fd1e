package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/callisatech-creator/QuestFocus/internal/feedback"
	"github.com/callisatech-creator/QuestFocus/internal/storage"
)

// FeedbackSource produces post-session feedback. ok is false when the source
// is not configured and nothing should be shown.
type FeedbackSource interface {
	GenerateWithFallback(ctx context.Context, req feedback.Request) (fb feedback.Feedback, ok bool)
}

type Service struct {
	db       *sql.DB
	records  *storage.RecordRepo
	timers   *storage.TimerRepo
	clock    Clock
	ids      IDGenerator
	logger   *slog.Logger
	feedback FeedbackSource
}

type Option func(*Service)

func WithClock(c Clock) Option             { return func(s *Service) { s.clock = c } }
func WithIDGenerator(g IDGenerator) Option { return func(s *Service) { s.ids = g } }
func WithLogger(l *slog.Logger) Option     { return func(s *Service) { s.logger = l } }
func WithFeedback(f FeedbackSource) Option { return func(s *Service) { s.feedback = f } }

func NewService(db *sql.DB, opts ...Option) *Service {
	s := &Service{
		db:      db,
		records: storage.NewRecordRepo(db),
		timers:  storage.NewTimerRepo(db),
		clock:   SystemClock{},
		ids:     UUIDGenerator{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

func (s *Service) RecordRepo() *storage.RecordRepo { return s.records }
func (s *Service) Now() time.Time                  { return s.clock.Now() }

func normalizeSubject(subject string) (string, error) {
	t := strings.TrimSpace(subject)
	if t == "" {
		return "", ErrEmptySubject
	}
	return t, nil
}

// LoadState reads the persisted state. Missing, corrupt or unreadable records
// fall back to their first-launch defaults; this never fails.
func (s *Service) LoadState(ctx context.Context) State {
	return loadState(ctx, s.records, s.logger)
}

func loadState(ctx context.Context, records *storage.RecordRepo, logger *slog.Logger) State {
	st := DefaultState()

	var stats UserStats
	if ok, err := records.LoadJSON(ctx, storage.KeyStats, &stats); err != nil {
		logger.Warn("stats unreadable, using defaults", slog.Any("error", err))
	} else if ok {
		if repaired, valid := repairStats(stats); valid {
			st.Stats = repaired
		} else {
			logger.Warn("stats invalid, using defaults",
				slog.Int("level", stats.Level),
				slog.Int("current_xp", stats.CurrentXP),
			)
		}
	}

	var sessions Ledger
	if ok, err := records.LoadJSON(ctx, storage.KeySessions, &sessions); err != nil {
		logger.Warn("sessions unreadable, using defaults", slog.Any("error", err))
	} else if ok && sessions != nil {
		st.Sessions = sessions
	}

	var achievements []Achievement
	if ok, err := records.LoadJSON(ctx, storage.KeyAchievements, &achievements); err != nil {
		logger.Warn("achievements unreadable, using defaults", slog.Any("error", err))
	} else if ok {
		st.Achievements = ReconcileAchievements(achievements)
	}

	return st
}

// repairStats recomputes NextLevelXP from Level (the curve may have been
// stored by an older build) and rolls over any excess XP.
func repairStats(st UserStats) (UserStats, bool) {
	if st.Level < 1 || st.CurrentXP < 0 || st.TotalStudyMinutes < 0 || st.StreakDays < 0 {
		return UserStats{}, false
	}
	st.NextLevelXP = NextLevelXP(st.Level)
	for steps := 0; st.CurrentXP >= st.NextLevelXP && steps < MaxRolloverSteps; steps++ {
		st.CurrentXP -= st.NextLevelXP
		st.Level++
		st.NextLevelXP = NextLevelXP(st.Level)
	}
	return st, st.Valid()
}

func saveState(ctx context.Context, records *storage.RecordRepo, st State, at time.Time) error {
	if err := records.SaveJSON(ctx, storage.KeyStats, st.Stats, at); err != nil {
		return err
	}
	sessions := st.Sessions
	if sessions == nil {
		sessions = Ledger{}
	}
	if err := records.SaveJSON(ctx, storage.KeySessions, sessions, at); err != nil {
		return err
	}
	return records.SaveJSON(ctx, storage.KeyAchievements, st.Achievements, at)
}

// SaveState persists st atomically.
func (s *Service) SaveState(ctx context.Context, st State) error {
	now := s.clock.Now()
	return storage.WithTx(ctx, s.db, func(tx *storage.Tx) error {
		return saveState(ctx, tx.Records, st, now)
	})
}

func timerFromRow(r *storage.ActiveTimer) Timer {
	return Timer{
		ID:        r.ID,
		Subject:   r.Subject,
		StartedAt: r.StartedAt,
		Anchor:    r.Anchor,
		PausedAt:  r.PausedAt,
	}
}

func timerToRow(t Timer) storage.ActiveTimer {
	return storage.ActiveTimer{
		ID:        t.ID,
		Subject:   t.Subject,
		StartedAt: t.StartedAt,
		Anchor:    t.Anchor,
		PausedAt:  t.PausedAt,
	}
}

// Start begins a new timer. Only one timer may exist at a time.
func (s *Service) Start(ctx context.Context, subject string) (Timer, error) {
	subj, err := normalizeSubject(subject)
	if err != nil {
		return Timer{}, err
	}

	t := NewTimer(s.ids.New(), subj, s.clock.Now())
	inserted, err := s.timers.Insert(ctx, timerToRow(t))
	if err != nil {
		return Timer{}, err
	}
	if !inserted {
		return Timer{}, ErrActiveSession
	}
	s.logger.Debug("timer started", slog.String("id", t.ID), slog.String("subject", t.Subject))
	return t, nil
}

// Active returns the current timer or ErrNoActiveSession.
func (s *Service) Active(ctx context.Context) (Timer, error) {
	row, err := s.timers.Get(ctx)
	if err != nil {
		return Timer{}, err
	}
	if row == nil {
		return Timer{}, ErrNoActiveSession
	}
	return timerFromRow(row), nil
}

func (s *Service) Pause(ctx context.Context) (Timer, error) {
	t, err := s.Active(ctx)
	if err != nil {
		return Timer{}, err
	}
	if t.Paused() {
		return Timer{}, ErrTimerPaused
	}
	t = t.Pause(s.clock.Now())
	if err := s.timers.Save(ctx, timerToRow(t)); err != nil {
		return Timer{}, err
	}
	return t, nil
}

func (s *Service) Resume(ctx context.Context) (Timer, error) {
	t, err := s.Active(ctx)
	if err != nil {
		return Timer{}, err
	}
	if !t.Paused() {
		return Timer{}, ErrTimerRunning
	}
	t = t.Resume(s.clock.Now())
	if err := s.timers.Save(ctx, timerToRow(t)); err != nil {
		return Timer{}, err
	}
	return t, nil
}

// Discard drops the active timer without producing a session.
func (s *Service) Discard(ctx context.Context) (Timer, error) {
	t, err := s.Active(ctx)
	if err != nil {
		return Timer{}, err
	}
	if err := s.timers.Clear(ctx); err != nil {
		return Timer{}, err
	}
	s.logger.Info("timer discarded", slog.String("id", t.ID), slog.String("subject", t.Subject))
	return t, nil
}

// IsShortSession reports whether err asks for confirmation of a sub-minute stop.
func IsShortSession(err error) bool {
	var short ShortSessionError
	return errors.As(err, &short)
}

// FeedbackFor builds the collaborator request for a committed session.
func FeedbackFor(res CommitResult) feedback.Request {
	return feedback.Request{
		DurationMinutes: res.Session.DurationMinutes,
		Subject:         res.Session.Subject,
		Level:           res.LevelAfter,
	}
}

// RequestFeedback asks the feedback source for a message about a committed
// session. The returned channel yields at most one value and is then closed;
// it is closed without a value when no source is configured. The call runs on
// its own goroutine and never touches persisted state.
func (s *Service) RequestFeedback(ctx context.Context, res CommitResult) <-chan feedback.Feedback {
	ch := make(chan feedback.Feedback, 1)
	if s.feedback == nil {
		close(ch)
		return ch
	}
	req := FeedbackFor(res)
	go func() {
		defer close(ch)
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("feedback panicked", slog.Any("panic", r))
				ch <- feedback.Fallback()
			}
		}()
		if fb, ok := s.feedback.GenerateWithFallback(ctx, req); ok {
			ch <- fb
		}
	}()
	return ch
}

// Reset wipes all progression and the active timer.
func (s *Service) Reset(ctx context.Context) error {
	now := s.clock.Now()
	err := storage.WithTx(ctx, s.db, func(tx *storage.Tx) error {
		if err := tx.Timer.Clear(ctx); err != nil {
			return err
		}
		return saveState(ctx, tx.Records, DefaultState(), now)
	})
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	s.logger.Info("progress reset")
	return nil
}
