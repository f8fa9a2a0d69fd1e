package engine

// State is everything the progression engine owns: stats, the ledger and the
// achievement catalog. It is passed in and returned by value.
type State struct {
	Stats        UserStats
	Sessions     Ledger
	Achievements []Achievement
}

// DefaultState is the first-launch state.
func DefaultState() State {
	return State{
		Stats:        DefaultStats(),
		Sessions:     Ledger{},
		Achievements: Catalog(),
	}
}

// CommitResult describes what one committed session changed.
type CommitResult struct {
	Session     Session
	XPAwarded   int
	LevelBefore int
	LevelAfter  int
	LevelUp     bool
	StreakDays  int
	Unlocked    []Achievement
}

// Commit runs the whole end-of-session pipeline: progression, ledger append,
// then achievement evaluation against the updated stats and ledger.
// st is not modified.
func Commit(st State, s Session) (State, CommitResult) {
	stats, leveledUp := ApplySession(st.Stats, s)
	ledger := Record(st.Sessions, s)
	achievements := EvaluateAchievements(st.Achievements, stats, ledger, s.EndTime)

	next := State{
		Stats:        stats,
		Sessions:     ledger,
		Achievements: achievements,
	}
	return next, CommitResult{
		Session:     s,
		XPAwarded:   XPForMinutes(s.DurationMinutes),
		LevelBefore: st.Stats.Level,
		LevelAfter:  stats.Level,
		LevelUp:     leveledUp,
		StreakDays:  stats.StreakDays,
		Unlocked:    NewlyUnlocked(st.Achievements, achievements),
	}
}
