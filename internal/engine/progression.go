package engine

import "math"

// ApplySession folds a completed session into stats and reports whether at
// least one level was gained. stats is not modified.
//
// The caller guarantees session.DurationMinutes >= 1. After return
// 0 <= CurrentXP < NextLevelXP holds.
func ApplySession(stats UserStats, session Session) (UserStats, bool) {
	out := stats
	if out.Level < 1 {
		out.Level = 1
	}
	out.NextLevelXP = NextLevelXP(out.Level)
	if out.CurrentXP < 0 {
		out.CurrentXP = 0
	}

	gained := XPForMinutes(session.DurationMinutes)
	if out.CurrentXP > math.MaxInt-gained {
		out.CurrentXP = math.MaxInt
	} else {
		out.CurrentXP += gained
	}

	leveledUp := false
	for steps := 0; out.CurrentXP >= out.NextLevelXP && steps < MaxRolloverSteps; steps++ {
		out.CurrentXP -= out.NextLevelXP
		out.Level++
		out.NextLevelXP = NextLevelXP(out.Level)
		leveledUp = true
	}
	// Only reachable with a degenerate curve; keep the invariant anyway.
	if out.CurrentXP >= out.NextLevelXP {
		out.CurrentXP = out.NextLevelXP - 1
	}

	out.TotalStudyMinutes += session.DurationMinutes
	out.StreakDays = UpdateStreak(stats.LastStudyDate, session.EndTime, stats.StreakDays)
	end := session.EndTime
	out.LastStudyDate = &end

	return out, leveledUp
}
