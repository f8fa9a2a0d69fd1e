package engine

import "time"

// AchievementKind tags which rule unlocks an achievement.
type AchievementKind string

const (
	KindFirstStep AchievementKind = "first_step"
	KindDedicated AchievementKind = "dedicated"
	KindStreak3   AchievementKind = "streak_3"
	KindDeepWork  AchievementKind = "deep_work"
	KindMaster    AchievementKind = "master"
)

const (
	FirstStepSessions = 1
	DedicatedMinutes  = 300
	StreakTargetDays  = 3
	DeepWorkMinutes   = 60
	MasterLevel       = 10
)

// Achievement is a catalog badge plus its unlock state.
type Achievement struct {
	ID          string          `json:"id"`
	Kind        AchievementKind `json:"kind"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Icon        string          `json:"icon"`
	Unlocked    bool            `json:"unlocked"`
	UnlockedAt  *time.Time      `json:"unlockedAt,omitempty"`
}

// Catalog returns the fixed achievement list, all locked.
func Catalog() []Achievement {
	return []Achievement{
		{ID: string(KindFirstStep), Kind: KindFirstStep, Title: "First Step", Description: "Complete your first study session", Icon: "🌱"},
		{ID: string(KindDedicated), Kind: KindDedicated, Title: "Dedicated", Description: "Study for 5 hours in total", Icon: "📚"},
		{ID: string(KindStreak3), Kind: KindStreak3, Title: "On Fire", Description: "Study 3 days in a row", Icon: "🔥"},
		{ID: string(KindDeepWork), Kind: KindDeepWork, Title: "Deep Work", Description: "Finish a session of 60 minutes or more", Icon: "🧠"},
		{ID: string(KindMaster), Kind: KindMaster, Title: "Master", Description: "Reach level 10", Icon: "👑"},
	}
}

// Satisfied evaluates kind's rule against stats and the session ledger.
// Unknown kinds are never satisfied.
func (k AchievementKind) Satisfied(stats UserStats, sessions Ledger) bool {
	switch k {
	case KindFirstStep:
		return len(sessions) >= FirstStepSessions
	case KindDedicated:
		return stats.TotalStudyMinutes >= DedicatedMinutes
	case KindStreak3:
		return stats.StreakDays >= StreakTargetDays
	case KindDeepWork:
		for _, s := range sessions {
			if s.DurationMinutes >= DeepWorkMinutes {
				return true
			}
		}
		return false
	case KindMaster:
		return stats.Level >= MasterLevel
	default:
		return false
	}
}

// EvaluateAchievements returns a copy of achievements with every locked entry
// whose rule now holds flipped to unlocked at time at. Unlocked entries are
// never re-checked, so unlocks are permanent.
func EvaluateAchievements(achievements []Achievement, stats UserStats, sessions Ledger, at time.Time) []Achievement {
	out := make([]Achievement, len(achievements))
	copy(out, achievements)
	for i := range out {
		if out[i].Unlocked {
			continue
		}
		if out[i].Kind.Satisfied(stats, sessions) {
			ts := at
			out[i].Unlocked = true
			out[i].UnlockedAt = &ts
		}
	}
	return out
}

// NewlyUnlocked lists the entries unlocked in after but not in before, matched by ID.
func NewlyUnlocked(before, after []Achievement) []Achievement {
	was := make(map[string]bool, len(before))
	for _, a := range before {
		was[a.ID] = a.Unlocked
	}
	var out []Achievement
	for _, a := range after {
		if a.Unlocked && !was[a.ID] {
			out = append(out, a)
		}
	}
	return out
}

// ReconcileAchievements lays stored unlock flags over the current catalog.
// Stored entries with unknown ids are dropped; catalog entries missing from
// stored start locked. Catalog order and metadata always win.
func ReconcileAchievements(stored []Achievement) []Achievement {
	byID := make(map[string]Achievement, len(stored))
	for _, a := range stored {
		byID[a.ID] = a
	}
	out := Catalog()
	for i := range out {
		if s, ok := byID[out[i].ID]; ok && s.Unlocked {
			out[i].Unlocked = true
			out[i].UnlockedAt = s.UnlockedAt
		}
	}
	return out
}

// CountUnlocked returns how many achievements are unlocked.
func CountUnlocked(achievements []Achievement) int {
	n := 0
	for _, a := range achievements {
		if a.Unlocked {
			n++
		}
	}
	return n
}
