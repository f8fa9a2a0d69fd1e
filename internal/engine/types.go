package engine

import (
	"math"
	"strings"
	"time"
)

// UserStats is the persisted progression singleton.
type UserStats struct {
	Level             int        `json:"level"`
	CurrentXP         int        `json:"currentXP"`
	NextLevelXP       int        `json:"nextLevelXP"`
	TotalStudyMinutes int        `json:"totalStudyMinutes"`
	StreakDays        int        `json:"streakDays"`
	LastStudyDate     *time.Time `json:"lastStudyDate,omitempty"`
}

// DefaultStats returns first-launch stats.
func DefaultStats() UserStats {
	return UserStats{
		Level:       1,
		CurrentXP:   0,
		NextLevelXP: NextLevelXP(1),
	}
}

// Valid reports whether the stats satisfy the progression invariants.
func (s UserStats) Valid() bool {
	return s.Level >= 1 &&
		s.CurrentXP >= 0 &&
		s.NextLevelXP == NextLevelXP(s.Level) &&
		s.CurrentXP < s.NextLevelXP &&
		s.TotalStudyMinutes >= 0 &&
		s.StreakDays >= 0
}

// TotalXP is the lifetime XP implied by level and current XP, saturating at math.MaxInt.
func (s UserStats) TotalXP() int {
	base := TotalXPForLevel(s.Level)
	if base > math.MaxInt-s.CurrentXP {
		return math.MaxInt
	}
	return base + s.CurrentXP
}

// Session is one completed, committed study session.
type Session struct {
	ID              string    `json:"id"`
	StartTime       time.Time `json:"startTime"`
	EndTime         time.Time `json:"endTime"`
	DurationMinutes int       `json:"durationMinutes"`
	Subject         string    `json:"subject"`
	XPEarned        int       `json:"xpEarned"`
}

// DurationMinutes rounds a running time up to whole minutes.
func DurationMinutes(elapsed time.Duration) int {
	if elapsed <= 0 {
		return 0
	}
	return int(math.Ceil(float64(elapsed) / float64(time.Minute)))
}

// NewSession builds a session that ended at end after elapsed running time.
// StartTime is the effective start (end minus running time), so paused
// intervals never count toward the duration.
func NewSession(id, subject string, end time.Time, elapsed time.Duration) Session {
	minutes := DurationMinutes(elapsed)
	return Session{
		ID:              id,
		StartTime:       end.Add(-elapsed),
		EndTime:         end,
		DurationMinutes: minutes,
		Subject:         strings.TrimSpace(subject),
		XPEarned:        XPForMinutes(minutes),
	}
}
