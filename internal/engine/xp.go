package engine

import "math"

const (
	// BaseXP is the threshold to leave level 1.
	BaseXP = 500.0

	// LevelMultiplier scales each following threshold: XP_next = 500 * 1.2^(level-1).
	LevelMultiplier = 1.2

	// XPPerMinute converts focused minutes into XP.
	XPPerMinute = 10

	// MaxRolloverSteps bounds the level-up loop in ApplySession.
	MaxRolloverSteps = 4096
)

// NextLevelXP returns the XP needed to advance from the given level to the next.
// Levels below 1 are treated as level 1. The curve saturates at math.MaxInt.
func NextLevelXP(level int) int {
	if level < 1 {
		level = 1
	}
	req := BaseXP * math.Pow(LevelMultiplier, float64(level-1))
	if req >= float64(math.MaxInt) {
		return math.MaxInt
	}
	// Floor keeps 500, 600, 720, 864... exact; the epsilon absorbs float noise like 719.9999.
	return int(math.Floor(req + 1e-9))
}

// TotalXPForLevel returns the cumulative XP spent to reach level from level 1,
// saturating at math.MaxInt.
func TotalXPForLevel(level int) int {
	total := 0
	for l := 1; l < level; l++ {
		step := NextLevelXP(l)
		if total > math.MaxInt-step {
			return math.MaxInt
		}
		total += step
	}
	return total
}

// XPForMinutes returns the XP a session of the given length is worth.
func XPForMinutes(minutes int) int {
	if minutes < 0 {
		return 0
	}
	return minutes * XPPerMinute
}
