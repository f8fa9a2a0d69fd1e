package engine

import "time"

const dateKeyLayout = "2006-01-02"

// DateKey truncates t to its calendar date in t's own location.
func DateKey(t time.Time) string {
	return t.Format(dateKeyLayout)
}

// civilDay maps t's calendar date (in loc) onto UTC midnight so day arithmetic
// is unaffected by DST transitions in loc.
func civilDay(t time.Time, loc *time.Location) time.Time {
	l := t.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, time.UTC)
}

// UpdateStreak derives the streak after a session completing at completion.
//
// Both instants are compared as calendar dates in completion's location:
// a same-day session keeps the streak, a session the day after last extends
// it, and anything else (including no prior session) restarts it at 1.
func UpdateStreak(last *time.Time, completion time.Time, current int) int {
	if last == nil {
		return 1
	}
	loc := completion.Location()
	today := civilDay(completion, loc)
	prev := civilDay(*last, loc)

	switch {
	case prev.Equal(today):
		return current
	case prev.Equal(today.AddDate(0, 0, -1)):
		return current + 1
	default:
		return 1
	}
}

// StreakAlive reports whether a streak can still be extended today, i.e. the
// last session was today or yesterday in now's location.
func StreakAlive(last *time.Time, now time.Time) bool {
	if last == nil {
		return false
	}
	loc := now.Location()
	today := civilDay(now, loc)
	prev := civilDay(*last, loc)
	return prev.Equal(today) || prev.Equal(today.AddDate(0, 0, -1))
}
