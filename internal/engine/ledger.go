package engine

import (
	"sort"
	"time"
)

// Ledger is the session history, newest first.
type Ledger []Session

// Record returns a new ledger with s prepended. l is left untouched.
func Record(l Ledger, s Session) Ledger {
	out := make(Ledger, 0, len(l)+1)
	out = append(out, s)
	out = append(out, l...)
	return out
}

// Latest returns the most recent session, if any.
func (l Ledger) Latest() (Session, bool) {
	if len(l) == 0 {
		return Session{}, false
	}
	return l[0], true
}

// DayTotal is the minutes studied on one calendar date.
type DayTotal struct {
	Date    string
	Weekday time.Weekday
	Minutes int
}

// DailyMinutes sums session minutes per calendar date (in loc) for the days
// calendar days ending at now, oldest first. Days without sessions are zero.
func (l Ledger) DailyMinutes(now time.Time, days int, loc *time.Location) []DayTotal {
	if days <= 0 {
		return nil
	}
	if loc == nil {
		loc = now.Location()
	}
	today := civilDay(now, loc)

	out := make([]DayTotal, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		d := today.AddDate(0, 0, i-days+1)
		out[i] = DayTotal{Date: d.Format(dateKeyLayout), Weekday: d.Weekday()}
		index[out[i].Date] = i
	}

	for _, s := range l {
		key := civilDay(s.EndTime, loc).Format(dateKeyLayout)
		if i, ok := index[key]; ok {
			out[i].Minutes += s.DurationMinutes
		}
	}
	return out
}

// SubjectTotal is the minutes studied for one subject.
type SubjectTotal struct {
	Subject  string
	Minutes  int
	Sessions int
}

// SubjectMinutes groups minutes by subject, largest first (ties by name).
func (l Ledger) SubjectMinutes() []SubjectTotal {
	agg := map[string]*SubjectTotal{}
	for _, s := range l {
		t, ok := agg[s.Subject]
		if !ok {
			t = &SubjectTotal{Subject: s.Subject}
			agg[s.Subject] = t
		}
		t.Minutes += s.DurationMinutes
		t.Sessions++
	}

	out := make([]SubjectTotal, 0, len(agg))
	for _, t := range agg {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Minutes != out[j].Minutes {
			return out[i].Minutes > out[j].Minutes
		}
		return out[i].Subject < out[j].Subject
	})
	return out
}
