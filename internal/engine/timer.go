package engine

import "time"

// Timer is the single active study timer.
//
// Elapsed time is always derived from Anchor rather than accumulated per tick:
// while running it is now-Anchor, while paused PausedAt-Anchor. Resuming moves
// Anchor forward by the length of the pause.
type Timer struct {
	ID        string
	Subject   string
	StartedAt time.Time
	Anchor    time.Time
	PausedAt  *time.Time
}

// NewTimer starts a running timer at now.
func NewTimer(id, subject string, now time.Time) Timer {
	return Timer{ID: id, Subject: subject, StartedAt: now, Anchor: now}
}

func (t Timer) Paused() bool {
	return t.PausedAt != nil
}

// Elapsed is the running (unpaused) time at now, never negative.
func (t Timer) Elapsed(now time.Time) time.Duration {
	end := now
	if t.PausedAt != nil {
		end = *t.PausedAt
	}
	d := end.Sub(t.Anchor)
	if d < 0 {
		return 0
	}
	return d
}

// Pause freezes the clock at now. Pausing a paused timer is a no-op.
func (t Timer) Pause(now time.Time) Timer {
	if t.PausedAt != nil {
		return t
	}
	p := now
	t.PausedAt = &p
	return t
}

// Resume restarts the clock at now without losing elapsed time.
func (t Timer) Resume(now time.Time) Timer {
	if t.PausedAt == nil {
		return t
	}
	gap := now.Sub(*t.PausedAt)
	if gap > 0 {
		t.Anchor = t.Anchor.Add(gap)
	}
	t.PausedAt = nil
	return t
}
