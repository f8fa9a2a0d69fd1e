package storage

import "time"

// Record keys.
const (
	KeyStats        = "stats"
	KeySessions     = "sessions"
	KeyAchievements = "achievements"
)

// RecordVersion is the envelope version written by this build.
const RecordVersion = 1

// Record is one keyed JSON document.
type Record struct {
	Key       string
	Version   int
	Payload   []byte
	UpdatedAt time.Time
}

// ActiveTimer is the persisted running (or paused) timer.
type ActiveTimer struct {
	ID        string
	Subject   string
	StartedAt time.Time
	Anchor    time.Time
	PausedAt  *time.Time
}
