package engine

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrEmptySubject    = errors.New("subject is required")
	ErrActiveSession   = errors.New("a study session is already running")
	ErrNoActiveSession = errors.New("no active study session")
	ErrTimerPaused     = errors.New("timer is already paused")
	ErrTimerRunning    = errors.New("timer is not paused")
)

// MinSessionDuration is the shortest running time that produces a session.
const MinSessionDuration = time.Minute

// ShortSessionError is returned when stopping a timer that ran less than a
// minute. Stopping again with confirmation discards it.
type ShortSessionError struct {
	Elapsed time.Duration
}

func (e ShortSessionError) Error() string {
	return fmt.Sprintf("session ran %s (under %s); confirm to discard it", e.Elapsed.Round(time.Second), MinSessionDuration)
}
