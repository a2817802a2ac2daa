// ABOUTME: Clock abstraction for the playback timeline
// ABOUTME: Times are offsets from the moment the audio context was created
package realtime

import "time"

// Timer is a pending callback that can be cancelled
type Timer interface {
	Stop() bool
}

// Clock reports the position of the audio timeline and schedules callbacks on it
type Clock interface {
	Now() time.Duration
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct {
	start time.Time
}

// NewSystemClock returns a wall-clock timeline starting at zero now
func NewSystemClock() Clock {
	return systemClock{start: time.Now()}
}

func (c systemClock) Now() time.Duration {
	return time.Since(c.start)
}

func (c systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
