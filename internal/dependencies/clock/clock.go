// Package clock supplies wall-clock time for session activity tracking,
// event timestamps and high-score records. Game timing does not use it;
// timers run on the session scheduler.
package clock

import "time"

// Clock reports the current time
type Clock interface {
	Now() time.Time
}

// System is the process clock. Times are UTC so stored high scores and
// event timestamps compare the same across backends.
type System struct{}

// New returns the system clock
func New() System {
	return System{}
}

// Now returns the current UTC time
func (System) Now() time.Time {
	return time.Now().UTC()
}

var _ Clock = System{}
