package application

import "time"

// Clock lets services take time as a dependency; reconciliation timestamps
// and report generation times come from here so tests can pin them.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
