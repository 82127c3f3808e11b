package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock is a package-level time source so tests can freeze "today" via SetClock.
// Production code uses the real clock; tests inject a fake for deterministic
// match-date validation.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source used for date validation. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Today returns the current calendar date according to the package clock.
func Today() time.Time {
	return CalendarDate(clock.Now())
}

// Now returns the current instant according to the package clock.
func Now() time.Time {
	return clock.Now()
}
