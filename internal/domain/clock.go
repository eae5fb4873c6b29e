package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock is the package time source behind event stamping.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source so tests can freeze processed_at stamps.
// Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// now returns the current time from the active source, normalized to UTC so
// stamps are comparable regardless of station zone.
func now() time.Time {
	return clock.Now().UTC()
}
