package funnel

import "time"

// Clock abstracts time so the presentation timer and safety timeout can
// be driven deterministically in tests.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time                         { return time.Now() }
func (systemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// SystemClock is the wall clock used outside of tests.
var SystemClock Clock = systemClock{}
