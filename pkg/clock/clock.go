// Package clock abstracts the wall clock so that time-dependent logic,
// in particular the draft/scheduled/active classification of posts, can
// be tested against a fixed point in time.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// New returns a Clock backed by time.Now.
func New() Clock {
	return systemClock{}
}

// Fixed is a Clock frozen at a single instant.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time {
	return f.T
}
