package clock

import (
	"time"
)

// Clock is an interface around some of the standard library functions
// that provide time handling. It has been added to aid unit testing.
type Clock interface {
	Now() time.Time
}

// SystemClock is a Clock that corresponds to the current time, using
// the Go time package.
var SystemClock Clock = systemClock{}

type systemClock struct{}

func (c systemClock) Now() time.Time {
	return time.Now()
}
