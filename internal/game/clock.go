package game

import (
	"sync/atomic"
	"time"
)

// Clock is the engine's only source of time: catch timestamps, the exit
// marker and the offline window all read it.
type Clock interface {
	Now() time.Time
}

// SystemClock reads wall time in UTC so saved exit markers compare the
// same across time zone changes.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// StepClock only moves when told to.
type StepClock struct {
	nanos atomic.Int64
}

func NewStepClock(start time.Time) *StepClock {
	c := &StepClock{}
	c.nanos.Store(start.UnixNano())
	return c
}

func (c *StepClock) Now() time.Time { return time.Unix(0, c.nanos.Load()).UTC() }

func (c *StepClock) Set(t time.Time) { c.nanos.Store(t.UnixNano()) }

func (c *StepClock) Advance(d time.Duration) { c.nanos.Add(int64(d)) }

// wholeSecondsSince truncates toward zero; a clock that moved backwards
// yields a negative count.
func wholeSecondsSince(c Clock, t time.Time) int {
	return int(c.Now().Sub(t) / time.Second)
}
