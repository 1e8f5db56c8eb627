package date

import "time"

// Clock tells the current time. It is injected wherever "today" matters so
// that current-period computations are deterministic under test.
type Clock interface {
	Now() time.Time
	Today() Date
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
func (SystemClock) Today() Date    { return Today() }

// FixedClock always returns the same instant.
type FixedClock struct{ T time.Time }

// At returns a FixedClock at midnight UTC on d.
func At(d Date) FixedClock { return FixedClock{T: d.time()} }

func (c FixedClock) Now() time.Time { return c.T }
func (c FixedClock) Today() Date    { return FromTime(c.T) }
