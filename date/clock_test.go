package date

import (
	"testing"
	"time"
)

func TestFixedClock(t *testing.T) {
	c := At(New(2025, time.January, 15))
	if got, want := c.Today(), New(2025, time.January, 15); got != want {
		t.Errorf("Today() = %v, want %v", got, want)
	}
	var _ Clock = SystemClock{}
	var _ Clock = c
}
