package date

import (
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"time"
)

// ErrEmptyWindow is returned when a window does not end after it starts.
var ErrEmptyWindow = errors.New("window end must be after its start")

// Window is the half-open date range [Start, End) used for reporting.
//
// The zero Window is empty and contains nothing; every other Window has End
// strictly after Start.
type Window struct{ start, end Date }

// NewWindow returns the window [start, end) or ErrEmptyWindow.
func NewWindow(start, end Date) (Window, error) {
	if !end.After(start) {
		return Window{}, fmt.Errorf("invalid window [%s, %s): %w", start, end, ErrEmptyWindow)
	}
	return Window{start, end}, nil
}

// MustWindow is like NewWindow but panics on error.
func MustWindow(start, end Date) Window {
	w, err := NewWindow(start, end)
	if err != nil {
		panic(err.Error())
	}
	return w
}

// IntervalWindow returns [start, interval.Next(start)).
func IntervalWindow(start Date, interval Interval) Window {
	return Window{start, interval.Next(start)}
}

// Start returns the first day in the window.
func (w Window) Start() Date { return w.start }

// End returns the first day after the window.
func (w Window) End() Date { return w.end }

// Last returns the last day in the window.
func (w Window) Last() Date { return w.end.Add(-1) }

// IsZero reports whether w is the zero Window.
func (w Window) IsZero() bool { return w.start.IsZero() && w.end.IsZero() }

// Contains reports whether start <= d < end.
func (w Window) Contains(d Date) bool { return !d.Before(w.start) && d.Before(w.end) }

// Len returns the number of days in the window.
func (w Window) Len() int { return w.end.Sub(w.start) }

// Shift moves both bounds by the same number of interval steps. It fails when
// month clamping collapses the window, e.g. [Jan 30, Jan 31) shifted a month.
func (w Window) Shift(interval Interval, steps int) (Window, error) {
	return NewWindow(interval.AddTo(w.start, steps), interval.AddTo(w.end, steps))
}

// Scope classifies the window relative to ref.
func (w Window) Scope(ref Date) Scope {
	switch {
	case w.Contains(ref):
		return Current
	case !w.end.After(ref):
		return Past
	default:
		return Future
	}
}

// Days returns an iterator that yields each date within the window.
func (w Window) Days() iter.Seq[Date] {
	return func(yield func(Date) bool) {
		for d := w.start; d.Before(w.end); d = d.Add(1) {
			if !yield(d) {
				return
			}
		}
	}
}

// String formats the window as "[2025-01-01, 2025-02-01)".
func (w Window) String() string { return fmt.Sprintf("[%s, %s)", w.start, w.end) }

// Identifier computes a short name for windows aligned on calendar units:
// "2025-01-05", "2025-W02", "2025-01", "2025". Other windows are named after
// their first and last days.
func (w Window) Identifier() string {
	last := w.Last()
	switch {
	case w.Len() == 1:
		return w.start.String()
	case w.start.Weekday() == time.Monday && w.Len() == 7:
		year, week := w.start.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case w.start.Day() == 1 && w.end == w.start.AddMonths(1):
		return w.start.Format("2006-01")
	case w.start.Day() == 1 && w.start.Month() == time.January && w.end == w.start.AddYears(1):
		return w.start.Format("2006")
	default:
		return fmt.Sprintf("%s_%s", w.start, last)
	}
}

type jsonWindow struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

func (w Window) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonWindow{w.start, w.end})
}

// UnmarshalJSON rejects windows that do not end after they start.
func (w *Window) UnmarshalJSON(data []byte) error {
	var jw jsonWindow
	if err := json.Unmarshal(data, &jw); err != nil {
		return err
	}
	v, err := NewWindow(jw.Start, jw.End)
	if err != nil {
		return err
	}
	*w = v
	return nil
}
