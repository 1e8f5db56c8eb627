package budget

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/etnz/budget/date"
	"github.com/etnz/budget/logger"
)

// exceptionGuard bounds the number of excepted dates skipped in a row.
const exceptionGuard = 512

// RecurrenceMode selects the date the next occurrence is computed from.
type RecurrenceMode int

const (
	// FixedSchedule derives the next occurrence from the last scheduled date.
	FixedSchedule RecurrenceMode = iota
	// AfterLastPerformed derives it from the last actual date, when known.
	AfterLastPerformed
)

func (m RecurrenceMode) String() string {
	if m == AfterLastPerformed {
		return "after-last-performed"
	}
	return "fixed-schedule"
}

// ParseRecurrenceMode parses a string into a RecurrenceMode.
func ParseRecurrenceMode(s string) (RecurrenceMode, error) {
	switch s {
	case "fixed-schedule", "fixed", "":
		return FixedSchedule, nil
	case "after-last-performed", "after":
		return AfterLastPerformed, nil
	default:
		return FixedSchedule, fmt.Errorf("unknown recurrence mode: %q", s)
	}
}

func (m RecurrenceMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *RecurrenceMode) UnmarshalText(text []byte) error {
	v, err := ParseRecurrenceMode(string(text))
	*m = v
	return err
}

// RecurrenceStatus is the state of a recurring series.
type RecurrenceStatus int

const (
	Active RecurrenceStatus = iota
	Paused
	// Done series have reached their end condition.
	Done
)

func (s RecurrenceStatus) String() string {
	switch s {
	case Paused:
		return "paused"
	case Done:
		return "completed"
	default:
		return "active"
	}
}

// ParseRecurrenceStatus parses a string into a RecurrenceStatus.
func ParseRecurrenceStatus(s string) (RecurrenceStatus, error) {
	switch s {
	case "active", "":
		return Active, nil
	case "paused":
		return Paused, nil
	case "completed":
		return Done, nil
	default:
		return Active, fmt.Errorf("unknown recurrence status: %q", s)
	}
}

func (s RecurrenceStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *RecurrenceStatus) UnmarshalText(text []byte) error {
	v, err := ParseRecurrenceStatus(string(text))
	*s = v
	return err
}

// RecurrenceEnd is the termination condition of a series. It is one of
// EndNever, EndOnDate or EndAfterOccurrences.
type RecurrenceEnd interface {
	isRecurrenceEnd()
	String() string
}

// EndNever never terminates.
type EndNever struct{}

// EndOnDate terminates after Date, which is still allowed.
type EndOnDate struct{ Date date.Date }

// EndAfterOccurrences terminates after Count occurrences, the template included.
type EndAfterOccurrences struct{ Count int }

func (EndNever) isRecurrenceEnd()            {}
func (EndOnDate) isRecurrenceEnd()           {}
func (EndAfterOccurrences) isRecurrenceEnd() {}

func (EndNever) String() string              { return "never" }
func (e EndOnDate) String() string           { return "on " + e.Date.String() }
func (e EndAfterOccurrences) String() string { return fmt.Sprintf("after %d occurrences", e.Count) }

// Recurrence makes a transaction the template of a series of occurrences.
// The cached fields (LastGenerated, LastCompleted, NextScheduled and
// Generated) are maintained by the ledger.
type Recurrence struct {
	SeriesID   string
	Start      date.Date
	Interval   date.Interval
	Mode       RecurrenceMode
	End        RecurrenceEnd
	Exceptions []date.Date
	Status     RecurrenceStatus

	LastGenerated *date.Date
	LastCompleted *date.Date
	NextScheduled *date.Date
	// Generated counts the occurrences created so far, the template being the
	// first one.
	Generated int
}

// Validate checks the recurrence definition.
func (r Recurrence) Validate() error {
	if !r.Interval.Valid() {
		return date.ErrEmptyInterval
	}
	if r.Start.IsZero() {
		return errors.New("recurrence start date is missing")
	}
	switch e := r.End.(type) {
	case nil, EndNever:
	case EndOnDate:
		if e.Date.Before(r.Start) {
			return fmt.Errorf("recurrence ends on %s before it starts on %s", e.Date, r.Start)
		}
	case EndAfterOccurrences:
		if e.Count < 1 {
			return fmt.Errorf("recurrence must allow at least one occurrence, got %d", e.Count)
		}
	default:
		return fmt.Errorf("unknown recurrence end %T", e)
	}
	return nil
}

// AllowsOccurrence reports whether the occurrence with zero-based index on
// candidate belongs to the series.
func (r Recurrence) AllowsOccurrence(index int, candidate date.Date) bool {
	if candidate.Before(r.Start) {
		return false
	}
	switch e := r.End.(type) {
	case nil, EndNever:
		return true
	case EndOnDate:
		return !candidate.After(e.Date)
	case EndAfterOccurrences:
		return index < e.Count
	default:
		panic(fmt.Sprintf("unknown recurrence end %T", e))
	}
}

// IsException reports whether d is skipped by the series.
func (r Recurrence) IsException(d date.Date) bool { return slices.Contains(r.Exceptions, d) }

// NextOccurrence returns the occurrence following lastScheduled, or
// lastPerformed in AfterLastPerformed mode when it is known. Exception dates
// are skipped; after too many excepted dates in a row the last candidate is
// returned anyway.
func (r Recurrence) NextOccurrence(lastScheduled date.Date, lastPerformed *date.Date) date.Date {
	base := lastScheduled
	if r.Mode == AfterLastPerformed && lastPerformed != nil {
		base = *lastPerformed
	}
	candidate := r.Interval.Next(base)
	for i := 0; i < exceptionGuard && r.IsException(candidate); i++ {
		candidate = r.Interval.Next(candidate)
	}
	if r.IsException(candidate) {
		logger.Get().Warnw("too many exceptions in a row, using an excepted date",
			"series", r.SeriesID,
			"date", candidate,
		)
	}
	return candidate
}

// AddException inserts d in the ordered exception set.
func (r *Recurrence) AddException(d date.Date) {
	i, found := slices.BinarySearchFunc(r.Exceptions, d, date.Date.Compare)
	if !found {
		r.Exceptions = slices.Insert(r.Exceptions, i, d)
	}
}

// Clone returns a deep copy of r.
func (r Recurrence) Clone() Recurrence {
	c := r
	c.Exceptions = slices.Clone(r.Exceptions)
	c.LastGenerated = clonePtr(r.LastGenerated)
	c.LastCompleted = clonePtr(r.LastCompleted)
	c.NextScheduled = clonePtr(r.NextScheduled)
	return c
}

// jsonRecurrence is the serialized form of Recurrence.
type jsonRecurrence struct {
	SeriesID      string           `json:"series_id"`
	Start         date.Date        `json:"start"`
	Interval      date.Interval    `json:"interval"`
	Mode          RecurrenceMode   `json:"mode"`
	End           jsonEnd          `json:"end"`
	Exceptions    []date.Date      `json:"exceptions,omitempty"`
	Status        RecurrenceStatus `json:"status"`
	LastGenerated *date.Date       `json:"last_generated,omitempty"`
	LastCompleted *date.Date       `json:"last_completed,omitempty"`
	NextScheduled *date.Date       `json:"next_scheduled,omitempty"`
	Generated     int              `json:"generated"`
}

type jsonEnd struct {
	Kind  string     `json:"kind"`
	Date  *date.Date `json:"date,omitempty"`
	Count int        `json:"count,omitempty"`
}

func (r Recurrence) MarshalJSON() ([]byte, error) {
	var end jsonEnd
	switch e := r.End.(type) {
	case nil, EndNever:
		end.Kind = "never"
	case EndOnDate:
		end.Kind = "on_date"
		end.Date = &e.Date
	case EndAfterOccurrences:
		end.Kind = "after_occurrences"
		end.Count = e.Count
	default:
		return nil, fmt.Errorf("unknown recurrence end %T", e)
	}
	return json.Marshal(jsonRecurrence{
		SeriesID:      r.SeriesID,
		Start:         r.Start,
		Interval:      r.Interval,
		Mode:          r.Mode,
		End:           end,
		Exceptions:    r.Exceptions,
		Status:        r.Status,
		LastGenerated: r.LastGenerated,
		LastCompleted: r.LastCompleted,
		NextScheduled: r.NextScheduled,
		Generated:     r.Generated,
	})
}

func (r *Recurrence) UnmarshalJSON(data []byte) error {
	var j jsonRecurrence
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	var end RecurrenceEnd
	switch j.End.Kind {
	case "never", "":
		end = EndNever{}
	case "on_date":
		if j.End.Date == nil {
			return errors.New("recurrence end on_date without a date")
		}
		end = EndOnDate{Date: *j.End.Date}
	case "after_occurrences":
		end = EndAfterOccurrences{Count: j.End.Count}
	default:
		return fmt.Errorf("unknown recurrence end kind %q", j.End.Kind)
	}
	*r = Recurrence{
		SeriesID:      j.SeriesID,
		Start:         j.Start,
		Interval:      j.Interval,
		Mode:          j.Mode,
		End:           end,
		Exceptions:    j.Exceptions,
		Status:        j.Status,
		LastGenerated: j.LastGenerated,
		LastCompleted: j.LastCompleted,
		NextScheduled: j.NextScheduled,
		Generated:     j.Generated,
	}
	return nil
}
