package date

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrEmptyInterval is returned when an interval repeats less than once per step.
var ErrEmptyInterval = errors.New("interval count must be at least 1")

// Interval is "every N units", like every 2 weeks or every month.
//
// Day and week units move by a fixed number of days. Month and year units move
// the month or year field and clamp the day to the end of the target month.
type Interval struct {
	Every int
	Unit  Unit
}

// NewInterval returns a valid interval or ErrEmptyInterval.
func NewInterval(every int, unit Unit) (Interval, error) {
	if every < 1 {
		return Interval{}, fmt.Errorf("invalid interval %d %s: %w", every, unit.noun(), ErrEmptyInterval)
	}
	if unit < Daily || unit > Yearly {
		return Interval{}, fmt.Errorf("unknown unit %d", unit)
	}
	return Interval{Every: every, Unit: unit}, nil
}

// Every returns an interval of one unit.
func Every(unit Unit) Interval { return Interval{Every: 1, Unit: unit} }

// Valid reports whether the interval moves dates at all.
func (i Interval) Valid() bool { return i.Every >= 1 && i.Unit >= Daily && i.Unit <= Yearly }

// String returns a human name: "monthly", "every 2 weeks".
func (i Interval) String() string {
	if i.Every == 1 {
		return i.Unit.String()
	}
	return fmt.Sprintf("every %d %s", i.Every, i.Unit.noun())
}

// Compact returns the short form used in files and flags: "1m", "2w".
func (i Interval) Compact() string { return strconv.Itoa(i.Every) + string(i.Unit.letter()) }

var (
	compactIntervalRE = regexp.MustCompile(`^(\d+)\s*([dwmy])$`)
	everyIntervalRE   = regexp.MustCompile(`^every\s+(\d+)\s+([a-z]+)$`)
)

// ParseInterval accepts "monthly", "week", "2w", "3m" and "every 2 weeks".
func ParseInterval(s string) (Interval, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if match := compactIntervalRE.FindStringSubmatch(s); match != nil {
		n, _ := strconv.Atoi(match[1])
		u, _ := ParseUnit(match[2])
		return NewInterval(n, u)
	}
	if match := everyIntervalRE.FindStringSubmatch(s); match != nil {
		n, _ := strconv.Atoi(match[1])
		u, err := ParseUnit(match[2])
		if err != nil {
			return Interval{}, fmt.Errorf("invalid interval %q: %w", s, err)
		}
		return NewInterval(n, u)
	}
	u, err := ParseUnit(s)
	if err != nil {
		return Interval{}, fmt.Errorf("invalid interval %q: %w", s, err)
	}
	return Every(u), nil
}

// Next returns d moved forward by one interval.
func (i Interval) Next(d Date) Date { return i.step(d, i.Every) }

// Previous returns d moved backward by one interval.
func (i Interval) Previous(d Date) Date { return i.step(d, -i.Every) }

func (i Interval) step(d Date, n int) Date {
	switch i.Unit {
	case Daily:
		return d.Add(n)
	case Weekly:
		return d.Add(7 * n)
	case Monthly:
		return d.AddMonths(n)
	case Yearly:
		return d.AddYears(n)
	default:
		panic("unknown unit")
	}
}

// AddTo applies Next (or Previous when steps is negative) steps times.
// Clamping accumulates: Jan 31 + 2 monthly steps is Mar 28.
func (i Interval) AddTo(d Date, steps int) Date {
	for ; steps > 0; steps-- {
		d = i.Next(d)
	}
	for ; steps < 0; steps++ {
		d = i.Previous(d)
	}
	return d
}

// Skip moves d forward by whole intervals while it stays before target and
// returns the date reached with the number of steps. It is AddTo(d, steps)
// computed in one go. Month and year steps from a day past the 28th clamp
// differently at each step and are not skipped.
func (i Interval) Skip(d, target Date) (Date, int) {
	if !d.Before(target) {
		return d, 0
	}
	var k int
	switch i.Unit {
	case Daily, Weekly:
		k = (target.Sub(d) - 1) / i.days()
		return d.Add(k * i.days()), k
	case Monthly:
		k = (target.monthIndex() - d.monthIndex()) / i.Every
	case Yearly:
		k = (target.y - d.y) / i.Every
	default:
		panic("unknown unit")
	}
	if d.d > 28 {
		return d, 0
	}
	for k > 0 && !i.step(d, k*i.Every).Before(target) {
		k--
	}
	return i.step(d, k*i.Every), k
}

// days is the fixed length of day and week intervals.
func (i Interval) days() int {
	if i.Unit == Weekly {
		return 7 * i.Every
	}
	return i.Every
}

// NormalizeAnchor snaps d to the start of its natural bucket: the day itself,
// the Monday of its week, the first day of its N-month block or the first of
// January of its N-year block.
func (i Interval) NormalizeAnchor(d Date) Date {
	switch i.Unit {
	case Daily:
		return d
	case Weekly:
		offset := int(d.Weekday() - time.Monday)
		for offset < 0 {
			offset += 7
		}
		return d.Add(-offset)
	case Monthly:
		block := floorDiv(d.monthIndex(), i.Every) * i.Every
		return Date{floorDiv(block, 12), time.Month(floorMod(block, 12) + 1), 1}
	case Yearly:
		return Date{floorDiv(d.y, i.Every) * i.Every, time.January, 1}
	default:
		panic("unknown unit")
	}
}

// CycleStart returns the start of the cycle anchored at anchor that contains
// ref, so that CycleStart <= ref < Next(CycleStart). It works for ref before
// the anchor too.
func (i Interval) CycleStart(anchor, ref Date) Date {
	var start Date
	switch i.Unit {
	case Daily, Weekly:
		length := i.days()
		k := floorDiv(ref.Sub(anchor), length)
		return anchor.Add(k * length)
	case Monthly:
		k := floorDiv(ref.monthIndex()-anchor.monthIndex(), i.Every)
		start = anchor.AddMonths(k * i.Every)
		if start.After(ref) {
			start = anchor.AddMonths((k - 1) * i.Every)
		}
	case Yearly:
		k := floorDiv(ref.y-anchor.y, i.Every)
		start = anchor.AddYears(k * i.Every)
		if start.After(ref) {
			start = anchor.AddYears((k - 1) * i.Every)
		}
	default:
		panic("unknown unit")
	}
	// Clamped anchors (day 29 to 31) shorten some cycles: catch up.
	for next := i.Next(start); !next.After(ref); next = i.Next(start) {
		start = next
	}
	return start
}

// MarshalJSON writes the compact form.
func (i Interval) MarshalJSON() ([]byte, error) { return json.Marshal(i.Compact()) }

// UnmarshalJSON reads any form accepted by ParseInterval.
func (i *Interval) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParseInterval(s)
	if err != nil {
		return err
	}
	*i = v
	return nil
}
