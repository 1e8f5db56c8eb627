package date

import (
	"fmt"
	"strings"
)

// Unit is the calendar unit an Interval repeats on.
type Unit int

const (
	Daily Unit = iota
	Weekly
	Monthly
	Yearly
)

func (u Unit) String() string {
	switch u {
	case Daily:
		return "daily"
	case Weekly:
		return "weekly"
	case Monthly:
		return "monthly"
	case Yearly:
		return "yearly"
	default:
		panic(fmt.Sprintf("unknown unit %d", u))
	}
}

// noun returns the plural noun of the unit, as in "every 2 weeks".
func (u Unit) noun() string {
	switch u {
	case Daily:
		return "days"
	case Weekly:
		return "weeks"
	case Monthly:
		return "months"
	default:
		return "years"
	}
}

// letter returns the compact letter of the unit, as in "2w".
func (u Unit) letter() byte { return "dwmy"[u] }

func ParseUnit(u string) (Unit, error) {
	u = strings.ToLower(u)
	switch u {
	case "daily", "day", "days", "d":
		return Daily, nil
	case "weekly", "week", "weeks", "w":
		return Weekly, nil
	case "monthly", "month", "months", "m":
		return Monthly, nil
	case "yearly", "year", "years", "y", "annually":
		return Yearly, nil
	default:
		return Daily, fmt.Errorf("unknown unit %s", u)
	}
}
