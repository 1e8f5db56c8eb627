package budget

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// BudgetStatus compares what was realized to what was planned.
type BudgetStatus int

const (
	OnTrack BudgetStatus = iota
	OverBudget
	UnderBudget
	// Empty totals have nothing planned and nothing realized.
	Empty
	// Incomplete totals still wait for some actual amounts.
	Incomplete
)

func (s BudgetStatus) String() string {
	switch s {
	case OnTrack:
		return "on-track"
	case OverBudget:
		return "over-budget"
	case UnderBudget:
		return "under-budget"
	case Empty:
		return "empty"
	case Incomplete:
		return "incomplete"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// ParseBudgetStatus parses the names returned by String.
func ParseBudgetStatus(s string) (BudgetStatus, error) {
	for st := OnTrack; st <= Incomplete; st++ {
		if st.String() == s {
			return st, nil
		}
	}
	return Empty, fmt.Errorf("unknown budget status: %q", s)
}

func (s BudgetStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *BudgetStatus) UnmarshalText(text []byte) error {
	v, err := ParseBudgetStatus(string(text))
	*s = v
	return err
}

// BudgetTotals compares planned and realized sums.
type BudgetTotals struct {
	Budgeted  decimal.Decimal `json:"budgeted"`
	Real      decimal.Decimal `json:"real"`
	Remaining decimal.Decimal `json:"remaining"` // Budgeted - Real
	Variance  decimal.Decimal `json:"variance"`  // Real - Budgeted
	// PercentUsed is Real over Budgeted in percent, absent when both are zero.
	PercentUsed *decimal.Decimal `json:"percent_used,omitempty"`
	Status      BudgetStatus     `json:"status"`
	Incomplete  bool             `json:"incomplete"`
}

var hundred = decimal.NewFromInt(100)

// TotalsFromParts derives the totals of budgeted and actual sums.
func TotalsFromParts(budgeted, actual decimal.Decimal, incomplete bool) BudgetTotals {
	t := BudgetTotals{
		Budgeted:   budgeted,
		Real:       actual,
		Remaining:  budgeted.Sub(actual),
		Variance:   actual.Sub(budgeted),
		Incomplete: incomplete,
	}
	switch {
	case !nearZero(budgeted):
		p := actual.Div(budgeted).Mul(hundred)
		t.PercentUsed = &p
	case !nearZero(actual):
		p := hundred
		t.PercentUsed = &p
	}

	switch {
	case incomplete:
		t.Status = Incomplete
	case nearZero(budgeted) && nearZero(actual):
		t.Status = Empty
	case nearZero(t.Variance):
		t.Status = OnTrack
	case t.Variance.IsPositive():
		t.Status = OverBudget
	default:
		t.Status = UnderBudget
	}
	return t
}

// BudgetTotalsDelta is the difference between two totals.
type BudgetTotalsDelta struct {
	Budgeted  decimal.Decimal `json:"budgeted"`
	Real      decimal.Decimal `json:"real"`
	Remaining decimal.Decimal `json:"remaining"`
	Variance  decimal.Decimal `json:"variance"`
}

// Delta returns after - before.
func Delta(before, after BudgetTotals) BudgetTotalsDelta {
	return BudgetTotalsDelta{
		Budgeted:  after.Budgeted.Sub(before.Budgeted),
		Real:      after.Real.Sub(before.Real),
		Remaining: after.Remaining.Sub(before.Remaining),
		Variance:  after.Variance.Sub(before.Variance),
	}
}

// IsZero reports whether nothing changed.
func (d BudgetTotalsDelta) IsZero() bool {
	return nearZero(d.Budgeted) && nearZero(d.Real) && nearZero(d.Remaining) && nearZero(d.Variance)
}
