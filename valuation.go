package budget

import (
	"fmt"

	"github.com/etnz/budget/date"
	"github.com/shopspring/decimal"
)

// ValuationPolicy selects the day whose rate values a foreign amount.
type ValuationPolicy int

const (
	// TransactionDate values amounts with the rate of their own date.
	TransactionDate ValuationPolicy = iota
	// ReportDate values every amount with the rate of the report reference date.
	ReportDate
)

func (p ValuationPolicy) String() string {
	if p == ReportDate {
		return "report-date"
	}
	return "transaction-date"
}

// ParseValuationPolicy parses a string into a ValuationPolicy.
func ParseValuationPolicy(s string) (ValuationPolicy, error) {
	switch s {
	case "transaction-date", "transaction", "":
		return TransactionDate, nil
	case "report-date", "report":
		return ReportDate, nil
	default:
		return TransactionDate, fmt.Errorf("unknown valuation policy: %q", s)
	}
}

func (p ValuationPolicy) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *ValuationPolicy) UnmarshalText(text []byte) error {
	v, err := ParseValuationPolicy(string(text))
	*p = v
	return err
}

// Valuator converts transaction amounts into a base currency.
type Valuator struct {
	Base   string
	Book   *FXBook
	Policy ValuationPolicy
	// Reference is the report reference date used by the ReportDate policy.
	Reference date.Date
}

// Valuator returns the valuator of the ledger for a report made on ref.
func (l *Ledger) Valuator(ref date.Date) Valuator {
	return Valuator{Base: l.BaseCurrency, Book: l.Rates, Policy: l.Valuation, Reference: ref}
}

// Value converts amount, expressed in currency and dated on, into the base
// currency.
func (v Valuator) Value(amount decimal.Decimal, currency string, on date.Date) (decimal.Decimal, error) {
	if currency == "" || currency == v.Base {
		return amount, nil
	}
	if v.Policy == ReportDate {
		on = v.Reference
	}
	if v.Book == nil {
		return decimal.Zero, Errorf(ErrNotFound, "no exchange rates to convert %s into %s", currency, v.Base)
	}
	return v.Book.Convert(amount, currency, v.Base, on)
}

// Budgeted values the budgeted amount of t.
func (v Valuator) Budgeted(t Transaction) (decimal.Decimal, error) {
	return v.Value(t.BudgetedAmount, t.Currency, t.ScheduledDate)
}

// Actual values the actual amount of t. It returns zero when t is not complete.
func (v Valuator) Actual(t Transaction) (decimal.Decimal, error) {
	if t.ActualAmount == nil {
		return decimal.Zero, nil
	}
	on := t.ScheduledDate
	if t.ActualDate != nil {
		on = *t.ActualDate
	}
	return v.Value(*t.ActualAmount, t.Currency, on)
}
