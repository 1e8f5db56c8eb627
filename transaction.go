package budget

import (
	"fmt"

	"github.com/etnz/budget/date"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a transaction.
type Status int

const (
	Planned Status = iota
	Completed
	Missed
	// Simulated transactions only exist inside a simulation preview.
	Simulated
)

func (s Status) String() string {
	switch s {
	case Completed:
		return "completed"
	case Missed:
		return "missed"
	case Simulated:
		return "simulated"
	default:
		return "planned"
	}
}

// ParseStatus parses a string into a Status.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "planned", "":
		return Planned, nil
	case "completed":
		return Completed, nil
	case "missed":
		return Missed, nil
	case "simulated":
		return Simulated, nil
	default:
		return Planned, fmt.Errorf("unknown transaction status: %q", s)
	}
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Status) UnmarshalText(text []byte) error {
	v, err := ParseStatus(string(text))
	*s = v
	return err
}

// Transaction moves money from one account to another. It carries a plan
// (ScheduledDate, BudgetedAmount) and, once performed, a realization
// (ActualDate, ActualAmount).
type Transaction struct {
	ID             string           `json:"id"`
	From           string           `json:"from"`
	To             string           `json:"to"`
	CategoryID     *string          `json:"category_id,omitempty"`
	ScheduledDate  date.Date        `json:"scheduled_date"`
	BudgetedAmount decimal.Decimal  `json:"budgeted_amount"`
	ActualDate     *date.Date       `json:"actual_date,omitempty"`
	ActualAmount   *decimal.Decimal `json:"actual_amount,omitempty"`
	// Currency overrides the ledger base currency.
	Currency   string      `json:"currency,omitempty"`
	Recurrence *Recurrence `json:"recurrence,omitempty"`
	// SeriesID links occurrences to the recurring transaction that generated them.
	SeriesID string `json:"series_id,omitempty"`
	Status   Status `json:"status"`
	Memo     string `json:"memo,omitempty"`
}

// IsComplete reports whether an actual amount has been recorded.
func (t Transaction) IsComplete() bool { return t.ActualAmount != nil }

// IsRecurring reports whether t is the template of a recurring series.
func (t Transaction) IsRecurring() bool { return t.Recurrence != nil }

// Category returns the category id, or "" when uncategorized.
func (t Transaction) Category() string {
	if t.CategoryID == nil {
		return ""
	}
	return *t.CategoryID
}

// CurrencyOr returns the transaction currency or base when it has none.
func (t Transaction) CurrencyOr(base string) string {
	if t.Currency == "" {
		return base
	}
	return t.Currency
}

// Clone returns a deep copy of t.
func (t Transaction) Clone() Transaction {
	c := t
	c.CategoryID = clonePtr(t.CategoryID)
	c.ActualDate = clonePtr(t.ActualDate)
	c.ActualAmount = clonePtr(t.ActualAmount)
	if t.Recurrence != nil {
		r := t.Recurrence.Clone()
		c.Recurrence = &r
	}
	return c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Validate checks the transaction fields that do not depend on the ledger.
func (t Transaction) Validate() error {
	if t.From == "" || t.To == "" {
		return Errorf(ErrInvalidInput, "transaction %s: both from and to accounts are required", t.ID)
	}
	if t.From == t.To {
		return Errorf(ErrInvalidInput, "transaction %s: from and to accounts are the same", t.ID)
	}
	if t.ScheduledDate.IsZero() {
		return Errorf(ErrInvalidInput, "transaction %s: scheduled date is missing", t.ID)
	}
	if (t.ActualDate == nil) != (t.ActualAmount == nil) {
		return Errorf(ErrInvalidInput, "transaction %s: actual date and actual amount go together", t.ID)
	}
	if t.Currency != "" {
		if err := ValidateCurrency(t.Currency); err != nil {
			return Wrap(ErrInvalidInput, fmt.Errorf("transaction %s: %w", t.ID, err))
		}
	}
	if t.Recurrence != nil {
		if err := t.Recurrence.Validate(); err != nil {
			return Wrap(ErrInvalidInput, fmt.Errorf("transaction %s: %w", t.ID, err))
		}
	}
	return nil
}
