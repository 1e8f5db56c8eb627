package budget

import (
	"fmt"

	"github.com/etnz/budget/date"
	"github.com/shopspring/decimal"
)

// CategoryKind tells which way money flows for a category.
type CategoryKind int

const (
	ExpenseCategory CategoryKind = iota
	IncomeCategory
	TransferCategory
)

func (k CategoryKind) String() string {
	switch k {
	case IncomeCategory:
		return "income"
	case TransferCategory:
		return "transfer"
	default:
		return "expense"
	}
}

// ParseCategoryKind parses a string into a CategoryKind.
func ParseCategoryKind(s string) (CategoryKind, error) {
	switch s {
	case "expense", "":
		return ExpenseCategory, nil
	case "income":
		return IncomeCategory, nil
	case "transfer":
		return TransferCategory, nil
	default:
		return ExpenseCategory, fmt.Errorf("unknown category kind: %q", s)
	}
}

func (k CategoryKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *CategoryKind) UnmarshalText(text []byte) error {
	v, err := ParseCategoryKind(string(text))
	*k = v
	return err
}

// CategoryBudget is the amount planned for a category every period. The
// period is independent of the ledger budget period.
type CategoryBudget struct {
	Amount decimal.Decimal `json:"amount"`
	Period date.Interval   `json:"period"`
	// ReferenceDate anchors the category cycles; the normalized anchor of the
	// period is used when absent.
	ReferenceDate *date.Date `json:"reference_date,omitempty"`
}

// anchor returns the date category cycles are counted from.
func (b CategoryBudget) anchor() date.Date {
	if b.ReferenceDate != nil {
		return *b.ReferenceDate
	}
	return b.Period.NormalizeAnchor(epoch)
}

// TargetFor returns the amount planned in w: one Amount for every category
// cycle starting inside w.
func (b CategoryBudget) TargetFor(w date.Window) decimal.Decimal {
	if !b.Period.Valid() || w.IsZero() {
		return decimal.Zero
	}
	start := b.Period.CycleStart(b.anchor(), w.Start())
	if start.Before(w.Start()) {
		start = b.Period.Next(start)
	}
	n := 0
	for d := start; w.Contains(d); d = b.Period.Next(d) {
		n++
	}
	return b.Amount.Mul(decimal.NewFromInt(int64(n)))
}

// Category groups transactions for reporting.
type Category struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Kind     CategoryKind    `json:"kind"`
	ParentID *string         `json:"parent_id,omitempty"`
	Budget   *CategoryBudget `json:"budget,omitempty"`
}

// NewCategory creates a category with a fresh identifier.
func NewCategory(name string, kind CategoryKind) Category {
	return Category{ID: NewID(), Name: name, Kind: kind}
}

// Validate checks the category fields.
func (c Category) Validate() error {
	if c.ID == "" {
		return Errorf(ErrInvalidInput, "category id is missing")
	}
	if c.Name == "" {
		return Errorf(ErrInvalidInput, "category %s has no name", c.ID)
	}
	if c.ParentID != nil && *c.ParentID == c.ID {
		return Errorf(ErrInvalidInput, "category %q cannot be its own parent", c.Name)
	}
	if c.Budget != nil && !c.Budget.Period.Valid() {
		return Wrap(ErrInvalidInput, fmt.Errorf("category %q budget period: %w", c.Name, date.ErrEmptyInterval))
	}
	return nil
}
