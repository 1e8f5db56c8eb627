package budget

import (
	"encoding/json"
	"fmt"

	"github.com/etnz/budget/date"
	"github.com/shopspring/decimal"
)

type fieldState uint8

const (
	fieldKeep fieldState = iota
	fieldClear
	fieldSet
)

// Field is a patch field that either keeps, clears or sets a value.
//
// In JSON a missing field keeps the value (use the omitzero option), null
// clears it and any other value sets it.
type Field[T any] struct {
	state fieldState
	value T
}

// Keep returns a field leaving the value untouched.
func Keep[T any]() Field[T] { return Field[T]{} }

// Clear returns a field clearing the value.
func Clear[T any]() Field[T] { return Field[T]{state: fieldClear} }

// Set returns a field setting the value to v.
func Set[T any](v T) Field[T] { return Field[T]{state: fieldSet, value: v} }

func (f Field[T]) IsZero() bool  { return f.state == fieldKeep }
func (f Field[T]) IsClear() bool { return f.state == fieldClear }
func (f Field[T]) IsSet() bool   { return f.state == fieldSet }

// Value returns the value to set, if any.
func (f Field[T]) Value() (T, bool) { return f.value, f.state == fieldSet }

func (f Field[T]) String() string {
	switch f.state {
	case fieldClear:
		return "<clear>"
	case fieldSet:
		return fmt.Sprint(f.value)
	default:
		return "<keep>"
	}
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if f.state != fieldSet {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = Clear[T]()
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Set(v)
	return nil
}

// applyOptional applies f to an optional value.
func applyOptional[T any](f Field[T], p **T) {
	switch f.state {
	case fieldClear:
		*p = nil
	case fieldSet:
		v := f.value
		*p = &v
	}
}

// applyRequired applies f to a required value; clearing it is an error.
func applyRequired[T any](f Field[T], p *T, name string) error {
	switch f.state {
	case fieldClear:
		return Errorf(ErrInvalidInput, "%s is required and cannot be cleared", name)
	case fieldSet:
		*p = f.value
	}
	return nil
}

// TransactionPatch lists the changes to make to a transaction.
type TransactionPatch struct {
	From           Field[string]          `json:"from,omitzero"`
	To             Field[string]          `json:"to,omitzero"`
	CategoryID     Field[string]          `json:"category_id,omitzero"`
	ScheduledDate  Field[date.Date]       `json:"scheduled_date,omitzero"`
	BudgetedAmount Field[decimal.Decimal] `json:"budgeted_amount,omitzero"`
	ActualDate     Field[date.Date]       `json:"actual_date,omitzero"`
	ActualAmount   Field[decimal.Decimal] `json:"actual_amount,omitzero"`
	Currency       Field[string]          `json:"currency,omitzero"`
	Recurrence     Field[Recurrence]      `json:"recurrence,omitzero"`
	Status         Field[Status]          `json:"status,omitzero"`
	Memo           Field[string]          `json:"memo,omitzero"`
}

// IsEmpty reports whether the patch keeps everything.
func (p TransactionPatch) IsEmpty() bool {
	return p.From.IsZero() && p.To.IsZero() && p.CategoryID.IsZero() &&
		p.ScheduledDate.IsZero() && p.BudgetedAmount.IsZero() &&
		p.ActualDate.IsZero() && p.ActualAmount.IsZero() && p.Currency.IsZero() &&
		p.Recurrence.IsZero() && p.Status.IsZero() && p.Memo.IsZero()
}

// Apply returns a copy of t with the patch applied.
func (p TransactionPatch) Apply(t Transaction) (Transaction, error) {
	t = t.Clone()
	for _, err := range []error{
		applyRequired(p.From, &t.From, "from account"),
		applyRequired(p.To, &t.To, "to account"),
		applyRequired(p.ScheduledDate, &t.ScheduledDate, "scheduled date"),
		applyRequired(p.BudgetedAmount, &t.BudgetedAmount, "budgeted amount"),
		applyRequired(p.Status, &t.Status, "status"),
	} {
		if err != nil {
			return t, fmt.Errorf("transaction %s: %w", t.ID, err)
		}
	}
	applyOptional(p.CategoryID, &t.CategoryID)
	applyOptional(p.ActualDate, &t.ActualDate)
	applyOptional(p.ActualAmount, &t.ActualAmount)

	switch p.Currency.state {
	case fieldClear:
		t.Currency = ""
	case fieldSet:
		t.Currency = p.Currency.value
	}
	switch p.Memo.state {
	case fieldClear:
		t.Memo = ""
	case fieldSet:
		t.Memo = p.Memo.value
	}

	switch p.Recurrence.state {
	case fieldClear:
		t.Recurrence = nil
	case fieldSet:
		r := p.Recurrence.value.Clone()
		if r.SeriesID == "" && t.Recurrence != nil {
			r.SeriesID = t.Recurrence.SeriesID
		}
		if r.SeriesID == "" {
			r.SeriesID = t.SeriesID
		}
		t.Recurrence = &r
	}
	return t, nil
}
