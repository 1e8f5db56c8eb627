package budget

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"maps"
	"slices"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/budget/date"
	"github.com/shopspring/decimal"
)

// DefaultFXTolerance is the default age in days of a usable rate.
const DefaultFXTolerance = 7

// Rate is the price of one unit of From in To on Date.
type Rate struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Date   date.Date       `json:"date"`
	Rate   decimal.Decimal `json:"rate"`
	Source string          `json:"source,omitempty"`
	Notes  string          `json:"notes,omitempty"`
}

// Validate checks the rate fields.
func (r Rate) Validate() error {
	if err := ValidateCurrency(r.From); err != nil {
		return Wrap(ErrInvalidInput, fmt.Errorf("rate from: %w", err))
	}
	if err := ValidateCurrency(r.To); err != nil {
		return Wrap(ErrInvalidInput, fmt.Errorf("rate to: %w", err))
	}
	if r.From == r.To {
		return Errorf(ErrInvalidInput, "rate %s/%s converts a currency into itself", r.From, r.To)
	}
	if r.Date.IsZero() {
		return Errorf(ErrInvalidInput, "rate %s/%s has no date", r.From, r.To)
	}
	if !r.Rate.IsPositive() {
		return Errorf(ErrInvalidInput, "rate %s/%s on %s must be positive, got %s", r.From, r.To, r.Date, r.Rate)
	}
	return nil
}

type pair struct{ from, to string }

func (p pair) String() string { return p.from + "/" + p.to }

// FXBook holds exchange rates per currency pair.
//
// A lookup returns the most recent rate at or before the requested day, as
// long as it is at most Tolerance days old.
type FXBook struct {
	Tolerance int
	rates     map[pair]*date.History[Rate]
}

// NewFXBook returns an empty book.
func NewFXBook(tolerance int) *FXBook {
	return &FXBook{Tolerance: tolerance, rates: make(map[pair]*date.History[Rate])}
}

// Add records a rate, replacing the one of the same pair and day.
func (b *FXBook) Add(r Rate) error {
	if err := r.Validate(); err != nil {
		return err
	}
	p := pair{r.From, r.To}
	h, ok := b.rates[p]
	if !ok {
		h = new(date.History[Rate])
		b.rates[p] = h
	}
	h.Append(r.Date, r)
	return nil
}

// Len returns the number of rates in the book.
func (b *FXBook) Len() int {
	n := 0
	for _, h := range b.rates {
		n += h.Len()
	}
	return n
}

// Rates iterates over all rates ordered by pair then date.
func (b *FXBook) Rates() iter.Seq[Rate] {
	return func(yield func(Rate) bool) {
		pairs := slices.SortedFunc(maps.Keys(b.rates), func(a, b pair) int {
			return cmp.Or(cmp.Compare(a.from, b.from), cmp.Compare(a.to, b.to))
		})
		for _, p := range pairs {
			for _, r := range b.rates[p].Values() {
				if !yield(r) {
					return
				}
			}
		}
	}
}

// Clone returns a deep copy of the book.
func (b *FXBook) Clone() *FXBook {
	c := NewFXBook(b.Tolerance)
	for p, h := range b.rates {
		c.rates[p] = h.Clone()
	}
	return c
}

// lookup returns the direct rate for p usable on day.
func (b *FXBook) lookup(p pair, on date.Date) (Rate, bool) {
	h, ok := b.rates[p]
	if !ok {
		return Rate{}, false
	}
	day, r, ok := h.EntryAsOf(on)
	if !ok || on.Sub(day) > b.Tolerance {
		return Rate{}, false
	}
	return r, true
}

// Lookup returns the rate converting from into to on a given day. A missing
// direct pair falls back to the inverse of the reverse pair.
func (b *FXBook) Lookup(from, to string, on date.Date) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	if r, ok := b.lookup(pair{from, to}, on); ok {
		return r.Rate, nil
	}
	if r, ok := b.lookup(pair{to, from}, on); ok {
		return decimal.NewFromInt(1).DivRound(r.Rate, 12), nil
	}
	return decimal.Zero, Errorf(ErrNotFound, "no %s/%s rate within %d days of %s", from, to, b.Tolerance, on)
}

// Convert values amount from one currency into another on a given day.
func (b *FXBook) Convert(amount decimal.Decimal, from, to string, on date.Date) (decimal.Decimal, error) {
	rate, err := b.Lookup(from, to, on)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(rate), nil
}

// ImportRates reads a JSON document from r and adds the from/to rates
// selected by the JSONPath expression expr. The selection is either a list of
// objects with a "date" field and a "rate" (or "close", or "value") field, or
// an object mapping dates to rates. It returns the number of rates added.
func (b *FXBook) ImportRates(r io.Reader, expr, from, to, source string) (int, error) {
	var doc any
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return 0, fmt.Errorf("could not decode rates document: %w", err)
	}
	selected, err := jsonpath.Get(expr, doc)
	if err != nil {
		return 0, fmt.Errorf("error evaluating %q: %w", expr, err)
	}
	// a filter returns a list of one answer when the path points to a single node
	if list, ok := selected.([]any); ok && len(list) == 1 {
		if obj, ok := list[0].(map[string]any); ok && obj["date"] == nil {
			selected = obj
		}
	}

	var rates []Rate
	switch s := selected.(type) {
	case []any:
		for i, item := range s {
			obj, ok := item.(map[string]any)
			if !ok {
				return 0, fmt.Errorf("entry %d of %q is not an object", i, expr)
			}
			day, ok := obj["date"].(string)
			if !ok {
				return 0, fmt.Errorf("entry %d of %q has no date", i, expr)
			}
			value, ok := firstNumber(obj, "rate", "close", "value")
			if !ok {
				return 0, fmt.Errorf("entry %d of %q has no rate", i, expr)
			}
			rt, err := newImportedRate(from, to, day, value, source)
			if err != nil {
				return 0, err
			}
			rates = append(rates, rt)
		}
	case map[string]any:
		for day, v := range s {
			value, ok := v.(float64)
			if !ok {
				return 0, fmt.Errorf("rate for %q in %q is not a number", day, expr)
			}
			rt, err := newImportedRate(from, to, day, value, source)
			if err != nil {
				return 0, err
			}
			rates = append(rates, rt)
		}
	default:
		return 0, fmt.Errorf("%q selects neither a list nor an object: %T", expr, selected)
	}

	for _, rt := range rates {
		if err := rt.Validate(); err != nil {
			return 0, err
		}
	}
	for _, rt := range rates {
		if err := b.Add(rt); err != nil {
			return 0, err
		}
	}
	return len(rates), nil
}

func newImportedRate(from, to, day string, value float64, source string) (Rate, error) {
	d, err := date.Parse(day)
	if err != nil {
		return Rate{}, fmt.Errorf("invalid rate date %q: %w", day, err)
	}
	return Rate{From: from, To: to, Date: d, Rate: decimal.NewFromFloat(value), Source: source}, nil
}

func firstNumber(obj map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		if v, ok := obj[k].(float64); ok {
			return v, true
		}
	}
	return 0, false
}
