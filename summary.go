package budget

import (
	"slices"

	"github.com/etnz/budget/date"
	"github.com/shopspring/decimal"
)

// Disclosure reports a transaction left out of a total because its amount
// could not be valued in the base currency.
type Disclosure struct {
	TransactionID string    `json:"transaction_id,omitempty"`
	SeriesID      string    `json:"series_id,omitempty"`
	Date          date.Date `json:"date"`
	Reason        string    `json:"reason"`
}

// SummaryCounts counts the transactions of a summary.
type SummaryCounts struct {
	Transactions int `json:"transactions"`
	Incomplete   int `json:"incomplete"`
	// Orphaned transactions refer to an account or category that does not exist.
	Orphaned int `json:"orphaned"`
	Excluded int `json:"excluded"`
}

// CategoryBreakdown holds the totals of one category. The zero CategoryID
// holds uncategorized transactions.
type CategoryBreakdown struct {
	CategoryID   string           `json:"category_id,omitempty"`
	Name         string           `json:"name"`
	Kind         CategoryKind     `json:"kind"`
	Orphaned     bool             `json:"orphaned,omitempty"`
	Target       *decimal.Decimal `json:"target,omitempty"`
	Transactions int              `json:"transactions"`
	Totals       BudgetTotals     `json:"totals"`
}

// AccountBreakdown holds the totals of the transactions from or to an account.
type AccountBreakdown struct {
	AccountID    string       `json:"account_id"`
	Name         string       `json:"name"`
	Kind         AccountKind  `json:"kind"`
	Orphaned     bool         `json:"orphaned,omitempty"`
	Transactions int          `json:"transactions"`
	Totals       BudgetTotals `json:"totals"`
}

// BudgetSummary is the plan versus actual report of a window.
type BudgetSummary struct {
	Window      date.Window         `json:"window"`
	Scope       date.Scope          `json:"scope"`
	Reference   date.Date           `json:"reference"`
	Currency    string              `json:"currency"`
	Totals      BudgetTotals        `json:"totals"`
	Counts      SummaryCounts       `json:"counts"`
	Categories  []CategoryBreakdown `json:"categories"`
	Accounts    []AccountBreakdown  `json:"accounts"`
	Disclosures []Disclosure        `json:"disclosures,omitempty"`
}

// fold accumulates budgeted and actual sums.
type fold struct {
	budgeted, actual decimal.Decimal
	count            int
	incomplete       int
}

func (f *fold) add(budgeted, actual decimal.Decimal, complete bool) {
	f.budgeted = f.budgeted.Add(budgeted)
	f.actual = f.actual.Add(actual)
	f.count++
	if !complete {
		f.incomplete++
	}
}

func (f fold) totals() BudgetTotals {
	return TotalsFromParts(f.budgeted, f.actual, f.incomplete > 0)
}

// Summarize folds the transactions scheduled in w into plan versus actual
// totals, valued in the ledger base currency. ref is the reference date used
// for the scope and the report date valuation.
//
// Occurrences due on ref are counted as if materialized; l is not modified.
// Transactions that cannot be valued are excluded and disclosed.
func (l *Ledger) Summarize(w date.Window, ref date.Date) (*BudgetSummary, error) {
	if w.IsZero() {
		return nil, Wrap(ErrInvalidInput, date.ErrEmptyWindow)
	}
	l = l.withDue(ref)
	s := &BudgetSummary{
		Window:    w,
		Scope:     l.ScopeOf(w, ref),
		Reference: ref,
		Currency:  l.BaseCurrency,
	}
	v := l.Valuator(ref)

	var total fold
	byCategory := make(map[string]*fold)
	byAccount := make(map[string]*fold)
	get := func(m map[string]*fold, key string) *fold {
		f, ok := m[key]
		if !ok {
			f = new(fold)
			m[key] = f
		}
		return f
	}

	for _, tx := range l.Transactions(InWindow(w)) {
		budgeted, err := v.Budgeted(tx)
		if err == nil {
			var actual decimal.Decimal
			actual, err = v.Actual(tx)
			if err == nil {
				complete := tx.IsComplete()
				total.add(budgeted, actual, complete)
				get(byCategory, tx.Category()).add(budgeted, actual, complete)
				get(byAccount, tx.From).add(budgeted, actual, complete)
				get(byAccount, tx.To).add(budgeted, actual, complete)
				if l.isOrphaned(tx) {
					s.Counts.Orphaned++
				}
				continue
			}
		}
		s.Counts.Excluded++
		s.Disclosures = append(s.Disclosures, Disclosure{
			TransactionID: tx.ID,
			SeriesID:      tx.SeriesID,
			Date:          tx.ScheduledDate,
			Reason:        err.Error(),
		})
	}
	s.Totals = total.totals()
	s.Counts.Transactions = total.count
	s.Counts.Incomplete = total.incomplete

	// categories in ledger order, then uncategorized, then unknown ids.
	for _, c := range l.categories {
		f, used := byCategory[c.ID]
		var target *decimal.Decimal
		if c.Budget != nil {
			t := c.Budget.TargetFor(w)
			target = &t
		}
		if !used && target == nil {
			continue
		}
		if f == nil {
			f = new(fold)
		}
		s.Categories = append(s.Categories, CategoryBreakdown{
			CategoryID:   c.ID,
			Name:         c.Name,
			Kind:         c.Kind,
			Target:       target,
			Transactions: f.count,
			Totals:       f.totals(),
		})
		delete(byCategory, c.ID)
	}
	if f, ok := byCategory[""]; ok {
		s.Categories = append(s.Categories, CategoryBreakdown{
			Name:         "Uncategorized",
			Transactions: f.count,
			Totals:       f.totals(),
		})
		delete(byCategory, "")
	}
	for _, id := range sortedKeys(byCategory) {
		f := byCategory[id]
		s.Categories = append(s.Categories, CategoryBreakdown{
			CategoryID:   id,
			Name:         id,
			Orphaned:     true,
			Transactions: f.count,
			Totals:       f.totals(),
		})
	}

	for _, a := range l.accounts {
		f, ok := byAccount[a.ID]
		if !ok {
			continue
		}
		s.Accounts = append(s.Accounts, AccountBreakdown{
			AccountID:    a.ID,
			Name:         a.Name,
			Kind:         a.Kind,
			Transactions: f.count,
			Totals:       f.totals(),
		})
		delete(byAccount, a.ID)
	}
	for _, id := range sortedKeys(byAccount) {
		f := byAccount[id]
		s.Accounts = append(s.Accounts, AccountBreakdown{
			AccountID:    id,
			Name:         id,
			Orphaned:     true,
			Transactions: f.count,
			Totals:       f.totals(),
		})
	}
	return s, nil
}

// isOrphaned reports whether tx refers to an unknown account or category.
func (l *Ledger) isOrphaned(tx Transaction) bool {
	if _, ok := l.Account(tx.From); !ok {
		return true
	}
	if _, ok := l.Account(tx.To); !ok {
		return true
	}
	if tx.CategoryID != nil {
		if _, ok := l.Category(*tx.CategoryID); !ok {
			return true
		}
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
