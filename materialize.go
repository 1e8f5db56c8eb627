package budget

import "github.com/etnz/budget/date"

// MaterializeDue creates, for every active series, the occurrences scheduled
// on or before ref that have not been generated yet. It returns the number of
// transactions created; calling it again with the same ref creates none.
//
// MaterializeDue modifies the ledger.
func (l *Ledger) MaterializeDue(ref date.Date) int {
	var created []Transaction
	for _, tpl := range l.transactions {
		r := tpl.Recurrence
		if r == nil || r.Status != Active || r.NextScheduled == nil {
			continue
		}
		for isDue(r, ref) {
			next := *r.NextScheduled
			created = append(created, occurrence(tpl, next))
			r.Generated++
			r.LastGenerated = &next
			// a fresh occurrence has no actual yet, the schedule moves on from it.
			following := r.NextOccurrence(next, nil)
			r.NextScheduled = &following
		}
		if !r.AllowsOccurrence(r.Generated, *r.NextScheduled) {
			r.Status = Done
		}
	}
	if len(created) == 0 {
		return 0
	}
	l.transactions = append(l.transactions, created...)
	l.stableSort()
	return len(created)
}

// isDue reports whether the series r has an occurrence to create on or
// before ref.
func isDue(r *Recurrence, ref date.Date) bool {
	return r != nil && r.Status == Active && r.NextScheduled != nil &&
		!r.NextScheduled.After(ref) && r.AllowsOccurrence(r.Generated, *r.NextScheduled)
}

// withDue returns l when no occurrence is due on ref, otherwise a copy of l
// with the due occurrences materialized. l is never modified.
func (l *Ledger) withDue(ref date.Date) *Ledger {
	for _, t := range l.transactions {
		if isDue(t.Recurrence, ref) {
			c := l.Clone()
			c.MaterializeDue(ref)
			return c
		}
	}
	return l
}

// occurrence returns a new planned member of the series of tpl on d.
func occurrence(tpl Transaction, d date.Date) Transaction {
	return Transaction{
		ID:             NewID(),
		From:           tpl.From,
		To:             tpl.To,
		CategoryID:     clonePtr(tpl.CategoryID),
		ScheduledDate:  d,
		BudgetedAmount: tpl.BudgetedAmount,
		Currency:       tpl.Currency,
		SeriesID:       tpl.Recurrence.SeriesID,
		Status:         Planned,
		Memo:           tpl.Memo,
	}
}
