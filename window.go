package budget

import (
	"time"

	"github.com/etnz/budget/date"
)

// epoch anchors budget windows. It is a Monday so that weekly windows start
// on Mondays; monthly and yearly windows start on the first of the month
// because the anchor is normalized.
var epoch = date.New(1970, time.January, 5)

// WindowContaining returns the budget period window that contains d.
func (l *Ledger) WindowContaining(d date.Date) date.Window {
	anchor := l.BudgetPeriod.NormalizeAnchor(epoch)
	start := l.BudgetPeriod.CycleStart(anchor, d)
	return date.IntervalWindow(start, l.BudgetPeriod)
}

// CurrentWindow returns the budget period window containing today.
func (l *Ledger) CurrentWindow(clock date.Clock) date.Window {
	return l.WindowContaining(clock.Today())
}

// ScopeOf classifies w relative to ref. Windows that are not a budget
// period of the ledger are Custom.
func (l *Ledger) ScopeOf(w date.Window, ref date.Date) date.Scope {
	if w != l.WindowContaining(w.Start()) {
		return date.Custom
	}
	return w.Scope(ref)
}
