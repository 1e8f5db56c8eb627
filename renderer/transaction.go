package renderer

import (
	"fmt"
	"iter"
	"strings"

	"github.com/etnz/budget"
)

// Transaction renders a transaction on one line.
func Transaction(l *budget.Ledger, tx budget.Transaction) string {
	cur := tx.CurrencyOr(l.BaseCurrency)
	s := fmt.Sprintf("%s %s from %s to %s", tx.ScheduledDate, money(tx.BudgetedAmount, cur), accountName(l, tx.From), accountName(l, tx.To))
	if tx.ActualAmount != nil {
		s += fmt.Sprintf(", paid %s", money(*tx.ActualAmount, cur))
		if tx.ActualDate != nil && *tx.ActualDate != tx.ScheduledDate {
			s += " on " + tx.ActualDate.String()
		}
	}
	if tx.Status == budget.Missed {
		s += ", missed"
	}
	if r := tx.Recurrence; r != nil {
		s += fmt.Sprintf(", %s (%s)", r.Interval, r.Status)
	}
	return s
}

// TransactionsMarkdown renders a list of transactions as a table.
func TransactionsMarkdown(l *budget.Ledger, txs iter.Seq2[int, budget.Transaction]) string {
	var b strings.Builder
	fmt.Fprintln(&b, "| Date | ID | From | To | Category | Budgeted | Actual | Status | Memo |")
	fmt.Fprintln(&b, "|:---|:---|:---|:---|:---|---:|---:|:---|:---|")
	n := 0
	for _, tx := range txs {
		n++
		cur := tx.CurrencyOr(l.BaseCurrency)
		actual := "-"
		if tx.ActualAmount != nil {
			actual = money(*tx.ActualAmount, cur)
		}
		st := tx.Status.String()
		if tx.IsRecurring() {
			st += ", " + tx.Recurrence.Interval.String()
		}
		fmt.Fprintf(&b, "| %s | `%s` | %s | %s | %s | %s | %s | %s | %s |\n",
			tx.ScheduledDate, shortID(tx.ID),
			accountName(l, tx.From), accountName(l, tx.To), categoryName(l, tx.Category()),
			money(tx.BudgetedAmount, cur), actual, st, tx.Memo,
		)
	}
	if n == 0 {
		return "No transaction.\n"
	}
	fmt.Fprintln(&b)
	return b.String()
}

// shortID returns the last 8 characters of a uuid, enough to tell
// transactions apart in a listing.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[len(id)-8:]
}
