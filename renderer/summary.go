package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/etnz/budget"
)

// SummaryMarkdown renders a budget summary: the window totals, then one table
// per breakdown, then the disclosures.
func SummaryMarkdown(s *budget.BudgetSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Budget %s\n\n", s.Window.Identifier())
	fmt.Fprintf(&b, "*%s window %s to %s, as of %s*\n\n", s.Scope, s.Window.Start(), s.Window.Last(), s.Reference)

	renderTotals(&b, s.Currency, s.Totals)
	renderCounts(&b, s.Counts)
	ConditionalBlock(&b, func(w io.Writer) bool { return renderCategories(w, s) })
	ConditionalBlock(&b, func(w io.Writer) bool { return renderAccounts(w, s) })
	ConditionalBlock(&b, func(w io.Writer) bool { return renderDisclosures(w, s.Disclosures) })
	return b.String()
}

func renderTotals(w io.Writer, cur string, t budget.BudgetTotals) {
	fmt.Fprintln(w, "| | Amount |")
	fmt.Fprintln(w, "|:---|---:|")
	fmt.Fprintf(w, "| Budgeted | %s |\n", money(t.Budgeted, cur))
	fmt.Fprintf(w, "| Real | %s |\n", money(t.Real, cur))
	fmt.Fprintf(w, "| **Remaining** | **%s** |\n", signed(t.Remaining, cur))
	fmt.Fprintf(w, "| Used | %s |\n", percent(t.PercentUsed))
	fmt.Fprintf(w, "| Status | %s |\n", status(t))
	fmt.Fprintln(w)
}

func renderCounts(w io.Writer, c budget.SummaryCounts) {
	fmt.Fprintf(w, "%d transactions", c.Transactions)
	if c.Incomplete > 0 {
		fmt.Fprintf(w, ", %d without actual amount", c.Incomplete)
	}
	if c.Orphaned > 0 {
		fmt.Fprintf(w, ", %d orphaned", c.Orphaned)
	}
	if c.Excluded > 0 {
		fmt.Fprintf(w, ", %d excluded", c.Excluded)
	}
	fmt.Fprint(w, ".\n\n")
}

func renderCategories(w io.Writer, s *budget.BudgetSummary) bool {
	if len(s.Categories) == 0 {
		return false
	}
	fmt.Fprintln(w, "## Categories")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "| Category | Target | Budgeted | Real | Remaining | Used | Status |")
	fmt.Fprintln(w, "|:---|---:|---:|---:|---:|---:|:---|")
	for _, c := range s.Categories {
		target := "-"
		if c.Target != nil {
			target = money(*c.Target, s.Currency)
		}
		name := c.Name
		if c.Orphaned {
			name += " (orphaned)"
		}
		fmt.Fprintf(w, "| %s | %s | %s | %s | %s | %s | %s |\n",
			name, target,
			money(c.Totals.Budgeted, s.Currency),
			money(c.Totals.Real, s.Currency),
			signed(c.Totals.Remaining, s.Currency),
			percent(c.Totals.PercentUsed),
			status(c.Totals),
		)
	}
	fmt.Fprintln(w)
	return true
}

func renderAccounts(w io.Writer, s *budget.BudgetSummary) bool {
	if len(s.Accounts) == 0 {
		return false
	}
	fmt.Fprintln(w, "## Accounts")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "| Account | Kind | Transactions | Budgeted | Real |")
	fmt.Fprintln(w, "|:---|:---|---:|---:|---:|")
	for _, a := range s.Accounts {
		name := a.Name
		if a.Orphaned {
			name += " (orphaned)"
		}
		fmt.Fprintf(w, "| %s | %s | %d | %s | %s |\n",
			name, a.Kind, a.Transactions,
			money(a.Totals.Budgeted, s.Currency),
			money(a.Totals.Real, s.Currency),
		)
	}
	fmt.Fprintln(w)
	return true
}

func renderDisclosures(w io.Writer, ds []budget.Disclosure) bool {
	if len(ds) == 0 {
		return false
	}
	fmt.Fprintln(w, "## Excluded from the totals")
	fmt.Fprintln(w)
	for _, d := range ds {
		id := d.TransactionID
		if id == "" {
			id = "series " + d.SeriesID
		}
		fmt.Fprintf(w, "* %s `%s`: %s\n", d.Date, id, d.Reason)
	}
	fmt.Fprintln(w)
	return true
}
