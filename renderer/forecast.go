package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/etnz/budget"
)

// ForecastMarkdown renders a forecast report. Account and category ids are
// resolved against l.
func ForecastMarkdown(l *budget.Ledger, r *budget.ForecastReport) string {
	var b strings.Builder
	title := "Forecast " + r.Window.Identifier()
	if r.Simulation != "" {
		title += " with " + r.Simulation
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "*%s to %s, as of %s*\n\n", r.Window.Start(), r.Window.Last(), r.Reference)

	if len(r.Occurrences) == 0 {
		fmt.Fprint(&b, "No occurrence in this window.\n\n")
	} else {
		fmt.Fprintln(&b, "| Date | # | Kind | From | To | Category | Amount | Memo |")
		fmt.Fprintln(&b, "|:---|---:|:---|:---|:---|:---|---:|:---|")
		for _, o := range r.Occurrences {
			fmt.Fprintf(&b, "| %s | %d | %s | %s | %s | %s | %s | %s |\n",
				o.Date, o.Index, o.Kind,
				accountName(l, o.From), accountName(l, o.To), categoryName(l, o.Category),
				money(o.Amount, o.Currency), o.Memo,
			)
		}
		fmt.Fprintln(&b)
	}

	fmt.Fprintf(&b, "%d materialized, %d generated occurrences, %s budgeted.\n\n",
		r.Totals.Materialized, r.Totals.Generated, money(r.Totals.Budgeted, r.Currency))
	if r.Totals.Truncated {
		fmt.Fprint(&b, "> The forecast was truncated, use a shorter window.\n\n")
	}
	ConditionalBlock(&b, func(w io.Writer) bool { return renderDisclosures(w, r.Disclosures) })
	return b.String()
}

func accountName(l *budget.Ledger, id string) string {
	if a, ok := l.Account(id); ok {
		return a.Name
	}
	return id
}

func categoryName(l *budget.Ledger, id string) string {
	if id == "" {
		return "-"
	}
	if c, ok := l.Category(id); ok {
		return c.Name
	}
	return id
}
