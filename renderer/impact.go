package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/budget"
)

// ImpactMarkdown renders the budget impact of a simulation side by side with
// the base summary.
func ImpactMarkdown(i *budget.SimulationBudgetImpact) string {
	var b strings.Builder
	base, sim := i.Base, i.Simulated
	cur := base.Currency
	fmt.Fprintf(&b, "# Simulation %s on %s\n\n", i.Simulation, base.Window.Identifier())

	fmt.Fprintln(&b, "| | Base | Simulated | Delta |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|")
	fmt.Fprintf(&b, "| Budgeted | %s | %s | %s |\n", money(base.Totals.Budgeted, cur), money(sim.Totals.Budgeted, cur), signed(i.Delta.Budgeted, cur))
	fmt.Fprintf(&b, "| Real | %s | %s | %s |\n", money(base.Totals.Real, cur), money(sim.Totals.Real, cur), signed(i.Delta.Real, cur))
	fmt.Fprintf(&b, "| **Remaining** | **%s** | **%s** | **%s** |\n", signed(base.Totals.Remaining, cur), signed(sim.Totals.Remaining, cur), signed(i.Delta.Remaining, cur))
	fmt.Fprintf(&b, "| Status | %s | %s | |\n", status(base.Totals), status(sim.Totals))
	fmt.Fprintln(&b)

	// categories whose totals change
	before := make(map[string]budget.BudgetTotals)
	for _, c := range base.Categories {
		before[c.CategoryID] = c.Totals
	}
	var rows []string
	for _, c := range sim.Categories {
		d := budget.Delta(before[c.CategoryID], c.Totals)
		delete(before, c.CategoryID)
		if d.IsZero() {
			continue
		}
		rows = append(rows, fmt.Sprintf("| %s | %s | %s |", c.Name, signed(d.Budgeted, cur), signed(d.Real, cur)))
	}
	for _, c := range base.Categories {
		if t, ok := before[c.CategoryID]; ok {
			d := budget.Delta(t, budget.BudgetTotals{})
			if !d.IsZero() {
				rows = append(rows, fmt.Sprintf("| %s | %s | %s |", c.Name, signed(d.Budgeted, cur), signed(d.Real, cur)))
			}
		}
	}
	if len(rows) > 0 {
		fmt.Fprint(&b, "## Changed categories\n\n")
		fmt.Fprintln(&b, "| Category | Budgeted | Real |")
		fmt.Fprintln(&b, "|:---|---:|---:|")
		for _, r := range rows {
			fmt.Fprintln(&b, r)
		}
		fmt.Fprintln(&b)
	}
	return b.String()
}
