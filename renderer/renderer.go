// Package renderer formats budget reports as markdown.
package renderer

import (
	"github.com/etnz/budget"
	"github.com/shopspring/decimal"
)

func money(d decimal.Decimal, cur string) string { return budget.M(d, cur).String() }

func signed(d decimal.Decimal, cur string) string { return budget.M(d, cur).SignedString() }

func percent(p *decimal.Decimal) string {
	if p == nil {
		return "-"
	}
	return p.StringFixed(1) + "%"
}

// status flags the statuses that need attention.
func status(t budget.BudgetTotals) string {
	switch t.Status {
	case budget.OverBudget:
		return "**" + t.Status.String() + "**"
	case budget.Incomplete:
		return "*" + t.Status.String() + "*"
	default:
		return t.Status.String()
	}
}
