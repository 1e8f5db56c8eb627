package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/budget"
	"github.com/etnz/budget/date"
	"github.com/google/subcommands"
)

// categoryCmd is a container for category subcommands
type categoryCmd struct{}

func (*categoryCmd) Name() string     { return "category" }
func (*categoryCmd) Synopsis() string { return "manage the categories of the ledger" }
func (*categoryCmd) Usage() string {
	return `bgt category <subcommand> [args]

Commands:
  add  - Add a category.
  list - List the categories.
  rm   - Remove a category, its transactions become orphaned.
`
}

func (c *categoryCmd) SetFlags(f *flag.FlagSet) {}
func (c *categoryCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	commander := subcommands.NewCommander(f, "category")
	commander.Register(&categoryAddCmd{}, "")
	commander.Register(&categoryListCmd{}, "")
	commander.Register(&categoryRmCmd{}, "")
	return commander.Execute(ctx, args...)
}

type categoryAddCmd struct {
	kind      string
	target    string
	period    string
	reference string
	parent    string
}

func (*categoryAddCmd) Name() string     { return "add" }
func (*categoryAddCmd) Synopsis() string { return "add a category" }
func (*categoryAddCmd) Usage() string {
	return `bgt category add [-kind expense|income|transfer] [-target <amount> [-period <interval>] [-ref <date>]] [-parent <name>] <name>

  A target is an amount planned for each cycle of the category period.
`
}

func (c *categoryAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.kind, "kind", "expense", "Category kind: expense, income or transfer.")
	f.StringVar(&c.target, "target", "", "Budget target for each period.")
	f.StringVar(&c.period, "period", "", "Period of the target, defaults to the ledger budget period.")
	f.StringVar(&c.reference, "ref", "", "First day of a target cycle.")
	f.StringVar(&c.parent, "parent", "", "Parent category.")
}

func (c *categoryAddCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: category add takes exactly one name")
		return subcommands.ExitUsageError
	}
	kind, err := budget.ParseCategoryKind(c.kind)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}
	if c.target == "" && (c.period != "" || c.reference != "") {
		fmt.Fprintln(os.Stderr, "Error: -period and -ref require -target")
		return subcommands.ExitUsageError
	}
	return update(func(l *budget.Ledger) error {
		cat := budget.NewCategory(f.Arg(0), kind)
		if c.target != "" {
			b, err := c.targetBudget(l)
			if err != nil {
				return err
			}
			cat.Budget = b
		}
		if c.parent != "" {
			p, err := resolveCategory(l, c.parent)
			if err != nil {
				return err
			}
			cat.ParentID = &p.ID
		}
		cat, err := l.AddCategory(cat)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Category %q added.\n", cat.Name)
		return nil
	})
}

func (c *categoryAddCmd) targetBudget(l *budget.Ledger) (*budget.CategoryBudget, error) {
	amount, err := parseAmount(c.target)
	if err != nil {
		return nil, err
	}
	b := &budget.CategoryBudget{Amount: amount, Period: l.BudgetPeriod}
	if c.period != "" {
		if b.Period, err = date.ParseInterval(c.period); err != nil {
			return nil, budget.Wrap(budget.ErrInvalidInput, err)
		}
	}
	if c.reference != "" {
		ref, err := parseDay(c.reference)
		if err != nil {
			return nil, err
		}
		b.ReferenceDate = &ref
	}
	return b, nil
}

type categoryListCmd struct{}

func (*categoryListCmd) Name() string             { return "list" }
func (*categoryListCmd) Synopsis() string         { return "list the categories" }
func (*categoryListCmd) Usage() string            { return "bgt category list\n" }
func (*categoryListCmd) SetFlags(f *flag.FlagSet) {}

func (c *categoryListCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return report(func(l *budget.Ledger) (string, error) {
		var b strings.Builder
		fmt.Fprintln(&b, "| Category | Kind | Parent | Target |")
		fmt.Fprintln(&b, "|:---|:---|:---|---:|")
		for cat := range l.Categories() {
			parent, target := "-", "-"
			if cat.ParentID != nil {
				if p, ok := l.Category(*cat.ParentID); ok {
					parent = p.Name
				}
			}
			if cat.Budget != nil {
				target = budget.M(cat.Budget.Amount, l.BaseCurrency).String() + " " + cat.Budget.Period.String()
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", cat.Name, cat.Kind, parent, target)
		}
		return b.String(), nil
	})
}

type categoryRmCmd struct{}

func (*categoryRmCmd) Name() string             { return "rm" }
func (*categoryRmCmd) Synopsis() string         { return "remove a category" }
func (*categoryRmCmd) Usage() string            { return "bgt category rm <name>\n" }
func (*categoryRmCmd) SetFlags(f *flag.FlagSet) {}

func (c *categoryRmCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: category rm takes exactly one name")
		return subcommands.ExitUsageError
	}
	return update(func(l *budget.Ledger) error {
		cat, err := resolveCategory(l, f.Arg(0))
		if err != nil {
			return err
		}
		return l.RemoveCategory(cat.ID)
	})
}
