package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/budget"
	"github.com/etnz/budget/date"
	"github.com/google/subcommands"
)

type initCmd struct {
	currency  string
	period    string
	valuation string
}

func (*initCmd) Name() string     { return "init" }
func (*initCmd) Synopsis() string { return "create a new ledger" }
func (*initCmd) Usage() string {
	return `bgt init [-currency <code>] [-period <interval>] [-valuation transaction-date|report-date] [<name>]

  Creates an empty ledger in the file selected by -dir and -ledger.
  The name defaults to the -ledger value.
`
}

func (c *initCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "currency", "EUR", "Base currency of the ledger.")
	f.StringVar(&c.period, "period", "1m", "Budget period: 1w, 2w, 1m, 1y...")
	f.StringVar(&c.valuation, "valuation", "transaction-date", "Rate date of foreign amounts: transaction-date or report-date.")
}

func (c *initCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "Error: init takes at most one name")
		return subcommands.ExitUsageError
	}
	name := config.Ledger
	if f.NArg() == 1 {
		name = f.Arg(0)
	}
	s := store()
	if s.Exists(config.Ledger) {
		fmt.Fprintf(os.Stderr, "Error: ledger %q already exists in %q\n", config.Ledger, config.Dir)
		return subcommands.ExitFailure
	}
	period, err := date.ParseInterval(c.period)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}
	valuation, err := budget.ParseValuationPolicy(c.valuation)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}
	l, err := budget.NewLedger(name, c.currency, period, clock.Now())
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return exitStatus(err)
	}
	l.Valuation = valuation
	if err := saveLedger(l); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(out, "Ledger %q created: %s, %s windows.\n", name, l.BaseCurrency, l.BudgetPeriod)
	return subcommands.ExitSuccess
}
