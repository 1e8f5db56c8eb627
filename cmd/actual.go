package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/budget"
	"github.com/etnz/budget/renderer"
	"github.com/google/subcommands"
)

type actualCmd struct {
	day    string
	amount string
	missed bool
}

func (*actualCmd) Name() string     { return "actual" }
func (*actualCmd) Synopsis() string { return "record the actual amount of a transaction" }
func (*actualCmd) Usage() string {
	return `bgt actual [-d <date>] -amount <amount> <id>
bgt actual -missed <id>

  Records when and how much a transaction was actually paid, or that it did not happen.
`
}

func (c *actualCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.day, "d", "", "Actual date, defaults to today.")
	f.StringVar(&c.amount, "amount", "", "Actual amount.")
	f.BoolVar(&c.missed, "missed", false, "Mark the transaction as missed.")
}

func (c *actualCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: actual takes exactly one transaction id")
		return subcommands.ExitUsageError
	}
	if c.missed == (c.amount != "") {
		fmt.Fprintln(os.Stderr, "Error: either -amount or -missed is required")
		return subcommands.ExitUsageError
	}
	return update(func(l *budget.Ledger) error {
		tx, err := resolveTx(l, f.Arg(0))
		if err != nil {
			return err
		}
		if c.missed {
			tx, err = l.MarkMissed(tx.ID)
		} else {
			tx, err = c.record(l, tx.ID)
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(out, renderer.Transaction(l, tx))
		return nil
	})
}

func (c *actualCmd) record(l *budget.Ledger, id string) (budget.Transaction, error) {
	day, err := parseDay(c.day)
	if err != nil {
		return budget.Transaction{}, err
	}
	amount, err := parseAmount(c.amount)
	if err != nil {
		return budget.Transaction{}, err
	}
	return l.RecordActual(id, day, amount)
}
