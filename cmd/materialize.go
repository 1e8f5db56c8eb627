package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/budget"
	"github.com/etnz/budget/logger"
	"github.com/google/subcommands"
)

type materializeCmd struct{ day string }

func (*materializeCmd) Name() string     { return "materialize" }
func (*materializeCmd) Synopsis() string { return "create the occurrences due of recurring transactions" }
func (*materializeCmd) Usage() string {
	return `bgt materialize [-d <date>]

  Creates every occurrence of the active series scheduled on or before the date.
  Running it twice creates nothing new.
`
}

func (c *materializeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.day, "d", "", "Reference date, defaults to today.")
}

func (c *materializeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return update(func(l *budget.Ledger) error {
		ref, err := parseDay(c.day)
		if err != nil {
			return err
		}
		n := l.MaterializeDue(ref)
		logger.Get().Infow("occurrences materialized", "ledger", config.Ledger, "date", ref.String(), "count", n)
		fmt.Fprintf(out, "%d occurrences created.\n", n)
		return nil
	})
}
