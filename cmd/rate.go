package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/budget"
	"github.com/etnz/budget/logger"
	"github.com/google/subcommands"
)

// rateCmd is a container for exchange rate subcommands
type rateCmd struct{}

func (*rateCmd) Name() string     { return "rate" }
func (*rateCmd) Synopsis() string { return "manage the exchange rates of the ledger" }
func (*rateCmd) Usage() string {
	return `bgt rate <subcommand> [args]

Commands:
  add    - Add an exchange rate.
  import - Import exchange rates from a JSON document.
  list   - List the exchange rates.
`
}

func (c *rateCmd) SetFlags(f *flag.FlagSet) {}
func (c *rateCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	commander := subcommands.NewCommander(f, "rate")
	commander.Register(&rateAddCmd{}, "")
	commander.Register(&rateImportCmd{}, "")
	commander.Register(&rateListCmd{}, "")
	return commander.Execute(ctx, args...)
}

type rateAddCmd struct {
	from, to, day, rate, source string
}

func (*rateAddCmd) Name() string     { return "add" }
func (*rateAddCmd) Synopsis() string { return "add an exchange rate" }
func (*rateAddCmd) Usage() string {
	return `bgt rate add -from <code> -to <code> [-d <date>] -rate <rate> [-source <text>]

  Records the price of one unit of -from in -to on a date.
`
}

func (c *rateAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "Currency priced (required).")
	f.StringVar(&c.to, "to", "", "Currency of the price (required).")
	f.StringVar(&c.day, "d", "", "Date of the rate, defaults to today.")
	f.StringVar(&c.rate, "rate", "", "Price of one unit (required).")
	f.StringVar(&c.source, "source", "", "Where the rate comes from.")
}

func (c *rateAddCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.from == "" || c.to == "" || c.rate == "" {
		fmt.Fprintln(os.Stderr, "Error: -from, -to and -rate are required")
		return subcommands.ExitUsageError
	}
	return update(func(l *budget.Ledger) error {
		day, err := parseDay(c.day)
		if err != nil {
			return err
		}
		value, err := parseAmount(c.rate)
		if err != nil {
			return err
		}
		return l.Rates.Add(budget.Rate{From: c.from, To: c.to, Date: day, Rate: value, Source: c.source})
	})
}

type rateImportCmd struct {
	from, to, path, source string
}

func (*rateImportCmd) Name() string     { return "import" }
func (*rateImportCmd) Synopsis() string { return "import exchange rates from a JSON document" }
func (*rateImportCmd) Usage() string {
	return `bgt rate import -from <code> -to <code> [-path <jsonpath>] [-source <text>] <file or url>

  Reads a JSON document, from a file or an http(s) URL fetched at most once a day, and adds the rates selected by a JSONPath expression.
  The selection is a list of objects with a "date" and a "rate" (or "close", or
  "value") field, or an object mapping dates to rates.
`
}

func (c *rateImportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "Currency priced (required).")
	f.StringVar(&c.to, "to", "", "Currency of the price (required).")
	f.StringVar(&c.path, "path", "$", "JSONPath expression selecting the rates.")
	f.StringVar(&c.source, "source", "", "Where the rates come from, defaults to the file name.")
}

func (c *rateImportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 || c.from == "" || c.to == "" {
		fmt.Fprintln(os.Stderr, "Error: rate import takes -from, -to and exactly one file")
		return subcommands.ExitUsageError
	}
	source := c.source
	if source == "" {
		source = filepath.Base(f.Arg(0))
	}
	return update(func(l *budget.Ledger) error {
		r, err := budget.RateSource{Clock: clock}.Open(ctx, f.Arg(0))
		if err != nil {
			return err
		}
		defer r.Close()
		n, err := l.Rates.ImportRates(r, c.path, c.from, c.to, source)
		if err != nil {
			logger.Get().Warnw("rate import failed", "file", f.Arg(0), "path", c.path, "error", err)
			return err
		}
		logger.Get().Infow("rates imported", "file", f.Arg(0), "pair", c.from+"/"+c.to, "count", n)
		fmt.Fprintf(out, "%d rates imported.\n", n)
		return nil
	})
}

type rateListCmd struct{}

func (*rateListCmd) Name() string             { return "list" }
func (*rateListCmd) Synopsis() string         { return "list the exchange rates" }
func (*rateListCmd) Usage() string            { return "bgt rate list\n" }
func (*rateListCmd) SetFlags(f *flag.FlagSet) {}

func (c *rateListCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return report(func(l *budget.Ledger) (string, error) {
		if l.Rates.Len() == 0 {
			return "No exchange rate.\n", nil
		}
		var b strings.Builder
		fmt.Fprintf(&b, "Rates are used up to %d days after their date.\n\n", l.Rates.Tolerance)
		fmt.Fprintln(&b, "| Date | Pair | Rate | Source |")
		fmt.Fprintln(&b, "|:---|:---|---:|:---|")
		for r := range l.Rates.Rates() {
			fmt.Fprintf(&b, "| %s | %s/%s | %s | %s |\n", r.Date, r.From, r.To, r.Rate, r.Source)
		}
		return b.String(), nil
	})
}
