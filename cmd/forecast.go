package cmd

import (
	"context"
	"flag"

	"github.com/etnz/budget"
	"github.com/etnz/budget/renderer"
	"github.com/google/subcommands"
)

type forecastCmd struct {
	windowFlags
	simulation string
}

func (*forecastCmd) Name() string     { return "forecast" }
func (*forecastCmd) Synopsis() string { return "occurrences of the recurring transactions in a window" }
func (*forecastCmd) Usage() string {
	return `bgt forecast [-d <date>] [-s <date> [-e <date>]] [-sim <name>]

  Lists the transactions of a window, and the occurrences every series would
  generate in it, without changing the ledger.
`
}

func (c *forecastCmd) SetFlags(f *flag.FlagSet) {
	c.windowFlags.set(f)
	f.StringVar(&c.simulation, "sim", "", "Forecast with the changes of a simulation.")
}

func (c *forecastCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return report(func(l *budget.Ledger) (string, error) {
		w, ref, err := c.window(l)
		if err != nil {
			return "", err
		}
		r, err := l.Forecast(w, ref, c.simulation)
		if err != nil {
			return "", err
		}
		return renderer.ForecastMarkdown(l, r), nil
	})
}
