package cmd

import (
	"context"
	"encoding/json"
	"flag"

	"github.com/etnz/budget"
	"github.com/etnz/budget/renderer"
	"github.com/google/subcommands"
)

type summaryCmd struct {
	windowFlags
	json bool
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "budget summary of a window" }
func (*summaryCmd) Usage() string {
	return `bgt summary [-d <date>] [-s <date> [-e <date>]] [-json]

  Compares budgeted and actual amounts of the budget window containing the date,
  or of a custom window, with a breakdown per category and account.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	c.windowFlags.set(f)
	f.BoolVar(&c.json, "json", false, "Print the summary as JSON.")
}

func (c *summaryCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return report(func(l *budget.Ledger) (string, error) {
		w, ref, err := c.window(l)
		if err != nil {
			return "", err
		}
		s, err := l.Summarize(w, ref)
		if err != nil {
			return "", err
		}
		if c.json {
			return jsonBlock(s)
		}
		return renderer.SummaryMarkdown(s), nil
	})
}

// jsonBlock returns v as an indented JSON code block.
func jsonBlock(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	if config.Raw {
		return string(data) + "\n", nil
	}
	return "```json\n" + string(data) + "\n```\n", nil
}
