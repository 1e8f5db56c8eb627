package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/budget/agent"
	"github.com/etnz/budget/logger"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

type explainCmd struct {
	day  string
	chat bool
}

func (*explainCmd) Name() string     { return "explain" }
func (*explainCmd) Synopsis() string { return "ask a Gemini model about the budget" }
func (*explainCmd) Usage() string {
	return `bgt explain [-d <date>] [-chat] [<question>...]

  Asks a Gemini model to comment the budget window containing the date, or to
  answer a question. With -chat, keeps reading questions until "bye".
  Needs a GEMINI_API_KEY or GOOGLE_API_KEY variable.
`
}

func (c *explainCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.day, "d", "", "Reference date, defaults to today.")
	f.BoolVar(&c.chat, "chat", false, "Keep asking questions.")
}

func (c *explainCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	l, err := openLedger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	today, err := parseDay(c.day)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}
	question := strings.Join(f.Args(), " ")
	if question == "" {
		question = fmt.Sprintf("Explain the budget window containing %s: what is over budget, what is left to pay.", today)
	}

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}
	logger.Get().Debugw("explain started", "model", config.Model, "ledger", config.Ledger, "date", today.String())

	a := agent.New(out, os.Stdin, agent.NewAdvisor(config.Model, l, today))
	a.Render = renderMarkdown
	if err := a.Run(ctx, client, c.chat, question); err != nil {
		fmt.Fprintln(os.Stderr, "Agent failed:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
