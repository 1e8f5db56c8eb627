package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/budget"
	"github.com/google/subcommands"
)

// accountCmd is a container for account subcommands
type accountCmd struct{}

func (*accountCmd) Name() string     { return "account" }
func (*accountCmd) Synopsis() string { return "manage the accounts of the ledger" }
func (*accountCmd) Usage() string {
	return `bgt account <subcommand> [args]

Commands:
  add  - Add an account.
  list - List the accounts.
  rm   - Remove an account no transaction uses.
`
}

func (c *accountCmd) SetFlags(f *flag.FlagSet) {}
func (c *accountCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	commander := subcommands.NewCommander(f, "account")
	commander.Register(&accountAddCmd{}, "")
	commander.Register(&accountListCmd{}, "")
	commander.Register(&accountRmCmd{}, "")
	return commander.Execute(ctx, args...)
}

type accountAddCmd struct {
	kind     string
	currency string
	opening  string
}

func (*accountAddCmd) Name() string     { return "add" }
func (*accountAddCmd) Synopsis() string { return "add an account" }
func (*accountAddCmd) Usage() string {
	return `bgt account add -kind bank|cash|savings|expense|income [-currency <code>] [-opening <amount>] <name>
`
}

func (c *accountAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.kind, "kind", "bank", "Account kind: bank, cash, savings, expense or income.")
	f.StringVar(&c.currency, "currency", "", "Account currency, defaults to the ledger one.")
	f.StringVar(&c.opening, "opening", "", "Opening balance.")
}

func (c *accountAddCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: account add takes exactly one name")
		return subcommands.ExitUsageError
	}
	kind, err := budget.ParseAccountKind(c.kind)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}
	a := budget.NewAccount(f.Arg(0), kind, c.currency)
	if c.opening != "" {
		opening, err := parseAmount(c.opening)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return subcommands.ExitUsageError
		}
		a.OpeningBalance = &opening
	}
	return update(func(l *budget.Ledger) error {
		a, err := l.AddAccount(a)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Account %q added.\n", a.Name)
		return nil
	})
}

type accountListCmd struct{}

func (*accountListCmd) Name() string             { return "list" }
func (*accountListCmd) Synopsis() string         { return "list the accounts" }
func (*accountListCmd) Usage() string            { return "bgt account list\n" }
func (*accountListCmd) SetFlags(f *flag.FlagSet) {}

func (c *accountListCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return report(func(l *budget.Ledger) (string, error) {
		var b strings.Builder
		fmt.Fprintln(&b, "| Account | Kind | Currency | Opening |")
		fmt.Fprintln(&b, "|:---|:---|:---|---:|")
		for a := range l.Accounts() {
			cur := a.Currency
			if cur == "" {
				cur = l.BaseCurrency
			}
			opening := "-"
			if a.OpeningBalance != nil {
				opening = budget.M(*a.OpeningBalance, cur).String()
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", a.Name, a.Kind, cur, opening)
		}
		return b.String(), nil
	})
}

type accountRmCmd struct{}

func (*accountRmCmd) Name() string             { return "rm" }
func (*accountRmCmd) Synopsis() string         { return "remove an account" }
func (*accountRmCmd) Usage() string            { return "bgt account rm <name>\n" }
func (*accountRmCmd) SetFlags(f *flag.FlagSet) {}

func (c *accountRmCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: account rm takes exactly one name")
		return subcommands.ExitUsageError
	}
	return update(func(l *budget.Ledger) error {
		a, err := resolveAccount(l, f.Arg(0))
		if err != nil {
			return err
		}
		return l.RemoveAccount(a.ID)
	})
}
