package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/budget"
	"github.com/etnz/budget/date"
	"github.com/etnz/budget/renderer"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// txCmd is a container for transaction subcommands
type txCmd struct{}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "manage the transactions of the ledger" }
func (*txCmd) Usage() string {
	return `bgt tx <subcommand> [args]

Commands:
  add    - Add a transaction, optionally recurring.
  list   - List the transactions.
  set    - Change some fields of a transaction.
  rm     - Remove a transaction.
  pause  - Pause a recurring transaction.
  resume - Resume a paused recurring transaction.
  skip   - Skip one occurrence of a recurring transaction.
`
}

func (c *txCmd) SetFlags(f *flag.FlagSet) {}
func (c *txCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	commander := subcommands.NewCommander(f, "tx")
	commander.Register(&txAddCmd{}, "")
	commander.Register(&txListCmd{}, "")
	commander.Register(&txSetCmd{}, "")
	commander.Register(&txRmCmd{}, "")
	commander.Register(&txPauseCmd{pause: true}, "")
	commander.Register(&txPauseCmd{}, "")
	commander.Register(&txSkipCmd{}, "")
	return commander.Execute(ctx, args...)
}

// txFlags describe a new transaction.
type txFlags struct {
	from, to, category string
	day, amount        string
	currency, memo     string
	every              string
	count              int
	until              string
	afterLast          bool
}

func (c *txFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "Account the money comes from (required).")
	f.StringVar(&c.to, "to", "", "Account the money goes to (required).")
	f.StringVar(&c.category, "category", "", "Category of the transaction.")
	f.StringVar(&c.day, "d", "", "Scheduled date, defaults to today.")
	f.StringVar(&c.amount, "amount", "", "Budgeted amount (required).")
	f.StringVar(&c.currency, "currency", "", "Currency of the amount, defaults to the ledger one.")
	f.StringVar(&c.memo, "memo", "", "Free text.")
	f.StringVar(&c.every, "every", "", "Make the transaction recurring with this interval: 1w, 2w, 1m, 1y...")
	f.IntVar(&c.count, "count", 0, "Number of occurrences of a recurring transaction.")
	f.StringVar(&c.until, "until", "", "Last possible occurrence date of a recurring transaction.")
	f.BoolVar(&c.afterLast, "after-last", false, "Schedule each occurrence one interval after the last actual date.")
}

// transaction builds the transaction described by the flags.
func (c *txFlags) transaction(l *budget.Ledger) (budget.Transaction, error) {
	if c.from == "" || c.to == "" || c.amount == "" {
		return budget.Transaction{}, budget.Errorf(budget.ErrInvalidInput, "-from, -to and -amount are required")
	}
	from, err := resolveAccount(l, c.from)
	if err != nil {
		return budget.Transaction{}, err
	}
	to, err := resolveAccount(l, c.to)
	if err != nil {
		return budget.Transaction{}, err
	}
	day, err := parseDay(c.day)
	if err != nil {
		return budget.Transaction{}, err
	}
	amount, err := parseAmount(c.amount)
	if err != nil {
		return budget.Transaction{}, err
	}
	tx := budget.Transaction{
		From:           from.ID,
		To:             to.ID,
		ScheduledDate:  day,
		BudgetedAmount: amount,
		Currency:       c.currency,
		Memo:           c.memo,
	}
	if c.category != "" {
		cat, err := resolveCategory(l, c.category)
		if err != nil {
			return budget.Transaction{}, err
		}
		tx.CategoryID = &cat.ID
	}
	if tx.Recurrence, err = c.recurrence(); err != nil {
		return budget.Transaction{}, err
	}
	return tx, nil
}

func (c *txFlags) recurrence() (*budget.Recurrence, error) {
	if c.every == "" {
		if c.count != 0 || c.until != "" || c.afterLast {
			return nil, budget.Errorf(budget.ErrInvalidInput, "-count, -until and -after-last require -every")
		}
		return nil, nil
	}
	interval, err := date.ParseInterval(c.every)
	if err != nil {
		return nil, budget.Wrap(budget.ErrInvalidInput, err)
	}
	r := &budget.Recurrence{Interval: interval, End: budget.EndNever{}}
	if c.afterLast {
		r.Mode = budget.AfterLastPerformed
	}
	switch {
	case c.count != 0 && c.until != "":
		return nil, budget.Errorf(budget.ErrInvalidInput, "-count and -until are exclusive")
	case c.count != 0:
		r.End = budget.EndAfterOccurrences{Count: c.count}
	case c.until != "":
		until, err := date.Parse(c.until)
		if err != nil {
			return nil, budget.Wrap(budget.ErrInvalidInput, err)
		}
		r.End = budget.EndOnDate{Date: until}
	}
	return r, nil
}

// patchFlags describe a change to a transaction: only the flags on the
// command line are changed, and an empty value clears the field.
type patchFlags struct {
	from, to, category string
	day, amount        string
	actual, actualDay  string
	currency, memo     string
}

func (c *patchFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "Account the money comes from.")
	f.StringVar(&c.to, "to", "", "Account the money goes to.")
	f.StringVar(&c.category, "category", "", "Category, empty to remove it.")
	f.StringVar(&c.day, "d", "", "Scheduled date.")
	f.StringVar(&c.amount, "amount", "", "Budgeted amount.")
	f.StringVar(&c.actual, "actual", "", "Actual amount, empty to remove it.")
	f.StringVar(&c.actualDay, "actual-date", "", "Actual date, empty to remove it.")
	f.StringVar(&c.currency, "currency", "", "Currency, empty for the ledger one.")
	f.StringVar(&c.memo, "memo", "", "Free text, empty to remove it.")
}

// patch builds the patch of the flags set in f.
func (c *patchFlags) patch(l *budget.Ledger, f *flag.FlagSet) (budget.TransactionPatch, error) {
	var p budget.TransactionPatch
	var errs []error
	account := func(ref string) budget.Field[string] {
		if ref == "" {
			return budget.Clear[string]()
		}
		a, err := resolveAccount(l, ref)
		errs = append(errs, err)
		return budget.Set(a.ID)
	}
	day := func(s string) budget.Field[date.Date] {
		if s == "" {
			return budget.Clear[date.Date]()
		}
		d, err := date.Parse(s)
		if err != nil {
			errs = append(errs, budget.Wrap(budget.ErrInvalidInput, err))
		}
		return budget.Set(d)
	}
	amount := func(s string) budget.Field[decimal.Decimal] {
		if s == "" {
			return budget.Clear[decimal.Decimal]()
		}
		d, err := parseAmount(s)
		errs = append(errs, err)
		return budget.Set(d)
	}
	text := func(s string) budget.Field[string] {
		if s == "" {
			return budget.Clear[string]()
		}
		return budget.Set(s)
	}
	f.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "from":
			p.From = account(c.from)
		case "to":
			p.To = account(c.to)
		case "category":
			if c.category == "" {
				p.CategoryID = budget.Clear[string]()
				break
			}
			cat, err := resolveCategory(l, c.category)
			errs = append(errs, err)
			p.CategoryID = budget.Set(cat.ID)
		case "d":
			p.ScheduledDate = day(c.day)
		case "amount":
			p.BudgetedAmount = amount(c.amount)
		case "actual":
			p.ActualAmount = amount(c.actual)
		case "actual-date":
			p.ActualDate = day(c.actualDay)
		case "currency":
			p.Currency = text(c.currency)
		case "memo":
			p.Memo = text(c.memo)
		}
	})
	for _, err := range errs {
		if err != nil {
			return p, err
		}
	}
	if p.IsEmpty() {
		return p, budget.Errorf(budget.ErrInvalidInput, "nothing to change")
	}
	return p, nil
}

type txAddCmd struct{ txFlags }

func (*txAddCmd) Name() string     { return "add" }
func (*txAddCmd) Synopsis() string { return "add a transaction" }
func (*txAddCmd) Usage() string {
	return `bgt tx add -from <account> -to <account> -amount <amount> [-d <date>] [-category <name>] [-currency <code>] [-memo <text>]
           [-every <interval> [-count <n> | -until <date>] [-after-last]]

  Adds a transaction. With -every, the transaction is the first occurrence of a series.
`
}

func (c *txAddCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "Error: tx add takes no argument")
		return subcommands.ExitUsageError
	}
	return update(func(l *budget.Ledger) error {
		tx, err := c.transaction(l)
		if err != nil {
			return err
		}
		if tx, err = l.AddTransaction(tx); err != nil {
			return err
		}
		fmt.Fprintf(out, "Added %s: %s\n", tx.ID, renderer.Transaction(l, tx))
		return nil
	})
}

type txListCmd struct{ windowFlags }

func (*txListCmd) Name() string     { return "list" }
func (*txListCmd) Synopsis() string { return "list the transactions" }
func (*txListCmd) Usage() string {
	return `bgt tx list [-d <date> | -s <date> [-e <date>]]

  Lists every transaction, or the transactions scheduled in a window.
`
}
func (c *txListCmd) SetFlags(f *flag.FlagSet) { c.windowFlags.set(f) }

func (c *txListCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return report(func(l *budget.Ledger) (string, error) {
		if c.day == "" && c.start == "" && c.end == "" {
			return renderer.TransactionsMarkdown(l, l.Transactions()), nil
		}
		w, _, err := c.window(l)
		if err != nil {
			return "", err
		}
		return renderer.TransactionsMarkdown(l, l.Transactions(budget.InWindow(w))), nil
	})
}

type txSetCmd struct{ patchFlags }

func (*txSetCmd) Name() string     { return "set" }
func (*txSetCmd) Synopsis() string { return "change some fields of a transaction" }
func (*txSetCmd) Usage() string {
	return `bgt tx set [-from -to -category -d -amount -actual -actual-date -currency -memo] <id>

  Changes the fields given on the command line. An empty value removes an optional field.
`
}

func (c *txSetCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: tx set takes exactly one transaction id")
		return subcommands.ExitUsageError
	}
	return update(func(l *budget.Ledger) error {
		p, err := c.patch(l, f)
		if err != nil {
			return err
		}
		tx, err := resolveTx(l, f.Arg(0))
		if err != nil {
			return err
		}
		if tx, err = l.ModifyTransaction(tx.ID, p); err != nil {
			return err
		}
		fmt.Fprintf(out, "Changed %s: %s\n", tx.ID, renderer.Transaction(l, tx))
		return nil
	})
}

type txRmCmd struct{}

func (*txRmCmd) Name() string             { return "rm" }
func (*txRmCmd) Synopsis() string         { return "remove a transaction" }
func (*txRmCmd) Usage() string            { return "bgt tx rm <id>\n" }
func (*txRmCmd) SetFlags(f *flag.FlagSet) {}

func (c *txRmCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: tx rm takes exactly one transaction id")
		return subcommands.ExitUsageError
	}
	return update(func(l *budget.Ledger) error {
		tx, err := resolveTx(l, f.Arg(0))
		if err != nil {
			return err
		}
		return l.RemoveTransaction(tx.ID)
	})
}

// txPauseCmd pauses, or resumes, a recurring transaction.
type txPauseCmd struct{ pause bool }

func (c *txPauseCmd) Name() string {
	if c.pause {
		return "pause"
	}
	return "resume"
}
func (c *txPauseCmd) Synopsis() string       { return c.Name() + " a recurring transaction" }
func (c *txPauseCmd) Usage() string          { return "bgt tx " + c.Name() + " <id>\n" }
func (*txPauseCmd) SetFlags(f *flag.FlagSet) {}

func (c *txPauseCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: tx %s takes exactly one transaction id\n", c.Name())
		return subcommands.ExitUsageError
	}
	return update(func(l *budget.Ledger) error {
		tx, err := resolveTx(l, f.Arg(0))
		if err != nil {
			return err
		}
		if c.pause {
			return l.PauseRecurrence(tx.ID)
		}
		return l.ResumeRecurrence(tx.ID)
	})
}

type txSkipCmd struct{ day string }

func (*txSkipCmd) Name() string     { return "skip" }
func (*txSkipCmd) Synopsis() string { return "skip one occurrence of a recurring transaction" }
func (*txSkipCmd) Usage() string    { return "bgt tx skip -d <date> <id>\n" }
func (c *txSkipCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.day, "d", "", "Date of the occurrence to skip (required).")
}

func (c *txSkipCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 || c.day == "" {
		fmt.Fprintln(os.Stderr, "Error: tx skip takes -d and exactly one transaction id")
		return subcommands.ExitUsageError
	}
	return update(func(l *budget.Ledger) error {
		tx, err := resolveTx(l, f.Arg(0))
		if err != nil {
			return err
		}
		d, err := parseDay(c.day)
		if err != nil {
			return err
		}
		return l.AddException(tx.ID, d)
	})
}
