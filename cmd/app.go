// Package cmd implements the CLI application to manage a budget ledger.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/budget"
	"github.com/etnz/budget/date"
	"github.com/etnz/budget/logger"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&initCmd{}, "ledger")
	c.Register(&accountCmd{}, "ledger")
	c.Register(&categoryCmd{}, "ledger")
	c.Register(&rateCmd{}, "ledger")

	c.Register(&txCmd{}, "transactions")
	c.Register(&actualCmd{}, "transactions")
	c.Register(&materializeCmd{}, "transactions")

	c.Register(&summaryCmd{}, "reports")
	c.Register(&forecastCmd{}, "reports")
	c.Register(&simCmd{}, "reports")
	c.Register(&explainCmd{}, "reports")

	c.Register(&backupCmd{}, "storage")
	c.Register(&restoreCmd{}, "storage")

	c.Register(&topicCmd{}, "help")
}

// Init starts the logger of the configured environment.
func Init() { logger.Init(config.Env) }

// clock gives the current time and day to the commands.
var clock date.Clock = date.SystemClock{}

// out receives the command outputs.
var out io.Writer = os.Stdout

// store returns the file store of the configured folder.
func store() *budget.FileStore {
	s := budget.NewFileStore(config.Dir)
	s.Clock = clock
	return s
}

// openLedger loads the configured ledger.
func openLedger() (*budget.Ledger, error) {
	s := store()
	if !s.Exists(config.Ledger) {
		return nil, fmt.Errorf("ledger %q does not exist in %q, create it with 'bgt init': %w", config.Ledger, config.Dir, fs.ErrNotExist)
	}
	l, err := s.Load(config.Ledger)
	if err != nil {
		return nil, err
	}
	if config.FXTolerance > 0 {
		l.Rates.Tolerance = config.FXTolerance
	}
	logger.Get().Debugw("ledger loaded", "ledger", config.Ledger, "transactions", l.Len())
	return l, nil
}

// saveLedger saves the configured ledger.
func saveLedger(l *budget.Ledger) error {
	if err := store().Save(config.Ledger, l); err != nil {
		return err
	}
	logger.Get().Debugw("ledger saved", "ledger", config.Ledger, "transactions", l.Len())
	return nil
}

// update loads the ledger, calls change, and saves the ledger if change succeeds.
func update(change func(l *budget.Ledger) error) subcommands.ExitStatus {
	l, err := openLedger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := change(l); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return exitStatus(err)
	}
	if err := saveLedger(l); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving ledger %q: %v\n", config.Ledger, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// report loads the ledger and prints the markdown returned by render.
func report(render func(l *budget.Ledger) (string, error)) subcommands.ExitStatus {
	l, err := openLedger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	md, err := render(l)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return exitStatus(err)
	}
	printMarkdown(md)
	return subcommands.ExitSuccess
}

// exitStatus reports invalid input as a usage error.
func exitStatus(err error) subcommands.ExitStatus {
	if errors.Is(err, budget.ErrInvalidInput) {
		return subcommands.ExitUsageError
	}
	return subcommands.ExitFailure
}

// renderMarkdown formats markdown for the terminal, unless raw output is requested.
func renderMarkdown(md string) string {
	if config.Raw {
		return md
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		return md
	}
	s, err := r.Render(md)
	if err != nil {
		return md
	}
	return s
}

func printMarkdown(md string) { fmt.Fprint(out, renderMarkdown(md)) }

// resolveTx finds the transaction whose id is ref, or ends with ref.
func resolveTx(l *budget.Ledger, ref string) (budget.Transaction, error) {
	if ref == "" {
		return budget.Transaction{}, budget.Errorf(budget.ErrInvalidInput, "transaction id is missing")
	}
	if tx, ok := l.Transaction(ref); ok {
		return tx, nil
	}
	var found []budget.Transaction
	for _, tx := range l.Transactions() {
		if strings.HasSuffix(tx.ID, ref) {
			found = append(found, tx)
		}
	}
	switch len(found) {
	case 0:
		return budget.Transaction{}, budget.Errorf(budget.ErrNotFound, "transaction %q not found", ref)
	case 1:
		return found[0], nil
	default:
		return budget.Transaction{}, budget.Errorf(budget.ErrInvalidInput, "%q matches %d transactions", ref, len(found))
	}
}

// resolveAccount finds an account by name or id.
func resolveAccount(l *budget.Ledger, ref string) (budget.Account, error) {
	if a, ok := l.AccountByName(ref); ok {
		return a, nil
	}
	if a, ok := l.Account(ref); ok {
		return a, nil
	}
	return budget.Account{}, budget.Errorf(budget.ErrNotFound, "account %q not found", ref)
}

// resolveCategory finds a category by name or id.
func resolveCategory(l *budget.Ledger, ref string) (budget.Category, error) {
	if c, ok := l.CategoryByName(ref); ok {
		return c, nil
	}
	if c, ok := l.Category(ref); ok {
		return c, nil
	}
	return budget.Category{}, budget.Errorf(budget.ErrNotFound, "category %q not found", ref)
}

// parseDay parses a date flag, empty meaning today.
func parseDay(s string) (date.Date, error) {
	if s == "" {
		return clock.Today(), nil
	}
	d, err := date.Parse(s)
	if err != nil {
		return date.Date{}, budget.Wrap(budget.ErrInvalidInput, err)
	}
	return d, nil
}

// parseAmount parses an amount flag.
func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, budget.Errorf(budget.ErrInvalidInput, "invalid amount %q", s)
	}
	return d, nil
}

// windowFlags selects a window: the budget window containing a day, or an explicit range.
type windowFlags struct {
	day, start, end string
}

func (w *windowFlags) set(f interface {
	StringVar(p *string, name, value, usage string)
}) {
	f.StringVar(&w.day, "d", "", "Reference date, defaults to today. Without -s, the budget window containing it is used.")
	f.StringVar(&w.start, "s", "", "First day of a custom window.")
	f.StringVar(&w.end, "e", "", "Day after the last day of a custom window. Defaults to one budget period after -s.")
}

// window returns the selected window and the reference date.
func (w *windowFlags) window(l *budget.Ledger) (date.Window, date.Date, error) {
	ref, err := parseDay(w.day)
	if err != nil {
		return date.Window{}, ref, err
	}
	if w.start == "" {
		if w.end != "" {
			return date.Window{}, ref, budget.Errorf(budget.ErrInvalidInput, "-e requires -s")
		}
		return l.WindowContaining(ref), ref, nil
	}
	start, err := parseDay(w.start)
	if err != nil {
		return date.Window{}, ref, err
	}
	end := l.BudgetPeriod.Next(start)
	if w.end != "" {
		if end, err = parseDay(w.end); err != nil {
			return date.Window{}, ref, err
		}
	}
	win, err := date.NewWindow(start, end)
	if err != nil {
		return date.Window{}, ref, budget.Wrap(budget.ErrInvalidInput, err)
	}
	return win, ref, nil
}
