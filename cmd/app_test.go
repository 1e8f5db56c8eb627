package cmd

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/etnz/budget"
	"github.com/etnz/budget/date"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// setup points the commands to an empty folder and captures their output.
func setup(t *testing.T, today string) *bytes.Buffer {
	t.Helper()
	prevConfig, prevClock, prevOut := config, clock, out
	t.Cleanup(func() { config, clock, out = prevConfig, prevClock, prevOut })

	var buf bytes.Buffer
	config = Config{Dir: t.TempDir(), Ledger: "home", Env: "development", Raw: true}
	clock = date.FixedClock{T: date.MustParse(today).Time().Add(9 * time.Hour)}
	out = &buf
	return &buf
}

// run executes the command line args like bgt would.
func run(t *testing.T, args ...string) subcommands.ExitStatus {
	t.Helper()
	f := flag.NewFlagSet("bgt", flag.ContinueOnError)
	c := subcommands.NewCommander(f, "bgt")
	Register(c)
	if err := f.Parse(args); err != nil {
		t.Fatalf("invalid command line %q: %v", args, err)
	}
	return c.Execute(context.Background())
}

func mustRun(t *testing.T, args ...string) {
	t.Helper()
	if got := run(t, args...); got != subcommands.ExitSuccess {
		t.Fatalf("bgt %s = %v, want success", strings.Join(args, " "), got)
	}
}

func load(t *testing.T) *budget.Ledger {
	t.Helper()
	l, err := store().Load(config.Ledger)
	if err != nil {
		t.Fatal(err)
	}
	return l
}

// initHome creates a ledger with a bank, a landlord and a housing category.
func initHome(t *testing.T) {
	t.Helper()
	mustRun(t, "init", "-currency", "USD", "-period", "1m", "home")
	mustRun(t, "account", "add", "-kind", "bank", "Checking")
	mustRun(t, "account", "add", "-kind", "expense", "Landlord")
	mustRun(t, "category", "add", "-kind", "expense", "Housing")
}

func TestInit(t *testing.T) {
	setup(t, "2025-01-15")
	if got := run(t, "summary"); got != subcommands.ExitFailure {
		t.Errorf("summary without ledger = %v, want failure", got)
	}
	initHome(t)
	if got := run(t, "init", "home"); got != subcommands.ExitFailure {
		t.Errorf("init twice = %v, want failure", got)
	}

	l := load(t)
	if l.Name != "home" || l.BaseCurrency != "USD" || l.BudgetPeriod != date.Every(date.Monthly) {
		t.Errorf("ledger = %q %s %s, want home USD monthly", l.Name, l.BaseCurrency, l.BudgetPeriod)
	}
	if _, ok := l.AccountByName("Landlord"); !ok {
		t.Errorf("account Landlord is missing")
	}
	if _, ok := l.CategoryByName("Housing"); !ok {
		t.Errorf("category Housing is missing")
	}
}

func TestUsageErrors(t *testing.T) {
	setup(t, "2025-01-15")
	initHome(t)
	testCases := []struct {
		name string
		args []string
	}{
		{"unknown kind", []string{"account", "add", "-kind", "stocks", "Broker"}},
		{"missing amount", []string{"tx", "add", "-from", "Checking", "-to", "Landlord"}},
		{"count without every", []string{"tx", "add", "-from", "Checking", "-to", "Landlord", "-amount", "10", "-count", "2"}},
		{"bad amount", []string{"tx", "add", "-from", "Checking", "-to", "Landlord", "-amount", "ten"}},
		{"actual and missed", []string{"actual", "-missed", "-amount", "10", "abc"}},
		{"nothing to set", []string{"tx", "set", "abc"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := run(t, tc.args...); got != subcommands.ExitUsageError {
				t.Errorf("bgt %s = %v, want a usage error", strings.Join(tc.args, " "), got)
			}
		})
	}
}

func TestRecurringTransactions(t *testing.T) {
	buf := setup(t, "2025-03-15")
	initHome(t)
	mustRun(t, "tx", "add", "-from", "Checking", "-to", "Landlord", "-category", "Housing",
		"-d", "2025-01-01", "-amount", "1500", "-every", "1m", "-count", "3")

	buf.Reset()
	mustRun(t, "materialize")
	if got := buf.String(); got != "2 occurrences created.\n" {
		t.Errorf("materialize printed %q", got)
	}
	mustRun(t, "materialize")
	l := load(t)
	if l.Len() != 3 {
		t.Fatalf("ledger has %d transactions after materializing twice, want 3", l.Len())
	}

	_, first := firstTx(l)
	mustRun(t, "actual", "-d", "2025-01-02", "-amount", "1480", first.ID[len(first.ID)-8:])
	mustRun(t, "tx", "set", "-memo", "rent", first.ID)
	l = load(t)
	tx, _ := l.Transaction(first.ID)
	if tx.ActualAmount == nil || !tx.ActualAmount.Equal(decimal.NewFromInt(1480)) || tx.Memo != "rent" {
		t.Errorf("transaction = %s actual %v memo %q, want 1480 and rent", tx.ID, tx.ActualAmount, tx.Memo)
	}
	mustRun(t, "tx", "set", "-memo", "", first.ID)
	if tx, _ := load(t).Transaction(first.ID); tx.Memo != "" {
		t.Errorf("memo = %q after clearing it", tx.Memo)
	}

	buf.Reset()
	mustRun(t, "summary", "-d", "2025-01-15")
	if got := buf.String(); !strings.Contains(got, "# Budget 2025-01") || !strings.Contains(got, "$1,480.00") {
		t.Errorf("summary misses the title or the actual amount:\n%s", got)
	}

	buf.Reset()
	mustRun(t, "tx", "list", "-s", "2025-02-01")
	if got := buf.String(); strings.Contains(got, "2025-01-01") || !strings.Contains(got, "2025-02-01") {
		t.Errorf("tx list of February:\n%s", got)
	}
}

func firstTx(l *budget.Ledger) (int, budget.Transaction) {
	for i, tx := range l.Transactions() {
		return i, tx
	}
	return -1, budget.Transaction{}
}

func TestSimulation(t *testing.T) {
	buf := setup(t, "2025-01-15")
	initHome(t)
	mustRun(t, "tx", "add", "-from", "Checking", "-to", "Landlord", "-category", "Housing", "-d", "2025-01-05", "-amount", "1500")
	mustRun(t, "sim", "new", "-notes", "if we move", "move")
	mustRun(t, "sim", "add", "-from", "Checking", "-to", "Landlord", "-category", "Housing", "-amount", "200", "-d", "2025-01-20", "move")

	buf.Reset()
	mustRun(t, "sim", "impact", "-d", "2025-01-15", "move")
	if got := buf.String(); !strings.Contains(got, "+$200.00") {
		t.Errorf("sim impact misses the delta:\n%s", got)
	}
	if l := load(t); l.Len() != 1 {
		t.Errorf("ledger has %d transactions before apply, want 1", l.Len())
	}

	mustRun(t, "sim", "apply", "move")
	if l := load(t); l.Len() != 2 {
		t.Errorf("ledger has %d transactions after apply, want 2", l.Len())
	}
	if got := run(t, "sim", "discard", "move"); got != subcommands.ExitFailure {
		t.Errorf("discarding an applied simulation = %v, want failure", got)
	}
}

func TestBackupRestore(t *testing.T) {
	buf := setup(t, "2025-01-15")
	initHome(t)
	mustRun(t, "backup", "-note", "empty")
	mustRun(t, "tx", "add", "-from", "Checking", "-to", "Landlord", "-amount", "10")

	buf.Reset()
	mustRun(t, "restore", "-list")
	const id = "20250115T090000.000000000Z"
	if got := buf.String(); !strings.Contains(got, id) || !strings.Contains(got, "empty") {
		t.Fatalf("restore -list:\n%s", got)
	}
	mustRun(t, "restore", id)
	if l := load(t); l.Len() != 0 {
		t.Errorf("restored ledger has %d transactions, want 0", l.Len())
	}
	if got := run(t, "restore", "20240101T000000.000000000Z"); got != subcommands.ExitFailure {
		t.Errorf("restoring an unknown backup = %v, want failure", got)
	}
}

func TestResolveTx(t *testing.T) {
	l, err := budget.NewLedger("home", "USD", date.Every(date.Monthly), time.Now())
	if err != nil {
		t.Fatal(err)
	}
	bank, _ := l.AddAccount(budget.NewAccount("Checking", budget.Bank, ""))
	shop, _ := l.AddAccount(budget.NewAccount("Shop", budget.Expense, ""))
	for _, id := range []string{"0000-aaa1", "0000-bbb1"} {
		if _, err := l.AddTransaction(budget.Transaction{ID: id, From: bank.ID, To: shop.ID, ScheduledDate: date.MustParse("2025-01-01"), BudgetedAmount: budget.D(1)}); err != nil {
			t.Fatal(err)
		}
	}

	testCases := []struct {
		ref     string
		want    string
		wantErr *budget.Error
	}{
		{ref: "0000-aaa1", want: "0000-aaa1"},
		{ref: "bbb1", want: "0000-bbb1"},
		{ref: "1", wantErr: budget.ErrInvalidInput},
		{ref: "ccc1", wantErr: budget.ErrNotFound},
		{ref: "", wantErr: budget.ErrInvalidInput},
	}
	for _, tc := range testCases {
		t.Run(tc.ref, func(t *testing.T) {
			tx, err := resolveTx(l, tc.ref)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Errorf("resolveTx(%q) error = %v, want %v", tc.ref, err, tc.wantErr)
				}
				return
			}
			if err != nil || tx.ID != tc.want {
				t.Errorf("resolveTx(%q) = %q, %v, want %q", tc.ref, tx.ID, err, tc.want)
			}
		})
	}
}

func TestRates(t *testing.T) {
	buf := setup(t, "2025-01-15")
	initHome(t)
	mustRun(t, "rate", "add", "-from", "EUR", "-to", "USD", "-d", "2025-01-02", "-rate", "1.03")

	file := filepath.Join(t.TempDir(), "ecb.json")
	if err := os.WriteFile(file, []byte(`{"rates": {"2025-01-03": 1.04, "2025-01-06": 1.05}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	buf.Reset()
	mustRun(t, "rate", "import", "-from", "EUR", "-to", "USD", "-path", "$.rates", file)
	if got := buf.String(); got != "2 rates imported.\n" {
		t.Errorf("rate import printed %q", got)
	}
	if got := run(t, "rate", "import", "-from", "EUR", "-to", "USD", "-path", "$.nothing", file); got != subcommands.ExitFailure {
		t.Errorf("rate import of nothing = %v, want failure", got)
	}

	l := load(t)
	if l.Rates.Len() != 3 {
		t.Errorf("ledger has %d rates, want 3", l.Rates.Len())
	}
	rate, err := l.Rates.Lookup("EUR", "USD", date.MustParse("2025-01-07"))
	if err != nil || !rate.Equal(decimal.RequireFromString("1.05")) {
		t.Errorf("EUR/USD on 2025-01-07 = %s, %v, want 1.05", rate, err)
	}
}

func TestTopic(t *testing.T) {
	buf := setup(t, "2025-01-15")
	mustRun(t, "topic", "-list")
	if got := buf.String(); !strings.Contains(got, "* `recurrence`: Recurrence\n") {
		t.Errorf("topic -list:\n%s", got)
	}
	buf.Reset()
	mustRun(t, "topic", "windows")
	if got := buf.String(); !strings.HasPrefix(got, "# Budget windows") {
		t.Errorf("topic windows:\n%s", got)
	}
	if got := run(t, "topic", "nope"); got != subcommands.ExitFailure {
		t.Errorf("topic nope = %v, want failure", got)
	}
}
