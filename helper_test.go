package budget

import (
	"testing"
	"time"

	"github.com/etnz/budget/date"
	"github.com/shopspring/decimal"
)

// now is the creation time of test ledgers.
var now = time.Date(2025, time.January, 1, 9, 0, 0, 0, time.UTC)

// day is a shorthand for date.MustParse.
func day(s string) date.Date { return date.MustParse(s) }

// dec is a shorthand for a decimal from a literal.
func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

// testLedger is a USD ledger with a bank, a landlord, a grocer and an
// employer account, and housing, food and salary categories.
type testLedger struct {
	*Ledger
	bank, landlord, grocer, employer Account
	housing, food, salary            Category
}

func newTestLedger(t *testing.T, period date.Interval) *testLedger {
	t.Helper()
	l, err := NewLedger("test", "USD", period, now)
	if err != nil {
		t.Fatalf("NewLedger() failed: %v", err)
	}
	tl := &testLedger{Ledger: l}
	mustAccount := func(name string, kind AccountKind) Account {
		a, err := l.AddAccount(Account{Name: name, Kind: kind})
		if err != nil {
			t.Fatalf("AddAccount(%q) failed: %v", name, err)
		}
		return a
	}
	mustCategory := func(name string, kind CategoryKind) Category {
		c, err := l.AddCategory(Category{Name: name, Kind: kind})
		if err != nil {
			t.Fatalf("AddCategory(%q) failed: %v", name, err)
		}
		return c
	}
	tl.bank = mustAccount("Checking", Bank)
	tl.landlord = mustAccount("Landlord", Expense)
	tl.grocer = mustAccount("Grocer", Expense)
	tl.employer = mustAccount("Employer", Income)
	tl.housing = mustCategory("Housing", ExpenseCategory)
	tl.food = mustCategory("Food", ExpenseCategory)
	tl.salary = mustCategory("Salary", IncomeCategory)
	return tl
}

// add adds a transaction from the bank to an account and fails the test on error.
func (tl *testLedger) add(t *testing.T, to Account, cat Category, on string, amount string, rec *Recurrence) Transaction {
	t.Helper()
	tx, err := tl.AddTransaction(Transaction{
		From:           tl.bank.ID,
		To:             to.ID,
		CategoryID:     &cat.ID,
		ScheduledDate:  day(on),
		BudgetedAmount: dec(amount),
		Recurrence:     rec,
	})
	if err != nil {
		t.Fatalf("AddTransaction() failed: %v", err)
	}
	return tx
}

// every returns a recurrence repeating every n units.
func every(n int, unit date.Unit) *Recurrence {
	return &Recurrence{Interval: date.Interval{Every: n, Unit: unit}}
}
