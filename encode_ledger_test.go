package budget

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/etnz/budget/date"
	"github.com/google/go-cmp/cmp"
)

// fullLedger returns a ledger using every kind of record.
func fullLedger(t *testing.T) *testLedger {
	t.Helper()
	l := newTestLedger(t, date.Every(date.Monthly))
	if _, err := l.AddCategory(Category{
		Name:     "Restaurants",
		ParentID: &l.food.ID,
		Budget:   &CategoryBudget{Amount: dec("60"), Period: date.Every(date.Weekly), ReferenceDate: ptr(day("2025-01-03"))},
	}); err != nil {
		t.Fatal(err)
	}
	if err := l.Rates.Add(Rate{From: "EUR", To: "USD", Date: day("2025-01-02"), Rate: dec("1.03"), Source: "ecb"}); err != nil {
		t.Fatal(err)
	}
	rent := l.add(t, l.landlord, l.housing, "2025-01-01", "1500", &Recurrence{
		Interval:   date.Every(date.Monthly),
		End:        EndAfterOccurrences{Count: 12},
		Exceptions: []date.Date{day("2025-03-01")},
	})
	l.add(t, l.grocer, l.food, "2025-01-06", "80", &Recurrence{
		Interval: date.Interval{Every: 2, Unit: date.Weekly},
		Mode:     AfterLastPerformed,
		End:      EndOnDate{Date: day("2025-12-31")},
	})
	if _, err := l.AddTransaction(Transaction{
		From:           l.bank.ID,
		To:             l.grocer.ID,
		ScheduledDate:  day("2025-01-12"),
		BudgetedAmount: dec("40"),
		Currency:       "EUR",
		Memo:           "market in Lyon",
	}); err != nil {
		t.Fatal(err)
	}
	l.MaterializeDue(day("2025-02-15"))
	if _, err := l.RecordActual(rent.ID, day("2025-01-02"), dec("1500")); err != nil {
		t.Fatal(err)
	}
	if _, err := l.CreateSimulation("raise", "rent goes up", now); err != nil {
		t.Fatal(err)
	}
	if _, err := l.AddSimulationChange("raise", ModifyTransaction{ID: rent.ID, Patch: TransactionPatch{
		BudgetedAmount: Set(dec("1600")),
		Memo:           Clear[string](),
	}}, now); err != nil {
		t.Fatal(err)
	}
	return l
}

func TestEncodeLedger(t *testing.T) {
	l := fullLedger(t)
	var first bytes.Buffer
	if err := EncodeLedger(&first, l.Ledger); err != nil {
		t.Fatalf("EncodeLedger() failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(first.String()), "\n")
	if !strings.HasPrefix(lines[0], `{"record":"ledger"`) {
		t.Errorf("first line = %s, want the ledger record", lines[0])
	}
	// 1 header, 4 accounts, 4 categories, 1 rate, the transactions, 1 simulation.
	if want := 1 + 4 + 4 + 1 + l.Len() + 1; len(lines) != want {
		t.Errorf("EncodeLedger() wrote %d lines, want %d", len(lines), want)
	}

	decoded, err := DecodeLedger(bytes.NewReader(first.Bytes()))
	if err != nil {
		t.Fatalf("DecodeLedger() failed: %v", err)
	}
	var second bytes.Buffer
	if err := EncodeLedger(&second, decoded); err != nil {
		t.Fatalf("EncodeLedger(decoded) failed: %v", err)
	}
	if diff := cmp.Diff(first.String(), second.String()); diff != "" {
		t.Errorf("encode/decode is not stable (-first +second):\n%s", diff)
	}

	before, err := l.Summarize(l.WindowContaining(day("2025-01-01")), day("2025-02-15"))
	if err != nil {
		t.Fatal(err)
	}
	after, err := decoded.Summarize(decoded.WindowContaining(day("2025-01-01")), day("2025-02-15"))
	if err != nil {
		t.Fatal(err)
	}
	if !before.Totals.Budgeted.Equal(after.Totals.Budgeted) || before.Counts != after.Counts {
		t.Errorf("decoded summary = %+v, want %+v", after.Totals, before.Totals)
	}
}

// Encoding and summarizing only read the ledger, so they can share it.
func TestEncodeLedgerConcurrentReaders(t *testing.T) {
	l := fullLedger(t)
	var want bytes.Buffer
	if err := EncodeLedger(&want, l.Ledger); err != nil {
		t.Fatalf("EncodeLedger() failed: %v", err)
	}

	const readers = 4
	got := make([]bytes.Buffer, readers)
	errs := make([]error, readers)
	var wg sync.WaitGroup
	for i := range readers {
		wg.Add(2)
		go func() {
			defer wg.Done()
			errs[i] = EncodeLedger(&got[i], l.Ledger)
		}()
		go func() {
			defer wg.Done()
			ref := day("2025-03-15")
			l.Summarize(l.WindowContaining(ref), ref)
		}()
	}
	wg.Wait()

	for i := range readers {
		if errs[i] != nil {
			t.Errorf("EncodeLedger() #%d failed: %v", i, errs[i])
			continue
		}
		if diff := cmp.Diff(want.String(), got[i].String()); diff != "" {
			t.Errorf("EncodeLedger() #%d mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestDecodeLedger(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name: "backup header is skipped",
			input: `{"record":"backup","ledger":"home","created_at":"2025-01-01T09:00:00Z"}
{"record":"ledger","id":"l1","name":"home","base_currency":"USD","budget_period":"1m","created_at":"2025-01-01T09:00:00Z","valuation":"transaction-date","fx_tolerance":7}

{"record":"account","id":"a1","name":"Checking","kind":"bank","currency":"USD"}
`,
		},
		{
			name:    "missing header",
			input:   `{"record":"account","id":"a1","name":"Checking","kind":"bank","currency":"USD"}`,
			wantErr: true,
		},
		{
			name: "duplicate header",
			input: `{"record":"ledger","id":"l1","name":"home","base_currency":"USD","budget_period":"1m"}
{"record":"ledger","id":"l2","name":"home","base_currency":"USD","budget_period":"1m"}`,
			wantErr: true,
		},
		{
			name: "unknown record",
			input: `{"record":"ledger","id":"l1","name":"home","base_currency":"USD","budget_period":"1m"}
{"record":"buy","security":"AAPL"}`,
			wantErr: true,
		},
		{
			name:    "empty",
			input:   ``,
			wantErr: true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			l, err := DecodeLedger(strings.NewReader(tc.input))
			if (err != nil) != tc.wantErr {
				t.Fatalf("DecodeLedger() error = %v, wantErr %v", err, tc.wantErr)
			}
			if err != nil {
				return
			}
			if l.Name != "home" || l.BaseCurrency != "USD" || l.BudgetPeriod != date.Every(date.Monthly) {
				t.Errorf("DecodeLedger() = %+v, want the home ledger", l)
			}
			if _, ok := l.AccountByName("Checking"); !ok {
				t.Error("account Checking missing")
			}
		})
	}
}
