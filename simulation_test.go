package budget

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/etnz/budget/date"
	"github.com/etnz/budget/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newSimulation(t *testing.T, l *testLedger, name string) *Simulation {
	t.Helper()
	s, err := l.CreateSimulation(name, "what if", now)
	if err != nil {
		t.Fatalf("CreateSimulation(%q) failed: %v", name, err)
	}
	return s
}

func TestSimulationImpact(t *testing.T) {
	l := newTestLedger(t, date.Every(date.Monthly))
	newSimulation(t, l, "new tv")
	_, err := l.AddSimulationChange("new tv", AddTransaction{Transaction: Transaction{
		From:           l.bank.ID,
		To:             l.grocer.ID,
		ScheduledDate:  day("2025-01-20"),
		BudgetedAmount: dec("250"),
	}}, now)
	if err != nil {
		t.Fatalf("AddSimulationChange() failed: %v", err)
	}

	w := l.WindowContaining(day("2025-01-01"))
	impact, err := l.SimulationImpact("new tv", w, day("2025-01-01"))
	if err != nil {
		t.Fatalf("SimulationImpact() failed: %v", err)
	}
	if !impact.Base.Totals.Budgeted.IsZero() {
		t.Errorf("base budgeted = %s, want 0", impact.Base.Totals.Budgeted)
	}
	if !impact.Simulated.Totals.Budgeted.Equal(dec("250")) {
		t.Errorf("simulated budgeted = %s, want 250", impact.Simulated.Totals.Budgeted)
	}
	if !impact.Delta.Budgeted.Equal(dec("250")) {
		t.Errorf("delta budgeted = %s, want 250", impact.Delta.Budgeted)
	}
	if l.Len() != 0 {
		t.Errorf("Len() = %d after an impact, want 0", l.Len())
	}
	if _, err := json.Marshal(impact); err != nil {
		t.Errorf("Marshal(impact) failed: %v", err)
	}
}

func TestApplySimulation(t *testing.T) {
	l := newTestLedger(t, date.Every(date.Monthly))
	rent := l.add(t, l.landlord, l.housing, "2025-01-05", "1500", nil)
	food := l.add(t, l.grocer, l.food, "2025-01-10", "100", nil)
	newSimulation(t, l, "move")

	changes := []SimulationChange{
		ModifyTransaction{ID: rent.ID, Patch: TransactionPatch{BudgetedAmount: Set(dec("1800"))}},
		ExcludeTransaction{ID: food.ID},
		AddTransaction{Transaction: Transaction{From: l.bank.ID, To: l.landlord.ID, ScheduledDate: day("2025-01-15"), BudgetedAmount: dec("300")}},
	}
	var added string
	for _, c := range changes {
		got, err := l.AddSimulationChange("move", c, now)
		if err != nil {
			t.Fatalf("AddSimulationChange(%s) failed: %v", c, err)
		}
		if add, ok := got.(AddTransaction); ok {
			added = add.Transaction.ID
		}
	}
	if added == "" {
		t.Fatal("added transaction has no id")
	}

	later := now.Add(time.Hour)
	if err := l.ApplySimulation("move", later); err != nil {
		t.Fatalf("ApplySimulation() failed: %v", err)
	}
	if got, _ := l.Transaction(rent.ID); !got.BudgetedAmount.Equal(dec("1800")) {
		t.Errorf("rent = %s, want 1800", got.BudgetedAmount)
	}
	if _, ok := l.Transaction(food.ID); ok {
		t.Error("excluded transaction still in the ledger")
	}
	if got, ok := l.Transaction(added); !ok || got.Status != Planned {
		t.Errorf("added transaction = %+v, %v; want a planned transaction", got, ok)
	}
	sim, _ := l.Simulation("move")
	if sim.Status != Applied || sim.AppliedAt == nil || !sim.AppliedAt.Equal(later) {
		t.Errorf("simulation = %+v, want applied at %s", sim, later)
	}

	if err := l.ApplySimulation("move", later); !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("second ApplySimulation() error = %v, want %v", err, ErrInvalidOperation)
	}
	if _, err := l.AddSimulationChange("move", ExcludeTransaction{ID: rent.ID}, later); !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("AddSimulationChange(applied) error = %v, want %v", err, ErrInvalidOperation)
	}
}

func TestApplySimulationIsAtomic(t *testing.T) {
	l := newTestLedger(t, date.Every(date.Monthly))
	rent := l.add(t, l.landlord, l.housing, "2025-01-05", "1500", nil)
	food := l.add(t, l.grocer, l.food, "2025-01-10", "100", nil)
	newSimulation(t, l, "cut")

	for _, c := range []SimulationChange{
		ModifyTransaction{ID: rent.ID, Patch: TransactionPatch{BudgetedAmount: Set(dec("1"))}},
		ExcludeTransaction{ID: food.ID},
	} {
		if _, err := l.AddSimulationChange("cut", c, now); err != nil {
			t.Fatal(err)
		}
	}
	// the excluded transaction disappears before the simulation is applied.
	if err := l.RemoveTransaction(food.ID); err != nil {
		t.Fatal(err)
	}

	if err := l.ApplySimulation("cut", now); !errors.Is(err, ErrInvalidReference) {
		t.Fatalf("ApplySimulation() error = %v, want %v", err, ErrInvalidReference)
	}
	if got, _ := l.Transaction(rent.ID); !got.BudgetedAmount.Equal(dec("1500")) {
		t.Errorf("rent = %s after a failed apply, want 1500", got.BudgetedAmount)
	}
	if sim, _ := l.Simulation("cut"); sim.Status != Pending {
		t.Errorf("Status = %s after a failed apply, want pending", sim.Status)
	}
}

func TestApplySimulationValidatesDecodedChanges(t *testing.T) {
	l := newTestLedger(t, date.Every(date.Monthly))
	sim := newSimulation(t, l, "edited")
	// a hand edited file can hold changes that AddSimulationChange would refuse.
	sim.Changes = append(sim.Changes, AddTransaction{Transaction: Transaction{
		ID:             NewID(),
		From:           l.bank.ID,
		To:             l.bank.ID,
		ScheduledDate:  day("2025-01-10"),
		BudgetedAmount: dec("10"),
	}})
	var buf bytes.Buffer
	if err := EncodeLedger(&buf, l.Ledger); err != nil {
		t.Fatalf("EncodeLedger() failed: %v", err)
	}
	decoded, err := DecodeLedger(&buf)
	if err != nil {
		t.Fatalf("DecodeLedger() failed: %v", err)
	}

	err = decoded.ApplySimulation("edited", now)
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("ApplySimulation() = %v, want an invalid input error", err)
	}
	if decoded.Len() != 0 {
		t.Errorf("ApplySimulation() merged %d transactions, want none", decoded.Len())
	}
	if s, _ := decoded.Simulation("edited"); s.Status != Pending {
		t.Errorf("simulation status = %s, want pending", s.Status)
	}
}

func TestAddSimulationChange_InvalidReference(t *testing.T) {
	l := newTestLedger(t, date.Every(date.Monthly))
	rent := l.add(t, l.landlord, l.housing, "2025-01-05", "1500", nil)
	sim := newSimulation(t, l, "s")

	if _, err := l.AddSimulationChange("s", ExcludeTransaction{ID: rent.ID}, now); err != nil {
		t.Fatal(err)
	}
	testCases := []struct {
		name   string
		change SimulationChange
	}{
		{"exclude unknown", ExcludeTransaction{ID: "nope"}},
		{"modify unknown", ModifyTransaction{ID: "nope", Patch: TransactionPatch{Memo: Set("x")}}},
		{"exclude twice", ExcludeTransaction{ID: rent.ID}},
		{"modify excluded", ModifyTransaction{ID: rent.ID, Patch: TransactionPatch{Memo: Set("x")}}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := l.AddSimulationChange("s", tc.change, now)
			if !errors.Is(err, ErrInvalidReference) {
				t.Errorf("AddSimulationChange() error = %v, want %v", err, ErrInvalidReference)
			}
			if len(sim.Changes) != 1 {
				t.Errorf("len(Changes) = %d, want 1", len(sim.Changes))
			}
		})
	}

	if _, err := l.AddSimulationChange("unknown", ExcludeTransaction{ID: rent.ID}, now); !errors.Is(err, ErrNotFound) {
		t.Errorf("AddSimulationChange(unknown simulation) error = %v, want %v", err, ErrNotFound)
	}
}

func TestAddSimulationChange_ModifyAdded(t *testing.T) {
	l := newTestLedger(t, date.Every(date.Monthly))
	newSimulation(t, l, "s")
	got, err := l.AddSimulationChange("s", AddTransaction{Transaction: Transaction{
		From: l.bank.ID, To: l.grocer.ID, ScheduledDate: day("2025-01-03"), BudgetedAmount: dec("10"),
	}}, now)
	if err != nil {
		t.Fatal(err)
	}
	id := got.(AddTransaction).Transaction.ID
	if _, err := l.AddSimulationChange("s", ModifyTransaction{ID: id, Patch: TransactionPatch{BudgetedAmount: Set(dec("12"))}}, now); err != nil {
		t.Errorf("modifying a transaction added by the simulation failed: %v", err)
	}
	preview := RunSimulation(l.Ledger, mustSimulation(t, l, "s"))
	if tx, ok := preview.Transaction(id); !ok || !tx.BudgetedAmount.Equal(dec("12")) || tx.Status != Simulated {
		t.Errorf("preview transaction = %+v, %v; want a simulated 12", tx, ok)
	}
}

func mustSimulation(t *testing.T, l *testLedger, name string) *Simulation {
	t.Helper()
	s, err := l.Simulation(name)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestCreateSimulation(t *testing.T) {
	l := newTestLedger(t, date.Every(date.Monthly))
	newSimulation(t, l, "s")
	if _, err := l.CreateSimulation("s", "", now); !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("CreateSimulation(duplicate) error = %v, want %v", err, ErrInvalidOperation)
	}
	if _, err := l.CreateSimulation("", "", now); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("CreateSimulation(\"\") error = %v, want %v", err, ErrInvalidInput)
	}
}

func TestDiscardSimulation(t *testing.T) {
	l := newTestLedger(t, date.Every(date.Monthly))
	newSimulation(t, l, "s")
	if err := l.DiscardSimulation("s", now); err != nil {
		t.Fatalf("DiscardSimulation() failed: %v", err)
	}
	sim := mustSimulation(t, l, "s")
	if sim.Status != Discarded || sim.DiscardedAt == nil {
		t.Errorf("simulation = %+v, want discarded", sim)
	}
	if err := l.ApplySimulation("s", now); !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("ApplySimulation(discarded) error = %v, want %v", err, ErrInvalidOperation)
	}
	if err := l.DiscardSimulation("s", now); !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("DiscardSimulation(discarded) error = %v, want %v", err, ErrInvalidOperation)
	}
}

func TestRunSimulationLogsSkippedChanges(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	restore := logger.Set(zap.New(core).Sugar())
	defer restore()

	l := newTestLedger(t, date.Every(date.Monthly))
	food := l.add(t, l.grocer, l.food, "2025-01-10", "100", nil)
	sim := newSimulation(t, l, "s")
	if _, err := l.AddSimulationChange("s", ExcludeTransaction{ID: food.ID}, now); err != nil {
		t.Fatal(err)
	}
	if _, err := l.AddSimulationChange("s", ModifyTransaction{ID: food.ID, Patch: TransactionPatch{Memo: Set("x")}}, now); !errors.Is(err, ErrInvalidReference) {
		t.Fatalf("modify after exclude: error = %v, want %v", err, ErrInvalidReference)
	}
	// a change made stale by a later edit of the ledger.
	sim.Changes = append(sim.Changes, ModifyTransaction{ID: "gone", Patch: TransactionPatch{Memo: Set("x")}})

	preview := RunSimulation(l.Ledger, sim)
	if preview.Len() != 0 {
		t.Errorf("preview Len() = %d, want 0", preview.Len())
	}
	if l.Len() != 1 {
		t.Errorf("ledger Len() = %d after a preview, want 1", l.Len())
	}
	if n := logs.FilterMessage("simulation change skipped").Len(); n != 1 {
		t.Errorf("logged %d skipped changes, want 1", n)
	}
}

func TestSimulationJSON(t *testing.T) {
	l := newTestLedger(t, date.Every(date.Monthly))
	rent := l.add(t, l.landlord, l.housing, "2025-01-05", "1500", nil)
	newSimulation(t, l, "s")
	for _, c := range []SimulationChange{
		AddTransaction{Transaction: Transaction{From: l.bank.ID, To: l.grocer.ID, ScheduledDate: day("2025-01-03"), BudgetedAmount: dec("10")}},
		ModifyTransaction{ID: rent.ID, Patch: TransactionPatch{CategoryID: Clear[string](), BudgetedAmount: Set(dec("1400"))}},
		ExcludeTransaction{ID: rent.ID},
	} {
		if _, err := l.AddSimulationChange("s", c, now); err != nil {
			t.Fatal(err)
		}
	}
	sim := mustSimulation(t, l, "s")
	data, err := json.Marshal(sim)
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}
	got := new(Simulation)
	if err := json.Unmarshal(data, got); err != nil {
		t.Fatalf("Unmarshal(%s) failed: %v", data, err)
	}
	if len(got.Changes) != 3 {
		t.Fatalf("Unmarshal(%s) has %d changes, want 3", data, len(got.Changes))
	}
	m, ok := got.Changes[1].(ModifyTransaction)
	if !ok || m.ID != rent.ID || !m.Patch.CategoryID.IsClear() || !m.Patch.Memo.IsZero() {
		t.Errorf("modify change = %+v, want a category clear and a kept memo", got.Changes[1])
	}
	if v, ok := m.Patch.BudgetedAmount.Value(); !ok || !v.Equal(dec("1400")) {
		t.Errorf("budgeted amount = %v, want 1400", m.Patch.BudgetedAmount)
	}
	if _, ok := got.Changes[2].(ExcludeTransaction); !ok {
		t.Errorf("third change = %T, want an exclusion", got.Changes[2])
	}
}
