package budget

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/etnz/budget/date"
	"github.com/etnz/budget/logger"
)

// SimulationStatus is the lifecycle state of a simulation. Pending
// simulations become either Applied or Discarded, for good.
type SimulationStatus int

const (
	Pending SimulationStatus = iota
	Applied
	Discarded
)

func (s SimulationStatus) String() string {
	switch s {
	case Applied:
		return "applied"
	case Discarded:
		return "discarded"
	default:
		return "pending"
	}
}

// ParseSimulationStatus parses a string into a SimulationStatus.
func ParseSimulationStatus(s string) (SimulationStatus, error) {
	switch s {
	case "pending", "":
		return Pending, nil
	case "applied":
		return Applied, nil
	case "discarded":
		return Discarded, nil
	default:
		return Pending, fmt.Errorf("unknown simulation status: %q", s)
	}
}

func (s SimulationStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *SimulationStatus) UnmarshalText(text []byte) error {
	v, err := ParseSimulationStatus(string(text))
	*s = v
	return err
}

// SimulationChange is one proposed change of a simulation. It is one of
// AddTransaction, ModifyTransaction or ExcludeTransaction.
type SimulationChange interface {
	isSimulationChange()
	String() string
}

// AddTransaction adds a new transaction.
type AddTransaction struct{ Transaction Transaction }

// ModifyTransaction patches an existing transaction.
type ModifyTransaction struct {
	ID    string
	Patch TransactionPatch
}

// ExcludeTransaction removes an existing transaction.
type ExcludeTransaction struct{ ID string }

func (AddTransaction) isSimulationChange()     {}
func (ModifyTransaction) isSimulationChange()  {}
func (ExcludeTransaction) isSimulationChange() {}

func (c AddTransaction) String() string {
	t := c.Transaction
	return fmt.Sprintf("add %s %s on %s", t.ID, t.BudgetedAmount, t.ScheduledDate)
}
func (c ModifyTransaction) String() string  { return "modify " + c.ID }
func (c ExcludeTransaction) String() string { return "exclude " + c.ID }

// Simulation is a named set of proposed changes to the transactions of a
// ledger.
type Simulation struct {
	ID          string
	Name        string
	Notes       string
	Status      SimulationStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
	AppliedAt   *time.Time
	DiscardedAt *time.Time
	Changes     []SimulationChange
}

// Clone returns a deep copy of s.
func (s *Simulation) Clone() *Simulation {
	c := *s
	c.AppliedAt = clonePtr(s.AppliedAt)
	c.DiscardedAt = clonePtr(s.DiscardedAt)
	c.Changes = make([]SimulationChange, len(s.Changes))
	for i, ch := range s.Changes {
		if add, ok := ch.(AddTransaction); ok {
			ch = AddTransaction{Transaction: add.Transaction.Clone()}
		}
		c.Changes[i] = ch
	}
	return &c
}

// SimulationBudgetImpact compares the summary of a window with and without a
// simulation.
type SimulationBudgetImpact struct {
	Simulation string            `json:"simulation"`
	Base       *BudgetSummary    `json:"base"`
	Simulated  *BudgetSummary    `json:"simulated"`
	Delta      BudgetTotalsDelta `json:"delta"`
}

// Simulation returns the simulation with this name or id.
func (l *Ledger) Simulation(name string) (*Simulation, error) {
	i := slices.IndexFunc(l.simulations, func(s *Simulation) bool { return s.Name == name || s.ID == name })
	if i < 0 {
		return nil, Errorf(ErrNotFound, "simulation %q not found", name)
	}
	return l.simulations[i], nil
}

// CreateSimulation creates a new pending simulation. Names are unique.
func (l *Ledger) CreateSimulation(name, notes string, now time.Time) (*Simulation, error) {
	if name == "" {
		return nil, Errorf(ErrInvalidInput, "simulation name is missing")
	}
	if _, err := l.Simulation(name); err == nil {
		return nil, Errorf(ErrInvalidOperation, "simulation %q already exists", name)
	}
	now = now.UTC()
	s := &Simulation{ID: NewID(), Name: name, Notes: notes, Status: Pending, CreatedAt: now, UpdatedAt: now}
	l.simulations = append(l.simulations, s)
	return s, nil
}

// pendingSimulation returns the simulation name if it is still pending.
func (l *Ledger) pendingSimulation(name string) (*Simulation, error) {
	s, err := l.Simulation(name)
	if err != nil {
		return nil, err
	}
	if s.Status != Pending {
		return nil, Errorf(ErrInvalidOperation, "simulation %q is %s", s.Name, s.Status)
	}
	return s, nil
}

// AddSimulationChange appends a change to a pending simulation. Modified
// and excluded transactions must exist in the ledger or be added earlier
// by the simulation, and not be excluded already. On error the simulation is
// left unchanged.
func (l *Ledger) AddSimulationChange(name string, change SimulationChange, now time.Time) (SimulationChange, error) {
	s, err := l.pendingSimulation(name)
	if err != nil {
		return nil, err
	}

	live := make(map[string]bool, len(l.transactions))
	for _, tx := range l.transactions {
		live[tx.ID] = true
	}
	for _, c := range s.Changes {
		switch c := c.(type) {
		case AddTransaction:
			live[c.Transaction.ID] = true
		case ExcludeTransaction:
			delete(live, c.ID)
		}
	}

	switch c := change.(type) {
	case AddTransaction:
		t := prepare(c.Transaction.Clone())
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if err := l.checkReferences(t); err != nil {
			return nil, err
		}
		if live[t.ID] {
			return nil, Errorf(ErrInvalidOperation, "transaction id %s already exists", t.ID)
		}
		change = AddTransaction{Transaction: t}
	case ModifyTransaction:
		if !live[c.ID] {
			return nil, Errorf(ErrInvalidReference, "cannot modify unknown transaction %s", c.ID)
		}
	case ExcludeTransaction:
		if !live[c.ID] {
			return nil, Errorf(ErrInvalidReference, "cannot exclude unknown transaction %s", c.ID)
		}
	case nil:
		return nil, Errorf(ErrInvalidInput, "simulation change is missing")
	default:
		return nil, Errorf(ErrInvalidInput, "unknown simulation change %T", c)
	}
	s.Changes = append(s.Changes, change)
	s.UpdatedAt = now.UTC()
	return change, nil
}

// RemoveSimulationChange removes the change at index i of a pending
// simulation.
func (l *Ledger) RemoveSimulationChange(name string, i int, now time.Time) error {
	s, err := l.pendingSimulation(name)
	if err != nil {
		return err
	}
	if i < 0 || i >= len(s.Changes) {
		return Errorf(ErrNotFound, "simulation %q has no change #%d", s.Name, i)
	}
	s.Changes = slices.Delete(s.Changes, i, i+1)
	s.UpdatedAt = now.UTC()
	return nil
}

// applyChange applies c to txs. In preview, added transactions are marked
// Simulated.
func (l *Ledger) applyChange(txs []Transaction, c SimulationChange, preview bool) ([]Transaction, error) {
	index := func(id string) int { return slices.IndexFunc(txs, func(t Transaction) bool { return t.ID == id }) }

	switch c := c.(type) {
	case AddTransaction:
		t := prepare(c.Transaction.Clone())
		if index(t.ID) >= 0 {
			return txs, Errorf(ErrInvalidOperation, "transaction id %s already exists", t.ID)
		}
		if err := t.Validate(); err != nil {
			return txs, err
		}
		if err := l.checkReferences(t); err != nil {
			return txs, err
		}
		if preview {
			t.Status = Simulated
		} else if t.Status == Simulated {
			t.Status = Planned
		}
		return append(txs, t), nil
	case ModifyTransaction:
		i := index(c.ID)
		if i < 0 {
			return txs, Errorf(ErrInvalidReference, "cannot modify unknown transaction %s", c.ID)
		}
		t, err := c.Patch.Apply(txs[i])
		if err != nil {
			return txs, err
		}
		t = prepare(t)
		if err := t.Validate(); err != nil {
			return txs, err
		}
		if err := l.checkReferences(t); err != nil {
			return txs, err
		}
		txs[i] = t
		return txs, nil
	case ExcludeTransaction:
		i := index(c.ID)
		if i < 0 {
			return txs, Errorf(ErrInvalidReference, "cannot exclude unknown transaction %s", c.ID)
		}
		return slices.Delete(txs, i, i+1), nil
	default:
		return txs, Errorf(ErrInvalidInput, "unknown simulation change %T", c)
	}
}

// RunSimulation returns a copy of l with the changes of sim applied. The
// ledger is not modified. Changes that fail are logged and skipped.
func RunSimulation(l *Ledger, sim *Simulation) *Ledger {
	c := l.Clone()
	for i, change := range sim.Changes {
		txs, err := c.applyChange(c.transactions, change, true)
		if err != nil {
			logger.Get().Warnw("simulation change skipped",
				"simulation", sim.Name,
				"change", i,
				"description", change.String(),
				"error", err,
			)
			continue
		}
		c.transactions = txs
	}
	c.stableSort()
	c.RefreshRecurrenceMetadata()
	return c
}

// ApplySimulation merges the changes of a pending simulation into the
// ledger and marks it applied. If any change fails, the ledger is left
// unchanged.
//
// ApplySimulation modifies the ledger.
func (l *Ledger) ApplySimulation(name string, now time.Time) error {
	s, err := l.pendingSimulation(name)
	if err != nil {
		return err
	}
	txs := cloneTransactions(l.transactions)
	for i, change := range s.Changes {
		txs, err = l.applyChange(txs, change, false)
		if err != nil {
			return fmt.Errorf("simulation %q change #%d (%s): %w", s.Name, i, change, err)
		}
	}
	l.transactions = txs
	l.stableSort()
	l.RefreshRecurrenceMetadata()

	now = now.UTC()
	s.Status = Applied
	s.AppliedAt = &now
	s.UpdatedAt = now
	return nil
}

// DiscardSimulation marks a pending simulation discarded. It stays in the
// ledger history but has no effect.
func (l *Ledger) DiscardSimulation(name string, now time.Time) error {
	s, err := l.pendingSimulation(name)
	if err != nil {
		return err
	}
	now = now.UTC()
	s.Status = Discarded
	s.DiscardedAt = &now
	s.UpdatedAt = now
	return nil
}

// SimulationImpact summarizes w with and without the simulation name.
func (l *Ledger) SimulationImpact(name string, w date.Window, ref date.Date) (*SimulationBudgetImpact, error) {
	s, err := l.Simulation(name)
	if err != nil {
		return nil, err
	}
	base, err := l.Summarize(w, ref)
	if err != nil {
		return nil, err
	}
	simulated, err := RunSimulation(l, s).Summarize(w, ref)
	if err != nil {
		return nil, err
	}
	return &SimulationBudgetImpact{
		Simulation: s.Name,
		Base:       base,
		Simulated:  simulated,
		Delta:      Delta(base.Totals, simulated.Totals),
	}, nil
}

// jsonChange is the serialized form of a SimulationChange.
type jsonChange struct {
	Kind        string            `json:"kind"`
	ID          string            `json:"id,omitempty"`
	Transaction *Transaction      `json:"transaction,omitempty"`
	Patch       *TransactionPatch `json:"patch,omitempty"`
}

type jsonSimulation struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Notes       string           `json:"notes,omitempty"`
	Status      SimulationStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	AppliedAt   *time.Time       `json:"applied_at,omitempty"`
	DiscardedAt *time.Time       `json:"discarded_at,omitempty"`
	Changes     []jsonChange     `json:"changes"`
}

func (s *Simulation) MarshalJSON() ([]byte, error) {
	j := jsonSimulation{
		ID:          s.ID,
		Name:        s.Name,
		Notes:       s.Notes,
		Status:      s.Status,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
		AppliedAt:   s.AppliedAt,
		DiscardedAt: s.DiscardedAt,
		Changes:     make([]jsonChange, 0, len(s.Changes)),
	}
	for _, c := range s.Changes {
		switch c := c.(type) {
		case AddTransaction:
			j.Changes = append(j.Changes, jsonChange{Kind: "add", Transaction: &c.Transaction})
		case ModifyTransaction:
			j.Changes = append(j.Changes, jsonChange{Kind: "modify", ID: c.ID, Patch: &c.Patch})
		case ExcludeTransaction:
			j.Changes = append(j.Changes, jsonChange{Kind: "exclude", ID: c.ID})
		default:
			return nil, fmt.Errorf("unknown simulation change %T", c)
		}
	}
	return json.Marshal(j)
}

func (s *Simulation) UnmarshalJSON(data []byte) error {
	var j jsonSimulation
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	*s = Simulation{
		ID:          j.ID,
		Name:        j.Name,
		Notes:       j.Notes,
		Status:      j.Status,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
		AppliedAt:   j.AppliedAt,
		DiscardedAt: j.DiscardedAt,
	}
	for i, c := range j.Changes {
		switch c.Kind {
		case "add":
			if c.Transaction == nil {
				return fmt.Errorf("simulation %q change #%d: add without a transaction", j.Name, i)
			}
			s.Changes = append(s.Changes, AddTransaction{Transaction: *c.Transaction})
		case "modify":
			var p TransactionPatch
			if c.Patch != nil {
				p = *c.Patch
			}
			s.Changes = append(s.Changes, ModifyTransaction{ID: c.ID, Patch: p})
		case "exclude":
			s.Changes = append(s.Changes, ExcludeTransaction{ID: c.ID})
		default:
			return fmt.Errorf("simulation %q change #%d: unknown kind %q", j.Name, i, c.Kind)
		}
	}
	return nil
}
