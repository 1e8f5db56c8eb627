package budget

import (
	"fmt"
	"iter"
	"slices"
	"time"

	"github.com/etnz/budget/date"
	"github.com/shopspring/decimal"
)

// Ledger owns accounts, categories, transactions, simulations and exchange
// rates of a personal budget.
//
// In a Ledger transactions are always in scheduled order. Methods with a
// pointer receiver that modify the ledger need exclusive access; the others
// only read it.
type Ledger struct {
	ID           string
	Name         string
	BaseCurrency string
	BudgetPeriod date.Interval
	CreatedAt    time.Time
	Valuation    ValuationPolicy
	Rates        *FXBook

	accounts     []Account
	categories   []Category
	transactions []Transaction
	simulations  []*Simulation
}

// NewLedger creates an empty ledger.
func NewLedger(name, baseCurrency string, period date.Interval, now time.Time) (*Ledger, error) {
	if name == "" {
		return nil, Errorf(ErrInvalidInput, "ledger name is missing")
	}
	if err := ValidateCurrency(baseCurrency); err != nil {
		return nil, Wrap(ErrInvalidInput, fmt.Errorf("ledger base currency: %w", err))
	}
	if !period.Valid() {
		return nil, Wrap(ErrInvalidInput, fmt.Errorf("ledger budget period: %w", date.ErrEmptyInterval))
	}
	return &Ledger{
		ID:           NewID(),
		Name:         name,
		BaseCurrency: baseCurrency,
		BudgetPeriod: period,
		CreatedAt:    now.UTC(),
		Rates:        NewFXBook(DefaultFXTolerance),
	}, nil
}

// Clone returns a deep copy of the ledger.
func (l *Ledger) Clone() *Ledger {
	c := *l
	c.accounts = slices.Clone(l.accounts)
	c.categories = make([]Category, len(l.categories))
	for i, cat := range l.categories {
		cat.ParentID = clonePtr(cat.ParentID)
		if cat.Budget != nil {
			b := *cat.Budget
			b.ReferenceDate = clonePtr(b.ReferenceDate)
			cat.Budget = &b
		}
		c.categories[i] = cat
	}
	for i := range c.accounts {
		c.accounts[i].OpeningBalance = clonePtr(c.accounts[i].OpeningBalance)
	}
	c.transactions = cloneTransactions(l.transactions)
	c.simulations = make([]*Simulation, len(l.simulations))
	for i, s := range l.simulations {
		c.simulations[i] = s.Clone()
	}
	if l.Rates != nil {
		c.Rates = l.Rates.Clone()
	}
	return &c
}

func cloneTransactions(txs []Transaction) []Transaction {
	c := make([]Transaction, len(txs))
	for i, t := range txs {
		c[i] = t.Clone()
	}
	return c
}

// Accounts iterates over accounts in insertion order.
func (l *Ledger) Accounts() iter.Seq[Account] { return slices.Values(l.accounts) }

// Categories iterates over categories in insertion order.
func (l *Ledger) Categories() iter.Seq[Category] { return slices.Values(l.categories) }

// Simulations iterates over simulations in creation order.
func (l *Ledger) Simulations() iter.Seq[*Simulation] { return slices.Values(l.simulations) }

// Transactions iterates over transactions in scheduled order, keeping only
// those accepted by all filters.
func (l *Ledger) Transactions(filters ...func(Transaction) bool) iter.Seq2[int, Transaction] {
	return func(yield func(int, Transaction) bool) {
	next:
		for i, tx := range l.transactions {
			for _, f := range filters {
				if !f(tx) {
					continue next
				}
			}
			if !yield(i, tx) {
				return
			}
		}
	}
}

// Len returns the number of transactions.
func (l *Ledger) Len() int { return len(l.transactions) }

// InWindow filters transactions scheduled inside w.
func InWindow(w date.Window) func(Transaction) bool {
	return func(t Transaction) bool { return w.Contains(t.ScheduledDate) }
}

// InSeries filters the members of a recurring series.
func InSeries(seriesID string) func(Transaction) bool {
	return func(t Transaction) bool { return t.SeriesID != "" && t.SeriesID == seriesID }
}

// stableSort sorts transactions by scheduled date, keeping insertion order
// for the same day.
func (l *Ledger) stableSort() {
	slices.SortStableFunc(l.transactions, func(a, b Transaction) int {
		return a.ScheduledDate.Compare(b.ScheduledDate)
	})
}

// Account returns the account with id.
func (l *Ledger) Account(id string) (Account, bool) {
	i := slices.IndexFunc(l.accounts, func(a Account) bool { return a.ID == id })
	if i < 0 {
		return Account{}, false
	}
	return l.accounts[i], true
}

// AccountByName returns the account named name, or with id name.
func (l *Ledger) AccountByName(name string) (Account, bool) {
	i := slices.IndexFunc(l.accounts, func(a Account) bool { return a.Name == name || a.ID == name })
	if i < 0 {
		return Account{}, false
	}
	return l.accounts[i], true
}

// Category returns the category with id.
func (l *Ledger) Category(id string) (Category, bool) {
	i := slices.IndexFunc(l.categories, func(c Category) bool { return c.ID == id })
	if i < 0 {
		return Category{}, false
	}
	return l.categories[i], true
}

// CategoryByName returns the category named name, or with id name.
func (l *Ledger) CategoryByName(name string) (Category, bool) {
	i := slices.IndexFunc(l.categories, func(c Category) bool { return c.Name == name || c.ID == name })
	if i < 0 {
		return Category{}, false
	}
	return l.categories[i], true
}

// Transaction returns the transaction with id.
func (l *Ledger) Transaction(id string) (Transaction, bool) {
	i := l.indexOf(id)
	if i < 0 {
		return Transaction{}, false
	}
	return l.transactions[i], true
}

func (l *Ledger) indexOf(id string) int {
	return slices.IndexFunc(l.transactions, func(t Transaction) bool { return t.ID == id })
}

// AddAccount adds a new account. An empty ID is assigned a fresh one.
func (l *Ledger) AddAccount(a Account) (Account, error) {
	if a.ID == "" {
		a.ID = NewID()
	}
	if err := a.Validate(); err != nil {
		return a, err
	}
	if _, exists := l.AccountByName(a.Name); exists {
		return a, Errorf(ErrInvalidOperation, "account %q already exists", a.Name)
	}
	if _, exists := l.Account(a.ID); exists {
		return a, Errorf(ErrInvalidOperation, "account id %s already exists", a.ID)
	}
	l.accounts = append(l.accounts, a)
	return a, nil
}

// RemoveAccount removes an account no transaction refers to.
func (l *Ledger) RemoveAccount(id string) error {
	i := slices.IndexFunc(l.accounts, func(a Account) bool { return a.ID == id })
	if i < 0 {
		return Errorf(ErrNotFound, "account %s not found", id)
	}
	for _, tx := range l.Transactions() {
		if tx.From == id || tx.To == id {
			return Errorf(ErrInvalidOperation, "account %q is used by transaction %s", l.accounts[i].Name, tx.ID)
		}
	}
	l.accounts = slices.Delete(l.accounts, i, i+1)
	return nil
}

// AddCategory adds a new category. An empty ID is assigned a fresh one.
func (l *Ledger) AddCategory(c Category) (Category, error) {
	if c.ID == "" {
		c.ID = NewID()
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	if _, exists := l.CategoryByName(c.Name); exists {
		return c, Errorf(ErrInvalidOperation, "category %q already exists", c.Name)
	}
	if c.ParentID != nil {
		if _, ok := l.Category(*c.ParentID); !ok {
			return c, Errorf(ErrNotFound, "parent category %s not found", *c.ParentID)
		}
	}
	l.categories = append(l.categories, c)
	return c, nil
}

// RemoveCategory removes a category. Transactions still referring to it are
// reported as orphaned.
func (l *Ledger) RemoveCategory(id string) error {
	i := slices.IndexFunc(l.categories, func(c Category) bool { return c.ID == id })
	if i < 0 {
		return Errorf(ErrNotFound, "category %s not found", id)
	}
	l.categories = slices.Delete(l.categories, i, i+1)
	for j := range l.categories {
		if p := l.categories[j].ParentID; p != nil && *p == id {
			l.categories[j].ParentID = nil
		}
	}
	return nil
}

// checkReferences verifies that the accounts and category of t exist.
func (l *Ledger) checkReferences(t Transaction) error {
	for _, id := range []string{t.From, t.To} {
		if _, ok := l.Account(id); !ok {
			return Errorf(ErrNotFound, "transaction %s: account %s not found", t.ID, id)
		}
	}
	if t.CategoryID != nil {
		if _, ok := l.Category(*t.CategoryID); !ok {
			return Errorf(ErrNotFound, "transaction %s: category %s not found", t.ID, *t.CategoryID)
		}
	}
	return nil
}

// prepare assigns identifiers and defaults to a new transaction.
func prepare(t Transaction) Transaction {
	if t.ID == "" {
		t.ID = NewID()
	}
	if r := t.Recurrence; r != nil {
		if r.SeriesID == "" {
			r.SeriesID = NewID()
		}
		if r.Start.IsZero() {
			r.Start = t.ScheduledDate
		}
		if r.End == nil {
			r.End = EndNever{}
		}
		t.SeriesID = r.SeriesID
	}
	if t.ActualAmount != nil && t.Status == Planned {
		t.Status = Completed
	}
	return t
}

// AddTransaction validates and adds a transaction. An empty ID is assigned a
// fresh one; a recurring transaction becomes the first occurrence of its
// series.
func (l *Ledger) AddTransaction(t Transaction) (Transaction, error) {
	t = prepare(t.Clone())
	if err := t.Validate(); err != nil {
		return t, err
	}
	if err := l.checkReferences(t); err != nil {
		return t, err
	}
	if l.indexOf(t.ID) >= 0 {
		return t, Errorf(ErrInvalidOperation, "transaction id %s already exists", t.ID)
	}
	l.transactions = append(l.transactions, t)
	l.stableSort()
	l.RefreshRecurrenceMetadata()
	added, _ := l.Transaction(t.ID)
	return added, nil
}

// ModifyTransaction applies a patch to the transaction with id.
func (l *Ledger) ModifyTransaction(id string, p TransactionPatch) (Transaction, error) {
	i := l.indexOf(id)
	if i < 0 {
		return Transaction{}, Errorf(ErrNotFound, "transaction %s not found", id)
	}
	t, err := p.Apply(l.transactions[i])
	if err != nil {
		return Transaction{}, err
	}
	t = prepare(t)
	if err := t.Validate(); err != nil {
		return Transaction{}, err
	}
	if err := l.checkReferences(t); err != nil {
		return Transaction{}, err
	}
	l.transactions[i] = t
	l.stableSort()
	l.RefreshRecurrenceMetadata()
	modified, _ := l.Transaction(id)
	return modified, nil
}

// RemoveTransaction removes the transaction with id. Removing a series
// template does not remove the occurrences it generated.
func (l *Ledger) RemoveTransaction(id string) error {
	i := l.indexOf(id)
	if i < 0 {
		return Errorf(ErrNotFound, "transaction %s not found", id)
	}
	l.transactions = slices.Delete(l.transactions, i, i+1)
	l.RefreshRecurrenceMetadata()
	return nil
}

// RecordActual records the realization of a transaction.
func (l *Ledger) RecordActual(id string, on date.Date, amount decimal.Decimal) (Transaction, error) {
	i := l.indexOf(id)
	if i < 0 {
		return Transaction{}, Errorf(ErrNotFound, "transaction %s not found", id)
	}
	if on.IsZero() {
		return Transaction{}, Errorf(ErrInvalidInput, "transaction %s: actual date is missing", id)
	}
	t := &l.transactions[i]
	t.ActualDate = &on
	t.ActualAmount = &amount
	t.Status = Completed
	l.RefreshRecurrenceMetadata()
	return *t, nil
}

// MarkMissed marks a transaction that did not happen: its actual amount is
// zero on the scheduled date.
func (l *Ledger) MarkMissed(id string) (Transaction, error) {
	i := l.indexOf(id)
	if i < 0 {
		return Transaction{}, Errorf(ErrNotFound, "transaction %s not found", id)
	}
	t := &l.transactions[i]
	on, zero := t.ScheduledDate, decimal.Zero
	t.ActualDate, t.ActualAmount = &on, &zero
	t.Status = Missed
	l.RefreshRecurrenceMetadata()
	return *t, nil
}

// recurrence returns the recurrence of the transaction with id.
func (l *Ledger) recurrence(id string) (*Recurrence, error) {
	i := l.indexOf(id)
	if i < 0 {
		return nil, Errorf(ErrNotFound, "transaction %s not found", id)
	}
	r := l.transactions[i].Recurrence
	if r == nil {
		return nil, Errorf(ErrInvalidOperation, "transaction %s has no recurrence", id)
	}
	return r, nil
}

// PauseRecurrence stops generating occurrences for the series of id.
func (l *Ledger) PauseRecurrence(id string) error {
	r, err := l.recurrence(id)
	if err != nil {
		return err
	}
	if r.Status != Active {
		return Errorf(ErrInvalidOperation, "recurrence of %s is %s", id, r.Status)
	}
	r.Status = Paused
	return nil
}

// ResumeRecurrence restarts a paused series. Occurrences missed while paused
// are due at the next materialization.
func (l *Ledger) ResumeRecurrence(id string) error {
	r, err := l.recurrence(id)
	if err != nil {
		return err
	}
	if r.Status != Paused {
		return Errorf(ErrInvalidOperation, "recurrence of %s is %s", id, r.Status)
	}
	r.Status = Active
	l.RefreshRecurrenceMetadata()
	return nil
}

// AddException skips the occurrence of the series of id on d.
func (l *Ledger) AddException(id string, d date.Date) error {
	r, err := l.recurrence(id)
	if err != nil {
		return err
	}
	r.AddException(d)
	l.RefreshRecurrenceMetadata()
	return nil
}

// RefreshRecurrenceMetadata recomputes the cached generation data of every
// series from its members: the number generated, the last scheduled date,
// the last actual date and the next occurrence. An active series whose next
// occurrence is not allowed anymore is completed.
func (l *Ledger) RefreshRecurrenceMetadata() {
	for i := range l.transactions {
		if r := l.transactions[i].Recurrence; r != nil {
			l.refreshSeries(r)
		}
	}
}

func (l *Ledger) refreshSeries(r *Recurrence) {
	var (
		generated           int
		latest              Transaction
		lastDone, doneSched date.Date
	)
	for _, tx := range l.Transactions(InSeries(r.SeriesID)) {
		generated++
		if !tx.ScheduledDate.Before(latest.ScheduledDate) {
			latest = tx
		}
		if tx.ActualDate != nil && !tx.ScheduledDate.Before(doneSched) {
			lastDone, doneSched = *tx.ActualDate, tx.ScheduledDate
		}
	}
	if generated == 0 {
		return
	}
	r.Generated = generated
	r.LastGenerated = &latest.ScheduledDate
	r.LastCompleted = nil
	if !lastDone.IsZero() {
		r.LastCompleted = &lastDone
	}
	// only the realization of the latest occurrence moves the schedule.
	next := r.NextOccurrence(latest.ScheduledDate, latest.ActualDate)
	r.NextScheduled = &next
	if r.Status == Active && !r.AllowsOccurrence(r.Generated, next) {
		r.Status = Done
	}
}
