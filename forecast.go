package budget

import (
	"cmp"
	"slices"

	"github.com/etnz/budget/date"
	"github.com/shopspring/decimal"
)

// forecastCap bounds the number of occurrences generated by one forecast.
const forecastCap = 1024

// OccurrenceKind tells where a forecast occurrence comes from.
type OccurrenceKind int

const (
	// Materialized occurrences are transactions of the ledger.
	Materialized OccurrenceKind = iota
	// Due occurrences are scheduled on or before the reference date but not
	// materialized yet.
	Due
	// Projected occurrences are scheduled after the reference date.
	Projected
)

func (k OccurrenceKind) String() string {
	switch k {
	case Due:
		return "due"
	case Projected:
		return "projected"
	default:
		return "materialized"
	}
}

func (k OccurrenceKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *OccurrenceKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "due":
		*k = Due
	case "projected":
		*k = Projected
	default:
		*k = Materialized
	}
	return nil
}

// Occurrence is one member of a recurring series inside a forecast window.
type Occurrence struct {
	SeriesID string          `json:"series_id"`
	ID       string          `json:"id,omitempty"` // only for materialized occurrences
	Index    int             `json:"index"`
	Date     date.Date       `json:"date"`
	Kind     OccurrenceKind  `json:"kind"`
	Status   Status          `json:"status"`
	From     string          `json:"from"`
	To       string          `json:"to"`
	Category string          `json:"category,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Memo     string          `json:"memo,omitempty"`
}

// ForecastTotals sums a forecast in the ledger base currency.
type ForecastTotals struct {
	Materialized int             `json:"materialized"`
	Generated    int             `json:"generated"`
	Budgeted     decimal.Decimal `json:"budgeted"`
	Truncated    bool            `json:"truncated"`
}

// ForecastReport lists the occurrences of recurring series inside a window.
type ForecastReport struct {
	Window      date.Window    `json:"window"`
	Reference   date.Date      `json:"reference"`
	Simulation  string         `json:"simulation,omitempty"`
	Currency    string         `json:"currency"`
	Occurrences []Occurrence   `json:"occurrences"`
	Totals      ForecastTotals `json:"totals"`
	Disclosures []Disclosure   `json:"disclosures,omitempty"`
}

// Forecast projects the recurring series of the ledger into w without
// modifying it. When simulation is not empty, the forecast runs on the
// ledger with that simulation applied.
//
// Occurrences generated in one call are capped; the report is then marked
// truncated.
func (l *Ledger) Forecast(w date.Window, ref date.Date, simulation string) (*ForecastReport, error) {
	if w.IsZero() {
		return nil, Wrap(ErrInvalidInput, date.ErrEmptyWindow)
	}
	src := l
	if simulation != "" {
		sim, err := l.Simulation(simulation)
		if err != nil {
			return nil, err
		}
		src = RunSimulation(l, sim)
	}

	report := &ForecastReport{
		Window:     w,
		Reference:  ref,
		Simulation: simulation,
		Currency:   l.BaseCurrency,
	}
	index := make(map[string]int) // occurrence index per series

	for _, tx := range src.Transactions(InWindow(w)) {
		if tx.SeriesID == "" {
			continue
		}
		report.Occurrences = append(report.Occurrences, Occurrence{
			SeriesID: tx.SeriesID,
			ID:       tx.ID,
			Index:    index[tx.SeriesID],
			Date:     tx.ScheduledDate,
			Kind:     Materialized,
			Status:   tx.Status,
			From:     tx.From,
			To:       tx.To,
			Category: tx.Category(),
			Amount:   tx.BudgetedAmount,
			Currency: tx.CurrencyOr(l.BaseCurrency),
			Memo:     tx.Memo,
		})
		index[tx.SeriesID]++
		report.Totals.Materialized++
	}
	// materialized indexes count members before the window too.
	for i := range report.Occurrences {
		o := &report.Occurrences[i]
		o.Index += src.countBefore(o.SeriesID, w.Start())
	}

walk:
	for _, tpl := range src.Transactions() {
		r := tpl.Recurrence
		if r == nil || r.Status != Active || r.NextScheduled == nil {
			continue
		}
		n, first := r.Generated, *r.NextScheduled
		if len(r.Exceptions) == 0 {
			// without exceptions a series steps by whole intervals: jump close to the window.
			var skipped int
			first, skipped = r.Interval.Skip(first, w.Start())
			n += skipped
		}
		for d := first; d.Before(w.End()) && r.AllowsOccurrence(n, d); d, n = r.NextOccurrence(d, nil), n+1 {
			if d.Before(w.Start()) {
				continue
			}
			if report.Totals.Generated >= forecastCap {
				report.Totals.Truncated = true
				break walk
			}
			kind := Projected
			if !d.After(ref) {
				kind = Due
			}
			report.Occurrences = append(report.Occurrences, Occurrence{
				SeriesID: r.SeriesID,
				Index:    n,
				Date:     d,
				Kind:     kind,
				Status:   Planned,
				From:     tpl.From,
				To:       tpl.To,
				Category: tpl.Category(),
				Amount:   tpl.BudgetedAmount,
				Currency: tpl.CurrencyOr(l.BaseCurrency),
				Memo:     tpl.Memo,
			})
			report.Totals.Generated++
		}
	}

	slices.SortStableFunc(report.Occurrences, func(a, b Occurrence) int {
		return cmp.Or(a.Date.Compare(b.Date), cmp.Compare(a.SeriesID, b.SeriesID), cmp.Compare(a.Index, b.Index))
	})

	v := src.Valuator(ref)
	report.Totals.Budgeted = decimal.Zero
	for _, o := range report.Occurrences {
		amount, err := v.Value(o.Amount, o.Currency, o.Date)
		if err != nil {
			report.Disclosures = append(report.Disclosures, Disclosure{
				TransactionID: o.ID,
				SeriesID:      o.SeriesID,
				Date:          o.Date,
				Reason:        err.Error(),
			})
			continue
		}
		report.Totals.Budgeted = report.Totals.Budgeted.Add(amount)
	}
	return report, nil
}

// countBefore counts the members of a series scheduled before d.
func (l *Ledger) countBefore(seriesID string, d date.Date) int {
	n := 0
	for _, tx := range l.Transactions(InSeries(seriesID)) {
		if tx.ScheduledDate.Before(d) {
			n++
		}
	}
	return n
}
