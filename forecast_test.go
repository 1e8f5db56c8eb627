package budget

import (
	"errors"
	"testing"

	"github.com/etnz/budget/date"
)

func TestLedger_Forecast(t *testing.T) {
	l := newTestLedger(t, date.Every(date.Monthly))
	l.add(t, l.landlord, l.housing, "2025-01-01", "1500", every(1, date.Monthly))
	l.add(t, l.grocer, l.food, "2025-01-10", "80", nil) // not recurring
	l.MaterializeDue(day("2025-02-15"))
	before := l.Len()

	w := date.MustWindow(day("2025-01-01"), day("2025-06-01"))
	report, err := l.Forecast(w, day("2025-03-15"), "")
	if err != nil {
		t.Fatalf("Forecast() failed: %v", err)
	}
	if l.Len() != before {
		t.Errorf("Forecast() changed the ledger: Len() = %d, want %d", l.Len(), before)
	}

	type occ struct {
		date  string
		kind  OccurrenceKind
		index int
	}
	want := []occ{
		{"2025-01-01", Materialized, 0},
		{"2025-02-01", Materialized, 1},
		{"2025-03-01", Due, 2},
		{"2025-04-01", Projected, 3},
		{"2025-05-01", Projected, 4},
	}
	if len(report.Occurrences) != len(want) {
		t.Fatalf("Forecast() returned %d occurrences, want %d: %+v", len(report.Occurrences), len(want), report.Occurrences)
	}
	for i, w := range want {
		o := report.Occurrences[i]
		if o.Date.String() != w.date || o.Kind != w.kind || o.Index != w.index {
			t.Errorf("occurrence #%d = {%s %s %d}, want {%s %s %d}", i, o.Date, o.Kind, o.Index, w.date, w.kind, w.index)
		}
	}
	if report.Totals.Materialized != 2 || report.Totals.Generated != 3 || report.Totals.Truncated {
		t.Errorf("Totals = %+v, want 2 materialized, 3 generated", report.Totals)
	}
	if !report.Totals.Budgeted.Equal(dec("7500")) {
		t.Errorf("Totals.Budgeted = %s, want 7500", report.Totals.Budgeted)
	}
}

func TestLedger_ForecastWindowAfterMaterialized(t *testing.T) {
	l := newTestLedger(t, date.Every(date.Monthly))
	l.add(t, l.grocer, l.food, "2025-01-01", "50", every(1, date.Weekly))

	w := date.MustWindow(day("2025-03-01"), day("2025-03-15"))
	report, err := l.Forecast(w, day("2025-01-01"), "")
	if err != nil {
		t.Fatalf("Forecast() failed: %v", err)
	}
	// Mar 5 and Mar 12, 9th and 10th weeks of the series.
	if len(report.Occurrences) != 2 {
		t.Fatalf("Forecast() returned %+v, want 2 occurrences", report.Occurrences)
	}
	if o := report.Occurrences[0]; o.Date != day("2025-03-05") || o.Index != 9 || o.Kind != Projected {
		t.Errorf("first occurrence = %+v, want the projected #9 on 2025-03-05", o)
	}
}

func TestLedger_ForecastCap(t *testing.T) {
	l := newTestLedger(t, date.Every(date.Monthly))
	l.add(t, l.grocer, l.food, "2025-01-01", "5", every(1, date.Daily))
	l.add(t, l.landlord, l.housing, "2025-01-01", "1500", every(1, date.Monthly))

	w := date.MustWindow(day("2025-01-01"), day("2030-01-01"))
	report, err := l.Forecast(w, day("2025-01-01"), "")
	if err != nil {
		t.Fatalf("Forecast() failed: %v", err)
	}
	if report.Totals.Generated != forecastCap {
		t.Errorf("Totals.Generated = %d, want %d", report.Totals.Generated, forecastCap)
	}
	if !report.Totals.Truncated {
		t.Error("Totals.Truncated = false, want true")
	}
	if got := len(report.Occurrences); got != forecastCap+report.Totals.Materialized {
		t.Errorf("len(Occurrences) = %d, want %d", got, forecastCap+report.Totals.Materialized)
	}
}

func TestLedger_ForecastFarWindow(t *testing.T) {
	testCases := []struct {
		name      string
		start     string
		rec       *Recurrence
		exception string
		window    date.Window
		want      string
		index     int
	}{
		{
			name:   "daily",
			start:  "2025-01-01",
			rec:    every(1, date.Daily),
			window: date.MustWindow(day("2125-01-01"), day("2125-01-02")),
			want:   "2125-01-01",
			index:  day("2125-01-01").Sub(day("2025-01-01")),
		},
		{
			name:   "clamped monthly",
			start:  "2025-01-31",
			rec:    every(1, date.Monthly),
			window: date.MustWindow(day("2026-01-01"), day("2026-02-01")),
			want:   "2026-01-28",
			index:  12,
		},
		{
			name:      "weekly with an exception",
			start:     "2025-01-01",
			rec:       every(1, date.Weekly),
			exception: "2025-01-08",
			window:    date.MustWindow(day("2025-03-01"), day("2025-03-08")),
			want:      "2025-03-05",
			index:     8,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			l := newTestLedger(t, date.Every(date.Monthly))
			tx := l.add(t, l.grocer, l.food, tc.start, "5", tc.rec)
			if tc.exception != "" {
				if err := l.AddException(tx.ID, day(tc.exception)); err != nil {
					t.Fatal(err)
				}
			}
			report, err := l.Forecast(tc.window, day("2025-01-01"), "")
			if err != nil {
				t.Fatalf("Forecast() failed: %v", err)
			}
			if len(report.Occurrences) != 1 {
				t.Fatalf("Forecast() returned %d occurrences, want 1: %+v", len(report.Occurrences), report.Occurrences)
			}
			if o := report.Occurrences[0]; o.Date.String() != tc.want || o.Index != tc.index {
				t.Errorf("occurrence = {%s %d}, want {%s %d}", o.Date, o.Index, tc.want, tc.index)
			}
		})
	}
}

func TestLedger_ForecastSimulation(t *testing.T) {
	l := newTestLedger(t, date.Every(date.Monthly))
	if _, err := l.CreateSimulation("gym", "", now); err != nil {
		t.Fatal(err)
	}
	_, err := l.AddSimulationChange("gym", AddTransaction{Transaction: Transaction{
		From:           l.bank.ID,
		To:             l.grocer.ID,
		ScheduledDate:  day("2025-01-15"),
		BudgetedAmount: dec("30"),
		Recurrence:     every(1, date.Monthly),
	}}, now)
	if err != nil {
		t.Fatalf("AddSimulationChange() failed: %v", err)
	}

	w := date.MustWindow(day("2025-01-01"), day("2025-04-01"))
	base, err := l.Forecast(w, day("2025-01-01"), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(base.Occurrences) != 0 {
		t.Errorf("base forecast has %d occurrences, want 0", len(base.Occurrences))
	}
	simulated, err := l.Forecast(w, day("2025-01-01"), "gym")
	if err != nil {
		t.Fatal(err)
	}
	// the simulated template on Jan 15, then Feb 15 and Mar 15.
	if len(simulated.Occurrences) != 3 || !simulated.Totals.Budgeted.Equal(dec("90")) {
		t.Errorf("simulated forecast = %+v, want 3 occurrences worth 90", simulated)
	}

	if _, err := l.Forecast(w, day("2025-01-01"), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Forecast(unknown simulation) error = %v, want %v", err, ErrNotFound)
	}
}
