package budget

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/etnz/budget/date"
)

// Record kinds of the JSONL ledger format.
const (
	recordLedger      = "ledger"
	recordAccount     = "account"
	recordCategory    = "category"
	recordRate        = "rate"
	recordTransaction = "transaction"
	recordSimulation  = "simulation"
	recordBackup      = "backup"
)

// maxLine bounds the length of one JSONL record.
const maxLine = 16 << 20

// ledgerHeader is the first record of a ledger file.
type ledgerHeader struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	BaseCurrency string          `json:"base_currency"`
	BudgetPeriod date.Interval   `json:"budget_period"`
	CreatedAt    time.Time       `json:"created_at"`
	Valuation    ValuationPolicy `json:"valuation"`
	FXTolerance  int             `json:"fx_tolerance"`
}

// EncodeLedger writes the ledger as JSONL: one header record, then accounts,
// categories, rates, transactions in scheduled order and simulations.
// It only reads l, which every mutation keeps sorted.
func EncodeLedger(w io.Writer, l *Ledger) error {
	bw := bufio.NewWriter(w)

	tolerance := DefaultFXTolerance
	if l.Rates != nil {
		tolerance = l.Rates.Tolerance
	}
	header := ledgerHeader{
		ID:           l.ID,
		Name:         l.Name,
		BaseCurrency: l.BaseCurrency,
		BudgetPeriod: l.BudgetPeriod,
		CreatedAt:    l.CreatedAt,
		Valuation:    l.Valuation,
		FXTolerance:  tolerance,
	}
	if err := newRecord(recordLedger).EmbedFrom(header).WriteLine(bw); err != nil {
		return err
	}
	for a := range l.Accounts() {
		if err := newRecord(recordAccount).EmbedFrom(a).WriteLine(bw); err != nil {
			return err
		}
	}
	for c := range l.Categories() {
		if err := newRecord(recordCategory).EmbedFrom(c).WriteLine(bw); err != nil {
			return err
		}
	}
	if l.Rates != nil {
		for r := range l.Rates.Rates() {
			if err := newRecord(recordRate).EmbedFrom(r).WriteLine(bw); err != nil {
				return err
			}
		}
	}
	for _, tx := range l.Transactions() {
		if err := newRecord(recordTransaction).EmbedFrom(tx).WriteLine(bw); err != nil {
			return err
		}
	}
	for s := range l.Simulations() {
		if err := newRecord(recordSimulation).EmbedFrom(s).WriteLine(bw); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// DecodeLedger reads a ledger encoded by EncodeLedger. Backup header records
// are skipped.
func DecodeLedger(r io.Reader) (*Ledger, error) {
	var l *Ledger
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue // Skip empty lines
		}

		var identifier struct {
			Record string `json:"record"`
		}
		if err := json.Unmarshal(line, &identifier); err != nil {
			return nil, fmt.Errorf("line %d: could not identify record: %w", lineNum, err)
		}
		if identifier.Record == recordBackup {
			continue
		}
		if identifier.Record == recordLedger {
			if l != nil {
				return nil, fmt.Errorf("line %d: duplicate ledger record", lineNum)
			}
			var h ledgerHeader
			if err := json.Unmarshal(line, &h); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			l = &Ledger{
				ID:           h.ID,
				Name:         h.Name,
				BaseCurrency: h.BaseCurrency,
				BudgetPeriod: h.BudgetPeriod,
				CreatedAt:    h.CreatedAt,
				Valuation:    h.Valuation,
				Rates:        NewFXBook(h.FXTolerance),
			}
			continue
		}
		if l == nil {
			return nil, fmt.Errorf("line %d: %q record before the ledger record", lineNum, identifier.Record)
		}

		var err error
		switch identifier.Record {
		case recordAccount:
			var a Account
			if err = json.Unmarshal(line, &a); err == nil {
				l.accounts = append(l.accounts, a)
			}
		case recordCategory:
			var c Category
			if err = json.Unmarshal(line, &c); err == nil {
				l.categories = append(l.categories, c)
			}
		case recordRate:
			var rt Rate
			if err = json.Unmarshal(line, &rt); err == nil {
				err = l.Rates.Add(rt)
			}
		case recordTransaction:
			var tx Transaction
			if err = json.Unmarshal(line, &tx); err == nil {
				l.transactions = append(l.transactions, tx)
			}
		case recordSimulation:
			s := new(Simulation)
			if err = json.Unmarshal(line, s); err == nil {
				l.simulations = append(l.simulations, s)
			}
		default:
			err = fmt.Errorf("unknown record %q", identifier.Record)
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading ledger: %w", err)
	}
	if l == nil {
		return nil, fmt.Errorf("missing ledger record")
	}
	l.stableSort()
	l.RefreshRecurrenceMetadata()
	return l, nil
}
