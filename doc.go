// Package budget is the computation engine of a personal budget ledger. It is
// designed to be local-first and auditable: the ledger is a plain value,
// persisted as human-readable JSONL, and every report is recomputed from it.
//
// The core functionalities include:
//   - Ledger Management: accounts, categories and transactions that carry a
//     plan (scheduled date, budgeted amount) and, once performed, a
//     realization (actual date, actual amount).
//   - Recurrences: transactions repeating on a calendar interval, with
//     termination conditions and exception dates. Due occurrences are
//     materialized into the ledger; future ones are forecast without
//     touching it.
//   - Budget Reports: plan vs. actual totals for a window, broken down per
//     category and per account, valued in the ledger base currency through
//     an FX book.
//   - Simulations: named what-if change sets previewed on a copy of the
//     ledger, compared with the base, then applied or discarded.
//   - Data Persistence: encoding and decoding ledgers to and from JSONL, and
//     a folder based store with backups.
//
// Engine functions are synchronous and keep no shared state: read operations
// (Summarize, Forecast, SimulationImpact) never modify the ledger, mutations
// (MaterializeDue, ApplySimulation, Add/Modify/Remove) need exclusive access
// which the caller provides.
//
// Calendar arithmetic lives in the date sub package.
package budget
