package budget

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NewID returns a new time ordered identifier.
func NewID() string { return uuid.Must(uuid.NewV7()).String() }

// AccountKind tells what an account stands for.
type AccountKind int

const (
	UnknownAccount AccountKind = iota
	Bank
	Cash
	Savings
	// Expense accounts are destinations money goes to (shops, landlords).
	Expense
	// Income accounts are sources money comes from (employers).
	Income
)

func (k AccountKind) String() string {
	switch k {
	case Bank:
		return "bank"
	case Cash:
		return "cash"
	case Savings:
		return "savings"
	case Expense:
		return "expense"
	case Income:
		return "income"
	default:
		return "unknown"
	}
}

// ParseAccountKind parses a string into an AccountKind.
func ParseAccountKind(s string) (AccountKind, error) {
	switch s {
	case "bank":
		return Bank, nil
	case "cash":
		return Cash, nil
	case "savings":
		return Savings, nil
	case "expense":
		return Expense, nil
	case "income":
		return Income, nil
	case "unknown", "":
		return UnknownAccount, nil
	default:
		return UnknownAccount, fmt.Errorf("unknown account kind: %q", s)
	}
}

func (k AccountKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *AccountKind) UnmarshalText(text []byte) error {
	v, err := ParseAccountKind(string(text))
	*k = v
	return err
}

// Account is a place money is held in, comes from or goes to.
type Account struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Kind           AccountKind      `json:"kind"`
	Currency       string           `json:"currency,omitempty"`
	OpeningBalance *decimal.Decimal `json:"opening_balance,omitempty"`
}

// NewAccount creates an account with a fresh identifier.
func NewAccount(name string, kind AccountKind, currency string) Account {
	return Account{ID: NewID(), Name: name, Kind: kind, Currency: currency}
}

// Validate checks the account fields.
func (a Account) Validate() error {
	if a.ID == "" {
		return Errorf(ErrInvalidInput, "account id is missing")
	}
	if a.Name == "" {
		return Errorf(ErrInvalidInput, "account %s has no name", a.ID)
	}
	if a.Currency != "" {
		if err := ValidateCurrency(a.Currency); err != nil {
			return Wrap(ErrInvalidInput, fmt.Errorf("account %q: %w", a.Name, err))
		}
	}
	return nil
}
