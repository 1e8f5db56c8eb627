package budget

import "fmt"

// Error is a ledger engine error carrying one of the error kinds below.
// Compare with errors.Is against the kind sentinels:
//
//	if errors.Is(err, budget.ErrNotFound) { ... }
type Error struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Internal error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Internal != nil {
		return e.Message + ": " + e.Internal.Error()
	}
	return e.Message
}

// Unwrap returns the internal error for use with errors.Is/As.
func (e *Error) Unwrap() error { return e.Internal }

// Is matches any Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Wrap creates a new Error of the same kind wrapping an internal error.
func Wrap(kind *Error, internal error) *Error {
	return &Error{Code: kind.Code, Message: kind.Message, Internal: internal}
}

// Errorf creates a new Error of the same kind with a formatted message.
func Errorf(kind *Error, format string, args ...any) *Error {
	return &Error{Code: kind.Code, Message: fmt.Sprintf(format, args...)}
}

// Error kinds.
var (
	// ErrNotFound reports an account, category, transaction or simulation id with no entity.
	ErrNotFound = &Error{Code: "NOT_FOUND", Message: "not found"}
	// ErrInvalidInput reports malformed input: empty windows, empty intervals, bad amounts.
	ErrInvalidInput = &Error{Code: "INVALID_INPUT", Message: "invalid input"}
	// ErrInvalidReference reports a simulation change targeting an unknown transaction.
	ErrInvalidReference = &Error{Code: "INVALID_REFERENCE", Message: "invalid reference"}
	// ErrInvalidOperation reports an operation not allowed in the current state.
	ErrInvalidOperation = &Error{Code: "INVALID_OPERATION", Message: "invalid operation"}
)
