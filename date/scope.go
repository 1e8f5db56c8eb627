package date

import (
	"encoding/json"
	"fmt"
)

// Scope classifies a window relative to a reference date.
type Scope int

const (
	// Current windows contain the reference date.
	Current Scope = iota
	// Past windows end at or before the reference date.
	Past
	// Future windows start after the reference date.
	Future
	// Custom windows are explicit ranges not aligned to the budget period.
	Custom
)

func (s Scope) String() string {
	switch s {
	case Current:
		return "current"
	case Past:
		return "past"
	case Future:
		return "future"
	case Custom:
		return "custom"
	default:
		return fmt.Sprintf("scope(%d)", int(s))
	}
}

// ParseScope parses the names returned by String.
func ParseScope(s string) (Scope, error) {
	switch s {
	case "current":
		return Current, nil
	case "past":
		return Past, nil
	case "future":
		return Future, nil
	case "custom":
		return Custom, nil
	default:
		return Custom, fmt.Errorf("unknown scope %q", s)
	}
}

func (s Scope) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

func (s *Scope) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	v, err := ParseScope(str)
	if err != nil {
		return err
	}
	*s = v
	return nil
}
