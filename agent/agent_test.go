package agent

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/etnz/budget"
	"github.com/etnz/budget/date"
	"google.golang.org/genai"
)

func testLedger(t *testing.T) *budget.Ledger {
	t.Helper()
	l, err := budget.NewLedger("home", "USD", date.Every(date.Monthly), time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	bank, err := l.AddAccount(budget.NewAccount("Checking", budget.Bank, ""))
	if err != nil {
		t.Fatal(err)
	}
	landlord, err := l.AddAccount(budget.NewAccount("Landlord", budget.Expense, ""))
	if err != nil {
		t.Fatal(err)
	}
	_, err = l.AddTransaction(budget.Transaction{
		From:           bank.ID,
		To:             landlord.ID,
		ScheduledDate:  date.MustParse("2025-01-05"),
		BudgetedAmount: budget.D(1500),
		Recurrence:     &budget.Recurrence{Interval: date.Every(date.Monthly)},
	})
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func TestAdvisorLibrary(t *testing.T) {
	e := NewAdvisor("test-model", testLedger(t), date.MustParse("2025-01-15"))
	if got := len(e.Config.Tools[0].FunctionDeclarations); got != 4 {
		t.Errorf("advisor declares %d functions, want 4", got)
	}

	testCases := []struct {
		name   string
		args   map[string]any
		want   string // in the output
		errMsg string // in the error
	}{
		{name: "summarize", want: "# Budget 2025-01"},
		{name: "summarize", args: map[string]any{"start": "2025-02-01", "end": "2025-03-01"}, want: "# Budget 2025-02"},
		{name: "summarize", args: map[string]any{"start": "2025-03-01", "end": "2025-02-01"}, errMsg: "invalid window"},
		{name: "forecast", args: map[string]any{"start": "2025-01-01", "end": "2025-04-01"}, want: "2025-03-05"},
		{name: "list_transactions", args: map[string]any{"start": "2025-01-01", "end": "2025-02-01"}, want: "$1,500.00"},
		{name: "list_transactions", args: map[string]any{"start": 12, "end": "2025-02-01"}, errMsg: "expected a string"},
		{name: "read_topic", args: map[string]any{"topic": "recurrence"}, want: "# Recurrence"},
		{name: "read_topic", args: map[string]any{"topic": "nope"}, errMsg: "not found"},
		{name: "unknown", errMsg: "unknown function"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := e.Library(context.Background(), &genai.FunctionCall{ID: "1", Name: tc.name, Args: tc.args})
			if resp.ID != "1" || resp.Name != tc.name {
				t.Errorf("response to %s(1) is %s(%s)", tc.name, resp.Name, resp.ID)
			}
			if tc.errMsg != "" {
				msg, _ := resp.Response["error"].(string)
				if !strings.Contains(msg, tc.errMsg) {
					t.Errorf("%s(%v) error = %q, want %q", tc.name, tc.args, msg, tc.errMsg)
				}
				return
			}
			output, _ := resp.Response["output"].(string)
			if !strings.Contains(output, tc.want) {
				t.Errorf("%s(%v) output misses %q:\n%s%v", tc.name, tc.args, tc.want, output, resp.Response["error"])
			}
		})
	}
}

func TestText(t *testing.T) {
	c := &genai.Content{Parts: []*genai.Part{{Text: "over "}, {Text: "budget"}}}
	if got := Text(c); got != "over budget" {
		t.Errorf("Text() = %q", got)
	}
}

func TestAskNotStarted(t *testing.T) {
	e := &Expert{Name: "idle"}
	if _, err := e.Ask(context.Background(), &genai.Part{Text: "hello"}); err == nil {
		t.Errorf("Ask() on a chat not started succeeded")
	}
}

type echoFunc struct{ name, output string }

func (f *echoFunc) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{Name: f.name}
}

func (f *echoFunc) Call(_ context.Context, id string, _ map[string]any) *genai.FunctionResponse {
	return outputResponse(id, f.name, f.output)
}

func TestNewLibrary(t *testing.T) {
	lib := NewLibrary(&echoFunc{"echo", "first"}, &echoFunc{"echo", "second"}, &echoFunc{"other", "other"})
	if got := lib(context.Background(), &genai.FunctionCall{Name: "echo"}).Response["output"]; got != "first" {
		t.Errorf("echo answered %v, want the first function", got)
	}
	if got := lib(context.Background(), &genai.FunctionCall{Name: "other"}).Response["output"]; got != "other" {
		t.Errorf("other answered %v", got)
	}
	if got := len(Tools(&echoFunc{name: "a"}, &echoFunc{name: "b"})[0].FunctionDeclarations); got != 2 {
		t.Errorf("Tools() declares %d functions, want 2", got)
	}
}
