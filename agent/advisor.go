package agent

import (
	"context"
	"fmt"

	"github.com/etnz/budget"
	"github.com/etnz/budget/date"
	"github.com/etnz/budget/docs"
	"github.com/etnz/budget/renderer"
	"google.golang.org/genai"
)

// NewAdvisor returns an expert commenting the budget of l as of today. It can
// read the documentation, summarize windows and forecast series.
func NewAdvisor(model string, l *budget.Ledger, today date.Date) *Expert {
	functions := []Function{
		&topicFunc{},
		&summaryFunc{ledger: l, today: today},
		&forecastFunc{ledger: l, today: today},
		&transactionsFunc{ledger: l},
	}
	return &Expert{
		Name:      "Advisor",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: Tools(functions...),
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: fmt.Sprintf(`
			You are a personal budget advisor. Today is %s and amounts are in %s.
			The user shows you budget reports in markdown. Explain them in plain words:
			where the money went, which categories are over budget, what is still to be
			paid and what the next windows look like.
			Use the functions to read the documentation of the budget tool, to summarize
			other windows or to forecast recurring transactions. Never invent figures.
			Answer in markdown, short.
			`, today, l.BaseCurrency)}}},
		},
		Library: NewLibrary(functions...),
	}
}

func errorResponse(id, name, format string, args ...any) *genai.FunctionResponse {
	return &genai.FunctionResponse{
		ID:       id,
		Name:     name,
		Response: map[string]any{"error": fmt.Sprintf(format, args...)},
	}
}

func outputResponse(id, name, output string) *genai.FunctionResponse {
	return &genai.FunctionResponse{
		ID:       id,
		Name:     name,
		Response: map[string]any{"output": output},
	}
}

var dateSchema = &genai.Schema{Type: genai.TypeString, Description: "A date formatted as YYYY-MM-DD."}

// dateArg reads an optional date argument.
func dateArg(args map[string]any, name string, def date.Date) (date.Date, error) {
	v, ok := args[name]
	if !ok || v == "" {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return date.Date{}, fmt.Errorf("argument %s: got %T, expected a string", name, v)
	}
	return date.Parse(s)
}

// windowArgs reads the start and end arguments, or the window containing
// today by default.
func windowArgs(l *budget.Ledger, args map[string]any, today date.Date) (date.Window, error) {
	def := l.WindowContaining(today)
	start, err := dateArg(args, "start", def.Start())
	if err != nil {
		return date.Window{}, err
	}
	end, err := dateArg(args, "end", def.End())
	if err != nil {
		return date.Window{}, err
	}
	return date.NewWindow(start, end)
}

var windowSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"start": dateSchema,
		"end":   dateSchema,
	},
}

type topicFunc struct{}

func (*topicFunc) Declaration() *genai.FunctionDeclaration {
	topics, _ := docs.GetAllTopics()
	return &genai.FunctionDeclaration{
		Name:        "read_topic",
		Description: fmt.Sprintf("Reads a documentation topic of the budget tool. Topics: %v.", topics),
		Parameters: &genai.Schema{
			Type:       genai.TypeObject,
			Properties: map[string]*genai.Schema{"topic": {Type: genai.TypeString}},
			Required:   []string{"topic"},
		},
	}
}

func (f *topicFunc) Call(_ context.Context, id string, args map[string]any) *genai.FunctionResponse {
	name := f.Declaration().Name
	topic, ok := args["topic"].(string)
	if !ok {
		return errorResponse(id, name, "invalid topic %v", args["topic"])
	}
	content, err := docs.GetTopic(topic)
	if err != nil {
		return errorResponse(id, name, "%v", err)
	}
	return outputResponse(id, name, content)
}

type summaryFunc struct {
	ledger *budget.Ledger
	today  date.Date
}

func (*summaryFunc) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        "summarize",
		Description: "Returns the budget summary of the days from start (included) to end (excluded). Defaults to the current budget window.",
		Parameters:  windowSchema,
	}
}

func (f *summaryFunc) Call(_ context.Context, id string, args map[string]any) *genai.FunctionResponse {
	name := f.Declaration().Name
	w, err := windowArgs(f.ledger, args, f.today)
	if err != nil {
		return errorResponse(id, name, "%v", err)
	}
	s, err := f.ledger.Summarize(w, f.today)
	if err != nil {
		return errorResponse(id, name, "%v", err)
	}
	return outputResponse(id, name, renderer.SummaryMarkdown(s))
}

type forecastFunc struct {
	ledger *budget.Ledger
	today  date.Date
}

func (*forecastFunc) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        "forecast",
		Description: "Lists the occurrences of recurring transactions from start (included) to end (excluded). Defaults to the current budget window.",
		Parameters:  windowSchema,
	}
}

func (f *forecastFunc) Call(_ context.Context, id string, args map[string]any) *genai.FunctionResponse {
	name := f.Declaration().Name
	w, err := windowArgs(f.ledger, args, f.today)
	if err != nil {
		return errorResponse(id, name, "%v", err)
	}
	r, err := f.ledger.Forecast(w, f.today, "")
	if err != nil {
		return errorResponse(id, name, "%v", err)
	}
	return outputResponse(id, name, renderer.ForecastMarkdown(f.ledger, r))
}

type transactionsFunc struct {
	ledger *budget.Ledger
}

func (*transactionsFunc) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        "list_transactions",
		Description: "Lists the transactions scheduled from start (included) to end (excluded).",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"start": dateSchema,
				"end":   dateSchema,
			},
			Required: []string{"start", "end"},
		},
	}
}

func (f *transactionsFunc) Call(_ context.Context, id string, args map[string]any) *genai.FunctionResponse {
	name := f.Declaration().Name
	w, err := windowArgs(f.ledger, args, date.Date{})
	if err != nil {
		return errorResponse(id, name, "%v", err)
	}
	return outputResponse(id, name, renderer.TransactionsMarkdown(f.ledger, f.ledger.Transactions(budget.InWindow(w))))
}
