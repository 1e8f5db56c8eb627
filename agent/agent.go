// Package agent lets a Gemini model comment a budget ledger.
package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"google.golang.org/genai"
)

// Agent runs a chat session between the user and an expert.
type Agent struct {
	w      io.Writer
	r      *bufio.Reader
	Expert *Expert
	// Render formats the markdown answers of the expert.
	Render func(string) string
}

// New creates an agent writing to w and reading the user questions from r.
func New(w io.Writer, r io.Reader, e *Expert) *Agent {
	return &Agent{
		w:      w,
		r:      bufio.NewReader(r),
		Expert: e,
		Render: func(s string) string { return s },
	}
}

const prompt = "explain> "

// Run sends the prompts to the expert, then reads questions from the user
// until "bye" or the end of the input. Without interactive, it returns after
// the prompts.
func (a *Agent) Run(ctx context.Context, client *genai.Client, interactive bool, prompts ...string) error {
	if a.Expert.chat == nil {
		if err := a.Expert.Start(ctx, client); err != nil {
			return err
		}
	}

	for {
		var input string
		if len(prompts) > 0 {
			input, prompts = prompts[0], prompts[1:]
		} else if !interactive {
			return nil
		} else {
			fmt.Fprint(a.w, prompt)
			var err error
			input, err = a.r.ReadString('\n')
			if err != nil {
				if err == io.EOF {
					return nil // Clean exit on Ctrl+D
				}
				return err
			}
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if input == "bye" {
			return nil
		}

		content, err := a.Expert.Ask(ctx, &genai.Part{Text: input})
		if err != nil {
			return err
		}
		fmt.Fprintln(a.w, a.Render(Text(content)))
	}
}
