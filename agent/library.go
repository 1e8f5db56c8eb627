package agent

import (
	"context"

	"github.com/etnz/budget/logger"
	"google.golang.org/genai"
)

// Library answers the function calls of a model.
type Library func(context.Context, *genai.FunctionCall) *genai.FunctionResponse

// Function is a tool a model can call.
type Function interface {
	Declaration() *genai.FunctionDeclaration
	// Call answers with an "output" or an "error" response.
	Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse
}

// NewLibrary dispatches each call to the function declared with its name.
// When two functions share a name the first one wins.
func NewLibrary(functions ...Function) Library {
	byName := make(map[string]Function, len(functions))
	for _, f := range functions {
		name := f.Declaration().Name
		if _, dup := byName[name]; !dup {
			byName[name] = f
		}
	}
	return func(ctx context.Context, call *genai.FunctionCall) *genai.FunctionResponse {
		f, ok := byName[call.Name]
		if !ok {
			logger.Get().Warnw("model called an unknown function", "function", call.Name)
			return errorResponse(call.ID, call.Name, "unknown function %s", call.Name)
		}
		resp := f.Call(ctx, call.ID, call.Args)
		if msg, failed := resp.Response["error"]; failed {
			logger.Get().Debugw("function call failed", "function", call.Name, "error", msg)
		}
		return resp
	}
}

// Tools declares functions as a single tool.
func Tools(functions ...Function) []*genai.Tool {
	decls := make([]*genai.FunctionDeclaration, len(functions))
	for i, f := range functions {
		decls[i] = f.Declaration()
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}
