package toolruntime

import (
	"context"
	"fmt"
)

// RunPythonTool exposes the conversation's PythonSession as the
// run_python model tool (spec.md §4.3).
type RunPythonTool struct{}

func (RunPythonTool) Name() string { return "run_python" }

func (RunPythonTool) Description() string {
	return "Executes Python code in a persistent namespace shared across calls in this conversation. A trailing bare expression is echoed like a notebook cell. matplotlib/pylab are forbidden."
}

func (RunPythonTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"code": map[string]any{
				"type":        "string",
				"description": "Python source to execute.",
			},
		},
		"required": []string{"code"},
	}
}

func (RunPythonTool) Execute(ctx context.Context, tc *Context, args map[string]any) (string, error) {
	if tc.Python == nil {
		return "error: python sandbox is not available", nil
	}
	code, _ := args["code"].(string)
	if code == "" {
		return "error: code is required", nil
	}
	return tc.Python.Run(ctx, code)
}

// RunWolframTool exposes the conversation's WolframSession as the
// run_wolfram model tool (spec.md §4.3).
type RunWolframTool struct{}

func (RunWolframTool) Name() string { return "run_wolfram" }

func (RunWolframTool) Description() string {
	return "Evaluates a Wolfram Language expression in a persistent kernel session shared across calls in this conversation."
}

func (RunWolframTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"expression": map[string]any{
				"type":        "string",
				"description": "Wolfram Language expression to evaluate.",
			},
		},
		"required": []string{"expression"},
	}
}

func (RunWolframTool) Execute(ctx context.Context, tc *Context, args map[string]any) (string, error) {
	if tc.Wolfram == nil {
		return "error: wolfram kernel is not available", nil
	}
	expr, _ := args["expression"].(string)
	if expr == "" {
		return "error: expression is required", nil
	}
	text, err := tc.Wolfram.Eval(ctx, expr)
	if err != nil {
		return "", fmt.Errorf("toolruntime: run_wolfram: %w", err)
	}
	return text, nil
}
