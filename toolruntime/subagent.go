package toolruntime

import (
	"context"
	"fmt"

	"github.com/alphasolve/alphasolve/config"
	"github.com/alphasolve/alphasolve/llmclient"
)

// subagentSystemPrompt instructs the nested model to stay terse and to
// prefer delegating numeric/symbolic work to its two tools rather than
// reasoning about arithmetic in prose.
const subagentSystemPrompt = `You are a focused math research assistant. ` +
	`Answer the question concisely in plain text. Use run_python or ` +
	`run_wolfram for any computation you are not certain of; do not show ` +
	`your work, only the conclusion and the minimum justification needed ` +
	`to trust it.`

// MathResearchSubagentTool is spec.md §4.3's math_research_subagent: a
// nested, memoryless model call restricted to run_python/run_wolfram,
// used by the Solver/Refiner to delegate a bounded computational
// side-question without growing the main conversation's transcript.
type MathResearchSubagentTool struct {
	providerFactory func(role config.RoleConfig, apiKey string) llmclient.Provider
}

// NewMathResearchSubagentTool builds the tool. providerFactory defaults
// to llmclient.NewOpenAICompatProvider; tests substitute a scripted one.
func NewMathResearchSubagentTool(providerFactory func(config.RoleConfig, string) llmclient.Provider) *MathResearchSubagentTool {
	if providerFactory == nil {
		providerFactory = func(role config.RoleConfig, apiKey string) llmclient.Provider {
			return llmclient.NewOpenAICompatProvider(role, apiKey)
		}
	}
	return &MathResearchSubagentTool{providerFactory: providerFactory}
}

func (t *MathResearchSubagentTool) Name() string { return "math_research_subagent" }

func (t *MathResearchSubagentTool) Description() string {
	return "Delegates a self-contained computational or research question to a fresh, memoryless assistant equipped with run_python and run_wolfram."
}

func (t *MathResearchSubagentTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"task_description": map[string]any{
				"type":        "string",
				"description": "A self-contained task description; the sub-agent has no memory of the calling conversation.",
			},
		},
		"required": []string{"task_description"},
	}
}

func (t *MathResearchSubagentTool) Execute(ctx context.Context, tc *Context, args map[string]any) (string, error) {
	taskDescription, _ := args["task_description"].(string)
	if taskDescription == "" {
		return "error: task_description is required", nil
	}

	provider := t.providerFactory(tc.SubagentRole, tc.SubagentAPIKey)

	registry := NewRegistry()
	if err := wireSubagentTools(registry, tc); err != nil {
		return "", fmt.Errorf("toolruntime: subagent tool setup: %w", err)
	}

	client := llmclient.New(provider, registry.Definitions([]string{"run_python", "run_wolfram"}), registry, tc.SubagentRole.MaxRetries)

	baseline := []llmclient.Message{
		{Role: "system", Content: subagentSystemPrompt},
		{Role: "user", Content: taskDescription},
	}

	subCtx := &Context{Python: tc.Python, Wolfram: tc.Wolfram}
	result, err := client.GetResult(ctx, baseline, nil, subCtx)
	if err != nil {
		return fmt.Sprintf("error: subagent failed: %v", err), nil
	}
	return result.AnswerText, nil
}

// wireSubagentTools registers the two tools the sub-agent may call,
// sharing the parent conversation's Python/Wolfram sessions so it sees
// the same persistent state the outer conversation has built up.
func wireSubagentTools(r *Registry, tc *Context) error {
	if err := r.Register(&RunPythonTool{}); err != nil {
		return err
	}
	if err := r.Register(&RunWolframTool{}); err != nil {
		return err
	}
	return nil
}
