// Package toolruntime implements the named tool registry the LLM Client
// dispatches into when a model emits a tool call (spec.md §4.3): sandboxed
// Python execution, a persistent Wolfram kernel session, a math research
// sub-agent, lemma-editing tools, read-only helpers, and pure
// format-reminder tools.
//
// Grounded on the teacher's tools.Tool/tools.ToolResult interface
// (tools/interfaces.go) and its allowlist + exec.CommandContext + timeout
// pattern (tools/command.go), enriched by None9527-NGOClaw's
// ProcessSandbox (process_sandbox.go) for the persistent-subprocess and
// timeout-kill shape.
package toolruntime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/alphasolve/alphasolve/config"
	"github.com/alphasolve/alphasolve/lemma"
	"github.com/alphasolve/alphasolve/llmclient"
	"github.com/alphasolve/alphasolve/registry"
	"github.com/alphasolve/alphasolve/state"
)

// Tool is one named, model-callable function. Parameters describes its
// arguments as a JSON-Schema-shaped map, mirroring the teacher's
// ToolParameter list but kept as a raw map since llmclient's
// ToolDefinition takes the schema directly.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]any
	Execute(ctx context.Context, tc *Context, args map[string]any) (string, error)
}

// Context isolates one conversation's tool state: its persistent Python
// namespace, its Wolfram kernel session, and a reference to the
// SharedContext so lemma-editing tools can reach the current lemma.
// Per spec.md §4.3, tool dispatch is serial within one conversation, so
// the mutex here guards only against accidental concurrent use, not
// against real contention.
type Context struct {
	mu sync.Mutex

	Python  *PythonSession
	Wolfram *WolframSession
	Shared  *state.SharedContext

	SubagentRole   config.RoleConfig
	SubagentAPIKey string
}

// CurrentLemma resolves the conversation's current lemma, or an error if
// none is set — every lemma-editing and lemma-reading tool needs one.
func (c *Context) CurrentLemma() (*lemma.Lemma, error) {
	l, ok := c.Shared.CurrentLemma()
	if !ok {
		return nil, fmt.Errorf("toolruntime: no current lemma")
	}
	return l, nil
}

// Registry is the name -> Tool store the LLM Client dispatches calls
// through. It implements llmclient.Dispatcher.
type Registry struct {
	base registry.Registry[Tool]
}

// NewRegistry returns an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{base: registry.NewBaseRegistry[Tool]()}
}

// Register adds a tool, keyed by its own Name().
func (r *Registry) Register(t Tool) error {
	return r.base.Register(t.Name(), t)
}

// Definitions returns the llmclient.ToolDefinition list for the named
// tools, in the order given, skipping names not registered.
func (r *Registry) Definitions(names []string) []llmclient.ToolDefinition {
	out := make([]llmclient.ToolDefinition, 0, len(names))
	for _, name := range names {
		t, ok := r.base.Get(name)
		if !ok {
			continue
		}
		out = append(out, llmclient.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return out
}

// Dispatch implements llmclient.Dispatcher. An unknown tool name is a
// tool-level error surfaced to the model (spec.md §7), not a Go error.
func (r *Registry) Dispatch(ctx context.Context, toolCtx llmclient.ToolContext, call llmclient.ToolCall) (string, error) {
	tc, ok := toolCtx.(*Context)
	if !ok {
		return "", fmt.Errorf("toolruntime: tool context has unexpected type %T", toolCtx)
	}

	tc.mu.Lock()
	defer tc.mu.Unlock()

	tool, ok := r.base.Get(call.Name)
	if !ok {
		return fmt.Sprintf("error: unknown tool %q", call.Name), nil
	}
	return tool.Execute(ctx, tc, call.Arguments)
}

// defaultTimeout is used when a config value of zero is handed to a
// session constructor.
const defaultTimeout = 300 * time.Second
