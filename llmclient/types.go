// Package llmclient runs the multi-turn, tool-augmented conversation loop
// described in spec.md §4.4: stream a chat completion, accumulate tool
// calls by their delta index, dispatch each call through a tool runtime,
// and retry the whole attempt from its original baseline messages on
// transient failure.
//
// Generalizes the teacher's llms.OpenAIProvider/llms.AnthropicProvider
// (llms/openai.go, llms/anthropic.go) into a single provider interface;
// corrects the teacher's streaming tool-call accumulator, which merges
// fragments by map enumeration order instead of the delta's own Index
// field (see openai.go in this package and DESIGN.md).
package llmclient

import "context"

// Message is one turn of a conversation in the provider-agnostic shape the
// Client and its Provider exchange.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall is one function call the model requested, with its arguments
// already parsed (or repaired) into a map.
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
	RawArgs   string
}

// ToolDefinition describes one callable tool in provider-agnostic form.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ChunkType discriminates a StreamChunk's payload.
type ChunkType string

const (
	ChunkText     ChunkType = "text"
	ChunkToolCall ChunkType = "tool_call"
	ChunkDone     ChunkType = "done"
	ChunkError    ChunkType = "error"
)

// StreamChunk is one fragment emitted by a Provider's streaming call.
type StreamChunk struct {
	Type         ChunkType
	Text         string
	Reasoning    string
	ToolCall     *ToolCall
	FinishReason string
	Tokens       int
	Err          error
}

// Dispatcher executes one resolved tool call and returns its textual
// result for inclusion in a tool-role message. Implemented by
// toolruntime.Registry so llmclient has no import-time dependency on the
// tool runtime's concrete sandboxes.
type Dispatcher interface {
	Dispatch(ctx context.Context, toolCtx ToolContext, call ToolCall) (string, error)
}

// ToolContext carries per-conversation tool state (python env, wolfram
// session, current lemma reference) opaquely to llmclient, whose only job
// is to pass it through to the Dispatcher unchanged.
type ToolContext = any
