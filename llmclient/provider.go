package llmclient

import "context"

// Provider speaks one concrete wire protocol to an LLM backend. Client
// drives it; Provider has no knowledge of tool dispatch or retry policy.
type Provider interface {
	// Stream issues one streaming completion request and returns a channel
	// of fragments terminated by a ChunkDone or ChunkError chunk. The
	// channel is closed after the terminal chunk.
	Stream(ctx context.Context, messages []Message, tools []ToolDefinition) (<-chan StreamChunk, error)

	// ModelName identifies the model in logs and error messages.
	ModelName() string
}
