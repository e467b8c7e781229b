package nodes

import (
	"context"

	"github.com/alphasolve/alphasolve/llmclient"
)

// scriptedProvider replays one StreamChunk batch per call to Stream, in
// order, to drive nodes' LLM-backed Exec phases without a real HTTP
// round trip.
type scriptedProvider struct {
	batches [][]llmclient.StreamChunk
	calls   int
}

func (p *scriptedProvider) Stream(_ context.Context, _ []llmclient.Message, _ []llmclient.ToolDefinition) (<-chan llmclient.StreamChunk, error) {
	batch := p.batches[p.calls]
	p.calls++
	ch := make(chan llmclient.StreamChunk, len(batch))
	for _, c := range batch {
		ch <- c
	}
	close(ch)
	return ch, nil
}

func (p *scriptedProvider) ModelName() string { return "scripted" }

func textBatch(text string) []llmclient.StreamChunk {
	return []llmclient.StreamChunk{
		{Type: llmclient.ChunkText, Text: text},
		{Type: llmclient.ChunkDone, FinishReason: "stop"},
	}
}

// noopDispatcher never expects to be called in tests that configure no
// tools.
type noopDispatcher struct{}

func (noopDispatcher) Dispatch(_ context.Context, _ llmclient.ToolContext, call llmclient.ToolCall) (string, error) {
	return "unexpected call to " + call.Name, nil
}

func newClient(provider *scriptedProvider, dispatcher llmclient.Dispatcher) *llmclient.Client {
	return llmclient.New(provider, nil, dispatcher, 1)
}
