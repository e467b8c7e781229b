package llmclient

import (
	"context"
	"fmt"
)

// Client runs the multi-turn tool-dispatch loop of spec.md §4.4 against
// one Provider. A Client holds no mutable state across calls beyond its
// Provider's own HTTP client, so multiple Clients (or concurrent calls
// into GetResult on the same Client) may run concurrently — spec.md §4.4's
// concurrency note.
type Client struct {
	provider   Provider
	tools      []ToolDefinition
	dispatcher Dispatcher
	maxRetries int
}

// New builds a Client. maxRetries bounds whole-attempt retries from the
// original baseline messages (spec.md §4.4's retry-from-baseline rule).
func New(provider Provider, tools []ToolDefinition, dispatcher Dispatcher, maxRetries int) *Client {
	return &Client{provider: provider, tools: tools, dispatcher: dispatcher, maxRetries: maxRetries}
}

// Result is what GetResult returns: the final assistant text, any
// accumulated reasoning text, and the full updated transcript (baseline
// messages plus every assistant/tool-role message appended along the way).
type Result struct {
	AnswerText    string
	ReasoningText string
	Messages      []Message
}

// GetResult implements spec.md §4.4's algorithm. baseline is deep-copied
// before use — on retry, the conversation restarts from baseline, never
// from a partial stream. tools, if nil, defaults to the Client's
// configured tool set; pass an empty non-nil slice for "no tools".
func (c *Client) GetResult(ctx context.Context, baseline []Message, tools []ToolDefinition, toolCtx ToolContext) (*Result, error) {
	if tools == nil {
		tools = c.tools
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		result, err := c.attempt(ctx, cloneMessages(baseline), tools, toolCtx)
		if err == nil {
			return result, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("llmclient: exhausted %d retries: %w", c.maxRetries, lastErr)
}

// attempt runs one full conversation from messages until the model stops
// requesting tool calls, looping through the streaming + dispatch cycle of
// spec.md §4.4 steps 1-6.
func (c *Client) attempt(ctx context.Context, messages []Message, tools []ToolDefinition, toolCtx ToolContext) (*Result, error) {
	var answerText, reasoningText string

	for {
		chunks, err := c.provider.Stream(ctx, messages, tools)
		if err != nil {
			return nil, fmt.Errorf("llmclient: stream: %w", err)
		}

		var content, reasoning string
		var calls []ToolCall
		var streamErr error
		finishReason := ""

		for chunk := range chunks {
			switch chunk.Type {
			case ChunkText:
				content += chunk.Text
				reasoning += chunk.Reasoning
			case ChunkToolCall:
				calls = append(calls, *chunk.ToolCall)
			case ChunkDone:
				finishReason = chunk.FinishReason
			case ChunkError:
				streamErr = chunk.Err
			}
		}
		if streamErr != nil {
			return nil, streamErr
		}
		if finishReason != "stop" && finishReason != "tool_calls" {
			return nil, fmt.Errorf("llmclient: missing terminal finish_reason")
		}

		answerText = content
		reasoningText += reasoning

		// Arguments must be resolved before the assistant message is built:
		// the transcript (and later, a replayed lemma history) needs each
		// tool call's parsed Arguments attached, not just its raw stream
		// fragments.
		repairErrs := make([]error, len(calls))
		for i := range calls {
			parsed, repairErr := repairArguments(calls[i].RawArgs)
			if repairErr != nil {
				repairErrs[i] = repairErr
			} else {
				calls[i].Arguments = parsed
			}
		}

		assistantMsg := Message{Role: "assistant", Content: content}
		for i := range calls {
			assistantMsg.ToolCalls = append(assistantMsg.ToolCalls, calls[i])
		}
		messages = append(messages, assistantMsg)

		if len(calls) == 0 {
			return &Result{AnswerText: answerText, ReasoningText: reasoningText, Messages: messages}, nil
		}

		for i := range calls {
			messages = c.dispatchOne(ctx, messages, &calls[i], repairErrs[i], toolCtx)
		}
	}
}

// dispatchOne dispatches a single tool call whose Arguments have already
// been resolved, appending its tool-role result message, and returns the
// updated transcript. A call whose arguments failed every repair candidate
// (repairErr != nil) produces a structured error message to the model
// rather than aborting the conversation (spec.md §4.4).
func (c *Client) dispatchOne(ctx context.Context, messages []Message, call *ToolCall, repairErr error, toolCtx ToolContext) []Message {
	if repairErr != nil {
		return append(messages, Message{
			Role:       "tool",
			Content:    repairErr.Error(),
			ToolCallID: call.ID,
		})
	}

	resultText, err := c.dispatcher.Dispatch(ctx, toolCtx, *call)
	if err != nil {
		resultText = fmt.Sprintf("error: %v", err)
	}
	return append(messages, Message{
		Role:       "tool",
		Content:    resultText,
		ToolCallID: call.ID,
	})
}

func cloneMessages(msgs []Message) []Message {
	out := make([]Message, len(msgs))
	for i, m := range msgs {
		cm := m
		cm.ToolCalls = append([]ToolCall(nil), m.ToolCalls...)
		out[i] = cm
	}
	return out
}
