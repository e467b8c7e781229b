package llmclient

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alphasolve/alphasolve/config"
	"github.com/alphasolve/alphasolve/internal/httpclient"
)

// OpenAICompatProvider speaks the OpenAI-compatible streaming chat-
// completions wire format described in spec.md §6, modeled on the
// teacher's llms.OpenAIProvider (llms/openai.go).
type OpenAICompatProvider struct {
	role   config.RoleConfig
	apiKey string
	http   *http.Client
}

// NewOpenAICompatProvider builds a provider for one role's configuration.
func NewOpenAICompatProvider(role config.RoleConfig, apiKey string) *OpenAICompatProvider {
	return &OpenAICompatProvider{
		role:   role,
		apiKey: apiKey,
		http:   &http.Client{Timeout: time.Duration(role.TimeoutSeconds) * time.Second},
	}
}

func (p *OpenAICompatProvider) ModelName() string { return p.role.Model }

// wire request/response shapes, matching the teacher's structs.

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
	Tools       []wireTool    `json:"tools,omitempty"`
	ToolChoice  string        `json:"tool_choice,omitempty"`
	ExtraBody   map[string]any `json:"extra_body,omitempty"`
}

type wireMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content,omitempty"`
	ToolCalls  []wireToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

type wireTool struct {
	Type     string       `json:"type"`
	Function wireFunction `json:"function"`
}

type wireFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// wireToolCall covers both the complete (non-streaming) shape and a
// streaming delta fragment. Index is only populated on deltas; it is the
// field the teacher's equivalent struct was missing (see DESIGN.md).
type wireToolCall struct {
	Index    *int             `json:"index,omitempty"`
	ID       string           `json:"id,omitempty"`
	Type     string           `json:"type,omitempty"`
	Function wireFunctionCall `json:"function"`
}

type wireFunctionCall struct {
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

type streamResponse struct {
	Choices []streamChoice `json:"choices"`
	Usage   *wireUsage     `json:"usage,omitempty"`
	Error   *wireError     `json:"error,omitempty"`
}

type streamChoice struct {
	Delta        wireDelta `json:"delta"`
	FinishReason string    `json:"finish_reason"`
}

type wireDelta struct {
	Content          string         `json:"content,omitempty"`
	ReasoningContent string         `json:"reasoning_content,omitempty"`
	ToolCalls        []wireToolCall `json:"tool_calls,omitempty"`
}

type wireUsage struct {
	TotalTokens int `json:"total_tokens"`
}

type wireError struct {
	Message string `json:"message"`
}

func (p *OpenAICompatProvider) buildRequest(messages []Message, tools []ToolDefinition) chatRequest {
	wireMsgs := make([]wireMessage, len(messages))
	for i, m := range messages {
		wm := wireMessage{Role: m.Role, Content: m.Content, ToolCallID: m.ToolCallID}
		for _, tc := range m.ToolCalls {
			wm.ToolCalls = append(wm.ToolCalls, wireToolCall{
				ID:   tc.ID,
				Type: "function",
				Function: wireFunctionCall{
					Name:      tc.Name,
					Arguments: tc.RawArgs,
				},
			})
		}
		wireMsgs[i] = wm
	}

	req := chatRequest{
		Model:       p.role.Model,
		Messages:    wireMsgs,
		MaxTokens:   p.role.MaxTokens,
		Temperature: p.role.Temperature,
		Stream:      true,
	}
	if p.role.Thinking {
		req.ExtraBody = map[string]any{"thinking": true}
	}
	if len(tools) > 0 {
		req.ToolChoice = "auto"
		for _, t := range tools {
			req.Tools = append(req.Tools, wireTool{
				Type: "function",
				Function: wireFunction{
					Name:        t.Name,
					Description: t.Description,
					Parameters:  t.Parameters,
				},
			})
		}
	}
	return req
}

// toolCallAccumulator merges streamed fragments of one tool call keyed by
// its delta index, per spec.md §4.4 point 2 and §9's redesign note.
type toolCallAccumulator struct {
	id        string
	name      string
	arguments strings.Builder
}

// Stream issues one streaming completion request, retrying the whole
// attempt from scratch on a retryable HTTP failure, and emits fragments on
// the returned channel. Per spec.md §4.4 step 3, a stream that ends
// without a terminal finish_reason in {stop, tool_calls} is a service
// error; the caller (Client) is responsible for the outer retry-from-
// baseline loop described in spec.md §4.4's last paragraph — Stream itself
// only retries HTTP responses with a retryable status (429, 500, 502, 503,
// 504), which never produced a partial stream worth discarding; a
// connection failure is returned without a retry at this level.
func (p *OpenAICompatProvider) Stream(ctx context.Context, messages []Message, tools []ToolDefinition) (<-chan StreamChunk, error) {
	request := p.buildRequest(messages, tools)
	out := make(chan StreamChunk, 64)

	go func() {
		defer close(out)
		if err := p.runStream(ctx, request, out); err != nil {
			out <- StreamChunk{Type: ChunkError, Err: err}
		}
	}()

	return out, nil
}

func (p *OpenAICompatProvider) runStream(ctx context.Context, request chatRequest, out chan<- StreamChunk) error {
	maxRetries := p.role.MaxRetries
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		resp, retryInfo, err := p.attempt(ctx, request)
		if err == nil {
			return p.consumeStream(resp, out)
		}
		lastErr = err

		var retryable *httpclient.RetryableError
		if !isRetryable(err, &retryable) || attempt == maxRetries {
			return err
		}

		delay := backoffDelay(attempt, retryInfo)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return lastErr
}

func isRetryable(err error, out **httpclient.RetryableError) bool {
	re, ok := err.(*httpclient.RetryableError)
	if ok {
		*out = re
	}
	return ok
}

func backoffDelay(attempt int, info httpclient.RateLimitInfo) time.Duration {
	if info.RetryAfter > 0 {
		return info.RetryAfter
	}
	base := time.Second
	exp := time.Duration(math.Pow(2, float64(attempt))) * base
	return exp + exp/10
}

func (p *OpenAICompatProvider) attempt(ctx context.Context, request chatRequest) (*http.Response, httpclient.RateLimitInfo, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return nil, httpclient.RateLimitInfo{}, fmt.Errorf("llmclient: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.role.Host+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, httpclient.RateLimitInfo{}, fmt.Errorf("llmclient: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, httpclient.RateLimitInfo{}, fmt.Errorf("llmclient: request failed: %w", err)
	}

	info := httpclient.ParseOpenAIRateLimitHeaders(resp.Header)
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(resp.Body)
		if httpclient.IsRetryableStatus(resp.StatusCode) {
			return nil, info, &httpclient.RetryableError{
				StatusCode: resp.StatusCode,
				Message:    string(respBody),
				RetryAfter: info.RetryAfter,
			}
		}
		return nil, info, fmt.Errorf("llmclient: request failed with status %d: %s", resp.StatusCode, respBody)
	}
	return resp, info, nil
}

func (p *OpenAICompatProvider) consumeStream(resp *http.Response, out chan<- StreamChunk) error {
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	accumulators := make(map[int]*toolCallAccumulator)
	order := make([]int, 0)
	totalTokens := 0
	finishReason := ""

	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("llmclient: read stream: %w", err)
		}

		line = bytes.TrimSpace(line)
		if len(line) == 0 || !bytes.HasPrefix(line, []byte("data: ")) {
			continue
		}
		line = line[len("data: "):]
		if bytes.Equal(line, []byte("[DONE]")) {
			break
		}

		var chunk streamResponse
		if err := json.Unmarshal(line, &chunk); err != nil {
			continue
		}
		if chunk.Error != nil {
			return fmt.Errorf("llmclient: provider error: %s", chunk.Error.Message)
		}
		if chunk.Usage != nil {
			totalTokens = chunk.Usage.TotalTokens
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		choice := chunk.Choices[0]

		if choice.Delta.Content != "" {
			out <- StreamChunk{Type: ChunkText, Text: choice.Delta.Content}
		}
		if choice.Delta.ReasoningContent != "" {
			out <- StreamChunk{Type: ChunkText, Reasoning: choice.Delta.ReasoningContent}
		}

		for _, delta := range choice.Delta.ToolCalls {
			idx := 0
			if delta.Index != nil {
				idx = *delta.Index
			}
			acc, ok := accumulators[idx]
			if !ok {
				acc = &toolCallAccumulator{}
				accumulators[idx] = acc
				order = append(order, idx)
			}
			if delta.ID != "" {
				acc.id = delta.ID
			}
			if delta.Function.Name != "" {
				acc.name = delta.Function.Name
			}
			acc.arguments.WriteString(delta.Function.Arguments)
		}

		if choice.FinishReason != "" {
			finishReason = choice.FinishReason
			break
		}
	}

	if finishReason != "stop" && finishReason != "tool_calls" {
		return fmt.Errorf("llmclient: stream ended without a terminal finish_reason (got %q)", finishReason)
	}

	for _, idx := range order {
		acc := accumulators[idx]
		id := acc.id
		if id == "" {
			// Some OpenAI-compatible providers omit tool_calls[].id on
			// streamed deltas entirely; callers (the tool dispatcher,
			// the lemma history) key off a non-empty ID regardless.
			id = uuid.NewString()
		}
		out <- StreamChunk{
			Type: ChunkToolCall,
			ToolCall: &ToolCall{
				ID:      id,
				Name:    acc.name,
				RawArgs: acc.arguments.String(),
			},
		}
	}

	out <- StreamChunk{Type: ChunkDone, Tokens: totalTokens, FinishReason: finishReason}
	return nil
}
