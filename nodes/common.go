// Package nodes implements the four flow.Node roles that drive one
// AlphaSolve workflow invocation: Solver, Verifier, Refiner, and
// Summarizer (spec.md §4.5-§4.8). Each is grounded directly on the
// spec's own prep/exec/post description; the package layout (one file
// per role) mirrors the teacher's one-file-per-concern style under
// tools/.
package nodes

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/alphasolve/alphasolve/flow"
	"github.com/alphasolve/alphasolve/lemma"
	"github.com/alphasolve/alphasolve/llmclient"
)

// Local transition actions, additional to flow's sentinel set, per
// spec.md §3's full action vocabulary.
const (
	ActionConjectureGenerated  flow.Action = "CONJECTURE_GENERATED"
	ActionConjectureVerified   flow.Action = "CONJECTURE_VERIFIED"
	ActionConjectureUnverified flow.Action = "CONJECTURE_UNVERIFIED"
	ActionRefineSuccess        flow.Action = "REFINE_SUCCESS"
)

// solverOutputPattern matches either of the two legal Solver response
// shapes (spec.md §6), requiring the whole trimmed response to match
// with nothing before or after.
var solverOutputPattern = regexp.MustCompile(
	`(?s)^<(conjecture|final_conjecture)>(.*)</(?:conjecture|final_conjecture)>` +
		`<proof>(.*)</proof>` +
		`<dependency>(.*)</dependency>$`,
)

// parsedSolverOutput is a Solver response broken into its tagged parts.
type parsedSolverOutput struct {
	Tag          string // "conjecture" or "final_conjecture"
	Statement    string
	Proof        string
	Dependencies []int
}

// parseSolverOutput extracts the conjecture/final_conjecture, proof, and
// dependency tags from a Solver's final assistant text. Per spec.md
// §4.5, any deviation — missing tags, extra surrounding text, or a
// dependency region that is not a JSON array of integers — is a format
// error the caller should treat as a retryable Exec failure.
func parseSolverOutput(answer string) (*parsedSolverOutput, error) {
	trimmed := strings.TrimSpace(answer)
	m := solverOutputPattern.FindStringSubmatch(trimmed)
	if m == nil {
		return nil, fmt.Errorf("nodes: solver response missing required tags or has surrounding text")
	}

	var deps []int
	if err := json.Unmarshal([]byte(strings.TrimSpace(m[4])), &deps); err != nil {
		return nil, fmt.Errorf("nodes: solver dependency region is not a JSON array of integers: %w", err)
	}

	return &parsedSolverOutput{
		Tag:          m[1],
		Statement:    strings.TrimSpace(m[2]),
		Proof:        strings.TrimSpace(m[3]),
		Dependencies: deps,
	}, nil
}

// toLemmaMessages converts an llmclient transcript into the shape
// lemma.Lemma.HistoryMessages stores. RawArgs is carried through alongside
// the parsed Arguments: toLLMMessages later hands it straight back to
// OpenAICompatProvider.buildRequest, which replays a tool call's arguments
// on the wire verbatim rather than re-serializing them.
func toLemmaMessages(msgs []llmclient.Message) []lemma.Message {
	out := make([]lemma.Message, len(msgs))
	for i, m := range msgs {
		lm := lemma.Message{Role: m.Role, Content: m.Content, ToolCallID: m.ToolCallID}
		for _, tc := range m.ToolCalls {
			lm.ToolCalls = append(lm.ToolCalls, lemma.ToolCall{
				ID:        tc.ID,
				Name:      tc.Name,
				Arguments: tc.Arguments,
				RawArgs:   tc.RawArgs,
			})
		}
		out[i] = lm
	}
	return out
}

// toLLMMessages converts a stored lemma transcript back into the shape
// llmclient.Client.GetResult expects, so Refiner can resume a lemma's
// history as the baseline for its next conversation turn.
func toLLMMessages(msgs []lemma.Message) []llmclient.Message {
	out := make([]llmclient.Message, len(msgs))
	for i, m := range msgs {
		lm := llmclient.Message{Role: m.Role, Content: m.Content, ToolCallID: m.ToolCallID}
		for _, tc := range m.ToolCalls {
			lm.ToolCalls = append(lm.ToolCalls, llmclient.ToolCall{
				ID:        tc.ID,
				Name:      tc.Name,
				Arguments: tc.Arguments,
				RawArgs:   tc.RawArgs,
			})
		}
		out[i] = lm
	}
	return out
}

// noTools is passed to GetResult for sub-calls (secondary yes/no checks,
// verifier passes) that must not invoke any tool.
var noTools = []llmclient.ToolDefinition{}

// hasEditTool reports whether any assistant message in msgs carries a
// tool call to modify_statement or modify_proof — Refiner's test for
// "a useful edit was made" (spec.md §4.7).
func hasEditTool(msgs []llmclient.Message) bool {
	for _, m := range msgs {
		if m.Role != "assistant" {
			continue
		}
		for _, tc := range m.ToolCalls {
			if tc.Name == "modify_statement" || tc.Name == "modify_proof" {
				return true
			}
		}
	}
	return false
}
