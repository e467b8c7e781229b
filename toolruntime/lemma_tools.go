package toolruntime

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/alphasolve/alphasolve/lemma"
	"github.com/alphasolve/alphasolve/llmclient"
)

// ModifyStatementTool replaces the current lemma's statement text
// (spec.md §4.3/§4.7, used by Refiner).
type ModifyStatementTool struct{}

func (ModifyStatementTool) Name() string { return "modify_statement" }

func (ModifyStatementTool) Description() string {
	return "Replaces the current lemma's statement with new_statement."
}

func (ModifyStatementTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"new_statement": map[string]any{
				"type":        "string",
				"description": "The replacement statement text.",
			},
		},
		"required": []string{"new_statement"},
	}
}

func (ModifyStatementTool) Execute(ctx context.Context, tc *Context, args map[string]any) (string, error) {
	newStatement, _ := args["new_statement"].(string)
	if newStatement == "" {
		return "error: new_statement must not be empty", nil
	}

	l, err := tc.CurrentLemma()
	if err != nil {
		return fmt.Sprintf("error: %v", err), nil
	}

	if l.Statement == newStatement {
		return "statement unchanged", nil
	}
	l.Statement = newStatement
	return "statement updated", nil
}

// ModifyProofTool replaces the inclusive span between the first
// occurrence of begin_marker and the first occurrence of end_marker after
// it with proof_replacement (spec.md §4.3/§4.7). A missing marker is a
// tool-level error surfaced to the model, not a Go error. Marker fields
// pass through llmclient.RepairMarkerField to collapse model
// over-escaping before the search.
type ModifyProofTool struct{}

func (ModifyProofTool) Name() string { return "modify_proof" }

func (ModifyProofTool) Description() string {
	return "Replaces the proof text between the first occurrence of begin_marker and the first subsequent occurrence of end_marker (inclusive) with proof_replacement."
}

func (ModifyProofTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"begin_marker":      map[string]any{"type": "string", "description": "Verbatim text (<=100 chars) marking the start of the span to replace."},
			"end_marker":        map[string]any{"type": "string", "description": "Verbatim text (<=100 chars) marking the end of the span to replace."},
			"proof_replacement": map[string]any{"type": "string", "description": "Replacement text for the marked span."},
		},
		"required": []string{"begin_marker", "end_marker", "proof_replacement"},
	}
}

const maxMarkerLen = 100

func (ModifyProofTool) Execute(ctx context.Context, tc *Context, args map[string]any) (string, error) {
	beginMarker := llmclient.RepairMarkerField(stringArg(args, "begin_marker"))
	endMarker := llmclient.RepairMarkerField(stringArg(args, "end_marker"))
	replacement, _ := args["proof_replacement"].(string)

	if beginMarker == "" || endMarker == "" {
		return "error: begin_marker and end_marker must not be empty", nil
	}
	if len(beginMarker) > maxMarkerLen || len(endMarker) > maxMarkerLen {
		return "error: markers must be at most 100 characters", nil
	}

	l, err := tc.CurrentLemma()
	if err != nil {
		return fmt.Sprintf("error: %v", err), nil
	}

	beginIdx := strings.Index(l.Proof, beginMarker)
	if beginIdx < 0 {
		return "error: begin_marker not found in current proof", nil
	}
	searchFrom := beginIdx + len(beginMarker)
	endRel := strings.Index(l.Proof[searchFrom:], endMarker)
	if endRel < 0 {
		return "error: end_marker not found after begin_marker", nil
	}
	endIdx := searchFrom + endRel + len(endMarker)

	l.Proof = l.Proof[:beginIdx] + replacement + l.Proof[endIdx:]
	return "proof updated", nil
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

// ReadLemmaTool returns another lemma's full statement and proof if it is
// verified; if it is rejected, a warning plus the full list of verified
// ids; otherwise (pending, or an out-of-range id) a structured error
// (spec.md §4.3).
type ReadLemmaTool struct{}

func (ReadLemmaTool) Name() string { return "read_lemma" }

func (ReadLemmaTool) Description() string {
	return "Reads a lemma by id. Returns its statement and proof if verified; a warning and the list of verified ids if rejected; an error otherwise."
}

func (ReadLemmaTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"lemma_id": map[string]any{"type": "integer", "description": "The id of the lemma to read."},
		},
		"required": []string{"lemma_id"},
	}
}

func (ReadLemmaTool) Execute(ctx context.Context, tc *Context, args map[string]any) (string, error) {
	id, ok := intArg(args, "lemma_id")
	if !ok {
		return "error: lemma_id must be an integer", nil
	}

	l, found := tc.Shared.Lemmas.Get(id)
	if !found {
		return fmt.Sprintf("error: no lemma with id %d", id), nil
	}

	switch l.Status {
	case lemma.StatusVerified:
		return fmt.Sprintf("lemma %d (verified)\nstatement: %s\nproof: %s", id, l.Statement, l.Proof), nil
	case lemma.StatusRejected:
		verified := verifiedIDs(tc)
		return fmt.Sprintf("warning: lemma %d was rejected and cannot be used. verified lemma ids: %v", id, verified), nil
	default:
		return fmt.Sprintf("error: lemma %d is not yet verified", id), nil
	}
}

func intArg(args map[string]any, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	default:
		return 0, false
	}
}

func verifiedIDs(tc *Context) []int {
	snap := tc.Shared.Lemmas.Snapshot()
	out := make([]int, 0, len(snap))
	for i, l := range snap {
		if l.Status == lemma.StatusVerified {
			out = append(out, i)
		}
	}
	return out
}

// ReadCurrentConjectureAgainTool re-emits the current lemma's statement and
// proof verbatim as plain text, not JSON, LaTeX-wrapped the same way the
// Solver/Refiner emit them, so the model (in particular the Refiner, which
// needs the exact proof source to issue marker-based modify_proof edits)
// can recover both without a JSON-escaping round trip (spec.md §4.3).
type ReadCurrentConjectureAgainTool struct{}

func (ReadCurrentConjectureAgainTool) Name() string { return "read_current_conjecture_again" }

func (ReadCurrentConjectureAgainTool) Description() string {
	return "Re-reads the current lemma's statement and proof verbatim."
}

func (ReadCurrentConjectureAgainTool) Parameters() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}

func (ReadCurrentConjectureAgainTool) Execute(ctx context.Context, tc *Context, args map[string]any) (string, error) {
	l, err := tc.CurrentLemma()
	if err != nil {
		return fmt.Sprintf("error: %v", err), nil
	}
	return fmt.Sprintf("\\begin{conjecture}\n%s\n\\end{conjecture}\n\\begin{proof}\n%s\n\\end{proof}", l.Statement, l.Proof), nil
}

// ReadReviewAgainTool re-emits the current lemma's verifier review
// verbatim (spec.md §4.3).
type ReadReviewAgainTool struct{}

func (ReadReviewAgainTool) Name() string { return "read_review_again" }

func (ReadReviewAgainTool) Description() string {
	return "Re-reads the current lemma's most recent verifier review verbatim."
}

func (ReadReviewAgainTool) Parameters() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}

func (ReadReviewAgainTool) Execute(ctx context.Context, tc *Context, args map[string]any) (string, error) {
	l, err := tc.CurrentLemma()
	if err != nil {
		return fmt.Sprintf("error: %v", err), nil
	}
	if l.Review == "" {
		return "error: no review recorded for the current lemma", nil
	}
	return l.Review, nil
}
