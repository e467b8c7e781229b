package toolruntime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphasolve/alphasolve/lemma"
	"github.com/alphasolve/alphasolve/state"
)

func newTestContext(t *testing.T, l *lemma.Lemma) *Context {
	t.Helper()
	graph := lemma.NewGraph()
	id := graph.Append(l)
	shared := state.New("problem", "", graph)
	shared.CurrentLemmaID = id
	return &Context{Shared: shared}
}

func TestModifyStatementTool_ReplacesStatement(t *testing.T) {
	l := &lemma.Lemma{Statement: "old", Status: lemma.StatusPending}
	tc := newTestContext(t, l)

	result, err := ModifyStatementTool{}.Execute(context.Background(), tc, map[string]any{"new_statement": "new"})
	require.NoError(t, err)
	assert.Equal(t, "statement updated", result)
	assert.Equal(t, "new", l.Statement)
}

func TestModifyStatementTool_SecondIdenticalCallIsNoop(t *testing.T) {
	l := &lemma.Lemma{Statement: "old", Status: lemma.StatusPending}
	tc := newTestContext(t, l)

	_, err := ModifyStatementTool{}.Execute(context.Background(), tc, map[string]any{"new_statement": "new"})
	require.NoError(t, err)

	result, err := ModifyStatementTool{}.Execute(context.Background(), tc, map[string]any{"new_statement": "new"})
	require.NoError(t, err)
	assert.Equal(t, "statement unchanged", result)
	assert.Equal(t, "new", l.Statement)
}

func TestModifyProofTool_ReplacesMarkedSpan(t *testing.T) {
	l := &lemma.Lemma{Statement: "s", Proof: "Step 1. BEGIN old middle END. Step 2.", Status: lemma.StatusPending}
	tc := newTestContext(t, l)

	result, err := ModifyProofTool{}.Execute(context.Background(), tc, map[string]any{
		"begin_marker":      "BEGIN",
		"end_marker":        "END.",
		"proof_replacement": "BEGIN fixed END.",
	})
	require.NoError(t, err)
	assert.Equal(t, "proof updated", result)
	assert.Equal(t, "Step 1. BEGIN fixed END. Step 2.", l.Proof)
}

func TestModifyProofTool_MissingMarkerIsToolError(t *testing.T) {
	l := &lemma.Lemma{Statement: "s", Proof: "no markers here", Status: lemma.StatusPending}
	tc := newTestContext(t, l)

	result, err := ModifyProofTool{}.Execute(context.Background(), tc, map[string]any{
		"begin_marker":      "BEGIN",
		"end_marker":        "END",
		"proof_replacement": "x",
	})
	require.NoError(t, err)
	assert.Contains(t, result, "error:")
	assert.Equal(t, "no markers here", l.Proof)
}

func TestModifyProofTool_CollapsesOverEscapedMarkers(t *testing.T) {
	l := &lemma.Lemma{Statement: "s", Proof: `assume \eta > 0 then done`, Status: lemma.StatusPending}
	tc := newTestContext(t, l)

	result, err := ModifyProofTool{}.Execute(context.Background(), tc, map[string]any{
		"begin_marker":      `\\eta`,
		"end_marker":        "done",
		"proof_replacement": `\eta < 1 then done`,
	})
	require.NoError(t, err)
	assert.Equal(t, "proof updated", result)
	assert.Equal(t, `assume \eta < 1 then done`, l.Proof)
}

func TestReadLemmaTool_VerifiedReturnsFullText(t *testing.T) {
	l := &lemma.Lemma{Statement: "thm", Proof: "pf", Status: lemma.StatusVerified}
	tc := newTestContext(t, l)

	result, err := ReadLemmaTool{}.Execute(context.Background(), tc, map[string]any{"lemma_id": float64(0)})
	require.NoError(t, err)
	assert.Contains(t, result, "thm")
	assert.Contains(t, result, "pf")
}

func TestReadLemmaTool_RejectedReturnsWarningAndVerifiedIDs(t *testing.T) {
	graph := lemma.NewGraph()
	graph.Append(&lemma.Lemma{Statement: "a", Status: lemma.StatusVerified})
	graph.Append(&lemma.Lemma{Statement: "b", Status: lemma.StatusRejected})
	shared := state.New("p", "", graph)
	tc := &Context{Shared: shared}

	result, err := ReadLemmaTool{}.Execute(context.Background(), tc, map[string]any{"lemma_id": float64(1)})
	require.NoError(t, err)
	assert.Contains(t, result, "warning")
	assert.Contains(t, result, "[0]")
}

func TestReadLemmaTool_PendingIsError(t *testing.T) {
	l := &lemma.Lemma{Statement: "a", Status: lemma.StatusPending}
	tc := newTestContext(t, l)

	result, err := ReadLemmaTool{}.Execute(context.Background(), tc, map[string]any{"lemma_id": float64(0)})
	require.NoError(t, err)
	assert.Contains(t, result, "error:")
}

func TestReadLemmaTool_InvalidIDIsError(t *testing.T) {
	graph := lemma.NewGraph()
	shared := state.New("p", "", graph)
	tc := &Context{Shared: shared}

	result, err := ReadLemmaTool{}.Execute(context.Background(), tc, map[string]any{"lemma_id": float64(7)})
	require.NoError(t, err)
	assert.Contains(t, result, "error:")
}

func TestReadCurrentConjectureAgainTool_ReturnsVerbatimStatementAndProof(t *testing.T) {
	l := &lemma.Lemma{Statement: `\eta > 0`, Proof: `trivial since \eta is positive by hypothesis.`, Status: lemma.StatusPending}
	tc := newTestContext(t, l)

	result, err := ReadCurrentConjectureAgainTool{}.Execute(context.Background(), tc, nil)
	require.NoError(t, err)
	assert.Contains(t, result, `\begin{conjecture}`)
	assert.Contains(t, result, `\eta > 0`)
	assert.Contains(t, result, `\begin{proof}`)
	assert.Contains(t, result, `trivial since \eta is positive by hypothesis.`)
}

func TestReadReviewAgainTool_ReturnsVerbatimReview(t *testing.T) {
	l := &lemma.Lemma{Statement: "s", Review: "looks wrong at step 2", Status: lemma.StatusPending}
	tc := newTestContext(t, l)

	result, err := ReadReviewAgainTool{}.Execute(context.Background(), tc, nil)
	require.NoError(t, err)
	assert.Equal(t, "looks wrong at step 2", result)
}

func TestReadReviewAgainTool_NoReviewIsError(t *testing.T) {
	l := &lemma.Lemma{Statement: "s", Status: lemma.StatusPending}
	tc := newTestContext(t, l)

	result, err := ReadReviewAgainTool{}.Execute(context.Background(), tc, nil)
	require.NoError(t, err)
	assert.Contains(t, result, "error:")
}
