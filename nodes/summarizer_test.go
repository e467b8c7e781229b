package nodes

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alphasolve/alphasolve/flow"
	"github.com/alphasolve/alphasolve/lemma"
	"github.com/alphasolve/alphasolve/state"
)

func runSummarizer(t *testing.T, shared *state.SharedContext) flow.Action {
	t.Helper()
	var s Summarizer
	ctx := context.Background()
	prep, err := s.Prep(ctx, shared)
	require.NoError(t, err)
	exec, err := s.Exec(ctx, prep)
	require.NoError(t, err)
	action, err := s.Post(ctx, shared, prep, exec)
	require.NoError(t, err)
	return action
}

func TestSummarizer_SeedScenarioRendersExactlyOneLemmaBlock(t *testing.T) {
	shared := newSharedContext("Prove 1+1=2.")
	id := shared.Lemmas.Append(&lemma.Lemma{
		Statement: "1+1=2",
		Proof:     "definition.",
		Status:    lemma.StatusVerified,
		IsTheorem: true,
	})
	shared.CurrentLemmaID = id

	action := runSummarizer(t, shared)
	require.Equal(t, flow.ActionDone, action)
	require.Equal(t, 1, strings.Count(shared.ResultSummary, "### Lemma "))
	require.Contains(t, shared.ResultSummary, "### Lemma 0")
	require.Contains(t, shared.ResultSummary, "1+1=2")
}

func TestSummarizer_RendersTransitiveDependencies(t *testing.T) {
	shared := newSharedContext("Prove a generalized claim.")
	shared.Lemmas.Append(&lemma.Lemma{Statement: "base case", Proof: "trivial.", Status: lemma.StatusVerified})
	id := shared.Lemmas.Append(&lemma.Lemma{
		Statement:    "full claim",
		Proof:        "by induction using lemma 0.",
		Dependencies: []int{0},
		Status:       lemma.StatusVerified,
		IsTheorem:    true,
	})
	shared.CurrentLemmaID = id

	action := runSummarizer(t, shared)
	require.Equal(t, flow.ActionDone, action)
	require.Equal(t, 2, strings.Count(shared.ResultSummary, "### Lemma "))
	require.Contains(t, shared.ResultSummary, "### Lemma 0")
	require.Contains(t, shared.ResultSummary, "### Lemma 1")
}

func TestSummarizer_UnverifiedCurrentLemmaIsFailure(t *testing.T) {
	shared := newSharedContext("Prove 1+1=2.")
	id := shared.Lemmas.Append(&lemma.Lemma{Statement: "1+1=2", Status: lemma.StatusPending})
	shared.CurrentLemmaID = id

	action := runSummarizer(t, shared)
	require.Equal(t, flow.ActionExitOnFailure, action)
	require.Empty(t, shared.ResultSummary)
}

func TestSummarizer_VerifiedButNotTheoremIsFailure(t *testing.T) {
	shared := newSharedContext("Prove a generalized claim.")
	id := shared.Lemmas.Append(&lemma.Lemma{Statement: "partial step", Status: lemma.StatusVerified, IsTheorem: false})
	shared.CurrentLemmaID = id

	action := runSummarizer(t, shared)
	require.Equal(t, flow.ActionExitOnFailure, action)
}
