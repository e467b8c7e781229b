package nodes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alphasolve/alphasolve/flow"
	"github.com/alphasolve/alphasolve/lemma"
	"github.com/alphasolve/alphasolve/llmclient"
	"github.com/alphasolve/alphasolve/state"
)

func runVerifier(t *testing.T, v *Verifier, shared *state.SharedContext) (flow.Action, error) {
	t.Helper()
	ctx := context.Background()
	prep, err := v.Prep(ctx, shared)
	require.NoError(t, err)
	exec, err := v.Exec(ctx, prep)
	if err != nil {
		return "", err
	}
	return v.Post(ctx, shared, prep, exec)
}

func TestVerifier_ValidOnFirstAttemptMarksVerified(t *testing.T) {
	shared := newSharedContext("Prove 1+1=2.")
	id := shared.Lemmas.Append(&lemma.Lemma{Statement: "1+1=2", Proof: "by definition.", Status: lemma.StatusPending, IsTheorem: true})
	shared.CurrentLemmaID = id

	provider := &scriptedProvider{batches: [][]llmclient.StreamChunk{
		textBatch("The proof is correct. boxed{valid}"),
	}}
	v := &Verifier{Client: newClient(provider, noopDispatcher{}), ScalingFactor: 3}

	action, err := runVerifier(t, v, shared)
	require.NoError(t, err)
	require.Equal(t, flow.ActionDone, action)
	l, _ := shared.Lemmas.Get(id)
	require.Equal(t, lemma.StatusVerified, l.Status)
	require.Equal(t, 1, l.VerifyRound)
}

func TestVerifier_ValidNonTheoremReturnsConjectureVerified(t *testing.T) {
	shared := newSharedContext("Prove a generalized claim.")
	id := shared.Lemmas.Append(&lemma.Lemma{Statement: "inductive step", Proof: "ok.", Status: lemma.StatusPending, IsTheorem: false})
	shared.CurrentLemmaID = id

	provider := &scriptedProvider{batches: [][]llmclient.StreamChunk{
		textBatch("boxed{valid}"),
	}}
	v := &Verifier{Client: newClient(provider, noopDispatcher{}), ScalingFactor: 1}

	action, err := runVerifier(t, v, shared)
	require.NoError(t, err)
	require.Equal(t, ActionConjectureVerified, action)
}

func TestVerifier_InvalidSetsReviewAndReturnsUnverified(t *testing.T) {
	shared := newSharedContext("Prove 1+1=2.")
	id := shared.Lemmas.Append(&lemma.Lemma{Statement: "1+1=3", Proof: "bad.", Status: lemma.StatusPending})
	shared.CurrentLemmaID = id

	provider := &scriptedProvider{batches: [][]llmclient.StreamChunk{
		textBatch("This proof is wrong: 1+1 is not 3."),
	}}
	v := &Verifier{Client: newClient(provider, noopDispatcher{}), ScalingFactor: 3}

	action, err := runVerifier(t, v, shared)
	require.NoError(t, err)
	require.Equal(t, ActionConjectureUnverified, action)
	l, _ := shared.Lemmas.Get(id)
	require.Equal(t, lemma.StatusPending, l.Status)
	require.Contains(t, l.Review, "wrong")
}

func TestVerifier_ScalingLoopShortCircuitsOnFirstInvalid(t *testing.T) {
	shared := newSharedContext("Prove 1+1=2.")
	id := shared.Lemmas.Append(&lemma.Lemma{Statement: "1+1=2", Proof: "ok.", Status: lemma.StatusPending})
	shared.CurrentLemmaID = id

	provider := &scriptedProvider{batches: [][]llmclient.StreamChunk{
		textBatch("boxed{valid}"),
		textBatch("actually this is flawed."),
		textBatch("boxed{valid}"),
	}}
	v := &Verifier{Client: newClient(provider, noopDispatcher{}), ScalingFactor: 3}

	action, err := runVerifier(t, v, shared)
	require.NoError(t, err)
	require.Equal(t, ActionConjectureUnverified, action)
	require.Equal(t, 2, provider.calls, "third scripted attempt must never be consumed")
}

func TestVerifier_ScalingLoopAllValidKeepsLastAnswer(t *testing.T) {
	shared := newSharedContext("Prove 1+1=2.")
	id := shared.Lemmas.Append(&lemma.Lemma{Statement: "1+1=2", Proof: "ok.", Status: lemma.StatusPending, IsTheorem: true})
	shared.CurrentLemmaID = id

	provider := &scriptedProvider{batches: [][]llmclient.StreamChunk{
		textBatch("boxed{valid}"),
		textBatch("boxed{valid}"),
		textBatch("boxed{valid}"),
	}}
	v := &Verifier{Client: newClient(provider, noopDispatcher{}), ScalingFactor: 3}

	action, err := runVerifier(t, v, shared)
	require.NoError(t, err)
	require.Equal(t, flow.ActionDone, action)
	require.Equal(t, 3, provider.calls)
}
