package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/alphasolve/alphasolve/flow"
	"github.com/alphasolve/alphasolve/lemma"
	"github.com/alphasolve/alphasolve/llmclient"
	"github.com/alphasolve/alphasolve/prompts"
	"github.com/alphasolve/alphasolve/state"
)

// verifyAcceptanceToken is the sole acceptance token the Verifier looks
// for; its presence anywhere in the answer marks the attempt valid
// (spec.md §4.6/§6).
const verifyAcceptanceToken = "boxed{valid}"

const verifierPromptTemplate = `Judge the following lemma's proof. If, and ` +
	`only if, the proof is fully correct and rigorous, include the exact ` +
	`text boxed{valid} somewhere in your answer. Otherwise explain the flaw.

## Statement
{conjecture_content}

## Proof
{proof_content}

## Verified Context
{review_content}
`

// Verifier judges the current lemma (spec.md §4.6).
type Verifier struct {
	Client        *llmclient.Client
	ScalingFactor int
}

func (v *Verifier) Name() string { return "verifier" }

type verifierPrep struct {
	lemmaID int
	lemma   *lemma.Lemma
	context string
}

func (v *Verifier) Prep(ctx context.Context, shared *state.SharedContext) (any, error) {
	l, ok := shared.CurrentLemma()
	if !ok {
		return nil, fmt.Errorf("nodes: verifier: no current lemma")
	}

	depIDs := shared.Lemmas.BuildReasoningPath(shared.CurrentLemmaID, true)
	renderedContext := renderLemmaBlocks(shared, depIDs)

	return &verifierPrep{lemmaID: shared.CurrentLemmaID, lemma: l, context: renderedContext}, nil
}

func renderLemmaBlocks(shared *state.SharedContext, ids []int) string {
	if len(ids) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for _, id := range ids {
		l, ok := shared.Lemmas.Get(id)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "### Lemma %d\n**Statement**\n%s\n**Proof**\n%s\n", id, l.Statement, l.Proof)
	}
	return b.String()
}

type verifierExecResult struct {
	valid      bool
	answerText string
}

func (v *Verifier) Exec(ctx context.Context, prepRes any) (any, error) {
	prep := prepRes.(*verifierPrep)

	prompt := prompts.Render(verifierPromptTemplate, map[string]string{
		"conjecture_content": prep.lemma.Statement,
		"proof_content":      prep.lemma.Proof,
		"review_content":     prep.context,
	})

	attempts := v.ScalingFactor
	if attempts < 1 {
		attempts = 1
	}

	var last verifierExecResult
	for i := 0; i < attempts; i++ {
		result, err := v.Client.GetResult(ctx, []llmclient.Message{{Role: "user", Content: prompt}}, noTools, nil)
		if err != nil {
			return nil, fmt.Errorf("nodes: verifier: %w", err)
		}
		last = verifierExecResult{
			valid:      strings.Contains(result.AnswerText, verifyAcceptanceToken),
			answerText: result.AnswerText,
		}
		if !last.valid {
			// Short-circuit: the first invalid outcome wins, biasing
			// toward finding faults.
			break
		}
	}
	return &last, nil
}

func (v *Verifier) Post(ctx context.Context, shared *state.SharedContext, prepRes, execRes any) (flow.Action, error) {
	prep := prepRes.(*verifierPrep)
	exec := execRes.(*verifierExecResult)

	prep.lemma.VerifyRound++

	if !exec.valid {
		prep.lemma.Review = exec.answerText
		return ActionConjectureUnverified, nil
	}

	if err := prep.lemma.SetStatus(lemma.StatusVerified); err != nil {
		return flow.ActionExitOnError, err
	}
	prep.lemma.Review = ""

	if prep.lemma.IsTheorem {
		return flow.ActionDone, nil
	}
	return ActionConjectureVerified, nil
}
