package nodes

import (
	"context"
	"fmt"

	"github.com/alphasolve/alphasolve/flow"
	"github.com/alphasolve/alphasolve/lemma"
	"github.com/alphasolve/alphasolve/llmclient"
	"github.com/alphasolve/alphasolve/state"
)

const refinerInstructionTemplate = `You are the Refiner. The current lemma ` +
	`failed verification. You MUST make your edit by calling modify_statement ` +
	`and/or modify_proof; prose alone will not change anything.

<review>
%s
</review>
`

// Refiner edits the current lemma in response to a verifier review
// (spec.md §4.7). Edits happen as a side effect of tool dispatch inside
// Exec's call to the LLM client — unlike every other node, where Post
// alone mutates shared state, here the mutation is performed by the
// tool runtime against the live *lemma.Lemma while the conversation is
// still running, not by Refiner itself.
type Refiner struct {
	Client                  *llmclient.Client
	ToolCtx                 llmclient.ToolContext
	MaxVerifyAndRefineRound int
}

func (r *Refiner) Name() string { return "refiner" }

type refinerPrep struct {
	exhausted bool
	lemmaID   int
	lemma     *lemma.Lemma
}

func (r *Refiner) Prep(ctx context.Context, shared *state.SharedContext) (any, error) {
	l, ok := shared.CurrentLemma()
	if !ok {
		return nil, fmt.Errorf("nodes: refiner: no current lemma")
	}
	if l.VerifyRound >= r.MaxVerifyAndRefineRound {
		return &refinerPrep{exhausted: true, lemmaID: shared.CurrentLemmaID, lemma: l}, nil
	}
	return &refinerPrep{lemmaID: shared.CurrentLemmaID, lemma: l}, nil
}

type refinerExecResult struct {
	exhausted  bool
	lemma      *lemma.Lemma
	edited     bool
	transcript []llmclient.Message
}

func (r *Refiner) Exec(ctx context.Context, prepRes any) (any, error) {
	prep := prepRes.(*refinerPrep)
	if prep.exhausted {
		return &refinerExecResult{exhausted: true, lemma: prep.lemma}, nil
	}

	baseline := toLLMMessages(prep.lemma.HistoryMessages)
	baseline = append(baseline, llmclient.Message{
		Role:    "user",
		Content: fmt.Sprintf(refinerInstructionTemplate, prep.lemma.Review),
	})

	result, err := r.Client.GetResult(ctx, baseline, nil, r.ToolCtx)
	if err != nil {
		return nil, fmt.Errorf("nodes: refiner: %w", err)
	}

	edited := hasEditTool(result.Messages[len(prep.lemma.HistoryMessages):])
	return &refinerExecResult{lemma: prep.lemma, edited: edited, transcript: result.Messages}, nil
}

func (r *Refiner) Post(ctx context.Context, shared *state.SharedContext, prepRes, execRes any) (flow.Action, error) {
	exec := execRes.(*refinerExecResult)

	if exec.exhausted {
		if err := exec.lemma.SetStatus(lemma.StatusRejected); err != nil {
			return flow.ActionExitOnError, err
		}
		return flow.ActionExitOnExausted, nil
	}

	if exec.edited {
		exec.lemma.HistoryMessages = toLemmaMessages(exec.transcript)
	}
	// else: no useful edit was made; keep the original history_messages.

	if err := exec.lemma.SetStatus(lemma.StatusPending); err != nil {
		return flow.ActionExitOnError, err
	}
	return ActionRefineSuccess, nil
}
