package nodes

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/alphasolve/alphasolve/flow"
	"github.com/alphasolve/alphasolve/lemma"
	"github.com/alphasolve/alphasolve/state"
)

// Summarizer renders the final transitive reasoning path once a theorem
// has been verified (spec.md §4.8). It never calls an LLM: the answer
// is already fully determined by the lemma graph.
type Summarizer struct{}

func (Summarizer) Name() string { return "summarizer" }

type summarizerPrep struct {
	ok      bool
	lemmaID int
}

func (Summarizer) Prep(ctx context.Context, shared *state.SharedContext) (any, error) {
	l, ok := shared.CurrentLemma()
	if !ok || l.Status != lemma.StatusVerified || !l.IsTheorem {
		return &summarizerPrep{ok: false}, nil
	}
	return &summarizerPrep{ok: true, lemmaID: shared.CurrentLemmaID}, nil
}

func (Summarizer) Exec(ctx context.Context, prepRes any) (any, error) {
	return prepRes, nil
}

func (Summarizer) Post(ctx context.Context, shared *state.SharedContext, prepRes, execRes any) (flow.Action, error) {
	prep := prepRes.(*summarizerPrep)
	if !prep.ok {
		return flow.ActionExitOnFailure, nil
	}

	ids := shared.Lemmas.BuildReasoningPath(prep.lemmaID, false)
	ids = append(ids, prep.lemmaID)
	sort.Ints(ids)

	var b strings.Builder
	for _, id := range ids {
		l, ok := shared.Lemmas.Get(id)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "### Lemma %d\n**Statement**\n%s\n**Proof**\n%s\n", id, l.Statement, l.Proof)
	}

	shared.ResultSummary = b.String()
	return flow.ActionDone, nil
}
