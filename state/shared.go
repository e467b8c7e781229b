// Package state defines the fixed-schema shared context threaded through a
// single workflow invocation.
//
// The teacher's workflow.ExecutionContext keeps shared data in a
// map[string]interface{} (see workflow/executor.go in the reference pack).
// Per spec.md §9's explicit redesign guidance, AlphaSolve replaces that
// dynamic bag with a fixed set of named fields: no key may be added or
// removed after construction, only the values of the existing fields may be
// mutated, and by convention that mutation happens only inside a node's
// Post phase.
package state

import "github.com/alphasolve/alphasolve/lemma"

// SharedContext is the single mutable context passed through one workflow
// run. Its field set is exactly {Problem, Hint, Lemmas, CurrentLemmaID,
// ResultSummary} per spec.md §3 — no other state may be smuggled in.
type SharedContext struct {
	// Problem is the natural-language problem statement. Never empty.
	Problem string

	// Hint is optional solver guidance supplied by the caller.
	Hint string

	// Lemmas is the lemma pool for this run. Under "shared-by-all" worker
	// sharing it points at a pool shared across workers; otherwise it is
	// private to this run.
	Lemmas *lemma.Graph

	// CurrentLemmaID is the id of the lemma presently being verified or
	// refined. Nil (-1) before the first lemma is proposed.
	CurrentLemmaID int

	// ResultSummary holds the final markdown reasoning path once a theorem
	// has been verified; empty until Summarizer.Post runs.
	ResultSummary string
}

// NoCurrentLemma is the sentinel CurrentLemmaID value meaning "unset".
const NoCurrentLemma = -1

// New returns a SharedContext ready for a fresh workflow invocation.
func New(problem, hint string, pool *lemma.Graph) *SharedContext {
	if pool == nil {
		pool = lemma.NewGraph()
	}
	return &SharedContext{
		Problem:        problem,
		Hint:           hint,
		Lemmas:         pool,
		CurrentLemmaID: NoCurrentLemma,
	}
}

// CurrentLemma resolves CurrentLemmaID against Lemmas, returning false if
// unset or out of range.
func (s *SharedContext) CurrentLemma() (*lemma.Lemma, bool) {
	if s.CurrentLemmaID == NoCurrentLemma {
		return nil, false
	}
	return s.Lemmas.Get(s.CurrentLemmaID)
}
