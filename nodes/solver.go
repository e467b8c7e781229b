package nodes

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/alphasolve/alphasolve/flow"
	"github.com/alphasolve/alphasolve/lemma"
	"github.com/alphasolve/alphasolve/llmclient"
	"github.com/alphasolve/alphasolve/prompts"
	"github.com/alphasolve/alphasolve/state"
)

// solverSystemPrompt describes the role; the per-call user message
// carries the problem, quota, and verified-lemma context.
const solverSystemPrompt = `You are the Solver. Propose the next lemma or, ` +
	`if it fully resolves the problem, the final conjecture, together with ` +
	`its proof and its dependencies on earlier verified lemmas.`

// solverUserTemplate is rendered with {problem_content} and
// {remaining_lemma_quota} per spec.md §4.5.
const solverUserTemplate = `## Problem
{problem_content}

## Remaining Lemma Quota
{remaining_lemma_quota}
`

// isTheoremPromptTemplate drives Solver.Post's secondary yes/no check.
const isTheoremPromptTemplate = `Does the following statement, on its own, ` +
	`fully resolve the original problem below? Answer with exactly "yes" or ` +
	`"no" and nothing else.

## Problem
{problem_content}

## Statement
{statement_content}
`

// Solver proposes the next lemma (spec.md §4.5).
type Solver struct {
	Client      *llmclient.Client
	ToolCtx     llmclient.ToolContext
	MaxLemmaNum int
}

func (s *Solver) Name() string { return "solver" }

type solverPrep struct {
	exhausted bool
	messages  []llmclient.Message
}

func (s *Solver) Prep(ctx context.Context, shared *state.SharedContext) (any, error) {
	if shared.Lemmas.Len() >= s.MaxLemmaNum {
		return &solverPrep{exhausted: true}, nil
	}

	remaining := s.MaxLemmaNum - shared.Lemmas.Len()
	userContent := prompts.Render(solverUserTemplate, map[string]string{
		"problem_content":       shared.Problem,
		"remaining_lemma_quota": strconv.Itoa(remaining),
	})
	userContent += "\n## Context and History Explorations\n" + renderVerifiedContext(shared)
	if shared.Hint != "" {
		userContent += "\n## Hint\n" + shared.Hint
	}

	messages := []llmclient.Message{
		{Role: "system", Content: solverSystemPrompt},
		{Role: "user", Content: userContent},
	}
	return &solverPrep{messages: messages}, nil
}

func renderVerifiedContext(shared *state.SharedContext) string {
	statements := shared.Lemmas.VerifiedStatements()
	if len(statements) == 0 {
		return "(none yet)"
	}
	var b strings.Builder
	for i, stmt := range statements {
		fmt.Fprintf(&b, "%d. %s\n", i, stmt)
	}
	return b.String()
}

type solverExecResult struct {
	exhausted bool
	lemma     *lemma.Lemma
}

func (s *Solver) Exec(ctx context.Context, prepRes any) (any, error) {
	prep := prepRes.(*solverPrep)
	if prep.exhausted {
		return &solverExecResult{exhausted: true}, nil
	}

	result, err := s.Client.GetResult(ctx, prep.messages, nil, s.ToolCtx)
	if err != nil {
		return nil, fmt.Errorf("nodes: solver: %w", err)
	}

	parsed, err := parseSolverOutput(result.AnswerText)
	if err != nil {
		return nil, err
	}

	l := &lemma.Lemma{
		Statement:       parsed.Statement,
		Proof:           parsed.Proof,
		Dependencies:    parsed.Dependencies,
		Status:          lemma.StatusPending,
		IsTheorem:       false,
		HistoryMessages: toLemmaMessages(result.Messages),
		VerifyRound:     0,
	}
	if err := lemma.Validate(l, -1); err != nil {
		return nil, fmt.Errorf("nodes: solver produced invalid lemma: %w", err)
	}

	return &solverExecResult{lemma: l}, nil
}

func (s *Solver) Post(ctx context.Context, shared *state.SharedContext, prepRes, execRes any) (flow.Action, error) {
	exec := execRes.(*solverExecResult)
	if exec.exhausted {
		return flow.ActionExitOnExausted, nil
	}

	l := exec.lemma
	if s.isTheorem(ctx, shared.Problem, l.Statement) {
		l.IsTheorem = true
	}

	id := shared.Lemmas.Append(l)
	shared.CurrentLemmaID = id
	return ActionConjectureGenerated, nil
}

// isTheorem runs the secondary yes/no LLM check of spec.md §4.5. A
// failure of this auxiliary call is not fatal to the Solver turn: the
// lemma is simply treated as not-yet-final, matching the spec's framing
// of this check as a secondary, not primary, judgment.
func (s *Solver) isTheorem(ctx context.Context, problem, statement string) bool {
	prompt := prompts.Render(isTheoremPromptTemplate, map[string]string{
		"problem_content":   problem,
		"statement_content": statement,
	})
	result, err := s.Client.GetResult(ctx, []llmclient.Message{{Role: "user", Content: prompt}}, noTools, nil)
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(result.AnswerText))
	return strings.HasPrefix(answer, "yes")
}
