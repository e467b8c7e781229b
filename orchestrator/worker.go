package orchestrator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alphasolve/alphasolve/config"
	"github.com/alphasolve/alphasolve/flow"
	"github.com/alphasolve/alphasolve/lemma"
	"github.com/alphasolve/alphasolve/llmclient"
	"github.com/alphasolve/alphasolve/logging"
	"github.com/alphasolve/alphasolve/nodes"
	"github.com/alphasolve/alphasolve/state"
	"github.com/alphasolve/alphasolve/toolruntime"
)

// roleCredentials bundles the five API keys a worker's clients need,
// resolved once by the Orchestrator before any worker starts.
type roleCredentials struct {
	solver, verifier, refiner, summarizer, subagent string
}

// worker owns one conversation's private resources: its Python and
// Wolfram sessions, its tool registry, and the flow built from a fresh
// set of node instances. A worker never outlives one round.
type worker struct {
	id     int
	cfg    *config.Config
	creds  roleCredentials
	logger *slog.Logger
	logF   func() error
}

func newWorker(id int, runID string, cfg *config.Config, creds roleCredentials) (*worker, error) {
	logger, f, err := logging.NewWorkerLogger(cfg.Orchestrator.LogDir, id)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: worker %d: %w", id, err)
	}
	logger = logger.With(slog.String("run_id", runID))
	return &worker{id: id, cfg: cfg, creds: creds, logger: logger, logF: f.Close}, nil
}

// run builds this worker's private tool sessions and node set, runs the
// flow to termination against shared, and returns shared.ResultSummary
// (empty if the run did not reach a verified theorem).
func (w *worker) run(ctx context.Context, shared *state.SharedContext) (string, error) {
	defer w.logF()

	pythonSession, err := toolruntime.NewPythonSession(w.cfg.ToolRuntime.BannedPythonImports, secondsToDuration(w.cfg.ToolRuntime.PythonTimeoutSeconds))
	if err != nil {
		return "", fmt.Errorf("orchestrator: worker %d: python session: %w", w.id, err)
	}
	defer pythonSession.Close()

	wolframSession, err := toolruntime.NewWolframSession(w.cfg.ToolRuntime.WolframKernelPath, secondsToDuration(w.cfg.ToolRuntime.WolframTimeoutSeconds))
	if err != nil {
		return "", fmt.Errorf("orchestrator: worker %d: wolfram session: %w", w.id, err)
	}

	registry := toolruntime.NewRegistry()
	if err := wireTools(registry); err != nil {
		return "", fmt.Errorf("orchestrator: worker %d: tool setup: %w", w.id, err)
	}

	toolCtx := &toolruntime.Context{
		Python:         pythonSession,
		Wolfram:        wolframSession,
		Shared:         shared,
		SubagentRole:   w.cfg.Subagent,
		SubagentAPIKey: w.creds.subagent,
	}

	solverClient := llmclient.New(
		llmclient.NewOpenAICompatProvider(w.cfg.Solver, w.creds.solver),
		registry.Definitions(w.cfg.Solver.Tools), registry, w.cfg.Solver.MaxRetries)
	verifierClient := llmclient.New(
		llmclient.NewOpenAICompatProvider(w.cfg.Verifier, w.creds.verifier),
		registry.Definitions(w.cfg.Verifier.Tools), registry, w.cfg.Verifier.MaxRetries)
	refinerClient := llmclient.New(
		llmclient.NewOpenAICompatProvider(w.cfg.Refiner, w.creds.refiner),
		registry.Definitions(w.cfg.Refiner.Tools), registry, w.cfg.Refiner.MaxRetries)

	solver := &nodes.Solver{Client: solverClient, ToolCtx: toolCtx, MaxLemmaNum: w.cfg.Quota.MaxLemmaNum}
	verifier := &nodes.Verifier{Client: verifierClient, ScalingFactor: w.cfg.Quota.ScalingFactor}
	refiner := &nodes.Refiner{Client: refinerClient, ToolCtx: toolCtx, MaxVerifyAndRefineRound: w.cfg.Quota.MaxVerifyAndRefineRound}
	summarizer := nodes.Summarizer{}

	f := BuildFlow(solver, verifier, refiner, summarizer)

	err = f.Run(ctx, shared, func(step flow.StepResult) {
		if step.Err != nil {
			w.logger.Error("node step failed", slog.String("node", step.Node), slog.String("action", string(step.Action)), slog.String("err", step.Err.Error()))
			return
		}
		w.logger.Info("node step", slog.String("node", step.Node), slog.String("action", string(step.Action)))
	})
	if err != nil {
		return "", err
	}

	return shared.ResultSummary, nil
}

// wireTools registers the fixed set of tools every worker's registry
// offers; role-level RoleConfig.Tools lists select a subset by name when
// building each role's llmclient.Client.
func wireTools(r *toolruntime.Registry) error {
	tools := []toolruntime.Tool{
		toolruntime.RunPythonTool{},
		toolruntime.RunWolframTool{},
		toolruntime.ModifyStatementTool{},
		toolruntime.ModifyProofTool{},
		toolruntime.ReadLemmaTool{},
		toolruntime.ReadCurrentConjectureAgainTool{},
		toolruntime.ReadReviewAgainTool{},
		toolruntime.SolverFormatReminderTool{},
		toolruntime.RefinerFormatReminderTool{},
		toolruntime.NewMathResearchSubagentTool(nil),
	}
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// workerLemmaPool returns the lemma.Graph this worker should build its
// SharedContext from, per spec.md §4.10's sharing modes.
func workerLemmaPool(cfg *config.Config, shared *lemma.Graph) *lemma.Graph {
	if cfg.Orchestrator.Sharing == config.SharingSharedByAll {
		return shared
	}
	return clonePool(shared)
}

// clonePool deep-copies a lemma pool's lemmas into a fresh, private Graph
// for "private" sharing mode workers.
func clonePool(pool *lemma.Graph) *lemma.Graph {
	fresh := lemma.NewGraph()
	for _, l := range pool.Snapshot() {
		fresh.Append(l.Clone())
	}
	return fresh
}
