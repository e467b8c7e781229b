package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/alphasolve/alphasolve/config"
	"github.com/alphasolve/alphasolve/lemma"
	"github.com/alphasolve/alphasolve/state"
)

// Orchestrator runs the outer multi-worker loop of spec.md §4.10 on top of
// one Config.
type Orchestrator struct {
	cfg *config.Config
}

// New builds an Orchestrator from a validated Config.
func New(cfg *config.Config) *Orchestrator {
	return &Orchestrator{cfg: cfg}
}

// Run drives up to Orchestrator.IterationNum rounds. Each round launches
// Orchestrator.Workers workers concurrently against a shared or per-worker
// private lemma pool (per the configured SharingMode) and waits for all of
// them; the first worker to return a non-empty summary wins the round and
// Run returns that summary immediately, cancelling its peers on a
// best-effort basis. Between rounds a pool-maintenance hook runs — a
// no-op placeholder, reserved for future dedup/merge/prune passes.
func (o *Orchestrator) Run(ctx context.Context, problem, hint string) (string, error) {
	creds, err := o.resolveCredentials()
	if err != nil {
		return "", err
	}

	pool := lemma.NewGraph()

	for round := 0; round < o.cfg.Orchestrator.IterationNum; round++ {
		summary, err := o.runRound(ctx, round, problem, hint, pool, creds)
		if err != nil {
			return "", err
		}
		if summary != "" {
			return summary, nil
		}
		maintainPool(pool)
	}

	return "", nil
}

// runRound fans out the configured number of workers, races them to the
// first non-empty summary, and cancels the remainder once one wins.
func (o *Orchestrator) runRound(ctx context.Context, round int, problem, hint string, pool *lemma.Graph, creds roleCredentials) (string, error) {
	roundCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gCtx := errgroup.WithContext(roundCtx)

	results := make([]string, o.cfg.Orchestrator.Workers)
	for i := 0; i < o.cfg.Orchestrator.Workers; i++ {
		workerID := round*o.cfg.Orchestrator.Workers + i
		idx := i
		runID := uuid.NewString()
		g.Go(func() error {
			w, err := newWorker(workerID, runID, o.cfg, creds)
			if err != nil {
				return err
			}
			shared := state.New(problem, hint, workerLemmaPool(o.cfg, pool))

			summary, err := w.run(gCtx, shared)
			if err != nil {
				if gCtx.Err() != nil {
					// A peer already won this round; this worker's own
					// failure, caused by the resulting cancellation, is
					// not a real error.
					return nil
				}
				return err
			}
			results[idx] = summary
			if summary != "" {
				cancel()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return "", fmt.Errorf("orchestrator: round %d: %w", round, err)
	}

	for _, s := range results {
		if s != "" {
			return s, nil
		}
	}
	return "", nil
}

// maintainPool is the reserved no-op pool-maintenance hook of spec.md
// §4.10, left unimplemented: no dedup/merge/prune pass is required for
// correctness, only for pool hygiene across many rounds.
func maintainPool(pool *lemma.Graph) {}

func (o *Orchestrator) resolveCredentials() (roleCredentials, error) {
	var creds roleCredentials
	var err error
	if creds.solver, err = config.ResolveAPIKey(o.cfg.Solver); err != nil {
		return creds, err
	}
	if creds.verifier, err = config.ResolveAPIKey(o.cfg.Verifier); err != nil {
		return creds, err
	}
	if creds.refiner, err = config.ResolveAPIKey(o.cfg.Refiner); err != nil {
		return creds, err
	}
	if creds.summarizer, err = config.ResolveAPIKey(o.cfg.Summarizer); err != nil {
		return creds, err
	}
	if creds.subagent, err = config.ResolveAPIKey(o.cfg.Subagent); err != nil {
		return creds, err
	}
	return creds, nil
}

func secondsToDuration(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}
