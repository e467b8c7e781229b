// Package flow implements the small node/flow abstraction that routes
// control among AlphaSolve's Solver, Verifier, Refiner, and Summarizer
// roles.
//
// This generalizes the teacher's workflow.WorkflowExecutor — a single
// "execute and stream events" entry point keyed by name in a registry (see
// workflow/interfaces.go and workflow/registry.go in the reference pack) —
// into the spec's explicit three-phase lifecycle, and its
// (executor name) -> capabilities lookup into an (node name, action) ->
// node adjacency map. No generic DAG engine is implemented: the graph is
// small, statically defined, and wired once in the orchestrator package.
package flow

import (
	"context"
	"fmt"

	"github.com/alphasolve/alphasolve/state"
)

// Action is a transition symbol a node's Post phase returns; the owning
// Flow looks it up against the current node's outgoing edges to find the
// next node. A missing edge for a returned action terminates the flow.
type Action string

// Sentinel actions produced by one or more nodes. Individual nodes may
// define additional actions local to their own package.
const (
	ActionExitOnError    Action = "EXIT_ON_ERROR"
	ActionExitOnExausted Action = "EXIT_ON_EXAUSTED"
	ActionExitOnFailure  Action = "EXIT_ON_FAILURE"
	ActionDone           Action = "DONE"
)

// Node is one step of the workflow. Implementations must honor the phase
// contract: Prep reads shared but never mutates it; Exec receives only the
// value Prep returned and must not touch shared at all; Post mutates shared
// and returns the Action that selects the next node.
type Node interface {
	// Name identifies this node for logging and Flow edge wiring.
	Name() string

	// Prep reads shared context and returns whatever Exec needs to run.
	Prep(ctx context.Context, shared *state.SharedContext) (any, error)

	// Exec performs the (possibly LLM- or tool-backed) work for this step,
	// given only the value Prep returned.
	Exec(ctx context.Context, prepRes any) (any, error)

	// Post writes results back into shared and returns the next action.
	Post(ctx context.Context, shared *state.SharedContext, prepRes, execRes any) (Action, error)
}

// edgeKey identifies one outgoing edge: a node name paired with the action
// that selects it.
type edgeKey struct {
	node   string
	action Action
}

// Flow is a directed multigraph of Nodes keyed by (node, action) pairs.
type Flow struct {
	start Node
	nodes map[string]Node
	edges map[edgeKey]Node
}

// New creates a Flow whose traversal begins at start.
func New(start Node) *Flow {
	return &Flow{
		start: start,
		nodes: map[string]Node{start.Name(): start},
		edges: make(map[edgeKey]Node),
	}
}

// On wires from's action edge to next. from and next are registered as
// known nodes as a side effect.
func (f *Flow) On(from Node, action Action, next Node) *Flow {
	f.nodes[from.Name()] = from
	f.nodes[next.Name()] = next
	f.edges[edgeKey{from.Name(), action}] = next
	return f
}

// StepResult records one node invocation for observability/snapshotting.
type StepResult struct {
	Node   string
	Action Action
	Err    error
}

// Run repeatedly invokes the current node's three phases and follows the
// returned action's outgoing edge until no edge exists, then returns.
//
// Per spec.md §4.2, an exception inside prep or exec is caught, logged via
// onStep if non-nil, and treated as if the node returned
// flow.ActionExitOnError; an exception inside post terminates the flow
// after being reported the same way (post has already had the chance to
// mutate shared, so there is no safe action to recover into).
func (f *Flow) Run(ctx context.Context, shared *state.SharedContext, onStep func(StepResult)) error {
	current := f.start

	for current != nil {
		action, err := f.step(ctx, shared, current)
		if onStep != nil {
			onStep(StepResult{Node: current.Name(), Action: action, Err: err})
		}
		if err != nil && action == "" {
			// post itself failed: nothing more we can safely do.
			return fmt.Errorf("flow: node %s post failed: %w", current.Name(), err)
		}

		next, ok := f.edges[edgeKey{current.Name(), action}]
		if !ok {
			return nil
		}
		current = next
	}
	return nil
}

// step runs one node's Prep/Exec/Post cycle, translating a prep/exec error
// into ActionExitOnError per spec.md §7's "format error" / "logic error"
// recovery policy.
func (f *Flow) step(ctx context.Context, shared *state.SharedContext, n Node) (Action, error) {
	prepRes, err := n.Prep(ctx, shared)
	if err != nil {
		return ActionExitOnError, err
	}

	execRes, err := n.Exec(ctx, prepRes)
	if err != nil {
		return ActionExitOnError, err
	}

	action, err := n.Post(ctx, shared, prepRes, execRes)
	if err != nil {
		return "", err
	}
	return action, nil
}
