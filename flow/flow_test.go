package flow

import (
	"context"
	"errors"
	"testing"

	"github.com/alphasolve/alphasolve/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingNode is a minimal Node used to exercise Flow.Run's control flow
// without any LLM or tool dependency.
type recordingNode struct {
	name       string
	action     Action
	failPrep   bool
	failExec   bool
	execCount  *int
	mutateFunc func(shared *state.SharedContext)
}

func (n *recordingNode) Name() string { return n.name }

func (n *recordingNode) Prep(_ context.Context, _ *state.SharedContext) (any, error) {
	if n.failPrep {
		return nil, errors.New("boom in prep")
	}
	return nil, nil
}

func (n *recordingNode) Exec(_ context.Context, _ any) (any, error) {
	if n.execCount != nil {
		*n.execCount++
	}
	if n.failExec {
		return nil, errors.New("boom in exec")
	}
	return nil, nil
}

func (n *recordingNode) Post(_ context.Context, shared *state.SharedContext, _, _ any) (Action, error) {
	if n.mutateFunc != nil {
		n.mutateFunc(shared)
	}
	return n.action, nil
}

func TestFlow_FollowsEdgesUntilNoneMatch(t *testing.T) {
	var visited []string

	c := &recordingNode{name: "C", action: "TERMINAL"}
	b := &recordingNode{name: "B", action: "TO_C"}
	a := &recordingNode{name: "A", action: "TO_B"}

	f := New(a).On(a, "TO_B", b).On(b, "TO_C", c)

	shared := state.New("prove it", "", nil)
	err := f.Run(context.Background(), shared, func(sr StepResult) {
		visited = append(visited, sr.Node)
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, visited)
}

func TestFlow_MissingEdgeTerminates(t *testing.T) {
	a := &recordingNode{name: "A", action: "NOWHERE"}
	f := New(a)

	shared := state.New("p", "", nil)
	err := f.Run(context.Background(), shared, nil)
	require.NoError(t, err)
}

func TestFlow_PrepErrorRoutesToExitOnError(t *testing.T) {
	count := 0
	retry := &recordingNode{name: "Solver", action: "CONJECTURE_GENERATED", execCount: &count}
	solver := &recordingNode{name: "Solver", failPrep: true, execCount: &count}

	// self-loop: Solver:EXIT_ON_ERROR -> Solver, mirroring spec.md §4.9.
	f := New(solver).On(solver, ActionExitOnError, retry)

	shared := state.New("p", "", nil)
	var actions []Action
	err := f.Run(context.Background(), shared, func(sr StepResult) {
		actions = append(actions, sr.Action)
	})

	require.NoError(t, err)
	assert.Equal(t, []Action{ActionExitOnError, "CONJECTURE_GENERATED"}, actions)
	assert.Equal(t, 1, count, "the failing node's Exec must never run")
}

func TestFlow_ExecErrorRoutesToExitOnError(t *testing.T) {
	solver := &recordingNode{name: "Solver", failExec: true}
	f := New(solver)

	shared := state.New("p", "", nil)
	var gotAction Action
	err := f.Run(context.Background(), shared, func(sr StepResult) {
		gotAction = sr.Action
	})

	require.NoError(t, err)
	assert.Equal(t, ActionExitOnError, gotAction)
}

func TestFlow_PostErrorTerminatesWithError(t *testing.T) {
	bad := &postFailingNode{name: "Bad"}
	f := New(bad)

	shared := state.New("p", "", nil)
	err := f.Run(context.Background(), shared, nil)
	require.Error(t, err)
}

type postFailingNode struct{ name string }

func (n *postFailingNode) Name() string { return n.name }
func (n *postFailingNode) Prep(_ context.Context, _ *state.SharedContext) (any, error) {
	return nil, nil
}
func (n *postFailingNode) Exec(_ context.Context, _ any) (any, error) { return nil, nil }
func (n *postFailingNode) Post(_ context.Context, _ *state.SharedContext, _, _ any) (Action, error) {
	return "", errors.New("post exploded")
}

func TestFlow_PostMutatesSharedBetweenNodes(t *testing.T) {
	a := &recordingNode{name: "A", action: "NEXT", mutateFunc: func(shared *state.SharedContext) {
		shared.Hint = "mutated by A"
	}}
	b := &recordingNode{name: "B", action: "DONE_X"}

	f := New(a).On(a, "NEXT", b)
	shared := state.New("p", "", nil)
	require.NoError(t, f.Run(context.Background(), shared, nil))
	assert.Equal(t, "mutated by A", shared.Hint)
}
