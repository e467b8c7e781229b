package lemma

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLemma(statement string, deps []int, status Status) *Lemma {
	return &Lemma{
		Statement:    statement,
		Proof:        "proof of " + statement,
		Dependencies: deps,
		Status:       status,
	}
}

func TestGraph_AppendAssignsSequentialIDs(t *testing.T) {
	g := NewGraph()
	id0 := g.Append(newTestLemma("a", nil, StatusPending))
	id1 := g.Append(newTestLemma("b", []int{0}, StatusPending))

	assert.Equal(t, 0, id0)
	assert.Equal(t, 1, id1)
	assert.Equal(t, 2, g.Len())
}

func TestGraph_BuildReasoningPath_TopologicalOrder(t *testing.T) {
	g := NewGraph()
	g.Append(newTestLemma("l0", nil, StatusVerified))
	g.Append(newTestLemma("l1", []int{0}, StatusVerified))
	g.Append(newTestLemma("l2", []int{0, 1}, StatusVerified))
	g.Append(newTestLemma("l3", []int{2}, StatusPending))

	path := g.BuildReasoningPath(3, false)
	require.Len(t, path, 3)

	pos := make(map[int]int, len(path))
	for i, id := range path {
		pos[id] = i
	}
	// every survived dependency must appear before its dependent.
	snap := g.Snapshot()
	for _, id := range path {
		for _, dep := range snap[id].Dependencies {
			if dep < id {
				require.Less(t, pos[dep], pos[id])
			}
		}
	}
	assert.NotContains(t, path, 3, "path must exclude the lemma itself")
}

func TestGraph_BuildReasoningPath_VerifiedOnlyFiltersRejectedAndPending(t *testing.T) {
	g := NewGraph()
	g.Append(newTestLemma("l0", nil, StatusVerified))
	g.Append(newTestLemma("l1", []int{0}, StatusRejected))
	g.Append(newTestLemma("l2", []int{0, 1}, StatusVerified))

	path := g.BuildReasoningPath(2, true)
	assert.ElementsMatch(t, []int{0}, path, "rejected dependency l1 must be excluded")
}

func TestGraph_BuildReasoningPath_IgnoresForwardAndOutOfRangeDeps(t *testing.T) {
	g := NewGraph()
	g.Append(newTestLemma("l0", []int{5, 0}, StatusVerified)) // self-ref and OOR, both ignored
	g.Append(newTestLemma("l1", []int{0, 1}, StatusVerified)) // self-ref ignored

	path := g.BuildReasoningPath(1, false)
	assert.Equal(t, []int{0}, path)
}

func TestGraph_BuildReasoningPath_DeduplicatesDiamondDependency(t *testing.T) {
	g := NewGraph()
	g.Append(newTestLemma("l0", nil, StatusVerified))
	g.Append(newTestLemma("l1", []int{0}, StatusVerified))
	g.Append(newTestLemma("l2", []int{0}, StatusVerified))
	g.Append(newTestLemma("l3", []int{1, 2}, StatusVerified))

	path := g.BuildReasoningPath(3, false)
	sorted := append([]int(nil), path...)
	sort.Ints(sorted)
	assert.Equal(t, []int{0, 1, 2}, sorted)
	assert.Len(t, path, 3, "lemma 0 must appear exactly once despite two incoming edges")
}

func TestGraph_BuildReasoningPath_OutOfRangeLemmaID(t *testing.T) {
	g := NewGraph()
	g.Append(newTestLemma("l0", nil, StatusVerified))
	assert.Nil(t, g.BuildReasoningPath(99, false))
	assert.Nil(t, g.BuildReasoningPath(-1, false))
}

func TestValidate_RejectsForwardDependency(t *testing.T) {
	l := newTestLemma("l2", []int{2, 3}, StatusPending)
	err := Validate(l, 2)
	require.Error(t, err)
}

func TestValidate_RejectsEmptyStatement(t *testing.T) {
	l := newTestLemma("", nil, StatusPending)
	err := Validate(l, 0)
	require.Error(t, err)
}

func TestValidate_RejectsIllegalStatus(t *testing.T) {
	l := newTestLemma("x", nil, Status("bogus"))
	err := Validate(l, 0)
	require.Error(t, err)
}

func TestLemma_SetStatus_LegalTransitions(t *testing.T) {
	l := newTestLemma("x", nil, StatusPending)
	require.NoError(t, l.SetStatus(StatusVerified))
	require.NoError(t, l.SetStatus(StatusVerified), "verified->verified is a no-op")
	assert.Error(t, l.SetStatus(StatusPending), "verified->pending must be illegal")
}

func TestLemma_SetStatus_RejectedIsTerminal(t *testing.T) {
	l := newTestLemma("x", nil, StatusPending)
	require.NoError(t, l.SetStatus(StatusRejected))
	require.NoError(t, l.SetStatus(StatusRejected))
	assert.Error(t, l.SetStatus(StatusVerified))
}
