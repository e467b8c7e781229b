// Package orchestrator wires the Solver/Verifier/Refiner/Summarizer nodes
// into a flow.Flow and runs it across a bounded pool of concurrent
// workers (spec.md §4.9-§4.10).
//
// Grounded on the teacher's workflowagent.NewParallel
// (pkg/agent/workflowagent/parallel.go), which races sub-agents with an
// errgroup and a context passed to every branch, cancelling peers once one
// result is accepted.
package orchestrator

import (
	"github.com/alphasolve/alphasolve/flow"
	"github.com/alphasolve/alphasolve/nodes"
)

// BuildFlow wires the exact nine edges of spec.md §4.9. No other edges
// exist; Summarizer has none outgoing, so reaching it always terminates
// the flow.
func BuildFlow(solver, verifier, refiner, summarizer flow.Node) *flow.Flow {
	f := flow.New(solver)

	f.On(solver, nodes.ActionConjectureGenerated, verifier)
	f.On(solver, flow.ActionExitOnExausted, summarizer)
	f.On(solver, flow.ActionExitOnError, solver)

	f.On(verifier, nodes.ActionConjectureVerified, solver)
	f.On(verifier, nodes.ActionConjectureUnverified, refiner)
	f.On(verifier, flow.ActionDone, summarizer)

	f.On(refiner, nodes.ActionRefineSuccess, verifier)
	f.On(refiner, flow.ActionExitOnExausted, solver)
	f.On(refiner, flow.ActionExitOnError, refiner)

	return f
}
