// Package alphasolve implements the AlphaSolve agentic problem-solving
// engine: a multi-agent workflow that coordinates Solver, Verifier,
// Refiner, and Summarizer roles against a shared lemma graph to turn a
// natural-language mathematical problem into a verified chain of lemmas
// culminating in a theorem.
//
// A single workflow run is driven by a flow.Flow wiring four flow.Node
// implementations (package nodes) around a state.SharedContext. Nodes
// call out to an LLM through llmclient.Client and to sandboxed tools
// through toolruntime.Registry. The orchestrator package runs several
// workflow replicas concurrently against a shared lemma.Graph across
// iteration rounds.
//
// AlphaSolve does not formally verify mathematics: "verification" means
// the Verifier LLM role judging correctness, and output is not expected
// to be deterministic across runs.
package alphasolve
