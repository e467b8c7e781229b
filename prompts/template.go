// Package prompts implements the engine's prompt placeholder
// substitution: simple `{name}` literal replacement, not text/template.
//
// The teacher's PromptConfig (config/types.go) holds prompt text as a
// handful of named string fields (system prompt, role instructions); it
// never needs runtime substitution because those strings are static.
// AlphaSolve's Solver/Verifier/Refiner prompts are built from a fixed
// template plus per-call values (problem text, remaining quota, a
// lemma's statement/proof, a verifier review) that are frequently
// LaTeX, so a text/template-based engine would force callers to escape
// every literal `{{` a model might echo back. A flat, non-recursive,
// single-pass literal substitution sidesteps that entirely.
package prompts

import "strings"

// Render replaces every `{key}` placeholder in template with the string
// value of values[key], leaving unknown placeholders untouched. Keys are
// matched literally; no escaping, conditionals, or loops are supported.
func Render(template string, values map[string]string) string {
	if len(values) == 0 {
		return template
	}
	pairs := make([]string, 0, len(values)*2)
	for k, v := range values {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
