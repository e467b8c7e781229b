package llmclient

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// RepairError is the structured failure repairArguments returns when no
// candidate transformation of raw produces valid JSON. It is surfaced to
// the model as a tool-role error message rather than failing the
// conversation (spec.md §4.4).
type RepairError struct {
	Raw        string
	Candidates []string
}

func (e *RepairError) Error() string {
	return fmt.Sprintf("llmclient: could not parse tool arguments as JSON: %q", e.Raw)
}

// trimSentinels strips a trailing "<|...|>" marker some models append
// after the JSON payload, and anything past the first balanced top-level
// JSON value (brace/bracket counting, string-aware so braces inside a
// string literal don't confuse the scan).
func trimSentinels(raw string) string {
	raw = strings.TrimSpace(raw)
	end := firstBalancedValueEnd(raw)
	if end > 0 && end < len(raw) {
		raw = raw[:end]
	}
	return strings.TrimSpace(raw)
}

func firstBalancedValueEnd(s string) int {
	depth := 0
	inString := false
	escaped := false
	started := false

	for i, r := range s {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			inString = true
		case '{', '[':
			depth++
			started = true
		case '}', ']':
			depth--
			if started && depth == 0 {
				return i + 1
			}
		}
	}
	return len(s)
}

// candidateTransforms, applied in order, each attempting to coax raw into
// valid JSON. Per spec.md §4.4: as-is, stray-backslash escaping (LaTeX
// tolerance), literal-control-character re-escaping, and the combination
// of the two.
var candidateTransforms = []func(string) string{
	func(s string) string { return s },
	escapeStrayBackslashes,
	reescapeControlChars,
	func(s string) string { return reescapeControlChars(escapeStrayBackslashes(s)) },
}

var backslashEscape = regexp.MustCompile(`\\[\\"/bfnrtu]?`)

// escapeStrayBackslashes doubles every backslash that does not start a
// valid JSON escape, so raw LaTeX such as \eta decodes to a literal
// backslash; valid escapes (\n, \", \\, ...) are left as they are.
func escapeStrayBackslashes(s string) string {
	return backslashEscape.ReplaceAllStringFunc(s, func(m string) string {
		if len(m) == 2 {
			return m
		}
		return `\\`
	})
}

func reescapeControlChars(s string) string {
	replacer := strings.NewReplacer(
		"\r", `\r`,
		"\n", `\n`,
		"\t", `\t`,
	)
	return replacer.Replace(s)
}

// repairArguments attempts to parse raw tool-call arguments as a JSON
// object, trying each candidate transform in order and returning the
// first that decodes, or a RepairError listing every candidate tried.
func repairArguments(raw string) (map[string]any, *RepairError) {
	trimmed := trimSentinels(raw)
	if trimmed == "" {
		return map[string]any{}, nil
	}

	candidates := make([]string, 0, len(candidateTransforms))
	for _, transform := range candidateTransforms {
		candidate := transform(trimmed)
		candidates = append(candidates, candidate)

		var parsed map[string]any
		if err := json.Unmarshal([]byte(candidate), &parsed); err == nil {
			return parsed, nil
		}
	}

	return nil, &RepairError{Raw: raw, Candidates: candidates}
}

// RepairMarkerField applies the marker-only over-escape collapse spec.md
// §4.4 calls for: "\\\\" -> "\\" -> "\" repeatedly, leaving the rest of a
// tool call's arguments (e.g. a replacement body) untouched. Used by
// toolruntime's modify_proof handler on begin_marker/end_marker only.
func RepairMarkerField(s string) string {
	for strings.Contains(s, `\\`) {
		next := strings.ReplaceAll(s, `\\`, `\`)
		if next == s {
			break
		}
		s = next
	}
	return s
}
