package toolruntime

import "context"

// Format-reminder tools are pure functions of no arguments that return
// the canonical output shape a Solver or Refiner response must take.
// They never touch Context state (spec.md §4.3).

// SolverFormatReminderTool reminds the model of the two legal Solver
// output shapes.
type SolverFormatReminderTool struct{}

func (SolverFormatReminderTool) Name() string { return "solver_format_reminder" }

func (SolverFormatReminderTool) Description() string {
	return "Returns the exact required output format for a Solver response."
}

func (SolverFormatReminderTool) Parameters() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}

const solverFormatReminder = `Respond with exactly one of these two shapes, nothing before or after:
1. <conjecture>...</conjecture><proof>...</proof><dependency>[...]</dependency>
2. <final_conjecture>...</final_conjecture><proof>...</proof><dependency>[...]</dependency>
<dependency> must contain a JSON array of integer lemma ids this proof depends on.`

func (SolverFormatReminderTool) Execute(ctx context.Context, tc *Context, args map[string]any) (string, error) {
	return solverFormatReminder, nil
}

// RefinerFormatReminderTool reminds the model that a Refiner turn must
// include at least one modify_statement or modify_proof tool call.
type RefinerFormatReminderTool struct{}

func (RefinerFormatReminderTool) Name() string { return "refiner_format_reminder" }

func (RefinerFormatReminderTool) Description() string {
	return "Returns the exact required output format for a Refiner response."
}

func (RefinerFormatReminderTool) Parameters() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}

const refinerFormatReminder = `Your response must include at least one call to modify_statement or ` +
	`modify_proof. Free-form explanatory text is otherwise allowed.`

func (RefinerFormatReminderTool) Execute(ctx context.Context, tc *Context, args map[string]any) (string, error) {
	return refinerFormatReminder, nil
}
