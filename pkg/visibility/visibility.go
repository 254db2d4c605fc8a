// Package visibility computes the effective visible/required/disabled state
// of every field in a schema from the live value set. Evaluation is pure with
// respect to (schema, values) and cheap enough to re-run on every keystroke.
package visibility

import (
	"github.com/goliatone/go-formflow/pkg/schema"
)

// FieldState is the effective state of one field after rule evaluation.
type FieldState struct {
	Visible  bool `json:"visible"`
	Required bool `json:"required"`
	Disabled bool `json:"disabled"`
}

// State maps field names to their effective state. Layout markers carry no
// name and are always rendered, so they have no entry.
type State map[string]FieldState

// Evaluate computes the effective state of every input field.
//
// Rules on a field combine per action bucket: every show rule must pass for
// the field to be shown, and every require rule must pass for the field to
// become required. A single passing hide rule hides the field, and hidden
// dominates both shown and required. A field with no rules is visible and
// keeps its static required flag.
//
// Rules read the referenced field's last known value even when that field is
// itself hidden; hidden values are never cleared here. Clearing them is an
// explicit controller decision, not an evaluation side effect.
func Evaluate(s *schema.FormSchema, values schema.ValueSet) State {
	out := make(State)
	if s == nil {
		return out
	}

	for _, field := range s.InputFields() {
		state := FieldState{Visible: true, Required: field.Required}

		var (
			showRules, requireRules         int
			showPass, hidePass, requirePass int
		)
		for _, rule := range field.Conditional {
			pass := ruleMatches(rule, values[rule.FieldRef])
			switch rule.Action {
			case schema.ActionShow:
				showRules++
				if pass {
					showPass++
				}
			case schema.ActionHide:
				if pass {
					hidePass++
				}
			case schema.ActionRequire:
				requireRules++
				if pass {
					requirePass++
				}
			}
		}

		if showRules > 0 {
			state.Visible = showPass == showRules
		}
		if hidePass > 0 {
			state.Visible = false
		}
		if requireRules > 0 && requirePass == requireRules {
			state.Required = true
		}
		if !state.Visible {
			state.Required = false
		}

		out[field.Name] = state
	}

	return out
}

// VisibleStepFields returns the input fields of one step that are currently
// visible under the given state, in document order.
func VisibleStepFields(s *schema.FormSchema, stepIndex int, state State) []schema.Field {
	if s == nil || stepIndex < 0 || stepIndex >= len(s.Steps) {
		return nil
	}
	var out []schema.Field
	for _, field := range s.Steps[stepIndex].Fields {
		if field.Kind.Layout() {
			continue
		}
		if st, ok := state[field.Name]; ok && st.Visible {
			out = append(out, field)
		}
	}
	return out
}

// HiddenNames returns the names of fields hidden under the given state.
func HiddenNames(state State) []string {
	var out []string
	for name, st := range state {
		if !st.Visible {
			out = append(out, name)
		}
	}
	return out
}
