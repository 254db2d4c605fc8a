package schema

import (
	"fmt"
	"strings"
)

// Issue describes a single structural problem found during Validate.
type Issue struct {
	Path    string `json:"path,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// InvalidError aggregates every structural issue in a schema. Structural
// invalidity is fatal: the schema must be fixed at its source, not retried.
type InvalidError struct {
	Issues []Issue
}

func (e *InvalidError) Error() string {
	if e == nil || len(e.Issues) == 0 {
		return "schema: invalid"
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if issue.Path != "" {
			parts = append(parts, issue.Path+": "+issue.Message)
			continue
		}
		parts = append(parts, issue.Message)
	}
	return "schema: invalid: " + strings.Join(parts, "; ")
}

// Validate checks the structural invariants a schema must satisfy before any
// other component may consume it: at least one step, unique step ids, unique
// schema-wide field names, known kinds, kind-scoped attributes on the right
// kinds, and an acyclic conditional-reference graph. It returns nil or an
// *InvalidError carrying every issue found.
func Validate(s *FormSchema) error {
	var issues []Issue
	if s == nil {
		return &InvalidError{Issues: []Issue{{Message: "schema is nil"}}}
	}
	if len(s.Steps) == 0 {
		issues = append(issues, Issue{Message: "schema must declare at least one step"})
	}

	stepIDs := make(map[string]struct{}, len(s.Steps))
	names := make(map[string]string)
	for si, step := range s.Steps {
		stepPath := fmt.Sprintf("steps[%d]", si)
		if step.ID == "" {
			issues = append(issues, Issue{Path: stepPath, Message: "step id is required"})
		} else if _, dup := stepIDs[step.ID]; dup {
			issues = append(issues, Issue{Path: stepPath, Message: fmt.Sprintf("duplicate step id %q", step.ID)})
		} else {
			stepIDs[step.ID] = struct{}{}
		}

		for fi, field := range step.Fields {
			path := fmt.Sprintf("%s.fields[%d]", stepPath, fi)
			issues = append(issues, validateField(field, path, names)...)
		}
	}

	issues = append(issues, validateConditionals(s, names)...)

	if len(issues) > 0 {
		return &InvalidError{Issues: issues}
	}
	return nil
}

func validateField(field Field, path string, names map[string]string) []Issue {
	var issues []Issue

	if !field.Kind.Valid() {
		issues = append(issues, Issue{Path: path, Field: field.Name, Message: fmt.Sprintf("unknown field type %q", string(field.Kind))})
		return issues
	}

	if field.Kind.Layout() {
		if field.Name != "" {
			issues = append(issues, Issue{Path: path, Message: fmt.Sprintf("layout field %q must not carry a name", field.Kind)})
		}
		if field.Required {
			issues = append(issues, Issue{Path: path, Message: fmt.Sprintf("layout field %q cannot be required", field.Kind)})
		}
		if field.Validation != nil {
			issues = append(issues, Issue{Path: path, Message: fmt.Sprintf("layout field %q cannot carry validation", field.Kind)})
		}
		if field.Choice != nil {
			issues = append(issues, Issue{Path: path, Message: fmt.Sprintf("layout field %q cannot carry options", field.Kind)})
		}
		if field.Kind == KindDivider && field.Static != nil {
			issues = append(issues, Issue{Path: path, Message: "divider cannot carry content"})
		}
		return issues
	}

	if field.Name == "" {
		issues = append(issues, Issue{Path: path, Message: fmt.Sprintf("%s field requires a name", field.Kind)})
	} else if prev, dup := names[field.Name]; dup {
		issues = append(issues, Issue{Path: path, Field: field.Name, Message: fmt.Sprintf("duplicate field name %q (already declared at %s)", field.Name, prev)})
	} else {
		names[field.Name] = path
	}

	if field.Static != nil {
		issues = append(issues, Issue{Path: path, Field: field.Name, Message: fmt.Sprintf("%s field cannot carry static content", field.Kind)})
	}

	if field.Kind.Choice() {
		switch {
		case field.Choice == nil:
			issues = append(issues, Issue{Path: path, Field: field.Name, Message: fmt.Sprintf("%s field requires options or an optionSetRef", field.Kind)})
		case len(field.Choice.Options) > 0 && field.Choice.OptionSetRef != "":
			issues = append(issues, Issue{Path: path, Field: field.Name, Message: "options and optionSetRef are mutually exclusive"})
		case len(field.Choice.Options) == 0 && field.Choice.OptionSetRef == "":
			issues = append(issues, Issue{Path: path, Field: field.Name, Message: fmt.Sprintf("%s field requires options or an optionSetRef", field.Kind)})
		}
	} else if field.Choice != nil {
		issues = append(issues, Issue{Path: path, Field: field.Name, Message: fmt.Sprintf("%s field cannot carry options", field.Kind)})
	}

	if field.Validation != nil {
		if field.Validation.MinLength != nil && field.Validation.MaxLength != nil &&
			*field.Validation.MinLength > *field.Validation.MaxLength {
			issues = append(issues, Issue{Path: path, Field: field.Name, Message: "minLength exceeds maxLength"})
		}
		if field.Validation.Min != nil && field.Validation.Max != nil &&
			*field.Validation.Min > *field.Validation.Max {
			issues = append(issues, Issue{Path: path, Field: field.Name, Message: "min exceeds max"})
		}
	}

	return issues
}

// validateConditionals checks rule references and rejects reference cycles.
// The dependency graph has an edge from each conditioned field to its
// FieldRef; a depth-first walk with coloring finds cycles without needing a
// full topological order.
func validateConditionals(s *FormSchema, names map[string]string) []Issue {
	var issues []Issue

	deps := make(map[string][]string)
	for _, field := range s.InputFields() {
		for ri, rule := range field.Conditional {
			path := fmt.Sprintf("%s.conditional[%d]", names[field.Name], ri)
			if !rule.Operator.Valid() {
				issues = append(issues, Issue{Path: path, Field: field.Name, Message: fmt.Sprintf("unknown operator %q", string(rule.Operator))})
			}
			if !rule.Action.Valid() {
				issues = append(issues, Issue{Path: path, Field: field.Name, Message: fmt.Sprintf("unknown action %q", string(rule.Action))})
			}
			if rule.FieldRef == "" {
				issues = append(issues, Issue{Path: path, Field: field.Name, Message: "fieldRef is required"})
				continue
			}
			if rule.FieldRef == field.Name {
				issues = append(issues, Issue{Path: path, Field: field.Name, Message: "conditional rule cannot reference its own field"})
				continue
			}
			if _, known := names[rule.FieldRef]; !known {
				issues = append(issues, Issue{Path: path, Field: field.Name, Message: fmt.Sprintf("fieldRef %q does not name an input field", rule.FieldRef)})
				continue
			}
			deps[field.Name] = append(deps[field.Name], rule.FieldRef)
		}
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(deps))
	var visit func(name string, trail []string) []string
	visit = func(name string, trail []string) []string {
		switch color[name] {
		case gray:
			return append(trail, name)
		case black:
			return nil
		}
		color[name] = gray
		for _, ref := range deps[name] {
			if cycle := visit(ref, append(trail, name)); cycle != nil {
				return cycle
			}
		}
		color[name] = black
		return nil
	}

	for _, field := range s.InputFields() {
		if cycle := visit(field.Name, nil); cycle != nil {
			issues = append(issues, Issue{
				Field:   cycle[len(cycle)-1],
				Message: fmt.Sprintf("conditional reference cycle: %s", strings.Join(cycle, " -> ")),
			})
			break
		}
	}

	return issues
}
