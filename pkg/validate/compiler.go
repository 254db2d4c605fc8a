// Package validate derives authoritative input validators from a form
// schema. One compilation serves both sides of the wire: Parse runs the full
// rule set in-process while Transport emits a serializable descriptor for a
// remote validation boundary that does not share this runtime.
package validate

import (
	"context"
	"fmt"

	"github.com/goliatone/go-formflow/pkg/options"
	"github.com/goliatone/go-formflow/pkg/schema"
)

// FieldError is a single recoverable validation failure. Failures are data,
// never panics or error returns; a session continues after rejection.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result is the outcome of parsing a value set. Values holds the coerced
// output only when OK; optional fields the user left blank stay absent.
type Result struct {
	OK     bool            `json:"ok"`
	Values schema.ValueSet `json:"values,omitempty"`
	Errors []FieldError    `json:"errors,omitempty"`
}

// Option customises compilation.
type Option func(*Validator)

// WithCatalog supplies the option catalog used to resolve late-bound option
// set references during Parse and Transport.
func WithCatalog(catalog options.Catalog) Option {
	return func(v *Validator) {
		v.catalog = catalog
	}
}

type fieldRule struct {
	field  schema.Field
	parse  parseFunc
	checks []checkFunc
}

// Validator is the compiled form of a schema's validation rules. It is
// immutable after Compile and safe for concurrent use.
type Validator struct {
	schema  *schema.FormSchema
	catalog options.Catalog
	rules   []fieldRule
	byName  map[string]int
}

// Compile validates the schema structurally and derives the per-field rule
// table. Compilation fails only on structurally invalid schemas; such a
// failure is fatal and the schema must be republished, not retried.
func Compile(s *schema.FormSchema, opts ...Option) (*Validator, error) {
	if err := schema.Validate(s); err != nil {
		return nil, err
	}

	v := &Validator{
		schema: s,
		byName: make(map[string]int),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(v)
	}

	for _, field := range s.InputFields() {
		parse, ok := baseParsers[field.Kind]
		if !ok {
			return nil, fmt.Errorf("validate: no base rule for field type %q", field.Kind)
		}
		checks, err := buildChecks(field)
		if err != nil {
			return nil, err
		}
		v.byName[field.Name] = len(v.rules)
		v.rules = append(v.rules, fieldRule{field: field, parse: parse, checks: checks})
	}

	return v, nil
}

// Schema returns the schema this validator was compiled from.
func (v *Validator) Schema() *schema.FormSchema { return v.schema }

// Selection narrows a parse to a subset of fields. Required overrides the
// static required flag per field; the wizard feeds it the effective state
// from a visibility evaluation so conditional require rules are enforced.
type Selection struct {
	Names    []string
	Required map[string]bool
}

// Parse validates and coerces every input field in the schema. The context
// is consumed only when an option set reference must be resolved through the
// catalog; catalog failures are collaborator errors and return as the error
// value, distinct from per-field rejections.
func (v *Validator) Parse(ctx context.Context, values schema.ValueSet) (Result, error) {
	return v.ParseFields(ctx, values, nil)
}

// ParseFields validates only the named fields, in schema order. A nil names
// slice means every field.
func (v *Validator) ParseFields(ctx context.Context, values schema.ValueSet, names []string) (Result, error) {
	return v.ParseSelection(ctx, values, Selection{Names: names})
}

// ParseSelection validates the selected fields, in schema order. Callers
// gating a wizard step pass the step's currently visible field names together
// with their effective required flags.
func (v *Validator) ParseSelection(ctx context.Context, values schema.ValueSet, sel Selection) (Result, error) {
	var subset map[string]struct{}
	if sel.Names != nil {
		subset = make(map[string]struct{}, len(sel.Names))
		for _, name := range sel.Names {
			subset[name] = struct{}{}
		}
	}

	out := make(schema.ValueSet)
	var errs []FieldError

	for _, rule := range v.rules {
		name := rule.field.Name
		if subset != nil {
			if _, ok := subset[name]; !ok {
				continue
			}
		}

		required := rule.field.Required
		if override, ok := sel.Required[name]; ok {
			required = override
		}

		raw, present := values[name]
		if !present || isEmpty(raw) {
			if required {
				errs = append(errs, FieldError{Field: name, Message: "is required"})
			}
			continue
		}

		value, msg := rule.parse(raw)
		if msg != "" {
			errs = append(errs, FieldError{Field: name, Message: msg})
			continue
		}

		if rule.field.Kind.Choice() {
			allowed, err := v.allowedValues(ctx, rule.field)
			if err != nil {
				return Result{}, err
			}
			if msg := checkMembership(value, allowed); msg != "" {
				errs = append(errs, FieldError{Field: name, Message: msg})
				continue
			}
		}

		failed := false
		for _, check := range rule.checks {
			if msg := check(value); msg != "" {
				errs = append(errs, FieldError{Field: name, Message: msg})
				failed = true
				break
			}
		}
		if failed {
			continue
		}

		out[name] = value
	}

	if len(errs) > 0 {
		return Result{OK: false, Errors: errs}, nil
	}
	return Result{OK: true, Values: out}, nil
}

// allowedValues resolves a choice field's option set, either inline or
// through the catalog.
func (v *Validator) allowedValues(ctx context.Context, field schema.Field) (map[string]struct{}, error) {
	choice := field.Choice
	opts := choice.Options
	if choice.OptionSetRef != "" {
		if v.catalog == nil {
			return nil, fmt.Errorf("validate: field %q references option set %q but no catalog is configured", field.Name, choice.OptionSetRef)
		}
		resolved, err := v.catalog.ResolveOptions(ctx, choice.OptionSetRef)
		if err != nil {
			return nil, fmt.Errorf("validate: resolve option set %q for field %q: %w", choice.OptionSetRef, field.Name, err)
		}
		opts = resolved
	}
	allowed := make(map[string]struct{}, len(opts))
	for _, opt := range opts {
		allowed[opt.Value] = struct{}{}
	}
	return allowed, nil
}

func checkMembership(value any, allowed map[string]struct{}) string {
	switch v := value.(type) {
	case string:
		if _, ok := allowed[v]; !ok {
			return fmt.Sprintf("%q is not one of the allowed options", v)
		}
	case []string:
		for _, item := range v {
			if _, ok := allowed[item]; !ok {
				return fmt.Sprintf("%q is not one of the allowed options", item)
			}
		}
	}
	return ""
}
