// Package formflow re-exports the most common types and entry points so
// callers can load a schema, validate submissions, and run sync or wizard
// flows without importing each subpackage directly.
package formflow

import (
	"context"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/templatesync"
	"github.com/goliatone/go-formflow/pkg/validate"
	"github.com/goliatone/go-formflow/pkg/visibility"
	"github.com/goliatone/go-formflow/pkg/wizard"
)

// FormSchema is the canonical multi-step form definition.
type FormSchema = schema.FormSchema

// Field is a single form field, input or layout.
type Field = schema.Field

// Step groups fields into one wizard page.
type Step = schema.Step

// ValueSet maps field names to submitted values.
type ValueSet = schema.ValueSet

// Result carries the outcome of validating a submission.
type Result = validate.Result

// FieldError is a per-field validation failure.
type FieldError = validate.FieldError

// FieldState reports the evaluated visibility flags for one field.
type FieldState = visibility.FieldState

// LoadSchema parses, normalizes, and validates a schema document from a file.
func LoadSchema(ctx context.Context, path string) (*FormSchema, error) {
	loader := schema.NewLoader(schema.LoaderOptions{})
	return loader.Load(ctx, schema.SourceFromFile(path))
}

// ParseSchema parses, normalizes, and validates raw YAML or JSON bytes.
func ParseSchema(data []byte) (*FormSchema, error) {
	return schema.Parse(data)
}

// Validate compiles the schema and checks the given values in one call.
// Callers validating repeatedly should compile once with validate.Compile.
func Validate(ctx context.Context, s *FormSchema, values ValueSet, opts ...validate.Option) (Result, error) {
	v, err := validate.Compile(s, opts...)
	if err != nil {
		return Result{}, err
	}
	return v.Parse(ctx, values)
}

// EvaluateVisibility applies the schema's conditional rules to the values.
func EvaluateVisibility(s *FormSchema, values ValueSet) visibility.State {
	return visibility.Evaluate(s, values)
}

// NewWizard starts a step navigation session over the schema.
func NewWizard(formID string, s *FormSchema, opts ...wizard.Option) (*wizard.Controller, error) {
	return wizard.New(formID, s, opts...)
}

// NewSyncEngine wires a template synchronization engine over the store.
func NewSyncEngine(store templatesync.Store, opts ...templatesync.Option) *templatesync.Engine {
	return templatesync.New(store, opts...)
}
