// Package openapi bootstraps form schemas from OpenAPI documents. An
// operation's request body becomes a single-step form definition, giving
// tenants with API-described resources a starting schema to customize.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// ImportOptions configures an import.
type ImportOptions struct {
	// StepID overrides the generated step id (defaults to the operation id).
	StepID string
	// StepTitle overrides the step title (defaults to the operation summary).
	StepTitle string
}

// ImportOperation loads an OpenAPI document and converts the named
// operation's JSON request body into a normalized, validated FormSchema.
func ImportOperation(ctx context.Context, data []byte, operationID string, opts ImportOptions) (*schema.FormSchema, error) {
	if len(data) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}
	if operationID == "" {
		return nil, errors.New("openapi: operation id is required")
	}

	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}

	operation := findOperation(spec, operationID)
	if operation == nil {
		return nil, fmt.Errorf("openapi: operation %q not found", operationID)
	}

	body := requestBodySchema(operation)
	if body == nil {
		return nil, fmt.Errorf("openapi: operation %q has no JSON request body", operationID)
	}

	fields, err := fieldsFromObject(body)
	if err != nil {
		return nil, err
	}

	stepID := opts.StepID
	if stepID == "" {
		stepID = operationID
	}
	title := opts.StepTitle
	if title == "" {
		title = operation.Summary
	}

	out := &schema.FormSchema{
		Version: 1,
		Steps:   []schema.Step{{ID: stepID, Title: title, Fields: fields}},
	}
	schema.Normalize(out)
	if err := schema.Validate(out); err != nil {
		return nil, err
	}
	return out, nil
}

func findOperation(spec *openapi3.T, operationID string) *openapi3.Operation {
	if spec.Paths == nil {
		return nil
	}
	for _, item := range spec.Paths.Map() {
		if item == nil {
			continue
		}
		for _, op := range []*openapi3.Operation{
			item.Get, item.Put, item.Post, item.Delete, item.Patch,
		} {
			if op != nil && op.OperationID == operationID {
				return op
			}
		}
	}
	return nil
}

func requestBodySchema(op *openapi3.Operation) *openapi3.Schema {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt, ok := op.RequestBody.Value.Content[mediaType]; ok && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

func fieldsFromObject(src *openapi3.Schema) ([]schema.Field, error) {
	required := make(map[string]struct{}, len(src.Required))
	for _, name := range src.Required {
		required[name] = struct{}{}
	}

	names := make([]string, 0, len(src.Properties))
	for name := range src.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	var fields []schema.Field
	for _, name := range names {
		ref := src.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		_, isRequired := required[name]
		field, err := fieldFromProperty(name, ref.Value, isRequired)
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}
	return fields, nil
}

func fieldFromProperty(name string, src *openapi3.Schema, required bool) (schema.Field, error) {
	field := schema.Field{
		ID:       name,
		Name:     name,
		Label:    labelFromName(name),
		Required: required,
	}

	switch firstType(src.Type) {
	case "string":
		field.Kind = stringKind(src)
		if field.Kind == schema.KindSelect {
			field.Choice = &schema.ChoiceAttrs{Options: optionsFromEnum(src.Enum)}
		}
	case "number", "integer":
		field.Kind = schema.KindNumber
	case "boolean":
		field.Kind = schema.KindCheckbox
	case "array":
		if src.Items == nil || src.Items.Value == nil || len(src.Items.Value.Enum) == 0 {
			return schema.Field{}, fmt.Errorf("openapi: property %q: only enum arrays map to form fields", name)
		}
		field.Kind = schema.KindMultiSelect
		field.Choice = &schema.ChoiceAttrs{Options: optionsFromEnum(src.Items.Value.Enum)}
	default:
		return schema.Field{}, fmt.Errorf("openapi: property %q has unsupported type %q", name, firstType(src.Type))
	}

	field.Validation = validationFromSchema(src)
	return field, nil
}

func stringKind(src *openapi3.Schema) schema.Kind {
	if len(src.Enum) > 0 {
		return schema.KindSelect
	}
	switch src.Format {
	case "email":
		return schema.KindEmail
	case "date":
		return schema.KindDate
	case "binary", "byte":
		return schema.KindFile
	default:
		return schema.KindText
	}
}

func validationFromSchema(src *openapi3.Schema) *schema.Validation {
	var v schema.Validation
	has := false

	if src.Min != nil {
		value := *src.Min
		v.Min = &value
		has = true
	}
	if src.Max != nil {
		value := *src.Max
		v.Max = &value
		has = true
	}
	if src.MinLength != 0 {
		value := int(src.MinLength)
		v.MinLength = &value
		has = true
	}
	if src.MaxLength != nil {
		value := int(*src.MaxLength)
		v.MaxLength = &value
		has = true
	}
	if src.Pattern != "" {
		v.Pattern = src.Pattern
		has = true
	}

	if !has {
		return nil
	}
	return &v
}

func optionsFromEnum(enum []any) []schema.Option {
	out := make([]schema.Option, 0, len(enum))
	for _, item := range enum {
		value := fmt.Sprint(item)
		out = append(out, schema.Option{Value: value, Label: labelFromName(value)})
	}
	return out
}

func firstType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	values := types.Slice()
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func labelFromName(name string) string {
	cleaned := strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(name)
	words := strings.Fields(cleaned)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
