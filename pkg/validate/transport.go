package validate

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// TransportField is the wire form of one field's validation rules: primitive
// type, bounds, pattern, and enum only. It deliberately contains nothing a
// remote validation boundary could not interpret without this runtime.
type TransportField struct {
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Format    string   `json:"format,omitempty"`
	Required  bool     `json:"required"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	MinLength *int     `json:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
	Enum      []string `json:"enum,omitempty"`
}

// TransportSchema is the serializable validation descriptor derived from a
// compiled schema. Layout markers are excluded.
type TransportSchema struct {
	Version int              `json:"version"`
	Fields  []TransportField `json:"fields"`
}

// transportTypes maps field kinds onto the wire primitives the descriptor is
// allowed to use.
var transportTypes = map[schema.Kind]struct {
	typ    string
	format string
}{
	schema.KindText:        {typ: "string"},
	schema.KindTextarea:    {typ: "string"},
	schema.KindEmail:       {typ: "string", format: "email"},
	schema.KindPhone:       {typ: "string", format: "phone"},
	schema.KindNumber:      {typ: "number"},
	schema.KindRating:      {typ: "integer", format: "rating"},
	schema.KindCheckbox:    {typ: "boolean"},
	schema.KindSelect:      {typ: "string"},
	schema.KindRadio:       {typ: "string"},
	schema.KindMultiSelect: {typ: "array"},
	schema.KindDate:        {typ: "string", format: "date"},
	schema.KindFile:        {typ: "string", format: "file"},
	schema.KindSignature:   {typ: "string", format: "signature"},
}

// Transport derives the descriptor for the validator's schema. Option set
// references are resolved through the catalog so the remote side receives
// concrete enum bounds; resolution failures propagate as errors.
func (v *Validator) Transport(ctx context.Context) (TransportSchema, error) {
	out := TransportSchema{Version: v.schema.Version}

	for _, rule := range v.rules {
		field := rule.field
		mapping, ok := transportTypes[field.Kind]
		if !ok {
			return TransportSchema{}, fmt.Errorf("validate: no transport type for field type %q", field.Kind)
		}

		tf := TransportField{
			Name:     field.Name,
			Type:     mapping.typ,
			Format:   mapping.format,
			Required: field.Required,
		}
		if spec := field.Validation; spec != nil {
			tf.Min = spec.Min
			tf.Max = spec.Max
			tf.MinLength = spec.MinLength
			tf.MaxLength = spec.MaxLength
			tf.Pattern = spec.Pattern
		}
		if field.Kind.Choice() {
			opts := field.Choice.Options
			if ref := field.Choice.OptionSetRef; ref != "" {
				if v.catalog == nil {
					return TransportSchema{}, fmt.Errorf("validate: field %q references option set %q but no catalog is configured", field.Name, ref)
				}
				resolved, err := v.catalog.ResolveOptions(ctx, ref)
				if err != nil {
					return TransportSchema{}, fmt.Errorf("validate: resolve option set %q for field %q: %w", ref, field.Name, err)
				}
				opts = resolved
			}
			tf.Enum = make([]string, 0, len(opts))
			for _, opt := range opts {
				tf.Enum = append(tf.Enum, opt.Value)
			}
		}

		out.Fields = append(out.Fields, tf)
	}

	return out, nil
}

// AsMap renders the descriptor as plain nested maps, slices, and scalars for
// cross-boundary transmission.
func (t TransportSchema) AsMap() (map[string]any, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("validate: encode transport schema: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("validate: decode transport schema: %w", err)
	}
	return out, nil
}
