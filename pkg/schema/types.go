package schema

// Kind is the closed enumeration of field kinds a form definition may use.
type Kind string

const (
	KindText        Kind = "text"
	KindTextarea    Kind = "textarea"
	KindEmail       Kind = "email"
	KindPhone       Kind = "phone"
	KindNumber      Kind = "number"
	KindSelect      Kind = "select"
	KindMultiSelect Kind = "multiselect"
	KindRadio       Kind = "radio"
	KindCheckbox    Kind = "checkbox"
	KindDate        Kind = "date"
	KindFile        Kind = "file"
	KindSignature   Kind = "signature"
	KindRating      Kind = "rating"
	KindHeading     Kind = "heading"
	KindParagraph   Kind = "paragraph"
	KindDivider     Kind = "divider"
)

var kinds = map[Kind]struct{}{
	KindText: {}, KindTextarea: {}, KindEmail: {}, KindPhone: {},
	KindNumber: {}, KindSelect: {}, KindMultiSelect: {}, KindRadio: {},
	KindCheckbox: {}, KindDate: {}, KindFile: {}, KindSignature: {},
	KindRating: {}, KindHeading: {}, KindParagraph: {}, KindDivider: {},
}

// Valid reports whether the kind belongs to the closed set.
func (k Kind) Valid() bool {
	_, ok := kinds[k]
	return ok
}

// Layout reports whether the kind is a non-input layout marker. Layout fields
// carry no name and never participate in validation or reconciliation.
func (k Kind) Layout() bool {
	return k == KindHeading || k == KindParagraph || k == KindDivider
}

// Choice reports whether the kind selects from an option set.
func (k Kind) Choice() bool {
	return k == KindSelect || k == KindMultiSelect || k == KindRadio
}

// Operator compares a referenced field's live value against a rule value.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "notEquals"
	OpContains    Operator = "contains"
	OpGreaterThan Operator = "greaterThan"
	OpLessThan    Operator = "lessThan"
)

// Valid reports whether the operator is one of the supported comparisons.
func (o Operator) Valid() bool {
	switch o {
	case OpEquals, OpNotEquals, OpContains, OpGreaterThan, OpLessThan:
		return true
	}
	return false
}

// RuleAction is the effect a passing conditional rule has on its field.
type RuleAction string

const (
	ActionShow    RuleAction = "show"
	ActionHide    RuleAction = "hide"
	ActionRequire RuleAction = "require"
)

// Valid reports whether the action is one of show, hide, require.
func (a RuleAction) Valid() bool {
	return a == ActionShow || a == ActionHide || a == ActionRequire
}

// ConditionalRule gates a field's visibility or requiredness on another
// field's current value. FieldRef names the observed field; the rule lives on
// the affected field.
type ConditionalRule struct {
	FieldRef string     `json:"fieldRef" yaml:"fieldRef"`
	Operator Operator   `json:"operator" yaml:"operator"`
	Value    any        `json:"value" yaml:"value"`
	Action   RuleAction `json:"action" yaml:"action"`
}

// Option is a single selectable value/label pair.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// ChoiceAttrs holds the attributes valid only on choice kinds. Exactly one of
// Options or OptionSetRef is set: Options embeds the list inline while
// OptionSetRef points at a catalog entry resolved at validate/render time.
type ChoiceAttrs struct {
	Options      []Option `json:"options,omitempty" yaml:"options,omitempty"`
	OptionSetRef string   `json:"optionSetRef,omitempty" yaml:"optionSetRef,omitempty"`
}

// StaticAttrs holds the attributes valid only on heading/paragraph markers.
// Paragraph content may carry limited HTML; it is sanitized during Normalize.
type StaticAttrs struct {
	Content string `json:"content,omitempty" yaml:"content,omitempty"`
	Level   int    `json:"level,omitempty" yaml:"level,omitempty"`
}

// Validation carries the optional per-field constraints layered on top of a
// kind's base rule. Pointers distinguish "absent" from zero values.
type Validation struct {
	Min       *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max       *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	MinLength *int     `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Pattern   string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
}

// LayoutHint carries rendering hints that never affect validation.
type LayoutHint struct {
	Width string `json:"width,omitempty" yaml:"width,omitempty"`
}

// Field models a single entry inside a step. Kind-scoped attributes live in
// dedicated sub-structs (Choice, Static) so a text field carrying options is
// a load-time structural error rather than silently ignored data.
type Field struct {
	ID          string            `json:"id" yaml:"id"`
	Kind        Kind              `json:"type" yaml:"type"`
	Name        string            `json:"name,omitempty" yaml:"name,omitempty"`
	Label       string            `json:"label,omitempty" yaml:"label,omitempty"`
	Placeholder string            `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Required    bool              `json:"required,omitempty" yaml:"required,omitempty"`
	Validation  *Validation       `json:"validation,omitempty" yaml:"validation,omitempty"`
	Choice      *ChoiceAttrs      `json:"choice,omitempty" yaml:"choice,omitempty"`
	Static      *StaticAttrs      `json:"static,omitempty" yaml:"static,omitempty"`
	Conditional []ConditionalRule `json:"conditional,omitempty" yaml:"conditional,omitempty"`
	Layout      *LayoutHint       `json:"layout,omitempty" yaml:"layout,omitempty"`
}

// Step groups fields under one wizard page. A step may hold only static
// content; it does not need input fields.
type Step struct {
	ID     string  `json:"id" yaml:"id"`
	Title  string  `json:"title,omitempty" yaml:"title,omitempty"`
	Fields []Field `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// FormSchema is a versioned form definition. Published schemas are treated as
// immutable; edits produce a new version.
type FormSchema struct {
	Version int    `json:"version" yaml:"version"`
	Steps   []Step `json:"steps" yaml:"steps"`
}

// InputFields returns every non-layout field across all steps in document
// order. Field names are unique schema-wide, so the result is usable as a
// lookup basis for validation and reconciliation.
func (s *FormSchema) InputFields() []Field {
	if s == nil {
		return nil
	}
	var out []Field
	for _, step := range s.Steps {
		for _, field := range step.Fields {
			if field.Kind.Layout() {
				continue
			}
			out = append(out, field)
		}
	}
	return out
}

// FieldByName finds an input field by its schema-wide unique name.
func (s *FormSchema) FieldByName(name string) (Field, bool) {
	if s == nil || name == "" {
		return Field{}, false
	}
	for _, step := range s.Steps {
		for _, field := range step.Fields {
			if !field.Kind.Layout() && field.Name == name {
				return field, true
			}
		}
	}
	return Field{}, false
}

// Clone returns a deep copy of the schema. Sync pushes snapshot schemas into
// undo buffers, so shared slices would leak mutations across instances.
func (s *FormSchema) Clone() *FormSchema {
	if s == nil {
		return nil
	}
	out := &FormSchema{Version: s.Version, Steps: make([]Step, len(s.Steps))}
	for i, step := range s.Steps {
		copied := Step{ID: step.ID, Title: step.Title}
		if len(step.Fields) > 0 {
			copied.Fields = make([]Field, len(step.Fields))
			for j, field := range step.Fields {
				copied.Fields[j] = field.clone()
			}
		}
		out.Steps[i] = copied
	}
	return out
}

func (f Field) clone() Field {
	out := f
	if f.Validation != nil {
		v := *f.Validation
		if f.Validation.Min != nil {
			m := *f.Validation.Min
			v.Min = &m
		}
		if f.Validation.Max != nil {
			m := *f.Validation.Max
			v.Max = &m
		}
		if f.Validation.MinLength != nil {
			m := *f.Validation.MinLength
			v.MinLength = &m
		}
		if f.Validation.MaxLength != nil {
			m := *f.Validation.MaxLength
			v.MaxLength = &m
		}
		out.Validation = &v
	}
	if f.Choice != nil {
		c := ChoiceAttrs{OptionSetRef: f.Choice.OptionSetRef}
		if len(f.Choice.Options) > 0 {
			c.Options = append([]Option(nil), f.Choice.Options...)
		}
		out.Choice = &c
	}
	if f.Static != nil {
		st := *f.Static
		out.Static = &st
	}
	if len(f.Conditional) > 0 {
		out.Conditional = append([]ConditionalRule(nil), f.Conditional...)
	}
	if f.Layout != nil {
		l := *f.Layout
		out.Layout = &l
	}
	return out
}

// ValueSet is the transient mapping of field name to current value held
// during a fill session. It is created empty or from reconstructed record
// data and discarded when the session ends.
type ValueSet map[string]any

// Clone returns a shallow copy; values themselves are treated as immutable
// once set.
func (v ValueSet) Clone() ValueSet {
	if v == nil {
		return nil
	}
	out := make(ValueSet, len(v))
	for key, value := range v {
		out[key] = value
	}
	return out
}
