package schema_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-formflow/pkg/schema"
)

func validSchema() *schema.FormSchema {
	return &schema.FormSchema{
		Version: 1,
		Steps: []schema.Step{
			{
				ID:    "contact",
				Title: "Contact",
				Fields: []schema.Field{
					{ID: "f1", Kind: schema.KindHeading, Static: &schema.StaticAttrs{Content: "About you", Level: 2}},
					{ID: "f2", Kind: schema.KindText, Name: "full_name", Label: "Full name", Required: true},
					{ID: "f3", Kind: schema.KindEmail, Name: "email", Label: "Email", Required: true},
					{ID: "f4", Kind: schema.KindSelect, Name: "country", Label: "Country", Choice: &schema.ChoiceAttrs{
						Options: []schema.Option{{Value: "us", Label: "United States"}, {Value: "de", Label: "Germany"}},
					}},
				},
			},
			{
				ID:    "details",
				Title: "Details",
				Fields: []schema.Field{
					{ID: "f5", Kind: schema.KindNumber, Name: "party_size", Label: "Party size"},
					{ID: "f6", Kind: schema.KindTextarea, Name: "notes", Label: "Notes", Conditional: []schema.ConditionalRule{
						{FieldRef: "party_size", Operator: schema.OpGreaterThan, Value: 4, Action: schema.ActionShow},
					}},
				},
			},
		},
	}
}

func TestValidateAcceptsWellFormedSchema(t *testing.T) {
	if err := schema.Validate(validSchema()); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidateRejectsEmptySchema(t *testing.T) {
	err := schema.Validate(&schema.FormSchema{Version: 1})
	assertIssue(t, err, "schema must declare at least one step")
}

func TestValidateRejectsDuplicateFieldNames(t *testing.T) {
	s := validSchema()
	s.Steps[1].Fields = append(s.Steps[1].Fields, schema.Field{ID: "dup", Kind: schema.KindText, Name: "email"})
	assertIssue(t, schema.Validate(s), `duplicate field name "email"`)
}

func TestValidateRejectsDuplicateStepIDs(t *testing.T) {
	s := validSchema()
	s.Steps[1].ID = "contact"
	assertIssue(t, schema.Validate(s), `duplicate step id "contact"`)
}

func TestValidateRejectsLayoutFieldWithInputAttributes(t *testing.T) {
	s := validSchema()
	s.Steps[0].Fields[0].Name = "about"
	s.Steps[0].Fields[0].Required = true
	err := schema.Validate(s)
	assertIssue(t, err, `layout field "heading" must not carry a name`)
	assertIssue(t, err, `layout field "heading" cannot be required`)
}

func TestValidateRejectsOptionsOnNonChoiceField(t *testing.T) {
	s := validSchema()
	s.Steps[0].Fields[1].Choice = &schema.ChoiceAttrs{Options: []schema.Option{{Value: "x", Label: "X"}}}
	assertIssue(t, schema.Validate(s), `text field cannot carry options`)
}

func TestValidateRequiresExactlyOneOptionSource(t *testing.T) {
	s := validSchema()
	s.Steps[0].Fields[3].Choice = &schema.ChoiceAttrs{
		Options:      []schema.Option{{Value: "us", Label: "United States"}},
		OptionSetRef: "countries",
	}
	assertIssue(t, schema.Validate(s), "options and optionSetRef are mutually exclusive")

	s.Steps[0].Fields[3].Choice = &schema.ChoiceAttrs{}
	assertIssue(t, schema.Validate(s), "select field requires options or an optionSetRef")
}

func TestValidateRejectsUnknownKindsOperatorsAndActions(t *testing.T) {
	s := validSchema()
	s.Steps[0].Fields[1].Kind = "slider"
	assertIssue(t, schema.Validate(s), `unknown field type "slider"`)

	s = validSchema()
	s.Steps[1].Fields[1].Conditional[0].Operator = "matches"
	s.Steps[1].Fields[1].Conditional[0].Action = "flash"
	err := schema.Validate(s)
	assertIssue(t, err, `unknown operator "matches"`)
	assertIssue(t, err, `unknown action "flash"`)
}

func TestValidateRejectsDanglingAndSelfReferences(t *testing.T) {
	s := validSchema()
	s.Steps[1].Fields[1].Conditional[0].FieldRef = "missing"
	assertIssue(t, schema.Validate(s), `fieldRef "missing" does not name an input field`)

	s = validSchema()
	s.Steps[1].Fields[1].Conditional[0].FieldRef = "notes"
	assertIssue(t, schema.Validate(s), "conditional rule cannot reference its own field")
}

func TestValidateRejectsConditionalReferenceCycles(t *testing.T) {
	s := validSchema()
	s.Steps[1].Fields[0].Conditional = []schema.ConditionalRule{
		{FieldRef: "notes", Operator: schema.OpEquals, Value: "x", Action: schema.ActionShow},
	}
	err := schema.Validate(s)
	assertIssue(t, err, "conditional reference cycle")

	var invalid *schema.InvalidError
	if !errors.As(err, &invalid) {
		t.Fatalf("Validate() error type = %T, want *InvalidError", err)
	}
	found := false
	for _, issue := range invalid.Issues {
		if strings.Contains(issue.Message, "->") {
			found = true
		}
	}
	if !found {
		t.Fatalf("cycle issue should spell out the path, got %v", invalid.Issues)
	}
}

func TestValidateRejectsInvertedBounds(t *testing.T) {
	s := validSchema()
	minLen, maxLen := 10, 2
	s.Steps[0].Fields[1].Validation = &schema.Validation{MinLength: &minLen, MaxLength: &maxLen}
	assertIssue(t, schema.Validate(s), "minLength exceeds maxLength")

	s = validSchema()
	low, high := 9.0, 1.0
	s.Steps[1].Fields[0].Validation = &schema.Validation{Min: &low, Max: &high}
	assertIssue(t, schema.Validate(s), "min exceeds max")
}

func TestCloneIsDeep(t *testing.T) {
	s := validSchema()
	copied := s.Clone()

	copied.Steps[0].Fields[3].Choice.Options[0].Label = "changed"
	copied.Steps[1].Fields[1].Conditional[0].FieldRef = "changed"

	if s.Steps[0].Fields[3].Choice.Options[0].Label != "United States" {
		t.Fatal("Clone() shares option slices with the original")
	}
	if s.Steps[1].Fields[1].Conditional[0].FieldRef != "party_size" {
		t.Fatal("Clone() shares conditional slices with the original")
	}
}

func TestInputFieldsSkipsLayoutKinds(t *testing.T) {
	fields := validSchema().InputFields()
	for _, field := range fields {
		if field.Kind.Layout() {
			t.Fatalf("InputFields() returned layout field %q", field.Kind)
		}
	}
	if len(fields) != 5 {
		t.Fatalf("InputFields() len = %d, want 5", len(fields))
	}
}

func assertIssue(t *testing.T, err error, fragment string) {
	t.Helper()
	if err == nil {
		t.Fatalf("Validate() = nil, want issue containing %q", fragment)
	}
	var invalid *schema.InvalidError
	if !errors.As(err, &invalid) {
		t.Fatalf("Validate() error type = %T, want *InvalidError", err)
	}
	for _, issue := range invalid.Issues {
		if strings.Contains(issue.Message, fragment) {
			return
		}
	}
	t.Fatalf("issues %v do not contain %q", invalid.Issues, fragment)
}
