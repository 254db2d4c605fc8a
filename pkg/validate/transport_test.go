package validate_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/validate"
)

func TestTransportDescribesEveryInputField(t *testing.T) {
	v, err := validate.Compile(intakeSchema(), validate.WithCatalog(channelCatalog()))
	if err != nil {
		t.Fatalf("Compile() = %v", err)
	}

	got, err := v.Transport(context.Background())
	if err != nil {
		t.Fatalf("Transport() = %v", err)
	}

	minLen := 2
	maxAge := 120.0
	want := validate.TransportSchema{
		Version: 1,
		Fields: []validate.TransportField{
			{Name: "full_name", Type: "string", Required: true, MinLength: &minLen},
			{Name: "email", Type: "string", Format: "email", Required: true},
			{Name: "age", Type: "number", Max: &maxAge},
			{Name: "plan", Type: "string", Enum: []string{"basic", "pro"}},
			{Name: "channels", Type: "array", Enum: []string{"email", "sms"}},
			{Name: "visit_date", Type: "string", Format: "date"},
			{Name: "score", Type: "integer", Format: "rating"},
			{Name: "subscribe", Type: "boolean"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("transport schema mismatch (-want +got):\n%s", diff)
	}
}

func TestTransportRequiresCatalogForReferences(t *testing.T) {
	v, err := validate.Compile(intakeSchema())
	if err != nil {
		t.Fatalf("Compile() = %v", err)
	}
	if _, err := v.Transport(context.Background()); err == nil {
		t.Fatal("Transport() without a catalog should fail on optionSetRef")
	}
}

func TestTransportAsMapIsPlainData(t *testing.T) {
	s := &schema.FormSchema{
		Version: 3,
		Steps: []schema.Step{{
			ID: "s",
			Fields: []schema.Field{
				{ID: "f1", Kind: schema.KindEmail, Name: "email", Required: true},
			},
		}},
	}
	v, err := validate.Compile(s)
	if err != nil {
		t.Fatalf("Compile() = %v", err)
	}
	ts, err := v.Transport(context.Background())
	if err != nil {
		t.Fatalf("Transport() = %v", err)
	}

	m, err := ts.AsMap()
	if err != nil {
		t.Fatalf("AsMap() = %v", err)
	}
	if m["version"] != float64(3) {
		t.Fatalf("version = %v, want 3", m["version"])
	}
	fields, ok := m["fields"].([]any)
	if !ok || len(fields) != 1 {
		t.Fatalf("fields = %v, want one entry", m["fields"])
	}
	first, ok := fields[0].(map[string]any)
	if !ok {
		t.Fatalf("field entry = %T, want map", fields[0])
	}
	if first["format"] != "email" || first["required"] != true {
		t.Fatalf("field entry = %v", first)
	}
}
