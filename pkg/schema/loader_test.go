package schema_test

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/schema"
)

const yamlDoc = `
version: 1
steps:
  - id: contact
    title: Contact
    fields:
      - id: f1
        type: text
        name: "  full_name  "
        label: "Full name "
        required: true
      - id: f2
        type: select
        name: plan
        label: Plan
        choice:
          options:
            - {value: basic, label: Basic}
            - {value: pro, label: Pro}
`

const jsonDoc = `{
  "version": 1,
  "steps": [
    {
      "id": "contact",
      "title": "Contact",
      "fields": [
        {"id": "f1", "type": "text", "name": "  full_name  ", "label": "Full name ", "required": true},
        {"id": "f2", "type": "select", "name": "plan", "label": "Plan", "choice": {
          "options": [
            {"value": "basic", "label": "Basic"},
            {"value": "pro", "label": "Pro"}
          ]
        }}
      ]
    }
  ]
}`

func TestParseAcceptsYAMLAndJSONEqually(t *testing.T) {
	fromYAML, err := schema.Parse([]byte(yamlDoc))
	if err != nil {
		t.Fatalf("Parse(yaml) = %v", err)
	}
	fromJSON, err := schema.Parse([]byte(jsonDoc))
	if err != nil {
		t.Fatalf("Parse(json) = %v", err)
	}
	if diff := cmp.Diff(fromYAML, fromJSON); diff != "" {
		t.Fatalf("yaml/json schema mismatch (-yaml +json):\n%s", diff)
	}
}

func TestParseNormalizesNamesAndLabels(t *testing.T) {
	s, err := schema.Parse([]byte(yamlDoc))
	if err != nil {
		t.Fatalf("Parse() = %v", err)
	}
	field := s.Steps[0].Fields[0]
	if field.Name != "full_name" {
		t.Fatalf("field name = %q, want trimmed %q", field.Name, "full_name")
	}
	if field.Label != "Full name" {
		t.Fatalf("field label = %q, want trimmed %q", field.Label, "Full name")
	}
}

func TestParseSanitizesStaticContent(t *testing.T) {
	doc := `
version: 1
steps:
  - id: intro
    fields:
      - id: f1
        type: paragraph
        static:
          content: '<p>Welcome</p><script>alert(1)</script><a href="javascript:x">bad</a>'
      - id: f2
        type: text
        name: name
`
	s, err := schema.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse() = %v", err)
	}
	content := s.Steps[0].Fields[0].Static.Content
	if strings.Contains(content, "<script>") || strings.Contains(content, "javascript:") {
		t.Fatalf("sanitized content still carries active markup: %q", content)
	}
	if !strings.Contains(content, "<p>Welcome</p>") {
		t.Fatalf("sanitized content dropped whitelisted markup: %q", content)
	}
}

func TestParseRejectsInvalidDocuments(t *testing.T) {
	if _, err := schema.Parse(nil); err == nil {
		t.Fatal("Parse(nil) = nil, want error")
	}
	if _, err := schema.Parse([]byte("steps: [")); err == nil {
		t.Fatal("Parse(malformed) = nil, want error")
	}
	if _, err := schema.Parse([]byte("version: 1\nsteps: []\n")); err == nil {
		t.Fatal("Parse(no steps) = nil, want structural error")
	}
}

func TestLoaderReadsFromFS(t *testing.T) {
	files := fstest.MapFS{
		"forms/intake.yaml": &fstest.MapFile{Data: []byte(yamlDoc)},
	}
	loader := schema.NewLoader(schema.LoaderOptions{FileSystem: files})

	s, err := loader.Load(context.Background(), schema.SourceFromFS("forms/intake.yaml"))
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if got := len(s.Steps); got != 1 {
		t.Fatalf("steps = %d, want 1", got)
	}

	if _, err := loader.Load(context.Background(), schema.SourceFromFS("forms/missing.yaml")); err == nil {
		t.Fatal("Load(missing) = nil, want error")
	}
}

func TestLoaderHonorsContextCancellation(t *testing.T) {
	loader := schema.NewLoader(schema.LoaderOptions{FileSystem: fstest.MapFS{}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := loader.Load(ctx, schema.SourceFromFS("forms/intake.yaml")); err == nil {
		t.Fatal("Load(cancelled ctx) = nil, want error")
	}
}
