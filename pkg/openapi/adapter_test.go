package openapi_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-formflow/pkg/openapi"
	"github.com/goliatone/go-formflow/pkg/schema"
)

const petstoreDoc = `{
  "openapi": "3.0.3",
  "info": {"title": "Registrations", "version": "1.0.0"},
  "paths": {
    "/registrations": {
      "post": {
        "operationId": "createRegistration",
        "summary": "Create a registration",
        "requestBody": {
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "required": ["full_name", "email"],
                "properties": {
                  "full_name": {"type": "string", "minLength": 2},
                  "email": {"type": "string", "format": "email"},
                  "attendees": {"type": "integer", "minimum": 1, "maximum": 10},
                  "newsletter": {"type": "boolean"},
                  "ticket_type": {"type": "string", "enum": ["standard", "vip"]},
                  "arrival_date": {"type": "string", "format": "date"}
                }
              }
            }
          }
        },
        "responses": {"201": {"description": "created"}}
      }
    }
  }
}`

func TestImportOperationBuildsSingleStepSchema(t *testing.T) {
	s, err := openapi.ImportOperation(context.Background(), []byte(petstoreDoc), "createRegistration", openapi.ImportOptions{})
	if err != nil {
		t.Fatalf("ImportOperation() = %v", err)
	}

	if len(s.Steps) != 1 {
		t.Fatalf("steps = %d, want 1", len(s.Steps))
	}
	step := s.Steps[0]
	if step.ID != "createRegistration" {
		t.Fatalf("step id = %q", step.ID)
	}
	if step.Title != "Create a registration" {
		t.Fatalf("step title = %q", step.Title)
	}

	byName := make(map[string]schema.Field, len(step.Fields))
	for _, field := range step.Fields {
		byName[field.Name] = field
	}

	if f := byName["full_name"]; f.Kind != schema.KindText || !f.Required || f.Validation == nil || *f.Validation.MinLength != 2 {
		t.Fatalf("full_name = %+v", f)
	}
	if f := byName["email"]; f.Kind != schema.KindEmail || !f.Required {
		t.Fatalf("email = %+v", f)
	}
	if f := byName["attendees"]; f.Kind != schema.KindNumber || f.Validation == nil || *f.Validation.Min != 1 || *f.Validation.Max != 10 {
		t.Fatalf("attendees = %+v", f)
	}
	if f := byName["newsletter"]; f.Kind != schema.KindCheckbox {
		t.Fatalf("newsletter = %+v", f)
	}
	if f := byName["arrival_date"]; f.Kind != schema.KindDate {
		t.Fatalf("arrival_date = %+v", f)
	}

	ticket := byName["ticket_type"]
	if ticket.Kind != schema.KindSelect || ticket.Choice == nil || len(ticket.Choice.Options) != 2 {
		t.Fatalf("ticket_type = %+v", ticket)
	}
	if ticket.Choice.Options[1].Value != "vip" || ticket.Choice.Options[1].Label != "Vip" {
		t.Fatalf("ticket options = %+v", ticket.Choice.Options)
	}
	if ticket.Label != "Ticket Type" {
		t.Fatalf("ticket label = %q", ticket.Label)
	}

	// The imported schema must pass its own structural validation.
	if err := schema.Validate(s); err != nil {
		t.Fatalf("imported schema invalid: %v", err)
	}
}

func TestImportOperationOverrides(t *testing.T) {
	s, err := openapi.ImportOperation(context.Background(), []byte(petstoreDoc), "createRegistration", openapi.ImportOptions{
		StepID:    "register",
		StepTitle: "Register",
	})
	if err != nil {
		t.Fatalf("ImportOperation() = %v", err)
	}
	if s.Steps[0].ID != "register" || s.Steps[0].Title != "Register" {
		t.Fatalf("overrides ignored: %+v", s.Steps[0])
	}
}

func TestImportOperationErrors(t *testing.T) {
	ctx := context.Background()

	if _, err := openapi.ImportOperation(ctx, nil, "createRegistration", openapi.ImportOptions{}); err == nil {
		t.Fatal("empty payload should fail")
	}
	if _, err := openapi.ImportOperation(ctx, []byte(petstoreDoc), "", openapi.ImportOptions{}); err == nil {
		t.Fatal("missing operation id should fail")
	}
	if _, err := openapi.ImportOperation(ctx, []byte(petstoreDoc), "deleteRegistration", openapi.ImportOptions{}); err == nil {
		t.Fatal("unknown operation should fail")
	}
}
