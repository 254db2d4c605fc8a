package reconcile_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/reconcile"
	"github.com/goliatone/go-formflow/pkg/schema"
)

func contactMapping() reconcile.Mapping {
	return reconcile.NewMapping(map[string]string{
		"full_name": "name",
		"email":     "email_address",
		"phone":     "phone_number",
	})
}

func TestToRecordSplitsKnownAndOverflow(t *testing.T) {
	values := schema.ValueSet{
		"full_name":      "Ada Lovelace",
		"email":          "ada@example.com",
		"shirt_size":     "M",
		"dietary_needs":  []string{"vegetarian"},
		"session_token":  "abc",
		"empty_optional": "",
	}

	record := contactMapping().WithExcluded("session_token").ToRecord(values)

	wantKnown := map[string]any{
		"name":          "Ada Lovelace",
		"email_address": "ada@example.com",
	}
	if diff := cmp.Diff(wantKnown, record.Known); diff != "" {
		t.Fatalf("known mismatch (-want +got):\n%s", diff)
	}

	wantOverflow := map[string]any{
		"shirt_size":    "M",
		"dietary_needs": []string{"vegetarian"},
	}
	if diff := cmp.Diff(wantOverflow, record.Overflow); diff != "" {
		t.Fatalf("overflow mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTripPreservesValues(t *testing.T) {
	values := schema.ValueSet{
		"full_name":  "Ada Lovelace",
		"email":      "ada@example.com",
		"phone":      "+1 555 0100",
		"shirt_size": "M",
		"attendees":  3.0,
	}

	m := contactMapping()
	record := m.ToRecord(values)
	back := m.ToValueSet(record.Known, record.Overflow)

	if diff := cmp.Diff(values, back); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestNullableEmptiesWriteNulls(t *testing.T) {
	m := contactMapping().WithNullable("phone")

	record := m.ToRecord(schema.ValueSet{
		"full_name": "Ada",
		"phone":     "",
		"email":     "",
	})

	value, present := record.Known["phone_number"]
	if !present || value != nil {
		t.Fatalf("nullable empty should write an explicit null, got present=%v value=%v", present, value)
	}
	if _, present := record.Known["email_address"]; present {
		t.Fatal("non-nullable empty should be dropped, not nulled")
	}
}

func TestNullableUnmappedFieldIsStillDropped(t *testing.T) {
	m := contactMapping().WithNullable("nickname")
	record := m.ToRecord(schema.ValueSet{"nickname": ""})

	if len(record.Known) != 0 || len(record.Overflow) != 0 {
		t.Fatalf("empty unmapped value should vanish, got %+v", record)
	}
}

func TestIdentityMappingRoutesEverythingToOverflow(t *testing.T) {
	values := schema.ValueSet{"q1": "yes", "q2": []string{"a", "b"}}
	record := reconcile.Identity().ToRecord(values)

	if len(record.Known) != 0 {
		t.Fatalf("identity mapping produced known columns: %v", record.Known)
	}
	if diff := cmp.Diff(map[string]any{"q1": "yes", "q2": []string{"a", "b"}}, record.Overflow); diff != "" {
		t.Fatalf("overflow mismatch (-want +got):\n%s", diff)
	}
}

func TestWithExcludedDoesNotMutateReceiver(t *testing.T) {
	base := contactMapping()
	derived := base.WithExcluded("email")

	record := base.ToRecord(schema.ValueSet{"email": "ada@example.com"})
	if _, ok := record.Known["email_address"]; !ok {
		t.Fatal("base mapping lost a column after WithExcluded on a copy")
	}

	record = derived.ToRecord(schema.ValueSet{"email": "ada@example.com"})
	if len(record.Known) != 0 {
		t.Fatal("derived mapping should exclude email")
	}
}

func TestToValueSetSkipsMissingAndEmptyColumns(t *testing.T) {
	m := contactMapping()
	values := m.ToValueSet(
		map[string]any{"name": "Ada", "email_address": "", "unrelated_column": "x"},
		map[string]any{"notes": "hello", "blank": ""},
	)

	want := schema.ValueSet{"full_name": "Ada", "notes": "hello"}
	if diff := cmp.Diff(want, values); diff != "" {
		t.Fatalf("value set mismatch (-want +got):\n%s", diff)
	}
}
