// Package reconcile splits submitted form values between a fixed relational
// shape and an open-ended overflow map, and reconstructs the original value
// set for editing. It performs no coercion: values pass through exactly as
// the validation compiler produced them.
package reconcile

import (
	"strings"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// Record is the reconciled form of a submission. Known holds values keyed by
// storage column name; Overflow holds tenant-added fields keyed by their form
// field name.
type Record struct {
	Known    map[string]any `json:"known"`
	Overflow map[string]any `json:"overflow"`
}

// Mapping is the externally-supplied table that drives reconciliation for
// one domain: form field name to storage column, the collaborator-owned
// names never round-tripped through forms, and the columns an empty value
// may explicitly null on update.
type Mapping struct {
	columns  map[string]string
	excluded map[string]struct{}
	nullable map[string]struct{}
}

// NewMapping builds a Mapping from a field-name-to-column table.
func NewMapping(columns map[string]string) Mapping {
	m := Mapping{columns: make(map[string]string, len(columns))}
	for name, column := range columns {
		m.columns[name] = column
	}
	return m
}

// Identity returns a mapping with no known columns; every value lands in
// overflow. Questionnaire-style domains store everything this way.
func Identity() Mapping {
	return Mapping{}
}

// WithExcluded returns a copy of the mapping that drops the named fields
// entirely during ToRecord.
func (m Mapping) WithExcluded(names ...string) Mapping {
	out := m
	out.excluded = cloneSet(m.excluded, names)
	return out
}

// WithNullable returns a copy of the mapping where an explicitly empty value
// for the named fields writes a null into the known column instead of being
// dropped. Used on updates to clear a previously stored value.
func (m Mapping) WithNullable(names ...string) Mapping {
	out := m
	out.nullable = cloneSet(m.nullable, names)
	return out
}

// ToRecord buckets every entry of the value set: excluded names are skipped,
// empty values are dropped (or nulled when the field is nullable and mapped),
// mapped names land in Known under their column, and everything else lands in
// Overflow under its own name. No entry is lost any other way.
func (m Mapping) ToRecord(values schema.ValueSet) Record {
	record := Record{
		Known:    make(map[string]any),
		Overflow: make(map[string]any),
	}

	for name, value := range values {
		if _, skip := m.excluded[name]; skip {
			continue
		}
		column, mapped := m.columns[name]
		if isEmpty(value) {
			if _, nullable := m.nullable[name]; nullable && mapped {
				record.Known[column] = nil
			}
			continue
		}
		if mapped {
			record.Known[column] = value
			continue
		}
		record.Overflow[name] = value
	}

	return record
}

// ToValueSet is the inverse of ToRecord: known columns are read back through
// the mapping onto their form field names, then overflow entries merge in
// directly (overflow keys already are form field names).
func (m Mapping) ToValueSet(known, overflow map[string]any) schema.ValueSet {
	values := make(schema.ValueSet)

	for name, column := range m.columns {
		value, ok := known[column]
		if !ok || isEmpty(value) {
			continue
		}
		values[name] = value
	}
	for name, value := range overflow {
		if isEmpty(value) {
			continue
		}
		values[name] = value
	}

	return values
}

func cloneSet(base map[string]struct{}, extra []string) map[string]struct{} {
	out := make(map[string]struct{}, len(base)+len(extra))
	for name := range base {
		out[name] = struct{}{}
	}
	for _, name := range extra {
		if name == "" {
			continue
		}
		out[name] = struct{}{}
	}
	return out
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	default:
		return false
	}
}
