package templatesync

import (
	"github.com/goliatone/go-formflow/pkg/schema"
)

// SchemaConfig pairs a form schema with its non-structural configuration
// (submit behaviour, notification targets, and similar settings). Push and
// rollback always move the two together.
type SchemaConfig struct {
	Schema *schema.FormSchema `json:"schema"`
	Config map[string]any     `json:"config,omitempty"`
}

// Clone deep-copies the pair so undo buffers never share state with live
// instances.
func (sc SchemaConfig) Clone() SchemaConfig {
	return SchemaConfig{
		Schema: sc.Schema.Clone(),
		Config: deepCopyMap(sc.Config),
	}
}

// Template is a centrally-published form definition tenants derive from.
type Template struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Current    SchemaConfig `json:"current"`
	UsageCount int          `json:"usageCount"`
}

// Instance is a tenant-owned form derived from a template. Customized flips
// true the moment a structural edit lands and never silently flips back;
// Previous is a one-slot undo buffer written by push immediately before an
// overwrite.
type Instance struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	Active           bool          `json:"active"`
	DisplayOrder     int           `json:"displayOrder"`
	SourceTemplateID string        `json:"sourceTemplateId,omitempty"`
	Customized       bool          `json:"customized"`
	Version          int           `json:"version"`
	Current          SchemaConfig  `json:"current"`
	Previous         *SchemaConfig `json:"previous,omitempty"`
}

// MetadataPatch updates cosmetic instance attributes. Applying one never
// touches the Customized flag; only structural schema edits do.
type MetadataPatch struct {
	Name         *string
	Active       *bool
	DisplayOrder *int
}

// PushPreview reports what a push would touch, without side effects.
// SkippedCustomized is informational: a customized instance is excluded by
// design, not failed.
type PushPreview struct {
	TemplateID        string `json:"templateId"`
	AffectedCount     int    `json:"affectedCount"`
	SkippedCustomized int    `json:"skippedCustomized"`
}

// InstanceFailure records which instance a push or rollback could not update,
// so partial success stays auditable instead of collapsing into one opaque
// error.
type InstanceFailure struct {
	FormID string `json:"formId"`
	Err    error  `json:"-"`
}

// PushResult reports the outcome of a push across the template's derived set.
type PushResult struct {
	TemplateID        string            `json:"templateId"`
	UpdatedCount      int               `json:"updatedCount"`
	SkippedCustomized int               `json:"skippedCustomized"`
	Failures          []InstanceFailure `json:"failures,omitempty"`
}

// RollbackResult reports the outcome of a rollback. Instances with an empty
// undo buffer are a no-op, not a failure.
type RollbackResult struct {
	TemplateID      string            `json:"templateId"`
	RolledBackCount int               `json:"rolledBackCount"`
	Failures        []InstanceFailure `json:"failures,omitempty"`
}

func deepCopyMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = deepCopyValue(value)
	}
	return out
}

func deepCopyValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return deepCopyMap(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = deepCopyValue(item)
		}
		return out
	default:
		return v
	}
}
