package schema

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	contentPolicyOnce sync.Once
	contentPolicy     *bluemonday.Policy
)

// Normalize prepares a loaded schema for use: field names and option set
// references are trimmed, and static content is stripped of any markup
// outside a small formatting whitelist. Tenant-authored paragraph content
// crosses trust boundaries, so it never reaches a renderer unsanitized.
func Normalize(s *FormSchema) {
	if s == nil {
		return
	}
	for si := range s.Steps {
		step := &s.Steps[si]
		step.ID = strings.TrimSpace(step.ID)
		step.Title = strings.TrimSpace(step.Title)
		for fi := range step.Fields {
			normalizeField(&step.Fields[fi])
		}
	}
}

func normalizeField(field *Field) {
	field.Name = strings.TrimSpace(field.Name)
	field.Label = strings.TrimSpace(field.Label)
	if field.Choice != nil {
		field.Choice.OptionSetRef = strings.TrimSpace(field.Choice.OptionSetRef)
	}
	if field.Static != nil {
		field.Static.Content = sanitizeContent(field.Static.Content)
	}
	for ri := range field.Conditional {
		field.Conditional[ri].FieldRef = strings.TrimSpace(field.Conditional[ri].FieldRef)
	}
}

func sanitizeContent(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(contentSanitizer().Sanitize(trimmed))
}

func contentSanitizer() *bluemonday.Policy {
	contentPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements(
			"p", "br", "strong", "em", "b", "i", "u", "span",
			"ul", "ol", "li", "h1", "h2", "h3", "h4", "blockquote",
		)
		policy.AllowAttrs("class").OnElements("span", "p")
		policy.AllowAttrs("href", "title").OnElements("a")
		policy.AllowElements("a")
		policy.AllowURLSchemes("http", "https", "mailto")
		policy.RequireNoFollowOnLinks(true)
		contentPolicy = policy
	})
	return contentPolicy
}
