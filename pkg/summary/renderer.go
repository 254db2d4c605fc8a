// Package summary renders a read-only recap of a submission: field labels
// and reconciled values, honoring the schema's conditional visibility, for
// proposal and consultation previews sent to clients.
package summary

import (
	"embed"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/visibility"
)

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

const defaultTemplate = "summary"

// Option customises a Renderer.
type Option func(*Renderer)

// WithEngine replaces the default embedded-template engine.
func WithEngine(engine *Engine) Option {
	return func(r *Renderer) { r.engine = engine }
}

// WithTemplate selects a template name other than the default.
func WithTemplate(name string) Option {
	return func(r *Renderer) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			r.template = trimmed
		}
	}
}

// Renderer turns a schema plus a value set into rendered text.
type Renderer struct {
	engine   *Engine
	template string
}

// New constructs a Renderer. With no options it uses the embedded default
// template.
func New(opts ...Option) (*Renderer, error) {
	r := &Renderer{template: defaultTemplate}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(r)
	}

	if r.engine == nil {
		sub, err := fs.Sub(embeddedTemplates, "templates")
		if err != nil {
			return nil, fmt.Errorf("summary: embedded templates: %w", err)
		}
		engine, err := NewEngine(WithFS(sub))
		if err != nil {
			return nil, err
		}
		r.engine = engine
	}
	return r, nil
}

// Render produces the recap for the given schema and values. Hidden fields
// and blank values are omitted; headings carry through as section titles.
func (r *Renderer) Render(title string, s *schema.FormSchema, values schema.ValueSet) (string, error) {
	state := visibility.Evaluate(s, values)

	steps := make([]map[string]any, 0, len(s.Steps))
	for _, step := range s.Steps {
		entries := make([]map[string]any, 0, len(step.Fields))
		for _, field := range step.Fields {
			if field.Kind.Layout() {
				if field.Kind == schema.KindHeading && field.Static != nil {
					entries = append(entries, map[string]any{
						"heading": field.Static.Content,
					})
				}
				continue
			}
			st, ok := state[field.Name]
			if !ok || !st.Visible {
				continue
			}
			value, present := values[field.Name]
			if !present {
				continue
			}
			display := formatValue(field, value)
			if display == "" {
				continue
			}
			entries = append(entries, map[string]any{
				"label": fieldLabel(field),
				"value": display,
			})
		}
		if len(entries) == 0 {
			continue
		}
		steps = append(steps, map[string]any{
			"title":   step.Title,
			"entries": entries,
		})
	}

	return r.engine.RenderTemplate(r.template, map[string]any{
		"title": title,
		"steps": steps,
	})
}

func fieldLabel(field schema.Field) string {
	if field.Label != "" {
		return field.Label
	}
	return field.Name
}

// formatValue prints a coerced value for human consumption. Choice values
// render their labels when the schema carries them inline.
func formatValue(field schema.Field, value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return labelFor(field, v)
	case bool:
		if v {
			return "Yes"
		}
		return "No"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case []string:
		labels := make([]string, 0, len(v))
		for _, item := range v {
			labels = append(labels, labelFor(field, item))
		}
		return strings.Join(labels, ", ")
	default:
		return fmt.Sprint(value)
	}
}

func labelFor(field schema.Field, value string) string {
	if field.Choice == nil {
		return value
	}
	for _, opt := range field.Choice.Options {
		if opt.Value == value {
			return opt.Label
		}
	}
	return value
}
