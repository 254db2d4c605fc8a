package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-formflow/pkg/options"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/wizard"
)

// FillerOption customizes a Filler.
type FillerOption func(*Filler)

// WithDriver replaces the default survey-backed prompt driver.
func WithDriver(d PromptDriver) FillerOption {
	return func(f *Filler) {
		if d != nil {
			f.driver = d
		}
	}
}

// WithOptionCatalog supplies the catalog used to resolve shared option sets.
func WithOptionCatalog(c options.Catalog) FillerOption {
	return func(f *Filler) { f.catalog = c }
}

// Filler walks a wizard controller step by step, prompting for each visible
// field and replaying a step when validation rejects it.
type Filler struct {
	driver  PromptDriver
	catalog options.Catalog
}

// NewFiller constructs a Filler with the survey driver by default.
func NewFiller(opts ...FillerOption) *Filler {
	f := &Filler{driver: NewSurveyDriver()}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Run drives the controller to submission and returns the collected values.
// Aborting a prompt returns ErrAborted with whatever was already captured
// left in the controller.
func (f *Filler) Run(ctx context.Context, ctrl *wizard.Controller) (schema.ValueSet, error) {
	if ctrl == nil {
		return nil, errors.New("tui: controller is required")
	}

	for !ctrl.Submitted() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		step := ctrl.CurrentStep()
		header := fmt.Sprintf("── %s (step %d of %d)", step.Title, ctrl.StepIndex()+1, ctrl.StepCount())
		if err := f.driver.Info(ctx, header); err != nil {
			return nil, err
		}
		f.showStatics(ctx, step)

		for _, field := range ctrl.VisibleFields() {
			value, err := f.promptField(ctx, field, ctrl.Values()[field.Name])
			if err != nil {
				return nil, err
			}
			if err := ctrl.SetValue(field.Name, value); err != nil {
				return nil, err
			}
		}

		result, err := ctrl.Next(ctx)
		if err != nil {
			return nil, err
		}
		if len(result.Errors) > 0 {
			for _, fieldErr := range result.Errors {
				_ = f.driver.Info(ctx, fmt.Sprintf("✗ %s %s", fieldErr.Field, fieldErr.Message))
			}
			continue
		}
	}

	return ctrl.Values(), nil
}

func (f *Filler) showStatics(ctx context.Context, step schema.Step) {
	for _, field := range step.Fields {
		if !field.Kind.Layout() || field.Static == nil {
			continue
		}
		content := strings.TrimSpace(field.Static.Content)
		if content != "" {
			_ = f.driver.Info(ctx, content)
		}
	}
}

func (f *Filler) promptField(ctx context.Context, field schema.Field, current any) (any, error) {
	label := field.Label
	if label == "" {
		label = field.Name
	}
	help := field.Placeholder

	switch field.Kind {
	case schema.KindCheckbox:
		def, _ := current.(bool)
		return f.driver.Confirm(ctx, ConfirmConfig{Message: label, Default: def, Help: help})
	case schema.KindSelect, schema.KindRadio:
		return f.promptChoice(ctx, field, label, help, current)
	case schema.KindMultiSelect:
		return f.promptMultiChoice(ctx, field, label, help, current)
	case schema.KindTextarea:
		return f.driver.TextArea(ctx, InputConfig{Message: label, Default: toString(current), Help: help})
	case schema.KindNumber, schema.KindRating:
		return f.driver.Input(ctx, InputConfig{Message: label, Default: toString(current), Help: help})
	case schema.KindDate:
		if help == "" {
			help = "YYYY-MM-DD"
		}
		return f.driver.Input(ctx, InputConfig{Message: label, Default: toString(current), Help: help})
	default:
		return f.driver.Input(ctx, InputConfig{Message: label, Default: toString(current), Help: help})
	}
}

func (f *Filler) promptChoice(ctx context.Context, field schema.Field, label, help string, current any) (any, error) {
	opts, err := f.fieldOptions(ctx, field)
	if err != nil {
		return nil, err
	}
	labels := make([]string, len(opts))
	defaultIndex := -1
	for i, opt := range opts {
		labels[i] = opt.Label
		if opt.Value == toString(current) {
			defaultIndex = i
		}
	}
	idx, err := f.driver.Select(ctx, SelectConfig{Message: label, Options: labels, DefaultIndex: defaultIndex, Help: help})
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(opts) {
		return "", nil
	}
	return opts[idx].Value, nil
}

func (f *Filler) promptMultiChoice(ctx context.Context, field schema.Field, label, help string, current any) (any, error) {
	opts, err := f.fieldOptions(ctx, field)
	if err != nil {
		return nil, err
	}
	labels := make([]string, len(opts))
	for i, opt := range opts {
		labels[i] = opt.Label
	}
	indices, err := f.driver.MultiSelect(ctx, SelectConfig{Message: label, Options: labels, Help: help})
	if err != nil {
		return nil, err
	}
	values := make([]string, 0, len(indices))
	for _, idx := range indices {
		if idx >= 0 && idx < len(opts) {
			values = append(values, opts[idx].Value)
		}
	}
	return values, nil
}

func (f *Filler) fieldOptions(ctx context.Context, field schema.Field) ([]schema.Option, error) {
	if field.Choice == nil {
		return nil, fmt.Errorf("tui: field %q has no options", field.Name)
	}
	if len(field.Choice.Options) > 0 {
		return field.Choice.Options, nil
	}
	if field.Choice.OptionSetRef == "" {
		return nil, fmt.Errorf("tui: field %q has no options", field.Name)
	}
	if f.catalog == nil {
		return nil, fmt.Errorf("tui: field %q references option set %q but no catalog is configured", field.Name, field.Choice.OptionSetRef)
	}
	opts, err := f.catalog.ResolveOptions(ctx, field.Choice.OptionSetRef)
	if err != nil {
		return nil, fmt.Errorf("tui: resolve options for %q: %w", field.Name, err)
	}
	return opts, nil
}

func toString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
