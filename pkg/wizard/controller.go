// Package wizard drives multi-step traversal of a form: it gates forward
// navigation on validation of the currently visible fields, invokes the
// step-persistence collaborator on each transition, and tracks the live
// value set for the session.
package wizard

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/options"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/validate"
	"github.com/goliatone/go-formflow/pkg/visibility"
)

// Direction tells the persistence collaborator which way the user moved.
type Direction string

const (
	DirectionNext Direction = "next"
	DirectionPrev Direction = "prev"
)

var (
	// ErrSubmitted rejects navigation on a completed session.
	ErrSubmitted = errors.New("wizard: session already submitted")
	// ErrAtFirstStep rejects backward navigation from step zero.
	ErrAtFirstStep = errors.New("wizard: already at the first step")
	// ErrReadOnly rejects mutation on a read-only session.
	ErrReadOnly = errors.New("wizard: session is read-only")
)

// ProgressSaver persists step progress. It may block; its failure semantics
// differ by direction — a failed save blocks forward navigation but never
// traps the user on backward navigation.
type ProgressSaver interface {
	SaveStepProgress(ctx context.Context, formID string, direction Direction, stepIndex int, values schema.ValueSet) error
}

// SaverFunc adapts a function into a ProgressSaver.
type SaverFunc func(ctx context.Context, formID string, direction Direction, stepIndex int, values schema.ValueSet) error

// SaveStepProgress delegates to the underlying function.
func (fn SaverFunc) SaveStepProgress(ctx context.Context, formID string, direction Direction, stepIndex int, values schema.ValueSet) error {
	return fn(ctx, formID, direction, stepIndex, values)
}

// Option customises a Controller.
type Option func(*Controller)

// WithSaver attaches the step-persistence collaborator.
func WithSaver(saver ProgressSaver) Option {
	return func(c *Controller) { c.saver = saver }
}

// WithLogger attaches a structured logger for non-blocking failures.
func WithLogger(log *zap.Logger) Option {
	return func(c *Controller) {
		if log != nil {
			c.log = log
		}
	}
}

// WithInitialValues seeds the session, typically from a reconstructed record
// when editing an existing submission.
func WithInitialValues(values schema.ValueSet) Option {
	return func(c *Controller) { c.values = values.Clone() }
}

// WithCatalog supplies the option catalog forwarded to the validation
// compiler.
func WithCatalog(catalog options.Catalog) Option {
	return func(c *Controller) { c.catalog = catalog }
}

// ReadOnly puts the session in review mode: transitions become pure view
// navigation with no validation and no persistence, and every field reports
// disabled. Used to re-render historical submissions.
func ReadOnly() Option {
	return func(c *Controller) { c.readOnly = true }
}

// StepResult reports the outcome of one transition attempt.
type StepResult struct {
	// StepIndex is the controller's position after the attempt.
	StepIndex int
	// Advanced reports whether the position changed.
	Advanced bool
	// Submitted is set when a final-step Next completed the session.
	Submitted bool
	// Errors holds per-field validation failures that blocked a Next.
	Errors []validate.FieldError
	// SaveErr surfaces a persistence failure that did not block the move;
	// only backward navigation populates it.
	SaveErr error
}

// Controller walks a session through the schema's steps.
type Controller struct {
	formID    string
	schema    *schema.FormSchema
	validator *validate.Validator
	catalog   options.Catalog
	values    schema.ValueSet
	step      int
	submitted bool
	readOnly  bool
	saver     ProgressSaver
	log       *zap.Logger
}

// New compiles the schema and opens a session at the first step. Compilation
// failure means the schema is structurally invalid and must be fixed at its
// source.
func New(formID string, s *schema.FormSchema, opts ...Option) (*Controller, error) {
	c := &Controller{
		formID: formID,
		schema: s,
		values: make(schema.ValueSet),
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(c)
	}

	validator, err := validate.Compile(s, validate.WithCatalog(c.catalog))
	if err != nil {
		return nil, err
	}
	c.validator = validator
	return c, nil
}

// StepIndex returns the current position.
func (c *Controller) StepIndex() int { return c.step }

// StepCount returns the number of steps in the schema.
func (c *Controller) StepCount() int { return len(c.schema.Steps) }

// Submitted reports whether the session reached its terminal state.
func (c *Controller) Submitted() bool { return c.submitted }

// CurrentStep returns the step the controller is positioned at.
func (c *Controller) CurrentStep() schema.Step { return c.schema.Steps[c.step] }

// Values returns a copy of the live value set.
func (c *Controller) Values() schema.ValueSet { return c.values.Clone() }

// SetValue records a field's current value. Unknown names are rejected so
// typos surface immediately instead of silently vanishing at reconciliation.
func (c *Controller) SetValue(name string, value any) error {
	if c.readOnly {
		return ErrReadOnly
	}
	if c.submitted {
		return ErrSubmitted
	}
	if _, ok := c.schema.FieldByName(name); !ok {
		return fmt.Errorf("wizard: unknown field %q", name)
	}
	c.values[name] = value
	return nil
}

// SetValues records several fields at once.
func (c *Controller) SetValues(values schema.ValueSet) error {
	for name, value := range values {
		if err := c.SetValue(name, value); err != nil {
			return err
		}
	}
	return nil
}

// State evaluates the effective field states for the current values. In
// read-only mode every field additionally reports disabled.
func (c *Controller) State() visibility.State {
	state := visibility.Evaluate(c.schema, c.values)
	if c.readOnly {
		for name, st := range state {
			st.Disabled = true
			state[name] = st
		}
	}
	return state
}

// VisibleFields returns the current step's visible input fields.
func (c *Controller) VisibleFields() []schema.Field {
	return visibility.VisibleStepFields(c.schema, c.step, c.State())
}

// ClearHidden drops the values of currently hidden fields. The evaluator
// never clears them itself; discarding is an explicit caller decision.
func (c *Controller) ClearHidden() {
	state := visibility.Evaluate(c.schema, c.values)
	for _, name := range visibility.HiddenNames(state) {
		delete(c.values, name)
	}
}

// Next validates the visible fields of the current step and, when they pass
// and progress persists, advances — from the last step into the terminal
// submitted state. Validation failures and persistence failures both leave
// the controller in place; the former return as data, the latter as an
// error carrying direction and step context.
func (c *Controller) Next(ctx context.Context) (StepResult, error) {
	if c.submitted {
		return StepResult{StepIndex: c.step}, ErrSubmitted
	}
	if c.readOnly {
		// Review mode never enters the terminal state; the last step clamps.
		if c.step == len(c.schema.Steps)-1 {
			return StepResult{StepIndex: c.step}, nil
		}
		c.step++
		return StepResult{StepIndex: c.step, Advanced: true}, nil
	}

	state := visibility.Evaluate(c.schema, c.values)
	fields := visibility.VisibleStepFields(c.schema, c.step, state)
	names := make([]string, 0, len(fields))
	required := make(map[string]bool, len(fields))
	for _, field := range fields {
		names = append(names, field.Name)
		required[field.Name] = state[field.Name].Required
	}

	result, err := c.validator.ParseSelection(ctx, c.values, validate.Selection{Names: names, Required: required})
	if err != nil {
		return StepResult{StepIndex: c.step}, err
	}
	if !result.OK {
		return StepResult{StepIndex: c.step, Errors: result.Errors}, nil
	}
	for name, value := range result.Values {
		c.values[name] = value
	}

	if c.saver != nil {
		if err := c.saver.SaveStepProgress(ctx, c.formID, DirectionNext, c.step, c.values.Clone()); err != nil {
			return StepResult{StepIndex: c.step}, fmt.Errorf("wizard: save progress at step %d (next): %w", c.step, err)
		}
	}

	return c.advance(), nil
}

// Prev moves back one step. Progress still saves, but a persistence failure
// only surfaces in the result — the user is never trapped unable to go back.
func (c *Controller) Prev(ctx context.Context) (StepResult, error) {
	if c.submitted {
		return StepResult{StepIndex: c.step}, ErrSubmitted
	}
	if c.step == 0 {
		return StepResult{StepIndex: 0}, ErrAtFirstStep
	}
	if c.readOnly {
		c.step--
		return StepResult{StepIndex: c.step, Advanced: true}, nil
	}

	var saveErr error
	if c.saver != nil {
		if err := c.saver.SaveStepProgress(ctx, c.formID, DirectionPrev, c.step, c.values.Clone()); err != nil {
			saveErr = fmt.Errorf("wizard: save progress at step %d (prev): %w", c.step, err)
			c.log.Warn("step save failed on backward navigation",
				zap.String("form_id", c.formID),
				zap.Int("step", c.step),
				zap.Error(err))
		}
	}

	c.step--
	return StepResult{StepIndex: c.step, Advanced: true, SaveErr: saveErr}, nil
}

func (c *Controller) advance() StepResult {
	if c.step == len(c.schema.Steps)-1 {
		c.submitted = true
		return StepResult{StepIndex: c.step, Advanced: true, Submitted: true}
	}
	c.step++
	return StepResult{StepIndex: c.step, Advanced: true}
}
