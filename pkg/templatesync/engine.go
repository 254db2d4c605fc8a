// Package templatesync propagates centrally-published template updates to
// the tenant forms derived from them. Push is safe because it is scoped to
// the non-divergent subset: an instance a tenant has customized is never
// touched, and every overwritten instance keeps a one-level undo snapshot.
package templatesync

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// Option customises the engine.
type Option func(*Engine)

// WithLogger attaches a structured logger. Push and rollback log one entry
// per touched instance so partial outcomes are auditable.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// Engine implements the synchronization protocol over a Store. It holds no
// ambient state: every operation takes explicit template and form ids.
type Engine struct {
	store Store
	log   *zap.Logger
}

// New constructs an Engine over the given store.
func New(store Store, opts ...Option) *Engine {
	e := &Engine{store: store, log: zap.NewNop()}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(e)
	}
	return e
}

// PreviewPush counts the derived instances a push would update, without side
// effects. Customized instances are reported separately as skipped.
func (e *Engine) PreviewPush(ctx context.Context, templateID string) (PushPreview, error) {
	if _, err := e.store.GetTemplate(ctx, templateID); err != nil {
		return PushPreview{}, fmt.Errorf("templatesync: preview push %q: %w", templateID, err)
	}

	ids, err := e.store.ListDerivations(ctx, templateID)
	if err != nil {
		return PushPreview{}, fmt.Errorf("templatesync: list derivations of %q: %w", templateID, err)
	}

	preview := PushPreview{TemplateID: templateID}
	for _, id := range ids {
		inst, err := e.store.GetInstance(ctx, id)
		if err != nil {
			return PushPreview{}, fmt.Errorf("templatesync: read instance %q: %w", id, err)
		}
		if inst.Customized {
			preview.SkippedCustomized++
			continue
		}
		preview.AffectedCount++
	}
	return preview, nil
}

// Push replaces schema and config on every non-customized derivation of the
// template, snapshotting each instance's prior state into its undo buffer in
// the same atomic write. Instances update independently; a failure on one is
// recorded and the rest proceed.
func (e *Engine) Push(ctx context.Context, templateID string) (PushResult, error) {
	tpl, err := e.store.GetTemplate(ctx, templateID)
	if err != nil {
		return PushResult{}, fmt.Errorf("templatesync: push %q: %w", templateID, err)
	}

	ids, err := e.store.ListDerivations(ctx, templateID)
	if err != nil {
		return PushResult{}, fmt.Errorf("templatesync: list derivations of %q: %w", templateID, err)
	}

	result := PushResult{TemplateID: templateID}
	for _, id := range ids {
		skipped := false
		updated, err := e.store.UpdateInstance(ctx, id, func(inst *Instance) (bool, error) {
			if inst.SourceTemplateID != templateID {
				return false, nil
			}
			if inst.Customized {
				skipped = true
				return false, nil
			}
			snapshot := inst.Current.Clone()
			inst.Previous = &snapshot
			inst.Current = tpl.Current.Clone()
			inst.Version++
			return true, nil
		})
		switch {
		case err != nil:
			result.Failures = append(result.Failures, InstanceFailure{FormID: id, Err: err})
			e.log.Warn("template push failed for instance",
				zap.String("template_id", templateID),
				zap.String("form_id", id),
				zap.Error(err))
		case skipped:
			result.SkippedCustomized++
		case updated:
			result.UpdatedCount++
			e.log.Info("template push applied",
				zap.String("template_id", templateID),
				zap.String("form_id", id))
		}
	}

	return result, nil
}

// Rollback restores every derivation holding an undo snapshot and clears the
// buffer. Running it twice in a row is a no-op the second time.
func (e *Engine) Rollback(ctx context.Context, templateID string) (RollbackResult, error) {
	ids, err := e.store.ListDerivations(ctx, templateID)
	if err != nil {
		return RollbackResult{}, fmt.Errorf("templatesync: list derivations of %q: %w", templateID, err)
	}

	result := RollbackResult{TemplateID: templateID}
	for _, id := range ids {
		updated, err := e.store.UpdateInstance(ctx, id, func(inst *Instance) (bool, error) {
			if inst.Previous == nil {
				return false, nil
			}
			inst.Current = *inst.Previous
			inst.Previous = nil
			inst.Version++
			return true, nil
		})
		if err != nil {
			result.Failures = append(result.Failures, InstanceFailure{FormID: id, Err: err})
			e.log.Warn("template rollback failed for instance",
				zap.String("template_id", templateID),
				zap.String("form_id", id),
				zap.Error(err))
			continue
		}
		if updated {
			result.RolledBackCount++
			e.log.Info("template rollback applied",
				zap.String("template_id", templateID),
				zap.String("form_id", id))
		}
	}

	return result, nil
}

// Instantiate creates a new derived form from a template and increments the
// template's usage counter.
func (e *Engine) Instantiate(ctx context.Context, templateID, name string) (Instance, error) {
	tpl, err := e.store.GetTemplate(ctx, templateID)
	if err != nil {
		return Instance{}, fmt.Errorf("templatesync: instantiate %q: %w", templateID, err)
	}

	inst := Instance{
		ID:               uuid.NewString(),
		Name:             name,
		Active:           true,
		SourceTemplateID: templateID,
		Version:          1,
		Current:          tpl.Current.Clone(),
	}
	if err := e.store.SaveInstance(ctx, inst); err != nil {
		return Instance{}, fmt.Errorf("templatesync: save instance: %w", err)
	}

	if _, err := e.store.UpdateTemplate(ctx, templateID, func(t *Template) (bool, error) {
		t.UsageCount++
		return true, nil
	}); err != nil {
		return Instance{}, fmt.Errorf("templatesync: increment usage of %q: %w", templateID, err)
	}

	return inst, nil
}

// DeleteInstance removes a derived form. A non-customized instance returns
// its usage to the template (floored at zero); a customized one keeps it,
// since the tenant consumed the template's value before diverging.
func (e *Engine) DeleteInstance(ctx context.Context, formID string) error {
	inst, err := e.store.GetInstance(ctx, formID)
	if err != nil {
		return fmt.Errorf("templatesync: delete instance %q: %w", formID, err)
	}
	if err := e.store.DeleteInstance(ctx, formID); err != nil {
		return fmt.Errorf("templatesync: delete instance %q: %w", formID, err)
	}

	if inst.SourceTemplateID == "" || inst.Customized {
		return nil
	}
	if _, err := e.store.UpdateTemplate(ctx, inst.SourceTemplateID, func(t *Template) (bool, error) {
		if t.UsageCount == 0 {
			return false, nil
		}
		t.UsageCount--
		return true, nil
	}); err != nil {
		return fmt.Errorf("templatesync: decrement usage of %q: %w", inst.SourceTemplateID, err)
	}
	return nil
}

// DeleteTemplate removes a template without cascading to its derivations:
// each derived instance keeps its current schema but loses its lineage,
// becoming an ordinary standalone form.
func (e *Engine) DeleteTemplate(ctx context.Context, templateID string) error {
	ids, err := e.store.ListDerivations(ctx, templateID)
	if err != nil {
		return fmt.Errorf("templatesync: list derivations of %q: %w", templateID, err)
	}
	for _, id := range ids {
		if _, err := e.store.UpdateInstance(ctx, id, func(inst *Instance) (bool, error) {
			if inst.SourceTemplateID != templateID {
				return false, nil
			}
			inst.SourceTemplateID = ""
			return true, nil
		}); err != nil {
			return fmt.Errorf("templatesync: sever lineage of %q: %w", id, err)
		}
	}
	if err := e.store.DeleteTemplate(ctx, templateID); err != nil {
		return fmt.Errorf("templatesync: delete template %q: %w", templateID, err)
	}
	return nil
}

// UpdateSchema applies a structural edit to a derived form. The edit and the
// Customized flag land in one atomic write, so no window exists where a
// structural change is unflagged. The incoming schema is validated first;
// structural invalidity aborts before any state changes.
func (e *Engine) UpdateSchema(ctx context.Context, formID string, next SchemaConfig) error {
	if err := schema.Validate(next.Schema); err != nil {
		return err
	}

	updated, err := e.store.UpdateInstance(ctx, formID, func(inst *Instance) (bool, error) {
		inst.Current = next.Clone()
		if inst.SourceTemplateID != "" {
			inst.Customized = true
		}
		inst.Version++
		return true, nil
	})
	if err != nil {
		return fmt.Errorf("templatesync: update schema of %q: %w", formID, err)
	}
	if !updated {
		return fmt.Errorf("templatesync: update schema of %q: %w", formID, ErrInstanceNotFound)
	}
	return nil
}

// UpdateMetadata applies cosmetic edits. It never reads or writes the
// Customized flag.
func (e *Engine) UpdateMetadata(ctx context.Context, formID string, patch MetadataPatch) error {
	if _, err := e.store.UpdateInstance(ctx, formID, func(inst *Instance) (bool, error) {
		changed := false
		if patch.Name != nil {
			inst.Name = *patch.Name
			changed = true
		}
		if patch.Active != nil {
			inst.Active = *patch.Active
			changed = true
		}
		if patch.DisplayOrder != nil {
			inst.DisplayOrder = *patch.DisplayOrder
			changed = true
		}
		return changed, nil
	}); err != nil {
		return fmt.Errorf("templatesync: update metadata of %q: %w", formID, err)
	}
	return nil
}

// ResetToTemplate is the explicit tenant action that re-syncs a customized
// instance: the current state moves into the undo buffer, the template's
// schema and config are copied in, and the Customized flag clears.
func (e *Engine) ResetToTemplate(ctx context.Context, formID string) (Instance, error) {
	inst, err := e.store.GetInstance(ctx, formID)
	if err != nil {
		return Instance{}, fmt.Errorf("templatesync: reset %q: %w", formID, err)
	}
	if inst.SourceTemplateID == "" {
		return Instance{}, fmt.Errorf("templatesync: reset %q: instance has no template lineage", formID)
	}

	tpl, err := e.store.GetTemplate(ctx, inst.SourceTemplateID)
	if err != nil {
		return Instance{}, fmt.Errorf("templatesync: reset %q: %w", formID, err)
	}

	if _, err := e.store.UpdateInstance(ctx, formID, func(row *Instance) (bool, error) {
		snapshot := row.Current.Clone()
		row.Previous = &snapshot
		row.Current = tpl.Current.Clone()
		row.Customized = false
		row.Version++
		return true, nil
	}); err != nil {
		return Instance{}, fmt.Errorf("templatesync: reset %q: %w", formID, err)
	}

	out, err := e.store.GetInstance(ctx, formID)
	if err != nil {
		return Instance{}, fmt.Errorf("templatesync: reset %q: %w", formID, err)
	}
	e.log.Info("instance reset to template",
		zap.String("template_id", inst.SourceTemplateID),
		zap.String("form_id", formID))
	return out, nil
}
