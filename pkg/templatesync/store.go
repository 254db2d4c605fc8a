package templatesync

import (
	"context"
	"errors"
)

// ErrTemplateNotFound distinguishes a genuinely missing template from the
// informational skip of customized instances.
var ErrTemplateNotFound = errors.New("templatesync: template not found")

// ErrInstanceNotFound reports a missing derived form instance.
var ErrInstanceNotFound = errors.New("templatesync: instance not found")

// Store is the persistence collaborator the engine drives. The engine never
// caches records across calls; every operation reads through the store.
//
// UpdateInstance and UpdateTemplate are atomic read-modify-write operations:
// the apply callback sees the current row and either mutates it and returns
// true, or returns false to leave the row untouched. Per-row atomicity is the
// store's guarantee; the engine's push correctness depends on it but does not
// implement it.
type Store interface {
	GetTemplate(ctx context.Context, templateID string) (Template, error)
	SaveTemplate(ctx context.Context, tpl Template) error
	DeleteTemplate(ctx context.Context, templateID string) error
	UpdateTemplate(ctx context.Context, templateID string, apply func(*Template) (bool, error)) (bool, error)

	GetInstance(ctx context.Context, formID string) (Instance, error)
	SaveInstance(ctx context.Context, inst Instance) error
	DeleteInstance(ctx context.Context, formID string) error
	UpdateInstance(ctx context.Context, formID string, apply func(*Instance) (bool, error)) (bool, error)

	// ListDerivations returns the ids of every instance whose
	// SourceTemplateID equals templateID, in stable order.
	ListDerivations(ctx context.Context, templateID string) ([]string, error)
}
