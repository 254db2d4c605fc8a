// Package options defines the option-catalog boundary consumed by the
// validation compiler and renderers. Schemas reference shared option sets by
// name instead of embedding them; the catalog owns the actual lists.
package options

import (
	"context"
	"fmt"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// Catalog resolves a late-bound option set reference into its current
// value/label pairs. Implementations live outside the engine (storage, HTTP);
// resolution may fail and failures propagate to the caller.
type Catalog interface {
	ResolveOptions(ctx context.Context, ref string) ([]schema.Option, error)
}

// CatalogFunc adapts a function into a Catalog.
type CatalogFunc func(ctx context.Context, ref string) ([]schema.Option, error)

// ResolveOptions delegates to the underlying function.
func (fn CatalogFunc) ResolveOptions(ctx context.Context, ref string) ([]schema.Option, error) {
	return fn(ctx, ref)
}

// StaticCatalog is an in-memory Catalog keyed by option set reference.
// Useful for tests and for tenants whose option sets ship with the binary.
type StaticCatalog map[string][]schema.Option

// ResolveOptions returns the configured options for ref.
func (c StaticCatalog) ResolveOptions(_ context.Context, ref string) ([]schema.Option, error) {
	opts, ok := c[ref]
	if !ok {
		return nil, fmt.Errorf("options: unknown option set %q", ref)
	}
	return opts, nil
}
