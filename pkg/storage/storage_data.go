package storage

import (
	"sort"

	"github.com/oodx/meteor/pkg/types"
)

// StorageData is the top-level multi-context store. Contexts are created
// implicitly on first write and removed as a whole unit; no mutation
// within one context is ever visible from another (spec.md S3.1, S8.1
// property 4).
type StorageData struct {
	contexts map[types.Context]*ContextStorage
}

// NewStorageData returns an empty StorageData.
func NewStorageData() *StorageData {
	return &StorageData{contexts: make(map[types.Context]*ContextStorage)}
}

// Context returns the ContextStorage for ctx, creating it if it doesn't
// exist yet (implicit creation on first write, per spec.md S3.1).
func (d *StorageData) Context(ctx types.Context) *ContextStorage {
	cs, ok := d.contexts[ctx]
	if !ok {
		cs = NewContextStorage()
		d.contexts[ctx] = cs
	}
	return cs
}

// Lookup returns the ContextStorage for ctx without creating it.
func (d *StorageData) Lookup(ctx types.Context) (*ContextStorage, bool) {
	cs, ok := d.contexts[ctx]
	return cs, ok
}

// DeleteContext removes an entire context's storage. Reports whether it
// existed.
func (d *StorageData) DeleteContext(ctx types.Context) bool {
	_, ok := d.contexts[ctx]
	delete(d.contexts, ctx)
	return ok
}

// Contexts returns every context name with at least one key, sorted.
func (d *StorageData) Contexts() []types.Context {
	out := make([]types.Context, 0, len(d.contexts))
	for ctx, cs := range d.contexts {
		if cs.Len() > 0 {
			out = append(out, ctx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Clear removes every context.
func (d *StorageData) Clear() {
	d.contexts = make(map[types.Context]*ContextStorage)
}
