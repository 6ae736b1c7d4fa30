package engine

import (
	"sort"

	"github.com/oodx/meteor/pkg/notation"
	"github.com/oodx/meteor/pkg/storage"
	"github.com/oodx/meteor/pkg/types"
)

// ContextsIter returns every context with at least one key, sorted.
func (e *MeteorEngine) ContextsIter() []types.Context {
	return e.storage.Contexts()
}

// NamespacesIter returns every namespace within ctx that holds at least
// one key, sorted.
func (e *MeteorEngine) NamespacesIter(ctx types.Context) []types.Namespace {
	cs, ok := e.storage.Lookup(ctx)
	if !ok {
		return nil
	}
	return cs.NamespacesInContext()
}

// orderedEntries returns (ctx, ns)'s entries in workspace key_order, or
// sorted by key when the namespace has no workspace record (spec.md
// §4.5's iter_entries fallback).
func (e *MeteorEngine) orderedEntries(ctx types.Context, ns types.Namespace) []storage.Entry {
	cs, ok := e.storage.Lookup(ctx)
	if !ok {
		return nil
	}
	all := cs.EntriesInNamespace(ns)
	byKey := make(map[string]string, len(all))
	for _, en := range all {
		byKey[en.Key] = en.Value
	}

	if order, ok := e.workspace.KeyOrder(ctx, ns); ok {
		out := make([]storage.Entry, 0, len(order))
		for _, k := range order {
			if v, present := byKey[k]; present {
				out = append(out, storage.Entry{Key: k, Value: v})
			}
		}
		return out
	}

	sort.Slice(all, func(i, j int) bool { return all[i].Key < all[j].Key })
	return all
}

// Entry is one (context, namespace, key, value) tuple yielded by
// IterEntries, with key rendered back to its original bracket notation.
type Entry struct {
	Context   types.Context
	Namespace types.Namespace
	Key       string
	Value     string
}

// IterEntries yields every stored entry across every context and
// namespace, each namespace's keys in key_order (or sorted, as a
// fallback).
func (e *MeteorEngine) IterEntries() []Entry {
	var out []Entry
	for _, ctx := range e.ContextsIter() {
		for _, ns := range e.NamespacesIter(ctx) {
			for _, en := range e.orderedEntries(ctx, ns) {
				out = append(out, Entry{
					Context:   ctx,
					Namespace: ns,
					Key:       notation.FlatToNotation(en.Key),
					Value:     en.Value,
				})
			}
		}
	}
	return out
}

// NamespaceView is a read-only snapshot of one (context, namespace)'s
// entries, in key_order.
type NamespaceView struct {
	Context    types.Context
	Namespace  types.Namespace
	HasDefault bool

	entries []storage.Entry
}

// EntryCount returns the number of keys in the view.
func (v *NamespaceView) EntryCount() int { return len(v.entries) }

// Entries returns (key, value) pairs in key_order, keys in original
// notation.
func (v *NamespaceView) Entries() []Entry {
	out := make([]Entry, len(v.entries))
	for i, en := range v.entries {
		out[i] = Entry{Context: v.Context, Namespace: v.Namespace, Key: notation.FlatToNotation(en.Key), Value: en.Value}
	}
	return out
}

// Keys returns keys in key_order, original notation.
func (v *NamespaceView) Keys() []string {
	out := make([]string, len(v.entries))
	for i, en := range v.entries {
		out[i] = notation.FlatToNotation(en.Key)
	}
	return out
}

// Values returns values in key_order.
func (v *NamespaceView) Values() []string {
	out := make([]string, len(v.entries))
	for i, en := range v.entries {
		out[i] = en.Value
	}
	return out
}

// Get returns key's value within the view.
func (v *NamespaceView) Get(key string) (string, bool) {
	flat, err := notation.New(key)
	if err != nil {
		return "", false
	}
	for _, en := range v.entries {
		if en.Key == flat.Flat() {
			return en.Value, true
		}
	}
	return "", false
}

// HasKey reports whether key is present in the view.
func (v *NamespaceView) HasKey(key string) bool {
	_, ok := v.Get(key)
	return ok
}

// NamespaceView returns a snapshot of (ctx, ns), or nil if the namespace
// has no keys.
func (e *MeteorEngine) NamespaceView(ctx types.Context, ns types.Namespace) *NamespaceView {
	entries := e.orderedEntries(ctx, ns)
	if len(entries) == 0 {
		return nil
	}
	cs, _ := e.storage.Lookup(ctx)
	return &NamespaceView{
		Context:    ctx,
		Namespace:  ns,
		HasDefault: cs != nil && cs.NamespaceHasDefault(ns),
		entries:    entries,
	}
}

// Meteors returns one Meteor per (context, namespace) pair holding at
// least one key, tokens in key_order with original bracket notation.
func (e *MeteorEngine) Meteors() []types.Meteor {
	var out []types.Meteor
	for _, ctx := range e.ContextsIter() {
		for _, ns := range e.NamespacesIter(ctx) {
			if m, ok := e.MeteorFor(ctx, ns); ok {
				out = append(out, m)
			}
		}
	}
	return out
}

// MeteorFor builds the Meteor for one (context, namespace), if it has any
// keys.
func (e *MeteorEngine) MeteorFor(ctx types.Context, ns types.Namespace) (types.Meteor, bool) {
	entries := e.orderedEntries(ctx, ns)
	if len(entries) == 0 {
		return types.Meteor{}, false
	}
	tokens := make([]types.Token, len(entries))
	for i, en := range entries {
		original := notation.FlatToNotation(en.Key)
		key, err := notation.New(original)
		if err != nil {
			key = types.RawTokenKey(original, en.Key)
		}
		tokens[i] = types.Token{Key: key, Value: en.Value}
	}
	return types.Meteor{Context: ctx, Namespace: ns, Tokens: tokens}, true
}
