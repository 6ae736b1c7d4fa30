/*
Package storage implements Meteor's hybrid per-context storage: a flat
map for O(1) direct access plus a parallel tree index for hierarchical
navigation, kept in lockstep (spec.md S3.1, S4.3).

# Architecture

	┌──────────────────── CONTEXT STORAGE ─────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │               flat map                      │          │
	│  │  "ui.widgets:button"  -> "click"            │          │
	│  │  "ui.widgets:theme"   -> "dark"             │          │
	│  │  "name"               -> "John"             │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │  single source of truth              │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │               tree index                     │          │
	│  │  Directory{ui: Directory{widgets:           │          │
	│  │    Directory{button: File("click"),         │          │
	│  │              theme: File("dark")}}}          │          │
	│  │  File("John")  (root-level "name")          │          │
	│  └────────────────────────────────────────────┘           │
	│                                                            │
	│  Invariant: every File node corresponds to exactly one     │
	│  flat entry and vice versa. A path is a File XOR a         │
	│  Directory, never both (TypeConflict otherwise).           │
	└────────────────────────────────────────────────────────────┘

StorageData is a map from Context name to ContextStorage; contexts are
created implicitly on first write and deleted as a whole unit.

find_keys glob matching is delegated to
github.com/bmatcuk/doublestar/v4: the default "*" semantics match any
run of non-separator characters, and an opt-in FindRecursive exposes
doublestar's native "**" support for the recursive-glob case spec.md S9
leaves open, without Meteor hand-rolling a second matcher.
*/
package storage
