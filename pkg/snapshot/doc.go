/*
Package snapshot is Meteor's optional, non-core persistence collaborator
(spec.md S1, S6.4: "none in the core"). pkg/engine never imports this
package; a caller opts in by wiring a BoltStore around an engine instance
from outside pkg/engine.

It is explicitly best-effort: one bucket per context, one key/value pair
per stored entry, no write-ahead log, no incremental durability, and no
attempt to preserve workspace ordering or the command history across a
round trip — only canonical storage survives Export/Import. A restored
engine rebuilds key_order from scratch (first insertion order of the
Import call, which iterates contexts and namespaces sorted).
*/
package snapshot
