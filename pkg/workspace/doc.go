/*
Package workspace implements EngineWorkspace, MeteorEngine's internal
side-table: per-namespace key ordering, a query cache, scratch buffers,
and optional instrumentation (spec.md S3.1, S4.4). None of this is part
of canonical storage — pkg/storage's flat map and tree index are the
only source of truth for what a query returns; the workspace only
remembers ordering and caches results already computed from storage.

# Architecture

	┌────────────────── ENGINE WORKSPACE ──────────────────────┐
	│                                                            │
	│  per (context, namespace):                                │
	│  ┌────────────────────────────────────────────┐          │
	│  │  key_order   [button, theme, size]           │          │
	│  │  query_cache {fingerprint(pattern) -> result}│          │
	│  │  counters    {hits, misses, iterations, ...} │          │
	│  └────────────────────────────────────────────┘           │
	│                                                            │
	│  workspace-wide:                                           │
	│  ┌────────────────────────────────────────────┐          │
	│  │  scratch_slots {name -> buffer}              │          │
	│  │  (invisible to iter_entries/namespace_view/  │          │
	│  │   meteors()/find — scratch never leaks into  │          │
	│  │   a canonical query result)                  │          │
	│  └────────────────────────────────────────────┘           │
	└────────────────────────────────────────────────────────────┘

Cache fingerprints are xxhash64 over (context, namespace, pattern) rather
than the raw pattern string, so a long pattern costs the same lookup as a
short one. Any mutation to a namespace clears that namespace's cache
entries atomically with the mutation that caused it — pkg/engine always
calls Invalidate in the same call that wrote to pkg/storage. Counters are
cumulative across invalidations; they reset only via an explicit
ResetCounters call.
*/
package workspace
