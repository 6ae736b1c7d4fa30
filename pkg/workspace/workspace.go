package workspace

import (
	"github.com/cespare/xxhash/v2"

	"github.com/oodx/meteor/pkg/types"
)

// EngineWorkspace is MeteorEngine's internal side-table: ordering, cache,
// scratch, and optional instrumentation, kept entirely out of canonical
// storage (spec.md S3.1, S4.4).
type EngineWorkspace struct {
	instrumentation bool
	metrics         *metricsSet // nil unless instrumentation is enabled

	namespaces map[nsKey]*namespaceState
	scratch    map[string]string
}

// New returns an empty EngineWorkspace. instrumentation toggles the
// optional compile-time counters and their Prometheus mirror.
func New(instrumentation bool) *EngineWorkspace {
	w := &EngineWorkspace{
		instrumentation: instrumentation,
		namespaces:      make(map[nsKey]*namespaceState),
		scratch:         make(map[string]string),
	}
	if instrumentation {
		w.metrics = newMetricsSet()
	}
	return w
}

func (w *EngineWorkspace) state(ctx types.Context, ns types.Namespace) *namespaceState {
	k := nsKey{ctx, ns}
	st, ok := w.namespaces[k]
	if !ok {
		st = newNamespaceState()
		w.namespaces[k] = st
	}
	return st
}

func (w *EngineWorkspace) lookup(ctx types.Context, ns types.Namespace) (*namespaceState, bool) {
	st, ok := w.namespaces[nsKey{ctx, ns}]
	return st, ok
}

// RecordInsert appends key to (ctx, ns)'s key_order iff it is new.
func (w *EngineWorkspace) RecordInsert(ctx types.Context, ns types.Namespace, key string) {
	w.state(ctx, ns).recordInsert(key)
}

// RecordDelete removes key from (ctx, ns)'s key_order.
func (w *EngineWorkspace) RecordDelete(ctx types.Context, ns types.Namespace, key string) {
	if st, ok := w.lookup(ctx, ns); ok {
		st.recordDelete(key)
	}
}

// KeyOrder returns (ctx, ns)'s insertion order, or nil if the namespace
// has no workspace record (e.g. storage was populated without going
// through the engine — callers fall back to sorted storage keys in that
// case, per spec.md S4.5).
func (w *EngineWorkspace) KeyOrder(ctx types.Context, ns types.Namespace) ([]string, bool) {
	st, ok := w.lookup(ctx, ns)
	if !ok {
		return nil, false
	}
	out := make([]string, len(st.keyOrder))
	copy(out, st.keyOrder)
	return out, true
}

// Invalidate clears (ctx, ns)'s query cache. Called by pkg/engine in the
// same operation that mutates storage under that namespace.
func (w *EngineWorkspace) Invalidate(ctx types.Context, ns types.Namespace) {
	if st, ok := w.lookup(ctx, ns); ok {
		st.invalidate()
	}
}

// DeleteNamespace removes (ctx, ns)'s workspace record entirely.
func (w *EngineWorkspace) DeleteNamespace(ctx types.Context, ns types.Namespace) {
	delete(w.namespaces, nsKey{ctx, ns})
}

// DeleteContext removes every workspace record for ctx.
func (w *EngineWorkspace) DeleteContext(ctx types.Context) {
	for k := range w.namespaces {
		if k.ctx == ctx {
			delete(w.namespaces, k)
		}
	}
}

// Clear resets the entire workspace: all namespace records and all
// scratch slots.
func (w *EngineWorkspace) Clear() {
	w.namespaces = make(map[nsKey]*namespaceState)
	w.scratch = make(map[string]string)
}

// fingerprint hashes (ctx, ns, pattern) with xxhash so the cache key's
// cost doesn't grow with pattern length.
func fingerprint(ctx types.Context, ns types.Namespace, pattern string) uint64 {
	h := xxhash.New()
	h.WriteString(string(ctx))
	h.Write([]byte{0})
	h.WriteString(string(ns))
	h.Write([]byte{0})
	h.WriteString(pattern)
	return h.Sum64()
}

// CacheLookup consults (ctx, ns)'s query cache for pattern, bumping
// hit/miss counters when instrumentation is enabled. A miss is reported
// via ok=false, instrumented or not; the caller is expected
// to compute the result and call CachePut. Unlike RecordInsert and
// CachePut, a pure read never creates a namespace row: a namespace that
// has never been written to or cached against stays absent from
// WorkspaceStatus().NamespaceCount until one of those write paths
// touches it.
func (w *EngineWorkspace) CacheLookup(ctx types.Context, ns types.Namespace, pattern string) (keys, values []string, ok bool) {
	st, present := w.lookup(ctx, ns)
	if !present {
		return nil, nil, false
	}
	fp := fingerprint(ctx, ns, pattern)
	entry, hit := st.cache[fp]
	if w.instrumentation {
		if hit {
			st.hits.add(1)
			w.metrics.hits.WithLabelValues(string(ctx), string(ns)).Inc()
		} else {
			st.misses.add(1)
			w.metrics.misses.WithLabelValues(string(ctx), string(ns)).Inc()
		}
	}
	if !hit {
		return nil, nil, false
	}
	return entry.keys, entry.values, true
}

// CachePut records a resolved find(pattern) result for (ctx, ns).
func (w *EngineWorkspace) CachePut(ctx types.Context, ns types.Namespace, pattern string, keys, values []string) {
	st := w.state(ctx, ns)
	st.cache[fingerprint(ctx, ns, pattern)] = cacheEntry{keys: keys, values: values}
}

// RecordIteration bumps (ctx, ns)'s iteration counters by one pass over
// keysSeen keys, when instrumentation is enabled. A no-op otherwise.
func (w *EngineWorkspace) RecordIteration(ctx types.Context, ns types.Namespace, keysSeen int) {
	if !w.instrumentation {
		return
	}
	st := w.state(ctx, ns)
	st.iterations.add(1)
	st.keysIterated.add(int64(keysSeen))
	w.metrics.iters.WithLabelValues(string(ctx), string(ns)).Inc()
	w.metrics.keys.WithLabelValues(string(ctx), string(ns)).Add(float64(keysSeen))
}

// ResetCounters explicitly zeros (ctx, ns)'s instrumentation counters.
func (w *EngineWorkspace) ResetCounters(ctx types.Context, ns types.Namespace) {
	if st, ok := w.lookup(ctx, ns); ok {
		st.resetCounters()
	}
}

// SetScratch writes a scratch buffer. Scratch slots are invisible to
// iter_entries, namespace_view, meteors(), and all canonical queries.
func (w *EngineWorkspace) SetScratch(name, value string) {
	w.scratch[name] = value
}

// GetScratch reads a scratch buffer.
func (w *EngineWorkspace) GetScratch(name string) (string, bool) {
	v, ok := w.scratch[name]
	return v, ok
}

// DeleteScratch removes a scratch buffer.
func (w *EngineWorkspace) DeleteScratch(name string) {
	delete(w.scratch, name)
}

// Status is the debug-only snapshot workspace_status() returns
// (spec.md S4.4). It is not exposed outside debug builds of a consumer;
// Meteor itself always computes it on request (the "debug builds only"
// restriction is a consumer-side build-tag concern, not a core one).
type Status struct {
	NamespaceCount     int
	ScratchSlotCount   int
	TotalCachedQueries int
	TotalOrderedKeys   int

	// Populated only when instrumentation is enabled.
	CacheHits, CacheMisses     int64
	Iterations, KeysIterated   int64
}

// WorkspaceStatus computes a Status snapshot.
func (w *EngineWorkspace) WorkspaceStatus() Status {
	st := Status{
		NamespaceCount:   len(w.namespaces),
		ScratchSlotCount: len(w.scratch),
	}
	for _, ns := range w.namespaces {
		st.TotalCachedQueries += len(ns.cache)
		st.TotalOrderedKeys += len(ns.keyOrder)
		if w.instrumentation {
			st.CacheHits += ns.hits.get()
			st.CacheMisses += ns.misses.get()
			st.Iterations += ns.iterations.get()
			st.KeysIterated += ns.keysIterated.get()
		}
	}
	return st
}
