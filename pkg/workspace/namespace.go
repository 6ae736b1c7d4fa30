package workspace

import "github.com/oodx/meteor/pkg/types"

// nsKey identifies one (context, namespace) side-table entry.
type nsKey struct {
	ctx types.Context
	ns  types.Namespace
}

// cacheEntry is one resolved query_cache result: the keys/values a
// find(pattern) call resolved to, captured so a repeated call with the
// same fingerprint can skip re-scanning storage.
type cacheEntry struct {
	keys   []string
	values []string
}

// namespaceState is the per-(context, namespace) side-table row.
type namespaceState struct {
	keyOrder []string
	present  map[string]struct{} // mirrors keyOrder for O(1) membership
	cache    map[uint64]cacheEntry

	hits, misses, iterations, keysIterated counterCell
}

func newNamespaceState() *namespaceState {
	return &namespaceState{
		present: make(map[string]struct{}),
		cache:   make(map[uint64]cacheEntry),
	}
}

// recordInsert appends key to key_order iff it isn't already present,
// per spec.md S4.4: "on first successful insert... appended; on update...
// unchanged."
func (n *namespaceState) recordInsert(key string) {
	if _, ok := n.present[key]; ok {
		return
	}
	n.present[key] = struct{}{}
	n.keyOrder = append(n.keyOrder, key)
}

// recordDelete removes key from key_order.
func (n *namespaceState) recordDelete(key string) {
	if _, ok := n.present[key]; !ok {
		return
	}
	delete(n.present, key)
	for i, k := range n.keyOrder {
		if k == key {
			n.keyOrder = append(n.keyOrder[:i], n.keyOrder[i+1:]...)
			break
		}
	}
}

// invalidate clears the query cache. Instrumentation counters are
// cumulative across invalidations (spec.md S4.4's instrumentation note)
// and are only cleared by an explicit resetCounters call, never as a
// side effect of a normal mutation.
func (n *namespaceState) invalidate() {
	n.cache = make(map[uint64]cacheEntry)
}

func (n *namespaceState) resetCounters() {
	n.hits.reset()
	n.misses.reset()
	n.iterations.reset()
	n.keysIterated.reset()
}
