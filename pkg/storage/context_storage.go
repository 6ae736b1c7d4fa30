package storage

import (
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/oodx/meteor/pkg/addressing"
	"github.com/oodx/meteor/pkg/notation"
	"github.com/oodx/meteor/pkg/types"
)

const op = "storage"

// IndexKey is the reserved key name that provides a directory's default
// value (spec.md S3.1's ".index" convention).
const IndexKey = ".index"

// ContextStorage holds one context's data as a flat map (the single
// source of truth) plus a parallel tree index used for hierarchical
// navigation. Every File node in the tree corresponds to exactly one flat
// entry and vice versa; the tree is reconstructible from flat alone.
type ContextStorage struct {
	flat map[string]string
	tree *node
}

// NewContextStorage returns an empty, ready-to-use ContextStorage.
func NewContextStorage() *ContextStorage {
	return &ContextStorage{
		flat: make(map[string]string),
		tree: newDirectory(),
	}
}

// treePath returns the full segment path (namespace segments, then the
// key's own dotted segments) used to navigate the tree.
func treePath(ns types.Namespace, flatKey string) []string {
	path := append([]string{}, ns.Segments()...)
	return append(path, notation.PathSegments(flatKey)...)
}

// Set inserts or updates a (namespace, key) entry. It returns whether this
// was a new key (true) or an update to an existing one (false), which the
// caller (pkg/engine) uses to decide whether to append to the workspace's
// key_order.
func (s *ContextStorage) Set(ns types.Namespace, key types.TokenKey, value string) (isNew bool, err error) {
	canonical := addressing.CanonicalKey(ns, key.Flat())
	path := treePath(ns, key.Flat())

	if err := ensureWritable(s.tree, path); err != nil {
		return false, err
	}

	_, existed := s.flat[canonical]
	s.flat[canonical] = value
	setTreeValue(s.tree, path, value)
	return !existed, nil
}

// ensureWritable walks path, failing with TypeConflict if any intermediate
// segment is already a File (which would need to become a Directory) or if
// the final segment is already a Directory (which would need to become a
// File).
func ensureWritable(root *node, path []string) error {
	cur := root
	for i, seg := range path {
		last := i == len(path)-1
		child, ok := cur.children[seg]
		if !ok {
			return nil // nothing conflicts past this point; rest is new
		}
		if last {
			if !child.isFile {
				return types.Errf(op, types.KindTypeConflict, "path %q is a directory, not a key", strings.Join(path, "."))
			}
			return nil
		}
		if child.isFile {
			return types.Errf(op, types.KindTypeConflict, "path %q is a key, not a namespace", strings.Join(path[:i+1], "."))
		}
		cur = child
	}
	return nil
}

// setTreeValue assumes ensureWritable already passed; it creates any
// missing directories and sets (or overwrites) the leaf File.
func setTreeValue(root *node, path []string, value string) {
	cur := root
	for i, seg := range path {
		last := i == len(path)-1
		if last {
			cur.children[seg] = newFile(value)
			return
		}
		child, ok := cur.children[seg]
		if !ok {
			child = newDirectory()
			cur.children[seg] = child
		}
		cur = child
	}
}

// Get reads a value directly from the flat map.
func (s *ContextStorage) Get(ns types.Namespace, key types.TokenKey) (string, bool) {
	v, ok := s.flat[addressing.CanonicalKey(ns, key.Flat())]
	return v, ok
}

// DeleteKey removes one key from both flat and tree, pruning empty
// directories upward. It reports whether the key existed.
func (s *ContextStorage) DeleteKey(ns types.Namespace, key types.TokenKey) bool {
	canonical := addressing.CanonicalKey(ns, key.Flat())
	if _, ok := s.flat[canonical]; !ok {
		return false
	}
	delete(s.flat, canonical)
	pruneDelete(s.tree, treePath(ns, key.Flat()))
	return true
}

// pruneDelete removes the node at path and then removes any now-empty
// directory ancestors, stopping at the root.
func pruneDelete(root *node, path []string) {
	ancestors := make([]*node, 0, len(path))
	cur := root
	for _, seg := range path[:len(path)-1] {
		child, ok := cur.children[seg]
		if !ok {
			return
		}
		ancestors = append(ancestors, cur)
		cur = child
	}
	leaf := path[len(path)-1]
	delete(cur.children, leaf)

	for i := len(ancestors) - 1; i >= 0; i-- {
		seg := path[i]
		if len(cur.children) > 0 {
			return
		}
		delete(ancestors[i].children, seg)
		cur = ancestors[i]
	}
}

// DeleteNamespace removes every key stored in ns or in any namespace
// nested under it (ns's own dotted-path children, e.g. deleting "ui"
// also deletes "ui.widgets"), pruning the corresponding tree subtree so
// flat and tree stay in agreement. Returns the number of keys removed.
func (s *ContextStorage) DeleteNamespace(ns types.Namespace) int {
	isMain := ns == "" || ns == types.MainNamespace
	removed := 0
	for k := range s.flat {
		if matchesNamespace(k, ns) {
			delete(s.flat, k)
			if isMain {
				pruneDelete(s.tree, treePath(types.MainNamespace, k))
			}
			removed++
		}
	}
	if !isMain {
		deleteSubtree(s.tree, ns.Segments())
	}
	return removed
}

func namespacePrefix(ns types.Namespace) string {
	if ns == "" || ns == types.MainNamespace {
		return ""
	}
	return string(ns) + ":"
}

// matchesNamespace reports whether canonicalKey belongs to ns itself or
// to a namespace nested under ns (ns's dotted path is a strict prefix of
// the key's namespace segment). This must stay in lockstep with
// deleteSubtree, which removes the whole "ns" tree node — including any
// child namespace directories nested below it.
func matchesNamespace(canonicalKey string, ns types.Namespace) bool {
	if ns == "" || ns == types.MainNamespace {
		return !strings.Contains(canonicalKey, ":")
	}
	idx := strings.Index(canonicalKey, ":")
	if idx < 0 {
		return false
	}
	keyNS := canonicalKey[:idx]
	return keyNS == string(ns) || strings.HasPrefix(keyNS, string(ns)+".")
}

func deleteSubtree(root *node, segments []string) {
	if len(segments) == 0 {
		return
	}
	parentPath, leaf := segments[:len(segments)-1], segments[len(segments)-1]
	parent, ok := walk(root, parentPath)
	if !ok || parent.isFile {
		return
	}
	delete(parent.children, leaf)
}

// EntriesInNamespace returns every (key, value) stored directly under ns,
// unordered and unfiltered by any pattern. Callers that need a stable
// order (iter_entries' sorted-keys fallback) sort the result themselves.
func (s *ContextStorage) EntriesInNamespace(ns types.Namespace) []Entry {
	prefix := namespacePrefix(ns)
	var out []Entry
	for k, v := range s.flat {
		switch {
		case ns == "" || ns == types.MainNamespace:
			if strings.Contains(k, ":") {
				continue
			}
			out = append(out, Entry{Key: k, Value: v})
		default:
			if !strings.HasPrefix(k, prefix) {
				continue
			}
			out = append(out, Entry{Key: k[len(prefix):], Value: v})
		}
	}
	return out
}

// FindKeys returns every canonical key within ns whose key portion
// matches pattern ("*" matching any run of non-separator characters), and
// its value. Matching is delegated to doublestar with a single-segment
// glob: "*" never crosses a "." boundary.
func (s *ContextStorage) FindKeys(ns types.Namespace, pattern string) []Entry {
	return s.find(ns, pattern, false)
}

// FindRecursive is FindKeys but with doublestar's native "**" enabled, so
// a pattern may cross "." boundaries. This is the opt-in recursive-glob
// extension spec.md S9 leaves open; it is never used by the default find.
func (s *ContextStorage) FindRecursive(ns types.Namespace, pattern string) []Entry {
	return s.find(ns, pattern, true)
}

// Entry is one (key, value) result from a find operation, keyed by the
// original flat key (not yet rendered back to notation).
type Entry struct {
	Key   string
	Value string
}

func (s *ContextStorage) find(ns types.Namespace, pattern string, recursive bool) []Entry {
	prefix := namespacePrefix(ns)
	var out []Entry
	for k, v := range s.flat {
		var rel string
		switch {
		case ns == "" || ns == types.MainNamespace:
			if strings.Contains(k, ":") {
				continue
			}
			rel = k
		default:
			if !strings.HasPrefix(k, prefix) {
				continue
			}
			rel = k[len(prefix):]
		}

		matchPattern := pattern
		matchAgainst := rel
		if !recursive {
			// doublestar treats "/" as the segment separator; translate our
			// "." segments so "*" cannot cross them, and reduce "**" to "*"
			// so that only FindRecursive matches across segments.
			matchPattern = strings.ReplaceAll(pattern, ".", "/")
			for strings.Contains(matchPattern, "**") {
				matchPattern = strings.ReplaceAll(matchPattern, "**", "*")
			}
			matchAgainst = strings.ReplaceAll(rel, ".", "/")
		}
		ok, err := doublestar.Match(matchPattern, matchAgainst)
		if err != nil || !ok {
			continue
		}
		out = append(out, Entry{Key: rel, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// IsFile reports whether the tree node at the given namespace+key path is
// a File leaf.
func (s *ContextStorage) IsFile(ns types.Namespace, flatKey string) bool {
	n, ok := walk(s.tree, treePath(ns, flatKey))
	return ok && n.isFile
}

// IsDirectory reports whether the tree node at the given namespace+key
// path is a Directory.
func (s *ContextStorage) IsDirectory(ns types.Namespace, flatKey string) bool {
	n, ok := walk(s.tree, treePath(ns, flatKey))
	return ok && !n.isFile
}

// NamespaceHasDefault reports whether ns's own directory node (not a
// sub-key within it) has a ".index" child.
func (s *ContextStorage) NamespaceHasDefault(ns types.Namespace) bool {
	n, ok := walk(s.tree, ns.Segments())
	if !ok || n.isFile {
		return false
	}
	idx, ok := n.children[IndexKey]
	return ok && idx.isFile
}

// HasDefault reports whether the directory at the given path has a
// ".index" child.
func (s *ContextStorage) HasDefault(ns types.Namespace, flatKey string) bool {
	n, ok := walk(s.tree, treePath(ns, flatKey))
	if !ok || n.isFile {
		return false
	}
	idx, ok := n.children[IndexKey]
	return ok && idx.isFile
}

// GetDefault reads the directory's ".index" value, if any.
func (s *ContextStorage) GetDefault(ns types.Namespace, flatKey string) (string, bool) {
	n, ok := walk(s.tree, treePath(ns, flatKey))
	if !ok || n.isFile {
		return "", false
	}
	idx, ok := n.children[IndexKey]
	if !ok || !idx.isFile {
		return "", false
	}
	return idx.value, true
}

// NamespacesInContext returns every distinct namespace with at least one
// key, sorted.
func (s *ContextStorage) NamespacesInContext() []types.Namespace {
	set := make(map[types.Namespace]struct{})
	for k := range s.flat {
		if idx := strings.Index(k, ":"); idx >= 0 {
			set[types.Namespace(k[:idx])] = struct{}{}
		} else {
			set[types.MainNamespace] = struct{}{}
		}
	}
	out := make([]types.Namespace, 0, len(set))
	for ns := range set {
		out = append(out, ns)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Len returns the number of keys in the context, across all namespaces.
func (s *ContextStorage) Len() int { return len(s.flat) }
