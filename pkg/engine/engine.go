package engine

import (
	"strings"

	"github.com/oodx/meteor/pkg/addressing"
	"github.com/oodx/meteor/pkg/limits"
	"github.com/oodx/meteor/pkg/storage"
	"github.com/oodx/meteor/pkg/types"
	"github.com/oodx/meteor/pkg/workspace"
)

const op = "engine"

// MeteorEngine is the single owner of a StorageData and an EngineWorkspace.
// It holds the cursor, dispatches every read/write operation, and records a
// bounded control-command history.
type MeteorEngine struct {
	profile limits.Profile

	cursor types.Cursor

	storage   *storage.StorageData
	workspace *workspace.EngineWorkspace

	history []types.ControlCommand
}

// New returns a MeteorEngine with an empty store and the cursor at
// (app, main).
func New(prof limits.Profile) *MeteorEngine {
	return &MeteorEngine{
		profile:   prof,
		cursor:    types.DefaultCursor(),
		storage:   storage.NewStorageData(),
		workspace: workspace.New(prof.Instrumentation),
	}
}

// Profile returns the limits.Profile this engine was constructed with, so
// collaborators (pkg/stream's parsers) can enforce the same caps without
// duplicating them.
func (e *MeteorEngine) Profile() limits.Profile {
	return e.profile
}

// Result is one (path, value) pair returned by Find.
type Result struct {
	Path  string
	Value string
}

func (e *MeteorEngine) checkContextBudget(ctx types.Context) error {
	if _, ok := e.storage.Lookup(ctx); ok {
		return nil
	}
	if len(e.storage.Contexts()) >= e.profile.MaxContexts {
		return types.Errf(op, types.KindLimitExceeded, "context budget %d exceeded", e.profile.MaxContexts)
	}
	return nil
}

// Set parses path, validates it, writes the value, updates workspace
// ordering, and invalidates that namespace's query cache. path may omit
// its context and/or namespace, which default to the cursor's current
// values.
func (e *MeteorEngine) Set(path, value string) error {
	rk, err := e.resolve(op, path)
	if err != nil {
		return err
	}
	if len(value) > e.profile.MaxValueLength {
		return types.Errf(op, types.KindLimitExceeded, "value for %q exceeds max length %d", path, e.profile.MaxValueLength)
	}
	if err := e.checkContextBudget(rk.addr.Context); err != nil {
		return err
	}

	cs := e.storage.Context(rk.addr.Context)
	isNew, err := cs.Set(rk.addr.Namespace, rk.key, value)
	if err != nil {
		return err
	}
	if isNew {
		e.workspace.RecordInsert(rk.addr.Context, rk.addr.Namespace, rk.key.Flat())
	}
	e.workspace.Invalidate(rk.addr.Context, rk.addr.Namespace)
	return nil
}

// Get parses path and returns its value, if any.
func (e *MeteorEngine) Get(path string) (string, bool, error) {
	rk, err := e.resolve(op, path)
	if err != nil {
		return "", false, err
	}
	cs, ok := e.storage.Lookup(rk.addr.Context)
	if !ok {
		return "", false, nil
	}
	v, ok := cs.Get(rk.addr.Namespace, rk.key)
	return v, ok, nil
}

// Exists reports whether path resolves to a stored key.
func (e *MeteorEngine) Exists(path string) (bool, error) {
	_, ok, err := e.Get(path)
	return ok, err
}

// Delete parses path and removes what it names: a key (3 parts), a whole
// namespace (2 parts), or — the legacy 1-part form — a whole context. It
// reports whether anything existed to remove. Unlike
// ExecuteControlCommand, a direct Delete call does not append a history
// record; only control-command-driven deletes are audited.
func (e *MeteorEngine) Delete(path string) (bool, error) {
	parts := splitColon(path)
	switch len(parts) {
	case 3:
		return e.deleteKeyPath(path)
	case 2:
		ns := types.Namespace(parts[1])
		if err := addressing.ValidateContext(types.Context(parts[0])); err != nil {
			return false, err
		}
		return e.deleteNamespace(types.Context(parts[0]), ns), nil
	case 1:
		return e.deleteContext(types.Context(parts[0])), nil
	default:
		return false, types.Errf(op, types.KindInvalidPath, "too many colons in %q", path)
	}
}

func (e *MeteorEngine) deleteKeyPath(path string) (bool, error) {
	rk, err := e.resolve(op, path)
	if err != nil {
		return false, err
	}
	cs, ok := e.storage.Lookup(rk.addr.Context)
	if !ok {
		return false, nil
	}
	removed := cs.DeleteKey(rk.addr.Namespace, rk.key)
	if removed {
		e.workspace.RecordDelete(rk.addr.Context, rk.addr.Namespace, rk.key.Flat())
		e.workspace.Invalidate(rk.addr.Context, rk.addr.Namespace)
	}
	return removed, nil
}

func (e *MeteorEngine) deleteNamespace(ctx types.Context, ns types.Namespace) bool {
	cs, ok := e.storage.Lookup(ctx)
	if !ok {
		return false
	}
	// cs.DeleteNamespace also removes the namespaces nested under ns, so
	// their workspace records (key_order and cached queries) go too.
	if ns != "" && ns != types.MainNamespace {
		for _, sub := range cs.NamespacesInContext() {
			if strings.HasPrefix(string(sub), string(ns)+".") {
				e.workspace.DeleteNamespace(ctx, sub)
			}
		}
	}
	removed := cs.DeleteNamespace(ns)
	e.workspace.DeleteNamespace(ctx, ns)
	return removed > 0
}

func (e *MeteorEngine) deleteContext(ctx types.Context) bool {
	existed := e.storage.DeleteContext(ctx)
	e.workspace.DeleteContext(ctx)
	return existed
}

// Find matches pattern ("*" within a single dotted segment) against keys
// in the cursor's current (context, namespace), consulting the workspace
// cache when possible.
func (e *MeteorEngine) Find(pattern string) ([]Result, error) {
	return e.findAt(e.cursor.Context, e.cursor.Namespace, pattern)
}

func (e *MeteorEngine) findAt(ctx types.Context, ns types.Namespace, pattern string) ([]Result, error) {
	if keys, values, ok := e.workspace.CacheLookup(ctx, ns, pattern); ok {
		return zipResults(ctx, ns, keys, values), nil
	}

	cs, ok := e.storage.Lookup(ctx)
	if !ok {
		e.workspace.CachePut(ctx, ns, pattern, nil, nil)
		return nil, nil
	}
	entries := cs.FindKeys(ns, pattern)
	keys := make([]string, len(entries))
	values := make([]string, len(entries))
	for i, en := range entries {
		keys[i] = en.Key
		values[i] = en.Value
	}
	e.workspace.CachePut(ctx, ns, pattern, keys, values)
	return zipResults(ctx, ns, keys, values), nil
}

func zipResults(ctx types.Context, ns types.Namespace, keys, values []string) []Result {
	out := make([]Result, len(keys))
	for i := range keys {
		out[i] = Result{
			Path:  string(ctx) + ":" + addressing.CanonicalKey(ns, keys[i]),
			Value: values[i],
		}
	}
	return out
}

// IsFile reports whether path resolves to a leaf value.
func (e *MeteorEngine) IsFile(path string) (bool, error) {
	rk, err := e.resolve(op, path)
	if err != nil {
		return false, err
	}
	cs, ok := e.storage.Lookup(rk.addr.Context)
	if !ok {
		return false, nil
	}
	return cs.IsFile(rk.addr.Namespace, rk.key.Flat()), nil
}

// IsDirectory reports whether path resolves to an internal tree node.
func (e *MeteorEngine) IsDirectory(path string) (bool, error) {
	rk, err := e.resolve(op, path)
	if err != nil {
		return false, err
	}
	cs, ok := e.storage.Lookup(rk.addr.Context)
	if !ok {
		return false, nil
	}
	return cs.IsDirectory(rk.addr.Namespace, rk.key.Flat()), nil
}

// HasDefault reports whether the directory path names has a ".index"
// child.
func (e *MeteorEngine) HasDefault(path string) (bool, error) {
	rk, err := e.resolve(op, path)
	if err != nil {
		return false, err
	}
	cs, ok := e.storage.Lookup(rk.addr.Context)
	if !ok {
		return false, nil
	}
	return cs.HasDefault(rk.addr.Namespace, rk.key.Flat()), nil
}

// GetDefault reads the directory path's ".index" value, if any.
func (e *MeteorEngine) GetDefault(path string) (string, bool, error) {
	rk, err := e.resolve(op, path)
	if err != nil {
		return "", false, err
	}
	cs, ok := e.storage.Lookup(rk.addr.Context)
	if !ok {
		return "", false, nil
	}
	v, ok := cs.GetDefault(rk.addr.Namespace, rk.key.Flat())
	return v, ok, nil
}

// StoreToken writes key=value at the cursor's current (context,
// namespace), as TokenStream's data tokens do.
func (e *MeteorEngine) StoreToken(key, value string) error {
	return e.Set(key, value)
}

// SwitchContext moves the cursor to ctx, leaving the namespace unchanged.
func (e *MeteorEngine) SwitchContext(ctx types.Context) error {
	if err := addressing.ValidateContext(ctx); err != nil {
		return err
	}
	e.cursor.Context = ctx
	return nil
}

// SwitchNamespace moves the cursor to ns within the current context.
func (e *MeteorEngine) SwitchNamespace(ns types.Namespace) error {
	if _, err := addressing.ValidateNamespace(ns, e.profile); err != nil {
		return err
	}
	e.cursor.Namespace = ns
	return nil
}

// ResetCursor restores the cursor to (app, main).
func (e *MeteorEngine) ResetCursor() {
	e.cursor = types.DefaultCursor()
}

func splitColon(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}
