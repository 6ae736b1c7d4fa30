package engine

import "github.com/oodx/meteor/pkg/types"

// Cursor returns the engine's current (context, namespace).
func (e *MeteorEngine) Cursor() types.Cursor {
	return e.cursor
}

// CursorGuard is an RAII-style scoped cursor save/restore. CursorGuard
// nests: each guard remembers only the cursor at its own construction and
// restores exactly that, regardless of what guards constructed after it
// do to the cursor in the meantime.
type CursorGuard struct {
	engine *MeteorEngine
	saved  types.Cursor
	done   bool
}

// CursorGuardScope captures the current cursor and returns a guard whose
// Release restores it. Release is safe to call via defer, including when
// the deferred call runs during a panic unwind — restoration does not
// depend on the panic having been recovered first.
func (e *MeteorEngine) CursorGuardScope() *CursorGuard {
	return &CursorGuard{engine: e, saved: e.cursor}
}

// Release restores the engine's cursor to what it was when the guard was
// created. Calling Release more than once is a no-op.
func (g *CursorGuard) Release() {
	if g.done {
		return
	}
	g.engine.cursor = g.saved
	g.done = true
}
