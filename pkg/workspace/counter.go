package workspace

import "sync/atomic"

// counterCell is the workspace's interior-mutability primitive: a
// single-threaded engine has exactly one writer, but read-only iterators
// and views hold the engine by immutable reference and still need to bump
// hit/miss/iteration counts through that shared borrow. An atomic int64
// gives them a safe way to do that without a mutex, matching spec.md S9's
// call for a "Cell-style" primitive rather than full atomics-for-
// concurrency (none is needed; this is just borrow-friendly, not
// thread-safe-by-design).
type counterCell struct {
	v atomic.Int64
}

func (c *counterCell) add(n int64)  { c.v.Add(n) }
func (c *counterCell) get() int64   { return c.v.Load() }
func (c *counterCell) reset()       { c.v.Store(0) }
