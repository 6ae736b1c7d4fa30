/*
Package engine implements MeteorEngine, the single entry point that owns a
StorageData and an EngineWorkspace and exposes Meteor's full operation set:
CRUD against the hybrid store, cursor-relative writes, control commands
with an audit trail, and read-only iterators/views over the current state.

A MeteorEngine is not safe for concurrent use: spec.md's concurrency model
is single-writer, and the only "sharing" a caller gets is the immutable
borrow iterators and views represent for their own lifetime.
*/
package engine
