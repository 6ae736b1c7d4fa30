// Package limits holds the compile-time constants Meteor's core consumes
// in place of a runtime configuration file.
//
// Per the build-profile contract, the core never reads a config file at
// run time — a deployment picks one of the named Profile values below (or
// assembles its own literal) at build/wiring time.
package limits

// Profile bounds the resource usage of a MeteorEngine. The Max* fields
// other than MaxCommandHistory are hard caps: operations that would
// exceed one fail with a LimitExceeded error rather than silently
// truncating. MaxCommandHistory bounds the audit trail by dropping the
// oldest record on overflow.
type Profile struct {
	// WarningDepth is the namespace segment count at or above which
	// ValidateNamespace still succeeds but signals a depth warning.
	WarningDepth int
	// ErrorDepth is the namespace segment count at or above which
	// ValidateNamespace fails with NamespaceTooDeep.
	ErrorDepth int

	MaxContexts            int
	MaxNamespacePartLength int
	MaxKeyLength           int
	MaxValueLength         int
	MaxMeteorsPerBatch     int
	MaxCommandHistory      int

	// Instrumentation toggles the workspace's optional cache/iteration
	// counters and their mirrored Prometheus collectors. It is a
	// compile-time feature toggle, never flipped at run time.
	Instrumentation bool
}

// Default is a permissive profile suitable for most embeddings.
var Default = Profile{
	WarningDepth:           6,
	ErrorDepth:             10,
	MaxContexts:            256,
	MaxNamespacePartLength: 128,
	MaxKeyLength:           256,
	MaxValueLength:         1 << 20, // 1 MiB
	MaxMeteorsPerBatch:     10_000,
	MaxCommandHistory:      1_000,
	Instrumentation:        false,
}

// Strict is a tighter profile used by tests and by deployments that want
// to catch runaway namespace nesting early. spec.md S7 uses ErrorDepth: 4.
var Strict = Profile{
	WarningDepth:           2,
	ErrorDepth:             4,
	MaxContexts:            32,
	MaxNamespacePartLength: 64,
	MaxKeyLength:           128,
	MaxValueLength:         1 << 16, // 64 KiB
	MaxMeteorsPerBatch:     256,
	MaxCommandHistory:      100,
	Instrumentation:        true,
}
