package types

import "fmt"

// Kind classifies a Meteor error without requiring callers to pattern-match
// on message text.
type Kind string

const (
	KindInvalidPath           Kind = "invalid_path"
	KindInvalidKey            Kind = "invalid_key"
	KindInvalidContext        Kind = "invalid_context"
	KindNamespaceTooDeep      Kind = "namespace_too_deep"
	KindTypeConflict          Kind = "type_conflict"
	KindUnknownControlCommand Kind = "unknown_control_command"
	KindLimitExceeded         Kind = "limit_exceeded"
	KindInternalInvariant     Kind = "internal_invariant"
	KindMixedAddress          Kind = "mixed_address"
)

// Error is Meteor's single error type. Every failure path in pkg/engine,
// pkg/stream, pkg/storage, pkg/notation, and pkg/addressing returns one of
// these rather than panicking; Error() renders the "<op> failed: <reason>"
// format spec.md S7 requires of every user-visible error.
type Error struct {
	Op     string
	Kind   Kind
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Op, e.Reason)
}

// Errf builds an *Error with a formatted reason.
func Errf(op string, kind Kind, format string, args ...any) *Error {
	return &Error{Op: op, Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is a *Error of the given Kind.
func IsKind(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
