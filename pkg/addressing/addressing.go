/*
Package addressing implements Meteor's path grammar: parsing
"ctx:ns:key" (and its 1- and 2-part shorthands), validating Context and
Namespace identifiers, and enforcing namespace depth thresholds against a
pkg/limits.Profile (spec.md S4.2).
*/
package addressing

import (
	"strings"

	"github.com/oodx/meteor/pkg/limits"
	"github.com/oodx/meteor/pkg/types"
)

const op = "addressing"

// DepthSignal reports where a namespace falls relative to a Profile's
// warning/error thresholds.
type DepthSignal int

const (
	DepthClear DepthSignal = iota
	DepthWarning
)

// Address is a fully resolved (context, namespace, key) triple.
type Address struct {
	Context   types.Context
	Namespace types.Namespace
	Key       string
}

// ParseMeteorPath accepts 1, 2, or 3 colon-separated parts and fills in
// defaultCtx/defaultNS for the parts a shorter form omits. Three or more
// colons (four or more parts) fails with InvalidPath("too many colons").
func ParseMeteorPath(s string, defaultCtx types.Context, defaultNS types.Namespace, prof limits.Profile) (Address, DepthSignal, error) {
	parts := strings.Split(s, ":")
	var addr Address
	switch len(parts) {
	case 1:
		addr = Address{Context: defaultCtx, Namespace: defaultNS, Key: parts[0]}
	case 2:
		addr = Address{Context: defaultCtx, Namespace: types.Namespace(parts[0]), Key: parts[1]}
	case 3:
		addr = Address{Context: types.Context(parts[0]), Namespace: types.Namespace(parts[1]), Key: parts[2]}
	default:
		return Address{}, DepthClear, types.Errf(op, types.KindInvalidPath, "too many colons in %q", s)
	}

	if err := ValidateContext(addr.Context); err != nil {
		return Address{}, DepthClear, err
	}
	signal, err := ValidateNamespace(addr.Namespace, prof)
	if err != nil {
		return Address{}, DepthClear, err
	}
	if addr.Key == "" {
		return Address{}, DepthClear, types.Errf(op, types.KindInvalidPath, "empty key in %q", s)
	}
	return addr, signal, nil
}

// ValidateContext requires a non-empty identifier:
// [A-Za-z_][A-Za-z0-9_-]*.
func ValidateContext(ctx types.Context) error {
	s := string(ctx)
	if s == "" {
		return types.Errf(op, types.KindInvalidContext, "empty context")
	}
	if !validContextChar(s[0], true) {
		return types.Errf(op, types.KindInvalidContext, "context %q must start with a letter or underscore", s)
	}
	for i := 1; i < len(s); i++ {
		if !validContextChar(s[i], false) {
			return types.Errf(op, types.KindInvalidContext, "context %q has an invalid character", s)
		}
	}
	return nil
}

func validContextChar(c byte, first bool) bool {
	switch {
	case c == '_':
		return true
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return !first
	case c == '-':
		return !first
	default:
		return false
	}
}

// ValidateNamespace checks segment syntax ([A-Za-z_][A-Za-z0-9_]*,
// dot-separated) and depth against prof's thresholds. MainNamespace and
// the empty namespace are always clear, depth 0.
func ValidateNamespace(ns types.Namespace, prof limits.Profile) (DepthSignal, error) {
	if ns == "" || ns == types.MainNamespace {
		return DepthClear, nil
	}

	segments := ns.Segments()
	for _, seg := range segments {
		if err := validSegment(seg, prof); err != nil {
			return DepthClear, err
		}
	}

	depth := len(segments)
	if depth >= prof.ErrorDepth {
		return DepthClear, types.Errf(op, types.KindNamespaceTooDeep,
			"namespace %q has depth %d, at or beyond the error threshold %d", ns, depth, prof.ErrorDepth)
	}
	if depth >= prof.WarningDepth {
		return DepthWarning, nil
	}
	return DepthClear, nil
}

func validSegment(seg string, prof limits.Profile) error {
	if seg == "" {
		return types.Errf(op, types.KindInvalidPath, "empty namespace segment")
	}
	if len(seg) > prof.MaxNamespacePartLength {
		return types.Errf(op, types.KindLimitExceeded, "namespace segment %q exceeds max length %d", seg, prof.MaxNamespacePartLength)
	}
	for i := 0; i < len(seg); i++ {
		c := seg[i]
		isLetter := c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
		isDigit := c >= '0' && c <= '9'
		isUnderscore := c == '_'
		if i == 0 && !(isLetter || isUnderscore) {
			return types.Errf(op, types.KindInvalidPath, "namespace segment %q must start with a letter or underscore", seg)
		}
		if !(isLetter || isDigit || isUnderscore) {
			return types.Errf(op, types.KindInvalidPath, "namespace segment %q has an invalid character", seg)
		}
	}
	return nil
}

// CanonicalKey renders the "<namespace>:<dotted.path>" form spec.md's
// glossary calls the canonical key, or just the key when ns is main.
func CanonicalKey(ns types.Namespace, flatKey string) string {
	if ns == "" || ns == types.MainNamespace {
		return flatKey
	}
	return string(ns) + ":" + flatKey
}
