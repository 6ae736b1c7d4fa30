package engine

import (
	"github.com/oodx/meteor/pkg/addressing"
	"github.com/oodx/meteor/pkg/notation"
	"github.com/oodx/meteor/pkg/types"
)

// resolvedKey pairs a parsed address with the TokenKey its key portion
// notates, so callers have both the canonical flat form and the original
// bracket notation without re-parsing.
type resolvedKey struct {
	addr addressing.Address
	key  types.TokenKey
}

// resolve parses path against the cursor's current context/namespace as
// defaults and validates the key portion's bracket notation.
func (e *MeteorEngine) resolve(op, path string) (resolvedKey, error) {
	addr, signal, err := addressing.ParseMeteorPath(path, e.cursor.Context, e.cursor.Namespace, e.profile)
	if err != nil {
		return resolvedKey{}, err
	}
	_ = signal // callers that care about depth warnings read it via addressing.ValidateNamespace directly

	if len(addr.Key) > e.profile.MaxKeyLength {
		return resolvedKey{}, types.Errf(op, types.KindLimitExceeded, "key %q exceeds max length %d", addr.Key, e.profile.MaxKeyLength)
	}

	key, err := notation.New(addr.Key)
	if err != nil {
		return resolvedKey{}, err
	}
	return resolvedKey{addr: addr, key: key}, nil
}
