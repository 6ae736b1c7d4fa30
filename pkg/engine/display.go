package engine

import (
	"strings"

	"github.com/oodx/meteor/pkg/addressing"
	"github.com/oodx/meteor/pkg/escape"
	"github.com/oodx/meteor/pkg/limits"
	"github.com/oodx/meteor/pkg/notation"
	"github.com/oodx/meteor/pkg/types"
)

// Render produces a Meteor's Display form:
// "<ctx>:<ns>:<k1>=<v1>;<k2>=<v2>;...", keys in their original bracket
// notation and token order equal to m.Tokens' order (callers build m via
// MeteorFor/Meteors, which already order tokens by key_order).
func Render(m types.Meteor) string {
	var b strings.Builder
	b.WriteString(string(m.Context))
	b.WriteByte(':')
	b.WriteString(string(m.Namespace))
	b.WriteByte(':')
	for i, tok := range m.Tokens {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(tok.Key.Original())
		b.WriteByte('=')
		v := tok.Value
		if escape.NeedsQuoting(v) {
			v = escape.Quote(v)
		}
		b.WriteString(v)
	}
	return b.String()
}

// Parse reverses Render, reproducing the same (key, value) tokens in the
// same order (spec.md S8.1 invariant 7). Quoted values are unescaped with
// pkg/escape; the split on ';' is quote- and bracket-aware so a value
// containing those characters, once quoted, never fractures the token
// list.
func Parse(s string, prof limits.Profile) (types.Meteor, error) {
	ctx, ns, rest, err := splitMeteorHead(s)
	if err != nil {
		return types.Meteor{}, err
	}
	ctxVal := types.Context(ctx)
	if err := addressing.ValidateContext(ctxVal); err != nil {
		return types.Meteor{}, err
	}
	nsVal := types.Namespace(ns)
	if _, err := addressing.ValidateNamespace(nsVal, prof); err != nil {
		return types.Meteor{}, err
	}

	var tokens []types.Token
	if rest != "" {
		parts, err := escape.SmartSplit(rest, ';')
		if err != nil {
			return types.Meteor{}, types.Errf(op, types.KindInvalidPath, "malformed meteor body: %v", err)
		}
		for _, part := range parts {
			tok, err := parseToken(part)
			if err != nil {
				return types.Meteor{}, err
			}
			tokens = append(tokens, tok)
		}
	}

	return types.Meteor{Context: ctxVal, Namespace: nsVal, Tokens: tokens}, nil
}

func parseToken(part string) (types.Token, error) {
	eqParts, err := escape.SmartSplit(part, '=')
	if err != nil || len(eqParts) < 2 {
		return types.Token{}, types.Errf(op, types.KindInvalidPath, "malformed token %q: missing '='", part)
	}
	keyStr := eqParts[0]
	valStr := strings.Join(eqParts[1:], "=")

	key, err := notation.New(keyStr)
	if err != nil {
		return types.Token{}, err
	}
	value := valStr
	if strings.HasPrefix(valStr, `"`) || strings.HasPrefix(valStr, "'") {
		value, err = escape.Unquote(valStr)
		if err != nil {
			return types.Token{}, types.Errf(op, types.KindInvalidPath, "malformed quoted value %q: %v", valStr, err)
		}
	}
	return types.Token{Key: key, Value: value}, nil
}

// splitMeteorHead extracts "<ctx>:<ns>" from the front of s, leaving the
// token body (s may legally contain further colons inside bracketed keys
// or quoted values, so this only looks at the first two unquoted,
// unbracketed colons).
func splitMeteorHead(s string) (ctx, ns, rest string, err error) {
	parts, splitErr := escape.SmartSplit(s, ':')
	if splitErr != nil {
		return "", "", "", types.Errf(op, types.KindInvalidPath, "malformed meteor header: %v", splitErr)
	}
	if len(parts) < 3 {
		return "", "", "", types.Errf(op, types.KindInvalidPath, "meteor display form needs ctx:ns:body, got %q", s)
	}
	ctx = parts[0]
	ns = parts[1]
	rest = strings.Join(parts[2:], ":")
	return ctx, ns, rest, nil
}
