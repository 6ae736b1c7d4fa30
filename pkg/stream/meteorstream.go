package stream

import (
	"strings"

	"github.com/oodx/meteor/pkg/engine"
	"github.com/oodx/meteor/pkg/escape"
	"github.com/oodx/meteor/pkg/types"
)

// MeteorStream is the explicit dialect: within one ":;:"-delimited
// meteor, the first data token must carry a full "ctx:ns:key=value"
// address, later bare "key=value" tokens inherit that address, and every
// later explicit address must match it unless lenient addressing was
// requested. "ns="/"ctx=" control tokens are rejected;
// "ctl:verb=target" remains legal since it carries no address of its
// own.
type MeteorStream struct {
	engine  *engine.MeteorEngine
	lenient bool
}

// Option configures a MeteorStream at construction.
type Option func(*MeteorStream)

// WithLenientAddressing disables the same-address check within a meteor:
// each token is applied at its own explicit address instead of failing
// on the first mismatch (spec.md S9 Open Question 1, resolved here as
// the opt-in policy).
func WithLenientAddressing() Option {
	return func(m *MeteorStream) { m.lenient = true }
}

// NewMeteorStream returns a MeteorStream bound to eng, strict by default.
func NewMeteorStream(eng *engine.MeteorEngine, opts ...Option) *MeteorStream {
	m := &MeteorStream{engine: eng}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Process applies every meteor in input, in order. Like TokenStream's
// Process, only an unterminated quote is fatal; everything else (mixed
// addresses in strict mode, a rejected control token, a malformed token,
// a batch over limits.Profile.MaxMeteorsPerBatch) is reported per-token
// and does not stop the remainder of the call.
func (m *MeteorStream) Process(input string) (applied int, tokenErrs []TokenError, fatal error) {
	maxMeteors := m.engine.Profile().MaxMeteorsPerBatch
	meteorCount := 0

	fatal = scanMeteors(input, func(meteor string) {
		meteor = strings.TrimSpace(meteor)
		if meteor == "" {
			return
		}
		meteorCount++
		if maxMeteors > 0 && meteorCount > maxMeteors {
			tokenErrs = append(tokenErrs, TokenError{Token: meteor, Err: types.Errf(op, types.KindLimitExceeded, "batch exceeds %d meteors", maxMeteors)})
			return
		}
		a, errs := m.processMeteor(meteor)
		applied += a
		tokenErrs = append(tokenErrs, errs...)
	})
	return applied, tokenErrs, fatal
}

// processMeteor applies every ';'-delimited token within one meteor. The
// first token to carry an explicit "ctx:ns:key" address establishes the
// meteor's group; a later bare "key=value" token (no ctx:ns prefix)
// inherits that group's address instead of needing to repeat it. In
// strict mode, a later token with an explicit address that differs from
// the group is rejected as MixedAddress; WithLenientAddressing lets each
// token address itself independently and simply re-anchors the group.
func (m *MeteorStream) processMeteor(meteor string) (applied int, tokenErrs []TokenError) {
	var groupCtx, groupNS string
	haveGroup := false

	_ = scanDelimited(meteor, ';', func(raw string) {
		tok := strings.TrimSpace(raw)
		if tok == "" {
			return
		}

		eqParts, err := escape.SmartSplit(tok, '=')
		if err != nil {
			tokenErrs = append(tokenErrs, TokenError{Token: tok, Err: err})
			return
		}
		if len(eqParts) < 2 {
			tokenErrs = append(tokenErrs, TokenError{Token: tok, Err: types.Errf(op, types.KindInvalidPath, "token %q is missing '='", tok)})
			return
		}
		key := eqParts[0]
		value, err := unquoteIfQuoted(strings.Join(eqParts[1:], "="))
		if err != nil {
			tokenErrs = append(tokenErrs, TokenError{Token: tok, Err: err})
			return
		}

		switch {
		case key == "ns" || key == "ctx":
			tokenErrs = append(tokenErrs, TokenError{Token: tok, Err: types.Errf(op, types.KindInvalidPath, "control token %q is not allowed in MeteorStream", key)})
			return

		case strings.HasPrefix(key, "ctl:"):
			verb := strings.TrimPrefix(key, "ctl:")
			if err := m.engine.ExecuteControlCommand(types.ControlCommandKind(verb), value); err != nil {
				tokenErrs = append(tokenErrs, TokenError{Token: tok, Err: err})
				return
			}
			applied++

		default:
			parts := strings.SplitN(key, ":", 3)
			resolvedKey := key

			switch {
			case len(parts) == 3:
				ctx, ns := parts[0], parts[1]
				if !haveGroup {
					groupCtx, groupNS = ctx, ns
					haveGroup = true
				} else if ctx != groupCtx || ns != groupNS {
					if !m.lenient {
						tokenErrs = append(tokenErrs, TokenError{Token: tok, Err: types.Errf(op, types.KindMixedAddress, "token %q addresses (%s:%s), meteor started at (%s:%s)", tok, ctx, ns, groupCtx, groupNS)})
						return
					}
					groupCtx, groupNS = ctx, ns
				}

			case haveGroup:
				resolvedKey = groupCtx + ":" + groupNS + ":" + key

			default:
				tokenErrs = append(tokenErrs, TokenError{Token: tok, Err: types.Errf(op, types.KindMixedAddress, "token %q needs an explicit ctx:ns:key address", tok)})
				return
			}

			if err := m.engine.Set(resolvedKey, value); err != nil {
				tokenErrs = append(tokenErrs, TokenError{Token: tok, Err: err})
				return
			}
			applied++
		}
	})

	return applied, tokenErrs
}
