package stream

import (
	"strings"

	"github.com/oodx/meteor/pkg/engine"
	"github.com/oodx/meteor/pkg/escape"
	"github.com/oodx/meteor/pkg/types"
)

// TokenStream is the folding dialect: control tokens ("ns=", "ctx=",
// "ctl:verb=target") mutate the engine's cursor or invoke a control
// command; a bare "key=value" stores at the current cursor; an explicit
// "ctx:ns:key=value" stores at that address without moving the cursor.
type TokenStream struct {
	engine *engine.MeteorEngine
}

// NewTokenStream returns a TokenStream bound to eng. Cursor state carries
// across separate Process calls on the same engine.
func NewTokenStream(eng *engine.MeteorEngine) *TokenStream {
	return &TokenStream{engine: eng}
}

// TokenError pairs one malformed or rejected token with the error it
// produced; Process keeps going past these (spec.md S7's per-token
// propagation policy) rather than aborting the whole call.
type TokenError struct {
	Token string
	Err   error
}

// Process applies every token in input in order, returning the
// already-applied count and any per-token errors. A non-nil returned
// error is fatal to the remainder of the call (an unterminated quote
// left the lexer unable to find further token boundaries); tokens
// already applied before that point are not rolled back.
func (t *TokenStream) Process(input string) (applied int, tokenErrs []TokenError, fatal error) {
	fatal = scanDelimited(input, ';', func(raw string) {
		tok := strings.TrimSpace(raw)
		if tok == "" {
			return
		}
		if err := t.applyToken(tok); err != nil {
			tokenErrs = append(tokenErrs, TokenError{Token: tok, Err: err})
			return
		}
		applied++
	})
	return applied, tokenErrs, fatal
}

func (t *TokenStream) applyToken(tok string) error {
	eqParts, err := escape.SmartSplit(tok, '=')
	if err != nil {
		return err
	}
	if len(eqParts) < 2 {
		return types.Errf(op, types.KindInvalidPath, "token %q is missing '='", tok)
	}
	key := eqParts[0]
	value, err := unquoteIfQuoted(strings.Join(eqParts[1:], "="))
	if err != nil {
		return err
	}

	switch {
	case key == "ns":
		return t.engine.SwitchNamespace(types.Namespace(value))
	case key == "ctx":
		return t.engine.SwitchContext(types.Context(value))
	case strings.HasPrefix(key, "ctl:"):
		verb := strings.TrimPrefix(key, "ctl:")
		return t.engine.ExecuteControlCommand(types.ControlCommandKind(verb), value)
	case strings.Contains(key, ":"):
		return t.engine.Set(key, value)
	default:
		return t.engine.StoreToken(key, value)
	}
}

func unquoteIfQuoted(s string) (string, error) {
	if strings.HasPrefix(s, `"`) || strings.HasPrefix(s, "'") {
		return escape.Unquote(s)
	}
	return s, nil
}
