/*
Package escape implements the quote- and bracket-aware splitting
(smart_split, spec.md S4.8) and JSON-style backslash escape codec
(spec.md S4.6, S6.1) shared by both stream parsers.

smart_split is a hand-rolled single-pass scanner rather than a
generic parser-combinator grammar: the delimiter positions it reports
depend on live quote/bracket depth, which is exactly the kind of
stateful, left-to-right scan a declarative grammar library is the wrong
tool for (see DESIGN.md's note on alecthomas/participle).
*/
package escape

import (
	"strconv"
	"strings"

	"github.com/oodx/meteor/pkg/types"
)

const op = "escape"

// SmartSplit splits input on delim wherever delim occurs outside balanced
// '"'/'\'' quotes and outside balanced '[...]' groups. An unterminated
// quote is a hard failure: SmartSplit returns no parts at all, only an
// error for the whole input. Callers that must keep the effects of tokens
// before the failure point scan incrementally instead (see pkg/stream).
func SmartSplit(input string, delim byte) ([]string, error) {
	var (
		parts       []string
		start       int
		quote       byte // 0, '"', or '\''
		bracketDepth int
	)

	for i := 0; i < len(input); i++ {
		c := input[i]
		switch {
		case quote != 0:
			if c == '\\' && i+1 < len(input) {
				i++ // skip escaped character, including an escaped quote
				continue
			}
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '[':
			bracketDepth++
		case c == ']':
			if bracketDepth > 0 {
				bracketDepth--
			}
		case c == delim && bracketDepth == 0:
			parts = append(parts, input[start:i])
			start = i + 1
		}
	}
	if quote != 0 {
		return nil, types.Errf(op, types.KindInvalidPath, "unterminated quote in %q", input)
	}
	parts = append(parts, input[start:])
	return parts, nil
}

// Unquote strips a single layer of matching '"'/'\'' quotes from s and
// decodes JSON-style backslash escapes inside them (\\, \", \n, \t, \r,
// \0, \xNN, \uNNNN). Unquoted values pass through unchanged.
func Unquote(s string) (string, error) {
	if len(s) < 2 {
		return s, nil
	}
	q := s[0]
	if (q != '"' && q != '\'') || s[len(s)-1] != q {
		return s, nil
	}
	body := s[1 : len(s)-1]

	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(body) {
			return "", types.Errf(op, types.KindInvalidPath, "dangling escape in %q", s)
		}
		switch body[i] {
		case '\\':
			b.WriteByte('\\')
		case '"':
			b.WriteByte('"')
		case '\'':
			b.WriteByte('\'')
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '0':
			b.WriteByte(0)
		case 'x':
			if i+2 >= len(body) {
				return "", types.Errf(op, types.KindInvalidPath, "short \\x escape in %q", s)
			}
			v, err := strconv.ParseUint(body[i+1:i+3], 16, 8)
			if err != nil {
				return "", types.Errf(op, types.KindInvalidPath, "bad \\x escape in %q", s)
			}
			b.WriteByte(byte(v))
			i += 2
		case 'u':
			if i+4 >= len(body) {
				return "", types.Errf(op, types.KindInvalidPath, "short \\u escape in %q", s)
			}
			v, err := strconv.ParseUint(body[i+1:i+5], 16, 32)
			if err != nil {
				return "", types.Errf(op, types.KindInvalidPath, "bad \\u escape in %q", s)
			}
			b.WriteRune(rune(v))
			i += 4
		default:
			return "", types.Errf(op, types.KindInvalidPath, "unknown escape \\%c in %q", body[i], s)
		}
	}
	return b.String(), nil
}

// Quote renders v as a double-quoted value with the same escape table
// Unquote decodes, for use by Meteor's Display/Stringer paths.
func Quote(v string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range v {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case 0:
			b.WriteString(`\0`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// NeedsQuoting reports whether v contains characters (';', ':', '[', ']',
// a quote, or a space, tab or newline) that require quoting to survive
// smart_split round-trip.
func NeedsQuoting(v string) bool {
	return strings.ContainsAny(v, ";:[] \t\n\"'")
}
