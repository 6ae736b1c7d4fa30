/*
Package notation implements Meteor's bracket ↔ flat key transform
(spec.md S3.1, S4.1, S6.2).

# Transform rules

	name[i,j,...]  (all-numeric indices) -> name__i_<i>_<j>_...
	name[]         (append)              -> name__i_APPEND
	name[label]    (non-numeric label)   -> name__label

A label may start with a digit ("sections[10_setup]"), unlike a plain
identifier or a directory path segment — see validLabel.

The original notation is cached verbatim on construction; ToNotation never
recomputes it from the flat form. flat_to_notation exists separately as a
best-effort inverse for flat strings that entered the system without ever
being wrapped in a TokenKey (e.g. an external import).
*/
package notation

import (
	"strconv"
	"strings"

	"github.com/oodx/meteor/pkg/types"
)

const op = "notation"

// indexKey is the reserved key name (pkg/storage.IndexKey) that holds a
// directory's default value. It is one leaf segment, not split on its
// leading dot.
const indexKey = ".index"

// New validates original against the bracket grammar and returns a
// TokenKey carrying both the original notation and its canonical flat
// form. A key may itself be a dotted path ("user.name"): every segment
// but the last is a plain identifier that becomes a directory in the
// storage tree (spec.md S3.1's "<dotted.path>"); bracket notation is only
// legal on the final, leaf segment. Any bracket content other than a
// comma-separated list of non-negative decimal integers, an empty
// bracket, or a single label (see validLabel) fails with KindInvalidKey.
// The reserved key ".index" is accepted as is.
func New(original string) (types.TokenKey, error) {
	if original == indexKey {
		return types.RawTokenKey(original, original), nil
	}
	segments := strings.Split(original, ".")
	leaf := segments[len(segments)-1]
	dirs := segments[:len(segments)-1]

	for _, d := range dirs {
		if !validIdent(d) {
			return types.TokenKey{}, types.Errf(op, types.KindInvalidKey, "invalid path segment %q in %q", d, original)
		}
	}

	name, bracket, hasBracket, err := split(leaf)
	if err != nil {
		return types.TokenKey{}, err
	}

	flatLeaf := name
	if hasBracket {
		flatLeaf, err = flatten(name, bracket)
		if err != nil {
			return types.TokenKey{}, err
		}
	}

	flat := flatLeaf
	if len(dirs) > 0 {
		flat = strings.Join(dirs, ".") + "." + flatLeaf
	}
	return types.RawTokenKey(original, flat), nil
}

// PathSegments splits a TokenKey's flat form into the directory segments
// leading to its leaf, used by pkg/storage to walk/build the tree index.
func PathSegments(flat string) []string {
	if flat == indexKey {
		return []string{flat}
	}
	return strings.Split(flat, ".")
}

// split pulls "name" and the inside of "[...]" out of a notation string.
// hasBracket is false when there is no '[' at all.
func split(s string) (name, bracket string, hasBracket bool, err error) {
	open := strings.IndexByte(s, '[')
	if open < 0 {
		if s == "" {
			return "", "", false, types.Errf(op, types.KindInvalidKey, "empty key")
		}
		if !validIdent(s) {
			return "", "", false, types.Errf(op, types.KindInvalidKey, "invalid key %q", s)
		}
		return s, "", false, nil
	}
	if !strings.HasSuffix(s, "]") {
		return "", "", false, types.Errf(op, types.KindInvalidKey, "unterminated bracket in %q", s)
	}
	name = s[:open]
	if !validIdent(name) {
		return "", "", false, types.Errf(op, types.KindInvalidKey, "invalid key name %q", name)
	}
	bracket = s[open+1 : len(s)-1]
	if strings.ContainsAny(bracket, "[]") {
		return "", "", false, types.Errf(op, types.KindInvalidKey, "nested brackets in %q", s)
	}
	return name, bracket, true, nil
}

func flatten(name, bracket string) (string, error) {
	if bracket == "" {
		return name + "__i_APPEND", nil
	}

	parts := strings.Split(bracket, ",")
	allNumeric := true
	for _, p := range parts {
		if !isDecimalUint(p) {
			allNumeric = false
			break
		}
	}

	if allNumeric {
		var b strings.Builder
		b.WriteString(name)
		b.WriteString("__i")
		for _, p := range parts {
			b.WriteByte('_')
			b.WriteString(p)
		}
		return b.String(), nil
	}

	if len(parts) != 1 {
		return "", types.Errf(op, types.KindInvalidKey, "mixed numeric/label indices in %q", bracket)
	}
	label := parts[0]
	if !validLabel(label) {
		return "", types.Errf(op, types.KindInvalidKey, "invalid bracket label %q", label)
	}
	return name + "__" + label, nil
}

func isDecimalUint(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.ParseUint(s, 10, 64)
	return err == nil
}

func validIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// validLabel is validIdent's grammar without the leading-letter rule: a
// bracket label (unlike a directory/namespace segment) may start with a
// digit, so ordering labels like "sections[10_setup]" are legal. It is
// never used to validate a path segment, only the text inside "[...]".
func validLabel(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r == '_':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// FlatToNotation performs a best-effort inverse of the flat transform for
// strings that never passed through New, e.g. keys discovered by walking
// the storage tree directly. It is not guaranteed total: flat forms that
// are ambiguous (a label that happens to contain "__i_") round-trip as
// themselves rather than guessing wrong.
func FlatToNotation(flat string) string {
	dot := strings.LastIndex(flat, ".")
	prefix := ""
	leaf := flat
	if dot >= 0 {
		prefix, leaf = flat[:dot+1], flat[dot+1:]
	}
	return prefix + flatLeafToNotation(leaf)
}

func flatLeafToNotation(flat string) string {
	idx := strings.LastIndex(flat, "__i_")
	if idx >= 0 {
		name := flat[:idx]
		rest := flat[idx+len("__i_"):]
		if rest == "APPEND" {
			return name + "[]"
		}
		indices := strings.Split(rest, "_")
		allNumeric := true
		for _, p := range indices {
			if !isDecimalUint(p) {
				allNumeric = false
				break
			}
		}
		if allNumeric {
			return name + "[" + strings.Join(indices, ",") + "]"
		}
		return flat
	}

	idx = strings.LastIndex(flat, "__")
	if idx > 0 {
		name := flat[:idx]
		label := flat[idx+2:]
		if validIdent(name) && validLabel(label) {
			return name + "[" + label + "]"
		}
	}
	return flat
}
