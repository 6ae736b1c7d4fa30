package stream

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oodx/meteor/pkg/engine"
	"github.com/oodx/meteor/pkg/limits"
	"github.com/oodx/meteor/pkg/types"
)

func newTestEngine() *engine.MeteorEngine {
	return engine.New(limits.Default)
}

func TestTokenStreamFoldsCursorAcrossTokens(t *testing.T) {
	eng := newTestEngine()
	ts := NewTokenStream(eng)

	applied, tokenErrs, fatal := ts.Process("ctx=user;ns=profile;name=jose;age=30")
	assert.NoError(t, fatal)
	assert.Empty(t, tokenErrs)
	assert.Equal(t, 4, applied)

	v, ok, err := eng.Get("user:profile:name")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "jose", v)
}

func TestTokenStreamCursorPersistsAcrossProcessCalls(t *testing.T) {
	eng := newTestEngine()
	ts := NewTokenStream(eng)

	_, _, fatal := ts.Process("ctx=user;ns=profile")
	assert.NoError(t, fatal)

	_, _, fatal = ts.Process("name=jose")
	assert.NoError(t, fatal)

	v, ok, _ := eng.Get("user:profile:name")
	assert.True(t, ok)
	assert.Equal(t, "jose", v)
}

func TestTokenStreamExplicitAddressDoesNotMoveCursor(t *testing.T) {
	eng := newTestEngine()
	ts := NewTokenStream(eng)

	_, _, fatal := ts.Process("other:ui:theme=dark")
	assert.NoError(t, fatal)

	cur := eng.Cursor()
	assert.Equal(t, types.DefaultContext, cur.Context)
	assert.Equal(t, types.MainNamespace, cur.Namespace)

	v, ok, _ := eng.Get("other:ui:theme")
	assert.True(t, ok)
	assert.Equal(t, "dark", v)
}

func TestTokenStreamControlToken(t *testing.T) {
	eng := newTestEngine()
	ts := NewTokenStream(eng)

	_, _, fatal := ts.Process("k=v")
	assert.NoError(t, fatal)

	applied, tokenErrs, fatal := ts.Process("ctl:delete=app:main:k")
	assert.NoError(t, fatal)
	assert.Empty(t, tokenErrs)
	assert.Equal(t, 1, applied)

	exists, _ := eng.Exists("app:main:k")
	assert.False(t, exists)

	history := eng.History()
	assert.Len(t, history, 1)
	assert.Equal(t, types.ControlDelete, history[0].Kind)
}

func TestTokenStreamPerTokenErrorsDoNotAbort(t *testing.T) {
	eng := newTestEngine()
	ts := NewTokenStream(eng)

	applied, tokenErrs, fatal := ts.Process("bad-no-equals;good=value")
	assert.NoError(t, fatal)
	assert.Equal(t, 1, applied)
	assert.Len(t, tokenErrs, 1)
	assert.Equal(t, "bad-no-equals", tokenErrs[0].Token)

	v, ok, _ := eng.Get("good")
	assert.True(t, ok)
	assert.Equal(t, "value", v)
}

func TestTokenStreamUnterminatedQuoteIsFatalButPreservesPriorApplies(t *testing.T) {
	eng := newTestEngine()
	ts := NewTokenStream(eng)

	applied, _, fatal := ts.Process(`first=ok;second="unterminated`)
	assert.Error(t, fatal)
	assert.Equal(t, 1, applied, "the token applied before the fatal unterminated quote must survive")

	v, ok, _ := eng.Get("first")
	assert.True(t, ok)
	assert.Equal(t, "ok", v)
}

func TestMeteorStreamRequiresExplicitAddress(t *testing.T) {
	eng := newTestEngine()
	ms := NewMeteorStream(eng)

	applied, tokenErrs, fatal := ms.Process("app:ui:button=click")
	assert.NoError(t, fatal)
	assert.Empty(t, tokenErrs)
	assert.Equal(t, 1, applied)

	v, ok, _ := eng.Get("app:ui:button")
	assert.True(t, ok)
	assert.Equal(t, "click", v)
}

func TestMeteorStreamBareKeyWithNoGroupRejectedAsMixedAddress(t *testing.T) {
	eng := newTestEngine()
	ms := NewMeteorStream(eng)

	applied, tokenErrs, fatal := ms.Process("button=click")
	assert.NoError(t, fatal)
	assert.Equal(t, 0, applied)
	if assert.Len(t, tokenErrs, 1) {
		assert.True(t, types.IsKind(tokenErrs[0].Err, types.KindMixedAddress))
	}
}

// TestMeteorStreamBareKeyInheritsEstablishedGroup covers spec scenario S2:
// once a meteor's first token establishes an explicit (ctx, ns) group,
// later bare "key=value" tokens in the same meteor inherit that address
// rather than needing to repeat it.
func TestMeteorStreamBareKeyInheritsEstablishedGroup(t *testing.T) {
	eng := newTestEngine()
	ms := NewMeteorStream(eng)

	applied, tokenErrs, fatal := ms.Process("app:ui:button=click;theme=dark :;: user:main:profile=admin")
	assert.NoError(t, fatal)
	assert.Empty(t, tokenErrs)
	assert.Equal(t, 3, applied)

	v, ok, _ := eng.Get("app:ui:button")
	assert.True(t, ok)
	assert.Equal(t, "click", v)

	v, ok, _ = eng.Get("app:ui:theme")
	assert.True(t, ok)
	assert.Equal(t, "dark", v)

	v, ok, _ = eng.Get("user:main:profile")
	assert.True(t, ok)
	assert.Equal(t, "admin", v)
}

func TestMeteorStreamStrictRejectsMixedAddressesInOneMeteor(t *testing.T) {
	eng := newTestEngine()
	ms := NewMeteorStream(eng)

	applied, tokenErrs, fatal := ms.Process("app:ui:a=1;other:ui:b=2")
	assert.NoError(t, fatal)
	assert.Equal(t, 1, applied)
	if assert.Len(t, tokenErrs, 1) {
		assert.True(t, types.IsKind(tokenErrs[0].Err, types.KindMixedAddress))
	}

	_, ok, _ := eng.Get("app:ui:a")
	assert.True(t, ok)
	_, ok, _ = eng.Get("other:ui:b")
	assert.False(t, ok)
}

func TestMeteorStreamLenientAllowsMixedAddresses(t *testing.T) {
	eng := newTestEngine()
	ms := NewMeteorStream(eng, WithLenientAddressing())

	applied, tokenErrs, fatal := ms.Process("app:ui:a=1;other:ui:b=2")
	assert.NoError(t, fatal)
	assert.Empty(t, tokenErrs)
	assert.Equal(t, 2, applied)

	_, ok, _ := eng.Get("app:ui:a")
	assert.True(t, ok)
	_, ok, _ = eng.Get("other:ui:b")
	assert.True(t, ok)
}

func TestMeteorStreamRejectsNsAndCtxControlTokens(t *testing.T) {
	eng := newTestEngine()
	ms := NewMeteorStream(eng)

	_, tokenErrs, fatal := ms.Process("ns=profile")
	assert.NoError(t, fatal)
	assert.Len(t, tokenErrs, 1)
}

func TestMeteorStreamAllowsControlTokenRegardlessOfAddressGroup(t *testing.T) {
	eng := newTestEngine()
	assert.NoError(t, eng.Set("app:main:k", "v"))
	ms := NewMeteorStream(eng)

	applied, tokenErrs, fatal := ms.Process("app:main:a=1;ctl:delete=app:main:k")
	assert.NoError(t, fatal)
	assert.Empty(t, tokenErrs)
	assert.Equal(t, 2, applied)

	exists, _ := eng.Exists("app:main:k")
	assert.False(t, exists)
}

func TestMeteorStreamEnforcesMaxMeteorsPerBatch(t *testing.T) {
	eng := engine.New(limits.Strict)
	ms := NewMeteorStream(eng)

	var sb strings.Builder
	for i := 0; i <= limits.Strict.MaxMeteorsPerBatch; i++ {
		if i > 0 {
			sb.WriteString(" :;: ")
		}
		sb.WriteString("app:ui:k=v")
	}

	applied, tokenErrs, fatal := ms.Process(sb.String())
	assert.NoError(t, fatal)
	assert.Equal(t, limits.Strict.MaxMeteorsPerBatch, applied)
	if assert.Len(t, tokenErrs, 1) {
		assert.True(t, types.IsKind(tokenErrs[0].Err, types.KindLimitExceeded))
	}
}

func TestMeteorStreamDelimiterSplitsOnMultipleMeteors(t *testing.T) {
	eng := newTestEngine()
	ms := NewMeteorStream(eng)

	applied, tokenErrs, fatal := ms.Process("app:ui:a=1:;:app:ui:b=2")
	assert.NoError(t, fatal)
	assert.Empty(t, tokenErrs)
	assert.Equal(t, 2, applied)

	_, ok, _ := eng.Get("app:ui:a")
	assert.True(t, ok)
	_, ok, _ = eng.Get("app:ui:b")
	assert.True(t, ok)
}
