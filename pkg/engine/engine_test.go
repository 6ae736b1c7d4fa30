package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oodx/meteor/pkg/limits"
	"github.com/oodx/meteor/pkg/types"
)

func newTestEngine() *MeteorEngine {
	return New(limits.Default)
}

func TestSetGetCursorRelative(t *testing.T) {
	e := newTestEngine()
	assert.NoError(t, e.Set("button", "click"))

	v, ok, err := e.Get("button")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "click", v)

	exists, err := e.Exists("button")
	assert.NoError(t, err)
	assert.True(t, exists)

	exists, err = e.Exists("missing")
	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestSetExplicitThreePartAddressDoesNotMoveCursor(t *testing.T) {
	e := newTestEngine()
	assert.NoError(t, e.Set("other:ui:theme", "dark"))

	cur := e.Cursor()
	assert.Equal(t, types.DefaultContext, cur.Context)
	assert.Equal(t, types.MainNamespace, cur.Namespace)

	v, ok, err := e.Get("other:ui:theme")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dark", v)
}

func TestSwitchContextAndNamespaceFoldIntoSubsequentCalls(t *testing.T) {
	e := newTestEngine()
	assert.NoError(t, e.SwitchContext("user"))
	assert.NoError(t, e.SwitchNamespace("profile"))
	assert.NoError(t, e.Set("name", "jose"))

	v, ok, err := e.Get("user:profile:name")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "jose", v)
}

func TestResetCursorRestoresDefault(t *testing.T) {
	e := newTestEngine()
	_ = e.SwitchContext("user")
	_ = e.SwitchNamespace("profile")
	e.ResetCursor()

	cur := e.Cursor()
	assert.Equal(t, types.DefaultContext, cur.Context)
	assert.Equal(t, types.MainNamespace, cur.Namespace)
}

func TestContextIsolationAcrossEngine(t *testing.T) {
	e := newTestEngine()
	assert.NoError(t, e.Set("app:main:shared", "a"))
	assert.NoError(t, e.Set("other:main:shared", "b"))

	v, _, _ := e.Get("app:main:shared")
	assert.Equal(t, "a", v)
	v, _, _ = e.Get("other:main:shared")
	assert.Equal(t, "b", v)
}

func TestDeleteKeyNamespaceAndContext(t *testing.T) {
	e := newTestEngine()
	assert.NoError(t, e.Set("app:ui:theme", "dark"))
	assert.NoError(t, e.Set("app:ui:size", "large"))

	removed, err := e.Delete("app:ui:theme")
	assert.NoError(t, err)
	assert.True(t, removed)
	exists, _ := e.Exists("app:ui:theme")
	assert.False(t, exists)

	removed, err = e.Delete("app:ui")
	assert.NoError(t, err)
	assert.True(t, removed)
	exists, _ = e.Exists("app:ui:size")
	assert.False(t, exists)

	assert.NoError(t, e.Set("app:main:k", "v"))
	removed, err = e.Delete("app")
	assert.NoError(t, err)
	assert.True(t, removed)
	exists, _ = e.Exists("app:main:k")
	assert.False(t, exists)
}

func TestDeleteTooManyColonsFails(t *testing.T) {
	e := newTestEngine()
	_, err := e.Delete("a:b:c:d")
	assert.Error(t, err)
	assert.True(t, types.IsKind(err, types.KindInvalidPath))
}

func TestFindCacheCoherenceAcrossMutation(t *testing.T) {
	e := newTestEngine()
	assert.NoError(t, e.SwitchContext("app"))
	assert.NoError(t, e.SwitchNamespace("ui"))
	assert.NoError(t, e.Set("button", "click"))

	results, err := e.Find("*")
	assert.NoError(t, err)
	assert.Len(t, results, 1)

	assert.NoError(t, e.Set("toggle", "switch"))
	results, err = e.Find("*")
	assert.NoError(t, err)
	assert.Len(t, results, 2, "cache must be invalidated by the intervening write")
}

func TestIsFileIsDirectoryHasDefaultGetDefault(t *testing.T) {
	e := newTestEngine()
	assert.NoError(t, e.Set("app:docs:.index", "welcome"))
	assert.NoError(t, e.Set("app:docs:section.intro", "hello"))

	isFile, err := e.IsFile("app:docs:section.intro")
	assert.NoError(t, err)
	assert.True(t, isFile)

	isDir, err := e.IsDirectory("app:docs:section")
	assert.NoError(t, err)
	assert.True(t, isDir)

	hasDefault, err := e.HasDefault("app:docs:section")
	assert.NoError(t, err)
	assert.False(t, hasDefault, "section has no .index child of its own")

	v, ok, err := e.GetDefault("app:docs:section")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestCursorGuardRestoresOnRelease(t *testing.T) {
	e := newTestEngine()
	_ = e.SwitchContext("app")
	_ = e.SwitchNamespace("main")

	func() {
		guard := e.CursorGuardScope()
		defer guard.Release()
		_ = e.SwitchContext("temp")
		_ = e.SwitchNamespace("scratch")
	}()

	cur := e.Cursor()
	assert.Equal(t, types.Context("app"), cur.Context)
	assert.Equal(t, types.Namespace("main"), cur.Namespace)
}

func TestCursorGuardReleaseIsIdempotent(t *testing.T) {
	e := newTestEngine()
	guard := e.CursorGuardScope()
	guard.Release()
	_ = e.SwitchContext("somewhere-else")
	guard.Release() // second call must not clobber the cursor again
	assert.Equal(t, types.Context("somewhere-else"), e.Cursor().Context)
}

func TestCursorGuardNesting(t *testing.T) {
	e := newTestEngine()
	outer := e.CursorGuardScope()
	_ = e.SwitchContext("outer-ctx")

	inner := e.CursorGuardScope()
	_ = e.SwitchContext("inner-ctx")
	inner.Release()
	assert.Equal(t, types.Context("outer-ctx"), e.Cursor().Context)

	outer.Release()
	assert.Equal(t, types.DefaultContext, e.Cursor().Context)
}

func TestExecuteControlCommandAppendsHistoryOnSuccessAndFailure(t *testing.T) {
	e := newTestEngine()
	assert.NoError(t, e.Set("app:main:k", "v"))

	err := e.ExecuteControlCommand(types.ControlDelete, "app:main:k")
	assert.NoError(t, err)

	err = e.ExecuteControlCommand(types.ControlCommandKind("bogus"), "whatever")
	assert.Error(t, err)
	assert.True(t, types.IsKind(err, types.KindUnknownControlCommand))

	history := e.History()
	assert.Len(t, history, 2)
	assert.True(t, history[0].Success)
	assert.Equal(t, types.ControlDelete, history[0].Kind)
	assert.False(t, history[1].Success)
	assert.NotEmpty(t, history[1].Error)
}

func TestControlCommandHistoryIsBounded(t *testing.T) {
	prof := limits.Default
	prof.MaxCommandHistory = 2
	e := New(prof)

	for i := 0; i < 5; i++ {
		_ = e.ExecuteControlCommand(types.ControlReset, "cursor")
	}
	history := e.History()
	assert.Len(t, history, 2, "history must stay bounded to MaxCommandHistory, dropping oldest first")
}

func TestResetControlCommandTargets(t *testing.T) {
	e := newTestEngine()
	assert.NoError(t, e.Set("app:main:k", "v"))
	_ = e.SwitchNamespace("other")

	assert.NoError(t, e.ExecuteControlCommand(types.ControlReset, "cursor"))
	assert.Equal(t, types.MainNamespace, e.Cursor().Namespace)

	assert.NoError(t, e.ExecuteControlCommand(types.ControlReset, "storage"))
	exists, _ := e.Exists("app:main:k")
	assert.False(t, exists)
}

func TestIterEntriesPreservesInsertionOrder(t *testing.T) {
	e := newTestEngine()
	assert.NoError(t, e.Set("app:main:b", "2"))
	assert.NoError(t, e.Set("app:main:a", "1"))
	assert.NoError(t, e.Set("app:main:b", "20")) // update: must not reorder

	entries := e.IterEntries()
	assert.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].Key)
	assert.Equal(t, "20", entries[0].Value)
	assert.Equal(t, "a", entries[1].Key)
}

func TestNamespaceViewAndMeteorFor(t *testing.T) {
	e := newTestEngine()
	assert.NoError(t, e.Set("app:ui:theme", "dark"))
	assert.NoError(t, e.Set("app:ui:size", "large"))

	view := e.NamespaceView("app", "ui")
	if assert.NotNil(t, view) {
		assert.Equal(t, 2, view.EntryCount())
		assert.True(t, view.HasKey("theme"))
		v, ok := view.Get("theme")
		assert.True(t, ok)
		assert.Equal(t, "dark", v)
	}

	m, ok := e.MeteorFor("app", "ui")
	assert.True(t, ok)
	assert.Equal(t, types.Context("app"), m.Context)
	assert.Equal(t, types.Namespace("ui"), m.Namespace)
	assert.Len(t, m.Tokens, 2)
}

func TestRenderParseRoundTrip(t *testing.T) {
	e := newTestEngine()
	assert.NoError(t, e.Set("app:ui:button", "click"))
	assert.NoError(t, e.Set("app:ui:label", "has space"))

	m, ok := e.MeteorFor("app", "ui")
	assert.True(t, ok)

	rendered := Render(m)
	parsed, err := Parse(rendered, limits.Default)
	assert.NoError(t, err)
	assert.Equal(t, m.Context, parsed.Context)
	assert.Equal(t, m.Namespace, parsed.Namespace)
	if assert.Len(t, parsed.Tokens, len(m.Tokens)) {
		for i := range m.Tokens {
			assert.Equal(t, m.Tokens[i].Key.Original(), parsed.Tokens[i].Key.Original())
			assert.Equal(t, m.Tokens[i].Value, parsed.Tokens[i].Value)
		}
	}
}

// TestRenderReproducesLeadingDigitBracketLabels covers spec scenario S4:
// bracket labels that start with a digit (an ordering convention like
// "10_setup", "20_config") must set successfully and round-trip back
// through Render in their original bracket form.
func TestRenderReproducesLeadingDigitBracketLabels(t *testing.T) {
	e := newTestEngine()
	assert.NoError(t, e.Set("doc:guides.install:sections[10_setup]", "first"))
	assert.NoError(t, e.Set("doc:guides.install:sections[20_config]", "second"))

	m, ok := e.MeteorFor("doc", "guides.install")
	assert.True(t, ok)

	rendered := Render(m)
	assert.Contains(t, rendered, "sections[10_setup]=first")
	assert.Contains(t, rendered, "sections[20_config]=second")
}

func TestNamespaceDepthLimitEnforced(t *testing.T) {
	prof := limits.Strict
	e := New(prof)
	err := e.SwitchNamespace("a.b.c.d.e")
	assert.Error(t, err)
	assert.True(t, types.IsKind(err, types.KindNamespaceTooDeep))
}

func TestContextBudgetEnforced(t *testing.T) {
	prof := limits.Default
	prof.MaxContexts = 1
	e := New(prof)
	assert.NoError(t, e.Set("app:main:k", "v"))

	err := e.Set("second:main:k", "v")
	assert.Error(t, err)
	assert.True(t, types.IsKind(err, types.KindLimitExceeded))
}
