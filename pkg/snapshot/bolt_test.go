package snapshot

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oodx/meteor/pkg/engine"
	"github.com/oodx/meteor/pkg/limits"
)

func TestExportImportRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meteor.db")

	src := engine.New(limits.Default)
	assert.NoError(t, src.Set("app:main:greeting", "hello"))
	assert.NoError(t, src.Set("app:ui:theme", "dark"))
	assert.NoError(t, src.Set("other:main:k", "v"))

	store := NewBoltStore(path)
	assert.NoError(t, store.Export(src))

	dst := engine.New(limits.Default)
	assert.NoError(t, store.Import(dst))

	v, ok, err := dst.Get("app:main:greeting")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hello", v)

	v, ok, err = dst.Get("app:ui:theme")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dark", v)

	v, ok, err = dst.Get("other:main:k")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestImportFromEmptySnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")

	src := engine.New(limits.Default)
	store := NewBoltStore(path)
	assert.NoError(t, store.Export(src))

	dst := engine.New(limits.Default)
	assert.NoError(t, store.Import(dst))
	assert.Empty(t, dst.IterEntries())
}
