package notation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		original string
		wantFlat string
	}{
		{"plain key", "button", "button"},
		{"single index", "list[0]", "list__i_0"},
		{"multi index", "grid[2,3]", "grid__i_2_3"},
		{"append", "queue[]", "queue__i_APPEND"},
		{"label", "sections[intro]", "sections__intro"},
		{"leading-digit label", "sections[10_setup]", "sections__10_setup"},
		{"another leading-digit label", "sections[20_config]", "sections__20_config"},
		{"directory path leaf plain", "user.name", "user.name"},
		{"directory path leaf bracket", "user.tags[0]", "user.tags__i_0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := New(tt.original)
			assert.NoError(t, err)
			assert.Equal(t, tt.original, key.Original())
			assert.Equal(t, tt.wantFlat, key.Flat())

			// flat->flat through the best-effort inverse must be stable
			// (spec.md S8.1 invariant 3's second clause).
			again, err := New(FlatToNotation(key.Flat()))
			assert.NoError(t, err)
			assert.Equal(t, key.Flat(), again.Flat())
		})
	}
}

func TestNewRejectsMalformed(t *testing.T) {
	tests := []string{
		"",
		"list[",
		"list]",
		"list[[0]]",
		"list[0,a]",
		"1bad",
		"user.1bad.name",
	}
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			_, err := New(in)
			assert.Error(t, err)
		})
	}
}

func TestFlatToNotation(t *testing.T) {
	tests := []struct {
		flat string
		want string
	}{
		{"list__i_0", "list[0]"},
		{"grid__i_2_3", "grid[2,3]"},
		{"queue__i_APPEND", "queue[]"},
		{"sections__intro", "sections[intro]"},
		{"sections__10_setup", "sections[10_setup]"},
		{"plainkey", "plainkey"},
		{"user.tags__i_0", "user.tags[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.flat, func(t *testing.T) {
			assert.Equal(t, tt.want, FlatToNotation(tt.flat))
		})
	}
}
