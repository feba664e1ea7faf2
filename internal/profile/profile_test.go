// SPDX-License-Identifier: MIT

package profile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/romcfg/internal/cfgfile"
)

const builtinProfiles = `; shipped with the app
[Default]
comment=Balanced settings
r4300Emulator=2
videoPlugin=gliden64
[Glide64-Fast]
comment=Speed over accuracy
r4300Emulator=2
videoPlugin=glide64mk2
`

const customProfiles = `[Default]
comment=My tweaks
r4300Emulator=1
[Handheld]
videoPlugin=rice
`

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	b, err := cfgfile.Parse(strings.NewReader(builtinProfiles))
	require.NoError(t, err)
	c, err := cfgfile.Parse(strings.NewReader(customProfiles))
	require.NoError(t, err)
	return NewManager(b, c)
}

func names(ps []Profile) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Name
	}
	return out
}

func TestList(t *testing.T) {
	m := newTestManager(t)
	ps := m.List()

	assert.Equal(t, []string{"Default", "Default", "Glide64-Fast", "Handheld"}, names(ps))
	assert.False(t, ps[0].BuiltIn)
	assert.True(t, ps[1].BuiltIn)
	assert.Equal(t, "Speed over accuracy", ps[2].Comment)
}

func TestGet_CustomShadowsBuiltin(t *testing.T) {
	m := newTestManager(t)

	p, ok := m.Get("Default")
	require.True(t, ok)
	assert.False(t, p.BuiltIn)
	assert.Equal(t, "1", p.Settings().String("r4300Emulator", ""))

	p, ok = m.Get("Glide64-Fast")
	require.True(t, ok)
	assert.True(t, p.BuiltIn)

	_, ok = m.Get(cfgfile.Sectionless)
	assert.False(t, ok)
	_, ok = m.Get("")
	assert.False(t, ok)
}

func TestResolve_FallbackChain(t *testing.T) {
	m := newTestManager(t)

	p, ok := m.Resolve("Handheld", "Default", "Glide64-Fast")
	require.True(t, ok)
	assert.Equal(t, "Handheld", p.Name)

	p, ok = m.Resolve("Deleted", "Glide64-Fast", "Default")
	require.True(t, ok)
	assert.Equal(t, "Glide64-Fast", p.Name)

	p, ok = m.Resolve("", "Missing", "Default")
	require.True(t, ok)
	assert.Equal(t, "Default", p.Name)
	assert.False(t, p.BuiltIn)

	_, ok = m.Resolve("a", "b", "c")
	assert.False(t, ok)
}

func TestCopy(t *testing.T) {
	m := newTestManager(t)

	require.NoError(t, m.Copy("Glide64-Fast", "Glide64-Mine"))
	p, ok := m.Get("Glide64-Mine")
	require.True(t, ok)
	assert.False(t, p.BuiltIn)
	assert.Equal(t, []string{"comment", "r4300Emulator", "videoPlugin"}, p.Section.Keys())
	assert.Equal(t, "glide64mk2", p.Settings().String("videoPlugin", ""))

	assert.ErrorIs(t, m.Copy("Glide64-Fast", "Handheld"), ErrExists)
	assert.ErrorIs(t, m.Copy("Nope", "New"), ErrNotFound)
	assert.ErrorIs(t, m.Copy("Default", "bad]name"), ErrInvalidName)
	assert.ErrorIs(t, m.Copy("Default", " padded"), ErrInvalidName)
	assert.ErrorIs(t, m.Copy("Default", cfgfile.Sectionless), ErrInvalidName)
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"plain", "Glide64-Fast", false},
		{"inner spaces", "My Profile 2", false},
		{"empty", "", true},
		{"padded", " Fast", true},
		{"reserved", cfgfile.Sectionless, true},
		{"closing bracket", "Fast]", true},
		{"equals sign", "Fast=1", true},
		{"line break", "Fast\nSlow", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidName)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCopy_RejectsEqualsInName(t *testing.T) {
	m := newTestManager(t)

	assert.ErrorIs(t, m.Copy("Default", "Fast=1"), ErrInvalidName)
	assert.ErrorIs(t, m.Rename("Handheld", "Hand=held"), ErrInvalidName)

	var buf strings.Builder
	_, err := m.Custom.WriteTo(&buf)
	require.NoError(t, err)
	reparsed, err := cfgfile.Parse(strings.NewReader(buf.String()))
	require.NoError(t, err)
	assert.Equal(t, m.Custom.Keys(), reparsed.Keys())
}

func TestCopy_EmptyProfile(t *testing.T) {
	m := NewManager(nil, nil)
	m.Builtin.Ensure("Blank")

	require.NoError(t, m.Copy("Blank", "Blank2"))
	_, ok := m.Get("Blank2")
	assert.True(t, ok)
}

func TestRename(t *testing.T) {
	m := newTestManager(t)

	require.NoError(t, m.Rename("Handheld", "Portable"))
	_, ok := m.Get("Handheld")
	assert.False(t, ok)
	p, ok := m.Get("Portable")
	require.True(t, ok)
	assert.Equal(t, "rice", p.Settings().String("videoPlugin", ""))

	require.NoError(t, m.Rename("Portable", "Portable"))
	assert.ErrorIs(t, m.Rename("Glide64-Fast", "X"), ErrReadOnly)
	assert.ErrorIs(t, m.Rename("Nope", "X"), ErrNotFound)
}

func TestDelete(t *testing.T) {
	m := newTestManager(t)

	require.NoError(t, m.Delete("Default"))
	p, ok := m.Get("Default")
	require.True(t, ok, "built-in becomes visible again")
	assert.True(t, p.BuiltIn)

	assert.ErrorIs(t, m.Delete("Default"), ErrReadOnly)
	assert.ErrorIs(t, m.Delete("Nope"), ErrNotFound)
}

func TestSetComment(t *testing.T) {
	m := newTestManager(t)

	require.NoError(t, m.SetComment("Handheld", "For small screens"))
	p, _ := m.Get("Handheld")
	assert.Equal(t, "For small screens", p.Comment)

	assert.ErrorIs(t, m.SetComment("Glide64-Fast", "x"), ErrReadOnly)
	assert.ErrorIs(t, m.SetComment("Nope", "x"), ErrNotFound)
}
