// SPDX-License-Identifier: MIT

package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ManuGH/romcfg/internal/cfgfile"
	"github.com/ManuGH/romcfg/internal/config"
	"github.com/ManuGH/romcfg/internal/profile"
	"github.com/ManuGH/romcfg/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newApp(t *testing.T, opts ...Option) (*App, string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(config.EnvDataDir, dir)
	t.Setenv(config.EnvWatchDebounce, "20ms")

	a, err := Load("", append([]Option{WithReloadSignal(nil)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a, dir
}

func TestLoad_OpensConfiguredStores(t *testing.T) {
	a, dir := newApp(t)

	assert.Equal(t, dir, a.Config().DataDir)
	for _, name := range []string{store.Global, store.Game, store.Catalog, store.BuiltinProfiles, store.CustomProfiles} {
		h, err := a.Store(name)
		require.NoError(t, err, name)
		assert.True(t, strings.HasPrefix(h.Path(), dir+string(filepath.Separator)), "store %s lives under the data dir", name)
	}
}

func TestLoad_InvalidConfig(t *testing.T) {
	t.Setenv(config.EnvDataDir, t.TempDir())
	t.Setenv(config.EnvScanWorkers, "0")

	_, err := Load("")
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestScan(t *testing.T) {
	a, _ := newApp(t)

	_, err := a.Scan(context.Background(), false)
	require.ErrorIs(t, err, ErrNoScanRoots)

	roots := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(roots, "Mario.z64"), []byte("m"), 0o644))

	res, err := a.Scan(context.Background(), false, roots)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Cached)

	cat, err := a.Catalog()
	require.NoError(t, err)
	entries := cat.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "Mario", entries[0].GoodName)
}

func TestUpdateProfiles(t *testing.T) {
	a, dir := newApp(t)

	builtin, err := a.Store(store.BuiltinProfiles)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(builtin.Path(), []byte("[Stock]\ncomment=Default\nrsp=hle\n"), 0o644))
	require.NoError(t, builtin.Reload(context.Background()))

	require.NoError(t, a.UpdateProfiles(context.Background(), func(m *profile.Manager) error {
		return m.Copy("Stock", "Tuned")
	}))

	err = a.UpdateProfiles(context.Background(), func(m *profile.Manager) error {
		return m.Delete("Stock")
	})
	require.ErrorIs(t, err, profile.ErrReadOnly)

	m, err := a.Profiles()
	require.NoError(t, err)
	p, ok := m.Get("Tuned")
	require.True(t, ok)
	assert.False(t, p.BuiltIn)
	assert.Equal(t, "hle", p.Settings().String("rsp", ""))

	raw, err := os.ReadFile(filepath.Join(dir, config.DefaultCustomProfilesFile))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[Tuned]")
}

func TestReloadAll(t *testing.T) {
	a, _ := newApp(t)

	global, err := a.Store(store.Global)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(global.Path(), []byte("[Audio]\nvolume=80\n"), 0o644))

	// The other store files do not exist yet.
	require.Error(t, a.ReloadAll(context.Background()))

	var volume string
	global.View(func(doc *cfgfile.Document) {
		volume, _ = doc.Value("Audio", "volume")
	})
	assert.Equal(t, "80", volume)
}

func TestSave(t *testing.T) {
	a, dir := newApp(t)

	h, err := a.Store(store.Global)
	require.NoError(t, err)
	require.NoError(t, h.Update(func(doc *cfgfile.Document) error {
		doc.Put("Video", "mode", "3")
		return nil
	}))
	require.NoError(t, a.Save(context.Background()))

	raw, err := os.ReadFile(filepath.Join(dir, config.DefaultGlobalFile))
	require.NoError(t, err)
	assert.Equal(t, "[Video]\nmode=3\n", string(raw))
}

func TestRun_StopsOnCancel(t *testing.T) {
	t.Setenv(config.EnvWatch, "true")
	a, _ := newApp(t, WithReloadSignal(nil))

	h, err := a.Store(store.Game)
	require.NoError(t, err)
	updates := make(chan *cfgfile.Document, 1)
	h.Subscribe(updates)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	// Give the watchers time to register before writing.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(h.Path(), []byte("[ABC]\nplayed=1\n"), 0o644))

	select {
	case doc := <-updates:
		v, _ := doc.Value("ABC", "played")
		assert.Equal(t, "1", v)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after external write")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
