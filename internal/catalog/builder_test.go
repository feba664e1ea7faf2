// SPDX-License-Identifier: MIT

package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/romcfg/internal/cfgfile"
	"github.com/ManuGH/romcfg/internal/config"
	"github.com/ManuGH/romcfg/internal/store"
)

func writeRom(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func openCatalog(t *testing.T) *store.Holder {
	t.Helper()
	return store.Open(store.Catalog, filepath.Join(t.TempDir(), "romcache.cfg"))
}

func snapshot(h *store.Holder) *Catalog {
	return New(h.Snapshot())
}

func TestScan_CataloguesRomFiles(t *testing.T) {
	root := t.TempDir()
	writeRom(t, filepath.Join(root, "Super Mario 64 (U) [!].z64"), "rom-a")
	writeRom(t, filepath.Join(root, "sub", "zelda.N64"), "rom-b")
	writeRom(t, filepath.Join(root, "readme.txt"), "not a rom")

	h := openCatalog(t)
	res, err := NewBuilder(h, WithWorkers(2)).Scan(context.Background(), []string{root}, false)
	require.NoError(t, err)

	assert.NotEmpty(t, res.ID)
	assert.Equal(t, 2, res.Cached)
	assert.Zero(t, res.Errors)

	entries := snapshot(h).Entries()
	require.Len(t, entries, 2)

	byPath := map[string]Entry{}
	for _, e := range entries {
		byPath[filepath.Base(e.RomPath)] = e
		assert.Len(t, e.MD5, 32)
		assert.Empty(t, e.ZipPath)
	}
	mario := byPath["Super Mario 64 (U) [!].z64"]
	assert.Equal(t, "Super Mario 64 (U) [!]", mario.GoodName)
	assert.Equal(t, "Super Mario 64", mario.BaseName)
	assert.Contains(t, byPath, "zelda.N64")

	// Saved to disk.
	doc, ok := cfgfile.Load(h.Path())
	require.True(t, ok)
	assert.Equal(t, 3, doc.Len())
}

func TestScan_SameContentSharesSection(t *testing.T) {
	root := t.TempDir()
	writeRom(t, filepath.Join(root, "a.z64"), "same")
	writeRom(t, filepath.Join(root, "b.z64"), "same")

	h := openCatalog(t)
	_, err := NewBuilder(h).Scan(context.Background(), []string{root}, false)
	require.NoError(t, err)

	assert.Len(t, snapshot(h).Entries(), 1)
}

func TestScan_MaxDepth(t *testing.T) {
	root := t.TempDir()
	writeRom(t, filepath.Join(root, "top.z64"), "top")
	writeRom(t, filepath.Join(root, "one", "mid.z64"), "mid")
	writeRom(t, filepath.Join(root, "one", "two", "deep.z64"), "deep")

	h := openCatalog(t)
	_, err := NewBuilder(h, WithMaxDepth(1)).Scan(context.Background(), []string{root}, false)
	require.NoError(t, err)

	var got []string
	for _, e := range snapshot(h).Entries() {
		got = append(got, filepath.Base(e.RomPath))
	}
	assert.ElementsMatch(t, []string{"top.z64", "mid.z64"}, got)
}

func TestScan_ClearFirst(t *testing.T) {
	root := t.TempDir()
	rom := filepath.Join(root, "a.z64")
	writeRom(t, rom, "rom-a")

	h := openCatalog(t)
	require.NoError(t, h.Update(func(doc *cfgfile.Document) error {
		doc.Put("STALE", KeyRomPath, rom)
		doc.Put("STALE", KeyGoodName, "stale")
		return nil
	}))

	_, err := NewBuilder(h).Scan(context.Background(), []string{root}, false)
	require.NoError(t, err)
	_, ok := snapshot(h).Entry("STALE")
	assert.True(t, ok, "existing entries whose file exists survive a rescan")

	_, err = NewBuilder(h).Scan(context.Background(), []string{root}, true)
	require.NoError(t, err)
	_, ok = snapshot(h).Entry("STALE")
	assert.False(t, ok)
	assert.Len(t, snapshot(h).Entries(), 1)
}

func TestScan_RescanKeepsLastPlayed(t *testing.T) {
	root := t.TempDir()
	writeRom(t, filepath.Join(root, "a.z64"), "rom-a")

	h := openCatalog(t)
	b := NewBuilder(h, WithDescriber(FileNameDescriber{Unknown: true}))
	_, err := b.Scan(context.Background(), []string{root}, false)
	require.NoError(t, err)
	entries := snapshot(h).Entries()
	require.Len(t, entries, 1)
	md5 := entries[0].MD5

	played := time.Now()
	require.NoError(t, h.Update(func(doc *cfgfile.Document) error {
		require.True(t, New(doc).Touch(md5, played))
		return nil
	}))
	require.NoError(t, h.Save(context.Background()))

	_, err = b.Scan(context.Background(), []string{root}, false)
	require.NoError(t, err)

	e, ok := snapshot(h).Entry(md5)
	require.True(t, ok)
	assert.Equal(t, played.Unix(), e.LastPlayed.Unix())
	assert.Len(t, snapshot(h).Recent(time.Now()), 1)
}

func TestScan_RemovesMissingFiles(t *testing.T) {
	root := t.TempDir()
	writeRom(t, filepath.Join(root, "a.z64"), "rom-a")

	h := openCatalog(t)
	require.NoError(t, h.Update(func(doc *cfgfile.Document) error {
		doc.Put("GONE", KeyRomPath, filepath.Join(root, "deleted.z64"))
		return nil
	}))

	res, err := NewBuilder(h).Scan(context.Background(), []string{root}, false)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Removed)
}

func TestScan_SkipsKnownArchives(t *testing.T) {
	root := t.TempDir()
	zip := filepath.Join(root, "pack.zip")
	writeRom(t, zip, "zip-bytes")

	h := openCatalog(t)
	b := NewBuilder(h)

	res, err := b.Scan(context.Background(), []string{root}, false)
	require.NoError(t, err)
	require.Equal(t, 1, res.Cached)
	assert.True(t, snapshot(h).HasZip(zip))

	res, err = b.Scan(context.Background(), []string{root}, false)
	require.NoError(t, err)
	assert.Zero(t, res.Cached)
	assert.Equal(t, 1, res.Skipped)
}

func TestScan_DescriberErrorsAreCounted(t *testing.T) {
	root := t.TempDir()
	writeRom(t, filepath.Join(root, "good.z64"), "good")
	writeRom(t, filepath.Join(root, "bad.z64"), "bad")

	describer := DescriberFunc(func(path, md5 string) (Details, error) {
		if filepath.Base(path) == "bad.z64" {
			return Details{}, errors.New("corrupt header")
		}
		return Details{GoodName: "Good", CRC: "1 2", CountryCode: "69"}, nil
	})

	h := openCatalog(t)
	res, err := NewBuilder(h, WithDescriber(describer)).Scan(context.Background(), []string{root}, false)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Cached)
	assert.Equal(t, 1, res.Errors)

	items := snapshot(h).Search("good", ListOptions{ByRomName: true})
	require.Len(t, items, 1)
	assert.Equal(t, "Good", items[0].DisplayName)
}

func TestScan_CancelledContext(t *testing.T) {
	root := t.TempDir()
	writeRom(t, filepath.Join(root, "a.z64"), "rom-a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	h := openCatalog(t)
	res, err := NewBuilder(h).Scan(ctx, []string{root}, false)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, res.Cached)

	_, statErr := os.Stat(h.Path())
	assert.NoError(t, statErr, "the catalog is saved even when the scan is cancelled")
}

func TestScan_MissingRoot(t *testing.T) {
	h := openCatalog(t)
	res, err := NewBuilder(h).Scan(context.Background(), []string{filepath.Join(t.TempDir(), "nope")}, false)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Errors)
}

func TestFileNameDescriber(t *testing.T) {
	det, err := FileNameDescriber{ArtDir: "/art", Unknown: true}.Describe("/roms/Mario Kart 64 (E).v64", "ABC")
	require.NoError(t, err)
	assert.Equal(t, "Mario Kart 64 (E)", det.GoodName)
	assert.Equal(t, "Mario Kart 64", det.BaseName)
	assert.Equal(t, filepath.Join("/art", "ABC.png"), det.ArtPath)
	assert.NotEmpty(t, det.CRC)
	assert.NotEmpty(t, det.CountryCode)
}

func TestHashFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "abc.z64")
	writeRom(t, path, "abc")

	sum, err := hashFile(path)
	require.NoError(t, err)
	assert.Equal(t, "900150983CD24FB0D6963F7D28E17F72", sum)
}

func TestScanOptions(t *testing.T) {
	b := NewBuilder(openCatalog(t), ScanOptions(config.ScanConfig{
		Workers:    7,
		MaxDepth:   2,
		Extensions: []string{".z64"},
	})...)

	assert.Equal(t, 7, b.workers)
	assert.Equal(t, 2, b.maxDepth)
	assert.Equal(t, []string{".z64"}, b.extensions)
}
