// SPDX-License-Identifier: MIT

package catalog

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/ManuGH/romcfg/internal/cfgfile"
	xglog "github.com/ManuGH/romcfg/internal/log"
	"github.com/ManuGH/romcfg/internal/metrics"
)

// Recent list limits.
const (
	RecentWindow = 7 * 24 * time.Hour
	RecentLimit  = 8
)

// Catalog reads and writes ROM entries in a document. Like the document it
// wraps, it is not safe for concurrent use.
type Catalog struct {
	doc *cfgfile.Document
}

// New wraps doc.
func New(doc *cfgfile.Document) *Catalog {
	return &Catalog{doc: doc}
}

// Document returns the wrapped document.
func (c *Catalog) Document() *cfgfile.Document {
	return c.doc
}

// Put writes e into the section titled e.MD5. Empty fields do not create
// keys, but they do overwrite keys that already exist. A zero LastPlayed
// leaves the stored play time untouched.
func (c *Catalog) Put(e Entry) {
	if e.MD5 == "" {
		return
	}
	for _, f := range e.fields() {
		if f[0] == KeyLastPlayed && f[1] == "" {
			continue
		}
		c.doc.Put(e.MD5, f[0], f[1])
	}
}

// Entry returns the entry for md5.
func (c *Catalog) Entry(md5 string) (Entry, bool) {
	if md5 == cfgfile.Sectionless {
		return Entry{}, false
	}
	s := c.doc.Get(md5)
	if s == nil {
		return Entry{}, false
	}
	return entryFromSection(s), true
}

// Entries returns every entry that has a ROM path, in document order.
func (c *Catalog) Entries() []Entry {
	var out []Entry
	for _, title := range c.doc.Keys() {
		if title == cfgfile.Sectionless {
			continue
		}
		e := entryFromSection(c.doc.Get(title))
		if e.RomPath == "" {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Remove deletes the entry for md5.
func (c *Catalog) Remove(md5 string) {
	if md5 != cfgfile.Sectionless {
		c.doc.Remove(md5)
	}
}

// Touch records now as the last time the ROM was played.
func (c *Catalog) Touch(md5 string, now time.Time) bool {
	s := c.doc.Get(md5)
	if s == nil || md5 == cfgfile.Sectionless {
		return false
	}
	s.Put(KeyLastPlayed, strconv.FormatInt(now.Unix(), 10))
	return true
}

// HasZip reports whether any entry was extracted from the archive at path.
func (c *Catalog) HasZip(path string) bool {
	for _, title := range c.doc.Keys() {
		if title == cfgfile.Sectionless {
			continue
		}
		if v, ok := c.doc.Value(title, KeyZipPath); ok && v == path {
			return true
		}
	}
	return false
}

// CleanupMissing removes entries whose archive, or ROM file when there is
// no archive, no longer exists. It returns the number of removed entries.
func (c *Catalog) CleanupMissing() int {
	removed := 0
	for _, title := range c.doc.Keys() {
		if title == cfgfile.Sectionless {
			continue
		}
		s := c.doc.Get(title)
		zipPath, _ := s.Value(KeyZipPath)
		romPath, _ := s.Value(KeyRomPath)

		check := romPath
		if zipPath != "" {
			check = zipPath
		}
		if check != "" && exists(check) {
			continue
		}
		logger := xglog.WithComponent("catalog")
		logger.Debug().
			Str(xglog.FieldEvent, "catalog.entry_missing").
			Str(xglog.FieldMD5, title).
			Str(xglog.FieldRomPath, check).
			Msg("removing catalog entry for missing file")
		c.doc.Remove(title)
		removed++
	}
	metrics.RecordCatalogEntries(c.doc.Len() - 1)
	return removed
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ListOptions controls how entries are named and ordered in lists.
type ListOptions struct {
	// ByRomName names entries after their good name (or base name) and
	// sorts on it. Otherwise the ROM file name is used.
	ByRomName bool
	// FullName prefers the good name over the shorter base name.
	FullName bool
	// Countries limits the list to these country codes. Empty allows all.
	// A search query lifts the restriction.
	Countries []string
}

// Item is an entry prepared for display.
type Item struct {
	Entry
	DisplayName string
}

// DisplayName names e according to opts.
func DisplayName(e Entry, opts ListOptions) string {
	if !opts.ByRomName {
		return filepath.Base(e.RomPath)
	}
	if opts.FullName || e.BaseName == "" {
		return e.GoodName
	}
	return e.BaseName
}

// Search returns the complete entries whose display name contains every
// whitespace separated token of query, ignoring case. An empty query
// matches everything.
func (c *Catalog) Search(query string, opts ListOptions) []Item {
	tokens := strings.Fields(fold(query))

	allowed := make(map[string]struct{}, len(opts.Countries))
	for _, cc := range opts.Countries {
		allowed[cc] = struct{}{}
	}

	var items []Item
	for _, e := range c.Entries() {
		if !e.Complete() {
			continue
		}
		name := DisplayName(e, opts)
		if name == "" || !containsAll(fold(name), tokens) {
			continue
		}
		if len(tokens) == 0 && len(allowed) > 0 {
			if _, ok := allowed[e.CountryCode]; !ok {
				continue
			}
		}
		items = append(items, Item{Entry: e, DisplayName: name})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return fold(items[i].DisplayName) < fold(items[j].DisplayName)
	})
	return items
}

// Recent returns the entries played within RecentWindow of now, most
// recent first, at most RecentLimit.
func (c *Catalog) Recent(now time.Time) []Item {
	var items []Item
	for _, it := range c.Search("", ListOptions{ByRomName: true}) {
		if it.LastPlayed.IsZero() || now.Sub(it.LastPlayed) > RecentWindow {
			continue
		}
		items = append(items, it)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].LastPlayed.After(items[j].LastPlayed)
	})
	if len(items) > RecentLimit {
		items = items[:RecentLimit]
	}
	return items
}

// fold normalises s for case-insensitive matching.
func fold(s string) string {
	return strings.ToLower(norm.NFC.String(s))
}

func containsAll(s string, tokens []string) bool {
	for _, t := range tokens {
		if !strings.Contains(s, t) {
			return false
		}
	}
	return true
}
