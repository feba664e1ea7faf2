// SPDX-License-Identifier: MIT

package cfgfile

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	xglog "github.com/ManuGH/romcfg/internal/log"
	"github.com/ManuGH/romcfg/internal/metrics"
)

// Sectionless is the title of the preamble section: the lines that appear
// before the first header.
const Sectionless = "[<sectionless!>]"

// Document is an in-memory config file: an ordered list of sections plus a
// lookup by title.
type Document struct {
	path     string
	sections []*Section
	index    map[string]*Section
}

// New returns an empty document bound to path. Path may be empty for a
// transient document that is never saved.
func New(path string) *Document {
	d := &Document{path: path}
	d.reset()
	return d
}

// Load reads the file at path into a new document. It reports false when the
// path is empty or the file cannot be read; the document is then empty but
// still bound to path, so a later Save creates the file.
func Load(path string) (*Document, bool) {
	d := New(path)
	return d, d.Reload()
}

// LoadWithDiagnostics is Load with the reason for a failed or truncated
// parse. A *ParseError means the document holds the lines read before the
// malformed one. ErrNoPath or a wrapped open error means nothing was loaded.
func LoadWithDiagnostics(path string) (*Document, error) {
	d := New(path)
	return d, d.ReloadErr()
}

// Path returns the backing file path.
func (d *Document) Path() string {
	return d.path
}

// Reload discards all in-memory state and parses the backing file again.
// It reports false when there is no path or the file cannot be opened. A
// parse that stops early, on a malformed line or a read error, keeps the
// prefix and still reports true.
func (d *Document) Reload() bool {
	opened, _ := d.reload()
	return opened
}

// ReloadErr is Reload returning the failure or the parse diagnostic. A
// *ParseError or a wrapped read error leaves the parsed prefix in place.
func (d *Document) ReloadErr() error {
	_, err := d.reload()
	return err
}

func (d *Document) reload() (bool, error) {
	logger := xglog.WithComponent("cfgfile")

	if d.path == "" {
		logger.Warn().Str(xglog.FieldEvent, "cfgfile.no_path").Msg("config file path not specified")
		metrics.IncLoad(metrics.ResultFailure)
		return false, ErrNoPath
	}

	d.reset()

	f, err := os.Open(d.path)
	if err != nil {
		logger.Debug().Err(err).
			Str(xglog.FieldEvent, "cfgfile.load_failed").
			Str(xglog.FieldPath, d.path).
			Msg("config file not loaded")
		metrics.IncLoad(metrics.ResultFailure)
		return false, fmt.Errorf("open config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	err = d.parse(f)
	var perr *ParseError
	switch {
	case err == nil:
	case errors.As(err, &perr):
		logger.Debug().
			Str(xglog.FieldEvent, "cfgfile.parse_truncated").
			Str(xglog.FieldPath, d.path).
			Int(xglog.FieldLine, perr.Line).
			Str(xglog.FieldReason, perr.reason()).
			Msg("config parse stopped at malformed line")
		metrics.IncParseTruncated(perr.reason())
	default:
		logger.Warn().Err(err).
			Str(xglog.FieldEvent, "cfgfile.read_failed").
			Str(xglog.FieldPath, d.path).
			Msg("config file read interrupted")
		metrics.IncParseTruncated("read")
		err = fmt.Errorf("read config file: %w", err)
	}

	metrics.IncLoad(metrics.ResultOK)
	return true, err
}

// Clear discards all sections, leaving only an empty Sectionless section.
func (d *Document) Clear() {
	d.reset()
}

func (d *Document) reset() {
	s := newSection(Sectionless)
	d.sections = []*Section{s}
	d.index = map[string]*Section{Sectionless: s}
}

// add appends s and makes it the lookup target for its title. An earlier
// section with the same title stays in the ordered list.
func (d *Document) add(s *Section) {
	d.sections = append(d.sections, s)
	d.index[s.title] = s
}

// Get returns the section with the given title, or nil.
func (d *Document) Get(title string) *Section {
	return d.index[title]
}

// Value returns the named parameter of the titled section.
func (d *Document) Value(title, name string) (string, bool) {
	return d.index[title].Value(name)
}

// Match returns a section whose whole title matches the regular expression
// pattern, or nil when none matches or the pattern does not compile. With
// several matches the earliest section in document order wins.
func (d *Document) Match(pattern string) *Section {
	re, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		return nil
	}
	for _, s := range d.sections {
		if d.index[s.title] == s && re.MatchString(s.title) {
			return s
		}
	}
	return nil
}

// Put assigns value to the named parameter of the titled section, creating
// the section first if needed. See Section.Put for the empty value rules.
func (d *Document) Put(title, name, value string) {
	d.Ensure(title).Put(name, value)
}

// Ensure returns the titled section, appending a new empty one with a
// header line if it does not exist yet. Titles must not contain '=', ']'
// or a line break; such a header does not parse back as a section.
func (d *Document) Ensure(title string) *Section {
	s := d.index[title]
	if s == nil {
		s = newTitledSection(title)
		d.add(s)
	}
	return s
}

// Remove deletes the titled section. Removing Sectionless empties it
// instead, since the preamble always exists.
func (d *Document) Remove(title string) {
	s := d.index[title]
	if s == nil {
		return
	}
	if title == Sectionless {
		*s = *newSection(Sectionless)
		return
	}
	delete(d.index, title)
	for i, cur := range d.sections {
		if cur == s {
			d.sections = append(d.sections[:i], d.sections[i+1:]...)
			break
		}
	}
}

// Keys returns the section titles in document order, Sectionless included.
func (d *Document) Keys() []string {
	keys := make([]string, 0, len(d.index))
	for _, s := range d.sections {
		if d.index[s.title] == s {
			keys = append(keys, s.title)
		}
	}
	return keys
}

// Sections returns the sections in document order, including shadowed
// duplicates that Get no longer reaches.
func (d *Document) Sections() []*Section {
	out := make([]*Section, len(d.sections))
	copy(out, d.sections)
	return out
}

// Len returns the number of reachable sections, Sectionless included.
func (d *Document) Len() int {
	return len(d.index)
}

// Clone returns a deep copy that shares nothing with d.
func (d *Document) Clone() *Document {
	c := &Document{
		path:     d.path,
		sections: make([]*Section, len(d.sections)),
		index:    make(map[string]*Section, len(d.index)),
	}
	for i, s := range d.sections {
		cs := s.clone()
		c.sections[i] = cs
		if d.index[s.title] == s {
			c.index[s.title] = cs
		}
	}
	return c
}
