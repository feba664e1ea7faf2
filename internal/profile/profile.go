// SPDX-License-Identifier: MIT

// Package profile treats config file sections as named settings groups.
//
// Profiles come from two documents: a read-only built-in set shipped with
// the app and a custom set the user edits. A custom profile shadows a
// built-in one with the same name.
package profile

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ManuGH/romcfg/internal/cfgfile"
	xglog "github.com/ManuGH/romcfg/internal/log"
	"github.com/ManuGH/romcfg/internal/prefs"
)

// KeyComment is the parameter holding a profile's description.
const KeyComment = "comment"

var (
	ErrNotFound    = errors.New("profile not found")
	ErrExists      = errors.New("profile already exists")
	ErrReadOnly    = errors.New("built-in profiles are read-only")
	ErrInvalidName = errors.New("invalid profile name")
)

// Profile is a named settings group.
type Profile struct {
	Name    string
	Comment string
	BuiltIn bool
	Section *cfgfile.Section
}

// Settings returns a typed reader over the profile.
func (p Profile) Settings() prefs.Reader {
	return prefs.NewReader(p.Section)
}

// Manager resolves and edits profiles.
type Manager struct {
	Builtin *cfgfile.Document
	Custom  *cfgfile.Document
}

// NewManager returns a Manager. Either document may be nil.
func NewManager(builtin, custom *cfgfile.Document) *Manager {
	if builtin == nil {
		builtin = cfgfile.New("")
	}
	if custom == nil {
		custom = cfgfile.New("")
	}
	return &Manager{Builtin: builtin, Custom: custom}
}

func newProfile(s *cfgfile.Section, builtIn bool) Profile {
	comment, _ := s.Value(KeyComment)
	return Profile{Name: s.Title(), Comment: comment, BuiltIn: builtIn, Section: s}
}

// ValidateName rejects names that cannot be written as a section header.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) != name || name == "":
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case name == cfgfile.Sectionless:
		return fmt.Errorf("%w: reserved name", ErrInvalidName)
	case strings.ContainsAny(name, "]=\r\n"):
		return fmt.Errorf("%w: %q contains ']', '=' or a line break", ErrInvalidName, name)
	}
	return nil
}

// List returns every profile sorted by name, custom before built-in when
// both define the same name.
func (m *Manager) List() []Profile {
	var out []Profile
	for _, title := range m.Custom.Keys() {
		if title != cfgfile.Sectionless {
			out = append(out, newProfile(m.Custom.Get(title), false))
		}
	}
	for _, title := range m.Builtin.Keys() {
		if title != cfgfile.Sectionless {
			out = append(out, newProfile(m.Builtin.Get(title), true))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// Get returns the named profile, custom first.
func (m *Manager) Get(name string) (Profile, bool) {
	if name == "" || name == cfgfile.Sectionless {
		return Profile{}, false
	}
	if s := m.Custom.Get(name); s != nil {
		return newProfile(s, false), true
	}
	if s := m.Builtin.Get(name); s != nil {
		return newProfile(s, true), true
	}
	return Profile{}, false
}

// Resolve picks the first profile that exists among name, defaultName and
// appDefault. Empty names are skipped.
func (m *Manager) Resolve(name, defaultName, appDefault string) (Profile, bool) {
	for _, n := range []string{name, defaultName, appDefault} {
		if p, ok := m.Get(n); ok {
			logger := xglog.WithComponent("profile")
			logger.Debug().
				Str(xglog.FieldEvent, "profile.resolved").
				Str("requested", name).
				Str(xglog.FieldSection, p.Name).
				Bool("builtin", p.BuiltIn).
				Msg("profile resolved")
			return p, true
		}
	}
	return Profile{}, false
}

// Copy duplicates src, custom or built-in, into a new custom profile named
// dst. Parameters keep src's order.
func (m *Manager) Copy(src, dst string) error {
	if err := ValidateName(dst); err != nil {
		return err
	}
	from, ok := m.Get(src)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, src)
	}
	if m.Custom.Get(dst) != nil {
		return fmt.Errorf("%w: %s", ErrExists, dst)
	}
	to := m.Custom.Ensure(dst)
	params := from.Section.Params()
	for _, k := range from.Section.Keys() {
		to.Put(k, params[k])
	}
	return nil
}

// Rename moves a custom profile to a new name.
func (m *Manager) Rename(oldName, newName string) error {
	if m.Custom.Get(oldName) == nil {
		if m.Builtin.Get(oldName) != nil {
			return fmt.Errorf("%w: %s", ErrReadOnly, oldName)
		}
		return fmt.Errorf("%w: %s", ErrNotFound, oldName)
	}
	if oldName == newName {
		return nil
	}
	if err := m.Copy(oldName, newName); err != nil {
		return err
	}
	m.Custom.Remove(oldName)
	return nil
}

// Delete removes a custom profile.
func (m *Manager) Delete(name string) error {
	if m.Custom.Get(name) == nil {
		if m.Builtin.Get(name) != nil {
			return fmt.Errorf("%w: %s", ErrReadOnly, name)
		}
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	m.Custom.Remove(name)
	return nil
}

// SetComment updates the description of a custom profile.
func (m *Manager) SetComment(name, comment string) error {
	s := m.Custom.Get(name)
	if s == nil {
		if m.Builtin.Get(name) != nil {
			return fmt.Errorf("%w: %s", ErrReadOnly, name)
		}
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	s.Put(KeyComment, comment)
	return nil
}
