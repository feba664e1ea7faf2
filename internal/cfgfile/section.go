// SPDX-License-Identifier: MIT

package cfgfile

import "maps"

// Section is a titled group of parameters together with the literal lines
// that make it up.
type Section struct {
	title  string
	lines  []line
	params map[string]string
}

func newSection(title string) *Section {
	return &Section{
		title:  title,
		params: make(map[string]string),
	}
}

// newTitledSection creates a section as Put does: with a "[title]" header
// line unless title is Sectionless or empty.
func newTitledSection(title string) *Section {
	s := newSection(title)
	if title != "" && title != Sectionless {
		s.lines = append(s.lines, headerLine("["+title+"]", "\n"))
	}
	return s
}

// Title returns the section title. The preamble reports Sectionless.
func (s *Section) Title() string {
	return s.title
}

// Value returns the value of the named parameter.
func (s *Section) Value(name string) (string, bool) {
	if s == nil || name == "" {
		return "", false
	}
	v, ok := s.params[name]
	return v, ok
}

// Has reports whether the parameter exists with a non-empty value.
func (s *Section) Has(name string) bool {
	v, ok := s.Value(name)
	return ok && v != ""
}

// Put assigns value to the named parameter. An existing parameter keeps its
// line position and takes the new value, including the empty string. A new
// parameter is only created for a non-empty value and is appended after all
// existing lines. An empty name is ignored.
func (s *Section) Put(name, value string) {
	if name == "" {
		return
	}
	if _, ok := s.params[name]; ok {
		s.params[name] = value
		return
	}
	if value == "" {
		return
	}
	s.params[name] = value
	s.lines = append(s.lines, paramLine(name+"="+value, "\n", name, value))
}

// Keys returns the parameter names in line order.
func (s *Section) Keys() []string {
	if s == nil {
		return nil
	}
	keys := make([]string, 0, len(s.params))
	for _, l := range s.lines {
		if l.kind == LineParam {
			keys = append(keys, l.key)
		}
	}
	return keys
}

// Params returns a copy of the parameter map.
func (s *Section) Params() map[string]string {
	if s == nil {
		return nil
	}
	return maps.Clone(s.params)
}

// Len returns the number of parameters in the section.
func (s *Section) Len() int {
	if s == nil {
		return 0
	}
	return len(s.params)
}

func (s *Section) clone() *Section {
	c := &Section{
		title:  s.title,
		lines:  make([]line, len(s.lines)),
		params: maps.Clone(s.params),
	}
	copy(c.lines, s.lines)
	return c
}
