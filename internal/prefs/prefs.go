// SPDX-License-Identifier: MIT

// Package prefs reads and writes typed scalar settings stored as strings in
// config file sections.
//
// Booleans are written as "True"/"False", the spelling the emulator's files
// use. Reads also accept "true", "1", "0" and friends. A value that does not
// parse yields the caller's default.
package prefs

import (
	"sort"
	"strconv"
	"strings"

	"github.com/ManuGH/romcfg/internal/cfgfile"
	xglog "github.com/ManuGH/romcfg/internal/log"
)

// Getter is the read side of a settings group.
type Getter interface {
	Value(name string) (string, bool)
}

// Reader reads typed values from one or more sections. Earlier sections
// shadow later ones, so a per-game section can sit in front of the global
// defaults. Nil sections are skipped.
type Reader struct {
	layers []Getter
}

// NewReader returns a Reader over the given sections.
func NewReader(sections ...*cfgfile.Section) Reader {
	r := Reader{}
	for _, s := range sections {
		if s != nil {
			r.layers = append(r.layers, s)
		}
	}
	return r
}

// Raw returns the first value found for key.
func (r Reader) Raw(key string) (string, bool) {
	for _, l := range r.layers {
		if v, ok := l.Value(key); ok {
			return v, true
		}
	}
	return "", false
}

// String returns the value for key, or def when it is not set.
func (r Reader) String(key, def string) string {
	if v, ok := r.Raw(key); ok {
		return v
	}
	return def
}

// Bool returns the boolean value for key, or def when it is not set or not
// a boolean.
func (r Reader) Bool(key string, def bool) bool {
	v, ok := r.Raw(key)
	if !ok {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		invalid(key, v, "boolean")
		return def
	}
}

// Int returns the integer value for key, or def when it does not parse.
func (r Reader) Int(key string, def int) int {
	v, ok := r.Raw(key)
	if !ok {
		return def
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		invalid(key, v, "integer")
		return def
	}
	return i
}

// Float returns the float value for key, or def when it does not parse.
func (r Reader) Float(key string, def float64) float64 {
	v, ok := r.Raw(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		invalid(key, v, "float")
		return def
	}
	return f
}

// IntSet returns the distinct integers of a comma separated value in
// ascending order. Elements that do not parse are skipped.
func (r Reader) IntSet(key string) []int {
	v, ok := r.Raw(key)
	if !ok {
		return nil
	}
	seen := make(map[int]struct{})
	var out []int
	for _, f := range strings.Split(v, ",") {
		i, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			continue
		}
		if _, dup := seen[i]; dup {
			continue
		}
		seen[i] = struct{}{}
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

func invalid(key, value, kind string) {
	logger := xglog.WithComponent("prefs")
	logger.Debug().
		Str(xglog.FieldEvent, "prefs.invalid_value").
		Str(xglog.FieldParam, key).
		Str("value", value).
		Str("want", kind).
		Msg("invalid preference value, using default")
}

// Writer writes typed values into one section of a document.
type Writer struct {
	doc     *cfgfile.Document
	section string
}

// NewWriter returns a Writer for the titled section of doc.
func NewWriter(doc *cfgfile.Document, section string) Writer {
	return Writer{doc: doc, section: section}
}

// SetString stores v. Like Document.Put, an empty v does not create a new
// key.
func (w Writer) SetString(key, v string) {
	w.doc.Put(w.section, key, v)
}

// SetBool stores "True" or "False".
func (w Writer) SetBool(key string, v bool) {
	if v {
		w.doc.Put(w.section, key, "True")
		return
	}
	w.doc.Put(w.section, key, "False")
}

// SetInt stores v in decimal.
func (w Writer) SetInt(key string, v int) {
	w.doc.Put(w.section, key, strconv.Itoa(v))
}

// SetFloat stores v in the shortest form that round trips.
func (w Writer) SetFloat(key string, v float64) {
	w.doc.Put(w.section, key, strconv.FormatFloat(v, 'f', -1, 64))
}

// SetIntSet stores the values comma separated in ascending order.
func (w Writer) SetIntSet(key string, values []int) {
	sorted := append([]int(nil), values...)
	sort.Ints(sorted)
	parts := make([]string, 0, len(sorted))
	for i, v := range sorted {
		if i > 0 && v == sorted[i-1] {
			continue
		}
		parts = append(parts, strconv.Itoa(v))
	}
	w.doc.Put(w.section, key, strings.Join(parts, ","))
}
