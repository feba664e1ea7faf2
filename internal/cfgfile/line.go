// SPDX-License-Identifier: MIT

package cfgfile

import "strings"

// LineKind identifies how a stored line is written back.
type LineKind int

const (
	// LineGarbage is a comment, blank or empty assignment line, written verbatim.
	LineGarbage LineKind = iota
	// LineHeader is a "[title]" line, written verbatim.
	LineHeader
	// LineParam is a name=value line. Its value is looked up by name at write time.
	LineParam
)

func (k LineKind) String() string {
	switch k {
	case LineGarbage:
		return "garbage"
	case LineHeader:
		return "header"
	case LineParam:
		return "param"
	default:
		return "unknown"
	}
}

// line is one physical line of a section.
//
// For LineParam, key names the parameter in the owning section and parsed is
// the value the raw text carries. When the current value still equals parsed
// the raw text is written unchanged; otherwise the text up to and including
// the first '=' is kept and the current value follows it.
type line struct {
	kind   LineKind
	raw    string // text without terminator
	eol    string // "\n", "\r\n" or "" for a final unterminated line
	key    string
	parsed string
}

func garbageLine(raw, eol string) line {
	return line{kind: LineGarbage, raw: raw, eol: eol}
}

func headerLine(raw, eol string) line {
	return line{kind: LineHeader, raw: raw, eol: eol}
}

func paramLine(raw, eol, key, value string) line {
	return line{kind: LineParam, raw: raw, eol: eol, key: key, parsed: value}
}

// text renders the line body for the given current parameter value.
func (l line) text(value string) string {
	if l.kind != LineParam || value == l.parsed {
		return l.raw
	}
	x := strings.IndexByte(l.raw, '=')
	if x < 0 {
		return l.key + "=" + value
	}
	return l.raw[:x+1] + value
}
