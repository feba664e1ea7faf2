// SPDX-License-Identifier: MIT

package cfgfile

import (
	"errors"
	"fmt"
)

var (
	// ErrNoPath is returned when a document without a backing file is loaded or saved.
	ErrNoPath = errors.New("config file path not set")

	// ErrBadAssignment classifies assignment lines with an empty parameter name.
	ErrBadAssignment = errors.New("malformed assignment")
	// ErrBadHeader classifies section headers without a closing bracket or title.
	ErrBadHeader = errors.New("malformed section header")
	// ErrUnrecognizedLine classifies lines that are neither comment, assignment nor header.
	ErrUnrecognizedLine = errors.New("unrecognized line")
)

// ParseError reports the line at which parsing stopped. Everything before
// Line was parsed and is present in the document.
type ParseError struct {
	Line int    // 1-based physical line number
	Text string // raw line text without terminator
	Err  error  // one of ErrBadAssignment, ErrBadHeader, ErrUnrecognizedLine
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Text)
}

func (e *ParseError) Unwrap() error { return e.Err }

// reason returns a short label for metrics and logs.
func (e *ParseError) reason() string {
	switch {
	case errors.Is(e.Err, ErrBadAssignment):
		return "assignment"
	case errors.Is(e.Err, ErrBadHeader):
		return "header"
	default:
		return "unrecognized"
	}
}
