// SPDX-License-Identifier: MIT

package cfgfile

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// Parse reads a document from r without a backing file. The returned
// document holds everything parsed before the first malformed line; in that
// case the error is a *ParseError. Read errors are returned as is.
func Parse(r io.Reader) (*Document, error) {
	d := New("")
	err := d.parse(r)
	return d, err
}

// parse runs a single forward pass over r, appending to a cleared document.
func (d *Document) parse(r io.Reader) error {
	br := bufio.NewReader(r)
	cur := d.sections[0]

	for n := 1; ; n++ {
		raw, eol, err := readLine(br)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		trimmed := strings.TrimSpace(raw)
		switch {
		case isGarbage(trimmed):
			cur.lines = append(cur.lines, garbageLine(raw, eol))

		case strings.Contains(trimmed, "="):
			x := strings.IndexByte(trimmed, '=')
			name := strings.TrimSpace(trimmed[:x])
			if x < 1 || name == "" {
				return &ParseError{Line: n, Text: raw, Err: ErrBadAssignment}
			}
			value := strings.TrimSpace(trimmed[x+1:])
			if value == "" {
				// "param=" is legal and records nothing.
				cur.lines = append(cur.lines, garbageLine(raw, eol))
				continue
			}
			if _, ok := cur.params[name]; ok {
				cur.params[name] = value
				continue
			}
			cur.params[name] = value
			cur.lines = append(cur.lines, paramLine(raw, eol, name, value))

		case strings.Contains(trimmed, "["):
			title, ok := headerTitle(trimmed)
			if !ok {
				return &ParseError{Line: n, Text: raw, Err: ErrBadHeader}
			}
			cur = newSection(title)
			cur.lines = append(cur.lines, headerLine(raw, eol))
			d.add(cur)

		default:
			return &ParseError{Line: n, Text: raw, Err: ErrUnrecognizedLine}
		}
	}
}

// readLine returns the next line without its terminator, and the terminator
// itself. io.EOF is only returned when no bytes remain.
func readLine(br *bufio.Reader) (string, string, error) {
	s, err := br.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", "", err
	}
	switch {
	case strings.HasSuffix(s, "\r\n"):
		return s[:len(s)-2], "\r\n", nil
	case strings.HasSuffix(s, "\n"):
		return s[:len(s)-1], "\n", nil
	default:
		return s, "", nil
	}
}

func isGarbage(trimmed string) bool {
	return trimmed == "" ||
		trimmed[0] == '#' ||
		trimmed[0] == ';' ||
		strings.HasPrefix(trimmed, "//")
}

// headerTitle extracts the trimmed title between the first '[' and the first
// ']'. At least one character must sit between them and the title must not be
// blank.
func headerTitle(trimmed string) (string, bool) {
	x := strings.IndexByte(trimmed, '[')
	y := strings.IndexByte(trimmed, ']')
	if x < 0 || y <= x+1 {
		return "", false
	}
	title := strings.TrimSpace(trimmed[x+1 : y])
	if title == "" {
		return "", false
	}
	return title, true
}
