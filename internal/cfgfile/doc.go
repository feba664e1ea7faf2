// SPDX-License-Identifier: MIT

// Package cfgfile reads and writes the sectioned key/value files used for
// emulator settings, the ROM catalog and per-game preferences.
//
// The dialect is line oriented:
//
//	; comment
//	# also a comment
//	// also a comment
//	param1=value1
//	[SectionTitle]
//	paramA="quotes are stored literally"
//
// Lines before the first header belong to the Sectionless section, which
// always exists and is never written with a header. Comments, blank lines and
// untouched assignments are written back byte for byte, so loading and saving
// an unchanged file reproduces it exactly.
//
// Parsing is a best-effort prefix parse: the first malformed line stops the
// parse and everything read before it stays usable. LoadWithDiagnostics and
// Parse report where and why the parse stopped.
//
// A Document is not safe for concurrent use. See package store for a guarded
// holder.
package cfgfile
