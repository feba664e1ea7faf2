// SPDX-License-Identifier: MIT

package log

// Canonical field name constants for structured logging.
const (
	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldStore     = "store"
	FieldScanID    = "scan_id"

	// Document fields
	FieldPath    = "path"
	FieldSection = "section"
	FieldParam   = "param"
	FieldLine    = "line"
	FieldReason  = "reason"

	// Catalog fields
	FieldMD5     = "md5"
	FieldRomPath = "rom_path"
	FieldRoot    = "root"
	FieldCount   = "count"
)
