// SPDX-License-Identifier: MIT

package catalog

import (
	"path/filepath"
	"strings"
)

// Details is what a Describer knows about a ROM file.
type Details struct {
	GoodName    string
	BaseName    string
	ArtPath     string
	CRC         string
	HeaderName  string
	CountryCode string
}

// Describer supplies ROM details for a hashed file.
type Describer interface {
	Describe(path, md5 string) (Details, error)
}

// DescriberFunc adapts a function to Describer.
type DescriberFunc func(path, md5 string) (Details, error)

func (f DescriberFunc) Describe(path, md5 string) (Details, error) { return f(path, md5) }

// FileNameDescriber derives names from the file name. It does not read ROM
// headers, so it leaves CRC and country empty unless Unknown is set.
type FileNameDescriber struct {
	// ArtDir, when set, gives every entry an artPath of ArtDir/<md5>.png.
	ArtDir string
	// Unknown fills CRC and country with placeholder values so entries
	// show up in lists.
	Unknown bool
}

func (d FileNameDescriber) Describe(path, md5 string) (Details, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	det := Details{
		GoodName: name,
		BaseName: baseName(name),
	}
	if d.ArtDir != "" {
		det.ArtPath = filepath.Join(d.ArtDir, md5+".png")
	}
	if d.Unknown {
		det.CRC = "00000000 00000000"
		det.CountryCode = "0"
	}
	return det, nil
}

// baseName strips good-name tags such as "(U)" or "[!]".
func baseName(goodName string) string {
	if i := strings.IndexAny(goodName, "(["); i > 0 {
		return strings.TrimSpace(goodName[:i])
	}
	return goodName
}
