// SPDX-License-Identifier: MIT

// Package catalog keeps the ROM catalog: one config section per ROM, titled
// by the MD5 of the file contents.
package catalog

import (
	"strconv"
	"time"

	"github.com/ManuGH/romcfg/internal/cfgfile"
)

// Parameter names of a catalog section.
const (
	KeyGoodName    = "goodName"
	KeyBaseName    = "baseName"
	KeyRomPath     = "romPath"
	KeyZipPath     = "zipPath"
	KeyArtPath     = "artPath"
	KeyCRC         = "crc"
	KeyHeaderName  = "headerName"
	KeyCountryCode = "countryCode"
	KeyLastPlayed  = "lastPlayed"
)

// Entry is the metadata cached for one ROM.
type Entry struct {
	MD5         string
	GoodName    string
	BaseName    string
	RomPath     string
	ZipPath     string
	ArtPath     string
	CRC         string
	HeaderName  string
	CountryCode string
	LastPlayed  time.Time
}

// Complete reports whether the entry carries the header details needed to
// show it in a list.
func (e Entry) Complete() bool {
	return e.RomPath != "" && e.CRC != "" && e.CountryCode != ""
}

// Title returns the header name, falling back to the good name for ROMs
// without a header.
func (e Entry) Title() string {
	if e.HeaderName != "" {
		return e.HeaderName
	}
	return e.GoodName
}

func (e Entry) fields() [][2]string {
	lastPlayed := ""
	if !e.LastPlayed.IsZero() {
		lastPlayed = strconv.FormatInt(e.LastPlayed.Unix(), 10)
	}
	return [][2]string{
		{KeyGoodName, e.GoodName},
		{KeyBaseName, e.BaseName},
		{KeyRomPath, e.RomPath},
		{KeyZipPath, e.ZipPath},
		{KeyArtPath, e.ArtPath},
		{KeyCRC, e.CRC},
		{KeyHeaderName, e.HeaderName},
		{KeyCountryCode, e.CountryCode},
		{KeyLastPlayed, lastPlayed},
	}
}

func entryFromSection(s *cfgfile.Section) Entry {
	get := func(k string) string {
		v, _ := s.Value(k)
		return v
	}
	e := Entry{
		MD5:         s.Title(),
		GoodName:    get(KeyGoodName),
		BaseName:    get(KeyBaseName),
		RomPath:     get(KeyRomPath),
		ZipPath:     get(KeyZipPath),
		ArtPath:     get(KeyArtPath),
		CRC:         get(KeyCRC),
		HeaderName:  get(KeyHeaderName),
		CountryCode: get(KeyCountryCode),
	}
	if v := get(KeyLastPlayed); v != "" {
		if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
			e.LastPlayed = time.Unix(secs, 0)
		}
	}
	return e
}
