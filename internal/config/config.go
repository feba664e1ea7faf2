// SPDX-License-Identifier: MIT

package config

import "time"

// Config is the resolved application configuration.
type Config struct {
	DataDir string
	Stores  StoresConfig
	Watch   WatchConfig
	Scan    ScanConfig
	Log     LogConfig
}

// StoresConfig holds one file path per logical store. Relative paths are
// resolved against DataDir.
type StoresConfig struct {
	Global          string `yaml:"global,omitempty"`
	Game            string `yaml:"game,omitempty"`
	Catalog         string `yaml:"catalog,omitempty"`
	BuiltinProfiles string `yaml:"builtinProfiles,omitempty"`
	CustomProfiles  string `yaml:"customProfiles,omitempty"`
}

// WatchConfig controls hot reloading of store files.
type WatchConfig struct {
	Enabled  bool
	Debounce time.Duration
}

// ScanConfig controls the ROM catalog scan.
type ScanConfig struct {
	Roots      []string
	Workers    int
	MaxDepth   int
	Extensions []string
}

// LogConfig controls the global logger.
type LogConfig struct {
	Level string
}

// FileConfig mirrors the YAML layout. Pointer fields distinguish "unset"
// from zero values so defaults survive partial files.
type FileConfig struct {
	DataDir string       `yaml:"dataDir,omitempty"`
	Stores  StoresConfig `yaml:"stores,omitempty"`
	Watch   *WatchFile   `yaml:"watch,omitempty"`
	Scan    *ScanFile    `yaml:"scan,omitempty"`
	Log     *LogFile     `yaml:"log,omitempty"`
}

// WatchFile is the YAML form of WatchConfig.
type WatchFile struct {
	Enabled  *bool         `yaml:"enabled,omitempty"`
	Debounce time.Duration `yaml:"debounce,omitempty"`
}

// ScanFile is the YAML form of ScanConfig.
type ScanFile struct {
	Roots      []string `yaml:"roots,omitempty"`
	Workers    *int     `yaml:"workers,omitempty"`
	MaxDepth   *int     `yaml:"maxDepth,omitempty"`
	Extensions []string `yaml:"extensions,omitempty"`
}

// LogFile is the YAML form of LogConfig.
type LogFile struct {
	Level string `yaml:"level,omitempty"`
}

// Default store file names, relative to DataDir.
const (
	DefaultGlobalFile          = "global.cfg"
	DefaultGameFile            = "game.cfg"
	DefaultCatalogFile         = "romcache.cfg"
	DefaultBuiltinProfilesFile = "profiles/emulation.cfg"
	DefaultCustomProfilesFile  = "profiles/emulation_custom.cfg"
)

// DefaultExtensions lists the file extensions the catalog scan picks up.
var DefaultExtensions = []string{".z64", ".n64", ".v64", ".rom", ".zip", ".7z"}

func setDefaults(cfg *Config) {
	cfg.DataDir = "data"
	cfg.Stores = StoresConfig{
		Global:          DefaultGlobalFile,
		Game:            DefaultGameFile,
		Catalog:         DefaultCatalogFile,
		BuiltinProfiles: DefaultBuiltinProfilesFile,
		CustomProfiles:  DefaultCustomProfilesFile,
	}
	cfg.Watch = WatchConfig{Enabled: false, Debounce: 500 * time.Millisecond}
	cfg.Scan = ScanConfig{Workers: 4, MaxDepth: 0, Extensions: append([]string(nil), DefaultExtensions...)}
	cfg.Log = LogConfig{Level: "info"}
}
