// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ManuGH/romcfg/internal/log"
)

// Environment variable names.
const (
	EnvDataDir         = "ROMCFG_DATA_DIR"
	EnvGlobal          = "ROMCFG_GLOBAL_FILE"
	EnvGame            = "ROMCFG_GAME_FILE"
	EnvCatalog         = "ROMCFG_CATALOG_FILE"
	EnvBuiltinProfiles = "ROMCFG_PROFILES_BUILTIN_FILE"
	EnvCustomProfiles  = "ROMCFG_PROFILES_CUSTOM_FILE"
	EnvWatch           = "ROMCFG_WATCH"
	EnvWatchDebounce   = "ROMCFG_WATCH_DEBOUNCE"
	EnvScanRoots       = "ROMCFG_SCAN_ROOTS"
	EnvScanWorkers     = "ROMCFG_SCAN_WORKERS"
	EnvScanMaxDepth    = "ROMCFG_SCAN_MAX_DEPTH"
	EnvLogLevel        = "ROMCFG_LOG_LEVEL"
)

// ParseString reads a string from environment variable or returns default value.
func ParseString(key, defaultValue string) string {
	logger := log.WithComponent("config")
	if value, ok := os.LookupEnv(key); ok && value != "" {
		logger.Debug().
			Str("key", key).
			Str("value", value).
			Str("source", "environment").
			Msg("using environment variable")
		return value
	}
	return defaultValue
}

// ParseInt reads an integer from environment variable or returns default value.
// It falls back to default on parse errors.
func ParseInt(key string, defaultValue int) int {
	logger := log.WithComponent("config")
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Int("default", defaultValue).
			Msg("invalid integer in environment variable, using default")
		return defaultValue
	}
	logger.Debug().
		Str("key", key).
		Int("value", i).
		Str("source", "environment").
		Msg("using environment variable")
	return i
}

// ParseDuration reads a duration in Go duration format (e.g. "5s").
// It falls back to default on parse errors or empty variables.
func ParseDuration(key string, defaultValue time.Duration) time.Duration {
	logger := log.WithComponent("config")
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Dur("default", defaultValue).
			Msg("invalid duration in environment variable, using default")
		return defaultValue
	}
	logger.Debug().
		Str("key", key).
		Dur("value", d).
		Str("source", "environment").
		Msg("using environment variable")
	return d
}

// ParseBool reads a boolean from environment variable or returns default value.
// It accepts "true", "false", "1", "0", "yes", "no" (case-insensitive).
func ParseBool(key string, defaultValue bool) bool {
	logger := log.WithComponent("config")
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	switch strings.ToLower(v) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Bool("default", defaultValue).
			Msg("invalid boolean in environment variable, using default")
		return defaultValue
	}
}

// ParseList reads an os.PathListSeparator separated list. Empty elements are
// dropped.
func ParseList(key string, defaultValue []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	var out []string
	for _, p := range filepath.SplitList(v) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (l *Loader) mergeEnvConfig(cfg *Config) {
	cfg.DataDir = l.envString(EnvDataDir, cfg.DataDir)
	cfg.Stores.Global = l.envString(EnvGlobal, cfg.Stores.Global)
	cfg.Stores.Game = l.envString(EnvGame, cfg.Stores.Game)
	cfg.Stores.Catalog = l.envString(EnvCatalog, cfg.Stores.Catalog)
	cfg.Stores.BuiltinProfiles = l.envString(EnvBuiltinProfiles, cfg.Stores.BuiltinProfiles)
	cfg.Stores.CustomProfiles = l.envString(EnvCustomProfiles, cfg.Stores.CustomProfiles)
	cfg.Watch.Enabled = l.envBool(EnvWatch, cfg.Watch.Enabled)
	cfg.Watch.Debounce = l.envDuration(EnvWatchDebounce, cfg.Watch.Debounce)
	cfg.Scan.Roots = l.envList(EnvScanRoots, cfg.Scan.Roots)
	cfg.Scan.Workers = l.envInt(EnvScanWorkers, cfg.Scan.Workers)
	cfg.Scan.MaxDepth = l.envInt(EnvScanMaxDepth, cfg.Scan.MaxDepth)
	cfg.Log.Level = l.envString(EnvLogLevel, cfg.Log.Level)
}
