// SPDX-License-Identifier: MIT

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader handles configuration loading with precedence ENV > File > Defaults.
type Loader struct {
	configPath      string
	ConsumedEnvKeys map[string]struct{}
}

// NewLoader creates a new configuration loader. An empty configPath skips
// the file step.
func NewLoader(configPath string) *Loader {
	return &Loader{
		configPath:      configPath,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envBool(key string, defaultVal bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

func (l *Loader) envDuration(key string, defaultVal time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, defaultVal)
}

func (l *Loader) envList(key string, defaultVal []string) []string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseList(key, defaultVal)
}

// Load loads configuration: defaults, then the file (strict), then the
// environment, then path resolution and validation.
func (l *Loader) Load() (Config, error) {
	cfg := Config{}
	setDefaults(&cfg)

	if l.configPath != "" {
		fileCfg, err := l.loadFile(l.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
		mergeFileConfig(&cfg, fileCfg)
	}

	l.mergeEnvConfig(&cfg)

	if err := resolvePaths(&cfg); err != nil {
		return cfg, fmt.Errorf("resolve paths: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFile loads configuration from a YAML file with STRICT parsing.
// Unknown fields cause an error wrapping ErrUnknownConfigField.
func (l *Loader) loadFile(path string) (*FileConfig, error) {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var fileCfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&fileCfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &FileConfig{}, nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("%w: %v", ErrUnknownConfigField, err)
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config file contains multiple documents or trailing content")
	}
	return &fileCfg, nil
}

func mergeFileConfig(cfg *Config, f *FileConfig) {
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}
	mergeString(&cfg.Stores.Global, f.Stores.Global)
	mergeString(&cfg.Stores.Game, f.Stores.Game)
	mergeString(&cfg.Stores.Catalog, f.Stores.Catalog)
	mergeString(&cfg.Stores.BuiltinProfiles, f.Stores.BuiltinProfiles)
	mergeString(&cfg.Stores.CustomProfiles, f.Stores.CustomProfiles)

	if f.Watch != nil {
		if f.Watch.Enabled != nil {
			cfg.Watch.Enabled = *f.Watch.Enabled
		}
		if f.Watch.Debounce != 0 {
			cfg.Watch.Debounce = f.Watch.Debounce
		}
	}
	if f.Scan != nil {
		if len(f.Scan.Roots) > 0 {
			cfg.Scan.Roots = append([]string(nil), f.Scan.Roots...)
		}
		if f.Scan.Workers != nil {
			cfg.Scan.Workers = *f.Scan.Workers
		}
		if f.Scan.MaxDepth != nil {
			cfg.Scan.MaxDepth = *f.Scan.MaxDepth
		}
		if len(f.Scan.Extensions) > 0 {
			cfg.Scan.Extensions = append([]string(nil), f.Scan.Extensions...)
		}
	}
	if f.Log != nil && f.Log.Level != "" {
		cfg.Log.Level = f.Log.Level
	}
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// resolvePaths makes DataDir absolute and joins relative store paths onto it.
func resolvePaths(cfg *Config) error {
	abs, err := filepath.Abs(cfg.DataDir)
	if err != nil {
		return err
	}
	cfg.DataDir = abs

	for _, p := range []*string{
		&cfg.Stores.Global,
		&cfg.Stores.Game,
		&cfg.Stores.Catalog,
		&cfg.Stores.BuiltinProfiles,
		&cfg.Stores.CustomProfiles,
	} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(cfg.DataDir, *p)
		}
	}
	return nil
}
