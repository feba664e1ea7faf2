// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Validate checks a resolved configuration.
func Validate(cfg Config) error {
	var problems []string

	if cfg.DataDir == "" {
		problems = append(problems, "dataDir must not be empty")
	}
	if cfg.Stores.Catalog == "" {
		problems = append(problems, "stores.catalog must not be empty")
	}
	if cfg.Watch.Debounce < 0 {
		problems = append(problems, "watch.debounce must not be negative")
	}
	if cfg.Scan.Workers < 1 {
		problems = append(problems, fmt.Sprintf("scan.workers must be at least 1, got %d", cfg.Scan.Workers))
	}
	if cfg.Scan.MaxDepth < 0 {
		problems = append(problems, "scan.maxDepth must not be negative")
	}
	for _, ext := range cfg.Scan.Extensions {
		if !strings.HasPrefix(ext, ".") {
			problems = append(problems, fmt.Sprintf("scan.extensions entry %q must start with '.'", ext))
		}
	}
	if cfg.Log.Level != "" {
		if _, err := zerolog.ParseLevel(cfg.Log.Level); err != nil {
			problems = append(problems, fmt.Sprintf("log.level %q is not a valid level", cfg.Log.Level))
		}
	}

	seen := make(map[string]string)
	for name, p := range map[string]string{
		"global":          cfg.Stores.Global,
		"game":            cfg.Stores.Game,
		"catalog":         cfg.Stores.Catalog,
		"builtinProfiles": cfg.Stores.BuiltinProfiles,
		"customProfiles":  cfg.Stores.CustomProfiles,
	} {
		if p == "" {
			continue
		}
		if other, ok := seen[p]; ok {
			a, b := other, name
			if b < a {
				a, b = b, a
			}
			problems = append(problems, fmt.Sprintf("stores.%s and stores.%s share the file %s", a, b, p))
			continue
		}
		seen[p] = name
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
}
