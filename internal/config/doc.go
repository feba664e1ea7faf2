// SPDX-License-Identifier: MIT

// Package config loads the settings that tell romcfg where its stores live
// and how they are watched and scanned.
//
// Precedence is ENV > file > defaults. The YAML file is parsed strictly:
// unknown keys are an error.
package config
