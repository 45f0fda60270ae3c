// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

// Package config decodes the `.revet.toml` external configuration
// surface into a typed Config, and adapts it into the analyze.Config
// the core dispatcher consumes. The core never reads `.revet.toml` in
// production — that is the external loader's job — but this package is
// what cmd/revet and the core's own tests use to get a concrete Config.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	revetErrors "github.com/kraklabs/revet/internal/errors"
	"github.com/kraklabs/revet/pkg/analyze"
)

// FailOn is the "general.fail_on" threshold: the external CLI exits
// nonzero once a finding at or above this severity is present.
type FailOn string

const (
	FailOnError   FailOn = "error"
	FailOnWarning FailOn = "warning"
	FailOnInfo    FailOn = "info"
	FailOnNever   FailOn = "never"
)

var validFailOn = map[FailOn]bool{
	FailOnError: true, FailOnWarning: true, FailOnInfo: true, FailOnNever: true,
}

// General holds `[general]` table values.
type General struct {
	DiffBase string `toml:"diff_base"`
	FailOn   FailOn `toml:"fail_on"`
	// ImpactDepth bounds the backward-impact walk depth, clamped to
	// [1,20] on load.
	ImpactDepth int `toml:"impact_depth"`
}

// Ignore holds `[ignore]` table values.
type Ignore struct {
	Paths    []string            `toml:"paths"`
	Findings []string            `toml:"findings"`
	PerPath  map[string][]string `toml:"per_path"`
}

// Rule is one `[[rules]]` entry, the TOML mirror of analyze.CustomRule.
type Rule struct {
	ID               string          `toml:"id"`
	Pattern          string          `toml:"pattern"`
	Message          string          `toml:"message"`
	Severity         analyze.Severity `toml:"severity"`
	Paths            []string        `toml:"paths"`
	Suggestion       string          `toml:"suggestion"`
	RejectIfContains string          `toml:"reject_if_contains"`
	FixFind          string          `toml:"fix_find"`
	FixReplace       string          `toml:"fix_replace"`
}

// Config is the full decoded shape of `.revet.toml`.
type Config struct {
	General General         `toml:"general"`
	Modules map[string]bool `toml:"modules"`
	Ignore  Ignore          `toml:"ignore"`
	Rules   []Rule          `toml:"rules"`
}

// Default returns the zero-config defaults: diff against "HEAD",
// fail on any error-severity finding, every module enabled, nothing
// ignored.
func Default() *Config {
	return &Config{
		General: General{
			DiffBase:    "HEAD",
			FailOn:      FailOnError,
			ImpactDepth: 5,
		},
		Modules: map[string]bool{},
		Ignore: Ignore{
			Paths:    nil,
			Findings: nil,
			PerPath:  map[string][]string{},
		},
	}
}

// Load reads and decodes a `.revet.toml` file at path. A missing file
// is not an error — Default() is returned instead, so a repo with no
// config still gets sane behavior.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, revetErrForRead(path, err)
	}
	return Parse(data)
}

// Parse decodes raw TOML bytes into a Config, applying defaults for
// any field left unset and validating general.fail_on.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, revetErrors.NewKindError(
			revetErrors.KindConfiguration,
			"cannot parse .revet.toml",
			err.Error(),
			"check the file for TOML syntax errors",
			err,
		)
	}
	if cfg.General.DiffBase == "" {
		cfg.General.DiffBase = "HEAD"
	}
	if cfg.General.FailOn == "" {
		cfg.General.FailOn = FailOnError
	}
	if !validFailOn[cfg.General.FailOn] {
		return nil, revetErrors.NewKindError(
			revetErrors.KindConfiguration,
			fmt.Sprintf("invalid general.fail_on value %q", cfg.General.FailOn),
			"fail_on must be one of error, warning, info, never",
			`set general.fail_on = "error"`,
			nil,
		)
	}
	if cfg.General.ImpactDepth <= 0 {
		cfg.General.ImpactDepth = 5
	}
	if cfg.General.ImpactDepth > 20 {
		cfg.General.ImpactDepth = 20
	}
	if cfg.Modules == nil {
		cfg.Modules = map[string]bool{}
	}
	if cfg.Ignore.PerPath == nil {
		cfg.Ignore.PerPath = map[string][]string{}
	}
	return cfg, nil
}

func revetErrForRead(path string, err error) error {
	return revetErrors.NewKindError(
		revetErrors.KindConfiguration,
		"cannot read "+path,
		err.Error(),
		"check the file exists and is readable",
		err,
	)
}

// ToAnalyzeConfig adapts the decoded TOML config into the
// analyze.Config the dispatcher runs against.
func (c *Config) ToAnalyzeConfig() analyze.Config {
	rules := make([]analyze.CustomRule, 0, len(c.Rules))
	for _, r := range c.Rules {
		rules = append(rules, analyze.CustomRule{
			ID:               r.ID,
			Pattern:          r.Pattern,
			Message:          r.Message,
			Severity:         r.Severity,
			Paths:            r.Paths,
			Suggestion:       r.Suggestion,
			RejectIfContains: r.RejectIfContains,
			FixFind:          r.FixFind,
			FixReplace:       r.FixReplace,
		})
	}
	return analyze.Config{
		EnabledModules: c.Modules,
		CustomRules:    rules,
	}
}
