// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package file

import (
	"regexp"
	"strings"

	"github.com/kraklabs/revet/pkg/analyze"
)

var dependencyManifests = map[string]bool{
	"go.mod":           true,
	"package.json":     true,
	"requirements.txt": true,
	"cargo.toml":       true,
	"pipfile":          true,
}

func isDependencyManifest(path string) bool {
	base := strings.ToLower(path)
	if idx := strings.LastIndex(base, "/"); idx >= 0 {
		base = base[idx+1:]
	}
	return dependencyManifests[base]
}

var dependencyHygieneRules = []rule{
	{
		pattern:  regexp.MustCompile(`(?i)"[^"]+"\s*:\s*"\*"`),
		message:  "dependency pinned to wildcard version \"*\"",
		suggestion: "pin to a specific version or range",
		severity: analyze.SeverityWarning,
	},
	{
		pattern:  regexp.MustCompile(`(?i)"[^"]+"\s*:\s*"latest"`),
		message:  "dependency pinned to \"latest\"",
		severity: analyze.SeverityWarning,
	},
	{
		pattern:  regexp.MustCompile(`^\s*[\w.\-]+\s*$`),
		message:  "requirement has no version specifier",
		suggestion: "pin an exact or minimum version to keep builds reproducible",
		severity: analyze.SeverityInfo,
	},
	{
		pattern:  regexp.MustCompile(`(?i)replace\s+\S+\s*=>\s*\.\./`),
		message:  "go.mod replace directive points at a local path, which won't resolve outside this checkout",
		severity: analyze.SeverityWarning,
	},
	{
		pattern:  regexp.MustCompile(`(?i)\bversion\s*=\s*"\*"`),
		message:  "Cargo dependency pinned to wildcard version \"*\"",
		severity: analyze.SeverityWarning,
	},
}

// DepHygiene flags dependency-manifest smells: wildcard or "latest"
// version pins, unversioned requirements, and local replace directives
// that won't resolve in another checkout.
type DepHygiene struct{}

func (DepHygiene) Name() string   { return "dephygiene" }
func (DepHygiene) Prefix() string { return "DEP" }

func (DepHygiene) Enabled(cfg analyze.Config) bool {
	return enabledByDefault(cfg, "dephygiene")
}

func (DepHygiene) Analyze(f analyze.File, cfg analyze.Config) []analyze.Finding {
	if !isDependencyManifest(f.Path) {
		return nil
	}
	base := strings.ToLower(f.Path)
	if idx := strings.LastIndex(base, "/"); idx >= 0 {
		base = base[idx+1:]
	}
	// requirements.txt is the only manifest where a bare name-only line
	// (no version specifier) is itself the smell; skip that rule for the
	// others, where a bare identifier is normal syntax (e.g. go.mod's
	// "go 1.24").
	rules := dependencyHygieneRules
	if base != "requirements.txt" {
		rules = dependencyHygieneRules[:2]
		rules = append(append([]rule{}, rules...), dependencyHygieneRules[3:]...)
	}
	return scanLines(f, "DEP", rules)
}
