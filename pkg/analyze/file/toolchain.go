// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package file

import (
	"regexp"
	"strings"

	"github.com/kraklabs/revet/pkg/analyze"
)

var toolchainRules = []rule{
	{
		pattern:  regexp.MustCompile(`(?i)^\s*uses:\s*actions/checkout@v[12]\s*$`),
		message:  "CI workflow pinned to an unsupported actions/checkout major version",
		severity: analyze.SeverityWarning,
	},
	{
		pattern:  regexp.MustCompile(`(?i)^\s*uses:\s*[\w./-]+@(master|main)\s*$`),
		message:  "CI action pinned to a branch instead of a tag or commit SHA",
		suggestion: "pin the action to a release tag or full commit SHA",
		severity: analyze.SeverityWarning,
	},
	{
		pattern:  regexp.MustCompile(`(?i)npm\s+install\s+(?!.*--save-exact)`),
		message:  "npm install without --save-exact can drift the lockfile's resolved versions",
		severity: analyze.SeverityInfo,
	},
	{
		pattern:  regexp.MustCompile(`(?i)pip\s+install\s+(?!.*==)[\w-]+\s*$`),
		message:  "pip install without a version pin",
		severity: analyze.SeverityInfo,
	},
	{
		pattern:  regexp.MustCompile(`(?i)go\s+install\s+[\w./-]+@latest`),
		message:  "go install pinned to @latest instead of a specific version",
		severity: analyze.SeverityWarning,
	},
}

func isToolchainFile(path string) bool {
	lower := strings.ToLower(path)
	switch {
	case strings.Contains(lower, ".github/workflows/"):
		return true
	case strings.HasSuffix(lower, "makefile"):
		return true
	case strings.HasSuffix(lower, ".sh"):
		return true
	default:
		return false
	}
}

// Toolchain flags CI/build-tooling smells: unpinned or branch-pinned
// CI actions and unpinned package-manager installs in build scripts.
type Toolchain struct{}

func (Toolchain) Name() string   { return "toolchain" }
func (Toolchain) Prefix() string { return "TOOL" }

func (Toolchain) Enabled(cfg analyze.Config) bool {
	return enabledByDefault(cfg, "toolchain")
}

func (Toolchain) Analyze(f analyze.File, cfg analyze.Config) []analyze.Finding {
	if !isToolchainFile(f.Path) {
		return nil
	}
	return scanLines(f, "TOOL", toolchainRules)
}
