// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package file

import (
	"regexp"

	"github.com/kraklabs/revet/pkg/analyze"
)

var errHandlingRules = []rule{
	{
		pattern:  regexp.MustCompile(`(?i)if\s+err\s*!=\s*nil\s*\{\s*\}\s*$`),
		message:  "error checked but the block that handles it is empty",
		severity: analyze.SeverityWarning,
		langs:    []string{"go"},
	},
	{
		pattern:  regexp.MustCompile(`,\s*_\s*:?=\s*\w+\([^)]*\)\s*$`),
		message:  "error return value discarded with _",
		severity: analyze.SeverityInfo,
		langs:    []string{"go"},
	},
	{
		pattern:  regexp.MustCompile(`(?i)^\s*panic\s*\(\s*err\s*\)\s*$`),
		message:  "error propagated via panic instead of an error return",
		severity: analyze.SeverityWarning,
		langs:    []string{"go"},
	},
	{
		pattern:  regexp.MustCompile(`(?i)except\s*:\s*$`),
		message:  "bare except clause catches every exception, including KeyboardInterrupt/SystemExit",
		suggestion: "catch a specific exception type",
		severity: analyze.SeverityWarning,
		langs:    []string{"python"},
	},
	{
		pattern:  regexp.MustCompile(`(?i)except\s+\w+(\s+as\s+\w+)?\s*:\s*\n?\s*pass\s*$`),
		message:  "exception caught and silently ignored",
		severity: analyze.SeverityWarning,
		langs:    []string{"python"},
	},
	{
		pattern:  regexp.MustCompile(`(?i)catch\s*\([^)]*\)\s*\{\s*\}\s*$`),
		message:  "catch block is empty, silently swallowing the error",
		severity: analyze.SeverityWarning,
		langs:    []string{"typescript", "javascript"},
	},
	{
		pattern:  regexp.MustCompile(`(?i)\.catch\s*\(\s*\(\s*\)\s*=>\s*\{\s*\}\s*\)`),
		message:  "promise rejection handler is empty, silently swallowing the error",
		severity: analyze.SeverityWarning,
		langs:    []string{"typescript", "javascript"},
	},
	{
		pattern:  regexp.MustCompile(`(?i)\.unwrap_or_default\(\)\s*;?\s*$`),
		message:  "error replaced with a default value with no logging",
		severity: analyze.SeverityInfo,
		langs:    []string{"rust"},
	},
}

// ErrHandling flags error-handling smells across languages: empty
// handler blocks, discarded errors, bare/overbroad catches, and
// swallowed rejections.
type ErrHandling struct{}

func (ErrHandling) Name() string   { return "errhandling" }
func (ErrHandling) Prefix() string { return "ERR" }

func (ErrHandling) Enabled(cfg analyze.Config) bool {
	return enabledByDefault(cfg, "errhandling")
}

func (ErrHandling) Analyze(f analyze.File, cfg analyze.Config) []analyze.Finding {
	return scanLines(f, "ERR", errHandlingRules)
}
