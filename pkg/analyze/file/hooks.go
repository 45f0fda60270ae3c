// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package file

import (
	"regexp"

	"github.com/kraklabs/revet/pkg/analyze"
)

var hooksRules = []rule{
	{
		pattern:  regexp.MustCompile(`(?i)useEffect\s*\(\s*(\([^)]*\)|function\s*\([^)]*\))\s*=>?\s*\{[^}]*\}\s*\)\s*;?\s*$`),
		message:  "useEffect with no dependency array runs on every render",
		suggestion: "add a dependency array, even an empty one, unless running on every render is intentional",
		severity: analyze.SeverityWarning,
		langs:    []string{"typescript", "javascript"},
	},
	{
		pattern:  regexp.MustCompile(`(?i)if\s*\([^)]*\)\s*\{\s*(const|let|var)?\s*\[?\w*,?\s*set\w+\]?\s*=\s*useState`),
		message:  "useState called conditionally, violating the rules of hooks",
		severity: analyze.SeverityError,
		langs:    []string{"typescript", "javascript"},
	},
	{
		pattern:  regexp.MustCompile(`(?i)for\s*\([^)]*\)\s*\{[^}]*use(State|Effect|Context|Ref|Memo|Callback)\s*\(`),
		message:  "hook called inside a loop, violating the rules of hooks",
		severity: analyze.SeverityError,
		langs:    []string{"typescript", "javascript"},
	},
	{
		pattern:  regexp.MustCompile(`(?i)useCallback\s*\([^,]+,\s*\[\s*\]\s*\)`),
		message:  "useCallback with an empty dependency array closes over stale values if it references props or state",
		severity: analyze.SeverityInfo,
		langs:    []string{"typescript", "javascript"},
	},
}

// Hooks flags React hooks misuse: conditional or loop-nested hook
// calls and suspicious dependency arrays.
type Hooks struct{}

func (Hooks) Name() string   { return "hooks" }
func (Hooks) Prefix() string { return "HOOKS" }

func (Hooks) Enabled(cfg analyze.Config) bool {
	return enabledByDefault(cfg, "hooks")
}

func (Hooks) Analyze(f analyze.File, cfg analyze.Config) []analyze.Finding {
	return scanLines(f, "HOOKS", hooksRules)
}
