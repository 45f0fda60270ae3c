// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package file

import (
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/kraklabs/revet/pkg/analyze"
)

// Custom evaluates cfg.CustomRules — declarative, user-supplied regex
// rules — against every file. Unlike the other FileAnalyzers, Custom's
// rule set comes entirely from cfg rather than a compiled-in table, so
// its patterns are recompiled per Analyze call; pkg/config validates
// the regex syntax at load time so a bad pattern here is a config bug,
// not a runtime path to guard.
type Custom struct{}

func (Custom) Name() string   { return "custom" }
func (Custom) Prefix() string { return "CUSTOM" }

func (Custom) Enabled(cfg analyze.Config) bool {
	return len(cfg.CustomRules) > 0 && enabledByDefault(cfg, "custom")
}

func (Custom) Analyze(f analyze.File, cfg analyze.Config) []analyze.Finding {
	var out []analyze.Finding
	lines := strings.Split(string(f.Content), "\n")

	for _, r := range cfg.CustomRules {
		if !customRuleAppliesToPath(r, f.Path) {
			continue
		}
		pattern, err := regexp.Compile(r.Pattern)
		if err != nil {
			continue
		}
		for i, line := range lines {
			if r.RejectIfContains != "" && strings.Contains(line, r.RejectIfContains) {
				continue
			}
			if !pattern.MatchString(line) {
				continue
			}
			out = append(out, analyze.Finding{
				Prefix:     "CUSTOM",
				Severity:   r.Severity,
				File:       f.Path,
				Line:       i + 1,
				Message:    r.Message,
				Suggestion: r.Suggestion,
				FixHint:    customFixHint(r, line),
			})
		}
	}
	return out
}

func customRuleAppliesToPath(r analyze.CustomRule, path string) bool {
	if len(r.Paths) == 0 {
		return true
	}
	for _, glob := range r.Paths {
		if match, _ := doublestar.Match(glob, path); match {
			return true
		}
	}
	return false
}

// customFixHint applies FixFind/FixReplace to the matched line when
// both are set, producing the replacement text a caller's auto-fix
// pass would write back; otherwise returns empty, leaving Suggestion as
// the only guidance.
func customFixHint(r analyze.CustomRule, line string) string {
	if r.FixFind == "" || r.FixReplace == "" {
		return ""
	}
	fixPattern, err := regexp.Compile(r.FixFind)
	if err != nil {
		return ""
	}
	return fixPattern.ReplaceAllString(line, r.FixReplace)
}
