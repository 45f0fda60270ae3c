// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

// Package suppress implements four ordered suppression filters: inline
// comment, per-path glob+prefix, global finding-ID, and baseline. Each
// finding gets exactly one reason tag — the first filter that matches
// wins, matching the ordered-table precedence already used by
// pkg/analyze/file's rule scanning.
package suppress

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/kraklabs/revet/pkg/analyze"
	"github.com/kraklabs/revet/pkg/baseline"
)

// Outcome is a Finding annotated with its suppression verdict, the
// RunLog's `Finding ∪ {suppressed, suppressionReason?}` shape.
type Outcome struct {
	analyze.Finding
	Suppressed        bool   `json:"suppressed"`
	SuppressionReason string `json:"suppressionReason,omitempty"`
}

// Rules bundles the config-driven suppression inputs: per-path
// glob→prefix-list mapping (`ignore.per_path`) and global finding-ID
// or prefix suppression (`ignore.findings`).
type Rules struct {
	PerPath map[string][]string
	Global  []string
}

// commentPrefixesByLang lists the literal comment-start tokens
// searched for a `revet-ignore` tag, per source language. Falls back
// to the catch-all "//"/"#" pair for unrecognized extensions.
var commentPrefixesByLang = map[string][]string{
	"go":         {"//", "/*"},
	"rust":       {"//", "/*"},
	"typescript": {"//", "/*"},
	"javascript": {"//", "/*"},
	"python":     {"#"},
	"protobuf":   {"//", "/*"},
}

var defaultCommentPrefixes = []string{"//", "#"}

var ignoreTagPattern = regexp.MustCompile(`^revet-ignore\s+(.+?)\s*(?:\*/)?\s*$`)

func languageFromPath(path string) string {
	switch {
	case strings.HasSuffix(path, ".go"):
		return "go"
	case strings.HasSuffix(path, ".py"):
		return "python"
	case strings.HasSuffix(path, ".ts"), strings.HasSuffix(path, ".tsx"):
		return "typescript"
	case strings.HasSuffix(path, ".js"), strings.HasSuffix(path, ".jsx"):
		return "javascript"
	case strings.HasSuffix(path, ".rs"):
		return "rust"
	case strings.HasSuffix(path, ".proto"):
		return "protobuf"
	default:
		return ""
	}
}

// extractIgnoreTags returns the suppression prefixes named in a
// `revet-ignore <P1> <P2> ...` tag on line, or nil if none is present.
func extractIgnoreTags(line, lang string) []string {
	prefixes := commentPrefixesByLang[lang]
	if prefixes == nil {
		prefixes = defaultCommentPrefixes
	}
	trimmed := strings.TrimSpace(line)
	for _, marker := range prefixes {
		idx := strings.Index(trimmed, marker)
		if idx < 0 {
			continue
		}
		rest := strings.TrimSpace(trimmed[idx+len(marker):])
		if m := ignoreTagPattern.FindStringSubmatch(rest); m != nil {
			return strings.Fields(m[1])
		}
	}
	return nil
}

func tagsContain(tags []string, prefix string) bool {
	for _, t := range tags {
		if t == prefix || t == "*" {
			return true
		}
	}
	return false
}

// inlineSuppressed checks the finding's own line and the line
// immediately above it for a matching `revet-ignore` tag.
func inlineSuppressed(f analyze.Finding, sources map[string]string) bool {
	content, ok := sources[f.File]
	if !ok {
		return false
	}
	lines := strings.Split(content, "\n")
	lang := languageFromPath(f.File)

	check := func(lineNo int) bool {
		idx := lineNo - 1
		if idx < 0 || idx >= len(lines) {
			return false
		}
		return tagsContain(extractIgnoreTags(lines[idx], lang), f.Prefix)
	}
	return check(f.Line) || check(f.Line-1)
}

// perPathSuppressed checks config's glob→prefix-list mapping.
func perPathSuppressed(f analyze.Finding, perPath map[string][]string) (string, bool) {
	for glob, prefixes := range perPath {
		matched, err := doublestar.Match(glob, f.File)
		if err != nil || !matched {
			continue
		}
		if tagsContain(prefixes, f.Prefix) {
			return fmt.Sprintf("per-path rule: %s", glob), true
		}
	}
	return "", false
}

// globalIDSuppressed checks config's global finding-id/prefix list.
func globalIDSuppressed(f analyze.Finding, global []string) bool {
	for _, entry := range global {
		if entry == f.ID || entry == f.Prefix {
			return true
		}
	}
	return false
}

// Apply runs all four filters, in order, over findings and returns
// one Outcome per finding. sources maps a finding's File path to that
// file's full text, used for inline-comment lookups; bl may be nil
// (no baseline yet).
func Apply(findings []analyze.Finding, sources map[string]string, rules Rules, bl *baseline.Baseline) []Outcome {
	out := make([]Outcome, len(findings))
	for i, f := range findings {
		o := Outcome{Finding: f}

		switch {
		case inlineSuppressed(f, sources):
			o.Suppressed, o.SuppressionReason = true, "inline"
		default:
			if reason, ok := perPathSuppressed(f, rules.PerPath); ok {
				o.Suppressed, o.SuppressionReason = true, reason
			} else if globalIDSuppressed(f, rules.Global) {
				o.Suppressed, o.SuppressionReason = true, "per-path rule: finding-id"
			} else if bl.Matches(f) {
				o.Suppressed, o.SuppressionReason = true, "baseline"
			}
		}
		out[i] = o
	}
	return out
}

// Summary tallies a RunLog's summary block: severities for kept
// findings, plus a total suppressed count, such that
// errors+warnings+info+suppressed always equals len(outcomes).
type Summary struct {
	Errors     int `json:"errors"`
	Warnings   int `json:"warnings"`
	Info       int `json:"info"`
	Suppressed int `json:"suppressed"`
}

// Summarize computes the RunLog summary block from suppression
// outcomes.
func Summarize(outcomes []Outcome) Summary {
	var s Summary
	for _, o := range outcomes {
		if o.Suppressed {
			s.Suppressed++
			continue
		}
		switch o.Severity {
		case analyze.SeverityError:
			s.Errors++
		case analyze.SeverityWarning:
			s.Warnings++
		case analyze.SeverityInfo:
			s.Info++
		}
	}
	return s
}

// Kept returns only the non-suppressed findings from outcomes, in
// their original order.
func Kept(outcomes []Outcome) []analyze.Finding {
	kept := make([]analyze.Finding, 0, len(outcomes))
	for _, o := range outcomes {
		if !o.Suppressed {
			kept = append(kept, o.Finding)
		}
	}
	return kept
}
