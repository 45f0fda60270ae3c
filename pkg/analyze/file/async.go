// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package file

import (
	"regexp"

	"github.com/kraklabs/revet/pkg/analyze"
)

var asyncRules = []rule{
	{
		pattern:  regexp.MustCompile(`^\s*go\s+func\s*\([^)]*\)\s*\{`),
		message:  "goroutine launched inline with no visible panic recovery or WaitGroup/errgroup tracking on this line",
		severity: analyze.SeverityInfo,
		langs:    []string{"go"},
	},
	{
		pattern:  regexp.MustCompile(`(?i)\basync\s+def\s+\w+[^:]*:\s*$`),
		message:  "async function defined; verify callers await it",
		severity: analyze.SeverityInfo,
		langs:    []string{"python"},
	},
	{
		pattern:  regexp.MustCompile(`(?i)\.then\s*\([^)]*\)\s*;?\s*$`),
		message:  "promise chained with .then() but no visible .catch() on this line",
		suggestion: "attach a .catch() or wrap in try/await to avoid an unhandled rejection",
		severity: analyze.SeverityWarning,
		langs:    []string{"typescript", "javascript"},
	},
	{
		pattern:  regexp.MustCompile(`(?i)async\s+function[^{]*\{\s*$`),
		message:  "async function body opens with no visible try/catch",
		severity: analyze.SeverityInfo,
		langs:    []string{"typescript", "javascript"},
	},
	{
		pattern:  regexp.MustCompile(`(?i)\btokio::spawn\s*\(`),
		message:  "tokio task spawned; verify its JoinHandle is awaited or its errors are otherwise observed",
		severity: analyze.SeverityInfo,
		langs:    []string{"rust"},
	},
	{
		pattern:  regexp.MustCompile(`(?i)\.unwrap\(\)\s*;?\s*$`),
		message:  "unwrap() on a future/result inside async code panics the task on error",
		severity: analyze.SeverityWarning,
		langs:    []string{"rust"},
	},
}

// Async flags common concurrency-hygiene smells: fire-and-forget
// goroutines, unhandled promise rejections, and panicking unwraps in
// async contexts.
type Async struct{}

func (Async) Name() string   { return "async" }
func (Async) Prefix() string { return "ASYNC" }

func (Async) Enabled(cfg analyze.Config) bool {
	return enabledByDefault(cfg, "async")
}

func (Async) Analyze(f analyze.File, cfg analyze.Config) []analyze.Finding {
	return scanLines(f, "ASYNC", asyncRules)
}
