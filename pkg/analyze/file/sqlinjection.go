// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package file

import (
	"regexp"

	"github.com/kraklabs/revet/pkg/analyze"
)

var sqlInjectionRules = []rule{
	{
		pattern:  regexp.MustCompile(`(?i)(Query|Exec|QueryRow)\s*\(\s*(fmt\.Sprintf|"[^"]*"\s*\+)`),
		message:  "SQL statement built via string concatenation or Sprintf",
		suggestion: "use a parameterized query ($1/? placeholders) instead of interpolating values into SQL text",
		severity: analyze.SeverityError,
		langs:    []string{"go"},
	},
	{
		pattern:  regexp.MustCompile(`(?i)\.(raw|execute|cursor\.execute)\s*\(\s*f?["'].*%s.*["']\s*%`),
		message:  "SQL statement interpolated with % formatting",
		suggestion: "pass values as execute() parameters instead of formatting them into the query string",
		severity: analyze.SeverityError,
		langs:    []string{"python"},
	},
	{
		pattern:  regexp.MustCompile(`(?i)\.(query|execute)\s*\(\s*[\x60"'].*\$\{`),
		message:  "SQL statement built from a template literal with interpolated values",
		suggestion: "use parameterized placeholders instead of template-literal interpolation",
		severity: analyze.SeverityError,
		langs:    []string{"typescript", "javascript"},
	},
	{
		pattern:  regexp.MustCompile(`(?i)(SELECT|INSERT|UPDATE|DELETE)\b.*["']\s*\+\s*\w+`),
		message:  "SQL string concatenated with a variable",
		suggestion: "use a parameterized query instead of concatenating untrusted input",
		severity: analyze.SeverityError,
	},
	{
		pattern:  regexp.MustCompile(`(?i)format!\s*\(\s*["'].*\bWHERE\b`),
		message:  "SQL statement built with format!()",
		suggestion: "bind parameters through the driver instead of formatting SQL text",
		severity: analyze.SeverityWarning,
		langs:    []string{"rust"},
	},
}

// SQLInjection flags string-built SQL statements across the supported
// languages' common query-execution call shapes.
type SQLInjection struct{}

func (SQLInjection) Name() string   { return "sqlinjection" }
func (SQLInjection) Prefix() string { return "SQL" }

func (SQLInjection) Enabled(cfg analyze.Config) bool {
	return enabledByDefault(cfg, "sqlinjection")
}

func (SQLInjection) Analyze(f analyze.File, cfg analyze.Config) []analyze.Finding {
	return scanLines(f, "SQL", sqlInjectionRules)
}
