// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package file holds the built-in regex/line-scanning FileAnalyzers:
// secrets, SQL injection, ML anti-patterns, infrastructure, React hooks,
// async patterns, dependency hygiene, error handling, toolchain, and
// user-defined custom rules.
//
// Every analyzer in this package follows the same ordered-pattern-table
// shape: a slice of structs pairing a compiled regexp with a message and
// an optional language gate, walked in order against each line of the
// file.
package file

import (
	"path/filepath"
	"strings"

	"github.com/kraklabs/revet/pkg/analyze"
)

// rule is one pattern-table entry shared by every analyzer in this
// package.
type rule struct {
	pattern    matcher
	message    string
	suggestion string
	severity   analyze.Severity
	langs      []string // empty means all languages
}

// matcher is satisfied by *regexp.Regexp; kept as an interface so rule
// tables can be declared with regexp.MustCompile literals without an
// import cycle concern.
type matcher interface {
	MatchString(string) bool
}

func langMatches(langs []string, lang string) bool {
	if len(langs) == 0 {
		return true
	}
	for _, l := range langs {
		if l == lang {
			return true
		}
	}
	return false
}

// scanLines walks f's content line by line, applying every rule whose
// language gate matches f.Language, and emits one Finding per match
// (first matching rule per line wins, mirroring detectStub's
// first-match-in-order semantics).
func scanLines(f analyze.File, prefix string, rules []rule) []analyze.Finding {
	var out []analyze.Finding
	lines := strings.Split(string(f.Content), "\n")
	for i, line := range lines {
		for _, r := range rules {
			if !langMatches(r.langs, f.Language) {
				continue
			}
			if r.pattern.MatchString(line) {
				out = append(out, analyze.Finding{
					Prefix:     prefix,
					Severity:   r.severity,
					File:       f.Path,
					Line:       i + 1,
					Message:    r.message,
					Suggestion: r.suggestion,
				})
				break
			}
		}
	}
	return out
}

// enabledByDefault reports whether a module is active given cfg: absent
// from EnabledModules (nil map or missing key) defaults to enabled, an
// explicit false opts a module out.
func enabledByDefault(cfg analyze.Config, name string) bool {
	if cfg.EnabledModules == nil {
		return true
	}
	v, ok := cfg.EnabledModules[name]
	if !ok {
		return true
	}
	return v
}

// languageFromPath maps an extension to the language tag used by the
// rule tables' langs gate, matching the tags pkg/parser's per-language
// packages use ("go", "python", "typescript", "javascript", "rust").
func languageFromPath(path string) string {
	switch filepath.Ext(path) {
	case ".go":
		return "go"
	case ".py":
		return "python"
	case ".ts", ".tsx":
		return "typescript"
	case ".js", ".jsx":
		return "javascript"
	case ".rs":
		return "rust"
	default:
		return ""
	}
}
