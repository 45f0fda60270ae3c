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

// Package analyze defines the Finding type and the FileAnalyzer/
// GraphAnalyzer capability contracts, plus the Dispatcher that runs
// both families and renumbers the collected findings.
//
// Dispatch runs FileAnalyzers over a bounded worker pool, and uses
// golang.org/x/sync/errgroup.WithContext for the GraphAnalyzer stage so
// the first analyzer error cancels the rest.
package analyze

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/kraklabs/revet/pkg/graph"
)

// Severity is the closed set of finding severities.
type Severity string

const (
	SeverityError   Severity = "Error"
	SeverityWarning Severity = "Warning"
	SeverityInfo    Severity = "Info"
)

// Finding is a single analyzer observation. ID is empty until the
// dispatcher's renumbering pass assigns it.
type Finding struct {
	ID                 string
	Prefix             string
	Severity           Severity
	File               string
	Line               int
	Message            string
	Suggestion         string
	FixHint            string
	AffectedDependents int
}

// File is the input a FileAnalyzer inspects.
type File struct {
	Path     string
	Content  []byte
	Language string
}

// FileAnalyzer inspects one file's raw bytes without needing the graph
// — regex/line-scanning checks.
type FileAnalyzer interface {
	Name() string
	Prefix() string
	Enabled(cfg Config) bool
	Analyze(f File, cfg Config) []Finding
}

// GraphAnalyzer inspects the fully resolved graph.
type GraphAnalyzer interface {
	Name() string
	Prefix() string
	Enabled(cfg Config) bool
	Analyze(g *graph.Graph, cfg Config) []Finding
}

// Config is the subset of the config surface analyzers need. Defined
// here (rather than importing pkg/config) to keep analyzers decoupled
// from the config file format; pkg/config produces one of these.
type Config struct {
	EnabledModules map[string]bool
	CustomRules    []CustomRule
}

// CustomRule is one declarative, user-defined regex rule (the CUSTOM
// analyzer), matched per line. A line is skipped if RejectIfContains is
// non-empty and appears on it (the suppression-comment escape hatch). If
// Paths is non-empty, only files matching at least one glob are scanned.
// FixFind/FixReplace are an optional in-place auto-fix; when either is
// empty only Suggestion is emitted.
type CustomRule struct {
	ID               string
	Pattern          string
	Message          string
	Severity         Severity
	Paths            []string // doublestar globs; empty means all files
	Suggestion       string
	RejectIfContains string
	FixFind          string
	FixReplace       string
}

// ErrPrefixMismatch is a programmer error: an analyzer yielded a
// Finding whose prefix doesn't match its declared Prefix().
type ErrPrefixMismatch struct {
	Analyzer string
	Declared string
	Got      string
}

func (e ErrPrefixMismatch) Error() string {
	return fmt.Sprintf("analyze: %s declared prefix %q but yielded finding with prefix %q", e.Analyzer, e.Declared, e.Got)
}

// Dispatcher owns the registered analyzers and runs them.
type Dispatcher struct {
	fileAnalyzers  []FileAnalyzer
	graphAnalyzers []GraphAnalyzer
	workers        int
}

// New creates a Dispatcher. workers bounds FileAnalyzer concurrency; 0
// or 1 runs sequentially.
func New(workers int, fileAnalyzers []FileAnalyzer, graphAnalyzers []GraphAnalyzer) *Dispatcher {
	return &Dispatcher{fileAnalyzers: fileAnalyzers, graphAnalyzers: graphAnalyzers, workers: workers}
}

func enabledFileAnalyzers(all []FileAnalyzer, cfg Config) []FileAnalyzer {
	var active []FileAnalyzer
	for _, a := range all {
		if a.Enabled(cfg) {
			active = append(active, a)
		}
	}
	return active
}

func runFileAnalyzers(active []FileAnalyzer, f File, cfg Config) ([]Finding, error) {
	var out []Finding
	for _, a := range active {
		for _, finding := range a.Analyze(f, cfg) {
			if finding.Prefix != a.Prefix() {
				return nil, ErrPrefixMismatch{Analyzer: a.Name(), Declared: a.Prefix(), Got: finding.Prefix}
			}
			out = append(out, finding)
		}
	}
	return out, nil
}

// RunFiles runs every enabled FileAnalyzer over every file, partitioned
// across the worker pool (sequential fallback below 10 files or a
// single worker, mirroring the parse pipeline's own threshold), and
// returns the unnumbered findings.
func (d *Dispatcher) RunFiles(ctx context.Context, files []File, cfg Config) ([]Finding, error) {
	active := enabledFileAnalyzers(d.fileAnalyzers, cfg)
	if len(active) == 0 || len(files) == 0 {
		return nil, nil
	}

	workers := d.workers
	if workers <= 0 {
		workers = 1
	}

	if len(files) < 10 || workers == 1 {
		var all []Finding
		for _, f := range files {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
			findings, err := runFileAnalyzers(active, f, cfg)
			if err != nil {
				return nil, err
			}
			all = append(all, findings...)
		}
		return all, nil
	}

	jobs := make(chan int, len(files))
	type jobResult struct {
		findings []Finding
		err      error
	}
	results := make(chan jobResult, len(files))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				findings, err := runFileAnalyzers(active, files[i], cfg)
				results <- jobResult{findings: findings, err: err}
			}
		}()
	}
	for i := range files {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	var all []Finding
	for r := range results {
		if r.err != nil {
			return nil, r.err
		}
		all = append(all, r.findings...)
	}
	return all, nil
}

// RunGraph runs every enabled GraphAnalyzer concurrently via errgroup —
// analyzers share no mutable state, so there's nothing to synchronize
// beyond collecting each goroutine's result.
func (d *Dispatcher) RunGraph(ctx context.Context, g *graph.Graph, cfg Config) ([]Finding, error) {
	var active []GraphAnalyzer
	for _, a := range d.graphAnalyzers {
		if a.Enabled(cfg) {
			active = append(active, a)
		}
	}
	if len(active) == 0 {
		return nil, nil
	}

	results := make([][]Finding, len(active))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, a := range active {
		i, a := i, a
		eg.Go(func() error {
			select {
			case <-egCtx.Done():
				return egCtx.Err()
			default:
			}
			findings := a.Analyze(g, cfg)
			for _, f := range findings {
				if f.Prefix != a.Prefix() {
					return ErrPrefixMismatch{Analyzer: a.Name(), Declared: a.Prefix(), Got: f.Prefix}
				}
			}
			results[i] = findings
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var all []Finding
	for _, r := range results {
		all = append(all, r...)
	}
	return all, nil
}

// Renumber sorts findings by (prefix, file, line) and assigns dense,
// per-prefix sequence IDs ("SEC-1", "SEC-2", "CYCLE-1", ...) so IDs stay
// stable and readable regardless of which analyzers ran or in what order.
func Renumber(findings []Finding) []Finding {
	sorted := make([]Finding, len(findings))
	copy(sorted, findings)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Prefix != sorted[j].Prefix {
			return sorted[i].Prefix < sorted[j].Prefix
		}
		if sorted[i].File != sorted[j].File {
			return sorted[i].File < sorted[j].File
		}
		return sorted[i].Line < sorted[j].Line
	})

	counters := make(map[string]int)
	for i := range sorted {
		counters[sorted[i].Prefix]++
		sorted[i].ID = fmt.Sprintf("%s-%d", sorted[i].Prefix, counters[sorted[i].Prefix])
	}
	return sorted
}
