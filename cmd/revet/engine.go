// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/kraklabs/revet/internal/errors"
	"github.com/kraklabs/revet/pkg/analyze"
	analyzefile "github.com/kraklabs/revet/pkg/analyze/file"
	analyzegraph "github.com/kraklabs/revet/pkg/analyze/graph"
	"github.com/kraklabs/revet/pkg/baseline"
	"github.com/kraklabs/revet/pkg/cache"
	revetconfig "github.com/kraklabs/revet/pkg/config"
	"github.com/kraklabs/revet/pkg/diffimpact"
	"github.com/kraklabs/revet/pkg/graph"
	"github.com/kraklabs/revet/pkg/metrics"
	"github.com/kraklabs/revet/pkg/parser"
	"github.com/kraklabs/revet/pkg/parser/golang"
	"github.com/kraklabs/revet/pkg/parser/protobuf"
	"github.com/kraklabs/revet/pkg/parser/python"
	"github.com/kraklabs/revet/pkg/parser/rust"
	"github.com/kraklabs/revet/pkg/parser/tsx"
	"github.com/kraklabs/revet/pkg/pipeline"
	"github.com/kraklabs/revet/pkg/runlog"
	"github.com/kraklabs/revet/pkg/suppress"
)

// newRegistry builds the fixed five-language parser registry shared by
// every subcommand.
func newRegistry(logger *slog.Logger) *parser.Registry {
	return parser.NewRegistry(
		golang.New(logger),
		python.New(logger),
		tsx.New(logger),
		rust.New(logger),
		protobuf.New(),
	)
}

func builtinFileAnalyzers() []analyze.FileAnalyzer {
	return []analyze.FileAnalyzer{
		analyzefile.Secrets{},
		analyzefile.SQLInjection{},
		analyzefile.ErrHandling{},
		analyzefile.Async{},
		analyzefile.DepHygiene{},
		analyzefile.Infra{},
		analyzefile.MLPatterns{},
		analyzefile.Toolchain{},
		analyzefile.Hooks{},
		analyzefile.Custom{},
	}
}

func builtinGraphAnalyzers() []analyze.GraphAnalyzer {
	return []analyze.GraphAnalyzer{
		analyzegraph.Cycles{},
		analyzegraph.Complexity{},
		analyzegraph.DeadImports{},
		analyzegraph.DeadExports{},
	}
}

// cacheRoot is the default content-addressed cache + run log directory.
func cacheRoot(root string) string {
	return filepath.Join(root, ".revet-cache")
}

func baselinePath(root string) string {
	return filepath.Join(cacheRoot(root), "baseline.json")
}

// engineResult bundles everything a subcommand needs after one parse +
// analyze + suppress pass.
type engineResult struct {
	graph       *graph.Graph
	parseResult *pipeline.Result
	allFindings []analyze.Finding // full, pre-suppression set — what baseline.Save snapshots
	outcomes    []suppress.Outcome
	runLog      *runlog.RunLog
}

// discoverSources walks root collecting the raw text of every file the
// registry recognizes, for FileAnalyzer input and inline-suppression
// comment scanning. It applies the same ignore globs as the parse
// pipeline's own discovery walk (duplicated rather than shared, since
// pipeline's discover is unexported and returns absolute-path-only
// records the analyzers don't need).
func discoverSources(reg *parser.Registry, root string, ignoreGlobs []string) (map[string][]byte, []string, error) {
	sources := make(map[string][]byte)
	var relPaths []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if _, ok := reg.For(rel); !ok {
			return nil
		}
		for _, pattern := range ignoreGlobs {
			if match, _ := doublestar.Match(pattern, rel); match {
				return nil
			}
		}

		content, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil // non-fatal per file, matches pipeline's Discovery-kind tolerance
		}
		sources[rel] = content
		relPaths = append(relPaths, rel)
		return nil
	})
	if err != nil {
		return nil, nil, errors.NewDiscoveryError(
			"cannot walk repository root",
			err.Error(),
			"check the path exists and is readable",
			err,
		)
	}

	sort.Strings(relPaths)
	return sources, relPaths, nil
}

func languageForPath(reg *parser.Registry, path string) string {
	if p, ok := reg.For(path); ok {
		return p.Language()
	}
	return ""
}

// runEngine performs the full discover → parse → (optional impact
// scoping) → analyze → suppress → run-log pipeline shared by the
// review and baseline subcommands.
func runEngine(ctx context.Context, cfg *revetconfig.Config, globals GlobalFlags, scopeToImpact bool, diffBase, diffWorktree string) (*engineResult, error) {
	start := time.Now()
	logger := slog.Default()
	reg := newRegistry(logger)
	m := metrics.Default()

	store := cache.New(cacheRoot(globals.Root))

	p := pipeline.New(reg, store, logger)
	parseResult, err := p.Run(ctx, pipeline.Config{
		Root:        globals.Root,
		IgnoreGlobs: cfg.Ignore.Paths,
		Workers:     4,
	})
	if err != nil {
		return nil, errors.NewParseError("parse pipeline failed", err.Error(), "", err)
	}
	m.RecordResolveDuration(parseResult.Duration)
	for i := 0; i < parseResult.FilesParsed; i++ {
		m.RecordFileParsed(0)
	}
	for range parseResult.ParseErrors {
		m.RecordFileFailed()
	}
	for i := 0; i < parseResult.CacheHits; i++ {
		m.RecordCacheHit()
	}

	sources, relPaths, err := discoverSources(reg, globals.Root, cfg.Ignore.Paths)
	if err != nil {
		return nil, err
	}

	g := parseResult.Graph
	var seeds []graph.NodeID
	if scopeToImpact {
		runner := diffimpact.NewRunner(globals.Root)
		diff, diffErr := runner.Run(ctx, diffBase, diffWorktree)
		if diffErr != nil {
			return nil, errors.NewGitError(
				"cannot compute diff",
				diffErr.Error(),
				"pass --full to scan the whole repository instead",
				diffErr,
			)
		}
		changed := diffimpact.ChangedSymbols(g, diff)
		seeds = diffimpact.ImpactSet(g, changed, cfg.General.ImpactDepth)
	}

	files := make([]analyze.File, 0, len(relPaths))
	inScope := func(rel string) bool {
		if !scopeToImpact {
			return true
		}
		for _, id := range seeds {
			if n := g.Lookup(id); n != nil && n.Location.Path == rel {
				return true
			}
		}
		return false
	}
	stringSources := make(map[string]string, len(sources))
	for _, rel := range relPaths {
		content := sources[rel]
		stringSources[rel] = string(content)
		if !inScope(rel) {
			continue
		}
		files = append(files, analyze.File{
			Path:     rel,
			Content:  content,
			Language: languageForPath(reg, rel),
		})
	}

	dispatcher := analyze.New(4, builtinFileAnalyzers(), builtinGraphAnalyzers())
	analyzeCfg := cfg.ToAnalyzeConfig()

	fileFindings, err := dispatcher.RunFiles(ctx, files, analyzeCfg)
	if err != nil {
		return nil, errors.NewAnalyzerError("file analyzer failed", err.Error(), "", err)
	}

	graphFindings, err := dispatcher.RunGraph(ctx, g, analyzeCfg)
	if err != nil {
		return nil, errors.NewAnalyzerError("graph analyzer failed", err.Error(), "", err)
	}

	if scopeToImpact {
		scoped := graphFindings[:0:0]
		for _, f := range graphFindings {
			if inScope(f.File) {
				scoped = append(scoped, f)
			}
		}
		graphFindings = scoped
	}

	all := analyze.Renumber(append(fileFindings, graphFindings...))

	bl, err := baseline.Load(baselinePath(globals.Root))
	if err != nil {
		return nil, errors.NewCacheError("cannot load baseline", err.Error(), "", err)
	}

	rules := suppress.Rules{PerPath: cfg.Ignore.PerPath, Global: cfg.Ignore.Findings}
	outcomes := suppress.Apply(all, stringSources, rules, bl)

	for _, o := range outcomes {
		m.RecordAnalyzer(o.Prefix, 0, map[string]map[string]int{o.Prefix: {string(o.Severity): 1}})
	}

	id := runlog.NewID(start, map[string]bool{})
	log := runlog.Build(id, start, len(relPaths), g.NodeCount(), outcomes)

	return &engineResult{graph: g, parseResult: parseResult, allFindings: all, outcomes: outcomes, runLog: log}, nil
}
