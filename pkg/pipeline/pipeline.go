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

// Package pipeline orchestrates the three-phase parse: parallel parse
// with a per-file cache check, serial merge in deterministic path order,
// then serial cross-file resolution.
//
// The worker pool uses a channel of job indices and a bounded set of
// goroutines, with a sequential fallback for small file sets or a
// single worker, to avoid goroutine overhead when it buys nothing.
package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/kraklabs/revet/pkg/cache"
	"github.com/kraklabs/revet/pkg/graph"
	"github.com/kraklabs/revet/pkg/identity"
	"github.com/kraklabs/revet/pkg/parser"
	"github.com/kraklabs/revet/pkg/resolver"
)

// Config controls one pipeline run.
type Config struct {
	// Root is the directory to walk for source files.
	Root string

	// IgnoreGlobs are doublestar patterns (relative to Root) excluded
	// from discovery, e.g. "vendor/**", "**/*_generated.go".
	IgnoreGlobs []string

	// Workers bounds parse concurrency. 0 or 1 forces sequential parsing.
	Workers int

	// MaxFileSizeBytes skips any file larger than this (0 means no limit).
	MaxFileSizeBytes int64
}

// Result is everything a run produces.
type Result struct {
	Graph          *graph.Graph
	ParseErrors    []*parser.ParseError
	FilesDiscovered int
	FilesParsed    int
	CacheHits      int
	Resolve        *resolver.Result
	Duration       time.Duration
}

// Pipeline wires a parser registry and fragment cache into the
// three-phase run.
type Pipeline struct {
	registry *parser.Registry
	cache    *cache.Store
	logger   *slog.Logger
}

// New creates a Pipeline. cacheStore may be nil to disable caching.
func New(registry *parser.Registry, cacheStore *cache.Store, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{registry: registry, cache: cacheStore, logger: logger}
}

type discovered struct {
	relPath string
	absPath string
}

// Run executes the full pipeline and returns the merged, resolved graph.
func (p *Pipeline) Run(ctx context.Context, cfg Config) (*Result, error) {
	start := time.Now()

	files, err := p.discover(cfg)
	if err != nil {
		return nil, fmt.Errorf("pipeline: discover: %w", err)
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = 4
	}

	fragResult := p.parseFiles(ctx, files, workers)

	g := graph.New()
	var allCalls []parser.UnresolvedCall
	var allImports []parser.UnresolvedImport
	var allInheritance []parser.UnresolvedInheritance

	for _, fr := range fragResult.ordered {
		if fr.fragment == nil {
			continue
		}
		if err := g.Merge(fr.fragment.Graph, nil); err != nil {
			return nil, fmt.Errorf("pipeline: merge %s: %w", fr.relPath, err)
		}
		allCalls = append(allCalls, fr.fragment.State.Calls...)
		allImports = append(allImports, fr.fragment.State.Imports...)
		allInheritance = append(allInheritance, fr.fragment.State.Inheritance...)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	resolveResult, err := resolver.Resolve(g, allCalls, allImports, allInheritance)
	if err != nil {
		return nil, fmt.Errorf("pipeline: resolve: %w", err)
	}

	return &Result{
		Graph:           g,
		ParseErrors:     fragResult.parseErrors,
		FilesDiscovered: len(files),
		FilesParsed:     fragResult.parsed,
		CacheHits:       fragResult.cacheHits,
		Resolve:         resolveResult,
		Duration:        time.Since(start),
	}, nil
}

func (p *Pipeline) discover(cfg Config) ([]discovered, error) {
	var out []discovered
	err := filepath.WalkDir(cfg.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(cfg.Root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if _, ok := p.registry.For(rel); !ok {
			return nil
		}

		for _, pattern := range cfg.IgnoreGlobs {
			if match, _ := doublestar.Match(pattern, rel); match {
				return nil
			}
		}

		if cfg.MaxFileSizeBytes > 0 {
			info, statErr := d.Info()
			if statErr == nil && info.Size() > cfg.MaxFileSizeBytes {
				return nil
			}
		}

		out = append(out, discovered{relPath: rel, absPath: path})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool { return out[i].relPath < out[j].relPath })
	return out, nil
}

type fragmentOutcome struct {
	relPath  string
	fragment *parser.Fragment
	cacheHit bool
}

type parseFilesOutput struct {
	ordered     []fragmentOutcome
	parseErrors []*parser.ParseError
	parsed      int
	cacheHits   int
}

func (p *Pipeline) parseFiles(ctx context.Context, files []discovered, workers int) parseFilesOutput {
	if len(files) == 0 {
		return parseFilesOutput{}
	}
	if len(files) < 10 || workers <= 1 {
		return p.parseFilesSequential(ctx, files)
	}
	return p.parseFilesParallel(ctx, files, workers)
}

func (p *Pipeline) parseFilesSequential(ctx context.Context, files []discovered) parseFilesOutput {
	var out parseFilesOutput
	for _, f := range files {
		select {
		case <-ctx.Done():
			return out
		default:
		}
		outcome, perr := p.parseOne(f)
		if perr != nil {
			out.parseErrors = append(out.parseErrors, perr)
		}
		if outcome.cacheHit {
			out.cacheHits++
		}
		out.parsed++
		out.ordered = append(out.ordered, outcome)
	}
	return out
}

func (p *Pipeline) parseFilesParallel(ctx context.Context, files []discovered, workers int) parseFilesOutput {
	jobs := make(chan int, len(files))
	results := make(chan struct {
		idx     int
		outcome fragmentOutcome
		perr    *parser.ParseError
	}, len(files))

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
				outcome, perr := p.parseOne(files[i])
				results <- struct {
					idx     int
					outcome fragmentOutcome
					perr    *parser.ParseError
				}{idx: i, outcome: outcome, perr: perr}
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

	byIdx := make([]fragmentOutcome, len(files))
	var out parseFilesOutput
	for r := range results {
		byIdx[r.idx] = r.outcome
		if r.perr != nil {
			out.parseErrors = append(out.parseErrors, r.perr)
		}
		if r.outcome.cacheHit {
			out.cacheHits++
		}
		out.parsed++
	}
	out.ordered = byIdx
	return out
}

func (p *Pipeline) parseOne(f discovered) (fragmentOutcome, *parser.ParseError) {
	lang, ok := p.registry.For(f.relPath)
	if !ok {
		return fragmentOutcome{relPath: f.relPath}, &parser.ParseError{
			Path: f.relPath, Kind: parser.GrammarMissing, Message: "no parser registered for extension",
		}
	}

	content, err := os.ReadFile(f.absPath)
	if err != nil {
		return fragmentOutcome{relPath: f.relPath}, &parser.ParseError{
			Path: f.relPath, Kind: parser.IoEmpty, Message: err.Error(),
		}
	}

	contentHash := identity.ContentHashHex(content)
	if p.cache != nil {
		if frag, hit, cerr := p.cache.Get(contentHash); cerr == nil && hit {
			return fragmentOutcome{relPath: f.relPath, fragment: frag, cacheHit: true}, nil
		}
	}

	frag, perr := lang.Parse(f.relPath, content)
	if perr != nil {
		p.logger.Warn("pipeline.parse.error", "path", f.relPath, "kind", perr.Kind, "message", perr.Message)
		return fragmentOutcome{relPath: f.relPath}, perr
	}

	if p.cache != nil {
		if err := p.cache.Put(contentHash, frag); err != nil {
			p.logger.Warn("pipeline.cache.put.error", "path", f.relPath, "err", err)
		}
	}

	return fragmentOutcome{relPath: f.relPath, fragment: frag}, nil
}
