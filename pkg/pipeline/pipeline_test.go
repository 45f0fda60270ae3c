// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/revet/pkg/cache"
	"github.com/kraklabs/revet/pkg/graph"
	"github.com/kraklabs/revet/pkg/parser"
	"github.com/kraklabs/revet/pkg/parser/golang"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRunDiscoversParsesMergesAndResolves(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "pkg/a/a.go", "package a\n\nfunc Helper() string { return \"hi\" }\n")
	writeFile(t, root, "pkg/b/b.go", `package b

import "example.com/mod/pkg/a"

func Caller() string {
	return a.Helper()
}
`)
	writeFile(t, root, "vendor/ignored.go", "package ignored\n\nfunc Skip() {}\n")

	registry := parser.NewRegistry(golang.New(nil))
	p := New(registry, cache.New(t.TempDir()), nil)

	res, err := p.Run(context.Background(), Config{
		Root:        root,
		IgnoreGlobs: []string{"vendor/**"},
		Workers:     2,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, res.FilesDiscovered)
	assert.Equal(t, 2, res.FilesParsed)
	assert.Empty(t, res.ParseErrors)

	callerIDs := res.Graph.ByName("Caller")
	require.Len(t, callerIDs, 1)
	helperIDs := res.Graph.ByName("Helper")
	require.Len(t, helperIDs, 1)

	edges := res.Graph.Outgoing(callerIDs[0], graph.EdgeCalls)
	require.Len(t, edges, 1)
	assert.Equal(t, helperIDs[0], edges[0].Dst)
	assert.Equal(t, 1, res.Resolve.CallsResolved)
}

func TestRunUsesCacheOnSecondPass(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", "package a\n\nfunc Foo() {}\n")

	registry := parser.NewRegistry(golang.New(nil))
	cacheStore := cache.New(t.TempDir())
	p := New(registry, cacheStore, nil)

	res1, err := p.Run(context.Background(), Config{Root: root, Workers: 2})
	require.NoError(t, err)
	assert.Equal(t, 0, res1.CacheHits)

	res2, err := p.Run(context.Background(), Config{Root: root, Workers: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, res2.CacheHits)
}

func TestRunReportsGrammarMissing(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", "package a\n\nfunc Foo() {}\n")
	writeFile(t, root, "notes.txt", "not source")

	registry := parser.NewRegistry(golang.New(nil))
	p := New(registry, nil, nil)

	res, err := p.Run(context.Background(), Config{Root: root, Workers: 1})
	require.NoError(t, err)
	// notes.txt has no registered extension, so it's silently excluded
	// at discovery time rather than surfaced as GrammarMissing — only
	// registered-but-unparseable content reaches ParseErrors.
	assert.Equal(t, 1, res.FilesDiscovered)
	assert.Empty(t, res.ParseErrors)
}
