// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/revet/pkg/graph"
	"github.com/kraklabs/revet/pkg/parser"
)

func sampleFragment() *parser.Fragment {
	b := parser.NewBuilder("a.go", "go")
	b.AddDecl("", "Foo", graph.KindFunction, "Foo", graph.Location{Path: "a.go", StartLine: 3}, map[string]string{"exported": "true"})
	return b.Fragment()
}

func TestPutGetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	frag := sampleFragment()
	require.NoError(t, s.Put("deadbeef01", frag))

	got, ok, err := s.Get("deadbeef01")
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, frag.Graph.NodeCount(), got.Graph.NodeCount())
	assert.Equal(t, frag.FileID, got.FileID)
	assert.ElementsMatch(t, frag.Graph.Nodes(), got.Graph.Nodes())
}

func TestGetMissReturnsFalseNoError(t *testing.T) {
	s := New(t.TempDir())
	_, ok, err := s.Get("0000000000")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetCorruptEntry(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	path := s.pathFor("abcd")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("not a fragment"), 0o644))

	_, ok, err := s.Get("abcd")
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := New(t.TempDir())
	require.NoError(t, s.Put("abc123", sampleFragment()))
	require.NoError(t, s.Delete("abc123"))
	require.NoError(t, s.Delete("abc123")) // already gone, still no error

	_, ok, err := s.Get("abc123")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPutOverwritesExistingEntry(t *testing.T) {
	s := New(t.TempDir())
	require.NoError(t, s.Put("key", sampleFragment()))

	b := parser.NewBuilder("b.go", "go")
	b.AddDecl("", "Bar", graph.KindFunction, "Bar", graph.Location{Path: "b.go", StartLine: 1}, nil)
	require.NoError(t, s.Put("key", b.Fragment()))

	got, ok, err := s.Get("key")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, got.Graph.ByName("Bar"), 1)
	assert.Empty(t, got.Graph.ByName("Foo"))
}
