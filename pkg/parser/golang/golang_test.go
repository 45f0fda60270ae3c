// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package golang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/revet/pkg/graph"
)

const sample = `package sample

import (
	"fmt"
	alias "strings"
)

type Base struct {
	Name string
}

type Widget struct {
	Base
	Count int
}

type Greeter interface {
	Greet() string
}

func Helper() string {
	return "hi"
}

func (w *Widget) Greet() string {
	fmt.Println(alias.ToUpper(Helper()))
	return w.format()
}

func (w *Widget) format() string {
	return Helper()
}
`

func TestParseExtractsDeclsImportsAndCalls(t *testing.T) {
	p := New(nil)
	frag, perr := p.Parse("sample.go", []byte(sample))
	require.Nil(t, perr)
	require.NotNil(t, frag)

	g := frag.Graph

	var funcs, methods, structs, ifaces, imports int
	for _, id := range g.Nodes() {
		n := g.Lookup(id)
		require.NotNil(t, n)
		switch n.Kind {
		case graph.KindFunction:
			funcs++
		case graph.KindMethod:
			methods++
		case graph.KindStruct:
			structs++
		case graph.KindInterface:
			ifaces++
		case graph.KindImport:
			imports++
		}
	}

	assert.Equal(t, 1, funcs, "Helper")
	assert.Equal(t, 2, methods, "Greet and format")
	assert.Equal(t, 2, structs, "Base and Widget")
	assert.Equal(t, 1, ifaces, "Greeter")
	assert.Equal(t, 2, imports, "fmt and strings")

	// format() is called from Greet() and resolves in-file.
	ids := g.ByName("format")
	require.Len(t, ids, 1)
	formatID := ids[0]
	assert.NotEmpty(t, g.Incoming(formatID, graph.EdgeCalls))

	// Widget embeds Base: an unresolved Inherits edge is queued, not
	// materialized (Base lives in this same fragment but resolution
	// across declarations is the resolver's job, not the parser's).
	assert.Len(t, frag.State.Inheritance, 1)
	assert.Equal(t, "Base", frag.State.Inheritance[0].SuperName)

	assert.Len(t, frag.State.Calls, 1, "alias.ToUpper is unresolved (external package)")
}

func TestParseEmptyFileProducesBareFileNode(t *testing.T) {
	p := New(nil)
	frag, perr := p.Parse("empty.go", []byte{})
	require.Nil(t, perr)
	assert.Equal(t, 1, frag.Graph.NodeCount())
}

func TestLanguageAndExtensions(t *testing.T) {
	p := New(nil)
	assert.Equal(t, "go", p.Language())
	assert.Equal(t, []string{".go"}, p.Extensions())
}
