// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package rust

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/revet/pkg/graph"
)

const sample = `use std::fmt;

trait Greeter {
	fn greet(&self) -> String;
}

struct Widget {
	count: i32,
}

impl Greeter for Widget {
	fn greet(&self) -> String {
		helper()
	}
}

fn helper() -> String {
	String::from("hi")
}
`

func TestParseExtractsDeclsImportsAndCalls(t *testing.T) {
	p := New(nil)
	frag, perr := p.Parse("sample.rs", []byte(sample))
	require.Nil(t, perr)
	require.NotNil(t, frag)

	g := frag.Graph
	var funcs, methods, structs, traits, imports int
	for _, id := range g.Nodes() {
		n := g.Lookup(id)
		switch n.Kind {
		case graph.KindFunction:
			funcs++
		case graph.KindMethod:
			methods++
		case graph.KindStruct:
			structs++
		case graph.KindTrait:
			traits++
		case graph.KindImport:
			imports++
		}
	}

	assert.Equal(t, 1, funcs, "helper")
	assert.Equal(t, 1, methods, "greet")
	assert.Equal(t, 1, structs, "Widget")
	assert.Equal(t, 1, traits, "Greeter")
	assert.Equal(t, 1, imports)

	widgetIDs := g.ByName("Widget")
	require.Len(t, widgetIDs, 1)
	assert.NotEmpty(t, frag.State.Inheritance)
	assert.Equal(t, graph.EdgeImplements, frag.State.Inheritance[0].EdgeKind)

	helperIDs := g.ByName("helper")
	require.Len(t, helperIDs, 1)
	assert.NotEmpty(t, g.Incoming(helperIDs[0], graph.EdgeCalls))
}

func TestParseEmptyFile(t *testing.T) {
	p := New(nil)
	frag, perr := p.Parse("empty.rs", []byte{})
	require.Nil(t, perr)
	assert.Equal(t, 1, frag.Graph.NodeCount())
}

func TestLanguageAndExtensions(t *testing.T) {
	p := New(nil)
	assert.Equal(t, "rust", p.Language())
	assert.Equal(t, []string{".rs"}, p.Extensions())
}
