// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package tsx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/revet/pkg/graph"
)

const sampleTS = `import { Component } from "react";
import * as utils from "./utils";

interface Greeter {
	greet(): string;
}

class Widget implements Greeter {
	greet(): string {
		return this.format();
	}

	format(): string {
		return helper();
	}
}

function helper(): string {
	return utils.clean("hi");
}
`

func TestParseExtractsDeclsImportsAndCalls(t *testing.T) {
	p := New(nil)
	frag, perr := p.Parse("sample.ts", []byte(sampleTS))
	require.Nil(t, perr)
	require.NotNil(t, frag)

	g := frag.Graph
	var funcs, methods, classes, ifaces, imports int
	for _, id := range g.Nodes() {
		n := g.Lookup(id)
		switch n.Kind {
		case graph.KindFunction:
			funcs++
		case graph.KindMethod:
			methods++
		case graph.KindClass:
			classes++
		case graph.KindInterface:
			ifaces++
		case graph.KindImport:
			imports++
		}
	}

	assert.Equal(t, 1, funcs, "helper")
	assert.Equal(t, 2, methods, "greet, format")
	assert.Equal(t, 1, classes, "Widget")
	assert.Equal(t, 1, ifaces, "Greeter")
	assert.Equal(t, 2, imports)

	ids := g.ByName("helper")
	require.Len(t, ids, 1)
	assert.NotEmpty(t, g.Incoming(ids[0], graph.EdgeCalls))

	widgetIDs := g.ByName("Widget")
	require.Len(t, widgetIDs, 1)
	assert.NotEmpty(t, frag.State.Inheritance)
}

func TestParseTSXExtension(t *testing.T) {
	p := New(nil)
	frag, perr := p.Parse("component.tsx", []byte("function App() { return helper(); }\nfunction helper() { return 1; }"))
	require.Nil(t, perr)
	assert.GreaterOrEqual(t, frag.Graph.NodeCount(), 3)
}

func TestParseEmptyFile(t *testing.T) {
	p := New(nil)
	frag, perr := p.Parse("empty.ts", []byte{})
	require.Nil(t, perr)
	assert.Equal(t, 1, frag.Graph.NodeCount())
}

func TestExtensionsClaimed(t *testing.T) {
	p := New(nil)
	assert.ElementsMatch(t, []string{".ts", ".tsx", ".js", ".jsx"}, p.Extensions())
}
