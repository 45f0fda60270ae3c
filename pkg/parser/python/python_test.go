// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package python

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/revet/pkg/graph"
)

const sample = `import os
from typing import Optional, List as Lst

class Animal:
    def speak(self):
        return "..."

@dataclass
class Dog(Animal):
    def speak(self):
        return self.bark()

    def bark(self):
        return helper()

def helper():
    return os.getcwd()
`

func TestParseExtractsDeclsImportsAndCalls(t *testing.T) {
	p := New(nil)
	frag, perr := p.Parse("sample.py", []byte(sample))
	require.Nil(t, perr)
	require.NotNil(t, frag)

	g := frag.Graph

	var funcs, methods, classes, imports int
	for _, id := range g.Nodes() {
		n := g.Lookup(id)
		switch n.Kind {
		case graph.KindFunction:
			funcs++
		case graph.KindMethod:
			methods++
		case graph.KindClass:
			classes++
		case graph.KindImport:
			imports++
		}
	}

	assert.Equal(t, 1, funcs, "helper")
	assert.Equal(t, 2, methods, "speak x2")
	assert.Equal(t, 2, classes, "Animal, Dog")
	assert.GreaterOrEqual(t, imports, 2)

	// Dog inherits Animal (queued unresolved by the parser; resolver's job).
	require.Len(t, frag.State.Inheritance, 1)
	assert.Equal(t, "Animal", frag.State.Inheritance[0].SuperName)

	// Dog.bark() calls helper(), same file, top-level function.
	ids := g.ByName("helper")
	require.Len(t, ids, 1)
	assert.NotEmpty(t, g.Incoming(ids[0], graph.EdgeCalls))
}

func TestDecoratorProducesDecoratesEdge(t *testing.T) {
	p := New(nil)
	frag, perr := p.Parse("sample.py", []byte(sample))
	require.Nil(t, perr)

	g := frag.Graph
	dogIDs := g.ByName("Dog")
	require.Len(t, dogIDs, 1)
	assert.NotEmpty(t, g.Outgoing(dogIDs[0], graph.EdgeDecorates))
}

func TestParseEmptyFile(t *testing.T) {
	p := New(nil)
	frag, perr := p.Parse("empty.py", []byte{})
	require.Nil(t, perr)
	assert.Equal(t, 1, frag.Graph.NodeCount())
}
