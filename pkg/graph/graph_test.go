// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNode(id, name string, kind Kind) Node {
	return Node{ID: NodeID(id), Kind: kind, Name: name, Location: Location{Path: "a.go", StartLine: 1}}
}

func TestInsertNodeIdempotentOnIdenticalContent(t *testing.T) {
	g := New()
	n := mustNode("file:a.go", "a.go", KindFile)

	_, err := g.InsertNode(n)
	require.NoError(t, err)
	_, err = g.InsertNode(n)
	require.NoError(t, err)
	assert.Equal(t, 1, g.NodeCount())
}

func TestInsertNodeCollisionOnDifferentContent(t *testing.T) {
	g := New()
	n1 := mustNode("file:a.go", "a.go", KindFile)
	n2 := n1
	n2.Language = "go"

	_, err := g.InsertNode(n1)
	require.NoError(t, err)
	_, err = g.InsertNode(n2)
	require.ErrorIs(t, err, ErrCollision)
}

func TestInsertEdgeRejectsSelfLoop(t *testing.T) {
	g := New()
	n := mustNode("file:a.go", "a.go", KindFile)
	_, _ = g.InsertNode(n)

	err := g.InsertEdge(n.ID, n.ID, EdgeContains)
	assert.ErrorIs(t, err, ErrSelfLoop)
}

func TestInsertEdgeRejectsUnknownEndpoint(t *testing.T) {
	g := New()
	n := mustNode("file:a.go", "a.go", KindFile)
	_, _ = g.InsertNode(n)

	err := g.InsertEdge(n.ID, "file:missing.go", EdgeContains)
	assert.ErrorIs(t, err, ErrUnknownEndpoint)
}

func TestInsertEdgeCollapsesDuplicates(t *testing.T) {
	g := New()
	a := mustNode("file:a.go", "a.go", KindFile)
	b := mustNode("func:a.go::Foo", "Foo", KindFunction)
	_, _ = g.InsertNode(a)
	_, _ = g.InsertNode(b)

	require.NoError(t, g.InsertEdge(a.ID, b.ID, EdgeContains))
	require.NoError(t, g.InsertEdge(a.ID, b.ID, EdgeContains))

	assert.Equal(t, 1, g.EdgeCount())
	assert.Len(t, g.Outgoing(a.ID, EdgeContains), 1)
}

func TestOutgoingIncomingFiltering(t *testing.T) {
	g := New()
	a := mustNode("file:a.go", "a.go", KindFile)
	b := mustNode("func:a.go::Foo", "Foo", KindFunction)
	c := mustNode("func:a.go::Bar", "Bar", KindFunction)
	for _, n := range []Node{a, b, c} {
		_, _ = g.InsertNode(n)
	}
	require.NoError(t, g.InsertEdge(a.ID, b.ID, EdgeContains))
	require.NoError(t, g.InsertEdge(a.ID, c.ID, EdgeContains))
	require.NoError(t, g.InsertEdge(b.ID, c.ID, EdgeCalls))

	assert.Len(t, g.Outgoing(a.ID, EdgeContains), 2)
	assert.Len(t, g.Outgoing(a.ID, ""), 2)
	assert.Len(t, g.Incoming(c.ID, EdgeCalls), 1)
	assert.Len(t, g.Incoming(c.ID, EdgeContains), 1)
}

func TestMergeIsOrderIndependentForDisjointFragments(t *testing.T) {
	// Two fragments for different files, merged in either order, should
	// produce the same node and edge sets — merge must be commutative
	// for disjoint fragments.
	buildFragment := func(path, fn string) *Graph {
		g := New()
		f := mustNode("file:"+path, path, KindFile)
		fu := mustNode("func:"+path+"::"+fn, fn, KindFunction)
		_, _ = g.InsertNode(f)
		_, _ = g.InsertNode(fu)
		_ = g.InsertEdge(f.ID, fu.ID, EdgeContains)
		return g
	}

	fragA := buildFragment("a.go", "Foo")
	fragB := buildFragment("b.go", "Bar")

	order1 := New()
	require.NoError(t, order1.Merge(fragA, nil))
	require.NoError(t, order1.Merge(fragB, nil))

	order2 := New()
	require.NoError(t, order2.Merge(fragB, nil))
	require.NoError(t, order2.Merge(fragA, nil))

	assert.Equal(t, order1.NodeCount(), order2.NodeCount())
	assert.Equal(t, order1.EdgeCount(), order2.EdgeCount())
	assert.ElementsMatch(t, order1.Nodes(), order2.Nodes())
}

func TestMergeCollisionIsFatal(t *testing.T) {
	g := New()
	other := New()

	n := mustNode("file:a.go", "a.go", KindFile)
	_, _ = g.InsertNode(n)

	conflicting := n
	conflicting.Language = "go"
	_, _ = other.InsertNode(conflicting)

	err := g.Merge(other, nil)
	assert.ErrorIs(t, err, ErrCollision)
}

func TestByNameReturnsAllMatches(t *testing.T) {
	g := New()
	a := mustNode("func:a.go::Foo", "Foo", KindFunction)
	b := mustNode("func:b.go::Foo", "Foo", KindFunction)
	_, _ = g.InsertNode(a)
	_, _ = g.InsertNode(b)

	ids := g.ByName("Foo")
	assert.Len(t, ids, 2)
}
