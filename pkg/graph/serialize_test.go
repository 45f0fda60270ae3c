// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	g := New()
	a := mustNode("file:a.go", "a.go", KindFile)
	b := mustNode("func:a.go::Foo", "Foo", KindFunction)
	_, _ = g.InsertNode(a)
	_, _ = g.InsertNode(b)
	require.NoError(t, g.InsertEdge(a.ID, b.ID, EdgeContains))

	snap := g.Snapshot()
	restored, err := FromSnapshot(snap)
	require.NoError(t, err)

	assert.Equal(t, g.NodeCount(), restored.NodeCount())
	assert.Equal(t, g.EdgeCount(), restored.EdgeCount())
	assert.ElementsMatch(t, g.Nodes(), restored.Nodes())
	assert.Len(t, restored.Outgoing(a.ID, EdgeContains), 1)
}
