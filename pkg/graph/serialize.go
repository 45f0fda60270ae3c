// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package graph

// Snapshot is a gob-friendly flattening of a Graph's nodes and edges,
// used by pkg/cache to persist per-file fragments. Graph itself is kept
// unexported-field so its invariants (dedup, adjacency indices) can only
// be built through InsertNode/InsertEdge — Snapshot is the serialization
// boundary, not a second way to construct a Graph.
type Snapshot struct {
	Nodes []Node
	Edges []Edge
}

// Snapshot flattens g into its node and edge lists, in deterministic
// (sorted) order.
func (g *Graph) Snapshot() Snapshot {
	ids := g.Nodes()
	nodes := make([]Node, 0, len(ids))
	for _, id := range ids {
		nodes = append(nodes, *g.nodes[id])
	}

	var edges []Edge
	for _, id := range ids {
		edges = append(edges, g.out[id]...)
	}

	return Snapshot{Nodes: nodes, Edges: edges}
}

// FromSnapshot rebuilds a Graph from a Snapshot produced by Snapshot().
// Node collisions within the snapshot are an invariant violation (the
// snapshot came from a single already-validated Graph) and are
// surfaced as ErrCollision rather than silently dropped.
func FromSnapshot(s Snapshot) (*Graph, error) {
	g := New()
	for _, n := range s.Nodes {
		if _, err := g.InsertNode(n); err != nil {
			return nil, err
		}
	}
	for _, e := range s.Edges {
		if err := g.InsertEdge(e.Src, e.Dst, e.Kind); err != nil {
			return nil, err
		}
	}
	return g, nil
}
