// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/revet/pkg/graph"
	"github.com/kraklabs/revet/pkg/parser"
)

func buildMergedGraph(t *testing.T) (*graph.Graph, []parser.UnresolvedCall, []parser.UnresolvedImport, []parser.UnresolvedInheritance) {
	t.Helper()

	// pkg/a/a.go defines Helper(); pkg/b/b.go imports pkg/a and calls it
	// unqualified via an aliasless reference, and also defines a struct
	// Sub embedding Base from pkg/a.
	aBuilder := parser.NewBuilder("pkg/a/a.go", "go")
	helperID := aBuilder.AddDecl("", "Helper", graph.KindFunction, "Helper", graph.Location{Path: "pkg/a/a.go", StartLine: 1}, nil)
	baseID := aBuilder.AddDecl("", "Base", graph.KindStruct, "Base", graph.Location{Path: "pkg/a/a.go", StartLine: 5}, nil)
	aFrag := aBuilder.Fragment()
	_ = helperID
	_ = baseID

	bBuilder := parser.NewBuilder("pkg/b/b.go", "go")
	callerID := bBuilder.AddDecl("", "Caller", graph.KindFunction, "Caller", graph.Location{Path: "pkg/b/b.go", StartLine: 1}, nil)
	subID := bBuilder.AddDecl("", "Sub", graph.KindStruct, "Sub", graph.Location{Path: "pkg/b/b.go", StartLine: 10}, nil)
	bBuilder.AddImport("example.com/mod/pkg/a", "a", graph.Location{Path: "pkg/b/b.go", StartLine: 1})
	bBuilder.AddCallUnresolved(callerID, "a.Helper")
	bBuilder.AddInheritUnresolved(subID, "Base", graph.EdgeInherits)
	bFrag := bBuilder.Fragment()

	g := graph.New()
	require.NoError(t, g.Merge(aFrag.Graph, nil))
	require.NoError(t, g.Merge(bFrag.Graph, nil))

	calls := append([]parser.UnresolvedCall{}, aFrag.State.Calls...)
	calls = append(calls, bFrag.State.Calls...)
	imports := append([]parser.UnresolvedImport{}, aFrag.State.Imports...)
	imports = append(imports, bFrag.State.Imports...)
	inheritance := append([]parser.UnresolvedInheritance{}, aFrag.State.Inheritance...)
	inheritance = append(inheritance, bFrag.State.Inheritance...)

	return g, calls, imports, inheritance
}

func TestResolveCallsAcrossDirectImport(t *testing.T) {
	g, calls, imports, inheritance := buildMergedGraph(t)

	res, err := Resolve(g, calls, imports, inheritance)
	require.NoError(t, err)
	assert.Equal(t, 1, res.CallsResolved)
	assert.Empty(t, res.UnresolvedCalls)

	callerIDs := g.ByName("Caller")
	require.Len(t, callerIDs, 1)
	helperIDs := g.ByName("Helper")
	require.Len(t, helperIDs, 1)

	edges := g.Outgoing(callerIDs[0], graph.EdgeCalls)
	require.Len(t, edges, 1)
	assert.Equal(t, helperIDs[0], edges[0].Dst)
}

func TestResolveInheritanceAcrossDirectImport(t *testing.T) {
	g, calls, imports, inheritance := buildMergedGraph(t)

	res, err := Resolve(g, calls, imports, inheritance)
	require.NoError(t, err)
	assert.Equal(t, 1, res.InheritanceResolved)

	subIDs := g.ByName("Sub")
	require.Len(t, subIDs, 1)
	baseIDs := g.ByName("Base")
	require.Len(t, baseIDs, 1)

	edges := g.Outgoing(subIDs[0], graph.EdgeInherits)
	require.Len(t, edges, 1)
	assert.Equal(t, baseIDs[0], edges[0].Dst)
}

func TestResolveSameFileTakesPrecedence(t *testing.T) {
	// Two declarations named "Run": one in the same file as the caller,
	// one reachable through a direct import. Same-file must win.
	aBuilder := parser.NewBuilder("pkg/a/a.go", "go")
	aBuilder.AddDecl("", "Run", graph.KindFunction, "Run", graph.Location{Path: "pkg/a/a.go", StartLine: 1}, nil)
	aFrag := aBuilder.Fragment()

	bBuilder := parser.NewBuilder("pkg/b/b.go", "go")
	localRunID := bBuilder.AddDecl("", "Run", graph.KindFunction, "Run", graph.Location{Path: "pkg/b/b.go", StartLine: 1}, nil)
	callerID := bBuilder.AddDecl("", "Caller", graph.KindFunction, "Caller", graph.Location{Path: "pkg/b/b.go", StartLine: 5}, nil)
	bBuilder.AddImport("example.com/mod/pkg/a", "a", graph.Location{Path: "pkg/b/b.go", StartLine: 1})
	bBuilder.AddCallUnresolved(callerID, "Run")
	bFrag := bBuilder.Fragment()

	g := graph.New()
	require.NoError(t, g.Merge(aFrag.Graph, nil))
	require.NoError(t, g.Merge(bFrag.Graph, nil))

	calls := bFrag.State.Calls
	res, err := Resolve(g, calls, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.CallsResolved)

	edges := g.Outgoing(callerID, graph.EdgeCalls)
	require.Len(t, edges, 1)
	assert.Equal(t, localRunID, edges[0].Dst)
}

func TestUnresolvableCallIsReportedNotFatal(t *testing.T) {
	bBuilder := parser.NewBuilder("pkg/b/b.go", "go")
	callerID := bBuilder.AddDecl("", "Caller", graph.KindFunction, "Caller", graph.Location{Path: "pkg/b/b.go", StartLine: 1}, nil)
	bBuilder.AddCallUnresolved(callerID, "totallyUnknownFunc")
	bFrag := bBuilder.Fragment()

	g := graph.New()
	require.NoError(t, g.Merge(bFrag.Graph, nil))

	res, err := Resolve(g, bFrag.State.Calls, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, res.CallsResolved)
	require.Len(t, res.UnresolvedCalls, 1)
	assert.Equal(t, "totallyUnknownFunc", res.UnresolvedCalls[0].CalleeName)
}
