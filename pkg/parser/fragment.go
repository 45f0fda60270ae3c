// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"github.com/kraklabs/revet/pkg/graph"
	"github.com/kraklabs/revet/pkg/identity"
)

// Builder is a small per-file helper shared by every language parser. It
// owns the fragment's graph and File node and centralizes the
// ID-derivation and Contains-edge bookkeeping every parser needs, so each
// language implementation only has to describe what declarations it
// found, not how to wire them into a fragment.
type Builder struct {
	RelPath  string
	Language string

	g      *graph.Graph
	fileID graph.NodeID
	state  ParseState
}

// NewBuilder creates a fragment builder with a single File node already
// inserted.
func NewBuilder(relPath, language string) *Builder {
	g := graph.New()
	fileID := graph.NodeID(identity.NodeID(relPath, relPath, string(graph.KindFile)))
	_, _ = g.InsertNode(graph.Node{
		ID:       fileID,
		Kind:     graph.KindFile,
		Name:     relPath,
		Location: graph.Location{Path: relPath, StartLine: 1},
		Language: language,
	})
	return &Builder{RelPath: relPath, Language: language, g: g, fileID: fileID}
}

// FileID returns this fragment's File node ID.
func (b *Builder) FileID() graph.NodeID { return b.fileID }

// Graph returns the fragment's underlying graph.
func (b *Builder) Graph() *graph.Graph { return b.g }

// AddDecl inserts a declaration node and a Contains edge from parent (the
// File node if parent is "", otherwise another declaration's ID, e.g. a
// method's parent Class/Struct). qualifiedPath is used only for ID
// derivation (e.g. "Server.Handle" for a method on Server).
func (b *Builder) AddDecl(parent graph.NodeID, qualifiedPath string, kind graph.Kind, name string, loc graph.Location, attrs map[string]string) graph.NodeID {
	id := graph.NodeID(identity.NodeID(b.RelPath, qualifiedPath, string(kind)))
	_, _ = b.g.InsertNode(graph.Node{
		ID:       id,
		Kind:     kind,
		Name:     name,
		Location: loc,
		Language: b.Language,
		Attrs:    attrs,
	})
	if parent == "" {
		parent = b.fileID
	}
	_ = b.g.InsertEdge(parent, id, graph.EdgeContains)
	return id
}

// AddImport records an Import node under the File and queues the raw
// specifier for later cross-file resolution.
func (b *Builder) AddImport(specifier, alias string, loc graph.Location) {
	id := graph.NodeID(identity.NodeID(b.RelPath, specifier, string(graph.KindImport)))
	_, _ = b.g.InsertNode(graph.Node{
		ID:       id,
		Kind:     graph.KindImport,
		Name:     specifier,
		Location: loc,
		Language: b.Language,
	})
	_ = b.g.InsertEdge(b.fileID, id, graph.EdgeContains)
	b.state.Imports = append(b.state.Imports, UnresolvedImport{
		FileID:    b.fileID,
		FilePath:  b.RelPath,
		Specifier: specifier,
		Alias:     alias,
	})
}

// AddDecorate emits a Decorates edge from decl to whatever
// decorator/annotation name applies to it. Since decorators are sugar
// rather than declarations, no node is created for the decorator itself —
// only the edge, pointing at a synthetic Symbol node carrying the
// decorator's name, so callers can still query "what decorates X".
func (b *Builder) AddDecorate(decl graph.NodeID, decoratorName string, loc graph.Location) {
	id := graph.NodeID(identity.NodeID(b.RelPath, decoratorName, string(graph.KindSymbol)))
	_, _ = b.g.InsertNode(graph.Node{
		ID:       id,
		Kind:     graph.KindSymbol,
		Name:     decoratorName,
		Location: loc,
		Language: b.Language,
	})
	_ = b.g.InsertEdge(decl, id, graph.EdgeDecorates)
}

// AddCallResolved records a Calls edge discovered to resolve within the
// same file.
func (b *Builder) AddCallResolved(caller, callee graph.NodeID) {
	_ = b.g.InsertEdge(caller, callee, graph.EdgeCalls)
}

// AddCallUnresolved queues a call whose callee isn't declared in this
// file, for the cross-file resolver.
func (b *Builder) AddCallUnresolved(caller graph.NodeID, calleeName string) {
	b.state.Calls = append(b.state.Calls, UnresolvedCall{
		CallerID:   caller,
		CalleeName: calleeName,
		CallerFile: b.RelPath,
	})
}

// AddInheritResolved records an Inherits/Implements edge resolved within
// the same file.
func (b *Builder) AddInheritResolved(sub, super graph.NodeID, kind graph.EdgeKind) {
	_ = b.g.InsertEdge(sub, super, kind)
}

// AddInheritUnresolved queues a base-class/trait/interface reference that
// could not be resolved within the file.
func (b *Builder) AddInheritUnresolved(sub graph.NodeID, superName string, kind graph.EdgeKind) {
	b.state.Inheritance = append(b.state.Inheritance, UnresolvedInheritance{
		SubID:     sub,
		SuperName: superName,
		SubFile:   b.RelPath,
		EdgeKind:  kind,
	})
}

// Fragment finalizes the builder into an immutable Fragment.
func (b *Builder) Fragment() *Fragment {
	return &Fragment{Graph: b.g, State: b.state, FileID: b.fileID}
}
