// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"strings"

	"github.com/kraklabs/revet/pkg/analyze"
	revetgraph "github.com/kraklabs/revet/pkg/graph"
)

// DeadExports flags exported Function/Class-family declarations with no
// incoming Calls/Inherits/Implements edge from outside their own file —
// a public symbol nothing else in the repo actually uses.
type DeadExports struct{}

func (DeadExports) Name() string   { return "deadexports" }
func (DeadExports) Prefix() string { return "DEAD" }

func (DeadExports) Enabled(cfg analyze.Config) bool {
	return enabledByDefault(cfg, "deadexports")
}

var deadExportKinds = map[revetgraph.Kind]bool{
	revetgraph.KindFunction:  true,
	revetgraph.KindMethod:    true,
	revetgraph.KindClass:     true,
	revetgraph.KindStruct:    true,
	revetgraph.KindInterface: true,
	revetgraph.KindTrait:     true,
}

// isExported reports whether n should be considered part of the
// package's public surface. Go parsers record an explicit "exported"
// attribute (capitalization is syntactic there); the other languages
// have no equivalent visibility keyword this tool tracks, so a
// leading-underscore name is treated as the only "private" convention
// worth honoring (Python's and, informally, TypeScript's).
func isExported(n *revetgraph.Node) bool {
	if v, ok := n.Attrs["exported"]; ok {
		return v == "true"
	}
	return !strings.HasPrefix(n.Name, "_")
}

// usageEdges are the edges that count as "this declaration is used".
var usageEdgeKinds = []revetgraph.EdgeKind{
	revetgraph.EdgeCalls,
	revetgraph.EdgeInherits,
	revetgraph.EdgeImplements,
}

func (DeadExports) Analyze(g *revetgraph.Graph, cfg analyze.Config) []analyze.Finding {
	var out []analyze.Finding
	for _, id := range g.Nodes() {
		n := g.Lookup(id)
		if n == nil || !deadExportKinds[n.Kind] || !isExported(n) {
			continue
		}

		usedElsewhere := false
		for _, kind := range usageEdgeKinds {
			for _, e := range g.Incoming(id, kind) {
				src := g.Lookup(e.Src)
				if src != nil && src.Location.Path != n.Location.Path {
					usedElsewhere = true
					break
				}
			}
			if usedElsewhere {
				break
			}
		}
		if usedElsewhere {
			continue
		}

		out = append(out, analyze.Finding{
			Prefix:   "DEAD",
			Severity: analyze.SeverityInfo,
			File:     n.Location.Path,
			Line:     n.Location.StartLine,
			Message:  "exported " + string(n.Kind) + " \"" + n.Name + "\" has no callers/subtypes outside its own file",
		})
	}
	return out
}
