// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"github.com/kraklabs/revet/pkg/analyze"
	revetgraph "github.com/kraklabs/revet/pkg/graph"
)

// DeadImports flags File nodes with zero incoming Imports edges after
// cross-file resolution — a file nothing in the repo imports, once
// unresolved/external imports are excluded (those never materialize an
// Imports edge in the first place, so this only fires on files actually
// present in the graph).
type DeadImports struct{}

func (DeadImports) Name() string   { return "deadimports" }
func (DeadImports) Prefix() string { return "DIMPORT" }

func (DeadImports) Enabled(cfg analyze.Config) bool {
	return enabledByDefault(cfg, "deadimports")
}

func (DeadImports) Analyze(g *revetgraph.Graph, cfg analyze.Config) []analyze.Finding {
	var out []analyze.Finding
	for _, id := range filesOf(g) {
		if len(g.Incoming(id, revetgraph.EdgeImports)) > 0 {
			continue
		}
		n := g.Lookup(id)
		if n == nil {
			continue
		}
		out = append(out, analyze.Finding{
			Prefix:   "DIMPORT",
			Severity: analyze.SeverityInfo,
			File:     n.Location.Path,
			Line:     1,
			Message:  "file is not imported anywhere else in the repository",
		})
	}
	return out
}
