// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package graph holds the built-in GraphAnalyzers, which need the fully
// resolved graph rather than a single file's bytes: import cycles,
// cyclomatic complexity, dead imports, and dead exports.
package graph

import (
	"fmt"
	"sort"

	"github.com/kraklabs/revet/pkg/analyze"
	revetgraph "github.com/kraklabs/revet/pkg/graph"
)

// Cycles detects strongly connected components of size > 1 in the
// File-to-File import graph via Tarjan's algorithm, flagging import
// cycles — assigned to the GraphAnalyzer family rather than the graph
// core itself, since cycle detection is an analysis concern, not a
// structural invariant the graph enforces on insertion.
type Cycles struct{}

func (Cycles) Name() string   { return "cycles" }
func (Cycles) Prefix() string { return "CYCLE" }

func (Cycles) Enabled(cfg analyze.Config) bool {
	return enabledByDefault(cfg, "cycles")
}

func (Cycles) Analyze(g *revetgraph.Graph, cfg analyze.Config) []analyze.Finding {
	fileIDs := filesOf(g)
	sccs := tarjanSCC(g, fileIDs)

	var out []analyze.Finding
	for _, scc := range sccs {
		if len(scc) < 2 {
			continue
		}
		sort.Slice(scc, func(i, j int) bool { return scc[i] < scc[j] })
		members := make([]string, len(scc))
		for i, id := range scc {
			n := g.Lookup(id)
			if n != nil {
				members[i] = n.Location.Path
			} else {
				members[i] = string(id)
			}
		}
		sort.Strings(members)
		for _, id := range scc {
			n := g.Lookup(id)
			if n == nil {
				continue
			}
			out = append(out, analyze.Finding{
				Prefix:   "CYCLE",
				Severity: analyze.SeverityWarning,
				File:     n.Location.Path,
				Line:     n.Location.StartLine,
				Message:  fmt.Sprintf("import cycle across %d files: %v", len(members), members),
			})
		}
	}
	return out
}

func filesOf(g *revetgraph.Graph) []revetgraph.NodeID {
	var out []revetgraph.NodeID
	for _, id := range g.Nodes() {
		n := g.Lookup(id)
		if n != nil && n.Kind == revetgraph.KindFile {
			out = append(out, id)
		}
	}
	return out
}

// tarjanSCC computes strongly connected components over the Imports
// edges between File nodes, following Tarjan's standard index/lowlink/
// stack formulation.
func tarjanSCC(g *revetgraph.Graph, fileIDs []revetgraph.NodeID) [][]revetgraph.NodeID {
	index := 0
	indices := make(map[revetgraph.NodeID]int)
	lowlink := make(map[revetgraph.NodeID]int)
	onStack := make(map[revetgraph.NodeID]bool)
	var stack []revetgraph.NodeID
	var sccs [][]revetgraph.NodeID

	var strongConnect func(v revetgraph.NodeID)
	strongConnect = func(v revetgraph.NodeID) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, e := range g.Outgoing(v, revetgraph.EdgeImports) {
			w := e.Dst
			if _, seen := indices[w]; !seen {
				strongConnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] {
				if indices[w] < lowlink[v] {
					lowlink[v] = indices[w]
				}
			}
		}

		if lowlink[v] == indices[v] {
			var scc []revetgraph.NodeID
			for {
				n := len(stack) - 1
				w := stack[n]
				stack = stack[:n]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, id := range fileIDs {
		if _, seen := indices[id]; !seen {
			strongConnect(id)
		}
	}
	return sccs
}
