// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"fmt"
	"strconv"

	"github.com/kraklabs/revet/pkg/analyze"
	revetgraph "github.com/kraklabs/revet/pkg/graph"
)

// DefaultComplexityThreshold flags a function/method once its
// cyclomatic complexity exceeds this value. Chosen to match the common
// "10" convention used by gocyclo and similar tools in the ecosystem.
const DefaultComplexityThreshold = 10

// Complexity reads the "complexity" attribute parsers record on
// Function/Method nodes (1 + decision-point count) and flags
// declarations above the configured threshold.
//
// Complexity is computed once during parsing from the raw AST and
// carried as a node attribute, so this analyzer only has to read and
// threshold it rather than re-walk source.
type Complexity struct {
	Threshold int // 0 means DefaultComplexityThreshold
}

func (c Complexity) Name() string   { return "complexity" }
func (Complexity) Prefix() string   { return "CMPLX" }

func (Complexity) Enabled(cfg analyze.Config) bool {
	return enabledByDefault(cfg, "complexity")
}

func (c Complexity) Analyze(g *revetgraph.Graph, cfg analyze.Config) []analyze.Finding {
	threshold := c.Threshold
	if threshold <= 0 {
		threshold = DefaultComplexityThreshold
	}

	var out []analyze.Finding
	for _, id := range g.Nodes() {
		n := g.Lookup(id)
		if n == nil || (n.Kind != revetgraph.KindFunction && n.Kind != revetgraph.KindMethod) {
			continue
		}
		raw, ok := n.Attrs["complexity"]
		if !ok {
			continue
		}
		complexity, err := strconv.Atoi(raw)
		if err != nil || complexity <= threshold {
			continue
		}
		out = append(out, analyze.Finding{
			Prefix:     "CMPLX",
			Severity:   analyze.SeverityWarning,
			File:       n.Location.Path,
			Line:       n.Location.StartLine,
			Message:    fmt.Sprintf("%s has cyclomatic complexity %d (threshold %d)", n.Name, complexity, threshold),
			Suggestion: "extract branches into smaller helper functions",
		})
	}
	return out
}
