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

// Package diffimpact computes the set of changed lines and symbols
// between two git refs (or a ref and the working tree), then walks the
// resolved graph backward from every changed symbol to compute the set
// of declarations a change could impact.
//
// The git invocation is deliberately defensive: refs are checked
// against an allowlist pattern before being handed to exec.Command,
// even though exec.Command's argv form already avoids shell
// interpretation — a second independent check costs nothing and
// catches a caller-supplied ref that isn't one at all.
package diffimpact

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/kraklabs/revet/pkg/graph"
)

// refPattern allows the characters that appear in legitimate git refs
// and commit-ish expressions (branch names, tags, SHAs, "HEAD~3",
// range syntax).
var refPattern = regexp.MustCompile(`^[\w./~^:@-]+$`)

// ErrInvalidRef is returned when a base or worktree ref fails the
// allowlist check.
type ErrInvalidRef struct{ Ref string }

func (e ErrInvalidRef) Error() string { return fmt.Sprintf("diffimpact: invalid ref %q", e.Ref) }

// LineRange is an inclusive 1-based line range touched by a diff hunk.
type LineRange struct {
	Start, End int
}

func (r LineRange) overlaps(startLine, endLine int) bool {
	if endLine == 0 {
		endLine = startLine
	}
	return r.Start <= endLine && startLine <= r.End
}

// ChangedFile is one file's changed-line set from a diff.
type ChangedFile struct {
	Path   string
	Ranges []LineRange
}

// Diff is the parsed output of one git diff invocation.
type Diff struct {
	Files []ChangedFile
}

// Runner invokes `git diff` and parses its output. Base is required;
// Worktree is optional — empty means "diff against the working tree".
type Runner struct {
	RepoRoot string
}

// NewRunner creates a Runner rooted at repoRoot (must be inside a git
// worktree).
func NewRunner(repoRoot string) *Runner {
	return &Runner{RepoRoot: repoRoot}
}

// Run executes `git diff --unified=0 <base>[...<worktree>]` and parses
// the result.
func (r *Runner) Run(ctx context.Context, base, worktree string) (*Diff, error) {
	if !refPattern.MatchString(base) {
		return nil, ErrInvalidRef{Ref: base}
	}
	if worktree != "" && !refPattern.MatchString(worktree) {
		return nil, ErrInvalidRef{Ref: worktree}
	}

	args := []string{"diff", "--unified=0", "--no-color"}
	if worktree != "" {
		args = append(args, base+"..."+worktree)
	} else {
		args = append(args, base)
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.RepoRoot
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("diffimpact: git diff failed: %s: %w", string(exitErr.Stderr), err)
		}
		return nil, fmt.Errorf("diffimpact: git diff: %w", err)
	}

	return ParseUnifiedDiff(out), nil
}

var (
	plusFileRe = regexp.MustCompile(`^\+\+\+ b/(.+)$`)
	hunkRe     = regexp.MustCompile(`^@@ -\d+(?:,\d+)? \+(\d+)(?:,(\d+))? @@`)
)

// ParseUnifiedDiff extracts per-file changed-line ranges from
// `git diff --unified=0` output. Deletion-only hunks (additions count
// of 0) are recorded as a zero-width range anchored at the insertion
// point, so a pure deletion still marks its surrounding symbol changed.
func ParseUnifiedDiff(data []byte) *Diff {
	d := &Diff{}
	var current *ChangedFile

	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, "diff --git ") {
			current = nil
			continue
		}
		if m := plusFileRe.FindStringSubmatch(line); m != nil {
			d.Files = append(d.Files, ChangedFile{Path: m[1]})
			current = &d.Files[len(d.Files)-1]
			continue
		}
		if current == nil {
			continue
		}
		if m := hunkRe.FindStringSubmatch(line); m != nil {
			start, _ := strconv.Atoi(m[1])
			count := 1
			if m[2] != "" {
				count, _ = strconv.Atoi(m[2])
			}
			if count == 0 {
				current.Ranges = append(current.Ranges, LineRange{Start: start, End: start})
				continue
			}
			current.Ranges = append(current.Ranges, LineRange{Start: start, End: start + count - 1})
		}
	}

	return d
}

// declKinds is the set of node kinds eligible to be "the changed
// symbol" that owns a changed line range.
var declKinds = map[graph.Kind]bool{
	graph.KindFunction:  true,
	graph.KindMethod:    true,
	graph.KindClass:     true,
	graph.KindStruct:    true,
	graph.KindInterface: true,
	graph.KindTrait:     true,
	graph.KindEnum:      true,
	graph.KindFile:      true,
}

// ChangedSymbols returns every declaration node in g whose location
// overlaps one of diff's changed-line ranges, keyed by the path they
// belong to.
func ChangedSymbols(g *graph.Graph, diff *Diff) []graph.NodeID {
	var out []graph.NodeID
	for _, cf := range diff.Files {
		for _, id := range g.Nodes() {
			n := g.Lookup(id)
			if n == nil || !declKinds[n.Kind] || n.Location.Path != cf.Path {
				continue
			}
			for _, rng := range cf.Ranges {
				if rng.overlaps(n.Location.StartLine, n.Location.EndLine) {
					out = append(out, id)
					break
				}
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DefaultImpactDepth is the backward-walk depth bound used when a
// caller doesn't specify one.
const DefaultImpactDepth = 5

// MaxImpactDepth clamps a caller-supplied depth to a sane range.
const MaxImpactDepth = 20

// ImpactSet walks g backward (via Incoming Calls/Imports/Inherits/
// Implements edges) from every seed node up to depth hops, returning
// every reachable node including the seeds themselves.
func ImpactSet(g *graph.Graph, seeds []graph.NodeID, depth int) []graph.NodeID {
	if depth <= 0 {
		depth = DefaultImpactDepth
	}
	if depth > MaxImpactDepth {
		depth = MaxImpactDepth
	}

	visited := make(map[graph.NodeID]bool)
	frontier := make([]graph.NodeID, 0, len(seeds))
	for _, s := range seeds {
		if !visited[s] {
			visited[s] = true
			frontier = append(frontier, s)
		}
	}

	for hop := 0; hop < depth && len(frontier) > 0; hop++ {
		var next []graph.NodeID
		for _, id := range frontier {
			for _, kind := range []graph.EdgeKind{graph.EdgeCalls, graph.EdgeImports, graph.EdgeInherits, graph.EdgeImplements} {
				for _, e := range g.Incoming(id, kind) {
					if !visited[e.Src] {
						visited[e.Src] = true
						next = append(next, e.Src)
					}
				}
			}
		}
		frontier = next
	}

	out := make([]graph.NodeID, 0, len(visited))
	for id := range visited {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
