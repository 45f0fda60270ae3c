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

// Package resolver performs the cross-file resolution pass that follows
// fragment merge: turning the unresolved calls, imports, and inheritance
// references every language parser queued into concrete graph edges.
//
// It resolves across every parser in this module rather than being
// tied to one language: a package-directory index and alias/import-path
// lookup cover method/class/trait declarations and the three edge kinds
// any language parser can leave unresolved.
package resolver

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/kraklabs/revet/pkg/graph"
	"github.com/kraklabs/revet/pkg/parser"
)

// Resolver builds an index over a merged graph and resolves queued
// unresolved references against it.
type Resolver struct {
	g *graph.Graph

	// dirOf maps a file path to its directory, the closest analog to a
	// Go "package path" that works across languages.
	dirOf map[string]string

	// declsByDirAndName maps dirPath -> simple name -> candidate IDs,
	// for Function/Method/Class/Struct/Interface/Trait declarations.
	declsByDirAndName map[string]map[string][]graph.NodeID

	// declsByFileAndName: filePath -> simple name -> candidate IDs. Used
	// for same-file resolution, including forward references the
	// builder's single-pass map couldn't see.
	declsByFileAndName map[string]map[string][]graph.NodeID

	// fileImports: filePath -> alias -> raw specifier.
	fileImports map[string]map[string]string

	// specifierToDir caches specifier -> directory resolution.
	specifierToDir map[string]string

	fileNodeByPath map[string]graph.NodeID
}

// resolvableKinds is the set of declaration kinds a call or inheritance
// reference may target.
var callableKinds = map[graph.Kind]bool{
	graph.KindFunction: true,
	graph.KindMethod:   true,
}

var typeKinds = map[graph.Kind]bool{
	graph.KindClass:     true,
	graph.KindStruct:    true,
	graph.KindInterface: true,
	graph.KindTrait:     true,
}

// New builds a Resolver over g. g should already contain every merged
// fragment; New indexes it once, up front, since every resolution pass
// (imports, calls, inheritance) shares the same index.
func New(g *graph.Graph) *Resolver {
	r := &Resolver{
		g:                  g,
		dirOf:              make(map[string]string),
		declsByDirAndName:  make(map[string]map[string][]graph.NodeID),
		declsByFileAndName: make(map[string]map[string][]graph.NodeID),
		fileImports:        make(map[string]map[string]string),
		specifierToDir:     make(map[string]string),
		fileNodeByPath:     make(map[string]graph.NodeID),
	}
	r.buildIndex()
	return r
}

func (r *Resolver) buildIndex() {
	for _, id := range r.g.Nodes() {
		n := r.g.Lookup(id)
		if n == nil {
			continue
		}
		if n.Kind == graph.KindFile {
			r.fileNodeByPath[n.Location.Path] = id
			r.dirOf[n.Location.Path] = filepath.Dir(n.Location.Path)
			continue
		}
		if !callableKinds[n.Kind] && !typeKinds[n.Kind] {
			continue
		}
		path := n.Location.Path
		dir := filepath.Dir(path)

		if r.declsByFileAndName[path] == nil {
			r.declsByFileAndName[path] = make(map[string][]graph.NodeID)
		}
		r.declsByFileAndName[path][n.Name] = append(r.declsByFileAndName[path][n.Name], id)

		if r.declsByDirAndName[dir] == nil {
			r.declsByDirAndName[dir] = make(map[string][]graph.NodeID)
		}
		r.declsByDirAndName[dir][n.Name] = append(r.declsByDirAndName[dir][n.Name], id)
	}
}

// Result is the full set of edges the resolver produced, and diagnostics
// about references it could not resolve — useful for logging, never
// fatal.
type Result struct {
	ImportsResolved      int
	CallsResolved        int
	InheritanceResolved  int
	UnresolvedCalls      []parser.UnresolvedCall
	UnresolvedInheritance []parser.UnresolvedInheritance
}

// Resolve runs all three passes (imports, then calls, then inheritance)
// against g, inserting resolved edges directly and returning a summary.
func Resolve(g *graph.Graph, calls []parser.UnresolvedCall, imports []parser.UnresolvedImport, inheritance []parser.UnresolvedInheritance) (*Result, error) {
	r := New(g)
	r.indexImports(imports)

	res := &Result{}

	for _, imp := range imports {
		if r.resolveImportEdge(imp) {
			res.ImportsResolved++
		}
	}

	for _, call := range calls {
		if r.resolveCall(call) {
			res.CallsResolved++
		} else {
			res.UnresolvedCalls = append(res.UnresolvedCalls, call)
		}
	}

	for _, inh := range inheritance {
		if r.resolveInheritance(inh) {
			res.InheritanceResolved++
		} else {
			res.UnresolvedInheritance = append(res.UnresolvedInheritance, inh)
		}
	}

	return res, nil
}

func (r *Resolver) indexImports(imports []parser.UnresolvedImport) {
	for _, imp := range imports {
		alias := imp.Alias
		if alias == "" || alias == "_" || alias == "." {
			alias = baseSpecifier(imp.Specifier)
		}
		if r.fileImports[imp.FilePath] == nil {
			r.fileImports[imp.FilePath] = make(map[string]string)
		}
		r.fileImports[imp.FilePath][alias] = imp.Specifier
		// Dot/wildcard imports also get a synthetic "." alias entry so
		// unqualified-call resolution can find them later.
		if imp.Alias == "." || imp.Alias == "" {
			r.fileImports[imp.FilePath]["."] = imp.Specifier
		}
	}
}

func baseSpecifier(specifier string) string {
	specifier = strings.Trim(specifier, `"'`)
	specifier = strings.TrimSuffix(specifier, "/")
	return filepath.Base(specifier)
}

// resolveImportEdge tries to match a raw import specifier to an actual
// File node in the graph (relative imports, or a directory whose base
// name or suffix matches the specifier) and inserts an Imports edge.
func (r *Resolver) resolveImportEdge(imp parser.UnresolvedImport) bool {
	dir := r.resolveSpecifierToDir(imp.Specifier, filepath.Dir(imp.FilePath))
	if dir == "" {
		return false
	}
	// Find any file in that directory to anchor the Imports edge on;
	// deterministic by picking the lexicographically first path.
	var candidates []string
	for path, d := range r.dirOf {
		if d == dir {
			candidates = append(candidates, path)
		}
	}
	if len(candidates) == 0 {
		return false
	}
	sort.Strings(candidates)
	target := r.fileNodeByPath[candidates[0]]
	if target == "" || target == imp.FileID {
		return false
	}
	return r.g.InsertEdge(imp.FileID, target, graph.EdgeImports) == nil
}

// resolveSpecifierToDir maps an import specifier to one of the graph's
// known file directories, trying (in order): relative-path resolution,
// direct directory match, suffix match, and base-name match against a
// known directory. Results are cached.
func (r *Resolver) resolveSpecifierToDir(specifier, fromDir string) string {
	key := fromDir + "\x00" + specifier
	if dir, ok := r.specifierToDir[key]; ok {
		return dir
	}

	clean := strings.Trim(specifier, `"'`)
	resolved := ""

	if strings.HasPrefix(clean, ".") {
		candidate := filepath.Clean(filepath.Join(fromDir, clean))
		if _, ok := r.declsByDirAndName[candidate]; ok {
			resolved = candidate
		} else if _, ok := r.dirHasFiles(candidate); ok {
			resolved = candidate
		}
	}

	if resolved == "" {
		if _, ok := r.dirHasFiles(clean); ok {
			resolved = clean
		}
	}

	if resolved == "" {
		for dir := range r.declsByDirAndName {
			if strings.HasSuffix(clean, dir) {
				resolved = dir
				break
			}
		}
	}

	if resolved == "" {
		base := filepath.Base(clean)
		for dir := range r.declsByDirAndName {
			if filepath.Base(dir) == base {
				resolved = dir
				break
			}
		}
	}

	r.specifierToDir[key] = resolved
	return resolved
}

func (r *Resolver) dirHasFiles(dir string) (string, bool) {
	for _, d := range r.dirOf {
		if d == dir {
			return dir, true
		}
	}
	return "", false
}

type scoredCandidate struct {
	id    graph.NodeID
	file  string
	score int // 0 = same-file, 1 = direct-import, 2 = transitive-import
}

// pick applies the tie-break rule: lowest score wins, ties broken
// lexicographically by declaring file path, then by node ID.
func pick(candidates []scoredCandidate) (graph.NodeID, bool) {
	if len(candidates) == 0 {
		return "", false
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score < candidates[j].score
		}
		if candidates[i].file != candidates[j].file {
			return candidates[i].file < candidates[j].file
		}
		return candidates[i].id < candidates[j].id
	})
	return candidates[0].id, true
}

func (r *Resolver) resolveCall(call parser.UnresolvedCall) bool {
	name := call.CalleeName
	if strings.Contains(name, ".") {
		parts := strings.SplitN(name, ".", 2)
		alias, funcName := parts[0], parts[1]
		if i := strings.LastIndex(funcName, "."); i >= 0 {
			funcName = funcName[i+1:]
		}
		return r.resolveNamed(call.CallerID, call.CallerFile, funcName, alias, callableKinds)
	}
	return r.resolveNamed(call.CallerID, call.CallerFile, name, "", callableKinds)
}

func (r *Resolver) resolveInheritance(inh parser.UnresolvedInheritance) bool {
	name := inh.SuperName
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSpace(name)
	return r.resolveNamedEdge(inh.SubID, inh.SubFile, name, "", typeKinds, inh.EdgeKind)
}

// resolveNamed finds the best candidate for name (optionally qualified
// by the given import alias) and, if found, inserts a Calls edge from
// callerID.
func (r *Resolver) resolveNamed(callerID graph.NodeID, callerFile, name, alias string, kinds map[graph.Kind]bool) bool {
	return r.resolveNamedEdge(callerID, callerFile, name, alias, kinds, graph.EdgeCalls)
}

func (r *Resolver) resolveNamedEdge(fromID graph.NodeID, fromFile, name, alias string, kinds map[graph.Kind]bool, edgeKind graph.EdgeKind) bool {
	var candidates []scoredCandidate

	// Same-file: re-check, in case the builder missed a forward reference.
	for _, id := range r.declsByFileAndName[fromFile][name] {
		if kindOK(r.g, id, kinds) {
			candidates = append(candidates, scoredCandidate{id: id, file: fromFile, score: 0})
		}
	}

	if alias != "" {
		if specifier, ok := r.fileImports[fromFile][alias]; ok {
			dir := r.resolveSpecifierToDir(specifier, filepath.Dir(fromFile))
			for _, id := range r.declsByDirAndName[dir][name] {
				if kindOK(r.g, id, kinds) {
					n := r.g.Lookup(id)
					candidates = append(candidates, scoredCandidate{id: id, file: n.Location.Path, score: 1})
				}
			}
		}
	} else {
		// Unqualified: try every import of this file as a direct match
		// (covers "from x import foo" / dot-imports / "use foo::bar").
		for _, specifier := range r.fileImports[fromFile] {
			dir := r.resolveSpecifierToDir(specifier, filepath.Dir(fromFile))
			for _, id := range r.declsByDirAndName[dir][name] {
				if kindOK(r.g, id, kinds) {
					n := r.g.Lookup(id)
					candidates = append(candidates, scoredCandidate{id: id, file: n.Location.Path, score: 1})
				}
			}
		}
	}

	// Transitive-import: the imports of whatever this file imports.
	for _, specifier := range r.fileImports[fromFile] {
		dir := r.resolveSpecifierToDir(specifier, filepath.Dir(fromFile))
		for path, d := range r.dirOf {
			if d != dir {
				continue
			}
			for _, innerSpecifier := range r.fileImports[path] {
				innerDir := r.resolveSpecifierToDir(innerSpecifier, d)
				for _, id := range r.declsByDirAndName[innerDir][name] {
					if kindOK(r.g, id, kinds) {
						n := r.g.Lookup(id)
						candidates = append(candidates, scoredCandidate{id: id, file: n.Location.Path, score: 2})
					}
				}
			}
		}
	}

	target, ok := pick(candidates)
	if !ok || target == fromID {
		return false
	}
	return r.g.InsertEdge(fromID, target, edgeKind) == nil
}

func kindOK(g *graph.Graph, id graph.NodeID, kinds map[graph.Kind]bool) bool {
	n := g.Lookup(id)
	return n != nil && kinds[n.Kind]
}
