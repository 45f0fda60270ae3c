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

// Package parser defines the capability contract every language parser
// implements, and the Fragment/ParseState types a parser produces.
//
// A parser is bound to one language tag and a set of file extensions. It
// exposes exactly one operation: Parse. Implementations live in
// per-language sub-packages (golang, python, tsx, rust, protobuf) and are
// registered with a Registry for extension-based dispatch.
package parser

import (
	"github.com/kraklabs/revet/pkg/graph"
)

// ParseErrorKind is the closed set of parse-failure categories.
type ParseErrorKind string

const (
	// SyntaxUnrecoverable means the parser could not produce any usable
	// tree at all (not merely a tree-sitter ERROR node, which parsers
	// tolerate and continue through).
	SyntaxUnrecoverable ParseErrorKind = "SyntaxUnrecoverable"

	// GrammarMissing means no parser capability is registered for the
	// file's extension.
	GrammarMissing ParseErrorKind = "GrammarMissing"

	// IoEmpty means the file could not be read or was empty in a way
	// that prevents parsing (distinct from a legitimately empty file,
	// which parses to a lone File node).
	IoEmpty ParseErrorKind = "IoEmpty"
)

// ParseError is returned by Parse on failure. Parse failures never abort
// the pipeline: the affected file still contributes a bare File node and
// this diagnostic.
type ParseError struct {
	Path    string
	Kind    ParseErrorKind
	Message string
}

func (e *ParseError) Error() string {
	return string(e.Kind) + " " + e.Path + ": " + e.Message
}

// UnresolvedCall is a call whose target could not be resolved within the
// file it was found in; the cross-file resolver attempts to resolve it
// after all fragments are merged.
type UnresolvedCall struct {
	CallerID     graph.NodeID
	CalleeName   string // possibly qualified, e.g. "pkg.Foo" or "self.bar"
	CallerFile   string
}

// UnresolvedImport is a raw import specifier recorded on a File node,
// deferred to the cross-file resolver for module-path resolution.
type UnresolvedImport struct {
	FileID     graph.NodeID
	FilePath   string
	Specifier  string // raw import path/specifier as written
	Alias      string // local alias, "" if none, "_" for blank imports
}

// UnresolvedInheritance is an unresolved base-class/trait/interface
// reference.
type UnresolvedInheritance struct {
	SubID       graph.NodeID
	SuperName   string
	SubFile     string
	EdgeKind    graph.EdgeKind // Inherits or Implements
}

// ParseState holds every reference a fragment could not resolve on its
// own, because doing so requires seeing the whole merged graph.
type ParseState struct {
	Calls        []UnresolvedCall
	Imports      []UnresolvedImport
	Inheritance  []UnresolvedInheritance
}

// Fragment is a parser's complete output for one source file: the nodes
// and edges it can resolve unaided, plus everything it couldn't.
type Fragment struct {
	Graph *graph.Graph
	State ParseState

	// FileID is the ID of this fragment's single File node, for callers
	// that need it without a graph lookup by path.
	FileID graph.NodeID
}

// Parser is the capability contract every language implementation
// satisfies.
type Parser interface {
	// Language returns the language tag this parser produces (e.g. "go").
	Language() string

	// Extensions returns the file extensions this parser claims (e.g.
	// []string{".go"}).
	Extensions() []string

	// Parse parses one file's content and returns its fragment. relPath
	// is repo-relative with forward slashes.
	Parse(relPath string, content []byte) (*Fragment, *ParseError)
}
