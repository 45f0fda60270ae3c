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

// Package protobuf extracts a fragment from .proto files with line-based
// regular expressions rather than Tree-sitter: no grammar for protobuf
// ships in the pack's Tree-sitter binding, and the language's block
// structure (message/service/rpc) is regular enough that a line scanner
// is the idiomatic, grounded choice here — the same approach the corpus
// uses for its own lightweight file analyzers.
package protobuf

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"

	"github.com/kraklabs/revet/pkg/graph"
	"github.com/kraklabs/revet/pkg/parser"
)

var (
	importRe = regexp.MustCompile(`^\s*import\s+(?:public\s+|weak\s+)?"([^"]+)"\s*;`)
	messageRe = regexp.MustCompile(`^\s*message\s+(\w+)\s*\{`)
	serviceRe = regexp.MustCompile(`^\s*service\s+(\w+)\s*\{`)
	rpcRe     = regexp.MustCompile(`^\s*rpc\s+(\w+)\s*\(`)
	enumRe    = regexp.MustCompile(`^\s*enum\s+(\w+)\s*\{`)
)

// Parser implements parser.Parser for Protocol Buffers schema files.
type Parser struct{}

func New() *Parser { return &Parser{} }

func (p *Parser) Language() string     { return "protobuf" }
func (p *Parser) Extensions() []string { return []string{".proto"} }

type openBlock struct {
	id    graph.NodeID
	kind  graph.Kind
	depth int
}

func (p *Parser) Parse(relPath string, content []byte) (*parser.Fragment, *parser.ParseError) {
	b := parser.NewBuilder(relPath, p.Language())
	if len(content) == 0 {
		return b.Fragment(), nil
	}

	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	depth := 0
	var stack []openBlock

	for scanner.Scan() {
		lineNo++
		rawLine := scanner.Text()
		line := stripComment(rawLine)

		if m := importRe.FindStringSubmatch(line); m != nil {
			b.AddImport(m[1], "", graph.Location{Path: relPath, StartLine: lineNo})
		}

		var parentID graph.NodeID
		if len(stack) > 0 {
			parentID = stack[len(stack)-1].id
		}

		switch {
		case messageRe.MatchString(line):
			name := messageRe.FindStringSubmatch(line)[1]
			qualified := qualifiedName(stack, name)
			id := b.AddDecl(parentID, qualified, graph.KindStruct, name, graph.Location{Path: relPath, StartLine: lineNo}, nil)
			stack = append(stack, openBlock{id: id, kind: graph.KindStruct, depth: depth})
		case serviceRe.MatchString(line):
			name := serviceRe.FindStringSubmatch(line)[1]
			qualified := qualifiedName(stack, name)
			id := b.AddDecl(parentID, qualified, graph.KindInterface, name, graph.Location{Path: relPath, StartLine: lineNo}, nil)
			stack = append(stack, openBlock{id: id, kind: graph.KindInterface, depth: depth})
		case enumRe.MatchString(line):
			name := enumRe.FindStringSubmatch(line)[1]
			qualified := qualifiedName(stack, name)
			id := b.AddDecl(parentID, qualified, graph.KindEnum, name, graph.Location{Path: relPath, StartLine: lineNo}, nil)
			stack = append(stack, openBlock{id: id, kind: graph.KindEnum, depth: depth})
		case rpcRe.MatchString(line) && len(stack) > 0 && stack[len(stack)-1].kind == graph.KindInterface:
			name := rpcRe.FindStringSubmatch(line)[1]
			svc := stack[len(stack)-1]
			qualified := qualifiedName(stack, name)
			b.AddDecl(svc.id, qualified, graph.KindMethod, name, graph.Location{Path: relPath, StartLine: lineNo}, nil)
		}

		depth += strings.Count(line, "{") - strings.Count(line, "}")
		for len(stack) > 0 && depth <= stack[len(stack)-1].depth {
			stack = stack[:len(stack)-1]
		}
	}

	return b.Fragment(), nil
}

func qualifiedName(stack []openBlock, name string) string {
	if len(stack) == 0 {
		return name
	}
	// Qualification by nesting depth is enough for deterministic IDs;
	// protobuf doesn't need a richer qualified-path scheme than this.
	return name + "#" + string(rune('0'+len(stack)))
}

func stripComment(line string) string {
	if i := strings.Index(line, "//"); i >= 0 {
		return line[:i]
	}
	return line
}
