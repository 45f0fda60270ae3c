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

// Package tsx parses TypeScript, TSX, JavaScript, and JSX source with
// Tree-sitter into a revet fragment. One Parser instance claims all four
// extensions, selecting the matching grammar per file since arrow
// functions, classes, decorators, and ES module imports are structurally
// identical across the family.
package tsx

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/kraklabs/revet/pkg/graph"
	"github.com/kraklabs/revet/pkg/parser"
)

// Parser implements parser.Parser for the TS/TSX/JS/JSX family.
type Parser struct {
	logger *slog.Logger
	ts     *sitter.Parser
	tsxP   *sitter.Parser
	js     *sitter.Parser
}

func New(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	tsP := sitter.NewParser()
	tsP.SetLanguage(typescript.GetLanguage())

	tsxP := sitter.NewParser()
	tsxP.SetLanguage(tsx.GetLanguage())

	jsP := sitter.NewParser()
	jsP.SetLanguage(javascript.GetLanguage())

	return &Parser{logger: logger, ts: tsP, tsxP: tsxP, js: jsP}
}

func (p *Parser) Language() string     { return "typescript" }
func (p *Parser) Extensions() []string { return []string{".ts", ".tsx", ".js", ".jsx"} }

func (p *Parser) sitterFor(relPath string) *sitter.Parser {
	switch {
	case strings.HasSuffix(relPath, ".tsx"), strings.HasSuffix(relPath, ".jsx"):
		return p.tsxP
	case strings.HasSuffix(relPath, ".ts"):
		return p.ts
	default:
		return p.js
	}
}

type jsContext struct {
	content      []byte
	relPath      string
	b            *parser.Builder
	funcNameToID map[string]string
}

func (p *Parser) Parse(relPath string, content []byte) (*parser.Fragment, *parser.ParseError) {
	if len(content) == 0 {
		b := parser.NewBuilder(relPath, p.Language())
		return b.Fragment(), nil
	}

	sp := p.sitterFor(relPath)
	tree, err := sp.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, &parser.ParseError{Path: relPath, Kind: parser.SyntaxUnrecoverable, Message: err.Error()}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		p.logger.Warn("parser.tsx.syntax_errors", "path", relPath)
	}

	b := parser.NewBuilder(relPath, p.Language())
	ctx := &jsContext{content: content, relPath: relPath, b: b, funcNameToID: make(map[string]string)}

	p.walkImports(root, ctx)
	p.walkTopLevel(root, "", ctx)

	return b.Fragment(), nil
}

func text(content []byte, n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return string(content[n.StartByte():n.EndByte()])
}

func loc(relPath string, n *sitter.Node) graph.Location {
	return graph.Location{Path: relPath, StartLine: int(n.StartPoint().Row) + 1, EndLine: int(n.EndPoint().Row) + 1}
}

func (p *Parser) walkImports(root *sitter.Node, ctx *jsContext) {
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.Type() == "import_statement" {
			p.extractImport(n, ctx)
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
}

func (p *Parser) extractImport(n *sitter.Node, ctx *jsContext) {
	sourceNode := n.ChildByFieldName("source")
	specifier := strings.Trim(text(ctx.content, sourceNode), `"'`)
	if specifier == "" {
		return
	}

	clause := n.ChildByFieldName("import_clause")
	if clause == nil {
		ctx.b.AddImport(specifier, "", loc(ctx.relPath, n))
		return
	}

	alias := ""
	for i := 0; i < int(clause.NamedChildCount()); i++ {
		child := clause.NamedChild(i)
		switch child.Type() {
		case "identifier":
			alias = text(ctx.content, child)
		case "namespace_import":
			alias = text(ctx.content, child)
		}
	}
	ctx.b.AddImport(specifier, alias, loc(ctx.relPath, n))
}

func (p *Parser) walkTopLevel(block *sitter.Node, parentID graph.NodeID, ctx *jsContext) {
	for i := 0; i < int(block.NamedChildCount()); i++ {
		p.handleStatement(block.NamedChild(i), parentID, ctx)
	}
}

func (p *Parser) handleStatement(n *sitter.Node, parentID graph.NodeID, ctx *jsContext) {
	switch n.Type() {
	case "export_statement":
		for i := 0; i < int(n.NamedChildCount()); i++ {
			p.handleStatement(n.NamedChild(i), parentID, ctx)
		}
	case "function_declaration":
		p.extractFunction(n, parentID, ctx)
	case "class_declaration":
		p.extractClass(n, parentID, ctx)
	case "interface_declaration":
		p.extractInterface(n, ctx)
	case "lexical_declaration", "variable_declaration":
		for i := 0; i < int(n.NamedChildCount()); i++ {
			p.extractArrowBinding(n.NamedChild(i), ctx)
		}
	}
}

func (p *Parser) extractArrowBinding(n *sitter.Node, ctx *jsContext) {
	if n.Type() != "variable_declarator" {
		return
	}
	nameNode := n.ChildByFieldName("name")
	valueNode := n.ChildByFieldName("value")
	if nameNode == nil || valueNode == nil {
		return
	}
	switch valueNode.Type() {
	case "arrow_function", "function", "function_expression":
		name := text(ctx.content, nameNode)
		id := ctx.b.AddDecl("", name, graph.KindFunction, name, loc(ctx.relPath, n), nil)
		ctx.funcNameToID[name] = string(id)
		if body := valueNode.ChildByFieldName("body"); body != nil {
			p.extractCalls(body, id, ctx)
		}
	}
}

func (p *Parser) extractFunction(n *sitter.Node, parentID graph.NodeID, ctx *jsContext) graph.NodeID {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return ""
	}
	name := text(ctx.content, nameNode)
	kind := graph.KindFunction
	qualified := name
	if parentID != "" {
		kind = graph.KindMethod
		if pn := ctx.b.Graph().Lookup(parentID); pn != nil {
			qualified = pn.Name + "." + name
		}
	}
	id := ctx.b.AddDecl(parentID, qualified, kind, name, loc(ctx.relPath, n), nil)
	ctx.funcNameToID[name] = string(id)
	if body := n.ChildByFieldName("body"); body != nil {
		p.extractCalls(body, id, ctx)
	}
	return id
}

func (p *Parser) extractClass(n *sitter.Node, parentID graph.NodeID, ctx *jsContext) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := text(ctx.content, nameNode)
	id := ctx.b.AddDecl(parentID, name, graph.KindClass, name, loc(ctx.relPath, n), nil)

	if heritage := n.ChildByFieldName("heritage"); heritage != nil {
		p.extractHeritage(heritage, id, ctx)
	}
	// Older grammar revisions expose heritage as a sibling clause rather
	// than a named field; scan children defensively.
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == "class_heritage" {
			p.extractHeritage(child, id, ctx)
		}
	}

	if decorators := findDecorators(n, ctx.content); len(decorators) > 0 {
		for _, d := range decorators {
			ctx.b.AddDecorate(id, d, loc(ctx.relPath, n))
		}
	}

	body := n.ChildByFieldName("body")
	if body == nil {
		return
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		if member.Type() == "method_definition" {
			p.extractFunction(member, id, ctx)
		}
	}
}

func (p *Parser) extractHeritage(heritage *sitter.Node, classID graph.NodeID, ctx *jsContext) {
	for i := 0; i < int(heritage.NamedChildCount()); i++ {
		clause := heritage.NamedChild(i)
		kind := graph.EdgeInherits
		if clause.Type() == "implements_clause" {
			kind = graph.EdgeImplements
		}
		for j := 0; j < int(clause.NamedChildCount()); j++ {
			name := strings.TrimSpace(text(ctx.content, clause.NamedChild(j)))
			if name != "" {
				ctx.b.AddInheritUnresolved(classID, name, kind)
			}
		}
	}
}

func findDecorators(n *sitter.Node, content []byte) []string {
	var out []string
	parent := n.Parent()
	if parent == nil {
		return out
	}
	for i := 0; i < int(parent.ChildCount()); i++ {
		child := parent.Child(i)
		if child == n {
			break
		}
		if child.Type() == "decorator" {
			raw := strings.TrimPrefix(text(content, child), "@")
			if idx := strings.IndexAny(raw, "("); idx >= 0 {
				raw = raw[:idx]
			}
			out = append(out, strings.TrimSpace(raw))
		}
	}
	return out
}

func (p *Parser) extractInterface(n *sitter.Node, ctx *jsContext) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := text(ctx.content, nameNode)
	id := ctx.b.AddDecl("", name, graph.KindInterface, name, loc(ctx.relPath, n), nil)
	if extends := n.ChildByFieldName("extends_clause") ; extends != nil {
		for i := 0; i < int(extends.NamedChildCount()); i++ {
			superName := strings.TrimSpace(text(ctx.content, extends.NamedChild(i)))
			if superName != "" {
				ctx.b.AddInheritUnresolved(id, superName, graph.EdgeInherits)
			}
		}
	}
}

func (p *Parser) extractCalls(body *sitter.Node, callerID graph.NodeID, ctx *jsContext) {
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.Type() == "call_expression" {
			if fnNode := n.ChildByFieldName("function"); fnNode != nil {
				p.resolveCallTarget(fnNode, callerID, ctx)
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(body)
}

func (p *Parser) resolveCallTarget(fnNode *sitter.Node, callerID graph.NodeID, ctx *jsContext) {
	switch fnNode.Type() {
	case "identifier":
		name := text(ctx.content, fnNode)
		if id, ok := ctx.funcNameToID[name]; ok {
			ctx.b.AddCallResolved(callerID, graph.NodeID(id))
			return
		}
		ctx.b.AddCallUnresolved(callerID, name)
	case "member_expression":
		prop := fnNode.ChildByFieldName("property")
		full := text(ctx.content, fnNode)
		if prop != nil {
			simple := text(ctx.content, prop)
			if id, ok := ctx.funcNameToID[simple]; ok {
				ctx.b.AddCallResolved(callerID, graph.NodeID(id))
				return
			}
		}
		ctx.b.AddCallUnresolved(callerID, full)
	}
}

var _ = fmt.Sprintf
