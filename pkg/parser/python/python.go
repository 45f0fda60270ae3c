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

// Package python parses Python source with Tree-sitter into a revet
// fragment: functions, classes with base lists, decorators, imports, and
// intra-file calls.
package python

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/kraklabs/revet/pkg/graph"
	"github.com/kraklabs/revet/pkg/parser"
)

// Parser implements parser.Parser for Python.
type Parser struct {
	logger *slog.Logger
	sp     *sitter.Parser
}

func New(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	sp := sitter.NewParser()
	sp.SetLanguage(python.GetLanguage())
	return &Parser{logger: logger, sp: sp}
}

func (p *Parser) Language() string     { return "python" }
func (p *Parser) Extensions() []string { return []string{".py"} }

type pyContext struct {
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

	tree, err := p.sp.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, &parser.ParseError{Path: relPath, Kind: parser.SyntaxUnrecoverable, Message: err.Error()}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		p.logger.Warn("parser.python.syntax_errors", "path", relPath)
	}

	b := parser.NewBuilder(relPath, p.Language())
	ctx := &pyContext{content: content, relPath: relPath, b: b, funcNameToID: make(map[string]string)}

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

func (p *Parser) walkImports(root *sitter.Node, ctx *pyContext) {
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		switch n.Type() {
		case "import_statement":
			p.extractImportStatement(n, ctx)
		case "import_from_statement":
			p.extractImportFromStatement(n, ctx)
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
}

func (p *Parser) extractImportStatement(n *sitter.Node, ctx *pyContext) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "dotted_name":
			ctx.b.AddImport(text(ctx.content, child), "", loc(ctx.relPath, n))
		case "aliased_import":
			name := child.ChildByFieldName("name")
			alias := child.ChildByFieldName("alias")
			ctx.b.AddImport(text(ctx.content, name), text(ctx.content, alias), loc(ctx.relPath, n))
		}
	}
}

func (p *Parser) extractImportFromStatement(n *sitter.Node, ctx *pyContext) {
	moduleNode := n.ChildByFieldName("module_name")
	module := text(ctx.content, moduleNode)
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "dotted_name":
			if child == moduleNode {
				continue
			}
			ctx.b.AddImport(module+"."+text(ctx.content, child), "", loc(ctx.relPath, n))
		case "aliased_import":
			name := child.ChildByFieldName("name")
			alias := child.ChildByFieldName("alias")
			ctx.b.AddImport(module+"."+text(ctx.content, name), text(ctx.content, alias), loc(ctx.relPath, n))
		case "wildcard_import":
			ctx.b.AddImport(module+".*", "", loc(ctx.relPath, n))
		}
	}
	if moduleNode != nil && n.NamedChildCount() == 1 {
		ctx.b.AddImport(module, "", loc(ctx.relPath, n))
	}
}

// walkTopLevel recurses over a block's statements, handling
// decorated_definition/function_definition/class_definition. parentID is
// "" for module scope or a class's node ID for methods.
func (p *Parser) walkTopLevel(block *sitter.Node, parentID graph.NodeID, ctx *pyContext) {
	for i := 0; i < int(block.NamedChildCount()); i++ {
		child := block.NamedChild(i)
		p.handleStatement(child, parentID, ctx)
	}
}

func (p *Parser) handleStatement(n *sitter.Node, parentID graph.NodeID, ctx *pyContext) {
	switch n.Type() {
	case "decorated_definition":
		defNode := n.ChildByFieldName("definition")
		var id graph.NodeID
		switch {
		case defNode == nil:
		case defNode.Type() == "function_definition":
			id = p.extractFunction(defNode, parentID, ctx)
		case defNode.Type() == "class_definition":
			id = p.extractClass(defNode, parentID, ctx)
		}
		if id != "" {
			for i := 0; i < int(n.NamedChildCount()); i++ {
				deco := n.NamedChild(i)
				if deco.Type() == "decorator" {
					name := decoratorName(deco, ctx.content)
					ctx.b.AddDecorate(id, name, loc(ctx.relPath, deco))
				}
			}
		}
	case "function_definition":
		p.extractFunction(n, parentID, ctx)
	case "class_definition":
		p.extractClass(n, parentID, ctx)
	}
}

func decoratorName(deco *sitter.Node, content []byte) string {
	raw := text(content, deco)
	raw = strings.TrimPrefix(raw, "@")
	if i := strings.IndexAny(raw, "("); i >= 0 {
		raw = raw[:i]
	}
	return strings.TrimSpace(raw)
}

func (p *Parser) extractFunction(n *sitter.Node, parentID graph.NodeID, ctx *pyContext) graph.NodeID {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return ""
	}
	name := text(ctx.content, nameNode)
	qualified := name
	kind := graph.KindFunction
	if parentID != "" {
		kind = graph.KindMethod
		if pn := ctx.b.Graph().Lookup(parentID); pn != nil {
			qualified = pn.Name + "." + name
		}
	}
	attrs := map[string]string{"async": fmt.Sprintf("%v", hasAsyncKeyword(n, ctx.content))}
	id := ctx.b.AddDecl(parentID, qualified, kind, name, loc(ctx.relPath, n), attrs)
	ctx.funcNameToID[name] = string(id)

	if body := n.ChildByFieldName("body"); body != nil {
		p.extractCalls(body, id, ctx)
	}
	return id
}

func hasAsyncKeyword(n *sitter.Node, content []byte) bool {
	return strings.HasPrefix(text(content, n), "async")
}

func (p *Parser) extractClass(n *sitter.Node, parentID graph.NodeID, ctx *pyContext) graph.NodeID {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return ""
	}
	name := text(ctx.content, nameNode)
	id := ctx.b.AddDecl(parentID, name, graph.KindClass, name, loc(ctx.relPath, n), nil)

	if superclasses := n.ChildByFieldName("superclasses"); superclasses != nil {
		for i := 0; i < int(superclasses.NamedChildCount()); i++ {
			baseNode := superclasses.NamedChild(i)
			if baseNode.Type() == "keyword_argument" {
				continue // e.g. metaclass=... is not inheritance
			}
			baseName := text(ctx.content, baseNode)
			if baseName == "" || baseName == "object" {
				continue
			}
			ctx.b.AddInheritUnresolved(id, baseName, graph.EdgeInherits)
		}
	}

	if body := n.ChildByFieldName("body"); body != nil {
		p.walkTopLevel(body, id, ctx)
	}
	return id
}

func (p *Parser) extractCalls(body *sitter.Node, callerID graph.NodeID, ctx *pyContext) {
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.Type() == "call" {
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

func (p *Parser) resolveCallTarget(fnNode *sitter.Node, callerID graph.NodeID, ctx *pyContext) {
	switch fnNode.Type() {
	case "identifier":
		name := text(ctx.content, fnNode)
		if id, ok := ctx.funcNameToID[name]; ok {
			ctx.b.AddCallResolved(callerID, graph.NodeID(id))
			return
		}
		ctx.b.AddCallUnresolved(callerID, name)
	case "attribute":
		attr := fnNode.ChildByFieldName("attribute")
		full := text(ctx.content, fnNode)
		if attr != nil {
			simple := text(ctx.content, attr)
			if id, ok := ctx.funcNameToID[simple]; ok {
				ctx.b.AddCallResolved(callerID, graph.NodeID(id))
				return
			}
		}
		ctx.b.AddCallUnresolved(callerID, full)
	}
}
