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

// Package rust parses Rust source with Tree-sitter into a revet fragment:
// free functions, structs, traits, impl blocks (modeled as Implements
// edges from the impl's methods' owning type to the trait), use
// declarations, and intra-file calls.
package rust

import (
	"context"
	"log/slog"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"

	"github.com/kraklabs/revet/pkg/graph"
	"github.com/kraklabs/revet/pkg/parser"
)

// Parser implements parser.Parser for Rust.
type Parser struct {
	logger *slog.Logger
	sp     *sitter.Parser
}

func New(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	sp := sitter.NewParser()
	sp.SetLanguage(rust.GetLanguage())
	return &Parser{logger: logger, sp: sp}
}

func (p *Parser) Language() string     { return "rust" }
func (p *Parser) Extensions() []string { return []string{".rs"} }

type rsContext struct {
	content      []byte
	relPath      string
	b            *parser.Builder
	funcNameToID map[string]string
	typeIDs      map[string]graph.NodeID
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
		p.logger.Warn("parser.rust.syntax_errors", "path", relPath)
	}

	b := parser.NewBuilder(relPath, p.Language())
	ctx := &rsContext{content: content, relPath: relPath, b: b, funcNameToID: make(map[string]string), typeIDs: make(map[string]graph.NodeID)}

	p.walkUses(root, ctx)
	p.walkStructsAndTraits(root, ctx)
	p.walkFreeFunctions(root, ctx)
	p.walkImpls(root, ctx)

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

func (p *Parser) walkUses(root *sitter.Node, ctx *rsContext) {
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.Type() == "use_declaration" {
			spec := strings.TrimSuffix(strings.TrimSpace(text(ctx.content, n)), ";")
			spec = strings.TrimPrefix(spec, "use ")
			ctx.b.AddImport(spec, "", loc(ctx.relPath, n))
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
}

func (p *Parser) walkStructsAndTraits(root *sitter.Node, ctx *rsContext) {
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		switch n.Type() {
		case "struct_item":
			nameNode := n.ChildByFieldName("name")
			if nameNode != nil {
				name := text(ctx.content, nameNode)
				id := ctx.b.AddDecl("", name, graph.KindStruct, name, loc(ctx.relPath, n), nil)
				ctx.typeIDs[name] = id
			}
		case "trait_item":
			nameNode := n.ChildByFieldName("name")
			if nameNode != nil {
				name := text(ctx.content, nameNode)
				id := ctx.b.AddDecl("", name, graph.KindTrait, name, loc(ctx.relPath, n), nil)
				ctx.typeIDs[name] = id
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
}

func (p *Parser) walkFreeFunctions(root *sitter.Node, ctx *rsContext) {
	type pending struct {
		id   graph.NodeID
		body *sitter.Node
	}
	var fns []pending

	var walk func(n *sitter.Node, insideImpl bool)
	walk = func(n *sitter.Node, insideImpl bool) {
		if n == nil {
			return
		}
		if n.Type() == "impl_item" {
			insideImpl = true
		}
		if n.Type() == "function_item" && !insideImpl {
			nameNode := n.ChildByFieldName("name")
			if nameNode != nil {
				name := text(ctx.content, nameNode)
				id := ctx.b.AddDecl("", name, graph.KindFunction, name, loc(ctx.relPath, n), nil)
				ctx.funcNameToID[name] = string(id)
				if body := n.ChildByFieldName("body"); body != nil {
					fns = append(fns, pending{id, body})
				}
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i), insideImpl)
		}
	}
	walk(root, false)

	for _, f := range fns {
		p.extractCalls(f.body, f.id, ctx)
	}
}

// walkImpls handles `impl Trait for Type { ... }` (adds an Implements
// edge from Type to Trait and registers methods under Type) and bare
// `impl Type { ... }` inherent blocks.
func (p *Parser) walkImpls(root *sitter.Node, ctx *rsContext) {
	type pending struct {
		id   graph.NodeID
		body *sitter.Node
	}
	var methods []pending

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.Type() == "impl_item" {
			p.extractImpl(n, ctx, &methods)
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)

	for _, m := range methods {
		p.extractCalls(m.body, m.id, ctx)
	}
}

func (p *Parser) extractImpl(n *sitter.Node, ctx *rsContext, methods *[]struct {
	id   graph.NodeID
	body *sitter.Node
}) {
	typeNode := n.ChildByFieldName("type")
	traitNode := n.ChildByFieldName("trait")
	typeName := text(ctx.content, typeNode)
	if typeName == "" {
		return
	}

	typeID, known := ctx.typeIDs[typeName]
	if !known {
		typeID = ctx.b.AddDecl("", typeName, graph.KindStruct, typeName, loc(ctx.relPath, n), nil)
		ctx.typeIDs[typeName] = typeID
	}

	if traitNode != nil {
		traitName := text(ctx.content, traitNode)
		ctx.b.AddInheritUnresolved(typeID, traitName, graph.EdgeImplements)
	}

	body := n.ChildByFieldName("body")
	if body == nil {
		return
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		if member.Type() != "function_item" {
			continue
		}
		nameNode := member.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		methodName := text(ctx.content, nameNode)
		qualified := typeName + "." + methodName
		id := ctx.b.AddDecl(typeID, qualified, graph.KindMethod, methodName, loc(ctx.relPath, member), map[string]string{"receiver": typeName})
		ctx.funcNameToID[methodName] = string(id)
		if mbody := member.ChildByFieldName("body"); mbody != nil {
			*methods = append(*methods, struct {
				id   graph.NodeID
				body *sitter.Node
			}{id, mbody})
		}
	}
}

func (p *Parser) extractCalls(body *sitter.Node, callerID graph.NodeID, ctx *rsContext) {
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

func (p *Parser) resolveCallTarget(fnNode *sitter.Node, callerID graph.NodeID, ctx *rsContext) {
	switch fnNode.Type() {
	case "identifier":
		name := text(ctx.content, fnNode)
		if id, ok := ctx.funcNameToID[name]; ok {
			ctx.b.AddCallResolved(callerID, graph.NodeID(id))
			return
		}
		ctx.b.AddCallUnresolved(callerID, name)
	case "field_expression":
		field := fnNode.ChildByFieldName("field")
		full := text(ctx.content, fnNode)
		if field != nil {
			simple := text(ctx.content, field)
			if id, ok := ctx.funcNameToID[simple]; ok {
				ctx.b.AddCallResolved(callerID, graph.NodeID(id))
				return
			}
		}
		ctx.b.AddCallUnresolved(callerID, full)
	case "scoped_identifier":
		ctx.b.AddCallUnresolved(callerID, text(ctx.content, fnNode))
	}
}
