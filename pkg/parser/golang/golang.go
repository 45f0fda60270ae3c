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

// Package golang parses Go source with Tree-sitter into a revet fragment.
//
// This is the most heavily exercised language in the corpus this tool is
// meant to review, so it gets the most complete treatment: functions,
// methods (keyed by receiver type), structs, interfaces, struct embedding
// treated as Inherits, imports, and intra-file call resolution.
package golang

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"github.com/kraklabs/revet/pkg/graph"
	"github.com/kraklabs/revet/pkg/parser"
)

// Parser implements parser.Parser for Go.
type Parser struct {
	logger *slog.Logger
	sp     *sitter.Parser
}

// New creates a Go parser. logger may be nil, in which case slog.Default
// is used.
func New(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	sp := sitter.NewParser()
	sp.SetLanguage(golang.GetLanguage())
	return &Parser{logger: logger, sp: sp}
}

func (p *Parser) Language() string     { return "go" }
func (p *Parser) Extensions() []string { return []string{".go"} }

// funcContext carries per-file walking state.
type funcContext struct {
	content      []byte
	relPath      string
	b            *parser.Builder
	funcNameToID map[string]string // simple name -> node ID, for intra-file call resolution
	anonCounter  int
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
		p.logger.Warn("parser.golang.syntax_errors", "path", relPath)
		// Tree-sitter is error-tolerant; continue extracting from the
		// partial tree rather than failing the file.
	}

	b := parser.NewBuilder(relPath, p.Language())
	ctx := &funcContext{content: content, relPath: relPath, b: b, funcNameToID: make(map[string]string)}

	p.walkImports(root, ctx)
	p.walkTypes(root, ctx)
	p.walkFunctions(root, ctx)

	return b.Fragment(), nil
}

func text(content []byte, n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return string(content[n.StartByte():n.EndByte()])
}

func loc(relPath string, n *sitter.Node) graph.Location {
	return graph.Location{
		Path:      relPath,
		StartLine: int(n.StartPoint().Row) + 1,
		EndLine:   int(n.EndPoint().Row) + 1,
	}
}

// walkImports extracts import_declaration nodes anywhere in the file.
func (p *Parser) walkImports(root *sitter.Node, ctx *funcContext) {
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.Type() == "import_spec" {
			p.extractImportSpec(n, ctx)
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
}

func (p *Parser) extractImportSpec(n *sitter.Node, ctx *funcContext) {
	pathNode := n.ChildByFieldName("path")
	if pathNode == nil {
		return
	}
	specifier := strings.Trim(text(ctx.content, pathNode), `"`)

	alias := ""
	if nameNode := n.ChildByFieldName("name"); nameNode != nil {
		alias = text(ctx.content, nameNode)
	}
	ctx.b.AddImport(specifier, alias, loc(ctx.relPath, n))
}

// walkTypes extracts type_spec nodes for struct/interface declarations.
func (p *Parser) walkTypes(root *sitter.Node, ctx *funcContext) {
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.Type() == "type_spec" {
			p.extractTypeSpec(n, ctx)
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
}

func (p *Parser) extractTypeSpec(n *sitter.Node, ctx *funcContext) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := text(ctx.content, nameNode)

	typeNode := n.ChildByFieldName("type")
	if typeNode == nil {
		return
	}

	attrs := map[string]string{"exported": fmt.Sprintf("%v", isExported(name))}

	switch typeNode.Type() {
	case "struct_type":
		id := ctx.b.AddDecl("", name, graph.KindStruct, name, loc(ctx.relPath, n), attrs)
		p.recordEmbeddedFields(typeNode, id, ctx)
	case "interface_type":
		ctx.b.AddDecl("", name, graph.KindInterface, name, loc(ctx.relPath, n), attrs)
	default:
		ctx.b.AddDecl("", name, graph.KindStruct, name, loc(ctx.relPath, n), attrs)
	}
}

// recordEmbeddedFields treats an embedded field (one with no field name,
// only a type) as a struct-embedding "Inherits" relationship — Go has no
// classical inheritance, but embedding is its closest idiomatic analog
// and the spec models Inherits generically across languages.
func (p *Parser) recordEmbeddedFields(structType *sitter.Node, structID graph.NodeID, ctx *funcContext) {
	for i := 0; i < int(structType.ChildCount()); i++ {
		field := structType.Child(i)
		if field.Type() != "field_declaration" {
			continue
		}
		if field.ChildByFieldName("name") != nil {
			continue // named field, not embedded
		}
		typeNode := field.ChildByFieldName("type")
		if typeNode == nil {
			continue
		}
		baseName := baseTypeName(typeNode, ctx.content)
		if baseName == "" {
			continue
		}
		ctx.b.AddInheritUnresolved(structID, baseName, graph.EdgeInherits)
	}
}

func baseTypeName(typeNode *sitter.Node, content []byte) string {
	if typeNode == nil {
		return ""
	}
	switch typeNode.Type() {
	case "pointer_type":
		for i := 0; i < int(typeNode.ChildCount()); i++ {
			child := typeNode.Child(i)
			if child.Type() != "*" {
				return baseTypeName(child, content)
			}
		}
	case "qualified_type":
		nameNode := typeNode.ChildByFieldName("name")
		return text(content, nameNode)
	case "type_identifier":
		return text(content, typeNode)
	}
	return strings.TrimPrefix(text(content, typeNode), "*")
}

// walkFunctions extracts function_declaration and method_declaration
// nodes (first pass), then extracts calls from each body (second pass).
func (p *Parser) walkFunctions(root *sitter.Node, ctx *funcContext) {
	type declWithNode struct {
		id   graph.NodeID
		node *sitter.Node
	}
	var decls []declWithNode

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		switch n.Type() {
		case "function_declaration":
			id, name := p.extractFunction(n, ctx)
			if id != "" {
				decls = append(decls, declWithNode{id, n})
				ctx.funcNameToID[name] = string(id)
			}
		case "method_declaration":
			id, simpleName := p.extractMethod(n, ctx)
			if id != "" {
				decls = append(decls, declWithNode{id, n})
				ctx.funcNameToID[simpleName] = string(id)
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)

	for _, d := range decls {
		p.extractCalls(d.node, d.id, ctx)
	}
}

func (p *Parser) extractFunction(n *sitter.Node, ctx *funcContext) (graph.NodeID, string) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return "", ""
	}
	name := text(ctx.content, nameNode)
	sig := buildSignature(ctx.content, n, "", name)
	attrs := map[string]string{
		"signature":  sig,
		"exported":   fmt.Sprintf("%v", isExported(name)),
		"complexity": complexityAttr(n.ChildByFieldName("body")),
	}
	id := ctx.b.AddDecl("", name, graph.KindFunction, name, loc(ctx.relPath, n), attrs)
	return id, name
}

func (p *Parser) extractMethod(n *sitter.Node, ctx *funcContext) (graph.NodeID, string) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return "", ""
	}
	methodName := text(ctx.content, nameNode)

	receiverType := ""
	if recv := n.ChildByFieldName("receiver"); recv != nil {
		for i := 0; i < int(recv.ChildCount()); i++ {
			child := recv.Child(i)
			if child.Type() == "parameter_declaration" {
				if t := child.ChildByFieldName("type"); t != nil {
					receiverType = baseTypeName(t, ctx.content)
				}
			}
		}
	}

	fullName := methodName
	qualified := methodName
	if receiverType != "" {
		fullName = receiverType + "." + methodName
		qualified = fullName
	}

	sig := buildSignature(ctx.content, n, receiverType, methodName)
	attrs := map[string]string{
		"signature":  sig,
		"exported":   fmt.Sprintf("%v", isExported(methodName)),
		"receiver":   receiverType,
		"complexity": complexityAttr(n.ChildByFieldName("body")),
	}
	id := ctx.b.AddDecl("", qualified, graph.KindMethod, fullName, loc(ctx.relPath, n), attrs)
	return id, methodName
}

func buildSignature(content []byte, n *sitter.Node, receiverType, name string) string {
	var sb strings.Builder
	sb.WriteString("func ")
	if receiverType != "" {
		sb.WriteString("(" + receiverType + ") ")
	}
	sb.WriteString(name)
	if params := n.ChildByFieldName("parameters"); params != nil {
		sb.WriteString(text(content, params))
	}
	if result := n.ChildByFieldName("result"); result != nil {
		sb.WriteString(" ")
		sb.WriteString(text(content, result))
	}
	return sb.String()
}

// extractCalls walks a function/method body for call_expression nodes
// and resolves them against funcNameToID (same-file), queuing anything
// else as unresolved for the cross-file resolver.
func (p *Parser) extractCalls(body *sitter.Node, callerID graph.NodeID, ctx *funcContext) {
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.Type() == "call_expression" {
			fnNode := n.ChildByFieldName("function")
			if fnNode != nil {
				p.resolveCallTarget(fnNode, callerID, ctx)
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(body)
}

func (p *Parser) resolveCallTarget(fnNode *sitter.Node, callerID graph.NodeID, ctx *funcContext) {
	switch fnNode.Type() {
	case "identifier":
		name := text(ctx.content, fnNode)
		if id, ok := ctx.funcNameToID[name]; ok {
			ctx.b.AddCallResolved(callerID, graph.NodeID(id))
			return
		}
		ctx.b.AddCallUnresolved(callerID, name)
	case "selector_expression":
		field := fnNode.ChildByFieldName("field")
		full := text(ctx.content, fnNode)
		if field != nil {
			// Try the bare method name first (same-file method call via
			// a local receiver variable), else queue the qualified name
			// for cross-package resolution.
			simple := text(ctx.content, field)
			if id, ok := ctx.funcNameToID[simple]; ok {
				ctx.b.AddCallResolved(callerID, graph.NodeID(id))
				return
			}
		}
		ctx.b.AddCallUnresolved(callerID, full)
	}
}

func isExported(name string) bool {
	return len(name) > 0 && name[0] >= 'A' && name[0] <= 'Z'
}

// decisionPointTypes are the Go AST node kinds that add a branch to
// cyclomatic complexity: one point of entry plus one per decision point.
var decisionPointTypes = map[string]bool{
	"if_statement":        true,
	"for_statement":       true,
	"expression_case":     true,
	"type_case":           true,
	"communication_case":  true,
}

// countDecisionPoints walks n and counts nodes that add a branch to
// cyclomatic complexity, including short-circuit && / || operators,
// which add a branch the same as an explicit if.
func countDecisionPoints(n *sitter.Node) int {
	if n == nil {
		return 0
	}
	count := 0
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if decisionPointTypes[n.Type()] {
			count++
		}
		if n.Type() == "binary_expression" {
			for i := 0; i < int(n.ChildCount()); i++ {
				if t := n.Child(i).Type(); t == "&&" || t == "||" {
					count++
					break
				}
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(n)
	return count
}

func complexityAttr(body *sitter.Node) string {
	return strconv.Itoa(1 + countDecisionPoints(body))
}
