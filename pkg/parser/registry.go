// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"path/filepath"
	"strings"
)

// Registry dispatches a file extension to the parser that claims it.
type Registry struct {
	byExt map[string]Parser
}

// NewRegistry builds a registry from the given parsers. Later parsers in
// the list win on extension collision (none of the built-in parsers
// collide, so this only matters for caller-supplied custom parsers).
func NewRegistry(parsers ...Parser) *Registry {
	r := &Registry{byExt: make(map[string]Parser)}
	for _, p := range parsers {
		for _, ext := range p.Extensions() {
			r.byExt[strings.ToLower(ext)] = p
		}
	}
	return r
}

// For returns the parser registered for relPath's extension, or nil with
// ok=false if no parser claims it (GrammarMissing territory).
func (r *Registry) For(relPath string) (Parser, bool) {
	ext := strings.ToLower(filepath.Ext(relPath))
	p, ok := r.byExt[ext]
	return p, ok
}

// Extensions returns every extension this registry has a parser for.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	return exts
}
