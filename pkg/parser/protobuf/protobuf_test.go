// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package protobuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/revet/pkg/graph"
)

const sample = `syntax = "proto3";

package sample;

import "google/protobuf/timestamp.proto";

message Widget {
  string name = 1;
  int32 count = 2;
}

enum Status {
  UNKNOWN = 0;
  ACTIVE = 1;
}

service WidgetService {
  rpc GetWidget(GetWidgetRequest) returns (Widget);
  rpc ListWidgets(ListWidgetsRequest) returns (ListWidgetsResponse);
}
`

func TestParseExtractsDeclsAndImports(t *testing.T) {
	p := New()
	frag, perr := p.Parse("sample.proto", []byte(sample))
	require.Nil(t, perr)
	require.NotNil(t, frag)

	g := frag.Graph
	var structs, enums, services, methods, imports int
	for _, id := range g.Nodes() {
		n := g.Lookup(id)
		switch n.Kind {
		case graph.KindStruct:
			structs++
		case graph.KindEnum:
			enums++
		case graph.KindInterface:
			services++
		case graph.KindMethod:
			methods++
		case graph.KindImport:
			imports++
		}
	}

	assert.Equal(t, 1, structs, "Widget")
	assert.Equal(t, 1, enums, "Status")
	assert.Equal(t, 1, services, "WidgetService")
	assert.Equal(t, 2, methods, "GetWidget, ListWidgets")
	assert.Equal(t, 1, imports)
}

func TestParseEmptyFile(t *testing.T) {
	p := New()
	frag, perr := p.Parse("empty.proto", []byte{})
	require.Nil(t, perr)
	assert.Equal(t, 1, frag.Graph.NodeCount())
}

func TestLanguageAndExtensions(t *testing.T) {
	p := New()
	assert.Equal(t, "protobuf", p.Language())
	assert.Equal(t, []string{".proto"}, p.Extensions())
}
