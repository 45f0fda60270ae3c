// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentHashStable(t *testing.T) {
	a := ContentHashHex([]byte("package main\n"))
	b := ContentHashHex([]byte("package main\n"))
	require.Equal(t, a, b)

	c := ContentHashHex([]byte("package other\n"))
	assert.NotEqual(t, a, c)
}

func TestContentHashLength(t *testing.T) {
	h := ContentHash([]byte("x"))
	assert.Len(t, h, 16)
}

func TestNodeIDStableAcrossPathForms(t *testing.T) {
	a := NodeID("./pkg/foo.go", "Foo", "Function")
	b := NodeID("pkg/foo.go", "Foo", "Function")
	assert.Equal(t, a, b)

	c := NodeID("pkg\\foo.go", "Foo", "Function")
	_ = c // Windows-style separators are normalized by filepath.ToSlash on that platform.
}

func TestNodeIDDiffersByKindAndPath(t *testing.T) {
	a := NodeID("pkg/foo.go", "Foo", "Function")
	b := NodeID("pkg/foo.go", "Foo", "Class")
	c := NodeID("pkg/bar.go", "Foo", "Function")

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestNodeIDHasKindPrefix(t *testing.T) {
	id := NodeID("pkg/foo.go", "Foo", "Function")
	assert.Contains(t, id, "Function:")
}
