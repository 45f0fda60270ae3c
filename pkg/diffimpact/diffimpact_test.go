// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package diffimpact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/revet/pkg/graph"
)

const sampleDiff = `diff --git a/pkg/a/a.go b/pkg/a/a.go
index 1111111..2222222 100644
--- a/pkg/a/a.go
+++ b/pkg/a/a.go
@@ -10,0 +11,3 @@ func Foo() {
+	line1
+	line2
+	line3
@@ -20 +23 @@ func Bar() {
-old
+new
diff --git a/pkg/b/b.go b/pkg/b/b.go
index 3333333..4444444 100644
--- a/pkg/b/b.go
+++ b/pkg/b/b.go
@@ -5,2 +5,0 @@ func Baz() {
-removed1
-removed2
`

func TestParseUnifiedDiff(t *testing.T) {
	diff := ParseUnifiedDiff([]byte(sampleDiff))
	require.Len(t, diff.Files, 2)

	a := diff.Files[0]
	assert.Equal(t, "pkg/a/a.go", a.Path)
	require.Len(t, a.Ranges, 2)
	assert.Equal(t, LineRange{Start: 11, End: 13}, a.Ranges[0])
	assert.Equal(t, LineRange{Start: 23, End: 23}, a.Ranges[1])

	b := diff.Files[1]
	assert.Equal(t, "pkg/b/b.go", b.Path)
	require.Len(t, b.Ranges, 1)
	assert.Equal(t, LineRange{Start: 5, End: 5}, b.Ranges[0])
}

func TestChangedSymbolsOverlap(t *testing.T) {
	g := graph.New()
	foo := graph.Node{ID: "fn:foo", Kind: graph.KindFunction, Name: "Foo", Location: graph.Location{Path: "pkg/a/a.go", StartLine: 9, EndLine: 15}}
	bar := graph.Node{ID: "fn:bar", Kind: graph.KindFunction, Name: "Bar", Location: graph.Location{Path: "pkg/a/a.go", StartLine: 18, EndLine: 25}}
	untouched := graph.Node{ID: "fn:untouched", Kind: graph.KindFunction, Name: "Untouched", Location: graph.Location{Path: "pkg/a/a.go", StartLine: 100, EndLine: 110}}
	for _, n := range []graph.Node{foo, bar, untouched} {
		_, _ = g.InsertNode(n)
	}

	diff := ParseUnifiedDiff([]byte(sampleDiff))
	changed := ChangedSymbols(g, diff)

	var names []string
	for _, id := range changed {
		names = append(names, string(id))
	}
	assert.Contains(t, names, "fn:foo")
	assert.Contains(t, names, "fn:bar")
	assert.NotContains(t, names, "fn:untouched")
}

func TestImpactSetRespectsDepthBound(t *testing.T) {
	g := graph.New()
	var ids []graph.NodeID
	for i := 0; i < 8; i++ {
		id := graph.NodeID("fn:" + string(rune('a'+i)))
		_, _ = g.InsertNode(graph.Node{ID: id, Kind: graph.KindFunction, Name: string(rune('a' + i)), Location: graph.Location{Path: "a.go", StartLine: i + 1}})
		ids = append(ids, id)
	}
	// Build a chain: ids[i] calls ids[i+1], so walking backward from
	// ids[len-1] with depth d reaches d hops up the chain.
	for i := 0; i < len(ids)-1; i++ {
		require.NoError(t, g.InsertEdge(ids[i], ids[i+1], graph.EdgeCalls))
	}

	seed := ids[len(ids)-1]
	reached := ImpactSet(g, []graph.NodeID{seed}, 2)
	assert.Len(t, reached, 3) // seed + 2 hops back

	reachedAll := ImpactSet(g, []graph.NodeID{seed}, 20)
	assert.Len(t, reachedAll, len(ids))
}

func TestRunRejectsInvalidRef(t *testing.T) {
	r := NewRunner(t.TempDir())
	_, err := r.Run(nil, "main; rm -rf /", "")
	require.Error(t, err)
	var invalidRef ErrInvalidRef
	assert.ErrorAs(t, err, &invalidRef)
}
