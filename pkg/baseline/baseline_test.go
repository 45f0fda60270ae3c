// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package baseline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/revet/pkg/analyze"
)

func TestLoadMissingFileReturnsNilBaseline(t *testing.T) {
	b, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Nil(t, b)
	assert.False(t, b.Matches(analyze.Finding{ID: "SEC-1"}))
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baseline.json")
	findings := []analyze.Finding{
		{ID: "SEC-1", File: "a.go", Line: 10, Message: "hardcoded key"},
		{ID: "SQL-2", File: "b.py", Line: 42, Message: "string-built query"},
	}
	require.NoError(t, Save(path, findings))

	b, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, 2, b.Len())

	assert.True(t, b.Matches(analyze.Finding{ID: "SEC-1", File: "a.go", Line: 10, Message: "hardcoded key"}))
	assert.True(t, b.Matches(analyze.Finding{ID: "SQL-2", File: "b.py", Line: 42, Message: "string-built query"}))
	assert.False(t, b.Matches(analyze.Finding{ID: "ML-1", File: "c.py", Line: 1, Message: "other"}))
}

func TestMatchesTolerateSmallLineShift(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baseline.json")
	require.NoError(t, Save(path, []analyze.Finding{
		{ID: "SEC-1", File: "a.go", Line: 10, Message: "hardcoded key"},
	}))
	b, err := Load(path)
	require.NoError(t, err)

	// Line 10 buckets to 3 (10/3); line 11 also buckets to 3.
	assert.True(t, b.Matches(analyze.Finding{ID: "SEC-1", File: "a.go", Line: 11, Message: "hardcoded key"}))
	// Line 13 buckets to 4, a different bucket.
	assert.False(t, b.Matches(analyze.Finding{ID: "SEC-1", File: "a.go", Line: 13, Message: "hardcoded key"}))
}

func TestSaveDeduplicatesAndSorts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baseline.json")
	findings := []analyze.Finding{
		{ID: "SEC-1", File: "b.go", Line: 1, Message: "m"},
		{ID: "SEC-1", File: "b.go", Line: 1, Message: "m"},
		{ID: "SEC-1", File: "a.go", Line: 1, Message: "m"},
	}
	require.NoError(t, Save(path, findings))

	b, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, b.Len())
}

func TestLoadCorruptEntryErrors(t *testing.T) {
	corruptPath := filepath.Join(t.TempDir(), "corrupt.json")
	require.NoError(t, os.WriteFile(corruptPath, []byte("{not valid json\n"), 0o644))

	_, err := Load(corruptPath)
	require.Error(t, err)
}
