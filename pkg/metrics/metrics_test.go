// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, m *Metrics, name string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		var total float64
		for _, metric := range fam.GetMetric() {
			if c := metric.GetCounter(); c != nil {
				total += c.GetValue()
			}
		}
		return total
	}
	t.Fatalf("metric family %q not found", name)
	return 0
}

func TestNewRegistersAllMetrics(t *testing.T) {
	m := New()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestRecordFileParsedIncrementsCounterAndHistogram(t *testing.T) {
	m := New()
	m.RecordFileParsed(5 * time.Millisecond)
	m.RecordFileParsed(10 * time.Millisecond)

	assert.Equal(t, float64(2), counterValue(t, m, "revet_files_parsed_total"))
}

func TestRecordCacheHitAndMiss(t *testing.T) {
	m := New()
	m.RecordCacheHit()
	m.RecordCacheHit()
	m.RecordCacheMiss()

	assert.Equal(t, float64(2), counterValue(t, m, "revet_cache_hits_total"))
	assert.Equal(t, float64(1), counterValue(t, m, "revet_cache_misses_total"))
}

func TestRecordAnalyzerTracksFindingsByPrefixAndSeverity(t *testing.T) {
	m := New()
	m.RecordAnalyzer("secrets", 2*time.Millisecond, map[string]map[string]int{
		"SEC": {"Error": 3, "Warning": 1},
	})

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	var found bool
	for _, fam := range families {
		if fam.GetName() != "revet_findings_total" {
			continue
		}
		for _, metric := range fam.GetMetric() {
			found = true
			assert.NotNil(t, metric.GetCounter())
		}
	}
	assert.True(t, found)
}

func TestDefaultReturnsSameInstance(t *testing.T) {
	a := Default()
	b := Default()
	assert.Same(t, a, b)
}
