// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

// Package runlog emits and reads the auditable per-run record: one
// JSON file per analysis run, under `<cache-root>/runs/<epochMs>.json`,
// encoding every finding (including suppressed ones) plus a summary
// whose counts always add up to the total. JSON encoding grounded on
// internal/output.JSONTo's 2-space-indent encoder.
package runlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	revetErrors "github.com/kraklabs/revet/internal/errors"
	"github.com/kraklabs/revet/pkg/suppress"
)

// Version is the RunLog schema version, bumped whenever the on-disk
// shape changes incompatibly.
const Version = 1

// RunLog is the complete auditable record of one analysis run.
type RunLog struct {
	ID            string            `json:"id"`
	Version       int               `json:"version"`
	Timestamp     time.Time         `json:"timestamp"`
	DurationSecs  float64           `json:"durationSecs"`
	FilesAnalyzed int               `json:"filesAnalyzed"`
	NodesParsed   int               `json:"nodesParsed"`
	Summary       suppress.Summary  `json:"summary"`
	Findings      []suppress.Outcome `json:"findings"`
	Failed        bool              `json:"failed,omitempty"`
	FailureReason string            `json:"failureReason,omitempty"`
}

// Build assembles a RunLog from a completed (or aborted) run's
// observed data. id should come from NewID so repeated calls within
// the same process never collide.
func Build(id string, start time.Time, filesAnalyzed, nodesParsed int, outcomes []suppress.Outcome) *RunLog {
	return &RunLog{
		ID:            id,
		Version:       Version,
		Timestamp:     start,
		DurationSecs:  time.Since(start).Seconds(),
		FilesAnalyzed: filesAnalyzed,
		NodesParsed:   nodesParsed,
		Summary:       suppress.Summarize(outcomes),
		Findings:      outcomes,
	}
}

// Failed marks an assembled RunLog as having aborted due to an
// internal invariant violation (internal/errors.InvariantError):
// the run halts and emits a RunLog with Failed set, rather than a
// crash, so callers always get a record of what happened.
func (l *RunLog) MarkFailed(reason string) {
	l.Failed = true
	l.FailureReason = reason
}

// NewID returns a millisecond-epoch run identifier, disambiguated
// against previously-issued IDs in counter so two runs started within
// the same millisecond still get distinct filenames.
func NewID(now time.Time, taken map[string]bool) string {
	base := strconv.FormatInt(now.UnixMilli(), 10)
	id := base
	for n := 1; taken[id]; n++ {
		id = fmt.Sprintf("%s-%d", base, n)
	}
	return id
}

// Writer persists RunLogs under a cache root's "runs/" subdirectory.
type Writer struct {
	runsDir string
}

// NewWriter returns a Writer rooted at <cacheRoot>/runs.
func NewWriter(cacheRoot string) *Writer {
	return &Writer{runsDir: filepath.Join(cacheRoot, "runs")}
}

// Write persists log to <runsDir>/<id>.json via a temp file then an
// atomic rename, so a crash mid-write never leaves a partial file
// where a reader expects a complete run log.
func (w *Writer) Write(log *RunLog) error {
	if err := os.MkdirAll(w.runsDir, 0o755); err != nil {
		return revetErrors.NewCacheError("cannot create run log directory", err.Error(), "", err)
	}

	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return revetErrors.NewInternalError("cannot marshal run log", err.Error(), "", err)
	}

	path := w.path(log.ID)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return revetErrors.NewCacheError("cannot write run log temp file", err.Error(), "", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return revetErrors.NewCacheError("cannot finalize run log file", err.Error(), "", err)
	}
	return nil
}

func (w *Writer) path(id string) string {
	return filepath.Join(w.runsDir, id+".json")
}

// Enumerate lists run IDs present under the runs directory, newest
// first (lexicographic descending, which matches chronological order
// for millisecond-epoch IDs).
func (w *Writer) Enumerate() ([]string, error) {
	entries, err := os.ReadDir(w.runsDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, revetErrors.NewCacheError("cannot list run log directory", err.Error(), "", err)
	}

	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	return ids, nil
}

// ByID loads one previously-written RunLog by its id.
func (w *Writer) ByID(id string) (*RunLog, error) {
	data, err := os.ReadFile(w.path(id))
	if os.IsNotExist(err) {
		return nil, revetErrors.NewKindError(
			revetErrors.KindCache,
			fmt.Sprintf("no run log found for id %q", id),
			"",
			"run `revet runs` to list available run IDs",
			nil,
		)
	}
	if err != nil {
		return nil, revetErrors.NewCacheError("cannot read run log", err.Error(), "", err)
	}

	var log RunLog
	if err := json.Unmarshal(data, &log); err != nil {
		return nil, revetErrors.NewCacheError("cannot parse run log", err.Error(), "", err)
	}
	return &log, nil
}
