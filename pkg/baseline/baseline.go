// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

// Package baseline persists a snapshot of "already known" findings so
// the suppression pipeline's fourth filter can silence re-reports of
// pre-existing issues across runs. Format: sorted, newline-delimited
// JSON, one four-tuple signature per line, atomic temp+rename write.
package baseline

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	revetErrors "github.com/kraklabs/revet/internal/errors"
	"github.com/kraklabs/revet/pkg/analyze"
)

// lineBucketWidth tolerates small whitespace-driven line shifts
// between runs without merging findings on unrelated nearby lines.
const lineBucketWidth = 3

// Entry is the four-tuple signature stored per baselined finding.
type Entry struct {
	ID         string `json:"id"`
	File       string `json:"file"`
	LineBucket int    `json:"lineBucket"`
	Message    string `json:"message"`
}

func (e Entry) key() string {
	return e.ID + "\x00" + e.File + "\x00" + fmt.Sprint(e.LineBucket) + "\x00" + e.Message
}

func entryFromFinding(f analyze.Finding) Entry {
	return Entry{ID: f.ID, File: f.File, LineBucket: f.Line / lineBucketWidth, Message: f.Message}
}

// Baseline is the loaded, read-only set of baselined signatures
// consulted during a run.
type Baseline struct {
	entries map[string]bool
}

// Matches reports whether f's (id, file, lineBucket, message)
// signature is present in the baseline.
func (b *Baseline) Matches(f analyze.Finding) bool {
	if b == nil {
		return false
	}
	return b.entries[entryFromFinding(f).key()]
}

// Len reports the number of distinct entries in the baseline.
func (b *Baseline) Len() int {
	if b == nil {
		return 0
	}
	return len(b.entries)
}

// Load reads a baseline file. A missing file is not an error — it
// means no baseline exists yet, so Load returns (nil, nil), and
// Baseline.Matches on a nil *Baseline always reports false.
func Load(path string) (*Baseline, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, revetErrors.NewCacheError(
			"cannot open baseline file",
			err.Error(),
			"check the baseline path exists and is readable",
			err,
		)
	}
	defer f.Close()

	entries := make(map[string]bool)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			return nil, revetErrors.NewCacheError(
				"cannot parse baseline entry",
				err.Error(),
				"the baseline file may be corrupt; regenerate it with the baseline command",
				err,
			)
		}
		entries[e.key()] = true
	}
	if err := scanner.Err(); err != nil {
		return nil, revetErrors.NewCacheError("cannot read baseline file", err.Error(), "", err)
	}
	return &Baseline{entries: entries}, nil
}

// Save writes the current report's full, unsuppressed finding set as
// a new baseline, replacing any existing one at path. Entries are
// deduplicated and sorted for a stable diff between baseline commits.
func Save(path string, findings []analyze.Finding) error {
	entries := make([]Entry, 0, len(findings))
	seen := make(map[string]bool)
	for _, f := range findings {
		e := entryFromFinding(f)
		k := e.key()
		if seen[k] {
			continue
		}
		seen[k] = true
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].File != entries[j].File {
			return entries[i].File < entries[j].File
		}
		if entries[i].LineBucket != entries[j].LineBucket {
			return entries[i].LineBucket < entries[j].LineBucket
		}
		if entries[i].ID != entries[j].ID {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].Message < entries[j].Message
	})

	var buf strings.Builder
	for _, e := range entries {
		data, err := json.Marshal(e)
		if err != nil {
			return revetErrors.NewInternalError("cannot marshal baseline entry", err.Error(), "", err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return revetErrors.NewCacheError("cannot create baseline directory", err.Error(), "", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(buf.String()), 0o644); err != nil {
		return revetErrors.NewCacheError("cannot write baseline temp file", err.Error(), "", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return revetErrors.NewCacheError("cannot finalize baseline file", err.Error(), "", err)
	}
	return nil
}
