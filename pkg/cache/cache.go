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

// Package cache implements the content-addressed per-file fragment
// store: a parsed Fragment is keyed by the HighwayHash digest of the
// file's raw content (pkg/identity.ContentHashHex), so an unchanged file
// never gets re-parsed across runs.
//
// Entries are written atomically (temp file + rename), the same
// discipline the corpus uses for its own checkpoint persistence.
package cache

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kraklabs/revet/pkg/graph"
	"github.com/kraklabs/revet/pkg/parser"
)

// magic identifies a revet fragment cache file; schemaVersion guards
// against reading a fragment written by an incompatible earlier build.
const (
	magic         = "REVF"
	schemaVersion = byte(1)
)

// ErrCorrupt is returned by Get when a cache entry exists but fails its
// magic/version check or fails to decode. Callers should treat this as a
// cache miss and re-parse rather than fail the run — the cache is an
// optimization, not a source of truth.
var ErrCorrupt = errors.New("cache: corrupt fragment entry")

// payload is the gob-encoded body of a cache entry.
type payload struct {
	Snapshot graph.Snapshot
	State    parser.ParseState
	FileID   graph.NodeID
}

// Store is a content-addressed fragment cache rooted at a directory.
type Store struct {
	root string
}

// New creates a Store rooted at root. The directory is created lazily on
// first Put.
func New(root string) *Store {
	return &Store{root: root}
}

// Root returns the cache's root directory.
func (s *Store) Root() string { return s.root }

func (s *Store) pathFor(contentHashHex string) string {
	if len(contentHashHex) < 3 {
		return filepath.Join(s.root, "files", "_", contentHashHex+".frag")
	}
	return filepath.Join(s.root, "files", contentHashHex[:2], contentHashHex[2:]+".frag")
}

// Get returns the cached fragment for contentHashHex, if present. A
// missing entry returns (nil, false, nil); a corrupt entry returns
// (nil, false, ErrCorrupt) so the caller can log it and re-parse.
func (s *Store) Get(contentHashHex string) (*parser.Fragment, bool, error) {
	data, err := os.ReadFile(s.pathFor(contentHashHex))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache: read %s: %w", contentHashHex, err)
	}

	if len(data) < 5 || string(data[:4]) != magic {
		return nil, false, ErrCorrupt
	}
	if data[4] != schemaVersion {
		return nil, false, ErrCorrupt
	}

	var p payload
	dec := gob.NewDecoder(bytes.NewReader(data[5:]))
	if err := dec.Decode(&p); err != nil {
		return nil, false, ErrCorrupt
	}

	g, err := graph.FromSnapshot(p.Snapshot)
	if err != nil {
		return nil, false, ErrCorrupt
	}

	return &parser.Fragment{Graph: g, State: p.State, FileID: p.FileID}, true, nil
}

// Put stores frag under contentHashHex, overwriting any existing entry.
// The write is atomic: a temp file is written alongside the destination
// and renamed into place, so a concurrent Get never observes a partial
// write.
func (s *Store) Put(contentHashHex string, frag *parser.Fragment) error {
	dest := s.pathFor(contentHashHex)
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cache: mkdir %s: %w", dir, err)
	}

	var buf bytes.Buffer
	buf.WriteString(magic)
	buf.WriteByte(schemaVersion)

	enc := gob.NewEncoder(&buf)
	p := payload{Snapshot: frag.Graph.Snapshot(), State: frag.State, FileID: frag.FileID}
	if err := enc.Encode(&p); err != nil {
		return fmt.Errorf("cache: encode %s: %w", contentHashHex, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("cache: create temp: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once renamed away

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("cache: write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cache: close temp: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("cache: rename into place: %w", err)
	}
	return nil
}

// Delete removes a cache entry, if present. Absence is not an error.
func (s *Store) Delete(contentHashHex string) error {
	err := os.Remove(s.pathFor(contentHashHex))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("cache: delete %s: %w", contentHashHex, err)
	}
	return nil
}
