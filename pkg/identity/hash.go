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

// Package identity provides stable content hashing and node identifier
// derivation for the revet code-intelligence graph.
//
// Two properties matter more than anything else here: content hashes must
// key the per-file fragment cache the same way release after release, and
// node identifiers must be identical across two runs over identical source,
// on any platform.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"

	"github.com/minio/highwayhash"
)

// hashKey is a fixed 32-byte key for HighwayHash. It exists for algorithm
// setup, not secrecy: ContentHash is a cache key, not a MAC.
var hashKey = []byte("revet-content-hash-key-32-bytes!")

// ContentHash returns a 128-bit content digest of data, used to key the
// per-file fragment cache. Stable across process restarts and platforms.
func ContentHash(data []byte) [16]byte {
	return highwayhash.Sum128(data, hashKey)
}

// ContentHashHex returns ContentHash hex-encoded, as used in cache paths
// and fragment filenames.
func ContentHashHex(data []byte) string {
	h := ContentHash(data)
	return hex.EncodeToString(h[:])
}

// NodeID derives a deterministic node identifier from a file's
// repo-relative path, a language-specific qualified symbol path (e.g.
// "Server.Handle" or "pkg.Foo"), and a node kind tag.
//
// The identifier is stable across runs over identical source and across
// platforms: the path is normalized to forward slashes before hashing, so
// the same relative path produces the same ID on Windows and Unix.
func NodeID(relPath, qualifiedPath string, kind string) string {
	idStr := normalizePath(relPath) + "::" + qualifiedPath + "::" + kind
	sum := sha256.Sum256([]byte(idStr))
	return kind + ":" + hex.EncodeToString(sum[:16])
}

// normalizePath normalizes a file path for consistent ID generation:
// removes a leading "./", cleans redundant separators, converts to
// forward slashes, and strips any leading "/" so absolute and relative
// paths of the same file hash identically.
func normalizePath(path string) string {
	if len(path) >= 2 && path[0:2] == "./" {
		path = path[2:]
	}
	path = filepath.Clean(path)
	path = filepath.ToSlash(path)
	if len(path) > 0 && path[0] == '/' {
		path = path[1:]
	}
	return path
}
