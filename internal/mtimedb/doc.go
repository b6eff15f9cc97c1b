// Copyright 2024 LatentFS Authors
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

// Package mtimedb reads the mtime database: an immutable, memory-mapped index
// from relative paths to override modification times.
//
// # File format
//
// All integers are 32-bit little-endian and all offsets are byte offsets from the
// start of the file.
//
//	offset  0  reserved (8 bytes)
//	offset  8  base epoch, Unix seconds
//	offset 12  reserved (4 bytes)
//	offset 16  root directory table
//
// A directory table is a count followed by count name entries of 12 bytes each:
//
//	name      offset of a NUL-terminated path component
//	delta     seconds added to the base epoch when the entry ends a lookup
//	children  offset of the entry's own directory table, 0 for a leaf
//
// Entries in a table are sorted by name in ascending byte order. Lookups work
// directly on the mapped bytes: each path component is found with a binary
// search of the current table, then the search descends into the entry's
// children. Every read is bounds-checked, so a malformed file fails the lookup
// with [common.ErrCorrupt] instead of crashing the process.
package mtimedb
