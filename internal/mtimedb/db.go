//go:build darwin || linux

package mtimedb

import (
	"fmt"
	"math"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"mtimefs/internal/common"
)

// DB is an open mtime database. The image is mapped read-only and shared, and
// never changes while the DB is open, so a DB is safe for concurrent use
// without locking.
type DB struct {
	path      string
	fd        int
	data      span
	baseEpoch uint32
}

// Open maps the database file at path for its full length and reads its
// header. Errors from the filesystem are returned wrapped; an image too short
// to hold a header yields common.ErrCorrupt.
func Open(path string) (*DB, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("opening mtime database %s: %w", path, err)
	}

	var stat unix.Stat_t
	if err := unix.Fstat(fd, &stat); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("stating mtime database %s: %w", path, err)
	}
	if stat.Size < headerSize {
		unix.Close(fd)
		return nil, fmt.Errorf("mtime database %s is %d bytes, need at least %d: %w",
			path, stat.Size, headerSize, common.ErrCorrupt)
	}
	if stat.Size > math.MaxInt {
		unix.Close(fd)
		return nil, fmt.Errorf("mtime database %s is too large to map (%d bytes)", path, stat.Size)
	}

	data, err := unix.Mmap(fd, 0, int(stat.Size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("memory-mapping mtime database %s: %w", path, err)
	}

	db, err := newDB(path, fd, data)
	if err != nil {
		unix.Munmap(data)
		unix.Close(fd)
		return nil, err
	}
	log.Debugf("[mtimedb] opened %s: %d bytes, base epoch %d", path, len(data), db.baseEpoch)
	return db, nil
}

// FromBytes wraps an in-memory image. The caller must not modify b afterwards.
func FromBytes(b []byte) (*DB, error) {
	return newDB("", -1, b)
}

func newDB(path string, fd int, data []byte) (*DB, error) {
	s := span(data)
	base, err := s.uint32At(baseEpochOffset)
	if err != nil {
		return nil, fmt.Errorf("reading base epoch: %w", err)
	}
	return &DB{path: path, fd: fd, data: s, baseEpoch: base}, nil
}

// Path returns the file the database was opened from, or "" for in-memory images.
func (db *DB) Path() string { return db.path }

// Size returns the length of the image in bytes.
func (db *DB) Size() int { return len(db.data) }

// BaseEpoch returns the header timestamp every entry's delta is added to.
func (db *DB) BaseEpoch() uint32 { return db.baseEpoch }

// Resolve returns the override timestamp (Unix seconds) for path. A leading
// separator is ignored and "/" names the root entry ".". A path without an
// entry yields common.ErrNotFound; a malformed image yields common.ErrCorrupt.
func (db *DB) Resolve(path string) (ts int64, err error) {
	defer recoverFault(debug.SetPanicOnFault(true), &err)
	return db.data.resolve(common.LocalPath(path), db.baseEpoch)
}

// Close unmaps the image and closes the file descriptor. Lookups after Close
// fail with common.ErrCorrupt.
func (db *DB) Close() error {
	var firstErr error
	if db.fd >= 0 {
		if err := unix.Munmap(db.data); err != nil {
			firstErr = fmt.Errorf("unmapping mtime database: %w", err)
		}
		if err := unix.Close(db.fd); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing mtime database fd: %w", err)
		}
		db.fd = -1
	}
	db.data = nil
	return firstErr
}

// recoverFault turns a page fault on the mapping (for example, the file was
// truncated underneath us) into common.ErrCorrupt for the current lookup.
func recoverFault(old bool, err *error) {
	debug.SetPanicOnFault(old)
	if r := recover(); r != nil {
		*err = fmt.Errorf("page fault reading mtime database: %v: %w", r, common.ErrCorrupt)
	}
}
