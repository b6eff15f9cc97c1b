package mtimedb

import (
	"strings"

	"mtimefs/internal/common"
)

const (
	baseEpochOffset = 8
	rootTableOffset = 16

	// headerSize is the smallest image that still carries a base epoch.
	headerSize = baseEpochOffset + 4
)

// resolve descends from the root table one path component at a time and
// returns the absolute timestamp of the entry that ends the path.
//
// path is in index form (no leading separator). Every iteration consumes at
// least the separator after the matched component, so the loop is bounded by
// the length of path.
func (s span) resolve(path string, baseEpoch uint32) (int64, error) {
	if i := strings.IndexByte(path, 0); i >= 0 {
		path = path[:i]
	}

	off := uint32(rootTableOffset)
	for {
		t, err := s.tableAt(off)
		if err != nil {
			return 0, err
		}
		e, consumed, err := t.search(path)
		if err != nil {
			return 0, err
		}
		path = path[consumed:]
		if path == "" {
			return int64(baseEpoch) + int64(e.Delta), nil
		}
		if e.Children == 0 {
			return 0, common.ErrNotFound
		}
		// Skip the separator that ended the component.
		path = path[1:]
		off = e.Children
	}
}
