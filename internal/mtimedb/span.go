package mtimedb

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"mtimefs/internal/common"
)

// span is the raw database image. All direct access to the bytes goes through
// its methods so the bounds checks live in one place.
type span []byte

// uint32At reads the little-endian word stored at off.
func (s span) uint32At(off uint32) (uint32, error) {
	end := uint64(off) + 4
	if end > uint64(len(s)) {
		return 0, fmt.Errorf("u32 at offset %#x beyond %d-byte database: %w", off, len(s), common.ErrCorrupt)
	}
	return binary.LittleEndian.Uint32(s[off:end]), nil
}

// cstringAt returns the NUL-terminated string starting at off, without the
// terminator. The result aliases the image.
func (s span) cstringAt(off uint32) ([]byte, error) {
	if uint64(off) >= uint64(len(s)) {
		return nil, fmt.Errorf("name at offset %#x beyond %d-byte database: %w", off, len(s), common.ErrCorrupt)
	}
	rest := s[off:]
	n := bytes.IndexByte(rest, 0)
	if n < 0 {
		return nil, fmt.Errorf("unterminated name at offset %#x: %w", off, common.ErrCorrupt)
	}
	return rest[:n:n], nil
}
