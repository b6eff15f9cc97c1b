package mtimedb

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// rawImage builds deliberately malformed images word by word.
type rawImage []byte

func newRawImage(size int) rawImage {
	return make(rawImage, size)
}

func (r rawImage) put32(off int, v uint32) rawImage {
	binary.LittleEndian.PutUint32(r[off:], v)
	return r
}

func (r rawImage) putString(off int, s string) rawImage {
	copy(r[off:], s)
	r[off+len(s)] = 0
	return r
}

// buildDB assembles a well-formed database from path/delta pairs.
func buildDB(t *testing.T, base uint32, entries map[string]uint32) *DB {
	t.Helper()
	b := NewBuilder(base)
	for path, delta := range entries {
		require.NoError(t, b.Add(path, delta))
	}
	img, err := b.Bytes()
	require.NoError(t, err)
	db, err := FromBytes(img)
	require.NoError(t, err)
	return db
}

// twoLevelDB is the canonical fixture: "a" (delta 5) with child "b" (delta 9).
func twoLevelDB(t *testing.T) *DB {
	t.Helper()
	return buildDB(t, 1000, map[string]uint32{"a": 5, "a/b": 9})
}
