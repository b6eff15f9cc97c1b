package mtimedb

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mtimefs/internal/common"
)

func writeFixture(t *testing.T, entries map[string]uint32) string {
	t.Helper()
	b := NewBuilder(1000)
	for path, delta := range entries {
		require.NoError(t, b.Add(path, delta))
	}
	path := filepath.Join(t.TempDir(), "mtime.db")
	require.NoError(t, b.WriteFile(path))
	return path
}

func TestOpen(t *testing.T) {
	t.Parallel()

	path := writeFixture(t, map[string]uint32{"a": 5, "a/b": 9})
	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, path, db.Path())
	assert.Equal(t, uint32(1000), db.BaseEpoch())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int(info.Size()), db.Size())

	ts, err := db.Resolve("/a/b")
	require.NoError(t, err)
	assert.Equal(t, int64(1009), ts)

	ts, err = db.Resolve("a")
	require.NoError(t, err)
	assert.Equal(t, int64(1005), ts)
}

func TestOpenMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Open(filepath.Join(t.TempDir(), "nope.db"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist), "got %v", err)
	assert.False(t, errors.Is(err, common.ErrCorrupt))
}

func TestOpenShortFile(t *testing.T) {
	t.Parallel()

	for _, size := range []int{0, 4, headerSize - 1} {
		path := filepath.Join(t.TempDir(), "short.db")
		require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))

		_, err := Open(path)
		assert.ErrorIs(t, err, common.ErrCorrupt, "size %d", size)
	}
}

func TestOpenHeaderOnly(t *testing.T) {
	t.Parallel()

	// Base epoch present but no root table: opening succeeds, lookups fail.
	path := filepath.Join(t.TempDir(), "header.db")
	require.NoError(t, os.WriteFile(path, newRawImage(headerSize).put32(8, 77), 0o644))

	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, uint32(77), db.BaseEpoch())
	_, err = db.Resolve("a")
	assert.ErrorIs(t, err, common.ErrCorrupt)
}

func TestCloseIsSafe(t *testing.T) {
	t.Parallel()

	db, err := Open(writeFixture(t, map[string]uint32{"a": 1}))
	require.NoError(t, err)
	require.NoError(t, db.Close())
	require.NoError(t, db.Close())

	_, err = db.Resolve("a")
	assert.ErrorIs(t, err, common.ErrCorrupt)
}

func TestOpenSharedAcrossGoroutines(t *testing.T) {
	t.Parallel()

	db, err := Open(writeFixture(t, map[string]uint32{"a": 5, "a/b": 9, "c": 1}))
	require.NoError(t, err)
	defer db.Close()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				ts, err := db.Resolve("a/b")
				assert.NoError(t, err)
				assert.Equal(t, int64(1009), ts)

				_, err = db.Resolve("a/x")
				assert.ErrorIs(t, err, common.ErrNotFound)
			}
		}()
	}
	wg.Wait()
}

func TestResolveCorruptImages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		image rawImage
	}{
		{
			"root_table_missing",
			newRawImage(16),
		},
		{
			"count_overruns_image",
			newRawImage(24).put32(16, 3),
		},
		{
			"name_offset_out_of_bounds",
			newRawImage(32).put32(16, 1).put32(20, 0x1000),
		},
		{
			"name_unterminated",
			func() rawImage {
				r := newRawImage(34).put32(16, 1).put32(20, 32)
				r[32], r[33] = 'a', 'b'
				return r
			}(),
		},
		{
			"children_out_of_bounds",
			newRawImage(34).put32(16, 1).put32(20, 32).put32(28, 0xfff0).putString(32, "a"),
		},
		{
			"children_overrun",
			newRawImage(40).put32(16, 1).put32(20, 32).put32(28, 36).putString(32, "a").put32(36, 9),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			db, err := FromBytes(tt.image)
			require.NoError(t, err)

			_, err = db.Resolve("a/b")
			assert.ErrorIs(t, err, common.ErrCorrupt)

			_, err = db.Validate()
			assert.ErrorIs(t, err, common.ErrCorrupt)
		})
	}
}

func TestResolveSelfReferencingTable(t *testing.T) {
	t.Parallel()

	// "a" points back at the root table. Lookups still terminate because every
	// step consumes path bytes; the validator reports the cycle.
	img := newRawImage(34).put32(16, 1).put32(20, 32).put32(24, 4).put32(28, rootTableOffset).putString(32, "a")
	db, err := FromBytes(img)
	require.NoError(t, err)

	ts, err := db.Resolve("a/a/a/a")
	require.NoError(t, err)
	assert.Equal(t, int64(4), ts)

	_, err = db.Resolve("a/a/b")
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = db.Validate()
	assert.ErrorIs(t, err, common.ErrCorrupt)
}

func TestFromBytesTooShort(t *testing.T) {
	t.Parallel()

	_, err := FromBytes(make([]byte, 8))
	assert.ErrorIs(t, err, common.ErrCorrupt)
}
