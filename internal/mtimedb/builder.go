package mtimedb

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"mtimefs/internal/common"
)

// Builder assembles a well-formed database image in memory. Indexing a real
// tree is done offline; the builder exists for fixtures and tests.
type Builder struct {
	baseEpoch uint32
	root      *buildNode
}

type buildNode struct {
	delta    uint32
	children map[string]*buildNode
}

// NewBuilder returns an empty builder whose image will carry baseEpoch.
func NewBuilder(baseEpoch uint32) *Builder {
	return &Builder{baseEpoch: baseEpoch, root: &buildNode{}}
}

// Add records delta for path. Components missing along the way are created
// with a zero delta. The path takes the same form Resolve accepts: a leading
// separator is ignored and "/" is the root entry ".".
func (b *Builder) Add(path string, delta uint32) error {
	components := strings.Split(common.LocalPath(path), "/")
	for _, c := range components {
		if c == "" || strings.IndexByte(c, 0) >= 0 {
			return fmt.Errorf("path %q: %w", path, common.ErrInvalidPath)
		}
	}

	node := b.root
	for _, c := range components {
		if node.children == nil {
			node.children = map[string]*buildNode{}
		}
		child, ok := node.children[c]
		if !ok {
			child = &buildNode{}
			node.children[c] = child
		}
		node = child
	}
	node.delta = delta
	return nil
}

// Bytes lays out the image: header, then every directory table in
// breadth-first order starting with the root at offset 16, then the names.
func (b *Builder) Bytes() ([]byte, error) {
	type laidTable struct {
		off   uint64
		names []string
		nodes []*buildNode
	}

	var tables []*laidTable
	offsets := map[*buildNode]uint64{}
	off := uint64(rootTableOffset)

	queue := []*buildNode{b.root}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		names := make([]string, 0, len(node.children))
		for name := range node.children {
			names = append(names, name)
		}
		sort.Strings(names)

		lt := &laidTable{off: off, names: names}
		for _, name := range names {
			child := node.children[name]
			lt.nodes = append(lt.nodes, child)
			if len(child.children) > 0 {
				queue = append(queue, child)
			}
		}
		offsets[node] = off
		tables = append(tables, lt)
		off += countSize + uint64(len(names))*entrySize
	}

	nameOffsets := map[string]uint64{}
	var pool []byte
	for _, lt := range tables {
		for _, name := range lt.names {
			if _, ok := nameOffsets[name]; ok {
				continue
			}
			nameOffsets[name] = off + uint64(len(pool))
			pool = append(pool, name...)
			pool = append(pool, 0)
		}
	}

	total := off + uint64(len(pool))
	if total > math.MaxUint32 {
		return nil, fmt.Errorf("image of %d bytes exceeds 32-bit offsets", total)
	}

	img := make([]byte, total)
	binary.LittleEndian.PutUint32(img[baseEpochOffset:], b.baseEpoch)
	for _, lt := range tables {
		binary.LittleEndian.PutUint32(img[lt.off:], uint32(len(lt.names)))
		for i, name := range lt.names {
			rec := img[lt.off+countSize+uint64(i)*entrySize:]
			child := lt.nodes[i]
			var children uint64
			if len(child.children) > 0 {
				children = offsets[child]
			}
			binary.LittleEndian.PutUint32(rec[0:], uint32(nameOffsets[name]))
			binary.LittleEndian.PutUint32(rec[4:], child.delta)
			binary.LittleEndian.PutUint32(rec[8:], uint32(children))
		}
	}
	copy(img[off:], pool)
	return img, nil
}

// WriteFile writes the image to path through a temporary file and a rename,
// so readers never map a partially written database.
func (b *Builder) WriteFile(path string) error {
	img, err := b.Bytes()
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".mtimedb-*")
	if err != nil {
		return fmt.Errorf("creating temporary database: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(img); err != nil {
		tmp.Close()
		return fmt.Errorf("writing database: %w", err)
	}
	if err := tmp.Chmod(0o444); err != nil {
		tmp.Close()
		return fmt.Errorf("setting database mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}
