package mtimedb

import (
	"fmt"
	"math"

	"mtimefs/internal/common"
)

const (
	countSize = 4
	entrySize = 12
)

// nameEntry is one decoded record of a directory table.
type nameEntry struct {
	Name     uint32
	Delta    uint32
	Children uint32
}

// table is a directory table whose entry array is known to lie inside the image.
type table struct {
	s     span
	off   uint32
	count uint32
}

// tableAt decodes the table header at off and checks that all of its entries
// fit in the image.
func (s span) tableAt(off uint32) (table, error) {
	count, err := s.uint32At(off)
	if err != nil {
		return table{}, fmt.Errorf("table header: %w", err)
	}
	end := uint64(off) + countSize + uint64(count)*entrySize
	if end > uint64(len(s)) || end > math.MaxUint32 {
		return table{}, fmt.Errorf("table at %#x with %d entries overruns %d-byte database: %w",
			off, count, len(s), common.ErrCorrupt)
	}
	return table{s: s, off: off, count: count}, nil
}

// entry returns the i-th record. i must be below t.count.
func (t table) entry(i uint32) (nameEntry, error) {
	base := t.off + countSize + i*entrySize
	name, err := t.s.uint32At(base)
	if err != nil {
		return nameEntry{}, err
	}
	delta, err := t.s.uint32At(base + 4)
	if err != nil {
		return nameEntry{}, err
	}
	children, err := t.s.uint32At(base + 8)
	if err != nil {
		return nameEntry{}, err
	}
	return nameEntry{Name: name, Delta: delta, Children: children}, nil
}

// name returns the component name referenced by e.
func (t table) name(e nameEntry) ([]byte, error) {
	name, err := t.s.cstringAt(e.Name)
	if err != nil {
		return nil, fmt.Errorf("entry in table %#x: %w", t.off, err)
	}
	return name, nil
}

// search finds the entry matching the first component of path. It returns the
// entry and the length of the component, or common.ErrNotFound.
func (t table) search(path string) (nameEntry, int, error) {
	left, right := 0, int(t.count)-1
	for left <= right {
		middle := left + (right-left)/2
		e, err := t.entry(uint32(middle))
		if err != nil {
			return nameEntry{}, 0, err
		}
		name, err := t.name(e)
		if err != nil {
			return nameEntry{}, 0, err
		}
		cmp, consumed := compareName(name, path)
		switch {
		case cmp < 0:
			left = middle + 1
		case cmp > 0:
			right = middle - 1
		default:
			return e, consumed, nil
		}
	}
	return nameEntry{}, 0, common.ErrNotFound
}
