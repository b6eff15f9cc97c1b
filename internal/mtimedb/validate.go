package mtimedb

import (
	"bytes"
	"fmt"
	"math"
	"runtime/debug"

	"mtimefs/internal/common"
)

// Stats summarises a database walk.
type Stats struct {
	Tables   int
	Entries  int
	Leaves   int
	MaxDepth int
	MinTime  int64
	MaxTime  int64
}

// Validate walks every table reachable from the root and checks the layout
// lookups rely on: all offsets in bounds, names terminated and free of
// separators, entries strictly ascending under the lookup ordering, and no
// table reachable twice. It returns the first violation wrapped in
// common.ErrCorrupt.
func (db *DB) Validate() (stats Stats, err error) {
	defer recoverFault(debug.SetPanicOnFault(true), &err)
	return db.data.validate(db.baseEpoch)
}

type pendingTable struct {
	off   uint32
	depth int
	path  string
}

func (s span) validate(baseEpoch uint32) (Stats, error) {
	stats := Stats{MinTime: math.MaxInt64, MaxTime: math.MinInt64}
	seen := map[uint32]bool{}
	stack := []pendingTable{{off: rootTableOffset, depth: 1}}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if seen[cur.off] {
			return stats, fmt.Errorf("table %#x under %q is referenced more than once: %w",
				cur.off, cur.path, common.ErrCorrupt)
		}
		seen[cur.off] = true

		t, err := s.tableAt(cur.off)
		if err != nil {
			return stats, fmt.Errorf("under %q: %w", cur.path, err)
		}
		stats.Tables++
		stats.MaxDepth = max(stats.MaxDepth, cur.depth)

		var prev []byte
		for i := uint32(0); i < t.count; i++ {
			e, err := t.entry(i)
			if err != nil {
				return stats, err
			}
			name, err := t.name(e)
			if err != nil {
				return stats, err
			}
			if bytes.IndexByte(name, '/') >= 0 {
				return stats, fmt.Errorf("name %q in table %#x contains a separator: %w",
					name, cur.off, common.ErrCorrupt)
			}
			if i > 0 {
				if cmp, _ := compareName(prev, string(name)); cmp >= 0 {
					return stats, fmt.Errorf("table %#x is not sorted: %q then %q: %w",
						cur.off, prev, name, common.ErrCorrupt)
				}
			}
			prev = name

			stats.Entries++
			ts := int64(baseEpoch) + int64(e.Delta)
			stats.MinTime = min(stats.MinTime, ts)
			stats.MaxTime = max(stats.MaxTime, ts)

			full := string(name)
			if cur.path != "" {
				full = cur.path + "/" + full
			}
			if e.Children == 0 {
				stats.Leaves++
				continue
			}
			stack = append(stack, pendingTable{off: e.Children, depth: cur.depth + 1, path: full})
		}
	}

	if stats.Entries == 0 {
		stats.MinTime, stats.MaxTime = 0, 0
	}
	return stats, nil
}
