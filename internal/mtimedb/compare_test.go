package mtimedb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		stored       string
		query        string
		wantSign     int
		wantConsumed int
	}{
		{"exact", "foo", "foo", 0, 3},
		{"separator_terminates", "foo", "foo/bar", 0, 3},
		{"longer_query_component", "foo", "foobar", -1, 3},
		{"shorter_query_component", "foobar", "foo", 1, 3},
		{"shorter_query_before_separator", "foobar", "foo/x", 1, 3},
		{"less", "abc", "abd", -1, 2},
		{"greater", "abd", "abc/x", 1, 2},
		{"empty_name_empty_query", "", "", 0, 0},
		{"empty_name_separator", "", "/x", 0, 0},
		{"empty_name_vs_name", "", "a", -1, 0},
		{"dot_root", ".", ".", 0, 1},
		// '/' sorts as the end of the component, below every name byte.
		{"separator_below_dash", "a-", "a/", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cmp, consumed := compareName([]byte(tt.stored), tt.query)
			assert.Equal(t, tt.wantSign, sign(cmp), "compareName(%q, %q) = %d", tt.stored, tt.query, cmp)
			if tt.wantSign == 0 {
				assert.Equal(t, tt.wantConsumed, consumed)
			}
		})
	}
}

func TestCompareNameMatchesByteOrder(t *testing.T) {
	t.Parallel()

	words := []string{"", ".", "a", "a.b", "aa", "ab", "b", "B", "z", "zz", "~"}
	for _, x := range words {
		for _, y := range words {
			want := 0
			switch {
			case x < y:
				want = -1
			case x > y:
				want = 1
			}
			cmp, _ := compareName([]byte(x), y)
			assert.Equal(t, want, sign(cmp), "compareName(%q, %q)", x, y)

			// Appending a further component never changes the ordering.
			cmp, _ = compareName([]byte(x), y+"/tail")
			assert.Equal(t, want, sign(cmp), "compareName(%q, %q)", x, y+"/tail")
		}
	}
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
