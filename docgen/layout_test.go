package docgen

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestResolveGrid_SlotCountAndTiling(t *testing.T) {
	for n := 1; n <= MaxOprPhotos; n++ {
		layout := ResolveGrid(n)
		if len(layout.Slots) != n {
			t.Fatalf("n=%d: expected %d slots, got %d", n, n, len(layout.Slots))
		}
		if !layout.Covers() {
			t.Fatalf("n=%d: layout %+v does not tile the grid", n, layout)
		}
		if layout.Placeholder {
			t.Fatalf("n=%d: unexpected placeholder", n)
		}
		if diff := cmp.Diff(layout, ResolveGrid(n)); diff != "" {
			t.Fatalf("n=%d: not deterministic:\n%s", n, diff)
		}
		for i, slot := range layout.Slots {
			if slot.Index != i+1 {
				t.Fatalf("n=%d: slot %d has index %d", n, i, slot.Index)
			}
		}
	}
}

func TestResolveGrid_Placeholder(t *testing.T) {
	layout := ResolveGrid(0)
	if !layout.Placeholder || len(layout.Slots) != 0 {
		t.Fatalf("expected placeholder layout, got %+v", layout)
	}
	if layout.CSS() != "" {
		t.Fatalf("placeholder must not emit grid css")
	}
	if !ResolveGrid(-3).Placeholder {
		t.Fatalf("negative counts resolve to placeholder")
	}
}

func TestResolveGrid_ClampsAboveEight(t *testing.T) {
	if diff := cmp.Diff(ResolveGrid(8), ResolveGrid(20)); diff != "" {
		t.Fatalf("expected clamp to 8:\n%s", diff)
	}
}

func TestResolveGrid_Arrangements(t *testing.T) {
	cases := []struct {
		n       int
		columns int
		rows    int
		spans   []int
	}{
		{1, 1, 1, []int{1}},
		{2, 2, 1, []int{1, 1}},
		{3, 2, 2, []int{2, 1, 1}},
		{4, 2, 2, []int{1, 1, 1, 1}},
		{5, 6, 2, []int{2, 2, 2, 3, 3}},
		{6, 3, 2, []int{1, 1, 1, 1, 1, 1}},
		{7, 12, 2, []int{3, 3, 3, 3, 4, 4, 4}},
		{8, 4, 2, []int{1, 1, 1, 1, 1, 1, 1, 1}},
	}
	for _, tc := range cases {
		layout := ResolveGrid(tc.n)
		if layout.Columns != tc.columns || layout.Rows != tc.rows {
			t.Fatalf("n=%d: expected %dx%d, got %dx%d", tc.n, tc.columns, tc.rows, layout.Columns, layout.Rows)
		}
		var spans []int
		for _, slot := range layout.Slots {
			spans = append(spans, slot.Span())
		}
		if diff := cmp.Diff(tc.spans, spans); diff != "" {
			t.Fatalf("n=%d: spans mismatch:\n%s", tc.n, diff)
		}
	}
}

func TestGridLayout_CSS(t *testing.T) {
	css := ResolveGrid(5).CSS()
	for _, want := range []string{
		".gallery-grid.layout-5 { grid-template-columns: repeat(6, 1fr); grid-template-rows: repeat(2, 1fr); }",
		".gallery-grid.layout-5 .slot-1 { grid-column: 1 / 3; grid-row: 1; }",
		".gallery-grid.layout-5 .slot-5 { grid-column: 4 / 7; grid-row: 2; }",
	} {
		if !strings.Contains(css, want) {
			t.Fatalf("expected css to contain %q, got:\n%s", want, css)
		}
	}
}

func TestGridLayout_SlotAspect(t *testing.T) {
	layout := ResolveGrid(3)
	wide := layout.SlotAspect(layout.Slots[0], 100, 50, 0)
	narrow := layout.SlotAspect(layout.Slots[1], 100, 50, 0)
	if wide != 4 || narrow != 2 {
		t.Fatalf("unexpected aspects wide=%v narrow=%v", wide, narrow)
	}
}
