package docgen

import "fmt"

// MaxOprPhotos is the number of photos the gallery can hold.
const MaxOprPhotos = 8

// FitMode controls how a photo fills its slot.
type FitMode string

const (
	// FitCover crops to fill the slot, centered.
	FitCover FitMode = "cover"
	// FitContain letterboxes without cropping. Used when cropping is unavailable.
	FitContain FitMode = "fit"
)

// GridSlot is one photo cell. Columns are 1-based grid lines, end exclusive.
type GridSlot struct {
	Index       int
	ColumnStart int
	ColumnEnd   int
	Row         int
}

// Span is the number of column tracks the slot covers.
func (s GridSlot) Span() int {
	return s.ColumnEnd - s.ColumnStart
}

// GridLayout is the resolved gallery arrangement.
type GridLayout struct {
	Name        string
	Arrangement string
	Columns     int
	Rows        int
	Slots       []GridSlot
	Placeholder bool
}

type gridSpec struct {
	arrangement string
	columns     int
	rows        [][]int
}

// gridTable maps photo count to column track spans per row.
var gridTable = map[int]gridSpec{
	1: {"single", 1, [][]int{{1}}},
	2: {"pair", 2, [][]int{{1, 1}}},
	3: {"wide-top", 2, [][]int{{2}, {1, 1}}},
	4: {"two-by-two", 2, [][]int{{1, 1}, {1, 1}}},
	5: {"three-over-two", 6, [][]int{{2, 2, 2}, {3, 3}}},
	6: {"three-by-two", 3, [][]int{{1, 1, 1}, {1, 1, 1}}},
	7: {"four-over-three", 12, [][]int{{3, 3, 3, 3}, {4, 4, 4}}},
	8: {"four-by-two", 4, [][]int{{1, 1, 1, 1}, {1, 1, 1, 1}}},
}

// ResolveGrid returns the gallery arrangement for n photos. n is clamped
// to [0, MaxOprPhotos]; zero yields a placeholder layout without slots.
func ResolveGrid(n int) GridLayout {
	if n <= 0 {
		return GridLayout{Name: "layout-1", Arrangement: "placeholder", Columns: 1, Rows: 1, Placeholder: true}
	}
	if n > MaxOprPhotos {
		n = MaxOprPhotos
	}
	spec := gridTable[n]
	layout := GridLayout{
		Name:        fmt.Sprintf("layout-%d", n),
		Arrangement: spec.arrangement,
		Columns:     spec.columns,
		Rows:        len(spec.rows),
		Slots:       make([]GridSlot, 0, n),
	}
	index := 1
	for r, spans := range spec.rows {
		col := 1
		for _, span := range spans {
			layout.Slots = append(layout.Slots, GridSlot{
				Index:       index,
				ColumnStart: col,
				ColumnEnd:   col + span,
				Row:         r + 1,
			})
			col += span
			index++
		}
	}
	return layout
}

// Covers reports whether the slots tile the grid exactly once.
func (g GridLayout) Covers() bool {
	if g.Placeholder {
		return len(g.Slots) == 0
	}
	if g.Columns <= 0 || g.Rows <= 0 {
		return false
	}
	cells := make([]int, g.Columns*g.Rows)
	for _, slot := range g.Slots {
		if slot.Row < 1 || slot.Row > g.Rows || slot.ColumnStart < 1 || slot.ColumnEnd > g.Columns+1 || slot.Span() < 1 {
			return false
		}
		for c := slot.ColumnStart; c < slot.ColumnEnd; c++ {
			cells[(slot.Row-1)*g.Columns+(c-1)]++
		}
	}
	for _, count := range cells {
		if count != 1 {
			return false
		}
	}
	return true
}

// SlotAspect returns width/height of a slot given the gallery box size.
func (g GridLayout) SlotAspect(slot GridSlot, width, height, gap float64) float64 {
	if g.Columns == 0 || g.Rows == 0 {
		return 1
	}
	track := (width - gap*float64(g.Columns-1)) / float64(g.Columns)
	w := track*float64(slot.Span()) + gap*float64(slot.Span()-1)
	h := (height - gap*float64(g.Rows-1)) / float64(g.Rows)
	if h <= 0 {
		return 1
	}
	return w / h
}

// CSS renders the grid rules for the layout using the template's class names.
func (g GridLayout) CSS() string {
	if g.Placeholder {
		return ""
	}
	sel := ".gallery-grid." + g.Name
	out := fmt.Sprintf("%s { grid-template-columns: repeat(%d, 1fr); grid-template-rows: repeat(%d, 1fr); }\n", sel, g.Columns, g.Rows)
	for _, slot := range g.Slots {
		out += fmt.Sprintf("%s .slot-%d { grid-column: %d / %d; grid-row: %d; }\n", sel, slot.Index, slot.ColumnStart, slot.ColumnEnd, slot.Row)
	}
	return out
}
