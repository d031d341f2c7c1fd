package docxrender

import "strings"

// Align is a paragraph justification.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Units: sizes are half-points, spacing and widths are twips (dxa), image
// extents are pixels at 96 dpi.
const (
	emuPerPixel = 9525

	A4WidthTwips  = 11906
	A4HeightTwips = 16838
)

// Block is a top level body element.
type Block interface {
	block()
}

// Image is an inline PNG.
type Image struct {
	Data   []byte
	Width  int
	Height int
}

// Run is a span of text with one formatting, or a single inline image.
type Run struct {
	Text   string
	Bold   bool
	Italic bool
	Size   int
	Font   string
	Image  *Image
}

// Paragraph is a block of runs.
type Paragraph struct {
	Runs         []Run
	Align        Align
	Before       int
	After        int
	IndentLeft   int
	BottomBorder bool
}

func (Paragraph) block() {}

// Text returns the concatenated run text.
func (p Paragraph) Text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// Cell is a table cell. An empty cell still renders one empty paragraph.
type Cell struct {
	Width      int
	VCenter    bool
	Paragraphs []Paragraph
}

// Table is a fixed layout table.
type Table struct {
	ColumnWidths []int
	Rows         [][]Cell
	Borders      bool
}

func (Table) block() {}

// Document is a single section document.
type Document struct {
	DefaultFont string
	DefaultSize int
	Margin      int
	Body        []Block
}

// Add appends blocks to the body.
func (d *Document) Add(blocks ...Block) {
	d.Body = append(d.Body, blocks...)
}
