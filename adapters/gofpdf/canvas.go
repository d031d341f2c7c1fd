package pdfcanvas

import (
	"bytes"
	"fmt"
	"io"
	"unicode"
	"unicode/utf8"

	"github.com/jung-kurt/gofpdf"
)

// Align positions text relative to the x coordinate.
type Align string

const (
	AlignLeft   Align = "L"
	AlignCenter Align = "C"
	AlignRight  Align = "R"
)

// Font styles.
const (
	StyleNormal = ""
	StyleBold   = "B"
	StyleItalic = "I"
)

// Canvas is the drawing surface used by the layout. Coordinates are in
// millimetres from the top left corner; y is the text baseline.
type Canvas interface {
	AddPage()
	SetFont(family, style string, size float64)
	Text(x, y float64, align Align, text string)
	Line(x1, y1, x2, y2, width float64)
	Image(data []byte, x, y, w, h float64) error
	SplitText(text string, width float64) []string
	Output(w io.Writer) error
}

// FpdfCanvas is a Canvas backed by gofpdf using the core fonts.
type FpdfCanvas struct {
	pdf    *gofpdf.Fpdf
	tr     func(string) string
	images int
}

// NewFpdfCanvas creates an A4 portrait canvas with manual page breaks.
func NewFpdfCanvas() *FpdfCanvas {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("go-docgen", true)
	return &FpdfCanvas{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

func (c *FpdfCanvas) AddPage() {
	c.pdf.AddPage()
}

func (c *FpdfCanvas) SetFont(family, style string, size float64) {
	c.pdf.SetFont(family, style, size)
}

func (c *FpdfCanvas) Text(x, y float64, align Align, text string) {
	text = c.tr(text)
	switch align {
	case AlignCenter:
		x -= c.pdf.GetStringWidth(text) / 2
	case AlignRight:
		x -= c.pdf.GetStringWidth(text)
	}
	c.pdf.Text(x, y, text)
}

func (c *FpdfCanvas) Line(x1, y1, x2, y2, width float64) {
	c.pdf.SetDrawColor(0, 0, 0)
	c.pdf.SetLineWidth(width)
	c.pdf.Line(x1, y1, x2, y2)
}

// Image places a PNG. A failed registration leaves the document usable.
func (c *FpdfCanvas) Image(data []byte, x, y, w, h float64) error {
	c.images++
	name := fmt.Sprintf("img%d", c.images)
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	c.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	if c.pdf.Err() {
		err := c.pdf.Error()
		c.pdf.ClearError()
		return err
	}
	c.pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
	return nil
}

// SplitText wraps with gofpdf's splitter. It measures the code page bytes
// Text will draw, then maps each line back onto the original runes; the
// translator emits one byte per rune.
func (c *FpdfCanvas) SplitText(text string, width float64) []string {
	src := []rune(text)
	encoded := []byte(c.tr(text))
	glyphs := make([]rune, len(encoded))
	for i, b := range encoded {
		glyphs[i] = rune(b)
	}

	lines := c.pdf.SplitText(string(glyphs), width+2*c.pdf.GetCellMargin())
	if len(lines) == 0 {
		return []string{""}
	}
	out := make([]string, 0, len(lines))
	at := 0
	for _, line := range lines {
		end := min(at+utf8.RuneCountInString(line), len(src))
		out = append(out, string(src[at:end]))
		at = end
		if at < len(src) && unicode.IsSpace(src[at]) {
			at++
		}
	}
	return out
}

func (c *FpdfCanvas) Output(w io.Writer) error {
	return c.pdf.Output(w)
}
