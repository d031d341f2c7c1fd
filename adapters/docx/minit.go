package docxrender

import (
	"context"
	"io"
	"math"
	"strconv"

	"github.com/goliatone/go-docgen/docgen"
)

// Half-point sizes and twip geometry of the minutes layout.
const (
	TitleSize    = 28
	SubtitleSize = 24
	SectionSize  = 24
	BodySize     = 22

	PageMargin     = 1200
	ContentWidth   = 9600
	LogoCellWidth  = 1500
	SignatureWidth = 3200
	ItemIndent     = 360
)

// Image boxes in pixels. Sources are re-encoded at 4x for print.
var (
	logoBox      = [2]int{60, 70}
	signatureBox = [2]int{80, 30}
)

const imageOversample = 4

// FontName maps the font choice to a Word font.
func FontName(font docgen.Font) string {
	if font == docgen.FontCalibri {
		return "Calibri"
	}
	return "Times New Roman"
}

// MinitDocx renders minutes as DOCX.
type MinitDocx struct {
	Logger docgen.Logger
}

// NewMinitDocx creates a DOCX minutes renderer.
func NewMinitDocx() *MinitDocx {
	return &MinitDocx{Logger: docgen.NopLogger{}}
}

// RenderMinit builds and packs the document.
func (m *MinitDocx) RenderMinit(ctx context.Context, doc docgen.MinitDocument, assets docgen.MinitAssets, w io.Writer) error {
	if m == nil {
		return docgen.NewError(docgen.KindInternal, "docx renderer is nil", nil)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	d := m.Build(doc, assets)
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := d.Pack(w); err != nil {
		return docgen.NewError(docgen.KindRender, "pack docx", err)
	}
	return nil
}

// Build maps the minutes onto a document tree.
func (m *MinitDocx) Build(doc docgen.MinitDocument, assets docgen.MinitAssets) *Document {
	b := builder{font: FontName(assets.Font), logger: m.logger()}
	d := &Document{DefaultFont: b.font, DefaultSize: BodySize, Margin: PageMargin}

	b.header(d, doc, assets)
	d.Add(Paragraph{BottomBorder: true, After: 200})

	for i, line := range doc.Meta {
		after := 60
		if i == len(doc.Meta)-1 {
			after = 150
		}
		d.Add(Paragraph{Align: AlignCenter, After: after, Runs: []Run{b.text(line, SubtitleSize, true, false)}})
	}

	d.Add(Paragraph{Before: 150, After: 100, Runs: []Run{b.text(docgen.AttendanceHeading, SectionSize, true, false)}})
	for _, a := range doc.Attendance {
		d.Add(Paragraph{After: 40, IndentLeft: ItemIndent, Runs: []Run{b.text(a.Line(), BodySize, false, false)}})
	}

	for i, section := range doc.Sections {
		before := 200
		if i == 0 {
			before = 250
		}
		heading := strconv.Itoa(section.Number) + ".  " + section.Title
		d.Add(Paragraph{Before: before, After: 100, Runs: []Run{b.text(heading, SectionSize, true, false)}})
		for _, item := range section.Items {
			d.Add(Paragraph{After: 60, IndentLeft: ItemIndent, Runs: []Run{b.text(item.Label+"  "+item.Text, BodySize, false, false)}})
		}
		for _, note := range section.Notes {
			d.Add(Paragraph{Align: AlignRight, After: 40, Runs: []Run{b.text(note, BodySize, false, true)}})
		}
		if line := section.ActionLine(); line != "" {
			d.Add(Paragraph{Align: AlignRight, After: 100, Runs: []Run{b.text(line, BodySize, false, true)}})
		}
	}

	d.Add(Paragraph{Before: 400})
	row := make([]Cell, 0, len(doc.Signatures))
	for _, sig := range doc.Signatures {
		row = append(row, b.signatureCell(sig, assets))
	}
	d.Add(Table{ColumnWidths: []int{SignatureWidth, SignatureWidth, SignatureWidth}, Rows: [][]Cell{row}})
	return d
}

func (m *MinitDocx) logger() docgen.Logger {
	if m.Logger == nil {
		return docgen.NopLogger{}
	}
	return m.Logger
}

type builder struct {
	font   string
	logger docgen.Logger
}

func (b builder) text(s string, size int, bold, italic bool) Run {
	return Run{Text: s, Size: size, Bold: bold, Italic: italic, Font: b.font}
}

func (b builder) titleParagraphs(doc docgen.MinitDocument, lastAfter int) []Paragraph {
	return []Paragraph{
		{Align: AlignCenter, After: 100, Runs: []Run{b.text(doc.Title, TitleSize, true, false)}},
		{Align: AlignCenter, After: 100, Runs: []Run{b.text(doc.Organization, TitleSize, true, false)}},
		{Align: AlignCenter, After: lastAfter, Runs: []Run{b.text(doc.Subtitle, SubtitleSize, true, false)}},
	}
}

func (b builder) header(d *Document, doc docgen.MinitDocument, assets docgen.MinitAssets) {
	if !assets.HasLogos() {
		for _, p := range b.titleParagraphs(doc, 100) {
			d.Add(p)
		}
		return
	}

	var widths []int
	var row []Cell
	titleWidth := ContentWidth
	if assets.Logo1 != "" {
		titleWidth -= LogoCellWidth
	}
	if assets.Logo2 != "" {
		titleWidth -= LogoCellWidth
	}
	if assets.Logo1 != "" {
		widths = append(widths, LogoCellWidth)
		row = append(row, b.logoCell(assets.Logo1))
	}
	widths = append(widths, titleWidth)
	row = append(row, Cell{Width: titleWidth, VCenter: true, Paragraphs: b.titleParagraphs(doc, 50)})
	if assets.Logo2 != "" {
		widths = append(widths, LogoCellWidth)
		row = append(row, b.logoCell(assets.Logo2))
	}
	d.Add(Table{ColumnWidths: widths, Rows: [][]Cell{row}})
}

// logoCell leaves the cell empty when the logo cannot be decoded.
func (b builder) logoCell(src string) Cell {
	cell := Cell{Width: LogoCellWidth, VCenter: true}
	img, err := b.image(src, logoBox)
	if err != nil {
		b.logger.Errorf("docx logo skipped: %v", err)
		cell.Paragraphs = []Paragraph{{Align: AlignCenter}}
		return cell
	}
	cell.Paragraphs = []Paragraph{{Align: AlignCenter, Runs: []Run{{Image: img}}}}
	return cell
}

func (b builder) signatureCell(sig docgen.SignatureBlock, assets docgen.MinitAssets) Cell {
	paras := []Paragraph{{Align: AlignCenter, Runs: []Run{b.text(sig.Label, BodySize, false, false)}}}

	var img *Image
	if src := assets.SignatureImage(sig.Role); sig.AcceptsImage && src != "" {
		var err error
		if img, err = b.image(src, signatureBox); err != nil {
			b.logger.Errorf("docx %s signature skipped: %v", sig.Role, err)
			img = nil
		}
	}
	if img != nil {
		paras = append(paras, Paragraph{Align: AlignCenter, Before: 100, Runs: []Run{{Image: img}}})
	} else {
		paras = append(paras, Paragraph{Align: AlignCenter, Before: 300, Runs: []Run{b.text(docgen.SignatureDottedLine, BodySize, false, false)}})
	}

	paras = append(paras, Paragraph{Align: AlignCenter, Runs: []Run{b.text(sig.NameLine(), BodySize, true, false)}})
	for _, title := range sig.Titles {
		paras = append(paras, Paragraph{Align: AlignCenter, Runs: []Run{b.text(title, BodySize, false, false)}})
	}
	return Cell{Width: SignatureWidth, Paragraphs: paras}
}

// image re-encodes src as PNG and scales its display size to fit box while
// keeping the aspect ratio.
func (b builder) image(src string, box [2]int) (*Image, error) {
	enc, err := docgen.PreparePNG(src, box[0]*imageOversample, box[1]*imageOversample)
	if err != nil {
		return nil, err
	}
	w, h := fitBox(enc.Aspect(), box[0], box[1])
	return &Image{Data: enc.Data, Width: w, Height: h}, nil
}

func fitBox(aspect float64, maxW, maxH int) (int, int) {
	if aspect <= 0 {
		return maxW, maxH
	}
	w := float64(maxW)
	h := w / aspect
	if h > float64(maxH) {
		h = float64(maxH)
		w = h * aspect
	}
	return max(int(math.Round(w)), 1), max(int(math.Round(h)), 1)
}
