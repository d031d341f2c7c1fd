package pdfcanvas

import (
	"context"
	"io"

	"github.com/goliatone/go-docgen/docgen"
)

// Page geometry in millimetres.
const (
	PageWidth    = 210.0
	PageHeight   = 297.0
	Margin       = 20.0
	ContentWidth = PageWidth - 2*Margin
)

// Point sizes.
const (
	TitleSize    = 14.0
	SubtitleSize = 12.0
	SectionSize  = 12.0
	BodySize     = 11.0
)

// Space each block needs before a page break is forced.
const (
	SectionNeed    = 20.0
	ClosingNeed    = 15.0
	ItemNeed       = 8.0
	AttendeeNeed   = 6.0
	SignatureNeed  = 50.0
	lineHeightRate = 0.4
)

const (
	logoWidth       = 20.0
	logoHeight      = 23.0
	logoGap         = 5.0
	signatureWidth  = 40.0
	signatureHeight = 12.0
	itemIndent      = 5.0
	imageMaxPixels  = 480
)

// FontFamily maps the font choice to a PDF core font.
func FontFamily(font docgen.Font) string {
	if font == docgen.FontTimes {
		return "Times"
	}
	return "Helvetica"
}

// MinitPDF renders minutes as PDF.
type MinitPDF struct {
	Logger    docgen.Logger
	NewCanvas func() Canvas
}

// NewMinitPDF creates a PDF minutes renderer backed by gofpdf.
func NewMinitPDF() *MinitPDF {
	return &MinitPDF{
		Logger:    docgen.NopLogger{},
		NewCanvas: func() Canvas { return NewFpdfCanvas() },
	}
}

// RenderMinit draws the minutes on a fresh canvas and writes the PDF.
func (m *MinitPDF) RenderMinit(ctx context.Context, doc docgen.MinitDocument, assets docgen.MinitAssets, w io.Writer) error {
	if m == nil {
		return docgen.NewError(docgen.KindInternal, "pdf renderer is nil", nil)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	c := m.canvas()
	m.Draw(c, doc, assets)
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.Output(w); err != nil {
		return docgen.NewError(docgen.KindRender, "write pdf", err)
	}
	return nil
}

// Draw lays the minutes out on c.
func (m *MinitPDF) Draw(c Canvas, doc docgen.MinitDocument, assets docgen.MinitAssets) {
	l := &layout{c: c, family: FontFamily(assets.Font), logger: m.logger(), y: Margin}
	c.AddPage()

	l.header(doc, assets)

	l.font(StyleBold, SubtitleSize)
	for _, line := range doc.Meta {
		c.Text(PageWidth/2, l.y, AlignCenter, line)
		l.y += 6
	}
	l.y += 4

	l.font(StyleBold, SubtitleSize)
	c.Text(Margin, l.y, AlignLeft, docgen.AttendanceHeading)
	l.y += 6
	l.font(StyleNormal, BodySize)
	for _, a := range doc.Attendance {
		l.ensure(AttendeeNeed)
		c.Text(Margin+itemIndent, l.y, AlignLeft, a.Line())
		l.y += 5
	}

	for _, section := range doc.Sections {
		l.section(section)
	}

	l.y += 20
	l.ensure(SignatureNeed)
	colWidth := ContentWidth / 3
	for i, sig := range doc.Signatures {
		l.signature(sig, assets.SignatureImage(sig.Role), Margin+float64(i)*colWidth, colWidth)
	}
}

func (m *MinitPDF) canvas() Canvas {
	if m.NewCanvas == nil {
		return NewFpdfCanvas()
	}
	return m.NewCanvas()
}

func (m *MinitPDF) logger() docgen.Logger {
	if m.Logger == nil {
		return docgen.NopLogger{}
	}
	return m.Logger
}

type layout struct {
	c      Canvas
	family string
	logger docgen.Logger
	y      float64
}

func (l *layout) font(style string, size float64) {
	l.c.SetFont(l.family, style, size)
}

// ensure starts a new page when need no longer fits above the bottom margin.
func (l *layout) ensure(need float64) {
	if l.y+need > PageHeight-Margin {
		l.c.AddPage()
		l.y = Margin
	}
}

func (l *layout) header(doc docgen.MinitDocument, assets docgen.MinitAssets) {
	titleX, titleWidth := Margin, ContentWidth
	if assets.Logo1 != "" {
		titleX += logoWidth + logoGap
		titleWidth -= logoWidth + logoGap
		l.image("logo1", assets.Logo1, Margin, l.y, logoWidth, logoHeight)
	}
	if assets.Logo2 != "" {
		titleWidth -= logoWidth + logoGap
		l.image("logo2", assets.Logo2, PageWidth-Margin-logoWidth, l.y, logoWidth, logoHeight)
	}
	center := titleX + titleWidth/2

	l.font(StyleBold, TitleSize)
	l.c.Text(center, l.y+8, AlignCenter, doc.Title)
	l.c.Text(center, l.y+15, AlignCenter, doc.Organization)
	l.font(StyleBold, SubtitleSize)
	l.c.Text(center, l.y+22, AlignCenter, doc.Subtitle)
	l.y += 30

	l.c.Line(Margin, l.y, PageWidth-Margin, l.y, 0.5)
	l.y += 8
}

func (l *layout) section(s docgen.MinitSection) {
	l.y += 6
	if s.Closing {
		l.ensure(ClosingNeed)
	} else {
		l.ensure(SectionNeed)
	}
	l.font(StyleBold, SectionSize)
	l.c.Text(Margin, l.y, AlignLeft, s.Heading())
	l.y += 6

	for _, item := range s.Items {
		l.ensure(ItemNeed)
		l.wrapped(item.Line(), Margin+itemIndent, ContentWidth-2*itemIndent)
		l.y += 2
	}

	l.font(StyleItalic, BodySize)
	for _, note := range s.Notes {
		l.c.Text(PageWidth-Margin, l.y, AlignRight, note)
		l.y += 5
	}
	if line := s.ActionLine(); line != "" {
		l.c.Text(PageWidth-Margin, l.y, AlignRight, line)
		l.y += 4
	}
}

// wrapped draws body text across lines and advances y past it.
func (l *layout) wrapped(text string, x, width float64) {
	l.font(StyleNormal, BodySize)
	lines := l.c.SplitText(text, width)
	step := BodySize * lineHeightRate
	for i, line := range lines {
		l.c.Text(x, l.y+float64(i)*step, AlignLeft, line)
	}
	l.y += float64(len(lines)) * step
}

func (l *layout) signature(sig docgen.SignatureBlock, src string, x, width float64) {
	top := l.y
	center := x + width/2

	l.font(StyleNormal, BodySize)
	l.c.Text(center, top, AlignCenter, sig.Label)

	drawn := false
	if sig.AcceptsImage && src != "" {
		drawn = l.image(string(sig.Role), src, x+(width-signatureWidth)/2, top+6, signatureWidth, signatureHeight)
	}
	if !drawn {
		l.c.Text(center, top+20, AlignCenter, docgen.SignatureDottedLine)
	}

	l.font(StyleBold, BodySize)
	names := l.c.SplitText(sig.NameLine(), width-10)
	for i, line := range names {
		l.c.Text(center, top+28+float64(i)*4, AlignCenter, line)
	}

	l.font(StyleNormal, BodySize)
	titleY := top + 34 + float64(len(names)-1)*4
	for _, title := range sig.Titles {
		for _, line := range l.c.SplitText(title, width-10) {
			l.c.Text(center, titleY, AlignCenter, line)
			titleY += 4
		}
	}
}

// image draws src fitted and centred in the box. Failures are logged and
// reported so the caller can fall back.
func (l *layout) image(name, src string, x, y, w, h float64) bool {
	enc, err := docgen.PreparePNG(src, imageMaxPixels, imageMaxPixels)
	if err != nil {
		l.logger.Errorf("pdf %s skipped: %v", name, err)
		return false
	}
	dw, dh := fitBox(enc.Aspect(), w, h)
	if err := l.c.Image(enc.Data, x+(w-dw)/2, y+(h-dh)/2, dw, dh); err != nil {
		l.logger.Errorf("pdf %s skipped: %v", name, err)
		return false
	}
	return true
}

func fitBox(aspect, w, h float64) (float64, float64) {
	if aspect <= 0 {
		return w, h
	}
	if aspect > w/h {
		return w, w / aspect
	}
	return h * aspect, h
}
