package docxrender

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"time"
)

const (
	nsMain    = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsRel     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsWP      = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	nsA       = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsPic     = "http://schemas.openxmlformats.org/drawingml/2006/picture"
	relImage  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	relStyles = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
)

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Default Extension="png" ContentType="image/png"/>` +
	`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
	`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>` +
	`</Types>`

const packageRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
	`</Relationships>`

// packTime fixes zip entry times so identical documents pack to identical
// bytes.
var packTime = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

type part struct {
	name string
	data []byte
}

type media struct {
	relID string
	name  string
	data  []byte
}

type packer struct {
	buf   bytes.Buffer
	media []media
}

// Pack writes the document as a .docx package.
func (d *Document) Pack(w io.Writer) error {
	p := &packer{}
	p.document(d)

	zw := zip.NewWriter(w)
	files := []part{
		{"[Content_Types].xml", []byte(contentTypesXML)},
		{"_rels/.rels", []byte(packageRelsXML)},
		{"word/document.xml", p.buf.Bytes()},
		{"word/styles.xml", stylesXML(d)},
		{"word/_rels/document.xml.rels", p.relsXML()},
	}
	for _, m := range p.media {
		files = append(files, part{"word/media/" + m.name, m.data})
	}
	for _, f := range files {
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: f.name, Method: zip.Deflate, Modified: packTime})
		if err != nil {
			return fmt.Errorf("create %s: %w", f.name, err)
		}
		if _, err := fw.Write(f.data); err != nil {
			return fmt.Errorf("write %s: %w", f.name, err)
		}
	}
	return zw.Close()
}

func (p *packer) document(d *Document) {
	p.raw(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	p.raw(`<w:document xmlns:w="` + nsMain + `" xmlns:r="` + nsRel + `" xmlns:wp="` + nsWP + `" xmlns:a="` + nsA + `" xmlns:pic="` + nsPic + `"><w:body>`)
	for _, b := range d.Body {
		switch v := b.(type) {
		case Paragraph:
			p.paragraph(v)
		case *Paragraph:
			p.paragraph(*v)
		case Table:
			p.table(v)
		case *Table:
			p.table(*v)
		}
	}
	m := strconv.Itoa(d.Margin)
	p.raw(`<w:sectPr><w:pgSz w:w="` + strconv.Itoa(A4WidthTwips) + `" w:h="` + strconv.Itoa(A4HeightTwips) + `"/>`)
	p.raw(`<w:pgMar w:top="` + m + `" w:right="` + m + `" w:bottom="` + m + `" w:left="` + m + `" w:header="708" w:footer="708" w:gutter="0"/></w:sectPr>`)
	p.raw(`</w:body></w:document>`)
}

func (p *packer) paragraph(para Paragraph) {
	p.raw(`<w:p><w:pPr>`)
	if para.BottomBorder {
		p.raw(`<w:pBdr><w:bottom w:val="single" w:sz="12" w:space="1" w:color="000000"/></w:pBdr>`)
	}
	if para.Before > 0 || para.After > 0 {
		p.raw(`<w:spacing w:before="` + strconv.Itoa(para.Before) + `" w:after="` + strconv.Itoa(para.After) + `"/>`)
	}
	if para.IndentLeft > 0 {
		p.raw(`<w:ind w:left="` + strconv.Itoa(para.IndentLeft) + `"/>`)
	}
	if para.Align != "" {
		p.raw(`<w:jc w:val="` + string(para.Align) + `"/>`)
	}
	p.raw(`</w:pPr>`)
	for _, r := range para.Runs {
		if r.Image != nil {
			p.image(*r.Image)
			continue
		}
		p.run(r)
	}
	p.raw(`</w:p>`)
}

func (p *packer) run(r Run) {
	p.raw(`<w:r><w:rPr>`)
	if r.Font != "" {
		p.raw(`<w:rFonts w:ascii="`)
		p.text(r.Font)
		p.raw(`" w:hAnsi="`)
		p.text(r.Font)
		p.raw(`" w:cs="`)
		p.text(r.Font)
		p.raw(`"/>`)
	}
	if r.Bold {
		p.raw(`<w:b/>`)
	}
	if r.Italic {
		p.raw(`<w:i/>`)
	}
	if r.Size > 0 {
		size := strconv.Itoa(r.Size)
		p.raw(`<w:sz w:val="` + size + `"/><w:szCs w:val="` + size + `"/>`)
	}
	p.raw(`</w:rPr><w:t xml:space="preserve">`)
	p.text(r.Text)
	p.raw(`</w:t></w:r>`)
}

func (p *packer) image(img Image) {
	n := len(p.media) + 1
	m := media{
		relID: "rIdImg" + strconv.Itoa(n),
		name:  "image" + strconv.Itoa(n) + ".png",
		data:  img.Data,
	}
	p.media = append(p.media, m)

	cx := strconv.Itoa(img.Width * emuPerPixel)
	cy := strconv.Itoa(img.Height * emuPerPixel)
	id := strconv.Itoa(n)
	p.raw(`<w:r><w:drawing><wp:inline distT="0" distB="0" distL="0" distR="0">`)
	p.raw(`<wp:extent cx="` + cx + `" cy="` + cy + `"/>`)
	p.raw(`<wp:docPr id="` + id + `" name="Picture ` + id + `"/>`)
	p.raw(`<a:graphic><a:graphicData uri="` + nsPic + `"><pic:pic>`)
	p.raw(`<pic:nvPicPr><pic:cNvPr id="` + id + `" name="` + m.name + `"/><pic:cNvPicPr/></pic:nvPicPr>`)
	p.raw(`<pic:blipFill><a:blip r:embed="` + m.relID + `"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>`)
	p.raw(`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="` + cx + `" cy="` + cy + `"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr>`)
	p.raw(`</pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing></w:r>`)
}

func (p *packer) table(t Table) {
	total := 0
	for _, w := range t.ColumnWidths {
		total += w
	}
	p.raw(`<w:tbl><w:tblPr>`)
	if total > 0 {
		p.raw(`<w:tblW w:w="` + strconv.Itoa(total) + `" w:type="dxa"/>`)
	} else {
		p.raw(`<w:tblW w:w="5000" w:type="pct"/>`)
	}
	if !t.Borders {
		p.raw(`<w:tblBorders><w:top w:val="nil"/><w:left w:val="nil"/><w:bottom w:val="nil"/><w:right w:val="nil"/><w:insideH w:val="nil"/><w:insideV w:val="nil"/></w:tblBorders>`)
	}
	p.raw(`<w:tblLayout w:type="fixed"/></w:tblPr><w:tblGrid>`)
	for _, w := range t.ColumnWidths {
		p.raw(`<w:gridCol w:w="` + strconv.Itoa(w) + `"/>`)
	}
	p.raw(`</w:tblGrid>`)
	for _, row := range t.Rows {
		p.raw(`<w:tr>`)
		for i, cell := range row {
			width := cell.Width
			if width == 0 && i < len(t.ColumnWidths) {
				width = t.ColumnWidths[i]
			}
			p.raw(`<w:tc><w:tcPr><w:tcW w:w="` + strconv.Itoa(width) + `" w:type="dxa"/>`)
			if cell.VCenter {
				p.raw(`<w:vAlign w:val="center"/>`)
			}
			p.raw(`</w:tcPr>`)
			if len(cell.Paragraphs) == 0 {
				p.raw(`<w:p/>`)
			}
			for _, para := range cell.Paragraphs {
				p.paragraph(para)
			}
			p.raw(`</w:tc>`)
		}
		p.raw(`</w:tr>`)
	}
	p.raw(`</w:tbl>`)
}

func (p *packer) relsXML() []byte {
	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	b.WriteString(`<Relationship Id="rIdStyles" Type="` + relStyles + `" Target="styles.xml"/>`)
	for _, m := range p.media {
		b.WriteString(`<Relationship Id="` + m.relID + `" Type="` + relImage + `" Target="media/` + m.name + `"/>`)
	}
	b.WriteString(`</Relationships>`)
	return b.Bytes()
}

func stylesXML(d *Document) []byte {
	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	b.WriteString(`<w:styles xmlns:w="` + nsMain + `"><w:docDefaults><w:rPrDefault><w:rPr>`)
	if d.DefaultFont != "" {
		b.WriteString(`<w:rFonts w:ascii="`)
		_ = xml.EscapeText(&b, []byte(d.DefaultFont))
		b.WriteString(`" w:hAnsi="`)
		_ = xml.EscapeText(&b, []byte(d.DefaultFont))
		b.WriteString(`" w:cs="`)
		_ = xml.EscapeText(&b, []byte(d.DefaultFont))
		b.WriteString(`"/>`)
	}
	if d.DefaultSize > 0 {
		size := strconv.Itoa(d.DefaultSize)
		b.WriteString(`<w:sz w:val="` + size + `"/><w:szCs w:val="` + size + `"/>`)
	}
	b.WriteString(`</w:rPr></w:rPrDefault><w:pPrDefault/></w:docDefaults></w:styles>`)
	return b.Bytes()
}

func (p *packer) raw(s string) {
	p.buf.WriteString(s)
}

func (p *packer) text(s string) {
	_ = xml.EscapeText(&p.buf, []byte(s))
}
