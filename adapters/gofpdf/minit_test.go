package pdfcanvas

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-docgen/docgen"
)

var fixedNow = time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)

func sampleData() docgen.MinitData {
	return docgen.MinitData{
		Bilangan: "4",
		Tarikh:   "2025-06-02",
		Masa:     "15:00",
		Tempat:   "Makmal Sains",
		Panitia:  "Panitia Matematik",
		Ahli: []docgen.AhliEntry{
			{ID: "1", Nama: "Aminah binti Ali", Jawatan: "Ketua Panitia"},
			{ID: "2", Nama: "Chong Wei", Jawatan: "Setiausaha"},
		},
		UcapanPengerusi:   []string{"Selamat datang"},
		MinitLalu:         docgen.MinitLalu{Dicadangkan: "Chong Wei"},
		AgendaItems:       []docgen.AgendaItem{{ID: "a", Perkara: "Peperiksaan", Butiran: []string{"Jadual"}, Tindakan: "Semua guru", Included: true}},
		UcapanPenangguhan: []string{"Terima kasih"},
		Sections:          docgen.Sections{UcapanPengerusi: true, MinitLalu: true, UcapanPenangguhan: true},
		Setiausaha:        docgen.SignatureInfo{Name: "Chong Wei", Title1: "Setiausaha", Title2: "Panitia Matematik"},
	}
}

type recordLogger struct {
	errors []string
}

func (l *recordLogger) Debugf(string, ...any) {}
func (l *recordLogger) Infof(string, ...any)  {}
func (l *recordLogger) Errorf(format string, args ...any) {
	l.errors = append(l.errors, fmt.Sprintf(format, args...))
}

func testPNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{B: 180, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func draw(data docgen.MinitData, assets docgen.MinitAssets) (*Recorder, *recordLogger) {
	rec := NewRecorder()
	logger := &recordLogger{}
	r := &MinitPDF{Logger: logger}
	r.Draw(rec, docgen.BuildMinitDocument(data, fixedNow), assets)
	return rec, logger
}

func findText(rec *Recorder, text string) (Op, bool) {
	for _, op := range rec.Texts() {
		if op.Text == text {
			return op, true
		}
	}
	return Op{}, false
}

func TestDraw_Content(t *testing.T) {
	rec, _ := draw(sampleData(), docgen.MinitAssets{})
	if rec.Pages() != 1 {
		t.Fatalf("expected 1 page, got %d", rec.Pages())
	}
	for _, want := range []string{
		"MINIT MESYUARAT PANITIA",
		"PANITIA MATEMATIK",
		"BIL. 4 SESI 2025",
		"HARI: ISNIN",
		"MASA: 3.00 PETANG",
		"1.  Aminah binti Ali (Ketua Panitia)",
		"1. UCAPAN PENGERUSI / KETUA PANITIA",
		"1.1 Selamat datang",
		"Tindakan: Makluman",
		"2.1 Minit mesyuarat telah dibentangkan dan disahkan",
		"Dicadangkan oleh: Chong Wei",
		"3. PEPERIKSAAN",
		"Tindakan: Semua guru",
		"4. UCAPAN PENANGGUHAN",
		"(CHONG WEI)",
		"Panitia Matematik",
	} {
		if _, ok := findText(rec, want); !ok {
			t.Fatalf("missing text %q", want)
		}
	}

	title, _ := findText(rec, "MINIT MESYUARAT PANITIA")
	if title.Align != AlignCenter || title.X != PageWidth/2 || title.Size != TitleSize || title.Style != StyleBold {
		t.Fatalf("unexpected title op %+v", title)
	}
	action, _ := findText(rec, "Tindakan: Makluman")
	if action.Align != AlignRight || action.X != PageWidth-Margin || action.Style != StyleItalic {
		t.Fatalf("unexpected action op %+v", action)
	}
	closing, _ := findText(rec, "4. UCAPAN PENANGGUHAN")
	for _, op := range rec.Texts() {
		if op.Y > closing.Y && strings.HasPrefix(op.Text, "Tindakan:") {
			t.Fatalf("closing section must not carry an action line")
		}
	}
	if dotted := countText(rec, docgen.SignatureDottedLine); dotted != 3 {
		t.Fatalf("expected 3 dotted lines without images, got %d", dotted)
	}
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 0.001
}

func countText(rec *Recorder, text string) int {
	n := 0
	for _, op := range rec.Texts() {
		if op.Text == text {
			n++
		}
	}
	return n
}

func TestDraw_FontFamily(t *testing.T) {
	rec, _ := draw(sampleData(), docgen.MinitAssets{Font: docgen.FontTimes})
	if op, _ := findText(rec, "BIL. 4 SESI 2025"); op.Font != "Times" {
		t.Fatalf("expected Times, got %q", op.Font)
	}
	rec, _ = draw(sampleData(), docgen.MinitAssets{Font: docgen.FontCalibri})
	if op, _ := findText(rec, "BIL. 4 SESI 2025"); op.Font != "Helvetica" {
		t.Fatalf("expected Helvetica, got %q", op.Font)
	}
}

func TestDraw_LogosShiftTitle(t *testing.T) {
	assets := docgen.MinitAssets{Logo1: testPNG(t, 40, 46), Logo2: "data:image/png;base64,@@@"}
	rec, logger := draw(sampleData(), assets)

	var images []Op
	for _, op := range rec.Ops {
		if op.Kind == OpImage {
			images = append(images, op)
		}
	}
	if len(images) != 1 {
		t.Fatalf("expected only the decodable logo, got %d images", len(images))
	}
	if !near(images[0].X, Margin) || !near(images[0].Y, Margin) || !near(images[0].W, logoWidth) || !near(images[0].H, logoHeight) {
		t.Fatalf("unexpected logo placement %+v", images[0])
	}
	if len(logger.errors) != 1 || !strings.Contains(logger.errors[0], "logo2") {
		t.Fatalf("expected logo2 failure to be logged, got %v", logger.errors)
	}
	title, _ := findText(rec, "MINIT MESYUARAT PANITIA")
	// Both logo slots are reserved: the title stays centred on the page.
	if title.X != PageWidth/2 {
		t.Fatalf("expected centred title, got x=%v", title.X)
	}

	rec, _ = draw(sampleData(), docgen.MinitAssets{Logo1: testPNG(t, 40, 46)})
	title, _ = findText(rec, "MINIT MESYUARAT PANITIA")
	want := Margin + logoWidth + logoGap + (ContentWidth-logoWidth-logoGap)/2
	if title.X != want {
		t.Fatalf("expected title centre %v, got %v", want, title.X)
	}
}

func TestDraw_SignatureImages(t *testing.T) {
	assets := docgen.MinitAssets{
		SetiausahaSignature:   testPNG(t, 200, 60),
		KetuaPanitiaSignature: testPNG(t, 30, 30),
	}
	rec, _ := draw(sampleData(), assets)
	if dotted := countText(rec, docgen.SignatureDottedLine); dotted != 1 {
		t.Fatalf("only the guru besar signs by hand, got %d dotted lines", dotted)
	}

	rec = NewRecorder()
	rec.FailImages = true
	logger := &recordLogger{}
	(&MinitPDF{Logger: logger}).Draw(rec, docgen.BuildMinitDocument(sampleData(), fixedNow), assets)
	if dotted := countText(rec, docgen.SignatureDottedLine); dotted != 3 {
		t.Fatalf("failed images fall back to dotted lines, got %d", dotted)
	}
	if len(logger.errors) != 2 {
		t.Fatalf("expected 2 logged failures, got %v", logger.errors)
	}
}

func TestDraw_PageBreaks(t *testing.T) {
	data := sampleData()
	for i := 0; i < 60; i++ {
		data.Ahli = append(data.Ahli, docgen.AhliEntry{ID: fmt.Sprint(i + 10), Nama: fmt.Sprintf("Guru %d", i), Jawatan: "GBA"})
	}
	rec, _ := draw(data, docgen.MinitAssets{})
	if rec.Pages() < 2 {
		t.Fatalf("expected attendance to overflow, got %d pages", rec.Pages())
	}
	for _, op := range rec.Ops {
		if op.Kind == OpText && op.Y > PageHeight {
			t.Fatalf("text drawn off the page: %+v", op)
		}
	}

	var last Op
	for _, op := range rec.Texts() {
		if op.Text == "Disediakan oleh," {
			last = op
		}
	}
	if last.Y+SignatureNeed > PageHeight-Margin+0.001 {
		t.Fatalf("signature block must fit on its page, starts at %v", last.Y)
	}
}

func TestDraw_WrapsLongItems(t *testing.T) {
	data := sampleData()
	data.UcapanPengerusi = []string{strings.Repeat("perkataan ", 30)}
	rec, _ := draw(data, docgen.MinitAssets{})

	var lines []Op
	for _, op := range rec.Texts() {
		if op.X == Margin+itemIndent && op.Size == BodySize && strings.Contains(op.Text, "perkataan") {
			lines = append(lines, op)
		}
	}
	if len(lines) < 2 {
		t.Fatalf("expected wrapped item, got %d lines", len(lines))
	}
	if step := lines[1].Y - lines[0].Y; !near(step, BodySize*lineHeightRate) {
		t.Fatalf("unexpected line step %v", step)
	}
}

func TestRenderMinit_WritesPDF(t *testing.T) {
	var buf bytes.Buffer
	assets := docgen.MinitAssets{Logo1: testPNG(t, 40, 46), SetiausahaSignature: testPNG(t, 120, 40)}
	err := NewMinitPDF().RenderMinit(context.Background(), docgen.BuildMinitDocument(sampleData(), fixedNow), assets, &buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("expected pdf header, got %q", buf.Bytes()[:min(8, buf.Len())])
	}
}

func TestRenderMinit_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewMinitPDF().RenderMinit(ctx, docgen.BuildMinitDocument(sampleData(), fixedNow), docgen.MinitAssets{}, io.Discard)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
}

func TestFpdfCanvas_SplitText(t *testing.T) {
	c := NewFpdfCanvas()
	c.AddPage()
	c.SetFont("Helvetica", StyleNormal, 11)

	text := "Mesyuarat kali ke’3 membincangkan perbelanjaan panitia bagi sesi semasa"
	lines := c.SplitText(text, 40)
	if len(lines) < 2 {
		t.Fatalf("expected text to wrap, got %q", lines)
	}
	if got := strings.Join(lines, " "); got != text {
		t.Fatalf("lines must rejoin to the source text, got %q", got)
	}
	for _, line := range lines {
		if w := c.pdf.GetStringWidth(c.tr(line)); w > 40+0.01 {
			t.Fatalf("line %q measures %.2fmm, wider than 40mm", line, w)
		}
	}

	if got := c.SplitText("", 40); len(got) != 1 || got[0] != "" {
		t.Fatalf("empty text yields one empty line, got %q", got)
	}
}

func TestRecorder_SplitText(t *testing.T) {
	rec := NewRecorder()
	rec.SetFont("Helvetica", StyleNormal, 10)
	lines := rec.SplitText("aa bb cc dddddddddddddddddddddddddddddd e", rec.measure("aa bb"))
	if len(lines) != 4 || lines[0] != "aa bb" || lines[1] != "cc" || lines[3] != "e" {
		t.Fatalf("unexpected lines %q", lines)
	}
	if got := rec.SplitText("   ", 5); len(got) != 1 || got[0] != "" {
		t.Fatalf("blank text yields one empty line, got %q", got)
	}
}
