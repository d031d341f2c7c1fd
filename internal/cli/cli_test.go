package cli

import (
	"bytes"
	"encoding/base64"
	stderrors "errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	errorslib "github.com/goliatone/go-errors"

	"github.com/goliatone/go-docgen/docgen"
)

type harness struct {
	dir string
	out *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DOCGEN_OUTPUT_DIR", filepath.Join(dir, "out"))
	t.Setenv("DOCGEN_SETTINGS_DSN", "file:"+filepath.Join(dir, "settings.db"))
	t.Setenv("DOCGEN_PDF_ENGINE", "none")
	t.Setenv("DOCGEN_LOG_LEVEL", "error")
	return &harness{dir: dir, out: &bytes.Buffer{}}
}

func (h *harness) run(t *testing.T, args ...string) error {
	t.Helper()
	h.out.Reset()
	c := New(io.Discard, LogInfo)
	c.Out = h.out
	c.Now = func() time.Time { return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC) }
	root := c.RootCommand()
	root.SetArgs(append([]string{"--env-file", filepath.Join(h.dir, "absent.env")}, args...))
	return root.Execute()
}

func (h *harness) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(h.dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func textCode(t *testing.T, err error) string {
	t.Helper()
	var mapped *errorslib.Error
	if !stderrors.As(err, &mapped) {
		t.Fatalf("expected go-errors error, got %T: %v", err, err)
	}
	return mapped.TextCode
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		img.Set(x, x, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

const minitRecord = `{
  "bilangan": "3",
  "tarikh": "2025-03-10",
  "masa": "14:30",
  "tempat": "Bilik Mesyuarat",
  "panitia": "Panitia Sains",
  "ahli": [{"id": "1", "nama": "Aminah", "jawatan": "Ketua Panitia"}],
  "sections": {"ucapanPengerusi": true, "halHalLain": true, "ucapanPenangguhan": true},
  "ucapanPengerusi": ["Selamat datang"]
}`

func TestMinitCommand_WritesDocx(t *testing.T) {
	h := newHarness(t)
	record := h.write(t, "minit.json", minitRecord)

	if err := h.run(t, "minit", record, "--format", "docx"); err != nil {
		t.Fatalf("minit: %v", err)
	}
	path := strings.TrimSpace(h.out.String())
	if filepath.Base(path) != "MINIT_MESYUARAT_3_2025.docx" {
		t.Fatalf("unexpected artifact path %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Fatalf("expected a zip package")
	}
}

func TestMinitCommand_AllFormats(t *testing.T) {
	h := newHarness(t)
	record := h.write(t, "minit.yaml", "bilangan: \"4\"\ntarikh: \"2025-03-10\"\npanitia: Panitia Sains\n")

	for format, prefix := range map[string]string{"pdf": "%PDF-", "xlsx": "PK"} {
		if err := h.run(t, "minit", record, "-f", format); err != nil {
			t.Fatalf("%s: %v", format, err)
		}
		data, err := os.ReadFile(strings.TrimSpace(h.out.String()))
		if err != nil {
			t.Fatalf("%s: read artifact: %v", format, err)
		}
		if !bytes.HasPrefix(data, []byte(prefix)) {
			t.Fatalf("%s: unexpected header %q", format, data[:min(len(data), 8)])
		}
	}
}

func TestMinitCommand_Validation(t *testing.T) {
	h := newHarness(t)
	record := h.write(t, "minit.json", `{"bilangan": "1"}`)
	err := h.run(t, "minit", record)
	if code := textCode(t, err); code != "validation" {
		t.Fatalf("expected validation, got %q (%v)", code, err)
	}
}

func TestOprCommand_HTMLWithPhotos(t *testing.T) {
	h := newHarness(t)
	record := h.write(t, "opr.json", `{"namaProgram": "Hari Sukan <2025>", "tarikh": "2025-03-10", "aktiviti": ["Larian"]}`)
	photo := filepath.Join(h.dir, "photo.png")
	if err := os.WriteFile(photo, pngBytes(t), 0o644); err != nil {
		t.Fatalf("write photo: %v", err)
	}

	if err := h.run(t, "opr", record, "--format", "html", "--print", "--photo", photo); err != nil {
		t.Fatalf("opr: %v", err)
	}
	data, err := os.ReadFile(strings.TrimSpace(h.out.String()))
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	html := string(data)
	if !strings.Contains(html, "Hari Sukan &lt;2025&gt;") {
		t.Fatalf("expected escaped program name in html")
	}
	if !strings.Contains(html, "window.print") {
		t.Fatalf("expected print script")
	}
	if !strings.Contains(html, "data:image/") {
		t.Fatalf("expected embedded photo")
	}
}

func TestOprCommand_PNGWithoutEngine(t *testing.T) {
	h := newHarness(t)
	record := h.write(t, "opr.json", `{"namaProgram": "Hari Sukan", "gambarBase64": ["data:image/png;base64,`+base64.StdEncoding.EncodeToString(pngBytes(t))+`"]}`)
	err := h.run(t, "opr", record, "--format", "png")
	if code := textCode(t, err); code != "unsupported" {
		t.Fatalf("expected unsupported, got %q (%v)", code, err)
	}
	if !strings.Contains(err.Error(), docgen.MsgImageUnsupported) || !strings.Contains(err.Error(), "--format html --print") {
		t.Fatalf("expected print suggestion without an engine, got %v", err)
	}
}

func TestOprCommand_PNGSuggestsPDF(t *testing.T) {
	h := newHarness(t)
	t.Setenv("DOCGEN_PDF_ENGINE", "wkhtmltopdf")
	record := h.write(t, "opr.json", `{"namaProgram": "Hari Sukan", "gambarBase64": ["data:image/png;base64,`+base64.StdEncoding.EncodeToString(pngBytes(t))+`"]}`)
	err := h.run(t, "opr", record, "--format", "png")
	if code := textCode(t, err); code != "unsupported" {
		t.Fatalf("expected unsupported, got %q (%v)", code, err)
	}
	if !strings.Contains(err.Error(), docgen.MsgImageUnsupported) || !strings.Contains(err.Error(), "(try --format pdf)") {
		t.Fatalf("expected pdf suggestion, got %v", err)
	}
}

func TestOprCommand_Fragment(t *testing.T) {
	h := newHarness(t)
	record := h.write(t, "opr.json", `{"namaProgram": "Hari Sukan", "aktiviti": ["Larian"]}`)

	if err := h.run(t, "opr", record, "--format", "html", "--fragment", "--base-url", "https://assets.sekolah.local/"); err != nil {
		t.Fatalf("opr fragment: %v", err)
	}
	data, err := os.ReadFile(strings.TrimSpace(h.out.String()))
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	html := string(data)
	if strings.Contains(html, "<html") || !strings.HasPrefix(strings.TrimSpace(html), "<style>") {
		t.Fatalf("expected style and body markup only, got %.80q", html)
	}
	if !strings.Contains(html, "Hari Sukan") {
		t.Fatalf("expected program name in fragment")
	}

	err = h.run(t, "opr", record, "--format", "pdf", "--fragment")
	if code := textCode(t, err); code != "FRAGMENT_REQUIRES_HTML" {
		t.Fatalf("expected FRAGMENT_REQUIRES_HTML, got %q (%v)", code, err)
	}
}

func TestProfileCommands_FeedMinit(t *testing.T) {
	h := newHarness(t)

	if err := h.run(t, "profile", "create", "Panitia Matematik"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := h.run(t, "profile", "member", "add", "Siti binti Ahmad", "Ketua Panitia"); err != nil {
		t.Fatalf("member add: %v", err)
	}
	if err := h.run(t, "profile", "set", "--school-name", "SK Contoh", "--font", "times"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := h.run(t, "profile", "list"); err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(h.out.String(), "* ") || !strings.Contains(h.out.String(), "Panitia Matematik") {
		t.Fatalf("expected current profile in list, got:\n%s", h.out.String())
	}

	record := h.write(t, "minit.json", `{"bilangan": "2", "tarikh": "2025-03-10"}`)
	if err := h.run(t, "minit", record, "--profile", "-f", "docx"); err != nil {
		t.Fatalf("minit with profile: %v", err)
	}
	if filepath.Base(strings.TrimSpace(h.out.String())) != "MINIT_MESYUARAT_2_2025.docx" {
		t.Fatalf("unexpected artifact %q", h.out.String())
	}
}

func TestArtifactsAndCleanup(t *testing.T) {
	h := newHarness(t)
	record := h.write(t, "opr.json", `{"namaProgram": "Hari Sukan"}`)
	if err := h.run(t, "opr", record, "-f", "html"); err != nil {
		t.Fatalf("opr: %v", err)
	}
	if err := h.run(t, "artifacts"); err != nil {
		t.Fatalf("artifacts: %v", err)
	}
	if !strings.Contains(h.out.String(), "OPR_HARI_SUKAN.html") {
		t.Fatalf("expected listed artifact, got:\n%s", h.out.String())
	}
	if err := h.run(t, "cleanup", "--retention", "1h"); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
}

func TestRootCommand_InvalidConfig(t *testing.T) {
	h := newHarness(t)
	t.Setenv("DOCGEN_PDF_ENGINE", "prince")
	if err := h.run(t, "artifacts"); err == nil || !strings.Contains(err.Error(), "render.pdf_engine") {
		t.Fatalf("expected config validation error, got %v", err)
	}
}

func TestReadImageFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "logo.png")
	if err := os.WriteFile(good, pngBytes(t), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	src, err := readImageFile(good, "logo")
	if err != nil {
		t.Fatalf("read image: %v", err)
	}
	if !strings.HasPrefix(src, "data:image/png;base64,") {
		t.Fatalf("unexpected data uri %q", src[:30])
	}

	bad := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(bad, []byte("hello"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := readImageFile(bad, "logo"); err == nil {
		t.Fatalf("expected text file to be rejected")
	}

	if got := imageContentType("photo.HEIC", []byte{0, 0, 0, 0x18, 'f', 't', 'y', 'p'}); got != "image/heic" {
		t.Fatalf("expected heic by extension, got %q", got)
	}
}
