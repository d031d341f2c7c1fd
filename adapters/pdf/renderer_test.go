package docpdf

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-docgen/docgen"
	"github.com/google/go-cmp/cmp"
)

func TestRenderer_Disabled(t *testing.T) {
	renderer := Renderer{PDF: ConvertFunc(func(context.Context, docgen.HTMLRequest) ([]byte, error) {
		return []byte("%PDF"), nil
	})}
	_, err := renderer.ConvertPDF(context.Background(), docgen.HTMLRequest{HTML: []byte("<p>x</p>")})
	if !docgen.IsUnsupported(err) {
		t.Fatalf("expected unsupported, got %v", docgen.KindFromError(err))
	}
}

func TestRenderer_MissingEngine(t *testing.T) {
	renderer := Renderer{Enabled: true}
	_, err := renderer.RasterizePNG(context.Background(), docgen.HTMLRequest{HTML: []byte("<p>x</p>")})
	if !docgen.IsUnsupported(err) {
		t.Fatalf("expected unsupported, got %v", docgen.KindFromError(err))
	}
}

func TestRenderer_ConvertsPDF(t *testing.T) {
	var got docgen.HTMLRequest
	renderer := Renderer{
		Enabled: true,
		PDF: ConvertFunc(func(ctx context.Context, req docgen.HTMLRequest) ([]byte, error) {
			got = req
			return []byte("%PDF-1.4"), nil
		}),
	}
	req := docgen.HTMLRequest{HTML: []byte("<html>ok</html>"), Page: docgen.FullBleedA4()}
	out, err := renderer.ConvertPDF(context.Background(), req)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if string(out) != "%PDF-1.4" {
		t.Fatalf("unexpected output: %q", out)
	}
	if diff := cmp.Diff(req, got); diff != "" {
		t.Fatalf("request mismatch:\n%s", diff)
	}
}

func TestRenderer_PropagatesEngineError(t *testing.T) {
	boom := errors.New("boom")
	renderer := Renderer{
		Enabled: true,
		PNG: RasterizeFunc(func(context.Context, docgen.HTMLRequest) ([]byte, error) {
			return nil, boom
		}),
	}
	if _, err := renderer.RasterizePNG(context.Background(), docgen.HTMLRequest{HTML: []byte("x")}); !errors.Is(err, boom) {
		t.Fatalf("expected engine error, got %v", err)
	}
}

func TestRenderer_MaxHTMLBytes(t *testing.T) {
	renderer := Renderer{
		Enabled: true,
		PDF: ConvertFunc(func(context.Context, docgen.HTMLRequest) ([]byte, error) {
			return []byte("pdf"), nil
		}),
		MaxHTMLBytes: 4,
	}
	_, err := renderer.ConvertPDF(context.Background(), docgen.HTMLRequest{HTML: []byte("0123456789")})
	if docgen.KindFromError(err) != docgen.KindValidation {
		t.Fatalf("expected validation error, got %v", docgen.KindFromError(err))
	}
	_, err = renderer.ConvertPDF(context.Background(), docgen.HTMLRequest{})
	if docgen.KindFromError(err) != docgen.KindValidation {
		t.Fatalf("expected validation error for empty html, got %v", docgen.KindFromError(err))
	}
}

func TestWKHTMLTOPDFPageArgs(t *testing.T) {
	got := wkhtmltopdfPageArgs(docgen.FullBleedA4())
	want := []string{
		"--page-size", "A4",
		"--margin-top", "0mm",
		"--margin-bottom", "0mm",
		"--margin-left", "0mm",
		"--margin-right", "0mm",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("args mismatch:\n%s", diff)
	}
	got = wkhtmltopdfPageArgs(docgen.PageOptions{Landscape: true})
	if diff := cmp.Diff([]string{"--orientation", "Landscape", "--no-background"}, got); diff != "" {
		t.Fatalf("args mismatch:\n%s", diff)
	}
}

func TestWKHTMLTOPDFEngine_MissingBinary(t *testing.T) {
	engine := WKHTMLTOPDFEngine{Command: "wkhtmltopdf-missing-for-tests"}
	_, err := engine.ConvertPDF(context.Background(), docgen.HTMLRequest{HTML: []byte("<p>x</p>")})
	if !docgen.IsUnsupported(err) {
		t.Fatalf("expected unsupported, got %v", err)
	}
}
