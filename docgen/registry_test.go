package docgen

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMinitRendererRegistry(t *testing.T) {
	noop := MinitRendererFunc(func(context.Context, MinitDocument, MinitAssets, io.Writer) error { return nil })
	reg := NewMinitRendererRegistry()

	if err := reg.Register(FormatPDF, noop); err != nil {
		t.Fatalf("register pdf: %v", err)
	}
	if err := reg.Register(FormatDOCX, noop); err != nil {
		t.Fatalf("register docx: %v", err)
	}
	if err := reg.Register(FormatDOCX, noop); KindFromError(err) != KindValidation {
		t.Fatalf("expected duplicate format to be rejected, got %v", err)
	}
	if err := reg.Register("", noop); KindFromError(err) != KindValidation {
		t.Fatalf("expected empty format to be rejected, got %v", err)
	}
	if err := reg.Register(FormatXLSX, nil); KindFromError(err) != KindValidation {
		t.Fatalf("expected nil renderer to be rejected, got %v", err)
	}

	if diff := cmp.Diff([]Format{FormatDOCX, FormatPDF}, reg.Formats()); diff != "" {
		t.Fatalf("formats mismatch:\n%s", diff)
	}
	if _, ok := reg.Resolve(FormatXLSX); ok {
		t.Fatalf("xlsx was never registered")
	}

	err := reg.unsupported(FormatXLSX)
	if !IsUnsupported(err) || !strings.Contains(err.Error(), "available: docx, pdf") {
		t.Fatalf("unexpected unsupported error %v", err)
	}
}
