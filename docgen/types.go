package docgen

import (
	"context"
	"io"
	"time"
)

// Format is the document output format.
type Format string

const (
	FormatDOCX Format = "docx"
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
	FormatHTML Format = "html"
	FormatPNG  Format = "png"
	FormatJSON Format = "json"
)

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case FormatPDF:
		return "application/pdf"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatPNG:
		return "image/png"
	case FormatJSON:
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

// Font is the user selected document font.
type Font string

const (
	FontCalibri Font = "calibri"
	FontTimes   Font = "times"
	FontPoppins Font = "poppins"
)

// Variant selects how the OPR HTML is wrapped.
type Variant string

const (
	// VariantStandalone is a complete HTML document.
	VariantStandalone Variant = "standalone"
	// VariantPrint adds print CSS and a script that opens the print dialog.
	VariantPrint Variant = "print"
	// VariantFragment is the style and body only, for embedding.
	VariantFragment Variant = "fragment"
)

// Artifact is a rendered document ready for download.
type Artifact struct {
	Filename    string
	ContentType string
	Format      Format
	Data        []byte
	Ref         *ArtifactRef
}

// MinitRenderer materializes a minit document into bytes.
type MinitRenderer interface {
	RenderMinit(ctx context.Context, doc MinitDocument, assets MinitAssets, w io.Writer) error
}

// MinitRendererFunc adapts a function to a MinitRenderer.
type MinitRendererFunc func(ctx context.Context, doc MinitDocument, assets MinitAssets, w io.Writer) error

func (f MinitRendererFunc) RenderMinit(ctx context.Context, doc MinitDocument, assets MinitAssets, w io.Writer) error {
	if f == nil {
		return NewError(KindInternal, "minit renderer is nil", nil)
	}
	return f(ctx, doc, assets, w)
}

// OprRenderer renders an OPR view into HTML.
type OprRenderer interface {
	RenderOpr(ctx context.Context, view OprView, variant Variant, w io.Writer) error
}

// PageOptions carries page settings for HTML conversion.
type PageOptions struct {
	PageSize        string
	Landscape       bool
	PrintBackground bool
	MarginTop       string
	MarginBottom    string
	MarginLeft      string
	MarginRight     string
	Scale           float64
}

// FullBleedA4 is the page setup for the single page OPR.
func FullBleedA4() PageOptions {
	return PageOptions{
		PageSize:        "A4",
		PrintBackground: true,
		MarginTop:       "0mm",
		MarginBottom:    "0mm",
		MarginLeft:      "0mm",
		MarginRight:     "0mm",
	}
}

// HTMLRequest is an HTML document handed to a conversion engine.
type HTMLRequest struct {
	HTML     []byte
	BaseURL  string
	Page     PageOptions
	Selector string
}

// HTMLConverter turns HTML into PDF bytes.
type HTMLConverter interface {
	ConvertPDF(ctx context.Context, req HTMLRequest) ([]byte, error)
}

// Rasterizer turns HTML into PNG bytes.
type Rasterizer interface {
	RasterizePNG(ctx context.Context, req HTMLRequest) ([]byte, error)
}

// ArtifactMeta describes stored artifacts.
type ArtifactMeta struct {
	ContentType string
	Size        int64
	Filename    string
	CreatedAt   time.Time
}

// ArtifactRef references a stored artifact.
type ArtifactRef struct {
	Key  string
	Meta ArtifactMeta
}

// ArtifactStore persists rendered artifacts.
type ArtifactStore interface {
	Put(ctx context.Context, key string, r io.Reader, meta ArtifactMeta) (ArtifactRef, error)
	Open(ctx context.Context, key string) (io.ReadCloser, ArtifactMeta, error)
	Delete(ctx context.Context, key string) error
}

// Logger provides logging hooks.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Errorf(format string, args ...any)
}

// NopLogger is a no-op logger.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any) {}
func (NopLogger) Infof(string, ...any)  {}
func (NopLogger) Errorf(string, ...any) {}
