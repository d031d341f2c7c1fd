package docpdf

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/goliatone/go-docgen/docgen"
)

// DefaultMaxHTMLBytes guards the HTML handed to an engine.
const DefaultMaxHTMLBytes int64 = 8 * 1024 * 1024

// PDFEngine is satisfied by ChromiumEngine and WKHTMLTOPDFEngine.
type PDFEngine = docgen.HTMLConverter

// PNGEngine is satisfied by ChromiumEngine.
type PNGEngine = docgen.Rasterizer

// ConvertFunc adapts a function to a PDFEngine.
type ConvertFunc func(ctx context.Context, req docgen.HTMLRequest) ([]byte, error)

func (f ConvertFunc) ConvertPDF(ctx context.Context, req docgen.HTMLRequest) ([]byte, error) {
	if f == nil {
		return nil, errors.New("pdf engine func is nil")
	}
	return f(ctx, req)
}

// RasterizeFunc adapts a function to a PNGEngine.
type RasterizeFunc func(ctx context.Context, req docgen.HTMLRequest) ([]byte, error)

func (f RasterizeFunc) RasterizePNG(ctx context.Context, req docgen.HTMLRequest) ([]byte, error) {
	if f == nil {
		return nil, errors.New("png engine func is nil")
	}
	return f(ctx, req)
}

// Renderer gates the engines. A disabled renderer or a missing engine
// reports unsupported so the caller can suggest another format.
type Renderer struct {
	Enabled      bool
	PDF          PDFEngine
	PNG          PNGEngine
	MaxHTMLBytes int64
}

// ConvertPDF converts HTML to PDF through the configured engine.
func (r Renderer) ConvertPDF(ctx context.Context, req docgen.HTMLRequest) ([]byte, error) {
	if err := r.check(req, r.PDF != nil, "pdf"); err != nil {
		return nil, err
	}
	return r.PDF.ConvertPDF(ctx, req)
}

// RasterizePNG converts HTML to PNG through the configured engine.
func (r Renderer) RasterizePNG(ctx context.Context, req docgen.HTMLRequest) ([]byte, error) {
	if err := r.check(req, r.PNG != nil, "png"); err != nil {
		return nil, err
	}
	return r.PNG.RasterizePNG(ctx, req)
}

func (r Renderer) check(req docgen.HTMLRequest, hasEngine bool, format string) error {
	if !r.Enabled {
		return docgen.NewError(docgen.KindUnsupported, format+" renderer is disabled", nil)
	}
	if !hasEngine {
		return docgen.NewError(docgen.KindUnsupported, format+" renderer has no engine", nil)
	}
	if len(req.HTML) == 0 {
		return docgen.NewError(docgen.KindValidation, format+" renderer requires html", nil)
	}
	limit := r.MaxHTMLBytes
	if limit <= 0 {
		limit = DefaultMaxHTMLBytes
	}
	if int64(len(req.HTML)) > limit {
		return docgen.NewError(docgen.KindValidation, format+" renderer max html bytes exceeded", nil)
	}
	return nil
}

// WKHTMLTOPDFEngine invokes wkhtmltopdf for HTML-to-PDF conversion.
type WKHTMLTOPDFEngine struct {
	Command string
	Args    []string
	Env     []string
	Timeout time.Duration
}

// ConvertPDF executes wkhtmltopdf using stdin/stdout for HTML/PDF.
func (e WKHTMLTOPDFEngine) ConvertPDF(ctx context.Context, req docgen.HTMLRequest) ([]byte, error) {
	cmdPath := strings.TrimSpace(e.Command)
	if cmdPath == "" {
		cmdPath = "wkhtmltopdf"
	}
	if ctx == nil {
		ctx = context.Background()
	}
	cmdCtx := ctx
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		cmdCtx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	args := append(wkhtmltopdfPageArgs(req.Page), e.Args...)
	args = append(args, "-", "-")
	cmd := exec.CommandContext(cmdCtx, cmdPath, args...)
	if len(e.Env) > 0 {
		cmd.Env = append(os.Environ(), e.Env...)
	}
	cmd.Stdin = bytes.NewReader(injectBaseURL(req.HTML, req.BaseURL))

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, docgen.NewError(docgen.KindUnsupported, "wkhtmltopdf is not installed", err)
		}
		if ctxErr := cmdCtx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		message := strings.TrimSpace(stderr.String())
		if message == "" {
			message = "wkhtmltopdf failed"
		}
		return nil, docgen.NewError(docgen.KindRender, message, err)
	}
	return stdout.Bytes(), nil
}

func wkhtmltopdfPageArgs(opts docgen.PageOptions) []string {
	var args []string
	if opts.PageSize != "" {
		args = append(args, "--page-size", opts.PageSize)
	}
	if opts.Landscape {
		args = append(args, "--orientation", "Landscape")
	}
	if !opts.PrintBackground {
		args = append(args, "--no-background")
	}
	for _, m := range []struct{ flag, value string }{
		{"--margin-top", opts.MarginTop},
		{"--margin-bottom", opts.MarginBottom},
		{"--margin-left", opts.MarginLeft},
		{"--margin-right", opts.MarginRight},
	} {
		if m.value != "" {
			args = append(args, m.flag, m.value)
		}
	}
	return args
}
