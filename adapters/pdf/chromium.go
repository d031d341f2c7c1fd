package docpdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"os/exec"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/goliatone/go-docgen/docgen"
)

const (
	defaultPDFScale = 1.0
	// DefaultDeviceScale is the screenshot pixel ratio.
	DefaultDeviceScale = 2.0
	// A4 at 96 dpi.
	a4WidthPx  = 794
	a4HeightPx = 1123
)

var lengthPattern = regexp.MustCompile(`^\s*([0-9]+(?:\.[0-9]+)?)\s*([a-zA-Z]*)\s*$`)

// lengthUnits is how many of each unit make an inch.
var lengthUnits = map[string]float64{
	"":   1,
	"in": 1,
	"cm": 2.54,
	"mm": 25.4,
	"pt": 72,
	"px": 96,
}

// paperSizesMM holds portrait paper sizes, width then height.
var paperSizesMM = map[string][2]float64{
	"A3":     {297, 420},
	"A4":     {210, 297},
	"A5":     {148, 210},
	"LETTER": {215.9, 279.4},
	"LEGAL":  {215.9, 355.6},
}

// waitForAssets resolves once fonts are loaded and every image has settled.
const waitForAssets = `Promise.all([
  document.fonts ? document.fonts.ready : Promise.resolve(),
  ...Array.from(document.images).map(img => img.complete ? Promise.resolve() :
    new Promise(done => { img.onload = done; img.onerror = done; }))
]).then(() => true)`

// ChromiumEngine renders PDF and PNG output using a shared headless Chromium
// instance.
type ChromiumEngine struct {
	BrowserPath string
	Headless    bool
	Timeout     time.Duration
	Args        []string
	// BlockExternal stops the page from fetching http(s) resources.
	BlockExternal bool
	// DeviceScale is the screenshot pixel ratio; zero means 2.
	DeviceScale float64

	initOnce      sync.Once
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// ConvertPDF prints the HTML to PDF.
func (e *ChromiumEngine) ConvertPDF(ctx context.Context, req docgen.HTMLRequest) ([]byte, error) {
	if e == nil {
		return nil, docgen.NewError(docgen.KindInternal, "chromium engine is nil", nil)
	}
	params, err := buildPrintToPDFParams(req.Page)
	if err != nil {
		return nil, err
	}

	var pdf []byte
	err = e.run(ctx, req, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		pdf, _, err = params.Do(ctx)
		return err
	}))
	if err != nil {
		return nil, chromiumError("chromium pdf render failed", err)
	}
	return pdf, nil
}

// RasterizePNG screenshots the element matched by req.Selector, or the whole
// page when no selector is set, on a white background.
func (e *ChromiumEngine) RasterizePNG(ctx context.Context, req docgen.HTMLRequest) ([]byte, error) {
	if e == nil {
		return nil, docgen.NewError(docgen.KindInternal, "chromium engine is nil", nil)
	}
	scale := e.DeviceScale
	if scale <= 0 {
		scale = DefaultDeviceScale
	}

	var png []byte
	capture := chromedp.FullScreenshot(&png, 100)
	if sel := strings.TrimSpace(req.Selector); sel != "" {
		capture = chromedp.Screenshot(sel, &png, chromedp.ByQuery, chromedp.NodeVisible)
	}
	err := e.run(ctx, req,
		emulation.SetDeviceMetricsOverride(a4WidthPx, a4HeightPx, scale, false),
		emulation.SetDefaultBackgroundColorOverride().WithColor(&cdp.RGBA{R: 255, G: 255, B: 255, A: 1}),
		capture,
	)
	if err != nil {
		return nil, chromiumError("chromium png render failed", err)
	}
	return png, nil
}

// run loads the HTML into a fresh tab, waits for its assets and then runs
// the capture actions.
func (e *ChromiumEngine) run(ctx context.Context, req docgen.HTMLRequest, capture ...chromedp.Action) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.ensureBrowser(); err != nil {
		return docgen.NewError(docgen.KindUnsupported, "chromium engine init failed", err)
	}

	tabCtx, cancel := chromedp.NewContext(e.browserCtx)
	defer cancel()

	execCtx, cancelReq := context.WithCancel(tabCtx)
	defer cancelReq()
	go func() {
		select {
		case <-ctx.Done():
			cancelReq()
		case <-execCtx.Done():
		}
	}()
	if e.Timeout > 0 {
		var cancelTimeout context.CancelFunc
		execCtx, cancelTimeout = context.WithTimeout(execCtx, e.Timeout)
		defer cancelTimeout()
	}

	htmlInput := injectBaseURL(req.HTML, req.BaseURL)

	var actions []chromedp.Action
	if e.BlockExternal {
		actions = append(actions,
			network.Enable(),
			network.SetBlockedURLs([]string{"http://*", "https://*"}),
		)
	}
	var ready bool
	actions = append(actions,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, string(htmlInput)).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(waitForAssets, &ready, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithAwaitPromise(true)
		}),
	)
	actions = append(actions, capture...)

	err := chromedp.Run(execCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// Close releases Chromium resources if they have been initialized.
func (e *ChromiumEngine) Close() error {
	if e == nil {
		return nil
	}
	if e.browserCancel != nil {
		e.browserCancel()
	}
	if e.allocCancel != nil {
		e.allocCancel()
	}
	return nil
}

// ensureBrowser starts the shared browser once. A configured path that does
// not resolve leaves the engine without a browser for its lifetime.
func (e *ChromiumEngine) ensureBrowser() error {
	e.initOnce.Do(func() {
		if e.BrowserPath != "" {
			if _, err := exec.LookPath(e.BrowserPath); err != nil {
				return
			}
		}
		e.allocCtx, e.allocCancel = chromedp.NewExecAllocator(context.Background(), e.allocatorOptions()...)
		e.browserCtx, e.browserCancel = chromedp.NewContext(e.allocCtx)
	})
	if e.browserCtx == nil {
		return fmt.Errorf("chromium binary %q: %w", e.BrowserPath, exec.ErrNotFound)
	}
	return nil
}

func (e *ChromiumEngine) allocatorOptions() []chromedp.ExecAllocatorOption {
	options := slices.Clone(chromedp.DefaultExecAllocatorOptions[:])
	if e.BrowserPath != "" {
		options = append(options, chromedp.ExecPath(e.BrowserPath))
	}
	options = append(options, chromedp.Flag("headless", e.Headless))
	return append(options, allocatorOptionsFromArgs(e.Args)...)
}

// chromiumError reports a missing browser as unsupported so callers can
// offer another format.
func chromiumError(msg string, err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, exec.ErrNotFound):
		return docgen.NewError(docgen.KindUnsupported, msg, err)
	case docgen.KindFromError(err) != docgen.KindInternal:
		return err
	}
	return docgen.NewError(docgen.KindRender, msg, err)
}

func buildPrintToPDFParams(opts docgen.PageOptions) (*page.PrintToPDFParams, error) {
	scale := opts.Scale
	if scale == 0 {
		scale = defaultPDFScale
	}
	if scale < 0.1 || scale > 2.0 {
		return nil, docgen.NewError(docgen.KindValidation, "pdf scale must be between 0.1 and 2.0", nil)
	}
	params := page.PrintToPDF().
		WithScale(scale).
		WithLandscape(opts.Landscape).
		WithPrintBackground(opts.PrintBackground)

	if opts.PageSize == "" {
		params = params.WithPreferCSSPageSize(true)
	} else {
		size, ok := paperSizesMM[strings.ToUpper(strings.TrimSpace(opts.PageSize))]
		if !ok {
			return nil, docgen.NewError(docgen.KindValidation, "unsupported pdf page size: "+opts.PageSize, nil)
		}
		params = params.WithPaperWidth(size[0] / lengthUnits["mm"]).WithPaperHeight(size[1] / lengthUnits["mm"])
	}

	margins := []struct {
		value string
		apply func(float64)
	}{
		{opts.MarginTop, func(v float64) { params = params.WithMarginTop(v) }},
		{opts.MarginRight, func(v float64) { params = params.WithMarginRight(v) }},
		{opts.MarginBottom, func(v float64) { params = params.WithMarginBottom(v) }},
		{opts.MarginLeft, func(v float64) { params = params.WithMarginLeft(v) }},
	}
	for _, m := range margins {
		if m.value == "" {
			continue
		}
		inches, err := parseLengthInches(m.value)
		if err != nil {
			return nil, err
		}
		m.apply(inches)
	}
	return params, nil
}

// parseLengthInches reads a CSS style length; a bare number is inches.
func parseLengthInches(value string) (float64, error) {
	m := lengthPattern.FindStringSubmatch(value)
	if m == nil {
		return 0, docgen.NewError(docgen.KindValidation, "invalid pdf length: "+value, nil)
	}
	perInch, ok := lengthUnits[strings.ToLower(m[2])]
	if !ok {
		return 0, docgen.NewError(docgen.KindValidation, "unsupported pdf length unit: "+m[2], nil)
	}
	amount, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, docgen.NewError(docgen.KindValidation, "invalid pdf length: "+value, err)
	}
	return amount / perInch, nil
}

// injectBaseURL adds a <base> tag right after <head>, or in front of the
// document when there is no head. Documents with their own base are kept.
func injectBaseURL(doc []byte, baseURL string) []byte {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return doc
	}
	lower := bytes.ToLower(doc)
	if bytes.Contains(lower, []byte("<base")) {
		return doc
	}

	tag := []byte(`<base href="` + html.EscapeString(baseURL) + `">`)
	at := 0
	if head := bytes.Index(lower, []byte("<head")); head >= 0 {
		if end := bytes.IndexByte(lower[head:], '>'); end >= 0 {
			at = head + end + 1
		}
	}
	out := make([]byte, 0, len(doc)+len(tag))
	out = append(out, doc[:at]...)
	out = append(out, tag...)
	return append(out, doc[at:]...)
}

// allocatorOptionsFromArgs turns "--name=value" and "--flag" strings into
// allocator flags.
func allocatorOptionsFromArgs(args []string) []chromedp.ExecAllocatorOption {
	var options []chromedp.ExecAllocatorOption
	for _, arg := range args {
		name, value, hasValue := strings.Cut(strings.TrimLeft(strings.TrimSpace(arg), "-"), "=")
		switch {
		case name == "":
		case hasValue:
			options = append(options, chromedp.Flag(name, value))
		default:
			options = append(options, chromedp.Flag(name, true))
		}
	}
	return options
}
