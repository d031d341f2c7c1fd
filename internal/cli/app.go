package cli

import (
	"context"
	"errors"

	docxrender "github.com/goliatone/go-docgen/adapters/docx"
	pdfcanvas "github.com/goliatone/go-docgen/adapters/gofpdf"
	docpdf "github.com/goliatone/go-docgen/adapters/pdf"
	settingsbun "github.com/goliatone/go-docgen/adapters/settings/bun"
	storefs "github.com/goliatone/go-docgen/adapters/store/fs"
	doctemplate "github.com/goliatone/go-docgen/adapters/template"
	docxlsx "github.com/goliatone/go-docgen/adapters/xlsx"
	"github.com/goliatone/go-docgen/command"
	"github.com/goliatone/go-docgen/config"
	"github.com/goliatone/go-docgen/docgen"
)

// app is the wired document pipeline for one command run.
type app struct {
	service  *docgen.Service
	store    *storefs.Store
	engine   *docpdf.ChromiumEngine
	kv       *settingsbun.KV
	settings *docgen.SettingsStore

	minit   *command.GenerateMinitHandler
	opr     *command.GenerateOprHandler
	cleanup *command.CleanupArtifactsHandler
}

// open wires renderers, engines and the artifact store. Settings are opened
// only when withSettings is set so plain renders never touch the database.
func (c *CLI) open(ctx context.Context, withSettings bool) (*app, error) {
	cfg := c.Config

	registry := docgen.NewMinitRendererRegistry()
	docxRenderer := docxrender.NewMinitDocx()
	docxRenderer.Logger = c.Logger
	pdfRenderer := pdfcanvas.NewMinitPDF()
	pdfRenderer.Logger = c.Logger
	for format, renderer := range map[docgen.Format]docgen.MinitRenderer{
		docgen.FormatDOCX: docxRenderer,
		docgen.FormatPDF:  pdfRenderer,
		docgen.FormatXLSX: docxlsx.NewAttendanceXLSX(),
	} {
		if err := registry.Register(format, renderer); err != nil {
			return nil, err
		}
	}

	store := storefs.NewStore(cfg.Output.Dir)
	store.Overwrite = cfg.Output.Overwrite
	store.Now = c.now

	svc := docgen.NewService()
	svc.Minit = registry
	svc.Opr = doctemplate.NewOprRenderer()
	svc.Store = store
	svc.Logger = c.Logger
	svc.Now = c.now
	svc.Photos.Optimize = cfg.Render.OptimizePhotos
	svc.Photos.Fit = docgen.FitMode(cfg.Render.PhotoFit)
	svc.BaseURL = cfg.Render.BaseURL

	a := &app{service: svc, store: store}
	converter := docpdf.Renderer{Enabled: true, MaxHTMLBytes: cfg.Render.MaxHTMLBytes}
	switch cfg.Render.PDFEngine {
	case config.EngineChromium:
		a.engine = &docpdf.ChromiumEngine{
			BrowserPath:   cfg.Chromium.Path,
			Headless:      cfg.Chromium.Headless,
			Timeout:       cfg.Chromium.Timeout,
			Args:          cfg.Chromium.Args,
			BlockExternal: cfg.Chromium.BlockExternal,
			DeviceScale:   cfg.Chromium.DeviceScale,
		}
		converter.PDF = a.engine
		converter.PNG = a.engine
	case config.EngineWKHTMLTOPDF:
		converter.PDF = docpdf.WKHTMLTOPDFEngine{Command: cfg.Render.WKHTMLTOPDF, Timeout: cfg.Chromium.Timeout}
	default:
		converter.Enabled = false
	}
	svc.PDF = converter
	svc.Images = converter

	var profiles command.ProfileSource
	if withSettings {
		kv, err := settingsbun.OpenSQLite(ctx, cfg.Settings.DSN)
		if err != nil {
			_ = a.Close(ctx)
			return nil, err
		}
		a.kv = kv
		a.settings = docgen.NewSettingsStore(kv)
		a.settings.Key = cfg.Settings.Key
		a.settings.Logger = c.Logger
		a.settings.Now = c.now
		if err := a.settings.Load(ctx); err != nil {
			_ = a.Close(ctx)
			return nil, err
		}
		profiles = a.settings
	}

	a.minit = command.NewGenerateMinitHandler(svc, profiles)
	a.opr = command.NewGenerateOprHandler(svc, profiles)
	a.cleanup = command.NewCleanupArtifactsHandler(store, cfg.Output.Retention)
	a.cleanup.Clock = c.now
	return a, nil
}

// Close flushes settings and stops the browser.
func (a *app) Close(ctx context.Context) error {
	if a == nil {
		return nil
	}
	var errs []error
	if a.settings != nil {
		errs = append(errs, a.settings.Close(ctx))
	}
	if a.kv != nil {
		errs = append(errs, a.kv.Close())
	}
	if a.engine != nil {
		errs = append(errs, a.engine.Close())
	}
	return errors.Join(errs...)
}
