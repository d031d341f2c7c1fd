package docgen

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"time"
)

// PhotoOptions controls how gallery photos are prepared before rendering.
type PhotoOptions struct {
	// Optimize re-encodes photos to their slot size. When false the
	// original data URIs are embedded as is.
	Optimize bool
	Fit      FitMode
	// Gallery box in millimetres and output density.
	GalleryWidthMM  float64
	GalleryHeightMM float64
	GapMM           float64
	PixelsPerMM     float64
}

// DefaultPhotoOptions sizes photos for the A4 gallery at 2x.
func DefaultPhotoOptions() PhotoOptions {
	return PhotoOptions{
		Optimize:        true,
		Fit:             FitCover,
		GalleryWidthMM:  194,
		GalleryHeightMM: 90,
		GapMM:           2,
		PixelsPerMM:     7.56,
	}
}

// Service runs the export paths for both document kinds.
type Service struct {
	Minit     *MinitRendererRegistry
	Opr       OprRenderer
	PDF       HTMLConverter
	Images    Rasterizer
	Store     ArtifactStore
	Logger    Logger
	Now       func() time.Time
	Filenames FilenameOptions
	Photos    PhotoOptions
	// BaseURL resolves relative asset links when the report is printed or
	// rasterized.
	BaseURL string
}

// NewService creates a service with an empty renderer registry.
func NewService() *Service {
	return &Service{
		Minit:  NewMinitRendererRegistry(),
		Logger: NopLogger{},
		Now:    time.Now,
		Photos: DefaultPhotoOptions(),
	}
}

// GenerateMinitDocx renders the minutes as DOCX.
func (s *Service) GenerateMinitDocx(ctx context.Context, data MinitData, assets MinitAssets) (Artifact, error) {
	return s.GenerateMinit(ctx, data, assets, FormatDOCX)
}

// GenerateMinitPdf renders the minutes as PDF.
func (s *Service) GenerateMinitPdf(ctx context.Context, data MinitData, assets MinitAssets) (Artifact, error) {
	return s.GenerateMinit(ctx, data, assets, FormatPDF)
}

// GenerateMinitAttendance renders the attendance register as XLSX.
func (s *Service) GenerateMinitAttendance(ctx context.Context, data MinitData, assets MinitAssets) (Artifact, error) {
	return s.GenerateMinit(ctx, data, assets, FormatXLSX)
}

// GenerateMinit renders the minutes with the renderer registered for format.
func (s *Service) GenerateMinit(ctx context.Context, data MinitData, assets MinitAssets, format Format) (Artifact, error) {
	if s == nil {
		return Artifact{}, AsGoError(NewError(KindInternal, "service is nil", nil))
	}
	s.defaults()
	if s.Minit == nil {
		return Artifact{}, AsGoError(NewError(KindInternal, "minit renderers are not configured", nil))
	}
	renderer, ok := s.Minit.Resolve(format)
	if !ok {
		return Artifact{}, AsGoError(s.Minit.unsupported(format))
	}
	if err := ValidateMinit(data); err != nil {
		return Artifact{}, AsGoError(err)
	}
	if err := ctx.Err(); err != nil {
		return Artifact{}, AsGoError(err)
	}

	now := s.Now()
	filename, err := MinitFilename(s.Filenames, data, format, now)
	if err != nil {
		return Artifact{}, AsGoError(err)
	}

	doc := BuildMinitDocument(data, now)
	s.Logger.Debugf("minit %s: %d sections, agenda %d..%d", format, len(doc.Sections), doc.Numbers.AgendaStart, doc.Numbers.AgendaEnd)

	var buf bytes.Buffer
	if err := renderer.RenderMinit(ctx, doc, assets, &buf); err != nil {
		s.Logger.Errorf("minit %s render failed: %v", format, err)
		return Artifact{}, AsGoError(renderError("render minit "+string(format), err))
	}
	return s.finish(ctx, filename, format, buf.Bytes())
}

// GenerateOprHTML renders the report as a standalone HTML document. Photos
// are optional here so the page can be previewed while editing.
func (s *Service) GenerateOprHTML(ctx context.Context, data OprData) (Artifact, error) {
	return s.generateOprHTML(ctx, data, VariantStandalone, false)
}

// GenerateOprPrint renders the report as HTML that opens the print dialog.
func (s *Service) GenerateOprPrint(ctx context.Context, data OprData) (Artifact, error) {
	return s.generateOprHTML(ctx, data, VariantPrint, true)
}

// GenerateOprFragment renders only the report styles and body markup so the
// result can be embedded in another page.
func (s *Service) GenerateOprFragment(ctx context.Context, data OprData) (Artifact, error) {
	return s.generateOprHTML(ctx, data, VariantFragment, false)
}

func (s *Service) generateOprHTML(ctx context.Context, data OprData, variant Variant, requirePhotos bool) (Artifact, error) {
	if s == nil {
		return Artifact{}, AsGoError(NewError(KindInternal, "service is nil", nil))
	}
	s.defaults()
	html, filename, err := s.renderOpr(ctx, data, variant, FormatHTML, requirePhotos)
	if err != nil {
		return Artifact{}, AsGoError(err)
	}
	return s.finish(ctx, filename, FormatHTML, html)
}

// GenerateOprPdf prints the report to a full bleed A4 PDF.
func (s *Service) GenerateOprPdf(ctx context.Context, data OprData) (Artifact, error) {
	if s == nil {
		return Artifact{}, AsGoError(NewError(KindInternal, "service is nil", nil))
	}
	s.defaults()
	if s.PDF == nil {
		return Artifact{}, AsGoError(NewError(KindUnsupported, "PDF engine is not configured", nil))
	}
	html, filename, err := s.renderOpr(ctx, data, VariantStandalone, FormatPDF, true)
	if err != nil {
		return Artifact{}, AsGoError(err)
	}
	out, err := s.PDF.ConvertPDF(ctx, HTMLRequest{HTML: html, Page: FullBleedA4(), BaseURL: s.BaseURL})
	if err != nil {
		s.Logger.Errorf("opr pdf failed: %v", err)
		return Artifact{}, AsGoError(renderError("convert opr to pdf", err))
	}
	return s.finish(ctx, filename, FormatPDF, out)
}

// GenerateOprImage rasterizes the report page to PNG.
func (s *Service) GenerateOprImage(ctx context.Context, data OprData) (Artifact, error) {
	if s == nil {
		return Artifact{}, AsGoError(NewError(KindInternal, "service is nil", nil))
	}
	s.defaults()
	if s.Images == nil {
		return Artifact{}, AsGoError(NewError(KindUnsupported, MsgImageUnsupported, nil))
	}
	html, filename, err := s.renderOpr(ctx, data, VariantStandalone, FormatPNG, true)
	if err != nil {
		return Artifact{}, AsGoError(err)
	}
	out, err := s.Images.RasterizePNG(ctx, HTMLRequest{HTML: html, Page: FullBleedA4(), Selector: ".container", BaseURL: s.BaseURL})
	if err != nil {
		s.Logger.Errorf("opr png failed: %v", err)
		if IsUnsupported(err) {
			return Artifact{}, AsGoError(NewError(KindUnsupported, MsgImageUnsupported, err))
		}
		return Artifact{}, AsGoError(renderError("rasterize opr", err))
	}
	return s.finish(ctx, filename, FormatPNG, out)
}

// OprJob is the payload handed to an offline renderer.
type OprJob struct {
	Version     int       `json:"version"`
	GeneratedAt time.Time `json:"generatedAt"`
	Data        OprData   `json:"data"`
}

// GenerateOprJob writes the report as a JSON job payload.
func (s *Service) GenerateOprJob(ctx context.Context, data OprData) (Artifact, error) {
	if s == nil {
		return Artifact{}, AsGoError(NewError(KindInternal, "service is nil", nil))
	}
	s.defaults()
	if err := ValidateOpr(data, true); err != nil {
		return Artifact{}, AsGoError(err)
	}
	now := s.Now()
	filename, err := OprFilename(s.Filenames, data, FormatJSON, now)
	if err != nil {
		return Artifact{}, AsGoError(err)
	}
	payload, err := json.MarshalIndent(OprJob{Version: 1, GeneratedAt: now.UTC(), Data: data}, "", "  ")
	if err != nil {
		return Artifact{}, AsGoError(NewError(KindInternal, "encode opr job", err))
	}
	return s.finish(ctx, filename, FormatJSON, payload)
}

func (s *Service) renderOpr(ctx context.Context, data OprData, variant Variant, format Format, requirePhotos bool) ([]byte, string, error) {
	if s.Opr == nil {
		return nil, "", NewError(KindInternal, "opr renderer is not configured", nil)
	}
	if err := ValidateOpr(data, requirePhotos); err != nil {
		return nil, "", err
	}
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	now := s.Now()
	filename, err := OprFilename(s.Filenames, data, format, now)
	if err != nil {
		return nil, "", err
	}

	view := BuildOprView(data, now)
	view.Fit = s.Photos.Fit
	if s.Photos.Optimize {
		s.preparePhotos(&view)
	}
	s.Logger.Debugf("opr %s: density=%s grid=%s", format, view.Density, view.Grid.Name)

	var buf bytes.Buffer
	if err := s.Opr.RenderOpr(ctx, view, variant, &buf); err != nil {
		s.Logger.Errorf("opr render failed: %v", err)
		return nil, "", renderError("render opr html", err)
	}
	return buf.Bytes(), filename, nil
}

// preparePhotos resizes each photo to its slot. A photo that fails to decode
// keeps its original source.
func (s *Service) preparePhotos(view *OprView) {
	opts := s.Photos
	if opts.GalleryWidthMM <= 0 || opts.GalleryHeightMM <= 0 || opts.PixelsPerMM <= 0 {
		return
	}
	heightPx := opts.GalleryHeightMM * opts.PixelsPerMM / float64(max(view.Grid.Rows, 1))
	for i, photo := range view.Photos {
		aspect := view.Grid.SlotAspect(photo.Slot, opts.GalleryWidthMM, opts.GalleryHeightMM, opts.GapMM)
		h := int(math.Round(heightPx))
		w := int(math.Round(heightPx * aspect))
		src, err := PreparePhoto(photo.Src, w, h, opts.Fit)
		if err != nil {
			s.Logger.Errorf("photo %d skipped resize: %v", photo.Slot.Index, err)
			continue
		}
		view.Photos[i].Src = src
	}
}

func (s *Service) finish(ctx context.Context, filename string, format Format, data []byte) (Artifact, error) {
	artifact := Artifact{
		Filename:    filename,
		ContentType: format.ContentType(),
		Format:      format,
		Data:        data,
	}
	if s.Store != nil {
		ref, err := s.Store.Put(ctx, filename, bytes.NewReader(data), ArtifactMeta{
			ContentType: artifact.ContentType,
			Filename:    filename,
			CreatedAt:   s.Now(),
		})
		if err != nil {
			return Artifact{}, AsGoError(NewError(KindInternal, "store artifact", err))
		}
		artifact.Ref = &ref
	}
	s.Logger.Infof("generated %s (%d bytes)", filename, len(data))
	return artifact, nil
}

func (s *Service) defaults() {
	if s.Now == nil {
		s.Now = time.Now
	}
	if s.Logger == nil {
		s.Logger = NopLogger{}
	}
	if s.Photos.Fit == "" {
		s.Photos.Fit = FitCover
	}
}

// renderError keeps typed errors and context errors intact and marks
// everything else as a render failure.
func renderError(msg string, err error) error {
	switch KindFromError(err) {
	case KindInternal:
		return NewError(KindRender, msg, err)
	default:
		return err
	}
}
