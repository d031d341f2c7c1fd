package doctemplate

import (
	"context"
	"embed"
	"io"
	"io/fs"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/goliatone/go-docgen/docgen"
)

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

// DefaultPrintDelay is how long the print variant waits after load before
// opening the print dialog.
const DefaultPrintDelay = 800

var variantTemplates = map[docgen.Variant]string{
	docgen.VariantStandalone: "opr.tpl",
	docgen.VariantPrint:      "opr.tpl",
	docgen.VariantFragment:   "opr_fragment.tpl",
}

// OprRenderer renders OPR views with pongo2.
type OprRenderer struct {
	// Templates overrides the embedded template set. It must provide
	// opr.tpl, opr_fragment.tpl, opr_style.tpl and opr_body.tpl.
	Templates fs.FS
	// PrintDelayMS delays window.print() in the print variant.
	PrintDelayMS int

	once      sync.Once
	templates map[string]*pongo2.Template
	err       error
}

// NewOprRenderer creates a renderer over the embedded templates.
func NewOprRenderer() *OprRenderer {
	return &OprRenderer{PrintDelayMS: DefaultPrintDelay}
}

// RenderOpr writes the report for view in the requested variant.
func (r *OprRenderer) RenderOpr(ctx context.Context, view docgen.OprView, variant docgen.Variant, w io.Writer) error {
	if r == nil {
		return docgen.NewError(docgen.KindInternal, "opr renderer is nil", nil)
	}
	if w == nil {
		return docgen.NewError(docgen.KindValidation, "writer is required", nil)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if variant == "" {
		variant = docgen.VariantStandalone
	}
	name, ok := variantTemplates[variant]
	if !ok {
		return docgen.NewError(docgen.KindUnsupported, "unknown opr variant "+string(variant), nil)
	}

	r.once.Do(r.load)
	if r.err != nil {
		return r.err
	}
	tmpl := r.templates[name]
	if err := tmpl.ExecuteWriter(r.context(view, variant), w); err != nil {
		return docgen.NewError(docgen.KindRender, "execute opr template", err)
	}
	return nil
}

func (r *OprRenderer) load() {
	source := r.Templates
	if source == nil {
		sub, err := fs.Sub(embeddedTemplates, "templates")
		if err != nil {
			r.err = docgen.NewError(docgen.KindInternal, "open embedded templates", err)
			return
		}
		source = sub
	}
	set := pongo2.NewSet("docgen-opr", pongo2.NewFSLoader(source))
	r.templates = make(map[string]*pongo2.Template, len(variantTemplates))
	for _, name := range variantTemplates {
		if _, ok := r.templates[name]; ok {
			continue
		}
		tmpl, err := set.FromFile(name)
		if err != nil {
			r.err = docgen.NewError(docgen.KindInternal, "load opr template "+name, err)
			return
		}
		r.templates[name] = tmpl
	}
}

func (r *OprRenderer) context(view docgen.OprView, variant docgen.Variant) pongo2.Context {
	photos := make([]map[string]any, 0, len(view.Photos))
	for _, p := range view.Photos {
		photos = append(photos, map[string]any{"src": p.Src, "index": p.Slot.Index})
	}
	objectFit := "cover"
	if view.Fit == docgen.FitContain {
		objectFit = "contain"
	}
	delay := r.PrintDelayMS
	if delay <= 0 {
		delay = DefaultPrintDelay
	}
	return pongo2.Context{
		"title":             view.Title,
		"density":           string(view.Density),
		"font_family":       view.FontFamily,
		"import_poppins":    view.ImportPoppins,
		"badge":             docgen.OprBadge,
		"school_name":       view.SchoolName,
		"school_code":       view.SchoolCode,
		"school_address":    view.SchoolAddress,
		"year":              view.Year,
		"logo1":             view.Logo1,
		"logo2":             view.Logo2,
		"nama_program":      view.NamaProgram,
		"date_time_day":     view.DateTimeDay,
		"tempat":            view.Tempat,
		"nama_pgb":          view.NamaPgb,
		"officers":          view.Officers,
		"kehadiran_sasaran": view.KehadiranSasaran,
		"activities":        view.Activities,
		"isu_masalah":       view.IsuMasalah,
		"prepared_by":       view.PreparedBy,
		"photos":            photos,
		"layout":            view.Grid.Name,
		"grid_css":          view.GridCSS,
		"object_fit":        objectFit,
		"no_photos_message": docgen.NoPhotosMessage,
		"print":             variant == docgen.VariantPrint,
		"print_delay_ms":    delay,
	}
}
