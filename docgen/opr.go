package docgen

import (
	"strings"
	"time"
)

// OPR limits and defaults.
const (
	MaxOprActivities = 8
	MaxOprOfficers   = 12

	DefaultSchoolName = "NAMA SEKOLAH"
	DefaultIssue      = "BERJALAN SEPERTI TELAH DIRANCANG"
	OprBadge          = "ONE PAGE REPORT (OPR)"
	NoPhotosMessage   = "Tiada Gambar"
)

// OprPhoto is a gallery image bound to its grid slot.
type OprPhoto struct {
	Src  string
	Slot GridSlot
}

// OprView is everything the OPR template needs. Text is raw; the template
// escapes it on output.
type OprView struct {
	Title         string
	Density       Density
	FontFamily    string
	ImportPoppins bool

	SchoolName    string
	SchoolCode    string
	SchoolAddress string
	Year          string
	Logo1         string
	Logo2         string

	NamaProgram      string
	DateTimeDay      string
	Tempat           string
	NamaPgb          string
	Officers         []string
	KehadiranSasaran string
	Activities       []string
	IsuMasalah       string
	PreparedBy       string

	Photos  []OprPhoto
	Grid    GridLayout
	GridCSS string
	// Fit is how photos fill their slot.
	Fit FitMode
}

// HasPhotos reports whether the gallery has any image.
func (v OprView) HasPhotos() bool {
	return len(v.Photos) > 0
}

// FontFamilyCSS maps a font choice to a CSS font-family value.
func FontFamilyCSS(font Font) string {
	switch font {
	case FontTimes:
		return "'Times New Roman', Times, serif"
	case FontPoppins:
		return "'Poppins', sans-serif"
	default:
		return "Calibri, 'Segoe UI', Arial, sans-serif"
	}
}

// BuildOprView maps a report record onto the one page layout.
func BuildOprView(data OprData, now time.Time) OprView {
	schoolName := orDefault(data.SchoolName, DefaultSchoolName)
	view := OprView{
		Title:            "One Page Report - " + schoolName,
		Density:          ClassifyDensity(DensityFor(data)),
		FontFamily:       FontFamilyCSS(data.Font),
		ImportPoppins:    data.Font == FontPoppins,
		SchoolName:       schoolName,
		SchoolCode:       orDefault(data.SchoolCode, "-"),
		SchoolAddress:    orDefault(data.SchoolAddress, "-"),
		Year:             YearFromTarikh(data.Tarikh, now),
		Logo1:            imageSrc(data.Logo1Base64),
		Logo2:            imageSrc(data.Logo2Base64),
		NamaProgram:      orDefault(data.NamaProgram, "-"),
		DateTimeDay:      FormatDateTimeDay(data.Tarikh, data.Masa),
		Tempat:           orDefault(data.Tempat, "-"),
		NamaPgb:          orDefault(data.NamaPgb, "-"),
		Officers:         firstNonEmpty(data.PegawaiTerlibat, MaxOprOfficers),
		KehadiranSasaran: orDefault(data.KehadiranSasaran, "-"),
		Activities:       firstNonEmpty(data.Aktiviti, MaxOprActivities),
		IsuMasalah:       orDefault(data.IsuMasalah, DefaultIssue),
		PreparedBy:       orDefault(data.PreparedBy, "-"),
		Fit:              FitCover,
	}

	photos := renderablePhotos(data.GambarBase64)
	view.Grid = ResolveGrid(len(photos))
	view.GridCSS = view.Grid.CSS()
	for i, src := range photos {
		view.Photos = append(view.Photos, OprPhoto{Src: src, Slot: view.Grid.Slots[i]})
	}
	return view
}

// renderablePhotos keeps the first MaxOprPhotos sources that survive
// imageSrc.
func renderablePhotos(sources []string) []string {
	var photos []string
	for _, src := range sources {
		if len(photos) == MaxOprPhotos {
			break
		}
		if src = imageSrc(src); src != "" {
			photos = append(photos, src)
		}
	}
	return photos
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}

func firstNonEmpty(values []string, limit int) []string {
	var out []string
	for _, v := range values {
		if len(out) == limit {
			break
		}
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// imageSrc keeps data image URIs and wraps bare base64 as PNG. Anything
// else is dropped so it never reaches a src attribute.
func imageSrc(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return ""
	case strings.HasPrefix(strings.ToLower(s), "data:image/"):
		return s
	case strings.ContainsAny(s, " <>\"':;"):
		return ""
	default:
		return "data:image/png;base64," + s
	}
}
