package docgen

import (
	"strings"
	"unicode/utf8"
)

// Density is the spacing preset of the single page OPR.
type Density string

const (
	DensityNormal  Density = "normal"
	DensityCompact Density = "compact"
	DensityTight   Density = "tight"
)

// Rank orders presets by tightness.
func (d Density) Rank() int {
	switch d {
	case DensityCompact:
		return 1
	case DensityTight:
		return 2
	default:
		return 0
	}
}

// DensityInput holds the content signals the classifier looks at.
type DensityInput struct {
	ImageCount    int
	ActivityCount int
	OfficerCount  int
	TextWeight    int
}

// Thresholds were tuned for A4 with the default fonts.
const (
	tightImages     = 7
	tightActivities = 8
	tightOfficers   = 10
	tightText       = 1000

	compactImages     = 5
	compactActivities = 6
	compactOfficers   = 8
	compactText       = 750
)

// ClassifyDensity picks the tightest preset any signal asks for.
func ClassifyDensity(in DensityInput) Density {
	if in.ImageCount >= tightImages || in.ActivityCount >= tightActivities ||
		in.OfficerCount >= tightOfficers || in.TextWeight > tightText {
		return DensityTight
	}
	if in.ImageCount >= compactImages || in.ActivityCount >= compactActivities ||
		in.OfficerCount >= compactOfficers || in.TextWeight > compactText {
		return DensityCompact
	}
	return DensityNormal
}

// TextWeight sums the character lengths of the free text fields.
func TextWeight(data OprData) int {
	fields := []string{
		data.NamaProgram,
		data.Tempat,
		data.NamaPgb,
		data.KehadiranSasaran,
		data.IsuMasalah,
		data.PreparedBy,
		strings.Join(data.Aktiviti, " "),
	}
	total := 0
	for _, f := range fields {
		total += utf8.RuneCountInString(f)
	}
	return total
}

// DensityFor derives the classifier input from a report. Counts follow what
// BuildOprView actually renders, so blank or unusable entries are ignored.
func DensityFor(data OprData) DensityInput {
	return DensityInput{
		ImageCount:    len(renderablePhotos(data.GambarBase64)),
		ActivityCount: len(firstNonEmpty(data.Aktiviti, MaxOprActivities)),
		OfficerCount:  len(firstNonEmpty(data.PegawaiTerlibat, MaxOprOfficers)),
		TextWeight:    TextWeight(data),
	}
}
