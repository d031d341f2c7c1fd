package docgen

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"
)

// Default filename patterns, rendered with text/template over filenameData.
const (
	DefaultMinitFilename      = "MINIT_MESYUARAT_{{.Bilangan}}_{{.Year}}"
	DefaultAttendanceFilename = "KEHADIRAN_{{.Bilangan}}_{{.Year}}"
	DefaultOprFilename        = "OPR_{{.Program}}"
)

// FilenameOptions overrides the filename patterns.
type FilenameOptions struct {
	Minit      string
	Attendance string
	Opr        string
}

type filenameData struct {
	Bilangan  string
	Year      string
	Program   string
	Format    string
	Timestamp string
	Date      string
}

// SanitizeFilenamePart replaces every character outside [A-Za-z0-9_-] with "_".
func SanitizeFilenamePart(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// MinitFilename returns MINIT_MESYUARAT_{bilangan}_{year}.{ext}.
func MinitFilename(opts FilenameOptions, data MinitData, format Format, now time.Time) (string, error) {
	pattern := opts.Minit
	if format == FormatXLSX {
		pattern = opts.Attendance
		if pattern == "" {
			pattern = DefaultAttendanceFilename
		}
	}
	if pattern == "" {
		pattern = DefaultMinitFilename
	}
	return renderFilename(pattern, filenameData{
		Bilangan: SanitizeFilenamePart(strings.TrimSpace(data.Bilangan)),
		Year:     YearFromTarikh(data.Tarikh, now),
	}, format, now)
}

// OprFilename returns OPR_{program}.{ext}, using LAPORAN when the program
// name is empty.
func OprFilename(opts FilenameOptions, data OprData, format Format, now time.Time) (string, error) {
	pattern := opts.Opr
	if pattern == "" {
		pattern = DefaultOprFilename
	}
	program := data.NamaProgram
	if program == "" {
		program = "LAPORAN"
	}
	return renderFilename(pattern, filenameData{
		Program: SanitizeFilenamePart(program),
		Year:    YearFromTarikh(data.Tarikh, now),
	}, format, now)
}

func renderFilename(pattern string, data filenameData, format Format, now time.Time) (string, error) {
	data.Format = string(format)
	data.Timestamp = now.UTC().Format("20060102T150405Z")
	data.Date = now.UTC().Format("20060102")

	tmpl, err := template.New("filename").Option("missingkey=error").Parse(pattern)
	if err != nil {
		return "", NewError(KindValidation, "invalid filename pattern", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", NewError(KindValidation, "invalid filename pattern", err)
	}

	result := strings.TrimSpace(buf.String())
	if result == "" {
		return "", NewError(KindValidation, "empty filename", fmt.Errorf("pattern %q", pattern))
	}

	ext := string(format)
	if ext != "" && !strings.HasSuffix(strings.ToLower(result), "."+ext) {
		result = result + "." + ext
	}
	return result, nil
}
