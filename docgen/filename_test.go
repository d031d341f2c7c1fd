package docgen

import (
	"testing"
	"time"
)

func TestMinitFilename(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	data := MinitData{Bilangan: "2", Tarikh: "2025-03-10"}

	cases := []struct {
		format Format
		want   string
	}{
		{FormatDOCX, "MINIT_MESYUARAT_2_2025.docx"},
		{FormatPDF, "MINIT_MESYUARAT_2_2025.pdf"},
		{FormatXLSX, "KEHADIRAN_2_2025.xlsx"},
	}
	for _, tc := range cases {
		got, err := MinitFilename(FilenameOptions{}, data, tc.format, now)
		if err != nil {
			t.Fatalf("filename: %v", err)
		}
		if got != tc.want {
			t.Fatalf("expected %s, got %s", tc.want, got)
		}
	}

	got, err := MinitFilename(FilenameOptions{}, MinitData{Bilangan: "1/2"}, FormatPDF, now)
	if err != nil {
		t.Fatalf("filename: %v", err)
	}
	if got != "MINIT_MESYUARAT_1_2_2026.pdf" {
		t.Fatalf("expected sanitized name with clock year, got %s", got)
	}
}

func TestOprFilename(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	cases := map[string]string{
		"Hari Sukan 2025":  "OPR_Hari_Sukan_2025.pdf",
		"":                 "OPR_LAPORAN.pdf",
		"Ceramah/Motivasi": "OPR_Ceramah_Motivasi.pdf",
	}
	for program, want := range cases {
		got, err := OprFilename(FilenameOptions{}, OprData{NamaProgram: program}, FormatPDF, now)
		if err != nil {
			t.Fatalf("filename: %v", err)
		}
		if got != want {
			t.Fatalf("program %q: expected %s, got %s", program, want, got)
		}
	}
}

func TestFilename_CustomPattern(t *testing.T) {
	now := time.Date(2026, 5, 1, 8, 30, 0, 0, time.UTC)
	opts := FilenameOptions{Opr: "{{.Program}}_{{.Date}}"}
	got, err := OprFilename(opts, OprData{NamaProgram: "Gotong Royong"}, FormatPNG, now)
	if err != nil {
		t.Fatalf("filename: %v", err)
	}
	if got != "Gotong_Royong_20260501.png" {
		t.Fatalf("unexpected filename %s", got)
	}

	if _, err := OprFilename(FilenameOptions{Opr: "{{.Missing}}"}, OprData{}, FormatPDF, now); KindFromError(err) != KindValidation {
		t.Fatalf("expected validation error for unknown field, got %v", err)
	}
}
