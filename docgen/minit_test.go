package docgen

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var fixedNow = time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)

func sampleMinit() MinitData {
	return MinitData{
		Bilangan: "3",
		Tarikh:   "2025-03-10",
		Masa:     "14:30",
		Tempat:   "Bilik Mesyuarat",
		Panitia:  "Panitia Bahasa Melayu",
		Ahli: []AhliEntry{
			{ID: "1", Nama: "Aminah binti Ali", Jawatan: "Ketua Panitia"},
			{ID: "2", Nama: "", Jawatan: "GBA"},
			{ID: "3", Nama: "Badrul bin Omar", Jawatan: "Setiausaha"},
		},
		UcapanPengerusi:   []string{"Alu-aluan", "", "Terima kasih"},
		UcapanPenasihat:   []string{"Nasihat"},
		MinitLalu:         MinitLalu{Dibentang: "Minit bil [bil]/[tahun] disahkan.", Dicadangkan: "Aminah", Disokong: "Badrul"},
		PerkaraBerbangkit: []string{"Tiada", "Diabaikan"},
		AgendaItems: []AgendaItem{
			{ID: "a1", Perkara: "Program dibatalkan", Butiran: []string{"Tidak dibincang"}, Included: false},
			{ID: "a2", Perkara: "Kewangan panitia", Butiran: []string{"Baki RM100", "", "Belanja RM20"}, Tindakan: "Bendahari", Included: true},
		},
		HalHalLain:        []string{""},
		UcapanPenangguhan: []string{"Mesyuarat ditangguhkan"},
		Sections:          AllSections(),
		Setiausaha:        SignatureInfo{Name: "Badrul bin Omar", Title1: "Setiausaha"},
		KetuaPanitia:      SignatureInfo{Name: "Aminah binti Ali", Title1: "Ketua Panitia", Title3: "SK Contoh"},
		GuruBesar:         SignatureInfo{},
	}
}

func findSection(doc MinitDocument, number int) (MinitSection, bool) {
	for _, s := range doc.Sections {
		if s.Number == number {
			return s, true
		}
	}
	return MinitSection{}, false
}

func TestBuildMinitDocument_ExcludedAgendaKeepsNumber(t *testing.T) {
	doc := BuildMinitDocument(sampleMinit(), fixedNow)

	var numbers []int
	for _, s := range doc.Sections {
		numbers = append(numbers, s.Number)
	}
	if diff := cmp.Diff([]int{1, 2, 3, 4, 6, 7, 8}, numbers); diff != "" {
		t.Fatalf("section numbers mismatch:\n%s", diff)
	}
	if _, ok := findSection(doc, 5); ok {
		t.Fatalf("excluded agenda item must not render")
	}
	agenda, _ := findSection(doc, 6)
	if agenda.Title != "KEWANGAN PANITIA" || agenda.AgendaID != "a2" {
		t.Fatalf("unexpected agenda section %+v", agenda)
	}
	want := []NumberedItem{{Label: "6.1", Text: "Baki RM100"}, {Label: "6.2", Text: "Belanja RM20"}}
	if diff := cmp.Diff(want, agenda.Items); diff != "" {
		t.Fatalf("agenda items mismatch:\n%s", diff)
	}
	if agenda.ActionLine() != "Tindakan: Bendahari" {
		t.Fatalf("unexpected action %q", agenda.ActionLine())
	}
}

func TestBuildMinitDocument_HeaderAndMeta(t *testing.T) {
	doc := BuildMinitDocument(sampleMinit(), fixedNow)
	if doc.Organization != "PANITIA BAHASA MELAYU" || doc.Subtitle != "BIL. 3 SESI 2025" {
		t.Fatalf("unexpected header %q / %q", doc.Organization, doc.Subtitle)
	}
	want := []string{
		"TARIKH: 10 Mac 2025",
		"HARI: ISNIN",
		"MASA: 2.30 TENGAH HARI",
		"TEMPAT: BILIK MESYUARAT",
		"KEHADIRAN: 2 ORANG",
	}
	if diff := cmp.Diff(want, doc.Meta); diff != "" {
		t.Fatalf("meta mismatch:\n%s", diff)
	}
	if len(doc.Attendance) != 2 || doc.Attendance[1].Line() != "2.  Badrul bin Omar (Setiausaha)" {
		t.Fatalf("unexpected attendance %+v", doc.Attendance)
	}
}

func TestBuildMinitDocument_SectionContent(t *testing.T) {
	doc := BuildMinitDocument(sampleMinit(), fixedNow)

	pengerusi, _ := findSection(doc, 1)
	if pengerusi.Title != "UCAPAN PENGERUSI / KETUA PANITIA" || pengerusi.Action != ActionMakluman {
		t.Fatalf("unexpected pengerusi %+v", pengerusi)
	}
	if diff := cmp.Diff([]NumberedItem{{"1.1", "Alu-aluan"}, {"1.2", "Terima kasih"}}, pengerusi.Items); diff != "" {
		t.Fatalf("blank items must be skipped and not counted:\n%s", diff)
	}

	lalu, _ := findSection(doc, 3)
	if lalu.Items[0].Line() != "3.1 Minit bil 2/2025 disahkan." {
		t.Fatalf("unexpected minit lalu %q", lalu.Items[0].Line())
	}
	if diff := cmp.Diff([]string{"Dicadangkan oleh: Aminah", "Disokong oleh: Badrul"}, lalu.Notes); diff != "" {
		t.Fatalf("notes mismatch:\n%s", diff)
	}

	berbangkit, _ := findSection(doc, 4)
	if len(berbangkit.Items) != 1 || berbangkit.Action != ActionSemuaGBA {
		t.Fatalf("perkara berbangkit renders only its first item: %+v", berbangkit)
	}

	lain, _ := findSection(doc, 7)
	if len(lain.Items) != 0 || lain.ActionLine() != "Tindakan: Semua GBA" {
		t.Fatalf("unexpected hal-hal lain %+v", lain)
	}

	closing, _ := findSection(doc, 8)
	if !closing.Closing || closing.ActionLine() != "" {
		t.Fatalf("closing section has no action line: %+v", closing)
	}
}

func TestBuildMinitDocument_DefaultsAndCustomTitles(t *testing.T) {
	data := sampleMinit()
	data.MinitLalu = MinitLalu{}
	data.SectionTitles.HalHalLain = "Lain-lain perkara"
	data.AgendaItems = []AgendaItem{{ID: "x", Perkara: "  ", Included: true}, {ID: "y", Perkara: "Tanpa tindakan", Included: true}}
	doc := BuildMinitDocument(data, fixedNow)

	lalu, _ := findSection(doc, 3)
	if lalu.Items[0].Text != DefaultDibentang || len(lalu.Notes) != 0 {
		t.Fatalf("expected default dibentang, got %+v", lalu)
	}
	if _, ok := findSection(doc, 5); ok {
		t.Fatalf("blank agenda title must not render")
	}
	agenda, ok := findSection(doc, 6)
	if !ok || agenda.Action != ActionSemuaGBA {
		t.Fatalf("agenda without owner defaults to Semua GBA: %+v", agenda)
	}
	lain, _ := findSection(doc, 7)
	if lain.Title != "LAIN-LAIN PERKARA" {
		t.Fatalf("expected uppercased custom title, got %q", lain.Title)
	}
}

func TestBuildMinitDocument_Signatures(t *testing.T) {
	doc := BuildMinitDocument(sampleMinit(), fixedNow)
	if len(doc.Signatures) != 3 {
		t.Fatalf("expected 3 signatures, got %d", len(doc.Signatures))
	}
	labels := []string{doc.Signatures[0].Label, doc.Signatures[1].Label, doc.Signatures[2].Label}
	if diff := cmp.Diff([]string{"Disediakan oleh,", "Disemak oleh,", "Disahkan oleh,"}, labels); diff != "" {
		t.Fatalf("labels mismatch:\n%s", diff)
	}
	if doc.Signatures[0].NameLine() != "(BADRUL BIN OMAR)" {
		t.Fatalf("unexpected name line %q", doc.Signatures[0].NameLine())
	}
	if doc.Signatures[2].NameLine() != "(-)" || doc.Signatures[2].AcceptsImage {
		t.Fatalf("guru besar signs by hand and defaults to (-): %+v", doc.Signatures[2])
	}
	if diff := cmp.Diff([]string{"Ketua Panitia", "SK Contoh"}, doc.Signatures[1].Titles); diff != "" {
		t.Fatalf("titles mismatch:\n%s", diff)
	}
}

func TestBuildMinitDocument_YearFallsBackToNow(t *testing.T) {
	data := sampleMinit()
	data.Tarikh = ""
	data.Tahun = "1999"
	doc := BuildMinitDocument(data, fixedNow)
	if !strings.HasSuffix(doc.Subtitle, "SESI 2026") {
		t.Fatalf("expected year from clock, got %q", doc.Subtitle)
	}
	if doc.Meta[0] != "TARIKH: " || doc.Meta[1] != "HARI: " {
		t.Fatalf("expected empty date lines, got %v", doc.Meta[:2])
	}
}

func TestExpandPlaceholders(t *testing.T) {
	cases := []struct {
		text, bil, year, want string
	}{
		{"bil [bil]/[tahun]", "3", "2025", "bil 2/2025"},
		{"bil [bil]", "1", "2025", "bil 1"},
		{"bil [bil]", "2A", "2025", "bil 2A"},
		{"tiada", "3", "2025", "tiada"},
	}
	for _, tc := range cases {
		if got := ExpandPlaceholders(tc.text, tc.bil, tc.year); got != tc.want {
			t.Fatalf("ExpandPlaceholders(%q): expected %q, got %q", tc.text, tc.want, got)
		}
	}
}
