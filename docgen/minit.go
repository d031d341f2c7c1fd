package docgen

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Fixed minit wording.
const (
	MinitTitle          = "MINIT MESYUARAT PANITIA"
	AttendanceHeading   = "Kehadiran:"
	DefaultDibentang    = "Minit mesyuarat telah dibentangkan dan disahkan"
	ActionMakluman      = "Makluman"
	ActionSemuaGBA      = "Semua GBA"
	SignatureDottedLine = "........................................"
)

var defaultSectionTitles = map[SectionKey]string{
	SectionUcapanPengerusi:   "UCAPAN PENGERUSI / KETUA PANITIA",
	SectionUcapanPenasihat:   "UCAPAN PENASIHAT",
	SectionMinitLalu:         "MEMBENTANGKAN DAN MENGESAHKAN MINIT MESYUARAT YANG LALU",
	SectionPerkaraBerbangkit: "PERKARA BERBANGKIT",
	SectionHalHalLain:        "HAL-HAL LAIN",
	SectionUcapanPenangguhan: "UCAPAN PENANGGUHAN",
}

// DefaultSectionTitle returns the canonical heading of a section.
func DefaultSectionTitle(key SectionKey) string {
	return defaultSectionTitles[key]
}

// SignatureRole is one of the three canonical signatories.
type SignatureRole string

const (
	RoleSetiausaha   SignatureRole = "setiausaha"
	RoleKetuaPanitia SignatureRole = "ketuaPanitia"
	RoleGuruBesar    SignatureRole = "guruBesar"
)

// Attendee is a numbered attendance line.
type Attendee struct {
	Number   int
	Name     string
	Position string
}

// Line renders "1.  Nama (Jawatan)".
func (a Attendee) Line() string {
	if a.Position == "" {
		return fmt.Sprintf("%d.  %s", a.Number, a.Name)
	}
	return fmt.Sprintf("%d.  %s (%s)", a.Number, a.Name, a.Position)
}

// NumberedItem is a sub-item such as "3.1".
type NumberedItem struct {
	Label string
	Text  string
}

// Line renders "3.1 text".
func (i NumberedItem) Line() string {
	return i.Label + " " + i.Text
}

// MinitSection is a numbered block of the minutes.
type MinitSection struct {
	Key      SectionKey
	AgendaID string
	Number   int
	Title    string
	Items    []NumberedItem
	// Notes are right aligned lines shown before the action line.
	Notes []string
	// Action is the owner of the follow up; empty means no Tindakan line.
	Action string
	// Closing marks the adjournment section, which needs less room.
	Closing bool
}

// Heading renders "3. TITLE".
func (s MinitSection) Heading() string {
	return fmt.Sprintf("%d. %s", s.Number, s.Title)
}

// ActionLine renders "Tindakan: owner", or "" when there is no owner.
func (s MinitSection) ActionLine() string {
	if s.Action == "" {
		return ""
	}
	return "Tindakan: " + s.Action
}

// SignatureBlock is one column of the signature table.
type SignatureBlock struct {
	Role   SignatureRole
	Label  string
	Name   string
	Titles []string
	// AcceptsImage is false for signatories that always sign by hand.
	AcceptsImage bool
}

// NameLine renders "(NAME)", or "(-)" without a name.
func (b SignatureBlock) NameLine() string {
	name := strings.TrimSpace(b.Name)
	if name == "" {
		name = "-"
	}
	return "(" + strings.ToUpper(name) + ")"
}

// MinitDocument is the format neutral content of the minutes.
type MinitDocument struct {
	Title        string
	Organization string
	Subtitle     string
	Meta         []string
	Attendance   []Attendee
	Sections     []MinitSection
	Signatures   []SignatureBlock
	Numbers      SectionNumbers
	Year         string
}

// BuildMinitDocument maps a meeting record onto the minutes layout.
func BuildMinitDocument(data MinitData, now time.Time) MinitDocument {
	year := YearFromTarikh(data.Tarikh, now)
	nums := ComputeSectionNumbers(data.Sections, len(data.AgendaItems))

	doc := MinitDocument{
		Title:        MinitTitle,
		Organization: strings.ToUpper(data.Panitia),
		Subtitle:     fmt.Sprintf("BIL. %s SESI %s", data.Bilangan, year),
		Numbers:      nums,
		Year:         year,
	}

	for _, a := range data.Ahli {
		if strings.TrimSpace(a.Nama) == "" {
			continue
		}
		doc.Attendance = append(doc.Attendance, Attendee{
			Number:   len(doc.Attendance) + 1,
			Name:     a.Nama,
			Position: a.Jawatan,
		})
	}

	doc.Meta = []string{
		"TARIKH: " + FormatDate(data.Tarikh),
		"HARI: " + strings.ToUpper(ResolveHari(data.Hari, data.Tarikh)),
		"MASA: " + strings.ToUpper(FormatTimeWithSuffix(data.Masa)),
		"TEMPAT: " + strings.ToUpper(data.Tempat),
		fmt.Sprintf("KEHADIRAN: %d ORANG", len(doc.Attendance)),
	}

	title := func(key SectionKey) string {
		if custom := strings.TrimSpace(data.SectionTitles.Title(key)); custom != "" {
			return strings.ToUpper(custom)
		}
		return DefaultSectionTitle(key)
	}

	narrative := func(key SectionKey, items []string, action string) {
		num, ok := nums.Number(key)
		if !ok {
			return
		}
		doc.Sections = append(doc.Sections, MinitSection{
			Key:    key,
			Number: num,
			Title:  title(key),
			Items:  numberItems(num, items),
			Action: action,
		})
	}

	narrative(SectionUcapanPengerusi, data.UcapanPengerusi, ActionMakluman)
	narrative(SectionUcapanPenasihat, data.UcapanPenasihat, ActionMakluman)

	if num, ok := nums.Number(SectionMinitLalu); ok {
		dibentang := strings.TrimSpace(data.MinitLalu.Dibentang)
		if dibentang == "" {
			dibentang = DefaultDibentang
		}
		section := MinitSection{
			Key:    SectionMinitLalu,
			Number: num,
			Title:  title(SectionMinitLalu),
			Items: []NumberedItem{{
				Label: fmt.Sprintf("%d.1", num),
				Text:  ExpandPlaceholders(dibentang, data.Bilangan, year),
			}},
			Action: ActionSemuaGBA,
		}
		if v := strings.TrimSpace(data.MinitLalu.Dicadangkan); v != "" {
			section.Notes = append(section.Notes, "Dicadangkan oleh: "+v)
		}
		if v := strings.TrimSpace(data.MinitLalu.Disokong); v != "" {
			section.Notes = append(section.Notes, "Disokong oleh: "+v)
		}
		doc.Sections = append(doc.Sections, section)
	}

	perkara := data.PerkaraBerbangkit
	if len(perkara) > 1 {
		perkara = perkara[:1]
	}
	narrative(SectionPerkaraBerbangkit, perkara, ActionSemuaGBA)

	for i, item := range data.AgendaItems {
		num, _ := nums.AgendaNumber(i)
		heading := strings.TrimSpace(item.Perkara)
		if !item.Included || heading == "" {
			continue
		}
		action := strings.TrimSpace(item.Tindakan)
		if action == "" {
			action = ActionSemuaGBA
		}
		doc.Sections = append(doc.Sections, MinitSection{
			AgendaID: item.ID,
			Number:   num,
			Title:    strings.ToUpper(heading),
			Items:    numberItems(num, item.Butiran),
			Action:   action,
		})
	}

	narrative(SectionHalHalLain, data.HalHalLain, ActionSemuaGBA)
	if num, ok := nums.Number(SectionUcapanPenangguhan); ok {
		doc.Sections = append(doc.Sections, MinitSection{
			Key:     SectionUcapanPenangguhan,
			Number:  num,
			Title:   title(SectionUcapanPenangguhan),
			Items:   numberItems(num, data.UcapanPenangguhan),
			Closing: true,
		})
	}

	doc.Signatures = []SignatureBlock{
		signatureBlock(RoleSetiausaha, "Disediakan oleh,", data.Setiausaha, true),
		signatureBlock(RoleKetuaPanitia, "Disemak oleh,", data.KetuaPanitia, true),
		signatureBlock(RoleGuruBesar, "Disahkan oleh,", data.GuruBesar, false),
	}
	return doc
}

// numberItems drops blank items and numbers the rest from 1.
func numberItems(section int, items []string) []NumberedItem {
	var out []NumberedItem
	for _, item := range items {
		text := strings.TrimSpace(item)
		if text == "" {
			continue
		}
		out = append(out, NumberedItem{
			Label: fmt.Sprintf("%d.%d", section, len(out)+1),
			Text:  text,
		})
	}
	return out
}

func signatureBlock(role SignatureRole, label string, info SignatureInfo, image bool) SignatureBlock {
	block := SignatureBlock{Role: role, Label: label, Name: info.Name, AcceptsImage: image}
	for _, t := range []string{info.Title1, info.Title2, info.Title3} {
		if t = strings.TrimSpace(t); t != "" {
			block.Titles = append(block.Titles, t)
		}
	}
	return block
}

// ExpandPlaceholders replaces [bil] with the previous meeting number and
// [tahun] with year.
func ExpandPlaceholders(text, bilangan, year string) string {
	if !strings.Contains(text, "[") {
		return text
	}
	prev := strings.TrimSpace(bilangan)
	if n, err := strconv.Atoi(prev); err == nil && n > 1 {
		prev = strconv.Itoa(n - 1)
	}
	return strings.NewReplacer("[bil]", prev, "[tahun]", year).Replace(text)
}

// SignatureImage returns the supplied signature for role, if any.
func (a MinitAssets) SignatureImage(role SignatureRole) string {
	switch role {
	case RoleSetiausaha:
		return a.SetiausahaSignature
	case RoleKetuaPanitia:
		return a.KetuaPanitiaSignature
	}
	return ""
}

// HasLogos reports whether either header logo is supplied.
func (a MinitAssets) HasLogos() bool {
	return a.Logo1 != "" || a.Logo2 != ""
}
