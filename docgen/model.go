package docgen

// AhliEntry is one attending member.
type AhliEntry struct {
	ID       string `json:"id" yaml:"id"`
	Nama     string `json:"nama" yaml:"nama"`
	Jawatan  string `json:"jawatan" yaml:"jawatan"`
	IsCustom bool   `json:"isCustom,omitempty" yaml:"isCustom,omitempty"`
}

// MinitLalu is the ratification record for the previous minutes.
type MinitLalu struct {
	Dibentang   string `json:"dibentang" yaml:"dibentang"`
	Dicadangkan string `json:"dicadangkan" yaml:"dicadangkan"`
	Disokong    string `json:"disokong" yaml:"disokong"`
}

// AgendaItem is one numbered agenda slot. Items with Included=false keep
// their number but are not rendered.
type AgendaItem struct {
	ID       string   `json:"id" yaml:"id"`
	Perkara  string   `json:"perkara" yaml:"perkara"`
	Butiran  []string `json:"butiran" yaml:"butiran"`
	Tindakan string   `json:"tindakan" yaml:"tindakan"`
	Included bool     `json:"included" yaml:"included"`
}

// Sections toggles the narrative sections.
type Sections struct {
	UcapanPengerusi   bool `json:"ucapanPengerusi" yaml:"ucapanPengerusi"`
	UcapanPenasihat   bool `json:"ucapanPenasihat" yaml:"ucapanPenasihat"`
	MinitLalu         bool `json:"minitLalu" yaml:"minitLalu"`
	PerkaraBerbangkit bool `json:"perkaraBerbangkit" yaml:"perkaraBerbangkit"`
	HalHalLain        bool `json:"halHalLain" yaml:"halHalLain"`
	UcapanPenangguhan bool `json:"ucapanPenangguhan" yaml:"ucapanPenangguhan"`
}

// AllSections enables every section.
func AllSections() Sections {
	return Sections{true, true, true, true, true, true}
}

// Enabled reports whether key is switched on.
func (s Sections) Enabled(key SectionKey) bool {
	switch key {
	case SectionUcapanPengerusi:
		return s.UcapanPengerusi
	case SectionUcapanPenasihat:
		return s.UcapanPenasihat
	case SectionMinitLalu:
		return s.MinitLalu
	case SectionPerkaraBerbangkit:
		return s.PerkaraBerbangkit
	case SectionHalHalLain:
		return s.HalHalLain
	case SectionUcapanPenangguhan:
		return s.UcapanPenangguhan
	}
	return false
}

// SectionTitles holds user edited section headings.
type SectionTitles struct {
	UcapanPengerusi   string `json:"ucapanPengerusi" yaml:"ucapanPengerusi"`
	UcapanPenasihat   string `json:"ucapanPenasihat" yaml:"ucapanPenasihat"`
	MinitLalu         string `json:"minitLalu" yaml:"minitLalu"`
	PerkaraBerbangkit string `json:"perkaraBerbangkit" yaml:"perkaraBerbangkit"`
	HalHalLain        string `json:"halHalLain" yaml:"halHalLain"`
	UcapanPenangguhan string `json:"ucapanPenangguhan" yaml:"ucapanPenangguhan"`
}

// Title returns the custom title for key, if any.
func (t SectionTitles) Title(key SectionKey) string {
	switch key {
	case SectionUcapanPengerusi:
		return t.UcapanPengerusi
	case SectionUcapanPenasihat:
		return t.UcapanPenasihat
	case SectionMinitLalu:
		return t.MinitLalu
	case SectionPerkaraBerbangkit:
		return t.PerkaraBerbangkit
	case SectionHalHalLain:
		return t.HalHalLain
	case SectionUcapanPenangguhan:
		return t.UcapanPenangguhan
	}
	return ""
}

// SignatureInfo is one signatory.
type SignatureInfo struct {
	Name   string `json:"name" yaml:"name"`
	Title1 string `json:"title1" yaml:"title1"`
	Title2 string `json:"title2" yaml:"title2"`
	Title3 string `json:"title3" yaml:"title3"`
}

// MinitData is one meeting record.
type MinitData struct {
	Bilangan string      `json:"bilangan" yaml:"bilangan"`
	Tarikh   string      `json:"tarikh" yaml:"tarikh"`
	Hari     string      `json:"hari" yaml:"hari"`
	Masa     string      `json:"masa" yaml:"masa"`
	Tempat   string      `json:"tempat" yaml:"tempat"`
	Panitia  string      `json:"panitia" yaml:"panitia"`
	Ahli     []AhliEntry `json:"ahli" yaml:"ahli"`

	UcapanPengerusi   []string     `json:"ucapanPengerusi" yaml:"ucapanPengerusi"`
	UcapanPenasihat   []string     `json:"ucapanPenasihat" yaml:"ucapanPenasihat"`
	MinitLalu         MinitLalu    `json:"minitLalu" yaml:"minitLalu"`
	PerkaraBerbangkit []string     `json:"perkaraBerbangkit" yaml:"perkaraBerbangkit"`
	AgendaItems       []AgendaItem `json:"agendaItems" yaml:"agendaItems"`
	HalHalLain        []string     `json:"halHalLain" yaml:"halHalLain"`
	UcapanPenangguhan []string     `json:"ucapanPenangguhan" yaml:"ucapanPenangguhan"`

	Sections      Sections      `json:"sections" yaml:"sections"`
	SectionTitles SectionTitles `json:"sectionTitles" yaml:"sectionTitles"`

	Setiausaha   SignatureInfo `json:"setiausaha" yaml:"setiausaha"`
	KetuaPanitia SignatureInfo `json:"ketuaPanitia" yaml:"ketuaPanitia"`
	GuruBesar    SignatureInfo `json:"guruBesar" yaml:"guruBesar"`

	// Tahun is accepted from older payloads and ignored; the year always
	// comes from Tarikh.
	Tahun string `json:"tahun,omitempty" yaml:"tahun,omitempty"`
}

// MinitAssets carries the images and font supplied next to a record.
// Images are data URIs or bare base64.
type MinitAssets struct {
	Font                  Font   `json:"font,omitempty" yaml:"font,omitempty"`
	Logo1                 string `json:"logo1Base64,omitempty" yaml:"logo1Base64,omitempty"`
	Logo2                 string `json:"logo2Base64,omitempty" yaml:"logo2Base64,omitempty"`
	SetiausahaSignature   string `json:"setiausahaSignatureBase64,omitempty" yaml:"setiausahaSignatureBase64,omitempty"`
	KetuaPanitiaSignature string `json:"ketuaPanitiaSignatureBase64,omitempty" yaml:"ketuaPanitiaSignatureBase64,omitempty"`
}

// MinitRequest is the input file shape: the record plus its assets.
type MinitRequest struct {
	MinitData   `yaml:",inline"`
	MinitAssets `yaml:",inline"`
}

// OprData is one program report record.
type OprData struct {
	NamaProgram      string   `json:"namaProgram" yaml:"namaProgram"`
	Tarikh           string   `json:"tarikh" yaml:"tarikh"`
	Masa             string   `json:"masa" yaml:"masa"`
	Tempat           string   `json:"tempat" yaml:"tempat"`
	NamaPgb          string   `json:"namaPgb,omitempty" yaml:"namaPgb,omitempty"`
	KehadiranSasaran string   `json:"kehadiranSasaran" yaml:"kehadiranSasaran"`
	IsuMasalah       string   `json:"isuMasalah" yaml:"isuMasalah"`
	PreparedBy       string   `json:"preparedBy,omitempty" yaml:"preparedBy,omitempty"`
	Aktiviti         []string `json:"aktiviti" yaml:"aktiviti"`
	GambarBase64     []string `json:"gambarBase64" yaml:"gambarBase64"`
	PegawaiTerlibat  []string `json:"pegawaiTerlibat,omitempty" yaml:"pegawaiTerlibat,omitempty"`

	SchoolName    string `json:"schoolName,omitempty" yaml:"schoolName,omitempty"`
	SchoolCode    string `json:"schoolCode,omitempty" yaml:"schoolCode,omitempty"`
	SchoolAddress string `json:"schoolAddress,omitempty" yaml:"schoolAddress,omitempty"`
	Logo1Base64   string `json:"logo1Base64,omitempty" yaml:"logo1Base64,omitempty"`
	Logo2Base64   string `json:"logo2Base64,omitempty" yaml:"logo2Base64,omitempty"`
	Font          Font   `json:"font,omitempty" yaml:"font,omitempty"`
}
