package docgen

// SectionKey identifies a toggleable minit section.
type SectionKey string

const (
	SectionUcapanPengerusi   SectionKey = "ucapanPengerusi"
	SectionUcapanPenasihat   SectionKey = "ucapanPenasihat"
	SectionMinitLalu         SectionKey = "minitLalu"
	SectionPerkaraBerbangkit SectionKey = "perkaraBerbangkit"
	SectionHalHalLain        SectionKey = "halHalLain"
	SectionUcapanPenangguhan SectionKey = "ucapanPenangguhan"
)

// leadingSections precede the agenda block, trailingSections follow it.
var (
	leadingSections = []SectionKey{
		SectionUcapanPengerusi,
		SectionUcapanPenasihat,
		SectionMinitLalu,
		SectionPerkaraBerbangkit,
	}
	trailingSections = []SectionKey{
		SectionHalHalLain,
		SectionUcapanPenangguhan,
	}
)

// SectionKeys returns every toggleable section in document order.
func SectionKeys() []SectionKey {
	keys := make([]SectionKey, 0, len(leadingSections)+len(trailingSections))
	keys = append(keys, leadingSections...)
	return append(keys, trailingSections...)
}

// SectionNumbers is the numbering computed for one render.
type SectionNumbers struct {
	Numbers     map[SectionKey]int
	AgendaStart int
	AgendaEnd   int
}

// ComputeSectionNumbers assigns section numbers from the current toggles.
// Every agenda slot reserves a number whether or not it is included, so the
// trailing sections never shift when an item is hidden.
func ComputeSectionNumbers(sections Sections, agendaCount int) SectionNumbers {
	if agendaCount < 0 {
		agendaCount = 0
	}
	out := SectionNumbers{Numbers: make(map[SectionKey]int, 6)}
	counter := 1
	for _, key := range leadingSections {
		if sections.Enabled(key) {
			out.Numbers[key] = counter
			counter++
		}
	}
	out.AgendaStart = counter
	counter += agendaCount
	out.AgendaEnd = out.AgendaStart + agendaCount - 1
	for _, key := range trailingSections {
		if sections.Enabled(key) {
			out.Numbers[key] = counter
			counter++
		}
	}
	return out
}

// Number returns the number of a section; false means the section is hidden.
func (n SectionNumbers) Number(key SectionKey) (int, bool) {
	num, ok := n.Numbers[key]
	return num, ok
}

// AgendaCount is the number of reserved agenda slots.
func (n SectionNumbers) AgendaCount() int {
	if n.AgendaEnd < n.AgendaStart {
		return 0
	}
	return n.AgendaEnd - n.AgendaStart + 1
}

// AgendaNumber returns the number reserved for the i-th agenda item.
func (n SectionNumbers) AgendaNumber(i int) (int, bool) {
	if i < 0 || i >= n.AgendaCount() {
		return 0, false
	}
	return n.AgendaStart + i, true
}
