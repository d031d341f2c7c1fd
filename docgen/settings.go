package docgen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultSettingsKey is the key the profile state is persisted under.
const DefaultSettingsKey = "document-generator-profiles"

// DefaultSaveDebounce delays persistence after a mutation.
const DefaultSaveDebounce = 300 * time.Millisecond

// ProfileType distinguishes a school wide profile from a committee.
type ProfileType string

const (
	ProfileSchool  ProfileType = "school"
	ProfileSociety ProfileType = "society"
)

// Member is a committee member kept in the profile.
type Member struct {
	ID      string `json:"id"`
	Nama    string `json:"nama"`
	Jawatan string `json:"jawatan"`
}

// ContentCategory is the section a frequent content snippet belongs to.
type ContentCategory string

const (
	ContentUcapanPengerusi   ContentCategory = "ucapanPengerusi"
	ContentMinitLalu         ContentCategory = "minitLalu"
	ContentUcapanPenangguhan ContentCategory = "ucapanPenangguhan"
)

// FrequentContent is a reusable text snippet.
type FrequentContent struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Category ContentCategory `json:"category"`
	Content  string          `json:"content"`
}

// ProfileSettings is the branding and membership of a profile.
type ProfileSettings struct {
	SchoolName            string            `json:"schoolName"`
	SchoolCode            string            `json:"schoolCode"`
	SchoolAddress         string            `json:"schoolAddress"`
	Font                  Font              `json:"font"`
	Members               []Member          `json:"members"`
	UserMemberID          string            `json:"userMemberId,omitempty"`
	Logo1                 string            `json:"logo1,omitempty"`
	Logo2                 string            `json:"logo2,omitempty"`
	SetiausahaSignature   string            `json:"setiausahaSignature,omitempty"`
	KetuaPanitiaSignature string            `json:"ketuaPanitiaSignature,omitempty"`
	FrequentContent       []FrequentContent `json:"frequentContent"`
}

// Profile is a named settings set.
type Profile struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Type      ProfileType     `json:"type"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Settings  ProfileSettings `json:"settings"`
}

// DefaultProfileSettings is the baseline for new and reset profiles.
func DefaultProfileSettings() ProfileSettings {
	return ProfileSettings{
		Font: FontCalibri,
		FrequentContent: []FrequentContent{
			{ID: "1", Name: "Bacaan Al-Fatihah", Category: ContentUcapanPengerusi, Content: "Pengerusi memulakan mesyuarat dengan meminta semua hadirin membaca surah Al-Fatihah."},
			{ID: "2", Name: "Ucapan Alu-aluan", Category: ContentUcapanPengerusi, Content: "Pengerusi mengucapkan terima kasih kepada semua ahli Panitia yang hadir dan berharap mesyuarat berjalan dengan lancar."},
			{ID: "3", Name: "Minit Lalu Standard", Category: ContentMinitLalu, Content: "Minit mesyuarat Panitia bil [bil]/[tahun] telah dibentangkan oleh setiausaha dan disahkan tanpa pembetulan."},
			{ID: "4", Name: "Penangguhan Standard", Category: ContentUcapanPenangguhan, Content: "Mesyuarat diakhiri dengan bacaan surah Al-Asr dan tasbih kaffarah."},
		},
	}
}

// SettingsPatch is a partial update. Nil fields are left alone; a non-nil
// slice replaces the whole list.
type SettingsPatch struct {
	SchoolName            *string
	SchoolCode            *string
	SchoolAddress         *string
	Font                  *Font
	Members               []Member
	UserMemberID          *string
	Logo1                 *string
	Logo2                 *string
	SetiausahaSignature   *string
	KetuaPanitiaSignature *string
	FrequentContent       []FrequentContent
}

// Apply merges the patch into settings.
func (p SettingsPatch) Apply(s ProfileSettings) ProfileSettings {
	setString(&s.SchoolName, p.SchoolName)
	setString(&s.SchoolCode, p.SchoolCode)
	setString(&s.SchoolAddress, p.SchoolAddress)
	if p.Font != nil {
		s.Font = *p.Font
	}
	if p.Members != nil {
		s.Members = append([]Member(nil), p.Members...)
	}
	setString(&s.UserMemberID, p.UserMemberID)
	setString(&s.Logo1, p.Logo1)
	setString(&s.Logo2, p.Logo2)
	setString(&s.SetiausahaSignature, p.SetiausahaSignature)
	setString(&s.KetuaPanitiaSignature, p.KetuaPanitiaSignature)
	if p.FrequentContent != nil {
		s.FrequentContent = append([]FrequentContent(nil), p.FrequentContent...)
	}
	return s
}

// ProfilePatch renames or retypes a profile.
type ProfilePatch struct {
	Name *string
	Type *ProfileType
}

// MemberPatch edits a member.
type MemberPatch struct {
	Nama    *string
	Jawatan *string
}

// FrequentContentPatch edits a snippet.
type FrequentContentPatch struct {
	Name     *string
	Category *ContentCategory
	Content  *string
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// KVStore persists the serialized settings.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

type settingsState struct {
	Profiles         []Profile `json:"profiles"`
	CurrentProfileID string    `json:"currentProfileId"`
}

// SettingsStore holds the profiles in memory and persists them, debounced,
// after every mutation.
type SettingsStore struct {
	KV       KVStore
	Key      string
	Debounce time.Duration
	Logger   Logger
	Now      func() time.Time
	NewID    func() string

	mu     sync.Mutex
	state  settingsState
	loaded bool
	timer  *time.Timer
	dirty  bool
	closed bool

	saveMu sync.Mutex
}

// NewSettingsStore creates a store backed by kv.
func NewSettingsStore(kv KVStore) *SettingsStore {
	return &SettingsStore{
		KV:       kv,
		Key:      DefaultSettingsKey,
		Debounce: DefaultSaveDebounce,
		Logger:   NopLogger{},
		Now:      time.Now,
		NewID:    func() string { return uuid.NewString() },
	}
}

// Load reads the persisted state, seeding a default profile when empty.
func (s *SettingsStore) Load(ctx context.Context) error {
	if s == nil || s.KV == nil {
		return NewError(KindInternal, "settings store is not configured", nil)
	}
	s.defaults()
	raw, ok, err := s.KV.Get(ctx, s.Key)
	if err != nil {
		return NewError(KindInternal, "load settings", err)
	}

	var state settingsState
	if ok && len(raw) > 0 {
		if err := json.Unmarshal(raw, &state); err != nil {
			s.Logger.Errorf("settings payload unreadable, starting fresh: %v", err)
			state = settingsState{}
		}
	}
	if len(state.Profiles) == 0 {
		now := s.Now()
		state.Profiles = []Profile{{
			ID:        "default",
			Name:      "Profil Utama",
			Type:      ProfileSociety,
			CreatedAt: now,
			UpdatedAt: now,
			Settings:  DefaultProfileSettings(),
		}}
	}
	if indexOfProfile(state.Profiles, state.CurrentProfileID) < 0 {
		state.CurrentProfileID = state.Profiles[0].ID
	}

	s.mu.Lock()
	s.state = state
	s.loaded = true
	s.mu.Unlock()
	return nil
}

// Current returns the active profile.
func (s *SettingsStore) Current() (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.readyLocked(); err != nil {
		return Profile{}, err
	}
	idx := indexOfProfile(s.state.Profiles, s.state.CurrentProfileID)
	if idx < 0 {
		idx = 0
	}
	return cloneProfile(s.state.Profiles[idx]), nil
}

// Profiles returns a copy of every profile.
func (s *SettingsStore) Profiles() []Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Profile, len(s.state.Profiles))
	for i, p := range s.state.Profiles {
		out[i] = cloneProfile(p)
	}
	return out
}

// CreateProfile adds a profile and makes it current. School profiles start
// without branding or members; committee profiles inherit them from the
// current profile.
func (s *SettingsStore) CreateProfile(name string, typ ProfileType) (Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Profile{}, NewError(KindValidation, "profile name is required", nil)
	}
	if err := validProfileType(typ); err != nil {
		return Profile{}, err
	}
	return s.mutateProfile(func(state *settingsState, now time.Time) (Profile, error) {
		current := state.Profiles[max(indexOfProfile(state.Profiles, state.CurrentProfileID), 0)].Settings
		settings := DefaultProfileSettings()
		settings.FrequentContent = append([]FrequentContent(nil), current.FrequentContent...)
		if typ == ProfileSociety {
			settings.SchoolName = current.SchoolName
			settings.SchoolCode = current.SchoolCode
			settings.SchoolAddress = current.SchoolAddress
			settings.Members = append([]Member(nil), current.Members...)
		}
		profile := Profile{
			ID:        s.NewID(),
			Name:      name,
			Type:      typ,
			CreatedAt: now,
			UpdatedAt: now,
			Settings:  settings,
		}
		state.Profiles = append(state.Profiles, profile)
		state.CurrentProfileID = profile.ID
		return profile, nil
	})
}

// UpdateProfile renames or retypes a profile.
func (s *SettingsStore) UpdateProfile(id string, patch ProfilePatch) error {
	if patch.Type != nil {
		if err := validProfileType(*patch.Type); err != nil {
			return err
		}
	}
	_, err := s.mutateProfile(func(state *settingsState, now time.Time) (Profile, error) {
		idx := indexOfProfile(state.Profiles, id)
		if idx < 0 {
			return Profile{}, profileNotFound(id)
		}
		p := &state.Profiles[idx]
		if patch.Name != nil {
			name := strings.TrimSpace(*patch.Name)
			if name == "" {
				return Profile{}, NewError(KindValidation, "profile name is required", nil)
			}
			p.Name = name
		}
		if patch.Type != nil {
			p.Type = *patch.Type
		}
		p.UpdatedAt = now
		return *p, nil
	})
	return err
}

// DeleteProfile removes a profile. The last profile cannot be removed; when
// the current profile is removed the first remaining becomes current.
func (s *SettingsStore) DeleteProfile(id string) error {
	_, err := s.mutateProfile(func(state *settingsState, _ time.Time) (Profile, error) {
		if len(state.Profiles) <= 1 {
			return Profile{}, NewError(KindValidation, "cannot delete the last profile", nil)
		}
		idx := indexOfProfile(state.Profiles, id)
		if idx < 0 {
			return Profile{}, profileNotFound(id)
		}
		removed := state.Profiles[idx]
		state.Profiles = append(state.Profiles[:idx], state.Profiles[idx+1:]...)
		if state.CurrentProfileID == id {
			state.CurrentProfileID = state.Profiles[0].ID
		}
		return removed, nil
	})
	return err
}

// DuplicateProfile copies a profile under a new name. The current profile
// does not change.
func (s *SettingsStore) DuplicateProfile(id, name string) (Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Profile{}, NewError(KindValidation, "profile name is required", nil)
	}
	return s.mutateProfile(func(state *settingsState, now time.Time) (Profile, error) {
		idx := indexOfProfile(state.Profiles, id)
		if idx < 0 {
			return Profile{}, profileNotFound(id)
		}
		dup := cloneProfile(state.Profiles[idx])
		dup.ID = s.NewID()
		dup.Name = name
		dup.CreatedAt = now
		dup.UpdatedAt = now
		state.Profiles = append(state.Profiles, dup)
		return dup, nil
	})
}

// SwitchProfile makes id the current profile.
func (s *SettingsStore) SwitchProfile(id string) error {
	_, err := s.mutateProfile(func(state *settingsState, _ time.Time) (Profile, error) {
		idx := indexOfProfile(state.Profiles, id)
		if idx < 0 {
			return Profile{}, profileNotFound(id)
		}
		state.CurrentProfileID = id
		return state.Profiles[idx], nil
	})
	return err
}

// UpdateSettings merges patch into the current profile.
func (s *SettingsStore) UpdateSettings(patch SettingsPatch) error {
	return s.mutateCurrent(func(settings *ProfileSettings) error {
		*settings = patch.Apply(*settings)
		return nil
	})
}

// AddMember appends a member with a new ID.
func (s *SettingsStore) AddMember(m Member) (Member, error) {
	if strings.TrimSpace(m.Nama) == "" {
		return Member{}, NewError(KindValidation, "member name is required", nil)
	}
	m.ID = s.newID()
	err := s.mutateCurrent(func(settings *ProfileSettings) error {
		settings.Members = append(settings.Members, m)
		return nil
	})
	if err != nil {
		return Member{}, err
	}
	return m, nil
}

// UpdateMember edits a member of the current profile.
func (s *SettingsStore) UpdateMember(id string, patch MemberPatch) error {
	return s.mutateCurrent(func(settings *ProfileSettings) error {
		for i := range settings.Members {
			if settings.Members[i].ID == id {
				setString(&settings.Members[i].Nama, patch.Nama)
				setString(&settings.Members[i].Jawatan, patch.Jawatan)
				return nil
			}
		}
		return NewError(KindNotFound, fmt.Sprintf("member %q not found", id), nil)
	})
}

// RemoveMember deletes a member of the current profile.
func (s *SettingsStore) RemoveMember(id string) error {
	return s.mutateCurrent(func(settings *ProfileSettings) error {
		for i := range settings.Members {
			if settings.Members[i].ID == id {
				settings.Members = append(settings.Members[:i], settings.Members[i+1:]...)
				if settings.UserMemberID == id {
					settings.UserMemberID = ""
				}
				return nil
			}
		}
		return NewError(KindNotFound, fmt.Sprintf("member %q not found", id), nil)
	})
}

// AddFrequentContent appends a snippet with a new ID.
func (s *SettingsStore) AddFrequentContent(c FrequentContent) (FrequentContent, error) {
	if strings.TrimSpace(c.Name) == "" {
		return FrequentContent{}, NewError(KindValidation, "content name is required", nil)
	}
	c.ID = s.newID()
	err := s.mutateCurrent(func(settings *ProfileSettings) error {
		settings.FrequentContent = append(settings.FrequentContent, c)
		return nil
	})
	if err != nil {
		return FrequentContent{}, err
	}
	return c, nil
}

// UpdateFrequentContent edits a snippet of the current profile.
func (s *SettingsStore) UpdateFrequentContent(id string, patch FrequentContentPatch) error {
	return s.mutateCurrent(func(settings *ProfileSettings) error {
		for i := range settings.FrequentContent {
			c := &settings.FrequentContent[i]
			if c.ID == id {
				setString(&c.Name, patch.Name)
				setString(&c.Content, patch.Content)
				if patch.Category != nil {
					c.Category = *patch.Category
				}
				return nil
			}
		}
		return NewError(KindNotFound, fmt.Sprintf("content %q not found", id), nil)
	})
}

// RemoveFrequentContent deletes a snippet of the current profile.
func (s *SettingsStore) RemoveFrequentContent(id string) error {
	return s.mutateCurrent(func(settings *ProfileSettings) error {
		for i := range settings.FrequentContent {
			if settings.FrequentContent[i].ID == id {
				settings.FrequentContent = append(settings.FrequentContent[:i], settings.FrequentContent[i+1:]...)
				return nil
			}
		}
		return NewError(KindNotFound, fmt.Sprintf("content %q not found", id), nil)
	})
}

// ResetCurrentProfile restores the default settings on the current profile.
func (s *SettingsStore) ResetCurrentProfile() error {
	return s.mutateCurrent(func(settings *ProfileSettings) error {
		*settings = DefaultProfileSettings()
		return nil
	})
}

// Flush persists pending changes now.
func (s *SettingsStore) Flush(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if !s.dirty {
		s.mu.Unlock()
		return nil
	}
	payload, err := json.Marshal(s.state)
	s.dirty = false
	s.mu.Unlock()
	if err != nil {
		return NewError(KindInternal, "encode settings", err)
	}

	if err := s.KV.Set(ctx, s.Key, payload); err != nil {
		s.mu.Lock()
		s.dirty = true
		s.mu.Unlock()
		return NewError(KindInternal, "save settings", err)
	}
	s.Logger.Debugf("settings saved (%d bytes)", len(payload))
	return nil
}

// Close flushes pending changes and stops further saves.
func (s *SettingsStore) Close(ctx context.Context) error {
	err := s.Flush(ctx)
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return err
}

func (s *SettingsStore) mutateProfile(fn func(state *settingsState, now time.Time) (Profile, error)) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.readyLocked(); err != nil {
		return Profile{}, err
	}
	next := cloneState(s.state)
	profile, err := fn(&next, s.Now())
	if err != nil {
		return Profile{}, err
	}
	s.state = next
	s.scheduleLocked()
	return cloneProfile(profile), nil
}

func (s *SettingsStore) mutateCurrent(fn func(settings *ProfileSettings) error) error {
	_, err := s.mutateProfile(func(state *settingsState, now time.Time) (Profile, error) {
		idx := indexOfProfile(state.Profiles, state.CurrentProfileID)
		if idx < 0 {
			return Profile{}, profileNotFound(state.CurrentProfileID)
		}
		p := &state.Profiles[idx]
		if err := fn(&p.Settings); err != nil {
			return Profile{}, err
		}
		p.UpdatedAt = now
		return *p, nil
	})
	return err
}

func (s *SettingsStore) readyLocked() error {
	if !s.loaded {
		return NewError(KindInternal, "settings not loaded", nil)
	}
	if s.closed {
		return NewError(KindInternal, "settings store is closed", nil)
	}
	return nil
}

func (s *SettingsStore) scheduleLocked() {
	s.dirty = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.Debounce, func() {
		if err := s.Flush(context.Background()); err != nil {
			s.Logger.Errorf("settings save failed: %v", err)
		}
	})
}

func (s *SettingsStore) defaults() {
	if s.Key == "" {
		s.Key = DefaultSettingsKey
	}
	if s.Debounce <= 0 {
		s.Debounce = DefaultSaveDebounce
	}
	if s.Logger == nil {
		s.Logger = NopLogger{}
	}
	if s.Now == nil {
		s.Now = time.Now
	}
	if s.NewID == nil {
		s.NewID = func() string { return uuid.NewString() }
	}
}

func (s *SettingsStore) newID() string {
	if s.NewID == nil {
		return uuid.NewString()
	}
	return s.NewID()
}

func validProfileType(t ProfileType) error {
	if t != ProfileSchool && t != ProfileSociety {
		return NewError(KindValidation, fmt.Sprintf("unknown profile type %q", t), nil)
	}
	return nil
}

func profileNotFound(id string) error {
	return NewError(KindNotFound, fmt.Sprintf("profile %q not found", id), nil)
}

func indexOfProfile(profiles []Profile, id string) int {
	for i, p := range profiles {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func cloneState(s settingsState) settingsState {
	out := settingsState{CurrentProfileID: s.CurrentProfileID, Profiles: make([]Profile, len(s.Profiles))}
	for i, p := range s.Profiles {
		out.Profiles[i] = cloneProfile(p)
	}
	return out
}

func cloneProfile(p Profile) Profile {
	p.Settings.Members = append([]Member(nil), p.Settings.Members...)
	p.Settings.FrequentContent = append([]FrequentContent(nil), p.Settings.FrequentContent...)
	return p
}

// MinitAssets returns the profile's images and font for a minit render.
func (ps ProfileSettings) MinitAssets() MinitAssets {
	return MinitAssets{
		Font:                  ps.Font,
		Logo1:                 ps.Logo1,
		Logo2:                 ps.Logo2,
		SetiausahaSignature:   ps.SetiausahaSignature,
		KetuaPanitiaSignature: ps.KetuaPanitiaSignature,
	}
}

// ApplyToOpr fills branding the report leaves empty.
func (ps ProfileSettings) ApplyToOpr(data *OprData) {
	if data == nil {
		return
	}
	fill := func(dst *string, v string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = v
		}
	}
	fill(&data.SchoolName, ps.SchoolName)
	fill(&data.SchoolCode, ps.SchoolCode)
	fill(&data.SchoolAddress, ps.SchoolAddress)
	fill(&data.Logo1Base64, ps.Logo1)
	fill(&data.Logo2Base64, ps.Logo2)
	if data.Font == "" {
		data.Font = ps.Font
	}
}

// Signatories picks the secretary, committee head and headmaster from the
// member list.
func (ps ProfileSettings) Signatories() (setiausaha, ketua, guruBesar *Member) {
	for i := range ps.Members {
		m := &ps.Members[i]
		jawatan := strings.ToLower(m.Jawatan)
		if setiausaha == nil && ps.UserMemberID != "" && m.ID == ps.UserMemberID {
			setiausaha = m
		}
		if ketua == nil && strings.Contains(jawatan, "ketua panitia") {
			ketua = m
		}
		if guruBesar == nil && strings.Contains(jawatan, "guru besar") {
			guruBesar = m
		}
	}
	return setiausaha, ketua, guruBesar
}

// ApplyToMinit fills attendance and signatories the record leaves empty.
func (ps ProfileSettings) ApplyToMinit(data *MinitData, profileName string) {
	if data == nil {
		return
	}
	if strings.TrimSpace(data.Panitia) == "" {
		data.Panitia = profileName
	}
	if len(data.Ahli) == 0 {
		for _, m := range ps.Members {
			data.Ahli = append(data.Ahli, AhliEntry{ID: m.ID, Nama: m.Nama, Jawatan: m.Jawatan})
		}
	}
	sec, ketua, gb := ps.Signatories()
	fillSignature(&data.Setiausaha, sec)
	fillSignature(&data.KetuaPanitia, ketua)
	fillSignature(&data.GuruBesar, gb)
}

func fillSignature(sig *SignatureInfo, m *Member) {
	if m == nil || strings.TrimSpace(sig.Name) != "" {
		return
	}
	sig.Name = m.Nama
	if strings.TrimSpace(sig.Title1) == "" {
		sig.Title1 = m.Jawatan
	}
}
