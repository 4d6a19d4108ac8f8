package settings

import (
	"strings"

	"grilltimer/internal/sound"
)

// Keys under which preferences are stored.
const (
	keyTimerPrefix      = "timer."
	keyAdditionalTimers = "timers.additional"
	keyPreheatSeconds   = "preheat.seconds"
	keySoundEnabled     = "alerts.sound_enabled"
	keyHapticsEnabled   = "alerts.haptics_enabled"
	keyVoiceEnabled     = "alerts.voice_enabled"
	keyHeadphonesOnly   = "alerts.headphones_only"
	keySelection        = "alerts.sound_selection"
	keyAnnouncement     = "alerts.announcement_message"
	keyVoiceID          = "alerts.voice_id"
	keyPremium          = "entitlements.premium"
)

// Permanent slot ids.
const (
	Interval1 = "interval-1"
	Interval2 = "interval-2"
)

// DefaultPreheatSeconds is the preheat duration before it is configured.
const DefaultPreheatSeconds = 15 * 60

// TimerDef is the persisted definition of a timer slot. Countdown state is
// never persisted.
type TimerDef struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Presets [2]int `json:"presets"` // seconds
}

var permanentDefaults = []TimerDef{
	{ID: Interval1, Name: "Flip", Presets: [2]int{4 * 60, 6 * 60}},
	{ID: Interval2, Name: "Rest", Presets: [2]int{5 * 60, 10 * 60}},
}

// IsPermanent reports whether id names one of the two fixed slots.
func IsPermanent(id string) bool {
	return id == Interval1 || id == Interval2
}

// Settings is the typed view over a Store.
type Settings struct {
	store *Store
}

// New wraps store.
func New(store *Store) *Settings {
	return &Settings{store: store}
}

// Store returns the underlying key/value store.
func (s *Settings) Store() *Store {
	return s.store
}

// PermanentTimers returns the two fixed slots, with stored names and
// presets applied over the defaults.
func (s *Settings) PermanentTimers() []TimerDef {
	out := make([]TimerDef, len(permanentDefaults))
	for i, def := range permanentDefaults {
		var stored TimerDef
		if s.store.Get(keyTimerPrefix+def.ID, &stored) {
			if strings.TrimSpace(stored.Name) != "" {
				def.Name = stored.Name
			}
			for j, p := range stored.Presets {
				if p > 0 {
					def.Presets[j] = p
				}
			}
		}
		out[i] = def
	}
	return out
}

// AdditionalTimers returns the user-created slots in creation order.
func (s *Settings) AdditionalTimers() []TimerDef {
	var defs []TimerDef
	s.store.Get(keyAdditionalTimers, &defs)
	return defs
}

// SetAdditionalTimers replaces the user-created slots.
func (s *Settings) SetAdditionalTimers(defs []TimerDef) error {
	if defs == nil {
		defs = []TimerDef{}
	}
	return s.store.Set(keyAdditionalTimers, defs)
}

// SaveTimer persists def, whether permanent or additional. An additional
// slot that is not yet stored is appended.
func (s *Settings) SaveTimer(def TimerDef) error {
	if IsPermanent(def.ID) {
		return s.store.Set(keyTimerPrefix+def.ID, def)
	}
	defs := s.AdditionalTimers()
	for i := range defs {
		if defs[i].ID == def.ID {
			defs[i] = def
			return s.SetAdditionalTimers(defs)
		}
	}
	return s.SetAdditionalTimers(append(defs, def))
}

// PreheatSeconds returns the configured preheat duration.
func (s *Settings) PreheatSeconds() int {
	if v := s.store.Int(keyPreheatSeconds, DefaultPreheatSeconds); v > 0 {
		return v
	}
	return DefaultPreheatSeconds
}

func (s *Settings) SetPreheatSeconds(v int) error {
	return s.store.Set(keyPreheatSeconds, v)
}

func (s *Settings) SoundEnabled() bool { return s.store.Bool(keySoundEnabled, true) }

func (s *Settings) SetSoundEnabled(v bool) error { return s.store.Set(keySoundEnabled, v) }

func (s *Settings) HapticsEnabled() bool { return s.store.Bool(keyHapticsEnabled, true) }

func (s *Settings) SetHapticsEnabled(v bool) error { return s.store.Set(keyHapticsEnabled, v) }

func (s *Settings) VoiceEnabled() bool { return s.store.Bool(keyVoiceEnabled, false) }

func (s *Settings) SetVoiceEnabled(v bool) error { return s.store.Set(keyVoiceEnabled, v) }

func (s *Settings) HeadphonesOnly() bool { return s.store.Bool(keyHeadphonesOnly, true) }

func (s *Settings) SetHeadphonesOnly(v bool) error { return s.store.Set(keyHeadphonesOnly, v) }

// Selection returns the alert sound selection.
func (s *Settings) Selection() sound.Selection {
	sel := sound.DefaultSelection()
	if !s.store.Get(keySelection, &sel) {
		return sound.DefaultSelection()
	}
	return sel
}

func (s *Settings) SetSelection(sel sound.Selection) error {
	return s.store.Set(keySelection, sel)
}

// ClearSelectionOverride drops the bundled or custom choice, but only while
// the stored selection still equals expected. A selection made in the
// meantime is kept. It reports whether the selection changed.
func (s *Settings) ClearSelectionOverride(expected sound.Selection) (bool, error) {
	cur := sound.DefaultSelection()
	return s.store.Update(keySelection, &cur, func() bool {
		if !cur.Equal(expected) || cur.Active() == sound.TierSystem {
			return false
		}
		cur = cur.WithoutOverride()
		return true
	})
}

// AnnouncementMessage returns the custom spoken message; empty means the
// default "<name> timer is complete."
func (s *Settings) AnnouncementMessage() string { return s.store.String(keyAnnouncement, "") }

func (s *Settings) SetAnnouncementMessage(v string) error {
	return s.store.Set(keyAnnouncement, strings.TrimSpace(v))
}

func (s *Settings) VoiceID() string { return s.store.String(keyVoiceID, "") }

func (s *Settings) SetVoiceID(v string) error { return s.store.Set(keyVoiceID, v) }

func (s *Settings) Premium() bool { return s.store.Bool(keyPremium, false) }

func (s *Settings) SetPremium(v bool) error { return s.store.Set(keyPremium, v) }
