// Package sound models alert sound selection and resolves the selection to a
// playable source: a custom import, a bundled file or a system tone.
package sound

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrNotFound is returned when a sound id is not in a catalog or library.
	ErrNotFound = errors.New("sound not found")

	// ErrUnsupportedFormat is returned for files with an unknown extension.
	ErrUnsupportedFormat = errors.New("unsupported sound format")
)

// SystemSoundID identifies a built-in tone.
type SystemSoundID int

const (
	SystemAlarm      SystemSoundID = 1005
	SystemChime      SystemSoundID = 1013
	SystemTweet      SystemSoundID = 1016
	SystemAnticipate SystemSoundID = 1020
	SystemBloom      SystemSoundID = 1021
	SystemBeacon     SystemSoundID = 1304

	DefaultSystemSound = SystemAlarm
)

var systemSoundNames = map[SystemSoundID]string{
	SystemAlarm:      "Alarm",
	SystemChime:      "Chime",
	SystemTweet:      "Tweet",
	SystemAnticipate: "Anticipate",
	SystemBloom:      "Bloom",
	SystemBeacon:     "Beacon",
}

// SystemSounds returns every known system tone in id order.
func SystemSounds() []SystemSoundID {
	return []SystemSoundID{SystemAlarm, SystemChime, SystemTweet, SystemAnticipate, SystemBloom, SystemBeacon}
}

// Valid reports whether id is a known system tone.
func (id SystemSoundID) Valid() bool {
	_, ok := systemSoundNames[id]
	return ok
}

func (id SystemSoundID) String() string {
	if name, ok := systemSoundNames[id]; ok {
		return name
	}
	return "System " + strconv.Itoa(int(id))
}

// ParseSystemSound accepts a numeric id or a case-insensitive tone name.
func ParseSystemSound(s string) (SystemSoundID, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if id := SystemSoundID(n); id.Valid() {
			return id, nil
		}
		return 0, fmt.Errorf("system sound %d: %w", n, ErrNotFound)
	}
	for id, name := range systemSoundNames {
		if strings.EqualFold(name, s) {
			return id, nil
		}
	}
	return 0, fmt.Errorf("system sound %q: %w", s, ErrNotFound)
}

// Tier is the source class of an alert sound.
type Tier int

const (
	TierSystem Tier = iota
	TierBundled
	TierCustom
)

func (t Tier) String() string {
	switch t {
	case TierBundled:
		return "bundled"
	case TierCustom:
		return "custom"
	default:
		return "system"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tier) UnmarshalText(b []byte) error {
	switch string(b) {
	case "system":
		*t = TierSystem
	case "bundled":
		*t = TierBundled
	case "custom":
		*t = TierCustom
	default:
		return fmt.Errorf("unknown sound tier %q", b)
	}
	return nil
}

// Override points at a bundled or custom sound by id.
type Override struct {
	Tier Tier   `json:"tier"`
	ID   string `json:"id"`
}

// Selection is the user's alert sound choice. The system tone is always
// present as the last fallback; at most one of bundled or custom overrides
// it, so selecting one tier clears the other.
type Selection struct {
	System   SystemSoundID `json:"system"`
	Override *Override     `json:"override,omitempty"`
}

// DefaultSelection selects the default system tone.
func DefaultSelection() Selection {
	return Selection{System: DefaultSystemSound}
}

// WithSystem selects a system tone and clears any override.
func (s Selection) WithSystem(id SystemSoundID) Selection {
	return Selection{System: id}
}

// WithBundled selects a bundled sound, clearing any custom selection.
func (s Selection) WithBundled(id string) Selection {
	return Selection{System: s.system(), Override: &Override{Tier: TierBundled, ID: id}}
}

// WithCustom selects a custom sound, clearing any bundled selection.
func (s Selection) WithCustom(id string) Selection {
	return Selection{System: s.system(), Override: &Override{Tier: TierCustom, ID: id}}
}

// WithoutOverride drops the bundled or custom choice, keeping the tone.
func (s Selection) WithoutOverride() Selection {
	return Selection{System: s.system()}
}

// Equal reports whether s and o select the same sound.
func (s Selection) Equal(o Selection) bool {
	if s.system() != o.system() || s.Active() != o.Active() {
		return false
	}
	return s.Active() == TierSystem || s.Override.ID == o.Override.ID
}

// Active returns the tier that is selected.
func (s Selection) Active() Tier {
	if s.Override == nil || s.Override.ID == "" {
		return TierSystem
	}
	return s.Override.Tier
}

// SystemID returns the selected tone, or the default when unset.
func (s Selection) SystemID() SystemSoundID {
	return s.system()
}

// BundledID returns the selected bundled id.
func (s Selection) BundledID() (string, bool) {
	if s.Active() != TierBundled {
		return "", false
	}
	return s.Override.ID, true
}

// CustomID returns the selected custom id.
func (s Selection) CustomID() (string, bool) {
	if s.Active() != TierCustom {
		return "", false
	}
	return s.Override.ID, true
}

func (s Selection) system() SystemSoundID {
	if !s.System.Valid() {
		return DefaultSystemSound
	}
	return s.System
}

func (s Selection) String() string {
	switch s.Active() {
	case TierBundled, TierCustom:
		return s.Active().String() + ":" + s.Override.ID
	default:
		return "system:" + s.system().String()
	}
}
