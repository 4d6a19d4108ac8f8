package timer

import (
	"fmt"
	"time"
)

// Slot is a named interval timer with two preset durations. The embedded
// Countdown carries both the flip countdown and the elapsed counter.
type Slot struct {
	ID        string
	Name      string
	Presets   [2]time.Duration
	Permanent bool

	Countdown
}

// NewSlot creates an idle slot.
func NewSlot(id, name string, presets [2]time.Duration, permanent bool) *Slot {
	return &Slot{
		ID:        id,
		Name:      name,
		Presets:   presets,
		Permanent: permanent,
	}
}

// SelectPresetIndex starts the slot from preset 0 or 1.
func (s *Slot) SelectPresetIndex(i int) error {
	if i < 0 || i >= len(s.Presets) {
		return fmt.Errorf("preset index %d out of range", i)
	}
	s.SelectPreset(s.Presets[i])
	return nil
}

// Preheat is the standalone grill preheat countdown.
type Preheat struct {
	Duration time.Duration

	Countdown
}

// Begin starts the preheat countdown from its configured duration.
func (p *Preheat) Begin() {
	p.SelectPreset(p.Duration)
}

// Format renders d as MM:SS, or H:MM:SS once it reaches an hour.
func Format(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
