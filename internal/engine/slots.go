package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"grilltimer/internal/settings"
	"grilltimer/internal/timer"
)

// slotLocked returns the slot with id. e.mu must be held.
func (e *Engine) slotLocked(id string) (*timer.Slot, error) {
	for _, s := range e.slots {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (e *Engine) additionalDefsLocked() []settings.TimerDef {
	var defs []settings.TimerDef
	for _, s := range e.slots {
		if !s.Permanent {
			defs = append(defs, defFromSlot(s))
		}
	}
	return defs
}

func (e *Engine) additionalCountLocked() int {
	n := 0
	for _, s := range e.slots {
		if !s.Permanent {
			n++
		}
	}
	return n
}

// CanAddTimer reports whether another additional timer fits under the
// entitlement cap.
func (e *Engine) CanAddTimer() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.canAddLocked()
}

func (e *Engine) canAddLocked() bool {
	limit := e.additionalCap(e.prefs.Premium())
	return limit < 0 || e.additionalCountLocked() < limit
}

func validPresets(presets [2]time.Duration) error {
	for i, p := range presets {
		if p < timer.Step {
			return fmt.Errorf("preset %d must be at least one second", i+1)
		}
	}
	return nil
}

// AddTimer creates an additional timer and returns its id. An empty name
// becomes "Timer N".
func (e *Engine) AddTimer(name string, presets [2]time.Duration) (string, error) {
	if err := validPresets(presets); err != nil {
		return "", err
	}
	for i := range presets {
		presets[i] = presets[i].Truncate(time.Second)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.canAddLocked() {
		return "", ErrSlotLimit
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("Timer %d", len(e.slots)+1)
	}
	slot := timer.NewSlot(e.newID(), name, presets, false)

	prev := e.slots
	e.slots = append(append([]*timer.Slot(nil), e.slots...), slot)
	if err := e.prefs.SetAdditionalTimers(e.additionalDefsLocked()); err != nil {
		e.slots = prev
		return "", fmt.Errorf("save timers: %w", err)
	}
	e.logger.Info("timer added", "timer", slot.ID, "name", name)
	return slot.ID, nil
}

// RemoveTimer deletes an additional timer. Permanent timers cannot be
// removed.
func (e *Engine) RemoveTimer(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := -1
	for i, s := range e.slots {
		if s.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if e.slots[idx].Permanent {
		return ErrPermanentSlot
	}

	prev := e.slots
	next := make([]*timer.Slot, 0, len(e.slots)-1)
	next = append(next, e.slots[:idx]...)
	next = append(next, e.slots[idx+1:]...)
	e.slots = next
	if err := e.prefs.SetAdditionalTimers(e.additionalDefsLocked()); err != nil {
		e.slots = prev
		return fmt.Errorf("save timers: %w", err)
	}
	e.logger.Info("timer removed", "timer", id)
	return nil
}

// RenameTimer changes a timer's display name.
func (e *Engine) RenameTimer(id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("timer name cannot be empty")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	s, err := e.slotLocked(id)
	if err != nil {
		return err
	}
	old := s.Name
	s.Name = name
	if err := e.prefs.SaveTimer(defFromSlot(s)); err != nil {
		s.Name = old
		return fmt.Errorf("save timer: %w", err)
	}
	return nil
}

// SetPresets changes a timer's two preset durations. The running
// countdown is not affected.
func (e *Engine) SetPresets(id string, presets [2]time.Duration) error {
	if err := validPresets(presets); err != nil {
		return err
	}
	for i := range presets {
		presets[i] = presets[i].Truncate(time.Second)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	s, err := e.slotLocked(id)
	if err != nil {
		return err
	}
	old := s.Presets
	s.Presets = presets
	if err := e.prefs.SaveTimer(defFromSlot(s)); err != nil {
		s.Presets = old
		return fmt.Errorf("save timer: %w", err)
	}
	return nil
}

// SelectPreset restarts a timer from preset 0 or 1 with elapsed time
// cleared.
func (e *Engine) SelectPreset(id string, index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, err := e.slotLocked(id)
	if err != nil {
		return err
	}
	return s.SelectPresetIndex(index)
}

// StartTimer resumes a timer from its remaining time. It reports false
// when there is nothing left to count down.
func (e *Engine) StartTimer(id string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, err := e.slotLocked(id)
	if err != nil {
		return false, err
	}
	return s.Start(), nil
}

// PauseTimer stops a timer without clearing it.
func (e *Engine) PauseTimer(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, err := e.slotLocked(id)
	if err != nil {
		return err
	}
	s.Pause()
	return nil
}

// ToggleTimer pauses a running timer or resumes a paused one.
func (e *Engine) ToggleTimer(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, err := e.slotLocked(id)
	if err != nil {
		return err
	}
	if s.Running() {
		s.Pause()
	} else {
		s.Start()
	}
	return nil
}

// ResetTimer clears remaining and elapsed time and stops the timer.
func (e *Engine) ResetTimer(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, err := e.slotLocked(id)
	if err != nil {
		return err
	}
	s.Reset()
	return nil
}

// StartPreheat resumes a paused preheat or begins a new one from the
// configured duration.
func (e *Engine) StartPreheat() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.preheat.Start() {
		e.preheat.Begin()
	}
}

// PausePreheat stops the preheat countdown without clearing it.
func (e *Engine) PausePreheat() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.preheat.Pause()
}

// TogglePreheat pauses a running preheat or starts it.
func (e *Engine) TogglePreheat() {
	e.mu.Lock()
	running := e.preheat.Running()
	e.mu.Unlock()
	if running {
		e.PausePreheat()
		return
	}
	e.StartPreheat()
}

// ResetPreheat clears the preheat countdown.
func (e *Engine) ResetPreheat() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.preheat.Reset()
}

// SetPreheatDuration changes the preheat duration used by the next start.
func (e *Engine) SetPreheatDuration(d time.Duration) error {
	if d < timer.Step {
		return errors.New("preheat duration must be at least one second")
	}
	d = d.Truncate(time.Second)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.prefs.SetPreheatSeconds(int(d / time.Second)); err != nil {
		return fmt.Errorf("save preheat duration: %w", err)
	}
	e.preheat.Duration = d
	return nil
}
