package engine

import (
	"context"
	"errors"
	"fmt"

	"grilltimer/internal/audio"
	"grilltimer/internal/haptics"
	"grilltimer/internal/notify"
	"grilltimer/internal/sound"
)

type alertState struct {
	presented bool
	timerID   string
	timerName string
	haptics   *haptics.Scheduler
}

// handleExpiry runs the alert pipeline for one expired countdown. Every
// stage is independent: a failed sound still presents the alert and
// attempts the announcement.
func (e *Engine) handleExpiry(ac AlertContext, id, name string) {
	e.logger.Info("timer expired", "context", ac.String(), "timer", id)
	e.emit(Event{Kind: EventExpired, Context: ac, TimerID: id, TimerName: name})

	if e.prefs.SoundEnabled() {
		e.playAlert(ac, id, name)
	}

	e.mu.Lock()
	st := e.alerts[ac]
	st.presented = true
	st.timerID = id
	st.timerName = name
	if e.prefs.HapticsEnabled() {
		st.haptics.Start()
	}
	e.mu.Unlock()

	if e.announcer != nil {
		d := e.announcer.AnnounceCompletion(id, name)
		e.logger.Debug("announcement decision", "timer", id, "decision", d.String())
		e.emit(Event{Kind: EventAnnouncement, Context: ac, TimerID: id, TimerName: name, Decision: d})
	}

	if e.notifyEnabled && e.notifier.IsSupported() {
		go func() {
			if err := e.notifier.Send(context.Background(), notify.Completed(name)); err != nil {
				e.logger.Warn("desktop notification failed", "timer", id, "error", err)
			}
		}()
	}
}

// playAlert resolves the selected sound and loops it for ac. A missing
// custom or bundled file clears the selection. A sound that fails to
// decode or start falls back to the system tone while the selection is
// kept.
func (e *Engine) playAlert(ac AlertContext, id, name string) {
	sel := e.prefs.Selection()
	res := e.resolver.Resolve(sel, e.prefs.Premium())
	if res.Deselect {
		cleared, err := e.prefs.ClearSelectionOverride(sel)
		switch {
		case err != nil:
			e.logger.Warn("failed to clear sound selection", "error", err)
		case cleared:
			e.logger.Info("selected sound is missing; reverted to system sound", "selection", sel.String())
		default:
			e.logger.Debug("sound selection changed while resolving; keeping it", "selection", sel.String())
		}
	}

	e.soundMu.Lock()
	defer e.soundMu.Unlock()

	err := e.playLocked(ac, res.Source)
	if err != nil && res.Source.Tier != sound.TierSystem {
		e.emit(Event{Kind: EventSoundFailed, Context: ac, TimerID: id, TimerName: name, Err: err})
		fallback := sound.SystemSource(sel.SystemID())
		e.logger.Warn("alert sound failed; falling back", "source", res.Source.String(), "fallback", fallback.String(), "error", err)
		err = e.playLocked(ac, fallback)
	}
	if err != nil {
		e.emit(Event{Kind: EventSoundFailed, Context: ac, TimerID: id, TimerName: name, Err: err})
	}
}

// playLocked starts src on behalf of ac. e.soundMu must be held.
func (e *Engine) playLocked(ac AlertContext, src sound.Source) error {
	e.mu.Lock()
	e.soundGen++
	gen := e.soundGen
	e.soundOwner = ac
	e.hasOwner = true
	e.mu.Unlock()

	return e.player.Play(src, true, func(err error) {
		e.mu.Lock()
		if e.soundGen == gen {
			e.hasOwner = false
		}
		e.mu.Unlock()
		if err != nil && !errors.Is(err, audio.ErrInterrupted) {
			e.logger.Warn("alert sound ended with error", "source", src.String(), "error", err)
		}
	})
}

// Dismiss stops the alert of ac: its haptic cadence and, when ac owns it,
// the alert sound. A running announcement is left to finish. Other
// contexts are untouched.
func (e *Engine) Dismiss(ac AlertContext) {
	e.soundMu.Lock()
	defer e.soundMu.Unlock()

	e.mu.Lock()
	st, ok := e.alerts[ac]
	if !ok {
		e.mu.Unlock()
		return
	}
	wasPresented := st.presented
	st.presented = false
	st.haptics.Stop()
	ownsSound := e.hasOwner && e.soundOwner == ac
	id, name := st.timerID, st.timerName
	e.mu.Unlock()

	if ownsSound {
		e.player.Stop()
	}
	if wasPresented {
		e.logger.Debug("alert dismissed", "context", ac.String(), "timer", id)
		e.emit(Event{Kind: EventDismissed, Context: ac, TimerID: id, TimerName: name})
	}
}

// DismissAll dismisses every context and stops any sound.
func (e *Engine) DismissAll() {
	for _, ac := range []AlertContext{ContextInterval, ContextPreheat} {
		e.Dismiss(ac)
	}
	e.stopSound()
}

// stopSound stops the alert sound regardless of owner.
func (e *Engine) stopSound() {
	e.soundMu.Lock()
	defer e.soundMu.Unlock()
	e.player.Stop()
}

// Presented reports whether ac is currently presented.
func (e *Engine) Presented(ac AlertContext) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.alerts[ac]
	return ok && st.presented
}

// SetSoundEnabled toggles alert sound. Disabling it silences a playing
// alert.
func (e *Engine) SetSoundEnabled(v bool) error {
	if err := e.prefs.SetSoundEnabled(v); err != nil {
		return fmt.Errorf("save sound setting: %w", err)
	}
	if !v {
		e.stopSound()
	}
	return nil
}

// SetHapticsEnabled toggles haptic pulses for presented alerts.
func (e *Engine) SetHapticsEnabled(v bool) error {
	if err := e.prefs.SetHapticsEnabled(v); err != nil {
		return fmt.Errorf("save haptics setting: %w", err)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, st := range e.alerts {
		switch {
		case !v:
			st.haptics.Stop()
		case st.presented:
			st.haptics.Start()
		}
	}
	return nil
}

// SetVoiceEnabled toggles voice announcements.
func (e *Engine) SetVoiceEnabled(v bool) error {
	if err := e.prefs.SetVoiceEnabled(v); err != nil {
		return fmt.Errorf("save voice setting: %w", err)
	}
	return nil
}

// SetHeadphonesOnly toggles the headphone requirement for announcements.
func (e *Engine) SetHeadphonesOnly(v bool) error {
	if err := e.prefs.SetHeadphonesOnly(v); err != nil {
		return fmt.Errorf("save headphones setting: %w", err)
	}
	return nil
}
