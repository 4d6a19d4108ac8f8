package engine

import (
	"time"

	"grilltimer/internal/timer"
)

// TimerView is a read-only copy of one timer slot.
type TimerView struct {
	ID        string
	Name      string
	Presets   [2]time.Duration
	Permanent bool
	Remaining time.Duration
	Elapsed   time.Duration
	Running   bool
	State     timer.State
}

// PreheatView is a read-only copy of the preheat timer.
type PreheatView struct {
	Duration  time.Duration
	Remaining time.Duration
	Elapsed   time.Duration
	Running   bool
	State     timer.State
}

// AlertView describes one alert context.
type AlertView struct {
	Context        AlertContext
	Presented      bool
	TimerID        string
	TimerName      string
	HapticsRunning bool
	Pulses         int
}

// Flags are the alert toggles at snapshot time.
type Flags struct {
	Sound          bool
	Haptics        bool
	Voice          bool
	HeadphonesOnly bool
	Premium        bool
}

// Snapshot is a consistent copy of the engine state for rendering.
type Snapshot struct {
	Timers      []TimerView
	Preheat     PreheatView
	Alerts      []AlertView
	Flags       Flags
	CanAddTimer bool
}

// AnyPresented reports whether some alert context is presented.
func (s Snapshot) AnyPresented() bool {
	for _, a := range s.Alerts {
		if a.Presented {
			return true
		}
	}
	return false
}

// Alert returns the view of ac.
func (s Snapshot) Alert(ac AlertContext) AlertView {
	for _, a := range s.Alerts {
		if a.Context == ac {
			return a
		}
	}
	return AlertView{Context: ac}
}

// Timer returns the view of the timer with id.
func (s Snapshot) Timer(id string) (TimerView, bool) {
	for _, t := range s.Timers {
		if t.ID == id {
			return t, true
		}
	}
	return TimerView{}, false
}

// Snapshot copies the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := Snapshot{
		Timers: make([]TimerView, 0, len(e.slots)),
		Preheat: PreheatView{
			Duration:  e.preheat.Duration,
			Remaining: e.preheat.Remaining(),
			Elapsed:   e.preheat.Elapsed(),
			Running:   e.preheat.Running(),
			State:     e.preheat.State(),
		},
		Flags: Flags{
			Sound:          e.prefs.SoundEnabled(),
			Haptics:        e.prefs.HapticsEnabled(),
			Voice:          e.prefs.VoiceEnabled(),
			HeadphonesOnly: e.prefs.HeadphonesOnly(),
			Premium:        e.prefs.Premium(),
		},
		CanAddTimer: e.canAddLocked(),
	}
	for _, s := range e.slots {
		snap.Timers = append(snap.Timers, TimerView{
			ID:        s.ID,
			Name:      s.Name,
			Presets:   s.Presets,
			Permanent: s.Permanent,
			Remaining: s.Remaining(),
			Elapsed:   s.Elapsed(),
			Running:   s.Running(),
			State:     s.State(),
		})
	}
	for _, ac := range []AlertContext{ContextInterval, ContextPreheat} {
		st := e.alerts[ac]
		snap.Alerts = append(snap.Alerts, AlertView{
			Context:        ac,
			Presented:      st.presented,
			TimerID:        st.timerID,
			TimerName:      st.timerName,
			HapticsRunning: st.haptics.Running(),
			Pulses:         st.haptics.Count(),
		})
	}
	return snap
}
