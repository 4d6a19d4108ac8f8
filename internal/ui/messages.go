package ui

import (
	"time"

	"grilltimer/internal/engine"
)

// tickMsg drives the engine once a second.
type tickMsg time.Time

// engineEventMsg carries one alert event from the engine.
type engineEventMsg struct {
	event engine.Event
}

// engineClosedMsg is sent when the event channel has been closed.
type engineClosedMsg struct{}

// timerAddedMsg is sent when an additional timer has been created.
type timerAddedMsg struct {
	id   string
	name string
	err  error
}

// timerRemovedMsg is sent when an additional timer has been removed.
type timerRemovedMsg struct {
	id   string
	name string
	err  error
}

// timerRenamedMsg is sent when a timer has been renamed.
type timerRenamedMsg struct {
	id   string
	name string
	err  error
}

// presetsSavedMsg is sent when a timer's presets or the preheat duration
// have been saved.
type presetsSavedMsg struct {
	label string
	err   error
}

// settingToggledMsg is sent when an alert toggle has been saved.
type settingToggledMsg struct {
	label string
	on    bool
	err   error
}
