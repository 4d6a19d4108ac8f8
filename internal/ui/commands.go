// This file contains tea.Cmd factories that wrap engine operations which
// persist settings, so the Bubble Tea event loop stays responsive. Each
// command returns a message type defined in messages.go.
package ui

import (
	"time"

	"grilltimer/internal/engine"

	tea "github.com/charmbracelet/bubbletea"
)

// tickCmd returns a command that sends a tick every second.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForEventCmd blocks until the engine emits the next event. It is
// re-issued after every event.
func waitForEventCmd(events <-chan engine.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return engineClosedMsg{}
		}
		return engineEventMsg{event: ev}
	}
}

// =============================================================================
// Timer Commands
// =============================================================================

func addTimerCmd(eng *engine.Engine, name string, presets [2]time.Duration) tea.Cmd {
	return func() tea.Msg {
		id, err := eng.AddTimer(name, presets)
		if err == nil {
			if tv, ok := eng.Snapshot().Timer(id); ok {
				name = tv.Name
			}
		}
		return timerAddedMsg{id: id, name: name, err: err}
	}
}

func removeTimerCmd(eng *engine.Engine, id, name string) tea.Cmd {
	return func() tea.Msg {
		err := eng.RemoveTimer(id)
		return timerRemovedMsg{id: id, name: name, err: err}
	}
}

func renameTimerCmd(eng *engine.Engine, id, name string) tea.Cmd {
	return func() tea.Msg {
		err := eng.RenameTimer(id, name)
		return timerRenamedMsg{id: id, name: name, err: err}
	}
}

func setPresetsCmd(eng *engine.Engine, id, label string, presets [2]time.Duration) tea.Cmd {
	return func() tea.Msg {
		err := eng.SetPresets(id, presets)
		return presetsSavedMsg{label: label, err: err}
	}
}

func setPreheatCmd(eng *engine.Engine, d time.Duration) tea.Cmd {
	return func() tea.Msg {
		err := eng.SetPreheatDuration(d)
		return presetsSavedMsg{label: "Preheat", err: err}
	}
}

// =============================================================================
// Settings Commands
// =============================================================================

// toggleCmd saves a flipped alert toggle through set.
func toggleCmd(label string, on bool, set func(bool) error) tea.Cmd {
	return func() tea.Msg {
		err := set(on)
		return settingToggledMsg{label: label, on: on, err: err}
	}
}
