// Package ui provides the terminal interface for grilltimer.
// This file contains the main App model which drives the engine clock,
// renders its state and routes keys using the Bubble Tea architecture.
package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"grilltimer/internal/config"
	"grilltimer/internal/engine"
	"grilltimer/internal/haptics"
	"grilltimer/internal/speech"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// AppConfig holds user configuration for the app behavior.
type AppConfig struct {
	Keys            *config.KeysConfig
	ConfirmRemovals bool
}

// App is the main application model.
type App struct {
	engine      *engine.Engine
	styles      *Styles
	config      *AppConfig
	timers      *TimersPane
	helpOverlay *HelpOverlay
	confirm     *confirmState
	showHelp    bool
	flash       bool
	width       int
	height      int
	status      string
	statusErr   bool
	statusUntil time.Time
	quitting    bool

	keys     GlobalKeyMap
	helpKeys HelpKeyMap
}

type confirmState struct {
	title string
	body  string
	cmd   tea.Cmd
}

// NewApp creates the application around eng.
func NewApp(eng *engine.Engine, styles *Styles, cfg *AppConfig) *App {
	if cfg == nil {
		cfg = &AppConfig{
			Keys:            &config.KeysConfig{},
			ConfirmRemovals: true,
		}
	}
	if cfg.Keys == nil {
		cfg.Keys = &config.KeysConfig{}
	}

	global := NewGlobalKeyMap(cfg.Keys)
	timers := NewTimersPane(eng, styles, cfg.Keys)

	return &App{
		engine:      eng,
		styles:      styles,
		config:      cfg,
		timers:      timers,
		helpOverlay: NewHelpOverlay(styles, global, timers.keys, timers.inKeys),
		keys:        global,
		helpKeys:    DefaultHelpKeyMap(),
	}
}

// Init starts the clock and the engine event pump.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		waitForEventCmd(a.engine.Events()),
	)
}

// Update handles all messages and routes them appropriately.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		a.engine.Tick()
		a.timers.Refresh()
		if a.status != "" && !a.statusUntil.IsZero() && time.Now().After(a.statusUntil) {
			a.status = ""
			a.statusErr = false
			a.statusUntil = time.Time{}
		}
		return a, tickCmd()

	case engineEventMsg:
		a.handleEvent(msg.event)
		a.timers.Refresh()
		return a, waitForEventCmd(a.engine.Events())

	case engineClosedMsg:
		return a, nil

	case timerAddedMsg:
		if msg.err != nil {
			if errors.Is(msg.err, engine.ErrSlotLimit) {
				a.SetStatus("Timer limit reached", true)
			} else {
				a.SetStatus("Add timer: "+msg.err.Error(), true)
			}
		} else {
			a.SetStatus("Added "+msg.name, false)
		}
		a.timers.Refresh()
		return a, nil

	case timerRemovedMsg:
		if msg.err != nil {
			a.SetStatus("Remove timer: "+msg.err.Error(), true)
		} else {
			a.SetStatus("Removed "+msg.name, false)
		}
		a.timers.Refresh()
		return a, nil

	case timerRenamedMsg:
		if msg.err != nil {
			a.SetStatus("Rename timer: "+msg.err.Error(), true)
		} else {
			a.SetStatus("Renamed to "+msg.name, false)
		}
		a.timers.Refresh()
		return a, nil

	case presetsSavedMsg:
		if msg.err != nil {
			a.SetStatus(msg.label+": "+msg.err.Error(), true)
		} else {
			a.SetStatus(msg.label+" times saved", false)
		}
		a.timers.Refresh()
		return a, nil

	case settingToggledMsg:
		if msg.err != nil {
			a.SetStatus(msg.label+": "+msg.err.Error(), true)
		} else {
			state := "off"
			if msg.on {
				state = "on"
			}
			a.SetStatus(msg.label+" "+state, false)
		}
		a.timers.Refresh()
		return a, nil

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.helpOverlay.SetSize(msg.Width, msg.Height)
		a.timers.SetSize(max(30, msg.Width-2), msg.Height-6)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a, a.timers.Update(msg)
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.confirm != nil {
		switch msg.String() {
		case "y", "Y", "enter":
			cmd := a.confirm.cmd
			a.confirm = nil
			return a, cmd
		case "n", "N", "esc":
			a.confirm = nil
			a.SetStatus("Canceled", false)
		}
		return a, nil
	}

	if a.showHelp {
		if key.Matches(msg, a.helpKeys.Close) {
			a.showHelp = false
		}
		return a, nil
	}

	if a.timers.IsEditing() {
		return a, a.timers.Update(msg)
	}

	snap := a.timers.Snapshot()

	// Dismiss takes priority over the list so enter never restarts a timer
	// while an alert is up.
	if snap.AnyPresented() && key.Matches(msg, a.keys.Dismiss) {
		a.dismiss(snap)
		return a, nil
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		a.quitting = true
		a.engine.Close()
		return a, tea.Quit

	case key.Matches(msg, a.keys.Help):
		a.showHelp = true
		return a, nil

	case key.Matches(msg, a.keys.Preheat):
		a.engine.TogglePreheat()
		a.timers.Refresh()
		return a, nil

	case key.Matches(msg, a.keys.PreheatReset):
		a.engine.ResetPreheat()
		a.timers.Refresh()
		return a, nil

	case key.Matches(msg, a.keys.ToggleSound):
		return a, toggleCmd("Sound", !snap.Flags.Sound, a.engine.SetSoundEnabled)

	case key.Matches(msg, a.keys.ToggleHaptics):
		return a, toggleCmd("Pulses", !snap.Flags.Haptics, a.engine.SetHapticsEnabled)

	case key.Matches(msg, a.keys.ToggleVoice):
		return a, toggleCmd("Voice", !snap.Flags.Voice, a.engine.SetVoiceEnabled)

	case key.Matches(msg, a.keys.ToggleHeadphones):
		return a, toggleCmd("Headphones only", !snap.Flags.HeadphonesOnly, a.engine.SetHeadphonesOnly)

	case key.Matches(msg, a.timers.keys.Remove):
		tv, ok := a.timers.Selected()
		if !ok {
			a.SetStatus("No timer selected", true)
			return a, nil
		}
		if tv.Permanent {
			a.SetStatus(tv.Name+" cannot be removed", true)
			return a, nil
		}
		cmd := removeTimerCmd(a.engine, tv.ID, tv.Name)
		if !a.config.ConfirmRemovals {
			return a, cmd
		}
		a.confirm = &confirmState{
			title: "Remove timer?",
			body:  tv.Name,
			cmd:   cmd,
		}
		return a, nil
	}

	return a, a.timers.Update(msg)
}

// dismiss stops the alert of the row under the cursor, or the other
// presented context when that one is quiet.
func (a *App) dismiss(snap engine.Snapshot) {
	ac := a.timers.SelectedContext()
	if !snap.Alert(ac).Presented {
		for _, av := range snap.Alerts {
			if av.Presented {
				ac = av.Context
				break
			}
		}
	}
	a.engine.Dismiss(ac)
	a.timers.Refresh()
	if !a.timers.Snapshot().AnyPresented() {
		a.flash = false
	}
}

func (a *App) handleEvent(ev engine.Event) {
	switch ev.Kind {
	case engine.EventExpired:
		a.SetStatus(fmt.Sprintf("%s timer is complete", ev.TimerName), false)
	case engine.EventPulse:
		a.flash = ev.Intensity == haptics.Strong
	case engine.EventDismissed:
		if !a.engine.Snapshot().AnyPresented() {
			a.flash = false
		}
	case engine.EventSoundFailed:
		a.SetStatus("Alert sound: "+ev.Err.Error(), true)
	case engine.EventAnnouncement:
		if ev.Decision == speech.SkippedNoHeadphones {
			a.SetStatus("Announcement skipped: no headphones", false)
		}
	}
}

// View renders the entire app.
func (a *App) View() string {
	if a.quitting {
		return "\n  Grill's off. Enjoy the food!\n\n"
	}

	if a.confirm != nil {
		return a.renderConfirm()
	}

	if a.showHelp {
		return a.helpOverlay.View()
	}

	var b strings.Builder
	b.WriteString(a.renderTitleBar())
	b.WriteString("\n")

	if banner := a.renderAlerts(); banner != "" {
		b.WriteString(banner)
		b.WriteString("\n")
	}

	b.WriteString(a.timers.View())
	b.WriteString("\n")
	b.WriteString(a.renderHelpBar())

	return b.String()
}

func (a *App) renderConfirm() string {
	overlayWidth := 50
	if a.width > 0 {
		overlayWidth = min(50, max(20, a.width-4))
	}

	overlayStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(a.styles.ColorAlert).
		Padding(1, 2).
		Width(overlayWidth)

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(a.styles.ColorAlert).
		MarginBottom(1)

	hintStyle := lipgloss.NewStyle().
		Foreground(a.styles.ColorTextMuted)

	var b strings.Builder
	b.WriteString(titleStyle.Render(a.confirm.title))
	b.WriteString("\n\n")
	b.WriteString(a.confirm.body)
	b.WriteString("\n\n")
	b.WriteString(hintStyle.Render("[y/enter] remove    [n/esc] cancel"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, overlayStyle.Render(b.String()))
}

// renderTitleBar shows the app name, alert toggles and the wall clock.
func (a *App) renderTitleBar() string {
	title := a.styles.TitleStyle.Render(" grilltimer ")

	f := a.timers.Snapshot().Flags
	flags := strings.Join([]string{
		a.styles.RenderFlag("sound", f.Sound),
		a.styles.RenderFlag("pulses", f.Haptics),
		a.styles.RenderFlag("voice", f.Voice),
		a.styles.RenderFlag("headphones-only", f.HeadphonesOnly),
	}, " ")
	if f.Premium {
		flags += " " + a.styles.FlagOnStyle.Render("★")
	}

	clock := a.styles.ClockStyle.Render(time.Now().Format("15:04"))

	spacer := a.width - lipgloss.Width(title) - lipgloss.Width(flags) - lipgloss.Width(clock) - 4
	if spacer < 2 {
		spacer = 2
	}
	return title + "  " + flags + strings.Repeat(" ", spacer) + clock
}

// renderAlerts renders one banner line per presented alert context.
func (a *App) renderAlerts() string {
	style := a.styles.AlertStyle
	if a.flash {
		style = a.styles.AlertFlashStyle
	}

	var lines []string
	for _, av := range a.timers.Snapshot().Alerts {
		if !av.Presented {
			continue
		}
		text := av.TimerName + " timer is complete!"
		if av.Context == engine.ContextPreheat {
			text = "Preheat complete! The grill is ready."
		}
		lines = append(lines, style.Render("🔥 "+text))
	}
	if len(lines) == 0 {
		return ""
	}
	lines = append(lines, a.styles.RenderHelp(a.keys.Dismiss.Help().Key, "dismiss"))
	return strings.Join(lines, "\n")
}

// renderHelpBar shows the status line or context hints.
func (a *App) renderHelpBar() string {
	if a.status != "" {
		if a.statusErr {
			return a.styles.ErrorStyle.Render(a.status)
		}
		return a.styles.StatusStyle.Render(a.status)
	}

	if a.timers.IsEditing() {
		return a.styles.RenderHelp(
			"enter", "save",
			"esc", "cancel",
		)
	}

	if a.timers.OnPreheat() {
		return a.styles.RenderHelp(
			"space", "start/pause",
			"r", "reset",
			"t", "duration",
			"?", "help",
		)
	}
	return a.styles.RenderHelp(
		"1/2", "preset",
		"space", "start/pause",
		"r", "reset",
		"a", "add",
		"p", "preheat",
		"?", "help",
	)
}

// SetStatus sets a status message to display to the user.
func (a *App) SetStatus(msg string, isErr bool) {
	a.status = msg
	a.statusErr = isErr
	ttl := 5 * time.Second
	if isErr {
		ttl = 8 * time.Second
	}
	a.statusUntil = time.Now().Add(ttl)
}

// Run starts the Bubble Tea program around eng.
func Run(eng *engine.Engine, styles *Styles, cfg *AppConfig) error {
	app := NewApp(eng, styles, cfg)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
