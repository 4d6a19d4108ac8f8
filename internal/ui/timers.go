package ui

import (
	"fmt"
	"strings"
	"time"

	"grilltimer/internal/config"
	"grilltimer/internal/engine"
	"grilltimer/internal/timer"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// defaultNewPresets are the presets of a freshly added timer.
var defaultNewPresets = [2]time.Duration{5 * time.Minute, 10 * time.Minute}

type inputMode int

const (
	inputNone inputMode = iota
	inputAdd
	inputRename
	inputPresets
)

// TimersPane lists the timer slots followed by the preheat timer.
type TimersPane struct {
	engine *engine.Engine
	styles *Styles
	snap   engine.Snapshot
	cursor int
	width  int
	height int

	mode   inputMode
	editID string
	input  textinput.Model
	keys   TimerKeyMap
	inKeys InputKeyMap
}

// NewTimersPane creates the timer list with key bindings from keyCfg.
func NewTimersPane(eng *engine.Engine, styles *Styles, keyCfg *config.KeysConfig) *TimersPane {
	ti := textinput.New()
	ti.CharLimit = 40
	ti.Width = 30

	p := &TimersPane{
		engine: eng,
		styles: styles,
		input:  ti,
		keys:   NewTimerKeyMap(keyCfg),
		inKeys: NewInputKeyMap(keyCfg),
	}
	p.Refresh()
	return p
}

// Refresh reloads the engine snapshot and keeps the cursor in range.
func (p *TimersPane) Refresh() {
	p.snap = p.engine.Snapshot()
	if p.cursor >= p.rows() {
		p.cursor = p.rows() - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
}

// Snapshot returns the state the pane last rendered from.
func (p *TimersPane) Snapshot() engine.Snapshot {
	return p.snap
}

func (p *TimersPane) rows() int {
	return len(p.snap.Timers) + 1
}

// SetSize sets the pane dimensions.
func (p *TimersPane) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.input.Width = max(10, width-16)
}

// IsEditing reports whether a text input is open.
func (p *TimersPane) IsEditing() bool {
	return p.mode != inputNone
}

// OnPreheat reports whether the cursor is on the preheat row.
func (p *TimersPane) OnPreheat() bool {
	return p.cursor == len(p.snap.Timers)
}

// Selected returns the timer under the cursor.
func (p *TimersPane) Selected() (engine.TimerView, bool) {
	if p.OnPreheat() || p.cursor < 0 || p.cursor >= len(p.snap.Timers) {
		return engine.TimerView{}, false
	}
	return p.snap.Timers[p.cursor], true
}

// SelectedContext is the alert context of the row under the cursor.
func (p *TimersPane) SelectedContext() engine.AlertContext {
	if p.OnPreheat() {
		return engine.ContextPreheat
	}
	return engine.ContextInterval
}

func (p *TimersPane) openInput(mode inputMode, id, prompt, value string) tea.Cmd {
	p.mode = mode
	p.editID = id
	p.input.Placeholder = prompt
	p.input.SetValue(value)
	p.input.CursorEnd()
	p.input.Focus()
	return textinput.Blink
}

func (p *TimersPane) closeInput() {
	p.mode = inputNone
	p.editID = ""
	p.input.Reset()
	p.input.Blur()
}

// Update handles keys for the timer list. It returns a command for
// operations that persist.
func (p *TimersPane) Update(msg tea.Msg) tea.Cmd {
	if p.IsEditing() {
		return p.updateInput(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	switch {
	case key.Matches(keyMsg, p.keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(keyMsg, p.keys.Down):
		if p.cursor < p.rows()-1 {
			p.cursor++
		}

	case key.Matches(keyMsg, p.keys.Preset1), key.Matches(keyMsg, p.keys.Preset2):
		index := 0
		if key.Matches(keyMsg, p.keys.Preset2) {
			index = 1
		}
		if tv, ok := p.Selected(); ok {
			_ = p.engine.SelectPreset(tv.ID, index)
		} else {
			p.engine.ResetPreheat()
			p.engine.StartPreheat()
		}

	case key.Matches(keyMsg, p.keys.Toggle):
		if tv, ok := p.Selected(); ok {
			_ = p.engine.ToggleTimer(tv.ID)
		} else {
			p.engine.TogglePreheat()
		}

	case key.Matches(keyMsg, p.keys.Reset):
		if tv, ok := p.Selected(); ok {
			_ = p.engine.ResetTimer(tv.ID)
		} else {
			p.engine.ResetPreheat()
		}

	case key.Matches(keyMsg, p.keys.Add):
		if !p.snap.CanAddTimer {
			return func() tea.Msg { return timerAddedMsg{err: engine.ErrSlotLimit} }
		}
		return p.openInput(inputAdd, "", "Timer name", "")

	case key.Matches(keyMsg, p.keys.Rename):
		if tv, ok := p.Selected(); ok {
			return p.openInput(inputRename, tv.ID, "Timer name", tv.Name)
		}

	case key.Matches(keyMsg, p.keys.EditPresets):
		if tv, ok := p.Selected(); ok {
			value := timer.Format(tv.Presets[0]) + " " + timer.Format(tv.Presets[1])
			return p.openInput(inputPresets, tv.ID, "e.g. 4m 6m", value)
		}
		return p.openInput(inputPresets, engine.PreheatID, "e.g. 15m", timer.Format(p.snap.Preheat.Duration))
	}

	p.Refresh()
	return nil
}

func (p *TimersPane) updateInput(msg tea.Msg) tea.Cmd {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, p.inKeys.Confirm):
			return p.submit()
		case key.Matches(keyMsg, p.inKeys.Cancel):
			p.closeInput()
			return nil
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

func (p *TimersPane) submit() tea.Cmd {
	value := strings.TrimSpace(p.input.Value())
	mode, id := p.mode, p.editID
	p.closeInput()

	switch mode {
	case inputAdd:
		return addTimerCmd(p.engine, value, defaultNewPresets)
	case inputRename:
		if value == "" {
			return nil
		}
		return renameTimerCmd(p.engine, id, value)
	case inputPresets:
		if id == engine.PreheatID {
			d, err := timer.ParseDuration(value)
			if err != nil {
				return func() tea.Msg { return presetsSavedMsg{label: "Preheat", err: err} }
			}
			return setPreheatCmd(p.engine, d)
		}
		presets, err := timer.ParsePresets(value)
		label := p.nameOf(id)
		if err != nil {
			return func() tea.Msg { return presetsSavedMsg{label: label, err: err} }
		}
		return setPresetsCmd(p.engine, id, label, presets)
	}
	return nil
}

func (p *TimersPane) nameOf(id string) string {
	if tv, ok := p.snap.Timer(id); ok {
		return tv.Name
	}
	return id
}

// View renders the timer list.
func (p *TimersPane) View() string {
	var b strings.Builder

	b.WriteString(p.styles.PaneTitleStyle.Render("TIMERS"))
	b.WriteString("\n")

	nameWidth := 12
	for _, tv := range p.snap.Timers {
		nameWidth = max(nameWidth, len([]rune(tv.Name)))
	}
	nameWidth = min(nameWidth, 24)

	for i, tv := range p.snap.Timers {
		line := p.renderRow(tv.Name, nameWidth, tv.State, tv.Remaining,
			fmt.Sprintf("+%s", timer.Format(tv.Elapsed)),
			fmt.Sprintf("[%s | %s]", timer.Format(tv.Presets[0]), timer.Format(tv.Presets[1])))
		b.WriteString(p.decorate(i, line))
		b.WriteString("\n")
	}

	sepWidth := max(10, p.width-4)
	b.WriteString(p.styles.StatLabelStyle.Render(strings.Repeat("─", sepWidth)))
	b.WriteString("\n")

	ph := p.snap.Preheat
	line := p.renderRow("Preheat", nameWidth, ph.State, ph.Remaining,
		"", fmt.Sprintf("[%s]", timer.Format(ph.Duration)))
	b.WriteString(p.decorate(len(p.snap.Timers), line))
	b.WriteString("\n")

	if p.IsEditing() {
		b.WriteString("\n")
		b.WriteString(p.styles.InputPromptStyle.Render(p.inputLabel()) + " " + p.input.View())
		b.WriteString("\n")
	}

	style := p.styles.PaneFocusedStyle
	if p.width > 0 {
		style = style.Width(p.width)
	}
	return style.Render(b.String())
}

func (p *TimersPane) inputLabel() string {
	switch p.mode {
	case inputAdd:
		return "New timer:"
	case inputRename:
		return "Rename:"
	case inputPresets:
		if p.editID == engine.PreheatID {
			return "Preheat:"
		}
		return "Presets:"
	}
	return ""
}

func (p *TimersPane) renderRow(name string, nameWidth int, state timer.State, remaining time.Duration, elapsed, presets string) string {
	var icon, clock string
	switch state {
	case timer.StateRunning:
		icon = p.styles.TimerRunningStyle.Render("▶")
		clock = p.styles.TimerRunningStyle.Render(timer.Format(remaining))
	case timer.StateExpired:
		icon = p.styles.TimerExpiredStyle.Render("!")
		clock = p.styles.TimerExpiredStyle.Render(timer.Format(remaining))
	default:
		icon = p.styles.TimerIdleStyle.Render("■")
		clock = p.styles.TimerIdleStyle.Render(timer.Format(remaining))
	}

	runes := []rune(name)
	if len(runes) > nameWidth {
		name = string(runes[:nameWidth-1]) + "…"
	}
	name = fmt.Sprintf("%-*s", nameWidth, name)

	parts := []string{icon, p.styles.TimerNameStyle.Render(name), clock}
	if elapsed != "" {
		parts = append(parts, p.styles.StatLabelStyle.Render(elapsed))
	}
	parts = append(parts, p.styles.TimerPresetStyle.Render(presets))
	return strings.Join(parts, "  ")
}

func (p *TimersPane) decorate(row int, line string) string {
	if row == p.cursor {
		return p.styles.TimerSelectedStyle.Render("›") + " " + line
	}
	return "  " + line
}
