package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// HelpOverlay renders the keyboard shortcut screen from the active key
// bindings, so customized keys show up as configured.
type HelpOverlay struct {
	width  int
	height int
	styles *Styles
	global GlobalKeyMap
	timers TimerKeyMap
	input  InputKeyMap
}

// NewHelpOverlay creates a new help overlay
func NewHelpOverlay(styles *Styles, global GlobalKeyMap, timers TimerKeyMap, input InputKeyMap) *HelpOverlay {
	return &HelpOverlay{
		styles: styles,
		global: global,
		timers: timers,
		input:  input,
	}
}

// SetSize sets the overlay dimensions
func (h *HelpOverlay) SetSize(width, height int) {
	h.width = width
	h.height = height
}

// View renders the help overlay
func (h *HelpOverlay) View() string {
	overlayWidth := 60
	if h.width > 0 {
		overlayWidth = min(60, max(20, h.width-4))
	}

	overlayStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(h.styles.ColorPrimary).
		Padding(1, 2).
		Width(overlayWidth)

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(h.styles.ColorPrimary).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(h.styles.ColorAccent).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(h.styles.ColorWarning).
		Width(12)

	descStyle := lipgloss.NewStyle().
		Foreground(h.styles.ColorText)

	mutedStyle := lipgloss.NewStyle().
		Foreground(h.styles.ColorTextMuted).
		Italic(true)

	var b strings.Builder
	section := func(name string, bindings ...key.Binding) {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(name))
		b.WriteString("\n")
		for _, kb := range bindings {
			hlp := kb.Help()
			b.WriteString(keyStyle.Render(hlp.Key) + descStyle.Render(hlp.Desc) + "\n")
		}
	}

	b.WriteString(titleStyle.Render("grilltimer - Keyboard Shortcuts"))
	b.WriteString("\n")

	t := h.timers
	section("Timers", t.Preset1, t.Preset2, t.Toggle, t.Reset, t.Up, t.Down)
	section("Manage", t.Add, t.Remove, t.Rename, t.EditPresets)

	g := h.global
	section("Preheat", g.Preheat, g.PreheatReset)
	section("Alerts", g.Dismiss, g.ToggleSound, g.ToggleHaptics, g.ToggleVoice, g.ToggleHeadphones)
	section("Global", g.Help, g.Quit)
	section("Input Mode", h.input.Confirm, h.input.Cancel)

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("Press ? or Esc to close"))

	content := overlayStyle.Render(b.String())

	return lipgloss.Place(
		h.width,
		h.height,
		lipgloss.Center,
		lipgloss.Center,
		content,
	)
}
