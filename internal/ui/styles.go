package ui

import (
	"grilltimer/internal/config"

	"github.com/charmbracelet/lipgloss"
)

// Styles holds all application styles, initialized with theme configuration.
type Styles struct {
	// Colors
	ColorPrimary   lipgloss.Color
	ColorAccent    lipgloss.Color
	ColorMuted     lipgloss.Color
	ColorAlert     lipgloss.Color
	ColorWarning   lipgloss.Color
	ColorSuccess   lipgloss.Color
	ColorBg        lipgloss.Color
	ColorBgLight   lipgloss.Color
	ColorText      lipgloss.Color
	ColorTextMuted lipgloss.Color

	// Component styles
	TitleStyle       lipgloss.Style
	ClockStyle       lipgloss.Style
	PaneStyle        lipgloss.Style
	PaneFocusedStyle lipgloss.Style
	PaneTitleStyle   lipgloss.Style

	TimerNameStyle     lipgloss.Style
	TimerSelectedStyle lipgloss.Style
	TimerRunningStyle  lipgloss.Style
	TimerIdleStyle     lipgloss.Style
	TimerExpiredStyle  lipgloss.Style
	TimerPresetStyle   lipgloss.Style

	// Alert banner; the flash variant is shown on strong pulses
	AlertStyle      lipgloss.Style
	AlertFlashStyle lipgloss.Style

	FlagOnStyle  lipgloss.Style
	FlagOffStyle lipgloss.Style

	HelpStyle    lipgloss.Style
	HelpKeyStyle lipgloss.Style

	StatusStyle lipgloss.Style
	ErrorStyle  lipgloss.Style

	InputPromptStyle lipgloss.Style

	StatLabelStyle lipgloss.Style
	StatValueStyle lipgloss.Style
}

// NewStyles creates a new Styles instance from the given config.
func NewStyles(cfg *config.Config) *Styles {
	return NewStylesFromTheme(&cfg.Theme)
}

// NewStylesFromTheme creates a new Styles instance from a ThemeConfig.
// If a theme color is empty, it uses the appropriate default.
func NewStylesFromTheme(theme *config.ThemeConfig) *Styles {
	s := &Styles{}

	s.ColorPrimary = colorOrDefault(theme.Primary, "#EA580C")
	s.ColorAccent = colorOrDefault(theme.Accent, "#10B981")
	s.ColorMuted = colorOrDefault(theme.Muted, "#6B7280")
	s.ColorAlert = colorOrDefault(theme.Alert, "#DC2626")

	// Fixed semantic colors (not configurable from theme)
	s.ColorWarning = lipgloss.Color("#F59E0B")
	s.ColorSuccess = lipgloss.Color("#10B981")

	s.ColorBg = colorOrDefault(theme.Background, "#1C1917")
	s.ColorBgLight = lipgloss.Color("#44403C")
	s.ColorText = colorOrDefault(theme.Text, "#FAFAF9")
	s.ColorTextMuted = lipgloss.Color("#A8A29E")

	s.initComponentStyles()

	return s
}

// colorOrDefault returns the lipgloss.Color from hex string, or default if empty.
func colorOrDefault(hex, defaultHex string) lipgloss.Color {
	if hex != "" {
		return lipgloss.Color(hex)
	}
	return lipgloss.Color(defaultHex)
}

func (s *Styles) initComponentStyles() {
	s.TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(s.ColorText).
		Background(s.ColorPrimary).
		Padding(0, 1)

	s.ClockStyle = lipgloss.NewStyle().
		Foreground(s.ColorTextMuted)

	s.PaneStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.ColorMuted).
		Padding(0, 1)

	s.PaneFocusedStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.ColorPrimary).
		Padding(0, 1)

	s.PaneTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(s.ColorPrimary).
		MarginBottom(1)

	s.TimerNameStyle = lipgloss.NewStyle().
		Foreground(s.ColorText)

	s.TimerSelectedStyle = lipgloss.NewStyle().
		Background(s.ColorBgLight).
		Foreground(s.ColorText).
		Bold(true)

	s.TimerRunningStyle = lipgloss.NewStyle().
		Foreground(s.ColorSuccess).
		Bold(true)

	s.TimerIdleStyle = lipgloss.NewStyle().
		Foreground(s.ColorMuted)

	s.TimerExpiredStyle = lipgloss.NewStyle().
		Foreground(s.ColorAlert).
		Bold(true)

	s.TimerPresetStyle = lipgloss.NewStyle().
		Foreground(s.ColorTextMuted)

	s.AlertStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(s.ColorAlert).
		Border(lipgloss.ThickBorder()).
		BorderForeground(s.ColorAlert).
		Padding(0, 2)

	s.AlertFlashStyle = s.AlertStyle.
		Foreground(s.ColorText).
		Background(s.ColorAlert)

	s.FlagOnStyle = lipgloss.NewStyle().
		Foreground(s.ColorAccent).
		Bold(true)

	s.FlagOffStyle = lipgloss.NewStyle().
		Foreground(s.ColorMuted).
		Strikethrough(true)

	s.HelpStyle = lipgloss.NewStyle().
		Foreground(s.ColorTextMuted)

	s.HelpKeyStyle = lipgloss.NewStyle().
		Foreground(s.ColorAccent).
		Bold(true)

	s.StatusStyle = lipgloss.NewStyle().
		Foreground(s.ColorSuccess).
		Italic(true)

	s.ErrorStyle = lipgloss.NewStyle().
		Foreground(s.ColorAlert).
		Bold(true)

	s.InputPromptStyle = lipgloss.NewStyle().
		Foreground(s.ColorPrimary).
		Bold(true)

	s.StatLabelStyle = lipgloss.NewStyle().
		Foreground(s.ColorTextMuted)

	s.StatValueStyle = lipgloss.NewStyle().
		Foreground(s.ColorText).
		Bold(true)
}

// RenderHelp renders help text with key bindings using the given styles.
func (s *Styles) RenderHelp(keys ...string) string {
	var result string
	for i := 0; i+1 < len(keys); i += 2 {
		if i > 0 {
			result += "  "
		}
		result += s.HelpKeyStyle.Render("["+keys[i]+"]") + " " + s.HelpStyle.Render(keys[i+1])
	}
	return result
}

// RenderFlag renders a settings toggle label as on or off.
func (s *Styles) RenderFlag(label string, on bool) string {
	if on {
		return s.FlagOnStyle.Render(label)
	}
	return s.FlagOffStyle.Render(label)
}
