// Package ui provides the terminal interface for grilltimer.
// This file defines key bindings using the Bubble Tea key package for
// type-safe key matching, help text generation and user customization.
package ui

import (
	"strings"

	"grilltimer/internal/config"

	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// Helpers
// =============================================================================

// parseKeys splits a comma-separated string into individual keys.
// If the input is empty, returns the default keys.
func parseKeys(customKeys string, defaultKeys ...string) []string {
	if customKeys == "" {
		return defaultKeys
	}
	keys := strings.Split(customKeys, ",")
	result := make([]string, 0, len(keys))
	for _, k := range keys {
		trimmed := strings.TrimSpace(k)
		if trimmed == "space" {
			trimmed = " "
		}
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// =============================================================================
// Global Keys (available in all contexts)
// =============================================================================

// GlobalKeyMap defines keys available throughout the application.
type GlobalKeyMap struct {
	Quit             key.Binding
	Help             key.Binding
	Preheat          key.Binding
	PreheatReset     key.Binding
	Dismiss          key.Binding
	ToggleSound      key.Binding
	ToggleHaptics    key.Binding
	ToggleVoice      key.Binding
	ToggleHeadphones key.Binding
}

// DefaultGlobalKeyMap returns the default global key bindings.
func DefaultGlobalKeyMap() GlobalKeyMap {
	return NewGlobalKeyMap(&config.KeysConfig{})
}

// NewGlobalKeyMap creates global key bindings from config.
func NewGlobalKeyMap(cfg *config.KeysConfig) GlobalKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return GlobalKeyMap{
		Quit: key.NewBinding(
			key.WithKeys(parseKeys(cfg.Quit, "q", "ctrl+c")...),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys(parseKeys(cfg.Help, "?")...),
			key.WithHelp("?", "help"),
		),
		Preheat: key.NewBinding(
			key.WithKeys(parseKeys(cfg.Preheat, "p")...),
			key.WithHelp("p", "preheat start/pause"),
		),
		PreheatReset: key.NewBinding(
			key.WithKeys(parseKeys(cfg.PreheatReset, "P")...),
			key.WithHelp("P", "preheat reset"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys(parseKeys(cfg.Dismiss, "enter", "esc")...),
			key.WithHelp("enter", "dismiss alert"),
		),
		ToggleSound: key.NewBinding(
			key.WithKeys(parseKeys(cfg.ToggleSound, "S")...),
			key.WithHelp("S", "sound on/off"),
		),
		ToggleHaptics: key.NewBinding(
			key.WithKeys(parseKeys(cfg.ToggleHaptics, "H")...),
			key.WithHelp("H", "pulses on/off"),
		),
		ToggleVoice: key.NewBinding(
			key.WithKeys(parseKeys(cfg.ToggleVoice, "V")...),
			key.WithHelp("V", "voice on/off"),
		),
		ToggleHeadphones: key.NewBinding(
			key.WithKeys(parseKeys(cfg.ToggleHeadphones, "O")...),
			key.WithHelp("O", "headphones only"),
		),
	}
}

// =============================================================================
// Navigation Keys
// =============================================================================

// NavigationKeyMap defines keys for list navigation.
type NavigationKeyMap struct {
	Up   key.Binding
	Down key.Binding
}

// NewNavigationKeyMap creates navigation key bindings from config.
func NewNavigationKeyMap(cfg *config.KeysConfig) NavigationKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return NavigationKeyMap{
		Up: key.NewBinding(
			key.WithKeys(parseKeys(cfg.Up, "k", "up")...),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys(parseKeys(cfg.Down, "j", "down")...),
			key.WithHelp("j/↓", "down"),
		),
	}
}

// =============================================================================
// Input Keys (shared by text input fields)
// =============================================================================

// InputKeyMap defines keys for text input mode.
type InputKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// NewInputKeyMap creates input key bindings from config.
func NewInputKeyMap(cfg *config.KeysConfig) InputKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return InputKeyMap{
		Confirm: key.NewBinding(
			key.WithKeys(parseKeys(cfg.Confirm, "enter")...),
			key.WithHelp("enter", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys(parseKeys(cfg.Cancel, "esc")...),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// =============================================================================
// Timer List Keys
// =============================================================================

// TimerKeyMap defines keys for the timer list.
type TimerKeyMap struct {
	Toggle      key.Binding
	Reset       key.Binding
	Preset1     key.Binding
	Preset2     key.Binding
	Add         key.Binding
	Remove      key.Binding
	Rename      key.Binding
	EditPresets key.Binding
	NavigationKeyMap
}

// DefaultTimerKeyMap returns the default timer list key bindings.
func DefaultTimerKeyMap() TimerKeyMap {
	return NewTimerKeyMap(&config.KeysConfig{})
}

// NewTimerKeyMap creates timer key bindings from config.
func NewTimerKeyMap(cfg *config.KeysConfig) TimerKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return TimerKeyMap{
		Toggle: key.NewBinding(
			key.WithKeys(parseKeys(cfg.Toggle, " ")...),
			key.WithHelp("space", "start/pause"),
		),
		Reset: key.NewBinding(
			key.WithKeys(parseKeys(cfg.Reset, "r")...),
			key.WithHelp("r", "reset"),
		),
		Preset1: key.NewBinding(
			key.WithKeys(parseKeys(cfg.Preset1, "1")...),
			key.WithHelp("1", "preset 1"),
		),
		Preset2: key.NewBinding(
			key.WithKeys(parseKeys(cfg.Preset2, "2")...),
			key.WithHelp("2", "preset 2"),
		),
		Add: key.NewBinding(
			key.WithKeys(parseKeys(cfg.AddTimer, "a")...),
			key.WithHelp("a", "add timer"),
		),
		Remove: key.NewBinding(
			key.WithKeys(parseKeys(cfg.RemoveTimer, "x")...),
			key.WithHelp("x", "remove"),
		),
		Rename: key.NewBinding(
			key.WithKeys(parseKeys(cfg.RenameTimer, "e")...),
			key.WithHelp("e", "rename"),
		),
		EditPresets: key.NewBinding(
			key.WithKeys(parseKeys(cfg.EditPresets, "t")...),
			key.WithHelp("t", "edit times"),
		),
		NavigationKeyMap: NewNavigationKeyMap(cfg),
	}
}

// ShortHelp returns the short help for the timer list (implements help.KeyMap).
func (k TimerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Preset1, k.Preset2, k.Toggle, k.Reset, k.Add}
}

// FullHelp returns the full help for the timer list (implements help.KeyMap).
func (k TimerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Preset1, k.Preset2, k.Toggle, k.Reset},
		{k.Add, k.Remove, k.Rename, k.EditPresets},
		{k.Up, k.Down},
	}
}

// =============================================================================
// Help Overlay Keys
// =============================================================================

// HelpKeyMap defines keys for the help overlay.
type HelpKeyMap struct {
	Close key.Binding
}

// DefaultHelpKeyMap returns the default help overlay key bindings.
func DefaultHelpKeyMap() HelpKeyMap {
	return HelpKeyMap{
		Close: key.NewBinding(
			key.WithKeys("?", "esc", "q", "enter", " "),
			key.WithHelp("any key", "close"),
		),
	}
}
