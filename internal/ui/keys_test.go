package ui

import (
	"testing"

	"grilltimer/internal/config"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestParseKeys(t *testing.T) {
	tests := []struct {
		name     string
		custom   string
		defaults []string
		want     []string
	}{
		{"empty uses defaults", "", []string{"q", "ctrl+c"}, []string{"q", "ctrl+c"}},
		{"single override", "x", []string{"q"}, []string{"x"}},
		{"comma list trimmed", " a , b ,", []string{"q"}, []string{"a", "b"}},
		{"space alias", "space,enter", []string{"q"}, []string{" ", "enter"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseKeys(tt.custom, tt.defaults...))
		})
	}
}

func TestTimerKeyMap_Defaults(t *testing.T) {
	k := DefaultTimerKeyMap()

	assert.True(t, key.Matches(keySpace(), k.Toggle))
	assert.True(t, key.Matches(keyRunes("1"), k.Preset1))
	assert.True(t, key.Matches(keyRunes("2"), k.Preset2))
	assert.True(t, key.Matches(keyRunes("j"), k.Down))
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyUp}, k.Up))
	assert.False(t, key.Matches(keyRunes("r"), k.Toggle))
}

func TestTimerKeyMap_CustomConfig(t *testing.T) {
	k := NewTimerKeyMap(&config.KeysConfig{Toggle: "s", Reset: "0"})

	assert.True(t, key.Matches(keyRunes("s"), k.Toggle))
	assert.False(t, key.Matches(keySpace(), k.Toggle))
	assert.True(t, key.Matches(keyRunes("0"), k.Reset))
}

func TestGlobalKeyMap_Defaults(t *testing.T) {
	g := DefaultGlobalKeyMap()

	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyEnter}, g.Dismiss))
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyEsc}, g.Dismiss))
	assert.True(t, key.Matches(keyRunes("p"), g.Preheat))
	assert.True(t, key.Matches(keyRunes("P"), g.PreheatReset))
	assert.True(t, key.Matches(keyRunes("S"), g.ToggleSound))
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyCtrlC}, g.Quit))
}

func TestTimerKeyMap_FullHelpCoversBindings(t *testing.T) {
	k := DefaultTimerKeyMap()
	var n int
	for _, col := range k.FullHelp() {
		n += len(col)
	}
	assert.Equal(t, 10, n)
	assert.NotEmpty(t, k.ShortHelp())
}
