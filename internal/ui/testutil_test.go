package ui

import (
	"sync"
	"testing"
	"time"

	"grilltimer/internal/audio"
	"grilltimer/internal/clock"
	"grilltimer/internal/config"
	"grilltimer/internal/engine"
	"grilltimer/internal/settings"
	"grilltimer/internal/sound"
	"grilltimer/internal/storage"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// setupTest prepares the test environment for deterministic rendering.
// It disables colors to ensure consistent output across environments.
func setupTest(t *testing.T) {
	t.Helper()
	lipgloss.SetColorProfile(termenv.Ascii)
}

// stubPlayer records alert playback without touching an audio device.
type stubPlayer struct {
	mu     sync.Mutex
	plays  int
	active func(error)
}

func (p *stubPlayer) Play(_ sound.Source, _ bool, onDone func(error)) error {
	p.mu.Lock()
	prev := p.active
	p.active = onDone
	p.plays++
	p.mu.Unlock()
	if prev != nil {
		prev(audio.ErrInterrupted)
	}
	return nil
}

func (p *stubPlayer) Stop() {
	p.mu.Lock()
	prev := p.active
	p.active = nil
	p.mu.Unlock()
	if prev != nil {
		prev(audio.ErrInterrupted)
	}
}

func (p *stubPlayer) playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active != nil
}

type systemOnly struct{}

func (systemOnly) Resolve(sel sound.Selection, _ bool) sound.Resolution {
	return sound.Resolution{Source: sound.SystemSource(sel.SystemID())}
}

// testEnv bundles an engine over an in-memory filesystem and a fake clock.
type testEnv struct {
	clock  *clock.Fake
	prefs  *settings.Settings
	player *stubPlayer
	engine *engine.Engine
}

func newTestEnv(t *testing.T, configure ...func(*engine.Options)) *testEnv {
	t.Helper()
	st, err := storage.New(afero.NewMemMapFs(), "/data", nil)
	require.NoError(t, err)
	store, err := settings.Open(st, nil)
	require.NoError(t, err)

	env := &testEnv{
		clock:  clock.NewFake(time.Unix(0, 0)),
		prefs:  settings.New(store),
		player: &stubPlayer{},
	}
	opts := engine.Options{
		Prefs:    env.prefs,
		Resolver: systemOnly{},
		Player:   env.player,
		Clock:    env.clock,
	}
	for _, fn := range configure {
		fn(&opts)
	}
	env.engine = engine.New(opts)
	t.Cleanup(env.engine.Close)
	return env
}

// createTestStyles creates a default Styles instance for testing.
func createTestStyles() *Styles {
	return NewStylesFromTheme(&config.ThemeConfig{})
}

// newTestApp builds an App sized like a small terminal.
func newTestApp(t *testing.T, env *testEnv) *App {
	t.Helper()
	app := NewApp(env.engine, createTestStyles(), &AppConfig{ConfirmRemovals: true})
	app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return app
}

// runCmd executes cmd and feeds its message back into the app.
func runCmd(app *App, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	msg := cmd()
	if msg == nil {
		return
	}
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			runCmd(app, c)
		}
		return
	}
	app.Update(msg)
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func keySpace() tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
}

// pumpEvents forwards every pending engine event to the app.
func pumpEvents(app *App, eng *engine.Engine) {
	for {
		select {
		case ev := <-eng.Events():
			app.Update(engineEventMsg{event: ev})
		default:
			return
		}
	}
}
