package sound

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testManifest = `[
	{"id": "crickets", "filename": "crickets.ogg", "display_name": "Crickets", "category": "Nature"},
	{"id": "arcade", "filename": "arcade.wav", "display_name": "Arcade", "category": "Retro"},
	{"id": "sizzle", "filename": "sizzle.mp3", "display_name": "Sizzle", "category": "Kitchen"},
	{"id": "klaxon", "filename": "klaxon.wav", "display_name": "Klaxon", "category": "Alarms"},
	{"id": "buzzer", "filename": "buzzer.wav", "display_name": "Buzzer", "category": "Alarms"},
	{"id": "whistle", "filename": "whistle.wav", "display_name": "Whistle", "category": "Sports"},
	{"id": "gong", "filename": "gong.flac", "display_name": "Gong", "category": "Ceremony"},
	{"id": "", "filename": "broken.wav", "display_name": "No id"}
]`

func ids(sounds []BundledSound) []string {
	out := make([]string, len(sounds))
	for i, s := range sounds {
		out[i] = s.ID
	}
	return out
}

func TestCatalog_Ordering(t *testing.T) {
	entries, err := ParseManifest([]byte(testManifest))
	require.NoError(t, err)

	c := NewCatalog(entries)

	assert.Equal(t,
		[]string{"buzzer", "klaxon", "sizzle", "crickets", "arcade", "gong", "whistle"},
		ids(c.All()),
	)
	assert.Equal(t,
		[]string{"Alarms", "Kitchen", "Nature", "Retro", "Ceremony", "Sports"},
		c.Categories(),
	)
}

func TestCatalog_CategoriesIgnoreCase(t *testing.T) {
	c := NewCatalog([]BundledSound{
		{ID: "a", Filename: "a.wav", DisplayName: "Alpha", Category: "retro2"},
		{ID: "b", Filename: "b.wav", DisplayName: "Bravo", Category: "Retro2"},
		{ID: "c", Filename: "c.wav", DisplayName: "Charlie", Category: "retro2"},
		{ID: "d", Filename: "d.wav", DisplayName: "Delta", Category: "alarms"},
		{ID: "e", Filename: "e.wav", DisplayName: "Echo", Category: " Alarms "},
	})

	assert.Equal(t, []string{"Alarms", "retro2"}, c.Categories())
	assert.Equal(t, []string{"d", "e", "a", "b", "c"}, ids(c.All()))
	b, ok := c.Get("b")
	require.True(t, ok)
	assert.Equal(t, "retro2", b.Category)
}

func TestParseManifest_YAML(t *testing.T) {
	entries, err := ParseManifest([]byte(`
- id: bell
  filename: bell.wav
  display_name: Bell
  category: Bells
`))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Bell", entries[0].DisplayName)
}

func TestLoadCatalog_SearchesLocations(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/opt/grill/sounds/sounds.json", []byte(testManifest), 0o644))

	c := LoadCatalog(BundleLocator(fsys, nil, "/opt/grill", "/usr/share/grilltimer"), nil)
	assert.Equal(t, 7, c.Len())

	s, ok := c.Get("sizzle")
	require.True(t, ok)
	assert.Equal(t, "sizzle.mp3", s.Filename)

	_, ok = c.Get("nope")
	assert.False(t, ok)
}

func TestLoadCatalog_DegradesToEmpty(t *testing.T) {
	fsys := afero.NewMemMapFs()

	missing := LoadCatalog(BundleLocator(fsys, nil, "/opt/grill", ""), nil)
	assert.Equal(t, 0, missing.Len())

	require.NoError(t, afero.WriteFile(fsys, "/opt/grill/sounds.json", []byte("{not json"), 0o644))
	malformed := LoadCatalog(BundleLocator(fsys, nil, "/opt/grill", ""), nil)
	assert.Equal(t, 0, malformed.Len())
}

func TestLocator_FirstMatchWins(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/bundle/sounds/bell.wav", []byte("a"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/res/bell.wav", []byte("b"), 0o644))
	require.NoError(t, fsys.MkdirAll("/bundle/dir.wav", 0o755))

	loc := BundleLocator(fsys, nil, "/bundle", "/res")

	path, ok := loc.Find("bell.wav")
	require.True(t, ok)
	assert.Equal(t, "/bundle/sounds/bell.wav", path)

	_, ok = loc.Find("dir.wav")
	assert.False(t, ok, "directories are not sounds")

	_, ok = loc.Find("../res/bell.wav")
	assert.False(t, ok, "paths are rejected")
}
