package settings

import (
	"testing"

	"grilltimer/internal/sound"
	"grilltimer/internal/storage"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSettings(t *testing.T, fsys afero.Fs) *Settings {
	t.Helper()
	st, err := storage.New(fsys, "/data", nil)
	require.NoError(t, err)
	store, err := Open(st, nil)
	require.NoError(t, err)
	return New(store)
}

func TestDefaults(t *testing.T) {
	s := openTestSettings(t, afero.NewMemMapFs())

	assert.True(t, s.SoundEnabled())
	assert.True(t, s.HapticsEnabled())
	assert.False(t, s.VoiceEnabled())
	assert.True(t, s.HeadphonesOnly())
	assert.False(t, s.Premium())
	assert.Equal(t, DefaultPreheatSeconds, s.PreheatSeconds())
	assert.Equal(t, sound.DefaultSelection(), s.Selection())
	assert.Empty(t, s.AdditionalTimers())

	perm := s.PermanentTimers()
	require.Len(t, perm, 2)
	assert.Equal(t, Interval1, perm[0].ID)
	assert.Equal(t, Interval2, perm[1].ID)
}

func TestPersistsAcrossReopen(t *testing.T) {
	fsys := afero.NewMemMapFs()
	s := openTestSettings(t, fsys)

	require.NoError(t, s.SetSoundEnabled(false))
	require.NoError(t, s.SetVoiceEnabled(true))
	require.NoError(t, s.SetPreheatSeconds(600))
	require.NoError(t, s.SetSelection(sound.DefaultSelection().WithCustom("abc")))
	require.NoError(t, s.SetAnnouncementMessage("  Flip the steaks!  "))
	require.NoError(t, s.SaveTimer(TimerDef{ID: Interval1, Name: "Steak", Presets: [2]int{180, 0}}))
	require.NoError(t, s.SaveTimer(TimerDef{ID: "x1", Name: "Corn", Presets: [2]int{600, 900}}))

	r := openTestSettings(t, fsys)
	assert.False(t, r.SoundEnabled())
	assert.True(t, r.VoiceEnabled())
	assert.Equal(t, 600, r.PreheatSeconds())
	assert.Equal(t, "Flip the steaks!", r.AnnouncementMessage())

	id, ok := r.Selection().CustomID()
	assert.True(t, ok)
	assert.Equal(t, "abc", id)

	perm := r.PermanentTimers()
	assert.Equal(t, "Steak", perm[0].Name)
	assert.Equal(t, [2]int{180, 6 * 60}, perm[0].Presets, "zero preset keeps default")
	assert.Equal(t, "Rest", perm[1].Name)

	extra := r.AdditionalTimers()
	require.Len(t, extra, 1)
	assert.Equal(t, "Corn", extra[0].Name)
}

func TestSaveTimer_UpdatesExistingAdditional(t *testing.T) {
	s := openTestSettings(t, afero.NewMemMapFs())

	require.NoError(t, s.SaveTimer(TimerDef{ID: "a", Name: "A"}))
	require.NoError(t, s.SaveTimer(TimerDef{ID: "b", Name: "B"}))
	require.NoError(t, s.SaveTimer(TimerDef{ID: "a", Name: "A2"}))

	extra := s.AdditionalTimers()
	require.Len(t, extra, 2)
	assert.Equal(t, "A2", extra[0].Name)
	assert.Equal(t, "B", extra[1].Name)
}

func TestClearSelectionOverride(t *testing.T) {
	fsys := afero.NewMemMapFs()
	s := openTestSettings(t, fsys)

	missing := sound.DefaultSelection().WithSystem(sound.SystemChime).WithCustom("gone")
	require.NoError(t, s.SetSelection(missing))
	cleared, err := s.ClearSelectionOverride(missing)
	require.NoError(t, err)
	assert.True(t, cleared)
	assert.Equal(t, sound.DefaultSelection().WithSystem(sound.SystemChime), s.Selection())

	// Already on the system tone: nothing to clear.
	cleared, err = s.ClearSelectionOverride(s.Selection())
	require.NoError(t, err)
	assert.False(t, cleared)

	// A newer selection is kept.
	newer := s.Selection().WithBundled("ember")
	require.NoError(t, s.SetSelection(newer))
	cleared, err = s.ClearSelectionOverride(missing)
	require.NoError(t, err)
	assert.False(t, cleared)
	assert.True(t, s.Selection().Equal(newer))

	// The cleared value is persisted.
	require.NoError(t, s.SetSelection(missing))
	_, err = s.ClearSelectionOverride(missing)
	require.NoError(t, err)
	assert.Equal(t, sound.TierSystem, openTestSettings(t, fsys).Selection().Active())
}

func TestStore_TypeMismatchFallsBack(t *testing.T) {
	s := openTestSettings(t, afero.NewMemMapFs())
	store := s.Store()

	require.NoError(t, store.Set(keySoundEnabled, "yes please"))
	assert.True(t, s.SoundEnabled(), "undecodable value uses default")

	require.NoError(t, store.Delete(keySoundEnabled))
	require.NoError(t, store.Delete("never-set"))
	assert.NotContains(t, store.Keys(), keySoundEnabled)
}

func TestOpen_RecoversCorruptFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/data/settings.json", []byte("{broken"), 0o600))

	s := openTestSettings(t, fsys)
	assert.True(t, s.SoundEnabled())
	require.NoError(t, s.SetPremium(true))
	assert.True(t, s.Premium())
}
