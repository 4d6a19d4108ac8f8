package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"grilltimer/internal/sound"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestConfig creates a config pointing every directory into a temp
// dir, with one bundled sound installed.
func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	bundle := filepath.Join(dir, "bundle")
	require.NoError(t, os.MkdirAll(bundle, 0o755))
	manifest := `[{"id":"ember","filename":"ember.wav","display_name":"Ember","category":"Classic"}]`
	require.NoError(t, os.WriteFile(filepath.Join(bundle, sound.ManifestName), []byte(manifest), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(bundle, "ember.wav"), []byte("RIFF"), 0o644))

	cfg := strings.Join([]string{
		"data_dir: " + filepath.Join(dir, "data"),
		"bundle_dir: " + bundle,
		"resource_dir: " + filepath.Join(dir, "resources"),
		"log_file: " + filepath.Join(dir, "grilltimer.log"),
	}, "\n")
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestVersionFlag(t *testing.T) {
	out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "dev")
	assert.Contains(t, out, "commit none")
}

func TestRootRejectsArgs(t *testing.T) {
	_, err := execute(t, "bogus")
	assert.Error(t, err)
}

func TestSoundsSelectAndList(t *testing.T) {
	cfg := writeTestConfig(t)

	out, err := execute(t, "--config", cfg, "sounds", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Selected: system:Alarm")
	assert.Contains(t, out, "BUNDLED (premium)")
	assert.Contains(t, out, "ember")
	assert.Contains(t, out, "(none imported)")

	out, err = execute(t, "--config", cfg, "sounds", "select", "system", "chime")
	require.NoError(t, err)
	assert.Contains(t, out, "Selected: system:Chime")

	out, err = execute(t, "--config", cfg, "sounds", "select", "bundled", "ember")
	require.NoError(t, err)
	assert.Contains(t, out, "Selected: bundled:ember")
	assert.Contains(t, out, "premium")

	out, err = execute(t, "--config", cfg, "sounds", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Selected: bundled:ember")

	_, err = execute(t, "--config", cfg, "sounds", "select", "bundled", "missing")
	assert.ErrorIs(t, err, sound.ErrNotFound)

	out, err = execute(t, "--config", cfg, "sounds", "select", "default")
	require.NoError(t, err)
	assert.Contains(t, out, "Selected: system:Chime")
}

func TestSoundsImportSelectDelete(t *testing.T) {
	cfg := writeTestConfig(t)
	src := filepath.Join(t.TempDir(), "sizzle.wav")
	require.NoError(t, os.WriteFile(src, []byte("RIFF"), 0o644))

	out, err := execute(t, "--config", cfg, "sounds", "import", "--select", "--name", "Sizzle", src)
	require.NoError(t, err)
	m := regexp.MustCompile(`as (\S+)`).FindStringSubmatch(out)
	require.Len(t, m, 2, out)
	id := m[1]

	out, err = execute(t, "--config", cfg, "sounds", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Selected: custom:"+id)
	assert.Contains(t, out, "Sizzle")

	_, err = execute(t, "--config", cfg, "sounds", "rename", id, "Big", "Sizzle")
	require.NoError(t, err)
	out, err = execute(t, "--config", cfg, "sounds", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Big Sizzle")

	_, err = execute(t, "--config", cfg, "sounds", "delete", id)
	require.NoError(t, err)
	out, err = execute(t, "--config", cfg, "sounds", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Selected: system:Alarm")
	assert.Contains(t, out, "(none imported)")
}

func TestSoundsImportUnsupported(t *testing.T) {
	cfg := writeTestConfig(t)
	src := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(src, []byte("hi"), 0o644))

	_, err := execute(t, "--config", cfg, "sounds", "import", src)
	assert.ErrorIs(t, err, sound.ErrUnsupportedFormat)
}

func TestCountdownRejectsBadDuration(t *testing.T) {
	cfg := writeTestConfig(t)
	_, err := execute(t, "--config", cfg, "countdown", "0")
	assert.Error(t, err)
	_, err = execute(t, "--config", cfg, "countdown")
	assert.Error(t, err)
}

func TestCountdownFsKeepsWritesInMemory(t *testing.T) {
	dir := t.TempDir()
	fsys := countdownFs()
	path := filepath.Join(dir, "settings.json")
	f, err := fsys.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestBackupAndRestore(t *testing.T) {
	cfg := writeTestConfig(t)

	out, err := execute(t, "--config", cfg, "backup", "--list")
	require.NoError(t, err)
	assert.Contains(t, out, "No backups available.")

	_, err = execute(t, "--config", cfg, "sounds", "select", "system", "beacon")
	require.NoError(t, err)

	out, err = execute(t, "--config", cfg, "backup")
	require.NoError(t, err)
	m := regexp.MustCompile(`Backup created: (\S+)`).FindStringSubmatch(out)
	require.Len(t, m, 2, out)
	name := m[1]

	_, err = execute(t, "--config", cfg, "sounds", "select", "system", "tweet")
	require.NoError(t, err)

	// Empty stdin declines the prompt.
	out, err = execute(t, "--config", cfg, "restore", name)
	require.NoError(t, err)
	assert.Contains(t, out, "Restore cancelled.")

	out, err = execute(t, "--config", cfg, "restore", "--force", name)
	require.NoError(t, err)
	assert.Contains(t, out, "Restored from "+name)

	out, err = execute(t, "--config", cfg, "sounds", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Selected: system:Beacon")

	out, err = execute(t, "--config", cfg, "backup", "--list")
	require.NoError(t, err)
	assert.Contains(t, out, name)
}

func TestFormatAge(t *testing.T) {
	assert.Equal(t, "just now", formatAge(10*time.Second))
	assert.Equal(t, "1 minute ago", formatAge(time.Minute))
	assert.Equal(t, "5 hours ago", formatAge(5*time.Hour))
	assert.Equal(t, "2 weeks ago", formatAge(15*24*time.Hour))
}
