// Package backup snapshots the grilltimer data directory: the settings
// file, the custom sound records and the imported sound files.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"grilltimer/internal/fsutil"
	"grilltimer/internal/logging"

	"github.com/spf13/afero"
)

const (
	ManifestVersion = 2
	ManifestFile    = "manifest.json"
	BackupsDir      = "backups"

	nameLayout = "2006-01-02_150405"
	soundsDir  = "sounds"
)

// ErrNotFound is returned for a backup name with no backup behind it.
var ErrNotFound = errors.New("backup not found")

// dataFiles are the JSON documents at the top of the data directory.
var dataFiles = []string{"settings.json", "custom_sounds.json"}

// Manager creates and restores backups under <dataDir>/backups.
type Manager struct {
	fs         afero.Fs
	dataDir    string
	backupDir  string
	appVersion string
	now        func() time.Time
	logger     *slog.Logger
}

// Manifest describes one backup.
type Manifest struct {
	Version    int            `json:"version"`
	CreatedAt  time.Time      `json:"created_at"`
	AppVersion string         `json:"app_version"`
	Files      []string       `json:"files"`
	Stats      map[string]int `json:"stats"`
}

// Info summarizes a backup for listing.
type Info struct {
	Name      string
	Path      string
	CreatedAt time.Time
	Stats     map[string]int
}

// NewManager creates a manager for dataDir on fsys.
func NewManager(fsys afero.Fs, dataDir, appVersion string, logger *slog.Logger) *Manager {
	return &Manager{
		fs:         fsys,
		dataDir:    dataDir,
		backupDir:  filepath.Join(dataDir, BackupsDir),
		appVersion: appVersion,
		now:        time.Now,
		logger:     logging.OrDiscard(logger),
	}
}

// SetNowFunc overrides the clock used to name backups.
func (m *Manager) SetNowFunc(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	m.now = now
}

// Dir returns the directory holding backups.
func (m *Manager) Dir() string {
	return m.backupDir
}

// sourceFiles lists the files to back up as slash-separated paths relative
// to the data directory.
func (m *Manager) sourceFiles() ([]string, error) {
	var files []string
	for _, name := range dataFiles {
		if fsutil.IsRegularFile(m.fs, filepath.Join(m.dataDir, name)) {
			files = append(files, name)
		}
	}

	entries, err := afero.ReadDir(m.fs, filepath.Join(m.dataDir, soundsDir))
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read sound directory: %w", err)
	}
	for _, e := range entries {
		if e.Mode().IsRegular() {
			files = append(files, path.Join(soundsDir, e.Name()))
		}
	}
	return files, nil
}

// Create copies the current data into a new timestamped backup and
// returns its name.
func (m *Manager) Create() (string, error) {
	now := m.now()
	name := fmt.Sprintf("%s_%03d", now.Format(nameLayout), now.Nanosecond()/1e6)
	dst := filepath.Join(m.backupDir, name)
	if fsutil.Exists(m.fs, dst) {
		return "", fmt.Errorf("backup %s already exists", name)
	}

	files, err := m.sourceFiles()
	if err != nil {
		return "", err
	}
	if err := m.fs.MkdirAll(dst, 0o700); err != nil {
		return "", fmt.Errorf("create backup: %w", err)
	}

	for _, rel := range files {
		src := filepath.Join(m.dataDir, filepath.FromSlash(rel))
		if err := fsutil.CopyFileAtomic(m.fs, src, m.fs, filepath.Join(dst, filepath.FromSlash(rel)), 0o600); err != nil {
			_ = m.fs.RemoveAll(dst)
			return "", fmt.Errorf("back up %s: %w", rel, err)
		}
	}

	manifest := Manifest{
		Version:    ManifestVersion,
		CreatedAt:  now,
		AppVersion: m.appVersion,
		Files:      files,
		Stats:      m.stats(dst, files),
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err == nil {
		err = fsutil.WriteFileAtomic(m.fs, filepath.Join(dst, ManifestFile), data, 0o600)
	}
	if err != nil {
		_ = m.fs.RemoveAll(dst)
		return "", fmt.Errorf("write manifest: %w", err)
	}

	m.logger.Info("backup created", "name", name, "files", len(files))
	return name, nil
}

// stats counts additional timers, custom sound records and sound files.
func (m *Manager) stats(dir string, files []string) map[string]int {
	stats := map[string]int{"sound_files": 0}
	for _, rel := range files {
		if path.Dir(rel) == soundsDir {
			stats["sound_files"]++
		}
	}

	var library struct {
		Sounds []json.RawMessage `json:"sounds"`
	}
	if readJSON(m.fs, filepath.Join(dir, "custom_sounds.json"), &library) == nil {
		stats["custom_sounds"] = len(library.Sounds)
	}

	var prefs map[string]json.RawMessage
	if readJSON(m.fs, filepath.Join(dir, "settings.json"), &prefs) == nil {
		var timers []json.RawMessage
		if raw, ok := prefs["timers.additional"]; ok && json.Unmarshal(raw, &timers) == nil {
			stats["timers"] = len(timers)
		}
	}
	return stats
}

// List returns the backups, newest first. Directories that are neither
// described by a manifest nor named like a backup are skipped.
func (m *Manager) List() ([]Info, error) {
	entries, err := afero.ReadDir(m.fs, m.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Info{}, nil
		}
		return nil, fmt.Errorf("read backup directory: %w", err)
	}

	backups := []Info{}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		info, err := m.info(e.Name())
		if err != nil {
			m.logger.Debug("skipping backup directory", "name", e.Name(), "error", err)
			continue
		}
		backups = append(backups, info)
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups, nil
}

// Get returns information about one backup.
func (m *Manager) Get(name string) (Info, error) {
	if err := m.exists(name); err != nil {
		return Info{}, err
	}
	return m.info(name)
}

func (m *Manager) info(name string) (Info, error) {
	dir := filepath.Join(m.backupDir, name)
	manifest, err := m.manifest(name)
	if err != nil {
		createdAt, perr := parseName(name)
		if perr != nil {
			return Info{}, fmt.Errorf("invalid backup %s", name)
		}
		manifest.CreatedAt = createdAt
		manifest.Stats = map[string]int{}
	}
	return Info{Name: name, Path: dir, CreatedAt: manifest.CreatedAt, Stats: manifest.Stats}, nil
}

func (m *Manager) manifest(name string) (Manifest, error) {
	var manifest Manifest
	err := readJSON(m.fs, filepath.Join(m.backupDir, name, ManifestFile), &manifest)
	return manifest, err
}

func (m *Manager) exists(name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	if ok, _ := afero.DirExists(m.fs, filepath.Join(m.backupDir, name)); !ok {
		return fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return nil
}

// Restore replaces the data files with those in the named backup. A safety
// backup of the current data is taken first and its name returned. Sound
// files absent from the backup are left in place.
func (m *Manager) Restore(name string) (string, error) {
	if err := m.exists(name); err != nil {
		return "", err
	}
	dir := filepath.Join(m.backupDir, name)

	files := dataFiles
	if manifest, err := m.manifest(name); err == nil {
		files = manifest.Files
	}
	for _, rel := range files {
		if err := validateRelative(rel); err != nil {
			return "", err
		}
	}

	safety, err := m.Create()
	if err != nil {
		return "", fmt.Errorf("create safety backup: %w", err)
	}

	for _, rel := range files {
		src := filepath.Join(dir, filepath.FromSlash(rel))
		if !fsutil.IsRegularFile(m.fs, src) {
			continue
		}
		dst := filepath.Join(m.dataDir, filepath.FromSlash(rel))
		if err := fsutil.CopyFileAtomic(m.fs, src, m.fs, dst, 0o600); err != nil {
			return safety, fmt.Errorf("restore %s (safety backup: %s): %w", rel, safety, err)
		}
	}

	for _, rel := range files {
		if filepath.Ext(rel) != ".json" {
			continue
		}
		var v any
		err := readJSON(m.fs, filepath.Join(m.dataDir, filepath.FromSlash(rel)), &v)
		if err != nil && !os.IsNotExist(err) {
			return safety, fmt.Errorf("restored %s is invalid (safety backup: %s): %w", rel, safety, err)
		}
	}

	m.logger.Info("backup restored", "name", name, "safety", safety)
	return safety, nil
}

// RestoreLatest restores the most recent backup and returns its name and
// the safety backup's name.
func (m *Manager) RestoreLatest() (restored, safety string, err error) {
	backups, err := m.List()
	if err != nil {
		return "", "", err
	}
	if len(backups) == 0 {
		return "", "", ErrNotFound
	}
	restored = backups[0].Name
	safety, err = m.Restore(restored)
	return restored, safety, err
}

// Delete removes a backup.
func (m *Manager) Delete(name string) error {
	if err := m.exists(name); err != nil {
		return err
	}
	return m.fs.RemoveAll(filepath.Join(m.backupDir, name))
}

// Prune keeps the keep most recent backups and returns how many it removed.
func (m *Manager) Prune(keep int) (int, error) {
	if keep < 0 {
		return 0, fmt.Errorf("keep must be non-negative")
	}
	backups, err := m.List()
	if err != nil {
		return 0, err
	}
	if len(backups) <= keep {
		return 0, nil
	}

	deleted := 0
	for _, b := range backups[keep:] {
		if err := m.Delete(b.Name); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("backup name is required")
	}
	if name != filepath.Base(name) {
		return fmt.Errorf("invalid backup name: %q", name)
	}
	if _, err := parseName(name); err != nil {
		return fmt.Errorf("invalid backup name: %q", name)
	}
	return nil
}

// validateRelative rejects manifest entries that would escape the data
// directory.
func validateRelative(rel string) error {
	clean := path.Clean(rel)
	if clean != rel || path.IsAbs(rel) || clean == ".." || len(clean) > 2 && clean[:3] == "../" {
		return fmt.Errorf("invalid file in manifest: %q", rel)
	}
	return nil
}

func readJSON(fsys afero.Fs, path string, v any) error {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// parseName parses "2006-01-02_150405_000" or the shorter form without
// milliseconds.
func parseName(name string) (time.Time, error) {
	if len(name) == len(nameLayout)+4 {
		base, err := time.Parse(nameLayout, name[:len(nameLayout)])
		if err != nil {
			return time.Time{}, err
		}
		if name[len(nameLayout)] != '_' {
			return time.Time{}, fmt.Errorf("invalid backup name")
		}
		ms, err := strconv.Atoi(name[len(nameLayout)+1:])
		if err != nil || ms < 0 || ms > 999 {
			return time.Time{}, fmt.Errorf("invalid milliseconds")
		}
		return base.Add(time.Duration(ms) * time.Millisecond), nil
	}
	return time.Parse(nameLayout, name)
}
