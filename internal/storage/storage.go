package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"grilltimer/internal/fsutil"

	"github.com/spf13/afero"
)

// Storage handles all JSON document I/O inside the data directory.
type Storage struct {
	fs      afero.Fs
	dataDir string
	now     func() time.Time // injectable clock for deterministic tests
	logger  *slog.Logger
}

const (
	dataDirPerm  os.FileMode = 0700
	dataFilePerm os.FileMode = 0600
)

// New creates a new Storage rooted at dataDir on fsys, creating the
// directory when needed.
func New(fsys afero.Fs, dataDir string, logger *slog.Logger) (*Storage, error) {
	if err := fsys.MkdirAll(dataDir, dataDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Storage{fs: fsys, dataDir: dataDir, now: time.Now, logger: logger}, nil
}

// SetNowFunc overrides the clock used to name quarantined files.
// Passing nil resets it to time.Now.
func (s *Storage) SetNowFunc(now func() time.Time) {
	if now == nil {
		s.now = time.Now
		return
	}
	s.now = now
}

// Fs returns the filesystem the storage writes to.
func (s *Storage) Fs() afero.Fs {
	return s.fs
}

// DataDir returns the path to the data directory.
func (s *Storage) DataDir() string {
	return s.dataDir
}

// Path joins name onto the data directory.
func (s *Storage) Path(name ...string) string {
	return filepath.Join(append([]string{s.dataDir}, name...)...)
}

// Exists reports whether filename exists in the data directory.
func (s *Storage) Exists(filename string) bool {
	return fsutil.Exists(s.fs, s.Path(filename))
}

// SaveJSON writes v to filename atomically, keeping a best-effort backup of
// the previous contents.
func (s *Storage) SaveJSON(filename string, v any) error {
	path := s.Path(filename)
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize %s: %w", filename, err)
	}

	// Keep a best-effort backup before overwriting.
	fsutil.BestEffortBackup(s.fs, path, dataFilePerm)

	if err := fsutil.WriteFileAtomic(s.fs, path, data, dataFilePerm); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}
	return nil
}

// LoadJSON decodes filename into v. A missing file is created from v's
// current value. An empty or corrupt file is recovered from its .bak copy
// or reset to v's current value; the returned error then describes the
// recovery, and v holds usable data.
func (s *Storage) LoadJSON(filename string, v any) error {
	path := s.Path(filename)
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return s.SaveJSON(filename, v)
		}
		return fmt.Errorf("read %s: %w", filename, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return s.recoverCorruptJSON(filename, v, fmt.Errorf("%s is empty", filename))
	}

	if err := json.Unmarshal(data, v); err == nil {
		return nil
	}
	return s.recoverCorruptJSON(filename, v, fmt.Errorf("parse %s: %w", filename, err))
}

func (s *Storage) recoverCorruptJSON(filename string, v any, cause error) error {
	path := s.Path(filename)
	corruptPath := fmt.Sprintf("%s.corrupt.%s", path, s.now().Format("20060102-150405"))

	// Try backup first.
	bakData, bakErr := afero.ReadFile(s.fs, path+".bak")
	if bakErr == nil && len(bytes.TrimSpace(bakData)) > 0 {
		if err := json.Unmarshal(bakData, v); err == nil {
			_ = s.fs.Rename(path, corruptPath)
			_ = s.SaveJSON(filename, v)
			s.logger.Warn("recovered document from backup", "file", filename, "error", cause)
			return fmt.Errorf("%s (recovered from %s.bak)", cause.Error(), filename)
		}
	}

	// No usable backup: preserve the broken file (best effort) and reset.
	_ = s.fs.Rename(path, corruptPath)
	_ = s.SaveJSON(filename, v)
	s.logger.Warn("reset corrupt document", "file", filename, "moved_to", corruptPath, "error", cause)
	return fmt.Errorf("%s (reset to defaults; original moved to %s)", cause.Error(), corruptPath)
}

// Remove deletes filename from the data directory. Missing files are not
// an error.
func (s *Storage) Remove(filename string) error {
	if err := s.fs.Remove(s.Path(filename)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", filename, err)
	}
	return nil
}
