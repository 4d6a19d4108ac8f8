package sound

import (
	"log/slog"
	"path/filepath"
	"strings"

	"grilltimer/internal/fsutil"
	"grilltimer/internal/logging"

	"github.com/spf13/afero"
)

// SupportedExtensions lists the file extensions the player can decode.
var SupportedExtensions = []string{".wav", ".mp3", ".ogg", ".flac"}

// Supported reports whether filename has a decodable extension.
func Supported(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range SupportedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Locator finds files by name across an ordered list of directories.
type Locator struct {
	fs     afero.Fs
	dirs   []string
	logger *slog.Logger
}

// NewLocator returns a Locator searching dirs in order. Empty entries are
// skipped.
func NewLocator(fsys afero.Fs, logger *slog.Logger, dirs ...string) *Locator {
	l := &Locator{fs: fsys, logger: logging.OrDiscard(logger)}
	for _, d := range dirs {
		if d != "" {
			l.dirs = append(l.dirs, d)
		}
	}
	return l
}

// BundleLocator searches the bundle root, its sounds subfolder and the
// resource directory.
func BundleLocator(fsys afero.Fs, logger *slog.Logger, bundleDir, resourceDir string) *Locator {
	var sounds string
	if bundleDir != "" {
		sounds = filepath.Join(bundleDir, "sounds")
	}
	return NewLocator(fsys, logger, bundleDir, sounds, resourceDir)
}

// Fs returns the filesystem the locator searches.
func (l *Locator) Fs() afero.Fs {
	return l.fs
}

// Dirs returns the search order.
func (l *Locator) Dirs() []string {
	return append([]string(nil), l.dirs...)
}

// Find returns the first existing regular file named filename.
func (l *Locator) Find(filename string) (string, bool) {
	if filename == "" || filepath.Base(filename) != filename {
		l.logger.Debug("rejecting sound filename", "filename", filename)
		return "", false
	}
	for _, dir := range l.dirs {
		p := filepath.Join(dir, filename)
		if fsutil.IsRegularFile(l.fs, p) {
			return p, true
		}
		l.logger.Debug("sound not in location", "filename", filename, "dir", dir)
	}
	return "", false
}
