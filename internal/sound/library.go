package sound

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"grilltimer/internal/fsutil"
	"grilltimer/internal/logging"
	"grilltimer/internal/storage"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

const (
	libraryFile = "custom_sounds.json"
	libraryDir  = "sounds"
)

// CustomSound is a user-imported sound stored in the data directory.
type CustomSound struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Filename string `json:"filename"`
}

type libraryDoc struct {
	Version int           `json:"version"`
	Sounds  []CustomSound `json:"sounds"`
}

// Library manages imported sounds. Records live in custom_sounds.json and
// files under <data>/sounds, named by a generated id.
type Library struct {
	mu     sync.Mutex
	store  *storage.Storage
	doc    libraryDoc
	newID  func() string
	logger *slog.Logger
}

// OpenLibrary loads the custom sound records from store.
func OpenLibrary(store *storage.Storage, logger *slog.Logger) (*Library, error) {
	l := &Library{
		store:  store,
		doc:    libraryDoc{Version: 1, Sounds: []CustomSound{}},
		newID:  uuid.NewString,
		logger: logging.OrDiscard(logger),
	}
	if err := store.LoadJSON(libraryFile, &l.doc); err != nil {
		// LoadJSON recovers what it can; the library stays usable.
		l.logger.Warn("custom sound library recovered", "error", err)
	}
	if err := store.Fs().MkdirAll(l.Dir(), 0o700); err != nil {
		return nil, fmt.Errorf("create custom sound directory: %w", err)
	}
	return l, nil
}

// Dir returns the directory holding imported files.
func (l *Library) Dir() string {
	return l.store.Path(libraryDir)
}

// Locator returns a locator over the library directory.
func (l *Library) Locator() *Locator {
	return NewLocator(l.store.Fs(), l.logger, l.Dir())
}

// List returns the imported sounds in import order.
func (l *Library) List() []CustomSound {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]CustomSound(nil), l.doc.Sounds...)
}

// Get looks up a sound by id.
func (l *Library) Get(id string) (CustomSound, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.indexOf(id)
	if i < 0 {
		return CustomSound{}, false
	}
	return l.doc.Sounds[i], true
}

// Path returns the stored file path for s.
func (l *Library) Path(s CustomSound) string {
	return filepath.Join(l.Dir(), s.Filename)
}

// Import copies src from srcFS into the library under a generated filename
// and records it. Either the file and its record both exist afterwards or
// neither does.
func (l *Library) Import(srcFS afero.Fs, src, name string) (CustomSound, error) {
	if !Supported(src) {
		return CustomSound{}, fmt.Errorf("import %s: %w", filepath.Base(src), ErrUnsupportedFormat)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		base := filepath.Base(src)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	id := l.newID()
	s := CustomSound{
		ID:       id,
		Name:     name,
		Filename: id + strings.ToLower(filepath.Ext(src)),
	}
	dst := l.Path(s)

	if err := fsutil.CopyFileAtomic(srcFS, src, l.store.Fs(), dst, 0o600); err != nil {
		return CustomSound{}, fmt.Errorf("import %s: %w", filepath.Base(src), err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.doc.Sounds = append(l.doc.Sounds, s)
	if err := l.store.SaveJSON(libraryFile, &l.doc); err != nil {
		l.doc.Sounds = l.doc.Sounds[:len(l.doc.Sounds)-1]
		_ = l.store.Fs().Remove(dst)
		return CustomSound{}, fmt.Errorf("import %s: %w", filepath.Base(src), err)
	}

	l.logger.Info("imported custom sound", "id", s.ID, "name", s.Name)
	return s, nil
}

// Rename changes the display name of a sound. Its id and filename are kept.
func (l *Library) Rename(id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("rename %s: name is empty", id)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(id)
	if i < 0 {
		return fmt.Errorf("rename %s: %w", id, ErrNotFound)
	}
	old := l.doc.Sounds[i].Name
	l.doc.Sounds[i].Name = name
	if err := l.store.SaveJSON(libraryFile, &l.doc); err != nil {
		l.doc.Sounds[i].Name = old
		return fmt.Errorf("rename %s: %w", id, err)
	}
	return nil
}

// Delete removes a sound's record and its backing file.
func (l *Library) Delete(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(id)
	if i < 0 {
		return fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	s := l.doc.Sounds[i]

	prev := l.doc.Sounds
	next := make([]CustomSound, 0, len(prev)-1)
	next = append(next, prev[:i]...)
	next = append(next, prev[i+1:]...)
	l.doc.Sounds = next
	if err := l.store.SaveJSON(libraryFile, &l.doc); err != nil {
		l.doc.Sounds = prev
		return fmt.Errorf("delete %s: %w", id, err)
	}

	if err := l.store.Fs().Remove(l.Path(s)); err != nil && fsutil.Exists(l.store.Fs(), l.Path(s)) {
		l.logger.Warn("remove custom sound file", "id", id, "error", err)
	}
	return nil
}

func (l *Library) indexOf(id string) int {
	for i, s := range l.doc.Sounds {
		if s.ID == id {
			return i
		}
	}
	return -1
}
