package sound

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"grilltimer/internal/logging"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// ManifestName is the bundled catalog manifest file name.
const ManifestName = "sounds.json"

// categoryOrder ranks bundled categories; unlisted ones sort after these.
var categoryOrder = []string{"Alarms", "Bells", "Kitchen", "Nature", "Retro"}

// BundledSound is a read-only entry from the shipped manifest.
type BundledSound struct {
	ID          string `yaml:"id" json:"id"`
	Filename    string `yaml:"filename" json:"filename"`
	DisplayName string `yaml:"display_name" json:"display_name"`
	Category    string `yaml:"category" json:"category"`
	Description string `yaml:"description" json:"description"`
}

// Catalog is the set of bundled sounds, kept in display order.
type Catalog struct {
	sounds []BundledSound
	byID   map[string]int
}

// NewCatalog builds a catalog from entries. Entries without an id or
// filename, and repeated ids, are dropped. Category names are matched
// without regard to case: known categories take their canonical spelling
// and others the spelling of their first entry.
func NewCatalog(entries []BundledSound) *Catalog {
	c := &Catalog{byID: make(map[string]int, len(entries))}
	seen := make(map[string]bool, len(entries))
	spelling := make(map[string]string)
	for _, e := range entries {
		if e.ID == "" || e.Filename == "" || seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		if e.DisplayName == "" {
			e.DisplayName = e.ID
		}
		e.Category = canonicalCategory(e.Category, spelling)
		c.sounds = append(c.sounds, e)
	}
	sort.SliceStable(c.sounds, func(i, j int) bool {
		a, b := c.sounds[i], c.sounds[j]
		if ra, rb := categoryRank(a.Category), categoryRank(b.Category); ra != rb {
			return ra < rb
		}
		if a.Category != b.Category {
			return strings.ToLower(a.Category) < strings.ToLower(b.Category)
		}
		return strings.ToLower(a.DisplayName) < strings.ToLower(b.DisplayName)
	})
	for i, s := range c.sounds {
		c.byID[s.ID] = i
	}
	return c
}

func canonicalCategory(category string, spelling map[string]string) string {
	category = strings.TrimSpace(category)
	for _, known := range categoryOrder {
		if strings.EqualFold(known, category) {
			return known
		}
	}
	key := strings.ToLower(category)
	if first, ok := spelling[key]; ok {
		return first
	}
	spelling[key] = category
	return category
}

func categoryRank(category string) int {
	for i, c := range categoryOrder {
		if strings.EqualFold(c, category) {
			return i
		}
	}
	return len(categoryOrder)
}

// ParseManifest decodes a manifest. JSON and YAML are both accepted.
func ParseManifest(data []byte) ([]BundledSound, error) {
	var entries []BundledSound
	if err := json.Unmarshal(data, &entries); err == nil {
		return entries, nil
	}
	// YAML rejects tab indentation, so JSON is tried first.
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse sound manifest: %w", err)
	}
	return entries, nil
}

// LoadCatalog reads the manifest from the first location that has one. A
// missing or malformed manifest yields an empty catalog.
func LoadCatalog(loc *Locator, logger *slog.Logger) *Catalog {
	logger = logging.OrDiscard(logger)

	path, ok := loc.Find(ManifestName)
	if !ok {
		logger.Info("no bundled sound manifest", "searched", loc.Dirs())
		return NewCatalog(nil)
	}
	data, err := afero.ReadFile(loc.Fs(), path)
	if err != nil {
		logger.Warn("read bundled sound manifest", "path", path, "error", err)
		return NewCatalog(nil)
	}
	entries, err := ParseManifest(data)
	if err != nil {
		logger.Warn("bundled sound manifest is malformed", "path", path, "error", err)
		return NewCatalog(nil)
	}
	c := NewCatalog(entries)
	logger.Debug("loaded bundled sounds", "path", path, "count", c.Len())
	return c
}

// Len returns the number of sounds.
func (c *Catalog) Len() int {
	return len(c.sounds)
}

// All returns the sounds in display order.
func (c *Catalog) All() []BundledSound {
	return append([]BundledSound(nil), c.sounds...)
}

// Get looks up a sound by id.
func (c *Catalog) Get(id string) (BundledSound, bool) {
	i, ok := c.byID[id]
	if !ok {
		return BundledSound{}, false
	}
	return c.sounds[i], true
}

// Categories returns the category names in display order.
func (c *Catalog) Categories() []string {
	var out []string
	for _, s := range c.sounds {
		if len(out) == 0 || out[len(out)-1] != s.Category {
			out = append(out, s.Category)
		}
	}
	return out
}
