// Package config handles configuration loading and defaults for grilltimer.
// Configuration is loaded from XDG-compliant paths (typically ~/.config/grilltimer/config.yaml).
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"grilltimer/internal/fsutil"

	"github.com/adrg/xdg"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const appDir = "grilltimer"

// Config represents the application configuration.
type Config struct {
	// DataDir overrides the default data directory ($XDG_DATA_HOME/grilltimer)
	DataDir string `yaml:"data_dir,omitempty"`

	// BundleDir is where the shipped sound manifest and files live
	BundleDir string `yaml:"bundle_dir,omitempty"`

	// ResourceDir is the last place bundled sounds are looked up
	ResourceDir string `yaml:"resource_dir,omitempty"`

	// LogLevel is one of error, warn, info, debug
	LogLevel string `yaml:"log_level,omitempty"`

	// LogFile overrides the log path (default: <data_dir>/grilltimer.log)
	LogFile string `yaml:"log_file,omitempty"`

	// Theme customizes the visual appearance
	Theme ThemeConfig `yaml:"theme,omitempty"`

	// Keys customizes keyboard shortcuts
	Keys KeysConfig `yaml:"keys,omitempty"`

	// Alerts tunes alert timing
	Alerts AlertsConfig `yaml:"alerts,omitempty"`

	// Entitlements caps additional timers per tier
	Entitlements EntitlementsConfig `yaml:"entitlements,omitempty"`

	// Notifications configures desktop notifications
	Notifications NotificationConfig `yaml:"notifications,omitempty"`
}

// ThemeConfig defines color and style settings.
type ThemeConfig struct {
	// Primary color for focused elements (hex, e.g., "#FF5733")
	Primary string `yaml:"primary,omitempty"`

	// Accent color for highlights (hex)
	Accent string `yaml:"accent,omitempty"`

	// Muted color for secondary text (hex)
	Muted string `yaml:"muted,omitempty"`

	// Alert color for expired timers and the alert banner (hex)
	Alert string `yaml:"alert,omitempty"`

	// Background color (hex)
	Background string `yaml:"background,omitempty"`

	// Text color (hex)
	Text string `yaml:"text,omitempty"`
}

// KeysConfig defines customizable keyboard shortcuts.
// Each field accepts a comma-separated list of key bindings.
// Examples: "q,ctrl+c", "tab", "j,down"
type KeysConfig struct {
	Quit string `yaml:"quit,omitempty"` // default: "q,ctrl+c"
	Help string `yaml:"help,omitempty"` // default: "?"

	Up   string `yaml:"up,omitempty"`   // default: "k,up"
	Down string `yaml:"down,omitempty"` // default: "j,down"

	Toggle  string `yaml:"toggle,omitempty"`   // default: "space"
	Reset   string `yaml:"reset,omitempty"`    // default: "r"
	Preset1 string `yaml:"preset_1,omitempty"` // default: "1"
	Preset2 string `yaml:"preset_2,omitempty"` // default: "2"
	Preheat string `yaml:"preheat,omitempty"`  // default: "p"
	Dismiss string `yaml:"dismiss,omitempty"`  // default: "enter,esc"

	PreheatReset string `yaml:"preheat_reset,omitempty"` // default: "P"
	EditPresets  string `yaml:"edit_presets,omitempty"`  // default: "t"

	AddTimer    string `yaml:"add_timer,omitempty"`    // default: "a"
	RemoveTimer string `yaml:"remove_timer,omitempty"` // default: "x"
	RenameTimer string `yaml:"rename_timer,omitempty"` // default: "e"

	ToggleSound   string `yaml:"toggle_sound,omitempty"`   // default: "S"
	ToggleHaptics string `yaml:"toggle_haptics,omitempty"` // default: "H"
	ToggleVoice   string `yaml:"toggle_voice,omitempty"`   // default: "V"

	ToggleHeadphones string `yaml:"toggle_headphones,omitempty"` // default: "O"

	Confirm string `yaml:"confirm,omitempty"` // default: "enter"
	Cancel  string `yaml:"cancel,omitempty"`  // default: "esc"
}

// AlertsConfig tunes the alert pipeline.
type AlertsConfig struct {
	// HapticInterval is the cadence of recurring pulses
	HapticInterval time.Duration `yaml:"haptic_interval,omitempty"` // default: 1.5s

	// AnnouncementDelay lets the alert sound start before speaking
	AnnouncementDelay time.Duration `yaml:"announcement_delay,omitempty"` // default: 1s

	// SystemRepeat is the synthetic completion delay for system tones
	SystemRepeat time.Duration `yaml:"system_repeat,omitempty"` // default: 2s

	// SpeechLanguage is the language family voices are filtered to
	SpeechLanguage string `yaml:"speech_language,omitempty"` // default: "en"

	// SpeechTimeout bounds a single announcement
	SpeechTimeout time.Duration `yaml:"speech_timeout,omitempty"` // default: 15s
}

// EntitlementsConfig caps additional timer slots.
type EntitlementsConfig struct {
	FreeAdditionalTimers int `yaml:"free_additional_timers"` // default: 2

	// PremiumAdditionalTimers of 0 means uncapped
	PremiumAdditionalTimers int `yaml:"premium_additional_timers"` // default: 0
}

// NotificationConfig defines desktop notification settings.
type NotificationConfig struct {
	// Enabled sends a desktop notification when a timer expires
	Enabled bool `yaml:"enabled,omitempty"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		DataDir:  defaultDataDir(),
		LogLevel: "info",
		Theme: ThemeConfig{
			Primary:    "#EA580C", // Orange
			Accent:     "#10B981", // Emerald
			Muted:      "#6B7280", // Gray
			Alert:      "#DC2626", // Red
			Background: "",        // Terminal default
			Text:       "",        // Terminal default
		},
		Keys: KeysConfig{
			// Defaults are empty strings, which means use built-in defaults
		},
		Alerts: AlertsConfig{
			HapticInterval:    1500 * time.Millisecond,
			AnnouncementDelay: time.Second,
			SystemRepeat:      2 * time.Second,
			SpeechLanguage:    "en",
			SpeechTimeout:     15 * time.Second,
		},
		Entitlements: EntitlementsConfig{
			FreeAdditionalTimers:    2,
			PremiumAdditionalTimers: 0,
		},
		Notifications: NotificationConfig{
			Enabled: false,
		},
	}
}

// defaultDataDir returns the default data directory path.
func defaultDataDir() string {
	return filepath.Join(xdg.DataHome, appDir)
}

// Path returns the path to the config file.
func Path() string {
	return filepath.Join(xdg.ConfigHome, appDir, "config.yaml")
}

// Load reads configuration from disk, merging with defaults.
// If no config file exists, returns default configuration.
func Load() (*Config, error) {
	return LoadFile(Path())
}

// LoadFile reads configuration from path, merging with defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	var userCfg Config
	if err := yaml.Unmarshal(data, &userCfg); err != nil {
		return nil, err
	}

	var doc yaml.Node
	_ = yaml.Unmarshal(data, &doc) // best-effort; fall back to conservative merge if this fails

	cfg.mergeFromYAML(&userCfg, &doc)

	return cfg, nil
}

func mergeString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

func mergeDuration(dst *time.Duration, src time.Duration) {
	if src > 0 {
		*dst = src
	}
}

// mergeNonEmpty applies non-empty values from other to c.
// It intentionally does not touch booleans or ints where zero is meaningful
// (those require presence-aware merging).
func (c *Config) mergeNonEmpty(other *Config) {
	mergeString(&c.DataDir, other.DataDir)
	mergeString(&c.BundleDir, other.BundleDir)
	mergeString(&c.ResourceDir, other.ResourceDir)
	mergeString(&c.LogLevel, other.LogLevel)
	mergeString(&c.LogFile, other.LogFile)

	mergeString(&c.Theme.Primary, other.Theme.Primary)
	mergeString(&c.Theme.Accent, other.Theme.Accent)
	mergeString(&c.Theme.Muted, other.Theme.Muted)
	mergeString(&c.Theme.Alert, other.Theme.Alert)
	mergeString(&c.Theme.Background, other.Theme.Background)
	mergeString(&c.Theme.Text, other.Theme.Text)

	k, o := &c.Keys, other.Keys
	mergeString(&k.Quit, o.Quit)
	mergeString(&k.Help, o.Help)
	mergeString(&k.Up, o.Up)
	mergeString(&k.Down, o.Down)
	mergeString(&k.Toggle, o.Toggle)
	mergeString(&k.Reset, o.Reset)
	mergeString(&k.Preset1, o.Preset1)
	mergeString(&k.Preset2, o.Preset2)
	mergeString(&k.Preheat, o.Preheat)
	mergeString(&k.Dismiss, o.Dismiss)
	mergeString(&k.PreheatReset, o.PreheatReset)
	mergeString(&k.EditPresets, o.EditPresets)
	mergeString(&k.AddTimer, o.AddTimer)
	mergeString(&k.RemoveTimer, o.RemoveTimer)
	mergeString(&k.RenameTimer, o.RenameTimer)
	mergeString(&k.ToggleSound, o.ToggleSound)
	mergeString(&k.ToggleHaptics, o.ToggleHaptics)
	mergeString(&k.ToggleVoice, o.ToggleVoice)
	mergeString(&k.ToggleHeadphones, o.ToggleHeadphones)
	mergeString(&k.Confirm, o.Confirm)
	mergeString(&k.Cancel, o.Cancel)

	mergeDuration(&c.Alerts.HapticInterval, other.Alerts.HapticInterval)
	mergeDuration(&c.Alerts.AnnouncementDelay, other.Alerts.AnnouncementDelay)
	mergeDuration(&c.Alerts.SystemRepeat, other.Alerts.SystemRepeat)
	mergeDuration(&c.Alerts.SpeechTimeout, other.Alerts.SpeechTimeout)
	mergeString(&c.Alerts.SpeechLanguage, other.Alerts.SpeechLanguage)

	if other.Entitlements.FreeAdditionalTimers > 0 {
		c.Entitlements.FreeAdditionalTimers = other.Entitlements.FreeAdditionalTimers
	}
	if other.Entitlements.PremiumAdditionalTimers > 0 {
		c.Entitlements.PremiumAdditionalTimers = other.Entitlements.PremiumAdditionalTimers
	}
}

func (c *Config) mergeFromYAML(other *Config, doc *yaml.Node) {
	c.mergeNonEmpty(other)

	// Fall back to conservative behavior if we can't inspect presence.
	if doc == nil || len(doc.Content) == 0 {
		return
	}

	// Booleans and zero-meaningful ints apply only when present in YAML.
	if yamlHasPath(doc, "notifications", "enabled") {
		c.Notifications.Enabled = other.Notifications.Enabled
	}
	if yamlHasPath(doc, "entitlements", "free_additional_timers") && other.Entitlements.FreeAdditionalTimers >= 0 {
		c.Entitlements.FreeAdditionalTimers = other.Entitlements.FreeAdditionalTimers
	}
	if yamlHasPath(doc, "entitlements", "premium_additional_timers") && other.Entitlements.PremiumAdditionalTimers >= 0 {
		c.Entitlements.PremiumAdditionalTimers = other.Entitlements.PremiumAdditionalTimers
	}
}

func yamlHasPath(doc *yaml.Node, path ...string) bool {
	if doc == nil || len(path) == 0 {
		return false
	}

	// Document -> root mapping.
	n := doc
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	for _, key := range path {
		if n == nil || n.Kind != yaml.MappingNode {
			return false
		}
		var next *yaml.Node
		for i := 0; i+1 < len(n.Content); i += 2 {
			if k := n.Content[i]; k.Kind == yaml.ScalarNode && k.Value == key {
				next = n.Content[i+1]
				break
			}
		}
		if next == nil {
			return false
		}
		n = next
	}
	return true
}

// Save writes the configuration to disk.
func (c *Config) Save() error {
	return c.SaveFile(afero.NewOsFs(), Path())
}

// SaveFile writes the configuration to path on fsys.
func (c *Config) SaveFile(fsys afero.Fs, path string) error {
	if err := fsys.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return fsutil.WriteFileAtomic(fsys, path, data, 0600)
}

// GetDataDir returns the resolved data directory path.
func (c *Config) GetDataDir() string {
	if c.DataDir != "" {
		return expandHome(c.DataDir)
	}
	return defaultDataDir()
}

// GetBundleDir returns the directory holding the shipped sound manifest.
// It defaults to the directory of the running executable.
func (c *Config) GetBundleDir() string {
	if c.BundleDir != "" {
		return expandHome(c.BundleDir)
	}
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// GetResourceDir returns the fallback sound resource directory. It defaults
// to the first system data dir (typically /usr/local/share/grilltimer).
func (c *Config) GetResourceDir() string {
	if c.ResourceDir != "" {
		return expandHome(c.ResourceDir)
	}
	if len(xdg.DataDirs) > 0 {
		return filepath.Join(xdg.DataDirs[0], appDir)
	}
	return ""
}

// GetLogFile returns the resolved log file path.
func (c *Config) GetLogFile() string {
	if c.LogFile != "" {
		return expandHome(c.LogFile)
	}
	return filepath.Join(c.GetDataDir(), "grilltimer.log")
}

// AdditionalTimerCap returns the maximum number of additional slots for the
// tier, or -1 when uncapped.
func (c *Config) AdditionalTimerCap(premium bool) int {
	if premium {
		if c.Entitlements.PremiumAdditionalTimers <= 0 {
			return -1
		}
		return c.Entitlements.PremiumAdditionalTimers
	}
	return c.Entitlements.FreeAdditionalTimers
}

func expandHome(p string) string {
	if p == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return p
	}

	if strings.HasPrefix(p, "~/") || strings.HasPrefix(p, `~\`) {
		home, err := os.UserHomeDir()
		if err == nil {
			trimmed := strings.TrimPrefix(p, "~/")
			trimmed = strings.TrimPrefix(trimmed, `~\`)
			trimmed = strings.TrimPrefix(trimmed, `\`)
			return filepath.Join(home, trimmed)
		}
	}
	return p
}
