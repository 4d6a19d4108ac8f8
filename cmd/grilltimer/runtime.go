package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"grilltimer/internal/audio"
	"grilltimer/internal/config"
	"grilltimer/internal/engine"
	"grilltimer/internal/haptics"
	"grilltimer/internal/logging"
	"grilltimer/internal/notify"
	"grilltimer/internal/settings"
	"grilltimer/internal/sound"
	"grilltimer/internal/speech"
	"grilltimer/internal/storage"

	"github.com/spf13/afero"
)

// runtime is the wired alert stack shared by every command.
type runtime struct {
	cfg      *config.Config
	logger   *slog.Logger
	logClose io.Closer
	store    *storage.Storage
	prefs    *settings.Settings
	library  *sound.Library
	catalog  *sound.Catalog
	resolver *sound.Resolver
	output   *audio.PulseOutput
	player   *audio.Controller
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(opts *rootOptions) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.dataDir != "" {
		cfg.DataDir = opts.dataDir
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	return cfg, nil
}

// openRuntime wires storage, sounds and audio. Settings and the custom
// library live on fsys; bundled sounds are always read from the OS.
func openRuntime(opts *rootOptions, fsys afero.Fs) (*runtime, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	rt := &runtime{cfg: cfg}
	rt.logger, rt.logClose, err = logging.OpenFile(cfg.GetLogFile(), level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
		rt.logger = logging.Discard()
	}

	rt.store, err = storage.New(fsys, cfg.GetDataDir(), rt.logger)
	if err != nil {
		rt.Close()
		return nil, err
	}
	prefs, err := settings.Open(rt.store, rt.logger)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("open settings: %w", err)
	}
	rt.prefs = settings.New(prefs)

	rt.library, err = sound.OpenLibrary(rt.store, rt.logger)
	if err != nil {
		rt.Close()
		return nil, err
	}
	bundled := sound.BundleLocator(afero.NewOsFs(), rt.logger, cfg.GetBundleDir(), cfg.GetResourceDir())
	rt.catalog = sound.LoadCatalog(bundled, rt.logger)
	rt.resolver = sound.NewResolver(rt.catalog, bundled, rt.library, rt.logger)

	rt.output = audio.NewPulseOutput(rt.logger)
	ctrl := audio.Options{
		Fs:           fsys,
		Logger:       rt.logger,
		SystemRepeat: cfg.Alerts.SystemRepeat,
	}
	if err := rt.output.Probe(); err != nil {
		rt.logger.Warn("no audio server, alerts will be silent", "error", err)
	} else {
		ctrl.Sink = rt.output
		ctrl.Session = rt.output
	}
	rt.player = audio.NewController(ctrl)

	rt.logger.Info("runtime ready",
		"data_dir", cfg.GetDataDir(),
		"bundled_sounds", rt.catalog.Len(),
		"custom_sounds", len(rt.library.List()))
	return rt, nil
}

// voices returns the voice catalog for the configured language.
func (rt *runtime) voices() *speech.VoiceCatalog {
	return speech.NewVoiceCatalog(rt.cfg.Alerts.SpeechLanguage)
}

// newEngine builds the orchestrator. Strong pulses ring the bell on bell.
func (rt *runtime) newEngine(bell io.Writer) *engine.Engine {
	a := rt.cfg.Alerts
	announcer := speech.NewAnnouncer(speech.Options{
		Prefs:   rt.prefs,
		Routes:  rt.output,
		Voices:  rt.voices(),
		Delay:   a.AnnouncementDelay,
		Timeout: a.SpeechTimeout,
		Logger:  rt.logger,
	})
	return engine.New(engine.Options{
		Prefs:          rt.prefs,
		Resolver:       rt.resolver,
		Player:         rt.player,
		Announcer:      announcer,
		Notifier:       notify.New(),
		Notify:         rt.cfg.Notifications.Enabled,
		Logger:         rt.logger,
		HapticInterval: a.HapticInterval,
		Impactor:       &haptics.Bell{W: bell},
		AdditionalCap:  rt.cfg.AdditionalTimerCap,
	})
}

// Close stops playback and flushes the log.
func (rt *runtime) Close() {
	if rt.player != nil {
		rt.player.Stop()
	}
	if rt.logClose != nil {
		_ = rt.logClose.Close()
	}
}
