// Package speech announces completed timers by voice. An announcement runs
// only when sound and voice announcements are enabled and, if required,
// headphones are connected.
package speech

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"grilltimer/internal/clock"
	"grilltimer/internal/logging"
)

const (
	DefaultDelay   = time.Second
	DefaultTimeout = 15 * time.Second
)

// ErrUnsupported is returned by synthesizers on platforms without a
// speech engine.
var ErrUnsupported = errors.New("speech synthesis not supported")

// Voice is a platform voice.
type Voice struct {
	ID       string
	Name     string
	Language string
}

// Synthesizer speaks text. Implementations are cheap to construct; a fresh
// one is used for every announcement.
type Synthesizer interface {
	Voices(ctx context.Context) ([]Voice, error)
	Speak(ctx context.Context, text string, voice Voice) error
}

// Preferences are the settings an announcement depends on.
type Preferences interface {
	SoundEnabled() bool
	VoiceEnabled() bool
	HeadphonesOnly() bool
	AnnouncementMessage() string
	VoiceID() string
}

// RouteChecker reports whether audio currently routes to headphones.
type RouteChecker interface {
	HeadphonesConnected() (bool, error)
}

// Decision is the outcome of AnnounceCompletion.
type Decision int

const (
	Scheduled Decision = iota
	SkippedSoundDisabled
	SkippedVoiceDisabled
	SkippedNoHeadphones
)

func (d Decision) String() string {
	switch d {
	case Scheduled:
		return "scheduled"
	case SkippedSoundDisabled:
		return "skipped: sound disabled"
	case SkippedVoiceDisabled:
		return "skipped: voice announcements disabled"
	case SkippedNoHeadphones:
		return "skipped: no headphones"
	default:
		return "unknown"
	}
}

// Message returns the spoken text for timerName. A custom message replaces
// the default; "{name}" in it is replaced by the timer name.
func Message(custom, timerName string) string {
	if custom = strings.TrimSpace(custom); custom != "" {
		return strings.ReplaceAll(custom, "{name}", timerName)
	}
	return timerName + " timer is complete."
}

// Options configures an Announcer.
type Options struct {
	Prefs          Preferences
	Routes         RouteChecker
	NewSynthesizer func() Synthesizer
	Voices         *VoiceCatalog
	Clock          clock.Clock
	Delay          time.Duration
	Timeout        time.Duration
	Logger         *slog.Logger
}

// Announcer schedules completion announcements.
type Announcer struct {
	prefs    Preferences
	routes   RouteChecker
	newSynth func() Synthesizer
	voices   *VoiceCatalog
	clock    clock.Clock
	delay    time.Duration
	timeout  time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	pending map[string]clock.Timer
}

// NewAnnouncer creates an Announcer. Without NewSynthesizer the platform
// synthesizer is used.
func NewAnnouncer(opts Options) *Announcer {
	a := &Announcer{
		prefs:    opts.Prefs,
		routes:   opts.Routes,
		newSynth: opts.NewSynthesizer,
		voices:   opts.Voices,
		clock:    opts.Clock,
		delay:    opts.Delay,
		timeout:  opts.Timeout,
		logger:   logging.OrDiscard(opts.Logger),
		pending:  map[string]clock.Timer{},
	}
	if a.newSynth == nil {
		a.newSynth = New
	}
	if a.voices == nil {
		a.voices = NewVoiceCatalog("en")
	}
	if a.clock == nil {
		a.clock = clock.Real()
	}
	if a.delay <= 0 {
		a.delay = DefaultDelay
	}
	if a.timeout <= 0 {
		a.timeout = DefaultTimeout
	}
	return a
}

// AnnounceCompletion checks the preconditions in order and, when they
// hold, speaks the completion message for timerName after the configured
// delay. A skip is not an error.
func (a *Announcer) AnnounceCompletion(timerID, timerName string) Decision {
	if !a.prefs.SoundEnabled() {
		return SkippedSoundDisabled
	}
	if !a.prefs.VoiceEnabled() {
		return SkippedVoiceDisabled
	}
	if a.prefs.HeadphonesOnly() && !a.headphones() {
		a.logger.Debug("announcement skipped without headphones", "timer", timerID)
		return SkippedNoHeadphones
	}

	text := Message(a.prefs.AnnouncementMessage(), timerName)
	voiceID := a.prefs.VoiceID()

	a.mu.Lock()
	defer a.mu.Unlock()
	if prev, ok := a.pending[timerID]; ok {
		prev.Stop()
	}
	var t clock.Timer
	t = a.clock.AfterFunc(a.delay, func() {
		a.mu.Lock()
		if a.pending[timerID] == t {
			delete(a.pending, timerID)
		}
		a.mu.Unlock()
		a.speak(timerID, text, voiceID)
	})
	a.pending[timerID] = t
	return Scheduled
}

func (a *Announcer) headphones() bool {
	if a.routes == nil {
		return false
	}
	ok, err := a.routes.HeadphonesConnected()
	if err != nil {
		a.logger.Debug("audio route check failed", "error", err)
		return false
	}
	return ok
}

func (a *Announcer) speak(timerID, text, voiceID string) {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	synth := a.newSynth()
	voice := a.voices.Select(ctx, synth, voiceID)
	if err := synth.Speak(ctx, text, voice); err != nil {
		a.logger.Warn("announcement failed", "timer", timerID, "voice", voice.ID, "error", err)
		return
	}
	a.logger.Debug("announced timer", "timer", timerID, "voice", voice.ID)
}

// Close cancels announcements that have not started yet. Speech already in
// progress finishes.
func (a *Announcer) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for id, t := range a.pending {
		t.Stop()
		delete(a.pending, id)
	}
}
