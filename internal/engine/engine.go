// Package engine is the timer orchestrator. It owns every countdown, fans
// the one-second tick out to them and turns expiries into alerts: sound,
// haptic pulses, a voice announcement and an optional desktop
// notification.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"grilltimer/internal/clock"
	"grilltimer/internal/haptics"
	"grilltimer/internal/logging"
	"grilltimer/internal/notify"
	"grilltimer/internal/settings"
	"grilltimer/internal/sound"
	"grilltimer/internal/speech"
	"grilltimer/internal/timer"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("timer not found")
	ErrPermanentSlot = errors.New("permanent timer cannot be removed")
	ErrSlotLimit     = errors.New("additional timer limit reached")
)

// Player plays one alert sound at a time.
type Player interface {
	Play(src sound.Source, loop bool, onDone func(error)) error
	Stop()
}

// Resolver maps a selection to a playable source.
type Resolver interface {
	Resolve(sel sound.Selection, premium bool) sound.Resolution
}

// Announcer speaks completion messages.
type Announcer interface {
	AnnounceCompletion(timerID, timerName string) speech.Decision
}

// Preferences is the settings surface the engine reads and writes.
type Preferences interface {
	SoundEnabled() bool
	SetSoundEnabled(bool) error
	HapticsEnabled() bool
	SetHapticsEnabled(bool) error
	VoiceEnabled() bool
	SetVoiceEnabled(bool) error
	HeadphonesOnly() bool
	SetHeadphonesOnly(bool) error
	Premium() bool
	Selection() sound.Selection
	ClearSelectionOverride(expected sound.Selection) (bool, error)
	PermanentTimers() []settings.TimerDef
	AdditionalTimers() []settings.TimerDef
	SetAdditionalTimers([]settings.TimerDef) error
	SaveTimer(settings.TimerDef) error
	PreheatSeconds() int
	SetPreheatSeconds(int) error
}

// Options configures an Engine. Prefs, Resolver and Player are required.
type Options struct {
	Prefs     Preferences
	Resolver  Resolver
	Player    Player
	Announcer Announcer
	Notifier  notify.Notifier
	Clock     clock.Clock
	Logger    *slog.Logger

	// HapticInterval is the pulse cadence; zero uses haptics.DefaultInterval.
	HapticInterval time.Duration
	// Impactor receives pulses in addition to the event stream.
	Impactor haptics.Impactor
	// AdditionalCap returns the additional timer cap for a tier, -1 for
	// uncapped. Nil means uncapped.
	AdditionalCap func(premium bool) int
	// Notify enables desktop notifications on expiry.
	Notify bool
}

// Engine orchestrates the timers and their alerts. It is safe for
// concurrent use.
type Engine struct {
	mu sync.Mutex

	prefs     Preferences
	resolver  Resolver
	player    Player
	announcer Announcer
	notifier  notify.Notifier
	clock     clock.Clock
	logger    *slog.Logger

	additionalCap func(premium bool) int
	notifyEnabled bool
	newID         func() string

	slots   []*timer.Slot
	preheat *timer.Preheat
	alerts  map[AlertContext]*alertState
	events  chan Event

	// soundMu serializes Play and Stop so a dismiss never stops a sound
	// started for another context in between.
	soundMu    sync.Mutex
	soundGen   uint64
	soundOwner AlertContext
	hasOwner   bool
}

const eventBuffer = 64

// New creates an Engine with the permanent and stored additional slots.
func New(opts Options) *Engine {
	e := &Engine{
		prefs:         opts.Prefs,
		resolver:      opts.Resolver,
		player:        opts.Player,
		announcer:     opts.Announcer,
		notifier:      opts.Notifier,
		clock:         opts.Clock,
		logger:        logging.OrDiscard(opts.Logger),
		additionalCap: opts.AdditionalCap,
		notifyEnabled: opts.Notify,
		newID:         func() string { return "timer-" + uuid.NewString() },
		events:        make(chan Event, eventBuffer),
	}
	if e.clock == nil {
		e.clock = clock.Real()
	}
	if e.notifier == nil {
		e.notifier = notify.Noop()
	}
	if e.additionalCap == nil {
		e.additionalCap = func(bool) int { return -1 }
	}

	for _, def := range e.prefs.PermanentTimers() {
		e.slots = append(e.slots, slotFromDef(def, true))
	}
	for _, def := range e.prefs.AdditionalTimers() {
		e.slots = append(e.slots, slotFromDef(def, false))
	}
	e.preheat = &timer.Preheat{Duration: time.Duration(e.prefs.PreheatSeconds()) * time.Second}

	e.alerts = make(map[AlertContext]*alertState, 2)
	for _, ac := range []AlertContext{ContextInterval, ContextPreheat} {
		ac := ac
		pulse := haptics.ImpactorFunc(func(i haptics.Intensity) {
			e.emit(Event{Kind: EventPulse, Context: ac, Intensity: i})
		})
		e.alerts[ac] = &alertState{
			haptics: haptics.NewScheduler(e.clock, opts.HapticInterval, haptics.Multi(pulse, opts.Impactor)),
		}
	}
	return e
}

// Events delivers alert events. Events are dropped when the buffer is
// full; Snapshot always reflects the current state.
func (e *Engine) Events() <-chan Event {
	return e.events
}

func (e *Engine) emit(ev Event) {
	if ev.At.IsZero() {
		ev.At = e.clock.Now()
	}
	select {
	case e.events <- ev:
	default:
		e.logger.Debug("event dropped", "kind", ev.Kind.String())
	}
}

// Tick advances every running countdown by one second, slots first in
// order and then the preheat timer, and raises alerts for expiries.
func (e *Engine) Tick() {
	type expiry struct {
		ctx  AlertContext
		id   string
		name string
	}
	var expired []expiry

	e.mu.Lock()
	for _, s := range e.slots {
		if s.Tick() {
			expired = append(expired, expiry{ContextInterval, s.ID, s.Name})
		}
	}
	if e.preheat.Tick() {
		expired = append(expired, expiry{ContextPreheat, PreheatID, "Preheat"})
	}
	e.mu.Unlock()

	for _, x := range expired {
		e.handleExpiry(x.ctx, x.id, x.name)
	}
}

// Run ticks once a second until ctx is done.
func (e *Engine) Run(ctx context.Context) error {
	ticker := e.clock.NewTicker(timer.Step)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C():
			e.Tick()
		}
	}
}

// Close stops every alert and cancels pending announcements.
func (e *Engine) Close() {
	e.DismissAll()
	if c, ok := e.announcer.(interface{ Close() }); ok {
		c.Close()
	}
}

func slotFromDef(def settings.TimerDef, permanent bool) *timer.Slot {
	var presets [2]time.Duration
	for i, p := range def.Presets {
		presets[i] = time.Duration(p) * time.Second
	}
	return timer.NewSlot(def.ID, def.Name, presets, permanent)
}

func defFromSlot(s *timer.Slot) settings.TimerDef {
	def := settings.TimerDef{ID: s.ID, Name: s.Name}
	for i, p := range s.Presets {
		def.Presets[i] = int(p / time.Second)
	}
	return def
}
