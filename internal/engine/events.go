package engine

import (
	"time"

	"grilltimer/internal/haptics"
	"grilltimer/internal/speech"
)

// PreheatID identifies the preheat timer in events.
const PreheatID = "preheat"

// AlertContext separates interval alerts from the preheat alert. Each
// context is presented and dismissed on its own.
type AlertContext int

const (
	ContextInterval AlertContext = iota
	ContextPreheat
)

func (c AlertContext) String() string {
	switch c {
	case ContextInterval:
		return "interval"
	case ContextPreheat:
		return "preheat"
	default:
		return "unknown"
	}
}

// EventKind is the type of an Event.
type EventKind int

const (
	// EventExpired fires once when a countdown reaches zero.
	EventExpired EventKind = iota
	// EventPulse fires for every haptic pulse of a presented context.
	EventPulse
	// EventDismissed fires when a presented context is dismissed.
	EventDismissed
	// EventSoundFailed reports a sound that could not be played. Err is set.
	EventSoundFailed
	// EventAnnouncement reports the announcement decision for an expiry.
	EventAnnouncement
)

func (k EventKind) String() string {
	switch k {
	case EventExpired:
		return "expired"
	case EventPulse:
		return "pulse"
	case EventDismissed:
		return "dismissed"
	case EventSoundFailed:
		return "sound-failed"
	case EventAnnouncement:
		return "announcement"
	default:
		return "unknown"
	}
}

// Event is delivered on Engine.Events.
type Event struct {
	Kind      EventKind
	Context   AlertContext
	TimerID   string
	TimerName string
	Intensity haptics.Intensity
	Decision  speech.Decision
	Err       error
	At        time.Time
}
