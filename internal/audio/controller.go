package audio

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"grilltimer/internal/clock"
	"grilltimer/internal/logging"
	"grilltimer/internal/sound"

	"github.com/spf13/afero"
)

// ErrInterrupted is passed to a completion callback when playback was
// stopped or replaced before it ended.
var ErrInterrupted = errors.New("playback interrupted")

// DefaultSystemRepeat is how long a system tone counts as playing before
// its synthetic completion.
const DefaultSystemRepeat = 2 * time.Second

// Options configures a Controller.
type Options struct {
	Fs      afero.Fs
	Sink    Sink
	Session Session
	Clock   clock.Clock
	Logger  *slog.Logger

	// SystemRepeat overrides DefaultSystemRepeat.
	SystemRepeat time.Duration
}

// Controller plays at most one sound at a time. A new Play stops the
// previous one first.
type Controller struct {
	mu            sync.Mutex
	fs            afero.Fs
	sink          Sink
	session       Session
	clock         clock.Clock
	systemRepeat  time.Duration
	logger        *slog.Logger
	active        *player
	sessionActive bool
}

type player struct {
	src    sound.Source
	loop   bool
	pb     Playback
	timer  clock.Timer
	onDone func(error)
	done   bool
}

// NewController creates a Controller. Missing options get defaults: the OS
// filesystem, a null sink, a no-op session and the real clock.
func NewController(opts Options) *Controller {
	c := &Controller{
		fs:           opts.Fs,
		sink:         opts.Sink,
		session:      opts.Session,
		clock:        opts.Clock,
		systemRepeat: opts.SystemRepeat,
		logger:       logging.OrDiscard(opts.Logger),
	}
	if c.fs == nil {
		c.fs = afero.NewOsFs()
	}
	if c.clock == nil {
		c.clock = clock.Real()
	}
	if c.sink == nil {
		c.sink = NullSink{Clock: c.clock}
	}
	if c.session == nil {
		c.session = NopSession{}
	}
	if c.systemRepeat <= 0 {
		c.systemRepeat = DefaultSystemRepeat
	}
	return c
}

// Play stops any current playback and plays src. With loop set it repeats
// until Stop. onDone, if not nil, is called exactly once for this call:
// with nil after a natural end, ErrInterrupted when stopped or replaced, or
// the error that ended playback. A returned error has already been passed
// to onDone.
func (c *Controller) Play(src sound.Source, loop bool, onDone func(error)) error {
	var callbacks []func()
	defer func() {
		for _, cb := range callbacks {
			cb()
		}
	}()

	c.mu.Lock()
	defer c.mu.Unlock()

	if prev := c.active; prev != nil {
		callbacks = append(callbacks, c.finishLocked(prev, ErrInterrupted))
	}

	if !c.sessionActive {
		if err := c.session.Activate(); err != nil {
			c.logger.Warn("audio session activation failed; playing anyway", "error", err)
		} else {
			c.sessionActive = true
		}
	}

	p := &player{src: src, loop: loop, onDone: onDone}
	var err error
	if src.Tier == sound.TierSystem {
		err = c.startToneLocked(p)
	} else {
		err = c.startFileLocked(p)
	}
	if err != nil {
		c.logger.Warn("alert sound failed to play", "source", src.String(), "error", err)
		p.done = true
		if onDone != nil {
			callbacks = append(callbacks, func() { onDone(err) })
		}
		return err
	}

	c.active = p
	c.logger.Debug("playing alert sound", "source", src.String(), "loop", loop)
	return nil
}

func (c *Controller) startFileLocked(p *player) error {
	track, closer, err := FileTrack(c.fs, p.src.Path, p.src.Name, p.loop)
	if err != nil {
		return err
	}
	pb, err := c.sink.Start(track)
	if err != nil {
		_ = closer.Close()
		return fmt.Errorf("start %s: %w", p.src.Name, err)
	}
	p.pb = pb

	go func() {
		<-pb.Done()
		c.mu.Lock()
		var cb func()
		if !p.done {
			cb = c.finishLocked(p, pb.Err())
		}
		c.mu.Unlock()
		closeDecoder(closer, p.src, c.logger)
		if cb != nil {
			cb()
		}
	}()
	return nil
}

// startToneLocked plays one pass of a system tone. Tones have no native
// completion; it is synthesized after systemRepeat, and a looping request
// replays the tone at that point.
func (c *Controller) startToneLocked(p *player) error {
	pb, err := c.sink.Start(ToneTrack(p.src.System))
	if err != nil {
		return fmt.Errorf("start %s: %w", p.src.Name, err)
	}
	p.pb = pb
	p.timer = c.clock.AfterFunc(c.systemRepeat, func() { c.toneElapsed(p) })
	return nil
}

func (c *Controller) toneElapsed(p *player) {
	var cb func()
	c.mu.Lock()
	switch {
	case p.done:
	case !p.loop:
		cb = c.finishLocked(p, nil)
	default:
		p.pb.Stop()
		if err := c.startToneLocked(p); err != nil {
			cb = c.finishLocked(p, err)
		}
	}
	c.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// finishLocked tears p down and returns its completion callback, to be run
// once c.mu is released.
func (c *Controller) finishLocked(p *player, err error) func() {
	if p.done {
		return func() {}
	}
	p.done = true
	if p.timer != nil {
		p.timer.Stop()
	}
	if p.pb != nil {
		p.pb.Stop()
	}
	if c.active == p {
		c.active = nil
	}
	onDone := p.onDone
	return func() {
		if onDone != nil {
			onDone(err)
		}
	}
}

// closeDecoder releases a file decoder once its sink has let go of it.
func closeDecoder(closer io.Closer, src sound.Source, logger *slog.Logger) {
	if err := closer.Close(); err != nil {
		logger.Debug("closing sound decoder failed", "source", src.String(), "error", err)
	}
}

// Stop ends playback, if any, and releases the audio session. It is safe to
// call at any time.
func (c *Controller) Stop() {
	c.mu.Lock()
	var cb func()
	if p := c.active; p != nil {
		cb = c.finishLocked(p, ErrInterrupted)
	}
	deactivate := c.sessionActive
	c.sessionActive = false
	c.mu.Unlock()

	if cb != nil {
		cb()
	}
	if deactivate {
		if err := c.session.Deactivate(); err != nil {
			c.logger.Warn("audio session deactivation failed", "error", err)
		}
	}
}

// Active returns the source currently playing.
func (c *Controller) Active() (sound.Source, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return sound.Source{}, false
	}
	return c.active.src, true
}
