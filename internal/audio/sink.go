// Package audio plays resolved alert sounds. A Controller owns the single
// active player; Sinks turn decoded streams into output.
package audio

import (
	"sync"
	"time"

	"grilltimer/internal/clock"

	"github.com/faiface/beep"
)

// Track is a decoded stream ready for output.
type Track struct {
	Name     string
	Streamer beep.Streamer
	Format   beep.Format
	// Length is the play time of one pass; zero means unbounded (looping).
	Length time.Duration
}

// Sink starts output of a track.
type Sink interface {
	Start(t Track) (Playback, error)
}

// Playback is one running output stream.
type Playback interface {
	// Done is closed once output has ended, naturally or by Stop. After
	// Done the sink no longer reads from the track's streamer.
	Done() <-chan struct{}
	// Err reports why output ended early, if it did.
	Err() error
	// Stop ends output. It does not block and may be called repeatedly.
	Stop()
}

// Session is the process-wide audio session that must be active while
// sounds play.
type Session interface {
	Activate() error
	Deactivate() error
}

// NopSession is a Session that always succeeds.
type NopSession struct{}

func (NopSession) Activate() error   { return nil }
func (NopSession) Deactivate() error { return nil }

// NullSink discards audio. A bounded track completes after its Length on
// the given clock; an unbounded one runs until stopped.
type NullSink struct {
	Clock clock.Clock
}

// Start implements Sink.
func (n NullSink) Start(t Track) (Playback, error) {
	pb := newPlayback()
	if t.Length > 0 {
		clk := n.Clock
		if clk == nil {
			clk = clock.Real()
		}
		timer := clk.AfterFunc(t.Length, func() { pb.finish(nil) })
		pb.onStop = func() { timer.Stop() }
	}
	return pb, nil
}

// playback is the Playback shared by the sinks in this package.
type playback struct {
	once   sync.Once
	mu     sync.Mutex
	done   chan struct{}
	stop   chan struct{}
	stopMu sync.Once
	err    error
	onStop func()
	// streaming playbacks are finished by the goroutine feeding output, not
	// by Stop, so Done waits until the streamer is released.
	streaming bool
}

func newPlayback() *playback {
	return &playback{done: make(chan struct{}), stop: make(chan struct{})}
}

func newStreamingPlayback() *playback {
	pb := newPlayback()
	pb.streaming = true
	return pb
}

func (p *playback) Done() <-chan struct{} { return p.done }

func (p *playback) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *playback) Stop() {
	p.stopMu.Do(func() {
		close(p.stop)
		if p.onStop != nil {
			p.onStop()
		}
		if !p.streaming {
			p.finish(nil)
		}
	})
}

func (p *playback) finish(err error) {
	p.once.Do(func() {
		p.mu.Lock()
		p.err = err
		p.mu.Unlock()
		close(p.done)
	})
}
