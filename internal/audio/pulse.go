package audio

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"grilltimer/internal/logging"

	"github.com/faiface/beep"
	"github.com/jfreymuth/pulse"
)

const appName = "grilltimer"

// headphoneMarkers identify sinks that route to private listening devices.
var headphoneMarkers = []string{"headphone", "headset", "bluez", "earbud", "airpods"}

// PulseOutput plays audio through a PulseAudio (or PipeWire) server. It is
// both the Session and the Sink: activating connects to the server,
// deactivating disconnects once streams have wound down.
type PulseOutput struct {
	mu      sync.Mutex
	client  *pulse.Client
	streams sync.WaitGroup
	logger  *slog.Logger
	// dialRoute opens the connection used for a route check while no
	// session is active.
	dialRoute func() (routeQuerier, error)
}

// routeQuerier is the part of a pulse client the route check needs.
type routeQuerier interface {
	DefaultSink() (*pulse.Sink, error)
	Close()
}

// NewPulseOutput creates an output; no connection is made until needed.
func NewPulseOutput(logger *slog.Logger) *PulseOutput {
	return &PulseOutput{
		logger: logging.OrDiscard(logger),
		dialRoute: func() (routeQuerier, error) {
			c, err := pulse.NewClient(pulse.ClientApplicationName(appName))
			if err != nil {
				return nil, fmt.Errorf("connect pulse server: %w", err)
			}
			return c, nil
		},
	}
}

// Probe reports whether a server is reachable.
func (p *PulseOutput) Probe() error {
	c, err := pulse.NewClient(pulse.ClientApplicationName(appName))
	if err != nil {
		return fmt.Errorf("connect pulse server: %w", err)
	}
	c.Close()
	return nil
}

// Activate implements Session.
func (p *PulseOutput) Activate() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := p.connectLocked()
	return err
}

// Deactivate implements Session. It waits briefly for stopped streams to
// close before dropping the connection.
func (p *PulseOutput) Deactivate() error {
	waited := make(chan struct{})
	go func() {
		p.streams.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-time.After(500 * time.Millisecond):
		p.logger.Debug("pulse streams still closing at deactivate")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client == nil {
		return nil
	}
	p.client.Close()
	p.client = nil
	return nil
}

func (p *PulseOutput) connectLocked() (*pulse.Client, error) {
	if p.client != nil {
		return p.client, nil
	}
	c, err := pulse.NewClient(
		pulse.ClientApplicationName(appName),
		pulse.ClientApplicationIconName("appointment-soon"),
	)
	if err != nil {
		return nil, fmt.Errorf("connect pulse server: %w", err)
	}
	p.client = c
	return c, nil
}

// Start implements Sink.
func (p *PulseOutput) Start(t Track) (Playback, error) {
	p.mu.Lock()
	c, err := p.connectLocked()
	p.mu.Unlock()
	if err != nil {
		return nil, err
	}

	src := t.Streamer
	if t.Format.SampleRate != SampleRate && t.Format.SampleRate > 0 {
		src = beep.Resample(4, t.Format.SampleRate, SampleRate, src)
	}

	pb := newStreamingPlayback()
	ended := make(chan struct{})
	var endOnce sync.Once
	frames := make([][2]float64, 512)

	reader := pulse.Float32Reader(func(out []float32) (int, error) {
		select {
		case <-pb.stop:
			return 0, pulse.EndOfData
		default:
		}
		want := len(out) / 2
		if want > len(frames) {
			want = len(frames)
		}
		n, ok := src.Stream(frames[:want])
		for i := 0; i < n; i++ {
			out[2*i] = float32(frames[i][0])
			out[2*i+1] = float32(frames[i][1])
		}
		if !ok || n == 0 {
			endOnce.Do(func() { close(ended) })
			return 2 * n, pulse.EndOfData
		}
		return 2 * n, nil
	})

	stream, err := c.NewPlayback(reader,
		pulse.PlaybackStereo,
		pulse.PlaybackSampleRate(int(SampleRate)),
		pulse.PlaybackLatency(0.1),
		pulse.PlaybackMediaName(t.Name),
	)
	if err != nil {
		return nil, fmt.Errorf("create pulse playback stream: %w", err)
	}

	p.streams.Add(1)
	stream.Start()
	go func() {
		defer p.streams.Done()
		select {
		case <-ended:
			stream.Drain()
		case <-pb.stop:
			stream.Stop()
		}
		err := stream.Error()
		stream.Close()
		if err != nil {
			p.logger.Warn("pulse playback ended with error", "track", t.Name, "error", err)
		}
		pb.finish(err)
	}()
	return pb, nil
}

// HeadphonesConnected reports whether the default sink looks like
// headphones, a headset or a Bluetooth device. It uses the session's
// connection while one is open and a throwaway connection otherwise, so a
// check never leaves the session connected.
func (p *PulseOutput) HeadphonesConnected() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var q routeQuerier
	if p.client != nil {
		q = p.client
	} else {
		c, err := p.dialRoute()
		if err != nil {
			return false, err
		}
		defer c.Close()
		q = c
	}

	sink, err := q.DefaultSink()
	if err != nil {
		return false, fmt.Errorf("query default sink: %w", err)
	}
	if sink == nil {
		return false, errors.New("no default sink")
	}
	return isHeadphoneRoute(sink.ID(), sink.Name()), nil
}

func isHeadphoneRoute(names ...string) bool {
	for _, name := range names {
		lower := strings.ToLower(name)
		for _, marker := range headphoneMarkers {
			if strings.Contains(lower, marker) {
				return true
			}
		}
	}
	return false
}
