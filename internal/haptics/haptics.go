// Package haptics drives the pulse cadence that accompanies a presented
// alert: one strong pulse at once, then alternating medium and strong
// pulses at a fixed interval until stopped.
package haptics

import (
	"io"
	"sync"
	"time"

	"grilltimer/internal/clock"
)

// DefaultInterval is the spacing between recurring pulses.
const DefaultInterval = 1500 * time.Millisecond

// Intensity is the strength of one pulse.
type Intensity int

const (
	Medium Intensity = iota
	Strong
)

func (i Intensity) String() string {
	if i == Strong {
		return "strong"
	}
	return "medium"
}

// Impactor delivers a pulse.
type Impactor interface {
	Impact(Intensity)
}

// ImpactorFunc adapts a function to Impactor.
type ImpactorFunc func(Intensity)

func (f ImpactorFunc) Impact(i Intensity) { f(i) }

// Multi fans a pulse out to several impactors. Nil entries are skipped.
func Multi(impactors ...Impactor) Impactor {
	return ImpactorFunc(func(i Intensity) {
		for _, imp := range impactors {
			if imp != nil {
				imp.Impact(i)
			}
		}
	})
}

// Bell rings the terminal bell on w for strong pulses.
type Bell struct {
	mu sync.Mutex
	W  io.Writer
}

func (b *Bell) Impact(i Intensity) {
	if i != Strong || b.W == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	_, _ = io.WriteString(b.W, "\a")
}

// Scheduler runs one pulse cadence. It is safe for concurrent use.
type Scheduler struct {
	mu       sync.Mutex
	clock    clock.Clock
	interval time.Duration
	impactor Impactor

	running bool
	count   int
	gen     uint64
	timer   clock.Timer
}

// NewScheduler creates a stopped scheduler. A non-positive interval uses
// DefaultInterval.
func NewScheduler(clk clock.Clock, interval time.Duration, impactor Impactor) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if clk == nil {
		clk = clock.Real()
	}
	if impactor == nil {
		impactor = ImpactorFunc(func(Intensity) {})
	}
	return &Scheduler{clock: clk, interval: interval, impactor: impactor}
}

// Start fires a strong pulse and begins the recurring cadence. Starting a
// running scheduler does nothing and keeps its phase.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.count = 0
	s.gen++
	s.scheduleLocked(s.gen)
	s.mu.Unlock()

	s.impactor.Impact(Strong)
}

// Stop cancels the cadence and resets the pulse counter.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	s.count = 0
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Running reports whether the cadence is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Count returns the number of recurring pulses since Start.
func (s *Scheduler) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

func (s *Scheduler) scheduleLocked(gen uint64) {
	s.timer = s.clock.AfterFunc(s.interval, func() { s.pulse(gen) })
}

func (s *Scheduler) pulse(gen uint64) {
	s.mu.Lock()
	if !s.running || gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.count++
	intensity := Medium
	if s.count%2 == 0 {
		intensity = Strong
	}
	s.scheduleLocked(gen)
	s.mu.Unlock()

	s.impactor.Impact(intensity)
}
