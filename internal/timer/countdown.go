// Package timer implements the one-second countdown state machines behind
// each timer slot and the preheat timer.
package timer

import (
	"fmt"
	"time"
)

// State is the lifecycle phase of a Countdown.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateExpired:
		return "expired"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Step is the amount one tick removes from the remaining time.
const Step = time.Second

// Countdown tracks remaining and elapsed time for one timer. It is not safe
// for concurrent use; the owner serializes access.
type Countdown struct {
	remaining time.Duration
	elapsed   time.Duration
	running   bool
	expired   bool
}

// Remaining returns the time left on the countdown.
func (c *Countdown) Remaining() time.Duration { return c.remaining }

// Elapsed returns the time counted since the countdown was last started
// from a preset.
func (c *Countdown) Elapsed() time.Duration { return c.elapsed }

// Running reports whether ticks currently advance the countdown.
func (c *Countdown) Running() bool { return c.running }

// State reports the current lifecycle phase.
func (c *Countdown) State() State {
	switch {
	case c.running:
		return StateRunning
	case c.expired:
		return StateExpired
	default:
		return StateIdle
	}
}

// SelectPreset zeroes elapsed time, loads d as the remaining time and starts
// the countdown. Durations are truncated to whole seconds.
func (c *Countdown) SelectPreset(d time.Duration) {
	d = d.Truncate(Step)
	if d < 0 {
		d = 0
	}
	c.remaining = d
	c.elapsed = 0
	c.expired = false
	c.running = d > 0
}

// Start resumes ticking from the current remaining time without touching
// elapsed time. It returns false when there is nothing left to count.
func (c *Countdown) Start() bool {
	if c.remaining <= 0 {
		return false
	}
	c.expired = false
	c.running = true
	return true
}

// Pause stops ticking and keeps the current values.
func (c *Countdown) Pause() {
	c.running = false
}

// Reset returns the countdown to Idle with zero remaining and elapsed time.
// Calling it repeatedly has no further effect.
func (c *Countdown) Reset() {
	c.remaining = 0
	c.elapsed = 0
	c.running = false
	c.expired = false
}

// Tick advances the countdown by one second. It returns true exactly once
// per run, on the tick that finds the remaining time exhausted.
func (c *Countdown) Tick() bool {
	if !c.running {
		return false
	}
	if c.remaining > 0 {
		c.remaining -= Step
		c.elapsed += Step
		return false
	}
	c.running = false
	c.expired = true
	return true
}
