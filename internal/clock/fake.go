package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake is a manually advanced Clock. Callbacks registered with AfterFunc run
// synchronously inside Advance, in deadline order, which keeps tests free of
// sleeps.
type Fake struct {
	mu      sync.Mutex
	now     time.Time
	seq     int
	pending []*fakeTimer
}

// NewFake returns a fake clock set to start.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

type fakeTimer struct {
	clock    *Fake
	seq      int
	deadline time.Time
	period   time.Duration // zero for one-shot timers
	fn       func()
	active   bool
}

// Now returns the fake's current time.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// AfterFunc schedules fn to run once the fake has been advanced past d.
func (f *Fake) AfterFunc(d time.Duration, fn func()) Timer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.schedule(d, 0, fn)
}

// NewTicker returns a ticker whose channel receives a value every d of
// advanced time. The channel holds one pending tick; extra ticks are dropped
// like time.Ticker does for slow receivers.
func (f *Fake) NewTicker(d time.Duration) Ticker {
	ch := make(chan time.Time, 1)
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.schedule(d, d, func() {
		select {
		case ch <- f.Now():
		default:
		}
	})
	return &fakeTicker{timer: t, ch: ch}
}

func (f *Fake) schedule(d, period time.Duration, fn func()) *fakeTimer {
	f.seq++
	t := &fakeTimer{
		clock:    f,
		seq:      f.seq,
		deadline: f.now.Add(d),
		period:   period,
		fn:       fn,
		active:   true,
	}
	f.pending = append(f.pending, t)
	return t
}

// Advance moves the clock forward by d, firing every timer whose deadline
// falls inside the window. Timers scheduled by callbacks fire too if their
// deadline is still inside the window.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)
	for {
		next := f.nextDue(target)
		if next == nil {
			break
		}
		f.now = next.deadline
		if next.period > 0 {
			next.deadline = next.deadline.Add(next.period)
		} else {
			next.active = false
			f.remove(next)
		}
		fn := next.fn
		f.mu.Unlock()
		fn()
		f.mu.Lock()
	}
	f.now = target
	f.mu.Unlock()
}

// Pending reports how many timers and tickers are still scheduled.
func (f *Fake) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

func (f *Fake) nextDue(target time.Time) *fakeTimer {
	if len(f.pending) == 0 {
		return nil
	}
	sort.SliceStable(f.pending, func(i, j int) bool {
		if f.pending[i].deadline.Equal(f.pending[j].deadline) {
			return f.pending[i].seq < f.pending[j].seq
		}
		return f.pending[i].deadline.Before(f.pending[j].deadline)
	})
	first := f.pending[0]
	if first.deadline.After(target) {
		return nil
	}
	return first
}

func (f *Fake) remove(t *fakeTimer) {
	for i, p := range f.pending {
		if p == t {
			f.pending = append(f.pending[:i], f.pending[i+1:]...)
			return
		}
	}
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if !t.active {
		return false
	}
	t.active = false
	t.clock.remove(t)
	return true
}

type fakeTicker struct {
	timer *fakeTimer
	ch    chan time.Time
}

func (t *fakeTicker) C() <-chan time.Time {
	return t.ch
}

func (t *fakeTicker) Stop() {
	t.timer.Stop()
}
