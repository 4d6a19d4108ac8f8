package haptics

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"grilltimer/internal/clock"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	mu     sync.Mutex
	pulses []Intensity
}

func (r *recorder) Impact(i Intensity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pulses = append(r.pulses, i)
}

func (r *recorder) got() []Intensity {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Intensity(nil), r.pulses...)
}

func newTestScheduler() (*Scheduler, *clock.Fake, *recorder) {
	fake := clock.NewFake(time.Unix(0, 0))
	rec := &recorder{}
	return NewScheduler(fake, 0, rec), fake, rec
}

func TestScheduler_Parity(t *testing.T) {
	s, fake, rec := newTestScheduler()

	s.Start()
	assert.Equal(t, []Intensity{Strong}, rec.got(), "immediate pulse")

	for i := 0; i < 5; i++ {
		fake.Advance(DefaultInterval)
	}

	assert.Equal(t, []Intensity{Strong, Medium, Strong, Medium, Strong, Medium}, rec.got())
	assert.Equal(t, 5, s.Count())
}

func TestScheduler_Cadence(t *testing.T) {
	s, fake, rec := newTestScheduler()
	s.Start()

	fake.Advance(1499 * time.Millisecond)
	assert.Len(t, rec.got(), 1)
	fake.Advance(time.Millisecond)
	assert.Len(t, rec.got(), 2)
	fake.Advance(3 * time.Second)
	assert.Len(t, rec.got(), 4)
}

func TestScheduler_StartWhileRunningKeepsPhase(t *testing.T) {
	s, fake, rec := newTestScheduler()
	s.Start()
	fake.Advance(time.Second)

	s.Start()
	assert.Len(t, rec.got(), 1, "no extra immediate pulse")

	fake.Advance(500 * time.Millisecond)
	assert.Equal(t, []Intensity{Strong, Medium}, rec.got(), "cadence phase unchanged")
	assert.Equal(t, 1, fake.Pending())
}

func TestScheduler_StopResets(t *testing.T) {
	s, fake, rec := newTestScheduler()
	s.Start()
	fake.Advance(3 * time.Second)
	assert.Equal(t, 2, s.Count())

	s.Stop()
	s.Stop()
	assert.False(t, s.Running())
	assert.Equal(t, 0, s.Count())
	assert.Equal(t, 0, fake.Pending())

	fake.Advance(10 * time.Second)
	assert.Len(t, rec.got(), 3, "no pulses after stop")

	s.Start()
	fake.Advance(DefaultInterval)
	got := rec.got()
	assert.Equal(t, []Intensity{Strong, Medium}, got[3:], "restart begins a fresh cadence")
}

func TestBell(t *testing.T) {
	var buf bytes.Buffer
	b := &Bell{W: &buf}
	Multi(b, nil).Impact(Medium)
	Multi(b, nil).Impact(Strong)
	assert.Equal(t, "\a", buf.String())
}
