package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestFakeAfterFuncFiresInOrder(t *testing.T) {
	c := NewFake(epoch)
	var order []string

	c.AfterFunc(2*time.Second, func() { order = append(order, "b") })
	c.AfterFunc(time.Second, func() { order = append(order, "a") })

	c.Advance(500 * time.Millisecond)
	assert.Empty(t, order)

	c.Advance(2 * time.Second)
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, epoch.Add(2500*time.Millisecond), c.Now())
	assert.Zero(t, c.Pending())
}

func TestFakeStopPreventsCallback(t *testing.T) {
	c := NewFake(epoch)
	fired := false
	timer := c.AfterFunc(time.Second, func() { fired = true })

	require.True(t, timer.Stop())
	require.False(t, timer.Stop())

	c.Advance(5 * time.Second)
	assert.False(t, fired)
}

func TestFakeRescheduleInsideCallback(t *testing.T) {
	c := NewFake(epoch)
	count := 0
	var tick func()
	tick = func() {
		count++
		c.AfterFunc(time.Second, tick)
	}
	c.AfterFunc(time.Second, tick)

	c.Advance(3 * time.Second)
	assert.Equal(t, 3, count)
}

func TestFakeTickerDropsWhenFull(t *testing.T) {
	c := NewFake(epoch)
	ticker := c.NewTicker(time.Second)
	defer ticker.Stop()

	c.Advance(3 * time.Second)

	select {
	case got := <-ticker.C():
		assert.Equal(t, epoch.Add(time.Second), got)
	default:
		t.Fatal("expected a buffered tick")
	}

	select {
	case <-ticker.C():
		t.Fatal("ticker should hold at most one pending tick")
	default:
	}
}
