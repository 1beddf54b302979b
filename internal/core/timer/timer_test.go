package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const step = 100 * time.Millisecond

func fireAll(fs []Firing) {
	for _, f := range fs {
		f.Fire()
	}
}

func TestOneShotFiresOnceAtDeadline(t *testing.T) {
	c := NewClock()
	h := c.CreateTimer(time.Second, false, true)
	fired := 0
	h.OnTimeout(func() { fired++ })

	for i := 0; i < 9; i++ {
		fireAll(c.Advance(step))
	}
	assert.Zero(t, fired)

	fs := c.Advance(step)
	require.Len(t, fs, 1)
	assert.Equal(t, time.Second, fs[0].Due)
	fireAll(fs)
	assert.Equal(t, 1, fired)
	assert.False(t, h.Running())

	fireAll(c.Advance(10 * step))
	assert.Equal(t, 1, fired)
}

func TestPeriodicFiresAtMostOncePerAdvance(t *testing.T) {
	c := NewClock()
	h := c.CreateTimer(250*time.Millisecond, true, true)
	fired := 0
	h.OnTimeout(func() { fired++ })

	fireAll(c.Advance(time.Second))
	assert.Equal(t, 1, fired)

	for i := 0; i < 10; i++ {
		fireAll(c.Advance(step))
	}
	assert.True(t, h.Running())
	assert.GreaterOrEqual(t, fired, 4)
}

func TestPeriodicKeepsItsOwnCadence(t *testing.T) {
	c := NewClock()
	h := c.CreateTimer(500*time.Millisecond, true, true)
	var due []time.Duration
	for i := 0; i < 20; i++ {
		for _, f := range c.Advance(step) {
			due = append(due, f.Due)
		}
	}
	assert.Equal(t, []time.Duration{
		500 * time.Millisecond,
		time.Second,
		1500 * time.Millisecond,
		2 * time.Second,
	}, due)
	assert.Equal(t, 500*time.Millisecond, h.WaitTime())
}

func TestRestartDropsStaleFiring(t *testing.T) {
	c := NewClock()
	h := c.CreateTimer(step, false, true)
	fired := 0
	h.OnTimeout(func() { fired++ })

	fs := c.Advance(step)
	require.Len(t, fs, 1)
	h.Start()
	assert.True(t, fs[0].Stale())
	fireAll(fs)
	assert.Zero(t, fired)

	fireAll(c.Advance(step))
	assert.Equal(t, 1, fired)
}

func TestStopAndClose(t *testing.T) {
	c := NewClock()
	a := c.CreateTimer(step, true, true)
	b := c.CreateTimer(step, true, false)
	fired := 0
	a.OnTimeout(func() { fired++ })
	b.OnTimeout(func() { fired++ })

	a.Stop()
	fireAll(c.Advance(step))
	assert.Zero(t, fired)

	b.Start()
	fs := c.Advance(step)
	b.Close()
	fireAll(fs)
	assert.Zero(t, fired)
	assert.Equal(t, 1, c.Len())

	b.Start()
	assert.False(t, b.Running())
}

func TestFiringsOrderedByDueTime(t *testing.T) {
	c := NewClock()
	var order []string
	late := c.CreateTimer(90*time.Millisecond, false, true)
	early := c.CreateTimer(30*time.Millisecond, false, true)
	late.OnTimeout(func() { order = append(order, "late") })
	early.OnTimeout(func() { order = append(order, "early") })

	fireAll(c.Advance(step))
	assert.Equal(t, []string{"early", "late"}, order)
}

func TestWaitTimeIsSignNormalised(t *testing.T) {
	c := NewClock()
	h := c.CreateTimer(-time.Second, false, false)
	assert.Equal(t, time.Second, h.WaitTime())
	h.SetWaitTime(-2 * time.Second)
	assert.Equal(t, 2*time.Second, h.WaitTime())
}
