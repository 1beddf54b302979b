// Package timer provides deferred one-shot and periodic callbacks on a
// simulation clock. Timeouts are never delivered from inside Advance: they are
// returned as Firings so the caller can run them at a safe point.
package timer

import (
	"slices"
	"time"

	"github.com/zeusync/hazards/pkg/sequence"
)

// Handle is a timer created by a Scheduler.
type Handle interface {
	// Start (re)starts the countdown from WaitTime.
	Start()
	Stop()
	Running() bool
	WaitTime() time.Duration
	// SetWaitTime changes the period; a running countdown keeps its current
	// time left.
	SetWaitTime(d time.Duration)
	TimeLeft() time.Duration
	OnTimeout(fn func())
	// Close detaches the timer from its scheduler. Pending firings are dropped.
	Close()
}

// Scheduler creates timers.
type Scheduler interface {
	CreateTimer(wait time.Duration, periodic, autostart bool) Handle
}

var (
	_ Scheduler = (*Clock)(nil)
	_ Handle    = (*Timer)(nil)
)

// Clock is a Scheduler advanced explicitly by the simulation step.
type Clock struct {
	now     time.Duration
	timers  []*Timer
	nextSeq uint64
}

func NewClock() *Clock {
	return &Clock{}
}

// Now returns the simulated time elapsed since the clock was created.
func (c *Clock) Now() time.Duration { return c.now }

// Len returns the number of attached timers.
func (c *Clock) Len() int { return len(c.timers) }

func (c *Clock) CreateTimer(wait time.Duration, periodic, autostart bool) Handle {
	t := &Timer{
		clock:    c,
		seq:      c.nextSeq,
		wait:     abs(wait),
		periodic: periodic,
	}
	c.nextSeq++
	c.timers = append(c.timers, t)
	if autostart {
		t.Start()
	}
	return t
}

// Advance moves the clock forward by dt and returns the timeouts that became
// due, ordered by due time then creation order. A timer fires at most once per
// Advance; a periodic timer carries the overshoot into its next period.
func (c *Clock) Advance(dt time.Duration) []Firing {
	if dt <= 0 {
		return nil
	}
	c.now += dt

	due := sequence.NewPriorityQueue(func(a, b Firing) bool {
		if a.Due != b.Due {
			return a.Due < b.Due
		}
		return a.timer.seq < b.timer.seq
	})
	for _, t := range c.timers {
		if !t.running {
			continue
		}
		t.left -= dt
		if t.left > 0 {
			continue
		}
		due.Enqueue(Firing{timer: t, gen: t.gen, Due: c.now + t.left})
		if t.periodic && t.wait > 0 {
			t.left += t.wait
			if t.left <= 0 {
				t.left = t.wait
			}
		} else if t.periodic {
			t.left = 0
		} else {
			t.running = false
			t.left = 0
		}
	}
	return due.Drain()
}

func (c *Clock) remove(t *Timer) {
	c.timers = slices.DeleteFunc(c.timers, func(x *Timer) bool { return x == t })
}

// Timer is the Clock implementation of Handle.
type Timer struct {
	clock    *Clock
	seq      uint64
	wait     time.Duration
	left     time.Duration
	periodic bool
	running  bool
	closed   bool
	gen      uint64
	handlers []func()
}

func (t *Timer) Start() {
	if t.closed {
		return
	}
	t.left = t.wait
	t.running = true
	t.gen++
}

func (t *Timer) Stop() {
	t.running = false
	t.gen++
}

func (t *Timer) Running() bool               { return t.running }
func (t *Timer) WaitTime() time.Duration     { return t.wait }
func (t *Timer) SetWaitTime(d time.Duration) { t.wait = abs(d) }
func (t *Timer) TimeLeft() time.Duration     { return t.left }
func (t *Timer) OnTimeout(fn func())         { t.handlers = append(t.handlers, fn) }

func (t *Timer) Close() {
	if t.closed {
		return
	}
	t.closed = true
	t.running = false
	t.gen++
	t.clock.remove(t)
}

// Firing is a timeout that became due during Advance.
type Firing struct {
	timer *Timer
	gen   uint64
	Due   time.Duration
}

// Fire runs the timeout handlers unless the timer was restarted, stopped or
// closed after the timeout became due.
func (f Firing) Fire() {
	if f.Stale() {
		return
	}
	for _, fn := range f.timer.handlers {
		fn()
	}
}

// Stale reports whether Fire would be a no-op.
func (f Firing) Stale() bool {
	return f.timer == nil || f.timer.closed || f.timer.gen != f.gen
}

func abs(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
