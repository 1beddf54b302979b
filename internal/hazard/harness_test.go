package hazard

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/hazards/internal/core/events/bus"
	"github.com/zeusync/hazards/internal/core/observability/log"
	"github.com/zeusync/hazards/internal/core/physics"
	"github.com/zeusync/hazards/internal/core/physics/world"
	"github.com/zeusync/hazards/internal/core/timer"
)

const dt = 0.1

// recorder is a Committer that holds every change until drain.
type recorder struct {
	deferred  []func()
	destroyed []Hazard
	released  []Hazard
}

func (r *recorder) Defer(fn func())  { r.deferred = append(r.deferred, fn) }
func (r *recorder) Destroy(h Hazard) { r.destroyed = append(r.destroyed, h) }
func (r *recorder) Release(h Hazard) { r.released = append(r.released, h) }

func (r *recorder) drain() {
	fns := r.deferred
	r.deferred = nil
	for _, fn := range fns {
		fn()
	}
	for _, h := range r.destroyed {
		h.Dispose()
	}
}

type harness struct {
	t       *testing.T
	world   *world.World
	clock   *timer.Clock
	queue   *bus.Queue
	commit  *recorder
	logger  log.Log
	hazards []Hazard
	events  []bus.Event
}

func newHarness(t *testing.T) *harness {
	h := &harness{
		t:      t,
		world:  world.New(0),
		clock:  timer.NewClock(),
		queue:  bus.New(),
		commit: &recorder{},
		logger: log.NewNop(),
	}
	_, err := h.queue.SubscribeAll(func(e bus.Event) error {
		h.events = append(h.events, e)
		return nil
	})
	require.NoError(t, err)
	return h
}

func (h *harness) deps() Deps {
	return Deps{
		Space:     h.world,
		Scheduler: h.clock,
		Events:    h.queue,
		Commit:    h.commit,
		Logger:    h.logger,
	}
}

func (h *harness) kinematic(name string, xf physics.Transform) physics.Kinematic {
	return h.world.NewKinematic(physics.KinematicSpec{
		Name:      name,
		Transform: xf,
		Radius:    0.1,
		Layer:     2,
		Mask:      1,
	})
}

func (h *harness) projectile(cfg ProjectileConfig, xf physics.Transform, opts ...ProjectileOption) *Projectile {
	p, err := NewProjectile("bolt", h.kinematic("bolt", xf), cfg, h.deps(), opts...)
	require.NoError(h.t, err)
	h.hazards = append(h.hazards, p)
	return p
}

func (h *harness) beam(cfg BeamConfig, xf physics.Transform) *Beam {
	b, err := NewBeam("ray", cfg, h.deps())
	require.NoError(h.t, err)
	b.Place(xf)
	h.hazards = append(h.hazards, b)
	return b
}

func (h *harness) grenade(cfg GrenadeConfig, origin physics.Vec3, opts ...GrenadeOption) *Grenade {
	body := h.world.NewKinematic(physics.KinematicSpec{
		Name:      "grenade",
		Transform: physics.Transform{Origin: origin},
		Radius:    0.1,
		Layer:     1,
		Mask:      1,
	})
	g, err := NewGrenade("grenade", body, cfg, h.deps(), opts...)
	require.NoError(h.t, err)
	h.hazards = append(h.hazards, g)
	return g
}

func (h *harness) step() {
	for _, hz := range h.hazards {
		if hz.Processing() {
			hz.PhysicsStep(dt)
		}
	}
	for _, f := range h.clock.Advance(seconds(dt)) {
		f.Fire()
	}
	h.commit.drain()
	require.NoError(h.t, h.queue.Flush())
}

func (h *harness) run(d float64) {
	n := int(math.Round(d / dt))
	for range n {
		h.step()
	}
}

func (h *harness) eventsOf(t bus.EventType) []bus.Event {
	var out []bus.Event
	for _, e := range h.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

func forwardZ(origin physics.Vec3) physics.Transform {
	return physics.Transform{Origin: origin, Rotation: physics.Identity().Rotation}
}

func assertNear(t *testing.T, want, got physics.Vec3, delta float64) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], delta, "component %d of %v", i, got)
	}
}
