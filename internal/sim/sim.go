// Package sim drives hazards with a fixed step. Each Step runs the physics
// pass, advances the clock, commits deferred changes at one safe point and
// then flushes the event queue.
package sim

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/zeusync/hazards/internal/core/events/bus"
	"github.com/zeusync/hazards/internal/core/observability/log"
	"github.com/zeusync/hazards/internal/core/physics"
	"github.com/zeusync/hazards/internal/core/timer"
	"github.com/zeusync/hazards/internal/hazard"
	"github.com/zeusync/hazards/pkg/generic"
)

var (
	ErrInvalidTickRate = errors.New("tick rate must be positive")
	ErrPoolInUse       = errors.New("archetype pool already in use")
)

// World is the physics service plus body management.
type World interface {
	physics.Space
	physics.BodyFactory
}

// Catalog builds hazards by archetype name.
type Catalog interface {
	Build(archetype string, deps hazard.Deps, bodies physics.BodyFactory) (hazard.Hazard, error)
}

type CatalogFunc func(archetype string, deps hazard.Deps, bodies physics.BodyFactory) (hazard.Hazard, error)

func (f CatalogFunc) Build(archetype string, deps hazard.Deps, bodies physics.BodyFactory) (hazard.Hazard, error) {
	return f(archetype, deps, bodies)
}

// Stats is a snapshot of simulation counters.
type Stats struct {
	Step      uint64
	Elapsed   time.Duration
	Live      int
	Pooled    int
	Spawned   uint64
	Reused    uint64
	Destroyed uint64
}

type Simulation struct {
	world   World
	clock   *timer.Clock
	events  *bus.Queue
	catalog Catalog
	log     log.Log

	step    uint64
	elapsed time.Duration
	inStep  bool

	live      []hazard.Hazard
	spawned   []hazard.Hazard
	archetype map[hazard.Hazard]string
	pools     map[string]*generic.Pool[hazard.Hazard]

	deferred  []func()
	destroyed []hazard.Hazard
	released  []hazard.Hazard

	stats  Stats
	onStep []func(Stats)
}

func New(world World, catalog Catalog, events *bus.Queue, logger log.Log) *Simulation {
	if events == nil {
		events = bus.New()
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Simulation{
		world:     world,
		clock:     timer.NewClock(),
		events:    events,
		catalog:   catalog,
		log:       logger,
		archetype: make(map[hazard.Hazard]string),
		pools:     make(map[string]*generic.Pool[hazard.Hazard]),
	}
}

func (s *Simulation) World() World        { return s.world }
func (s *Simulation) Clock() *timer.Clock { return s.clock }
func (s *Simulation) Events() *bus.Queue  { return s.events }

// Deps returns the dependencies handed to every hazard built by this
// simulation. Hazards are built inactive and activated by Spawn.
func (s *Simulation) Deps() hazard.Deps {
	return hazard.Deps{
		Space:         s.world,
		Scheduler:     s.clock,
		Events:        s.events,
		Commit:        s,
		Logger:        s.log,
		StartInactive: true,
	}
}

// Hazards returns the live hazards in spawn order. Pooled hazards are live
// but inactive.
func (s *Simulation) Hazards() []hazard.Hazard {
	return slices.Clone(s.live)
}

func (s *Simulation) Stats() Stats {
	st := s.stats
	st.Step = s.step
	st.Elapsed = s.elapsed
	st.Live = len(s.live)
	for _, p := range s.pools {
		st.Pooled += p.Len()
	}
	return st
}

// Spawn activates a hazard of the given archetype at xf, reusing a pooled one
// when available. A spawn requested during a step joins the physics pass on
// the next step.
func (s *Simulation) Spawn(archetype string, xf physics.Transform, opts ...SpawnOption) (hazard.Hazard, error) {
	h, reused, err := s.acquire(archetype)
	if err != nil {
		return nil, err
	}

	if reused {
		h.Reset()
		unbind(h)
		s.stats.Reused++
	}
	s.stats.Spawned++

	h.Place(xf)
	for _, opt := range opts {
		opt(h)
	}
	h.SetActive(true)

	s.log.Debug("hazard spawned",
		log.String("archetype", archetype),
		log.Stringer("id", h.ID()),
		log.Bool("reused", reused),
	)
	return h, nil
}

func (s *Simulation) acquire(archetype string) (hazard.Hazard, bool, error) {
	pool := s.pool(archetype)
	for pool.Len() > 0 {
		h, _, _ := pool.Get()
		// Skip entries reactivated by hand while pooled.
		if !h.Active() && !h.Destroyed() {
			return h, true, nil
		}
	}
	h, _, err := pool.Get()
	return h, false, err
}

func (s *Simulation) pool(archetype string) *generic.Pool[hazard.Hazard] {
	p, ok := s.pools[archetype]
	if !ok {
		p = generic.NewPool(s.builder(archetype))
		s.pools[archetype] = p
	}
	return p
}

// builder returns the pool generator for archetype. Built hazards are tracked
// as live right away, inactive until spawned.
func (s *Simulation) builder(archetype string) func() (hazard.Hazard, error) {
	return func() (hazard.Hazard, error) {
		h, err := s.catalog.Build(archetype, s.Deps(), s.world)
		if err != nil {
			return nil, err
		}
		s.archetype[h] = archetype
		if s.inStep {
			s.spawned = append(s.spawned, h)
		} else {
			s.live = append(s.live, h)
		}
		return h, nil
	}
}

// Prewarm builds n inactive hazards of archetype so the first n spawns reuse
// them. It must run before the archetype's first spawn.
func (s *Simulation) Prewarm(archetype string, n int) error {
	if _, ok := s.pools[archetype]; ok {
		return fmt.Errorf("%w: %s", ErrPoolInUse, archetype)
	}
	p, err := generic.NewHotPool(s.builder(archetype), n)
	if err != nil {
		return err
	}
	s.pools[archetype] = p
	s.log.Debug("pool prewarmed", log.String("archetype", archetype), log.Int("size", n))
	return nil
}

// Step advances the simulation by dt seconds.
func (s *Simulation) Step(dt float64) error {
	if dt <= 0 {
		return nil
	}

	s.step++
	s.events.SetStep(s.step)

	s.inStep = true
	for _, h := range s.live {
		if h.Processing() {
			h.PhysicsStep(dt)
		}
	}

	d := seconds(dt)
	for _, f := range s.clock.Advance(d) {
		f.Fire()
	}
	s.commit()
	s.inStep = false
	s.elapsed += d

	err := s.events.Flush()
	if len(s.onStep) > 0 {
		st := s.Stats()
		for _, fn := range s.onStep {
			fn(st)
		}
	}
	return err
}

// OnStep registers fn to receive a stats snapshot after every step.
func (s *Simulation) OnStep(fn func(Stats)) {
	s.onStep = append(s.onStep, fn)
}

// Run steps the simulation at tickRate steps per second until ctx is done.
// Delivery errors are logged and do not stop the loop.
func (s *Simulation) Run(ctx context.Context, tickRate int) error {
	if tickRate <= 0 {
		return ErrInvalidTickRate
	}
	interval := time.Second / time.Duration(tickRate)
	dt := interval.Seconds()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.log.Info("simulation loop started", log.Int("tick_rate", tickRate))
	for {
		select {
		case <-ctx.Done():
			s.log.Info("simulation loop stopped", log.Uint64("steps", s.step))
			return nil
		case <-ticker.C:
			if err := s.Step(dt); err != nil {
				s.log.Warn("event delivery failed", log.Error(err), log.Uint64("step", s.step))
			}
		}
	}
}

// Close disposes every hazard and removes their bodies.
func (s *Simulation) Close() {
	for _, h := range s.live {
		s.dispose(h)
	}
	s.live = nil
	s.spawned = nil
	clear(s.archetype)
	clear(s.pools)
}

// Defer runs fn at the end of the current step, or immediately outside one.
func (s *Simulation) Defer(fn func()) {
	if !s.inStep {
		fn()
		return
	}
	s.deferred = append(s.deferred, fn)
}

func (s *Simulation) Destroy(h hazard.Hazard) {
	s.destroyed = append(s.destroyed, h)
	if !s.inStep {
		s.commit()
	}
}

func (s *Simulation) Release(h hazard.Hazard) {
	s.released = append(s.released, h)
	if !s.inStep {
		s.commit()
	}
}

// commit applies queued changes until none are left; a deferred function may
// queue more.
func (s *Simulation) commit() {
	for len(s.deferred) > 0 || len(s.destroyed) > 0 || len(s.released) > 0 {
		fns := s.deferred
		s.deferred = nil
		for _, fn := range fns {
			fn()
		}

		destroyed := s.destroyed
		s.destroyed = nil
		for _, h := range destroyed {
			s.live = slices.DeleteFunc(s.live, func(x hazard.Hazard) bool { return x == h })
			s.spawned = slices.DeleteFunc(s.spawned, func(x hazard.Hazard) bool { return x == h })
			s.dispose(h)
			s.stats.Destroyed++
		}

		released := s.released
		s.released = nil
		for _, h := range released {
			if name, ok := s.archetype[h]; ok && !h.Destroyed() {
				s.pool(name).Put(h)
			}
		}
	}

	s.live = append(s.live, s.spawned...)
	s.spawned = nil
}

func (s *Simulation) dispose(h hazard.Hazard) {
	if h.Destroyed() {
		return
	}
	delete(s.archetype, h)
	h.Dispose()
	if body := h.Body(); body != nil {
		s.world.RemoveBody(body)
	}
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
