package sim

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/hazards/internal/core/events/bus"
	"github.com/zeusync/hazards/internal/core/physics"
	"github.com/zeusync/hazards/internal/core/physics/world"
	"github.com/zeusync/hazards/internal/hazard"
)

const dt = 0.1

var errUnknown = errors.New("unknown archetype")

func testCatalog() Catalog {
	return CatalogFunc(func(name string, deps hazard.Deps, bodies physics.BodyFactory) (hazard.Hazard, error) {
		body := func(layer physics.Layer) physics.Kinematic {
			return bodies.NewKinematic(physics.KinematicSpec{Name: name, Radius: 0.1, Layer: layer, Mask: 1})
		}
		switch name {
		case "bolt", "dart":
			cfg := hazard.DefaultProjectileConfig()
			cfg.Duration = 300 * time.Millisecond
			cfg.FreeOnUse = name == "dart"
			return hazard.NewProjectile(name, body(2), cfg, deps)
		case "seeker":
			cfg := hazard.DefaultProjectileConfig()
			hc := hazard.DefaultHomingConfig()
			cfg.Homing = &hc
			return hazard.NewProjectile(name, body(2), cfg, deps)
		case "laser":
			return hazard.NewBeam(name, hazard.DefaultBeamConfig(), deps)
		case "flash":
			cfg := hazard.DefaultGrenadeConfig()
			cfg.Fuse = 100 * time.Millisecond
			cfg.VolumeMask = 1 | 2
			cfg.FreeOnUse = true
			return hazard.NewGrenade(name, body(2), cfg, deps)
		case "frag":
			cfg := hazard.DefaultGrenadeConfig()
			cfg.Fuse = 100 * time.Millisecond
			return hazard.NewGrenade(name, body(1), cfg, deps)
		}
		return nil, fmt.Errorf("%w: %s", errUnknown, name)
	})
}

type recorded struct {
	events []bus.Event
}

func newSim(t *testing.T) (*Simulation, *world.World, *recorded) {
	w := world.New(0)
	s := New(w, testCatalog(), nil, nil)
	rec := &recorded{}
	_, err := s.Events().SubscribeAll(func(e bus.Event) error {
		rec.events = append(rec.events, e)
		return nil
	})
	require.NoError(t, err)
	return s, w, rec
}

func (r *recorded) of(t bus.EventType) []bus.Event {
	var out []bus.Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func run(t *testing.T, s *Simulation, steps int) {
	for range steps {
		require.NoError(t, s.Step(dt))
	}
}

func TestFinishedHazardIsReusedAfterReset(t *testing.T) {
	s, _, _ := newSim(t)

	first, err := s.Spawn("bolt", physics.Identity())
	require.NoError(t, err)
	first.(*hazard.Projectile).SetSpeed(1)

	run(t, s, 3)
	require.False(t, first.Active())
	assert.Equal(t, 1, s.Stats().Pooled)

	second, err := s.Spawn("bolt", physics.At(physics.Vec3{0, 5, 0}, physics.Vec3{1, 0, 0}))
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.True(t, second.Active())
	assert.True(t, second.Processing())
	assert.Equal(t, 7.5, second.(*hazard.Projectile).Speed())
	assert.Equal(t, physics.Vec3{0, 5, 0}, second.Transform().Origin)

	st := s.Stats()
	assert.Equal(t, uint64(2), st.Spawned)
	assert.Equal(t, uint64(1), st.Reused)
	assert.Equal(t, 0, st.Pooled)
	assert.Equal(t, 1, st.Live)
}

func TestFreeOnUseHazardIsDestroyed(t *testing.T) {
	s, w, rec := newSim(t)

	h, err := s.Spawn("dart", physics.Identity())
	require.NoError(t, err)
	body := h.Body()
	require.True(t, physics.Valid(body))

	run(t, s, 3)

	assert.True(t, h.Destroyed())
	assert.False(t, physics.Valid(body))
	assert.Empty(t, w.Bodies())
	assert.Empty(t, s.Hazards())
	assert.Len(t, rec.of(bus.TypeDestroyed), 1)
	assert.Equal(t, uint64(1), s.Stats().Destroyed)

	again, err := s.Spawn("dart", physics.Identity())
	require.NoError(t, err)
	assert.NotSame(t, h, again)
}

func TestTimersFireAfterPhysicsPass(t *testing.T) {
	s, _, rec := newSim(t)

	_, err := s.Spawn("flash", physics.Identity())
	require.NoError(t, err)
	bolt, err := s.Spawn("bolt", physics.At(physics.Vec3{3.5, 0, 0}, physics.Vec3{-1, 0, 0}))
	require.NoError(t, err)

	require.NoError(t, s.Step(dt))

	explodes := rec.of(bus.TypeExplode)
	require.Len(t, explodes, 1)
	assert.Equal(t, uint64(1), explodes[0].Step)
	assert.Equal(t, []physics.Body{bolt.Body()}, explodes[0].Data.(bus.ExplodeData).Colliders)
}

func TestEventsAreDeliveredOnceAtEndOfStep(t *testing.T) {
	s, w, rec := newSim(t)
	w.AddBox("wall", physics.Vec3{0, 0, 0.6}, physics.Vec3{5, 5, 0.1}, 1, 1)

	_, err := s.Spawn("bolt", physics.Identity())
	require.NoError(t, err)
	rec.events = nil

	require.NoError(t, s.Step(dt))
	assert.Len(t, rec.of(bus.TypeHit), 1)
	assert.Zero(t, s.Events().Pending())

	run(t, s, 5)
	assert.Len(t, rec.of(bus.TypeHit), 1)
}

func TestSpawnDuringStepJoinsNextStep(t *testing.T) {
	s, _, _ := newSim(t)

	var spawned hazard.Hazard
	trigger := s.Clock().CreateTimer(100*time.Millisecond, false, true)
	trigger.OnTimeout(func() {
		var err error
		spawned, err = s.Spawn("bolt", physics.Identity())
		require.NoError(t, err)
	})

	require.NoError(t, s.Step(dt))
	require.NotNil(t, spawned)
	assert.Len(t, s.Hazards(), 1)
	assert.Equal(t, physics.Vec3{}, spawned.Transform().Origin)

	require.NoError(t, s.Step(dt))
	assert.InDelta(t, 0.75, spawned.Transform().Origin.Z(), 1e-9)
}

func TestSpawnOptions(t *testing.T) {
	s, w, _ := newSim(t)
	target := w.AddSphere("target", physics.Vec3{10, 0, 0}, 0.5, 8, 8)
	shooter := w.AddSphere("shooter", physics.Vec3{0, 0, -1}, 0.5, 1, 1)

	h, err := s.Spawn("seeker", physics.Identity(), WithTarget(target), WithCollisionException(shooter))
	require.NoError(t, err)
	p := h.(*hazard.Projectile)
	assert.Equal(t, physics.Body(target), p.Steering().(*hazard.Homing).Target())
	assert.Equal(t, physics.Body(shooter), p.CollisionException())

	p.Finish()
	require.NoError(t, s.Step(dt))

	again, err := s.Spawn("seeker", physics.Identity())
	require.NoError(t, err)
	require.Same(t, h, again)
	assert.Nil(t, p.CollisionException())
	assert.Nil(t, p.Steering().(*hazard.Homing).Target())
}

func TestBeamMount(t *testing.T) {
	s, w, _ := newSim(t)
	turret := w.AddSphere("turret", physics.Vec3{3, 0, 0}, 0.5, 1, 1)

	h, err := s.Spawn("laser", physics.Identity(), WithMount(turret))
	require.NoError(t, err)

	assert.Equal(t, physics.Vec3{3, 0, 0}, h.Transform().Origin)
}

func TestSpawnUnknownArchetype(t *testing.T) {
	s, _, _ := newSim(t)

	_, err := s.Spawn("nope", physics.Identity())
	assert.ErrorIs(t, err, errUnknown)
	assert.Empty(t, s.Hazards())
}

func TestStepIgnoresNonPositiveDelta(t *testing.T) {
	s, _, _ := newSim(t)
	require.NoError(t, s.Step(0))
	require.NoError(t, s.Step(-1))
	assert.Zero(t, s.Stats().Step)
}

func TestCloseRemovesBodies(t *testing.T) {
	s, w, _ := newSim(t)
	for range 3 {
		_, err := s.Spawn("bolt", physics.Identity())
		require.NoError(t, err)
	}
	require.Len(t, w.Bodies(), 3)

	s.Close()

	assert.Empty(t, w.Bodies())
	assert.Empty(t, s.Hazards())
	assert.Zero(t, s.Clock().Len())
}

func TestRunStepsUntilCancelled(t *testing.T) {
	s, _, _ := newSim(t)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	require.NoError(t, s.Run(ctx, 200))
	assert.Positive(t, s.Stats().Step)
	assert.ErrorIs(t, s.Run(ctx, 0), ErrInvalidTickRate)
}

func TestOnStepReportsStats(t *testing.T) {
	s, _, _ := newSim(t)
	var seen []Stats
	s.OnStep(func(st Stats) { seen = append(seen, st) })

	_, err := s.Spawn("bolt", physics.Identity())
	require.NoError(t, err)
	run(t, s, 2)

	require.Len(t, seen, 2)
	assert.Equal(t, uint64(2), seen[1].Step)
	assert.Equal(t, 200*time.Millisecond, seen[1].Elapsed)
	assert.Equal(t, 1, seen[1].Live)
}

func TestPooledHazardSitsOutOfTheWorld(t *testing.T) {
	s, w, rec := newSim(t)
	blast := &physics.Sphere{Radius: 1}

	frag, err := s.Spawn("frag", physics.Identity())
	require.NoError(t, err)
	require.Len(t, w.Overlap(blast, physics.Identity(), 1), 1)

	run(t, s, 2)
	require.False(t, frag.Active())
	require.Equal(t, 1, s.Stats().Pooled)
	assert.Empty(t, rec.of(bus.TypeExplode))
	assert.True(t, physics.Valid(frag.Body()))

	_, err = s.Spawn("bolt", physics.At(physics.Vec3{0, 0, -1}, physics.Forward))
	require.NoError(t, err)
	run(t, s, 3)

	assert.Empty(t, rec.of(bus.TypeHit))
	assert.Empty(t, w.Overlap(blast, physics.Identity(), 1))

	again, err := s.Spawn("frag", physics.Identity())
	require.NoError(t, err)
	require.Same(t, frag, again)
	got := w.Overlap(blast, physics.Identity(), 1)
	require.Len(t, got, 1)
	assert.Equal(t, frag.Body(), got[0])
}

func TestEverySpawnAnnouncesActivation(t *testing.T) {
	s, _, rec := newSim(t)

	first, err := s.Spawn("bolt", physics.Identity())
	require.NoError(t, err)
	run(t, s, 3)
	require.False(t, first.Active())

	second, err := s.Spawn("bolt", physics.Identity())
	require.NoError(t, err)
	require.Same(t, first, second)
	run(t, s, 1)

	changes := rec.of(bus.TypeActiveChanged)
	require.Len(t, changes, 3)
	assert.Equal(t, bus.ActiveData{Active: true}, changes[0].Data)
	assert.Equal(t, bus.ActiveData{Active: false}, changes[1].Data)
	assert.Equal(t, bus.ActiveData{Active: true}, changes[2].Data)
}

func TestPrewarm(t *testing.T) {
	s, w, _ := newSim(t)

	require.NoError(t, s.Prewarm("bolt", 2))
	st := s.Stats()
	assert.Equal(t, 2, st.Pooled)
	assert.Equal(t, 2, st.Live)
	assert.Len(t, w.Bodies(), 2)
	for _, h := range s.Hazards() {
		assert.False(t, h.Active())
		assert.False(t, h.Body().(physics.Kinematic).Enabled())
	}

	h, err := s.Spawn("bolt", physics.Identity())
	require.NoError(t, err)
	assert.True(t, h.Active())
	assert.True(t, h.Body().(physics.Kinematic).Enabled())
	assert.Equal(t, uint64(1), s.Stats().Reused)
	assert.Equal(t, 2, s.Stats().Live)

	assert.ErrorIs(t, s.Prewarm("bolt", 1), ErrPoolInUse)
	assert.ErrorIs(t, s.Prewarm("nope", 1), errUnknown)
}
