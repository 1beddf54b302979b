package hazard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zeusync/hazards/internal/core/physics"
)

func homingConfig(speed float64) ProjectileConfig {
	cfg := DefaultProjectileConfig()
	hc := HomingConfig{RotationSpeed: speed}
	cfg.Homing = &hc
	return cfg
}

func TestHomingWithoutTargetMatchesPlainProjectile(t *testing.T) {
	h := newHarness(t)
	start := physics.At(physics.Vec3{}, physics.Vec3{1, 0.5, 2})

	plain := h.projectile(DefaultProjectileConfig(), start)
	homing := h.projectile(homingConfig(2.5), physics.Transform{Origin: physics.Vec3{0, 50, 0}, Rotation: start.Rotation})

	h.step()

	assertNear(t, physics.Normalize(plain.Velocity()), physics.Normalize(homing.Velocity()), 1e-9)
}

func TestHomingStaleTargetFallsBackToStraightLine(t *testing.T) {
	h := newHarness(t)
	target := h.world.AddSphere("target", physics.Vec3{10, 0, 0}, 0.5, 8, 8)
	p := h.projectile(homingConfig(2.5), forwardZ(physics.Vec3{}))
	p.SetTarget(target)

	h.world.RemoveBody(target)
	assert.Nil(t, p.Steering().(*Homing).Target())

	h.step()
	assertNear(t, physics.Vec3{0, 0, 7.5}, p.Velocity(), 1e-9)
}

func TestHomingTurnsTowardTarget(t *testing.T) {
	h := newHarness(t)
	target := h.world.AddSphere("target", physics.Vec3{10, 0, 0}, 0.5, 8, 8)
	p := h.projectile(homingConfig(2.5), forwardZ(physics.Vec3{}))
	p.SetTarget(target)

	before := physics.AngleBetween(p.Transform().Forward(), physics.Vec3{1, 0, 0})
	h.step()
	after := physics.AngleBetween(p.Transform().Forward(), target.Origin().Sub(p.Transform().Origin))

	assert.Greater(t, p.Velocity().X(), 0.0)
	assert.Less(t, after, before)
}

func TestHomingWeightIsClamped(t *testing.T) {
	h := newHarness(t)
	target := h.world.AddSphere("target", physics.Vec3{10, 0, 0}, 0.5, 8, 8)
	p := h.projectile(homingConfig(100), forwardZ(physics.Vec3{}))
	p.SetTarget(target)

	h.step()

	assertNear(t, physics.Vec3{7.5, 0, 0}, p.Velocity(), 1e-6)
}
