package sim

import (
	"github.com/zeusync/hazards/internal/core/physics"
	"github.com/zeusync/hazards/internal/hazard"
)

// SpawnOption binds per-spawn references that Reset does not cover.
type SpawnOption func(h hazard.Hazard)

// WithTarget sets the homing target of a projectile.
func WithTarget(target physics.Body) SpawnOption {
	return func(h hazard.Hazard) {
		if p, ok := h.(*hazard.Projectile); ok {
			p.SetTarget(target)
		}
	}
}

// WithCollisionException excludes a body, usually the shooter, from a
// projectile's sweeps or a beam's ray.
func WithCollisionException(body physics.Body) SpawnOption {
	return func(h hazard.Hazard) {
		switch v := h.(type) {
		case *hazard.Projectile:
			v.SetCollisionException(body)
		case *hazard.Beam:
			v.AddException(body)
		}
	}
}

// WithMount keeps a beam on a body.
func WithMount(body physics.Body) SpawnOption {
	return func(h hazard.Hazard) {
		if b, ok := h.(*hazard.Beam); ok {
			b.Follow(body)
		}
	}
}

// unbind drops the references left over from a previous use.
func unbind(h hazard.Hazard) {
	switch v := h.(type) {
	case *hazard.Projectile:
		v.SetCollisionException(nil)
		v.SetTarget(nil)
	case *hazard.Beam:
		v.Follow(nil)
		v.ClearExceptions()
	}
}
