package hazard

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/hazards/internal/core/physics"
)

// Steering adjusts a projectile's orientation before its velocity is taken
// from the forward axis.
type Steering interface {
	Steer(body physics.Kinematic, dt float64)
}

type resetter interface {
	Reset()
}

// Homing turns the body toward a target body by slerping its rotation. An
// unset or stale target leaves the orientation untouched.
type Homing struct {
	defaultRotationSpeed float64
	rotationSpeed        float64
	target               physics.Body
}

func NewHoming(cfg HomingConfig) *Homing {
	cfg = cfg.normalize()
	return &Homing{
		defaultRotationSpeed: cfg.RotationSpeed,
		rotationSpeed:        cfg.RotationSpeed,
	}
}

// Target returns the current target, or nil once it has gone stale.
func (h *Homing) Target() physics.Body {
	if !physics.Valid(h.target) {
		return nil
	}
	return h.target
}

func (h *Homing) SetTarget(b physics.Body)      { h.target = b }
func (h *Homing) RotationSpeed() float64        { return h.rotationSpeed }
func (h *Homing) SetRotationSpeed(v float64)    { h.rotationSpeed = v }
func (h *Homing) DefaultRotationSpeed() float64 { return h.defaultRotationSpeed }
func (h *Homing) Reset()                        { h.rotationSpeed = h.defaultRotationSpeed }

func (h *Homing) Steer(body physics.Kinematic, dt float64) {
	target := h.Target()
	if target == nil {
		return
	}

	xf := body.Transform()
	dir := target.Transform().Origin.Sub(xf.Origin)
	if dir.Len() == 0 {
		return
	}

	desired := physics.LookRotation(dir, physics.Up)
	weight := mgl64.Clamp(h.rotationSpeed*dt, 0, 1)
	xf.Rotation = physics.Slerp(xf.Orientation(), desired, weight)
	body.SetTransform(xf)
}
