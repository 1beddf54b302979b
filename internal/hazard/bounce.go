package hazard

import (
	"github.com/zeusync/hazards/internal/core/physics"
)

type BounceResult uint8

const (
	Terminated BounceResult = iota
	Bounced
)

func (r BounceResult) String() string {
	if r == Bounced {
		return "bounced"
	}
	return "terminated"
}

// BouncePolicy decides whether a projectile contact reflects or ends the
// flight. It owns the transient bounce counter.
type BouncePolicy struct {
	cfg   BounceConfig
	count uint32
}

func NewBouncePolicy(cfg BounceConfig) *BouncePolicy {
	return &BouncePolicy{cfg: cfg.normalize()}
}

func (b *BouncePolicy) Config() BounceConfig { return b.cfg }
func (b *BouncePolicy) Count() uint32        { return b.count }
func (b *BouncePolicy) ResetCount()          { b.count = 0 }

// Resolve classifies a contact for a projectile travelling along forward.
// On Bounced the returned vector is the reflected forward direction; on
// Terminated it is forward unchanged and the counter is cleared.
//
// The checks run in a fixed order: layer mask, reflection angle, then the
// counter. The counter check uses count > MaxBounce, so MaxBounce+1 bounces
// are allowed before termination.
func (b *BouncePolicy) Resolve(forward physics.Vec3, contact physics.Contact) (BounceResult, physics.Vec3) {
	if !physics.Valid(contact.Collider) || !contact.Collider.Layer().Matches(b.cfg.Mask) {
		return b.terminate(forward)
	}

	reflected := physics.Normalize(physics.Bounce(forward, contact.Normal))
	if physics.AngleBetween(forward, reflected) > b.cfg.AngleThreshold {
		return b.terminate(forward)
	}

	if b.count > b.cfg.MaxBounce {
		return b.terminate(forward)
	}

	b.count++
	return Bounced, reflected
}

func (b *BouncePolicy) terminate(forward physics.Vec3) (BounceResult, physics.Vec3) {
	b.count = 0
	return Terminated, forward
}
