// Package hazard implements short-lived hazard entities: projectiles (with
// optional bounce and homing strategies), beams and grenades. Every hazard
// shares one lifecycle: it is Active or Inactive, a governing timer drives it,
// and when it finishes it is either destroyed or kept inactive for reuse.
//
// Hazards never mutate the world from inside a timer callback or a physics
// step directly: structural changes go through the Committer supplied in Deps
// and notifications go to the bus.Publisher, both drained by the owner at the
// end of the step.
package hazard

import (
	"github.com/google/uuid"

	"github.com/zeusync/hazards/internal/core/events/bus"
	"github.com/zeusync/hazards/internal/core/observability/log"
	"github.com/zeusync/hazards/internal/core/physics"
	"github.com/zeusync/hazards/internal/core/timer"
)

type Kind string

const (
	KindProjectile Kind = "projectile"
	KindBeam       Kind = "beam"
	KindGrenade    Kind = "grenade"
)

// Hazard is the surface shared by every archetype.
type Hazard interface {
	ID() uuid.UUID
	Name() string
	Kind() Kind

	Active() bool
	// SetActive drives the lifecycle: activating restarts the governing
	// timer and clears transient state.
	SetActive(active bool)
	// Processing reports whether the owner should call PhysicsStep. It
	// follows Active with a one-step delay applied by the Committer.
	Processing() bool
	Visible() bool
	FreeOnUse() bool

	// Reset restores every configured default into its current value.
	Reset()
	Place(xf physics.Transform)
	Transform() physics.Transform
	// Body returns the hazard's own collider, or nil for beams.
	Body() physics.Body

	PhysicsStep(dt float64)
	// Finish completes the hazard as if its governing timer expired.
	Finish()

	Destroyed() bool
	// Dispose releases the hazard's timer. Called by the owner once a
	// requested destruction is committed.
	Dispose()
}

// Committer defers structural changes to the end of the current step.
type Committer interface {
	Defer(fn func())
	// Destroy removes a freeOnUse hazard permanently.
	Destroy(h Hazard)
	// Release returns a finished hazard to its pool for reuse.
	Release(h Hazard)
}

// Deps are supplied explicitly at construction.
type Deps struct {
	Space     physics.Space
	Scheduler timer.Scheduler
	Events    bus.Publisher
	Commit    Committer
	Logger    log.Log

	// StartInactive builds the hazard inactive whatever its config says.
	// Pools set it so every spawn, fresh or reused, activates explicitly.
	StartInactive bool
}

func (d Deps) startActive(cfgInactive bool) bool {
	return !cfgInactive && !d.StartInactive
}

func (d Deps) withDefaults() Deps {
	if d.Events == nil {
		d.Events = discard{}
	}
	if d.Commit == nil {
		d.Commit = immediate{}
	}
	if d.Logger == nil {
		d.Logger = log.Provide()
	}
	return d
}

func (d Deps) validate() error {
	if d.Space == nil {
		return ErrNoSpace
	}
	if d.Scheduler == nil {
		return ErrNoScheduler
	}
	return nil
}

type discard struct{}

func (discard) Publish(bus.Event) {}

// immediate applies changes on the spot; used when no owner drives the step.
type immediate struct{}

func (immediate) Defer(fn func())  { fn() }
func (immediate) Destroy(h Hazard) { h.Dispose() }
func (immediate) Release(Hazard)   {}
