package hazard

import (
	"time"

	"github.com/zeusync/hazards/internal/core/events/bus"
	"github.com/zeusync/hazards/internal/core/observability/log"
	"github.com/zeusync/hazards/internal/core/physics"
)

// Projectile moves along its forward axis and resolves at most one contact
// per step. Bouncing and homing are optional strategies that can be combined.
type Projectile struct {
	lifecycle

	cfg  ProjectileConfig
	body physics.Kinematic

	speed     float64
	duration  time.Duration
	velocity  physics.Vec3
	exception physics.Body

	bounce   *BouncePolicy
	steering Steering
}

type ProjectileOption func(*Projectile)

// WithSteering replaces the steering strategy built from the config.
func WithSteering(s Steering) ProjectileOption {
	return func(p *Projectile) { p.steering = s }
}

// WithBouncePolicy replaces the bounce policy built from the config.
func WithBouncePolicy(b *BouncePolicy) ProjectileOption {
	return func(p *Projectile) { p.bounce = b }
}

func NewProjectile(name string, body physics.Kinematic, cfg ProjectileConfig, deps Deps, opts ...ProjectileOption) (*Projectile, error) {
	if body == nil {
		return nil, ErrNilBody
	}
	if err := deps.validate(); err != nil {
		return nil, err
	}
	deps = deps.withDefaults()
	cfg = cfg.normalize()

	p := &Projectile{
		lifecycle: newLifecycle(KindProjectile, name, cfg.FreeOnUse, deps),
		cfg:       cfg,
		body:      body,
	}
	if cfg.Bounce != nil {
		p.bounce = NewBouncePolicy(*cfg.Bounce)
	}
	if cfg.Homing != nil {
		p.steering = NewHoming(*cfg.Homing)
	}
	for _, opt := range opts {
		opt(p)
	}

	active := deps.startActive(cfg.StartInactive)
	t := deps.Scheduler.CreateTimer(cfg.Duration, false, active)
	t.OnTimeout(p.timeout)
	p.bind(p, t, active, p.clearTransient)
	p.Reset()

	return p, nil
}

func (p *Projectile) Reset() {
	p.speed = p.cfg.Speed
	p.duration = p.cfg.Duration
	p.velocity = physics.Vec3{}
	p.timer.SetWaitTime(p.duration)
	if p.bounce != nil {
		p.bounce.ResetCount()
	}
	if r, ok := p.steering.(resetter); ok {
		r.Reset()
	}
}

func (p *Projectile) Body() physics.Body             { return p.body }
func (p *Projectile) Transform() physics.Transform   { return p.body.Transform() }
func (p *Projectile) Place(xf physics.Transform)     { p.body.SetTransform(xf) }
func (p *Projectile) Speed() float64                 { return p.speed }
func (p *Projectile) SetSpeed(v float64)             { p.speed = v }
func (p *Projectile) DefaultSpeed() float64          { return p.cfg.Speed }
func (p *Projectile) Duration() time.Duration        { return p.duration }
func (p *Projectile) DefaultDuration() time.Duration { return p.cfg.Duration }
func (p *Projectile) Velocity() physics.Vec3         { return p.velocity }
func (p *Projectile) Bounce() *BouncePolicy          { return p.bounce }
func (p *Projectile) Steering() Steering             { return p.steering }

// SetDuration changes the lifetime and the wait time of the live timer.
func (p *Projectile) SetDuration(d time.Duration) {
	p.duration = absDuration(d)
	p.timer.SetWaitTime(p.duration)
}

// CollisionException returns the excluded body, or nil once it has gone stale.
func (p *Projectile) CollisionException() physics.Body {
	if !physics.Valid(p.exception) {
		return nil
	}
	return p.exception
}

// SetCollisionException replaces any previous exception. Nil clears it.
func (p *Projectile) SetCollisionException(b physics.Body) {
	p.exception = b
}

// SetTarget forwards to a homing strategy. It reports false when the
// projectile does not home.
func (p *Projectile) SetTarget(b physics.Body) bool {
	h, ok := p.steering.(*Homing)
	if !ok {
		return false
	}
	h.SetTarget(b)
	return true
}

func (p *Projectile) PhysicsStep(dt float64) {
	if !p.Active() || dt <= 0 {
		return
	}

	p.computeVelocity(dt)
	contact, ok := p.Integrate(dt)
	if !ok {
		return
	}
	p.resolve(contact)
}

func (p *Projectile) computeVelocity(dt float64) {
	if p.steering != nil {
		p.steering.Steer(p.body, dt)
	}
	p.velocity = p.body.Transform().Forward().Mul(p.speed)
}

// Integrate sweeps the body by velocity*dt with a single query. Without a
// contact the full displacement is applied; a contact is returned unresolved.
func (p *Projectile) Integrate(dt float64) (physics.Contact, bool) {
	var exclude []physics.Body
	if ex := p.CollisionException(); ex != nil {
		exclude = append(exclude, ex)
	}
	return p.deps.Space.MoveAndCollide(p.body, p.velocity.Mul(dt), exclude...)
}

func (p *Projectile) resolve(contact physics.Contact) {
	if p.bounce != nil {
		xf := p.body.Transform()
		result, dir := p.bounce.Resolve(xf.Forward(), contact)
		if result == Bounced {
			xf.Rotation = physics.LookRotation(dir, xf.Up())
			p.body.SetTransform(xf)

			p.log.Debug("projectile bounced",
				log.String("collider", colliderName(contact.Collider)),
				log.Uint32("count", p.bounce.Count()),
			)
			p.emit(bus.TypeBounce, bus.BounceData{Collider: contact.Collider, Count: p.bounce.Count()})
			return
		}
	}
	p.hit(contact.Collider)
}

func (p *Projectile) hit(collider physics.Body) {
	p.log.Debug("projectile hit", log.String("collider", colliderName(collider)))
	p.emit(bus.TypeHit, bus.HitData{Collider: collider})
	p.finish()
}

func (p *Projectile) timeout() {
	if !p.Active() {
		return
	}
	p.finish()
}

func (p *Projectile) clearTransient() {
	if p.bounce != nil {
		p.bounce.ResetCount()
	}
}

func colliderName(b physics.Body) string {
	if !physics.Valid(b) {
		return ""
	}
	return b.Name()
}
