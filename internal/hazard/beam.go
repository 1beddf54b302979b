package hazard

import (
	"time"

	"github.com/zeusync/hazards/internal/core/events/bus"
	"github.com/zeusync/hazards/internal/core/observability/log"
	"github.com/zeusync/hazards/internal/core/physics"
)

// Beam casts a ray of Length along its forward axis every physics step and
// emits a tick on a free-running period while something is in the way.
type Beam struct {
	lifecycle

	cfg BeamConfig
	xf  physics.Transform

	mount      physics.Body
	exceptions []physics.Body

	length   float64
	interval time.Duration

	collider physics.Body
	point    physics.Vec3
	distance float64
}

func NewBeam(name string, cfg BeamConfig, deps Deps) (*Beam, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	deps = deps.withDefaults()
	cfg = cfg.normalize()

	b := &Beam{
		lifecycle: newLifecycle(KindBeam, name, cfg.FreeOnUse, deps),
		cfg:       cfg,
		xf:        physics.Identity(),
	}

	active := deps.startActive(cfg.StartInactive)
	t := deps.Scheduler.CreateTimer(cfg.TickInterval, true, active)
	t.OnTimeout(b.tick)
	b.bind(b, t, active, b.clearContact)
	b.Reset()

	return b, nil
}

func (b *Beam) Reset() {
	b.length = b.cfg.Length
	b.interval = b.cfg.TickInterval
	b.timer.SetWaitTime(b.interval)
	b.clearContact()
}

func (b *Beam) Body() physics.Body { return nil }

// Transform returns the mount's transform while the beam follows one.
func (b *Beam) Transform() physics.Transform {
	if physics.Valid(b.mount) {
		return b.mount.Transform()
	}
	return b.xf
}

func (b *Beam) Place(xf physics.Transform) { b.xf = xf }

// Follow keeps the beam on the given body. The body is never reported as a
// collider. Nil detaches.
func (b *Beam) Follow(body physics.Body) {
	if body == nil && physics.Valid(b.mount) {
		b.xf = b.mount.Transform()
	}
	b.mount = body
}

// AddException excludes a body from the ray.
func (b *Beam) AddException(body physics.Body) {
	b.exceptions = append(b.exceptions, body)
}

func (b *Beam) ClearExceptions() { b.exceptions = b.exceptions[:0] }

func (b *Beam) Length() float64                    { return b.length }
func (b *Beam) SetLength(v float64)                { b.length = abs(v) }
func (b *Beam) DefaultLength() float64             { return b.cfg.Length }
func (b *Beam) TickInterval() time.Duration        { return b.interval }
func (b *Beam) DefaultTickInterval() time.Duration { return b.cfg.TickInterval }

// SetTickInterval changes the period of the live tick timer.
func (b *Beam) SetTickInterval(d time.Duration) {
	b.interval = absDuration(d)
	b.timer.SetWaitTime(b.interval)
}

// Collider returns the body hit by the latest ray, or nil.
func (b *Beam) Collider() physics.Body {
	if !physics.Valid(b.collider) {
		return nil
	}
	return b.collider
}

// Distance returns the distance to the current contact, or Length when the
// ray is clear.
func (b *Beam) Distance() float64 {
	if b.Collider() == nil {
		return b.length
	}
	return b.distance
}

// Point returns the current contact point, or the ray end when clear.
func (b *Beam) Point() physics.Vec3 {
	if b.Collider() == nil {
		xf := b.Transform()
		return xf.Origin.Add(xf.Forward().Mul(b.length))
	}
	return b.point
}

func (b *Beam) PhysicsStep(dt float64) {
	if !b.Active() {
		return
	}

	xf := b.Transform()
	from := xf.Origin
	to := from.Add(xf.Forward().Mul(b.length))

	hit, ok := b.deps.Space.Raycast(from, to, b.cfg.Mask, b.excluded()...)
	if !ok || !physics.Valid(hit.Collider) {
		b.clearContact()
		return
	}
	b.collider = hit.Collider
	b.point = hit.Point
	b.distance = hit.Point.Sub(from).Len()
}

func (b *Beam) excluded() []physics.Body {
	out := make([]physics.Body, 0, len(b.exceptions)+1)
	if physics.Valid(b.mount) {
		out = append(out, b.mount)
	}
	for _, ex := range b.exceptions {
		if physics.Valid(ex) {
			out = append(out, ex)
		}
	}
	return out
}

func (b *Beam) tick() {
	if !b.Active() {
		return
	}
	collider := b.Collider()
	if collider == nil {
		return
	}
	b.log.Debug("beam tick",
		log.String("collider", collider.Name()),
		log.Float64("distance", b.distance),
	)
	b.emit(bus.TypeTick, bus.TickData{Collider: collider, Distance: b.distance})
}

func (b *Beam) clearContact() {
	b.collider = nil
	b.point = physics.Vec3{}
	b.distance = 0
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
