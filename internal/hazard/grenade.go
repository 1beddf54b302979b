package hazard

import (
	"fmt"
	"time"

	"github.com/zeusync/hazards/internal/core/events/bus"
	"github.com/zeusync/hazards/internal/core/observability/log"
	"github.com/zeusync/hazards/internal/core/physics"
)

// Grenade detonates once its fuse runs out, reporting every body inside the
// detonation volume. With cover culling, bodies shielded from the grenade
// origin are dropped.
type Grenade struct {
	lifecycle

	cfg    GrenadeConfig
	body   physics.Kinematic
	volume physics.Shape

	radius       float64
	fuse         time.Duration
	coverCulling bool
}

type GrenadeOption func(*Grenade)

// WithVolume replaces the detonation volume built from the config.
func WithVolume(s physics.Shape) GrenadeOption {
	return func(g *Grenade) { g.volume = s }
}

func NewGrenade(name string, body physics.Kinematic, cfg GrenadeConfig, deps Deps, opts ...GrenadeOption) (*Grenade, error) {
	if body == nil {
		return nil, ErrNilBody
	}
	if err := deps.validate(); err != nil {
		return nil, err
	}
	deps = deps.withDefaults()
	cfg = cfg.normalize()

	g := &Grenade{
		lifecycle: newLifecycle(KindGrenade, name, cfg.FreeOnUse, deps),
		cfg:       cfg,
		body:      body,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.volume == nil {
		v, err := NewVolume(cfg.Shape, cfg.Radius, cfg.ShapeHeight)
		if err != nil {
			return nil, err
		}
		g.volume = v
	}

	active := deps.startActive(cfg.StartInactive)
	t := deps.Scheduler.CreateTimer(cfg.Fuse, false, active)
	t.OnTimeout(g.detonate)
	g.bind(g, t, active, nil)
	g.Reset()

	return g, nil
}

// NewVolume builds a detonation volume of the given kind sized by radius.
// Convex hulls have no radius and are rejected.
func NewVolume(kind physics.ShapeKind, radius, height float64) (physics.Shape, error) {
	switch kind {
	case physics.ShapeSphere:
		return &physics.Sphere{Radius: radius}, nil
	case physics.ShapeBox:
		return &physics.Box{Size: physics.Vec3{radius, radius, radius}}, nil
	case physics.ShapeCapsule:
		return &physics.Capsule{Radius: radius, Height: height}, nil
	case physics.ShapeCylinder:
		return &physics.Cylinder{Radius: radius, Height: height}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedShape, kind)
	}
}

func (g *Grenade) Reset() {
	g.fuse = g.cfg.Fuse
	g.timer.SetWaitTime(g.fuse)
	g.coverCulling = g.cfg.CoverCulling
	// SetRadius logs an unsupported volume; the grenade keeps working with
	// the volume as given.
	_ = g.SetRadius(g.cfg.Radius)
}

func (g *Grenade) Body() physics.Body           { return g.body }
func (g *Grenade) Transform() physics.Transform { return g.body.Transform() }
func (g *Grenade) Place(xf physics.Transform)   { g.body.SetTransform(xf) }
func (g *Grenade) Volume() physics.Shape        { return g.volume }
func (g *Grenade) Radius() float64              { return g.radius }
func (g *Grenade) DefaultRadius() float64       { return g.cfg.Radius }
func (g *Grenade) Fuse() time.Duration          { return g.fuse }
func (g *Grenade) DefaultFuse() time.Duration   { return g.cfg.Fuse }
func (g *Grenade) CoverCulling() bool           { return g.coverCulling }
func (g *Grenade) SetCoverCulling(enabled bool) { g.coverCulling = enabled }
func (g *Grenade) PhysicsStep(float64)          {}
func (g *Grenade) TimeLeft() time.Duration      { return g.timer.TimeLeft() }
func (g *Grenade) FuseRunning() bool            { return g.timer.Running() }

// SetFuse changes the fuse and the wait time of the live timer.
func (g *Grenade) SetFuse(d time.Duration) {
	g.fuse = absDuration(d)
	g.timer.SetWaitTime(g.fuse)
}

// SetRadius stores the radius and resizes the volume. An unsupported volume
// is left untouched and the error is logged and returned.
func (g *Grenade) SetRadius(r float64) error {
	g.radius = abs(r)

	switch v := g.volume.(type) {
	case *physics.Sphere:
		v.Radius = g.radius
	case *physics.Box:
		v.Size = physics.Vec3{g.radius, g.radius, g.radius}
	case *physics.Capsule:
		v.Radius = g.radius
	case *physics.Cylinder:
		v.Radius = g.radius
	default:
		err := fmt.Errorf("%w: %s", ErrUnsupportedShape, g.volume.Kind())
		g.log.Error("cannot resize detonation volume", log.Error(err), log.Float64("radius", g.radius))
		return err
	}
	return nil
}

func (g *Grenade) detonate() {
	if !g.Active() {
		return
	}

	xf := g.body.Transform()
	candidates := g.deps.Space.Overlap(g.volume, xf, g.cfg.VolumeMask)
	if g.body.Layer().Matches(g.cfg.VolumeMask) {
		candidates = g.withoutSelf(candidates)
	}

	if len(candidates) == 0 {
		g.log.Debug("grenade fizzled")
		g.finish()
		return
	}

	if g.coverCulling {
		candidates = g.cull(xf.Origin, candidates)
	}

	g.log.Debug("grenade exploded", log.Int("colliders", len(candidates)))
	g.emit(bus.TypeExplode, bus.ExplodeData{Colliders: candidates})
	g.finish()
}

func (g *Grenade) withoutSelf(bodies []physics.Body) []physics.Body {
	self := physics.Body(g.body)
	out := make([]physics.Body, 0, len(bodies))
	for _, b := range bodies {
		if b != self {
			out = append(out, b)
		}
	}
	return out
}

// cull keeps the candidates whose centre is the nearest hit of a ray cast
// from the grenade origin. A ray that reaches nothing drops the candidate.
func (g *Grenade) cull(origin physics.Vec3, candidates []physics.Body) []physics.Body {
	out := make([]physics.Body, 0, len(candidates))
	for _, c := range candidates {
		hit, ok := g.deps.Space.Raycast(origin, c.Transform().Origin, g.cfg.VolumeMask, g.body)
		if ok && hit.Collider == c {
			out = append(out, c)
		}
	}
	return out
}
