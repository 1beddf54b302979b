package world

import (
	"github.com/zeusync/hazards/internal/core/physics"
)

type colliderKind uint8

const (
	sphereCollider colliderKind = iota
	boxCollider
)

var _ physics.Kinematic = (*Body)(nil)

// Body is a rigid collider in the reference world. Spheres use radius; boxes
// are axis-aligned and use half extents.
type Body struct {
	name  string
	layer physics.Layer
	mask  physics.Layer
	xf    physics.Transform

	kind   colliderKind
	radius float64
	half   physics.Vec3

	world    *World
	seq      uint64
	alive    bool
	disabled bool
	large    bool
	cells    []uint64
}

func (b *Body) Name() string                 { return b.name }
func (b *Body) Layer() physics.Layer         { return b.layer }
func (b *Body) Mask() physics.Layer          { return b.mask }
func (b *Body) Transform() physics.Transform { return b.xf }
func (b *Body) Valid() bool                  { return b != nil && b.alive }
func (b *Body) Origin() physics.Vec3         { return b.xf.Origin }
func (b *Body) Enabled() bool                { return !b.disabled }

// SetEnabled takes the body out of the spatial index or puts it back. A
// disabled body keeps its transform and stays valid.
func (b *Body) SetEnabled(enabled bool) {
	if b.disabled == !enabled {
		return
	}
	b.disabled = !enabled
	if !b.alive || b.world == nil {
		return
	}
	if enabled {
		b.world.index(b)
	} else {
		b.world.unindex(b)
	}
}

// SetTransform moves the body and reindexes it.
func (b *Body) SetTransform(xf physics.Transform) {
	b.xf = xf
	if b.alive && !b.disabled && b.world != nil {
		b.world.reindex(b)
	}
}

// SetOrigin moves the body keeping its rotation.
func (b *Body) SetOrigin(p physics.Vec3) {
	xf := b.xf
	xf.Origin = p
	b.SetTransform(xf)
}

// Radius is the bounding radius used when this body is swept.
func (b *Body) Radius() float64 {
	if b.kind == boxCollider {
		return b.half.Len()
	}
	return b.radius
}

func (b *Body) bounds() (lo, hi physics.Vec3) {
	ext := physics.Vec3{b.radius, b.radius, b.radius}
	if b.kind == boxCollider {
		ext = b.half
	}
	return b.xf.Origin.Sub(ext), b.xf.Origin.Add(ext)
}

// closest returns the point of the body nearest to p.
func (b *Body) closest(p physics.Vec3) physics.Vec3 {
	if b.kind == boxCollider {
		lo, hi := b.bounds()
		return physics.Vec3{
			clamp(p.X(), lo.X(), hi.X()),
			clamp(p.Y(), lo.Y(), hi.Y()),
			clamp(p.Z(), lo.Z(), hi.Z()),
		}
	}
	d := p.Sub(b.xf.Origin)
	if l := d.Len(); l > b.radius {
		return b.xf.Origin.Add(d.Mul(b.radius / l))
	}
	return p
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}
