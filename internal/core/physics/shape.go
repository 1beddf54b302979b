package physics

import "fmt"

type ShapeKind uint8

const (
	ShapeSphere ShapeKind = iota
	ShapeBox
	ShapeCapsule
	ShapeCylinder
	ShapeConvex
)

var shapeNames = map[ShapeKind]string{
	ShapeSphere:   "sphere",
	ShapeBox:      "box",
	ShapeCapsule:  "capsule",
	ShapeCylinder: "cylinder",
	ShapeConvex:   "convex",
}

func (k ShapeKind) String() string {
	if s, ok := shapeNames[k]; ok {
		return s
	}
	return fmt.Sprintf("shape(%d)", uint8(k))
}

// ParseShapeKind resolves a configuration name.
func ParseShapeKind(s string) (ShapeKind, error) {
	for k, name := range shapeNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown shape %q", s)
}

// Shape is a query volume. Shapes are axis-aligned in world space; capsule and
// cylinder run along Y. Concrete shapes are pointers so they can be resized in
// place.
type Shape interface {
	Kind() ShapeKind
	// Distance returns the signed distance from p to the surface of the shape
	// centred at center; negative inside.
	Distance(center, p Vec3) float64
}

type Sphere struct {
	Radius float64
}

type Box struct {
	Size Vec3
}

type Capsule struct {
	Radius float64
	Height float64
}

type Cylinder struct {
	Radius float64
	Height float64
}

// Convex is a point hull. It can be queried through its bounding sphere but
// has no single radius to resize.
type Convex struct {
	Points []Vec3
}

func (*Sphere) Kind() ShapeKind   { return ShapeSphere }
func (*Box) Kind() ShapeKind      { return ShapeBox }
func (*Capsule) Kind() ShapeKind  { return ShapeCapsule }
func (*Cylinder) Kind() ShapeKind { return ShapeCylinder }
func (*Convex) Kind() ShapeKind   { return ShapeConvex }

func (s *Sphere) Distance(center, p Vec3) float64 {
	return p.Sub(center).Len() - s.Radius
}

func (b *Box) Distance(center, p Vec3) float64 {
	d := p.Sub(center)
	q := Vec3{
		abs(d.X()) - b.Size.X()/2,
		abs(d.Y()) - b.Size.Y()/2,
		abs(d.Z()) - b.Size.Z()/2,
	}
	outside := Vec3{max(q.X(), 0), max(q.Y(), 0), max(q.Z(), 0)}.Len()
	inside := min(max(q.X(), q.Y(), q.Z()), 0)
	return outside + inside
}

func (c *Capsule) Distance(center, p Vec3) float64 {
	half := max(c.Height/2-c.Radius, 0)
	d := p.Sub(center)
	y := min(max(d.Y(), -half), half)
	return d.Sub(Vec3{0, y, 0}).Len() - c.Radius
}

func (c *Cylinder) Distance(center, p Vec3) float64 {
	d := p.Sub(center)
	radial := Vec3{d.X(), 0, d.Z()}.Len() - c.Radius
	axial := abs(d.Y()) - c.Height/2
	inside := min(max(radial, axial), 0)
	outside := Vec3{max(radial, 0), max(axial, 0), 0}.Len()
	return inside + outside
}

func (c *Convex) Distance(center, p Vec3) float64 {
	var r float64
	for _, pt := range c.Points {
		r = max(r, pt.Len())
	}
	return p.Sub(center).Len() - r
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// BoundingRadius returns the radius of a sphere centred on the shape that
// contains it.
func BoundingRadius(s Shape) float64 {
	switch v := s.(type) {
	case *Sphere:
		return v.Radius
	case *Box:
		return v.Size.Mul(0.5).Len()
	case *Capsule:
		return max(v.Radius, v.Height/2)
	case *Cylinder:
		return Vec3{v.Radius, v.Height / 2, 0}.Len()
	case *Convex:
		var r float64
		for _, pt := range v.Points {
			r = max(r, pt.Len())
		}
		return r
	default:
		return 0
	}
}
