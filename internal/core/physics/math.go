package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec3 and Quat alias the mathgl types so callers never juggle two vector
// representations.
type (
	Vec3 = mgl64.Vec3
	Quat = mgl64.Quat
)

// Local axes. A hazard travels along its local +Z axis.
var (
	Forward = Vec3{0, 0, 1}
	Up      = Vec3{0, 1, 0}
	Right   = Vec3{1, 0, 0}
)

const epsilon = 1e-9

// Transform places a body in world space.
type Transform struct {
	Origin   Vec3
	Rotation Quat
}

// Identity returns a transform at the world origin facing +Z.
func Identity() Transform {
	return Transform{Rotation: mgl64.QuatIdent()}
}

// At returns a transform at origin facing dir.
func At(origin, dir Vec3) Transform {
	return Transform{Origin: origin, Rotation: LookRotation(dir, Up)}
}

// Forward returns the unit world-space direction of the local +Z axis.
func (t Transform) Forward() Vec3 {
	return Normalize(t.rotation().Rotate(Forward))
}

// Up returns the unit world-space direction of the local +Y axis.
func (t Transform) Up() Vec3 {
	return Normalize(t.rotation().Rotate(Up))
}

// Orientation returns the rotation, treating the zero quaternion as identity.
func (t Transform) Orientation() Quat {
	return t.rotation()
}

func (t Transform) rotation() Quat {
	if t.Rotation.W == 0 && t.Rotation.V == (Vec3{}) {
		return mgl64.QuatIdent()
	}
	return t.Rotation
}

// Normalize returns v scaled to unit length, or the zero vector when v is
// degenerate.
func Normalize(v Vec3) Vec3 {
	l := v.Len()
	if l < epsilon {
		return Vec3{}
	}
	return v.Mul(1 / l)
}

// Bounce reflects v off the plane with normal n; the component along n flips.
func Bounce(v, n Vec3) Vec3 {
	n = Normalize(n)
	return v.Sub(n.Mul(2 * v.Dot(n)))
}

// AngleBetween returns the unsigned angle in radians between a and b.
func AngleBetween(a, b Vec3) float64 {
	a, b = Normalize(a), Normalize(b)
	if a == (Vec3{}) || b == (Vec3{}) {
		return 0
	}
	return math.Acos(mgl64.Clamp(a.Dot(b), -1, 1))
}

// LookRotation returns the rotation whose local +Z points along dir with the
// local +Y as close to up as possible. A dir parallel to up falls back to
// another reference axis.
func LookRotation(dir, up Vec3) Quat {
	z := Normalize(dir)
	if z == (Vec3{}) {
		return mgl64.QuatIdent()
	}
	x := Normalize(up.Cross(z))
	if x == (Vec3{}) {
		x = Normalize(Right.Cross(z))
		if x == (Vec3{}) {
			x = Normalize(Forward.Cross(z))
		}
	}
	y := z.Cross(x)
	return mgl64.Mat4ToQuat(mgl64.Mat3FromCols(x, y, z).Mat4()).Normalize()
}

// Slerp interpolates along the shortest arc between a and b.
func Slerp(a, b Quat, weight float64) Quat {
	weight = mgl64.Clamp(weight, 0, 1)
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	return mgl64.QuatSlerp(a, b, weight).Normalize()
}
