package world

import (
	"math"

	"github.com/zeusync/hazards/internal/core/physics"
)

const eps = 1e-9

// raySphere intersects the ray o + d*t, t in [0, maxT], with a sphere. With
// solid set, an origin inside the sphere reports a hit at t=0.
func raySphere(o, d physics.Vec3, maxT float64, c physics.Vec3, r float64, solid bool) (float64, physics.Vec3, bool) {
	m := o.Sub(c)
	b := m.Dot(d)
	k := m.Dot(m) - r*r
	if k <= 0 {
		if !solid {
			return 0, physics.Vec3{}, false
		}
		n := physics.Normalize(m)
		if n == (physics.Vec3{}) {
			n = d.Mul(-1)
		}
		return 0, n, true
	}
	if b > 0 {
		return 0, physics.Vec3{}, false
	}
	disc := b*b - k
	if disc < 0 {
		return 0, physics.Vec3{}, false
	}
	t := -b - math.Sqrt(disc)
	if t > maxT {
		return 0, physics.Vec3{}, false
	}
	t = max(t, 0)
	return t, physics.Normalize(o.Add(d.Mul(t)).Sub(c)), true
}

// rayBox intersects the ray with an axis-aligned box using the slab method.
func rayBox(o, d physics.Vec3, maxT float64, lo, hi physics.Vec3, solid bool) (float64, physics.Vec3, bool) {
	tNear, tFar := math.Inf(-1), math.Inf(1)
	axis, sign := -1, 0.0
	inside := true

	for i := 0; i < 3; i++ {
		if o[i] < lo[i] || o[i] > hi[i] {
			inside = false
		}
		if math.Abs(d[i]) < eps {
			if o[i] < lo[i] || o[i] > hi[i] {
				return 0, physics.Vec3{}, false
			}
			continue
		}
		t1 := (lo[i] - o[i]) / d[i]
		t2 := (hi[i] - o[i]) / d[i]
		s := -1.0
		if t1 > t2 {
			t1, t2 = t2, t1
			s = 1.0
		}
		if t1 > tNear {
			tNear, axis, sign = t1, i, s
		}
		tFar = min(tFar, t2)
	}

	if inside {
		if !solid {
			return 0, physics.Vec3{}, false
		}
		return 0, d.Mul(-1), true
	}
	if axis < 0 || tNear > tFar || tFar < 0 || tNear > maxT {
		return 0, physics.Vec3{}, false
	}

	var n physics.Vec3
	n[axis] = sign
	return max(tNear, 0), n, true
}

// cast sweeps a sphere of radius r along the ray against b. Boxes are grown by
// r on every axis, which is conservative at the corners.
func cast(o, d physics.Vec3, maxT, r float64, b *Body, solid bool) (float64, physics.Vec3, bool) {
	if b.kind == boxCollider {
		lo, hi := b.bounds()
		grow := physics.Vec3{r, r, r}
		return rayBox(o, d, maxT, lo.Sub(grow), hi.Add(grow), solid)
	}
	return raySphere(o, d, maxT, b.xf.Origin, b.radius+r, solid)
}
