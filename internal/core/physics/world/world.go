// Package world is an in-memory reference implementation of physics.Space.
// It indexes bodies in a spatial hash and answers the three queries the
// hazard engine needs with simple analytic sphere and box tests.
package world

import (
	"encoding/binary"
	"math"
	"slices"

	"github.com/cespare/xxhash/v2"

	"github.com/zeusync/hazards/internal/core/physics"
)

var (
	_ physics.Space       = (*World)(nil)
	_ physics.BodyFactory = (*World)(nil)
)

const (
	// DefaultCellSize is the spatial hash cell edge in world units.
	DefaultCellSize = 4.0
	// SafeMargin is kept between a swept body and the surface it stopped at.
	SafeMargin = 0.001
	// queries touching more cells than this scan every body instead.
	maxQueryCells = 4096
)

type World struct {
	cellSize float64
	cells    map[uint64][]*Body
	large    []*Body
	bodies   []*Body
	nextSeq  uint64
}

// New creates an empty world. A non-positive cellSize selects DefaultCellSize.
func New(cellSize float64) *World {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &World{
		cellSize: cellSize,
		cells:    make(map[uint64][]*Body),
	}
}

// AddSphere inserts a sphere collider.
func (w *World) AddSphere(name string, origin physics.Vec3, radius float64, layer, mask physics.Layer) *Body {
	return w.insert(&Body{
		name:   name,
		layer:  layer,
		mask:   mask,
		xf:     physics.Transform{Origin: origin, Rotation: physics.Identity().Rotation},
		kind:   sphereCollider,
		radius: math.Abs(radius),
	})
}

// AddBox inserts an axis-aligned box collider.
func (w *World) AddBox(name string, origin, halfExtents physics.Vec3, layer, mask physics.Layer) *Body {
	return w.insert(&Body{
		name:  name,
		layer: layer,
		mask:  mask,
		xf:    physics.Transform{Origin: origin, Rotation: physics.Identity().Rotation},
		kind:  boxCollider,
		half:  physics.Vec3{math.Abs(halfExtents.X()), math.Abs(halfExtents.Y()), math.Abs(halfExtents.Z())},
	})
}

// NewKinematic creates a sphere body for an engine-driven hazard.
func (w *World) NewKinematic(spec physics.KinematicSpec) physics.Kinematic {
	b := w.AddSphere(spec.Name, spec.Transform.Origin, spec.Radius, spec.Layer, spec.Mask)
	b.SetTransform(spec.Transform)
	return b
}

// RemoveBody removes b if it belongs to this world. Removed bodies report
// Valid() == false.
func (w *World) RemoveBody(b physics.Body) {
	body, ok := b.(*Body)
	if !ok || body.world != w || !body.alive {
		return
	}
	w.unindex(body)
	body.alive = false
	w.bodies = slices.DeleteFunc(w.bodies, func(x *Body) bool { return x == body })
}

// Bodies returns the live bodies in insertion order.
func (w *World) Bodies() []*Body {
	return slices.Clone(w.bodies)
}

// Find returns the first live body with the given name.
func (w *World) Find(name string) (*Body, bool) {
	for _, b := range w.bodies {
		if b.name == name {
			return b, true
		}
	}
	return nil, false
}

func (w *World) MoveAndCollide(body physics.Kinematic, motion physics.Vec3, exclude ...physics.Body) (physics.Contact, bool) {
	xf := body.Transform()
	from := xf.Origin
	length := motion.Len()
	if length < eps {
		return physics.Contact{}, false
	}
	dir := motion.Mul(1 / length)

	var r float64
	self, _ := body.(*Body)
	if self != nil {
		r = self.Radius()
	}

	to := from.Add(motion)
	lo, hi := span(from, to, r)

	var (
		best    *Body
		bestT   = math.Inf(1)
		bestN   physics.Vec3
		mask    = body.Mask()
		skipped = excluded(exclude)
	)
	for _, c := range w.candidates(lo, hi) {
		if c == self || !c.layer.Matches(mask) || skipped(c) {
			continue
		}
		t, n, ok := cast(from, dir, length, r, c, true)
		if ok && t < bestT {
			best, bestT, bestN = c, t, n
		}
	}

	if best == nil {
		xf.Origin = to
		body.SetTransform(xf)
		return physics.Contact{}, false
	}

	xf.Origin = from.Add(dir.Mul(max(bestT-SafeMargin, 0)))
	body.SetTransform(xf)
	return physics.Contact{
		Collider: best,
		Normal:   bestN,
		Point:    from.Add(dir.Mul(bestT)).Sub(bestN.Mul(r)),
	}, true
}

func (w *World) Overlap(shape physics.Shape, xf physics.Transform, mask physics.Layer) []physics.Body {
	center := xf.Origin
	lo, hi := span(center, center, physics.BoundingRadius(shape))

	var out []physics.Body
	for _, c := range w.candidates(lo, hi) {
		if !c.layer.Matches(mask) {
			continue
		}
		var inside bool
		if c.kind == boxCollider {
			inside = shape.Distance(center, c.closest(center)) <= 0
		} else {
			inside = shape.Distance(center, c.xf.Origin) <= c.radius
		}
		if inside {
			out = append(out, c)
		}
	}
	return out
}

func (w *World) Raycast(from, to physics.Vec3, mask physics.Layer, exclude ...physics.Body) (physics.RayHit, bool) {
	seg := to.Sub(from)
	length := seg.Len()
	if length < eps {
		return physics.RayHit{}, false
	}
	dir := seg.Mul(1 / length)
	lo, hi := span(from, to, 0)
	skipped := excluded(exclude)

	var (
		best  *Body
		bestT = math.Inf(1)
		bestN physics.Vec3
	)
	for _, c := range w.candidates(lo, hi) {
		if !c.layer.Matches(mask) || skipped(c) {
			continue
		}
		t, n, ok := cast(from, dir, length, 0, c, false)
		if ok && t < bestT {
			best, bestT, bestN = c, t, n
		}
	}
	if best == nil {
		return physics.RayHit{}, false
	}
	return physics.RayHit{Collider: best, Point: from.Add(dir.Mul(bestT)), Normal: bestN}, true
}

func (w *World) insert(b *Body) *Body {
	b.world = w
	b.alive = true
	b.seq = w.nextSeq
	w.nextSeq++
	w.bodies = append(w.bodies, b)
	w.index(b)
	return b
}

func (w *World) index(b *Body) {
	lo, hi := b.bounds()
	b.cells = b.cells[:0]
	if w.cellCount(lo, hi) > maxQueryCells {
		b.large = true
		w.large = append(w.large, b)
		return
	}
	w.eachCell(lo, hi, func(key uint64) {
		w.cells[key] = append(w.cells[key], b)
		b.cells = append(b.cells, key)
	})
}

func (w *World) unindex(b *Body) {
	if b.large {
		b.large = false
		w.large = slices.DeleteFunc(w.large, func(x *Body) bool { return x == b })
		return
	}
	for _, key := range b.cells {
		list := slices.DeleteFunc(w.cells[key], func(x *Body) bool { return x == b })
		if len(list) == 0 {
			delete(w.cells, key)
		} else {
			w.cells[key] = list
		}
	}
	b.cells = b.cells[:0]
}

func (w *World) reindex(b *Body) {
	w.unindex(b)
	w.index(b)
}

// candidates returns the deduplicated enabled bodies whose cells intersect the
// box, plus every body too large to index, ordered by insertion so queries are
// deterministic.
func (w *World) candidates(lo, hi physics.Vec3) []*Body {
	if w.cellCount(lo, hi) > maxQueryCells {
		return slices.DeleteFunc(slices.Clone(w.bodies), func(b *Body) bool { return b.disabled })
	}
	seen := make(map[*Body]struct{})
	out := slices.Clone(w.large)
	for _, b := range out {
		seen[b] = struct{}{}
	}
	w.eachCell(lo, hi, func(key uint64) {
		for _, b := range w.cells[key] {
			if _, ok := seen[b]; ok {
				continue
			}
			seen[b] = struct{}{}
			out = append(out, b)
		}
	})
	slices.SortFunc(out, func(a, b *Body) int {
		switch {
		case a.seq < b.seq:
			return -1
		case a.seq > b.seq:
			return 1
		default:
			return 0
		}
	})
	return out
}

func (w *World) cellRange(lo, hi physics.Vec3) (a, b [3]int64) {
	for i := 0; i < 3; i++ {
		a[i] = int64(math.Floor(lo[i] / w.cellSize))
		b[i] = int64(math.Floor(hi[i] / w.cellSize))
	}
	return a, b
}

func (w *World) cellCount(lo, hi physics.Vec3) int64 {
	a, b := w.cellRange(lo, hi)
	n := int64(1)
	for i := 0; i < 3; i++ {
		n *= b[i] - a[i] + 1
		if n > maxQueryCells {
			return n
		}
	}
	return n
}

func (w *World) eachCell(lo, hi physics.Vec3, fn func(key uint64)) {
	a, b := w.cellRange(lo, hi)
	for x := a[0]; x <= b[0]; x++ {
		for y := a[1]; y <= b[1]; y++ {
			for z := a[2]; z <= b[2]; z++ {
				fn(cellKey(x, y, z))
			}
		}
	}
}

func cellKey(x, y, z int64) uint64 {
	var buf [24]byte
	binary.LittleEndian.PutUint64(buf[0:], uint64(x))
	binary.LittleEndian.PutUint64(buf[8:], uint64(y))
	binary.LittleEndian.PutUint64(buf[16:], uint64(z))
	return xxhash.Sum64(buf[:])
}

func span(a, b physics.Vec3, pad float64) (lo, hi physics.Vec3) {
	for i := 0; i < 3; i++ {
		lo[i] = min(a[i], b[i]) - pad
		hi[i] = max(a[i], b[i]) + pad
	}
	return lo, hi
}

func excluded(list []physics.Body) func(*Body) bool {
	return func(b *Body) bool {
		for _, e := range list {
			if eb, ok := e.(*Body); ok && eb == b {
				return true
			}
		}
		return false
	}
}
