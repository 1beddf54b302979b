package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/hazards/internal/core/physics"
)

func newMover(w *World, origin physics.Vec3) physics.Kinematic {
	return w.NewKinematic(physics.KinematicSpec{
		Name:      "mover",
		Transform: physics.At(origin, physics.Forward),
		Radius:    0.1,
		Layer:     2,
		Mask:      1,
	})
}

func TestMoveAndCollideFreeMotion(t *testing.T) {
	w := New(0)
	mover := newMover(w, physics.Vec3{})

	_, hit := w.MoveAndCollide(mover, physics.Vec3{0, 0, 5})

	assert.False(t, hit)
	assert.InDelta(t, 5.0, mover.Transform().Origin.Z(), 1e-9)
}

func TestMoveAndCollideStopsAtFirstContact(t *testing.T) {
	w := New(0)
	near := w.AddSphere("near", physics.Vec3{0, 0, 3}, 1, 1, 0)
	w.AddSphere("far", physics.Vec3{0, 0, 6}, 1, 1, 0)
	mover := newMover(w, physics.Vec3{})

	c, hit := w.MoveAndCollide(mover, physics.Vec3{0, 0, 10})

	require.True(t, hit)
	assert.Equal(t, physics.Body(near), c.Collider)
	assert.InDelta(t, -1.0, c.Normal.Z(), 1e-9)
	assert.InDelta(t, 2.0, c.Point.Z(), 1e-9)
	assert.InDelta(t, 1.9-SafeMargin, mover.Transform().Origin.Z(), 1e-9)
}

func TestMoveAndCollideHonoursExcludeAndMask(t *testing.T) {
	w := New(0)
	shooter := w.AddSphere("shooter", physics.Vec3{0, 0, 1}, 1, 1, 0)
	w.AddSphere("ghost", physics.Vec3{0, 0, 4}, 1, 4, 0)
	wall := w.AddBox("wall", physics.Vec3{0, 0, 8}, physics.Vec3{5, 5, 0.5}, 1, 0)
	mover := newMover(w, physics.Vec3{})

	c, hit := w.MoveAndCollide(mover, physics.Vec3{0, 0, 10}, shooter)

	require.True(t, hit)
	assert.Equal(t, physics.Body(wall), c.Collider)
	assert.InDelta(t, -1.0, c.Normal.Z(), 1e-9)
}

func TestRaycastNearestAndInside(t *testing.T) {
	w := New(1)
	self := w.AddSphere("self", physics.Vec3{}, 0.5, 1, 0)
	wall := w.AddBox("wall", physics.Vec3{0, 0, 3}, physics.Vec3{2, 2, 0.25}, 1, 0)
	w.AddSphere("target", physics.Vec3{0, 0, 6}, 0.5, 1, 0)

	hit, ok := w.Raycast(physics.Vec3{}, physics.Vec3{0, 0, 6}, 1)

	require.True(t, ok)
	assert.Equal(t, physics.Body(wall), hit.Collider)
	assert.InDelta(t, 2.75, hit.Point.Z(), 1e-9)
	assert.NotEqual(t, physics.Body(self), hit.Collider)

	_, ok = w.Raycast(physics.Vec3{}, physics.Vec3{0, 0, 6}, 4)
	assert.False(t, ok)
}

func TestOverlapShapes(t *testing.T) {
	w := New(0)
	in := w.AddSphere("in", physics.Vec3{2, 0, 0}, 0.5, 1, 0)
	edge := w.AddBox("edge", physics.Vec3{0, 0, 3.4}, physics.Vec3{0.5, 0.5, 0.5}, 1, 0)
	w.AddSphere("out", physics.Vec3{5, 0, 0}, 0.5, 1, 0)
	w.AddSphere("other-layer", physics.Vec3{1, 0, 0}, 0.5, 2, 0)

	got := w.Overlap(&physics.Sphere{Radius: 3}, physics.Identity(), 1)

	assert.Equal(t, []physics.Body{in, edge}, got)
}

func TestRemoveBodyInvalidates(t *testing.T) {
	w := New(0)
	b := w.AddSphere("gone", physics.Vec3{0, 0, 2}, 1, 1, 0)
	w.RemoveBody(b)

	assert.False(t, b.Valid())
	assert.False(t, physics.Valid(b))
	_, ok := w.Raycast(physics.Vec3{}, physics.Vec3{0, 0, 5}, 1)
	assert.False(t, ok)
	_, found := w.Find("gone")
	assert.False(t, found)
}

func TestLargeBodiesAreAlwaysCandidates(t *testing.T) {
	w := New(0.5)
	floor := w.AddBox("floor", physics.Vec3{0, -1, 0}, physics.Vec3{500, 0.5, 500}, 1, 0)

	hit, ok := w.Raycast(physics.Vec3{120, 5, -80}, physics.Vec3{120, -5, -80}, 1)

	require.True(t, ok)
	assert.Equal(t, physics.Body(floor), hit.Collider)
	assert.InDelta(t, 1.0, hit.Normal.Y(), 1e-9)
}

func TestDisabledBodySitsOutOfQueries(t *testing.T) {
	w := New(0)
	pooled := w.NewKinematic(physics.KinematicSpec{
		Name:      "pooled",
		Transform: physics.At(physics.Vec3{0, 0, 3}, physics.Forward),
		Radius:    0.5,
		Layer:     1,
		Mask:      1,
	})
	pooled.SetEnabled(false)
	pooled.SetTransform(physics.At(physics.Vec3{0, 0, 4}, physics.Forward))

	assert.True(t, pooled.Valid())
	assert.False(t, pooled.Enabled())
	assert.Len(t, w.Bodies(), 1)

	mover := newMover(w, physics.Vec3{})
	_, hit := w.MoveAndCollide(mover, physics.Vec3{0, 0, 10})
	assert.False(t, hit)

	_, hit = w.Raycast(physics.Vec3{}, physics.Vec3{0, 0, 10}, 1)
	assert.False(t, hit)
	assert.Empty(t, w.Overlap(&physics.Sphere{Radius: 1}, physics.At(physics.Vec3{0, 0, 4}, physics.Forward), 1))

	pooled.SetEnabled(true)
	got := w.Overlap(&physics.Sphere{Radius: 1}, physics.At(physics.Vec3{0, 0, 4}, physics.Forward), 1)
	require.Len(t, got, 1)
	assert.Equal(t, physics.Body(pooled), got[0])

	w.RemoveBody(pooled)
	assert.False(t, pooled.Valid())
}
