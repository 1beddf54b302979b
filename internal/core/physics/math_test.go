package physics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func assertVec(t *testing.T, want, got Vec3) {
	t.Helper()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, want[i], got[i], 1e-6, "component %d of %v", i, got)
	}
}

func TestBounceFlipsNormalComponent(t *testing.T) {
	assertVec(t, Vec3{1, 1, 0}, Bounce(Vec3{1, -1, 0}, Vec3{0, 1, 0}))
	assertVec(t, Vec3{0, 0, -1}, Bounce(Vec3{0, 0, 1}, Vec3{0, 0, -2}))
}

func TestAngleBetween(t *testing.T) {
	assert.InDelta(t, math.Pi/2, AngleBetween(Vec3{1, 0, 0}, Vec3{0, 1, 0}), 1e-9)
	assert.InDelta(t, math.Pi, AngleBetween(Vec3{0, 0, 1}, Vec3{0, 0, -1}), 1e-9)
	assert.Zero(t, AngleBetween(Vec3{}, Vec3{0, 0, 1}))
}

func TestLookRotationAlignsForward(t *testing.T) {
	for _, dir := range []Vec3{
		{0, 0, 1},
		{0, 0, -1},
		{1, 0, 0},
		{1, 2, 3},
		{0, 1, 0},
		{0, -1, 0},
	} {
		xf := Transform{Rotation: LookRotation(dir, Up)}
		assertVec(t, Normalize(dir), xf.Forward())
	}
}

func TestLookRotationKeepsUpright(t *testing.T) {
	xf := Transform{Rotation: LookRotation(Vec3{1, 0, 0}, Up)}
	assertVec(t, Up, xf.Up())
}

func TestSlerpEndpointsAndShortestArc(t *testing.T) {
	a := LookRotation(Vec3{0, 0, 1}, Up)
	b := LookRotation(Vec3{1, 0, 0}, Up)

	assertVec(t, Vec3{0, 0, 1}, Transform{Rotation: Slerp(a, b, 0)}.Forward())
	assertVec(t, Vec3{1, 0, 0}, Transform{Rotation: Slerp(a, b, 1)}.Forward())
	assertVec(t, Vec3{1, 0, 0}, Transform{Rotation: Slerp(a, b.Scale(-1), 5)}.Forward())

	half := Transform{Rotation: Slerp(a, b, 0.5)}.Forward()
	assert.InDelta(t, math.Pi/4, AngleBetween(half, Vec3{0, 0, 1}), 1e-6)
}

func TestZeroTransformFacesForward(t *testing.T) {
	assertVec(t, Forward, Transform{}.Forward())
}
