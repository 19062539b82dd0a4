package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVec3Clamp(t *testing.T) {
	v := V3(3, 4, 0).Clamp(2.5)
	assert.InDelta(t, 2.5, v.Norm(), 1e-12)
	assert.InDelta(t, 1.5, v.X, 1e-12)

	short := V3(0.1, 0, 0)
	assert.Equal(t, short, short.Clamp(1))
}

func TestVec3Direction(t *testing.T) {
	_, ok := Vec3{}.Direction()
	assert.False(t, ok)

	d, ok := V3(0, 0, 5).Direction()
	assert.True(t, ok)
	assert.Equal(t, K, d)
}

func TestVec3Cos(t *testing.T) {
	assert.InDelta(t, 0, I.Cos(J), 1e-12)
	assert.InDelta(t, -1, K.Cos(K.Neg()), 1e-12)
}

func TestVec3Opposite(t *testing.T) {
	assert.Equal(t, V3(-1, 2, -3), V3(1, 2, 3).Opposite())
}

func TestRotationAroundUp(t *testing.T) {
	r := Rotation(J, math.Pi/2).MulVec(I)
	assert.InDelta(t, 0, r.X, 1e-12)
	assert.InDelta(t, 0, r.Y, 1e-12)
	assert.InDelta(t, -1, r.Z, 1e-12)
}

func TestRotationKeepsLength(t *testing.T) {
	axis := V3(1, 1, 0).Normalized()
	v := V3(0.3, -2, 7)
	r := Rotation(axis, 1.234).MulVec(v)
	assert.InDelta(t, v.Norm(), r.Norm(), 1e-9)
}

func TestPlaneCollideOnlyTightens(t *testing.T) {
	ground := Plane{Normal: J}
	ceiling := Plane{Point: V3(0, 20, 0), Normal: J.Neg()}

	distance := ground.Distance(V3(0, 5, 0))
	normal := J
	ceiling.Collide(V3(0, 5, 0), &distance, &normal)
	assert.Equal(t, 5.0, distance)
	assert.Equal(t, J, normal)

	ceiling.Collide(V3(0, 18, 0), &distance, &normal)
	assert.Equal(t, 2.0, distance)
	assert.Equal(t, J.Neg(), normal)
}

func TestProjected(t *testing.T) {
	assert.Equal(t, V3(1, 0, 3), Projected(V3(1, 2, 3), J))
}

func TestSphereInnerAndOuter(t *testing.T) {
	s := Sphere{Center: V3(0, 0, 0), Radius: 3}
	p := V3(1, 0, 0)

	assert.Equal(t, 2.0, s.DistanceInner(p))
	assert.Equal(t, I.Neg(), s.InnerNormal(p))
	assert.Equal(t, -2.0, s.DistanceOuter(p))
	assert.Equal(t, I, s.OuterNormal(p))
}

func TestClampAndScore(t *testing.T) {
	assert.Equal(t, 3, Clamp(7, 1, 3))
	assert.Equal(t, 1.0, Clamp(-7.0, 1, 3))
	assert.True(t, IsBetween(2.0, 1, 3))
	assert.False(t, IsBetween(3.0, 1, 3))
	assert.Equal(t, 1236, AsScore(1.2360679748635974))
	assert.Equal(t, -500, AsScore(-0.5))
	assert.Equal(t, 9.0, Square(3.0))
}
