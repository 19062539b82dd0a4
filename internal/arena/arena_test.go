package arena

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/elsid/CodeBall-sub000/internal/geom"
)

type ball struct {
	position geom.Vec3
	velocity geom.Vec3
	radius   float64
}

func (b *ball) Position() geom.Vec3        { return b.position }
func (b *ball) Velocity() geom.Vec3        { return b.velocity }
func (b *ball) SetPosition(v geom.Vec3)    { b.position = v }
func (b *ball) SetVelocity(v geom.Vec3)    { b.velocity = v }
func (b *ball) Radius() float64            { return b.radius }
func (b *ball) Mass() float64              { return 1 }
func (b *ball) RadiusChangeSpeed() float64 { return 0 }
func (b *ball) ArenaE() float64            { return 0.7 }

func assertDistanceAndNormal(t *testing.T, a Arena, position geom.Vec3, distance float64, normal geom.Vec3) {
	t.Helper()
	d, n := a.DistanceAndNormal(position)
	assert.InDelta(t, distance, d, 1e-9, "distance at %+v", position)
	assert.InDelta(t, normal.X, n.X, 1e-9, "normal.x at %+v", position)
	assert.InDelta(t, normal.Y, n.Y, 1e-9, "normal.y at %+v", position)
	assert.InDelta(t, normal.Z, n.Z, 1e-9, "normal.z at %+v", position)
}

func TestDistanceAndNormalFloor(t *testing.T) {
	a := Default()
	assertDistanceAndNormal(t, a, geom.V3(0, 0, 0), 0, geom.J)
	assertDistanceAndNormal(t, a, geom.V3(0, 10, 0), 10, geom.J)
	assertDistanceAndNormal(t, a, geom.V3(0, -10, 0), -10, geom.J)
}

func TestDistanceAndNormalWalls(t *testing.T) {
	a := Default()
	assertDistanceAndNormal(t, a, geom.V3(100, 10, 0), -70, geom.V3(-1, 0, 0))
	assertDistanceAndNormal(t, a, geom.V3(-100, 10, 0), -70, geom.V3(1, 0, 0))
	assertDistanceAndNormal(t, a, geom.V3(29, 10, 0), 1, geom.V3(-1, 0, 0))
}

func TestDistanceAndNormalCeilingCorners(t *testing.T) {
	a := Default()
	assertDistanceAndNormal(t, a, geom.V3(100, 100, 0), -109.18089343777659,
		geom.V3(-0.6627595788049191, -0.7488322513769865, 0))
	assertDistanceAndNormal(t, a, geom.V3(-100, 100, 0), -109.18089343777659,
		geom.V3(0.6627595788049191, -0.7488322513769865, 0))
}

func TestDistanceAndNormalGoal(t *testing.T) {
	a := Default()
	assertDistanceAndNormal(t, a, geom.V3(0, 10, 100), -50.08483775994799,
		geom.V3(0, -0.056513312022655776, -0.9984018457335854))
	assertDistanceAndNormal(t, a, geom.V3(0, 10, -100), -50.08483775994799,
		geom.V3(0, -0.056513312022655776, 0.9984018457335854))
	assertDistanceAndNormal(t, a, geom.V3(0, 100, -100), -104.0420478129973,
		geom.V3(0, -0.8688174591210289, 0.49513253046682293))
}

func TestDistanceBottomCorner(t *testing.T) {
	a := Default()
	d, n := a.DistanceAndNormal(geom.V3(-24.42538595321975, 2.4677833504956497, 34.911123218207614))
	assert.InDelta(t, 1.997137504399881, d, 1e-9)
	assert.InDelta(t, 1, n.Norm(), 1e-9)
}

func TestGoalMouthIsOpen(t *testing.T) {
	a := Default()
	d, _ := a.DistanceAndNormal(geom.V3(0, 3, 41))
	assert.Greater(t, d, 0.0)
	assert.True(t, a.Contains(geom.V3(0, 3, 45)))
	assert.False(t, a.Contains(geom.V3(20, 3, 45)))
}

func TestNormalIsUnit(t *testing.T) {
	a := Default()
	for _, p := range []geom.Vec3{
		geom.V3(28, 1, 38), geom.V3(-15.5, 10.5, 40.5), geom.V3(14, 9, 48),
		geom.V3(25, 18, -35), geom.V3(16, 1, 41.5), geom.V3(0, 19, 0),
	} {
		_, n := a.DistanceAndNormal(p)
		assert.InDelta(t, 1, n.Norm(), 1e-9, "normal at %+v", p)
	}
}

func TestCollideReflectsInbound(t *testing.T) {
	a := Default()
	b := &ball{position: geom.V3(0, 1.5, 0), velocity: geom.V3(0, -10, 0), radius: 2}

	n, ok := a.Collide(b)
	assert.True(t, ok)
	assert.Equal(t, geom.J, n)
	assert.InDelta(t, 2, b.position.Y, 1e-12)
	assert.InDelta(t, 7, b.velocity.Y, 1e-12)
}

func TestCollideWithoutInboundVelocity(t *testing.T) {
	a := Default()
	b := &ball{position: geom.V3(0, 1.5, 0), velocity: geom.V3(0, 3, 0), radius: 2}

	_, ok := a.Collide(b)
	assert.False(t, ok)
	assert.InDelta(t, 2, b.position.Y, 1e-12)
	assert.Equal(t, 3.0, b.velocity.Y)
}

func TestCollideMiss(t *testing.T) {
	a := Default()
	b := &ball{position: geom.V3(0, 5, 0), velocity: geom.V3(0, -3, 0), radius: 2}

	_, ok := a.Collide(b)
	assert.False(t, ok)
	assert.Equal(t, geom.V3(0, 5, 0), b.position)
}

func TestProjectedWithShift(t *testing.T) {
	a := Default()
	p := a.ProjectedWithShift(geom.V3(3, 7, -4), 1)
	assert.InDelta(t, 1, p.Y, 1e-12)
	assert.Equal(t, 3.0, p.X)
	assert.Equal(t, -4.0, p.Z)
}

func TestPushedOut(t *testing.T) {
	a := Default()
	assert.Equal(t, geom.V3(3, 1, -4), a.PushedOut(geom.V3(3, 0.5, -4), 1))
	assert.Equal(t, geom.V3(3, 7, -4), a.PushedOut(geom.V3(3, 7, -4), 1))
	assert.Equal(t, geom.V3(3, 1, -4), a.PushedOut(geom.V3(3, 1, -4), 1))
}

func TestApproximateTouchNormal(t *testing.T) {
	a := Default()
	n, ok := a.ApproximateTouchNormal(geom.V3(0, 1, 0), 1)
	assert.True(t, ok)
	assert.Equal(t, geom.J, n)

	_, ok = a.ApproximateTouchNormal(geom.V3(0, 1.5, 0), 1)
	assert.False(t, ok)
}

func TestTargets(t *testing.T) {
	a := Default()
	assert.Equal(t, geom.V3(0, 5, 45), a.GoalTarget())
	assert.Equal(t, geom.V3(0, 5, -35), a.DefendTarget())
	assert.InDelta(t, math.Sqrt(14000), a.MaxDistance(), 1e-9)
}
