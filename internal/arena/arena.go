// Package arena models the playing field boundary: floor, walls, ceiling,
// goal cutouts and all the rounded edges between them.
package arena

import (
	"math"

	"github.com/elsid/CodeBall-sub000/internal/entity"
	"github.com/elsid/CodeBall-sub000/internal/geom"
)

// TouchEpsilon is how close to the surface a solid must be to count as
// resting on it when the host does not say so.
const TouchEpsilon = 1e-3

// Arena holds the field dimensions as sent by the host.
type Arena struct {
	Width          float64 `json:"width"`
	Height         float64 `json:"height"`
	Depth          float64 `json:"depth"`
	BottomRadius   float64 `json:"bottom_radius"`
	TopRadius      float64 `json:"top_radius"`
	CornerRadius   float64 `json:"corner_radius"`
	GoalTopRadius  float64 `json:"goal_top_radius"`
	GoalWidth      float64 `json:"goal_width"`
	GoalHeight     float64 `json:"goal_height"`
	GoalDepth      float64 `json:"goal_depth"`
	GoalSideRadius float64 `json:"goal_side_radius"`
}

// Default returns the standard CodeBall field.
func Default() Arena {
	return Arena{
		Width:          60,
		Height:         20,
		Depth:          80,
		BottomRadius:   3,
		TopRadius:      7,
		CornerRadius:   13,
		GoalTopRadius:  3,
		GoalWidth:      30,
		GoalHeight:     10,
		GoalDepth:      10,
		GoalSideRadius: 1,
	}
}

// GoalTarget is the center of the opponent goal.
func (a Arena) GoalTarget() geom.Vec3 {
	return geom.V3(0, a.GoalHeight/2, a.Depth/2+a.GoalDepth/2)
}

// DefendTarget is the center of our own goal mouth.
func (a Arena) DefendTarget() geom.Vec3 {
	return geom.V3(0, a.GoalHeight/2, -a.Depth/2+a.GoalDepth/2)
}

// MaxDistance is the longest straight line that fits into the field.
func (a Arena) MaxDistance() float64 {
	return math.Sqrt(geom.Square(a.Width) + geom.Square(a.Height) + geom.Square(a.Depth+2*a.GoalDepth))
}

// Collide pushes the solid out of the boundary. The returned normal is the
// new touch normal and is only reported when the solid was moving inward.
func (a Arena) Collide(s entity.Solid) (geom.Vec3, bool) {
	distance, normal := a.DistanceAndNormal(s.Position())
	penetration := s.Radius() - distance
	if penetration <= 0 {
		return geom.Vec3{}, false
	}
	s.SetPosition(s.Position().Add(normal.Mul(penetration)))
	velocity := normal.Dot(s.Velocity()) - s.RadiusChangeSpeed()
	if velocity >= 0 {
		return geom.Vec3{}, false
	}
	s.SetVelocity(s.Velocity().Sub(normal.Mul((1 + s.ArenaE()) * velocity)))
	return normal, true
}

func (a Arena) Penetration(s entity.Solid) float64 {
	distance, _ := a.DistanceAndNormal(s.Position())
	return s.Radius() - distance
}

func (a Arena) Contains(position geom.Vec3) bool {
	distance, _ := a.DistanceAndNormal(position)
	return distance > 0
}

// ProjectedWithShift moves position onto the nearest surface and then shift
// units away from it along the surface normal.
func (a Arena) ProjectedWithShift(position geom.Vec3, shift float64) geom.Vec3 {
	distance, normal := a.DistanceAndNormal(position)
	return position.Sub(normal.Mul(distance - shift))
}

// PushedOut moves a sphere of radius at position out of the boundary when it
// penetrates it and returns position unchanged otherwise.
func (a Arena) PushedOut(position geom.Vec3, radius float64) geom.Vec3 {
	distance, normal := a.DistanceAndNormal(position)
	if penetration := radius - distance; penetration > 0 {
		return position.Add(normal.Mul(penetration))
	}
	return position
}

// ApproximateTouchNormal guesses the touch state of a solid from its
// distance to the surface.
func (a Arena) ApproximateTouchNormal(position geom.Vec3, radius float64) (geom.Vec3, bool) {
	distance, normal := a.DistanceAndNormal(position)
	if distance-radius < TouchEpsilon {
		return normal, true
	}
	return geom.Vec3{}, false
}

// DistanceAndNormal returns the signed distance from position to the
// boundary and the unit normal pointing into the field. The distance is
// negative once the point is outside.
func (a Arena) DistanceAndNormal(position geom.Vec3) (float64, geom.Vec3) {
	negX := position.X < 0
	negZ := position.Z < 0
	if negX {
		position = position.WithNegX()
	}
	if negZ {
		position = position.WithNegZ()
	}
	distance, normal := a.quarter(position)
	if negX {
		normal = normal.WithNegX()
	}
	if negZ {
		normal = normal.WithNegZ()
	}
	return distance, normal
}

// quarter evaluates the x >= 0, z >= 0 quarter. Every check can only lower
// the distance, so the order decides which feature wins where they overlap.
func (a Arena) quarter(p geom.Vec3) (float64, geom.Vec3) {
	ground := geom.Plane{Normal: geom.J}
	distance, normal := ground.Distance(p), ground.Normal

	a.ceiling(p, &distance, &normal)
	a.sideX(p, &distance, &normal)
	a.goalSideZ(p, &distance, &normal)
	a.sideZ(p, &distance, &normal)
	a.goalSideXAndCeiling(p, &distance, &normal)
	a.goalBackCorners(p, &distance, &normal)
	a.corner(p, &distance, &normal)
	a.goalOuterCorner(p, &distance, &normal)
	a.goalInsideTopCorners(p, &distance, &normal)
	a.bottomCorners(p, &distance, &normal)
	a.ceilingCorners(p, &distance, &normal)

	return distance, normal
}

func (a Arena) ceiling(p geom.Vec3, d *float64, n *geom.Vec3) {
	geom.Plane{Point: geom.V3(0, a.Height, 0), Normal: geom.J.Neg()}.Collide(p, d, n)
}

func (a Arena) sideX(p geom.Vec3, d *float64, n *geom.Vec3) {
	geom.Plane{Point: geom.V3(a.Width/2, 0, 0), Normal: geom.I.Neg()}.Collide(p, d, n)
}

func (a Arena) goalSideZ(p geom.Vec3, d *float64, n *geom.Vec3) {
	geom.Plane{Point: geom.V3(0, 0, a.Depth/2+a.GoalDepth), Normal: geom.K.Neg()}.Collide(p, d, n)
}

// sideZ is the back wall everywhere except the goal mouth.
func (a Arena) sideZ(p geom.Vec3, d *float64, n *geom.Vec3) {
	v := p.XY().Sub(geom.V2(a.GoalWidth/2-a.GoalTopRadius, a.GoalHeight-a.GoalTopRadius))
	if p.X >= a.GoalWidth/2+a.GoalSideRadius ||
		p.Y >= a.GoalHeight+a.GoalSideRadius ||
		(v.X > 0 && v.Y > 0 && v.Norm() >= a.GoalTopRadius+a.GoalSideRadius) {
		geom.Plane{Point: geom.V3(0, 0, a.Depth/2), Normal: geom.K.Neg()}.Collide(p, d, n)
	}
}

func (a Arena) goalSideXAndCeiling(p geom.Vec3, d *float64, n *geom.Vec3) {
	if p.Z >= a.Depth/2+a.GoalSideRadius {
		geom.Plane{Point: geom.V3(a.GoalWidth/2, 0, 0), Normal: geom.I.Neg()}.Collide(p, d, n)
		geom.Plane{Point: geom.V3(0, a.GoalHeight, 0), Normal: geom.J.Neg()}.Collide(p, d, n)
	}
}

// goalBackCorners assumes BottomRadius == GoalTopRadius.
func (a Arena) goalBackCorners(p geom.Vec3, d *float64, n *geom.Vec3) {
	if p.Z > a.Depth/2+a.GoalDepth-a.BottomRadius {
		geom.Sphere{
			Center: geom.V3(
				geom.Clamp(p.X, a.BottomRadius-a.GoalWidth/2, a.GoalWidth/2-a.BottomRadius),
				geom.Clamp(p.Y, a.BottomRadius, a.GoalHeight-a.GoalTopRadius),
				a.Depth/2+a.GoalDepth-a.BottomRadius,
			),
			Radius: a.BottomRadius,
		}.InnerCollide(p, d, n)
	}
}

func (a Arena) corner(p geom.Vec3, d *float64, n *geom.Vec3) {
	if p.X > a.Width/2-a.CornerRadius && p.Z > a.Depth/2-a.CornerRadius {
		geom.Sphere{
			Center: geom.V3(a.Width/2-a.CornerRadius, p.Y, a.Depth/2-a.CornerRadius),
			Radius: a.CornerRadius,
		}.InnerCollide(p, d, n)
	}
}

func (a Arena) goalOuterCorner(p geom.Vec3, d *float64, n *geom.Vec3) {
	if p.Z >= a.Depth/2+a.GoalSideRadius {
		return
	}
	// side x
	if p.X < a.GoalWidth/2+a.GoalSideRadius {
		geom.Sphere{
			Center: geom.V3(a.GoalWidth/2+a.GoalSideRadius, p.Y, a.Depth/2+a.GoalSideRadius),
			Radius: a.GoalSideRadius,
		}.OuterCollide(p, d, n)
	}
	// ceiling
	if p.Y < a.GoalHeight+a.GoalSideRadius {
		geom.Sphere{
			Center: geom.V3(p.X, a.GoalHeight+a.GoalSideRadius, a.Depth/2+a.GoalSideRadius),
			Radius: a.GoalSideRadius,
		}.OuterCollide(p, d, n)
	}
	// top corner
	o := geom.V2(a.GoalWidth/2-a.GoalTopRadius, a.GoalHeight-a.GoalTopRadius)
	v := p.XY().Sub(o)
	if v.X > 0 && v.Y > 0 {
		o = o.Add(v.Normalized().Mul(a.GoalTopRadius + a.GoalSideRadius))
		geom.Sphere{
			Center: geom.V3(o.X, o.Y, a.Depth/2+a.GoalSideRadius),
			Radius: a.GoalSideRadius,
		}.OuterCollide(p, d, n)
	}
}

func (a Arena) goalInsideTopCorners(p geom.Vec3, d *float64, n *geom.Vec3) {
	if p.Z <= a.Depth/2+a.GoalSideRadius || p.Y <= a.GoalHeight-a.GoalTopRadius {
		return
	}
	if p.X > a.GoalWidth/2-a.GoalTopRadius {
		geom.Sphere{
			Center: geom.V3(a.GoalWidth/2-a.GoalTopRadius, a.GoalHeight-a.GoalTopRadius, p.Z),
			Radius: a.GoalTopRadius,
		}.InnerCollide(p, d, n)
	}
	if p.Z > a.Depth/2+a.GoalDepth-a.GoalTopRadius {
		geom.Sphere{
			Center: geom.V3(p.X, a.GoalHeight-a.GoalTopRadius, a.Depth/2+a.GoalDepth-a.GoalTopRadius),
			Radius: a.GoalTopRadius,
		}.InnerCollide(p, d, n)
	}
}

func (a Arena) bottomCorners(p geom.Vec3, d *float64, n *geom.Vec3) {
	if p.Y >= a.BottomRadius {
		return
	}
	// side x
	if p.X > a.Width/2-a.BottomRadius {
		geom.Sphere{
			Center: geom.V3(a.Width/2-a.BottomRadius, a.BottomRadius, p.Z),
			Radius: a.BottomRadius,
		}.InnerCollide(p, d, n)
	}
	// side z
	if p.Z > a.Depth/2-a.BottomRadius && p.X >= a.GoalWidth/2+a.GoalSideRadius {
		geom.Sphere{
			Center: geom.V3(p.X, a.BottomRadius, a.Depth/2-a.BottomRadius),
			Radius: a.BottomRadius,
		}.InnerCollide(p, d, n)
	}
	// goal back
	if p.Z > a.Depth/2+a.GoalDepth-a.BottomRadius {
		geom.Sphere{
			Center: geom.V3(p.X, a.BottomRadius, a.Depth/2+a.GoalDepth-a.BottomRadius),
			Radius: a.BottomRadius,
		}.InnerCollide(p, d, n)
	}
	// goal outer corner
	o := geom.V2(a.GoalWidth/2+a.GoalSideRadius, a.Depth/2+a.GoalSideRadius)
	v := p.XZ().Sub(o)
	if v.X < 0 && v.Y < 0 && v.Norm() < a.GoalSideRadius+a.BottomRadius {
		o = o.Add(v.Normalized().Mul(a.GoalSideRadius + a.BottomRadius))
		geom.Sphere{
			Center: geom.V3(o.X, a.BottomRadius, o.Y),
			Radius: a.BottomRadius,
		}.InnerCollide(p, d, n)
	}
	// goal side x
	if p.Z >= a.Depth/2+a.GoalSideRadius && p.X > a.GoalWidth/2-a.BottomRadius {
		geom.Sphere{
			Center: geom.V3(a.GoalWidth/2-a.BottomRadius, a.BottomRadius, p.Z),
			Radius: a.BottomRadius,
		}.InnerCollide(p, d, n)
	}
	// corner
	if p.X > a.Width/2-a.CornerRadius && p.Z > a.Depth/2-a.CornerRadius {
		cornerO := geom.V2(a.Width/2-a.CornerRadius, a.Depth/2-a.CornerRadius)
		dv := p.XZ().Sub(cornerO)
		if dist := dv.Norm(); dist > a.CornerRadius-a.BottomRadius {
			o2 := cornerO.Add(dv.Div(dist).Mul(a.CornerRadius - a.BottomRadius))
			geom.Sphere{
				Center: geom.V3(o2.X, a.BottomRadius, o2.Y),
				Radius: a.BottomRadius,
			}.InnerCollide(p, d, n)
		}
	}
}

func (a Arena) ceilingCorners(p geom.Vec3, d *float64, n *geom.Vec3) {
	if p.Y <= a.Height-a.TopRadius {
		return
	}
	if p.X > a.Width/2-a.TopRadius {
		geom.Sphere{
			Center: geom.V3(a.Width/2-a.TopRadius, a.Height-a.TopRadius, p.Z),
			Radius: a.TopRadius,
		}.InnerCollide(p, d, n)
	}
	if p.Z > a.Depth/2-a.TopRadius {
		geom.Sphere{
			Center: geom.V3(p.X, a.Height-a.TopRadius, a.Depth/2-a.TopRadius),
			Radius: a.TopRadius,
		}.InnerCollide(p, d, n)
	}
	if p.X > a.Width/2-a.CornerRadius && p.Z > a.Depth/2-a.CornerRadius {
		cornerO := geom.V2(a.Width/2-a.CornerRadius, a.Depth/2-a.CornerRadius)
		dv := p.XZ().Sub(cornerO)
		if dv.Norm() > a.CornerRadius-a.TopRadius {
			o2 := cornerO.Add(dv.Normalized().Mul(a.CornerRadius - a.TopRadius))
			geom.Sphere{
				Center: geom.V3(o2.X, a.Height-a.TopRadius, o2.Y),
				Radius: a.TopRadius,
			}.InnerCollide(p, d, n)
		}
	}
}
