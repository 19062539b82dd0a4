package simulation

import (
	"github.com/elsid/CodeBall-sub000/internal/entity"
)

// CollisionType classifies what a robot did to the ball during a tick.
type CollisionType int

const (
	CollisionNone CollisionType = iota
	CollisionTouch
	CollisionKick
)

// Merge keeps the stronger of two classifications within one tick.
func (c CollisionType) Merge(other CollisionType) CollisionType {
	switch {
	case c == other || other == CollisionNone:
		return c
	case c == CollisionNone:
		return other
	default:
		return CollisionKick
	}
}

func (c CollisionType) String() string {
	switch c {
	case CollisionTouch:
		return "touch"
	case CollisionKick:
		return "kick"
	default:
		return "none"
	}
}

// BallCollisionType records what the ball hit during a tick.
type BallCollisionType int

const (
	BallCollisionNone BallCollisionType = iota
	BallCollisionArena
	BallCollisionRobot
	BallCollisionArenaAndRobot
)

func (c BallCollisionType) Merge(other BallCollisionType) BallCollisionType {
	switch {
	case c == other || other == BallCollisionNone:
		return c
	case c == BallCollisionNone:
		return other
	default:
		return BallCollisionArenaAndRobot
	}
}

// Collide resolves an overlap between two solids with an impulse response.
// e is only sampled when the solids are actually closing in on each other.
// Coincident centers produce a NaN normal that propagates into both states.
func Collide(e func() float64, a, b entity.Solid) CollisionType {
	deltaPosition := b.Position().Sub(a.Position())
	distance := deltaPosition.Norm()
	penetration := a.Radius() + b.Radius() - distance
	if penetration <= 0 {
		return CollisionNone
	}
	invA := 1 / a.Mass()
	invB := 1 / b.Mass()
	kA := invA / (invA + invB)
	kB := invB / (invA + invB)
	normal := deltaPosition.Normalized()
	a.SetPosition(a.Position().Sub(normal.Mul(penetration * kA)))
	b.SetPosition(b.Position().Add(normal.Mul(penetration * kB)))
	deltaVelocity := normal.Dot(b.Velocity().Sub(a.Velocity())) -
		b.RadiusChangeSpeed() - a.RadiusChangeSpeed()
	if deltaVelocity >= 0 {
		return CollisionTouch
	}
	impulse := normal.Mul((1 + e()) * deltaVelocity)
	a.SetVelocity(a.Velocity().Add(impulse.Mul(kA)))
	b.SetVelocity(b.Velocity().Sub(impulse.Mul(kB)))
	return CollisionKick
}
