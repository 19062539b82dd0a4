// Package entity holds the capability sets shared by robots and the ball.
package entity

import "github.com/elsid/CodeBall-sub000/internal/geom"

// Entity is anything with a mutable kinematic state.
type Entity interface {
	Position() geom.Vec3
	Velocity() geom.Vec3
	SetPosition(geom.Vec3)
	SetVelocity(geom.Vec3)
}

// Solid is an Entity that takes part in collisions.
type Solid interface {
	Entity
	Radius() float64
	Mass() float64
	// RadiusChangeSpeed is the speed the surface moves outward while jumping.
	RadiusChangeSpeed() float64
	// ArenaE is the restitution against the arena boundary.
	ArenaE() float64
}
