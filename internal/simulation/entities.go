package simulation

import (
	"github.com/elsid/CodeBall-sub000/internal/entity"
	"github.com/elsid/CodeBall-sub000/internal/geom"
	"github.com/elsid/CodeBall-sub000/internal/shared/types"
)

// RobotExt is a robot inside a Simulator: the wire state plus everything the
// integrator needs between micro ticks.
type RobotExt struct {
	id          int
	playerID    int
	isTeammate  bool
	position    geom.Vec3
	velocity    geom.Vec3
	radius      float64
	nitroAmount float64
	touch       bool
	touchNormal geom.Vec3

	radiusChangeSpeed float64
	action            types.Action
	mass              float64
	arenaE            float64
	isMe              bool
	collisionType     CollisionType
	distanceToArena   float64
	normalToArena     geom.Vec3
	ignore            bool
}

func newRobotExt(robot types.Robot, rules types.Rules) RobotExt {
	r := RobotExt{
		id:          robot.ID,
		playerID:    robot.PlayerID,
		isTeammate:  robot.IsTeammate,
		position:    robot.Position(),
		velocity:    robot.Velocity(),
		radius:      robot.Radius,
		nitroAmount: robot.NitroAmount,
		mass:        rules.RobotMass,
		arenaE:      rules.RobotArenaE,
	}
	r.touchNormal, r.touch = robot.TouchNormal()
	return r
}

func (r *RobotExt) ID() int                    { return r.id }
func (r *RobotExt) PlayerID() int              { return r.playerID }
func (r *RobotExt) IsTeammate() bool           { return r.isTeammate }
func (r *RobotExt) IsMe() bool                 { return r.isMe }
func (r *RobotExt) Position() geom.Vec3        { return r.position }
func (r *RobotExt) Velocity() geom.Vec3        { return r.velocity }
func (r *RobotExt) SetPosition(v geom.Vec3)    { r.position = v }
func (r *RobotExt) SetVelocity(v geom.Vec3)    { r.velocity = v }
func (r *RobotExt) Radius() float64            { return r.radius }
func (r *RobotExt) Mass() float64              { return r.mass }
func (r *RobotExt) RadiusChangeSpeed() float64 { return r.radiusChangeSpeed }
func (r *RobotExt) ArenaE() float64            { return r.arenaE }
func (r *RobotExt) NitroAmount() float64       { return r.nitroAmount }
func (r *RobotExt) SetNitroAmount(v float64)   { r.nitroAmount = v }
func (r *RobotExt) Action() types.Action       { return r.action }
func (r *RobotExt) SetAction(a types.Action)   { r.action = a }
func (r *RobotExt) CollisionType() CollisionType {
	return r.collisionType
}
func (r *RobotExt) DistanceToArena() float64 { return r.distanceToArena }
func (r *RobotExt) NormalToArena() geom.Vec3 { return r.normalToArena }
func (r *RobotExt) Ignore() bool             { return r.ignore }
func (r *RobotExt) SetIgnore(v bool)         { r.ignore = v }

// TouchNormal is the surface the robot rests on; false while airborne.
func (r *RobotExt) TouchNormal() (geom.Vec3, bool) {
	return r.touchNormal, r.touch
}

func (r *RobotExt) SetTouchNormal(normal geom.Vec3, ok bool) {
	r.touch = ok
	if ok {
		r.touchNormal = normal
	} else {
		r.touchNormal = geom.Vec3{}
	}
}

// IsOnSurface reports whether the robot is within reach of the arena
// surface regardless of the touch flag.
func (r *RobotExt) IsOnSurface() bool {
	return r.distanceToArena-r.radius < 1e-3
}

func (r *RobotExt) jump(jumpSpeed float64, rules types.Rules) {
	r.radius = rules.RobotMinRadius +
		(rules.RobotMaxRadius-rules.RobotMinRadius)*jumpSpeed/rules.RobotMaxJumpSpeed
	r.radiusChangeSpeed = jumpSpeed
}

// Base converts back to the wire representation.
func (r *RobotExt) Base() types.Robot {
	out := types.Robot{
		ID:          r.id,
		PlayerID:    r.playerID,
		IsTeammate:  r.isTeammate,
		Radius:      r.radius,
		NitroAmount: r.nitroAmount,
	}
	out.SetPosition(r.position)
	out.SetVelocity(r.velocity)
	out.SetTouchNormal(r.touchNormal, r.touch)
	return out
}

// BallExt is the ball inside a Simulator.
type BallExt struct {
	position        geom.Vec3
	velocity        geom.Vec3
	radius          float64
	mass            float64
	arenaE          float64
	distanceToArena float64
	normalToArena   geom.Vec3
	collisionType   BallCollisionType
}

func newBallExt(ball types.Ball, rules types.Rules) BallExt {
	return BallExt{
		position: ball.Position(),
		velocity: ball.Velocity(),
		radius:   ball.Radius,
		mass:     rules.BallMass,
		arenaE:   rules.BallArenaE,
	}
}

func (b *BallExt) Position() geom.Vec3              { return b.position }
func (b *BallExt) Velocity() geom.Vec3              { return b.velocity }
func (b *BallExt) SetPosition(v geom.Vec3)          { b.position = v }
func (b *BallExt) SetVelocity(v geom.Vec3)          { b.velocity = v }
func (b *BallExt) Radius() float64                  { return b.radius }
func (b *BallExt) Mass() float64                    { return b.mass }
func (b *BallExt) RadiusChangeSpeed() float64       { return 0 }
func (b *BallExt) ArenaE() float64                  { return b.arenaE }
func (b *BallExt) DistanceToArena() float64         { return b.distanceToArena }
func (b *BallExt) NormalToArena() geom.Vec3         { return b.normalToArena }
func (b *BallExt) CollisionType() BallCollisionType { return b.collisionType }

// ProjectedToArenaWithShift is the nearest surface point moved shift units
// back into the field.
func (b *BallExt) ProjectedToArenaWithShift(shift float64) geom.Vec3 {
	return b.position.Sub(b.normalToArena.Mul(b.distanceToArena - shift))
}

func (b *BallExt) Base() types.Ball {
	out := types.Ball{Radius: b.radius}
	out.SetPosition(b.position)
	out.SetVelocity(b.velocity)
	return out
}

type nitroPack struct {
	id       int
	position geom.Vec3
	radius   float64
	// respawnTicks is zero while the pack is available.
	respawnTicks int
}

func (n nitroPack) base() types.NitroPack {
	out := types.NitroPack{
		ID:     n.id,
		X:      n.position.X,
		Y:      n.position.Y,
		Z:      n.position.Z,
		Radius: n.radius,
	}
	if n.respawnTicks > 0 {
		v := n.respawnTicks
		out.RespawnTicks = &v
	}
	return out
}

// shift integrates one micro step of free flight under gravity.
func shift(e entity.Entity, dt, gravity, maxEntitySpeed float64) {
	velocity := e.Velocity().Clamp(maxEntitySpeed)
	e.SetPosition(e.Position().Add(velocity.Mul(dt)).Sub(geom.V3(0, gravity*(dt*dt)/2, 0)))
	e.SetVelocity(velocity.Sub(geom.V3(0, gravity*dt, 0)))
}
