// Package simulation reproduces the host physics step by step. A Simulator
// owns a private copy of the world, so forks are independent.
package simulation

import (
	"math"

	"github.com/elsid/CodeBall-sub000/internal/geom"
	"github.com/elsid/CodeBall-sub000/internal/shared/types"
)

// Rand is the randomness a Simulator consumes: robot order per micro tick and
// restitution per collision.
type Rand interface {
	Shuffle(n int, swap func(i, j int))
	Float64Range(low, high float64) float64
}

type Simulator struct {
	rules            types.Rules
	players          []types.Player
	robots           []RobotExt
	ball             BallExt
	nitroPacks       []nitroPack
	startTick        int
	currentTick      int
	currentMicroTick int
	currentTime      float64
	score            int
	meIndex          int
}

// New builds a simulator from an authoritative game state. The robot meID
// keeps its reported touch state; the others get one estimated from the
// arena since the host does not report it reliably.
func New(rules types.Rules, game types.Game, meID int) *Simulator {
	s := &Simulator{
		rules:     rules,
		players:   append([]types.Player(nil), game.Players...),
		robots:    make([]RobotExt, 0, len(game.Robots)),
		ball:      newBallExt(game.Ball, rules),
		startTick: game.CurrentTick,
		meIndex:   -1,
	}
	for _, robot := range game.Robots {
		r := newRobotExt(robot, rules)
		r.radiusChangeSpeed = rules.ApproximateRobotRadiusChangeSpeed(robot.Radius)
		if robot.ID == meID {
			r.isMe = true
			s.meIndex = len(s.robots)
		} else {
			r.SetTouchNormal(rules.Arena.ApproximateTouchNormal(robot.Position(), robot.Radius))
		}
		s.robots = append(s.robots, r)
	}
	if s.meIndex < 0 {
		panic("simulation: no robot with the given me id")
	}
	for _, pack := range game.NitroPacks {
		n := nitroPack{id: pack.ID, position: pack.Position(), radius: pack.Radius}
		if pack.RespawnTicks != nil {
			n.respawnTicks = *pack.RespawnTicks
		}
		s.nitroPacks = append(s.nitroPacks, n)
	}
	s.updateArenaContacts()
	return s
}

// Clone returns an independent copy.
func (s *Simulator) Clone() *Simulator {
	c := *s
	c.players = append([]types.Player(nil), s.players...)
	c.robots = append([]RobotExt(nil), s.robots...)
	c.nitroPacks = append([]nitroPack(nil), s.nitroPacks...)
	return &c
}

func (s *Simulator) Rules() types.Rules      { return s.rules }
func (s *Simulator) Players() []types.Player { return s.players }
func (s *Simulator) Ball() *BallExt          { return &s.ball }
func (s *Simulator) CurrentTick() int        { return s.currentTick }
func (s *Simulator) CurrentMicroTick() int   { return s.currentMicroTick }
func (s *Simulator) CurrentTime() float64    { return s.currentTime }
func (s *Simulator) Me() *RobotExt           { return &s.robots[s.meIndex] }
func (s *Simulator) IgnoreMe() bool          { return s.robots[s.meIndex].ignore }
func (s *Simulator) SetIgnoreMe(v bool)      { s.robots[s.meIndex].ignore = v }

// Score is 1 after a goal into the far side, -1 after one into ours and 0
// otherwise. It sticks once set.
func (s *Simulator) Score() int { return s.score }

// Robots exposes the robots in their current shuffled order.
func (s *Simulator) Robots() []RobotExt { return s.robots }

func (s *Simulator) Robot(id int) (*RobotExt, bool) {
	for i := range s.robots {
		if s.robots[i].id == id {
			return &s.robots[i], true
		}
	}
	return nil, false
}

func (s *Simulator) SetAction(robotID int, action types.Action) bool {
	r, ok := s.Robot(robotID)
	if ok {
		r.action = action
	}
	return ok
}

func (s *Simulator) NitroPacks() []types.NitroPack {
	out := make([]types.NitroPack, len(s.nitroPacks))
	for i, n := range s.nitroPacks {
		out[i] = n.base()
	}
	return out
}

// Game converts the current state back to the wire model.
func (s *Simulator) Game() types.Game {
	robots := make([]types.Robot, len(s.robots))
	for i := range s.robots {
		robots[i] = s.robots[i].Base()
	}
	return types.Game{
		CurrentTick: s.startTick + s.currentTick,
		Players:     append([]types.Player(nil), s.players...),
		Robots:      robots,
		NitroPacks:  s.NitroPacks(),
		Ball:        s.ball.Base(),
	}
}

// Tick advances one game tick split into microTicks equal steps.
func (s *Simulator) Tick(timeInterval float64, microTicks int, rng Rand) {
	dt := timeInterval / float64(microTicks)
	for i := range s.robots {
		s.robots[i].collisionType = CollisionNone
	}
	s.ball.collisionType = BallCollisionNone
	for range microTicks {
		s.microTick(dt, rng)
	}
	for i := range s.nitroPacks {
		if s.nitroPacks[i].respawnTicks > 1 {
			s.nitroPacks[i].respawnTicks--
		} else {
			s.nitroPacks[i].respawnTicks = 0
		}
	}
	s.currentTick++
	s.currentTime += timeInterval
	for i := range s.robots {
		if s.robots[i].isMe {
			s.meIndex = i
			break
		}
	}
	s.updateArenaContacts()
}

func (s *Simulator) microTick(dt float64, rng Rand) {
	rules := s.rules
	rng.Shuffle(len(s.robots), func(i, j int) {
		s.robots[i], s.robots[j] = s.robots[j], s.robots[i]
	})
	e := func() float64 {
		return rng.Float64Range(rules.MinHitE, rules.MaxHitE)
	}

	for i := range s.robots {
		robot := &s.robots[i]
		if robot.ignore {
			continue
		}
		if robot.touch {
			accelerateOnGround(robot, rules, dt)
		}
		if robot.action.UseNitro {
			accelerateWithNitro(robot, rules, dt)
		}
		shift(robot, dt, rules.Gravity, rules.MaxEntitySpeed)
		robot.jump(robot.action.JumpSpeed, rules)
	}

	shift(&s.ball, dt, rules.Gravity, rules.MaxEntitySpeed)

	for i := 0; i < len(s.robots)-1; i++ {
		if s.robots[i].ignore {
			continue
		}
		for j := i + 1; j < len(s.robots); j++ {
			if s.robots[j].ignore {
				continue
			}
			Collide(e, &s.robots[i], &s.robots[j])
		}
	}

	for i := range s.robots {
		robot := &s.robots[i]
		if robot.ignore {
			continue
		}
		collisionType := Collide(e, robot, &s.ball)
		robot.SetTouchNormal(rules.Arena.Collide(robot))
		if collisionType != CollisionNone {
			robot.collisionType = robot.collisionType.Merge(collisionType)
			s.ball.collisionType = s.ball.collisionType.Merge(BallCollisionRobot)
		}
	}

	if _, ok := rules.Arena.Collide(&s.ball); ok {
		s.ball.collisionType = s.ball.collisionType.Merge(BallCollisionArena)
	}

	if s.score == 0 {
		limit := rules.Arena.Depth/2 + s.ball.radius
		if s.ball.position.Z > limit {
			s.score = 1
		} else if s.ball.position.Z < -limit {
			s.score = -1
		}
	}

	for i := range s.robots {
		robot := &s.robots[i]
		if robot.nitroAmount == rules.MaxNitroAmount {
			continue
		}
		for k := range s.nitroPacks {
			pack := &s.nitroPacks[k]
			if pack.respawnTicks > 0 {
				continue
			}
			if robot.position.Distance(pack.position) <= robot.radius+pack.radius {
				robot.nitroAmount = rules.MaxNitroAmount
				pack.respawnTicks = rules.NitroPackRespawnTicks
			}
		}
	}

	s.currentMicroTick++
}

func accelerateOnGround(robot *RobotExt, rules types.Rules, dt float64) {
	targetVelocity := robot.action.TargetVelocity().Clamp(rules.RobotMaxGroundSpeed)
	velocity := geom.Projected(targetVelocity, robot.touchNormal)
	velocityChange := velocity.Sub(robot.velocity)
	velocityChangeNorm := velocityChange.Norm()
	if velocityChangeNorm <= 0 {
		return
	}
	acceleration := rules.RobotAcceleration * math.Max(robot.touchNormal.Y, 0)
	robot.velocity = robot.velocity.Add(
		velocityChange.Normalized().Mul(acceleration).Mul(dt).Clamp(velocityChangeNorm),
	)
}

func accelerateWithNitro(robot *RobotExt, rules types.Rules, dt float64) {
	targetVelocityChange := robot.action.TargetVelocity().Sub(robot.velocity).
		Clamp(robot.nitroAmount * rules.NitroPointVelocityChange)
	targetVelocityChangeNorm := targetVelocityChange.Norm()
	if targetVelocityChangeNorm <= 0 {
		return
	}
	acceleration := targetVelocityChange.Normalized().Mul(rules.RobotNitroAcceleration)
	velocityChange := acceleration.Mul(dt).Clamp(targetVelocityChangeNorm)
	robot.velocity = robot.velocity.Add(velocityChange)
	robot.nitroAmount -= velocityChange.Norm() / rules.NitroPointVelocityChange
}

// updateArenaContacts refreshes the cached nearest surface of every solid.
func (s *Simulator) updateArenaContacts() {
	for i := range s.robots {
		r := &s.robots[i]
		r.distanceToArena, r.normalToArena = s.rules.Arena.DistanceAndNormal(r.position)
	}
	s.ball.distanceToArena, s.ball.normalToArena = s.rules.Arena.DistanceAndNormal(s.ball.position)
}
