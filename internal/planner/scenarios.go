package planner

import (
	"math"

	"github.com/elsid/CodeBall-sub000/internal/geom"
	"github.com/elsid/CodeBall-sub000/internal/random"
	"github.com/elsid/CodeBall-sub000/internal/shared/types"
	"github.com/elsid/CodeBall-sub000/internal/simulation"
)

const (
	arriveEpsilon = 1e-3
	// pushTicks is how long after the plan start pushing an opponent is still considered.
	pushTicks = 10
)

// scenarioContext drives the simulator of one plan during one transition.
type scenarioContext struct {
	plan          *Plan
	rng           *random.XorShift
	near          int
	far           int
	maxMicroTicks int
	used          int
}

// microTicks picks near fidelity only when a collision with the ball is
// close for the robot or, while the robot is frozen, with the arena for the ball.
func (c *scenarioContext) microTicks() int {
	sim := c.plan.Simulator
	rules := sim.Rules()
	dt := rules.TickTimeInterval()
	ball := sim.Ball()
	if sim.IgnoreMe() {
		if ball.DistanceToArena()-ball.Radius() < ball.Velocity().Norm()*dt {
			return c.near
		}
		return c.far
	}
	me := sim.Me()
	reach := rules.BallDistanceLimit() + (me.Velocity().Norm()+ball.Velocity().Norm())*dt
	if me.Position().Distance(ball.Position()) > reach {
		return c.far
	}
	return c.near
}

func (c *scenarioContext) running() bool {
	sim := c.plan.Simulator
	return sim.Score() == 0 && sim.CurrentTime() < c.plan.MaxTime()
}

// tick advances one game tick. Other robots follow the actions they are
// committed to, the robot's own action is recorded into the plan.
func (c *scenarioContext) tick() error {
	microTicks := c.microTicks()
	if c.used+microTicks > c.maxMicroTicks {
		return ErrBudget
	}
	plan := c.plan
	sim := plan.Simulator
	tick := plan.CurrentTick + sim.CurrentTick()
	robots := sim.Robots()
	for i := range robots {
		if robots[i].IsMe() {
			continue
		}
		if action, ok := plan.Lookup.ActionAt(robots[i].ID(), tick); ok {
			robots[i].SetAction(action)
		}
	}
	if !sim.IgnoreMe() {
		plan.Actions = append(plan.Actions, sim.Me().Action())
	}

	if plan.RecordHistory {
		plan.Steps = append(plan.Steps, Step{MicroTicks: microTicks, Rng: c.rng.Clone()})
	}
	sim.Tick(sim.Rules().TickTimeInterval(), microTicks, c.rng)

	c.used += microTicks
	plan.PathMicroTicks += microTicks
	c.record()
	if plan.RecordHistory {
		plan.History = append(plan.History, sim.Clone())
	}
	return nil
}

// record keeps the first time of each event the score depends on.
func (c *scenarioContext) record() {
	plan := c.plan
	sim := plan.Simulator
	now := sim.CurrentTime()
	if plan.MyTimeToBall == nil && !sim.IgnoreMe() && sim.Me().CollisionType() != simulation.CollisionNone {
		plan.MyTimeToBall = timePtr(now)
	}
	if plan.OpponentTimeToBall == nil {
		robots := sim.Robots()
		for i := range robots {
			if !robots[i].IsTeammate() && robots[i].CollisionType() != simulation.CollisionNone {
				plan.OpponentTimeToBall = timePtr(now)
				break
			}
		}
	}
	if plan.TimeToGoal == nil && sim.Score() != 0 {
		plan.TimeToGoal = timePtr(now)
	}
}

func (c *scenarioContext) setAction(targetVelocity geom.Vec3, jumpSpeed float64, useNitro bool) {
	action := types.Action{JumpSpeed: jumpSpeed, UseNitro: useNitro}
	action.SetTargetVelocity(targetVelocity)
	c.plan.Simulator.Me().SetAction(action)
}

// groundVelocity points along the surface under the robot.
func groundVelocity(me *simulation.RobotExt, to geom.Vec3, speed float64) geom.Vec3 {
	direction, ok := geom.Projected(to, me.NormalToArena()).Direction()
	if !ok {
		return geom.Vec3{}
	}
	return direction.Mul(speed)
}

func isTouching(me *simulation.RobotExt) bool {
	_, touch := me.TouchNormal()
	return touch
}

func ballInReach(sim *simulation.Simulator) bool {
	return sim.Me().Position().Distance(sim.Ball().Position()) < sim.Rules().BallDistanceLimit()
}

// walkTo runs toward target, slowing down to stop on it, until done holds.
func (c *scenarioContext) walkTo(target geom.Vec3, maxSpeed float64, done func(*simulation.Simulator) bool) error {
	sim := c.plan.Simulator
	rules := sim.Rules()
	dt := rules.TickTimeInterval()
	speed := math.Min(maxSpeed, rules.RobotMaxGroundSpeed)
	for c.running() {
		if done != nil && done(sim) {
			return nil
		}
		me := sim.Me()
		toTarget := geom.Projected(target.Sub(me.Position()), me.NormalToArena())
		distance := toTarget.Norm()
		if distance <= math.Max(speed*dt, arriveEpsilon) {
			return nil
		}
		c.setAction(groundVelocity(me, toTarget, math.Min(speed, distance/dt)), 0, false)
		if err := c.tick(); err != nil {
			return err
		}
	}
	return nil
}

// runAlong runs at full speed along direction until done holds.
func (c *scenarioContext) runAlong(direction geom.Vec3, allowNitro bool, done func(*simulation.Simulator) bool) error {
	sim := c.plan.Simulator
	rules := sim.Rules()
	for c.running() {
		if done(sim) {
			return nil
		}
		me := sim.Me()
		useNitro := allowNitro && me.NitroAmount() > 0 && !isTouching(me)
		c.setAction(groundVelocity(me, direction, rules.RobotMaxGroundSpeed), 0, useNitro)
		if err := c.tick(); err != nil {
			return err
		}
	}
	return ErrNoTarget
}

// takeOff jumps toward the ball and ticks until the robot leaves the surface
// or touches the ball.
func (c *scenarioContext) takeOff(allowNitro bool) error {
	sim := c.plan.Simulator
	rules := sim.Rules()
	for first := true; c.running(); first = false {
		me := sim.Me()
		if !first && (!isTouching(me) || me.CollisionType() != simulation.CollisionNone) {
			break
		}
		toBall := sim.Ball().Position().Sub(me.Position())
		c.setAction(groundVelocity(me, toBall, rules.RobotMaxGroundSpeed), rules.RobotMaxJumpSpeed,
			allowNitro && me.NitroAmount() > 0)
		if err := c.tick(); err != nil {
			return err
		}
	}
	st := &c.plan.Stats
	st.MicroTicksToJump = sim.CurrentMicroTick()
	st.TimeToJump = sim.CurrentTime()
	return nil
}

func (t Observe) perform(c *scenarioContext) error {
	plan := c.plan
	sim := plan.Simulator
	cfg := plan.Config
	if t.Number >= cfg.MaxObservations {
		return ErrNoTarget
	}
	sim.SetIgnoreMe(true)
	steps := cfg.TicksPerStep(t.Number)
	for step := 1; ; step++ {
		if !c.running() {
			return ErrNoTarget
		}
		if err := c.tick(); err != nil {
			return err
		}
		if step%steps != 0 {
			continue
		}
		if robotID, ok := pushCandidate(sim, plan.MaxZ); ok {
			return &PushRobotError{RobotID: robotID}
		}
		ball := sim.Ball().Position()
		if sim.CurrentTime() >= t.WaitUntil && ball.Z < t.MaxZ && isPlayable(sim.Rules(), ball) {
			return ErrUseBall
		}
	}
}

// isPlayable reports whether a robot can reach a ball at position by jumping
// from the floor or from a wall.
func isPlayable(rules types.Rules, position geom.Vec3) bool {
	if position.Y < rules.MaxRobotJumpHeight() {
		return true
	}
	distance, normal := rules.Arena.DistanceAndNormal(position)
	return distance < rules.MaxRobotJumpHeight() &&
		position.Y < rules.MaxRobotWallWalkHeight() &&
		geom.V3(0, 1, 0).Cos(normal) >= 0
}

// pushCandidate finds the opponent closest to the ball that is near both the
// ball and the robot early in the plan.
func pushCandidate(sim *simulation.Simulator, maxZ float64) (int, bool) {
	if sim.CurrentTick() > pushTicks {
		return 0, false
	}
	rules := sim.Rules()
	limit := rules.Arena.Depth / 8
	me := sim.Me().Position()
	ball := sim.Ball().Position()
	best, bestDistance := 0, math.Inf(1)
	robots := sim.Robots()
	for i := range robots {
		r := &robots[i]
		if r.IsTeammate() || r.Position().Z >= maxZ {
			continue
		}
		toBall := r.Position().Distance(ball)
		if toBall >= limit || r.Position().Distance(me) >= limit {
			continue
		}
		if toBall < bestDistance {
			best, bestDistance = r.ID(), toBall
		}
	}
	return best, !math.IsInf(bestDistance, 1)
}

func (t WalkToPosition) perform(c *scenarioContext) error {
	return c.walkTo(t.Target, t.MaxSpeed, ballInReach)
}

func (t Jump) perform(c *scenarioContext) error {
	c.plan.Stats.JumpSimulation = true
	return c.takeOff(t.AllowNitro)
}

func (t FarJump) perform(c *scenarioContext) error {
	c.plan.Stats.FarJumpSimulation = true
	return c.takeOff(t.AllowNitro)
}

func (t WatchMeJump) perform(c *scenarioContext) error {
	sim := c.plan.Simulator
	rules := sim.Rules()
	hit := sim.Me().CollisionType() != simulation.CollisionNone
	for c.running() {
		me := sim.Me()
		toBall := sim.Ball().Position().Sub(me.Position())
		useNitro := t.AllowNitro && me.NitroAmount() > 0
		velocity := groundVelocity(me, toBall, rules.RobotMaxGroundSpeed)
		if useNitro {
			velocity = toBall.Normalized().Mul(rules.RobotMaxGroundSpeed)
		}
		c.setAction(velocity, t.JumpSpeed, useNitro)
		if err := c.tick(); err != nil {
			return err
		}
		me = sim.Me()
		if me.CollisionType() != simulation.CollisionNone {
			hit = true
			continue
		}
		if hit || isTouching(me) {
			break
		}
	}
	st := &c.plan.Stats
	st.MicroTicksToWatch = sim.CurrentMicroTick()
	st.TimeToWatch = sim.CurrentTime()
	if !hit {
		return ErrNoTarget
	}
	return nil
}

func (t WatchBallMove) perform(c *scenarioContext) error {
	sim := c.plan.Simulator
	var err error
	for c.running() {
		if err = c.tick(); err != nil {
			break
		}
	}
	st := &c.plan.Stats
	st.MicroTicksToEnd = sim.CurrentMicroTick()
	st.TimeToEnd = sim.CurrentTime()
	st.TimeToScore = c.plan.TimeToGoal
	return err
}

func (t PushRobot) perform(c *scenarioContext) error {
	sim := c.plan.Simulator
	rules := sim.Rules()
	for c.running() && sim.CurrentTime() < t.UntilTime {
		robot, ok := sim.Robot(t.RobotID)
		if !ok {
			return ErrNoTarget
		}
		me := sim.Me()
		toRobot := robot.Position().Sub(me.Position())
		if toRobot.Norm() <= me.Radius()+robot.Radius()+arriveEpsilon {
			return nil
		}
		useNitro := t.AllowNitro && me.NitroAmount() > 0 && !isTouching(me)
		c.setAction(groundVelocity(me, toRobot, rules.RobotMaxGroundSpeed), 0, useNitro)
		if err := c.tick(); err != nil {
			return err
		}
	}
	return nil
}

func (t TakeNitroPack) perform(c *scenarioContext) error {
	sim := c.plan.Simulator
	maxNitro := sim.Rules().MaxNitroAmount
	full := func(s *simulation.Simulator) bool { return s.Me().NitroAmount() >= maxNitro }
	if err := c.walkTo(t.Target, t.MaxSpeed, full); err != nil {
		return err
	}
	if !full(sim) {
		return ErrNoTarget
	}
	return nil
}

func (t WalkToBall) perform(c *scenarioContext) error {
	return c.runAlong(t.Direction, t.AllowNitro, ballInReach)
}

func (t WalkToRobot) perform(c *scenarioContext) error {
	sim := c.plan.Simulator
	rules := sim.Rules()
	reach := rules.BallDistanceLimit() - rules.BallRadius + rules.RobotRadius
	var lost bool
	err := c.runAlong(t.Direction, t.AllowNitro, func(s *simulation.Simulator) bool {
		robot, ok := s.Robot(t.RobotID)
		if !ok {
			lost = true
			return true
		}
		return s.Me().Position().Distance(robot.Position()) < reach
	})
	if lost {
		return ErrNoTarget
	}
	return err
}
