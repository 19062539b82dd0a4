package planner

import (
	"math"

	"github.com/pkg/errors"

	"github.com/elsid/CodeBall-sub000/internal/geom"
	"github.com/elsid/CodeBall-sub000/internal/random"
	"github.com/elsid/CodeBall-sub000/internal/search"
)

// visitor expands plan states for search.Perform.
type visitor struct {
	rng            *random.XorShift
	ids            search.IDGenerator
	usedMicroTicks int
}

func newVisitor(rng *random.XorShift) *visitor {
	return &visitor{rng: rng}
}

func (v *visitor) initialState(plan Plan) *State {
	return newInitial(v.ids.Next(), plan)
}

func (v *visitor) IsFinal(state *State) bool { return state.IsFinal() }

func (v *visitor) Score(state *State) int { return state.score }

func (v *visitor) TransitionCost(source, destination *State, transition Transition) int {
	switch transition.(type) {
	case ForkBall:
		return 0
	case Observe:
		return 1
	default:
		return source.score - destination.score
	}
}

func (v *visitor) Transitions(state *State) []Transition {
	plan := &state.plan
	switch state.kind {
	case StateInitial:
		return v.initialTransitions(plan)
	case StateObservedBall:
		return []Transition{
			ForkBall{},
			Observe{Number: state.number + 1, WaitUntil: plan.TimeToPlay, MaxZ: plan.MaxZ},
		}
	case StateObservedRobot:
		return []Transition{
			ForkRobot{RobotID: state.robotID},
			Observe{Number: state.number, WaitUntil: plan.TimeToPlay, MaxZ: plan.MaxZ},
		}
	case StateForkedBall:
		return v.forkedBallTransitions(state)
	case StateForkedRobot:
		return forkedRobotTransitions(state)
	case StateWalked:
		return []Transition{Jump{}}
	case StateJumped, StateFarJumped:
		return []Transition{WatchMeJump{JumpSpeed: plan.Simulator.Rules().RobotMaxJumpSpeed}}
	case StateHit:
		return []Transition{WatchBallMove{}}
	default:
		return nil
	}
}

func (v *visitor) initialTransitions(plan *Plan) []Transition {
	sim := plan.Simulator
	rules := sim.Rules()
	me := sim.Me()

	if !isTouching(me) {
		out := []Transition{
			WatchMeJump{JumpSpeed: 0},
			WatchMeJump{JumpSpeed: rules.RobotMaxJumpSpeed},
		}
		if me.NitroAmount() > 0 {
			out = append(out,
				WatchMeJump{JumpSpeed: 0, AllowNitro: true},
				WatchMeJump{JumpSpeed: rules.RobotMaxJumpSpeed, AllowNitro: true},
			)
		}
		return out
	}

	var out []Transition
	if plan.TimeToPlay == 0 {
		ball := sim.Ball().Position()
		if me.NitroAmount() > 0 && ball.Y < rules.Arena.GoalHeight+5 && ball.Distance(me.Position()) < 15 {
			out = append(out, FarJump{AllowNitro: true})
		}
		out = append(out, FarJump{})
	}
	out = append(out, Observe{Number: 0, WaitUntil: plan.TimeToPlay, MaxZ: plan.MaxZ})
	if t, ok := pushRobotTransition(plan); ok {
		out = append(out, t)
	}
	if t, ok := takeNitroPackTransition(plan); ok {
		out = append(out, t)
	}
	return out
}

func pushUntil(plan *Plan) float64 {
	return math.Max(plan.TimeToPlay, 20*plan.Simulator.Rules().TickTimeInterval())
}

func pushRobotTransition(plan *Plan) (Transition, bool) {
	sim := plan.Simulator
	if sim.Me().NitroAmount() <= sim.Rules().StartNitroAmount {
		return nil, false
	}
	robotID, ok := pushCandidate(sim, plan.MaxZ)
	if !ok {
		return nil, false
	}
	return PushRobot{RobotID: robotID, AllowNitro: true, UntilTime: pushUntil(plan)}, true
}

func takeNitroPackTransition(plan *Plan) (Transition, bool) {
	sim := plan.Simulator
	rules := sim.Rules()
	me := sim.Me()
	if me.NitroAmount() >= rules.MaxNitroAmount {
		return nil, false
	}
	limit := rules.Arena.Depth / 6
	var (
		target   geom.Vec3
		distance = math.Inf(1)
	)
	for _, pack := range sim.NitroPacks() {
		if pack.RespawnTicks != nil || pack.Z >= plan.MaxZ {
			continue
		}
		d := pack.Position().Distance(me.Position())
		if d < limit && d < distance {
			target, distance = pack.Position(), d
		}
	}
	if math.IsInf(distance, 1) {
		return nil, false
	}
	maxSpeed := rules.RobotMaxGroundSpeed
	if minRunning := rules.MinRunningDistance(); distance < minRunning {
		maxSpeed *= distance / minRunning
	}
	return TakeNitroPack{Target: target, MaxSpeed: maxSpeed}, true
}

func (v *visitor) forkedBallTransitions(state *State) []Transition {
	plan := &state.plan
	sim := plan.Simulator
	rules := sim.Rules()
	me := sim.Me()
	observed := state.observed
	ground := rules.RobotMaxGroundSpeed
	observeTime := observed.CurrentTime() - sim.CurrentTime()

	var out []Transition
	for _, point := range Points(observed, plan.CurrentTick, v.rng, plan.Log) {
		target := rules.Arena.PushedOut(point, me.Radius())
		distance := target.Distance(me.Position())
		maxSpeed := ground
		if observeTime > 0 && distance <= ground*20*rules.TickTimeInterval() {
			maxSpeed = distance / observeTime
		}
		out = append(out, WalkToPosition{Target: target, MaxSpeed: maxSpeed})
	}
	if len(out) < 7 && rules.TeamSize <= 2 {
		direction := observed.Ball().ProjectedToArenaWithShift(rules.RobotRadius).Sub(me.Position())
		out = append(out, WalkToBall{Direction: direction, AllowNitro: true})
	}
	return out
}

func forkedRobotTransitions(state *State) []Transition {
	plan := &state.plan
	rules := plan.Simulator.Rules()
	robot, ok := state.observed.Robot(state.robotID)
	if !ok {
		return nil
	}
	if !isTouching(robot) {
		target := rules.Arena.ProjectedWithShift(robot.Position(), rules.RobotRadius)
		return []Transition{WalkToRobot{
			RobotID:    state.robotID,
			Direction:  target.Sub(plan.Simulator.Me().Position()),
			AllowNitro: true,
		}}
	}
	if state.observed.CurrentTick() <= pushTicks {
		return []Transition{PushRobot{RobotID: state.robotID, AllowNitro: true, UntilTime: pushUntil(plan)}}
	}
	return nil
}

func (v *visitor) Apply(iteration int, state *State, transition Transition) *State {
	var next *State
	switch t := transition.(type) {
	case ForkBall:
		next = v.fork(state, StateForkedBall, 0)
	case ForkRobot:
		next = v.fork(state, StateForkedRobot, t.RobotID)
	case scenario:
		next = v.useScenario(state, t)
	default:
		panic(errors.Errorf("planner: unexpected transition %T", transition))
	}
	next.plan.Stats.Iteration = iteration
	next.plan.Stats.Path = append(next.plan.Stats.Path, transition.Name())
	next.plan.logf(next.id, "%s -> %s via %s score=%d", state.kind, next.kind, transition.Name(), next.score)
	return next
}

// fork restarts from the plan before observing, keeping the observed world
// as the target.
func (v *visitor) fork(state *State, kind StateKind, robotID int) *State {
	plan := state.InitialPlan().Clone()
	plan.Stats.Update(state.plan.Stats)
	return newForked(v.ids.Next(), kind, robotID, plan, state.plan.Simulator.Clone())
}

func (v *visitor) useScenario(state *State, t scenario) *State {
	plan := state.plan.Clone()
	cfg := plan.Config
	sim := plan.Simulator
	dt := sim.Rules().TickTimeInterval()

	switch s := t.(type) {
	case WalkToPosition:
		distance := sim.Me().Position().Distance(sim.Ball().Position())
		if distance > sim.Rules().BallDistanceLimit()+s.MaxSpeed*dt {
			plan.NearMicroTicks = cfg.FarMicroTicksPerTick
		} else {
			plan.NearMicroTicks = cfg.NearMicroTicksPerTick
		}
		target := s.Target
		plan.PositionToJump = &target
	case WalkToBall:
		plan.NearMicroTicks = cfg.FarMicroTicksPerTick
	}

	maxMicroTicks := cfg.MaxPathMicroTicks
	if _, ok := t.(Observe); ok {
		maxMicroTicks = max(plan.MaxPlanMicroTicks, v.usedMicroTicks) - v.usedMicroTicks
	}
	ctx := &scenarioContext{
		plan:          &plan,
		rng:           v.rng,
		near:          plan.NearMicroTicks,
		far:           cfg.FarMicroTicksPerTick,
		maxMicroTicks: maxMicroTicks,
	}
	err := t.perform(ctx)
	v.usedMicroTicks += ctx.used

	if v.usedMicroTicks >= plan.MaxPlanMicroTicks {
		return newState(v.ids.Next(), StateEnd, plan)
	}

	if err == nil {
		return newState(v.ids.Next(), nextKind(t), plan)
	}

	if observe, ok := t.(Observe); ok {
		initial := state.initialPlan
		if initial == nil {
			c := state.plan.Clone()
			initial = &c
		}
		var push *PushRobotError
		switch {
		case errors.Is(err, ErrUseBall):
			return newObserved(v.ids.Next(), StateObservedBall, observe.Number, 0, plan, initial)
		case errors.As(err, &push):
			return newObserved(v.ids.Next(), StateObservedRobot, observe.Number, push.RobotID, plan, initial)
		}
	}

	plan.logf(state.id, "%s failed: %v", t.Name(), err)
	return newState(v.ids.Next(), StateEnd, plan)
}

func nextKind(t scenario) StateKind {
	switch t.(type) {
	case WalkToPosition, WalkToBall, WalkToRobot:
		return StateWalked
	case Jump:
		return StateJumped
	case FarJump:
		return StateFarJumped
	case WatchMeJump:
		return StateHit
	case PushRobot, TakeNitroPack:
		return StateInitial
	default:
		return StateEnd
	}
}

var _ search.Visitor[*State, Transition] = (*visitor)(nil)
