package orders

import (
	"github.com/elsid/CodeBall-sub000/internal/planner"
	"github.com/elsid/CodeBall-sub000/internal/shared/types"
	"github.com/elsid/CodeBall-sub000/internal/simulation"
	"github.com/elsid/CodeBall-sub000/internal/stats"
)

// Play follows the best plan found for the robot.
type Play struct {
	base
	score       int
	actions     []types.Action
	transitions []string
	history     []*simulation.Simulator
	steps       []planner.Step
	stats       stats.Stats
}

func (o *Play) Name() string          { return "play" }
func (o *Play) Score() int            { return o.score }
func (o *Play) Stats() stats.Stats    { return o.stats.Clone() }
func (o *Play) Transitions() []string { return o.transitions }

// History holds the planned simulator states when history recording is on.
func (o *Play) History() []*simulation.Simulator { return o.history }

// Steps pairs with History: the micro ticks and generator state each planned
// tick was simulated with.
func (o *Play) Steps() []planner.Step { return o.steps }

func (o *Play) Action() types.Action {
	action, _ := o.ActionAt(o.currentTick)
	return action
}

func (o *Play) ActionAt(tick int) (types.Action, bool) {
	n := tick - o.currentTick
	if n < 0 || n >= len(o.actions) {
		return types.Action{}, false
	}
	return o.actions[n], true
}

func (o *Play) Opposite() Order {
	out := *o
	out.actions = make([]types.Action, len(o.actions))
	for i, a := range o.actions {
		out.actions[i] = a.Opposite()
	}
	out.history = nil
	out.steps = nil
	return &out
}

// TryPlay searches a plan for robot and returns Idle when there is nothing to
// play or no budget left. Robots with orders in lookup follow them in the
// simulation; the rest keep their current velocity.
func TryPlay(robot types.Robot, rules types.Rules, game types.Game, lookup planner.ActionLookup,
	maxZ float64, ctx *Context) Order {
	cfg := ctx.Config
	id := ctx.IDs.Next()
	budget := min(cfg.MaxPlanMicroTicks, ctx.MicroTicks)
	if budget < cfg.MaxPathMicroTicks {
		ctx.Log.Logf(game.CurrentTick, "[%d] <%d> skip play micro_ticks=%d", robot.ID, id, ctx.MicroTicks)
		return NewIdle(id, robot.ID, game.CurrentTick)
	}

	ctx.Log.Logf(game.CurrentTick, "[%d] <%d> try play max_z=%v budget=%d", robot.ID, id, maxZ, budget)

	plan := planner.New(cfg, game.CurrentTick, id, newSimulator(rules, game, robot.ID), 0, maxZ, lookup, budget)
	plan.Log = ctx.Log
	plan.RecordHistory = ctx.RecordHistory
	result := plan.Search(ctx.Rng)
	ctx.spend(result.UsedMicroTicks)

	if len(result.Actions) == 0 {
		ctx.Log.Logf(game.CurrentTick, "[%d] <%d> no play found iterations=%d", robot.ID, id, result.Iterations)
		return NewIdle(id, robot.ID, game.CurrentTick)
	}

	st := result.Stats
	st.Order = "play"
	st.ActionScore = result.Score
	st.CurrentTick = game.CurrentTick

	ctx.Log.Logf(game.CurrentTick, "[%d] <%d> suggest play score=%d path=%v", robot.ID, id, result.Score, st.Path)

	return &Play{
		base:        base{id: id, robotID: robot.ID, currentTick: game.CurrentTick},
		score:       result.Score,
		actions:     result.Actions,
		transitions: planner.Names(result.Transitions),
		history:     result.History,
		steps:       result.Steps,
		stats:       st,
	}
}

// newSimulator builds the planning world: other robots keep running with
// their current velocity and keep jumping while their radius says so.
func newSimulator(rules types.Rules, game types.Game, robotID int) *simulation.Simulator {
	sim := simulation.New(rules, game, robotID)
	robots := sim.Robots()
	for i := range robots {
		r := &robots[i]
		if r.IsMe() {
			continue
		}
		var action types.Action
		action.SetTargetVelocity(r.Velocity())
		if r.Radius() > rules.RobotMinRadius {
			action.JumpSpeed = rules.RobotMaxJumpSpeed
		}
		r.SetAction(action)
	}
	return sim
}
