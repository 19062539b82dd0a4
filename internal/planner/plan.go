// Package planner searches for the action sequence of one robot by forward
// simulating candidate scenarios and ranking their outcomes.
package planner

import (
	"math"

	"github.com/elsid/CodeBall-sub000/internal/config"
	"github.com/elsid/CodeBall-sub000/internal/geom"
	"github.com/elsid/CodeBall-sub000/internal/random"
	"github.com/elsid/CodeBall-sub000/internal/search"
	"github.com/elsid/CodeBall-sub000/internal/shared/logger"
	"github.com/elsid/CodeBall-sub000/internal/shared/types"
	"github.com/elsid/CodeBall-sub000/internal/simulation"
	"github.com/elsid/CodeBall-sub000/internal/stats"
)

// ActionLookup returns the action other robots are already committed to at
// a game tick.
type ActionLookup interface {
	ActionAt(robotID, tick int) (types.Action, bool)
}

// NoActions is an ActionLookup that knows nothing.
type NoActions struct{}

func (NoActions) ActionAt(int, int) (types.Action, bool) { return types.Action{}, false }

// Step is what replaying one planned tick needs besides the robot action:
// the micro ticks it was simulated with and the generator state before it.
type Step struct {
	MicroTicks int
	Rng        *random.XorShift
}

// Plan is one candidate future of a robot: its simulator and everything
// observed while simulating it.
type Plan struct {
	Config            *config.Config
	Log               *logger.Ticked
	CurrentTick       int
	OrderID           int
	Simulator         *simulation.Simulator
	TimeToPlay        float64
	MaxZ              float64
	Lookup            ActionLookup
	MaxPlanMicroTicks int
	RecordHistory     bool

	MyTimeToBall       *float64
	OpponentTimeToBall *float64
	TimeToGoal         *float64
	PositionToJump     *geom.Vec3
	Actions            []types.Action
	PathMicroTicks     int
	NearMicroTicks     int
	History            []*simulation.Simulator
	Steps              []Step
	Stats              stats.Stats
}

func New(cfg *config.Config, currentTick, orderID int, sim *simulation.Simulator,
	timeToPlay, maxZ float64, lookup ActionLookup, maxPlanMicroTicks int) Plan {
	if lookup == nil {
		lookup = NoActions{}
	}
	me := sim.Me()
	return Plan{
		Config:            cfg,
		CurrentTick:       currentTick,
		OrderID:           orderID,
		Simulator:         sim,
		TimeToPlay:        timeToPlay,
		MaxZ:              maxZ,
		Lookup:            lookup,
		MaxPlanMicroTicks: maxPlanMicroTicks,
		NearMicroTicks:    cfg.NearMicroTicksPerTick,
		Stats:             stats.New(me.PlayerID(), me.ID(), currentTick, "play"),
	}
}

// Clone copies the plan together with its simulator.
func (p Plan) Clone() Plan {
	c := p
	c.Simulator = p.Simulator.Clone()
	c.Actions = append([]types.Action(nil), p.Actions...)
	c.History = append([]*simulation.Simulator(nil), p.History...)
	c.Steps = append([]Step(nil), p.Steps...)
	c.Stats = p.Stats.Clone()
	return c
}

// Result is the outcome of Search.
type Result struct {
	Transitions    []Transition
	Found          bool
	OrderID        int
	Score          int
	Simulator      *simulation.Simulator
	TimeToBall     *float64
	TimeToGoal     *float64
	Actions        []types.Action
	UsedMicroTicks int
	Iterations     int
	History        []*simulation.Simulator
	Steps          []Step
	Stats          stats.Stats
}

// Search explores scenarios from the current plan state. All randomness
// comes from rng so equal inputs give equal results.
func (p Plan) Search(rng *random.XorShift) Result {
	v := newVisitor(rng)
	initial := v.initialState(p.Clone())

	found := search.Perform[*State, Transition](search.Search{MaxIterations: p.Config.MaxIterations}, initial, v)

	plan := p.Clone()
	if found.Found {
		plan = found.Final.plan
	}
	score := plan.Score()
	st := plan.Stats
	st.Score = score
	st.OrderScore = score
	st.TotalIterations = found.Iterations
	st.TotalMicroTicks = v.usedMicroTicks

	p.Log.Logf(p.CurrentTick, "[%d] <%d> search done score=%d iterations=%d micro_ticks=%d path=%v",
		p.Simulator.Me().ID(), p.OrderID, score, found.Iterations, v.usedMicroTicks, st.Path)

	return Result{
		Transitions:    found.Transitions,
		Found:          found.Found,
		OrderID:        plan.OrderID,
		Score:          score,
		Simulator:      plan.Simulator,
		TimeToBall:     plan.MyTimeToBall,
		TimeToGoal:     plan.TimeToGoal,
		Actions:        plan.Actions,
		UsedMicroTicks: v.usedMicroTicks,
		Iterations:     found.Iterations,
		History:        plan.History,
		Steps:          plan.Steps,
		Stats:          st,
	}
}

// MaxTime is the simulated horizon of a plan.
func (p Plan) MaxTime() float64 {
	return float64(p.Config.MaxTicks) * p.Simulator.Rules().TickTimeInterval()
}

// Score ranks the plan outcome. Scoring a goal dominates, then how close
// and how fast the ball goes toward the opponent goal.
func (p Plan) Score() int {
	sim := p.Simulator
	rules := sim.Rules()
	cfg := p.Config
	maxTime := float64(cfg.MaxTicks+1) * rules.TickTimeInterval()
	ball := sim.Ball()
	toGoal := rules.GoalTarget().Sub(ball.Position())

	var ballGoalDistance float64
	switch {
	case sim.Score() == 0:
		ballGoalDistance = 1 - toGoal.Norm()/rules.Arena.MaxDistance()
	case sim.Score() > 0:
		ballGoalDistance = 2
	default:
		ballGoalDistance = -1
	}

	ballGoalDirection := 0.0
	if ball.Velocity().Norm() > 0 {
		ballGoalDirection = (toGoal.Cos(ball.Velocity()) + 1) / 2
	}

	myTimeToBall := 0.0
	if p.MyTimeToBall != nil {
		myTimeToBall = 1 - *p.MyTimeToBall/maxTime
	}

	timeToGoal := 0.0
	if p.TimeToGoal != nil {
		if sim.Score() > 0 {
			timeToGoal = 1 - *p.TimeToGoal/maxTime
		} else {
			timeToGoal = *p.TimeToGoal / maxTime
		}
	}

	opponentTimeToBall := 0.0
	if p.OpponentTimeToBall != nil {
		opponentTimeToBall = 1 - *p.OpponentTimeToBall/maxTime
	}

	nitroAmount := sim.Me().NitroAmount() / rules.MaxNitroAmount

	total := ballGoalDistance*cfg.BallGoalDistanceScoreWeight +
		ballGoalDirection*cfg.BallGoalDirectionScoreWeight +
		myTimeToBall*cfg.MyTimeToBallScoreWeight +
		timeToGoal*cfg.TimeToGoalScoreWeight -
		opponentTimeToBall*cfg.OpponentTimeToBallPenaltyWeight +
		nitroAmount*cfg.NitroAmountScoreWeight

	if math.IsNaN(total) {
		return math.MinInt32
	}
	return geom.AsScore(total)
}

func (p *Plan) logf(stateID int, format string, args ...any) {
	if !p.Log.Enabled() {
		return
	}
	sim := p.Simulator
	prefix := []any{sim.Me().ID(), p.OrderID, stateID, sim.CurrentTime(), sim.CurrentTick(), sim.CurrentMicroTick()}
	p.Log.Logf(p.CurrentTick, "[%d] <%d> <%d> %v:%d:%d "+format, append(prefix, args...)...)
}

func timePtr(v float64) *float64 { return &v }
