package planner

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elsid/CodeBall-sub000/internal/config"
	"github.com/elsid/CodeBall-sub000/internal/geom"
	"github.com/elsid/CodeBall-sub000/internal/random"
	"github.com/elsid/CodeBall-sub000/internal/shared/types"
	"github.com/elsid/CodeBall-sub000/internal/simulation"
)

func kickoffPlan(t *testing.T, iterations int) Plan {
	t.Helper()
	rules := types.DefaultRules()
	rules.Seed = 42
	cfg := config.Default(rules.TeamSize)
	cfg.MaxIterations = iterations
	sim := simulation.New(rules, types.KickoffGame(rules), 1)
	return New(&cfg, 0, 1, sim, 0, math.Inf(1), nil, cfg.MaxPlanMicroTicks)
}

func seeded() *random.XorShift {
	return random.MustFromSeed([4]uint32{42, 0, 1841971383, 1904458926})
}

func TestPointsFromKickoff(t *testing.T) {
	plan := kickoffPlan(t, 1)

	points := Points(plan.Simulator, 0, seeded(), nil)

	require.Len(t, points, 1)
	assert.InDelta(t, plan.Simulator.Rules().RobotMaxRadius, points[0].Y, 1e-6)
	assert.Less(t, points[0].Z, 0.0)
}

// ballNearRobot rests the ball close enough in front of the robot for the
// full set of candidates.
func ballNearRobot(t *testing.T) *simulation.Simulator {
	t.Helper()
	sim := kickoffPlan(t, 1).Simulator
	sim.Ball().SetPosition(geom.V3(0, 2, -17))
	sim.Ball().SetVelocity(geom.Vec3{})
	sim.Tick(sim.Rules().TickTimeInterval(), 1, seeded())
	return sim
}

func TestPointsNearBallSpread(t *testing.T) {
	sim := ballNearRobot(t)

	points := Points(sim, 0, seeded(), nil)

	require.Len(t, points, 9)
	for i, p := range points {
		assert.True(t, sim.Rules().Arena.Contains(p), "point %d %v", i, p)
	}
}

func TestPointsDrawOrder(t *testing.T) {
	sim := ballNearRobot(t)
	rng := seeded()
	draws := rng.Clone()

	points := Points(sim, 0, rng, nil)

	require.Len(t, points, 9)
	frame := newPointFrame(sim)
	n := float64(len(points))
	want := make([]geom.Vec3, len(points))
	place := func(i int, angle, distance float64) { _, want[i] = frame.at(angle, distance) }
	for _, i := range []int{0, 4, 8} {
		place(i, math.Pi*float64(i)/n, frame.meanDistance())
	}
	for _, i := range []int{3, 7} {
		place(i, -math.Pi*float64(i)/n, frame.meanDistance())
	}
	// Jittered candidates take an angle and then a distance, in index order.
	for _, i := range []int{1, 2, 5, 6} {
		k := float64(i)
		var angle float64
		if i%2 == 0 {
			angle = draws.Float64Range(math.Pi*(k-1)/n, math.Pi*(k+1)/n)
		} else {
			angle = draws.Float64Range(-math.Pi*(k+1.5)/n, -math.Pi*(k-0.5)/n)
		}
		place(i, angle, draws.Float64Range(frame.minDistance, frame.maxDistance))
	}
	assert.Equal(t, want, points)
	assert.Equal(t, draws, rng)
}

func TestPointsJitterOnlyDependsOnSeed(t *testing.T) {
	sim := ballNearRobot(t)

	first := Points(sim, 0, seeded(), nil)
	again := Points(sim, 0, seeded(), nil)
	other := Points(sim, 0, random.MustFromSeed([4]uint32{7, 0, 1841971383, 1904458926}), nil)

	assert.Equal(t, first, again)
	for _, i := range []int{0, 3, 4, 7, 8} {
		assert.Equal(t, first[i], other[i], "point %d", i)
	}
	for _, i := range []int{1, 2, 5, 6} {
		assert.NotEqual(t, first[i], other[i], "point %d", i)
	}
}

func TestScoreRanksGoalHigher(t *testing.T) {
	plan := kickoffPlan(t, 1)
	before := plan.Score()

	scored := plan.Clone()
	sim := scored.Simulator
	sim.Ball().SetPosition(geom.V3(0, 3, 41.9))
	sim.Ball().SetVelocity(geom.V3(0, 0, 30))
	sim.Tick(sim.Rules().TickTimeInterval(), sim.Rules().MicroticksPerTick, seeded())
	require.Equal(t, 1, sim.Score())

	assert.Greater(t, scored.Score(), before)
	assert.Equal(t, 0, plan.Simulator.Score())
}

func TestInitialTransitionsAtKickoff(t *testing.T) {
	plan := kickoffPlan(t, 1)
	v := newVisitor(seeded())

	got := v.Transitions(v.initialState(plan))

	assert.Equal(t, []string{"far_jump", "observe"}, Names(got))
}

func TestInitialTransitionsWhileFlying(t *testing.T) {
	plan := kickoffPlan(t, 1)
	plan.Simulator.Me().SetTouchNormal(geom.Vec3{}, false)
	v := newVisitor(seeded())

	got := v.Transitions(v.initialState(plan))

	require.Len(t, got, 4)
	for _, transition := range got {
		assert.IsType(t, WatchMeJump{}, transition)
	}
}

func TestObserveFindsPlayableBall(t *testing.T) {
	plan := kickoffPlan(t, 1)
	v := newVisitor(seeded())
	initial := v.initialState(plan)

	observed := v.Apply(1, initial, Observe{MaxZ: math.Inf(1)})

	require.Equal(t, StateObservedBall, observed.Kind())
	assert.Empty(t, observed.Plan().Actions)
	assert.Greater(t, observed.Plan().Simulator.CurrentTick(), 0)
	assert.Less(t, observed.Plan().Simulator.Ball().Position().Y, plan.Simulator.Rules().MaxRobotJumpHeight())
	assert.Equal(t, 0, initial.Plan().Simulator.CurrentTick())

	forked := v.Apply(2, observed, ForkBall{})

	require.Equal(t, StateForkedBall, forked.Kind())
	assert.Equal(t, 0, forked.Plan().Simulator.CurrentTick())
	assert.Equal(t, []string{"observe", "fork_ball"}, forked.Plan().Stats.Path)
	next := v.Transitions(forked)
	require.NotEmpty(t, next)
	require.IsType(t, WalkToPosition{}, next[0])
	rules := plan.Simulator.Rules()
	target := next[0].(WalkToPosition).Target
	assert.Equal(t, Points(observed.Plan().Simulator, 0, seeded(), nil)[0], target)
	distance, _ := rules.Arena.DistanceAndNormal(target)
	assert.GreaterOrEqual(t, distance, plan.Simulator.Me().Radius()-1e-9)
}

func TestObserveLimitEndsPlan(t *testing.T) {
	plan := kickoffPlan(t, 1)
	v := newVisitor(seeded())

	got := v.Apply(1, v.initialState(plan), Observe{Number: plan.Config.MaxObservations, MaxZ: math.Inf(1)})

	assert.Equal(t, StateEnd, got.Kind())
	assert.False(t, got.IsFinal())
}

func TestFarJumpPathIsFinal(t *testing.T) {
	plan := kickoffPlan(t, 1)
	v := newVisitor(seeded())

	jumped := v.Apply(1, v.initialState(plan), FarJump{})
	require.Equal(t, StateFarJumped, jumped.Kind())
	assert.True(t, plan.Simulator.Me().Position().Y < jumped.Plan().Simulator.Me().Position().Y)
	assert.True(t, jumped.Plan().Stats.FarJumpSimulation)

	watched := v.Apply(2, jumped, v.Transitions(jumped)[0])
	assert.Equal(t, StateEnd, watched.Kind())
	assert.True(t, watched.IsFinal())
}

func TestSearchFromKickoff(t *testing.T) {
	plan := kickoffPlan(t, 20)

	result := plan.Search(seeded())

	require.True(t, result.Found)
	assert.NotEmpty(t, result.Actions)
	assert.NotEmpty(t, result.Transitions)
	assert.LessOrEqual(t, result.UsedMicroTicks, plan.Config.MaxPlanMicroTicks+plan.Config.MaxPathMicroTicks)
	assert.Equal(t, result.Score, result.Stats.Score)
	assert.Equal(t, 0, plan.Simulator.CurrentTick())
}

func TestSearchIsDeterministic(t *testing.T) {
	first := kickoffPlan(t, 20).Search(seeded())
	second := kickoffPlan(t, 20).Search(seeded())

	assert.Equal(t, first.Score, second.Score)
	assert.Equal(t, first.Actions, second.Actions)
	assert.Equal(t, Names(first.Transitions), Names(second.Transitions))
	assert.Equal(t, first.UsedMicroTicks, second.UsedMicroTicks)
}

func TestTransitionCost(t *testing.T) {
	v := newVisitor(seeded())
	a := &State{score: 10}
	b := &State{score: 4}

	assert.Equal(t, 0, v.TransitionCost(a, b, ForkBall{}))
	assert.Equal(t, 1, v.TransitionCost(a, b, Observe{}))
	assert.Equal(t, 6, v.TransitionCost(a, b, Jump{}))
}

func TestPushRobotErrorMatches(t *testing.T) {
	var err error = &PushRobotError{RobotID: 3}
	assert.ErrorIs(t, err, ErrPushRobot)
	assert.NotErrorIs(t, err, ErrUseBall)
}
