package strategy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elsid/CodeBall-sub000/internal/config"
	"github.com/elsid/CodeBall-sub000/internal/geom"
	"github.com/elsid/CodeBall-sub000/internal/orders"
	"github.com/elsid/CodeBall-sub000/internal/render"
	"github.com/elsid/CodeBall-sub000/internal/shared/types"
	"github.com/elsid/CodeBall-sub000/internal/stats"
)

type recordingSink struct {
	records []stats.Stats
}

func (s *recordingSink) Record(_ context.Context, st stats.Stats) error {
	s.records = append(s.records, st)
	return nil
}

type recordingRecorder struct {
	ticks []int
	last  int
}

func (r *recordingRecorder) Record(tick int, rr *render.Render) {
	r.ticks = append(r.ticks, tick)
	r.last = rr.Len()
}

func fastConfig() *config.Config {
	cfg := config.Default(1)
	cfg.MaxIterations = 10
	return &cfg
}

// twoOnTwo adds a second teammate standing in front of my goal.
func twoOnTwo() (types.Rules, types.Game) {
	rules := types.DefaultRules()
	rules.TeamSize = 2
	game := types.KickoffGame(rules)
	for i := range game.Robots {
		if game.Robots[i].ID == 2 {
			game.Robots[i].SetPosition(geom.V3(0, rules.RobotRadius, -35))
		}
	}
	return rules, game
}

func TestWorldCountsResetTicks(t *testing.T) {
	rules := types.DefaultRules()
	game := types.KickoffGame(rules)
	w := NewWorld(game.Robots[0], rules, game)
	require.False(t, w.IsResetTicks())

	scored := game.Clone()
	scored.CurrentTick = 1
	scored.Players[0].Score = 1
	w.Update(scored.Robots[0], scored)
	assert.True(t, w.IsResetTicks())

	for tick := 2; tick < rules.ResetTicks; tick++ {
		next := scored.Clone()
		next.CurrentTick = tick
		w.Update(next.Robots[0], next)
		assert.True(t, w.IsResetTicks(), "tick %d", tick)
	}
	last := scored.Clone()
	last.CurrentTick = rules.ResetTicks
	w.Update(last.Robots[0], last)
	assert.False(t, w.IsResetTicks())
}

func TestWorldLookups(t *testing.T) {
	rules := types.DefaultRules()
	game := types.KickoffGame(rules)
	w := NewWorld(game.Robots[0], rules, game)

	robot, ok := w.Robot(2)
	require.True(t, ok)
	assert.False(t, robot.IsTeammate)
	_, ok = w.Robot(42)
	assert.False(t, ok)

	pack, ok := w.NitroPack(1)
	require.True(t, ok)
	assert.Equal(t, -rules.NitroPackX, pack.X)

	teammates := w.Teammates()
	require.Len(t, teammates, 1)
	assert.Equal(t, 1, teammates[0].ID)
}

func TestDefaultSelectorRoles(t *testing.T) {
	rules, game := twoOnTwo()
	w := NewWorld(game.Robots[0], rules, game)

	roles := DefaultSelector{}.Roles(w)

	assert.Equal(t, []Role{
		{Kind: Forward, RobotID: 1},
		{Kind: Goalkeeper, RobotID: 2},
	}, roles)
}

func TestDefaultSelectorSingleRobotIsForward(t *testing.T) {
	rules := types.DefaultRules()
	game := types.KickoffGame(rules)
	w := NewWorld(game.Robots[0], rules, game)

	assert.Equal(t, []Role{{Kind: Forward, RobotID: 1}}, DefaultSelector{}.Roles(w))
}

func TestDefaultSelectorPriority(t *testing.T) {
	rules, game := twoOnTwo()
	w := NewWorld(game.Robots[0], rules, game)

	assert.Equal(t, []int{1, 2}, DefaultSelector{}.Priority(w, nil))

	previous := orders.Set{orders.NewIdle(7, 2, 0), orders.NewIdle(8, 1, 0)}
	assert.Equal(t, []int{2, 1}, DefaultSelector{}.Priority(w, previous))
}

func TestGoalkeeperMaxZ(t *testing.T) {
	rules := types.DefaultRules()
	cfg := config.Default(1)

	z := GoalkeeperMaxZ(rules, &cfg)

	assert.InDelta(t, -16, z, 1e-6)
	assert.Greater(t, z, -rules.Arena.Depth/2)
}

func TestRoleCanQuit(t *testing.T) {
	rules, game := twoOnTwo()
	cfg := config.Default(2)
	w := NewWorld(game.Robots[0], rules, game)

	assert.True(t, Role{Kind: Forward, RobotID: 1}.CanQuit(w, &cfg))
	assert.False(t, Role{Kind: Goalkeeper, RobotID: 2}.CanQuit(w, &cfg))
	assert.True(t, Role{Kind: Goalkeeper, RobotID: 1}.CanQuit(w, &cfg))
}

func TestRoleScore(t *testing.T) {
	rules, game := twoOnTwo()
	w := NewWorld(game.Robots[0], rules, game)

	goalkeeper := Role{Kind: Goalkeeper, RobotID: 2}.Score(w)
	fieldPlayer := Role{Kind: Goalkeeper, RobotID: 1}.Score(w)
	assert.Greater(t, goalkeeper, fieldPlayer)
	assert.Greater(t, Role{Kind: Forward, RobotID: 1}.Score(w), Role{Kind: Forward, RobotID: 2}.Score(w))
}

func TestActGivesOrderAtKickoff(t *testing.T) {
	rules := types.DefaultRules()
	game := types.KickoffGame(rules)
	me := game.Robots[0]
	sink := &recordingSink{}
	s := New(me, rules, game, Options{Config: fastConfig(), Sink: sink, RunID: "run"})

	var action types.Action
	s.Act(me, rules, game, &action)

	order, ok := s.Orders().Find(me.ID)
	require.True(t, ok)
	assert.Equal(t, order.Action(), action)
	assert.Equal(t, []Role{{Kind: Forward, RobotID: 1}}, s.Roles())
	assert.Equal(t, []int{1}, s.Priority())
	require.NotEmpty(t, sink.records)
	assert.Equal(t, "run", sink.records[0].RunID)
	assert.Equal(t, me.ID, sink.records[len(sink.records)-1].RobotID)
	assert.Positive(t, s.UsedMicroTicks())
}

func TestActSameTickReusesOrders(t *testing.T) {
	rules := types.DefaultRules()
	game := types.KickoffGame(rules)
	me := game.Robots[0]
	s := New(me, rules, game, Options{Config: fastConfig()})

	var first, second types.Action
	s.Act(me, rules, game, &first)
	used := s.UsedMicroTicks()
	ids := s.Orders()[0].ID()
	s.Act(me, rules, game, &second)

	assert.Equal(t, used, s.UsedMicroTicks())
	assert.Equal(t, ids, s.Orders()[0].ID())
	assert.Equal(t, first, second)
	total, longest := s.CPUTime()
	assert.GreaterOrEqual(t, total, longest)
}

func TestActPausesAfterGoal(t *testing.T) {
	rules := types.DefaultRules()
	game := types.KickoffGame(rules)
	me := game.Robots[0]
	s := New(me, rules, game, Options{Config: fastConfig()})

	var action types.Action
	s.Act(me, rules, game, &action)
	require.NotEmpty(t, s.Orders())

	scored := game.Clone()
	scored.CurrentTick = 1
	scored.Players[1].Score = 1
	untouched := types.Action{JumpSpeed: 1}
	s.Act(me, rules, scored, &untouched)

	assert.Empty(t, s.Orders())
	assert.Empty(t, s.Roles())
	assert.Equal(t, types.Action{JumpSpeed: 1}, untouched)
	assert.True(t, s.World().IsResetTicks())

	for tick := 2; tick <= rules.ResetTicks; tick++ {
		next := scored.Clone()
		next.CurrentTick = tick
		s.Act(me, rules, next, &action)
	}
	// The pause is over but robots wait a little before planning again.
	assert.False(t, s.World().IsResetTicks())
	assert.Empty(t, s.Orders())
}

func TestActRendersWhenRecorderAttached(t *testing.T) {
	rules := types.DefaultRules()
	game := types.KickoffGame(rules)
	me := game.Robots[0]
	recorder := &recordingRecorder{}
	s := New(me, rules, game, Options{Config: fastConfig(), Recorder: recorder})

	var action types.Action
	s.Act(me, rules, game, &action)

	assert.Equal(t, []int{0}, recorder.ticks)
	assert.Positive(t, recorder.last)
	assert.Equal(t, recorder.last, s.Render().Len())
	texts := 0
	for _, o := range s.Render().Objects() {
		if _, ok := o.(render.Text); ok {
			texts++
		}
	}
	assert.GreaterOrEqual(t, texts, 3)
}
