// Package strategy drives a team: once per game tick it assigns roles, lets
// every teammate try to play in priority order and hands each robot the
// action of its order.
package strategy

import (
	"context"
	"math"
	"slices"
	"time"

	"github.com/elsid/CodeBall-sub000/internal/config"
	"github.com/elsid/CodeBall-sub000/internal/geom"
	"github.com/elsid/CodeBall-sub000/internal/orders"
	"github.com/elsid/CodeBall-sub000/internal/random"
	"github.com/elsid/CodeBall-sub000/internal/render"
	"github.com/elsid/CodeBall-sub000/internal/search"
	"github.com/elsid/CodeBall-sub000/internal/shared/logger"
	"github.com/elsid/CodeBall-sub000/internal/shared/types"
	"github.com/elsid/CodeBall-sub000/internal/stats"
)

const (
	// ordersDelayTicks is how long robots keep still after a goal kickoff.
	ordersDelayTicks = 20
	sinkTimeout      = 50 * time.Millisecond
)

type Options struct {
	// Config defaults to config.Default(rules.TeamSize).
	Config   *config.Config
	Log      *logger.Logger
	Sink     stats.Sink
	Recorder render.Recorder
	Selector Selector
	RunID    string
}

// Strategy serves all robots of one player. Act is called for each of them
// every tick; the orders are made on the first call of a tick.
type Strategy struct {
	cfg      *config.Config
	log      *logger.Logger
	ticked   *logger.Ticked
	sink     stats.Sink
	recorder render.Recorder
	selector Selector
	runID    string

	world         *World
	ctx           *orders.Context
	ids           search.IDGenerator
	lastTick      int
	lastResetTick int
	orders        orders.Set
	priority      []int
	roles         []Role
	render        *render.Render

	started         time.Time
	cpuTimeSpent    time.Duration
	maxCPUTimeSpent time.Duration
}

func New(me types.Robot, rules types.Rules, game types.Game, opts Options) *Strategy {
	cfg := opts.Config
	if cfg == nil {
		c := config.Default(rules.TeamSize)
		cfg = &c
	}
	log := opts.Log
	if log == nil {
		log = logger.Discard()
	}
	sink := opts.Sink
	if sink == nil {
		sink = stats.Discard{}
	}
	selector := opts.Selector
	if selector == nil {
		selector = DefaultSelector{}
	}
	runID := opts.RunID
	if runID == "" {
		runID = stats.NewRunID()
	}
	s := &Strategy{
		cfg:           cfg,
		log:           log,
		ticked:        logger.NewTicked(log, cfg.VerboseLog),
		sink:          sink,
		recorder:      opts.Recorder,
		selector:      selector,
		runID:         runID,
		world:         NewWorld(me, rules, game),
		lastTick:      -1,
		lastResetTick: math.MinInt32,
		render:        render.New(),
		started:       time.Now(),
	}
	s.ctx = &orders.Context{
		Config:        cfg,
		Log:           s.ticked,
		Rng:           random.FromGameSeed(rules.Seed),
		IDs:           &s.ids,
		RecordHistory: opts.Recorder != nil,
	}
	s.ticked.Logf(game.CurrentTick, "start run=%s", runID)
	return s
}

// Act sets the action of robot me for the game tick.
func (s *Strategy) Act(me types.Robot, _ types.Rules, game types.Game, action *types.Action) {
	start := time.Now()
	defer s.finish(start)

	if s.lastTick != game.CurrentTick {
		s.lastTick = game.CurrentTick
		s.world.Update(me, game)
		s.ctx.Refill()
		if s.world.IsResetTicks() {
			s.lastResetTick = game.CurrentTick
			s.roles = nil
			s.priority = nil
			s.orders = nil
		} else if game.CurrentTick-s.lastResetTick > ordersDelayTicks {
			s.assignRoles()
			s.setPriority()
			s.giveOrders()
		}
		s.recordStats()
		if s.recorder != nil {
			s.draw()
			s.recorder.Record(game.CurrentTick, s.render)
		}
	} else {
		s.world.UpdateMe(me)
	}
	if !s.world.IsResetTicks() {
		s.applyAction(action)
	}
}

func (s *Strategy) Orders() orders.Set     { return s.orders }
func (s *Strategy) Roles() []Role          { return s.roles }
func (s *Strategy) Priority() []int        { return s.priority }
func (s *Strategy) World() *World          { return s.world }
func (s *Strategy) Render() *render.Render { return s.render }

// UsedMicroTicks is what the planner simulated since the start.
func (s *Strategy) UsedMicroTicks() int {
	return s.ctx.UsedMicroTicks
}

// CPUTime returns the total and the longest time spent inside Act.
func (s *Strategy) CPUTime() (total, longest time.Duration) {
	return s.cpuTimeSpent, s.maxCPUTimeSpent
}

func (s *Strategy) finish(start time.Time) {
	spent := time.Since(start)
	s.cpuTimeSpent += spent
	s.maxCPUTimeSpent = max(s.maxCPUTimeSpent, spent)
	s.ticked.Logf(s.world.Game.CurrentTick, "cpu=%s total=%s real=%s micro_ticks=%d",
		spent, s.cpuTimeSpent, time.Since(s.started), s.ctx.UsedMicroTicks)
}

func (s *Strategy) role(robotID int) Role {
	for _, r := range s.roles {
		if r.RobotID == robotID {
			return r
		}
	}
	return Role{Kind: Forward, RobotID: robotID}
}

func (s *Strategy) assignRoles() {
	tick := s.world.Game.CurrentTick
	current := 0
	for _, r := range s.roles {
		current += r.Score(s.world)
	}
	proposed := s.selector.Roles(s.world)
	score := 0
	for _, r := range proposed {
		if r.CanQuit(s.world, s.cfg) {
			score += r.Score(s.world)
		}
	}
	switch {
	case slices.Equal(s.roles, proposed):
		s.ticked.Logf(tick, "use roles %v", s.roles)
	case len(s.roles) == 0 || score > current+s.cfg.RobotRoleChangeGap:
		s.ticked.Logf(tick, "assign roles %v with total score %d (%d)", proposed, score, score-current)
		s.roles = proposed
	default:
		s.ticked.Logf(tick, "reject roles %v with total score %d (%d)", proposed, score, score-current)
	}
}

func (s *Strategy) setPriority() {
	s.priority = s.selector.Priority(s.world, s.orders)
}

// predictOpponent plans for the opponent nearest to the ball as if it were
// mine and mirrors the result back.
func (s *Strategy) predictOpponent() orders.Set {
	w := s.world
	ball := w.Game.Ball.Position()
	var (
		opponent types.Robot
		found    bool
	)
	for _, r := range w.Game.Robots {
		if r.IsTeammate {
			continue
		}
		if !found || geom.AsScore(r.Position().Distance(ball)) < geom.AsScore(opponent.Position().Distance(ball)) {
			opponent, found = r, true
		}
	}
	if !found {
		return nil
	}
	order := orders.TryPlay(opponent.Opposite(), w.Rules, w.Game.Opposite(), nil, math.Inf(1), s.ctx)
	return orders.Set{order.Opposite()}
}

func (s *Strategy) giveOrders() {
	w := s.world
	hasOrders := len(s.orders) > 0
	opponents := s.predictOpponent()

	type candidate struct {
		rank  int
		order orders.Order
	}
	candidates := make([]candidate, 0, len(s.priority))
	for n, robotID := range s.priority {
		robot, ok := w.Robot(robotID)
		if !ok {
			continue
		}
		role := s.role(robotID)
		maxZ := role.MaxZ(w, s.cfg)
		order := orders.TryPlay(robot, w.Rules, w.Game, opponents, maxZ, s.ctx)
		if orders.IsIdle(order) {
			order = s.defend(robot)
		}
		rank := -order.Score()
		if hasOrders {
			rank = -(order.Score() - n*s.cfg.RobotPriorityChangeGap)
		}
		candidates = append(candidates, candidate{rank: rank, order: order})
	}
	slices.SortStableFunc(candidates, func(a, b candidate) int { return a.rank - b.rank })

	all := append(orders.Set(nil), opponents...)
	for _, c := range candidates {
		all = append(all, c.order)
	}
	// The best order stays; everyone after it plans around those before.
	for i := len(opponents) + 1; i < len(all); i++ {
		robot, _ := w.Robot(all[i].RobotID())
		role := s.role(robot.ID)
		maxZ := role.MaxZ(w, s.cfg)
		order := orders.TryPlay(robot, w.Rules, w.Game, all[:i], maxZ, s.ctx)
		if orders.IsIdle(order) {
			if role.Kind == Forward {
				order = s.support(robot, maxZ)
			} else {
				order = s.defend(robot)
			}
		}
		all[i] = order
	}
	s.orders = all[len(opponents):]
}

// defend refills nitro while the ball is far from the goal and otherwise
// guards the goal.
func (s *Strategy) defend(robot types.Robot) orders.Order {
	w := s.world
	rules := w.Rules
	ballIsFar := w.Game.Ball.Position().Distance(rules.GoalkeeperPosition()) > rules.Arena.Depth/2+rules.BallRadius
	if robot.NitroAmount < rules.StartNitroAmount && ballIsFar {
		order := orders.TryTakeNitroPack(s.ids.Next(), robot, rules, w.Game, GoalkeeperMaxZ(rules, s.cfg))
		if !orders.IsIdle(order) {
			return order
		}
	}
	return orders.NewWalkToGoalkeeperPosition(s.ids.Next(), robot, rules, w.Game)
}

// support keeps a forward without a play busy.
func (s *Strategy) support(robot types.Robot, maxZ float64) orders.Order {
	w := s.world
	if order := orders.TryTakeNitroPack(s.ids.Next(), robot, w.Rules, w.Game, maxZ); !orders.IsIdle(order) {
		return order
	}
	if order := orders.TryPushOpponent(s.ids.Next(), robot, w.Rules, w.Game, maxZ); !orders.IsIdle(order) {
		return order
	}
	return s.defend(robot)
}

func (s *Strategy) applyAction(action *types.Action) {
	w := s.world
	if order, ok := s.orders.Find(w.Me.ID); ok {
		*action = order.Action()
		s.ticked.Logf(w.Game.CurrentTick, "[%d] <%d> apply order %s %+v", w.Me.ID, order.ID(), order.Name(), *action)
		return
	}
	order := orders.NewWalkToGoalkeeperPosition(0, w.Me, w.Rules, w.Game)
	*action = order.Action()
	s.ticked.Logf(w.Game.CurrentTick, "[%d] apply default action %+v", w.Me.ID, *action)
}

func (s *Strategy) recordStats() {
	if len(s.orders) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
	defer cancel()
	for _, o := range s.orders {
		st := o.Stats()
		st.RunID = s.runID
		st.OrderScore = o.Score()
		if err := s.sink.Record(ctx, st); err != nil {
			s.log.Printf("record stats tick=%d robot=%d: %v", st.CurrentTick, st.RobotID, err)
		}
	}
}
