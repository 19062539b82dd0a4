package main

import (
	"sync"

	"github.com/elsid/CodeBall-sub000/internal/shared/logger"
	"github.com/elsid/CodeBall-sub000/internal/shared/types"
	"github.com/elsid/CodeBall-sub000/internal/strategy"
	"github.com/elsid/CodeBall-sub000/internal/transport"
)

// side plays for one player. The second player sees the mirrored game so
// that both strategies defend the negative z goal.
type side struct {
	playerID int
	mirrored bool
	opts     strategy.Options

	mu       sync.Mutex
	strategy *strategy.Strategy
	bot      *transport.Host
}

func newSide(playerID int, mirrored bool, opts strategy.Options) *side {
	return &side{playerID: playerID, mirrored: mirrored, opts: opts}
}

func (s *side) attach(host *transport.Host) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bot != nil {
		_ = s.bot.Close()
	}
	s.bot = host
}

func (s *side) close(log *logger.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bot != nil {
		_ = s.bot.Close()
		s.bot = nil
	}
	if s.strategy != nil {
		total, longest := s.strategy.CPUTime()
		log.Printf("player=%d micro_ticks=%d cpu=%s max_cpu=%s", s.playerID, s.strategy.UsedMicroTicks(), total, longest)
	}
}

// act returns the actions of the side's robots in host coordinates.
func (s *side) act(rules types.Rules, game types.Game, log *logger.Logger) map[int]types.Action {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mirrored {
		game = game.Opposite()
	}
	if s.bot != nil {
		actions, err := s.askBot(game)
		if err == nil {
			return actions
		}
		log.Printf("player=%d bot dropped: %v", s.playerID, err)
		_ = s.bot.Close()
		s.bot = nil
	}

	actions := make(map[int]types.Action, rules.TeamSize)
	for _, robot := range game.Robots {
		if !robot.IsTeammate {
			continue
		}
		if s.strategy == nil {
			s.strategy = strategy.New(robot, rules, game, s.opts)
		}
		var action types.Action
		s.strategy.Act(robot, rules, game, &action)
		if s.mirrored {
			action = action.Opposite()
		}
		actions[robot.ID] = action
	}
	return actions
}

func (s *side) askBot(game types.Game) (map[int]types.Action, error) {
	if err := s.bot.WriteGame(game); err != nil {
		return nil, err
	}
	actions, _, err := s.bot.ReadActions()
	if err != nil {
		return nil, err
	}
	if s.mirrored {
		for id, a := range actions {
			actions[id] = a.Opposite()
		}
	}
	return actions, nil
}
