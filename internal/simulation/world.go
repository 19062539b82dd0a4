package simulation

import (
	"sync"

	"github.com/elsid/CodeBall-sub000/internal/geom"
	"github.com/elsid/CodeBall-sub000/internal/random"
	"github.com/elsid/CodeBall-sub000/internal/shared/types"
)

// Match is the authoritative world of a locally hosted game. It runs the
// full-fidelity Simulator and owns scoring and kickoff resets.
type Match struct {
	mu             sync.RWMutex
	id             string
	rules          types.Rules
	sim            *Simulator
	rng            *random.XorShift
	players        []types.Player
	actions        map[int]types.Action
	tick           int
	resetTicksLeft int
}

// NewMatch creates a match at the kickoff position.
func NewMatch(matchID string, rules types.Rules) *Match {
	m := &Match{
		id:      matchID,
		rules:   rules,
		rng:     random.FromGameSeed(rules.Seed),
		actions: make(map[int]types.Action, 2*rules.TeamSize),
	}
	game := types.KickoffGame(rules)
	m.players = game.Players
	m.sim = New(rules, game, game.Robots[0].ID)
	return m
}

func (m *Match) ID() string {
	return m.id
}

func (m *Match) Rules() types.Rules {
	return m.rules
}

// ApplyAction stores the action a robot performs on the next tick.
func (m *Match) ApplyAction(robotID int, action types.Action) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actions[robotID] = clampAction(action, m.rules)
}

// Tick advances the match by one game tick.
func (m *Match) Tick() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, robot := range m.sim.Robots() {
		m.sim.SetAction(robot.ID(), m.actions[robot.ID()])
	}
	clear(m.actions)

	m.sim.Tick(m.rules.TickTimeInterval(), m.rules.MicroticksPerTick, m.rng)
	m.tick++

	if m.resetTicksLeft > 0 {
		m.resetTicksLeft--
		if m.resetTicksLeft == 0 {
			m.resetKickoff()
		}
		return
	}
	m.detectGoal()
}

// Snapshot returns a deep copy of the current state for safe replication.
func (m *Match) Snapshot() types.Game {
	m.mu.RLock()
	defer m.mu.RUnlock()

	game := m.sim.Game()
	game.CurrentTick = m.tick
	game.Players = append([]types.Player(nil), m.players...)
	return game
}

// IsResetting reports whether the match is in the pause after a goal.
func (m *Match) IsResetting() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.resetTicksLeft > 0
}

func (m *Match) CurrentTick() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tick
}

// IsFinished reports whether the tick limit has been reached.
func (m *Match) IsFinished() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rules.MaxTickCount > 0 && m.tick >= m.rules.MaxTickCount
}

func (m *Match) detectGoal() {
	switch m.sim.Score() {
	case 1:
		m.players[0].Score++
	case -1:
		m.players[1].Score++
	default:
		return
	}
	m.resetTicksLeft = m.rules.ResetTicks
	if m.resetTicksLeft == 0 {
		m.resetKickoff()
	}
}

func (m *Match) resetKickoff() {
	game := types.KickoffGame(m.rules)
	game.CurrentTick = m.tick
	game.Players = append([]types.Player(nil), m.players...)
	m.sim = New(m.rules, game, game.Robots[0].ID)
}

func clampAction(action types.Action, rules types.Rules) types.Action {
	action.JumpSpeed = geom.Clamp(action.JumpSpeed, 0, rules.RobotMaxJumpSpeed)
	action.SetTargetVelocity(action.TargetVelocity().Clamp(rules.MaxEntitySpeed))
	return action
}
