package strategy

import (
	"github.com/elsid/CodeBall-sub000/internal/shared/types"
)

// World is the last authoritative state seen by the strategy.
type World struct {
	Me    types.Robot
	Rules types.Rules
	Game  types.Game

	resetTicksLeft int
}

func NewWorld(me types.Robot, rules types.Rules, game types.Game) *World {
	return &World{Me: me, Rules: rules, Game: game.Clone()}
}

// Update takes a new tick. A score change starts the kickoff pause.
func (w *World) Update(me types.Robot, game types.Game) {
	if w.Game.TotalScore() < game.TotalScore() {
		w.resetTicksLeft = w.Rules.ResetTicks
	}
	w.Me = me
	w.Game = game.Clone()
	if w.resetTicksLeft > 0 {
		w.resetTicksLeft--
	}
}

// UpdateMe switches to another teammate within the same tick.
func (w *World) UpdateMe(me types.Robot) {
	w.Me = me
}

func (w *World) IsResetTicks() bool {
	return w.resetTicksLeft > 0
}

func (w *World) Robot(id int) (types.Robot, bool) {
	return w.Game.Robot(id)
}

func (w *World) NitroPack(id int) (types.NitroPack, bool) {
	for _, p := range w.Game.NitroPacks {
		if p.ID == id {
			return p, true
		}
	}
	return types.NitroPack{}, false
}

// Teammates returns my robots in the order the host sent them.
func (w *World) Teammates() []types.Robot {
	out := make([]types.Robot, 0, w.Rules.TeamSize)
	for _, r := range w.Game.Robots {
		if r.IsTeammate {
			out = append(out, r)
		}
	}
	return out
}
