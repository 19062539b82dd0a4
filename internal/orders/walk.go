package orders

import (
	"math"

	"github.com/elsid/CodeBall-sub000/internal/geom"
	"github.com/elsid/CodeBall-sub000/internal/shared/types"
	"github.com/elsid/CodeBall-sub000/internal/stats"
)

// steady repeats one action from the tick it was made on.
type steady struct {
	base
	action types.Action
	target geom.Vec3
}

func (o steady) Score() int           { return 0 }
func (o steady) Action() types.Action { return o.action }
func (o steady) Target() geom.Vec3    { return o.target }

func (o steady) ActionAt(tick int) (types.Action, bool) {
	return o.action, tick == o.currentTick
}

func (o steady) opposite() steady {
	o.action = o.action.Opposite()
	o.target = o.target.Opposite()
	return o
}

// WalkToGoalkeeperPosition runs back to guard the goal.
type WalkToGoalkeeperPosition struct {
	steady
	playerID int
}

// TakeNitroPack runs over an available nitro pack.
type TakeNitroPack struct {
	steady
	playerID int
	packID   int
}

// PushOpponent runs into an opponent robot.
type PushOpponent struct {
	steady
	playerID   int
	opponentID int
}

func (WalkToGoalkeeperPosition) Name() string { return "walk_to_goalkeeper_position" }
func (TakeNitroPack) Name() string            { return "take_nitro_pack" }
func (PushOpponent) Name() string             { return "push_opponent" }

func (o WalkToGoalkeeperPosition) Opposite() Order {
	o.steady = o.steady.opposite()
	return o
}

func (o TakeNitroPack) Opposite() Order {
	o.steady = o.steady.opposite()
	return o
}

func (o PushOpponent) Opposite() Order {
	o.steady = o.steady.opposite()
	return o
}

func (o WalkToGoalkeeperPosition) Stats() stats.Stats {
	return stats.New(o.playerID, o.robotID, o.currentTick, o.Name())
}

func (o TakeNitroPack) Stats() stats.Stats {
	return stats.New(o.playerID, o.robotID, o.currentTick, o.Name())
}

func (o PushOpponent) Stats() stats.Stats {
	return stats.New(o.playerID, o.robotID, o.currentTick, o.Name())
}

func (o TakeNitroPack) PackID() int    { return o.packID }
func (o PushOpponent) OpponentID() int { return o.opponentID }

// walkVelocity runs at full speed and slows down linearly within the
// distance needed to stop.
func walkVelocity(rules types.Rules, from, to geom.Vec3) geom.Vec3 {
	toTarget := to.Sub(from).WithY(0)
	if toTarget.Norm() > rules.MinRunningDistance() {
		return toTarget.Normalized().Mul(rules.RobotMaxGroundSpeed)
	}
	return toTarget.Mul(rules.RobotMaxGroundSpeed / rules.MinRunningDistance())
}

// NewWalkToGoalkeeperPosition moves the robot in front of its goal, shifted
// toward the ball along the goal line.
func NewWalkToGoalkeeperPosition(id int, robot types.Robot, rules types.Rules, game types.Game) WalkToGoalkeeperPosition {
	target := rules.GoalkeeperPosition()
	halfGoal := rules.Arena.GoalWidth/2 - rules.Arena.GoalSideRadius - rules.RobotRadius
	target.X = geom.Clamp(game.Ball.X, -halfGoal, halfGoal)
	var action types.Action
	action.SetTargetVelocity(walkVelocity(rules, robot.Position(), target))
	return WalkToGoalkeeperPosition{
		steady: steady{
			base:   base{id: id, robotID: robot.ID, currentTick: game.CurrentTick},
			action: action,
			target: target,
		},
		playerID: robot.PlayerID,
	}
}

// TryTakeNitroPack heads to the nearest available pack below maxZ.
func TryTakeNitroPack(id int, robot types.Robot, rules types.Rules, game types.Game, maxZ float64) Order {
	if robot.NitroAmount >= rules.MaxNitroAmount {
		return NewIdle(id, robot.ID, game.CurrentTick)
	}
	var (
		pack     types.NitroPack
		distance = math.Inf(1)
	)
	for _, p := range game.NitroPacks {
		if p.RespawnTicks != nil || p.Z >= maxZ {
			continue
		}
		if d := p.Position().Distance(robot.Position()); d < distance {
			pack, distance = p, d
		}
	}
	if math.IsInf(distance, 1) {
		return NewIdle(id, robot.ID, game.CurrentTick)
	}
	target := pack.Position().WithY(rules.RobotRadius)
	var action types.Action
	if direction, ok := target.Sub(robot.Position()).WithY(0).Direction(); ok {
		action.SetTargetVelocity(direction.Mul(rules.RobotMaxGroundSpeed))
	}
	return TakeNitroPack{
		steady: steady{
			base:   base{id: id, robotID: robot.ID, currentTick: game.CurrentTick},
			action: action,
			target: target,
		},
		playerID: robot.PlayerID,
		packID:   pack.ID,
	}
}

// TryPushOpponent runs into the opponent closest to the ball among those
// near both the robot and the ball below maxZ.
func TryPushOpponent(id int, robot types.Robot, rules types.Rules, game types.Game, maxZ float64) Order {
	limit := rules.Arena.Depth / 8
	ball := game.Ball.Position()
	var (
		opponent types.Robot
		distance = math.Inf(1)
	)
	for _, r := range game.Robots {
		if r.IsTeammate || r.Z >= maxZ {
			continue
		}
		toBall := r.Position().Distance(ball)
		if toBall >= limit || r.Position().Distance(robot.Position()) >= limit {
			continue
		}
		if toBall < distance {
			opponent, distance = r, toBall
		}
	}
	if math.IsInf(distance, 1) {
		return NewIdle(id, robot.ID, game.CurrentTick)
	}
	var action types.Action
	toOpponent := opponent.Position().Sub(robot.Position())
	if direction, ok := toOpponent.WithY(0).Direction(); ok {
		action.SetTargetVelocity(direction.Mul(rules.RobotMaxGroundSpeed))
	}
	action.UseNitro = robot.NitroAmount > 0 && !robot.Touch
	return PushOpponent{
		steady: steady{
			base:   base{id: id, robotID: robot.ID, currentTick: game.CurrentTick},
			action: action,
			target: opponent.Position(),
		},
		playerID:   robot.PlayerID,
		opponentID: opponent.ID,
	}
}
