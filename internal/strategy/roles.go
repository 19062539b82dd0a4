package strategy

import (
	"fmt"
	"math"
	"slices"

	"github.com/elsid/CodeBall-sub000/internal/config"
	"github.com/elsid/CodeBall-sub000/internal/geom"
	"github.com/elsid/CodeBall-sub000/internal/orders"
	"github.com/elsid/CodeBall-sub000/internal/shared/types"
)

type RoleKind int

const (
	Forward RoleKind = iota
	Goalkeeper
)

func (k RoleKind) String() string {
	switch k {
	case Forward:
		return "forward"
	case Goalkeeper:
		return "goalkeeper"
	}
	return fmt.Sprintf("role(%d)", int(k))
}

// Role binds a robot to what it is responsible for.
type Role struct {
	Kind    RoleKind
	RobotID int
}

func (r Role) String() string {
	return fmt.Sprintf("%s(%d)", r.Kind, r.RobotID)
}

// Score tells how well the robot fits the role right now.
func (r Role) Score(w *World) int {
	robot, ok := w.Robot(r.RobotID)
	if !ok {
		return 0
	}
	maxDistance := w.Rules.Arena.MaxDistance()
	switch r.Kind {
	case Goalkeeper:
		toMyGoal := 1 - w.Rules.GoalTarget().Opposite().Distance(robot.Position())/maxDistance
		return geom.AsScore(toMyGoal)
	default:
		toGoal := 1 - w.Rules.GoalTarget().Distance(robot.Position())/maxDistance
		toBall := 1 - w.Game.Ball.Position().Distance(robot.Position())/maxDistance
		return geom.AsScore((toGoal + toBall) / 2)
	}
}

// MaxZ limits how far forward the robot may plan to meet the ball.
func (r Role) MaxZ(w *World, cfg *config.Config) float64 {
	if r.Kind == Goalkeeper {
		return GoalkeeperMaxZ(w.Rules, cfg)
	}
	return math.Inf(1)
}

// CanQuit reports whether someone else can take over the role. A goalkeeper
// leaves only when another teammate is closer to the goal and inside the
// goalkeeper zone.
func (r Role) CanQuit(w *World, cfg *config.Config) bool {
	if r.Kind != Goalkeeper {
		return true
	}
	robot, ok := w.Robot(r.RobotID)
	if !ok {
		return true
	}
	maxZ := GoalkeeperMaxZ(w.Rules, cfg)
	for _, v := range w.Game.Robots {
		if v.ID != r.RobotID && v.IsTeammate && v.Z < maxZ && v.Z < robot.Z {
			return true
		}
	}
	return false
}

// GoalkeeperMaxZ is the front line of the goalkeeper zone.
func GoalkeeperMaxZ(rules types.Rules, cfg *config.Config) float64 {
	halfDepth := rules.Arena.Depth / 2
	return -halfDepth + halfDepth/cfg.GoalkeeperMaxZFactor
}

// Selector decides roles and the order in which teammates plan.
type Selector interface {
	Roles(w *World) []Role
	// Priority lists teammate ids, the first plans first. previous holds the
	// orders of the last tick sorted by their final rank.
	Priority(w *World, previous orders.Set) []int
}

// DefaultSelector sends the robot closest to the ball forward and the one
// closest to my goal among the rest into the goal. Any other robot is a
// forward too.
type DefaultSelector struct{}

func (DefaultSelector) Roles(w *World) []Role {
	teammates := w.Teammates()
	if len(teammates) == 0 {
		return nil
	}
	ball := w.Game.Ball.Position()
	forward := teammates[0]
	for _, r := range teammates[1:] {
		if geom.AsScore(r.Position().Distance(ball)) < geom.AsScore(forward.Position().Distance(ball)) {
			forward = r
		}
	}
	goalkeeperID := 0
	myGoal := w.Rules.Arena.DefendTarget()
	best := math.Inf(1)
	for _, r := range teammates {
		if r.ID == forward.ID {
			continue
		}
		if d := r.Position().Distance(myGoal); d < best {
			goalkeeperID, best = r.ID, d
		}
	}
	roles := make([]Role, 0, len(teammates))
	for _, r := range teammates {
		kind := Forward
		if r.ID == goalkeeperID {
			kind = Goalkeeper
		}
		roles = append(roles, Role{Kind: kind, RobotID: r.ID})
	}
	slices.SortFunc(roles, func(a, b Role) int { return a.RobotID - b.RobotID })
	return roles
}

// Priority starts with the robots nearest to the ball and then keeps the
// rank the orders got on the previous tick.
func (DefaultSelector) Priority(w *World, previous orders.Set) []int {
	teammates := w.Teammates()
	if len(previous) == 0 {
		ball := w.Game.Ball.Position()
		slices.SortStableFunc(teammates, func(a, b types.Robot) int {
			da, db := geom.AsScore(a.Position().Distance(ball)), geom.AsScore(b.Position().Distance(ball))
			if da != db {
				return da - db
			}
			return a.ID - b.ID
		})
		ids := make([]int, len(teammates))
		for i, r := range teammates {
			ids[i] = r.ID
		}
		return ids
	}
	ids := make([]int, 0, len(teammates))
	for _, o := range previous {
		if _, ok := w.Robot(o.RobotID()); ok {
			ids = append(ids, o.RobotID())
		}
	}
	for _, r := range teammates {
		if !slices.Contains(ids, r.ID) {
			ids = append(ids, r.ID)
		}
	}
	return ids
}
