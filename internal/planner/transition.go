package planner

import (
	"fmt"

	"github.com/elsid/CodeBall-sub000/internal/geom"
)

// Transition is one move of the plan search. Forks branch the search without
// simulating; every other transition is a scenario that ticks the plan's
// simulator until its stop condition holds.
type Transition interface {
	Name() string
}

type scenario interface {
	Transition
	perform(ctx *scenarioContext) error
}

// Observe watches the world with the robot frozen until the ball becomes
// playable after WaitUntil below MaxZ.
type Observe struct {
	Number    int
	WaitUntil float64
	MaxZ      float64
}

// ForkBall restarts from the initial plan toward the observed ball.
type ForkBall struct{}

// ForkRobot restarts from the initial plan toward an observed opponent.
type ForkRobot struct {
	RobotID int
}

// WalkToPosition runs along the surface to Target at no more than MaxSpeed.
type WalkToPosition struct {
	Target   geom.Vec3
	MaxSpeed float64
}

// Jump takes off toward the ball.
type Jump struct {
	AllowNitro bool
}

// FarJump takes off toward the ball from where the robot stands.
type FarJump struct {
	AllowNitro bool
}

// WatchMeJump keeps the jump going until the ball is hit or the robot lands.
type WatchMeJump struct {
	JumpSpeed  float64
	AllowNitro bool
}

// WatchBallMove follows the ball to the horizon or a goal.
type WatchBallMove struct{}

// PushRobot runs into an opponent until UntilTime.
type PushRobot struct {
	RobotID    int
	AllowNitro bool
	UntilTime  float64
}

// TakeNitroPack runs over the pack at Target.
type TakeNitroPack struct {
	Target   geom.Vec3
	MaxSpeed float64
}

// WalkToBall runs along Direction until the ball is within jump reach.
type WalkToBall struct {
	Direction  geom.Vec3
	AllowNitro bool
}

// WalkToRobot runs along Direction until the robot is within jump reach.
type WalkToRobot struct {
	RobotID    int
	Direction  geom.Vec3
	AllowNitro bool
}

func (Observe) Name() string        { return "observe" }
func (ForkBall) Name() string       { return "fork_ball" }
func (ForkRobot) Name() string      { return "fork_robot" }
func (WalkToPosition) Name() string { return "walk_to_position" }
func (Jump) Name() string           { return "jump" }
func (FarJump) Name() string        { return "far_jump" }
func (WatchMeJump) Name() string    { return "watch_me_jump" }
func (WatchBallMove) Name() string  { return "watch_ball_move" }
func (PushRobot) Name() string      { return "push_robot" }
func (TakeNitroPack) Name() string  { return "take_nitro_pack" }
func (WalkToBall) Name() string     { return "walk_to_ball" }
func (WalkToRobot) Name() string    { return "walk_to_robot" }

func (t Observe) String() string {
	return fmt.Sprintf("observe(number=%d wait_until=%v max_z=%v)", t.Number, t.WaitUntil, t.MaxZ)
}

func (t WalkToPosition) String() string {
	return fmt.Sprintf("walk_to_position(target=%v max_speed=%v)", t.Target, t.MaxSpeed)
}

func (t PushRobot) String() string {
	return fmt.Sprintf("push_robot(robot_id=%d until=%v)", t.RobotID, t.UntilTime)
}

// Names lists transition names in order.
func Names(transitions []Transition) []string {
	out := make([]string, len(transitions))
	for i, t := range transitions {
		out[i] = t.Name()
	}
	return out
}
