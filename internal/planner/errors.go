package planner

import (
	"fmt"

	"github.com/pkg/errors"
)

// Scenario outcomes that steer the search. They never leave the package.
var (
	// ErrUseBall means an observation found a playable ball.
	ErrUseBall = errors.New("planner: use ball")
	// ErrPushRobot means an observation found an opponent worth pushing.
	ErrPushRobot = errors.New("planner: push robot")
	// ErrBudget means the scenario ran out of micro ticks.
	ErrBudget = errors.New("planner: micro tick budget exhausted")
	// ErrNoTarget means the scenario could not reach what it aimed at.
	ErrNoTarget = errors.New("planner: no target")
)

// PushRobotError carries the opponent found by an observation.
type PushRobotError struct {
	RobotID int
}

func (e *PushRobotError) Error() string {
	return fmt.Sprintf("%s: robot %d", ErrPushRobot, e.RobotID)
}

func (e *PushRobotError) Is(target error) bool {
	return target == ErrPushRobot
}
