// Package orders turns the world seen by one robot into the action it should
// take. Play runs the planner; the other orders are cheap fallbacks.
package orders

import (
	"github.com/elsid/CodeBall-sub000/internal/config"
	"github.com/elsid/CodeBall-sub000/internal/random"
	"github.com/elsid/CodeBall-sub000/internal/search"
	"github.com/elsid/CodeBall-sub000/internal/shared/logger"
	"github.com/elsid/CodeBall-sub000/internal/shared/types"
	"github.com/elsid/CodeBall-sub000/internal/stats"
)

// Order is a decision for one robot made at one game tick.
type Order interface {
	ID() int
	RobotID() int
	Name() string
	Score() int
	// Action is what the robot does at the tick the order was made.
	Action() types.Action
	// ActionAt reports the action committed for a game tick, if any.
	ActionAt(tick int) (types.Action, bool)
	Stats() stats.Stats
	// Opposite mirrors the order to the other side of the field.
	Opposite() Order
}

// Context is shared by all orders made within one strategy.
type Context struct {
	Config *config.Config
	Log    *logger.Ticked
	Rng    *random.XorShift
	IDs    *search.IDGenerator
	// MicroTicks is what plans may still spend; the strategy refills it every tick.
	MicroTicks int
	// UsedMicroTicks counts everything spent so far.
	UsedMicroTicks int
	RecordHistory  bool
}

// Refill adds one tick worth of plan budget, keeping at most one full plan.
func (c *Context) Refill() {
	c.MicroTicks = min(c.MicroTicks+c.Config.MaxActMicroTicks, c.Config.MaxPlanMicroTicks)
}

func (c *Context) spend(microTicks int) {
	c.MicroTicks = max(c.MicroTicks-microTicks, 0)
	c.UsedMicroTicks += microTicks
}

// Set is an ActionLookup over already given orders.
type Set []Order

func (s Set) ActionAt(robotID, tick int) (types.Action, bool) {
	for _, o := range s {
		if o.RobotID() == robotID {
			return o.ActionAt(tick)
		}
	}
	return types.Action{}, false
}

// Find returns the order of a robot.
func (s Set) Find(robotID int) (Order, bool) {
	for _, o := range s {
		if o.RobotID() == robotID {
			return o, true
		}
	}
	return nil, false
}

type base struct {
	id          int
	robotID     int
	currentTick int
}

func (b base) ID() int      { return b.id }
func (b base) RobotID() int { return b.robotID }

// Idle does nothing.
type Idle struct {
	base
}

func NewIdle(id, robotID, currentTick int) Idle {
	return Idle{base{id: id, robotID: robotID, currentTick: currentTick}}
}

func (Idle) Name() string                      { return "idle" }
func (Idle) Score() int                        { return 0 }
func (Idle) Action() types.Action              { return types.Action{} }
func (Idle) ActionAt(int) (types.Action, bool) { return types.Action{}, false }
func (o Idle) Opposite() Order                 { return o }
func (o Idle) Stats() stats.Stats {
	return stats.New(0, o.robotID, o.currentTick, o.Name())
}

// IsIdle reports an order that does not move the robot.
func IsIdle(o Order) bool {
	_, ok := o.(Idle)
	return o == nil || ok
}
