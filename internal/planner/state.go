package planner

import "github.com/elsid/CodeBall-sub000/internal/simulation"

type StateKind int

const (
	StateInitial StateKind = iota
	StateObservedBall
	StateObservedRobot
	StateForkedBall
	StateForkedRobot
	StateWalked
	StateJumped
	StateFarJumped
	StateHit
	StateEnd
)

func (k StateKind) String() string {
	switch k {
	case StateInitial:
		return "Initial"
	case StateObservedBall:
		return "ObservedBall"
	case StateObservedRobot:
		return "ObservedRobot"
	case StateForkedBall:
		return "ForkedBall"
	case StateForkedRobot:
		return "ForkedRobot"
	case StateWalked:
		return "Walked"
	case StateJumped:
		return "Jumped"
	case StateFarJumped:
		return "FarJumped"
	case StateHit:
		return "Hit"
	case StateEnd:
		return "End"
	default:
		return "Unknown"
	}
}

// State is a node of the plan search.
type State struct {
	id    int
	kind  StateKind
	score int
	plan  Plan

	// number counts observations made so far.
	number int
	// robotID is the opponent an ObservedRobot or ForkedRobot state tracks.
	robotID int
	// initialPlan is the plan before observing; forks restart from it.
	initialPlan *Plan
	// observed is the simulator at the observed instant of a fork.
	observed *simulation.Simulator
}

func (s *State) ID() int         { return s.id }
func (s *State) Kind() StateKind { return s.kind }
func (s *State) Score() int      { return s.score }
func (s *State) Plan() *Plan     { return &s.plan }
func (s *State) String() string  { return s.kind.String() }

// IsFinal reports a finished plan that has something to act on.
func (s *State) IsFinal() bool {
	return s.kind == StateEnd && len(s.plan.Actions) > 0
}

// InitialPlan is the plan the observations started from.
func (s *State) InitialPlan() *Plan {
	if s.initialPlan != nil {
		return s.initialPlan
	}
	return &s.plan
}

func newState(id int, kind StateKind, plan Plan) *State {
	return &State{id: id, kind: kind, score: plan.Score(), plan: plan}
}

func newInitial(id int, plan Plan) *State {
	return &State{id: id, kind: StateInitial, plan: plan}
}

func newObserved(id int, kind StateKind, number, robotID int, plan Plan, initial *Plan) *State {
	return &State{id: id, kind: kind, number: number, robotID: robotID, plan: plan, initialPlan: initial}
}

func newForked(id int, kind StateKind, robotID int, plan Plan, observed *simulation.Simulator) *State {
	return &State{id: id, kind: kind, score: plan.Score(), robotID: robotID, plan: plan, observed: observed}
}
