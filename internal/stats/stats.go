// Package stats records what the planner did for every Play order and ships
// the records to a store: in memory, sqlite or the telemetry service.
package stats

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("stats: not found")

// Stats describes one planner search.
type Stats struct {
	RunID             string   `json:"run_id"`
	PlayerID          int      `json:"player_id"`
	RobotID           int      `json:"robot_id"`
	CurrentTick       int      `json:"current_tick"`
	Order             string   `json:"order"`
	MicroTicksToJump  int      `json:"micro_ticks_to_jump"`
	MicroTicksToWatch int      `json:"micro_ticks_to_watch"`
	MicroTicksToEnd   int      `json:"micro_ticks_to_end"`
	TimeToJump        float64  `json:"time_to_jump"`
	TimeToWatch       float64  `json:"time_to_watch"`
	TimeToEnd         float64  `json:"time_to_end"`
	TimeToScore       *float64 `json:"time_to_score"`
	Iteration         int      `json:"iteration"`
	TotalIterations   int      `json:"total_iterations"`
	Score             int      `json:"score"`
	OrderScore        int      `json:"order_score"`
	JumpSimulation    bool     `json:"jump_simulation"`
	FarJumpSimulation bool     `json:"far_jump_simulation"`
	ActionScore       int      `json:"action_score"`
	TotalMicroTicks   int      `json:"total_micro_ticks"`
	CurrentStep       int      `json:"current_step"`
	Path              []string `json:"path"`
}

func New(playerID, robotID, currentTick int, order string) Stats {
	return Stats{
		PlayerID:    playerID,
		RobotID:     robotID,
		CurrentTick: currentTick,
		Order:       order,
	}
}

// Clone returns a copy that shares nothing with s.
func (s Stats) Clone() Stats {
	out := s
	out.Path = append([]string(nil), s.Path...)
	if s.TimeToScore != nil {
		v := *s.TimeToScore
		out.TimeToScore = &v
	}
	return out
}

// Update carries the search progress of a sibling branch into s.
func (s *Stats) Update(other Stats) {
	s.Path = append([]string(nil), other.Path...)
	s.Iteration = other.Iteration
	s.TotalMicroTicks = other.TotalMicroTicks
	s.CurrentStep = other.CurrentStep
}

// NewRunID identifies one bot process in the stored records.
func NewRunID() string {
	return uuid.NewString()
}

// Sink accepts records.
type Sink interface {
	Record(ctx context.Context, s Stats) error
}

// RunSummary aggregates the records of one run.
type RunSummary struct {
	RunID     string  `json:"run_id"`
	Count     int     `json:"count"`
	MeanScore float64 `json:"mean_score"`
	LastTick  int     `json:"last_tick"`
}

// Store is a Sink that can be queried.
type Store interface {
	Sink
	List(ctx context.Context, runID string, limit int) ([]Stats, error)
	Runs(ctx context.Context) ([]RunSummary, error)
	Close() error
}

// Discard drops every record.
type Discard struct{}

func (Discard) Record(context.Context, Stats) error { return nil }
