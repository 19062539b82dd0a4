// Package config holds the planner tuning knobs. Values come from the tuned
// defaults, optionally overlaid by a JSON file and CODEBALL_* variables.
package config

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/pkg/errors"
)

// ErrInvalid is returned by Validate and Load for unusable settings.
var ErrInvalid = errors.New("config: invalid")

type Config struct {
	MaxTicks                        int     `json:"max_ticks"`
	NearMicroTicksPerTick           int     `json:"near_micro_ticks_per_tick"`
	FarMicroTicksPerTick            int     `json:"far_micro_ticks_per_tick"`
	MaxObservations                 int     `json:"max_observations"`
	TicksPerSteps                   []int   `json:"ticks_per_steps"`
	MaxIterations                   int     `json:"max_iterations"`
	MaxPathMicroTicks               int     `json:"max_path_micro_ticks"`
	MaxPlanMicroTicks               int     `json:"max_plan_micro_ticks"`
	MaxActMicroTicks                int     `json:"max_act_micro_ticks"`
	RobotPriorityChangeGap          int     `json:"robot_priority_change_gap"`
	RobotRoleChangeGap              int     `json:"robot_role_change_gap"`
	BallGoalDistanceScoreWeight     float64 `json:"ball_goal_distance_score_weight"`
	BallGoalDirectionScoreWeight    float64 `json:"ball_goal_direction_score_weight"`
	MyTimeToBallScoreWeight         float64 `json:"my_time_to_ball_score_weight"`
	TimeToGoalScoreWeight           float64 `json:"time_to_goal_score_weight"`
	OpponentTimeToBallPenaltyWeight float64 `json:"opponent_time_to_ball_penalty_weight"`
	NitroAmountScoreWeight          float64 `json:"nitro_amount_score_weight"`
	GoalkeeperMaxZFactor            float64 `json:"goalkeeper_max_z_factor"`
	VerboseLog                      bool    `json:"verbose_log"`
}

// Default returns the tuned settings. Bigger teams get fewer iterations since
// every teammate plans within the same tick.
func Default(teamSize int) Config {
	maxIterations := 100
	if teamSize <= 2 {
		maxIterations = 150
	}
	return Config{
		MaxTicks:                        100,
		NearMicroTicksPerTick:           25,
		FarMicroTicksPerTick:            3,
		MaxObservations:                 6,
		TicksPerSteps:                   []int{1, 3, 4, 8},
		MaxIterations:                   maxIterations,
		MaxPathMicroTicks:               1100,
		MaxPlanMicroTicks:               40000,
		MaxActMicroTicks:                15000,
		RobotPriorityChangeGap:          10,
		RobotRoleChangeGap:              0,
		BallGoalDistanceScoreWeight:     1.2360679748635974,
		BallGoalDirectionScoreWeight:    0.0016993994285499695,
		MyTimeToBallScoreWeight:         0.5000113249625928,
		TimeToGoalScoreWeight:           0.24999619213943386,
		OpponentTimeToBallPenaltyWeight: 0.09999078428632137,
		NitroAmountScoreWeight:          0.10000021192195667,
		GoalkeeperMaxZFactor:            1.6666666666666667,
	}
}

// Load starts from Default(teamSize), overlays the JSON file at path when
// path is not empty and applies environment overrides last.
func Load(path string, teamSize int) (Config, error) {
	cfg := Default(teamSize)
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrapf(err, "read config %s", path)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrapf(err, "parse config %s", path)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type lookupFunc func(key string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	ints := map[string]*int{
		"CODEBALL_MAX_TICKS":                 &c.MaxTicks,
		"CODEBALL_NEAR_MICRO_TICKS_PER_TICK": &c.NearMicroTicksPerTick,
		"CODEBALL_FAR_MICRO_TICKS_PER_TICK":  &c.FarMicroTicksPerTick,
		"CODEBALL_MAX_OBSERVATIONS":          &c.MaxObservations,
		"CODEBALL_MAX_ITERATIONS":            &c.MaxIterations,
		"CODEBALL_MAX_PATH_MICRO_TICKS":      &c.MaxPathMicroTicks,
		"CODEBALL_MAX_PLAN_MICRO_TICKS":      &c.MaxPlanMicroTicks,
		"CODEBALL_MAX_ACT_MICRO_TICKS":       &c.MaxActMicroTicks,
		"CODEBALL_ROBOT_PRIORITY_CHANGE_GAP": &c.RobotPriorityChangeGap,
		"CODEBALL_ROBOT_ROLE_CHANGE_GAP":     &c.RobotRoleChangeGap,
	}
	for key, dst := range ints {
		v, ok := lookup(key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(ErrInvalid, "%s=%q", key, v)
		}
		*dst = n
	}
	if v, ok := lookup("CODEBALL_VERBOSE_LOG"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrapf(ErrInvalid, "CODEBALL_VERBOSE_LOG=%q", v)
		}
		c.VerboseLog = b
	}
	return nil
}

// Validate rejects budgets the planner cannot run with.
func (c Config) Validate() error {
	checks := []struct {
		name  string
		value int
	}{
		{"max_ticks", c.MaxTicks},
		{"near_micro_ticks_per_tick", c.NearMicroTicksPerTick},
		{"far_micro_ticks_per_tick", c.FarMicroTicksPerTick},
		{"max_observations", c.MaxObservations},
		{"max_iterations", c.MaxIterations},
		{"max_path_micro_ticks", c.MaxPathMicroTicks},
		{"max_plan_micro_ticks", c.MaxPlanMicroTicks},
		{"max_act_micro_ticks", c.MaxActMicroTicks},
	}
	for _, check := range checks {
		if check.value <= 0 {
			return errors.Wrapf(ErrInvalid, "%s must be positive, got %d", check.name, check.value)
		}
	}
	if len(c.TicksPerSteps) == 0 {
		return errors.Wrap(ErrInvalid, "ticks_per_steps must not be empty")
	}
	for _, v := range c.TicksPerSteps {
		if v <= 0 {
			return errors.Wrapf(ErrInvalid, "ticks_per_steps must be positive, got %d", v)
		}
	}
	if c.RobotPriorityChangeGap < 0 || c.RobotRoleChangeGap < 0 {
		return errors.Wrap(ErrInvalid, "change gaps must not be negative")
	}
	return nil
}

// TicksPerStep is the observation step length for the given observation number.
func (c Config) TicksPerStep(number int) int {
	if number >= len(c.TicksPerSteps) {
		return c.TicksPerSteps[len(c.TicksPerSteps)-1]
	}
	return c.TicksPerSteps[number]
}
