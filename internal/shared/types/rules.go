package types

import (
	"math"

	"github.com/elsid/CodeBall-sub000/internal/arena"
	"github.com/elsid/CodeBall-sub000/internal/geom"
)

// Rules holds the per-match constants sent once by the host.
type Rules struct {
	MaxTickCount int         `json:"max_tick_count"`
	Arena        arena.Arena `json:"arena"`
	TeamSize     int         `json:"team_size"`
	Seed         int64       `json:"seed"`

	RobotMinRadius           float64 `json:"ROBOT_MIN_RADIUS"`
	RobotMaxRadius           float64 `json:"ROBOT_MAX_RADIUS"`
	RobotMaxJumpSpeed        float64 `json:"ROBOT_MAX_JUMP_SPEED"`
	RobotAcceleration        float64 `json:"ROBOT_ACCELERATION"`
	RobotNitroAcceleration   float64 `json:"ROBOT_NITRO_ACCELERATION"`
	RobotMaxGroundSpeed      float64 `json:"ROBOT_MAX_GROUND_SPEED"`
	RobotArenaE              float64 `json:"ROBOT_ARENA_E"`
	RobotRadius              float64 `json:"ROBOT_RADIUS"`
	RobotMass                float64 `json:"ROBOT_MASS"`
	TicksPerSecond           int     `json:"TICKS_PER_SECOND"`
	MicroticksPerTick        int     `json:"MICROTICKS_PER_TICK"`
	ResetTicks               int     `json:"RESET_TICKS"`
	BallArenaE               float64 `json:"BALL_ARENA_E"`
	BallRadius               float64 `json:"BALL_RADIUS"`
	BallMass                 float64 `json:"BALL_MASS"`
	MinHitE                  float64 `json:"MIN_HIT_E"`
	MaxHitE                  float64 `json:"MAX_HIT_E"`
	MaxEntitySpeed           float64 `json:"MAX_ENTITY_SPEED"`
	MaxNitroAmount           float64 `json:"MAX_NITRO_AMOUNT"`
	StartNitroAmount         float64 `json:"START_NITRO_AMOUNT"`
	NitroPointVelocityChange float64 `json:"NITRO_POINT_VELOCITY_CHANGE"`
	NitroPackX               float64 `json:"NITRO_PACK_X"`
	NitroPackY               float64 `json:"NITRO_PACK_Y"`
	NitroPackZ               float64 `json:"NITRO_PACK_Z"`
	NitroPackRadius          float64 `json:"NITRO_PACK_RADIUS"`
	NitroPackAmount          float64 `json:"NITRO_PACK_AMOUNT"`
	NitroPackRespawnTicks    int     `json:"NITRO_PACK_RESPAWN_TICKS"`
	Gravity                  float64 `json:"GRAVITY"`
}

// DefaultRules returns the standard 1v1 rules with nitro enabled.
func DefaultRules() Rules {
	return Rules{
		MaxTickCount:             18000,
		Arena:                    arena.Default(),
		TeamSize:                 1,
		Seed:                     0,
		RobotMinRadius:           1,
		RobotMaxRadius:           1.05,
		RobotMaxJumpSpeed:        15,
		RobotAcceleration:        100,
		RobotNitroAcceleration:   30,
		RobotMaxGroundSpeed:      30,
		RobotArenaE:              0,
		RobotRadius:              1,
		RobotMass:                2,
		TicksPerSecond:           60,
		MicroticksPerTick:        100,
		ResetTicks:               120,
		BallArenaE:               0.7,
		BallRadius:               2,
		BallMass:                 1,
		MinHitE:                  0.4,
		MaxHitE:                  0.5,
		MaxEntitySpeed:           100,
		MaxNitroAmount:           100,
		StartNitroAmount:         50,
		NitroPointVelocityChange: 0.6,
		NitroPackX:               20,
		NitroPackY:               1,
		NitroPackZ:               30,
		NitroPackRadius:          0.5,
		NitroPackAmount:          100,
		NitroPackRespawnTicks:    600,
		Gravity:                  30,
	}
}

func (r Rules) TickTimeInterval() float64 {
	return 1 / float64(r.TicksPerSecond)
}

func (r Rules) MeanE() float64 {
	return (r.MinHitE + r.MaxHitE) / 2
}

func (r Rules) GravityAcceleration() geom.Vec3 {
	return geom.V3(0, -r.Gravity, 0)
}

// MaxRobotJumpHeight is the apex of a robot center after a full jump from the floor.
func (r Rules) MaxRobotJumpHeight() float64 {
	return r.RobotMaxRadius + geom.Square(r.RobotMaxJumpSpeed)/(2*r.Gravity)
}

func (r Rules) MaxRobotWallWalkHeight() float64 {
	return r.Arena.Height - r.Arena.TopRadius
}

func (r Rules) IsFlying(robot Robot) bool {
	return !robot.Touch
}

// TimeForDistance is the time a robot running along the ground with the given
// initial speed needs to cover distance, accelerating up to the ground speed limit.
func (r Rules) TimeForDistance(initialSpeed, distance float64) float64 {
	if distance <= 0 {
		return 0
	}
	speed := math.Min(initialSpeed, r.RobotMaxGroundSpeed)
	accelerationTime := (r.RobotMaxGroundSpeed - speed) / r.RobotAcceleration
	accelerationDistance := speed*accelerationTime + r.RobotAcceleration*geom.Square(accelerationTime)/2
	if distance <= accelerationDistance {
		return (math.Sqrt(geom.Square(speed)+2*r.RobotAcceleration*distance) - speed) / r.RobotAcceleration
	}
	return accelerationTime + (distance-accelerationDistance)/r.RobotMaxGroundSpeed
}

// MinRunningDistance is the distance needed to reach max ground speed from rest.
func (r Rules) MinRunningDistance() float64 {
	return geom.Square(r.RobotMaxGroundSpeed) / (2 * r.RobotAcceleration)
}

// BallDistanceLimit is the farthest ball center a jumping robot can still touch.
func (r Rules) BallDistanceLimit() float64 {
	return r.RobotMaxRadius + r.BallRadius + geom.Square(r.RobotMaxJumpSpeed)/(2*r.Gravity)
}

func (r Rules) ApproximateRobotRadiusChangeSpeed(radius float64) float64 {
	return (radius - r.RobotMinRadius) / (r.RobotMaxRadius - r.RobotMinRadius) * r.RobotMaxJumpSpeed
}

func (r Rules) GoalkeeperPosition() geom.Vec3 {
	return geom.V3(0, r.RobotRadius, -r.Arena.Depth/2)
}

func (r Rules) IsNearMyGoal(position geom.Vec3) bool {
	return position.Distance(r.Arena.DefendTarget()) < r.Arena.GoalWidth/2
}

func (r Rules) GoalTarget() geom.Vec3 {
	return r.Arena.GoalTarget()
}

// KickoffGame builds the kickoff position for rules.TeamSize robots per side.
// Player 1 owns robots 1..TeamSize and is "me".
func KickoffGame(rules Rules) Game {
	base := geom.V3(-0.289095425043726, rules.RobotRadius, -19.997910486728827)
	robots := make([]Robot, 0, 2*rules.TeamSize)
	for player := 1; player <= 2; player++ {
		for i := range rules.TeamSize {
			position := base.WithX(base.X + float64(i)*rules.Arena.Width/6)
			if player == 2 {
				position = position.Opposite()
			}
			robot := Robot{
				ID:          len(robots) + 1,
				PlayerID:    player,
				IsTeammate:  player == 1,
				Radius:      rules.RobotRadius,
				NitroAmount: rules.StartNitroAmount,
			}
			robot.SetPosition(position)
			robot.SetTouchNormal(geom.J, true)
			robots = append(robots, robot)
		}
	}
	packs := make([]NitroPack, 0, 4)
	for _, sx := range []float64{-1, 1} {
		for _, sz := range []float64{-1, 1} {
			packs = append(packs, NitroPack{
				ID:     len(packs) + 1,
				X:      sx * rules.NitroPackX,
				Y:      rules.NitroPackY,
				Z:      sz * rules.NitroPackZ,
				Radius: rules.NitroPackRadius,
			})
		}
	}
	return Game{
		Players: []Player{
			{ID: 1, Me: true},
			{ID: 2},
		},
		Robots:     robots,
		NitroPacks: packs,
		Ball: Ball{
			Y:      7.837328533066,
			Radius: rules.BallRadius,
		},
	}
}
