package planner

import (
	"math"

	"github.com/elsid/CodeBall-sub000/internal/geom"
	"github.com/elsid/CodeBall-sub000/internal/physics"
	"github.com/elsid/CodeBall-sub000/internal/random"
	"github.com/elsid/CodeBall-sub000/internal/shared/logger"
	"github.com/elsid/CodeBall-sub000/internal/shared/types"
	"github.com/elsid/CodeBall-sub000/internal/simulation"
)

// Points returns candidate jump positions around the ball at the simulator
// instant. More candidates are tried when the robot can get there in time.
// Even candidates sweep one side of the ball, odd ones the other; every
// fourth is placed exactly, the rest are jittered by rng.
func Points(sim *simulation.Simulator, currentTick int, rng *random.XorShift, log *logger.Ticked) []geom.Vec3 {
	ball := sim.Ball()
	robot := sim.Me()
	rules := sim.Rules()

	distanceToBall := ball.Position().Distance(robot.Position())
	timeToBall := rules.TimeForDistance(rules.RobotMaxGroundSpeed, distanceToBall)
	maxTimeDiff := 2 * (rules.RobotRadius + rules.BallRadius) / rules.RobotMaxGroundSpeed

	number := 1
	if timeToBall < sim.CurrentTime()+maxTimeDiff {
		switch {
		case timeToBall >= rules.TickTimeInterval()*10:
			number = 3
		case rules.TeamSize <= 2:
			number = 9
		default:
			number = 7
		}
	}

	frame := newPointFrame(sim)

	log.Logf(currentTick, "[%d] points base_position=%v base_direction=%v min_distance=%v max_distance=%v",
		robot.ID(), frame.base, frame.direction, frame.minDistance, frame.maxDistance)

	var result []geom.Vec3
	if rules.IsNearMyGoal(ball.Position()) {
		result = append(result, ball.Position().
			WithY(rules.RobotRadius).
			WithMaxZ(-rules.Arena.Depth/2-rules.BallRadius))
	}

	n := float64(number)
	for i := range number {
		k := float64(i)
		var angle, distance float64
		switch {
		case i%4 == 0:
			angle, distance = math.Pi*k/n, frame.meanDistance()
		case i%2 == 0:
			angle = rng.Float64Range(math.Pi*(k-1)/n, math.Pi*(k+1)/n)
			distance = rng.Float64Range(frame.minDistance, frame.maxDistance)
		case (i+1)%4 == 0:
			angle, distance = -math.Pi*k/n, frame.meanDistance()
		default:
			angle = rng.Float64Range(-math.Pi*(k+1.5)/n, -math.Pi*(k-0.5)/n)
			distance = rng.Float64Range(frame.minDistance, frame.maxDistance)
		}
		position, projected := frame.at(angle, distance)

		log.Logf(currentTick, "[%d] points distance=%v angle=%v position=%v projected=%v distance_to_ball=%v",
			robot.ID(), distance, angle, position, projected, projected.Distance(ball.Position()))

		result = append(result, projected)
	}
	return result
}

// pointFrame places candidates on the ball surface plane, measuring angles
// from the direction toward the robot.
type pointFrame struct {
	rules       types.Rules
	base        geom.Vec3
	normal      geom.Vec3
	direction   geom.Vec3
	minDistance float64
	maxDistance float64
}

func newPointFrame(sim *simulation.Simulator) pointFrame {
	ball := sim.Ball()
	robot := sim.Me()
	rules := sim.Rules()

	base := ball.ProjectedToArenaWithShift(rules.RobotMinRadius)
	toRobot := robot.Position().Sub(base).Normalized()
	minDistance, ok := physics.MinDistanceBetweenSpheres(ball.DistanceToArena(), rules.BallRadius, rules.RobotMinRadius)
	if !ok {
		minDistance = 0
	}
	return pointFrame{
		rules:       rules,
		base:        base,
		normal:      ball.NormalToArena(),
		direction:   geom.Projected(toRobot, ball.NormalToArena()).Normalized(),
		minDistance: minDistance,
		maxDistance: geom.Clamp(base.Distance(robot.Position()), minDistance+1e-3, rules.BallRadius+rules.RobotMaxRadius),
	}
}

func (f pointFrame) meanDistance() float64 { return (f.maxDistance + f.minDistance) / 2 }

// at returns the raw point and the point moved to robot height over the
// nearest surface.
func (f pointFrame) at(angle, distance float64) (geom.Vec3, geom.Vec3) {
	rotation := geom.Rotation(f.normal, angle)
	position := f.base.Add(rotation.MulVec(f.direction).Mul(distance))
	return position, f.rules.Arena.ProjectedWithShift(position, f.rules.RobotMaxRadius)
}
