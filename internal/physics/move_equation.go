// Package physics holds closed form motion helpers used to estimate
// trajectories without stepping the full simulator.
package physics

import (
	"math"
	"sort"

	"github.com/elsid/CodeBall-sub000/internal/entity"
	"github.com/elsid/CodeBall-sub000/internal/geom"
	"github.com/elsid/CodeBall-sub000/internal/shared/types"
)

const bisectIterations = 40

// MoveEquation is uniformly accelerated motion from a starting state.
type MoveEquation struct {
	InitialPosition geom.Vec3
	InitialVelocity geom.Vec3
	Acceleration    geom.Vec3
}

// FromEntity starts the equation at the entity state under gravity.
func FromEntity(e entity.Entity, rules types.Rules) MoveEquation {
	return MoveEquation{
		InitialPosition: e.Position(),
		InitialVelocity: e.Velocity(),
		Acceleration:    rules.GravityAcceleration(),
	}
}

func (m MoveEquation) Position(time float64) geom.Vec3 {
	return m.InitialPosition.
		Add(m.InitialVelocity.Mul(time)).
		Add(m.Acceleration.Mul(time * time / 2))
}

func (m MoveEquation) Velocity(time float64) geom.Vec3 {
	return m.InitialVelocity.Add(m.Acceleration.Mul(time))
}

// MaxY is the height at the apex. Only meaningful for a non-zero vertical acceleration.
func (m MoveEquation) MaxY() float64 {
	return m.Position(-m.InitialVelocity.Y / m.Acceleration.Y).Y
}

// TimesAtY returns the non-negative times when the height equals y in increasing order.
func (m MoveEquation) TimesAtY(y float64) []float64 {
	p, v, a := m.InitialPosition.Y, m.InitialVelocity.Y, m.Acceleration.Y
	if a == 0 {
		if v == 0 {
			if p == y {
				return []float64{0}
			}
			return nil
		}
		if t := (y - p) / v; t >= 0 {
			return []float64{t}
		}
		return nil
	}
	discriminant := 2*a*(y-p) + v*v
	if discriminant < 0 {
		return nil
	}
	if discriminant == 0 {
		if t := -v / a; t >= 0 {
			return []float64{t}
		}
		return nil
	}
	d := math.Sqrt(discriminant)
	roots := []float64{(d - v) / a, -(d + v) / a}
	sort.Float64s(roots)
	result := roots[:0]
	for _, t := range roots {
		if t >= 0 {
			result = append(result, t)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

// TimeToTarget finds the time in [0, maxTime] when the trajectory passes
// closest to minDistance from target, never counting positions below minY.
func (m MoveEquation) TimeToTarget(target geom.Vec3, minY, maxTime, minDistance float64, iterations int) float64 {
	penalty := func(time float64) float64 {
		position := m.Position(time)
		return math.Abs(position.WithMaxY(minY).Distance(target)-minDistance) +
			minY - math.Min(position.Y, minY)
	}
	return Minimize1D(0, maxTime, iterations, penalty)
}

func (m MoveEquation) ClosestPossibleDistanceToTarget(target geom.Vec3, minY, maxTime float64, iterations int) float64 {
	return m.Position(m.TimeToTarget(target, minY, maxTime, 0, iterations)).Distance(target)
}

// FirstTimeWithin finds the earliest time in [0, maxTime] when the trajectory
// comes within radius of target. The interval is sampled in steps and the
// first hit is refined by bisection.
func (m MoveEquation) FirstTimeWithin(target geom.Vec3, radius, maxTime float64, steps int) (float64, bool) {
	within := func(time float64) bool {
		return m.Position(time).Distance(target) <= radius
	}
	if within(0) {
		return 0, true
	}
	if steps < 1 {
		steps = 1
	}
	step := maxTime / float64(steps)
	prev := 0.0
	for i := 1; i <= steps; i++ {
		time := step * float64(i)
		if !within(time) {
			prev = time
			continue
		}
		lo, hi := prev, time
		for range bisectIterations {
			mid := (lo + hi) / 2
			if within(mid) {
				hi = mid
			} else {
				lo = mid
			}
		}
		return hi, true
	}
	return 0, false
}

// MinDistanceBetweenSpheres is the horizontal distance between a robot on the
// ground and a ball at height ballY when their surfaces touch.
func MinDistanceBetweenSpheres(ballY, ballRadius, robotRadius float64) (float64, bool) {
	a := geom.Square(ballRadius + robotRadius)
	b := geom.Square(ballY - robotRadius)
	if a < b {
		return 0, false
	}
	return math.Sqrt(a - b), true
}
