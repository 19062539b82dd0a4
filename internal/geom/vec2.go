package geom

import "math"

type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func V2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

func (v Vec2) Add(o Vec2) Vec2    { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2    { return Vec2{X: v.X - o.X, Y: v.Y - o.Y} }
func (v Vec2) Mul(k float64) Vec2 { return Vec2{X: v.X * k, Y: v.Y * k} }
func (v Vec2) Div(k float64) Vec2 { return Vec2{X: v.X / k, Y: v.Y / k} }

func (v Vec2) Dot(o Vec2) float64 {
	return v.X*o.X + v.Y*o.Y
}

func (v Vec2) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

func (v Vec2) Normalized() Vec2 {
	return v.Div(v.Norm())
}
