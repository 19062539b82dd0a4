package geom

import "math"

// Vec3 represents a position or vector in arena space. Y points up, Z points
// toward the opponent goal.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// I, J and K are the unit axes.
var (
	I = Vec3{X: 1}
	J = Vec3{Y: 1}
	K = Vec3{Z: 1}
)

func V3(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

func (v Vec3) Mul(k float64) Vec3 {
	return Vec3{X: v.X * k, Y: v.Y * k, Z: v.Z * k}
}

func (v Vec3) Div(k float64) Vec3 {
	return Vec3{X: v.X / k, Y: v.Y / k, Z: v.Z / k}
}

func (v Vec3) Neg() Vec3 {
	return Vec3{X: -v.X, Y: -v.Y, Z: -v.Z}
}

func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec3) NormSquared() float64 {
	return v.Dot(v)
}

func (v Vec3) Norm() float64 {
	return math.Sqrt(v.NormSquared())
}

func (v Vec3) Distance(o Vec3) float64 {
	return v.Sub(o).Norm()
}

// Normalized divides by the norm without a zero check. A zero vector yields
// NaN components, which is what the host physics does as well.
func (v Vec3) Normalized() Vec3 {
	return v.Div(v.Norm())
}

// Direction is the checked form of Normalized.
func (v Vec3) Direction() (Vec3, bool) {
	n := v.Norm()
	if n == 0 {
		return Vec3{}, false
	}
	return v.Div(n), true
}

// Clamp limits the vector length to max.
func (v Vec3) Clamp(max float64) Vec3 {
	n := v.Norm()
	if n > max {
		return v.Mul(max / n)
	}
	return v
}

// Cos returns the cosine of the angle between v and o.
func (v Vec3) Cos(o Vec3) float64 {
	return v.Dot(o) / (v.Norm() * o.Norm())
}

func (v Vec3) WithX(x float64) Vec3 { return Vec3{X: x, Y: v.Y, Z: v.Z} }
func (v Vec3) WithY(y float64) Vec3 { return Vec3{X: v.X, Y: y, Z: v.Z} }
func (v Vec3) WithZ(z float64) Vec3 { return Vec3{X: v.X, Y: v.Y, Z: z} }

// WithMaxY raises Y to at least y.
func (v Vec3) WithMaxY(y float64) Vec3 { return v.WithY(math.Max(v.Y, y)) }

// WithMaxZ raises Z to at least z.
func (v Vec3) WithMaxZ(z float64) Vec3 { return v.WithZ(math.Max(v.Z, z)) }

func (v Vec3) WithNegX() Vec3 { return v.WithX(-v.X) }
func (v Vec3) WithNegZ() Vec3 { return v.WithZ(-v.Z) }

// Opposite mirrors the vector to the other half of the field.
func (v Vec3) Opposite() Vec3 { return Vec3{X: -v.X, Y: v.Y, Z: -v.Z} }

func (v Vec3) XY() Vec2 { return Vec2{X: v.X, Y: v.Y} }
func (v Vec3) XZ() Vec2 { return Vec2{X: v.X, Y: v.Z} }
