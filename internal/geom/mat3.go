package geom

import "github.com/go-gl/mathgl/mgl64"

// Mat3 is a 3x3 column-major matrix.
type Mat3 mgl64.Mat3

// Rotation builds the matrix rotating by angle radians around a unit axis.
func Rotation(axis Vec3, angle float64) Mat3 {
	return Mat3(mgl64.HomogRotate3D(angle, mgl64.Vec3{axis.X, axis.Y, axis.Z}).Mat3())
}

func (m Mat3) MulVec(v Vec3) Vec3 {
	r := mgl64.Mat3(m).Mul3x1(mgl64.Vec3{v.X, v.Y, v.Z})
	return Vec3{X: r[0], Y: r[1], Z: r[2]}
}
