package geom

// Plane is a point on the plane and its unit normal.
type Plane struct {
	Point  Vec3
	Normal Vec3
}

func (p Plane) Distance(position Vec3) float64 {
	return p.Normal.Dot(position.Sub(p.Point))
}

// Collide overwrites distance and normal when position is closer to this plane.
func (p Plane) Collide(position Vec3, distance *float64, normal *Vec3) {
	d := p.Distance(position)
	if *distance > d {
		*distance = d
		*normal = p.Normal
	}
}

// Projected removes the component of value along normal.
func Projected(value, normal Vec3) Vec3 {
	return value.Sub(normal.Mul(normal.Dot(value)))
}
