package geom

// Sphere is used both as a concave arena region (inner) and as a convex
// corner to stay out of (outer).
type Sphere struct {
	Center Vec3
	Radius float64
}

func (s Sphere) DistanceInner(position Vec3) float64 {
	return s.Radius - s.Center.Sub(position).Norm()
}

func (s Sphere) DistanceOuter(position Vec3) float64 {
	return position.Sub(s.Center).Norm() - s.Radius
}

func (s Sphere) InnerNormal(position Vec3) Vec3 {
	return s.Center.Sub(position).Normalized()
}

func (s Sphere) OuterNormal(position Vec3) Vec3 {
	return position.Sub(s.Center).Normalized()
}

func (s Sphere) InnerCollide(position Vec3, distance *float64, normal *Vec3) {
	d := s.DistanceInner(position)
	if *distance > d {
		*distance = d
		*normal = s.InnerNormal(position)
	}
}

func (s Sphere) OuterCollide(position Vec3, distance *float64, normal *Vec3) {
	d := s.DistanceOuter(position)
	if *distance > d {
		*distance = d
		*normal = s.OuterNormal(position)
	}
}
