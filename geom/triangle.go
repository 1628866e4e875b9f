package geom

// Triangle is a mesh face with an acoustic material name. The material is
// resolved through a material registry at trace time, not stored here.
type Triangle struct {
	V0, V1, V2 Vector3
	Material   string
}

func NewTriangle(v0, v1, v2 Vector3, material string) Triangle {
	return Triangle{V0: v0, V1: v1, V2: v2, Material: material}
}

// Normal returns the normalized face normal. Degenerate triangles yield the
// zero vector.
func (t Triangle) Normal() Vector3 {
	e1 := t.V1.Sub(t.V0)
	e2 := t.V2.Sub(t.V0)
	return e1.Cross(e2).Normalize()
}

// Center returns the centroid of the three vertices.
func (t Triangle) Center() Vector3 {
	return Vector3{
		(t.V0.X + t.V1.X + t.V2.X) / 3,
		(t.V0.Y + t.V1.Y + t.V2.Y) / 3,
		(t.V0.Z + t.V1.Z + t.V2.Z) / 3,
	}
}

// Area returns the surface area.
func (t Triangle) Area() float32 {
	e1 := t.V1.Sub(t.V0)
	e2 := t.V2.Sub(t.V0)
	return e1.Cross(e2).Length() / 2
}

// Intersect tests the ray origin+s*dir against the triangle using the
// Möller–Trumbore algorithm. On a hit it returns true with the ray parameter
// t and the barycentric coordinates u, v; intersections at or behind the
// origin are rejected. The rejection order is: parallel determinant, u range,
// v range, forward distance.
func (tr Triangle) Intersect(origin, dir Vector3) (t, u, v float32, ok bool) {
	const epsilon = 1e-7

	e1 := tr.V1.Sub(tr.V0)
	e2 := tr.V2.Sub(tr.V0)
	h := dir.Cross(e2)
	a := e1.Dot(h)

	// Ray parallel to the triangle plane (or degenerate triangle).
	if a > -epsilon && a < epsilon {
		return 0, 0, 0, false
	}

	f := 1 / a
	s := origin.Sub(tr.V0)
	u = f * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, 0, 0, false
	}

	q := s.Cross(e1)
	v = f * dir.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, 0, 0, false
	}

	t = f * e2.Dot(q)
	return t, u, v, t > epsilon
}
