package spatialmath

import (
	"fmt"

	"github.com/golang/geo/r3"
)

// Ray is a half line starting at Origin and extending along the unit vector Direction.
type Ray struct {
	Origin    r3.Vector
	Direction r3.Vector
}

// NewRay creates a ray, normalizing the direction.
func NewRay(origin, direction r3.Vector) Ray {
	return Ray{Origin: origin, Direction: direction.Normalize()}
}

// PointAt returns the point at parameter t along the ray.
func (r Ray) PointAt(t float64) r3.Vector {
	return r.Origin.Add(r.Direction.Mul(t))
}

// IsValid reports whether the origin and direction are finite.
func (r Ray) IsValid() bool {
	return IsFinite(r.Origin) && IsFinite(r.Direction)
}

// IntersectsTriangle tests the ray against the triangle (a, b, c) from either side and returns the distance
// along the ray to the hit.
func (r Ray) IntersectsTriangle(a, b, c r3.Vector) (float64, bool) {
	t, _, _, ok := r.intersectsPolygon(a, b, c, true)
	return t, ok
}

// TriangleBarycentric is like IntersectsTriangle but also returns the weights of b and c at the hit point.
// The weight of a is 1 - w1 - w2.
func (r Ray) TriangleBarycentric(a, b, c r3.Vector) (t, w1, w2 float64, ok bool) {
	return r.intersectsPolygon(a, b, c, true)
}

// IntersectsParallelogram tests the ray against the parallelogram spanned by a, b and c, with a as the
// shared corner.
func (r Ray) IntersectsParallelogram(a, b, c r3.Vector) (float64, bool) {
	t, _, _, ok := r.intersectsPolygon(a, b, c, false)
	return t, ok
}

func (r Ray) intersectsPolygon(a, b, c r3.Vector, triangle bool) (float64, float64, float64, bool) {
	diff := r.Origin.Sub(a)
	edge1 := b.Sub(a)
	edge2 := c.Sub(a)
	norm := edge1.Cross(edge2)

	dirDotNorm := r.Direction.Dot(norm)
	var sign float64
	switch {
	case dirDotNorm > Epsilon:
		sign = 1
	case dirDotNorm < -Epsilon:
		sign = -1
		dirDotNorm = -dirDotNorm
	default:
		// parallel
		return 0, 0, 0, false
	}

	dirDotDiffxEdge2 := sign * r.Direction.Dot(diff.Cross(edge2))
	if dirDotDiffxEdge2 < 0 {
		return 0, 0, 0, false
	}
	dirDotEdge1xDiff := sign * r.Direction.Dot(edge1.Cross(diff))
	if dirDotEdge1xDiff < 0 {
		return 0, 0, 0, false
	}
	if triangle {
		if dirDotDiffxEdge2+dirDotEdge1xDiff > dirDotNorm {
			return 0, 0, 0, false
		}
	} else if dirDotEdge1xDiff > dirDotNorm || dirDotDiffxEdge2 > dirDotNorm {
		return 0, 0, 0, false
	}
	diffDotNorm := -sign * diff.Dot(norm)
	if diffDotNorm < 0 {
		return 0, 0, 0, false
	}
	inv := 1 / dirDotNorm
	return diffDotNorm * inv, dirDotDiffxEdge2 * inv, dirDotEdge1xDiff * inv, true
}

// IntersectsPlane returns the point where the ray crosses the plane. Rays parallel to the plane or meeting
// it behind the origin miss.
func (r Ray) IntersectsPlane(p Plane) (r3.Vector, bool) {
	denominator := p.Normal.Dot(r.Direction)
	if denominator > -Epsilon && denominator < Epsilon {
		return r3.Vector{}, false
	}
	ratio := (p.Constant - p.Normal.Dot(r.Origin)) / denominator
	if ratio < Epsilon {
		return r3.Vector{}, false
	}
	return r.PointAt(ratio), true
}

// DistanceSquared returns the squared distance from the ray to a point, along with the closest point on the ray.
func (r Ray) DistanceSquared(pt r3.Vector) (float64, r3.Vector) {
	closest := r.Origin
	if t0 := r.Direction.Dot(pt.Sub(r.Origin)); t0 > 0 {
		closest = r.PointAt(t0)
	}
	return pt.Sub(closest).Norm2(), closest
}

func (r Ray) String() string {
	return fmt.Sprintf("Ray[origin: %v direction: %v]", r.Origin, r.Direction)
}
