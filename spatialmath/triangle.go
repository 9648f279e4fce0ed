package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
)

// Triangle is three points and the unit normal given by the right hand rule.
type Triangle struct {
	p0 r3.Vector
	p1 r3.Vector
	p2 r3.Vector

	normal r3.Vector
}

// NewTriangle creates a triangle from three points.
func NewTriangle(p0, p1, p2 r3.Vector) *Triangle {
	return &Triangle{
		p0:     p0,
		p1:     p1,
		p2:     p2,
		normal: PlaneNormal(p0, p1, p2),
	}
}

// Points returns the vertices of the triangle.
func (t *Triangle) Points() []r3.Vector {
	return []r3.Vector{t.p0, t.p1, t.p2}
}

// Normal returns the unit normal. Degenerate triangles have a zero normal.
func (t *Triangle) Normal() r3.Vector {
	return t.normal
}

// Centroid returns the average of the three vertices.
func (t *Triangle) Centroid() r3.Vector {
	return t.p0.Add(t.p1).Add(t.p2).Mul(1. / 3)
}

// Area returns the area of the triangle.
func (t *Triangle) Area() float64 {
	return 0.5 * t.p1.Sub(t.p0).Cross(t.p2.Sub(t.p0)).Norm()
}

// IsDegenerate reports whether the triangle has (nearly) no area.
func (t *Triangle) IsDegenerate() bool {
	return t.normal.Norm2() == 0
}

// Transform returns the triangle moved into the frame given by tf.
func (t *Triangle) Transform(tf *Transform) *Triangle {
	return NewTriangle(tf.Apply(t.p0), tf.Apply(t.p1), tf.Apply(t.p2))
}

// ClosestPoint returns the point of the triangle nearest to pt. When pt projects into the face the
// projection is the answer; otherwise the nearest point lies on one of the three edges.
func (t *Triangle) ClosestPoint(pt r3.Vector) r3.Vector {
	if proj, inside := t.project(pt); inside {
		return proj
	}
	best := ClosestPointSegmentPoint(t.p0, t.p1, pt)
	for _, edge := range [][2]r3.Vector{{t.p1, t.p2}, {t.p2, t.p0}} {
		if cand := ClosestPointSegmentPoint(edge[0], edge[1], pt); cand.Sub(pt).Norm2() < best.Sub(pt).Norm2() {
			best = cand
		}
	}
	return best
}

// DistanceTo returns the distance from pt to the nearest point of the triangle.
func (t *Triangle) DistanceTo(pt r3.Vector) float64 {
	return t.ClosestPoint(pt).Distance(pt)
}

// project drops pt onto the plane of the triangle, reporting whether the foot lies within the face.
// Degenerate triangles never contain the foot.
func (t *Triangle) project(pt r3.Vector) (r3.Vector, bool) {
	const eps = 1e-6
	e0, e1 := t.p1.Sub(t.p0), t.p2.Sub(t.p0)
	d := pt.Sub(t.p0)
	g00, g01, g11 := e0.Norm2(), e0.Dot(e1), e1.Norm2()
	det := g00*g11 - g01*g01
	if det == 0 {
		return pt, false
	}
	// barycentric weights of the foot along e0 and e1
	u := (g11*e0.Dot(d) - g01*e1.Dot(d)) / det
	v := (g00*e1.Dot(d) - g01*e0.Dot(d)) / det
	foot := t.p0.Add(e0.Mul(u)).Add(e1.Mul(v))
	return foot, u >= -eps && v >= -eps && u+v <= 1+eps
}

// IntersectsPlane determines if the triangle intersects with a plane defined by a point and normal vector.
// Returns true if the triangle intersects with or lies on the plane.
func (t *Triangle) IntersectsPlane(planePt, planeNormal r3.Vector) bool {
	d0 := planeNormal.Dot(t.p0.Sub(planePt))
	d1 := planeNormal.Dot(t.p1.Sub(planePt))
	d2 := planeNormal.Dot(t.p2.Sub(planePt))

	// All vertices strictly on one side.
	if (d0 > floatEpsilon && d1 > floatEpsilon && d2 > floatEpsilon) ||
		(d0 < -floatEpsilon && d1 < -floatEpsilon && d2 < -floatEpsilon) {
		return false
	}
	return true
}

// TrianglePlaneIntersectingSegment determines the line segment where a triangle intersects with a plane.
// Returns the two points defining the intersection line segment and whether an intersection exists.
// If the triangle only touches the plane at a point, both returned points will be the same.
// If the triangle lies in the plane, it returns two points representing the longest edge of the triangle.
func (t *Triangle) TrianglePlaneIntersectingSegment(planePt, planeNormal r3.Vector) (r3.Vector, r3.Vector, bool) {
	if !t.IntersectsPlane(planePt, planeNormal) {
		return r3.Vector{}, r3.Vector{}, false
	}

	d0 := planeNormal.Dot(t.p0.Sub(planePt))
	d1 := planeNormal.Dot(t.p1.Sub(planePt))
	d2 := planeNormal.Dot(t.p2.Sub(planePt))

	// Triangle lies in plane.
	if math.Abs(d0) < floatEpsilon && math.Abs(d1) < floatEpsilon && math.Abs(d2) < floatEpsilon {
		e1 := t.p1.Sub(t.p0).Norm2()
		e2 := t.p2.Sub(t.p1).Norm2()
		e3 := t.p0.Sub(t.p2).Norm2()
		if e1 >= e2 && e1 >= e3 {
			return t.p0, t.p1, true
		} else if e2 >= e1 && e2 >= e3 {
			return t.p1, t.p2, true
		}
		return t.p2, t.p0, true
	}

	intersections := make([]r3.Vector, 0, 3)
	edges := [3][2]r3.Vector{
		{t.p0, t.p1},
		{t.p1, t.p2},
		{t.p2, t.p0},
	}
	dists := [3]float64{d0, d1, d2}

	for i := 0; i < 3; i++ {
		j := (i + 1) % 3
		if (dists[i] * dists[j]) < 0 {
			// Edge crosses the plane.
			s := dists[i] / (dists[i] - dists[j])
			edge := edges[i]
			intersections = append(intersections, edge[0].Add(edge[1].Sub(edge[0]).Mul(s)))
		} else if math.Abs(dists[i]) < floatEpsilon {
			// Vertex lies on plane.
			intersections = append(intersections, edges[i][0])
		}
	}

	switch len(intersections) {
	case 0:
		return r3.Vector{}, r3.Vector{}, false
	case 1:
		return intersections[0], intersections[0], true
	default:
		return intersections[0], intersections[1], true
	}
}

// IntersectsTriangle reports whether two triangles share at least one point. Degenerate triangles never
// intersect anything.
func (t *Triangle) IntersectsTriangle(o *Triangle) bool {
	if t.IsDegenerate() || o.IsDegenerate() {
		return false
	}
	if !t.IntersectsPlane(o.p0, o.normal) || !o.IntersectsPlane(t.p0, t.normal) {
		return false
	}

	dir := t.normal.Cross(o.normal)
	if dir.Norm2() < floatEpsilon*floatEpsilon {
		return t.coplanarIntersects(o)
	}

	a0, a1, ok := t.TrianglePlaneIntersectingSegment(o.p0, o.normal)
	if !ok {
		return false
	}
	b0, b1, ok := o.TrianglePlaneIntersectingSegment(t.p0, t.normal)
	if !ok {
		return false
	}

	// Both segments lie on the line shared by the two planes; compare them along it.
	aMin, aMax := math.Min(a0.Dot(dir), a1.Dot(dir)), math.Max(a0.Dot(dir), a1.Dot(dir))
	bMin, bMax := math.Min(b0.Dot(dir), b1.Dot(dir)), math.Max(b0.Dot(dir), b1.Dot(dir))
	eps := floatEpsilon * dir.Norm()
	return aMax >= bMin-eps && bMax >= aMin-eps
}

// coplanarIntersects runs a separating axis test over the in-plane edge normals of both triangles.
func (t *Triangle) coplanarIntersects(o *Triangle) bool {
	ta := [3]r3.Vector{t.p0, t.p1, t.p2}
	tb := [3]r3.Vector{o.p0, o.p1, o.p2}
	for _, tri := range [2][3]r3.Vector{ta, tb} {
		for i := 0; i < 3; i++ {
			axis := t.normal.Cross(tri[(i+1)%3].Sub(tri[i]))
			if separatingAxisTest(ta, tb, axis) {
				return false
			}
		}
	}
	return true
}

func separatingAxisTest(a, b [3]r3.Vector, axis r3.Vector) bool {
	aMin, aMax := projectOnto(a, axis)
	bMin, bMax := projectOnto(b, axis)
	eps := floatEpsilon * axis.Norm()
	return aMax < bMin-eps || bMax < aMin-eps
}

func projectOnto(pts [3]r3.Vector, axis r3.Vector) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range pts {
		d := p.Dot(axis)
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}
	return lo, hi
}
