package bounding

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/cullcore/spatialmath"
)

// radiusEpsilon pads fitted spheres so that the points they were fit to test as inside.
const radiusEpsilon = 1.00001

// Sphere is a ball given by its center and radius.
type Sphere struct {
	base
	radius float64
}

// NewSphere creates a sphere. A negative radius is stored as its absolute value.
func NewSphere(center r3.Vector, radius float64) *Sphere {
	return &Sphere{base: base{center: center}, radius: math.Abs(radius)}
}

// Type returns TypeSphere.
func (s *Sphere) Type() Type {
	return TypeSphere
}

// Radius returns the radius of the sphere.
func (s *Sphere) Radius() float64 {
	return s.radius
}

// SetRadius sets the radius of the sphere.
func (s *Sphere) SetRadius(radius float64) {
	s.radius = math.Abs(radius)
}

// ComputeFromPoints fits the smallest enclosing sphere to points.
func (s *Sphere) ComputeFromPoints(points []r3.Vector) {
	if len(points) == 0 {
		return
	}
	s.welzl(points)
}

// ComputeFromTriangles fits a sphere around the listed triangles, centered on the average vertex.
func (s *Sphere) ComputeFromTriangles(src TriangleSource, indices []int, scratch *spatialmath.Scratch) {
	if len(indices) == 0 {
		return
	}
	mark := scratch.Mark()
	defer scratch.Release(mark)
	s.averagePoints(triangleVertices(src, indices, scratch))
}

// ComputeFromTriangleList fits a sphere around the triangles, centered on the average vertex.
func (s *Sphere) ComputeFromTriangleList(tris []*spatialmath.Triangle) {
	if len(tris) == 0 {
		return
	}
	s.averagePoints(triangleListVertices(tris))
}

func (s *Sphere) averagePoints(points []r3.Vector) {
	var sum r3.Vector
	for _, p := range points {
		sum = sum.Add(p)
	}
	s.center = sum.Mul(1 / float64(len(points)))
	maxDist2 := 0.
	for _, p := range points {
		maxDist2 = math.Max(maxDist2, p.Sub(s.center).Norm2())
	}
	s.radius = math.Sqrt(maxDist2) + radiusEpsilon - 1
}

// Transform returns the sphere moved by tf. The radius grows by the largest stretch the linear part
// applies to any direction, so sheared transforms still enclose the moved sphere.
func (s *Sphere) Transform(tf *spatialmath.Transform, store Volume) Volume {
	out, ok := store.(*Sphere)
	if !ok || out == nil {
		out = &Sphere{}
	}
	out.center = tf.Apply(s.center)
	out.radius = math.Abs(tf.MaxStretch()*s.radius) + radiusEpsilon - 1
	return out
}

// TransformQuat is Transform with the rotation given as a quaternion.
func (s *Sphere) TransformQuat(q quat.Number, translation, scale r3.Vector, store Volume) Volume {
	return s.Transform(spatialmath.NewTransformFromQuat(q, translation, scale), store)
}

// Merge returns a new sphere enclosing this sphere and other.
func (s *Sphere) Merge(other Volume) Volume {
	out, _ := s.Clone(nil).(*Sphere)
	return out.MergeInPlace(other)
}

// MergeInPlace grows the sphere to enclose other. Boxes are treated as the sphere through their corners.
func (s *Sphere) MergeInPlace(other Volume) Volume {
	if other == nil {
		return s
	}
	switch o := other.(type) {
	case *Sphere:
		s.mergeSphere(o.center, o.radius)
	case *AABB:
		s.mergeSphere(o.center, o.extent.Norm())
	case *OBB:
		corners := o.Corners()
		fit := &Sphere{}
		fit.ComputeFromPoints(corners[:])
		s.mergeSphere(fit.center, fit.radius)
	default:
		panic(newUnknownVolumeError(other))
	}
	return s
}

func (s *Sphere) mergeSphere(center r3.Vector, radius float64) {
	diff := center.Sub(s.center)
	lengthSquared := diff.Norm2()
	radiusDiff := radius - s.radius
	if radiusDiff*radiusDiff >= lengthSquared {
		if radiusDiff > 0 {
			s.center, s.radius = center, radius
		}
		return
	}
	length := math.Sqrt(lengthSquared)
	if length > spatialmath.Epsilon {
		s.center = s.center.Add(diff.Mul((length + radiusDiff) / (2 * length)))
	}
	s.radius = 0.5 * (length + s.radius + radius)
}

// Contains reports whether point lies strictly inside the sphere.
func (s *Sphere) Contains(point r3.Vector) bool {
	if !s.IsValid() {
		return false
	}
	return s.center.Sub(point).Norm2() < s.radius*s.radius
}

// DistanceToEdge returns the distance from point to the surface of the sphere, negative inside.
func (s *Sphere) DistanceToEdge(point r3.Vector) float64 {
	return s.center.Distance(point) - s.radius
}

// WhichSide reports which side of plane the sphere is on.
func (s *Sphere) WhichSide(plane spatialmath.Plane) spatialmath.Side {
	dist := plane.PseudoDistance(s.center)
	switch {
	case dist <= -s.radius:
		return spatialmath.Inside
	case dist >= s.radius:
		return spatialmath.Outside
	default:
		return spatialmath.Neither
	}
}

// IntersectsRay reports whether the ray passes through the sphere. A ray starting inside always does.
func (s *Sphere) IntersectsRay(ray spatialmath.Ray) bool {
	if !s.IsValid() {
		return false
	}
	diff := ray.Origin.Sub(s.center)
	a := diff.Norm2() - s.radius*s.radius
	if a <= 0 {
		return true
	}
	b := ray.Direction.Dot(diff)
	if b >= 0 {
		return false
	}
	return b*b >= a
}

// IntersectsRayWhere returns where the ray crosses the sphere. A ray starting inside has a single exit
// point, and a ray grazing the surface a single touching point.
func (s *Sphere) IntersectsRayWhere(ray spatialmath.Ray) *IntersectionRecord {
	if !s.IsValid() {
		return nil
	}
	diff := ray.Origin.Sub(s.center)
	a := diff.Norm2() - s.radius*s.radius
	b := ray.Direction.Dot(diff)
	if a <= 0 {
		return newIntersectionRecord(ray, math.Sqrt(b*b-a)-b)
	}
	if b >= 0 {
		return nil
	}
	discr := b*b - a
	switch {
	case discr < 0:
		return nil
	case discr >= spatialmath.ZeroTolerance:
		root := math.Sqrt(discr)
		return newIntersectionRecord(ray, -b-root, -b+root)
	default:
		return newIntersectionRecord(ray, -b)
	}
}

// Intersects reports whether the two volumes overlap.
func (s *Sphere) Intersects(other Volume) bool {
	if other == nil {
		return false
	}
	return other.IntersectsSphere(s)
}

// IntersectsAABB reports whether the box overlaps the sphere.
func (s *Sphere) IntersectsAABB(box *AABB) bool {
	return aabbIntersectsSphere(box, s)
}

// IntersectsSphere reports whether two spheres overlap. Touching spheres overlap.
func (s *Sphere) IntersectsSphere(sphere *Sphere) bool {
	return sphereIntersectsSphere(s, sphere)
}

// IntersectsOBB reports whether the oriented box overlaps the sphere.
func (s *Sphere) IntersectsOBB(box *OBB) bool {
	return obbIntersectsSphere(box, s)
}

// Volume returns the volume of the sphere.
func (s *Sphere) Volume() float64 {
	return 4. / 3 * math.Pi * s.radius * s.radius * s.radius
}

// Clone copies the sphere into store when it is a Sphere, or into a new sphere.
func (s *Sphere) Clone(store Volume) Volume {
	out, ok := store.(*Sphere)
	if !ok || out == nil {
		out = &Sphere{}
	}
	*out = *s
	return out
}

// IsValid reports whether the center and radius are finite.
func (s *Sphere) IsValid() bool {
	return spatialmath.IsFinite(s.center) && !math.IsNaN(s.radius) && !math.IsInf(s.radius, 0)
}

func (s *Sphere) String() string {
	return fmt.Sprintf("Sphere{center: %v, radius: %.6g}", s.center, s.radius)
}
