package bounding

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/cullcore/spatialmath"
)

// AABB is an axis aligned box given by its center and three half extents.
type AABB struct {
	base
	extent r3.Vector
}

// NewAABB creates a box. Negative extents are stored as their absolute value.
func NewAABB(center, extent r3.Vector) *AABB {
	return &AABB{base: base{center: center}, extent: extent.Abs()}
}

// NewAABBFromMinMax creates the box spanning two opposite corners.
func NewAABBFromMinMax(lo, hi r3.Vector) *AABB {
	a := &AABB{}
	a.setMinMax(lo, hi)
	return a
}

// Type returns TypeAABB.
func (a *AABB) Type() Type {
	return TypeAABB
}

// Extent returns the half extents of the box.
func (a *AABB) Extent() r3.Vector {
	return a.extent
}

// SetExtent sets the half extents of the box.
func (a *AABB) SetExtent(extent r3.Vector) {
	a.extent = extent.Abs()
}

// Min returns the corner with the smallest coordinates.
func (a *AABB) Min() r3.Vector {
	return a.center.Sub(a.extent)
}

// Max returns the corner with the largest coordinates.
func (a *AABB) Max() r3.Vector {
	return a.center.Add(a.extent)
}

// Corners returns the eight corners of the box.
func (a *AABB) Corners() [8]r3.Vector {
	return boxCorners(a.center, identityAxes, a.extent)
}

func (a *AABB) setMinMax(lo, hi r3.Vector) {
	a.center = lo.Add(hi).Mul(0.5)
	a.extent = hi.Sub(a.center)
}

// ComputeFromPoints fits the box to the points with a single min/max pass.
func (a *AABB) ComputeFromPoints(points []r3.Vector) {
	if len(points) == 0 {
		return
	}
	a.setMinMax(minMax(points))
}

// ComputeFromTriangles fits the box to the listed triangles.
func (a *AABB) ComputeFromTriangles(src TriangleSource, indices []int, scratch *spatialmath.Scratch) {
	if len(indices) == 0 {
		return
	}
	mark := scratch.Mark()
	defer scratch.Release(mark)
	a.ComputeFromPoints(triangleVertices(src, indices, scratch))
}

// ComputeFromTriangleList fits the box to the triangles.
func (a *AABB) ComputeFromTriangleList(tris []*spatialmath.Triangle) {
	a.ComputeFromPoints(triangleListVertices(tris))
}

// Transform returns the box enclosing this box moved by tf. For a rotation with scale the extents are
// carried through the absolute rotation matrix; any other matrix re-fits the moved corners.
func (a *AABB) Transform(tf *spatialmath.Transform, store Volume) Volume {
	out, ok := store.(*AABB)
	if !ok || out == nil {
		out = &AABB{}
	}
	if tf.IsRotationScale() {
		out.center = tf.Apply(a.center)
		out.extent = tf.Rotation().Abs().Mul(spatialmath.MulComponents(a.extent, tf.Scale()).Abs())
		return out
	}
	corners := a.Corners()
	for i := range corners {
		corners[i] = tf.Apply(corners[i])
	}
	out.ComputeFromPoints(corners[:])
	return out
}

// TransformQuat is Transform with the rotation given as a quaternion.
func (a *AABB) TransformQuat(q quat.Number, translation, scale r3.Vector, store Volume) Volume {
	return a.Transform(spatialmath.NewTransformFromQuat(q, translation, scale), store)
}

// Merge returns a new box enclosing this box and other.
func (a *AABB) Merge(other Volume) Volume {
	out, _ := a.Clone(nil).(*AABB)
	return out.MergeInPlace(other)
}

// MergeInPlace grows the box to enclose other.
func (a *AABB) MergeInPlace(other Volume) Volume {
	if other == nil {
		return a
	}
	switch o := other.(type) {
	case *AABB:
		a.mergeMinMax(o.Min(), o.Max())
	case *Sphere:
		r := r3.Vector{X: o.radius, Y: o.radius, Z: o.radius}
		a.mergeMinMax(o.center.Sub(r), o.center.Add(r))
	case *OBB:
		corners := o.Corners()
		a.mergeMinMax(minMax(corners[:]))
	default:
		panic(newUnknownVolumeError(other))
	}
	return a
}

func (a *AABB) mergeMinMax(lo, hi r3.Vector) {
	a.setMinMax(spatialmath.MinComponents(a.Min(), lo), spatialmath.MaxComponents(a.Max(), hi))
}

// Contains reports whether point lies strictly inside the box.
func (a *AABB) Contains(point r3.Vector) bool {
	if !a.IsValid() {
		return false
	}
	d := point.Sub(a.center)
	return math.Abs(d.X) < a.extent.X && math.Abs(d.Y) < a.extent.Y && math.Abs(d.Z) < a.extent.Z
}

// DistanceToEdge returns the distance from point to the surface of the box, negative inside.
func (a *AABB) DistanceToEdge(point r3.Vector) float64 {
	return boxDistanceToEdge(a.center, identityAxes, a.extent, point)
}

// WhichSide reports which side of plane the box is on.
func (a *AABB) WhichSide(plane spatialmath.Plane) spatialmath.Side {
	n := plane.Normal
	radius := math.Abs(a.extent.X*n.X) + math.Abs(a.extent.Y*n.Y) + math.Abs(a.extent.Z*n.Z)
	dist := plane.PseudoDistance(a.center)
	switch {
	case dist < -radius:
		return spatialmath.Inside
	case dist > radius:
		return spatialmath.Outside
	default:
		return spatialmath.Neither
	}
}

// IntersectsRay reports whether the ray passes through the box.
func (a *AABB) IntersectsRay(ray spatialmath.Ray) bool {
	if !a.IsValid() {
		return false
	}
	return boxIntersectsRay(a.center, identityAxes, a.extent, ray)
}

// IntersectsRayWhere returns where the ray enters and leaves the box.
func (a *AABB) IntersectsRayWhere(ray spatialmath.Ray) *IntersectionRecord {
	if !a.IsValid() {
		return nil
	}
	return boxRayWhere(a.center, identityAxes, a.extent, ray)
}

// Intersects reports whether the two volumes overlap.
func (a *AABB) Intersects(other Volume) bool {
	if other == nil {
		return false
	}
	return other.IntersectsAABB(a)
}

// IntersectsAABB reports whether two boxes overlap. Touching boxes overlap.
func (a *AABB) IntersectsAABB(box *AABB) bool {
	return aabbIntersectsAABB(a, box)
}

// IntersectsSphere reports whether the sphere overlaps the box's slabs.
func (a *AABB) IntersectsSphere(sphere *Sphere) bool {
	return aabbIntersectsSphere(a, sphere)
}

// IntersectsOBB reports whether the oriented box overlaps this box.
func (a *AABB) IntersectsOBB(box *OBB) bool {
	return box.IntersectsAABB(a)
}

// Volume returns the volume of the box.
func (a *AABB) Volume() float64 {
	return 8 * a.extent.X * a.extent.Y * a.extent.Z
}

// Clone copies the box into store when it is an AABB, or into a new box.
func (a *AABB) Clone(store Volume) Volume {
	out, ok := store.(*AABB)
	if !ok || out == nil {
		out = &AABB{}
	}
	*out = *a
	return out
}

// IsValid reports whether the center and extents are finite.
func (a *AABB) IsValid() bool {
	return spatialmath.IsFinite(a.center) && spatialmath.IsFinite(a.extent)
}

func (a *AABB) String() string {
	return fmt.Sprintf("AABB{center: %v, extent: %v}", a.center, a.extent)
}
