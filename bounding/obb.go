package bounding

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/cullcore/spatialmath"
)

// OBB is a box with its own orthonormal axes, given by center, axes and half extents along each axis.
// Its corners are computed on demand and cached until the next change.
type OBB struct {
	base
	axes   [3]r3.Vector
	extent r3.Vector

	corners      [8]r3.Vector
	cornersValid bool
}

// NewOBB creates an oriented box whose axes are the columns of rotation. A nil rotation gives an axis
// aligned box.
func NewOBB(center, extent r3.Vector, rotation *spatialmath.RotationMatrix) *OBB {
	o := &OBB{base: base{center: center}, extent: extent.Abs(), axes: identityAxes}
	if rotation != nil {
		o.axes = [3]r3.Vector{rotation.Col(0), rotation.Col(1), rotation.Col(2)}
	}
	return o
}

// Type returns TypeOBB.
func (o *OBB) Type() Type {
	return TypeOBB
}

// SetCenter moves the box.
func (o *OBB) SetCenter(center r3.Vector) {
	o.center = center
	o.cornersValid = false
}

// Extent returns the half extents along the box axes.
func (o *OBB) Extent() r3.Vector {
	return o.extent
}

// SetExtent sets the half extents along the box axes.
func (o *OBB) SetExtent(extent r3.Vector) {
	o.extent = extent.Abs()
	o.cornersValid = false
}

// Axes returns the three box axes.
func (o *OBB) Axes() [3]r3.Vector {
	return o.axes
}

// SetAxes sets the box axes, which must be orthonormal.
func (o *OBB) SetAxes(x, y, z r3.Vector) {
	o.axes = [3]r3.Vector{x, y, z}
	o.cornersValid = false
}

// Rotation returns the box axes as the columns of a matrix.
func (o *OBB) Rotation() *spatialmath.RotationMatrix {
	return spatialmath.NewRotationMatrixFromColumns(o.axes[0], o.axes[1], o.axes[2])
}

// Corners returns the eight corners of the box.
func (o *OBB) Corners() [8]r3.Vector {
	if !o.cornersValid {
		o.corners = boxCorners(o.center, o.axes, o.extent)
		o.cornersValid = true
	}
	return o.corners
}

// fitAxisAligned fits the box to points with identity axes.
func (o *OBB) fitAxisAligned(points []r3.Vector) {
	lo, hi := minMax(points)
	o.center = lo.Add(hi).Mul(0.5)
	o.extent = hi.Sub(o.center)
	o.axes = identityAxes
	o.cornersValid = false
}

// ComputeFromPoints fits an axis aligned box to the points. The axes are always reset to identity.
func (o *OBB) ComputeFromPoints(points []r3.Vector) {
	if len(points) == 0 {
		return
	}
	o.fitAxisAligned(points)
}

// ComputeFromTriangles fits an axis aligned box to the listed triangles.
func (o *OBB) ComputeFromTriangles(src TriangleSource, indices []int, scratch *spatialmath.Scratch) {
	if len(indices) == 0 {
		return
	}
	mark := scratch.Mark()
	defer scratch.Release(mark)
	o.fitAxisAligned(triangleVertices(src, indices, scratch))
}

// ComputeFromTriangleList fits an axis aligned box to the triangles.
func (o *OBB) ComputeFromTriangleList(tris []*spatialmath.Triangle) {
	o.ComputeFromPoints(triangleListVertices(tris))
}

// Transform returns the box moved by tf. The axes are rotated when tf keeps the box a box; otherwise
// the moved corners are re-fit with identity axes.
func (o *OBB) Transform(tf *spatialmath.Transform, store Volume) Volume {
	out, ok := store.(*OBB)
	if !ok || out == nil {
		out = &OBB{}
	}
	scale := tf.Scale()
	if tf.IsRotationScale() && (uniformScale(scale) || o.isAxisAligned()) {
		rot := tf.Rotation()
		out.extent = spatialmath.MulComponents(o.extent, scale).Abs()
		out.axes = [3]r3.Vector{rot.Mul(o.axes[0]), rot.Mul(o.axes[1]), rot.Mul(o.axes[2])}
		out.center = tf.Apply(o.center)
		out.cornersValid = false
		return out
	}
	corners := o.Corners()
	for i := range corners {
		corners[i] = tf.Apply(corners[i])
	}
	out.fitAxisAligned(corners[:])
	return out
}

func uniformScale(s r3.Vector) bool {
	x := math.Abs(s.X)
	return spatialmath.Float64AlmostEqual(x, math.Abs(s.Y), 1e-9) && spatialmath.Float64AlmostEqual(x, math.Abs(s.Z), 1e-9)
}

func (o *OBB) isAxisAligned() bool {
	return o.axes == identityAxes
}

// TransformQuat is Transform with the rotation given as a quaternion.
func (o *OBB) TransformQuat(q quat.Number, translation, scale r3.Vector, store Volume) Volume {
	return o.Transform(spatialmath.NewTransformFromQuat(q, translation, scale), store)
}

// Merge returns a new oriented box enclosing this box and other.
func (o *OBB) Merge(other Volume) Volume {
	out, _ := o.Clone(nil).(*OBB)
	return out.MergeInPlace(other)
}

// MergeInPlace grows the box to enclose other. Two oriented boxes merge around the average of their
// orientations; any other volume is merged through its extreme points into an axis aligned fit.
func (o *OBB) MergeInPlace(other Volume) Volume {
	if other == nil {
		return o
	}
	var extremes [8]r3.Vector
	switch v := other.(type) {
	case *OBB:
		o.mergeOBB(v)
		return o
	case *AABB:
		extremes = v.Corners()
	case *Sphere:
		extremes = sphereExtremes(v.center, v.radius)
	default:
		panic(newUnknownVolumeError(other))
	}
	corners := o.Corners()
	o.fitAxisAligned(append(corners[:], extremes[:]...))
	return o
}

func (o *OBB) mergeOBB(other *OBB) {
	center := o.center.Add(other.center).Mul(0.5)
	q := spatialmath.BlendQuaternions(o.Rotation().Quaternion(), other.Rotation().Quaternion())
	rot := spatialmath.NewRotationMatrixFromQuat(q)
	axes := [3]r3.Vector{rot.Col(0), rot.Col(1), rot.Col(2)}

	lo := r3.Vector{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	hi := r3.Vector{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	a, b := o.Corners(), other.Corners()
	for _, c := range append(a[:], b[:]...) {
		diff := c.Sub(center)
		p := r3.Vector{X: diff.Dot(axes[0]), Y: diff.Dot(axes[1]), Z: diff.Dot(axes[2])}
		lo = spatialmath.MinComponents(lo, p)
		hi = spatialmath.MaxComponents(hi, p)
	}

	mid := lo.Add(hi).Mul(0.5)
	o.axes = axes
	o.extent = hi.Sub(lo).Mul(0.5)
	o.center = center.Add(axes[0].Mul(mid.X)).Add(axes[1].Mul(mid.Y)).Add(axes[2].Mul(mid.Z))
	o.cornersValid = false
}

// Contains reports whether point lies inside or on the box.
func (o *OBB) Contains(point r3.Vector) bool {
	if !o.IsValid() {
		return false
	}
	d := point.Sub(o.center)
	return math.Abs(d.Dot(o.axes[0])) <= o.extent.X &&
		math.Abs(d.Dot(o.axes[1])) <= o.extent.Y &&
		math.Abs(d.Dot(o.axes[2])) <= o.extent.Z
}

// DistanceToEdge returns the distance from point to the surface of the box, negative inside.
func (o *OBB) DistanceToEdge(point r3.Vector) float64 {
	return boxDistanceToEdge(o.center, o.axes, o.extent, point)
}

// WhichSide reports which side of plane the box is on.
func (o *OBB) WhichSide(plane spatialmath.Plane) spatialmath.Side {
	n := plane.Normal
	radius := math.Abs(o.extent.X*n.Dot(o.axes[0])) +
		math.Abs(o.extent.Y*n.Dot(o.axes[1])) +
		math.Abs(o.extent.Z*n.Dot(o.axes[2]))
	dist := plane.PseudoDistance(o.center)
	switch {
	case dist <= -radius:
		return spatialmath.Inside
	case dist >= radius:
		return spatialmath.Outside
	default:
		return spatialmath.Neither
	}
}

// IntersectsRay reports whether the ray passes through the box.
func (o *OBB) IntersectsRay(ray spatialmath.Ray) bool {
	if !o.IsValid() {
		return false
	}
	return boxIntersectsRay(o.center, o.axes, o.extent, ray)
}

// IntersectsRayWhere returns where the ray enters and leaves the box.
func (o *OBB) IntersectsRayWhere(ray spatialmath.Ray) *IntersectionRecord {
	if !o.IsValid() {
		return nil
	}
	return boxRayWhere(o.center, o.axes, o.extent, ray)
}

// Intersects reports whether the two volumes overlap.
func (o *OBB) Intersects(other Volume) bool {
	if other == nil {
		return false
	}
	return other.IntersectsOBB(o)
}

// IntersectsAABB runs the separating axis test against an axis aligned box.
func (o *OBB) IntersectsAABB(box *AABB) bool {
	if !o.IsValid() || !box.IsValid() {
		return false
	}
	return boxesIntersect(o.center, o.axes, o.extent, box.center, identityAxes, box.extent)
}

// IntersectsSphere reports whether the sphere overlaps the box's slabs.
func (o *OBB) IntersectsSphere(sphere *Sphere) bool {
	return obbIntersectsSphere(o, sphere)
}

// IntersectsOBB runs the separating axis test against another oriented box.
func (o *OBB) IntersectsOBB(box *OBB) bool {
	if !o.IsValid() || !box.IsValid() {
		return false
	}
	return boxesIntersect(o.center, o.axes, o.extent, box.center, box.axes, box.extent)
}

// Volume returns the volume of the box.
func (o *OBB) Volume() float64 {
	return 8 * o.extent.X * o.extent.Y * o.extent.Z
}

// Clone copies the box into store when it is an OBB, or into a new box.
func (o *OBB) Clone(store Volume) Volume {
	out, ok := store.(*OBB)
	if !ok || out == nil {
		out = &OBB{}
	}
	*out = *o
	return out
}

// IsValid reports whether the center, extents and axes are finite.
func (o *OBB) IsValid() bool {
	return spatialmath.IsFinite(o.center) && spatialmath.IsFinite(o.extent) &&
		spatialmath.IsFinite(o.axes[0]) && spatialmath.IsFinite(o.axes[1]) && spatialmath.IsFinite(o.axes[2])
}

func (o *OBB) String() string {
	return fmt.Sprintf("OBB{center: %v, extent: %v, axes: %v}", o.center, o.extent, o.axes)
}
