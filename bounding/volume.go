// Package bounding defines the bounding volumes used to cull collision and picking queries: axis aligned
// boxes, spheres and oriented boxes. Every volume can be fit to points or triangles, moved by a transform,
// merged with any other volume, and tested against rays, planes and other volumes.
package bounding

import (
	"fmt"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/cullcore/spatialmath"
)

// Type identifies a bounding volume variant.
type Type uint8

// The closed set of bounding volume variants.
const (
	TypeAABB Type = iota
	TypeSphere
	TypeOBB
)

func (t Type) String() string {
	switch t {
	case TypeAABB:
		return "aabb"
	case TypeSphere:
		return "sphere"
	case TypeOBB:
		return "obb"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// ParseType converts a name such as "aabb", "sphere" or "obb" into a Type.
func ParseType(name string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "aabb", "box":
		return TypeAABB, nil
	case "sphere":
		return TypeSphere, nil
	case "obb":
		return TypeOBB, nil
	default:
		return 0, errors.Errorf("unknown bounding volume type %q", name)
	}
}

// TriangleSource gives access to the vertices of indexed triangles.
type TriangleSource interface {
	Triangle(index int) [3]r3.Vector
}

// Volume is a closed region of space that encloses some geometry.
type Volume interface {
	fmt.Stringer

	Type() Type
	Center() r3.Vector
	SetCenter(center r3.Vector)

	// CheckPlane is a hint for frustum style culling: the index of the last plane that rejected this
	// volume. It has no effect on any result.
	CheckPlane() int
	SetCheckPlane(plane int)

	// ComputeFromPoints fits the volume around points. An empty input leaves the volume untouched.
	ComputeFromPoints(points []r3.Vector)
	// ComputeFromTriangles fits the volume around the listed triangles of src. Temporary vertex buffers
	// come from scratch, which may be nil.
	ComputeFromTriangles(src TriangleSource, indices []int, scratch *spatialmath.Scratch)
	ComputeFromTriangleList(tris []*spatialmath.Triangle)

	// Transform returns the volume moved by tf. store is reused when it has the same variant.
	Transform(tf *spatialmath.Transform, store Volume) Volume
	TransformQuat(q quat.Number, translation, scale r3.Vector, store Volume) Volume

	// Merge returns a new volume of the receiver's variant enclosing both volumes.
	Merge(other Volume) Volume
	// MergeInPlace grows the receiver to enclose other and returns it.
	MergeInPlace(other Volume) Volume

	Contains(point r3.Vector) bool
	// DistanceToEdge is the distance from point to the surface, negative or zero inside the volume.
	DistanceToEdge(point r3.Vector) float64
	DistanceTo(point r3.Vector) float64
	DistanceSquaredTo(point r3.Vector) float64
	WhichSide(plane spatialmath.Plane) spatialmath.Side

	IntersectsRay(ray spatialmath.Ray) bool
	// IntersectsRayWhere returns where the ray enters and leaves the volume, or nil on a miss.
	IntersectsRayWhere(ray spatialmath.Ray) *IntersectionRecord

	Intersects(other Volume) bool
	IntersectsAABB(box *AABB) bool
	IntersectsSphere(sphere *Sphere) bool
	IntersectsOBB(box *OBB) bool

	Volume() float64
	Clone(store Volume) Volume
	// IsValid is false when any component of the volume is NaN or infinite.
	IsValid() bool
}

// NewVolume returns an empty volume of the given type.
func NewVolume(t Type) Volume {
	switch t {
	case TypeAABB:
		return &AABB{}
	case TypeSphere:
		return &Sphere{}
	case TypeOBB:
		return NewOBB(r3.Vector{}, r3.Vector{}, nil)
	default:
		panic(newUnknownVolumeError(t))
	}
}

func newUnknownVolumeError(v interface{}) error {
	return errors.Errorf("unknown bounding volume %v", v)
}

// base holds the fields shared by every variant.
type base struct {
	center     r3.Vector
	checkPlane int
}

// Center returns the center of the volume.
func (b *base) Center() r3.Vector {
	return b.center
}

// SetCenter moves the volume.
func (b *base) SetCenter(center r3.Vector) {
	b.center = center
}

// CheckPlane returns the culling hint.
func (b *base) CheckPlane() int {
	return b.checkPlane
}

// SetCheckPlane sets the culling hint.
func (b *base) SetCheckPlane(plane int) {
	b.checkPlane = plane
}

// DistanceTo returns the distance from the center to point.
func (b *base) DistanceTo(point r3.Vector) float64 {
	return b.center.Distance(point)
}

// DistanceSquaredTo returns the squared distance from the center to point.
func (b *base) DistanceSquaredTo(point r3.Vector) float64 {
	return b.center.Sub(point).Norm2()
}

// triangleVertices gathers the vertices of the listed triangles into a scratch buffer.
func triangleVertices(src TriangleSource, indices []int, scratch *spatialmath.Scratch) []r3.Vector {
	pts := scratch.Vectors(3 * len(indices))
	for i, idx := range indices {
		tri := src.Triangle(idx)
		copy(pts[3*i:3*i+3], tri[:])
	}
	return pts
}

func triangleListVertices(tris []*spatialmath.Triangle) []r3.Vector {
	pts := make([]r3.Vector, 0, 3*len(tris))
	for _, tri := range tris {
		pts = append(pts, tri.Points()...)
	}
	return pts
}

// minMax returns the per-axis bounds of points, which must be non-empty.
func minMax(points []r3.Vector) (r3.Vector, r3.Vector) {
	lo, hi := points[0], points[0]
	for _, p := range points[1:] {
		lo = spatialmath.MinComponents(lo, p)
		hi = spatialmath.MaxComponents(hi, p)
	}
	return lo, hi
}

// boxCorners lists the corners of a box in a fixed order: the bottom face (negative third axis)
// counter-clockwise starting at the all-negative corner, then the top face in the same order.
func boxCorners(center r3.Vector, axes [3]r3.Vector, extent r3.Vector) [8]r3.Vector {
	x := axes[0].Mul(extent.X)
	y := axes[1].Mul(extent.Y)
	z := axes[2].Mul(extent.Z)
	return [8]r3.Vector{
		center.Sub(x).Sub(y).Sub(z),
		center.Add(x).Sub(y).Sub(z),
		center.Add(x).Add(y).Sub(z),
		center.Sub(x).Add(y).Sub(z),
		center.Sub(x).Sub(y).Add(z),
		center.Add(x).Sub(y).Add(z),
		center.Add(x).Add(y).Add(z),
		center.Sub(x).Add(y).Add(z),
	}
}

var identityAxes = [3]r3.Vector{{X: 1}, {Y: 1}, {Z: 1}}

// sphereExtremes returns the corners of the cube circumscribing a sphere.
func sphereExtremes(center r3.Vector, radius float64) [8]r3.Vector {
	return boxCorners(center, identityAxes, r3.Vector{X: radius, Y: radius, Z: radius})
}
