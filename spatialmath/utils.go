// Package spatialmath defines the geometric primitives used by the bounding volume and collision
// packages: vectors, rotation matrices, quaternions, planes, rays, triangles and meshes.
package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
)

const (
	// Epsilon is the machine epsilon for float64, used to guard divisions by near-zero lengths.
	Epsilon = 2.220446049250313e-16
	// ZeroTolerance is the threshold under which a quantity is considered to be zero.
	ZeroTolerance = 0.0001

	floatEpsilon = 1e-6
)

// Float64AlmostEqual states whether two float64s are within the given epsilon of each other.
func Float64AlmostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}

// R3VectorAlmostEqual compares two r3.Vector objects and returns if the all elementwise differences are less than epsilon.
func R3VectorAlmostEqual(a, b r3.Vector, epsilon float64) bool {
	return math.Abs(a.X-b.X) < epsilon && math.Abs(a.Y-b.Y) < epsilon && math.Abs(a.Z-b.Z) < epsilon
}

// IsFinite returns false if any component of v is NaN or infinite.
func IsFinite(v r3.Vector) bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// MulComponents multiplies two vectors component by component.
func MulComponents(a, b r3.Vector) r3.Vector {
	return r3.Vector{X: a.X * b.X, Y: a.Y * b.Y, Z: a.Z * b.Z}
}

// MinComponents returns the per-axis minimum of two vectors.
func MinComponents(a, b r3.Vector) r3.Vector {
	return r3.Vector{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)}
}

// MaxComponents returns the per-axis maximum of two vectors.
func MaxComponents(a, b r3.Vector) r3.Vector {
	return r3.Vector{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)}
}

// MaxAbsComponent returns the largest absolute component of v.
func MaxAbsComponent(v r3.Vector) float64 {
	return math.Max(math.Abs(v.X), math.Max(math.Abs(v.Y), math.Abs(v.Z)))
}

// Component returns the i-th component of v. It panics for an index outside [0,2].
func Component(v r3.Vector, i int) float64 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	case 2:
		return v.Z
	default:
		panic(newIndexOutOfRangeError("vector component", i))
	}
}

// WithComponent returns a copy of v with its i-th component replaced. It panics for an index outside [0,2].
func WithComponent(v r3.Vector, i int, f float64) r3.Vector {
	switch i {
	case 0:
		v.X = f
	case 1:
		v.Y = f
	case 2:
		v.Z = f
	default:
		panic(newIndexOutOfRangeError("vector component", i))
	}
	return v
}

// ClosestPointSegmentPoint takes a line segment defined by two points and a third point, and returns the point
// on the segment closest to the third point.
func ClosestPointSegmentPoint(segA, segB, pt r3.Vector) r3.Vector {
	ab := segB.Sub(segA)
	denom := ab.Norm2()
	if denom < floatEpsilon*floatEpsilon {
		return segA
	}
	t := pt.Sub(segA).Dot(ab) / denom
	t = math.Max(0, math.Min(1, t))
	return segA.Add(ab.Mul(t))
}

// PlaneNormal returns the unit normal of the plane defined by three points, following the right hand rule.
func PlaneNormal(p0, p1, p2 r3.Vector) r3.Vector {
	return p1.Sub(p0).Cross(p2.Sub(p0)).Normalize()
}
