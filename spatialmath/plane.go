package spatialmath

import (
	"fmt"

	"github.com/golang/geo/r3"
)

// Side classifies a point or volume against a plane.
type Side uint8

// The sides of a plane. Inside is the half space opposite the normal.
const (
	Neither = Side(iota)
	Inside
	Outside
)

func (s Side) String() string {
	switch s {
	case Inside:
		return "inside"
	case Outside:
		return "outside"
	case Neither:
		return "neither"
	default:
		return fmt.Sprintf("side(%d)", uint8(s))
	}
}

// Plane is the set of points p with Normal.Dot(p) == Constant.
type Plane struct {
	Normal   r3.Vector
	Constant float64
}

// NewPlane creates a plane from a normal, which is normalized, and a point on the plane.
func NewPlane(normal, point r3.Vector) Plane {
	n := normal.Normalize()
	return Plane{Normal: n, Constant: n.Dot(point)}
}

// NewPlaneFromPoints creates the plane through three points, with the normal following the right hand rule.
func NewPlaneFromPoints(p0, p1, p2 r3.Vector) Plane {
	return NewPlane(PlaneNormal(p0, p1, p2), p0)
}

// PseudoDistance returns the signed distance from the plane to p, positive on the normal's side.
func (p Plane) PseudoDistance(pt r3.Vector) float64 {
	return p.Normal.Dot(pt) - p.Constant
}

// WhichSide classifies a point.
func (p Plane) WhichSide(pt r3.Vector) Side {
	dist := p.PseudoDistance(pt)
	switch {
	case dist < 0:
		return Inside
	case dist > 0:
		return Outside
	default:
		return Neither
	}
}
