package bounding

import (
	"math"

	"github.com/golang/geo/r3"

	"go.viam.com/cullcore/spatialmath"
)

// parallelCutoff is the |cos| above which two box axes are treated as parallel, in which case the edge
// cross product axes carry no information.
const parallelCutoff = 0.999999

func aabbIntersectsAABB(a, b *AABB) bool {
	if !a.IsValid() || !b.IsValid() {
		return false
	}
	aMin, aMax := a.Min(), a.Max()
	bMin, bMax := b.Min(), b.Max()
	return !(aMax.X < bMin.X || aMin.X > bMax.X ||
		aMax.Y < bMin.Y || aMin.Y > bMax.Y ||
		aMax.Z < bMin.Z || aMin.Z > bMax.Z)
}

func aabbIntersectsSphere(a *AABB, s *Sphere) bool {
	if !a.IsValid() || !s.IsValid() {
		return false
	}
	d := s.center.Sub(a.center)
	return math.Abs(d.X) < s.radius+a.extent.X &&
		math.Abs(d.Y) < s.radius+a.extent.Y &&
		math.Abs(d.Z) < s.radius+a.extent.Z
}

func sphereIntersectsSphere(a, b *Sphere) bool {
	if !a.IsValid() || !b.IsValid() {
		return false
	}
	rsum := a.radius + b.radius
	return a.center.Sub(b.center).Norm2() <= rsum*rsum
}

func obbIntersectsSphere(o *OBB, s *Sphere) bool {
	if !o.IsValid() || !s.IsValid() {
		return false
	}
	d := s.center.Sub(o.center)
	return math.Abs(d.Dot(o.axes[0])) < s.radius+o.extent.X &&
		math.Abs(d.Dot(o.axes[1])) < s.radius+o.extent.Y &&
		math.Abs(d.Dot(o.axes[2])) < s.radius+o.extent.Z
}

// boxesIntersect is the separating axis test between two oriented boxes: the three face normals of each
// box, then the nine edge cross products unless some pair of axes is parallel.
func boxesIntersect(centerA r3.Vector, axesA [3]r3.Vector, extentA, centerB r3.Vector, axesB [3]r3.Vector, extentB r3.Vector) bool {
	var c, absC [3][3]float64
	var ad [3]float64
	eA := [3]float64{extentA.X, extentA.Y, extentA.Z}
	eB := [3]float64{extentB.X, extentB.Y, extentB.Z}
	d := centerB.Sub(centerA)
	parallel := false

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			c[i][j] = axesA[i].Dot(axesB[j])
			absC[i][j] = math.Abs(c[i][j])
			if absC[i][j] > parallelCutoff {
				parallel = true
			}
		}
		ad[i] = axesA[i].Dot(d)
		rB := eB[0]*absC[i][0] + eB[1]*absC[i][1] + eB[2]*absC[i][2]
		if math.Abs(ad[i]) > eA[i]+rB {
			return false
		}
	}

	for j := 0; j < 3; j++ {
		rA := eA[0]*absC[0][j] + eA[1]*absC[1][j] + eA[2]*absC[2][j]
		if math.Abs(axesB[j].Dot(d)) > rA+eB[j] {
			return false
		}
	}

	if parallel {
		return true
	}

	for i := 0; i < 3; i++ {
		i1, i2 := (i+1)%3, (i+2)%3
		for j := 0; j < 3; j++ {
			j1, j2 := (j+1)%3, (j+2)%3
			r := math.Abs(ad[i2]*c[i1][j] - ad[i1]*c[i2][j])
			rA := eA[i1]*absC[i2][j] + eA[i2]*absC[i1][j]
			rB := eB[j1]*absC[i][j2] + eB[j2]*absC[i][j1]
			if r > rA+rB {
				return false
			}
		}
	}
	return true
}

// boxIntersectsRay runs the slab test on each box axis followed by the test on the cross product of
// the ray direction and the offset to the box.
func boxIntersectsRay(center r3.Vector, axes [3]r3.Vector, extent r3.Vector, ray spatialmath.Ray) bool {
	e := [3]float64{extent.X, extent.Y, extent.Z}
	diff := ray.Origin.Sub(center)
	var awdu [3]float64
	for i := 0; i < 3; i++ {
		wdu := ray.Direction.Dot(axes[i])
		awdu[i] = math.Abs(wdu)
		ddu := diff.Dot(axes[i])
		if math.Abs(ddu) > e[i] && ddu*wdu >= 0 {
			return false
		}
	}

	wCrossD := ray.Direction.Cross(diff)
	for i := 0; i < 3; i++ {
		i1, i2 := (i+1)%3, (i+2)%3
		if math.Abs(wCrossD.Dot(axes[i])) > e[i1]*awdu[i2]+e[i2]*awdu[i1] {
			return false
		}
	}
	return true
}

// boxRayWhere clips the ray's parameter interval [0, +Inf) against the six face planes of a box,
// working in the box's own frame.
func boxRayWhere(center r3.Vector, axes [3]r3.Vector, extent r3.Vector, ray spatialmath.Ray) *IntersectionRecord {
	e := [3]float64{extent.X, extent.Y, extent.Z}
	diff := ray.Origin.Sub(center)
	t := [2]float64{0, math.Inf(1)}

	for i := 0; i < 3; i++ {
		dir := ray.Direction.Dot(axes[i])
		off := diff.Dot(axes[i])
		if !clip(dir, -off-e[i], &t) || !clip(-dir, off-e[i], &t) {
			return nil
		}
	}
	if t[0] == 0 && math.IsInf(t[1], 1) {
		return nil
	}
	if t[1] > t[0] {
		return newIntersectionRecord(ray, t[0], t[1])
	}
	return newIntersectionRecord(ray, t[0])
}

// clip narrows the interval t to the part of the ray on the inner side of one plane, returning false
// when nothing is left.
func clip(denom, numer float64, t *[2]float64) bool {
	switch {
	case denom > 0:
		if numer > denom*t[1] {
			return false
		}
		if numer > denom*t[0] {
			t[0] = numer / denom
		}
		return true
	case denom < 0:
		if numer > denom*t[0] {
			return false
		}
		if numer > denom*t[1] {
			t[1] = numer / denom
		}
		return true
	default:
		return numer <= 0
	}
}

// boxDistanceToEdge measures from point to the surface of a box, negative inside.
func boxDistanceToEdge(center r3.Vector, axes [3]r3.Vector, extent r3.Vector, point r3.Vector) float64 {
	e := [3]float64{extent.X, extent.Y, extent.Z}
	diff := point.Sub(center)
	outside := 0.
	penetration := math.Inf(1)
	for i := 0; i < 3; i++ {
		excess := math.Abs(diff.Dot(axes[i])) - e[i]
		if excess > 0 {
			outside += excess * excess
		}
		penetration = math.Min(penetration, -excess)
	}
	if outside > 0 {
		return math.Sqrt(outside)
	}
	return -penetration
}
