package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// QuaternionDot returns the four dimensional dot product of two quaternions.
func QuaternionDot(a, b quat.Number) float64 {
	return a.Real*b.Real + a.Imag*b.Imag + a.Jmag*b.Jmag + a.Kmag*b.Kmag
}

// Normalize returns q scaled to unit length. The zero quaternion normalizes to the identity.
func Normalize(q quat.Number) quat.Number {
	n := quat.Abs(q)
	if n < Epsilon {
		return quat.Number{Real: 1}
	}
	return quat.Scale(1/n, q)
}

// BlendQuaternions averages two orientations by summing them along the shorter arc and renormalizing.
func BlendQuaternions(a, b quat.Number) quat.Number {
	if QuaternionDot(a, b) < 0 {
		b = quat.Scale(-1, b)
	}
	return Normalize(quat.Add(a, b))
}

// QuaternionAlmostEqual is an equality test for quaternions which treats q and -q as equal.
func QuaternionAlmostEqual(a, b quat.Number, tol float64) bool {
	return math.Abs(math.Abs(QuaternionDot(Normalize(a), Normalize(b)))-1) < tol
}

// RotateVector rotates v by the unit quaternion q.
func RotateVector(q quat.Number, v r3.Vector) r3.Vector {
	p := quat.Mul(quat.Mul(q, quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}), quat.Conj(q))
	return r3.Vector{X: p.Imag, Y: p.Jmag, Z: p.Kmag}
}
