package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestTransformApply(t *testing.T) {
	tf := NewTransform(
		NewRotationMatrixFromAxisAngle(math.Pi/2, r3.Vector{Z: 1}),
		r3.Vector{X: 10},
		r3.Vector{X: 2, Y: 1, Z: 1},
	)
	// scale, then rotate, then translate
	test.That(t, R3VectorAlmostEqual(tf.Apply(r3.Vector{X: 1}), r3.Vector{X: 10, Y: 2}, 1e-9), test.ShouldBeTrue)
	test.That(t, R3VectorAlmostEqual(tf.ApplyVector(r3.Vector{X: 1}), r3.Vector{Y: 2}, 1e-9), test.ShouldBeTrue)

	back, err := tf.ApplyInverse(r3.Vector{X: 10, Y: 2})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, R3VectorAlmostEqual(back, r3.Vector{X: 1}, 1e-9), test.ShouldBeTrue)
	test.That(t, tf.IsRotationScale(), test.ShouldBeTrue)
}

func TestTransformInverse(t *testing.T) {
	tf := NewTransformFromQuat(
		NewRotationMatrixFromAxisAngle(0.7, r3.Vector{X: 1, Y: 1}).Quaternion(),
		r3.Vector{X: 1, Y: -2, Z: 3},
		r3.Vector{X: 2, Y: 2, Z: 2},
	)
	inv, err := tf.Inverse()
	test.That(t, err, test.ShouldBeNil)
	for _, p := range []r3.Vector{{}, {X: 1, Y: 2, Z: 3}, {X: -4, Y: 0.5, Z: 9}} {
		test.That(t, R3VectorAlmostEqual(inv.Apply(tf.Apply(p)), p, 1e-9), test.ShouldBeTrue)
	}

	tf.SetScale(r3.Vector{X: 1, Y: 2, Z: 3})
	_, err = tf.Inverse()
	test.That(t, err, test.ShouldNotBeNil)

	shear, err := NewRotationMatrix([]float64{1, 1, 0, 0, 1, 0, 0, 0, 1})
	test.That(t, err, test.ShouldBeNil)
	sheared := NewTransform(shear, r3.Vector{}, r3.Vector{X: 1, Y: 1, Z: 1})
	test.That(t, sheared.IsRotationScale(), test.ShouldBeFalse)
	_, err = sheared.Inverse()
	test.That(t, err, test.ShouldNotBeNil)
	local, err := sheared.ApplyInverse(sheared.Apply(r3.Vector{X: 1, Y: 2, Z: 3}))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, R3VectorAlmostEqual(local, r3.Vector{X: 1, Y: 2, Z: 3}, 1e-9), test.ShouldBeTrue)
}

func TestPlaneSides(t *testing.T) {
	p := NewPlane(r3.Vector{Z: 2}, r3.Vector{Z: 1})
	test.That(t, p.Constant, test.ShouldAlmostEqual, 1)
	test.That(t, p.PseudoDistance(r3.Vector{Z: 3}), test.ShouldAlmostEqual, 2)
	test.That(t, p.WhichSide(r3.Vector{Z: 3}), test.ShouldEqual, Outside)
	test.That(t, p.WhichSide(r3.Vector{Z: -3}), test.ShouldEqual, Inside)
	test.That(t, p.WhichSide(r3.Vector{X: 5, Z: 1}), test.ShouldEqual, Neither)
	test.That(t, Inside.String(), test.ShouldEqual, "inside")

	fromPts := NewPlaneFromPoints(r3.Vector{}, r3.Vector{X: 1}, r3.Vector{Y: 1})
	test.That(t, R3VectorAlmostEqual(fromPts.Normal, r3.Vector{Z: 1}, 1e-12), test.ShouldBeTrue)
}

func TestTransformMaxStretch(t *testing.T) {
	rigid := NewTransform(NewRotationMatrixFromAxisAngle(0.3, r3.Vector{Y: 1}), r3.Vector{X: 4}, r3.Vector{X: 1, Y: -3, Z: 2})
	test.That(t, rigid.MaxStretch(), test.ShouldAlmostEqual, 3)

	shear, err := NewRotationMatrix([]float64{1, 2, 0, 0, 1, 0, 0, 0, 1})
	test.That(t, err, test.ShouldBeNil)
	tf := NewTransform(shear, r3.Vector{}, r3.Vector{X: 1, Y: 1, Z: 1})
	test.That(t, tf.IsRotationScale(), test.ShouldBeFalse)
	test.That(t, tf.MaxStretch(), test.ShouldAlmostEqual, 1+math.Sqrt2, 1e-9)

	// no unit vector is stretched further
	for i := 0; i < 64; i++ {
		theta := float64(i) * math.Pi / 32
		dir := r3.Vector{X: math.Cos(theta), Y: math.Sin(theta)}
		test.That(t, tf.ApplyVector(dir).Norm(), test.ShouldBeLessThanOrEqualTo, tf.MaxStretch()+1e-9)
	}
}
