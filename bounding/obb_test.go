package bounding

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/cullcore/spatialmath"
)

var unitExtent = r3.Vector{X: 1, Y: 1, Z: 1}

func rotatedZ(theta float64) *spatialmath.RotationMatrix {
	return spatialmath.NewRotationMatrixFromAxisAngle(theta, r3.Vector{Z: 1})
}

func TestOBBIntersects(t *testing.T) {
	box := NewAABB(r3.Vector{}, unitExtent)

	t.Run("far apart", func(t *testing.T) {
		o := NewOBB(r3.Vector{X: 10}, unitExtent, nil)
		test.That(t, o.Intersects(box), test.ShouldBeFalse)
		test.That(t, box.Intersects(o), test.ShouldBeFalse)
	})

	t.Run("rotated corner reaches in", func(t *testing.T) {
		o := NewOBB(r3.Vector{X: 2.2}, unitExtent, rotatedZ(math.Pi/4))
		test.That(t, o.Intersects(box), test.ShouldBeTrue)
		test.That(t, box.Intersects(o), test.ShouldBeTrue)
	})

	t.Run("rotated corner falls short", func(t *testing.T) {
		o := NewOBB(r3.Vector{X: 2.5}, unitExtent, rotatedZ(math.Pi/4))
		test.That(t, o.Intersects(box), test.ShouldBeFalse)
		test.That(t, box.Intersects(o), test.ShouldBeFalse)
	})

	t.Run("skewed boxes are symmetric", func(t *testing.T) {
		tilt := spatialmath.NewRotationMatrixFromAxisAngle(math.Pi/4, r3.Vector{X: 1}).
			MulMatrix(spatialmath.NewRotationMatrixFromAxisAngle(math.Pi/4, r3.Vector{Y: 1}))
		a := NewOBB(r3.Vector{}, r3.Vector{X: 3, Y: 0.1, Z: 0.1}, nil)
		b := NewOBB(r3.Vector{Y: 0.4, Z: 0.4}, r3.Vector{X: 3, Y: 0.1, Z: 0.1}, tilt)
		test.That(t, a.Intersects(b), test.ShouldEqual, b.Intersects(a))
	})

	t.Run("sphere", func(t *testing.T) {
		o := NewOBB(r3.Vector{}, r3.Vector{X: 2, Y: 1, Z: 1}, rotatedZ(math.Pi/2))
		test.That(t, o.Intersects(NewSphere(r3.Vector{Y: 2.5}, 1)), test.ShouldBeTrue)
		test.That(t, o.Intersects(NewSphere(r3.Vector{X: 2.5}, 1)), test.ShouldBeFalse)
		test.That(t, NewSphere(r3.Vector{X: 2.5}, 1).Intersects(o), test.ShouldBeFalse)
	})

	t.Run("invalid", func(t *testing.T) {
		o := NewOBB(r3.Vector{}, unitExtent, nil)
		o.SetAxes(r3.Vector{X: math.NaN()}, r3.Vector{Y: 1}, r3.Vector{Z: 1})
		test.That(t, o.IsValid(), test.ShouldBeFalse)
		test.That(t, o.Intersects(box), test.ShouldBeFalse)
		test.That(t, box.Intersects(o), test.ShouldBeFalse)
		test.That(t, o.Contains(r3.Vector{}), test.ShouldBeFalse)
	})
}

func TestOBBCorners(t *testing.T) {
	o := NewOBB(r3.Vector{}, r3.Vector{X: 1, Y: 2, Z: 3}, nil)
	corners := o.Corners()
	test.That(t, corners[0], test.ShouldResemble, r3.Vector{X: -1, Y: -2, Z: -3})
	test.That(t, corners[6], test.ShouldResemble, r3.Vector{X: 1, Y: 2, Z: 3})

	o.SetCenter(r3.Vector{X: 10})
	test.That(t, o.Corners()[6], test.ShouldResemble, r3.Vector{X: 11, Y: 2, Z: 3})

	o.SetExtent(unitExtent)
	test.That(t, o.Corners()[6], test.ShouldResemble, r3.Vector{X: 11, Y: 1, Z: 1})

	o.SetAxes(r3.Vector{Y: 1}, r3.Vector{X: -1}, r3.Vector{Z: 1})
	vectorsAlmostEqual(t, o.Corners()[6], r3.Vector{X: 9, Y: 1, Z: 1})

	clone, ok := o.Clone(nil).(*OBB)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, clone.Corners(), test.ShouldResemble, o.Corners())
}

func TestOBBRayWhere(t *testing.T) {
	o := NewOBB(r3.Vector{}, unitExtent, rotatedZ(math.Pi/4))
	ray := spatialmath.NewRay(r3.Vector{X: -5}, r3.Vector{X: 1})
	test.That(t, o.IntersectsRay(ray), test.ShouldBeTrue)
	rec := o.IntersectsRayWhere(ray)
	test.That(t, rec.Len(), test.ShouldEqual, 2)
	test.That(t, rec.Distances[0], test.ShouldAlmostEqual, 5-math.Sqrt2)
	test.That(t, rec.Distances[1], test.ShouldAlmostEqual, 5+math.Sqrt2)

	miss := spatialmath.NewRay(r3.Vector{X: -5, Y: 1.5}, r3.Vector{X: 1})
	test.That(t, o.IntersectsRay(miss), test.ShouldBeFalse)
	test.That(t, o.IntersectsRayWhere(miss), test.ShouldBeNil)
}

func TestOBBContains(t *testing.T) {
	o := NewOBB(r3.Vector{X: 1}, r3.Vector{X: 2, Y: 1, Z: 1}, rotatedZ(math.Pi/2))
	test.That(t, o.Contains(r3.Vector{X: 1, Y: 1.5}), test.ShouldBeTrue)
	test.That(t, o.Contains(r3.Vector{X: 2.5}), test.ShouldBeFalse)
	// the surface counts as inside
	test.That(t, o.Contains(r3.Vector{X: 1, Y: 2}), test.ShouldBeTrue)
	test.That(t, o.DistanceToEdge(r3.Vector{X: 4}), test.ShouldAlmostEqual, 2)
	test.That(t, o.DistanceToEdge(r3.Vector{X: 1}), test.ShouldAlmostEqual, -1)
	test.That(t, o.Volume(), test.ShouldAlmostEqual, 16)

	test.That(t, o.WhichSide(spatialmath.NewPlane(r3.Vector{Y: 1}, r3.Vector{Y: 2.5})), test.ShouldEqual, spatialmath.Inside)
	test.That(t, o.WhichSide(spatialmath.NewPlane(r3.Vector{Y: 1}, r3.Vector{Y: -2.5})), test.ShouldEqual, spatialmath.Outside)
	test.That(t, o.WhichSide(spatialmath.NewPlane(r3.Vector{X: 1}, r3.Vector{X: 1})), test.ShouldEqual, spatialmath.Neither)
}

func TestOBBCompute(t *testing.T) {
	o := NewOBB(r3.Vector{}, unitExtent, rotatedZ(1))
	mesh := spatialmath.NewBoxMesh(r3.Vector{Y: 3}, r3.Vector{X: 1, Y: 2, Z: 3}, nil)
	o.ComputeFromTriangles(mesh, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}, spatialmath.NewScratch())
	test.That(t, o.Axes(), test.ShouldResemble, identityAxes)
	vectorsAlmostEqual(t, o.Center(), r3.Vector{Y: 3})
	vectorsAlmostEqual(t, o.Extent(), r3.Vector{X: 1, Y: 2, Z: 3})

	o.ComputeFromPoints(nil)
	vectorsAlmostEqual(t, o.Center(), r3.Vector{Y: 3})

	o.ComputeFromTriangleList([]*spatialmath.Triangle{
		spatialmath.NewTriangle(r3.Vector{}, r3.Vector{X: 2}, r3.Vector{Y: 4}),
	})
	vectorsAlmostEqual(t, o.Extent(), r3.Vector{X: 1, Y: 2})
}

func TestOBBTransform(t *testing.T) {
	o := NewOBB(r3.Vector{X: 1}, r3.Vector{X: 1, Y: 2, Z: 3}, rotatedZ(0.3))
	tf := spatialmath.NewTransform(rotatedZ(math.Pi/2), r3.Vector{Z: 4}, r3.Vector{X: 2, Y: 2, Z: 2})

	moved, ok := o.Transform(tf, nil).(*OBB)
	test.That(t, ok, test.ShouldBeTrue)
	vectorsAlmostEqual(t, moved.Extent(), r3.Vector{X: 2, Y: 4, Z: 6})
	movedCorners := moved.Corners()
	for i, c := range o.Corners() {
		vectorsAlmostEqual(t, movedCorners[i], tf.Apply(c))
	}

	inv, err := tf.Inverse()
	test.That(t, err, test.ShouldBeNil)
	back, ok := moved.Transform(inv, nil).(*OBB)
	test.That(t, ok, test.ShouldBeTrue)
	backCorners := back.Corners()
	for i, c := range o.Corners() {
		vectorsAlmostEqual(t, backCorners[i], c)
	}

	t.Run("non uniform scale on a rotated box refits", func(t *testing.T) {
		stretch := spatialmath.NewTransform(nil, r3.Vector{}, r3.Vector{X: 3, Y: 1, Z: 1})
		fit := o.Transform(stretch, nil)
		for _, c := range o.Corners() {
			test.That(t, fit.DistanceToEdge(stretch.Apply(c)), test.ShouldBeLessThanOrEqualTo, 1e-9)
		}
	})
}

func TestOBBMerge(t *testing.T) {
	a := NewOBB(r3.Vector{}, r3.Vector{X: 2, Y: 1, Z: 1}, rotatedZ(0.4))
	b := NewOBB(r3.Vector{X: 3, Y: 1}, r3.Vector{X: 1, Y: 1, Z: 2}, rotatedZ(0.8))
	before := a.String()

	merged, ok := a.Merge(b).(*OBB)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, a.String(), test.ShouldEqual, before)

	axes := merged.Axes()
	for i := 0; i < 3; i++ {
		test.That(t, axes[i].Norm(), test.ShouldAlmostEqual, 1)
		test.That(t, axes[i].Dot(axes[(i+1)%3]), test.ShouldAlmostEqual, 0)
	}
	// blended orientation is halfway between the inputs
	vectorsAlmostEqual(t, axes[0], rotatedZ(0.6).Col(0))

	for _, v := range []*OBB{a, b} {
		for _, c := range v.Corners() {
			test.That(t, merged.DistanceToEdge(c), test.ShouldBeLessThanOrEqualTo, 1e-9)
		}
	}
}
