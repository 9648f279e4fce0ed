package bounding

import (
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/cullcore/spatialmath"
)

func TestSphereContains(t *testing.T) {
	s := NewSphere(r3.Vector{}, 2)
	test.That(t, s.Contains(r3.Vector{X: 1, Y: 1, Z: 1}), test.ShouldBeTrue)
	test.That(t, s.Contains(r3.Vector{X: 2, Y: 2}), test.ShouldBeFalse)
	test.That(t, s.Contains(r3.Vector{X: 2}), test.ShouldBeFalse)
	test.That(t, s.DistanceToEdge(r3.Vector{X: 5}), test.ShouldAlmostEqual, 3)
	test.That(t, s.DistanceToEdge(r3.Vector{}), test.ShouldAlmostEqual, -2)
	test.That(t, s.Volume(), test.ShouldAlmostEqual, 32*math.Pi/3)

	s.SetCenter(r3.Vector{X: math.Inf(1)})
	test.That(t, s.IsValid(), test.ShouldBeFalse)
	test.That(t, s.Contains(r3.Vector{}), test.ShouldBeFalse)
}

func TestSphereComputeFromPoints(t *testing.T) {
	t.Run("two points", func(t *testing.T) {
		s := &Sphere{}
		s.ComputeFromPoints([]r3.Vector{{}, {X: 2}})
		vectorsAlmostEqual(t, s.Center(), r3.Vector{X: 1})
		test.That(t, s.Radius(), test.ShouldAlmostEqual, 1, 1e-4)
	})

	t.Run("cube corners", func(t *testing.T) {
		corners := NewAABB(r3.Vector{X: 3}, r3.Vector{X: 1, Y: 1, Z: 1}).Corners()
		s := &Sphere{}
		s.ComputeFromPoints(corners[:])
		test.That(t, s.Radius(), test.ShouldAlmostEqual, math.Sqrt(3), 1e-3)
		test.That(t, spatialmath.R3VectorAlmostEqual(s.Center(), r3.Vector{X: 3}, 1e-3), test.ShouldBeTrue)
		for _, c := range corners {
			test.That(t, s.DistanceToEdge(c), test.ShouldBeLessThanOrEqualTo, 1e-9)
		}
	})

	t.Run("random cloud", func(t *testing.T) {
		rnd := rand.New(rand.NewSource(7))
		pts := make([]r3.Vector, 200)
		for i := range pts {
			pts[i] = r3.Vector{X: rnd.Float64()*10 - 5, Y: rnd.Float64() * 3, Z: rnd.NormFloat64()}
		}
		s := &Sphere{}
		s.ComputeFromPoints(pts)
		for _, p := range pts {
			test.That(t, s.DistanceToEdge(p), test.ShouldBeLessThanOrEqualTo, 1e-9)
		}
		// no bigger than the sphere around the bounding box
		box := &AABB{}
		box.ComputeFromPoints(pts)
		test.That(t, s.Radius(), test.ShouldBeLessThanOrEqualTo, box.Extent().Norm()+1e-3)
	})

	t.Run("collinear and coplanar points", func(t *testing.T) {
		s := &Sphere{}
		line := []r3.Vector{{}, {X: 1}, {X: 2}, {X: 4}}
		s.ComputeFromPoints(line)
		for _, p := range line {
			test.That(t, s.DistanceToEdge(p), test.ShouldBeLessThanOrEqualTo, 1e-9)
		}
		square := []r3.Vector{{}, {X: 1}, {X: 1, Y: 1}, {Y: 1}, {X: 0.5, Y: 0.5}}
		s.ComputeFromPoints(square)
		for _, p := range square {
			test.That(t, s.DistanceToEdge(p), test.ShouldBeLessThanOrEqualTo, 1e-9)
		}
	})
}

func TestSphereComputeFromTriangles(t *testing.T) {
	mesh := spatialmath.NewBoxMesh(r3.Vector{Z: 2}, r3.Vector{X: 1, Y: 1, Z: 1}, nil)
	s := &Sphere{}
	s.ComputeFromTriangles(mesh, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}, nil)
	for _, v := range mesh.Vertices() {
		test.That(t, s.DistanceToEdge(v), test.ShouldBeLessThanOrEqualTo, 0)
	}

	fromList := &Sphere{}
	fromList.ComputeFromTriangleList(mesh.Triangles())
	test.That(t, fromList.Radius(), test.ShouldAlmostEqual, s.Radius())
}

func TestSphereRay(t *testing.T) {
	s := NewSphere(r3.Vector{}, 2)

	t.Run("through", func(t *testing.T) {
		ray := spatialmath.NewRay(r3.Vector{X: -5}, r3.Vector{X: 1})
		test.That(t, s.IntersectsRay(ray), test.ShouldBeTrue)
		rec := s.IntersectsRayWhere(ray)
		test.That(t, rec.Len(), test.ShouldEqual, 2)
		test.That(t, rec.Distances[0], test.ShouldAlmostEqual, 3)
		test.That(t, rec.Distances[1], test.ShouldAlmostEqual, 7)
		test.That(t, rec.FurthestIndex(), test.ShouldEqual, 1)
	})

	t.Run("from inside", func(t *testing.T) {
		ray := spatialmath.NewRay(r3.Vector{}, r3.Vector{Y: 1})
		test.That(t, s.IntersectsRay(ray), test.ShouldBeTrue)
		rec := s.IntersectsRayWhere(ray)
		test.That(t, rec.Len(), test.ShouldEqual, 1)
		vectorsAlmostEqual(t, rec.Points[0], r3.Vector{Y: 2})
	})

	t.Run("grazing", func(t *testing.T) {
		ray := spatialmath.NewRay(r3.Vector{X: -5, Y: 2}, r3.Vector{X: 1})
		rec := s.IntersectsRayWhere(ray)
		test.That(t, rec.Len(), test.ShouldEqual, 1)
		test.That(t, rec.Distances[0], test.ShouldAlmostEqual, 5)
	})

	t.Run("miss", func(t *testing.T) {
		for _, ray := range []spatialmath.Ray{
			spatialmath.NewRay(r3.Vector{X: -5, Y: 3}, r3.Vector{X: 1}),
			spatialmath.NewRay(r3.Vector{X: -5}, r3.Vector{X: -1}),
		} {
			test.That(t, s.IntersectsRay(ray), test.ShouldBeFalse)
			test.That(t, s.IntersectsRayWhere(ray), test.ShouldBeNil)
		}
	})
}

func TestSphereMerge(t *testing.T) {
	t.Run("disjoint", func(t *testing.T) {
		a := NewSphere(r3.Vector{}, 1)
		merged, ok := a.Merge(NewSphere(r3.Vector{X: 4}, 1)).(*Sphere)
		test.That(t, ok, test.ShouldBeTrue)
		vectorsAlmostEqual(t, merged.Center(), r3.Vector{X: 2})
		test.That(t, merged.Radius(), test.ShouldAlmostEqual, 3)
		test.That(t, a.Radius(), test.ShouldEqual, 1)
	})

	t.Run("one holds the other", func(t *testing.T) {
		big := NewSphere(r3.Vector{}, 5)
		small := NewSphere(r3.Vector{X: 1}, 1)
		merged, ok := big.Merge(small).(*Sphere)
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, merged.Radius(), test.ShouldEqual, 5)
		merged, ok = small.Merge(big).(*Sphere)
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, merged.Radius(), test.ShouldEqual, 5)
		test.That(t, merged.Center(), test.ShouldResemble, r3.Vector{})
	})

	t.Run("in place", func(t *testing.T) {
		a := NewSphere(r3.Vector{}, 1)
		test.That(t, a.MergeInPlace(NewAABB(r3.Vector{X: 4}, r3.Vector{X: 1, Y: 1, Z: 1})), test.ShouldEqual, a)
		test.That(t, a.Radius(), test.ShouldBeGreaterThan, 1)
	})
}

func TestSphereTransform(t *testing.T) {
	s := NewSphere(r3.Vector{X: 1}, 2)
	tf := spatialmath.NewTransform(
		spatialmath.NewRotationMatrixFromAxisAngle(math.Pi/2, r3.Vector{Z: 1}),
		r3.Vector{Z: 5},
		r3.Vector{X: 1, Y: 3, Z: -2},
	)
	moved, ok := s.Transform(tf, nil).(*Sphere)
	test.That(t, ok, test.ShouldBeTrue)
	vectorsAlmostEqual(t, moved.Center(), r3.Vector{Y: 1, Z: 5})
	test.That(t, moved.Radius(), test.ShouldAlmostEqual, 6+radiusEpsilon-1)

	store := &Sphere{}
	test.That(t, s.Transform(tf, store), test.ShouldEqual, store)
}

func TestSphereTransformShear(t *testing.T) {
	shear, err := spatialmath.NewRotationMatrix([]float64{1, 2, 0, 0, 1, 0, 0, 0, 1})
	test.That(t, err, test.ShouldBeNil)
	tf := spatialmath.NewTransform(shear, r3.Vector{Z: 1}, r3.Vector{X: 1, Y: 1, Z: 1})

	s := NewSphere(r3.Vector{}, 1)
	moved, ok := s.Transform(tf, nil).(*Sphere)
	test.That(t, ok, test.ShouldBeTrue)
	vectorsAlmostEqual(t, moved.Center(), r3.Vector{Z: 1})
	test.That(t, moved.Radius(), test.ShouldAlmostEqual, 1+math.Sqrt2+radiusEpsilon-1, 1e-9)

	// every point of the unit sphere lands inside the moved sphere
	for i := 0; i < 64; i++ {
		theta := float64(i) * math.Pi / 32
		for _, z := range []float64{-0.5, 0, 0.5} {
			r := math.Sqrt(1 - z*z)
			p := r3.Vector{X: r * math.Cos(theta), Y: r * math.Sin(theta), Z: z}
			test.That(t, moved.DistanceTo(tf.Apply(p)), test.ShouldBeLessThanOrEqualTo, moved.Radius())
		}
	}
}

func TestSphereWhichSide(t *testing.T) {
	s := NewSphere(r3.Vector{}, 1)
	up := r3.Vector{Z: 1}
	test.That(t, s.WhichSide(spatialmath.NewPlane(up, r3.Vector{Z: 1})), test.ShouldEqual, spatialmath.Inside)
	test.That(t, s.WhichSide(spatialmath.NewPlane(up, r3.Vector{Z: -3})), test.ShouldEqual, spatialmath.Outside)
	test.That(t, s.WhichSide(spatialmath.NewPlane(up, r3.Vector{Z: 0.5})), test.ShouldEqual, spatialmath.Neither)
}
