package spatialmath

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestTriangleClosestPoint(t *testing.T) {
	tri := NewTriangle(r3.Vector{}, r3.Vector{X: 2}, r3.Vector{Y: 2})
	for _, tc := range []struct {
		name     string
		query    r3.Vector
		expected r3.Vector
	}{
		{"above the face", r3.Vector{X: 0.5, Y: 0.5, Z: 3}, r3.Vector{X: 0.5, Y: 0.5}},
		{"on the face", r3.Vector{X: 0.2, Y: 0.2}, r3.Vector{X: 0.2, Y: 0.2}},
		{"past an edge", r3.Vector{X: 1, Y: -3, Z: 1}, r3.Vector{X: 1}},
		{"past the hypotenuse", r3.Vector{X: 3, Y: 3}, r3.Vector{X: 1, Y: 1}},
		{"past a vertex", r3.Vector{X: 5, Y: -1}, r3.Vector{X: 2}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			pt := tri.ClosestPoint(tc.query)
			test.That(t, R3VectorAlmostEqual(pt, tc.expected, 1e-9), test.ShouldBeTrue)
			test.That(t, tri.DistanceTo(tc.query), test.ShouldAlmostEqual, tc.query.Distance(tc.expected))
		})
	}

	t.Run("degenerate", func(t *testing.T) {
		line := NewTriangle(r3.Vector{}, r3.Vector{X: 1}, r3.Vector{X: 2})
		test.That(t, R3VectorAlmostEqual(line.ClosestPoint(r3.Vector{X: 1.5, Y: 1}), r3.Vector{X: 1.5}, 1e-9), test.ShouldBeTrue)
	})
}

func TestTriangleProperties(t *testing.T) {
	tri := NewTriangle(r3.Vector{}, r3.Vector{X: 3}, r3.Vector{Y: 3})
	test.That(t, tri.Area(), test.ShouldAlmostEqual, 4.5)
	test.That(t, R3VectorAlmostEqual(tri.Centroid(), r3.Vector{X: 1, Y: 1}, 1e-12), test.ShouldBeTrue)
	test.That(t, R3VectorAlmostEqual(tri.Normal(), r3.Vector{Z: 1}, 1e-12), test.ShouldBeTrue)
	test.That(t, tri.IsDegenerate(), test.ShouldBeFalse)
	test.That(t, NewTriangle(r3.Vector{}, r3.Vector{X: 1}, r3.Vector{X: 2}).IsDegenerate(), test.ShouldBeTrue)

	moved := tri.Transform(NewTranslationTransform(r3.Vector{Z: 4}))
	test.That(t, moved.Points()[1], test.ShouldResemble, r3.Vector{X: 3, Z: 4})
}

func TestTrianglePlaneIntersectingSegment(t *testing.T) {
	tri := NewTriangle(r3.Vector{Z: -1}, r3.Vector{X: 2, Z: 1}, r3.Vector{Y: 2, Z: 1})

	p0, p1, ok := tri.TrianglePlaneIntersectingSegment(r3.Vector{}, r3.Vector{Z: 1})
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, p0.Z, test.ShouldAlmostEqual, 0)
	test.That(t, p1.Z, test.ShouldAlmostEqual, 0)
	test.That(t, p0.Sub(p1).Norm(), test.ShouldAlmostEqual, r3.Vector{X: 1, Y: -1}.Norm())

	_, _, ok = tri.TrianglePlaneIntersectingSegment(r3.Vector{Z: 5}, r3.Vector{Z: 1})
	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, tri.IntersectsPlane(r3.Vector{Z: 1}, r3.Vector{Z: 1}), test.ShouldBeTrue)

	flat := NewTriangle(r3.Vector{}, r3.Vector{X: 4}, r3.Vector{Y: 1})
	p0, p1, ok = flat.TrianglePlaneIntersectingSegment(r3.Vector{}, r3.Vector{Z: 1})
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, p0.Sub(p1).Norm(), test.ShouldAlmostEqual, r3.Vector{X: 4, Y: -1}.Norm())
}

func TestScratch(t *testing.T) {
	s := NewScratch()
	outer := s.Mark()
	a := s.Vectors(3)
	a[0] = r3.Vector{X: 1}
	inner := s.Mark()
	b := s.Vectors(100)
	test.That(t, s.InUse(), test.ShouldEqual, 103)
	b[0] = r3.Vector{Y: 1}
	// growing the arena must leave earlier vectors alone
	test.That(t, a[0], test.ShouldResemble, r3.Vector{X: 1})

	s.Release(inner)
	test.That(t, s.InUse(), test.ShouldEqual, 3)
	c := s.Vectors(1)
	test.That(t, c[0], test.ShouldResemble, r3.Vector{})
	s.Release(outer)
	test.That(t, s.InUse(), test.ShouldEqual, 0)

	var nilScratch *Scratch
	test.That(t, len(nilScratch.Vectors(4)), test.ShouldEqual, 4)
	nilScratch.Release(nilScratch.Mark())
	test.That(t, nilScratch.InUse(), test.ShouldEqual, 0)
}

func TestTriangleIntersectsTriangle(t *testing.T) {
	base := NewTriangle(r3.Vector{}, r3.Vector{X: 2}, r3.Vector{Y: 2})

	cases := []struct {
		name     string
		other    *Triangle
		expected bool
	}{
		{
			"piercing",
			NewTriangle(r3.Vector{X: 0.5, Y: 0.5, Z: -1}, r3.Vector{X: 0.5, Y: 0.5, Z: 1}, r3.Vector{X: 3, Y: 0.5, Z: 1}),
			true,
		},
		{
			"crossing the plane outside the face",
			NewTriangle(r3.Vector{X: 5, Y: 5, Z: -1}, r3.Vector{X: 5, Y: 5, Z: 1}, r3.Vector{X: 6, Y: 5, Z: 1}),
			false,
		},
		{
			"entirely above",
			NewTriangle(r3.Vector{Z: 1}, r3.Vector{X: 1, Z: 1}, r3.Vector{Y: 1, Z: 2}),
			false,
		},
		{
			"coplanar overlap",
			NewTriangle(r3.Vector{X: 0.5, Y: 0.5}, r3.Vector{X: 3, Y: 0.5}, r3.Vector{X: 0.5, Y: 3}),
			true,
		},
		{
			"coplanar apart",
			NewTriangle(r3.Vector{X: 3, Y: 3}, r3.Vector{X: 4, Y: 3}, r3.Vector{X: 3, Y: 4}),
			false,
		},
		{
			"degenerate",
			NewTriangle(r3.Vector{}, r3.Vector{X: 1}, r3.Vector{X: 2}),
			false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			test.That(t, base.IntersectsTriangle(tc.other), test.ShouldEqual, tc.expected)
			test.That(t, tc.other.IntersectsTriangle(base), test.ShouldEqual, tc.expected)
		})
	}
}
