package spatialmath

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestRayIntersectsTriangle(t *testing.T) {
	a := r3.Vector{X: 0, Y: 0, Z: 0}
	b := r3.Vector{X: 2, Y: 0, Z: 0}
	c := r3.Vector{X: 0, Y: 2, Z: 0}

	cases := []struct {
		name     string
		ray      Ray
		hit      bool
		distance float64
	}{
		{"straight down", NewRay(r3.Vector{X: 0.5, Y: 0.5, Z: 5}, r3.Vector{Z: -1}), true, 5},
		{"from below", NewRay(r3.Vector{X: 0.5, Y: 0.5, Z: -3}, r3.Vector{Z: 1}), true, 3},
		{"pointing away", NewRay(r3.Vector{X: 0.5, Y: 0.5, Z: 5}, r3.Vector{Z: 1}), false, 0},
		{"outside hypotenuse", NewRay(r3.Vector{X: 1.5, Y: 1.5, Z: 5}, r3.Vector{Z: -1}), false, 0},
		{"parallel", NewRay(r3.Vector{X: -1, Y: 0.5, Z: 0}, r3.Vector{X: 1}), false, 0},
	}
	for _, c2 := range cases {
		t.Run(c2.name, func(t *testing.T) {
			dist, hit := c2.ray.IntersectsTriangle(a, b, c)
			test.That(t, hit, test.ShouldEqual, c2.hit)
			if hit {
				test.That(t, dist, test.ShouldAlmostEqual, c2.distance)
			}
		})
	}

	_, w1, w2, ok := NewRay(r3.Vector{X: 1, Y: 0.5, Z: 1}, r3.Vector{Z: -1}).TriangleBarycentric(a, b, c)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, w1, test.ShouldAlmostEqual, 0.5)
	test.That(t, w2, test.ShouldAlmostEqual, 0.25)

	_, ok = NewRay(r3.Vector{X: 1.5, Y: 1.5, Z: 5}, r3.Vector{Z: -1}).IntersectsParallelogram(a, b, c)
	test.That(t, ok, test.ShouldBeTrue)
}

func TestRayIntersectsPlane(t *testing.T) {
	p := NewPlane(r3.Vector{Z: 1}, r3.Vector{Z: 2})
	pt, ok := NewRay(r3.Vector{X: 1}, r3.Vector{Z: 1}).IntersectsPlane(p)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, R3VectorAlmostEqual(pt, r3.Vector{X: 1, Z: 2}, 1e-12), test.ShouldBeTrue)

	_, ok = NewRay(r3.Vector{X: 1}, r3.Vector{Z: -1}).IntersectsPlane(p)
	test.That(t, ok, test.ShouldBeFalse)
	_, ok = NewRay(r3.Vector{X: 1}, r3.Vector{Y: 1}).IntersectsPlane(p)
	test.That(t, ok, test.ShouldBeFalse)
}

func TestRayDistanceSquared(t *testing.T) {
	r := NewRay(r3.Vector{}, r3.Vector{X: 3})
	d, closest := r.DistanceSquared(r3.Vector{X: 2, Y: 2})
	test.That(t, d, test.ShouldAlmostEqual, 4)
	test.That(t, R3VectorAlmostEqual(closest, r3.Vector{X: 2}, 1e-12), test.ShouldBeTrue)

	d, closest = r.DistanceSquared(r3.Vector{X: -1, Y: 1})
	test.That(t, d, test.ShouldAlmostEqual, 2)
	test.That(t, closest, test.ShouldResemble, r3.Vector{})
	test.That(t, r.IsValid(), test.ShouldBeTrue)
}
