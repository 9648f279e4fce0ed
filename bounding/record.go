package bounding

import (
	"math"

	"github.com/golang/geo/r3"

	"go.viam.com/cullcore/spatialmath"
)

// IntersectionRecord holds the points where a ray crosses a surface, ordered along the ray, with the
// distance from the ray origin to each.
type IntersectionRecord struct {
	Distances []float64
	Points    []r3.Vector
}

func newIntersectionRecord(ray spatialmath.Ray, distances ...float64) *IntersectionRecord {
	rec := &IntersectionRecord{Distances: distances, Points: make([]r3.Vector, len(distances))}
	for i, d := range distances {
		rec.Points[i] = ray.PointAt(d)
	}
	return rec
}

// Len returns the number of intersections. A nil record has none.
func (rec *IntersectionRecord) Len() int {
	if rec == nil {
		return 0
	}
	return len(rec.Distances)
}

// ClosestIndex returns the index of the intersection nearest the ray origin, or -1 when there is none.
func (rec *IntersectionRecord) ClosestIndex() int {
	idx, best := -1, math.Inf(1)
	for i := 0; i < rec.Len(); i++ {
		if rec.Distances[i] < best {
			idx, best = i, rec.Distances[i]
		}
	}
	return idx
}

// FurthestIndex returns the index of the intersection furthest from the ray origin, or -1 when there is
// none.
func (rec *IntersectionRecord) FurthestIndex() int {
	idx, best := -1, math.Inf(-1)
	for i := 0; i < rec.Len(); i++ {
		if rec.Distances[i] > best {
			idx, best = i, rec.Distances[i]
		}
	}
	return idx
}

// ClosestDistance returns the smallest distance, or +Inf when there are no intersections.
func (rec *IntersectionRecord) ClosestDistance() float64 {
	if i := rec.ClosestIndex(); i >= 0 {
		return rec.Distances[i]
	}
	return math.Inf(1)
}

// FurthestDistance returns the largest distance, or -Inf when there are no intersections.
func (rec *IntersectionRecord) FurthestDistance() float64 {
	if i := rec.FurthestIndex(); i >= 0 {
		return rec.Distances[i]
	}
	return math.Inf(-1)
}

// ClosestPoint returns the intersection nearest the ray origin.
func (rec *IntersectionRecord) ClosestPoint() (r3.Vector, bool) {
	if i := rec.ClosestIndex(); i >= 0 {
		return rec.Points[i], true
	}
	return r3.Vector{}, false
}
