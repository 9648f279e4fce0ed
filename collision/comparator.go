package collision

import (
	"cmp"

	"github.com/golang/geo/r3"

	"go.viam.com/cullcore/bounding"
	"go.viam.com/cullcore/spatialmath"
)

// Comparator orders triangle indices by where the triangle centroids fall along one axis, measured from
// Center.
type Comparator struct {
	Axis   int
	Center r3.Vector
	Mesh   bounding.TriangleSource
}

// Compare returns a negative number when triangle a comes before triangle b, a positive number when it
// comes after and zero when they tie.
func (c *Comparator) Compare(a, b int) int {
	if a == b {
		return 0
	}
	return cmp.Compare(c.key(a), c.key(b))
}

func (c *Comparator) key(idx int) float64 {
	pts := c.Mesh.Triangle(idx)
	centroid := pts[0].Add(pts[1]).Add(pts[2]).Mul(1.0 / 3)
	return spatialmath.Component(centroid.Sub(c.Center), c.Axis)
}

// longestAxis returns 0, 1 or 2 for the largest component of extent. Ties go to the later axis.
func longestAxis(extent r3.Vector) int {
	if extent.X > extent.Y {
		if extent.X > extent.Z {
			return 0
		}
		return 2
	}
	if extent.Y > extent.Z {
		return 1
	}
	return 2
}
