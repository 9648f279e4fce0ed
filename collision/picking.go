package collision

import (
	"github.com/golang/geo/r3"

	"go.viam.com/cullcore/spatialmath"
)

// CollisionData lists the touching triangles found between two meshes. SourceTris[i] touches
// TargetTris[i]; a triangle is listed once for every triangle it touches.
type CollisionData struct {
	Source     Mesh
	Target     Mesh
	SourceTris []int
	TargetTris []int
}

// FindTrianglePick returns the indices of the triangles of mesh hit by the ray, in tree order.
func FindTrianglePick(m *Manager, mesh Mesh, ray spatialmath.Ray) []int {
	tree := m.GetTree(mesh)
	if tree == nil {
		return nil
	}
	tree.UpdateWorldBounds()
	var hits []int
	tree.IntersectRay(ray, &hits)
	return hits
}

// HasTriangleCollision reports whether any triangle of a touches any triangle of b, with both meshes
// placed by their world transforms.
func HasTriangleCollision(m *Manager, a, b Mesh) bool {
	source, target := m.GetTree(a), m.GetTree(b)
	if source == nil || target == nil {
		return false
	}
	source.UpdateWorldBounds()
	return source.Intersect(target)
}

// FindTriangleCollision returns every pair of touching triangles between a and b, or nil when the
// meshes do not touch.
func FindTriangleCollision(m *Manager, a, b Mesh) *CollisionData {
	source, target := m.GetTree(a), m.GetTree(b)
	if source == nil || target == nil {
		return nil
	}
	source.UpdateWorldBounds()
	data := &CollisionData{Source: a, Target: b}
	if !source.IntersectLists(target, &data.SourceTris, &data.TargetTris) {
		return nil
	}
	return data
}

// FindClosestTriangle returns the triangle of mesh nearest to point, placed by its world transform, and
// the nearest point on it. ok is false for a mesh without triangles.
func FindClosestTriangle(m *Manager, mesh Mesh, point r3.Vector) (index int, closest r3.Vector, ok bool) {
	tree := m.GetTree(mesh)
	if tree == nil {
		return -1, r3.Vector{}, false
	}
	tree.UpdateWorldBounds()
	return tree.ClosestTriangle(point)
}
