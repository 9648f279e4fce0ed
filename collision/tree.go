// Package collision builds bounding volume hierarchies over triangle meshes and uses them to answer
// triangle level ray picks, nearest triangle lookups and mesh against mesh collision queries.
package collision

import (
	"math"
	"slices"

	"github.com/golang/geo/r3"
	"github.com/samber/lo"

	"go.viam.com/cullcore/bounding"
	"go.viam.com/cullcore/spatialmath"
)

// Mesh is the triangle geometry a Tree is built over. Triangles are addressed by index and stored in
// local space; WorldTransform places them in the world.
type Mesh interface {
	TriangleCount() int
	Triangle(index int) [3]r3.Vector
	WorldTriangle(index int) [3]r3.Vector
	WorldTransform() *spatialmath.Transform
}

// Tree is one node of a bounding volume hierarchy. Every node of a tree shares one slice of triangle
// indices and owns the range [start, end) of it; the children split that range in half.
type Tree struct {
	typ            bounding.Type
	maxTrisPerLeaf int

	left, right *Tree

	bounds      bounding.Volume
	worldBounds bounding.Volume

	triIndex   []int
	start, end int

	mesh    Mesh
	scratch *spatialmath.Scratch
}

// NewTree returns an empty tree that bounds its nodes with volumes of type typ and stops splitting
// once a node holds at most maxTrisPerLeaf triangles. A threshold below one is treated as one.
func NewTree(typ bounding.Type, maxTrisPerLeaf int) *Tree {
	if maxTrisPerLeaf < 1 {
		maxTrisPerLeaf = 1
	}
	return &Tree{typ: typ, maxTrisPerLeaf: maxTrisPerLeaf}
}

// Construct builds the tree over every triangle of mesh. With doSort set, each split groups the triangles
// along the longest axis of the node's bounds first.
func (t *Tree) Construct(mesh Mesh, doSort bool) {
	t.mesh = mesh
	t.scratch = spatialmath.NewScratch()
	t.triIndex = lo.Range(mesh.TriangleCount())
	t.CreateTree(0, len(t.triIndex), doSort)
}

// CreateTree (re)builds this node over positions [start, end) of the shared index slice.
func (t *Tree) CreateTree(start, end int, doSort bool) {
	t.start, t.end = start, end
	if t.triIndex == nil {
		return
	}

	if t.bounds == nil || t.bounds.Type() != t.typ {
		t.bounds = bounding.NewVolume(t.typ)
		t.worldBounds = bounding.NewVolume(t.typ)
	}
	t.computeBounds()

	if end-start <= t.maxTrisPerLeaf {
		t.left, t.right = nil, nil
		return
	}

	if doSort {
		t.sortTriangles()
	}

	mid := (start + end) / 2
	if t.left == nil {
		t.left = t.child()
	}
	t.left.CreateTree(start, mid, doSort)
	if t.right == nil {
		t.right = t.child()
	}
	t.right.CreateTree(mid, end, doSort)
}

func (t *Tree) child() *Tree {
	return &Tree{
		typ:            t.typ,
		maxTrisPerLeaf: t.maxTrisPerLeaf,
		triIndex:       t.triIndex,
		mesh:           t.mesh,
		scratch:        t.scratch,
	}
}

func (t *Tree) computeBounds() {
	t.bounds.ComputeFromTriangles(t.mesh, t.triIndex[t.start:t.end], t.scratch)
}

func (t *Tree) sortTriangles() {
	// spheres have no preferred axis, so they sort along X
	axis := 0
	switch b := t.bounds.(type) {
	case *bounding.AABB:
		axis = longestAxis(b.Extent())
	case *bounding.OBB:
		axis = longestAxis(b.Extent())
	}

	cmp := &Comparator{Axis: axis, Center: t.bounds.Center(), Mesh: t.mesh}
	slices.SortFunc(t.triIndex[t.start:t.end], cmp.Compare)
}

// UpdateWorldBounds moves the local bounds of this node into the world by the mesh's transform.
func (t *Tree) UpdateWorldBounds() {
	if t.bounds == nil || t.mesh == nil {
		return
	}
	t.worldBounds = t.bounds.Transform(t.mesh.WorldTransform(), t.worldBounds)
}

// IntersectsBounding reports whether this node's world bounds overlap v.
func (t *Tree) IntersectsBounding(v bounding.Volume) bool {
	if v == nil || t.worldBounds == nil {
		return false
	}
	switch vol := v.(type) {
	case *bounding.AABB:
		return t.worldBounds.IntersectsAABB(vol)
	case *bounding.OBB:
		return t.worldBounds.IntersectsOBB(vol)
	case *bounding.Sphere:
		return t.worldBounds.IntersectsSphere(vol)
	default:
		return false
	}
}

// Intersect reports whether any triangle under this node touches any triangle under other, stopping at
// the first hit. The world bounds of this node must be current; other's are refreshed here.
func (t *Tree) Intersect(other *Tree) bool {
	if other == nil || other.bounds == nil {
		return false
	}
	other.UpdateWorldBounds()
	if !t.IntersectsBounding(other.worldBounds) {
		return false
	}

	if !t.IsLeaf() {
		return other.Intersect(t.left) || other.Intersect(t.right)
	}
	if !other.IsLeaf() {
		return t.Intersect(other.left) || t.Intersect(other.right)
	}

	targets := other.worldTriangles()
	for _, source := range t.worldTriangles() {
		for _, target := range targets {
			if source.IntersectsTriangle(target) {
				return true
			}
		}
	}
	return false
}

// IntersectLists is like Intersect but visits every pair of overlapping leaves. For each pair of touching
// triangles the index from this tree is appended to aList and the index from other to bList.
func (t *Tree) IntersectLists(other *Tree, aList, bList *[]int) bool {
	if other == nil || other.bounds == nil {
		return false
	}
	other.UpdateWorldBounds()
	if !t.IntersectsBounding(other.worldBounds) {
		return false
	}

	if !t.IsLeaf() {
		hit := other.IntersectLists(t.left, bList, aList)
		return other.IntersectLists(t.right, bList, aList) || hit
	}
	if !other.IsLeaf() {
		hit := t.IntersectLists(other.left, aList, bList)
		return t.IntersectLists(other.right, aList, bList) || hit
	}

	hit := false
	targets := other.worldTriangles()
	for i, source := range t.worldTriangles() {
		for j, target := range targets {
			if source.IntersectsTriangle(target) {
				hit = true
				*aList = append(*aList, t.triIndex[t.start+i])
				*bList = append(*bList, other.triIndex[other.start+j])
			}
		}
	}
	return hit
}

func (t *Tree) worldTriangles() []*spatialmath.Triangle {
	tris := make([]*spatialmath.Triangle, 0, t.end-t.start)
	for _, idx := range t.triIndex[t.start:t.end] {
		pts := t.mesh.WorldTriangle(idx)
		tris = append(tris, spatialmath.NewTriangle(pts[0], pts[1], pts[2]))
	}
	return tris
}

// IntersectRay appends to hits the index of every triangle under this node that the ray passes
// through. The world bounds of this node must be current; the children's are refreshed on the way down.
func (t *Tree) IntersectRay(ray spatialmath.Ray, hits *[]int) {
	if t.worldBounds == nil || !t.worldBounds.IntersectsRay(ray) {
		return
	}

	if t.IsLeaf() {
		for _, idx := range t.triIndex[t.start:t.end] {
			pts := t.mesh.WorldTriangle(idx)
			if _, ok := ray.IntersectsTriangle(pts[0], pts[1], pts[2]); ok {
				*hits = append(*hits, idx)
			}
		}
		return
	}

	for _, c := range []*Tree{t.left, t.right} {
		c.UpdateWorldBounds()
		c.IntersectRay(ray, hits)
	}
}

// ClosestTriangle returns the triangle under this node nearest to point in world space and the nearest
// point on it. Subtrees whose bounds lie further away than the best triangle so far are skipped. The world
// bounds of this node must be current; the children's are refreshed on the way down.
func (t *Tree) ClosestTriangle(point r3.Vector) (int, r3.Vector, bool) {
	if t.worldBounds == nil || t.end == t.start {
		return -1, r3.Vector{}, false
	}
	best := nearest{index: -1, dist: math.Inf(1)}
	t.closest(point, &best)
	return best.index, best.point, best.index >= 0
}

type nearest struct {
	index int
	point r3.Vector
	dist  float64
}

// boundsDistance is a lower bound on the distance from point to any triangle under this node.
func (t *Tree) boundsDistance(point r3.Vector) float64 {
	return math.Max(0, t.worldBounds.DistanceToEdge(point))
}

func (t *Tree) closest(point r3.Vector, best *nearest) {
	if t.boundsDistance(point) > best.dist {
		return
	}

	if t.IsLeaf() {
		for _, idx := range t.triIndex[t.start:t.end] {
			pts := t.mesh.WorldTriangle(idx)
			onTri := spatialmath.NewTriangle(pts[0], pts[1], pts[2]).ClosestPoint(point)
			if dist := onTri.Distance(point); dist < best.dist {
				*best = nearest{index: idx, point: onTri, dist: dist}
			}
		}
		return
	}

	t.left.UpdateWorldBounds()
	t.right.UpdateWorldBounds()
	first, second := t.left, t.right
	if second.boundsDistance(point) < first.boundsDistance(point) {
		first, second = second, first
	}
	first.closest(point, best)
	second.closest(point, best)
}

// RebuildLeaves refits the bounds of the leaves holding any of the changed positions of the shared index
// slice, then refits the ancestors of those leaves that sit deeper than trunkDepth. The root is at depth
// one. Positions that fall in no leaf of this node are returned.
func (t *Tree) RebuildLeaves(changed []int, trunkDepth int) []int {
	return t.rebuildLeaves(changed, trunkDepth, 0)
}

func (t *Tree) rebuildLeaves(changed []int, trunkDepth, level int) []int {
	level++

	if t.IsLeaf() {
		remaining := lo.Reject(changed, func(pos, _ int) bool {
			return t.holds(pos)
		})
		if len(remaining) != len(changed) && t.bounds != nil {
			t.computeBounds()
		}
		return remaining
	}

	if !t.ContainsAnyLeaf(changed) {
		return changed
	}
	changed = t.left.rebuildLeaves(changed, trunkDepth, level)
	changed = t.right.rebuildLeaves(changed, trunkDepth, level)
	if level > trunkDepth {
		t.computeBounds()
	}
	return changed
}

// ContainsAnyLeaf reports whether any of the positions falls in this node's range.
func (t *Tree) ContainsAnyLeaf(positions []int) bool {
	return lo.ContainsBy(positions, t.holds)
}

func (t *Tree) holds(pos int) bool {
	return pos >= t.start && pos < t.end
}

// Walk calls fn for this node and every node below it, depth first, with the root at depth zero.
func (t *Tree) Walk(fn func(node *Tree, depth int)) {
	t.walk(fn, 0)
}

func (t *Tree) walk(fn func(node *Tree, depth int), depth int) {
	fn(t, depth)
	if t.left != nil {
		t.left.walk(fn, depth+1)
	}
	if t.right != nil {
		t.right.walk(fn, depth+1)
	}
}

// Type returns the bounding volume type used by the tree.
func (t *Tree) Type() bounding.Type {
	return t.typ
}

// MaxTrisPerLeaf returns the leaf threshold.
func (t *Tree) MaxTrisPerLeaf() int {
	return t.maxTrisPerLeaf
}

// Mesh returns the mesh the tree was built over.
func (t *Tree) Mesh() Mesh {
	return t.mesh
}

// Bounds returns the local space bounds of this node.
func (t *Tree) Bounds() bounding.Volume {
	return t.bounds
}

// WorldBounds returns the bounds of this node as of the last UpdateWorldBounds.
func (t *Tree) WorldBounds() bounding.Volume {
	return t.worldBounds
}

// Left returns the first child, nil for a leaf.
func (t *Tree) Left() *Tree {
	return t.left
}

// Right returns the second child, nil for a leaf.
func (t *Tree) Right() *Tree {
	return t.right
}

// Start is the first position of this node's range.
func (t *Tree) Start() int {
	return t.start
}

// End is one past the last position of this node's range.
func (t *Tree) End() int {
	return t.end
}

// IsLeaf reports whether the node has no children.
func (t *Tree) IsLeaf() bool {
	return t.left == nil && t.right == nil
}

// TriangleIndices returns the triangle indices this node is responsible for. The slice aliases the
// tree's storage.
func (t *Tree) TriangleIndices() []int {
	if t.triIndex == nil {
		return nil
	}
	return t.triIndex[t.start:t.end]
}

// positionsOf maps triangle indices to their positions in the shared index slice.
func (t *Tree) positionsOf(triangles []int) []int {
	wanted := lo.Keyify(triangles)
	return lo.FilterMap(t.triIndex, func(idx, pos int) (int, bool) {
		_, ok := wanted[idx]
		return pos, ok
	})
}
