package spatialmath

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"

	"github.com/chenzhekl/goply"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// Ordered list of box vertices.
var boxVertices = [8]r3.Vector{
	{X: 1, Y: 1, Z: 1},
	{X: 1, Y: 1, Z: -1},
	{X: 1, Y: -1, Z: 1},
	{X: 1, Y: -1, Z: -1},
	{X: -1, Y: 1, Z: 1},
	{X: -1, Y: 1, Z: -1},
	{X: -1, Y: -1, Z: 1},
	{X: -1, Y: -1, Z: -1},
}

// The sets of indices of the box vertices that tile the box exterior.
var boxTriangles = [12][3]int{
	{0, 1, 3},
	{0, 2, 3},
	{0, 1, 5},
	{0, 4, 5},
	{0, 2, 6},
	{0, 4, 6},
	{7, 1, 3},
	{7, 2, 3},
	{7, 1, 5},
	{7, 4, 5},
	{7, 2, 6},
	{7, 4, 6},
}

// Mesh is an indexed triangle mesh placed in the world by a Transform. Vertex positions are local; every three
// consecutive entries of the index slice form one triangle.
type Mesh struct {
	label     string
	vertices  []r3.Vector
	indices   []int
	transform *Transform
}

// NewMesh creates a mesh from a vertex buffer and a flat triangle index buffer. A nil transform is the identity.
func NewMesh(vertices []r3.Vector, indices []int, tf *Transform) (*Mesh, error) {
	if len(indices)%3 != 0 {
		return nil, newBadMeshError(fmt.Sprintf("index count %d is not a multiple of 3", len(indices)))
	}
	for _, idx := range indices {
		if idx < 0 || idx >= len(vertices) {
			return nil, newMeshIndexError(idx, len(vertices))
		}
	}
	if tf == nil {
		tf = NewIdentityTransform()
	}
	return &Mesh{vertices: vertices, indices: indices, transform: tf}, nil
}

// NewMeshFromTriangles creates an unindexed mesh holding a copy of each triangle's points.
func NewMeshFromTriangles(triangles []*Triangle, tf *Transform) *Mesh {
	vertices := make([]r3.Vector, 0, 3*len(triangles))
	indices := make([]int, 0, 3*len(triangles))
	for _, tri := range triangles {
		for _, pt := range tri.Points() {
			indices = append(indices, len(vertices))
			vertices = append(vertices, pt)
		}
	}
	if tf == nil {
		tf = NewIdentityTransform()
	}
	return &Mesh{vertices: vertices, indices: indices, transform: tf}
}

// NewBoxMesh returns a 12-triangle mesh of the box with the given local center and half sizes,
// 2 right triangles for each face.
func NewBoxMesh(center, halfSize r3.Vector, tf *Transform) *Mesh {
	vertices := make([]r3.Vector, 0, len(boxVertices))
	for _, vert := range boxVertices {
		vertices = append(vertices, center.Add(MulComponents(vert, halfSize)))
	}
	indices := make([]int, 0, 3*len(boxTriangles))
	for _, tri := range boxTriangles {
		indices = append(indices, tri[0], tri[1], tri[2])
	}
	if tf == nil {
		tf = NewIdentityTransform()
	}
	return &Mesh{label: "box", vertices: vertices, indices: indices, transform: tf}
}

// Label returns the name of the mesh.
func (m *Mesh) Label() string {
	return m.label
}

// SetLabel sets the name of the mesh.
func (m *Mesh) SetLabel(label string) {
	m.label = label
}

// Vertices returns the local vertex buffer.
func (m *Mesh) Vertices() []r3.Vector {
	return m.vertices
}

// Indices returns the flat triangle index buffer.
func (m *Mesh) Indices() []int {
	return m.indices
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.indices) / 3
}

// Triangle returns the local points of triangle i.
func (m *Mesh) Triangle(i int) [3]r3.Vector {
	return [3]r3.Vector{
		m.vertices[m.indices[3*i]],
		m.vertices[m.indices[3*i+1]],
		m.vertices[m.indices[3*i+2]],
	}
}

// WorldTriangle returns the points of triangle i in world space.
func (m *Mesh) WorldTriangle(i int) [3]r3.Vector {
	tri := m.Triangle(i)
	for j := range tri {
		tri[j] = m.transform.Apply(tri[j])
	}
	return tri
}

// Triangles returns every triangle in local space.
func (m *Mesh) Triangles() []*Triangle {
	triangles := make([]*Triangle, 0, m.TriangleCount())
	for i := 0; i < m.TriangleCount(); i++ {
		pts := m.Triangle(i)
		triangles = append(triangles, NewTriangle(pts[0], pts[1], pts[2]))
	}
	return triangles
}

// WorldTransform returns the placement of the mesh in the world.
func (m *Mesh) WorldTransform() *Transform {
	return m.transform
}

// SetWorldTransform moves the mesh. A nil transform is the identity.
func (m *Mesh) SetWorldTransform(tf *Transform) {
	if tf == nil {
		tf = NewIdentityTransform()
	}
	m.transform = tf
}

// SetVertex moves one vertex in local space. Collision trees built over the mesh must be patched afterwards.
func (m *Mesh) SetVertex(i int, v r3.Vector) {
	m.vertices[i] = v
}

// NewMeshFromPLYFile reads a mesh from a .ply file.
func NewMeshFromPLYFile(path string) (*Mesh, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read mesh file %q", path)
	}
	m, err := NewMeshFromPLY(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "cannot parse mesh file %q", path)
	}
	m.label = filepath.Base(path)
	return m, nil
}

// NewMeshFromPLY reads the vertex and face elements of a PLY stream. Faces with more than three vertices are
// fanned into triangles.
func NewMeshFromPLY(r io.Reader) (mesh *Mesh, err error) {
	// the PLY parser panics on malformed input
	defer func() {
		if rec := recover(); rec != nil {
			mesh = nil
			err = errors.Errorf("error reading ply data: %v", rec)
		}
	}()

	ply := goply.New(r)
	plyVertices := ply.Elements("vertex")
	plyFaces := ply.Elements("face")
	if len(plyVertices) == 0 {
		return nil, newBadMeshError("no vertex element")
	}

	vertices := make([]r3.Vector, 0, len(plyVertices))
	for i, vert := range plyVertices {
		var pt r3.Vector
		for axis, name := range []string{"x", "y", "z"} {
			f, err := plyFloat(vert[name])
			if err != nil {
				return nil, errors.Wrapf(err, "vertex %d property %q", i, name)
			}
			pt = WithComponent(pt, axis, f)
		}
		vertices = append(vertices, pt)
	}

	indices := make([]int, 0, 3*len(plyFaces))
	for i, face := range plyFaces {
		list, ok := face["vertex_indices"]
		if !ok {
			list, ok = face["vertex_index"]
		}
		if !ok {
			return nil, errors.Errorf("face %d has no vertex index list", i)
		}
		faceIndices, err := plyIndexList(list)
		if err != nil {
			return nil, errors.Wrapf(err, "face %d", i)
		}
		for j := 1; j+1 < len(faceIndices); j++ {
			indices = append(indices, faceIndices[0], faceIndices[j], faceIndices[j+1])
		}
	}
	return NewMesh(vertices, indices, nil)
}

func plyFloat(v interface{}) (float64, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), nil
	default:
		return 0, errors.Errorf("unsupported numeric value %v (%T)", v, v)
	}
}

func plyIndexList(v interface{}) ([]int, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, errors.Errorf("vertex index list has type %T", v)
	}
	out := make([]int, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		f, err := plyFloat(rv.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		out = append(out, int(f))
	}
	return out, nil
}
