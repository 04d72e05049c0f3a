// Package mesh reconstructs a face mesh from landmarks: vertex and UV
// buffers, a heuristic triangulation, smooth per-vertex normals and
// expression deformation.
package mesh

import (
	"errors"
	"fmt"

	"github.com/Faultbox/facegen/pkg/math"
)

// Mesh errors.
var (
	ErrLandmarkCount    = errors.New("wrong landmark count")
	ErrNoFaces          = errors.New("triangulation produced no faces")
	ErrNoVertices       = errors.New("mesh has no vertices")
	ErrIndexOutOfRange  = errors.New("face index out of range")
	ErrBufferLength     = errors.New("buffer length mismatch")
	ErrNotUnitNormal    = errors.New("normal is not unit length")
	errMalformedIndices = errors.New("face buffer length is not a multiple of 3")
)

// DefaultNormal is assigned to vertices that no triangle references.
var DefaultNormal = math.Vec3{X: 0, Y: 0, Z: 1}

// Mesh holds flat vertex buffers in the layout the exporter writes.
//
// Vertices and Normals hold 3 floats per vertex, UVs 2 floats per vertex and
// Faces 3 indices per triangle.
type Mesh struct {
	Vertices []float32
	UVs      []float32
	Normals  []float32
	Faces    []uint32
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// FaceCount returns the number of triangles.
func (m *Mesh) FaceCount() int {
	return len(m.Faces) / 3
}

// Vertex returns vertex i.
func (m *Mesh) Vertex(i int) math.Vec3 {
	return math.Vec3{X: m.Vertices[i*3], Y: m.Vertices[i*3+1], Z: m.Vertices[i*3+2]}
}

// Normal returns the normal of vertex i.
func (m *Mesh) Normal(i int) math.Vec3 {
	return math.Vec3{X: m.Normals[i*3], Y: m.Normals[i*3+1], Z: m.Normals[i*3+2]}
}

// Triangle returns the vertex indices of triangle i.
func (m *Mesh) Triangle(i int) (a, b, c uint32) {
	return m.Faces[i*3], m.Faces[i*3+1], m.Faces[i*3+2]
}

// Positions returns the vertices as a slice of triples.
func (m *Mesh) Positions() [][3]float32 {
	return triples(m.Vertices)
}

// NormalTriples returns the normals as a slice of triples.
func (m *Mesh) NormalTriples() [][3]float32 {
	return triples(m.Normals)
}

// TexCoords returns the UVs as a slice of pairs.
func (m *Mesh) TexCoords() [][2]float32 {
	out := make([][2]float32, len(m.UVs)/2)
	for i := range out {
		out[i] = [2]float32{m.UVs[i*2], m.UVs[i*2+1]}
	}
	return out
}

// Bounds returns the axis-aligned bounding box of the vertices.
func (m *Mesh) Bounds() (lo, hi math.Vec3) {
	n := m.VertexCount()
	if n == 0 {
		return math.Vec3{}, math.Vec3{}
	}
	lo, hi = m.Vertex(0), m.Vertex(0)
	for i := 1; i < n; i++ {
		v := m.Vertex(i)
		lo = lo.Min(v)
		hi = hi.Max(v)
	}
	return lo, hi
}

// Centroid returns the mean position of the given vertices. Out-of-range
// indices are ignored.
func (m *Mesh) Centroid(indices []int) math.Vec3 {
	var sum math.Vec3
	n := 0
	for _, idx := range indices {
		if idx < 0 || idx >= m.VertexCount() {
			continue
		}
		sum = sum.Add(m.Vertex(idx))
		n++
	}
	if n == 0 {
		return math.Vec3{}
	}
	return sum.Scale(1 / float32(n))
}

// Validate checks the structural invariants: at least one vertex, matching
// buffer lengths, whole triangles and every face index below the vertex count.
func (m *Mesh) Validate() error {
	n := m.VertexCount()
	if n == 0 {
		return ErrNoVertices
	}
	if len(m.Vertices) != n*3 {
		return fmt.Errorf("%w: %d vertex floats", ErrBufferLength, len(m.Vertices))
	}
	if len(m.Normals) != len(m.Vertices) {
		return fmt.Errorf("%w: %d normal floats for %d vertices", ErrBufferLength, len(m.Normals), n)
	}
	if m.UVs != nil && len(m.UVs) != n*2 {
		return fmt.Errorf("%w: %d uv floats for %d vertices", ErrBufferLength, len(m.UVs), n)
	}
	if len(m.Faces)%3 != 0 {
		return errMalformedIndices
	}
	for i, idx := range m.Faces {
		if int(idx) >= n {
			return fmt.Errorf("%w: face %d references vertex %d of %d", ErrIndexOutOfRange, i/3, idx, n)
		}
	}
	return nil
}

// WithVertices returns a mesh sharing m's UVs and faces but using vertices
// and a fresh, zeroed normal buffer.
func (m *Mesh) WithVertices(vertices []float32) *Mesh {
	return &Mesh{
		Vertices: vertices,
		UVs:      m.UVs,
		Normals:  make([]float32, len(vertices)),
		Faces:    m.Faces,
	}
}

func triples(buf []float32) [][3]float32 {
	out := make([][3]float32, len(buf)/3)
	for i := range out {
		out[i] = [3]float32{buf[i*3], buf[i*3+1], buf[i*3+2]}
	}
	return out
}
