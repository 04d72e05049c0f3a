package mesh

import (
	"github.com/Faultbox/facegen/pkg/math"
)

// ComputeNormals fills m.Normals with smooth per-vertex normals.
//
// Each triangle contributes its unit face normal to all three of its
// vertices; the sums are then normalized. Vertices that no triangle
// references, or whose contributions cancel out, get DefaultNormal.
func ComputeNormals(m *Mesh) {
	n := m.VertexCount()
	acc := make([]math.Vec3, n)

	for i := 0; i < m.FaceCount(); i++ {
		a, b, c := m.Triangle(i)
		if int(a) >= n || int(b) >= n || int(c) >= n {
			continue
		}
		va, vb, vc := m.Vertex(int(a)), m.Vertex(int(b)), m.Vertex(int(c))
		fn := vb.Sub(va).Cross(vc.Sub(va)).Normalize()
		acc[a] = acc[a].Add(fn)
		acc[b] = acc[b].Add(fn)
		acc[c] = acc[c].Add(fn)
	}

	if len(m.Normals) != n*3 {
		m.Normals = make([]float32, n*3)
	}
	for i, sum := range acc {
		nrm := DefaultNormal
		if sum.Length() > 0 {
			nrm = sum.Normalize()
		}
		m.Normals[i*3] = nrm.X
		m.Normals[i*3+1] = nrm.Y
		m.Normals[i*3+2] = nrm.Z
	}
}

// CheckNormals reports the first normal that is neither unit length within
// tol nor exactly DefaultNormal.
func CheckNormals(m *Mesh, tol float32) error {
	for i := 0; i < m.VertexCount(); i++ {
		nrm := m.Normal(i)
		if nrm == DefaultNormal {
			continue
		}
		l := nrm.Length()
		if l < 1-tol || l > 1+tol {
			return &NormalError{Vertex: i, Length: l}
		}
	}
	return nil
}

// NormalError describes a normal that failed CheckNormals.
type NormalError struct {
	Vertex int
	Length float32
}

func (e *NormalError) Error() string {
	return ErrNotUnitNormal.Error()
}

func (e *NormalError) Unwrap() error {
	return ErrNotUnitNormal
}
