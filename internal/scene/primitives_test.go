package scene

import (
	"testing"

	"github.com/Faultbox/facegen/internal/mesh"
)

func TestPrimitives(t *testing.T) {
	tests := []struct {
		name string
		mesh *mesh.Mesh
	}{
		{"sphere", Sphere(1, 16, 8)},
		{"cylinder", Cylinder(0.5, 0.5, 2, 16)},
		{"cone", Cylinder(0.3, 1, 1, 16)},
		{"ring", Ring(1, 0.2, 8, 16)},
		{"box", Box(1, 2, 3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.mesh
			if err := m.Validate(); err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if m.FaceCount() == 0 {
				t.Fatal("no faces")
			}
			if err := mesh.CheckNormals(m, 1e-4); err != nil {
				t.Fatalf("CheckNormals: %v", err)
			}
			checkOutwardWinding(t, m)
		})
	}
}

// checkOutwardWinding verifies each triangle's geometric normal agrees with
// its vertex normals.
func checkOutwardWinding(t *testing.T, m *mesh.Mesh) {
	t.Helper()
	for i := 0; i < m.FaceCount(); i++ {
		a, b, c := m.Triangle(i)
		va, vb, vc := m.Vertex(int(a)), m.Vertex(int(b)), m.Vertex(int(c))
		fn := vb.Sub(va).Cross(vc.Sub(va))
		if fn.Length() < 1e-9 {
			continue
		}
		avg := m.Normal(int(a)).Add(m.Normal(int(b))).Add(m.Normal(int(c)))
		if fn.Dot(avg) <= 0 {
			t.Fatalf("triangle %d (%d,%d,%d) wound inward", i, a, b, c)
		}
	}
}

func TestBoxExtents(t *testing.T) {
	lo, hi := Box(1, 2, 3).Bounds()
	if lo.X != -0.5 || hi.X != 0.5 || lo.Y != -1 || hi.Y != 1 || lo.Z != -1.5 || hi.Z != 1.5 {
		t.Errorf("bounds = %v..%v", lo, hi)
	}
}

func TestConeRadii(t *testing.T) {
	m := Cylinder(0.25, 1, 2, 12)
	for i := 0; i < m.VertexCount(); i++ {
		v := m.Vertex(i)
		radius := float32(0)
		switch {
		case v.Y > 0:
			radius = 0.25
		case v.Y < 0:
			radius = 1
		}
		rr := v.X*v.X + v.Z*v.Z
		if rr > radius*radius+1e-5 {
			t.Fatalf("vertex %d at %v outside radius %v", i, v, radius)
		}
	}
}
