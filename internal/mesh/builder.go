package mesh

import (
	"fmt"

	"github.com/Faultbox/facegen/internal/avatarerr"
	"github.com/Faultbox/facegen/internal/face"
	"github.com/Faultbox/facegen/internal/topology"
	"github.com/Faultbox/facegen/pkg/math"
)

// Proximity fallback parameters. The pass walks consecutive index triples
// starting every ProximityStride landmarks and keeps a triple only when all
// three pairwise image-space distances are below ProximityThreshold.
//
// TODO: replace the proximity pass with a constrained Delaunay triangulation;
// it can emit overlapping and degenerate triangles.
const (
	ProximityStride    = 3
	ProximityThreshold = 0.2
)

// Build converts landmarks into a mesh with positions, UVs and faces.
// Normals are allocated but zeroed; run ComputeNormals afterwards.
//
// Positions map image space (origin top-left, Y down) to a centred, Y-up
// model space; UVs are the raw image coordinates.
func Build(landmarks []face.Landmark) (*Mesh, error) {
	if len(landmarks) != topology.LandmarkCount {
		return nil, avatarerr.Input(avatarerr.StageMesh,
			fmt.Errorf("%w: got %d, want %d", ErrLandmarkCount, len(landmarks), topology.LandmarkCount))
	}

	n := len(landmarks)
	m := &Mesh{
		Vertices: make([]float32, 0, n*3),
		UVs:      make([]float32, 0, n*2),
		Normals:  make([]float32, n*3),
	}
	for _, lm := range landmarks {
		m.Vertices = append(m.Vertices,
			float32((lm.X-0.5)*2),
			float32(-(lm.Y-0.5)*2),
			float32(lm.Z),
		)
		m.UVs = append(m.UVs, float32(lm.X), float32(lm.Y))
	}

	t := triangulator{mesh: m}
	t.regionFans(topology.Regions)
	t.proximityFallback(landmarks)

	if len(m.Faces) == 0 {
		return nil, avatarerr.Input(avatarerr.StageMesh, ErrNoFaces)
	}
	return m, nil
}

type triangulator struct {
	mesh *Mesh
}

// regionFans fan-triangulates each region from its first index, after
// dropping indices that do not exist. Regions with fewer than 3 indices left
// are skipped.
func (t *triangulator) regionFans(regions []topology.Region) {
	n := t.mesh.VertexCount()
	for _, region := range regions {
		valid := make([]int, 0, len(region.Indices))
		for _, idx := range region.Indices {
			if idx >= 0 && idx < n {
				valid = append(valid, idx)
			}
		}
		if len(valid) < 3 {
			continue
		}
		for i := 1; i < len(valid)-1; i++ {
			t.emit(valid[0], valid[i], valid[i+1])
		}
	}
}

// proximityFallback adds triangles between nearby landmarks that the named
// regions do not cover.
func (t *triangulator) proximityFallback(landmarks []face.Landmark) {
	for i := 0; i+2 < len(landmarks); i += ProximityStride {
		a := uvOf(landmarks[i])
		b := uvOf(landmarks[i+1])
		c := uvOf(landmarks[i+2])
		if a.Distance(b) < ProximityThreshold &&
			b.Distance(c) < ProximityThreshold &&
			a.Distance(c) < ProximityThreshold {
			t.emit(i, i+1, i+2)
		}
	}
}

// emit appends a triangle wound counter-clockwise as seen from +Z, so that
// both passes produce outward-facing normals.
func (t *triangulator) emit(a, b, c int) {
	m := t.mesh
	area := math.SignedArea(m.Vertex(a).XY(), m.Vertex(b).XY(), m.Vertex(c).XY())
	if area < 0 {
		b, c = c, b
	}
	m.Faces = append(m.Faces, uint32(a), uint32(b), uint32(c))
}

func uvOf(lm face.Landmark) math.Vec2 {
	return math.Vec2{X: float32(lm.X), Y: float32(lm.Y)}
}
