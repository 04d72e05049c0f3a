package mesh

import (
	"github.com/Faultbox/facegen/internal/avatarerr"
	"github.com/Faultbox/facegen/internal/face"
	"github.com/Faultbox/facegen/internal/topology"
)

// Expression offsets along model-space Y.
const (
	SmileOffset          = 0.05
	FrownOffset          = -0.05
	RaisedEyebrowsOffset = 0.03
	SquintOffset         = -0.02
	SurpriseOffset       = -0.04
)

// ExpressionRule moves the Y coordinate of a set of landmarks when its flag is set.
type ExpressionRule struct {
	Name    string
	Indices []int
	Offset  float32
	Active  func(face.ExpressionSet) bool
}

// Rules is the expression rule table. Rules targeting the same index add up.
var Rules = []ExpressionRule{
	{
		Name:    "smile",
		Indices: topology.MouthCorners,
		Offset:  SmileOffset,
		Active:  func(e face.ExpressionSet) bool { return e.Smile },
	},
	{
		Name:    "frown",
		Indices: topology.MouthCorners,
		Offset:  FrownOffset,
		Active:  func(e face.ExpressionSet) bool { return e.Frown },
	},
	{
		Name:    "raisedEyebrows",
		Indices: topology.Eyebrows(),
		Offset:  RaisedEyebrowsOffset,
		Active:  func(e face.ExpressionSet) bool { return e.RaisedEyebrows },
	},
	{
		Name:    "squint",
		Indices: topology.Eyes(),
		Offset:  SquintOffset,
		Active:  func(e face.ExpressionSet) bool { return e.Squint },
	},
	{
		// Surprise drops the jaw line of the lower lip.
		Name:    "surprise",
		Indices: topology.LowerLip(),
		Offset:  SurpriseOffset,
		Active:  func(e face.ExpressionSet) bool { return e.Surprise },
	},
}

// Deform returns a copy of base with the active expression offsets applied.
// base is never modified, so repeated calls from the same base yield the
// same buffer. Indices beyond the buffer are ignored.
func Deform(base []float32, expr face.ExpressionSet) []float32 {
	out := make([]float32, len(base))
	copy(out, base)

	// Offsets are summed per index before touching the base so that
	// opposing rules cancel exactly.
	n := len(base) / 3
	offsets := make(map[int]float32)
	for _, rule := range Rules {
		if !rule.Active(expr) {
			continue
		}
		for _, idx := range rule.Indices {
			if idx < 0 || idx >= n {
				continue
			}
			offsets[idx] += rule.Offset
		}
	}
	for idx, off := range offsets {
		if off != 0 {
			out[idx*3+1] += off
		}
	}
	return out
}

// ApplyExpressions returns a new mesh with expr applied to base's vertices
// and normals recomputed. When no flag is set it returns a clone of base.
func ApplyExpressions(base *Mesh, expr face.ExpressionSet) (*Mesh, error) {
	if base.VertexCount() == 0 {
		return nil, avatarerr.Input(avatarerr.StageDeform, ErrNoVertices)
	}
	deformed := base.WithVertices(Deform(base.Vertices, expr))
	if !expr.Any() {
		copy(deformed.Normals, base.Normals)
		return deformed, nil
	}
	ComputeNormals(deformed)
	return deformed, nil
}
