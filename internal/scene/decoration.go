package scene

import (
	gomath "math"
	"strconv"

	"github.com/Faultbox/facegen/internal/face"
	"github.com/Faultbox/facegen/pkg/math"
)

// Decoration returns the clothing decoration for style, positioned in the
// body's local space. Each style yields exactly one kind of decoration.
func Decoration(style face.Style, color face.RGB) []*Node {
	mat := &Material{Name: "decoration_" + string(style), BaseColor: color, Roughness: 0.7}
	switch style {
	case face.StyleMinimalist:
		return collar(mat)
	case face.StylePreppy:
		return buttons(mat)
	case face.StyleCasual:
		return pockets(mat)
	case face.StyleClassic:
		return lapels(mat)
	}
	return nil
}

// bodySurfaceZ returns the Z of the body's front surface at local (x, y).
func bodySurfaceZ(x, y float32) float32 {
	t := (BodyHeight/2 - y) / BodyHeight
	r := BodyRadiusTop + (BodyRadiusBottom-BodyRadiusTop)*t
	if x >= r {
		return 0
	}
	return float32(gomath.Sqrt(float64(r*r - x*x)))
}

func collar(mat *Material) []*Node {
	t := At(math.Vec3{Y: BodyHeight/2 - 0.05})
	t.Rotation = math.QuatFromAxisAngle(math.Vec3{X: 1}, gomath.Pi/2)
	return []*Node{NewMesh("collar", t, Ring(BodyRadiusTop+0.02, 0.05, 8, 32), mat)}
}

func buttons(mat *Material) []*Node {
	const count = 3
	sphere := Sphere(0.04, 10, 6)
	nodes := make([]*Node, 0, count)
	for i := 0; i < count; i++ {
		y := float32(0.5) - float32(i)*0.35
		pos := math.Vec3{Y: y, Z: bodySurfaceZ(0, y) + 0.02}
		nodes = append(nodes, NewMesh(buttonName(i), At(pos), sphere, mat))
	}
	return nodes
}

func buttonName(i int) string {
	return "button_" + strconv.Itoa(i+1)
}

func pockets(mat *Material) []*Node {
	box := Box(0.26, 0.24, 0.04)
	var nodes []*Node
	for _, side := range []struct {
		name string
		x    float32
	}{{"pocket_left", -0.3}, {"pocket_right", 0.3}} {
		const y = -0.25
		pos := math.Vec3{X: side.x, Y: y, Z: bodySurfaceZ(side.x, y)}
		nodes = append(nodes, NewMesh(side.name, At(pos), box, mat))
	}
	return nodes
}

func lapels(mat *Material) []*Node {
	box := Box(0.12, 0.5, 0.03)
	var nodes []*Node
	for _, side := range []struct {
		name  string
		x     float32
		angle float32
	}{{"lapel_left", -0.16, -0.35}, {"lapel_right", 0.16, 0.35}} {
		const y = 0.45
		t := At(math.Vec3{X: side.x, Y: y, Z: bodySurfaceZ(side.x, y) + 0.01})
		t.Rotation = math.QuatFromAxisAngle(math.Vec3{Z: 1}, side.angle)
		nodes = append(nodes, NewMesh(side.name, t, box, mat))
	}
	return nodes
}
