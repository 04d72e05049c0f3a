package scene

import (
	"errors"
	gomath "math"

	"github.com/Faultbox/facegen/internal/avatarerr"
	"github.com/Faultbox/facegen/internal/face"
	"github.com/Faultbox/facegen/internal/mesh"
	"github.com/Faultbox/facegen/internal/topology"
	"github.com/Faultbox/facegen/pkg/math"
)

// Node names in an assembled avatar.
const (
	NameRoot     = "avatar"
	NameHead     = "head"
	NameFace     = "face"
	NameBody     = "body"
	NameLensL    = "glasses_lens_left"
	NameLensR    = "glasses_lens_right"
	NameBridge   = "glasses_bridge"
	NameEarringL = "earring_left"
	NameEarringR = "earring_right"
	NameHat      = "hat"
)

// Body proxy dimensions, in face model units. The face spans [-1, 1].
const (
	BodyRadiusTop    = 0.6
	BodyRadiusBottom = 0.75
	BodyHeight       = 1.6
	BodyCenterY      = -1.95
	bodySegments     = 32
)

// Accessory dimensions.
const (
	LensRadius     = 0.2
	LensTube       = 0.025
	BridgeHeight   = 0.03
	EarringRadius  = 0.06
	HatRadiusTop   = 0.7
	HatRadiusBase  = 0.95
	HatHeight      = 0.6
	accessoryDepth = 0.05
)

// EarringOffset is the position of the right earring; the left one mirrors X.
var EarringOffset = math.Vec3{X: 0.95, Y: -0.35, Z: 0}

// ShapeScale is the head scale applied for each face shape.
var ShapeScale = map[face.FaceShape]math.Vec3{
	face.ShapeOval:   {X: 1, Y: 1, Z: 1},
	face.ShapeRound:  {X: 1.08, Y: 0.96, Z: 1},
	face.ShapeSquare: {X: 1.05, Y: 1, Z: 1},
	face.ShapeHeart:  {X: 1, Y: 1.02, Z: 1},
	face.ShapeOblong: {X: 0.93, Y: 1.08, Z: 1},
}

// Accessory and decoration colours.
var (
	frameColor   = face.RGB{R: 0x1e, G: 0x1e, B: 0x22}
	earringColor = face.RGB{R: 0xd4, G: 0xaf, B: 0x37}
)

var errNoFace = errors.New("no face mesh")

// Parts is everything the assembler combines.
type Parts struct {
	Face         *mesh.Mesh
	FaceMaterial *Material
	Shape        face.FaceShape
	Accessories  face.AccessorySet
	Clothing     face.Clothing
}

// Assemble builds the avatar tree:
//
//	avatar (group)
//	├── head (group, face-shape scale)
//	│   ├── face (mesh)
//	│   └── accessories (meshes)
//	└── body (mesh)
//	    └── style decoration (meshes)
func Assemble(p Parts) (*Node, error) {
	if p.Face == nil || p.Face.VertexCount() == 0 {
		return nil, avatarerr.Input(avatarerr.StageScene, errNoFace)
	}
	if p.FaceMaterial == nil {
		return nil, avatarerr.Input(avatarerr.StageScene, ErrMissingMaterial)
	}
	shape, err := face.ParseFaceShape(string(p.Shape))
	if err != nil {
		return nil, avatarerr.Input(avatarerr.StageScene, err)
	}
	style, err := face.ParseStyle(string(p.Clothing.Style))
	if err != nil {
		return nil, avatarerr.Input(avatarerr.StageScene, err)
	}

	headT := Identity()
	headT.Scale = ShapeScale[shape]
	head := NewGroup(NameHead, headT, NewMesh(NameFace, Identity(), p.Face, p.FaceMaterial))
	head.Add(accessories(p.Face, p.Accessories, p.Clothing)...)

	body := NewMesh(NameBody, At(math.Vec3{Y: BodyCenterY}),
		Cylinder(BodyRadiusTop, BodyRadiusBottom, BodyHeight, bodySegments),
		&Material{Name: NameBody, BaseColor: p.Clothing.PrimaryColor, Roughness: 0.9})
	body.Add(Decoration(style, p.Clothing.SecondaryColor)...)

	root := NewGroup(NameRoot, Identity(), head, body)
	if err := root.Validate(); err != nil {
		return nil, avatarerr.Input(avatarerr.StageScene, err)
	}
	return root, nil
}

// accessories builds the accessory meshes placed relative to the face.
func accessories(faceMesh *mesh.Mesh, set face.AccessorySet, clothing face.Clothing) []*Node {
	var nodes []*Node
	lo, hi := faceMesh.Bounds()
	front := hi.Z + accessoryDepth

	if set.Glasses {
		frame := &Material{Name: "glasses", BaseColor: frameColor, Metallic: 0.6, Roughness: 0.3}
		left := faceMesh.Centroid(topology.LeftEye())
		right := faceMesh.Centroid(topology.RightEye())
		left.Z, right.Z = front, front

		lens := Ring(LensRadius, LensTube, 12, 32)
		nodes = append(nodes,
			NewMesh(NameLensL, At(left), lens, frame),
			NewMesh(NameLensR, At(right), lens, frame),
		)

		gap := left.Distance(right) - 2*LensRadius
		if gap < BridgeHeight {
			gap = BridgeHeight
		}
		mid := left.Add(right).Scale(0.5)
		bridge := At(mid)
		bridge.Rotation = math.QuatFromAxisAngle(math.Vec3{Z: 1},
			float32(gomath.Atan2(float64(left.Y-right.Y), float64(left.X-right.X))))
		nodes = append(nodes, NewMesh(NameBridge, bridge, Box(gap, BridgeHeight, BridgeHeight), frame))
	}

	if set.Earrings {
		gold := &Material{Name: "earrings", BaseColor: earringColor, Metallic: 1, Roughness: 0.2}
		sphere := Sphere(EarringRadius, 12, 8)
		leftPos := EarringOffset
		leftPos.X = -leftPos.X
		nodes = append(nodes,
			NewMesh(NameEarringL, At(leftPos), sphere, gold),
			NewMesh(NameEarringR, At(EarringOffset), sphere, gold),
		)
	}

	if set.Hat {
		hat := &Material{Name: NameHat, BaseColor: clothing.SecondaryColor, Roughness: 0.8}
		center := math.Vec3{X: (lo.X + hi.X) / 2, Y: hi.Y + HatHeight/2, Z: (lo.Z + hi.Z) / 2}
		nodes = append(nodes, NewMesh(NameHat, At(center), Cylinder(HatRadiusTop, HatRadiusBase, HatHeight, 32), hat))
	}
	return nodes
}
