// Package scene assembles the avatar scene graph: the face mesh, a
// parametric body proxy, optional accessories and clothing decoration.
package scene

import (
	"errors"
	"fmt"

	"github.com/Faultbox/facegen/internal/face"
	"github.com/Faultbox/facegen/internal/material"
	"github.com/Faultbox/facegen/internal/mesh"
	"github.com/Faultbox/facegen/pkg/math"
)

// MaxDepth is the deepest level a scene may reach, counting the root as 1.
const MaxDepth = 3

// Scene graph errors.
var (
	ErrTooDeep         = errors.New("scene exceeds maximum depth")
	ErrEmptyGroup      = errors.New("group has no children")
	ErrMissingGeometry = errors.New("mesh node has no geometry")
	ErrMissingMaterial = errors.New("mesh node has no material")
	ErrGroupGeometry   = errors.New("group node carries geometry")
)

// Kind tells mesh nodes from groups.
type Kind int

// Node kinds.
const (
	KindGroup Kind = iota
	KindMesh
)

func (k Kind) String() string {
	if k == KindMesh {
		return "mesh"
	}
	return "group"
}

// Transform is a node's local translation, rotation and scale.
type Transform struct {
	Translation math.Vec3
	Rotation    math.Quat
	Scale       math.Vec3
}

// Identity returns the transform that leaves a node in place.
func Identity() Transform {
	return Transform{
		Rotation: math.QuatIdentity(),
		Scale:    math.Vec3{X: 1, Y: 1, Z: 1},
	}
}

// At returns an identity transform translated to p.
func At(p math.Vec3) Transform {
	t := Identity()
	t.Translation = p
	return t
}

// IsIdentity reports whether t leaves a node in place.
func (t Transform) IsIdentity() bool {
	return t == Identity()
}

// Matrix returns the local transform matrix.
func (t Transform) Matrix() math.Mat4 {
	return math.TRS(t.Translation, t.Rotation, t.Scale)
}

// Material is the surface of a mesh node.
type Material struct {
	Name      string
	BaseColor face.RGB
	Metallic  float32
	Roughness float32
	// Texture is the base colour map. Nil means plain BaseColor.
	Texture *material.RasterImage
}

// Node is either a group of children or a mesh with its material. Mesh
// nodes may have children of their own.
type Node struct {
	Kind      Kind
	Name      string
	Transform Transform
	Geometry  *mesh.Mesh
	Material  *Material
	Children  []*Node
}

// NewGroup creates a group node.
func NewGroup(name string, t Transform, children ...*Node) *Node {
	return &Node{Kind: KindGroup, Name: name, Transform: t, Children: children}
}

// NewMesh creates a mesh node.
func NewMesh(name string, t Transform, geometry *mesh.Mesh, mat *Material, children ...*Node) *Node {
	return &Node{Kind: KindMesh, Name: name, Transform: t, Geometry: geometry, Material: mat, Children: children}
}

// Add appends children to n.
func (n *Node) Add(children ...*Node) {
	n.Children = append(n.Children, children...)
}

// Walk visits n and its descendants depth first, parents before children.
// depth is 1 for n.
func (n *Node) Walk(fn func(node *Node, depth int)) {
	n.walk(1, fn)
}

func (n *Node) walk(depth int, fn func(*Node, int)) {
	fn(n, depth)
	for _, c := range n.Children {
		c.walk(depth+1, fn)
	}
}

// Find returns the first node named name, or nil.
func (n *Node) Find(name string) *Node {
	var found *Node
	n.Walk(func(node *Node, _ int) {
		if found == nil && node.Name == name {
			found = node
		}
	})
	return found
}

// Depth returns the number of levels in the tree rooted at n.
func (n *Node) Depth() int {
	deepest := 0
	n.Walk(func(_ *Node, depth int) {
		deepest = max(deepest, depth)
	})
	return deepest
}

// Stats counts mesh and group nodes in the tree.
func (n *Node) Stats() (meshes, groups int) {
	n.Walk(func(node *Node, _ int) {
		if node.Kind == KindMesh {
			meshes++
		} else {
			groups++
		}
	})
	return meshes, groups
}

// Validate checks the tree: depth within MaxDepth, every mesh node has valid
// geometry and a material, groups carry no geometry and every leaf is a mesh.
func (n *Node) Validate() error {
	var err error
	n.Walk(func(node *Node, depth int) {
		if err != nil {
			return
		}
		err = node.validateNode(depth)
	})
	return err
}

func (n *Node) validateNode(depth int) error {
	if depth > MaxDepth {
		return fmt.Errorf("%w: %q at depth %d", ErrTooDeep, n.Name, depth)
	}
	switch n.Kind {
	case KindGroup:
		if n.Geometry != nil {
			return fmt.Errorf("%w: %q", ErrGroupGeometry, n.Name)
		}
		if len(n.Children) == 0 {
			return fmt.Errorf("%w: %q", ErrEmptyGroup, n.Name)
		}
	case KindMesh:
		if n.Geometry == nil {
			return fmt.Errorf("%w: %q", ErrMissingGeometry, n.Name)
		}
		if n.Material == nil {
			return fmt.Errorf("%w: %q", ErrMissingMaterial, n.Name)
		}
		if err := n.Geometry.Validate(); err != nil {
			return fmt.Errorf("node %q: %w", n.Name, err)
		}
	}
	return nil
}

// WorldBounds returns the axis-aligned bounds of every vertex in the tree
// after applying node transforms. ok is false when the tree has no geometry.
func WorldBounds(root *Node) (lo, hi math.Vec3, ok bool) {
	var visit func(n *Node, parent math.Mat4)
	visit = func(n *Node, parent math.Mat4) {
		world := parent.Mul(n.Transform.Matrix())
		if n.Geometry != nil {
			for i := 0; i < n.Geometry.VertexCount(); i++ {
				p := world.TransformPoint(n.Geometry.Vertex(i))
				if !ok {
					lo, hi, ok = p, p, true
					continue
				}
				lo = lo.Min(p)
				hi = hi.Max(p)
			}
		}
		for _, c := range n.Children {
			visit(c, world)
		}
	}
	visit(root, math.Identity())
	return lo, hi, ok
}
