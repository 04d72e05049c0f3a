package scene

import (
	gomath "math"

	"github.com/Faultbox/facegen/internal/mesh"
	"github.com/Faultbox/facegen/pkg/math"
)

// Primitive meshes are built with analytic normals and counter-clockwise
// winding seen from outside.

type builder struct {
	m mesh.Mesh
}

func (b *builder) vertex(p, n math.Vec3, u, v float32) uint32 {
	idx := uint32(b.m.VertexCount())
	b.m.Vertices = append(b.m.Vertices, p.X, p.Y, p.Z)
	b.m.Normals = append(b.m.Normals, n.X, n.Y, n.Z)
	b.m.UVs = append(b.m.UVs, u, v)
	return idx
}

func (b *builder) tri(a, c, d uint32) {
	b.m.Faces = append(b.m.Faces, a, c, d)
}

func (b *builder) mesh() *mesh.Mesh {
	m := b.m
	return &m
}

func sincos(a float64) (float32, float32) {
	s, c := gomath.Sincos(a)
	return float32(s), float32(c)
}

// Sphere returns a UV sphere centred on the origin.
func Sphere(radius float32, widthSegments, heightSegments int) *mesh.Mesh {
	widthSegments = max(widthSegments, 3)
	heightSegments = max(heightSegments, 2)

	var b builder
	grid := make([][]uint32, heightSegments+1)
	for iy := 0; iy <= heightSegments; iy++ {
		v := float32(iy) / float32(heightSegments)
		sinT, cosT := sincos(float64(v) * gomath.Pi)
		grid[iy] = make([]uint32, widthSegments+1)
		for ix := 0; ix <= widthSegments; ix++ {
			u := float32(ix) / float32(widthSegments)
			sinP, cosP := sincos(float64(u) * 2 * gomath.Pi)
			n := math.Vec3{X: -cosP * sinT, Y: cosT, Z: sinP * sinT}
			grid[iy][ix] = b.vertex(n.Scale(radius), n.Normalize(), u, v)
		}
	}
	for iy := 0; iy < heightSegments; iy++ {
		for ix := 0; ix < widthSegments; ix++ {
			a := grid[iy][ix+1]
			c := grid[iy][ix]
			d := grid[iy+1][ix]
			e := grid[iy+1][ix+1]
			if iy != 0 {
				b.tri(a, c, e)
			}
			if iy != heightSegments-1 {
				b.tri(c, d, e)
			}
		}
	}
	return b.mesh()
}

// Cylinder returns a capped cylinder along Y centred on the origin. Unequal
// radii give a truncated cone.
func Cylinder(radiusTop, radiusBottom, height float32, segments int) *mesh.Mesh {
	segments = max(segments, 3)
	half := height / 2
	slope := (radiusBottom - radiusTop) / height

	var b builder
	top := make([]uint32, segments+1)
	bottom := make([]uint32, segments+1)
	for x := 0; x <= segments; x++ {
		u := float32(x) / float32(segments)
		sin, cos := sincos(float64(u) * 2 * gomath.Pi)
		n := math.Vec3{X: sin, Y: slope, Z: cos}.Normalize()
		top[x] = b.vertex(math.Vec3{X: radiusTop * sin, Y: half, Z: radiusTop * cos}, n, u, 0)
		bottom[x] = b.vertex(math.Vec3{X: radiusBottom * sin, Y: -half, Z: radiusBottom * cos}, n, u, 1)
	}
	for x := 0; x < segments; x++ {
		b.tri(top[x], bottom[x], top[x+1])
		b.tri(bottom[x], bottom[x+1], top[x+1])
	}

	b.cap(radiusTop, half, segments, true)
	b.cap(radiusBottom, -half, segments, false)
	return b.mesh()
}

func (b *builder) cap(radius, y float32, segments int, top bool) {
	if radius <= 0 {
		return
	}
	n := math.Vec3{Y: 1}
	if !top {
		n.Y = -1
	}
	center := b.vertex(math.Vec3{Y: y}, n, 0.5, 0.5)
	ring := make([]uint32, segments+1)
	for x := 0; x <= segments; x++ {
		sin, cos := sincos(float64(x) / float64(segments) * 2 * gomath.Pi)
		ring[x] = b.vertex(math.Vec3{X: radius * sin, Y: y, Z: radius * cos}, n, sin*0.5+0.5, cos*0.5+0.5)
	}
	for x := 0; x < segments; x++ {
		if top {
			b.tri(ring[x], ring[x+1], center)
		} else {
			b.tri(ring[x+1], ring[x], center)
		}
	}
}

// Ring returns a torus in the XY plane around the Z axis.
func Ring(radius, tube float32, radialSegments, tubularSegments int) *mesh.Mesh {
	radialSegments = max(radialSegments, 3)
	tubularSegments = max(tubularSegments, 3)

	var b builder
	for j := 0; j <= radialSegments; j++ {
		for i := 0; i <= tubularSegments; i++ {
			u := float64(i) / float64(tubularSegments) * 2 * gomath.Pi
			v := float64(j) / float64(radialSegments) * 2 * gomath.Pi
			sinU, cosU := sincos(u)
			sinV, cosV := sincos(v)
			p := math.Vec3{
				X: (radius + tube*cosV) * cosU,
				Y: (radius + tube*cosV) * sinU,
				Z: tube * sinV,
			}
			center := math.Vec3{X: radius * cosU, Y: radius * sinU}
			b.vertex(p, p.Sub(center).Normalize(),
				float32(i)/float32(tubularSegments), float32(j)/float32(radialSegments))
		}
	}
	row := uint32(tubularSegments + 1)
	for j := uint32(1); j <= uint32(radialSegments); j++ {
		for i := uint32(1); i <= uint32(tubularSegments); i++ {
			a := row*j + i - 1
			c := row*(j-1) + i - 1
			d := row*(j-1) + i
			e := row*j + i
			b.tri(a, c, e)
			b.tri(c, d, e)
		}
	}
	return b.mesh()
}

// boxFaces lists each face normal with two in-plane axes whose cross
// product is the normal.
var boxFaces = [6][3]math.Vec3{
	{{X: 1}, {Z: -1}, {Y: 1}},
	{{X: -1}, {Z: 1}, {Y: 1}},
	{{Y: 1}, {X: 1}, {Z: -1}},
	{{Y: -1}, {X: 1}, {Z: 1}},
	{{Z: 1}, {X: 1}, {Y: 1}},
	{{Z: -1}, {X: -1}, {Y: 1}},
}

// Box returns an axis-aligned box centred on the origin.
func Box(width, height, depth float32) *mesh.Mesh {
	half := math.Vec3{X: width / 2, Y: height / 2, Z: depth / 2}

	var b builder
	for _, f := range boxFaces {
		n, u, v := f[0], f[1], f[2]
		corner := func(su, sv float32) uint32 {
			p := n.Add(u.Scale(su)).Add(v.Scale(sv)).Mul(half)
			return b.vertex(p, n, (su+1)/2, (1-sv)/2)
		}
		c0 := corner(-1, -1)
		c1 := corner(1, -1)
		c2 := corner(1, 1)
		c3 := corner(-1, 1)
		b.tri(c0, c1, c2)
		b.tri(c0, c2, c3)
	}
	return b.mesh()
}
