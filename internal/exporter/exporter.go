// Package exporter encodes an avatar scene graph as a binary glTF (GLB) file.
//
// The glTF document is built with qmuntal/gltf. Vertex, index and image
// data share a single BIN chunk, and the container is framed and
// self-checked by pkg/glb before it is returned.
package exporter

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/facegen/internal/avatarerr"
	"github.com/Faultbox/facegen/internal/material"
	"github.com/Faultbox/facegen/internal/mesh"
	"github.com/Faultbox/facegen/internal/scene"
	"github.com/Faultbox/facegen/pkg/glb"
)

// DefaultGenerator is written to asset.generator when Options.Generator is empty.
const DefaultGenerator = "facegen avatargen"

// ExtTextureWebP is the glTF extension for WebP textures.
const ExtTextureWebP = "EXT_texture_webp"

// Encoder errors.
var (
	ErrNilScene    = errors.New("nil scene")
	ErrEmptyMesh   = errors.New("mesh has no vertices")
	ErrInvalidMesh = errors.New("invalid mesh geometry")
)

// ImageEncoder turns a raster into encoded image bytes.
type ImageEncoder func(img *material.RasterImage, format material.Format) ([]byte, error)

// Options control encoding.
type Options struct {
	Generator   string
	ImageFormat material.Format
	// Extras is stored as the document's extras, typically avatar metadata.
	Extras any
	Logger *zap.Logger
	// EncodeImage replaces the default texture encoder.
	EncodeImage ImageEncoder
}

// Result is an encoded avatar.
type Result struct {
	Data     []byte
	Size     uint32
	Meshes   int
	Textures int
	// Warnings lists textures dropped because they could not be embedded.
	Warnings []string
}

// TextureEmbedded reports whether at least one texture made it into the file.
func (r *Result) TextureEmbedded() bool {
	return r.Textures > 0
}

func defaultImageEncoder(img *material.RasterImage, format material.Format) ([]byte, error) {
	return format.Encode(img)
}

// Encode converts the tree rooted at root into a GLB buffer.
//
// A mesh with no vertices or inconsistent buffers is an input error and
// nothing is produced. A texture that cannot be encoded is logged and
// dropped; its material keeps the plain base colour. The returned buffer
// has passed glb.Validate.
func Encode(root *scene.Node, opts Options) (*Result, error) {
	if root == nil {
		return nil, avatarerr.Input(avatarerr.StageEncode, ErrNilScene)
	}
	if err := checkGeometry(root); err != nil {
		return nil, avatarerr.Input(avatarerr.StageEncode, err)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.EncodeImage == nil {
		opts.EncodeImage = defaultImageEncoder
	}
	if opts.ImageFormat == "" {
		opts.ImageFormat = material.FormatPNG
	}
	if opts.Generator == "" {
		opts.Generator = DefaultGenerator
	}

	w := newWriter(opts)
	rootIdx := w.addNode(root)
	w.doc.Scenes[0].Nodes = []uint32{rootIdx}
	w.embedTextures()
	w.doc.Extras = opts.Extras

	data, err := w.frame()
	if err != nil {
		return nil, err
	}

	size, err := glb.Validate(data)
	if err != nil {
		return nil, avatarerr.Encode(avatarerr.StageValidate, err)
	}

	return &Result{
		Data:     data,
		Size:     size,
		Meshes:   len(w.doc.Meshes),
		Textures: len(w.doc.Textures),
		Warnings: w.warnings,
	}, nil
}

// checkGeometry rejects empty or malformed meshes before anything is written.
func checkGeometry(root *scene.Node) error {
	var err error
	root.Walk(func(n *scene.Node, _ int) {
		if err != nil || n.Kind != scene.KindMesh {
			return
		}
		if n.Geometry == nil || n.Geometry.VertexCount() == 0 {
			err = fmt.Errorf("%w: node %q", ErrEmptyMesh, n.Name)
			return
		}
		if verr := n.Geometry.Validate(); verr != nil {
			err = fmt.Errorf("%w: node %q: %w", ErrInvalidMesh, n.Name, verr)
		}
	})
	return err
}

type pendingTexture struct {
	material uint32
	name     string
	image    *material.RasterImage
}

type primitiveKey struct {
	geometry *mesh.Mesh
	material *scene.Material
}

type writer struct {
	opts      Options
	doc       *gltf.Document
	meshes    map[primitiveKey]uint32
	accessors map[*mesh.Mesh]gltf.Attribute
	indices   map[*mesh.Mesh]*uint32
	materials map[*scene.Material]uint32
	textures  []pendingTexture
	warnings  []string
}

func newWriter(opts Options) *writer {
	doc := gltf.NewDocument()
	doc.Asset.Generator = opts.Generator
	if len(doc.Buffers) == 0 {
		doc.Buffers = []*gltf.Buffer{{}}
	}
	return &writer{
		opts:      opts,
		doc:       doc,
		meshes:    make(map[primitiveKey]uint32),
		accessors: make(map[*mesh.Mesh]gltf.Attribute),
		indices:   make(map[*mesh.Mesh]*uint32),
		materials: make(map[*scene.Material]uint32),
	}
}

// addNode appends n and its subtree, parents before children, and returns n's index.
func (w *writer) addNode(n *scene.Node) uint32 {
	node := &gltf.Node{
		Name:        n.Name,
		Matrix:      gltf.DefaultMatrix,
		Translation: n.Transform.Translation.Array(),
		Rotation:    gltf.DefaultRotation,
		Scale:       gltf.DefaultScale,
	}
	if q := n.Transform.Rotation; q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 0 {
		node.Rotation = q.Normalize().Array()
	}
	if s := n.Transform.Scale; s.X != 0 || s.Y != 0 || s.Z != 0 {
		node.Scale = s.Array()
	}
	if n.Kind == scene.KindMesh {
		node.Mesh = gltf.Index(w.addMesh(n))
	}

	idx := uint32(len(w.doc.Nodes))
	w.doc.Nodes = append(w.doc.Nodes, node)
	for _, c := range n.Children {
		node.Children = append(node.Children, w.addNode(c))
	}
	return idx
}

// addMesh returns the glTF mesh for n's geometry and material, writing each
// geometry's accessors once.
func (w *writer) addMesh(n *scene.Node) uint32 {
	key := primitiveKey{geometry: n.Geometry, material: n.Material}
	if idx, ok := w.meshes[key]; ok {
		return idx
	}

	attrs, ok := w.accessors[n.Geometry]
	if !ok {
		attrs = w.writeGeometry(n.Geometry)
		w.accessors[n.Geometry] = attrs
	}
	prim := &gltf.Primitive{
		Attributes: attrs,
		Indices:    w.indices[n.Geometry],
		Material:   gltf.Index(w.addMaterial(n.Material)),
	}

	idx := uint32(len(w.doc.Meshes))
	w.doc.Meshes = append(w.doc.Meshes, &gltf.Mesh{
		Name:       n.Name,
		Primitives: []*gltf.Primitive{prim},
	})
	w.meshes[key] = idx
	return idx
}

func (w *writer) writeGeometry(m *mesh.Mesh) gltf.Attribute {
	attrs := gltf.Attribute{
		gltf.POSITION: modeler.WritePosition(w.doc, m.Positions()),
		gltf.NORMAL:   modeler.WriteNormal(w.doc, m.NormalTriples()),
	}
	if len(m.UVs) > 0 {
		attrs[gltf.TEXCOORD_0] = modeler.WriteTextureCoord(w.doc, m.TexCoords())
	}
	if len(m.Faces) > 0 {
		w.indices[m] = gltf.Index(modeler.WriteIndices(w.doc, m.Faces))
	}
	return attrs
}

func (w *writer) addMaterial(mat *scene.Material) uint32 {
	if idx, ok := w.materials[mat]; ok {
		return idx
	}
	color := mat.BaseColor.Linear()
	roughness := mat.Roughness
	if roughness == 0 {
		roughness = 1
	}
	gm := &gltf.Material{
		Name:      mat.Name,
		AlphaMode: gltf.AlphaOpaque,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &color,
			MetallicFactor:  gltf.Float(mat.Metallic),
			RoughnessFactor: gltf.Float(roughness),
		},
	}
	idx := uint32(len(w.doc.Materials))
	w.doc.Materials = append(w.doc.Materials, gm)
	w.materials[mat] = idx

	if mat.Texture != nil {
		w.textures = append(w.textures, pendingTexture{material: idx, name: mat.Name, image: mat.Texture})
	}
	return idx
}

// embedTextures encodes pending textures after all geometry so image bytes
// follow the vertex data in the BIN chunk. A texture that fails to encode is
// dropped with a warning.
func (w *writer) embedTextures() {
	for _, p := range w.textures {
		data, err := w.opts.EncodeImage(p.image, w.opts.ImageFormat)
		if err == nil && len(data) == 0 {
			err = material.ErrEncode
		}
		if err != nil {
			if !errors.Is(err, avatarerr.ErrResource) {
				err = avatarerr.Resource(avatarerr.StageEncode, err)
			}
			w.opts.Logger.Warn("texture dropped",
				zap.String("material", p.name),
				zap.String("stage", avatarerr.StageOf(err)),
				zap.Error(err))
			w.warnings = append(w.warnings, fmt.Sprintf("texture %q dropped: %v", p.name, err))
			continue
		}

		img := w.writeImage(p.name, data)
		tex := &gltf.Texture{Name: p.name}
		if w.opts.ImageFormat == material.FormatWebP {
			tex.Extensions = gltf.Extensions{ExtTextureWebP: map[string]any{"source": img}}
			w.requireExtension(ExtTextureWebP)
		} else {
			tex.Source = gltf.Index(img)
		}
		texIdx := uint32(len(w.doc.Textures))
		w.doc.Textures = append(w.doc.Textures, tex)
		w.doc.Materials[p.material].PBRMetallicRoughness.BaseColorTexture = &gltf.TextureInfo{Index: texIdx}
	}
}

// writeImage appends image bytes to the buffer, 4-byte aligned, and returns
// the new image index.
func (w *writer) writeImage(name string, data []byte) uint32 {
	buf := w.doc.Buffers[0]
	for len(buf.Data)%4 != 0 {
		buf.Data = append(buf.Data, 0)
	}
	offset := len(buf.Data)
	buf.Data = append(buf.Data, data...)
	buf.ByteLength = uint32(len(buf.Data))

	view := uint32(len(w.doc.BufferViews))
	w.doc.BufferViews = append(w.doc.BufferViews, &gltf.BufferView{
		Buffer:     0,
		ByteOffset: uint32(offset),
		ByteLength: uint32(len(data)),
	})

	idx := uint32(len(w.doc.Images))
	w.doc.Images = append(w.doc.Images, &gltf.Image{
		Name:       name,
		MimeType:   w.opts.ImageFormat.MimeType(),
		BufferView: gltf.Index(view),
	})
	return idx
}

func (w *writer) requireExtension(name string) {
	for _, e := range w.doc.ExtensionsUsed {
		if e == name {
			return
		}
	}
	w.doc.ExtensionsUsed = append(w.doc.ExtensionsUsed, name)
	w.doc.ExtensionsRequired = append(w.doc.ExtensionsRequired, name)
}

// frame serializes the document and wraps it in the GLB container.
func (w *writer) frame() ([]byte, error) {
	bin := w.doc.Buffers[0].Data
	w.doc.Buffers[0].ByteLength = uint32(len(bin))
	if len(bin) == 0 {
		// glTF forbids zero-length buffers.
		w.doc.Buffers = nil
	}

	js, err := json.Marshal(w.doc)
	if err != nil {
		return nil, avatarerr.Encode(avatarerr.StageEncode, fmt.Errorf("marshal gltf: %w", err))
	}

	chunks := []glb.Chunk{{Type: glb.ChunkJSON, Data: js}}
	if len(bin) > 0 {
		chunks = append(chunks, glb.Chunk{Type: glb.ChunkBIN, Data: bin})
	}
	data, err := glb.Encode(chunks)
	if err != nil {
		return nil, avatarerr.Encode(avatarerr.StageEncode, err)
	}
	return data, nil
}
