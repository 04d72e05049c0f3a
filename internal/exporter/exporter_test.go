package exporter

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/facegen/internal/avatarerr"
	"github.com/Faultbox/facegen/internal/face"
	"github.com/Faultbox/facegen/internal/material"
	"github.com/Faultbox/facegen/internal/mesh"
	"github.com/Faultbox/facegen/internal/scene"
	"github.com/Faultbox/facegen/internal/topology"
	"github.com/Faultbox/facegen/pkg/glb"
)

func sampleScene(t *testing.T, textured bool, acc face.AccessorySet) *scene.Node {
	t.Helper()
	m, err := mesh.Build(face.SphereLandmarks(topology.LandmarkCount))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	mesh.ComputeNormals(m)

	skin := &scene.Material{Name: "skin", BaseColor: face.RGB{R: 200, G: 150, B: 120}}
	if textured {
		skin.Texture = material.Synthesize(face.SkinTone{R: 200, G: 150, B: 120}, 16, material.NewRNG(1))
	}
	clothing := face.DefaultClothing()
	clothing.Style = face.StyleClassic
	root, err := scene.Assemble(scene.Parts{
		Face:         m,
		FaceMaterial: skin,
		Shape:        face.ShapeRound,
		Accessories:  acc,
		Clothing:     clothing,
	})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	return root
}

func faceMaterial(t *testing.T, data []byte) (hasMap bool) {
	t.Helper()
	doc, err := DecodeDocument(data)
	if err != nil {
		t.Fatalf("DecodeDocument: %v", err)
	}
	for _, m := range doc.Materials {
		if m.Name == "skin" {
			return m.PBRMetallicRoughness != nil && m.PBRMetallicRoughness.BaseColorTexture != nil
		}
	}
	t.Fatal("skin material missing")
	return false
}

func TestEncodeRoundTrip(t *testing.T) {
	root := sampleScene(t, true, face.AccessorySet{Glasses: true, Earrings: true, Hat: true})
	res, err := Encode(root, Options{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	size, err := glb.Validate(res.Data)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if size != uint32(len(res.Data)) || size != res.Size {
		t.Errorf("size = %d, result %d, buffer %d", size, res.Size, len(res.Data))
	}
	if res.Textures != 1 || !res.TextureEmbedded() {
		t.Errorf("Textures = %d, want 1", res.Textures)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}
	if !faceMaterial(t, res.Data) {
		t.Error("face material has no base colour texture")
	}
}

func TestEncodeContainerLayout(t *testing.T) {
	res, err := Encode(sampleScene(t, false, face.AccessorySet{}), Options{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	data := res.Data

	if got := binary.LittleEndian.Uint32(data[0:4]); got != glb.Magic {
		t.Errorf("magic = 0x%08X", got)
	}
	if got := binary.LittleEndian.Uint32(data[4:8]); got != glb.Version {
		t.Errorf("version = %d", got)
	}

	file, err := glb.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(file.Chunks) != 2 {
		t.Fatalf("chunks = %d, want 2", len(file.Chunks))
	}
	if file.Chunks[0].Type != glb.ChunkJSON || file.Chunks[1].Type != glb.ChunkBIN {
		t.Errorf("chunk order = %v, %v", file.Chunks[0].Type, file.Chunks[1].Type)
	}
	want := uint64(glb.HeaderSize)
	for _, c := range file.Chunks {
		if len(c.Data)%4 != 0 {
			t.Errorf("%v chunk length %d not padded", c.Type, len(c.Data))
		}
		want += glb.ChunkHeaderSize + uint64(len(c.Data))
	}
	if uint64(len(data)) != want {
		t.Errorf("total = %d, want %d", len(data), want)
	}
	if !json.Valid(file.JSON()) {
		t.Error("JSON chunk is not valid JSON")
	}
}

func TestEncodeTextureFailureDegrades(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	root := sampleScene(t, true, face.AccessorySet{})

	res, err := Encode(root, Options{
		Logger: zap.New(core),
		EncodeImage: func(*material.RasterImage, material.Format) ([]byte, error) {
			return nil, errors.New("simulated decode error")
		},
	})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := glb.Validate(res.Data); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if faceMaterial(t, res.Data) {
		t.Error("face material still references a texture")
	}
	if res.TextureEmbedded() {
		t.Error("TextureEmbedded = true")
	}
	if len(res.Warnings) != 1 {
		t.Errorf("warnings = %v, want 1", res.Warnings)
	}

	entries := logs.FilterMessage("texture dropped").All()
	if len(entries) != 1 {
		t.Fatalf("logged %d warnings, want 1", len(entries))
	}
	if entries[0].Level != zapcore.WarnLevel {
		t.Errorf("level = %v, want warn", entries[0].Level)
	}
}

func TestEncodeRefusesEmptyMesh(t *testing.T) {
	mat := &scene.Material{Name: "m"}
	tests := []struct {
		name string
		root *scene.Node
		want error
	}{
		{"nil", nil, ErrNilScene},
		{"zero vertices", scene.NewGroup("g", scene.Identity(), scene.NewMesh("empty", scene.Identity(), &mesh.Mesh{}, mat)), ErrEmptyMesh},
		{"nil geometry", scene.NewMesh("none", scene.Identity(), nil, mat), ErrEmptyMesh},
		{"bad index", scene.NewMesh("bad", scene.Identity(), &mesh.Mesh{
			Vertices: make([]float32, 9),
			Normals:  make([]float32, 9),
			Faces:    []uint32{0, 1, 5},
		}, mat), ErrInvalidMesh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Encode(tt.root, Options{})
			if res != nil {
				t.Error("expected no result")
			}
			if !errors.Is(err, avatarerr.ErrInput) {
				t.Errorf("err = %v, want input error", err)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEncodeWebP(t *testing.T) {
	res, err := Encode(sampleScene(t, true, face.AccessorySet{}), Options{ImageFormat: material.FormatWebP})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	doc, err := DecodeDocument(res.Data)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.ExtensionsUsed) != 1 || doc.ExtensionsUsed[0] != ExtTextureWebP {
		t.Errorf("extensionsUsed = %v", doc.ExtensionsUsed)
	}
	if len(doc.Images) != 1 || doc.Images[0].MimeType != "image/webp" {
		t.Fatalf("images = %+v", doc.Images)
	}
	if doc.Textures[0].Source != nil {
		t.Error("webp texture should reference its image through the extension")
	}
	if _, ok := doc.Textures[0].Extensions[ExtTextureWebP]; !ok {
		t.Error("texture missing EXT_texture_webp")
	}
}

func TestEncodeSharesGeometry(t *testing.T) {
	res, err := Encode(sampleScene(t, false, face.AccessorySet{Earrings: true}), Options{})
	if err != nil {
		t.Fatal(err)
	}
	doc, err := DecodeDocument(res.Data)
	if err != nil {
		t.Fatal(err)
	}
	var meshes []*uint32
	for _, n := range doc.Nodes {
		if strings.HasPrefix(n.Name, "earring_") {
			meshes = append(meshes, n.Mesh)
		}
	}
	if len(meshes) != 2 || meshes[0] == nil || meshes[1] == nil || *meshes[0] != *meshes[1] {
		t.Errorf("earrings do not share a mesh: %v", meshes)
	}
}

func TestInspect(t *testing.T) {
	extras := map[string]any{"modelVersion": "test-1", "vertexCount": 468}
	res, err := Encode(sampleScene(t, true, face.AccessorySet{Hat: true}), Options{Generator: "unit", Extras: extras})
	if err != nil {
		t.Fatal(err)
	}

	s, err := Inspect(res.Data)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if s.Size != res.Size || s.Version != glb.Version {
		t.Errorf("size/version = %d/%d", s.Size, s.Version)
	}
	if s.Generator != "unit" {
		t.Errorf("generator = %q", s.Generator)
	}
	if s.Textures != 1 || s.Images != 1 {
		t.Errorf("textures/images = %d/%d", s.Textures, s.Images)
	}
	if s.Nodes[0] != scene.NameRoot {
		t.Errorf("first node = %q, want root", s.Nodes[0])
	}
	if s.Vertices < topology.LandmarkCount || s.Triangles == 0 {
		t.Errorf("vertices/triangles = %d/%d", s.Vertices, s.Triangles)
	}

	var got map[string]any
	if err := json.Unmarshal(s.Extras, &got); err != nil {
		t.Fatalf("extras: %v", err)
	}
	if got["modelVersion"] != "test-1" {
		t.Errorf("extras = %v", got)
	}
}

func TestInspectRejectsCorruptMagic(t *testing.T) {
	res, err := Encode(sampleScene(t, false, face.AccessorySet{}), Options{})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 4; i++ {
		data := append([]byte(nil), res.Data...)
		data[i] ^= 0xFF
		_, err := Inspect(data)
		if !errors.Is(err, avatarerr.ErrValidation) || !errors.Is(err, glb.ErrBadMagic) {
			t.Errorf("byte %d: err = %v, want bad magic", i, err)
		}
	}
}

func TestEncodeGroupOnly(t *testing.T) {
	root := scene.NewGroup("lonely", scene.Identity())
	res, err := Encode(root, Options{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	file, err := glb.Decode(res.Data)
	if err != nil {
		t.Fatal(err)
	}
	if len(file.Chunks) != 1 {
		t.Errorf("chunks = %d, want JSON only", len(file.Chunks))
	}
}
