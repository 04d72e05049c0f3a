package exporter

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/qmuntal/gltf"

	"github.com/Faultbox/facegen/internal/avatarerr"
	"github.com/Faultbox/facegen/pkg/glb"
)

// ChunkInfo describes one container chunk.
type ChunkInfo struct {
	Type   string `json:"type"`
	Length int    `json:"length"`
}

// Summary describes an encoded avatar.
type Summary struct {
	Size       uint32          `json:"size"`
	Version    uint32          `json:"version"`
	Chunks     []ChunkInfo     `json:"chunks"`
	Generator  string          `json:"generator"`
	Nodes      []string        `json:"nodes"`
	Meshes     int             `json:"meshes"`
	Materials  int             `json:"materials"`
	Textures   int             `json:"textures"`
	Images     int             `json:"images"`
	Vertices   int             `json:"vertices"`
	Triangles  int             `json:"triangles"`
	Extensions []string        `json:"extensions,omitempty"`
	Extras     json.RawMessage `json:"extras,omitempty"`
}

// Inspect validates data and summarises its container and glTF content.
func Inspect(data []byte) (*Summary, error) {
	size, err := glb.Validate(data)
	if err != nil {
		return nil, avatarerr.Validation(avatarerr.StageValidate, err)
	}
	file, err := glb.Decode(data)
	if err != nil {
		return nil, avatarerr.Validation(avatarerr.StageValidate, err)
	}
	doc, err := DecodeDocument(data)
	if err != nil {
		return nil, err
	}

	s := &Summary{
		Size:       size,
		Version:    file.Header.Version,
		Generator:  doc.Asset.Generator,
		Meshes:     len(doc.Meshes),
		Materials:  len(doc.Materials),
		Textures:   len(doc.Textures),
		Images:     len(doc.Images),
		Extensions: doc.ExtensionsUsed,
	}
	for _, c := range file.Chunks {
		s.Chunks = append(s.Chunks, ChunkInfo{Type: c.Type.String(), Length: len(c.Data)})
	}
	for _, n := range doc.Nodes {
		s.Nodes = append(s.Nodes, n.Name)
	}
	for _, m := range doc.Meshes {
		for _, p := range m.Primitives {
			if pos, ok := p.Attributes[gltf.POSITION]; ok && int(pos) < len(doc.Accessors) {
				s.Vertices += int(doc.Accessors[pos].Count)
			}
			if p.Indices != nil && int(*p.Indices) < len(doc.Accessors) {
				s.Triangles += int(doc.Accessors[*p.Indices].Count) / 3
			}
		}
	}

	// Extras are re-read from the raw JSON chunk to keep their exact form.
	var raw struct {
		Extras json.RawMessage `json:"extras"`
	}
	if err := json.Unmarshal(file.JSON(), &raw); err == nil {
		s.Extras = raw.Extras
	}
	return s, nil
}

// DecodeDocument parses the glTF document carried by a GLB buffer.
func DecodeDocument(data []byte) (*gltf.Document, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		return nil, avatarerr.Validation(avatarerr.StageValidate, fmt.Errorf("decode gltf: %w", err))
	}
	return doc, nil
}
