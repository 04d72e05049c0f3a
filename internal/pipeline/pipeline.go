// Package pipeline runs one avatar generation end to end: mesh
// reconstruction, normals, expressions, texture, scene assembly and GLB
// encoding.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/facegen/internal/avatarerr"
	"github.com/Faultbox/facegen/internal/exporter"
	"github.com/Faultbox/facegen/internal/face"
	"github.com/Faultbox/facegen/internal/material"
	"github.com/Faultbox/facegen/internal/mesh"
	"github.com/Faultbox/facegen/internal/scene"
)

// DefaultModelVersion is reported in metadata when Config.ModelVersion is empty.
const DefaultModelVersion = "facegen-1.0"

var errNoInput = errors.New("no face input")

// Config holds generation settings.
type Config struct {
	TextureSize   int
	TextureFormat material.Format
	// Seed pins texture synthesis. Zero draws a fresh seed per request.
	Seed         uint64
	ModelVersion string
	Generator    string
}

// Option customises a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator replaces the avatar ID source.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// WithImageEncoder replaces the texture encoder used when embedding.
func WithImageEncoder(enc exporter.ImageEncoder) Option {
	return func(s *Service) { s.encodeImage = enc }
}

// Service generates avatars. It holds no per-request state and is safe for
// concurrent use.
type Service struct {
	cfg         Config
	log         *zap.Logger
	now         func() time.Time
	newID       func() string
	encodeImage exporter.ImageEncoder
}

// New creates a Service. A nil logger discards output.
func New(cfg Config, log *zap.Logger, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.TextureSize <= 0 {
		cfg.TextureSize = material.DefaultSize
	}
	if cfg.TextureFormat == "" {
		cfg.TextureFormat = material.FormatPNG
	}
	if cfg.ModelVersion == "" {
		cfg.ModelVersion = DefaultModelVersion
	}
	s := &Service{
		cfg:   cfg,
		log:   log,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Request is one avatar to generate.
type Request struct {
	Face *face.Input
	// Clothing is optional; DefaultClothing is used when nil.
	Clothing *face.Clothing
	// Texture optionally carries an encoded face image used instead of the
	// procedural texture.
	Texture []byte
}

// Metadata describes a generated avatar.
type Metadata struct {
	ID               string    `json:"id"`
	VertexCount      int       `json:"vertexCount"`
	FaceCount        int       `json:"faceCount"`
	GenerationTimeMs float64   `json:"generationTimeMs"`
	InferenceTimeMs  float64   `json:"inferenceTimeMs"`
	ModelVersion     string    `json:"modelVersion"`
	FaceShape        string    `json:"faceShape"`
	Style            string    `json:"style"`
	TextureEmbedded  bool      `json:"textureEmbedded"`
	GLBSize          int       `json:"glbSize"`
	Warnings         []string  `json:"warnings,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Result is a generated avatar.
type Result struct {
	GLB      []byte
	Metadata Metadata
}

// Generate runs the pipeline for req. Input and encode failures abort with
// an *avatarerr.Error naming the stage; texture failures only add a
// warning. Cancellation is checked between stages and nothing is returned
// for a cancelled request.
func (s *Service) Generate(ctx context.Context, req Request) (*Result, error) {
	start := s.now()

	if req.Face == nil {
		return nil, avatarerr.Input(avatarerr.StageDecode, errNoInput)
	}
	if err := req.Face.Validate(); err != nil {
		return nil, err
	}
	clothing := face.DefaultClothing()
	if req.Clothing != nil {
		clothing = *req.Clothing
	}

	meta := Metadata{
		ID:              s.newID(),
		InferenceTimeMs: req.Face.InferenceTimeMs,
		ModelVersion:    s.cfg.ModelVersion,
		FaceShape:       string(req.Face.FaceShape),
		Style:           string(clothing.Style),
		CreatedAt:       start.UTC(),
	}
	log := s.log.With(zap.String("id", meta.ID))

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	base, err := mesh.Build(req.Face.Landmarks)
	if err != nil {
		return nil, err
	}
	mesh.ComputeNormals(base)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	faceMesh := base
	if req.Face.Expressions.Any() {
		if faceMesh, err = mesh.ApplyExpressions(base, req.Face.Expressions); err != nil {
			return nil, err
		}
	}
	meta.VertexCount = faceMesh.VertexCount()
	meta.FaceCount = faceMesh.FaceCount()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	skin := &scene.Material{Name: "skin", BaseColor: req.Face.SkinTone.RGB(), Roughness: 0.8}
	skin.Texture, err = s.texture(req)
	if err != nil {
		log.Warn("texture unavailable", zap.String("stage", avatarerr.StageOf(err)), zap.Error(err))
		meta.Warnings = append(meta.Warnings, err.Error())
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	root, err := scene.Assemble(scene.Parts{
		Face:         faceMesh,
		FaceMaterial: skin,
		Shape:        req.Face.FaceShape,
		Accessories:  req.Face.Accessories,
		Clothing:     clothing,
	})
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res, err := exporter.Encode(root, exporter.Options{
		Generator:   s.cfg.Generator,
		ImageFormat: s.cfg.TextureFormat,
		Extras:      meta,
		Logger:      log,
		EncodeImage: s.encodeImage,
	})
	if err != nil {
		return nil, err
	}

	meta.GLBSize = len(res.Data)
	meta.TextureEmbedded = res.TextureEmbedded()
	meta.Warnings = append(meta.Warnings, res.Warnings...)
	meta.GenerationTimeMs = float64(s.now().Sub(start).Microseconds()) / 1000

	log.Info("avatar generated",
		zap.Int("vertices", meta.VertexCount),
		zap.Int("faces", meta.FaceCount),
		zap.Int("glb_bytes", meta.GLBSize),
		zap.Bool("texture", meta.TextureEmbedded),
		zap.Float64("ms", meta.GenerationTimeMs))

	return &Result{GLB: res.Data, Metadata: meta}, nil
}

// texture returns the face texture: the supplied image when present,
// otherwise a procedural one.
func (s *Service) texture(req Request) (*material.RasterImage, error) {
	if len(req.Texture) > 0 {
		return material.DecodeTexture(req.Texture, s.cfg.TextureSize)
	}
	return material.Synthesize(req.Face.SkinTone, s.cfg.TextureSize, material.NewRNG(s.cfg.Seed)), nil
}
