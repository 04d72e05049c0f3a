// Package face defines the inputs supplied by the landmark-detection and
// clothing-classification collaborators, and decodes their JSON form.
package face

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Faultbox/facegen/internal/avatarerr"
	"github.com/Faultbox/facegen/internal/topology"
)

// Input errors.
var (
	ErrLandmarkCount    = errors.New("wrong landmark count")
	ErrNonFinite        = errors.New("non-finite landmark coordinate")
	ErrUnknownFaceShape = errors.New("unknown face shape")
	ErrUnknownStyle     = errors.New("unknown clothing style")
	ErrBadColor         = errors.New("invalid color")
)

// Landmark is one detected point. X and Y are normalized image coordinates
// (origin top-left, Y down); Z is relative depth with detector-defined sign.
type Landmark struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Index int     `json:"index"`
}

// SkinTone is the sampled skin color. Confidence is passed through for callers.
type SkinTone struct {
	R          uint8   `json:"r"`
	G          uint8   `json:"g"`
	B          uint8   `json:"b"`
	Confidence float64 `json:"confidence"`
}

// RGB returns the tone as a color.
func (s SkinTone) RGB() RGB {
	return RGB{R: s.R, G: s.G, B: s.B}
}

// ExpressionSet holds independent expression flags. Opposite flags such as
// Smile and Frown may both be set.
type ExpressionSet struct {
	Smile          bool `json:"smile"`
	Frown          bool `json:"frown"`
	RaisedEyebrows bool `json:"raisedEyebrows"`
	Squint         bool `json:"squint"`
	Surprise       bool `json:"surprise"`
}

// Any reports whether any flag is set.
func (e ExpressionSet) Any() bool {
	return e.Smile || e.Frown || e.RaisedEyebrows || e.Squint || e.Surprise
}

// FaceShape is the classified outline of the face.
type FaceShape string

// Face shapes.
const (
	ShapeOval   FaceShape = "oval"
	ShapeRound  FaceShape = "round"
	ShapeSquare FaceShape = "square"
	ShapeHeart  FaceShape = "heart"
	ShapeOblong FaceShape = "oblong"
)

// ParseFaceShape validates s. An empty string means oval.
func ParseFaceShape(s string) (FaceShape, error) {
	switch shape := FaceShape(strings.ToLower(strings.TrimSpace(s))); shape {
	case "":
		return ShapeOval, nil
	case ShapeOval, ShapeRound, ShapeSquare, ShapeHeart, ShapeOblong:
		return shape, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFaceShape, s)
	}
}

// AccessorySet selects optional accessories.
type AccessorySet struct {
	Glasses  bool `json:"glasses"`
	Earrings bool `json:"earrings"`
	Hat      bool `json:"hat"`
}

// Input is everything the detection collaborator reports for one face.
type Input struct {
	Landmarks       []Landmark    `json:"landmarks"`
	SkinTone        SkinTone      `json:"skinTone"`
	Expressions     ExpressionSet `json:"expressions"`
	FaceShape       FaceShape     `json:"faceShape"`
	Accessories     AccessorySet  `json:"accessories"`
	InferenceTimeMs float64       `json:"inferenceTimeMs,omitempty"`
}

// Validate checks the landmark count and coordinates and normalizes the face
// shape. Failures are input errors.
func (in *Input) Validate() error {
	if len(in.Landmarks) != topology.LandmarkCount {
		return avatarerr.Input(avatarerr.StageDecode,
			fmt.Errorf("%w: got %d, want %d", ErrLandmarkCount, len(in.Landmarks), topology.LandmarkCount))
	}
	for i, lm := range in.Landmarks {
		if !finite(lm.X) || !finite(lm.Y) || !finite(lm.Z) {
			return avatarerr.Input(avatarerr.StageDecode, fmt.Errorf("%w: landmark %d", ErrNonFinite, i))
		}
	}

	shape, err := ParseFaceShape(string(in.FaceShape))
	if err != nil {
		return avatarerr.Input(avatarerr.StageDecode, err)
	}
	in.FaceShape = shape
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
