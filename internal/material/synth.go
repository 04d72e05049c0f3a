package material

import (
	"image/color"
	gomath "math"
	"time"

	"golang.org/x/exp/rand"

	"github.com/Faultbox/facegen/internal/face"
)

// Synthesis constants.
const (
	DefaultSize    = 512
	NoiseAmplitude = 10
	BlemishCount   = 100
	BlemishMinR    = 1
	BlemishMaxR    = 4
	BlemishShade   = 0.8
	BlemishAlpha   = 0.5
)

// NewRNG returns a generator for Synthesize. A zero seed draws one from the clock.
func NewRNG(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewSource(seed))
}

// Synthesize paints a size x size procedural skin texture.
//
// Every pixel starts at the skin tone with independent per-channel noise in
// [-NoiseAmplitude, NoiseAmplitude]. BlemishCount soft spots of a darker
// shade are then blended on top, their opacity falling off linearly from
// BlemishAlpha at the centre to zero at the rim. The confidence is ignored.
// Output depends only on rng's state; pass a seeded rng for reproducible
// textures, or nil for an unseeded one.
func Synthesize(tone face.SkinTone, size int, rng *rand.Rand) *RasterImage {
	if size <= 0 {
		size = DefaultSize
	}
	if rng == nil {
		rng = NewRNG(0)
	}

	img := NewRaster(size, size)
	base := [3]int{int(tone.R), int(tone.G), int(tone.B)}

	for i := 0; i < len(img.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			img.Pix[i+c] = clamp(base[c] + rng.Intn(2*NoiseAmplitude+1) - NoiseAmplitude)
		}
		img.Pix[i+3] = 255
	}

	shade := [3]float64{
		float64(tone.R) * BlemishShade,
		float64(tone.G) * BlemishShade,
		float64(tone.B) * BlemishShade,
	}
	for n := 0; n < BlemishCount; n++ {
		cx := rng.Intn(size)
		cy := rng.Intn(size)
		r := BlemishMinR + rng.Intn(BlemishMaxR-BlemishMinR+1)
		stamp(img, cx, cy, r, shade)
	}
	return img
}

// stamp blends a radial spot of colour shade centred on (cx, cy).
func stamp(img *RasterImage, cx, cy, r int, shade [3]float64) {
	for y := cy - r; y <= cy+r; y++ {
		if y < 0 || y >= img.Height {
			continue
		}
		for x := cx - r; x <= cx+r; x++ {
			if x < 0 || x >= img.Width {
				continue
			}
			d := gomath.Hypot(float64(x-cx), float64(y-cy))
			if d >= float64(r) {
				continue
			}
			a := BlemishAlpha * (1 - d/float64(r))
			px := img.RGBA(x, y)
			img.Set(x, y, color.NRGBA{
				R: blend(px.R, shade[0], a),
				G: blend(px.G, shade[1], a),
				B: blend(px.B, shade[2], a),
				A: px.A,
			})
		}
	}
}

func blend(dst uint8, src, a float64) uint8 {
	return clamp(int(gomath.Round(float64(dst)*(1-a) + src*a)))
}

func clamp(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
