package face

import (
	"math"

	"github.com/Faultbox/facegen/internal/topology"
)

// SphereLandmarks returns n landmarks spread evenly over a unit sphere
// (Fibonacci lattice), expressed in image space so that the mesh builder
// maps them back onto the sphere.
func SphereLandmarks(n int) []Landmark {
	lms := make([]Landmark, n)
	golden := math.Pi * (3 - math.Sqrt(5))
	for i := range lms {
		y := 1.0
		if n > 1 {
			y = 1 - 2*float64(i)/float64(n-1)
		}
		r := math.Sqrt(math.Max(0, 1-y*y))
		theta := golden * float64(i)
		x := math.Cos(theta) * r
		z := math.Sin(theta) * r

		lms[i] = Landmark{
			X:     x/2 + 0.5,
			Y:     0.5 - y/2,
			Z:     z,
			Index: i,
		}
	}
	return lms
}

// SampleInput returns a complete input built on SphereLandmarks.
func SampleInput() *Input {
	return &Input{
		Landmarks: SphereLandmarks(topology.LandmarkCount),
		SkinTone:  SkinTone{R: 200, G: 150, B: 120, Confidence: 0.9},
		FaceShape: ShapeOval,
	}
}
