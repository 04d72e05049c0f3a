// Package topology holds the static landmark-index tables of the 468-point
// face landmark scheme: named anatomical regions used for triangulation and
// the index sets targeted by expression offsets.
//
// All tables are read-only and shared by every pipeline run.
package topology

// LandmarkCount is the number of landmarks the tables are built for.
const LandmarkCount = 468

// Region is an ordered run of landmark indices outlining one anatomical feature.
type Region struct {
	Name    string
	Indices []int
}

var (
	faceContour = []int{
		10, 338, 297, 332, 284, 251, 389, 356, 454, 323, 361, 288,
		397, 365, 379, 378, 400, 377, 152, 148, 176, 149, 150, 136,
		172, 58, 132, 93, 234, 127, 162, 21, 54, 103, 67, 109,
	}
	leftEyebrow  = []int{276, 283, 282, 295, 285, 300, 293, 334, 296, 336}
	rightEyebrow = []int{46, 53, 52, 65, 55, 70, 63, 105, 66, 107}
	leftEye      = []int{362, 382, 381, 380, 374, 373, 390, 249, 263, 466, 388, 387, 386, 385, 384, 398}
	rightEye     = []int{33, 7, 163, 144, 145, 153, 154, 155, 133, 173, 157, 158, 159, 160, 161, 246}
	noseBridge   = []int{168, 6, 197, 195, 5, 4, 1, 19, 94, 2}
	noseBase     = []int{98, 97, 2, 326, 327, 294, 278, 344, 440, 275, 4, 45, 220, 115, 48, 64}
	lipsOuter    = []int{61, 146, 91, 181, 84, 17, 314, 405, 321, 375, 291, 409, 270, 269, 267, 0, 37, 39, 40, 185}
	lipsInner    = []int{78, 95, 88, 178, 87, 14, 317, 402, 318, 324, 308, 415, 310, 311, 312, 13, 82, 81, 80, 191}
)

// Regions is the triangulation recipe, in the order regions are fan-triangulated.
var Regions = []Region{
	{Name: "contour", Indices: faceContour},
	{Name: "leftEyebrow", Indices: leftEyebrow},
	{Name: "rightEyebrow", Indices: rightEyebrow},
	{Name: "leftEye", Indices: leftEye},
	{Name: "rightEye", Indices: rightEye},
	{Name: "noseBridge", Indices: noseBridge},
	{Name: "noseBase", Indices: noseBase},
	{Name: "lipsOuter", Indices: lipsOuter},
	{Name: "lipsInner", Indices: lipsInner},
}

// MouthCorners are the left and right corners of the mouth.
var MouthCorners = []int{61, 291}

// lowerLip is the lower half of both lip outlines, excluding the corners.
var lowerLip = []int{146, 91, 181, 84, 17, 314, 405, 321, 375, 95, 88, 178, 87, 14, 317, 402, 318, 324}

// Eyebrows returns the union of both eyebrow regions.
func Eyebrows() []int {
	return union(leftEyebrow, rightEyebrow)
}

// Eyes returns the union of both eye regions.
func Eyes() []int {
	return union(leftEye, rightEye)
}

// LeftEye returns the left eye outline.
func LeftEye() []int {
	return clone(leftEye)
}

// RightEye returns the right eye outline.
func RightEye() []int {
	return clone(rightEye)
}

// LowerLip returns the lower-lip indices moved when the mouth opens.
func LowerLip() []int {
	return clone(lowerLip)
}

// Lookup returns the region with the given name.
func Lookup(name string) (Region, bool) {
	for _, r := range Regions {
		if r.Name == name {
			return r, true
		}
	}
	return Region{}, false
}

// union returns the indices of all sets in first-seen order without duplicates.
func union(sets ...[]int) []int {
	seen := make(map[int]bool)
	var out []int
	for _, set := range sets {
		for _, idx := range set {
			if !seen[idx] {
				seen[idx] = true
				out = append(out, idx)
			}
		}
	}
	return out
}

func clone(s []int) []int {
	return append([]int(nil), s...)
}
